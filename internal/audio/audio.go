// Package audio builds the voice track: every clip in script order at a fixed
// gain, padded or trimmed to its probed length, with silence between lines.
package audio

import (
	"fmt"
	"strings"

	"github.com/ivlev/script2video/internal/timeline"
)

const (
	SampleRate    = 44100
	ChannelLayout = "stereo"
	// OutputLabel is the filter_complex pad carrying the finished track.
	OutputLabel = "aout"
)

// Track is the audio part of an ffmpeg invocation.
type Track struct {
	// Inputs are the voice files, to be passed as consecutive -i arguments.
	Inputs []string
	// Filters are filter_complex chains, joined with ';' by the caller.
	Filters []string
	// Parts lists the concatenated pieces for inspection: "voice" or "silence".
	Parts    []string
	Duration float64
}

// Build assembles the track for segments. files[i] is segment i's clip;
// firstInput is the ffmpeg input index of files[0].
func Build(segments []timeline.AudioSegment, files []string, gap, gain float64, firstInput int) (Track, error) {
	n := len(segments)
	if n == 0 {
		return Track{}, timeline.ErrEmpty
	}
	if len(files) != n {
		return Track{}, fmt.Errorf("audio: %d segments but %d files", n, len(files))
	}

	t := Track{Inputs: append([]string(nil), files...)}
	var labels []string
	for i, seg := range segments {
		label := fmt.Sprintf("a%d", i)
		t.Filters = append(t.Filters, fmt.Sprintf(
			"[%d:a]aresample=%d,aformat=channel_layouts=%s,volume=%.6f,apad=whole_dur=%.6f,atrim=duration=%.6f,asetpts=PTS-STARTPTS[%s]",
			firstInput+i, SampleRate, ChannelLayout, gain, seg.Duration, seg.Duration, label))
		labels = append(labels, label)
		t.Parts = append(t.Parts, "voice")
		t.Duration += seg.Duration

		if i < n-1 && gap > 0 {
			silence := fmt.Sprintf("g%d", i)
			t.Filters = append(t.Filters, Silence(gap, silence))
			labels = append(labels, silence)
			t.Parts = append(t.Parts, "silence")
			t.Duration += gap
		}
	}

	var b strings.Builder
	for _, l := range labels {
		fmt.Fprintf(&b, "[%s]", l)
	}
	fmt.Fprintf(&b, "concat=n=%d:v=0:a=1[%s]", len(labels), OutputLabel)
	t.Filters = append(t.Filters, b.String())
	return t, nil
}

// Silence is a generated stereo silence chain of the given length.
func Silence(duration float64, label string) string {
	return fmt.Sprintf("anullsrc=r=%d:cl=%s,atrim=duration=%.6f[%s]", SampleRate, ChannelLayout, duration, label)
}
