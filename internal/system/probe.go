package system

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

// Prober measures media durations.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// ProbeResult is the subset of `ffprobe -of json` output the composer reads.
type ProbeResult struct {
	Streams []ProbeStream `json:"streams"`
	Format  ProbeFormat   `json:"format"`
}

type ProbeStream struct {
	Index      int    `json:"index"`
	CodecName  string `json:"codec_name"`
	CodecType  string `json:"codec_type"`
	Duration   string `json:"duration"`
	SampleRate string `json:"sample_rate"`
	Channels   int    `json:"channels"`
}

type ProbeFormat struct {
	Filename   string `json:"filename"`
	Duration   string `json:"duration"`
	FormatName string `json:"format_name"`
}

// AudioStreamCount returns the number of audio streams.
func (r ProbeResult) AudioStreamCount() int {
	count := 0
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, "audio") {
			count++
		}
	}
	return count
}

// DurationSeconds prefers the container duration and falls back to the first
// audio stream. Returns NaN when neither parses.
func (r ProbeResult) DurationSeconds() float64 {
	if d := parseFloat(r.Format.Duration); d > 0 {
		return d
	}
	for _, s := range r.Streams {
		if strings.EqualFold(s.CodecType, "audio") {
			if d := parseFloat(s.Duration); d > 0 {
				return d
			}
		}
	}
	return math.NaN()
}

// FFprobe runs the ffprobe binary.
type FFprobe struct {
	Binary string
}

// Inspect executes ffprobe against path and decodes its JSON report.
func (p FFprobe) Inspect(ctx context.Context, path string) (ProbeResult, error) {
	binary := strings.TrimSpace(p.Binary)
	if binary == "" {
		binary = "ffprobe"
	}
	if strings.TrimSpace(path) == "" {
		return ProbeResult{}, errors.New("ffprobe: empty path")
	}

	cmd := exec.CommandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return ProbeResult{}, fmt.Errorf("ffprobe %s: %w: %s", path, err, strings.TrimSpace(string(exitErr.Stderr)))
		}
		return ProbeResult{}, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	var result ProbeResult
	if err := json.Unmarshal(out, &result); err != nil {
		return ProbeResult{}, fmt.Errorf("ffprobe parse %s: %w", path, err)
	}
	return result, nil
}

// Duration returns the duration of the audio in path.
func (p FFprobe) Duration(ctx context.Context, path string) (float64, error) {
	result, err := p.Inspect(ctx, path)
	if err != nil {
		return 0, err
	}
	if result.AudioStreamCount() == 0 {
		return 0, fmt.Errorf("ffprobe %s: no audio stream", path)
	}
	d := result.DurationSeconds()
	if math.IsNaN(d) || d <= 0 {
		return 0, fmt.Errorf("ffprobe %s: unreadable duration %q", path, result.Format.Duration)
	}
	return d, nil
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return math.NaN()
}
