// Package timeline derives the start/end offsets shared by every layer of a
// composition from the measured voice durations.
//
// For durations d0..dn-1 and gap g:
//
//	start[i] = d0 + ... + d(i-1) + i*g
//	end[i]   = start[i] + d[i]
//	total    = sum(d) + (n-1)*g
package timeline

import (
	"errors"
	"fmt"
	"math"
)

// ErrEmpty is returned for a script without items.
var ErrEmpty = errors.New("timeline: no segments")

// Persistence decides how long a visual stays on screen for item i of n.
type Persistence func(i, n int, duration, gap float64) float64

// PersistLiteral extends every visual by (n-1)*gap, independent of i.
func PersistLiteral(_, n int, duration, gap float64) float64 {
	return duration + float64(n-1)*gap
}

// PersistGap extends a visual into the pause that follows it; the last line
// has no trailing pause.
func PersistGap(i, n int, duration, gap float64) float64 {
	if i == n-1 {
		return duration
	}
	return duration + gap
}

// AudioSegment is the window of one voice clip on the program timeline.
type AudioSegment struct {
	Index    int     `yaml:"index"`
	Duration float64 `yaml:"duration"`
	Start    float64 `yaml:"start"`
	End      float64 `yaml:"end"`
}

// Window is when the visuals of one line are shown.
type Window struct {
	Index    int     `yaml:"index"`
	Start    float64 `yaml:"start"`
	End      float64 `yaml:"end"` // nominal end, equal to the audio end
	Duration float64 `yaml:"duration"`
}

// Timeline is the computed ground truth for one composition.
type Timeline struct {
	Gap      float64        `yaml:"gap"`
	Total    float64        `yaml:"total"`
	Segments []AudioSegment `yaml:"segments"`
	Visuals  []Window       `yaml:"visuals"`
}

// Compute lays out the segments. persist may be nil for PersistLiteral.
func Compute(durations []float64, gap float64, persist Persistence) (*Timeline, error) {
	n := len(durations)
	if n == 0 {
		return nil, ErrEmpty
	}
	if gap < 0 || math.IsNaN(gap) || math.IsInf(gap, 0) {
		return nil, fmt.Errorf("timeline: invalid gap %v", gap)
	}
	if persist == nil {
		persist = PersistLiteral
	}

	tl := &Timeline{
		Gap:      gap,
		Segments: make([]AudioSegment, n),
		Visuals:  make([]Window, n),
	}

	startTime := 0.0
	sum := 0.0
	for i, d := range durations {
		if d <= 0 || math.IsNaN(d) || math.IsInf(d, 0) {
			return nil, fmt.Errorf("timeline: segment %d has invalid duration %v", i, d)
		}
		start := startTime + float64(i)*gap
		tl.Segments[i] = AudioSegment{Index: i, Duration: d, Start: start, End: start + d}
		tl.Visuals[i] = Window{Index: i, Start: start, End: start + d, Duration: persist(i, n, d, gap)}
		startTime += d
		sum += d
	}
	tl.Total = sum + float64(n-1)*gap
	return tl, nil
}

// Len is the number of segments.
func (t *Timeline) Len() int { return len(t.Segments) }

// SegmentAt returns the index of the voice segment playing at time ts, or -1
// inside a gap or outside the program.
func (t *Timeline) SegmentAt(ts float64) int {
	for _, s := range t.Segments {
		if ts >= s.Start && ts < s.End {
			return s.Index
		}
	}
	return -1
}

// Midpoint is the middle of segment i's audio.
func (t *Timeline) Midpoint(i int) float64 {
	s := t.Segments[i]
	return s.Start + s.Duration/2
}
