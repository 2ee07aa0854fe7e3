package renderer

import (
	"math"

	"github.com/ivlev/script2video/internal/director"
	"github.com/ivlev/script2video/internal/effects"
)

// LayerState is where a layer is and how opaque it is at one instant.
type LayerState struct {
	Visible bool
	X, Y    int
	Alpha   float64
}

// StateAt evaluates layer l at time t with the same easing the ffmpeg
// expressions use.
func StateAt(l director.Layer, canvasW, canvasH int, effectDuration, t float64) LayerState {
	if t < l.Start || t > l.End {
		return LayerState{}
	}
	m := effects.MotionFor(l.Effect, l.X, l.Y, l.W, l.H, canvasW, canvasH)
	p := effects.Progress(t, l.Start, effectDuration)

	state := LayerState{
		Visible: true,
		X:       int(math.Round(lerp(float64(m.FromX), float64(m.ToX), p))),
		Y:       int(math.Round(lerp(float64(m.FromY), float64(m.ToY), p))),
		Alpha:   1,
	}
	if m.Fade {
		state.Alpha = p
	}
	return state
}

// lerp performs linear interpolation between a and b.
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}
