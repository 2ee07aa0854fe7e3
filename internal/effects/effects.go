package effects

import (
	"fmt"
	"math"
	"math/rand"
)

// Kind names a layer's entrance transition.
type Kind string

const (
	None         Kind = "none"
	SlideInLeft  Kind = "slide-in-left"
	SlideInTop   Kind = "slide-in-top"
	SlideInRight Kind = "slide-in-right"
	CrossFadeIn  Kind = "cross-fade-in"
)

// Palette is the set image layers draw their entrance from.
var Palette = []Kind{SlideInLeft, SlideInTop, SlideInRight, CrossFadeIn}

// Picker chooses the effect of the image layer for a script item.
type Picker interface {
	Pick(index int) Kind
}

// PickerFunc adapts a function to Picker.
type PickerFunc func(index int) Kind

func (f PickerFunc) Pick(index int) Kind { return f(index) }

// RandomPicker picks uniformly from its palette. The choice depends only on
// Seed and the item index, so a seed reproduces a video regardless of the
// order layers are built in.
type RandomPicker struct {
	Seed    int64
	Palette []Kind
}

// NewRandomPicker uses the default Palette.
func NewRandomPicker(seed int64) *RandomPicker {
	return &RandomPicker{Seed: seed, Palette: Palette}
}

func (p *RandomPicker) Pick(index int) Kind {
	palette := p.Palette
	if len(palette) == 0 {
		palette = Palette
	}
	r := rand.New(rand.NewSource(p.Seed + int64(index*99)))
	return palette[r.Intn(len(palette))]
}

// Fixed always returns the same effect.
type Fixed Kind

func (f Fixed) Pick(int) Kind { return Kind(f) }

// Motion describes where a layer enters from and whether it fades in.
type Motion struct {
	FromX, FromY int
	ToX, ToY     int
	Fade         bool
}

// Static reports whether the layer does not move.
func (m Motion) Static() bool { return m.FromX == m.ToX && m.FromY == m.ToY }

// MotionFor resolves kind for a w x h layer resting at (x, y) on a canvas of
// canvasW x canvasH. Slides start fully outside the canvas edge.
func MotionFor(kind Kind, x, y, w, h, canvasW, canvasH int) Motion {
	m := Motion{FromX: x, FromY: y, ToX: x, ToY: y}
	switch kind {
	case SlideInLeft:
		m.FromX = -w
	case SlideInTop:
		m.FromY = -h
	case SlideInRight:
		m.FromX = canvasW
	case CrossFadeIn:
		m.Fade = true
	}
	return m
}

// Progress is the eased completion of a transition at time t, in [0, 1].
// It matches ProgressExpr.
func Progress(t, start, duration float64) float64 {
	if duration <= 0 {
		return 1
	}
	p := (t - start) / duration
	p = math.Max(0, math.Min(1, p))
	return 1 - math.Pow(1-p, 3)
}

// ProgressExpr is the ffmpeg expression form of Progress (ease-out cubic).
func ProgressExpr(start, duration float64) string {
	return fmt.Sprintf("(1-pow(1-clip((t-%.6f)/%.6f,0,1),3))", start, duration)
}

// OverlayExpr returns the x and y expressions of an ffmpeg overlay filter.
func OverlayExpr(m Motion, start, duration float64) (string, string) {
	return axisExpr(m.FromX, m.ToX, start, duration), axisExpr(m.FromY, m.ToY, start, duration)
}

func axisExpr(from, to int, start, duration float64) string {
	if from == to {
		return fmt.Sprintf("%d", to)
	}
	return fmt.Sprintf("%d+(%d)*%s", from, to-from, ProgressExpr(start, duration))
}

// FadeFilter fades a stream's alpha in at start.
func FadeFilter(start, duration float64) string {
	return fmt.Sprintf("fade=t=in:st=%.6f:d=%.6f:alpha=1", start, duration)
}
