package renderer

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"os"
	"sync"

	"github.com/ivlev/script2video/internal/config"
	"github.com/ivlev/script2video/internal/director"
	xdraw "golang.org/x/image/draw"
)

// Compositor draws single frames of a plan in process. Decoded assets are
// cached, so rendering several frames of one plan decodes each file once.
type Compositor struct {
	Plan           *director.Plan
	EffectDuration float64

	mu     sync.Mutex
	assets map[string]image.Image
}

func NewCompositor(plan *director.Plan, effectDuration float64) *Compositor {
	return &Compositor{Plan: plan, EffectDuration: effectDuration, assets: make(map[string]image.Image)}
}

// Frame composes the picture at time t.
func (c *Compositor) Frame(t float64) (*image.RGBA, error) {
	p := c.Plan
	canvas := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))

	for _, l := range p.Layers {
		state := StateAt(l, p.Width, p.Height, c.EffectDuration, t)
		if !state.Visible {
			continue
		}
		rect := image.Rect(state.X, state.Y, state.X+l.W, state.Y+l.H)
		mask := image.NewUniform(color.Alpha{A: uint8(state.Alpha * 255)})

		if !l.HasAsset() {
			fill, err := config.ParseColor(l.Color)
			if err != nil {
				return nil, fmt.Errorf("layer %s: %w", l.Kind, err)
			}
			xdraw.DrawMask(canvas, rect, image.NewUniform(fill), image.Point{}, mask, image.Point{}, xdraw.Over)
			continue
		}

		src, err := c.asset(l)
		if err != nil {
			return nil, err
		}
		xdraw.DrawMask(canvas, rect, src, image.Point{}, mask, image.Point{}, xdraw.Over)
	}
	return canvas, nil
}

// asset returns l's source scaled to the layer size.
func (c *Compositor) asset(l director.Layer) (image.Image, error) {
	key := fmt.Sprintf("%s@%dx%d", l.Source, l.W, l.H)
	c.mu.Lock()
	defer c.mu.Unlock()
	if img, ok := c.assets[key]; ok {
		return img, nil
	}

	f, err := os.Open(l.Source)
	if err != nil {
		return nil, fmt.Errorf("layer %s: %w", l.Kind, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", l.Source, err)
	}

	scaled := image.NewRGBA(image.Rect(0, 0, l.W, l.H))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	c.assets[key] = scaled
	return scaled, nil
}
