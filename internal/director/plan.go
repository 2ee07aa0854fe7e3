package director

import (
	"github.com/ivlev/script2video/internal/effects"
	"github.com/ivlev/script2video/internal/timeline"
)

// PlanVersion is written into every serialized plan.
const PlanVersion = "1.0"

// LayerKind names what a layer draws.
type LayerKind string

const (
	KindBackground LayerKind = "background"
	KindHighlight  LayerKind = "highlight"
	KindTitle      LayerKind = "title"
	KindDecoration LayerKind = "decoration"
	KindFooter     LayerKind = "footer"
	KindQRCode     LayerKind = "qrcode"
	KindImage      LayerKind = "image"
	KindCaptionCN  LayerKind = "caption-cn"
	KindCaptionEN  LayerKind = "caption-en"
)

// Plan is the ordered set of layers of one composition. Layers are stored
// bottom to top; later layers draw over earlier ones.
type Plan struct {
	Version string                  `yaml:"version"`
	Title   string                  `yaml:"title"`
	Width   int                     `yaml:"width"`
	Height  int                     `yaml:"height"`
	FPS     int                     `yaml:"fps"`
	Gap     float64                 `yaml:"gap"`
	Total   float64                 `yaml:"total"`
	Seed    int64                   `yaml:"seed"`
	Audio   []timeline.AudioSegment `yaml:"audio"`
	Layers  []Layer                 `yaml:"layers"`
}

// Layer is one visual element with its window, geometry and entrance effect.
type Layer struct {
	Kind       LayerKind    `yaml:"kind"`
	Index      int          `yaml:"index"` // script item, -1 for whole-timeline layers
	Start      float64      `yaml:"start"`
	Duration   float64      `yaml:"duration"`
	End        float64      `yaml:"end"`
	X          int          `yaml:"x"`
	Y          int          `yaml:"y"`
	W          int          `yaml:"w"`
	H          int          `yaml:"h"`
	Effect     effects.Kind `yaml:"effect"`
	Source     string       `yaml:"source,omitempty"`
	Text       string       `yaml:"text,omitempty"`
	FontSize   float64      `yaml:"font_size,omitempty"` // text is shrunk below this to fit W
	Padding    int          `yaml:"padding,omitempty"`   // horizontal inset kept free of text
	Color      string       `yaml:"color,omitempty"`
	Background string       `yaml:"background,omitempty"`
}

// HasAsset reports whether the layer is drawn from a file rather than a
// solid fill.
func (l Layer) HasAsset() bool { return l.Source != "" }

// IsText reports whether the layer's asset is rasterized text.
func (l Layer) IsText() bool {
	switch l.Kind {
	case KindTitle, KindFooter, KindCaptionCN, KindCaptionEN:
		return true
	}
	return false
}

// LayersOf returns the layers of the given kind in plan order.
func (p *Plan) LayersOf(kind LayerKind) []Layer {
	var out []Layer
	for _, l := range p.Layers {
		if l.Kind == kind {
			out = append(out, l)
		}
	}
	return out
}

// Assets returns the layers backed by a file, in plan order.
func (p *Plan) Assets() []Layer {
	var out []Layer
	for _, l := range p.Layers {
		if l.HasAsset() {
			out = append(out, l)
		}
	}
	return out
}
