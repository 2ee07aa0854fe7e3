package source

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"os"
	"sync"

	"github.com/ivlev/script2video/internal/system"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TextRenderer rasterizes caption, title and footer text with one font.
// Faces are cached per size; it is safe for concurrent use.
type TextRenderer struct {
	font  *opentype.Font
	mu    sync.Mutex
	faces map[float64]font.Face
}

// NewTextRenderer loads an OTF/TTF font from disk.
func NewTextRenderer(path string) (*TextRenderer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	return NewTextRendererFromBytes(data)
}

func NewTextRendererFromBytes(data []byte) (*TextRenderer, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &TextRenderer{font: f, faces: make(map[float64]font.Face)}, nil
}

func (r *TextRenderer) face(size float64) (font.Face, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(r.font, &opentype.FaceOptions{Size: size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		return nil, err
	}
	r.faces[size] = f
	return f, nil
}

// Measure returns the advance width of text at size, in pixels.
func (r *TextRenderer) Measure(text string, size float64) (int, error) {
	f, err := r.face(size)
	if err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return font.MeasureString(f, text).Ceil(), nil
}

// minFontSize is the smallest size FitSize shrinks to.
const minFontSize = 1.0

// FitSize returns the largest size, at most size and in half-point steps
// below it, at which text advances no wider than width.
func (r *TextRenderer) FitSize(text string, size float64, width int) (float64, error) {
	advance, err := r.Measure(text, size)
	if err != nil {
		return 0, err
	}
	if advance <= width {
		return size, nil
	}
	s := math.Floor(size*float64(width)/float64(advance)*2) / 2
	for ; s > minFontSize; s -= 0.5 {
		advance, err = r.Measure(text, s)
		if err != nil {
			return 0, err
		}
		if advance <= width {
			return s, nil
		}
	}
	return minFontSize, nil
}

// TextBox describes one rasterized text element.
type TextBox struct {
	Text       string
	Size       float64 // preferred size; shrunk until the text fits
	Width      int
	Height     int
	Padding    int // horizontal inset on each side
	Foreground color.Color
	Background color.Color
}

// Inner is the width available to the text.
func (b TextBox) Inner() int {
	if inner := b.Width - 2*b.Padding; inner > 0 {
		return inner
	}
	return b.Width
}

// Render draws box.Text centered in a Width x Height image over Background.
// The face is shrunk so the whole line fits within Inner.
func (r *TextRenderer) Render(box TextBox) (*image.RGBA, error) {
	if box.Width <= 0 || box.Height <= 0 {
		return nil, fmt.Errorf("text box %dx%d is empty", box.Width, box.Height)
	}
	size, err := r.FitSize(box.Text, box.Size, box.Inner())
	if err != nil {
		return nil, err
	}
	f, err := r.face(size)
	if err != nil {
		return nil, err
	}

	img := system.GetImage(image.Rect(0, 0, box.Width, box.Height))
	if box.Background != nil {
		draw.Draw(img, img.Bounds(), image.NewUniform(box.Background), image.Point{}, draw.Src)
	}
	fg := box.Foreground
	if fg == nil {
		fg = color.Black
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	metrics := f.Metrics()
	advance := font.MeasureString(f, box.Text)
	textH := metrics.Ascent + metrics.Descent
	x := (fixed.I(box.Width) - advance) / 2
	y := (fixed.I(box.Height)-textH)/2 + metrics.Ascent

	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(fg),
		Face: f,
		Dot:  fixed.Point26_6{X: x, Y: y},
	}
	d.DrawString(box.Text)
	return img, nil
}

// RenderToFile renders box and writes it as PNG to path.
func (r *TextRenderer) RenderToFile(box TextBox, path string) error {
	img, err := r.Render(box)
	if err != nil {
		return err
	}
	defer system.PutImage(img)
	return WritePNG(path, img)
}
