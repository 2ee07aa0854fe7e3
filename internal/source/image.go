package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"math"
	"os"

	xdraw "golang.org/x/image/draw"
)

// ImageSource decodes a single PNG or JPEG file.
type ImageSource struct {
	path string
}

func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}
	return &ImageSource{path: path}, nil
}

func (s *ImageSource) Dimensions() (float64, float64, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}

// Render ignores dpi; raster images have a fixed resolution.
func (s *ImageSource) Render(int) (image.Image, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (s *ImageSource) Close() error {
	return nil
}

// Fit scales w x h to the largest size inside boxW x boxH keeping the aspect
// ratio. Results are at least 1 pixel.
func Fit(w, h float64, boxW, boxH int) (int, int) {
	if w <= 0 || h <= 0 {
		return boxW, boxH
	}
	scale := math.Min(float64(boxW)/w, float64(boxH)/h)
	fw := int(math.Round(w * scale))
	fh := int(math.Round(h * scale))
	return max(fw, 1), max(fh, 1)
}

// Resize draws img into a new w x h RGBA image.
func Resize(img image.Image, w, h int) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}

// WritePNG encodes img to path.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// Illustration is a prepared, resized illustration on disk.
type Illustration struct {
	Path          string
	Width, Height int
}

// PrepareIllustration rasterizes src at dpi, fits it into boxW x boxH and
// writes the result as PNG to dst.
func PrepareIllustration(src Source, dpi, boxW, boxH int, dst string) (Illustration, error) {
	w, h, err := src.Dimensions()
	if err != nil {
		return Illustration{}, fmt.Errorf("dimensions: %w", err)
	}
	img, err := src.Render(dpi)
	if err != nil {
		return Illustration{}, fmt.Errorf("render: %w", err)
	}
	fw, fh := Fit(w, h, boxW, boxH)
	if err := WritePNG(dst, Resize(img, fw, fh)); err != nil {
		return Illustration{}, fmt.Errorf("write %s: %w", dst, err)
	}
	return Illustration{Path: dst, Width: fw, Height: fh}, nil
}
