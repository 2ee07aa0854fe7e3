package source

import (
	"image"
	"path/filepath"
	"strings"

	"github.com/gen2brain/go-fitz"
)

// Source is an illustration that can be rasterized.
type Source interface {
	Dimensions() (width, height float64, err error)
	Render(dpi int) (image.Image, error)
	Close() error
}

// Open picks a Source by file extension: PDFs go through MuPDF, everything
// else through the registered image decoders.
func Open(path string) (Source, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		return NewFitzPDFSource(path)
	}
	return NewImageSource(path)
}

// FitzPDFSource renders the first page of a PDF illustration.
type FitzPDFSource struct {
	doc  *fitz.Document
	path string
}

func NewFitzPDFSource(path string) (*FitzPDFSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzPDFSource{doc: doc, path: path}, nil
}

func (f *FitzPDFSource) Dimensions() (float64, float64, error) {
	rect, err := f.doc.Bound(0)
	if err != nil {
		return 0, 0, err
	}
	return float64(rect.Dx()), float64(rect.Dy()), nil
}

func (f *FitzPDFSource) Render(dpi int) (image.Image, error) {
	return f.doc.ImageDPI(0, float64(dpi))
}

func (f *FitzPDFSource) Close() error {
	return f.doc.Close()
}
