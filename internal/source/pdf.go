package source

import (
	"image"

	"github.com/gen2brain/go-fitz"
)

// FitzSource renders the pages of a storyboard PDF as scene stills.
type FitzSource struct {
	doc  *fitz.Document
	path string
	dpi  int
}

func NewFitzSource(path string, dpi int) (*FitzSource, error) {
	doc, err := fitz.New(path)
	if err != nil {
		return nil, err
	}
	return &FitzSource{doc: doc, path: path, dpi: dpi}, nil
}

func (f *FitzSource) Count() int {
	return f.doc.NumPage()
}

func (f *FitzSource) Scene(index int) (image.Image, error) {
	// fitz handles are not safe for concurrent use, so rendering opens its
	// own document
	doc, err := fitz.New(f.path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()
	return doc.ImageDPI(index, float64(f.dpi))
}

func (f *FitzSource) Close() error {
	return f.doc.Close()
}
