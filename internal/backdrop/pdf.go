package backdrop

import (
	"fmt"
	"image"

	"github.com/gen2brain/go-fitz"
)

// PDFLoader renders the first page of a PDF as the backdrop.
type PDFLoader struct {
	Path string
	DPI  int
}

func (l *PDFLoader) Load() (image.Image, error) {
	doc, err := fitz.New(l.Path)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("pdf %s has no pages", l.Path)
	}
	return doc.ImageDPI(0, float64(l.DPI))
}
