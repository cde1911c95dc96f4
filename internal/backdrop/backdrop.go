// Package backdrop loads the optional background slide drawn behind the
// narration text. Plain image files are decoded directly; a PDF backdrop
// renders its first page.
package backdrop

import (
	"fmt"
	"image"
	"path/filepath"
	"strings"
)

// Loader produces one backdrop image.
type Loader interface {
	Load() (image.Image, error)
}

// Open picks a loader by file extension.
func Open(path string) (Loader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return &PDFLoader{Path: path, DPI: 150}, nil
	case ".png", ".jpg", ".jpeg":
		return &ImageLoader{Path: path}, nil
	default:
		return nil, fmt.Errorf("unsupported backdrop format: %s", path)
	}
}
