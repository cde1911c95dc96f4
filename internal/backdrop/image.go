package backdrop

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// ImageLoader decodes a PNG or JPEG backdrop.
type ImageLoader struct {
	Path string
}

func (l *ImageLoader) Load() (image.Image, error) {
	f, err := os.Open(l.Path)
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
