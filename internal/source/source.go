package source

import (
	"fmt"
	"image"
	"strings"
)

// SceneSource provides the ordered still images of a clip: index 0 is the
// hook scene, the last index the outro scene, interior indices span the body.
type SceneSource interface {
	Count() int
	Scene(index int) (image.Image, error)
	Close() error
}

// Open picks a source implementation by path: a PDF storyboard renders its
// pages as scenes, anything else is treated as an image file or directory.
func Open(path string, dpi int) (SceneSource, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return NewFitzSource(path, dpi)
	}
	return NewImageSource(path)
}

// LoadAll decodes every scene up front. Playback swaps whole scene sequences
// atomically, so the decoded slice is the unit of exchange.
func LoadAll(src SceneSource) ([]image.Image, error) {
	scenes := make([]image.Image, 0, src.Count())
	for i := 0; i < src.Count(); i++ {
		img, err := src.Scene(i)
		if err != nil {
			return nil, fmt.Errorf("scene %d: %w", i, err)
		}
		scenes = append(scenes, img)
	}
	return scenes, nil
}
