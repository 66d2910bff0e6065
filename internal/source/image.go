package source

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
)

// ImageSource serves scene stills from a directory (sorted by filename, so
// generation order survives) or a single image file.
type ImageSource struct {
	paths []string
}

func NewImageSource(path string) (*ImageSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				ext := filepath.Ext(entry.Name())
				if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
					paths = append(paths, filepath.Join(path, entry.Name()))
				}
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no scene images found in %s", path)
	}

	return &ImageSource{paths: paths}, nil
}

func (s *ImageSource) Count() int {
	return len(s.paths)
}

func (s *ImageSource) Scene(index int) (image.Image, error) {
	f, err := os.Open(s.paths[index])
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

// Replace swaps a single scene file path, used when one image is regenerated
// without touching the rest of the sequence.
func (s *ImageSource) Replace(index int, path string) error {
	if index < 0 || index >= len(s.paths) {
		return fmt.Errorf("scene index %d out of range", index)
	}
	s.paths[index] = path
	return nil
}

func (s *ImageSource) Close() error {
	return nil
}
