package sensorlog

import (
	"image"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/disintegration/imaging"
	_ "github.com/lmittmann/ppm" // register ppm
	"github.com/pkg/errors"
)

// FrameExtensions are tried in order when looking for a frame on disk.
var FrameExtensions = []string{".png", ".jpg", ".jpeg", ".ppm"}

// FrameLoader loads frames named "<index>.<ext>" from a directory and keeps
// them once loaded.
type FrameLoader struct {
	dir string

	mu     sync.Mutex
	frames map[int]image.Image
}

// NewFrameLoader returns a loader reading from dir.
func NewFrameLoader(dir string) *FrameLoader {
	return &FrameLoader{dir: dir, frames: map[int]image.Image{}}
}

// Path returns the file holding frame index, or an error if none exists.
func (l *FrameLoader) Path(index int) (string, error) {
	for _, ext := range FrameExtensions {
		path := filepath.Join(l.dir, strconv.Itoa(index)+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", errors.Errorf("no image for frame %d in %q", index, l.dir)
}

// Frame implements FrameSource.
func (l *FrameLoader) Frame(index int) (image.Image, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if img, ok := l.frames[index]; ok {
		return img, nil
	}
	path, err := l.Path(index)
	if err != nil {
		return nil, err
	}
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot decode frame %d", index)
	}
	l.frames[index] = img
	return img, nil
}
