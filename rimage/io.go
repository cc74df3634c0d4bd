package rimage

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// NewImageFromFile decodes the image at fn, honoring EXIF orientation.
func NewImageFromFile(fn string) (*Image, error) {
	img, err := imaging.Open(fn, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open image %q", fn)
	}
	return NewImageFromStdImage(img), nil
}

// WriteImageToFile encodes img with a format chosen from the file extension.
func WriteImageToFile(fn string, img image.Image) error {
	return errors.Wrapf(imaging.Save(img, fn), "cannot write image %q", fn)
}
