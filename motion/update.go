// Package motion fuses sensor updates into an estimate of the camera's
// orientation and bearing.
package motion

import (
	"fmt"
	"image"
	"math"
	"sync"

	"github.com/golang/geo/r3"
	geo "github.com/kellydunn/golang-geo"
	"github.com/pkg/errors"

	"github.com/ioquatix/transform-flow/spatialmath"
	"github.com/ioquatix/transform-flow/utils"
)

// DefaultFieldOfView is the horizontal field of view assumed when a frame does
// not record one, in degrees.
const DefaultFieldOfView = 55.0

// Header is common to every update.
type Header struct {
	// Time is seconds since the start of the capture.
	Time  float64
	Notes []string
}

// TimeOffset returns the time of the update in seconds.
func (h *Header) TimeOffset() float64 {
	return h.Time
}

// AddNote records a human readable note about how the update was processed.
func (h *Header) AddNote(format string, args ...interface{}) {
	h.Notes = append(h.Notes, fmt.Sprintf(format, args...))
}

// Update is one of *LocationUpdate, *HeadingUpdate, *MotionUpdate or *ImageUpdate.
type Update interface {
	header() *Header
}

func (h *Header) header() *Header {
	return h
}

// HeaderOf returns the header of u.
func HeaderOf(u Update) *Header {
	return u.header()
}

// LocationUpdate is a position fix.
type LocationUpdate struct {
	Header
	Location           *geo.Point
	Altitude           float64
	HorizontalAccuracy float64
	VerticalAccuracy   float64
}

// HeadingUpdate is a compass reading of the device north axis, in degrees.
type HeadingUpdate struct {
	Header
	MagneticBearing float64
	// TrueBearing is negative when unavailable.
	TrueBearing float64
	DeviceNorth r3.Vector
}

// Bearing returns the true bearing when available, otherwise the magnetic one.
func (u *HeadingUpdate) Bearing() float64 {
	if u.TrueBearing >= 0 {
		return u.TrueBearing
	}
	return u.MagneticBearing
}

// North returns the device axis the heading refers to.
func (u *HeadingUpdate) North() r3.Vector {
	if u.DeviceNorth.Norm() == 0 {
		return spatialmath.DeviceNorth
	}
	return u.DeviceNorth
}

// MotionUpdate is a combined gyroscope and accelerometer reading in device coordinates.
type MotionUpdate struct {
	Header
	RotationRate spatialmath.AngularVelocity
	Acceleration r3.Vector
	Gravity      r3.Vector
}

// ImageUpdate is a video frame.
type ImageUpdate struct {
	Header
	Index int
	// FieldOfView is the horizontal field of view in radians.
	FieldOfView float64

	mu    sync.Mutex
	img   image.Image
	width int
	load  func() (image.Image, error)
}

// NewImageUpdate creates an update for an image already in memory. A zero
// fieldOfView selects DefaultFieldOfView.
func NewImageUpdate(time float64, index int, img image.Image, fieldOfView float64) *ImageUpdate {
	u := &ImageUpdate{Header: Header{Time: time}, Index: index, FieldOfView: fieldOfViewOrDefault(fieldOfView), img: img}
	if img != nil {
		u.width = img.Bounds().Dx()
	}
	return u
}

// NewLazyImageUpdate creates an update whose image is loaded on first use.
func NewLazyImageUpdate(time float64, index int, fieldOfView float64, load func() (image.Image, error)) *ImageUpdate {
	return &ImageUpdate{Header: Header{Time: time}, Index: index, FieldOfView: fieldOfViewOrDefault(fieldOfView), load: load}
}

func fieldOfViewOrDefault(fov float64) float64 {
	if fov <= 0 {
		return utils.DegToRad(DefaultFieldOfView)
	}
	return fov
}

// Image returns the frame, loading it if needed.
func (u *ImageUpdate) Image() (image.Image, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.img != nil {
		return u.img, nil
	}
	if u.load == nil {
		return nil, errors.Errorf("frame %d has no image", u.Index)
	}
	img, err := u.load()
	if err != nil {
		return nil, errors.Wrapf(err, "cannot load frame %d", u.Index)
	}
	u.img = img
	u.width = img.Bounds().Dx()
	return img, nil
}

// Width returns the frame width in pixels, or 0 if the image has not been loaded.
func (u *ImageUpdate) Width() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.width
}

// AngleOf converts a horizontal distance in pixels to radians.
func (u *ImageUpdate) AngleOf(pixels float64) float64 {
	width := u.Width()
	if width == 0 {
		return 0
	}
	return u.FieldOfView / float64(width) * pixels
}

// PixelsOf converts an angle in radians to a horizontal distance in pixels.
func (u *ImageUpdate) PixelsOf(angle float64) float64 {
	if u.FieldOfView == 0 {
		return 0
	}
	return angle * float64(u.Width()) / u.FieldOfView
}

// DistanceFromOrigin is the focal length in pixels implied by the field of view.
func (u *ImageUpdate) DistanceFromOrigin() float64 {
	return float64(u.Width()) / 2 / math.Tan(u.FieldOfView/2)
}
