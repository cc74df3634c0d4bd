package motion

import (
	"github.com/golang/geo/r3"
	geo "github.com/kellydunn/golang-geo"
)

// A Model consumes sensor updates in time order and estimates the device state.
// Updates must not go back in time; they are not reordered.
type Model interface {
	Update(u Update)

	// Gravity in device coordinates, zero until known.
	Gravity() r3.Vector
	// Position returns the best accepted location fix, nil until one arrives.
	Position() (*geo.Point, float64)
	// Bearing of the camera axis in degrees clockwise from north.
	Bearing() float64
	// Tilt of the image relative to gravity in radians. The boolean is false
	// when no tilt can be computed.
	Tilt() (float64, bool)
	// LocalizationValid reports whether gravity is known.
	LocalizationValid() bool
}
