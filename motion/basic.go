package motion

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	geo "github.com/kellydunn/golang-geo"

	"github.com/ioquatix/transform-flow/spatialmath"
	"github.com/ioquatix/transform-flow/utils"
)

// DefaultCompassBlend is how far each gyro integrated bearing is pulled towards the compass.
const DefaultCompassBlend = 0.1

const (
	initialHorizontalAccuracy = 100
	minimumHorizontalAccuracy = 20

	// a fix is accepted unless it is this much worse than the best seen
	accuracyTolerance = 1.5
)

// BasicSensorModel tracks gravity, position and bearing from the device
// sensors alone. The gyroscope drives the bearing and the compass slowly pulls
// it back.
type BasicSensorModel struct {
	logger       golog.Logger
	compassBlend float64

	gravity r3.Vector

	location               *geo.Point
	altitude               float64
	bestHorizontalAccuracy float64
	distance               float64

	bearing           float64
	normalizedBearing float64
	headingPrimed     bool

	motionPrimed     bool
	lastMotionTime   float64
	relativeRotation float64
}

// NewBasicSensorModel returns a model with no state. A zero compassBlend
// selects DefaultCompassBlend.
func NewBasicSensorModel(compassBlend float64, logger golog.Logger) *BasicSensorModel {
	if compassBlend <= 0 {
		compassBlend = DefaultCompassBlend
	}
	return &BasicSensorModel{
		logger:                 logger,
		compassBlend:           compassBlend,
		bestHorizontalAccuracy: initialHorizontalAccuracy,
	}
}

// Update implements Model.
func (m *BasicSensorModel) Update(u Update) {
	switch u := u.(type) {
	case *LocationUpdate:
		m.updateLocation(u)
	case *HeadingUpdate:
		m.updateHeading(u)
	case *MotionUpdate:
		m.updateMotion(u)
	case *ImageUpdate:
	default:
		m.logger.Warnw("ignoring unknown update", "type", u)
	}
}

func (m *BasicSensorModel) updateLocation(u *LocationUpdate) {
	if u.Location == nil || u.HorizontalAccuracy >= m.bestHorizontalAccuracy*accuracyTolerance {
		m.logger.Debugw("rejected location", "time", u.Time, "accuracy", u.HorizontalAccuracy, "best", m.bestHorizontalAccuracy)
		return
	}
	if m.location != nil {
		// kilometres
		m.distance += m.location.GreatCircleDistance(u.Location) * 1000
	}
	m.location = u.Location
	m.altitude = u.Altitude
	m.bestHorizontalAccuracy = math.Max(u.HorizontalAccuracy, minimumHorizontalAccuracy)
}

func (m *BasicSensorModel) updateHeading(u *HeadingUpdate) {
	m.normalizedBearing = spatialmath.NormalizedBearing(u.Bearing(), u.North(), m.gravity, spatialmath.CameraAxis)
	if !m.headingPrimed {
		m.bearing = m.normalizedBearing
		m.headingPrimed = true
	}
}

func (m *BasicSensorModel) updateMotion(u *MotionUpdate) {
	m.gravity = u.Gravity
	if m.motionPrimed {
		dt := u.Time - m.lastMotionTime
		// rotation about the downward axis turns the camera clockwise seen from above
		aboutGravity := u.RotationRate.About(m.gravity) * dt
		m.relativeRotation += aboutGravity
		if m.headingPrimed {
			m.bearing = utils.InterpolateAnglesDegrees(m.bearing+utils.RadToDeg(aboutGravity), m.normalizedBearing, m.compassBlend)
		}
	}
	m.motionPrimed = true
	m.lastMotionTime = u.Time
}

// Gravity implements Model.
func (m *BasicSensorModel) Gravity() r3.Vector {
	return m.gravity
}

// Position implements Model.
func (m *BasicSensorModel) Position() (*geo.Point, float64) {
	return m.location, m.altitude
}

// DistanceTravelled is the sum of great circle distances between accepted fixes, in metres.
func (m *BasicSensorModel) DistanceTravelled() float64 {
	return m.distance
}

// Bearing implements Model.
func (m *BasicSensorModel) Bearing() float64 {
	return m.bearing
}

// HeadingPrimed reports whether a compass reading has been seen.
func (m *BasicSensorModel) HeadingPrimed() bool {
	return m.headingPrimed
}

// RelativeRotation is the rotation about gravity integrated from the gyroscope, in radians.
func (m *BasicSensorModel) RelativeRotation() float64 {
	return m.relativeRotation
}

// Tilt implements Model.
func (m *BasicSensorModel) Tilt() (float64, bool) {
	return spatialmath.Tilt(m.gravity)
}

// LocalizationValid implements Model.
func (m *BasicSensorModel) LocalizationValid() bool {
	return m.gravity.Norm() > 0
}
