package motion

import (
	"image"
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"

	"github.com/ioquatix/transform-flow/utils"
)

// A Matcher estimates how far the scene moved between two frames, in pixels
// with a bottom-left origin. Implementations typically wrap a feature matcher
// from a computer vision library.
type Matcher interface {
	LocalTranslation(previous, next image.Image) (r2.Point, error)
}

// OpticalFlowModel corrects a BasicSensorModel using frame to frame
// translations reported by a Matcher.
type OpticalFlowModel struct {
	*BasicSensorModel

	logger     golog.Logger
	matcher    Matcher
	imageBlend float64

	previous      image.Image
	corrected     float64
	haveCorrected bool
}

// NewOpticalFlowModel returns a model using matcher. A zero imageBlend
// selects the hybrid default.
func NewOpticalFlowModel(matcher Matcher, imageBlend float64, logger golog.Logger) *OpticalFlowModel {
	if imageBlend <= 0 {
		imageBlend = DefaultHybridOptions().ImageBlend
	}
	return &OpticalFlowModel{
		BasicSensorModel: NewBasicSensorModel(DefaultCompassBlend, logger),
		logger:           logger,
		matcher:          matcher,
		imageBlend:       imageBlend,
	}
}

// Update implements Model.
func (m *OpticalFlowModel) Update(u Update) {
	m.BasicSensorModel.Update(u)
	if image, ok := u.(*ImageUpdate); ok {
		m.updateImage(image)
	}
}

// Bearing implements Model.
func (m *OpticalFlowModel) Bearing() float64 {
	if !m.haveCorrected {
		return m.BasicSensorModel.Bearing()
	}
	return m.corrected
}

func (m *OpticalFlowModel) updateImage(u *ImageUpdate) {
	bearing := m.BasicSensorModel.Bearing()
	previous, previousBearing := m.previous, m.Bearing()
	m.previous = nil
	m.corrected, m.haveCorrected = bearing, true

	tilt, ok := m.Tilt()
	if !ok {
		u.AddNote("sensor-only update: no tilt")
		return
	}
	img, err := u.Image()
	if err != nil {
		m.logger.Warnw("cannot load frame", "frame", u.Index, "error", err)
		u.AddNote("sensor-only update: image unavailable")
		return
	}
	m.previous = img
	if previous == nil {
		u.AddNote("first frame")
		return
	}

	translation, err := m.matcher.LocalTranslation(previous, img)
	if err != nil {
		m.logger.Warnw("matcher failed", "frame", u.Index, "error", err)
		u.AddNote("sensor-only update: matcher failed")
		return
	}
	// the component of the motion perpendicular to gravity
	sin, cos := math.Sincos(tilt)
	horizontal := translation.Dot(r2.Point{X: cos, Y: sin})

	imageBearing := previousBearing - utils.RadToDeg(u.AngleOf(horizontal))
	m.corrected = utils.InterpolateAnglesDegrees(bearing, imageBearing, m.imageBlend)
	u.AddNote("optical flow update: %.2f px, corrected %.2f", horizontal, m.corrected)
	m.logger.Debugw("optical flow update", "frame", u.Index, "translation", translation, "bearing", m.corrected)
}
