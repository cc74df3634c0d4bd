package motion

import (
	"math"

	"github.com/edaniels/golog"

	"github.com/ioquatix/transform-flow/alignment"
	"github.com/ioquatix/transform-flow/features"
	"github.com/ioquatix/transform-flow/utils"
)

// HybridOptions tune the image correction of a HybridModel.
type HybridOptions struct {
	// CompassBlend is passed to the underlying BasicSensorModel.
	CompassBlend float64
	// MinConfidence is the fewest matched bins needed to trust an image offset.
	MinConfidence int
	// ImageBlend is how far the corrected bearing moves towards the image bearing.
	ImageBlend float64
	// ReanchorPixels is the expected image motion beyond which the current
	// frame replaces the anchor.
	ReanchorPixels float64
	Scan           features.ScanOptions
	Alignment      []alignment.Option
}

// DefaultHybridOptions returns the options used for zero fields.
func DefaultHybridOptions() HybridOptions {
	return HybridOptions{
		CompassBlend:   DefaultCompassBlend,
		MinConfidence:  3,
		ImageBlend:     0.98,
		ReanchorPixels: 1,
		Scan:           features.DefaultScanOptions(),
	}
}

func (o HybridOptions) withDefaults() HybridOptions {
	d := DefaultHybridOptions()
	if o.CompassBlend <= 0 {
		o.CompassBlend = d.CompassBlend
	}
	if o.MinConfidence <= 0 {
		o.MinConfidence = d.MinConfidence
	}
	if o.ImageBlend <= 0 {
		o.ImageBlend = d.ImageBlend
	}
	if o.ReanchorPixels <= 0 {
		o.ReanchorPixels = d.ReanchorPixels
	}
	return o
}

// anchor is the frame later frames are compared against. A nil *anchor means
// no frame has been anchored yet.
type anchor struct {
	points           *features.Points
	relativeRotation float64
	bearing          float64
}

// HybridModel corrects the gyro and compass bearing of a BasicSensorModel by
// tracking how vertical edges move between video frames.
type HybridModel struct {
	*BasicSensorModel

	logger  golog.Logger
	options HybridOptions

	anchor    *anchor
	current   *features.Points
	corrected float64
}

// NewHybridModel returns a HybridModel with no anchor.
func NewHybridModel(options HybridOptions, logger golog.Logger) *HybridModel {
	options = options.withDefaults()
	return &HybridModel{
		BasicSensorModel: NewBasicSensorModel(options.CompassBlend, logger),
		logger:           logger,
		options:          options,
	}
}

// Update implements Model.
func (m *HybridModel) Update(u Update) {
	m.BasicSensorModel.Update(u)
	if image, ok := u.(*ImageUpdate); ok {
		m.updateImage(image)
	}
}

// Bearing is the corrected bearing as of the latest frame, or the sensor
// bearing until a frame has been anchored.
func (m *HybridModel) Bearing() float64 {
	if m.anchor == nil {
		return m.BasicSensorModel.Bearing()
	}
	return m.corrected
}

// CurrentPoints returns the features of the latest frame, nil if it could not be scanned.
func (m *HybridModel) CurrentPoints() *features.Points {
	return m.current
}

// skipFrame drops a frame that cannot be scanned. The corrected bearing is
// left alone.
func (m *HybridModel) skipFrame(u *ImageUpdate, reason string) {
	m.current = nil
	u.AddNote("sensor-only update: %s", reason)
	m.logger.Debugw("skipped frame", "frame", u.Index, "reason", reason)
}

// sensorOnly falls back to the sensor bearing for an anchored frame that
// could not be matched.
func (m *HybridModel) sensorOnly(u *ImageUpdate, reason string) {
	m.current = nil
	m.corrected = m.BasicSensorModel.Bearing()
	u.AddNote("sensor-only update: %s, bearing %.2f", reason, m.corrected)
	m.logger.Debugw("sensor-only update", "frame", u.Index, "reason", reason, "bearing", m.corrected)
}

func (m *HybridModel) updateImage(u *ImageUpdate) {
	if !m.LocalizationValid() {
		m.skipFrame(u, "localization invalid")
		return
	}
	tilt, ok := m.Tilt()
	if !ok {
		m.skipFrame(u, "gravity perpendicular to image")
		return
	}
	img, err := u.Image()
	if err != nil {
		m.logger.Warnw("cannot load frame", "frame", u.Index, "error", err)
		m.skipFrame(u, "image unavailable")
		return
	}

	points := features.NewPoints(m.options.Scan)
	points.Scan(img, tilt)
	m.current = points

	bearing := m.BasicSensorModel.Bearing()
	if m.anchor == nil {
		m.corrected = bearing
		m.anchor = &anchor{points: points, relativeRotation: m.RelativeRotation(), bearing: bearing}
		u.AddNote("anchored on frame %d with %d features", u.Index, len(points.Offsets()))
		m.logger.Debugw("anchored", "frame", u.Index, "features", len(points.Offsets()))
		return
	}

	// turning clockwise moves the scene towards -x
	estimate := u.PixelsOf(m.RelativeRotation() - m.anchor.relativeRotation)
	offset, err := m.anchor.points.Table().CalculateOffset(points.Table(), -estimate, m.options.Alignment...)
	if err != nil {
		m.logger.Warnw("cannot align frames", "frame", u.Index, "error", err)
		m.sensorOnly(u, "alignment failed")
		return
	}

	if offset.NumberOfSamples() >= m.options.MinConfidence {
		imageBearing := m.anchor.bearing - utils.RadToDeg(u.AngleOf(offset.Value()))
		m.corrected = utils.InterpolateAnglesDegrees(bearing, imageBearing, m.options.ImageBlend)
		u.AddNote("hybrid update: offset %.2f px from %d bins, image bearing %.2f, corrected %.2f",
			offset.Value(), offset.NumberOfSamples(), imageBearing, m.corrected)
		m.logger.Infow("hybrid update", "frame", u.Index, "offset", offset.Value(),
			"samples", offset.NumberOfSamples(), "estimate", estimate, "bearing", m.corrected)
	} else {
		m.sensorOnly(u, "not enough matching features")
		m.current = points
	}

	m.maybeReanchor(points, estimate)
}

// maybeReanchor moves the anchor to the current frame once the gyro expects the
// scene to have moved by more than the threshold.
func (m *HybridModel) maybeReanchor(points *features.Points, estimate float64) {
	if math.Abs(estimate) <= m.options.ReanchorPixels {
		return
	}
	m.anchor = &anchor{points: points, relativeRotation: m.RelativeRotation(), bearing: m.corrected}
}
