// Package videostream replays a capture through a motion model and collects
// the estimated camera state at every video frame.
package videostream

import (
	"math"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/num/quat"

	"github.com/ioquatix/transform-flow/features"
	"github.com/ioquatix/transform-flow/motion"
	"github.com/ioquatix/transform-flow/sensorlog"
	"github.com/ioquatix/transform-flow/spatialmath"
	"github.com/ioquatix/transform-flow/utils"
)

// Frame is the model state when a video frame arrived.
type Frame struct {
	// Index counts video frames from zero in log order.
	Index  int
	Update *motion.ImageUpdate
	// Valid is false when gravity or tilt were unknown; the remaining fields
	// are then zero.
	Valid bool

	Gravity r3.Vector
	Bearing float64
	Tilt    float64
	// Heading is the bearing as a unit vector in the local east-north-up frame.
	Heading r3.Vector
	// Orientation takes device coordinates into the local east-north-up frame.
	Orientation quat.Number

	Points         *features.Points
	TrackingPoints map[int]sensorlog.TrackingPoint
}

// pointsSource is implemented by models that scan frames themselves.
type pointsSource interface {
	CurrentPoints() *features.Points
}

// Stream is a sequence of frames.
type Stream struct {
	frames []Frame
}

// New feeds every update to model in order and records a Frame for each image update.
func New(updates []motion.Update, model motion.Model, scan features.ScanOptions, logger golog.Logger) *Stream {
	s := &Stream{}
	for _, u := range updates {
		model.Update(u)

		image, ok := u.(*motion.ImageUpdate)
		if !ok {
			continue
		}
		frame := Frame{Index: len(s.frames), Update: image}
		tilt, tiltOK := model.Tilt()
		frame.Valid = model.LocalizationValid() && tiltOK

		if frame.Valid {
			frame.Gravity = model.Gravity().Normalize()
			frame.Bearing = model.Bearing()
			frame.Tilt = tilt
			sin, cos := math.Sincos(utils.DegToRad(frame.Bearing))
			frame.Heading = r3.Vector{X: sin, Y: cos, Z: 0}
			frame.Orientation = spatialmath.LocalCameraTransform(frame.Gravity, frame.Bearing)
			frame.Points = framePoints(model, image, tilt, scan, logger)
		}

		s.frames = append(s.frames, frame)
	}
	logger.Debugw("assembled video stream", "frames", len(s.frames), "updates", len(updates))
	return s
}

func framePoints(model motion.Model, u *motion.ImageUpdate, tilt float64, scan features.ScanOptions, logger golog.Logger) *features.Points {
	if source, ok := model.(pointsSource); ok {
		if points := source.CurrentPoints(); points != nil {
			return points
		}
	}
	img, err := u.Image()
	if err != nil {
		logger.Warnw("cannot scan frame", "frame", u.Index, "error", err)
		return nil
	}
	points := features.NewPoints(scan)
	points.Scan(img, tilt)
	return points
}

// Frames returns every frame in order.
func (s *Stream) Frames() []Frame {
	return s.frames
}

// ValidFrames returns the frames with a known orientation.
func (s *Stream) ValidFrames() []Frame {
	return lo.Filter(s.frames, func(f Frame, _ int) bool {
		return f.Valid
	})
}

// Bearings returns the bearing of every valid frame.
func (s *Stream) Bearings() []float64 {
	return lo.FilterMap(s.frames, func(f Frame, _ int) (float64, bool) {
		return f.Bearing, f.Valid
	})
}

// AttachTrackingPoints adds tracking points to the frames they belong to.
func (s *Stream) AttachTrackingPoints(points []sensorlog.TrackingPoint) error {
	for _, p := range points {
		if p.Frame < 0 || p.Frame >= len(s.frames) {
			return errors.Errorf("tracking point %d refers to frame %d of %d", p.Index, p.Frame, len(s.frames))
		}
		frame := &s.frames[p.Frame]
		if frame.TrackingPoints == nil {
			frame.TrackingPoints = map[int]sensorlog.TrackingPoint{}
		}
		frame.TrackingPoints[p.Index] = p
	}
	return nil
}
