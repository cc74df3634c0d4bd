// Package sensorlog reads recorded captures: a log of sensor readings, the
// video frames they refer to and optional hand placed tracking points.
package sensorlog

import (
	"encoding/csv"
	"image"
	"io"
	"strconv"
	"strings"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	geo "github.com/kellydunn/golang-geo"
	"github.com/pkg/errors"

	"github.com/ioquatix/transform-flow/motion"
	"github.com/ioquatix/transform-flow/spatialmath"
	"github.com/ioquatix/transform-flow/utils"
)

// Row kinds in a CSV capture log.
const (
	KindGyroscope     = "Gyroscope"
	KindAccelerometer = "Accelerometer"
	KindGravity       = "Gravity"
	KindMotion        = "Motion"
	KindLocation      = "Location"
	KindHeading       = "Heading"
	KindFrame         = "Frame"
)

// A FrameSource loads video frames by index.
type FrameSource interface {
	Frame(index int) (image.Image, error)
}

type row []string

func (r row) float(i int) (float64, error) {
	if i >= len(r) {
		return 0, errors.Errorf("missing column %d", i)
	}
	v, err := strconv.ParseFloat(r[i], 64)
	return v, errors.Wrapf(err, "column %d", i)
}

func (r row) vector(from int) (r3.Vector, error) {
	var v r3.Vector
	var err error
	if v.X, err = r.float(from); err != nil {
		return v, err
	}
	if v.Y, err = r.float(from + 1); err != nil {
		return v, err
	}
	v.Z, err = r.float(from + 2)
	return v, err
}

// ReadCSV parses a capture log. Each row is "index, kind, time, values...".
// Gyroscope, Accelerometer and Gravity rows accumulate into the next Motion
// row. Frames are loaded lazily from frames. Unknown or malformed rows are
// skipped and logged.
func ReadCSV(r io.Reader, frames FrameSource, logger golog.Logger) ([]motion.Update, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	reader.Comment = '#'

	var updates []motion.Update
	var pending motion.MotionUpdate
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading log line %d", line)
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if len(record) < 3 {
			continue
		}

		u, err := parseRow(row(record), &pending, frames)
		if err != nil {
			logger.Warnw("skipping malformed row", "line", line, "error", err)
			continue
		}
		if u != nil {
			updates = append(updates, u)
		}
	}
	return updates, nil
}

func parseRow(r row, pending *motion.MotionUpdate, frames FrameSource) (motion.Update, error) {
	kind := r[1]
	time, err := r.float(2)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindGyroscope:
		rate, err := r.vector(3)
		pending.RotationRate = spatialmath.AngularVelocity(rate)
		return nil, err
	case KindAccelerometer:
		pending.Acceleration, err = r.vector(3)
		return nil, err
	case KindGravity:
		pending.Gravity, err = r.vector(3)
		return nil, err
	case KindMotion:
		u := &motion.MotionUpdate{
			Header:       motion.Header{Time: time},
			RotationRate: pending.RotationRate,
			Acceleration: pending.Acceleration,
			Gravity:      pending.Gravity,
		}
		return u, nil
	case KindLocation:
		values := make([]float64, 5)
		for i := range values {
			if values[i], err = r.float(3 + i); err != nil {
				return nil, err
			}
		}
		return &motion.LocationUpdate{
			Header:             motion.Header{Time: time},
			Location:           geo.NewPoint(values[0], values[1]),
			Altitude:           values[2],
			HorizontalAccuracy: values[3],
			VerticalAccuracy:   values[4],
		}, nil
	case KindHeading:
		magnetic, err := r.float(3)
		if err != nil {
			return nil, err
		}
		trueBearing, err := r.float(4)
		if err != nil {
			return nil, err
		}
		return &motion.HeadingUpdate{
			Header:          motion.Header{Time: time},
			MagneticBearing: magnetic,
			TrueBearing:     trueBearing,
		}, nil
	case KindFrame:
		if len(r) < 4 {
			return nil, errors.New("missing frame index")
		}
		index, err := strconv.Atoi(r[3])
		if err != nil {
			return nil, errors.Wrap(err, "frame index")
		}
		var fov float64
		if len(r) >= 5 {
			degrees, err := r.float(4)
			if err != nil {
				return nil, err
			}
			fov = utils.DegToRad(degrees)
		}
		return motion.NewLazyImageUpdate(time, index, fov, func() (image.Image, error) {
			if frames == nil {
				return nil, errors.New("no frame source")
			}
			return frames.Frame(index)
		}), nil
	default:
		return nil, errors.Errorf("unknown row kind %q", kind)
	}
}
