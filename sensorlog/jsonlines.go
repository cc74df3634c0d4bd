package sensorlog

import (
	"bufio"
	"encoding/json"
	"io"
	"strconv"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	geo "github.com/kellydunn/golang-geo"
	"github.com/pkg/errors"

	"github.com/ioquatix/transform-flow/motion"
	"github.com/ioquatix/transform-flow/spatialmath"
)

// iphoneMeasurement is one line streamed by the iPhone SensorLog app. Values
// arrive as strings and any of them may be absent.
type iphoneMeasurement struct {
	Timestamp *string `json:"motionTimestamp_sinceReboot"`

	RotationRateX *string `json:"motionRotationRateX"`
	RotationRateY *string `json:"motionRotationRateY"`
	RotationRateZ *string `json:"motionRotationRateZ"`

	UserAccelerationX *string `json:"motionUserAccelerationX"`
	UserAccelerationY *string `json:"motionUserAccelerationY"`
	UserAccelerationZ *string `json:"motionUserAccelerationZ"`

	GravityX *string `json:"motionGravityX"`
	GravityY *string `json:"motionGravityY"`
	GravityZ *string `json:"motionGravityZ"`

	MagneticHeading *string `json:"locationMagneticHeading"`
	TrueHeading     *string `json:"locationTrueHeading"`

	Latitude           *string `json:"locationLatitude"`
	Longitude          *string `json:"locationLongitude"`
	Altitude           *string `json:"locationAltitude"`
	HorizontalAccuracy *string `json:"locationHorizontalAccuracy"`
	VerticalAccuracy   *string `json:"locationVerticalAccuracy"`
}

func parseFloats(values ...*string) ([]float64, bool, error) {
	out := make([]float64, len(values))
	for i, v := range values {
		if v == nil {
			return nil, false, nil
		}
		f, err := strconv.ParseFloat(*v, 64)
		if err != nil {
			return nil, false, err
		}
		out[i] = f
	}
	return out, true, nil
}

func (m iphoneMeasurement) updates(start *float64) ([]motion.Update, error) {
	ts, ok, err := parseFloats(m.Timestamp)
	if err != nil || !ok {
		return nil, errors.Wrap(errOrMissing(err, "timestamp"), "bad measurement")
	}
	if *start < 0 {
		*start = ts[0]
	}
	header := motion.Header{Time: ts[0] - *start}

	var out []motion.Update

	rate, haveRate, err := parseFloats(m.RotationRateX, m.RotationRateY, m.RotationRateZ)
	if err != nil {
		return nil, errors.Wrap(err, "rotation rate")
	}
	gravity, haveGravity, err := parseFloats(m.GravityX, m.GravityY, m.GravityZ)
	if err != nil {
		return nil, errors.Wrap(err, "gravity")
	}
	acceleration, _, err := parseFloats(m.UserAccelerationX, m.UserAccelerationY, m.UserAccelerationZ)
	if err != nil {
		return nil, errors.Wrap(err, "acceleration")
	}
	if haveRate && haveGravity {
		u := &motion.MotionUpdate{
			Header:       header,
			RotationRate: spatialmath.AngularVelocity{X: rate[0], Y: rate[1], Z: rate[2]},
			Gravity:      r3.Vector{X: gravity[0], Y: gravity[1], Z: gravity[2]},
		}
		if acceleration != nil {
			u.Acceleration = r3.Vector{X: acceleration[0], Y: acceleration[1], Z: acceleration[2]}
		}
		out = append(out, u)
	}

	heading, haveHeading, err := parseFloats(m.MagneticHeading, m.TrueHeading)
	if err != nil {
		return nil, errors.Wrap(err, "heading")
	}
	if haveHeading {
		out = append(out, &motion.HeadingUpdate{Header: header, MagneticBearing: heading[0], TrueBearing: heading[1]})
	}

	location, haveLocation, err := parseFloats(m.Latitude, m.Longitude, m.Altitude, m.HorizontalAccuracy, m.VerticalAccuracy)
	if err != nil {
		return nil, errors.Wrap(err, "location")
	}
	if haveLocation {
		out = append(out, &motion.LocationUpdate{
			Header:             header,
			Location:           geo.NewPoint(location[0], location[1]),
			Altitude:           location[2],
			HorizontalAccuracy: location[3],
			VerticalAccuracy:   location[4],
		})
	}
	return out, nil
}

func errOrMissing(err error, field string) error {
	if err != nil {
		return err
	}
	return errors.Errorf("missing %s", field)
}

// ReadJSONLines parses a stream of iPhone SensorLog JSON measurements, one per
// line. Times are relative to the first measurement. Lines that cannot be
// decoded are logged and skipped.
func ReadJSONLines(r io.Reader, logger golog.Logger) ([]motion.Update, error) {
	reader := bufio.NewReader(r)
	start := -1.0
	var updates []motion.Update
	for line := 1; ; line++ {
		text, err := reader.ReadString('\n')
		if len(text) > 0 {
			var m iphoneMeasurement
			if jsonErr := json.Unmarshal([]byte(text), &m); jsonErr != nil {
				logger.Warnw("skipping undecodable line", "line", line, "error", jsonErr)
			} else if us, parseErr := m.updates(&start); parseErr != nil {
				logger.Warnw("skipping measurement", "line", line, "error", parseErr)
			} else {
				updates = append(updates, us...)
			}
		}
		if errors.Is(err, io.EOF) {
			return updates, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading line %d", line)
		}
	}
}
