package sensorlog

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

// TrackingPoint is a hand placed reference point in a frame.
type TrackingPoint struct {
	Frame      int
	Index      int
	Coordinate r3.Vector
}

// ReadTrackingPoints parses rows of "frame, tracking index, x, y[, z]". Rows
// with fewer than four columns are ignored.
func ReadTrackingPoints(r io.Reader) ([]TrackingPoint, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var points []TrackingPoint
	for line := 1; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return points, nil
		}
		if err != nil {
			return nil, errors.Wrapf(err, "reading tracking points line %d", line)
		}
		if len(record) < 4 {
			continue
		}

		values := make([]float64, len(record))
		for i, field := range record {
			if values[i], err = strconv.ParseFloat(strings.TrimSpace(field), 64); err != nil {
				return nil, errors.Wrapf(err, "tracking points line %d column %d", line, i)
			}
		}
		p := TrackingPoint{
			Frame:      int(values[0]),
			Index:      int(values[1]),
			Coordinate: r3.Vector{X: values[2], Y: values[3]},
		}
		if len(values) >= 5 {
			p.Coordinate.Z = values[4]
		}
		points = append(points, p)
	}
}
