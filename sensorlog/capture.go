package sensorlog

import (
	"io"
	"os"
	"path/filepath"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/ioquatix/transform-flow/motion"
)

// File names looked for in a capture directory, in order of preference.
var (
	LogFiles            = []string{"log.csv", "log"}
	JSONLogFiles        = []string{"log.jsonl", "log.json"}
	TrackingPointsFiles = []string{"tracking-points.csv", "tracking-points"}
)

// Capture is a recorded session on disk.
type Capture struct {
	Dir            string
	Updates        []motion.Update
	TrackingPoints []TrackingPoint
	Frames         *FrameLoader
}

func firstExisting(dir string, names []string) (string, bool) {
	for _, name := range names {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

func readFile(path string, read func(r io.Reader) error) (err error) {
	f, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, "cannot open %q", path)
	}
	defer func() {
		err = multierr.Combine(err, f.Close())
	}()
	return read(f)
}

// Open reads the sensor log and tracking points of the capture in dir. A CSV
// log is preferred over an iPhone JSON log. Tracking points are optional.
func Open(dir string, logger golog.Logger) (*Capture, error) {
	c := &Capture{Dir: dir, Frames: NewFrameLoader(dir)}

	var err error
	if path, ok := firstExisting(dir, LogFiles); ok {
		err = readFile(path, func(r io.Reader) (err error) {
			c.Updates, err = ReadCSV(r, c.Frames, logger)
			return err
		})
	} else if path, ok := firstExisting(dir, JSONLogFiles); ok {
		err = readFile(path, func(r io.Reader) (err error) {
			c.Updates, err = ReadJSONLines(r, logger)
			return err
		})
	} else {
		err = errors.Errorf("no sensor log in %q", dir)
	}
	if err != nil {
		return nil, err
	}

	if path, ok := firstExisting(dir, TrackingPointsFiles); ok {
		err = readFile(path, func(r io.Reader) (err error) {
			c.TrackingPoints, err = ReadTrackingPoints(r)
			return err
		})
		if err != nil {
			return nil, err
		}
	} else {
		logger.Debugw("no tracking points", "dir", dir)
	}

	logger.Debugw("opened capture", "dir", dir, "updates", len(c.Updates), "tracking_points", len(c.TrackingPoints))
	return c, nil
}
