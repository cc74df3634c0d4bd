package sensorlog

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/edaniels/golog"
	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"github.com/ioquatix/transform-flow/motion"
	"github.com/ioquatix/transform-flow/spatialmath"
	"github.com/ioquatix/transform-flow/utils"
)

const sampleLog = `0, Gyroscope, 0.00, 0.1, -0.2, 0.3
1, Accelerometer, 0.00, 0.0, 0.0, 0.01
2, Gravity, 0.00, 0.0, -1.0, 0.0
3, Motion, 0.01
4, Heading, 0.02, 88.5, 90.5
5, Location, 0.03, -43.5, 172.6, 12.0, 5.0, 8.0
6, Frame, 0.04, 0
7, Frame, 0.08, 1, 60
8, Bogus, 0.09, 1
9, Heading, 0.10, not-a-number, 1
`

type fakeFrames map[int]image.Image

func (f fakeFrames) Frame(index int) (image.Image, error) {
	img, ok := f[index]
	if !ok {
		return nil, os.ErrNotExist
	}
	return img, nil
}

func TestReadCSV(t *testing.T) {
	logger, logs := golog.NewObservedTestLogger(t)
	frames := fakeFrames{0: image.NewGray(image.Rect(0, 0, 32, 24))}

	updates, err := ReadCSV(strings.NewReader(sampleLog), frames, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(updates), test.ShouldEqual, 5)
	test.That(t, len(logs.FilterMessageSnippet("skipping malformed row").All()), test.ShouldEqual, 2)

	m, ok := updates[0].(*motion.MotionUpdate)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, m.Time, test.ShouldEqual, 0.01)
	test.That(t, m.RotationRate, test.ShouldResemble, spatialmath.AngularVelocity{X: 0.1, Y: -0.2, Z: 0.3})
	test.That(t, m.Acceleration, test.ShouldResemble, r3.Vector{Z: 0.01})
	test.That(t, m.Gravity, test.ShouldResemble, r3.Vector{Y: -1})

	h, ok := updates[1].(*motion.HeadingUpdate)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, h.MagneticBearing, test.ShouldEqual, 88.5)
	test.That(t, h.TrueBearing, test.ShouldEqual, 90.5)

	l, ok := updates[2].(*motion.LocationUpdate)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, l.Location.Lat(), test.ShouldEqual, -43.5)
	test.That(t, l.Location.Lng(), test.ShouldEqual, 172.6)
	test.That(t, l.Altitude, test.ShouldEqual, 12.0)
	test.That(t, l.HorizontalAccuracy, test.ShouldEqual, 5.0)
	test.That(t, l.VerticalAccuracy, test.ShouldEqual, 8.0)

	first, ok := updates[3].(*motion.ImageUpdate)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, first.Index, test.ShouldEqual, 0)
	test.That(t, first.FieldOfView, test.ShouldAlmostEqual, utils.DegToRad(motion.DefaultFieldOfView))
	img, err := first.Image()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 32)

	second := updates[4].(*motion.ImageUpdate)
	test.That(t, second.FieldOfView, test.ShouldAlmostEqual, utils.DegToRad(60))
	_, err = second.Image()
	test.That(t, err, test.ShouldNotBeNil)
}

func TestReadJSONLines(t *testing.T) {
	logger := golog.NewTestLogger(t)
	input := strings.Join([]string{
		`{"motionTimestamp_sinceReboot":"100.5","motionRotationRateX":"0.1","motionRotationRateY":"0.2",` +
			`"motionRotationRateZ":"0.3","motionGravityX":"0","motionGravityY":"-1","motionGravityZ":"0"}`,
		`{"motionTimestamp_sinceReboot":"101.0","locationMagneticHeading":"10","locationTrueHeading":"12",` +
			`"locationLatitude":"1","locationLongitude":"2","locationAltitude":"3",` +
			`"locationHorizontalAccuracy":"4","locationVerticalAccuracy":"5"}`,
		`not json`,
		`{"motionRotationRateX":"0.1"}`,
		`{"motionTimestamp_sinceReboot":"102","motionRotationRateX":"x","motionRotationRateY":"0","motionRotationRateZ":"0"}`,
	}, "\n")

	updates, err := ReadJSONLines(strings.NewReader(input), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(updates), test.ShouldEqual, 3)

	m := updates[0].(*motion.MotionUpdate)
	test.That(t, m.Time, test.ShouldEqual, 0)
	test.That(t, m.RotationRate.Y, test.ShouldEqual, 0.2)
	test.That(t, m.Gravity, test.ShouldResemble, r3.Vector{Y: -1})

	h := updates[1].(*motion.HeadingUpdate)
	test.That(t, h.Time, test.ShouldEqual, 0.5)
	test.That(t, h.Bearing(), test.ShouldEqual, 12)

	l := updates[2].(*motion.LocationUpdate)
	test.That(t, l.Location.Lng(), test.ShouldEqual, 2)
	test.That(t, l.VerticalAccuracy, test.ShouldEqual, 5)
}

func TestReadTrackingPoints(t *testing.T) {
	points, err := ReadTrackingPoints(strings.NewReader("0, 1, 10.5, 20\n1, 1, 11, 21, 3\n2, 3\n"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, points, test.ShouldResemble, []TrackingPoint{
		{Frame: 0, Index: 1, Coordinate: r3.Vector{X: 10.5, Y: 20}},
		{Frame: 1, Index: 1, Coordinate: r3.Vector{X: 11, Y: 21, Z: 3}},
	})

	_, err = ReadTrackingPoints(strings.NewReader("0, 1, x, 20\n"))
	test.That(t, err, test.ShouldNotBeNil)
}

func writeCapture(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	test.That(t, os.WriteFile(filepath.Join(dir, "log.csv"), []byte(sampleLog), 0o600), test.ShouldBeNil)
	test.That(t, os.WriteFile(filepath.Join(dir, "tracking-points.csv"), []byte("0, 0, 1, 2\n"), 0o600), test.ShouldBeNil)

	img := image.NewRGBA(image.Rect(0, 0, 16, 8))
	img.Set(3, 4, color.RGBA{200, 100, 50, 255})
	test.That(t, imaging.Save(img, filepath.Join(dir, "0.png")), test.ShouldBeNil)
	return dir
}

func TestOpenCapture(t *testing.T) {
	dir := writeCapture(t)

	capture, err := Open(dir, golog.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(capture.Updates), test.ShouldEqual, 5)
	test.That(t, len(capture.TrackingPoints), test.ShouldEqual, 1)

	frame := capture.Updates[3].(*motion.ImageUpdate)
	img, err := frame.Image()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 16)
	r, g, b, _ := img.At(3, 4).RGBA()
	test.That(t, []uint32{r >> 8, g >> 8, b >> 8}, test.ShouldResemble, []uint32{200, 100, 50})

	// cached after the first load
	again, err := capture.Frames.Frame(0)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, again, test.ShouldEqual, img)

	_, err = capture.Frames.Path(1)
	test.That(t, err, test.ShouldNotBeNil)

	_, err = Open(t.TempDir(), golog.NewTestLogger(t))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestFrameLoaderPPM(t *testing.T) {
	dir := t.TempDir()
	raw := append([]byte("P6\n2 1\n255\n"), 255, 0, 0, 0, 0, 255)
	test.That(t, os.WriteFile(filepath.Join(dir, "3.ppm"), raw, 0o600), test.ShouldBeNil)

	loader := NewFrameLoader(dir)
	path, err := loader.Path(3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, path, test.ShouldEqual, filepath.Join(dir, "3.ppm"))

	img, err := loader.Frame(3)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Bounds().Dx(), test.ShouldEqual, 2)
	r, g, b, _ := img.At(1, 0).RGBA()
	test.That(t, []uint32{r >> 8, g >> 8, b >> 8}, test.ShouldResemble, []uint32{0, 0, 255})

	test.That(t, os.WriteFile(filepath.Join(dir, "4.png"), []byte("not an image"), 0o600), test.ShouldBeNil)
	_, err = loader.Frame(4)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot decode frame 4")
}
