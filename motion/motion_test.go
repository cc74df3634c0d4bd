package motion

import (
	"image"
	"image/color"
	"testing"

	"github.com/edaniels/golog"
	"github.com/golang/geo/r2"
	"github.com/golang/geo/r3"
	geo "github.com/kellydunn/golang-geo"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/ioquatix/transform-flow/spatialmath"
	"github.com/ioquatix/transform-flow/utils"
)

var upright = r3.Vector{X: 0, Y: -1, Z: 0}

// stripes has vertical edges between columns edge-1 and edge.
func stripes(width, height int, edges ...int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		crossed := 0
		for _, e := range edges {
			if x >= e {
				crossed++
			}
		}
		c := color.RGBA{20, 20, 20, 255}
		if crossed%2 == 1 {
			c = color.RGBA{230, 230, 230, 255}
		}
		for y := 0; y < height; y++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func shiftedStripes(shift int) image.Image {
	edges := []int{20, 45, 70, 100, 130}
	for i := range edges {
		edges[i] += shift
	}
	return stripes(160, 160, edges...)
}

func lastNote(u Update) string {
	notes := HeaderOf(u).Notes
	if len(notes) == 0 {
		return ""
	}
	return notes[len(notes)-1]
}

func TestImageUpdate(t *testing.T) {
	u := NewImageUpdate(1, 0, image.NewRGBA(image.Rect(0, 0, 160, 120)), 0)
	test.That(t, u.FieldOfView, test.ShouldAlmostEqual, utils.DegToRad(DefaultFieldOfView))
	test.That(t, u.Width(), test.ShouldEqual, 160)
	test.That(t, utils.RadToDeg(u.AngleOf(8)), test.ShouldAlmostEqual, 2.75)
	test.That(t, u.PixelsOf(u.AngleOf(8)), test.ShouldAlmostEqual, 8)
	test.That(t, u.DistanceFromOrigin(), test.ShouldAlmostEqual, 80/0.5205670505, 1e-6)

	calls := 0
	lazy := NewLazyImageUpdate(2, 1, utils.DegToRad(60), func() (image.Image, error) {
		calls++
		return image.NewGray(image.Rect(0, 0, 10, 10)), nil
	})
	test.That(t, lazy.Width(), test.ShouldEqual, 0)
	test.That(t, lazy.AngleOf(5), test.ShouldEqual, 0)
	_, err := lazy.Image()
	test.That(t, err, test.ShouldBeNil)
	_, err = lazy.Image()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, calls, test.ShouldEqual, 1)
	test.That(t, lazy.Width(), test.ShouldEqual, 10)

	broken := NewLazyImageUpdate(3, 2, 0, func() (image.Image, error) {
		return nil, errors.New("gone")
	})
	_, err = broken.Image()
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "frame 2")

	u.AddNote("hello %d", 3)
	test.That(t, u.Notes, test.ShouldResemble, []string{"hello 3"})
	test.That(t, u.TimeOffset(), test.ShouldEqual, 1)
}

func TestHeadingUpdate(t *testing.T) {
	u := &HeadingUpdate{MagneticBearing: 10, TrueBearing: -1}
	test.That(t, u.Bearing(), test.ShouldEqual, 10)
	test.That(t, u.North(), test.ShouldResemble, spatialmath.DeviceNorth)
	u.TrueBearing = 12
	test.That(t, u.Bearing(), test.ShouldEqual, 12)
}

func TestBasicLocation(t *testing.T) {
	m := NewBasicSensorModel(0, golog.NewTestLogger(t))
	location, _ := m.Position()
	test.That(t, location, test.ShouldBeNil)

	fix := func(lat, acc float64) *LocationUpdate {
		return &LocationUpdate{Location: geo.NewPoint(lat, 0), Altitude: lat, HorizontalAccuracy: acc}
	}

	m.Update(fix(1, 50))
	location, altitude := m.Position()
	test.That(t, location.Lat(), test.ShouldEqual, 1)
	test.That(t, altitude, test.ShouldEqual, 1)

	// not good enough compared to 50
	m.Update(fix(2, 80))
	location, _ = m.Position()
	test.That(t, location.Lat(), test.ShouldEqual, 1)

	m.Update(fix(3, 10))
	m.Update(fix(4, 29))
	location, _ = m.Position()
	test.That(t, location.Lat(), test.ShouldEqual, 4)

	m.Update(fix(5, 50))
	location, _ = m.Position()
	test.That(t, location.Lat(), test.ShouldEqual, 4)

	// three degrees of latitude
	test.That(t, m.DistanceTravelled(), test.ShouldAlmostEqual, 333585, 1000)
}

func TestBasicBearing(t *testing.T) {
	m := NewBasicSensorModel(0, golog.NewTestLogger(t))
	test.That(t, m.LocalizationValid(), test.ShouldBeFalse)
	_, ok := m.Tilt()
	test.That(t, ok, test.ShouldBeFalse)

	m.Update(&HeadingUpdate{Header: Header{Time: 0}, MagneticBearing: 88, TrueBearing: 90})
	test.That(t, m.HeadingPrimed(), test.ShouldBeTrue)
	test.That(t, m.Bearing(), test.ShouldEqual, 90)

	m.Update(&MotionUpdate{Header: Header{Time: 0}, Gravity: upright})
	test.That(t, m.LocalizationValid(), test.ShouldBeTrue)
	tilt, ok := m.Tilt()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, tilt, test.ShouldEqual, 0)
	test.That(t, m.Bearing(), test.ShouldEqual, 90)

	// turning clockwise about the downward axis for one second
	m.Update(&MotionUpdate{
		Header:       Header{Time: 1},
		Gravity:      upright,
		RotationRate: spatialmath.AngularVelocity{Y: -0.1},
	})
	test.That(t, m.RelativeRotation(), test.ShouldAlmostEqual, 0.1)
	test.That(t, m.Bearing(), test.ShouldAlmostEqual, 95.1573077, 1e-6)

	// images do not affect the basic model
	m.Update(NewImageUpdate(2, 0, shiftedStripes(0), 0))
	test.That(t, m.Bearing(), test.ShouldAlmostEqual, 95.1573077, 1e-6)
	test.That(t, m.Gravity(), test.ShouldResemble, upright)
}

func primedHybrid(t *testing.T) (*HybridModel, golog.Logger) {
	t.Helper()
	logger := golog.NewTestLogger(t)
	m := NewHybridModel(HybridOptions{}, logger)
	m.Update(&HeadingUpdate{MagneticBearing: 90, TrueBearing: 90})
	m.Update(&MotionUpdate{Gravity: upright})
	return m, logger
}

func TestHybridModel(t *testing.T) {
	logger, logs := golog.NewObservedTestLogger(t)
	m := NewHybridModel(HybridOptions{}, logger)
	m.Update(&HeadingUpdate{MagneticBearing: 90, TrueBearing: 90})
	m.Update(&MotionUpdate{Gravity: upright})

	first := NewImageUpdate(0.1, 0, shiftedStripes(0), 0)
	m.Update(first)
	test.That(t, m.Bearing(), test.ShouldEqual, 90)
	test.That(t, lastNote(first), test.ShouldContainSubstring, "anchored")
	test.That(t, len(m.CurrentPoints().Offsets()), test.ShouldEqual, 45)

	// the scene moved right, so the camera turned left
	second := NewImageUpdate(0.2, 1, shiftedStripes(8), 0)
	m.Update(second)
	test.That(t, lastNote(second), test.ShouldContainSubstring, "hybrid update")
	test.That(t, m.Bearing(), test.ShouldAlmostEqual, 87.30498, 1e-4)
	test.That(t, m.BasicSensorModel.Bearing(), test.ShouldEqual, 90)
	test.That(t, len(logs.FilterMessageSnippet("hybrid update").All()), test.ShouldEqual, 1)

	// the gyro saw no rotation so the anchor is still the first frame
	third := NewImageUpdate(0.3, 2, shiftedStripes(16), 0)
	m.Update(third)
	test.That(t, lastNote(third), test.ShouldContainSubstring, "hybrid update")
	test.That(t, m.Bearing(), test.ShouldAlmostEqual, 84.60984, 1e-4)
}

func TestHybridReanchor(t *testing.T) {
	m, _ := primedHybrid(t)

	m.Update(NewImageUpdate(0, 0, shiftedStripes(0), 0))
	first := m.anchor

	// 2.75 degrees clockwise is 8 pixels at 55 degrees over 160 pixels
	m.Update(&MotionUpdate{
		Header:       Header{Time: 1},
		Gravity:      upright,
		RotationRate: spatialmath.AngularVelocity{Y: -utils.DegToRad(2.75)},
	})
	test.That(t, m.BasicSensorModel.Bearing(), test.ShouldAlmostEqual, 92.475076, 1e-5)

	second := NewImageUpdate(1, 1, shiftedStripes(-8), 0)
	m.Update(second)
	test.That(t, lastNote(second), test.ShouldContainSubstring, "hybrid update")
	test.That(t, m.Bearing(), test.ShouldAlmostEqual, 92.744502, 1e-5)

	test.That(t, m.anchor, test.ShouldNotEqual, first)
	test.That(t, m.anchor.points, test.ShouldEqual, m.CurrentPoints())
	test.That(t, m.anchor.bearing, test.ShouldEqual, m.Bearing())
}

func TestHybridSensorOnly(t *testing.T) {
	t.Run("no gravity", func(t *testing.T) {
		m := NewHybridModel(HybridOptions{}, golog.NewTestLogger(t))
		m.Update(&HeadingUpdate{TrueBearing: 45})
		u := NewImageUpdate(0, 0, shiftedStripes(0), 0)
		m.Update(u)
		test.That(t, lastNote(u), test.ShouldContainSubstring, "sensor-only")
		test.That(t, m.Bearing(), test.ShouldEqual, 45)
		test.That(t, m.CurrentPoints(), test.ShouldBeNil)
	})

	t.Run("featureless frames", func(t *testing.T) {
		m, _ := primedHybrid(t)
		m.Update(NewImageUpdate(0, 0, image.NewRGBA(image.Rect(0, 0, 160, 160)), 0))
		u := NewImageUpdate(0.1, 1, image.NewRGBA(image.Rect(0, 0, 160, 160)), 0)
		m.Update(u)
		test.That(t, lastNote(u), test.ShouldContainSubstring, "sensor-only")
		test.That(t, m.Bearing(), test.ShouldEqual, 90)
		test.That(t, m.CurrentPoints(), test.ShouldNotBeNil)
	})

	t.Run("missing image", func(t *testing.T) {
		logger, logs := golog.NewObservedTestLogger(t)
		m := NewHybridModel(HybridOptions{}, logger)
		m.Update(&HeadingUpdate{TrueBearing: 10})
		m.Update(&MotionUpdate{Gravity: upright})
		u := NewLazyImageUpdate(0, 7, 0, func() (image.Image, error) {
			return nil, errors.New("no such file")
		})
		m.Update(u)
		test.That(t, lastNote(u), test.ShouldContainSubstring, "image unavailable")
		test.That(t, len(logs.FilterMessageSnippet("cannot load frame").All()), test.ShouldEqual, 1)
		test.That(t, m.Bearing(), test.ShouldEqual, 10)
	})

	t.Run("follows the gyro until anchored", func(t *testing.T) {
		m := NewHybridModel(HybridOptions{}, golog.NewTestLogger(t))
		m.Update(&HeadingUpdate{TrueBearing: 90})
		m.Update(NewImageUpdate(0, 0, shiftedStripes(0), 0))
		m.Update(&MotionUpdate{Header: Header{Time: 1}, Gravity: upright})
		m.Update(&MotionUpdate{
			Header:       Header{Time: 2},
			Gravity:      upright,
			RotationRate: spatialmath.AngularVelocity{Y: -0.5},
		})
		test.That(t, m.anchor, test.ShouldBeNil)
		test.That(t, m.BasicSensorModel.Bearing(), test.ShouldBeGreaterThan, 100)
		test.That(t, m.Bearing(), test.ShouldEqual, m.BasicSensorModel.Bearing())
	})
}

type fakeMatcher struct {
	translation r2.Point
	err         error
}

func (f fakeMatcher) LocalTranslation(previous, next image.Image) (r2.Point, error) {
	return f.translation, f.err
}

func TestOpticalFlowModel(t *testing.T) {
	m := NewOpticalFlowModel(fakeMatcher{translation: r2.Point{X: 8, Y: 3}}, 0, golog.NewTestLogger(t))
	m.Update(&HeadingUpdate{TrueBearing: 90})
	m.Update(&MotionUpdate{Gravity: upright})

	first := NewImageUpdate(0, 0, shiftedStripes(0), 0)
	m.Update(first)
	test.That(t, lastNote(first), test.ShouldEqual, "first frame")
	test.That(t, m.Bearing(), test.ShouldEqual, 90)

	second := NewImageUpdate(0.1, 1, shiftedStripes(8), 0)
	m.Update(second)
	test.That(t, lastNote(second), test.ShouldContainSubstring, "optical flow update")
	test.That(t, m.Bearing(), test.ShouldAlmostEqual, 87.30498, 1e-4)

	failing := NewOpticalFlowModel(fakeMatcher{err: errors.New("no matches")}, 0, golog.NewTestLogger(t))
	failing.Update(&HeadingUpdate{TrueBearing: 90})
	failing.Update(&MotionUpdate{Gravity: upright})
	failing.Update(NewImageUpdate(0, 0, shiftedStripes(0), 0))
	u := NewImageUpdate(0.1, 1, shiftedStripes(8), 0)
	failing.Update(u)
	test.That(t, lastNote(u), test.ShouldContainSubstring, "matcher failed")
	test.That(t, failing.Bearing(), test.ShouldEqual, 90)
}

func TestModelsImplementModel(t *testing.T) {
	logger := golog.NewTestLogger(t)
	for _, m := range []Model{
		NewBasicSensorModel(0, logger),
		NewHybridModel(HybridOptions{}, logger),
		NewOpticalFlowModel(fakeMatcher{}, 0, logger),
	} {
		test.That(t, m.LocalizationValid(), test.ShouldBeFalse)
	}
}
