package utils

import (
	"math"
	"testing"

	"go.viam.com/test"
)

func TestAngles(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldEqual, math.Pi)
	test.That(t, RadToDeg(math.Pi/2), test.ShouldEqual, 90)
	test.That(t, ModAngDeg(-10), test.ShouldEqual, 350)
	test.That(t, ModAngDeg(370), test.ShouldAlmostEqual, 10)
	test.That(t, AngleDiffDeg(350, 10), test.ShouldAlmostEqual, 20)
	test.That(t, AngleDiffDeg(10, 350), test.ShouldAlmostEqual, 20)
	test.That(t, AngleDiffDeg(90, 270), test.ShouldAlmostEqual, 180)
}

func TestInterpolateAngles(t *testing.T) {
	t.Run("wraps through north", func(t *testing.T) {
		v := InterpolateAnglesDegrees(350, 10, 0.5)
		test.That(t, AngleDiffDeg(v, 0), test.ShouldBeLessThan, 1e-9)
	})

	t.Run("endpoints", func(t *testing.T) {
		test.That(t, InterpolateAnglesDegrees(30, 100, 0), test.ShouldAlmostEqual, 30)
		test.That(t, InterpolateAnglesDegrees(30, 100, 1), test.ShouldAlmostEqual, 100)
	})

	t.Run("midpoint on the short arc", func(t *testing.T) {
		test.That(t, InterpolateAnglesDegrees(80, 100, 0.5), test.ShouldAlmostEqual, 90)
		test.That(t, InterpolateAnglesRadians(-0.1, 0.1, 0.5), test.ShouldAlmostEqual, 0)
	})

	t.Run("small blend stays close", func(t *testing.T) {
		v := InterpolateAnglesDegrees(10, 20, 0.1)
		test.That(t, v, test.ShouldBeGreaterThan, 10)
		test.That(t, v, test.ShouldBeLessThan, 12)
	})
}

func TestIntHelpers(t *testing.T) {
	test.That(t, AbsInt(-3), test.ShouldEqual, 3)
	test.That(t, MaxInt(2, 5), test.ShouldEqual, 5)
	test.That(t, MinInt(2, 5), test.ShouldEqual, 2)
	test.That(t, SquareInt(-4), test.ShouldEqual, 16)
}
