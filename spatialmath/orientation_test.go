package spatialmath

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"
	"gonum.org/v1/gonum/num/quat"
)

func quatFromAxisAngle(axis r3.Vector, angle float64) quat.Number {
	axis = axis.Normalize()
	s := math.Sin(angle / 2)
	return quat.Number{Real: math.Cos(angle / 2), Imag: axis.X * s, Jmag: axis.Y * s, Kmag: axis.Z * s}
}

func TestOrientationErrorZero(t *testing.T) {
	for _, q := range []quat.Number{
		{Real: 1},
		quatFromAxisAngle(r3.Vector{Z: 1}, 0.5),
		quatFromAxisAngle(r3.Vector{X: 1, Y: -2, Z: 0.5}, 2.7),
	} {
		e := OrientationError(q, q)
		test.That(t, e.Norm(), test.ShouldAlmostEqual, 0, 1e-9)
		// identical up to sign is still identical
		e = OrientationError(q, Flip(q))
		test.That(t, e.Norm(), test.ShouldAlmostEqual, 0, 1e-9)
	}
}

func TestOrientationErrorDoubleCover(t *testing.T) {
	actual := quatFromAxisAngle(r3.Vector{X: 1, Z: 1}, 0.4)
	desired := quatFromAxisAngle(r3.Vector{Y: 1, Z: -1}, 2.9)

	e1 := OrientationError(actual, desired)
	e2 := OrientationError(actual, Flip(desired))
	test.That(t, e1.X, test.ShouldAlmostEqual, e2.X, 1e-12)
	test.That(t, e1.Y, test.ShouldAlmostEqual, e2.Y, 1e-12)
	test.That(t, e1.Z, test.ShouldAlmostEqual, e2.Z, 1e-12)

	// the flip must not leak back to the caller
	test.That(t, desired, test.ShouldResemble, quatFromAxisAngle(r3.Vector{Y: 1, Z: -1}, 2.9))
}

func TestOrientationErrorSmallRotations(t *testing.T) {
	identity := quat.Number{Real: 1}
	for _, tc := range []struct {
		name  string
		axis  r3.Vector
		angle float64
	}{
		{"about x", r3.Vector{X: 1}, 0.01},
		{"about y", r3.Vector{Y: 1}, 0.05},
		{"about z", r3.Vector{Z: 1}, -0.02},
		{"skew axis", r3.Vector{X: 1, Y: 1, Z: 1}, 0.03},
	} {
		t.Run(tc.name, func(t *testing.T) {
			desired := quatFromAxisAngle(tc.axis, tc.angle)
			e := OrientationError(identity, desired)
			// for small errors the vector points along the rotation axis with
			// magnitude sin(angle/2) ~ angle/2
			test.That(t, e.Norm(), test.ShouldAlmostEqual, math.Abs(math.Sin(tc.angle/2)), 1e-9)
			expected := tc.axis.Normalize().Mul(math.Sin(tc.angle / 2))
			test.That(t, e.X, test.ShouldAlmostEqual, expected.X, 1e-9)
			test.That(t, e.Y, test.ShouldAlmostEqual, expected.Y, 1e-9)
			test.That(t, e.Z, test.ShouldAlmostEqual, expected.Z, 1e-9)
		})
	}
}

func TestNormalize(t *testing.T) {
	q := Normalize(quat.Number{Real: 2, Imag: 2, Jmag: 2, Kmag: 2})
	test.That(t, q.Real, test.ShouldAlmostEqual, 0.5, 1e-12)
	test.That(t, q.Imag, test.ShouldAlmostEqual, 0.5, 1e-12)

	q = Normalize(quat.Number{})
	test.That(t, q, test.ShouldResemble, quat.Number{Real: 1})
}

func TestQuaternionAlmostEqual(t *testing.T) {
	q := quatFromAxisAngle(r3.Vector{X: 1, Y: 2, Z: 3}, 1.1)
	test.That(t, QuaternionAlmostEqual(q, q, 1e-8), test.ShouldBeTrue)
	test.That(t, QuaternionAlmostEqual(q, Flip(q), 1e-8), test.ShouldBeTrue)
	other := quatFromAxisAngle(r3.Vector{X: 1, Y: 2, Z: 3}, 1.2)
	test.That(t, QuaternionAlmostEqual(q, other, 1e-8), test.ShouldBeFalse)
}

func TestRotationVectorRoundTrip(t *testing.T) {
	for _, v := range []r3.Vector{
		{},
		{X: 0.1},
		{Y: -0.7, Z: 0.3},
		{X: 1.2, Y: -0.4, Z: 2.1},
	} {
		q := RotationVectorToQuaternion(v)
		back := QuaternionToRotationVector(q)
		test.That(t, back.X, test.ShouldAlmostEqual, v.X, 1e-9)
		test.That(t, back.Y, test.ShouldAlmostEqual, v.Y, 1e-9)
		test.That(t, back.Z, test.ShouldAlmostEqual, v.Z, 1e-9)
	}
}
