// Package spatialmath defines spatial mathematical operations on orientations.
package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// OrientationError returns the minimal rotation carrying actual to desired, as the
// vector part of desired * conj(actual). Both inputs must be unit quaternions. The
// magnitude of the result approximates the rotation angle in radians for small
// differences, which makes it directly usable as an orientation feedback signal.
func OrientationError(actual, desired quat.Number) r3.Vector {
	// q and -q describe the same rotation; pick the representative of desired on the
	// same hemisphere as actual so the error tracks the shorter angular path.
	if quatDot(actual, desired) < 0 {
		desired = Flip(desired)
	}
	return r3.Vector{
		X: actual.Real*desired.Imag - desired.Real*actual.Imag - (desired.Jmag*actual.Kmag - desired.Kmag*actual.Jmag),
		Y: actual.Real*desired.Jmag - desired.Real*actual.Jmag - (desired.Kmag*actual.Imag - desired.Imag*actual.Kmag),
		Z: actual.Real*desired.Kmag - desired.Real*actual.Kmag - (desired.Imag*actual.Jmag - desired.Jmag*actual.Imag),
	}
}

// Flip will multiply a quaternion by -1, returning a quaternion representing the same
// orientation but in the opposing hemisphere.
func Flip(q quat.Number) quat.Number {
	return quat.Number{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}
}

// Normalize returns the unit quaternion in the direction of q.
func Normalize(q quat.Number) quat.Number {
	length := math.Sqrt(q.Real*q.Real + q.Imag*q.Imag + q.Jmag*q.Jmag + q.Kmag*q.Kmag)
	if math.Abs(length-1) < 1e-10 {
		return q
	}
	if length == 0 {
		return quat.Number{Real: 1}
	}
	if math.IsInf(length, 1) {
		length = math.MaxFloat64
	}
	return quat.Number{Real: q.Real / length, Imag: q.Imag / length, Jmag: q.Jmag / length, Kmag: q.Kmag / length}
}

// QuaternionAlmostEqual reports whether two quaternions represent the same orientation
// to within tol, accounting for the double cover.
func QuaternionAlmostEqual(q1, q2 quat.Number, tol float64) bool {
	if quatDot(q1, q2) < 0 {
		q2 = Flip(q2)
	}
	diff := quat.Sub(q1, q2)
	return math.Sqrt(diff.Real*diff.Real+diff.Imag*diff.Imag+diff.Jmag*diff.Jmag+diff.Kmag*diff.Kmag) < tol
}

// RotationVectorToQuaternion converts a rotation vector (axis scaled by angle in
// radians) to a unit quaternion.
func RotationVectorToQuaternion(v r3.Vector) quat.Number {
	angle := v.Norm()
	if angle < 1e-12 {
		return quat.Number{Real: 1}
	}
	axis := v.Mul(1 / angle)
	s := math.Sin(angle / 2)
	return quat.Number{
		Real: math.Cos(angle / 2),
		Imag: axis.X * s,
		Jmag: axis.Y * s,
		Kmag: axis.Z * s,
	}
}

// QuaternionToRotationVector converts a unit quaternion to a rotation vector, the
// inverse of RotationVectorToQuaternion.
func QuaternionToRotationVector(q quat.Number) r3.Vector {
	if q.Real < 0 {
		q = Flip(q)
	}
	imag := r3.Vector{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	s := imag.Norm()
	if s < 1e-12 {
		return r3.Vector{}
	}
	angle := 2 * math.Atan2(s, q.Real)
	return imag.Mul(angle / s)
}

func quatDot(q1, q2 quat.Number) float64 {
	return q1.Real*q2.Real + q1.Imag*q2.Imag + q1.Jmag*q2.Jmag + q1.Kmag*q2.Kmag
}
