// Package trajectory generates continuous, twice-differentiable motion references
// from sparse time-stamped waypoints.
//
// A CubicSpline is built once from a time vector and a waypoint matrix and then
// queried at arbitrary times for position, velocity, and acceleration. Euclidean
// mode interpolates the waypoint values directly; Rotation mode interpolates
// per-segment rotation-difference vectors produced with
// spatialmath.OrientationError, letting a control loop drive orientation through
// the same vector-space spline math.
package trajectory

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/trajgen/spatialmath"
)

// Mode selects how waypoint values are interpreted during interpolation.
type Mode uint8

const (
	// Euclidean interpolates waypoint values as free coordinates in R^m.
	Euclidean Mode = iota + 1
	// Rotation interpolates per-segment rotation-difference vectors; each segment
	// starts from zero displacement relative to the orientation at its first knot.
	Rotation
)

func (m Mode) String() string {
	switch m {
	case Euclidean:
		return "euclidean"
	case Rotation:
		return "rotation"
	default:
		return "unknown"
	}
}

const minWaypoints = 3

// CubicSpline is a C2-continuous piecewise cubic interpolant over a set of knots.
// It is immutable once constructed and therefore safe for unsynchronized concurrent
// reads; every query is a bounded evaluation of the stored per-segment polynomial
// coefficients, independent of how many queries came before.
type CubicSpline struct {
	mode      Mode
	times     []float64
	waypoints *mat.Dense // m x n, one column per knot

	// per-dimension, per-segment cubic coefficients, each m x (n-1):
	// position(tau) = a + b*tau + c*tau^2 + d*tau^3
	a, b, c, d *mat.Dense
}

// NewCubicSpline builds a cubic spline through the given waypoints. times holds one
// strictly increasing timestamp per waypoint; waypoints holds one m-dimensional
// column per knot. At least three knots are required. All validation failures are
// reported before any model state is retained.
func NewCubicSpline(times []float64, waypoints *mat.Dense, mode Mode) (*CubicSpline, error) {
	var nWaypoints, nDims int
	if waypoints != nil {
		nDims, nWaypoints = waypoints.Dims()
	}
	if len(times) != nWaypoints {
		return nil, newDimensionMismatchError(len(times), nWaypoints)
	}
	if nWaypoints < minWaypoints {
		return nil, newInsufficientPointsError(nWaypoints)
	}
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] {
			return nil, newUnorderedTimeError(i, times[i-1], times[i])
		}
		// a repeated timestamp would divide the system assembly by a zero gap and
		// poison the whole model with NaN
		if times[i] == times[i-1] {
			return nil, newRepeatedTimeError(i, times[i])
		}
	}

	var coupling, difference *mat.Dense
	switch mode {
	case Euclidean:
		coupling, difference = assembleEuclideanSystem(times)
	case Rotation:
		coupling, difference = assembleRotationSystem(times)
	default:
		return nil, newInvalidModeError(mode)
	}

	// Solve coupling * sdd = difference * values for the second derivatives at every
	// knot, one right-hand-side column per dimension.
	var rhs mat.Dense
	rhs.Mul(difference, waypoints.T())
	var sdd mat.Dense
	if err := sdd.Solve(coupling, &rhs); err != nil {
		return nil, errors.Wrap(err, "spline system is singular")
	}

	s := &CubicSpline{
		mode:      mode,
		times:     append([]float64{}, times...),
		waypoints: mat.DenseCopyOf(waypoints),
		a:         mat.NewDense(nDims, nWaypoints-1, nil),
		b:         mat.NewDense(nDims, nWaypoints-1, nil),
		c:         mat.NewDense(nDims, nWaypoints-1, nil),
		d:         mat.NewDense(nDims, nWaypoints-1, nil),
	}
	s.deriveCoefficients(&sdd)
	return s, nil
}

// NewCubicSplineFromOrientations builds a Rotation-mode spline through a sequence of
// unit-quaternion orientation waypoints. Column j of the generated waypoint matrix is
// the rotation difference carrying orientation j to orientation j+1; the final column
// is zero. Queries return the displacement within the active segment relative to that
// segment's starting orientation, which the caller composes back onto it.
func NewCubicSplineFromOrientations(times []float64, orientations []quat.Number) (*CubicSpline, error) {
	if len(times) != len(orientations) {
		return nil, newDimensionMismatchError(len(times), len(orientations))
	}
	if len(orientations) < minWaypoints {
		return nil, newInsufficientPointsError(len(orientations))
	}
	waypoints := mat.NewDense(3, len(orientations), nil)
	for j := 0; j+1 < len(orientations); j++ {
		diff := spatialmath.OrientationError(orientations[j], orientations[j+1])
		waypoints.SetCol(j, []float64{diff.X, diff.Y, diff.Z})
	}
	return NewCubicSpline(times, waypoints, Rotation)
}

// assembleEuclideanSystem builds the banded coupling and value-difference matrices
// whose solution is the knot second derivatives of a Euclidean spline. The first row
// pins the initial rate to zero and the last row fixes the terminal rate so that
// acceleration stays continuous into the final knot.
func assembleEuclideanSystem(times []float64) (coupling, difference *mat.Dense) {
	n := len(times)
	coupling = mat.NewDense(n, n, nil)
	difference = mat.NewDense(n, n, nil)

	dtFirst := times[1] - times[0]
	coupling.Set(0, 0, dtFirst/3)
	coupling.Set(0, 1, dtFirst/6)
	difference.Set(0, 0, -1/dtFirst)
	difference.Set(0, 1, 1/dtFirst)

	for i := 1; i < n-1; i++ {
		dt1 := times[i] - times[i-1]
		dt2 := times[i+1] - times[i]
		coupling.Set(i, i-1, dt1/6)
		coupling.Set(i, i, (dt1+dt2)/3)
		coupling.Set(i, i+1, dt2/6)
		difference.Set(i, i-1, 1/dt1)
		difference.Set(i, i, -1/dt1-1/dt2)
		difference.Set(i, i+1, 1/dt2)
	}

	dtLast := times[n-1] - times[n-2]
	coupling.Set(n-1, n-2, dtLast/6)
	coupling.Set(n-1, n-1, dtLast/3)
	difference.Set(n-1, n-2, 1/dtLast)
	difference.Set(n-1, n-1, -1/dtLast)
	return coupling, difference
}

// assembleRotationSystem is the Rotation-mode analogue of assembleEuclideanSystem.
// Waypoint column j holds the rotation displacement across segment j, so each
// segment restarts from zero rather than from the previous knot's value; the
// difference matrix drops the terms a free starting value would contribute.
func assembleRotationSystem(times []float64) (coupling, difference *mat.Dense) {
	n := len(times)
	coupling = mat.NewDense(n, n, nil)
	difference = mat.NewDense(n, n, nil)

	dtFirst := times[1] - times[0]
	coupling.Set(0, 0, dtFirst/3)
	coupling.Set(0, 1, dtFirst/6)
	difference.Set(0, 0, 1/dtFirst)

	for i := 1; i < n-1; i++ {
		dt1 := times[i] - times[i-1]
		dt2 := times[i+1] - times[i]
		coupling.Set(i, i-1, dt1/6)
		coupling.Set(i, i, (dt1+dt2)/3)
		coupling.Set(i, i+1, dt2/6)
		difference.Set(i, i-1, -1/dt1)
		difference.Set(i, i, 1/dt2)
	}

	dtLast := times[n-1] - times[n-2]
	coupling.Set(n-1, n-2, dtLast/6)
	coupling.Set(n-1, n-1, dtLast/3)
	difference.Set(n-1, n-2, -1/dtLast)
	return coupling, difference
}

// deriveCoefficients fills the per-segment polynomial coefficients from the solved
// second derivatives. sdd is n x m with one column per dimension.
func (s *CubicSpline) deriveCoefficients(sdd *mat.Dense) {
	nDims, nWaypoints := s.waypoints.Dims()
	nSegments := nWaypoints - 1
	for i := 0; i < nDims; i++ {
		for j := 0; j < nSegments; j++ {
			dt := s.times[j+1] - s.times[j]
			sddStart := sdd.At(j, i)
			sddEnd := sdd.At(j+1, i)

			s.c.Set(i, j, sddStart/2)
			s.d.Set(i, j, (sddEnd-sddStart)/(6*dt))

			if s.mode == Euclidean {
				s.a.Set(i, j, s.waypoints.At(i, j))
			}

			switch {
			case j == 0:
				// zero initial rate
				s.b.Set(i, j, 0)
			case j == nSegments-1:
				// terminal rate consistent with acceleration continuity
				s.b.Set(i, j, -0.5*dt*(sddEnd+sddStart))
			default:
				ds := s.segmentDisplacement(i, j)
				s.b.Set(i, j, ds/dt-dt*(sddEnd+2*sddStart)/6)
			}
		}
	}
}

// segmentDisplacement is the value change the spline must cover across segment j in
// dimension i. In Rotation mode each segment starts from zero, so the displacement
// is the waypoint value itself rather than a knot-to-knot difference.
func (s *CubicSpline) segmentDisplacement(i, j int) float64 {
	if s.mode == Rotation {
		return s.waypoints.At(i, j)
	}
	return s.waypoints.At(i, j+1) - s.waypoints.At(i, j)
}

// Evaluate samples the trajectory at time t, returning position, velocity, and
// acceleration references, one value per dimension. Times outside the knot range are
// clamped to the first or last waypoint with zero rates; a late or stale query must
// never halt a control loop. Evaluate never fails and never mutates the spline.
func (s *CubicSpline) Evaluate(t float64) (pos, vel, acc []float64) {
	nDims, nWaypoints := s.waypoints.Dims()
	pos = make([]float64, nDims)
	vel = make([]float64, nDims)
	acc = make([]float64, nDims)

	if t <= s.times[0] {
		mat.Col(pos, 0, s.waypoints)
		return pos, vel, acc
	}
	if t >= s.times[nWaypoints-1] {
		mat.Col(pos, nWaypoints-1, s.waypoints)
		return pos, vel, acc
	}

	// Scan backward for the last segment whose start time is <= t; correct for
	// non-uniform knot spacing.
	j := nWaypoints - 2
	for j > 0 && t < s.times[j] {
		j--
	}

	tau := t - s.times[j]
	for i := 0; i < nDims; i++ {
		b := s.b.At(i, j)
		c := s.c.At(i, j)
		d := s.d.At(i, j)
		pos[i] = s.a.At(i, j) + b*tau + c*tau*tau + d*tau*tau*tau
		vel[i] = b + 2*c*tau + 3*d*tau*tau
		acc[i] = 2*c + 6*d*tau
	}
	return pos, vel, acc
}

// Mode returns the interpolation mode the spline was built with.
func (s *CubicSpline) Mode() Mode {
	return s.mode
}

// StartTime returns the first knot time.
func (s *CubicSpline) StartTime() float64 {
	return s.times[0]
}

// EndTime returns the last knot time.
func (s *CubicSpline) EndTime() float64 {
	return s.times[len(s.times)-1]
}

// Duration returns the total time spanned by the trajectory.
func (s *CubicSpline) Duration() float64 {
	return s.EndTime() - s.StartTime()
}

// Times returns a copy of the knot times.
func (s *CubicSpline) Times() []float64 {
	return append([]float64{}, s.times...)
}

// Dimensions returns the number of interpolated dimensions.
func (s *CubicSpline) Dimensions() int {
	nDims, _ := s.waypoints.Dims()
	return nDims
}

// Segments returns the number of polynomial segments.
func (s *CubicSpline) Segments() int {
	return len(s.times) - 1
}

// Waypoint returns a copy of the j-th waypoint column.
func (s *CubicSpline) Waypoint(j int) []float64 {
	col := make([]float64, s.Dimensions())
	mat.Col(col, j, s.waypoints)
	return col
}
