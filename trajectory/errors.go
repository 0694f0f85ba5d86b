package trajectory

import "github.com/pkg/errors"

// Sentinel errors for the distinct construction failures. Callers can react to each
// independently via errors.Is.
var (
	// ErrDimensionMismatch is returned when the time vector and waypoint matrix
	// disagree on the number of knots.
	ErrDimensionMismatch = errors.New("timestamp count does not match waypoint count")

	// ErrInsufficientPoints is returned when fewer than three waypoints are supplied.
	ErrInsufficientPoints = errors.New("at least three waypoints are required")

	// ErrUnorderedTime is returned when timestamps are not non-decreasing.
	ErrUnorderedTime = errors.New("timestamps must be non-decreasing")

	// ErrRepeatedTime is returned when two knots share a timestamp; a zero-length
	// segment has no well-defined polynomial.
	ErrRepeatedTime = errors.New("repeated timestamps produce a zero-length segment")

	// ErrInvalidMode is returned when the interpolation mode is not one of the
	// defined Mode values.
	ErrInvalidMode = errors.New("unrecognized interpolation mode")
)

func newDimensionMismatchError(nTimes, nWaypoints int) error {
	return errors.Wrapf(ErrDimensionMismatch, "%d timestamps, %d waypoints", nTimes, nWaypoints)
}

func newInsufficientPointsError(nWaypoints int) error {
	return errors.Wrapf(ErrInsufficientPoints, "got %d", nWaypoints)
}

func newUnorderedTimeError(idx int, prev, cur float64) error {
	return errors.Wrapf(ErrUnorderedTime, "t[%d]=%f precedes t[%d]=%f", idx, cur, idx-1, prev)
}

func newRepeatedTimeError(idx int, t float64) error {
	return errors.Wrapf(ErrRepeatedTime, "t[%d]=t[%d]=%f", idx-1, idx, t)
}

func newInvalidModeError(mode Mode) error {
	return errors.Wrapf(ErrInvalidMode, "mode %d", mode)
}
