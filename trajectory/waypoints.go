package trajectory

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/mat"
)

// WaypointFile is the on-disk description of a trajectory: knot times, one waypoint
// value vector per knot, and the interpolation mode.
type WaypointFile struct {
	Times     []float64   `json:"times"`
	Waypoints [][]float64 `json:"waypoints"`
	Mode      string      `json:"mode"`
}

// ParseMode maps a mode name from a waypoint file to a Mode.
func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "euclidean":
		return Euclidean, nil
	case "rotation":
		return Rotation, nil
	default:
		return 0, errors.Wrapf(ErrInvalidMode, "%q", name)
	}
}

// ParseWaypointFile decodes and validates a JSON waypoint file. Structural issues
// are aggregated so a hand-edited file reports everything wrong with it at once.
func ParseWaypointFile(data []byte) (*WaypointFile, error) {
	var wf WaypointFile
	if err := json.Unmarshal(data, &wf); err != nil {
		return nil, errors.Wrap(err, "cannot parse waypoint file")
	}
	var result error
	if len(wf.Times) == 0 {
		result = multierr.Append(result, errors.New("no times specified"))
	}
	if len(wf.Waypoints) == 0 {
		result = multierr.Append(result, errors.New("no waypoints specified"))
	}
	if _, err := ParseMode(wf.Mode); err != nil {
		result = multierr.Append(result, err)
	}
	for i, wp := range wf.Waypoints {
		if len(wp) == 0 {
			result = multierr.Append(result, errors.Errorf("waypoint %d has no values", i))
			continue
		}
		if len(wp) != len(wf.Waypoints[0]) {
			result = multierr.Append(result,
				errors.Errorf("waypoint %d has %d values; expected %d", i, len(wp), len(wf.Waypoints[0])))
		}
	}
	if result != nil {
		return nil, result
	}
	return &wf, nil
}

// LoadWaypointFile reads and parses the waypoint file at the given path.
func LoadWaypointFile(path string) (*WaypointFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read waypoint file %q", path)
	}
	return ParseWaypointFile(data)
}

// Spline builds the CubicSpline the file describes.
func (wf *WaypointFile) Spline() (*CubicSpline, error) {
	mode, err := ParseMode(wf.Mode)
	if err != nil {
		return nil, err
	}
	if len(wf.Waypoints) == 0 {
		return nil, newDimensionMismatchError(len(wf.Times), 0)
	}
	nDims := len(wf.Waypoints[0])
	if nDims == 0 {
		return nil, errors.New("waypoints have no values")
	}
	waypoints := mat.NewDense(nDims, len(wf.Waypoints), nil)
	for j, wp := range wf.Waypoints {
		waypoints.SetCol(j, wp)
	}
	return NewCubicSpline(wf.Times, waypoints, mode)
}
