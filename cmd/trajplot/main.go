// Package main contains a command to sample a waypoint file's trajectory and plot
// the resulting references.
package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go.viam.com/trajgen/trajectory"
)

var logger = golog.NewDevelopmentLogger("trajplot")

func main() {
	utils.ContextualMain(mainWithArgs, logger)
}

// Arguments for the command.
type Arguments struct {
	WaypointFile string `flag:"0,required,usage=path to waypoint JSON file"`
	StepMs       int    `flag:"step,default=10,usage=sample step in milliseconds"`
	Out          string `flag:"out,default=trajectory.png,usage=output plot path"`
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	var argsParsed Arguments
	if err := utils.ParseFlags(args, &argsParsed); err != nil {
		return err
	}
	if argsParsed.StepMs <= 0 {
		return errors.New("step must be positive")
	}
	step := time.Duration(argsParsed.StepMs) * time.Millisecond

	wf, err := trajectory.LoadWaypointFile(argsParsed.WaypointFile)
	if err != nil {
		return err
	}
	traj, err := wf.Spline()
	if err != nil {
		return errors.Wrap(err, "cannot build trajectory")
	}
	logger.Infow("trajectory built",
		"mode", traj.Mode(),
		"dimensions", traj.Dimensions(),
		"segments", traj.Segments(),
		"duration", traj.Duration(),
	)

	return plotTrajectory(traj, step.Seconds(), argsParsed.Out)
}

// plotTrajectory samples the trajectory densely and writes position, velocity, and
// acceleration traces for every dimension to a single image.
func plotTrajectory(traj *trajectory.CubicSpline, step float64, out string) error {
	p := plot.New()
	p.Title.Text = "trajectory references"
	p.X.Label.Text = "time (s)"

	nDims := traj.Dimensions()
	posXYs, velXYs, accXYs := sampleSeries(traj, step)

	var result error
	for i := 0; i < nDims; i++ {
		result = multierr.Combine(
			result,
			plotutil.AddLines(p,
				fmt.Sprintf("pos[%d]", i), posXYs[i],
				fmt.Sprintf("vel[%d]", i), velXYs[i],
				fmt.Sprintf("acc[%d]", i), accXYs[i],
			),
		)
	}
	if result != nil {
		return result
	}

	return p.Save(8*vg.Inch, 6*vg.Inch, out)
}

// sampleSeries evaluates the trajectory every step seconds. Samples are indexed
// rather than accumulated so float rounding cannot drop the terminal waypoint; the
// last sample always lands exactly on the end time.
func sampleSeries(traj *trajectory.CubicSpline, step float64) (posXYs, velXYs, accXYs []plotter.XYs) {
	nDims := traj.Dimensions()
	posXYs = make([]plotter.XYs, nDims)
	velXYs = make([]plotter.XYs, nDims)
	accXYs = make([]plotter.XYs, nDims)

	nSteps := int(math.Ceil(traj.Duration() / step))
	for j := 0; j <= nSteps; j++ {
		t := traj.StartTime() + float64(j)*step
		if j == nSteps || t > traj.EndTime() {
			t = traj.EndTime()
		}
		pos, vel, acc := traj.Evaluate(t)
		for i := 0; i < nDims; i++ {
			posXYs[i] = append(posXYs[i], plotter.XY{X: t, Y: pos[i]})
			velXYs[i] = append(velXYs[i], plotter.XY{X: t, Y: vel[i]})
			accXYs[i] = append(accXYs[i], plotter.XY{X: t, Y: acc[i]})
		}
	}
	return posXYs, velXYs, accXYs
}
