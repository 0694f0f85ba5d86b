// Package control feeds trajectory references to a control loop at a fixed rate.
package control

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	goutils "go.viam.com/utils"

	"go.viam.com/trajgen/trajectory"
)

// A SampleFunc consumes one reference sample. pos, vel, and acc each hold one value
// per trajectory dimension and are owned by the callee.
type SampleFunc func(t float64, pos, vel, acc []float64)

// SamplerConfig configures a Sampler.
type SamplerConfig struct {
	// Period is the control cycle period. Required.
	Period time.Duration
	// Clock defaults to the real clock; swap in a mock for tests.
	Clock clock.Clock
}

// A Sampler evaluates a trajectory on a fixed cycle, mapping wall time since Start
// onto trajectory time and handing each reference to a callback. Because Evaluate
// clamps out-of-range times, the sampler stops itself once the trajectory end has
// been passed rather than emitting a constant reference forever.
type Sampler struct {
	traj   *trajectory.CubicSpline
	period time.Duration
	clock  clock.Clock
	sample SampleFunc
	logger golog.Logger

	mu                      sync.Mutex
	cancel                  func()
	activeBackgroundWorkers sync.WaitGroup
}

// NewSampler wires a trajectory to a sample callback.
func NewSampler(traj *trajectory.CubicSpline, cfg SamplerConfig, sample SampleFunc, logger golog.Logger) (*Sampler, error) {
	if traj == nil {
		return nil, errors.New("no trajectory to sample")
	}
	if cfg.Period <= 0 {
		return nil, errors.Errorf("period must be positive; got %v", cfg.Period)
	}
	if sample == nil {
		return nil, errors.New("no sample callback")
	}
	c := cfg.Clock
	if c == nil {
		c = clock.New()
	}
	if logger == nil {
		logger = golog.Global()
	}
	return &Sampler{
		traj:   traj,
		period: cfg.Period,
		clock:  c,
		sample: sample,
		logger: logger,
	}, nil
}

// Start begins sampling in the background. It returns an error if the sampler is
// already running. The first sample fires one period after Start.
func (s *Sampler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return errors.New("already sampling")
	}
	cancelCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	start := s.clock.Now()
	ticker := s.clock.Ticker(s.period)
	s.activeBackgroundWorkers.Add(1)
	goutils.PanicCapturingGo(func() {
		defer s.activeBackgroundWorkers.Done()
		defer ticker.Stop()
		for {
			select {
			case <-cancelCtx.Done():
				return
			case now := <-ticker.C:
				t := s.traj.StartTime() + now.Sub(start).Seconds()
				pos, vel, acc := s.traj.Evaluate(t)
				s.sample(t, pos, vel, acc)
				if t >= s.traj.EndTime() {
					s.logger.Debugw("trajectory complete", "t", t)
					return
				}
			}
		}
	})
	return nil
}

// Stop halts sampling and waits for the background cycle to exit. It is safe to
// call Stop on a sampler that already ran to completion, or more than once.
func (s *Sampler) Stop() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.mu.Unlock()
	s.activeBackgroundWorkers.Wait()
}
