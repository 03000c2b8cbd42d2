// Package schedule drives synchronization passes on a fixed interval.
package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/sdejongh/foldermirror/pkg/logging"
)

// Trigger delivers ticks that request a new pass
type Trigger interface {
	C() <-chan time.Time
	Stop()
}

// Interval is a Trigger backed by time.Ticker
type Interval struct {
	ticker *time.Ticker
}

// NewInterval creates a trigger firing every d. d must be positive.
func NewInterval(d time.Duration) (*Interval, error) {
	if d <= 0 {
		return nil, errors.New("interval must be positive")
	}
	return &Interval{ticker: time.NewTicker(d)}, nil
}

// C returns the tick channel
func (i *Interval) C() <-chan time.Time {
	return i.ticker.C
}

// Stop releases the ticker
func (i *Interval) Stop() {
	i.ticker.Stop()
}

// PassFunc runs one synchronization pass
type PassFunc func(ctx context.Context) error

// Runner runs a pass immediately, then once per trigger tick, until its
// context is cancelled. Passes never overlap: a tick arriving while a pass is
// in flight is coalesced by the ticker and served after it.
type Runner struct {
	trigger Trigger
	pass    PassFunc
	logger  logging.Logger
}

// NewRunner creates a runner
func NewRunner(trigger Trigger, pass PassFunc, logger logging.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Runner{trigger: trigger, pass: pass, logger: logger}
}

// Run blocks until ctx is done and returns the number of passes run.
// A pass reports its own failures; the runner only notes the returned error
// at debug level and tries again on the next tick.
func (r *Runner) Run(ctx context.Context) int {
	defer r.trigger.Stop()

	r.logger.Info(ctx, "Scheduler started", nil)
	passes := 0

	for ctx.Err() == nil {
		passes++
		if err := r.pass(ctx); err != nil && ctx.Err() == nil {
			r.logger.Debug(ctx, "Pass did not succeed, retrying on next tick", logging.Fields{
				"pass":  passes,
				"error": err.Error(),
			})
		}

		select {
		case <-ctx.Done():
		case <-r.trigger.C():
		}
	}

	r.logger.Info(context.WithoutCancel(ctx), "Scheduler stopped", logging.Fields{"passes": passes})
	return passes
}
