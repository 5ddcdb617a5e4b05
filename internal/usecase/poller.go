package usecase

import (
	"context"
	"time"

	applogger "DialMeter/pkg/logger"

	"github.com/benbjohnson/clock"
)

// Poller repeats a DialCycle on a fixed interval.
type Poller struct {
	cycle    *DialCycle
	interval time.Duration
	runOnce  bool
	clock    clock.Clock
	logger   *applogger.Logger
}

// NewPoller creates a poller. With runOnce the first cycle's error is returned.
func NewPoller(cycle *DialCycle, interval time.Duration, runOnce bool, clk clock.Clock, logger *applogger.Logger) *Poller {
	if clk == nil {
		clk = clock.New()
	}
	if logger == nil {
		logger = applogger.NewNop()
	}
	return &Poller{cycle: cycle, interval: interval, runOnce: runOnce, clock: clk, logger: logger}
}

// Run blocks until ctx is cancelled. Cancellation is a clean stop and returns nil.
func (p *Poller) Run(ctx context.Context) error {
	p.logger.Info("poller started",
		applogger.String("source", p.cycle.Source()),
		applogger.Duration("interval_ms", p.interval),
		applogger.Bool("run_once", p.runOnce),
	)
	for {
		res := p.cycle.Run(ctx)
		if p.runOnce {
			return res.Err
		}

		t := p.clock.Timer(p.interval)
		select {
		case <-ctx.Done():
			t.Stop()
			p.logger.Info("poller stopped")
			return nil
		case <-t.C:
		}
	}
}
