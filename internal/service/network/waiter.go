package network

import (
	"context"
	"sync/atomic"
	"time"

	"DialMeter/internal/domain/models"
	"DialMeter/internal/domain/repository"
	applogger "DialMeter/pkg/logger"

	"github.com/benbjohnson/clock"
)

// WaiterOption configures Waiter.
type WaiterOption func(*Waiter)

// Waiter blocks until the prober succeeds or the attempt budget runs out.
type Waiter struct {
	prober    repository.Prober
	attempts  int
	interval  time.Duration
	clock     clock.Clock
	logger    *applogger.Logger
	connected atomic.Bool
}

// NewWaiter defaults to 15 attempts one second apart.
func NewWaiter(prober repository.Prober, opts ...WaiterOption) *Waiter {
	w := &Waiter{
		prober:   prober,
		attempts: 15,
		interval: time.Second,
		clock:    clock.New(),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.attempts < 1 {
		w.attempts = 1
	}
	return w
}

// Wait probes up to the attempt budget. It returns *models.NetworkTimeoutError
// when every attempt fails, or the context error if cancelled first.
func (w *Waiter) Wait(ctx context.Context) error {
	var lastErr error
	for attempt := 1; attempt <= w.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		lastErr = w.prober.Probe(ctx)
		if lastErr == nil {
			w.connected.Store(true)
			if w.logger != nil {
				w.logger.Info("network connected", applogger.Int("attempt", attempt))
			}
			return nil
		}
		if w.logger != nil {
			w.logger.Debug("waiting for network",
				applogger.Int("attempt", attempt),
				applogger.Int("max_attempts", w.attempts),
				applogger.Error(lastErr),
			)
		}
		if attempt == w.attempts {
			break
		}
		t := w.clock.Timer(w.interval)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	w.connected.Store(false)
	return &models.NetworkTimeoutError{Attempts: w.attempts, Interval: w.interval, Err: lastErr}
}

// IsConnected reports the outcome of the last Wait.
func (w *Waiter) IsConnected() bool { return w.connected.Load() }

// WithAttempts sets the retry budget.
func WithAttempts(n int) WaiterOption {
	return func(w *Waiter) {
		w.attempts = n
	}
}

// WithInterval sets the delay between attempts.
func WithInterval(d time.Duration) WaiterOption {
	return func(w *Waiter) {
		w.interval = d
	}
}

// WithClock replaces the clock, for tests.
func WithClock(c clock.Clock) WaiterOption {
	return func(w *Waiter) {
		w.clock = c
	}
}

// WithLogger attaches a logger.
func WithLogger(l *applogger.Logger) WaiterOption {
	return func(w *Waiter) {
		w.logger = l
	}
}
