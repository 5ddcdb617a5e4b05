package server

import (
	"context"
	"errors"
	"testing"

	"DialMeter/internal/domain/models"
	"DialMeter/internal/service/servo"
)

type stubWaiter struct{ err error }

func (w stubWaiter) Wait(context.Context) error { return w.err }

type stubSweeper struct {
	calls int
	led   *stubIndicator
	lit   bool
}

func (s *stubSweeper) Sweep(context.Context, servo.SweepConfig) error {
	s.calls++
	if s.led != nil {
		s.lit = s.led.on
	}
	return nil
}

type stubIndicator struct {
	on     bool
	events []string
}

func (i *stubIndicator) On() error {
	i.on = true
	i.events = append(i.events, "on")
	return nil
}

func (i *stubIndicator) Off() error {
	i.on = false
	i.events = append(i.events, "off")
	return nil
}

type stubRunner struct {
	calls int
	err   error
}

func (r *stubRunner) Run(context.Context) error {
	r.calls++
	return r.err
}

type stubCloser struct {
	name  string
	order *[]string
	err   error
}

func (c stubCloser) Close() error {
	*c.order = append(*c.order, c.name)
	return c.err
}

func TestRunContextStartupOrder(t *testing.T) {
	sw := &stubSweeper{}
	run := &stubRunner{}
	var order []string
	app := New(sw, run,
		WithNetworkWait(stubWaiter{}),
		WithSweep(servo.SweepConfig{Mode: servo.SweepFull}),
		WithCloser("first", stubCloser{name: "first", order: &order}),
		WithCloser("second", stubCloser{name: "second", order: &order}),
	)
	if err := app.RunContext(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sw.calls != 1 || run.calls != 1 {
		t.Fatalf("expected sweep and run once, got %d/%d", sw.calls, run.calls)
	}
	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Fatalf("expected reverse close order, got %v", order)
	}
}

func TestRunContextNetworkTimeout(t *testing.T) {
	sw := &stubSweeper{}
	run := &stubRunner{}
	var order []string
	timeout := &models.NetworkTimeoutError{Attempts: 15}
	app := New(sw, run,
		WithNetworkWait(stubWaiter{err: timeout}),
		WithSweep(servo.SweepConfig{}),
		WithCloser("servo", stubCloser{name: "servo", order: &order}),
	)
	err := app.RunContext(context.Background())
	var nerr *models.NetworkTimeoutError
	if !errors.As(err, &nerr) {
		t.Fatalf("expected NetworkTimeoutError, got %v", err)
	}
	if sw.calls != 0 || run.calls != 0 {
		t.Fatalf("nothing should run after a network timeout")
	}
	if len(order) != 1 {
		t.Fatalf("resources must still be closed")
	}
}

func TestRunContextCombinesErrors(t *testing.T) {
	runErr := errors.New("run once failed")
	closeErr := errors.New("close failed")
	var order []string
	app := New(&stubSweeper{}, &stubRunner{err: runErr},
		WithCloser("publisher", stubCloser{name: "publisher", order: &order, err: closeErr}),
	)
	err := app.RunContext(context.Background())
	if !errors.Is(err, runErr) || !errors.Is(err, closeErr) {
		t.Fatalf("expected both errors, got %v", err)
	}
}

func TestRunContextCanceledDuringWait(t *testing.T) {
	run := &stubRunner{}
	app := New(&stubSweeper{}, run, WithNetworkWait(stubWaiter{err: context.Canceled}))
	if err := app.RunContext(context.Background()); err != nil {
		t.Fatalf("cancel is a clean stop, got %v", err)
	}
	if run.calls != 0 {
		t.Fatalf("poller must not start")
	}
}

func TestRunContextLightsIndicatorDuringSweep(t *testing.T) {
	led := &stubIndicator{}
	sw := &stubSweeper{led: led}
	app := New(sw, &stubRunner{},
		WithSweep(servo.SweepConfig{Mode: servo.SweepSteps}),
		WithIndicator(led),
	)
	if err := app.RunContext(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sw.lit {
		t.Fatalf("indicator was off during sweep")
	}
	if led.on || len(led.events) != 2 || led.events[0] != "on" || led.events[1] != "off" {
		t.Fatalf("unexpected indicator events %v", led.events)
	}
}
