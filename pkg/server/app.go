package server

import (
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"syscall"

	"DialMeter/internal/service/servo"
	xhttp "DialMeter/pkg/http"
	applogger "DialMeter/pkg/logger"

	"go.uber.org/multierr"
)

// NetworkWaiter blocks until the network is usable.
type NetworkWaiter interface {
	Wait(ctx context.Context) error
}

// Sweeper drives the startup self-test.
type Sweeper interface {
	Sweep(ctx context.Context, cfg servo.SweepConfig) error
}

// Indicator is lit for the duration of the startup sweep.
type Indicator interface {
	On() error
	Off() error
}

// Runner is the poll loop.
type Runner interface {
	Run(ctx context.Context) error
}

type closer struct {
	name string
	c    io.Closer
}

// Option configures App.
type Option func(*App)

// App encapsulates the entire application lifecycle.
type App struct {
	logger     *applogger.Logger
	waiter     NetworkWaiter
	sweeper    Sweeper
	sweep      *servo.SweepConfig
	indicator  Indicator
	runner     Runner
	httpServer *xhttp.Server
	httpUp     bool
	closers    []closer
}

// New creates a new App. Closers run in reverse registration order on shutdown.
func New(sweeper Sweeper, runner Runner, opts ...Option) *App {
	a := &App{sweeper: sweeper, runner: runner}
	for _, opt := range opts {
		opt(a)
	}
	if a.logger == nil {
		a.logger = applogger.NewNop()
	}
	return a
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.RunContext(ctx)
}

// RunContext waits for the network, sweeps the dial, then polls until ctx is done.
// A network timeout aborts startup and is returned.
func (a *App) RunContext(ctx context.Context) (err error) {
	defer func() {
		err = multierr.Append(err, a.shutdown())
	}()

	if a.waiter != nil {
		if werr := a.waiter.Wait(ctx); werr != nil {
			if errors.Is(werr, context.Canceled) {
				a.logger.Info("interrupted while waiting for network")
				return nil
			}
			a.logger.Error("network unavailable, giving up", applogger.Error(werr))
			return werr
		}
	}

	if a.sweep != nil {
		a.runSweep(ctx)
	}

	if a.httpServer != nil {
		if serr := a.httpServer.Start(); serr != nil {
			return serr
		}
		a.httpUp = true
	}

	if rerr := a.runner.Run(ctx); rerr != nil {
		return rerr
	}
	a.logger.Info("shutting down")
	return nil
}

func (a *App) runSweep(ctx context.Context) {
	a.logger.Info("startup sweep", applogger.String("mode", string(a.sweep.Mode)))
	if a.indicator != nil {
		if err := a.indicator.On(); err != nil {
			a.logger.Warn("status indicator on failed", applogger.Error(err))
		}
		defer func() {
			if err := a.indicator.Off(); err != nil {
				a.logger.Warn("status indicator off failed", applogger.Error(err))
			}
		}()
	}
	if err := a.sweeper.Sweep(ctx, *a.sweep); err != nil && !errors.Is(err, context.Canceled) {
		a.logger.Warn("startup sweep failed", applogger.Error(err))
	}
}

// shutdown stops the HTTP server and closes every registered resource.
func (a *App) shutdown() error {
	var err error
	if a.httpUp {
		ctx, cancel := context.WithTimeout(context.Background(), a.httpServer.ShutdownTimeout())
		err = multierr.Append(err, a.httpServer.Stop(ctx))
		cancel()
	}
	for i := len(a.closers) - 1; i >= 0; i-- {
		c := a.closers[i]
		if cerr := c.c.Close(); cerr != nil {
			a.logger.Warn("close failed", applogger.String("resource", c.name), applogger.Error(cerr))
			err = multierr.Append(err, cerr)
		}
	}
	a.logger.Info("shutdown complete")
	return err
}

// WithLogger sets the application logger.
func WithLogger(l *applogger.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithNetworkWait blocks startup on w.
func WithNetworkWait(w NetworkWaiter) Option {
	return func(a *App) { a.waiter = w }
}

// WithSweep enables the startup sweep.
func WithSweep(cfg servo.SweepConfig) Option {
	return func(a *App) { a.sweep = &cfg }
}

// WithIndicator lights ind while the startup sweep runs.
func WithIndicator(ind Indicator) Option {
	return func(a *App) { a.indicator = ind }
}

// WithHTTPServer runs the status API alongside the poll loop.
func WithHTTPServer(s *xhttp.Server) Option {
	return func(a *App) { a.httpServer = s }
}

// WithCloser registers a resource closed on shutdown.
func WithCloser(name string, c io.Closer) Option {
	return func(a *App) { a.closers = append(a.closers, closer{name: name, c: c}) }
}
