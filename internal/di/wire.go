//go:build wireinject
// +build wireinject

package di

import (
	"DialMeter/pkg/config"
	"DialMeter/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure
		ProvideHTTPClient,
		ProvideReadingCache,
		ProvidePublisher,
		ProvidePWM,
		ProvideIndicator,
		ProvideProber,

		// Domain services
		ProvideSignalSource,
		ProvideMapper,
		ProvideResolver,
		ProvideCalibration,
		ProvideActuator,
		ProvideWaiter,

		// Use cases
		ProvideBoard,
		ProvideDialCycle,
		ProvidePoller,

		// HTTP
		ProvideDialHandler,
		ProvideHTTPServer,

		// Application
		ProvideApp,
	)
	return &server.App{}, nil
}
