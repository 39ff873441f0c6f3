//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"PriceCast/pkg/config"
	"PriceCast/pkg/server"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideEventPublisher,
		ProvideCache,

		// Repositories
		ProvideObservationSource,
		ProvideSeriesStore,

		// Use cases
		ProvideTrainer,
		ProvideForecaster,
		ProvidePredictor,

		// Transport
		ProvideLimiter,
		ProvideHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}

// InitializeRuntime wires the store and predictor for CLI commands.
func InitializeRuntime(cfg *config.Config) (*Runtime, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideClickHouseClient,
		ProvideEventPublisher,
		ProvideObservationSource,
		ProvideSeriesStore,
		ProvideTrainer,
		ProvideForecaster,
		ProvidePredictor,
		ProvideRuntime,
	)
	return &Runtime{}, nil
}
