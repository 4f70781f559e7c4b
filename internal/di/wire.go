//go:build wireinject
// +build wireinject

package di

import (
	"SqueezeScan/pkg/config"
	"SqueezeScan/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire generates the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,
		ProvideEngine,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideRedisCache,
		ProvideKafkaProducer,

		// Repositories
		ProvideBarStore,
		ProvideBarSource,
		ProvideAlertPublisher,
		ProvideAlertPipeline,

		// Use cases
		ProvideScanner,
		ProvideAlerts,
		ProvideWatchlist,
		ProvideBars,
		ProvideHistory,
		ProvideIndicators,

		// Delivery
		ProvideProgressHub,
		ProvideScanQueue,
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
