//go:build wireinject
// +build wireinject

package di

import (
	"CoinSight/pkg/config"
	"CoinSight/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Foundation
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideCacheService,

		// Repositories
		ProvidePriceStore,
		ProvideSentimentStore,
		ProvidePredictionStore,
		ProvidePredictionPublisher,

		// Upstream services
		ProvideMarketStream,
		ProvidePriceSource,
		ProvideNewsSource,
		ProvideArticleScorer,

		// Use cases
		ProvideTickCollector,
		ProvideNewsCollector,
		ProvidePredictionProcessor,
		ProvideForecaster,

		// HTTP and application server
		ProvideHTTPHandler,
		ProvideApp,
	)
	return &server.App{}, nil
}
