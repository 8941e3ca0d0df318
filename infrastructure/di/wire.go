//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"github.com/tradestreak/wall-street-service/infrastructure/config"
)

// SuperSet is the main provider set.
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideStore,
	ProvideCongressRepository,
	ProvideCramerRepository,
	ProvideMoodRepository,
	ProvideEarningsRepository,
	ProvideBeatCongressRepository,
	ProvideMarketTalkRepository,
	ProvideSectorMap,
	ProvideETFCatalog,
	ProvideSuperInvestorCatalog,
	ProvideQuiverClient,
	ProvideFMPClient,
	ProvideMoodFeed,
	ProvideMarketDataClient,
	ProvideMarketData,
	ProvideMarketOverview,
	ProvideEdgarClient,
	ProvideEventPublisher,
	ProvideQuoteCache,
	ProvideMetricsRecorder,
	ProvideTracer,
	ProvideJWTValidator,
	ProvideCongressService,
	ProvideCramerService,
	ProvideMoodService,
	ProvideEarningsService,
	ProvideBeatCongressService,
	ProvideMarketTalkService,
	ProvideStocksService,
	ProvideSuperInvestorsService,
	ProvideMarketsService,
	ProvideRouter,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // replaced by wire
}
