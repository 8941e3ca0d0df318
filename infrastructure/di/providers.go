package di

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/application/services"
	"github.com/tradestreak/wall-street-service/domain"
	"github.com/tradestreak/wall-street-service/infrastructure/config"
	"github.com/tradestreak/wall-street-service/infrastructure/ingestion"
	"github.com/tradestreak/wall-street-service/infrastructure/messaging/eventbridge"
	dynamostore "github.com/tradestreak/wall-street-service/infrastructure/persistence/dynamodb"
	"github.com/tradestreak/wall-street-service/infrastructure/persistence/repository"
	"github.com/tradestreak/wall-street-service/interfaces/http/rest"
	"github.com/tradestreak/wall-street-service/pkg/auth"
	"github.com/tradestreak/wall-street-service/pkg/cache"
	"github.com/tradestreak/wall-street-service/pkg/observability"
)

// metricsNamespace is the CloudWatch namespace for service counters.
const metricsNamespace = "WallStreet"

// ProvideLogger creates the service logger.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig loads AWS configuration, instrumenting clients with
// X-Ray when tracing is enabled.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, err
	}
	if cfg.EnableTracing {
		awsv2.AWSV2Instrumentor(&awsCfg.APIOptions)
	}
	return awsCfg, nil
}

// ProvideDynamoDBClient creates the DynamoDB client.
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates the EventBridge client.
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates the CloudWatch client.
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideStore creates the single-table store adapter.
func ProvideStore(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.Store {
	return dynamostore.NewStore(client, cfg.DynamoDBTable, cfg.GSI1IndexName, logger)
}

// ProvideCongressRepository creates the congress repository.
func ProvideCongressRepository(store ports.Store, cfg *config.Config, logger *zap.Logger) ports.CongressRepository {
	return repository.NewCongressRepository(store, cfg.GSI1IndexName, logger)
}

// ProvideCramerRepository creates the cramer repository.
func ProvideCramerRepository(store ports.Store, logger *zap.Logger) ports.CramerRepository {
	return repository.NewCramerRepository(store, logger)
}

// ProvideMoodRepository creates the mood repository.
func ProvideMoodRepository(store ports.Store, cfg *config.Config, logger *zap.Logger) ports.MoodRepository {
	return repository.NewMoodRepository(store, cfg.GSI1IndexName, logger)
}

// ProvideEarningsRepository creates the earnings repository.
func ProvideEarningsRepository(store ports.Store, cfg *config.Config, logger *zap.Logger) ports.EarningsRepository {
	return repository.NewEarningsRepository(store, cfg.GSI1IndexName, logger)
}

// ProvideBeatCongressRepository creates the beat-congress repository.
func ProvideBeatCongressRepository(store ports.Store, cfg *config.Config, logger *zap.Logger) ports.BeatCongressRepository {
	return repository.NewBeatCongressRepository(store, cfg.GSI1IndexName, logger)
}

// ProvideMarketTalkRepository creates the market-talk repository.
func ProvideMarketTalkRepository(store ports.Store, cfg *config.Config, logger *zap.Logger) ports.MarketTalkRepository {
	return repository.NewMarketTalkRepository(store, cfg.GSI1IndexName, logger)
}

// ProvideSectorMap loads the embedded ticker-to-sector asset.
func ProvideSectorMap() (domain.SectorMap, error) {
	return domain.DefaultSectorMap()
}

// ProvideETFCatalog loads the embedded featured-fund asset.
func ProvideETFCatalog() (domain.ETFCatalog, error) {
	return domain.DefaultETFCatalog()
}

// ProvideSuperInvestorCatalog loads the embedded 13F filer asset.
func ProvideSuperInvestorCatalog() (domain.SuperInvestorCatalog, error) {
	return domain.DefaultSuperInvestorCatalog()
}

// ProvideQuiverClient creates the QuiverQuant feed.
func ProvideQuiverClient(cfg *config.Config, logger *zap.Logger) *ingestion.QuiverClient {
	return ingestion.NewQuiverClient(cfg.QuiverAPIKey, cfg.VendorTimeout, logger)
}

// ProvideFMPClient creates the FMP feed (congress trades + earnings).
func ProvideFMPClient(cfg *config.Config, logger *zap.Logger) *ingestion.FMPClient {
	return ingestion.NewFMPClient(cfg.FMPAPIKey, cfg.VendorTimeout, logger)
}

// ProvideMoodFeed creates the fear/greed feed.
func ProvideMoodFeed(cfg *config.Config, logger *zap.Logger) ports.MoodFeed {
	return ingestion.NewFearGreedClient(cfg.VendorTimeout, logger)
}

// ProvideMarketDataClient creates the market data client.
func ProvideMarketDataClient(cfg *config.Config, logger *zap.Logger) *ingestion.MarketDataClient {
	return ingestion.NewMarketDataClient(cfg.MarketDataAPIKey, cfg.VendorTimeout, logger)
}

// ProvideMarketData exposes the market data client as the quote port.
func ProvideMarketData(client *ingestion.MarketDataClient) ports.MarketData {
	return client
}

// ProvideMarketOverview exposes the market data client as the index and
// mover port.
func ProvideMarketOverview(client *ingestion.MarketDataClient) ports.MarketOverview {
	return client
}

// ProvideEdgarClient creates the SEC EDGAR client.
func ProvideEdgarClient(cfg *config.Config, logger *zap.Logger) ports.EdgarClient {
	return ingestion.NewEdgarFetcher(cfg.EdgarUserAgent, cfg.VendorTimeout, logger)
}

// ProvideEventPublisher creates the event publisher, a no-op when no bus is
// configured.
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventPublisher {
	if cfg.EventBusName == "" {
		return eventbridge.NopPublisher{}
	}
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvideQuoteCache creates the TTL cache for vendor fetches.
func ProvideQuoteCache(cfg *config.Config) (ports.Cache, error) {
	return cache.NewTTLCache(cfg.QuoteCacheSize, cfg.QuoteCacheTTL)
}

// ProvideMetricsRecorder creates the CloudWatch metrics recorder.
func ProvideMetricsRecorder(client *awscloudwatch.Client, logger *zap.Logger) ports.MetricsRecorder {
	return observability.NewMetricsRecorder(client, metricsNamespace, logger)
}

// ProvideTracer creates the X-Ray tracer.
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer("wall-street-service", cfg.EnableTracing)
}

// ProvideJWTValidator creates the token validator. Development falls back
// to a fixed secret so local requests can authenticate.
func ProvideJWTValidator(cfg *config.Config) (*auth.JWTValidator, error) {
	secret := cfg.JWTSecret
	if secret == "" && !cfg.IsProduction() {
		secret = "development-secret-change-in-production"
	}
	return auth.NewJWTValidator(auth.JWTConfig{SecretKey: secret, Issuer: cfg.JWTIssuer})
}

// ProvideCongressService creates the congress service.
func ProvideCongressService(repo ports.CongressRepository, sectors domain.SectorMap, logger *zap.Logger) *services.CongressService {
	return services.NewCongressService(repo, sectors, logger)
}

// ProvideCramerService creates the cramer service.
func ProvideCramerService(repo ports.CramerRepository, logger *zap.Logger) *services.CramerService {
	return services.NewCramerService(repo, logger)
}

// ProvideMoodService creates the mood service.
func ProvideMoodService(repo ports.MoodRepository, publisher ports.EventPublisher, cfg *config.Config, logger *zap.Logger) *services.MoodService {
	return services.NewMoodService(repo, publisher, cfg.XPMoodCorrect, logger)
}

// ProvideEarningsService creates the earnings service.
func ProvideEarningsService(repo ports.EarningsRepository, publisher ports.EventPublisher, cfg *config.Config, logger *zap.Logger) *services.EarningsService {
	return services.NewEarningsService(repo, publisher, cfg.XPEarningsCorrect, logger)
}

// ProvideBeatCongressService creates the beat-congress service.
func ProvideBeatCongressService(
	repo ports.BeatCongressRepository,
	congressRepo ports.CongressRepository,
	publisher ports.EventPublisher,
	cfg *config.Config,
	logger *zap.Logger,
) *services.BeatCongressService {
	return services.NewBeatCongressService(repo, congressRepo, publisher, cfg.XPBeatCongressWin, cfg.XPBeatCongressLoss, logger)
}

// ProvideMarketTalkService creates the market-talk service.
func ProvideMarketTalkService(repo ports.MarketTalkRepository, logger *zap.Logger) *services.MarketTalkService {
	return services.NewMarketTalkService(repo, logger)
}

// ProvideStocksService creates the stocks service.
func ProvideStocksService(market ports.MarketData, quoteCache ports.Cache, logger *zap.Logger) *services.StocksService {
	return services.NewStocksService(market, quoteCache, logger)
}

// ProvideSuperInvestorsService creates the super-investors service.
func ProvideSuperInvestorsService(catalog domain.SuperInvestorCatalog, edgar ports.EdgarClient, logger *zap.Logger) *services.SuperInvestorsService {
	return services.NewSuperInvestorsService(catalog, edgar, logger)
}

// ProvideMarketsService creates the market-features service.
func ProvideMarketsService(overview ports.MarketOverview, etfs domain.ETFCatalog, logger *zap.Logger) *services.MarketsService {
	return services.NewMarketsService(overview, etfs, logger)
}

// ProvideRouter creates the HTTP router.
func ProvideRouter(
	congress *services.CongressService,
	cramer *services.CramerService,
	mood *services.MoodService,
	earnings *services.EarningsService,
	beatCongress *services.BeatCongressService,
	marketTalk *services.MarketTalkService,
	stocks *services.StocksService,
	superInvestors *services.SuperInvestorsService,
	markets *services.MarketsService,
	validator *auth.JWTValidator,
	cfg *config.Config,
	logger *zap.Logger,
) *rest.Router {
	return rest.NewRouter(rest.Services{
		Congress:       congress,
		Cramer:         cramer,
		Mood:           mood,
		Earnings:       earnings,
		BeatCongress:   beatCongress,
		MarketTalk:     marketTalk,
		Stocks:         stocks,
		SuperInvestors: superInvestors,
		Markets:        markets,
	}, validator, cfg.EnableCORS, logger)
}
