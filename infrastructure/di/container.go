package di

import (
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/application/services"
	"github.com/tradestreak/wall-street-service/infrastructure/config"
	"github.com/tradestreak/wall-street-service/infrastructure/ingestion"
	"github.com/tradestreak/wall-street-service/interfaces/http/rest"
	"github.com/tradestreak/wall-street-service/pkg/auth"
	"github.com/tradestreak/wall-street-service/pkg/observability"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Store ports.Store

	CongressRepo     ports.CongressRepository
	CramerRepo       ports.CramerRepository
	MoodRepo         ports.MoodRepository
	EarningsRepo     ports.EarningsRepository
	BeatCongressRepo ports.BeatCongressRepository
	MarketTalkRepo   ports.MarketTalkRepository

	Quiver     *ingestion.QuiverClient
	FMP        *ingestion.FMPClient
	MoodFeed   ports.MoodFeed
	MarketData ports.MarketData
	Edgar      ports.EdgarClient

	Publisher ports.EventPublisher
	Metrics   ports.MetricsRecorder
	Tracer    *observability.Tracer
	Validator *auth.JWTValidator

	CongressService       *services.CongressService
	CramerService         *services.CramerService
	MoodService           *services.MoodService
	EarningsService       *services.EarningsService
	BeatCongressService   *services.BeatCongressService
	MarketTalkService     *services.MarketTalkService
	StocksService         *services.StocksService
	SuperInvestorsService *services.SuperInvestorsService
	MarketsService        *services.MarketsService

	Router *rest.Router
}
