package ports

import (
	"context"
	"time"

	"github.com/tradestreak/wall-street-service/domain"
)

// CongressFeed fetches disclosed congressional trades from a data vendor.
type CongressFeed interface {
	// FetchRecentTrades returns trades disclosed in the trailing window,
	// already normalized into domain records.
	FetchRecentTrades(ctx context.Context, daysBack int) ([]domain.CongressTrade, error)
}

// MoodFeed fetches the composite fear/greed index.
type MoodFeed interface {
	FetchCurrentMood(ctx context.Context) (domain.MarketMood, error)
}

// EarningsCalendar fetches upcoming earnings events and published actuals.
type EarningsCalendar interface {
	FetchUpcomingEvents(ctx context.Context, from, to time.Time) ([]domain.EarningsEvent, error)

	// FetchActuals returns reported EPS and revenue for the ticker's most
	// recent release, nil fields when not yet published.
	FetchActuals(ctx context.Context, ticker string) (actualEPS, actualRevenue *float64, err error)
}

// MarketData fetches per-ticker quotes and fundamentals.
type MarketData interface {
	FetchSnapshot(ctx context.Context, symbol string) (domain.StockSnapshot, error)
	FetchRatios(ctx context.Context, symbol string) (domain.StockRatios, error)
	FetchShortInterest(ctx context.Context, symbol string) (domain.ShortInterest, error)
}

// MarketOverview fetches market-wide series: index aggregates, bulk
// snapshots, and session movers.
type MarketOverview interface {
	// FetchIndexAggregates returns bars for a vendor index ticker ("I:SPX")
	// over [from, to], oldest first.
	FetchIndexAggregates(ctx context.Context, vendorTicker string, multiplier int, timespan string, from, to time.Time) ([]domain.AggregateBar, error)

	// FetchBulkSnapshots returns snapshots keyed by upper-cased symbol.
	// Symbols the vendor has no data for are absent from the map.
	FetchBulkSnapshots(ctx context.Context, symbols []string) (map[string]domain.StockSnapshot, error)

	// FetchMarketMovers returns the session's top gainers and losers.
	FetchMarketMovers(ctx context.Context) (gainers, losers []domain.MarketMover, err error)
}

// EdgarClient fetches SEC EDGAR submission histories.
type EdgarClient interface {
	// FetchFilings returns recent 13F-HR filings for a zero-padded CIK.
	FetchFilings(ctx context.Context, cikPadded string, limit int) ([]domain.InvestorFiling, error)
}
