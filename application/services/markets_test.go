package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/services"
	"github.com/tradestreak/wall-street-service/domain"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

// fakeMarketOverview serves canned aggregate, snapshot, and mover data
// keyed by vendor ticker.
type fakeMarketOverview struct {
	bars      map[string][]domain.AggregateBar
	barsErr   map[string]bool
	snapshots map[string]domain.StockSnapshot
	snapErr   bool
	gainers   []domain.MarketMover
	losers    []domain.MarketMover
	moversErr bool
}

func (f *fakeMarketOverview) FetchIndexAggregates(_ context.Context, vendorTicker string, _ int, _ string, _, _ time.Time) ([]domain.AggregateBar, error) {
	if f.barsErr[vendorTicker] {
		return nil, apperrors.NewExternalError("market data", errors.New("unavailable"))
	}
	return f.bars[vendorTicker], nil
}

func (f *fakeMarketOverview) FetchBulkSnapshots(_ context.Context, _ []string) (map[string]domain.StockSnapshot, error) {
	if f.snapErr {
		return nil, apperrors.NewExternalError("market data", errors.New("unavailable"))
	}
	return f.snapshots, nil
}

func (f *fakeMarketOverview) FetchMarketMovers(_ context.Context) ([]domain.MarketMover, []domain.MarketMover, error) {
	if f.moversErr {
		return nil, nil, apperrors.NewExternalError("market data", errors.New("unavailable"))
	}
	return f.gainers, f.losers, nil
}

func newMarketsService(t *testing.T, overview *fakeMarketOverview) *services.MarketsService {
	t.Helper()
	catalog, err := domain.DefaultETFCatalog()
	require.NoError(t, err)
	return services.NewMarketsService(overview, catalog, zap.NewNop())
}

func dailyBars(closes ...float64) []domain.AggregateBar {
	start := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	bars := make([]domain.AggregateBar, len(closes))
	for i, c := range closes {
		bars[i] = domain.AggregateBar{Timestamp: start.AddDate(0, 0, i), Close: c, Volume: 1000}
	}
	return bars
}

func TestGetIndicesComparison_InvalidPeriod(t *testing.T) {
	svc := newMarketsService(t, &fakeMarketOverview{})

	_, err := svc.GetIndicesComparison(context.Background(), "SPX", "2W")
	assert.True(t, apperrors.IsValidation(err))
}

func TestGetIndicesComparison_SymbolValidation(t *testing.T) {
	svc := newMarketsService(t, &fakeMarketOverview{})
	ctx := context.Background()

	_, err := svc.GetIndicesComparison(ctx, "SPX,FTSE", "1M")
	require.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "FTSE")

	_, err = svc.GetIndicesComparison(ctx, "SPX,NDX,DJI,RUT,VIX,SPX", "1M")
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.GetIndicesComparison(ctx, " , ,", "1M")
	assert.True(t, apperrors.IsValidation(err))
}

func TestGetIndicesComparison_NormalizesAgainstLongestSeries(t *testing.T) {
	overview := &fakeMarketOverview{bars: map[string][]domain.AggregateBar{
		"I:SPX": dailyBars(100, 110, 95),
		"I:NDX": dailyBars(200, 210),
	}}
	svc := newMarketsService(t, overview)

	// Empty symbols default to SPX and NDX.
	comparison, err := svc.GetIndicesComparison(context.Background(), "", "1M")
	require.NoError(t, err)
	assert.Equal(t, "1M", comparison.Period)

	spx := comparison.Indices["SPX"]
	assert.Equal(t, "S&P 500", spx.Name)
	require.NotNil(t, spx.CurrentValue)
	assert.Equal(t, 95.0, *spx.CurrentValue)
	require.NotNil(t, spx.ChangePercent)
	assert.Equal(t, -5.0, *spx.ChangePercent)

	ndx := comparison.Indices["NDX"]
	require.NotNil(t, ndx.ChangePercent)
	assert.Equal(t, 5.0, *ndx.ChangePercent)

	// SPX has the longest series, so three points; NDX pads the last one.
	require.Len(t, comparison.DataPoints, 3)
	assert.Equal(t, "2026-08-24", comparison.DataPoints[0]["date"])
	assert.Equal(t, 0.0, comparison.DataPoints[0]["SPX"])
	assert.Equal(t, 10.0, comparison.DataPoints[1]["SPX"])
	assert.Equal(t, -5.0, comparison.DataPoints[2]["SPX"])
	assert.Equal(t, 5.0, comparison.DataPoints[1]["NDX"])
	assert.Nil(t, comparison.DataPoints[2]["NDX"])
}

func TestGetIndicesComparison_FetchFailureDegradesToNulls(t *testing.T) {
	overview := &fakeMarketOverview{
		bars:    map[string][]domain.AggregateBar{"I:SPX": dailyBars(100, 102)},
		barsErr: map[string]bool{"I:NDX": true},
	}
	svc := newMarketsService(t, overview)

	comparison, err := svc.GetIndicesComparison(context.Background(), "SPX,NDX", "1M")
	require.NoError(t, err)

	ndx := comparison.Indices["NDX"]
	assert.Equal(t, "Nasdaq-100", ndx.Name)
	assert.Nil(t, ndx.CurrentValue)
	assert.Nil(t, ndx.ChangePercent)

	require.Len(t, comparison.DataPoints, 2)
	assert.Nil(t, comparison.DataPoints[0]["NDX"])
	assert.Equal(t, 2.0, comparison.DataPoints[1]["SPX"])
}

func TestGetFeaturedETFs(t *testing.T) {
	overview := &fakeMarketOverview{snapshots: map[string]domain.StockSnapshot{
		"SPY": {Symbol: "SPY", Price: 512.347, ChangePercent: 0.84321, Volume: 55_000_000},
		"QQQ": {Symbol: "QQQ", Price: 441.5, ChangePercent: 1.25, Volume: 40_000_000},
	}}
	svc := newMarketsService(t, overview)

	page, err := svc.GetFeaturedETFs(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Featured, 12)

	spy := page.Featured[0]
	assert.Equal(t, "SPY", spy.Symbol)
	assert.Equal(t, "SPDR S&P 500 ETF Trust", spy.Name)
	require.NotNil(t, spy.Price)
	assert.Equal(t, 512.35, *spy.Price)
	require.NotNil(t, spy.ChangePercent)
	assert.Equal(t, 0.8432, *spy.ChangePercent)
	assert.Equal(t, int64(55_000_000), spy.Volume)

	// Funds without a snapshot keep catalog metadata and null prices.
	var gld services.FeaturedETF
	for _, etf := range page.Featured {
		if etf.Symbol == "GLD" {
			gld = etf
		}
	}
	assert.Equal(t, "Commodities", gld.Category)
	assert.Nil(t, gld.Price)
	assert.Zero(t, gld.Volume)

	assert.Equal(t, "QQQ", page.Spotlight.Symbol)
	assert.Equal(t, "Invesco QQQ Trust", page.Spotlight.Name)
	require.NotNil(t, page.Spotlight.Price)
	assert.Equal(t, 441.5, *page.Spotlight.Price)
}

func TestGetFeaturedETFs_SnapshotFailureKeepsCatalog(t *testing.T) {
	svc := newMarketsService(t, &fakeMarketOverview{snapErr: true})

	page, err := svc.GetFeaturedETFs(context.Background())
	require.NoError(t, err)
	require.Len(t, page.Featured, 12)
	for _, etf := range page.Featured {
		assert.Nil(t, etf.Price)
	}
	assert.Nil(t, page.Spotlight.Price)
	assert.NotEmpty(t, page.Spotlight.Description)
}

func TestGetDailyBuzz_HigherSession(t *testing.T) {
	overview := &fakeMarketOverview{
		bars: map[string][]domain.AggregateBar{
			"I:SPX": dailyBars(100, 103),
			"I:NDX": dailyBars(200, 208),
		},
		gainers: []domain.MarketMover{{Symbol: "NVDA", ChangePercent: 7.25}},
		losers:  []domain.MarketMover{{Symbol: "INTC", ChangePercent: -4.1}},
	}
	svc := newMarketsService(t, overview)

	buzz, err := svc.GetDailyBuzz(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buzz.Body, "traded higher")
	assert.Contains(t, buzz.Body, "NVDA led the session's gainers, advancing 7.25%.")
	assert.Contains(t, buzz.Body, "INTC was among the notable decliners, falling 4.10%.")
	// The headline is the summary text before the first period.
	assert.Equal(t, "U", buzz.Headline)
	assert.False(t, buzz.GeneratedByAI)

	spx := buzz.Indices["SPX"]
	require.NotNil(t, spx.CurrentValue)
	assert.Equal(t, 103.0, *spx.CurrentValue)
	require.NotNil(t, spx.ChangePercent)
	assert.Equal(t, 3.0, *spx.ChangePercent)

	require.Len(t, buzz.Headlines, 2)
	assert.Equal(t, "NVDA surges 7.2% in today's session", buzz.Headlines[0].Title)
	assert.Equal(t, "INTC falls 4.1% in today's session", buzz.Headlines[1].Title)
	assert.Equal(t, "Market Data", buzz.Headlines[0].Source)
}

func TestGetDailyBuzz_MixedSession(t *testing.T) {
	overview := &fakeMarketOverview{bars: map[string][]domain.AggregateBar{
		"I:SPX": dailyBars(100, 103),
		"I:NDX": dailyBars(200, 195),
	}}
	svc := newMarketsService(t, overview)

	buzz, err := svc.GetDailyBuzz(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buzz.Body, "traded mixed")
}

func TestGetDailyBuzz_NoIndexContextReadsLower(t *testing.T) {
	// Both index fetches fail, so no index reads positive.
	overview := &fakeMarketOverview{
		barsErr:   map[string]bool{"I:SPX": true, "I:NDX": true},
		moversErr: true,
	}
	svc := newMarketsService(t, overview)

	buzz, err := svc.GetDailyBuzz(context.Background())
	require.NoError(t, err)
	assert.Contains(t, buzz.Body, "traded lower")
	assert.Empty(t, buzz.Gainers)
	assert.Empty(t, buzz.Losers)
	assert.Empty(t, buzz.Headlines)
	assert.Empty(t, buzz.Indices)
}

func TestGetDailyBuzz_CapsMoversAndHeadlines(t *testing.T) {
	gainers := make([]domain.MarketMover, 7)
	for i := range gainers {
		gainers[i] = domain.MarketMover{Symbol: strings.Repeat("G", i+1), ChangePercent: 5.0}
	}
	overview := &fakeMarketOverview{gainers: gainers}
	svc := newMarketsService(t, overview)

	buzz, err := svc.GetDailyBuzz(context.Background())
	require.NoError(t, err)
	assert.Len(t, buzz.Gainers, 5)
	assert.Len(t, buzz.Headlines, 3)
}
