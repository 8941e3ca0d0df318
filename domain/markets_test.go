package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradestreak/wall-street-service/domain"
)

func TestLookupMarketIndex(t *testing.T) {
	idx, ok := domain.LookupMarketIndex("SPX")
	require.True(t, ok)
	assert.Equal(t, "I:SPX", idx.VendorTicker)
	assert.Equal(t, "S&P 500", idx.Name)

	_, ok = domain.LookupMarketIndex("SPY")
	assert.False(t, ok)

	assert.Equal(t, []string{"DJI", "NDX", "RUT", "SPX", "VIX"}, domain.MarketIndexSymbols())
}

func TestPeriodWindow(t *testing.T) {
	today := time.Date(2026, time.August, 28, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		period   string
		from     time.Time
		timespan string
	}{
		{"5D", today.AddDate(0, 0, -7), "hour"},
		{"1M", today.AddDate(0, 0, -30), "day"},
		{"3M", today.AddDate(0, 0, -90), "day"},
		{"YTD", time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC), "day"},
		{"1Y", today.AddDate(0, 0, -365), "day"},
		{"5Y", today.AddDate(0, 0, -5*365), "week"},
	}
	for _, tt := range tests {
		window, ok := domain.PeriodWindow(tt.period, today)
		require.True(t, ok, tt.period)
		assert.Equal(t, tt.from, window.From, tt.period)
		assert.Equal(t, today, window.To, tt.period)
		assert.Equal(t, tt.timespan, window.Timespan, tt.period)
		assert.Equal(t, 1, window.Multiplier, tt.period)
	}

	_, ok := domain.PeriodWindow("2W", today)
	assert.False(t, ok)
}

func TestDefaultETFCatalog(t *testing.T) {
	catalog, err := domain.DefaultETFCatalog()
	require.NoError(t, err)
	require.Len(t, catalog.Funds, 12)

	assert.Equal(t, "SPY", catalog.Funds[0].Symbol)
	assert.Equal(t, "QQQ", catalog.Spotlight.Symbol)
	assert.NotEmpty(t, catalog.Spotlight.Description)

	symbols := catalog.Symbols()
	require.Len(t, symbols, 12)
	assert.Equal(t, "SPY", symbols[0])

	fund, ok := catalog.Find("GLD")
	require.True(t, ok)
	assert.Equal(t, "Commodities", fund.Category)

	_, ok = catalog.Find("NOPE")
	assert.False(t, ok)
}
