package ingestion

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

func newMarketDataClient(t *testing.T, handler http.HandlerFunc) *MarketDataClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := NewMarketDataClient("test-key", time.Second, zap.NewNop())
	client.baseURL = srv.URL
	return client
}

func TestFetchSnapshot(t *testing.T) {
	client := newMarketDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/snapshot/locale/us/markets/stocks/tickers/NVDA", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		var resp snapshotResponse
		resp.Ticker.Day = snapshotBar{Close: 950.10, Volume: 1_000_000}
		resp.Ticker.PrevDay = snapshotBar{Close: 900.10}
		json.NewEncoder(w).Encode(resp)
	})

	snap, err := client.FetchSnapshot(context.Background(), "nvda")
	require.NoError(t, err)

	assert.Equal(t, "NVDA", snap.Symbol)
	assert.Equal(t, 950.10, snap.Price)
	assert.InDelta(t, 50.0, snap.Change, 0.0001)
	assert.InDelta(t, 5.55, snap.ChangePercent, 0.0001)
	assert.Equal(t, int64(1_000_000), snap.Volume)
}

func TestFetchSnapshot_FallsBackToLastTrade(t *testing.T) {
	client := newMarketDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		var resp snapshotResponse
		resp.Ticker.LastTrade.Price = 123.45
		json.NewEncoder(w).Encode(resp)
	})

	snap, err := client.FetchSnapshot(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Equal(t, 123.45, snap.Price)
	assert.Zero(t, snap.Change)
}

func TestFetchSnapshot_NoPriceIsNotFound(t *testing.T) {
	client := newMarketDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(snapshotResponse{})
	})

	_, err := client.FetchSnapshot(context.Background(), "NVDA")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFetchSnapshot_Vendor404IsNotFound(t *testing.T) {
	client := newMarketDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := client.FetchSnapshot(context.Background(), "NOPE")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFetchRatios(t *testing.T) {
	current, quick := 1.8, 1.2
	client := newMarketDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "NVDA", r.URL.Query().Get("ticker"))
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode(ratiosResponse{Results: []ratiosRow{
			{Ticker: "NVDA", Current: &current, Quick: &quick},
		}})
	})

	ratios, err := client.FetchRatios(context.Background(), "nvda")
	require.NoError(t, err)

	assert.Equal(t, "NVDA", ratios.Ticker)
	require.NotNil(t, ratios.CurrentRatio)
	assert.Equal(t, 1.8, *ratios.CurrentRatio)
	require.NotNil(t, ratios.QuickRatio)
	assert.Equal(t, 1.2, *ratios.QuickRatio)
	assert.Nil(t, ratios.MarketCap)
}

func TestFetchRatios_EmptyIsNotFound(t *testing.T) {
	client := newMarketDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ratiosResponse{})
	})

	_, err := client.FetchRatios(context.Background(), "NVDA")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFetchIndexAggregates(t *testing.T) {
	client := newMarketDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/aggs/ticker/I:SPX/range/1/day/2026-08-01/2026-08-28", r.URL.Path)
		assert.Equal(t, "true", r.URL.Query().Get("adjusted"))
		assert.Equal(t, "asc", r.URL.Query().Get("sort"))
		json.NewEncoder(w).Encode(aggsResponse{Results: []aggsBar{
			{Close: 6400.5, Volume: 1_000_000, Timestamp: 1754006400000},
			{Close: 6450.25, Volume: 1_100_000, Timestamp: 1754092800000},
		}})
	})

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	bars, err := client.FetchIndexAggregates(context.Background(), "I:SPX", 1, "day", from, to)
	require.NoError(t, err)

	require.Len(t, bars, 2)
	assert.Equal(t, 6400.5, bars[0].Close)
	assert.Equal(t, time.UnixMilli(1754006400000).UTC(), bars[0].Timestamp)
	assert.Equal(t, 1_100_000.0, bars[1].Volume)
}

func TestFetchIndexAggregates_EmptySeries(t *testing.T) {
	client := newMarketDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(aggsResponse{})
	})

	bars, err := client.FetchIndexAggregates(context.Background(), "I:VIX", 1, "week",
		time.Now().AddDate(-5, 0, 0), time.Now())
	require.NoError(t, err)
	assert.Empty(t, bars)
}

func TestFetchBulkSnapshots(t *testing.T) {
	client := newMarketDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/snapshot/locale/us/markets/stocks/tickers", r.URL.Path)
		assert.Equal(t, "SPY,QQQ,GLD", r.URL.Query().Get("tickers"))
		json.NewEncoder(w).Encode(bulkSnapshotResponse{Tickers: []bulkTicker{
			{
				Ticker:           "SPY",
				Day:              snapshotBar{Close: 512.30, Volume: 55_000_000},
				PrevDay:          snapshotBar{Close: 508.00},
				TodaysChangePerc: 0.8465,
			},
			{
				// After hours the day bar is empty; the last trade and
				// previous close carry the snapshot.
				Ticker:  "qqq",
				PrevDay: snapshotBar{Close: 440.00},
				LastTrade: struct {
					Price float64 `json:"p"`
				}{Price: 442.20},
			},
		}})
	})

	snapshots, err := client.FetchBulkSnapshots(context.Background(), []string{"spy", "qqq", "gld"})
	require.NoError(t, err)
	require.Len(t, snapshots, 2)

	spy := snapshots["SPY"]
	assert.Equal(t, 512.30, spy.Price)
	assert.InDelta(t, 4.30, spy.Change, 0.0001)
	assert.Equal(t, 0.8465, spy.ChangePercent)
	assert.Equal(t, int64(55_000_000), spy.Volume)

	qqq := snapshots["QQQ"]
	assert.Equal(t, 442.20, qqq.Price)
	assert.InDelta(t, 0.5, qqq.ChangePercent, 0.0001)

	_, ok := snapshots["GLD"]
	assert.False(t, ok)
}

func TestFetchMarketMovers(t *testing.T) {
	client := newMarketDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v2/snapshot/locale/us/markets/stocks/gainers":
			json.NewEncoder(w).Encode(bulkSnapshotResponse{Tickers: []bulkTicker{
				{Ticker: "NVDA", Day: snapshotBar{Close: 950.10}, TodaysChangePerc: 7.2512},
			}})
		case "/v2/snapshot/locale/us/markets/stocks/losers":
			json.NewEncoder(w).Encode(bulkSnapshotResponse{Tickers: []bulkTicker{
				{Ticker: "INTC", TodaysChangePerc: -4.1},
			}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	gainers, losers, err := client.FetchMarketMovers(context.Background())
	require.NoError(t, err)

	require.Len(t, gainers, 1)
	assert.Equal(t, "NVDA", gainers[0].Symbol)
	assert.Equal(t, 7.25, gainers[0].ChangePercent)
	require.NotNil(t, gainers[0].Price)
	assert.Equal(t, 950.10, *gainers[0].Price)

	require.Len(t, losers, 1)
	assert.Equal(t, -4.1, losers[0].ChangePercent)
	assert.Nil(t, losers[0].Price)
}

func TestFetchShortInterest(t *testing.T) {
	shares, cover := 25_000_000.0, 2.4
	client := newMarketDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "settlement_date.desc", r.URL.Query().Get("sort"))
		json.NewEncoder(w).Encode(shortInterestResponse{Results: []shortInterestRow{
			{ShortInterest: &shares, DaysToCover: &cover},
		}})
	})

	si, err := client.FetchShortInterest(context.Background(), "nvda")
	require.NoError(t, err)

	assert.Equal(t, "NVDA", si.Ticker)
	require.NotNil(t, si.SharesShort)
	assert.Equal(t, 25_000_000.0, *si.SharesShort)
	require.NotNil(t, si.DaysToCover)
	assert.Nil(t, si.SettlementDate)
}

func TestFetchShortInterest_EmptyIsNotFound(t *testing.T) {
	client := newMarketDataClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(shortInterestResponse{})
	})

	_, err := client.FetchShortInterest(context.Background(), "NVDA")
	assert.True(t, apperrors.IsNotFound(err))
}
