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

	"github.com/tradestreak/wall-street-service/domain"
)

func TestParseFMPTrade(t *testing.T) {
	trade, err := parseFMPTrade(fmpTrade{
		FirstName:        "Jane",
		LastName:         "Roe",
		Office:           "Senate",
		DateReceived:     "2026-08-20",
		TransactionDate:  "2026-08-05",
		Type:             "Sale",
		Amount:           "$50,001 - $100,000",
		Symbol:           "nvda",
		AssetDescription: "NVIDIA Corporation",
	}, domain.ChamberSenate)
	require.NoError(t, err)

	assert.Equal(t, "2026-08-20#jane-roe#NVDA", trade.ID)
	assert.Equal(t, "Jane Roe", trade.MemberName)
	assert.Equal(t, "NVDA", trade.Ticker)
	assert.Equal(t, domain.ChamberSenate, trade.Chamber)
	assert.Equal(t, domain.TxSale, trade.TransactionType)
	// FMP carries no party data.
	assert.Equal(t, domain.PartyUnknown, trade.Party)
	assert.Equal(t, 50001, trade.AmountRangeLow)
	assert.Equal(t, 15, trade.DaysToDisclose)
}

func TestParseFMPTrade_Rejects(t *testing.T) {
	_, err := parseFMPTrade(fmpTrade{Symbol: "NVDA", TransactionDate: "2026-08-05"}, domain.ChamberHouse)
	assert.Error(t, err)

	_, err = parseFMPTrade(fmpTrade{FirstName: "Jane", LastName: "Roe", TransactionDate: "2026-08-05"}, domain.ChamberHouse)
	assert.Error(t, err)
}

func TestParseFMPDate(t *testing.T) {
	for _, raw := range []string{"2026-08-05", "08/05/2026", "2026-08-05T16:30:00"} {
		parsed, err := parseFMPDate(raw)
		require.NoError(t, err, raw)
		assert.Equal(t, 2026, parsed.Year())
		assert.Equal(t, time.August, parsed.Month())
		assert.Equal(t, 5, parsed.Day())
	}

	_, err := parseFMPDate("")
	assert.Error(t, err)
	_, err = parseFMPDate("August 5th")
	assert.Error(t, err)
}

func TestEarningsTimeLabel(t *testing.T) {
	assert.Equal(t, "Before", earningsTimeLabel("bmo"))
	assert.Equal(t, "Before", earningsTimeLabel(" Before Market Open "))
	assert.Equal(t, "After", earningsTimeLabel("AMC"))
	assert.Equal(t, "Unknown", earningsTimeLabel(""))
	assert.Equal(t, "Unknown", earningsTimeLabel("noon"))
}

func TestFMPWithoutKeyReturnsEmpty(t *testing.T) {
	client := NewFMPClient("", time.Second, zap.NewNop())

	trades, err := client.FetchRecentTrades(context.Background(), 7)
	require.NoError(t, err)
	assert.Empty(t, trades)

	events, err := client.FetchUpcomingEvents(context.Background(), time.Now(), time.Now().AddDate(0, 0, 14))
	require.NoError(t, err)
	assert.Empty(t, events)

	eps, revenue, err := client.FetchActuals(context.Background(), "NVDA")
	require.NoError(t, err)
	assert.Nil(t, eps)
	assert.Nil(t, revenue)
}

func TestFMPFetchRecentTrades_MergesChambers(t *testing.T) {
	recent := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	older := time.Now().UTC().AddDate(0, 0, -3).Format("2006-01-02")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("apikey"))
		switch r.URL.Path {
		case "/stable/senate-latest":
			json.NewEncoder(w).Encode([]fmpTrade{
				{FirstName: "Jane", LastName: "Roe", Symbol: "NVDA", TransactionDate: older, DateReceived: older, Type: "Purchase"},
			})
		case "/stable/house-latest":
			json.NewEncoder(w).Encode([]fmpTrade{
				{FirstName: "John", LastName: "Doe", Symbol: "AAPL", TransactionDate: recent, DateReceived: recent, Type: "Sale"},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	client := NewFMPClient("test-key", time.Second, zap.NewNop())
	client.baseURL = srv.URL

	trades, err := client.FetchRecentTrades(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, trades, 2)

	// Newest disclosure first.
	assert.Equal(t, "AAPL", trades[0].Ticker)
	assert.Equal(t, domain.ChamberHouse, trades[0].Chamber)
	assert.Equal(t, "NVDA", trades[1].Ticker)
	assert.Equal(t, domain.ChamberSenate, trades[1].Chamber)
}

func TestFMPFetchUpcomingEvents(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/stable/earnings-calendar", r.URL.Path)
		eps := 1.25
		json.NewEncoder(w).Encode([]fmpEarningsRow{
			{Symbol: "nvda", Date: "2026-09-10", EPSEstimated: &eps, Time: "amc"},
			{Symbol: "", Date: "2026-09-11"},
			{Symbol: "AAPL", Date: "not-a-date"},
		})
	}))
	defer srv.Close()

	client := NewFMPClient("test-key", time.Second, zap.NewNop())
	client.baseURL = srv.URL

	events, err := client.FetchUpcomingEvents(context.Background(), time.Now(), time.Now().AddDate(0, 0, 90))
	require.NoError(t, err)
	require.Len(t, events, 1)

	assert.Equal(t, "20260910_NVDA", events[0].ID)
	assert.Equal(t, "NVDA", events[0].Ticker)
	assert.Equal(t, "After", events[0].EarningsTime)
	require.NotNil(t, events[0].EstimatedEPS)
	assert.Equal(t, 1.25, *events[0].EstimatedEPS)
}

func TestFMPFetchActuals_PicksMostRecent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "NVDA", r.URL.Query().Get("symbol"))
		older, newer := 0.95, 1.30
		json.NewEncoder(w).Encode([]fmpSurpriseRow{
			{Date: "2026-05-20", ActualEPS: &older},
			{Date: "2026-08-19", ActualEPS: &newer},
		})
	}))
	defer srv.Close()

	client := NewFMPClient("test-key", time.Second, zap.NewNop())
	client.baseURL = srv.URL

	eps, revenue, err := client.FetchActuals(context.Background(), "nvda")
	require.NoError(t, err)
	require.NotNil(t, eps)
	assert.Equal(t, 1.30, *eps)
	assert.Nil(t, revenue)
}
