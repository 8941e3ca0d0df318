package ingestion

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/domain"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

const (
	marketDataVendor  = "Polygon"
	marketDataBaseURL = "https://api.massive.com"
)

// MarketDataClient pulls quotes, ratios, and short interest from the
// Polygon-compatible market data API. It implements ports.MarketData.
type MarketDataClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewMarketDataClient creates a market data client.
func NewMarketDataClient(apiKey string, timeout time.Duration, logger *zap.Logger) *MarketDataClient {
	return &MarketDataClient{
		client:  newHTTPClient(timeout),
		baseURL: marketDataBaseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

func (c *MarketDataClient) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

type snapshotBar struct {
	Close  float64 `json:"c"`
	Volume float64 `json:"v"`
}

type snapshotResponse struct {
	Ticker struct {
		Day       snapshotBar `json:"day"`
		PrevDay   snapshotBar `json:"prevDay"`
		LastTrade struct {
			Price float64 `json:"p"`
		} `json:"lastTrade"`
	} `json:"ticker"`
}

// FetchSnapshot returns the current price snapshot for a symbol. The day
// bar's close is preferred; outside market hours it falls back to the last
// trade print.
func (c *MarketDataClient) FetchSnapshot(ctx context.Context, symbol string) (domain.StockSnapshot, error) {
	symbol = strings.ToUpper(symbol)
	rawURL := fmt.Sprintf("%s/v2/snapshot/locale/us/markets/stocks/tickers/%s", c.baseURL, symbol)

	var resp snapshotResponse
	if err := getJSON(ctx, c.client, marketDataVendor, rawURL, c.headers(), &resp); err != nil {
		if apperrors.IsNotFound(err) {
			return domain.StockSnapshot{}, apperrors.NewNotFoundError("Stock", symbol)
		}
		return domain.StockSnapshot{}, err
	}

	price := resp.Ticker.Day.Close
	if price == 0 {
		price = resp.Ticker.LastTrade.Price
	}
	if price == 0 {
		return domain.StockSnapshot{}, apperrors.NewNotFoundError("Stock", symbol)
	}

	var change, changePct float64
	if prev := resp.Ticker.PrevDay.Close; prev != 0 {
		change = price - prev
		changePct = round2(change / prev * 100)
	}

	return domain.StockSnapshot{
		Symbol:           symbol,
		Price:            price,
		Change:           change,
		ChangePercent:    changePct,
		Volume:           int64(resp.Ticker.Day.Volume),
		LatestTradingDay: time.Now().UTC().Format("2006-01-02"),
	}, nil
}

type ratiosRow struct {
	Ticker           string   `json:"ticker"`
	Date             *string  `json:"date"`
	Price            *float64 `json:"price"`
	MarketCap        *float64 `json:"market_cap"`
	EnterpriseValue  *float64 `json:"enterprise_value"`
	EarningsPerShare *float64 `json:"earnings_per_share"`
	PriceToEarnings  *float64 `json:"price_to_earnings"`
	PriceToBook      *float64 `json:"price_to_book"`
	PriceToSales     *float64 `json:"price_to_sales"`
	DividendYield    *float64 `json:"dividend_yield"`
	ReturnOnAssets   *float64 `json:"return_on_assets"`
	ReturnOnEquity   *float64 `json:"return_on_equity"`
	DebtToEquity     *float64 `json:"debt_to_equity"`
	Current          *float64 `json:"current"`
	Quick            *float64 `json:"quick"`
	EVToEBITDA       *float64 `json:"ev_to_ebitda"`
	FreeCashFlow     *float64 `json:"free_cash_flow"`
	AverageVolume    *float64 `json:"average_volume"`
}

type ratiosResponse struct {
	Results []ratiosRow `json:"results"`
}

// FetchRatios returns the most recent financial ratio report for a symbol.
func (c *MarketDataClient) FetchRatios(ctx context.Context, symbol string) (domain.StockRatios, error) {
	symbol = strings.ToUpper(symbol)
	rawURL := withQuery(c.baseURL+"/stocks/financials/v1/ratios", map[string]string{
		"ticker": symbol,
		"limit":  "1",
	})

	var resp ratiosResponse
	if err := getJSON(ctx, c.client, marketDataVendor, rawURL, c.headers(), &resp); err != nil {
		return domain.StockRatios{}, err
	}
	if len(resp.Results) == 0 {
		return domain.StockRatios{}, apperrors.NewNotFoundError("Stock ratios", symbol)
	}

	row := resp.Results[0]
	return domain.StockRatios{
		Ticker:           symbol,
		Date:             row.Date,
		Price:            row.Price,
		MarketCap:        row.MarketCap,
		EnterpriseValue:  row.EnterpriseValue,
		EarningsPerShare: row.EarningsPerShare,
		PriceToEarnings:  row.PriceToEarnings,
		PriceToBook:      row.PriceToBook,
		PriceToSales:     row.PriceToSales,
		DividendYield:    row.DividendYield,
		ReturnOnAssets:   row.ReturnOnAssets,
		ReturnOnEquity:   row.ReturnOnEquity,
		DebtToEquity:     row.DebtToEquity,
		CurrentRatio:     row.Current,
		QuickRatio:       row.Quick,
		EVToEBITDA:       row.EVToEBITDA,
		FreeCashFlow:     row.FreeCashFlow,
		AverageVolume:    row.AverageVolume,
	}, nil
}

type aggsBar struct {
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
	Timestamp int64   `json:"t"`
}

type aggsResponse struct {
	Results []aggsBar `json:"results"`
}

// FetchIndexAggregates returns bars for a vendor index ticker over the
// window, oldest first. A missing series comes back empty, not as an error.
func (c *MarketDataClient) FetchIndexAggregates(ctx context.Context, vendorTicker string, multiplier int, timespan string, from, to time.Time) ([]domain.AggregateBar, error) {
	rawURL := withQuery(fmt.Sprintf("%s/v2/aggs/ticker/%s/range/%d/%s/%s/%s",
		c.baseURL, vendorTicker, multiplier, timespan,
		from.Format("2006-01-02"), to.Format("2006-01-02"),
	), map[string]string{
		"adjusted": "true",
		"sort":     "asc",
		"limit":    "5000",
	})

	var resp aggsResponse
	if err := getJSON(ctx, c.client, marketDataVendor, rawURL, c.headers(), &resp); err != nil {
		return nil, err
	}

	bars := make([]domain.AggregateBar, 0, len(resp.Results))
	for _, row := range resp.Results {
		bars = append(bars, domain.AggregateBar{
			Timestamp: time.UnixMilli(row.Timestamp).UTC(),
			Close:     row.Close,
			Volume:    row.Volume,
		})
	}
	return bars, nil
}

type bulkTicker struct {
	Ticker    string      `json:"ticker"`
	Day       snapshotBar `json:"day"`
	PrevDay   snapshotBar `json:"prevDay"`
	LastTrade struct {
		Price float64 `json:"p"`
	} `json:"lastTrade"`
	TodaysChangePerc float64 `json:"todaysChangePerc"`
}

type bulkSnapshotResponse struct {
	Tickers []bulkTicker `json:"tickers"`
}

// FetchBulkSnapshots returns snapshots for many symbols in one vendor call,
// keyed by upper-cased symbol. Symbols without data are absent from the map.
func (c *MarketDataClient) FetchBulkSnapshots(ctx context.Context, symbols []string) (map[string]domain.StockSnapshot, error) {
	upper := make([]string, len(symbols))
	for i, s := range symbols {
		upper[i] = strings.ToUpper(s)
	}
	rawURL := withQuery(c.baseURL+"/v2/snapshot/locale/us/markets/stocks/tickers", map[string]string{
		"tickers": strings.Join(upper, ","),
	})

	var resp bulkSnapshotResponse
	if err := getJSON(ctx, c.client, marketDataVendor, rawURL, c.headers(), &resp); err != nil {
		return nil, err
	}

	snapshots := make(map[string]domain.StockSnapshot, len(resp.Tickers))
	for _, row := range resp.Tickers {
		if row.Ticker == "" {
			continue
		}
		snapshots[strings.ToUpper(row.Ticker)] = snapshotFromBulk(row)
	}
	return snapshots, nil
}

func snapshotFromBulk(row bulkTicker) domain.StockSnapshot {
	price := row.Day.Close
	if price == 0 {
		price = row.LastTrade.Price
	}

	var change float64
	if prev := row.PrevDay.Close; prev != 0 && price != 0 {
		change = price - prev
	}
	changePct := row.TodaysChangePerc
	if changePct == 0 {
		if prev := row.PrevDay.Close; prev != 0 && price != 0 {
			changePct = round2(change / prev * 100)
		}
	}

	return domain.StockSnapshot{
		Symbol:           strings.ToUpper(row.Ticker),
		Price:            price,
		Change:           change,
		ChangePercent:    changePct,
		Volume:           int64(row.Day.Volume),
		LatestTradingDay: time.Now().UTC().Format("2006-01-02"),
	}
}

// FetchMarketMovers returns the session's top gainers and losers.
func (c *MarketDataClient) FetchMarketMovers(ctx context.Context) ([]domain.MarketMover, []domain.MarketMover, error) {
	gainers, err := c.fetchMovers(ctx, "gainers")
	if err != nil {
		return nil, nil, err
	}
	losers, err := c.fetchMovers(ctx, "losers")
	if err != nil {
		return nil, nil, err
	}
	return gainers, losers, nil
}

func (c *MarketDataClient) fetchMovers(ctx context.Context, direction string) ([]domain.MarketMover, error) {
	rawURL := fmt.Sprintf("%s/v2/snapshot/locale/us/markets/stocks/%s", c.baseURL, direction)

	var resp bulkSnapshotResponse
	if err := getJSON(ctx, c.client, marketDataVendor, rawURL, c.headers(), &resp); err != nil {
		return nil, err
	}

	movers := make([]domain.MarketMover, 0, len(resp.Tickers))
	for _, row := range resp.Tickers {
		if row.Ticker == "" {
			continue
		}
		symbol := strings.ToUpper(row.Ticker)
		mover := domain.MarketMover{
			Symbol:        symbol,
			CompanyName:   symbol,
			ChangePercent: round2(row.TodaysChangePerc),
		}
		if price := row.Day.Close; price != 0 {
			mover.Price = &price
		} else if price := row.LastTrade.Price; price != 0 {
			mover.Price = &price
		}
		movers = append(movers, mover)
	}
	return movers, nil
}

type shortInterestRow struct {
	ShortInterest  *float64 `json:"short_interest"`
	AvgDailyVolume *float64 `json:"avg_daily_volume"`
	DaysToCover    *float64 `json:"days_to_cover"`
	SettlementDate *string  `json:"settlement_date"`
}

type shortInterestResponse struct {
	Results []shortInterestRow `json:"results"`
}

// FetchShortInterest returns the latest short interest report for a symbol.
func (c *MarketDataClient) FetchShortInterest(ctx context.Context, symbol string) (domain.ShortInterest, error) {
	symbol = strings.ToUpper(symbol)
	rawURL := withQuery(c.baseURL+"/stocks/v1/short-interest", map[string]string{
		"ticker": symbol,
		"limit":  "1",
		"sort":   "settlement_date.desc",
	})

	var resp shortInterestResponse
	if err := getJSON(ctx, c.client, marketDataVendor, rawURL, c.headers(), &resp); err != nil {
		return domain.ShortInterest{}, err
	}
	if len(resp.Results) == 0 {
		return domain.ShortInterest{}, apperrors.NewNotFoundError("Short interest", symbol)
	}

	row := resp.Results[0]
	return domain.ShortInterest{
		Ticker:         symbol,
		SharesShort:    row.ShortInterest,
		AvgDailyVolume: row.AvgDailyVolume,
		DaysToCover:    row.DaysToCover,
		SettlementDate: row.SettlementDate,
	}, nil
}
