package ingestion

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/domain"
)

const (
	fmpVendor  = "FMP"
	fmpBaseURL = "https://financialmodelingprep.com"

	fmpTradeLimit = 200
)

// FMPClient pulls congressional trades and earnings data from Financial
// Modeling Prep's stable API. It implements ports.CongressFeed and
// ports.EarningsCalendar.
type FMPClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewFMPClient creates an FMP client. Without an API key every fetch
// returns empty with a warning; FMP has no free tier for these endpoints.
func NewFMPClient(apiKey string, timeout time.Duration, logger *zap.Logger) *FMPClient {
	return &FMPClient{
		client:  newHTTPClient(timeout),
		baseURL: fmpBaseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

type fmpTrade struct {
	FirstName        string `json:"firstName"`
	LastName         string `json:"lastName"`
	Office           string `json:"office"`
	DateReceived     string `json:"dateRecieved"` // vendor's spelling
	TransactionDate  string `json:"transactionDate"`
	Type             string `json:"type"`
	Amount           string `json:"amount"`
	Symbol           string `json:"symbol"`
	AssetDescription string `json:"assetDescription"`
}

// FetchRecentTrades merges the latest Senate and House disclosures, newest
// disclosure first. FMP does not provide party or state; those fields stay
// unknown/empty and the member refresh fills them from QuiverQuant.
func (c *FMPClient) FetchRecentTrades(ctx context.Context, daysBack int) ([]domain.CongressTrade, error) {
	if c.apiKey == "" {
		c.logger.Warn("FMP API key not configured, skipping trade fetch")
		return nil, nil
	}

	senate, err := c.fetchChamber(ctx, "/stable/senate-latest", domain.ChamberSenate)
	if err != nil {
		return nil, err
	}
	house, err := c.fetchChamber(ctx, "/stable/house-latest", domain.ChamberHouse)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)
	merged := make([]domain.CongressTrade, 0, len(senate)+len(house))
	for _, t := range append(senate, house...) {
		if t.DisclosureDate.Before(cutoff) {
			continue
		}
		merged = append(merged, t)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].DisclosureDate.After(merged[j].DisclosureDate)
	})

	c.logger.Info("Fetched congress trades from FMP",
		zap.Int("senate", len(senate)),
		zap.Int("house", len(house)),
		zap.Int("kept", len(merged)))
	return merged, nil
}

func (c *FMPClient) fetchChamber(ctx context.Context, endpoint string, chamber domain.Chamber) ([]domain.CongressTrade, error) {
	rawURL := withQuery(c.baseURL+endpoint, map[string]string{
		"apikey": c.apiKey,
		"limit":  fmt.Sprintf("%d", fmpTradeLimit),
	})

	var rows []fmpTrade
	if err := getJSON(ctx, c.client, fmpVendor, rawURL, nil, &rows); err != nil {
		return nil, err
	}

	trades := make([]domain.CongressTrade, 0, len(rows))
	for _, row := range rows {
		trade, err := parseFMPTrade(row, chamber)
		if err != nil {
			c.logger.Warn("Skipping unparseable FMP row",
				zap.String("symbol", row.Symbol),
				zap.Error(err))
			continue
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func parseFMPTrade(row fmpTrade, defaultChamber domain.Chamber) (domain.CongressTrade, error) {
	fullName := strings.TrimSpace(row.FirstName + " " + row.LastName)
	ticker := strings.ToUpper(strings.TrimSpace(row.Symbol))
	if fullName == "" || ticker == "" {
		return domain.CongressTrade{}, fmt.Errorf("missing name or symbol")
	}

	txDate, err := parseFMPDate(row.TransactionDate)
	if err != nil {
		return domain.CongressTrade{}, fmt.Errorf("transaction date %q: %w", row.TransactionDate, err)
	}
	discDate := txDate
	if d, err := parseFMPDate(row.DateReceived); err == nil {
		discDate = d
	}

	chamber := defaultChamber
	if parsed, ok := domain.ParseChamber(row.Office); ok {
		chamber = parsed
	}
	txType, ok := domain.ParseTransactionType(row.Type)
	if !ok {
		txType = domain.TxPurchase
	}

	bounds := parseAmountRange(row.Amount)
	memberID := domain.NormalizeMemberID(fullName)

	companyName := row.AssetDescription
	if companyName == "" {
		companyName = ticker
	}

	daysToDisclose := int(discDate.Sub(txDate).Hours() / 24)
	if daysToDisclose < 0 {
		daysToDisclose = 0
	}

	return domain.CongressTrade{
		ID:              fmt.Sprintf("%s#%s#%s", discDate.Format("2006-01-02"), memberID, ticker),
		MemberID:        memberID,
		MemberName:      fullName,
		Party:           domain.PartyUnknown,
		Chamber:         chamber,
		Ticker:          ticker,
		CompanyName:     companyName,
		TransactionType: txType,
		TransactionDate: txDate,
		DisclosureDate:  discDate,
		AmountRangeLow:  bounds[0],
		AmountRangeHigh: bounds[1],
		DaysToDisclose:  daysToDisclose,
	}, nil
}

func parseFMPDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range []string{"2006-01-02", "01/02/2006", "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date format")
}

type fmpEarningsRow struct {
	Symbol           string   `json:"symbol"`
	Date             string   `json:"date"`
	EPSEstimated     *float64 `json:"epsEstimated"`
	RevenueEstimated *float64 `json:"revenueEstimated"`
	Time             string   `json:"time"`
}

// FetchUpcomingEvents returns scheduled earnings releases in [from, to].
func (c *FMPClient) FetchUpcomingEvents(ctx context.Context, from, to time.Time) ([]domain.EarningsEvent, error) {
	if c.apiKey == "" {
		c.logger.Warn("FMP API key not configured, skipping earnings fetch")
		return nil, nil
	}

	rawURL := withQuery(c.baseURL+"/stable/earnings-calendar", map[string]string{
		"apikey": c.apiKey,
		"from":   from.Format("2006-01-02"),
		"to":     to.Format("2006-01-02"),
	})

	var rows []fmpEarningsRow
	if err := getJSON(ctx, c.client, fmpVendor, rawURL, nil, &rows); err != nil {
		return nil, err
	}

	events := make([]domain.EarningsEvent, 0, len(rows))
	for _, row := range rows {
		ticker := strings.ToUpper(strings.TrimSpace(row.Symbol))
		if ticker == "" {
			continue
		}
		date, err := time.Parse("2006-01-02", row.Date)
		if err != nil {
			continue
		}
		events = append(events, domain.EarningsEvent{
			ID:               fmt.Sprintf("%s_%s", date.Format("20060102"), ticker),
			Ticker:           ticker,
			CompanyName:      ticker,
			EarningsDate:     date,
			EarningsTime:     earningsTimeLabel(row.Time),
			EstimatedEPS:     row.EPSEstimated,
			EstimatedRevenue: row.RevenueEstimated,
		})
	}

	c.logger.Info("Fetched earnings calendar from FMP",
		zap.Int("count", len(events)),
		zap.String("from", from.Format("2006-01-02")),
		zap.String("to", to.Format("2006-01-02")))
	return events, nil
}

func earningsTimeLabel(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bmo", "before market open":
		return "Before"
	case "amc", "after market close":
		return "After"
	default:
		return "Unknown"
	}
}

type fmpSurpriseRow struct {
	Date         string   `json:"date"`
	ActualEPS    *float64 `json:"actualEarningResult"`
	EstimatedEPS *float64 `json:"estimatedEarning"`
}

// FetchActuals returns the reported EPS for the ticker's most recent
// release. FMP's surprises endpoint carries no revenue actuals, so the
// revenue pointer is always nil.
func (c *FMPClient) FetchActuals(ctx context.Context, ticker string) (*float64, *float64, error) {
	if c.apiKey == "" {
		c.logger.Warn("FMP API key not configured, skipping actuals fetch")
		return nil, nil, nil
	}

	rawURL := withQuery(c.baseURL+"/stable/earnings-surprises", map[string]string{
		"apikey": c.apiKey,
		"symbol": strings.ToUpper(strings.TrimSpace(ticker)),
	})

	var rows []fmpSurpriseRow
	if err := getJSON(ctx, c.client, fmpVendor, rawURL, nil, &rows); err != nil {
		return nil, nil, err
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].Date > rows[j].Date })
	return rows[0].ActualEPS, nil, nil
}
