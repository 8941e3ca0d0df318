package ingestion

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/domain"
)

const (
	quiverVendor  = "QuiverQuant"
	quiverBaseURL = "https://api.quiverquant.com/beta"

	// quiverFetchLimit bounds one pull; the disclosure-date cutoff trims
	// the rest client-side.
	quiverFetchLimit = 500
)

// amountBrackets maps the standard congressional disclosure ranges to
// numeric bounds. Unknown range text falls back to the smallest bracket.
var amountBrackets = map[string][2]int{
	"$1,001 - $15,000":          {1001, 15000},
	"$15,001 - $50,000":         {15001, 50000},
	"$50,001 - $100,000":        {50001, 100000},
	"$100,001 - $250,000":       {100001, 250000},
	"$250,001 - $500,000":       {250001, 500000},
	"$500,001 - $1,000,000":     {500001, 1000000},
	"$1,000,001 - $5,000,000":   {1000001, 5000000},
	"$5,000,001 - $25,000,000":  {5000001, 25000000},
	"$25,000,001 - $50,000,000": {25000001, 50000000},
	"Over $50,000,000":          {50000001, 100000000},
}

// QuiverClient pulls disclosed congressional trades from the QuiverQuant
// beta API. It implements ports.CongressFeed.
type QuiverClient struct {
	client  *http.Client
	baseURL string
	apiKey  string
	logger  *zap.Logger
}

// NewQuiverClient creates a QuiverQuant client. The API key is optional;
// without one the vendor serves a delayed public feed.
func NewQuiverClient(apiKey string, timeout time.Duration, logger *zap.Logger) *QuiverClient {
	return &QuiverClient{
		client:  newHTTPClient(timeout),
		baseURL: quiverBaseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

type quiverTrade struct {
	Representative  string `json:"Representative"`
	Ticker          string `json:"Ticker"`
	Transaction     string `json:"Transaction"`
	TransactionDate string `json:"TransactionDate"`
	ReportDate      string `json:"ReportDate"`
	Range           string `json:"Range"`
	House           string `json:"House"`
	Party           string `json:"Party"`
	State           string `json:"State"`
	Asset           string `json:"Asset"`
}

// FetchRecentTrades returns trades disclosed within the trailing daysBack
// window, normalized into domain records. Rows that fail to parse are
// logged and skipped rather than failing the pull.
func (c *QuiverClient) FetchRecentTrades(ctx context.Context, daysBack int) ([]domain.CongressTrade, error) {
	rawURL := withQuery(c.baseURL+"/historical/congresstrading", map[string]string{
		"limit": fmt.Sprintf("%d", quiverFetchLimit),
	})
	headers := map[string]string{}
	if c.apiKey != "" {
		headers["Authorization"] = "Bearer " + c.apiKey
	}

	var rows []quiverTrade
	if err := getJSON(ctx, c.client, quiverVendor, rawURL, headers, &rows); err != nil {
		return nil, err
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)
	trades := make([]domain.CongressTrade, 0, len(rows))
	for _, row := range rows {
		trade, err := parseQuiverTrade(row)
		if err != nil {
			c.logger.Warn("Skipping unparseable QuiverQuant row",
				zap.String("representative", row.Representative),
				zap.String("ticker", row.Ticker),
				zap.Error(err))
			continue
		}
		if trade.DisclosureDate.Before(cutoff) {
			continue
		}
		trades = append(trades, trade)
	}

	c.logger.Info("Fetched congress trades from QuiverQuant",
		zap.Int("fetched", len(rows)),
		zap.Int("kept", len(trades)))
	return trades, nil
}

func parseQuiverTrade(row quiverTrade) (domain.CongressTrade, error) {
	if row.Representative == "" || row.Ticker == "" {
		return domain.CongressTrade{}, fmt.Errorf("missing representative or ticker")
	}

	txDate, err := time.Parse("2006-01-02", row.TransactionDate)
	if err != nil {
		return domain.CongressTrade{}, fmt.Errorf("transaction date %q: %w", row.TransactionDate, err)
	}
	discDate := txDate
	if row.ReportDate != "" {
		if d, err := time.Parse("2006-01-02", row.ReportDate); err == nil {
			discDate = d
		}
	}

	party, ok := domain.ParseParty(row.Party)
	if !ok {
		party = domain.PartyUnknown
	}
	chamber, ok := domain.ParseChamber(row.House)
	if !ok {
		chamber = domain.ChamberHouse
	}
	txType, ok := domain.ParseTransactionType(row.Transaction)
	if !ok {
		txType = domain.TxPurchase
	}

	bounds := parseAmountRange(row.Range)
	memberID := domain.NormalizeMemberID(row.Representative)

	companyName := row.Asset
	if companyName == "" {
		companyName = row.Ticker
	}

	daysToDisclose := int(discDate.Sub(txDate).Hours() / 24)
	if daysToDisclose < 0 {
		daysToDisclose = 0
	}

	return domain.CongressTrade{
		ID:              fmt.Sprintf("%s#%s#%s", discDate.Format("2006-01-02"), memberID, row.Ticker),
		MemberID:        memberID,
		MemberName:      row.Representative,
		Party:           party,
		Chamber:         chamber,
		State:           row.State,
		Ticker:          row.Ticker,
		CompanyName:     companyName,
		TransactionType: txType,
		TransactionDate: txDate,
		DisclosureDate:  discDate,
		AmountRangeLow:  bounds[0],
		AmountRangeHigh: bounds[1],
		DaysToDisclose:  daysToDisclose,
	}, nil
}

func parseAmountRange(s string) [2]int {
	if bounds, ok := amountBrackets[s]; ok {
		return bounds
	}
	return [2]int{1001, 15000}
}

// AggregateMembers derives member profiles from a trade batch. QuiverQuant
// has no dedicated members endpoint, so profiles are rebuilt from trades on
// every ingestion pass.
func AggregateMembers(trades []domain.CongressTrade) []domain.CongressMember {
	type memberAgg struct {
		member       domain.CongressMember
		trades       []domain.CongressTrade
		tickerCounts map[string]int
	}

	byID := make(map[string]*memberAgg)
	order := make([]string, 0)
	for _, t := range trades {
		agg, ok := byID[t.MemberID]
		if !ok {
			agg = &memberAgg{
				member: domain.CongressMember{
					ID:      t.MemberID,
					Name:    t.MemberName,
					Party:   t.Party,
					Chamber: t.Chamber,
					State:   t.State,
				},
				tickerCounts: make(map[string]int),
			}
			byID[t.MemberID] = agg
			order = append(order, t.MemberID)
		}
		agg.trades = append(agg.trades, t)
		if t.TransactionType == domain.TxPurchase {
			agg.tickerCounts[t.Ticker]++
		}
	}

	members := make([]domain.CongressMember, 0, len(byID))
	for _, id := range order {
		agg := byID[id]
		n := float64(len(agg.trades))

		var totalReturn, totalLag float64
		for _, t := range agg.trades {
			if t.ReturnSinceTransaction != nil {
				totalReturn += *t.ReturnSinceTransaction
			}
			totalLag += float64(t.DisclosureLag())
		}

		tickers := make([]string, 0, len(agg.tickerCounts))
		for ticker := range agg.tickerCounts {
			tickers = append(tickers, ticker)
		}
		sort.Slice(tickers, func(i, j int) bool {
			if agg.tickerCounts[tickers[i]] != agg.tickerCounts[tickers[j]] {
				return agg.tickerCounts[tickers[i]] > agg.tickerCounts[tickers[j]]
			}
			return tickers[i] < tickers[j]
		})
		if len(tickers) > 5 {
			tickers = tickers[:5]
		}

		agg.member.TotalTrades = len(agg.trades)
		agg.member.EstimatedPortfolioReturn = round2(totalReturn / n)
		agg.member.AvgDaysToDisclose = round1(totalLag / n)
		agg.member.TopHoldings = tickers
		members = append(members, agg.member)
	}
	return members
}
