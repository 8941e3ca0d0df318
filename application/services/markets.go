package services

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/domain"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

const (
	// maxComparisonSymbols bounds one indices-comparison request.
	maxComparisonSymbols = 5
	// moverDisplayLimit caps gainers and losers in the daily buzz.
	moverDisplayLimit = 5
	// buzzHeadlineLimit caps the derived headline list.
	buzzHeadlineLimit = 3
	// buzzContextDaysBack is the lookback for the buzz index context.
	buzzContextDaysBack = 5
)

// buzzContextSymbols are the indices summarized in the daily buzz.
var buzzContextSymbols = []string{"SPX", "NDX"}

// IndexSummary is the per-index header for the comparison chart.
type IndexSummary struct {
	Name          string   `json:"name"`
	CurrentValue  *float64 `json:"currentValue"`
	ChangePercent *float64 `json:"changePercent"`
}

// IndexComparison is the chartable comparison across requested indices.
// Each data point carries a "date" label plus one normalized value per
// symbol, aligned on the longest series.
type IndexComparison struct {
	Period     string                  `json:"period"`
	Indices    map[string]IndexSummary `json:"indices"`
	DataPoints []map[string]any        `json:"dataPoints"`
}

// FeaturedETF is one catalog fund with live snapshot data.
type FeaturedETF struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Price         *float64 `json:"price"`
	ChangePercent *float64 `json:"changePercent"`
	Volume        int64    `json:"volume"`
}

// ETFSpotlight is the highlighted fund card.
type ETFSpotlight struct {
	Symbol        string   `json:"symbol"`
	Name          string   `json:"name"`
	Description   string   `json:"description"`
	Price         *float64 `json:"price"`
	ChangePercent *float64 `json:"changePercent"`
}

// FeaturedETFsPage is the featured list plus its spotlight.
type FeaturedETFsPage struct {
	Featured  []FeaturedETF `json:"featured"`
	Spotlight ETFSpotlight  `json:"spotlight"`
}

// BuzzHeadline is one derived headline in the daily buzz.
type BuzzHeadline struct {
	Title  string `json:"title"`
	Source string `json:"source"`
}

// DailyBuzz is the market recap with movers and index context.
type DailyBuzz struct {
	Headline      string                  `json:"headline"`
	Body          string                  `json:"body"`
	GeneratedAt   time.Time               `json:"generatedAt"`
	GeneratedByAI bool                    `json:"generatedByAI"`
	Gainers       []domain.MarketMover    `json:"gainers"`
	Losers        []domain.MarketMover    `json:"losers"`
	Headlines     []BuzzHeadline          `json:"headlines"`
	Indices       map[string]IndexSummary `json:"indices"`
}

// MarketsService serves market-wide features: index comparison charts, the
// featured ETF list, and the daily buzz recap.
type MarketsService struct {
	overview ports.MarketOverview
	etfs     domain.ETFCatalog
	logger   *zap.Logger
}

// NewMarketsService creates the markets service.
func NewMarketsService(overview ports.MarketOverview, etfs domain.ETFCatalog, logger *zap.Logger) *MarketsService {
	return &MarketsService{overview: overview, etfs: etfs, logger: logger}
}

// GetIndicesComparison returns normalized historical series for the
// requested indices. Each series is expressed as percent change from the
// period start; a failed fetch degrades that index to null values instead
// of failing the comparison.
func (s *MarketsService) GetIndicesComparison(ctx context.Context, symbolsParam, period string) (IndexComparison, error) {
	window, ok := domain.PeriodWindow(period, time.Now().UTC())
	if !ok {
		return IndexComparison{}, apperrors.NewValidationError(fmt.Sprintf(
			"invalid period %q, must be one of: %s", period, strings.Join(domain.MarketPeriods(), ", ")))
	}

	symbols, err := parseIndexSymbols(symbolsParam)
	if err != nil {
		return IndexComparison{}, err
	}

	allBars := make(map[string][]domain.AggregateBar, len(symbols))
	for _, symbol := range symbols {
		idx, _ := domain.LookupMarketIndex(symbol)
		bars, err := s.overview.FetchIndexAggregates(ctx, idx.VendorTicker, window.Multiplier, window.Timespan, window.From, window.To)
		if err != nil {
			s.logger.Warn("Index aggregates fetch failed",
				zap.String("symbol", symbol),
				zap.Error(err))
			bars = nil
		}
		allBars[symbol] = bars
	}

	indices := make(map[string]IndexSummary, len(symbols))
	for _, symbol := range symbols {
		idx, _ := domain.LookupMarketIndex(symbol)
		summary := IndexSummary{Name: idx.Name}
		if bars := allBars[symbol]; len(bars) > 0 {
			first, last := bars[0].Close, bars[len(bars)-1].Close
			if last != 0 {
				current := last
				summary.CurrentValue = &current
			}
			if first != 0 && last != 0 {
				change := round4((last - first) / first * 100)
				summary.ChangePercent = &change
			}
		}
		indices[symbol] = summary
	}

	// The longest series is the reference timeline; shorter series pad
	// trailing points with null.
	reference := symbols[0]
	for _, symbol := range symbols[1:] {
		if len(allBars[symbol]) > len(allBars[reference]) {
			reference = symbol
		}
	}

	normalized := make(map[string][]float64, len(symbols))
	for _, symbol := range symbols {
		normalized[symbol] = normalizeSeries(allBars[symbol])
	}

	points := make([]map[string]any, 0, len(allBars[reference]))
	for i, bar := range allBars[reference] {
		point := map[string]any{"date": barDateLabel(bar, window.Timespan)}
		for _, symbol := range symbols {
			series := normalized[symbol]
			if i < len(series) {
				point[symbol] = series[i]
			} else {
				point[symbol] = nil
			}
		}
		points = append(points, point)
	}

	s.logger.Info("Built index comparison",
		zap.Strings("symbols", symbols),
		zap.String("period", period),
		zap.Int("points", len(points)))
	return IndexComparison{Period: period, Indices: indices, DataPoints: points}, nil
}

// GetFeaturedETFs returns the curated fund list with live snapshot data.
// A bulk snapshot failure still returns the list, with null prices.
func (s *MarketsService) GetFeaturedETFs(ctx context.Context) (FeaturedETFsPage, error) {
	snapshots, err := s.overview.FetchBulkSnapshots(ctx, s.etfs.Symbols())
	if err != nil {
		s.logger.Warn("Bulk ETF snapshot failed", zap.Error(err))
		snapshots = nil
	}

	featured := make([]FeaturedETF, 0, len(s.etfs.Funds))
	for _, fund := range s.etfs.Funds {
		etf := FeaturedETF{
			Symbol:   fund.Symbol,
			Name:     fund.Name,
			Category: fund.Category,
		}
		if snap, ok := snapshots[fund.Symbol]; ok {
			if snap.Price != 0 {
				price := round2(snap.Price)
				etf.Price = &price
				change := round4(snap.ChangePercent)
				etf.ChangePercent = &change
			}
			etf.Volume = snap.Volume
		}
		featured = append(featured, etf)
	}

	spotlight := ETFSpotlight{
		Symbol:      s.etfs.Spotlight.Symbol,
		Name:        s.etfs.Spotlight.Symbol,
		Description: s.etfs.Spotlight.Description,
	}
	if fund, ok := s.etfs.Find(s.etfs.Spotlight.Symbol); ok {
		spotlight.Name = fund.Name
	}
	if snap, ok := snapshots[s.etfs.Spotlight.Symbol]; ok && snap.Price != 0 {
		price := round2(snap.Price)
		spotlight.Price = &price
		change := round4(snap.ChangePercent)
		spotlight.ChangePercent = &change
	}

	return FeaturedETFsPage{Featured: featured, Spotlight: spotlight}, nil
}

// GetDailyBuzz returns the session recap: templated summary text, top
// movers, derived headlines, and index context. Vendor failures degrade to
// an emptier recap rather than an error.
func (s *MarketsService) GetDailyBuzz(ctx context.Context) (DailyBuzz, error) {
	gainers, losers, err := s.overview.FetchMarketMovers(ctx)
	if err != nil {
		s.logger.Warn("Market movers fetch failed", zap.Error(err))
		gainers, losers = nil, nil
	}
	if len(gainers) > moverDisplayLimit {
		gainers = gainers[:moverDisplayLimit]
	}
	if len(losers) > moverDisplayLimit {
		losers = losers[:moverDisplayLimit]
	}

	now := time.Now().UTC()
	indices := make(map[string]IndexSummary, len(buzzContextSymbols))
	for _, symbol := range buzzContextSymbols {
		idx, _ := domain.LookupMarketIndex(symbol)
		bars, err := s.overview.FetchIndexAggregates(ctx, idx.VendorTicker, 1, "day", now.AddDate(0, 0, -buzzContextDaysBack), now)
		if err != nil || len(bars) < 2 {
			continue
		}
		first, last := bars[0].Close, bars[len(bars)-1].Close
		if first == 0 {
			continue
		}
		current := round2(last)
		change := round4((last - first) / first * 100)
		indices[symbol] = IndexSummary{Name: idx.Name, CurrentValue: &current, ChangePercent: &change}
	}

	body := buzzSummary(gainers, losers, indices, now)
	buzz := DailyBuzz{
		Headline:    buzzHeadlineFrom(body),
		Body:        body,
		GeneratedAt: now,
		Gainers:     gainers,
		Losers:      losers,
		Headlines:   buzzHeadlines(gainers, losers),
		Indices:     indices,
	}

	s.logger.Info("Generated daily buzz",
		zap.Int("gainers", len(gainers)),
		zap.Int("losers", len(losers)),
		zap.Int("indices", len(indices)))
	return buzz, nil
}

func parseIndexSymbols(param string) ([]string, error) {
	if strings.TrimSpace(param) == "" {
		return []string{"SPX", "NDX"}, nil
	}

	symbols := make([]string, 0, maxComparisonSymbols)
	for _, raw := range strings.Split(param, ",") {
		symbol := strings.ToUpper(strings.TrimSpace(raw))
		if symbol != "" {
			symbols = append(symbols, symbol)
		}
	}
	if len(symbols) == 0 {
		return nil, apperrors.NewValidationError("at least one symbol is required")
	}
	if len(symbols) > maxComparisonSymbols {
		return nil, apperrors.NewValidationError(fmt.Sprintf("maximum %d symbols allowed per request", maxComparisonSymbols))
	}

	var unknown []string
	for _, symbol := range symbols {
		if _, ok := domain.LookupMarketIndex(symbol); !ok {
			unknown = append(unknown, symbol)
		}
	}
	if len(unknown) > 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf(
			"unknown index symbol(s): %s, valid options: %s",
			strings.Join(unknown, ", "), strings.Join(domain.MarketIndexSymbols(), ", ")))
	}
	return symbols, nil
}

// normalizeSeries converts bars to percent change from the first close. A
// zero first close flattens the series to zeros.
func normalizeSeries(bars []domain.AggregateBar) []float64 {
	if len(bars) == 0 {
		return nil
	}
	base := bars[0].Close
	series := make([]float64, len(bars))
	if base == 0 {
		return series
	}
	for i, bar := range bars {
		c := bar.Close
		if c == 0 {
			c = base
		}
		series[i] = round4((c - base) / base * 100)
	}
	return series
}

func barDateLabel(bar domain.AggregateBar, timespan string) string {
	if timespan == "hour" {
		return bar.Timestamp.Format("2006-01-02T15:04")
	}
	return bar.Timestamp.Format("2006-01-02")
}

// buzzSummary writes a rule-based recap from the movers and index context.
func buzzSummary(gainers, losers []domain.MarketMover, indices map[string]IndexSummary, now time.Time) string {
	positive := 0
	for _, summary := range indices {
		if summary.ChangePercent != nil && *summary.ChangePercent > 0 {
			positive++
		}
	}
	total := len(indices)
	if total == 0 {
		total = 1
	}

	direction := "higher"
	if positive < total {
		direction = "mixed"
	}
	if positive == 0 {
		direction = "lower"
	}

	parts := []string{fmt.Sprintf("U.S. equities traded %s on %s.", direction, now.Format("January 2, 2006"))}
	if len(gainers) > 0 {
		parts = append(parts, fmt.Sprintf("%s led the session's gainers, advancing %.2f%%.",
			gainers[0].Symbol, gainers[0].ChangePercent))
	}
	if len(losers) > 0 {
		parts = append(parts, fmt.Sprintf("%s was among the notable decliners, falling %.2f%%.",
			losers[0].Symbol, math.Abs(losers[0].ChangePercent)))
	}
	return strings.Join(parts, " ")
}

// buzzHeadlineFrom derives a short headline from the summary text: the
// first sentence, capped at 80 characters.
func buzzHeadlineFrom(summary string) string {
	if summary == "" {
		return "Daily Market Summary"
	}
	first := strings.TrimSpace(strings.SplitN(summary, ".", 2)[0])
	if len(first) > 80 {
		return first[:77] + "..."
	}
	return first
}

func buzzHeadlines(gainers, losers []domain.MarketMover) []BuzzHeadline {
	movers := append(append([]domain.MarketMover{}, gainers...), losers...)
	if len(movers) > buzzHeadlineLimit {
		movers = movers[:buzzHeadlineLimit]
	}

	headlines := make([]BuzzHeadline, 0, len(movers))
	for _, mover := range movers {
		direction := "falls"
		if mover.ChangePercent > 0 {
			direction = "surges"
		}
		headlines = append(headlines, BuzzHeadline{
			Title:  fmt.Sprintf("%s %s %.1f%% in today's session", mover.Symbol, direction, math.Abs(mover.ChangePercent)),
			Source: "Market Data",
		})
	}
	return headlines
}

func round4(f float64) float64 { return math.Round(f*10000) / 10000 }
