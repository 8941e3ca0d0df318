package ingestion

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/domain"
)

const (
	fearGreedVendor = "CNN Fear & Greed"
	fearGreedURL    = "https://production.dataviz.cnn.io/index/fearandgreed/graphdata"

	// CNN's CDN rejects requests without a browser-like User-Agent.
	fearGreedUserAgent = "Mozilla/5.0 (compatible; TradeStreak/1.0)"
)

// FearGreedClient pulls the composite fear/greed index from CNN's unofficial
// dataviz endpoint. It implements ports.MoodFeed.
type FearGreedClient struct {
	client *http.Client
	rawURL string
	logger *zap.Logger
}

// NewFearGreedClient creates a fear/greed client. No API key is required.
func NewFearGreedClient(timeout time.Duration, logger *zap.Logger) *FearGreedClient {
	return &FearGreedClient{
		client: newHTTPClient(timeout),
		rawURL: fearGreedURL,
		logger: logger,
	}
}

type fearGreedScore struct {
	Score         float64 `json:"score"`
	PreviousClose float64 `json:"previous_close"`
}

type fearGreedHistory struct {
	OneWeekAgo  float64 `json:"one_week_ago"`
	OneMonthAgo float64 `json:"one_month_ago"`
	OneYearAgo  float64 `json:"one_year_ago"`
}

type fearGreedIndicator struct {
	Score  float64 `json:"score"`
	Rating string  `json:"rating"`
}

type fearGreedResponse struct {
	FearAndGreed           fearGreedScore      `json:"fear_and_greed"`
	FearAndGreedHistorical fearGreedHistory    `json:"fear_and_greed_historical"`
	MarketMomentumSP500    *fearGreedIndicator `json:"market_momentum_sp500"`
	MarketMomentumSP125    *fearGreedIndicator `json:"market_momentum_sp125"`
	StockPriceStrength     *fearGreedIndicator `json:"stock_price_strength"`
	StockPriceBreadth      *fearGreedIndicator `json:"stock_price_breadth"`
	PutCallOptions         *fearGreedIndicator `json:"put_call_options"`
	MarketVolatilityVIX    *fearGreedIndicator `json:"market_volatility_vix"`
	SafeHavenDemand        *fearGreedIndicator `json:"safe_haven_demand"`
	JunkBondDemand         *fearGreedIndicator `json:"junk_bond_demand"`
}

// FetchCurrentMood returns the current composite index with its component
// indicators.
func (c *FearGreedClient) FetchCurrentMood(ctx context.Context) (domain.MarketMood, error) {
	headers := map[string]string{"User-Agent": fearGreedUserAgent}

	var resp fearGreedResponse
	if err := getJSON(ctx, c.client, fearGreedVendor, c.rawURL, headers, &resp); err != nil {
		return domain.MarketMood{}, err
	}

	index := int(resp.FearAndGreed.Score)
	mood := domain.MarketMood{
		FearGreedIndex: index,
		Sentiment:      domain.SentimentFromIndex(index),
		PreviousClose:  int(resp.FearAndGreed.PreviousClose),
		WeekAgo:        int(resp.FearAndGreedHistorical.OneWeekAgo),
		MonthAgo:       int(resp.FearAndGreedHistorical.OneMonthAgo),
		YearAgo:        int(resp.FearAndGreedHistorical.OneYearAgo),
		UpdatedAt:      time.Now().UTC(),
		Indicators:     parseIndicators(resp),
	}

	c.logger.Info("Fetched fear/greed index",
		zap.Int("index", mood.FearGreedIndex),
		zap.String("sentiment", string(mood.Sentiment)))
	return mood, nil
}

func parseIndicators(resp fearGreedResponse) []domain.MoodIndicator {
	type component struct {
		data        *fearGreedIndicator
		name        string
		description string
	}
	components := []component{
		{resp.MarketMomentumSP500, "Market Momentum (S&P 500)", "Comparing S&P 500 to its 125-day moving average"},
		{resp.MarketMomentumSP125, "Market Momentum (Breadth)", "Number of stocks hitting 52-week highs vs lows"},
		{resp.StockPriceStrength, "Stock Price Strength", "Stocks near 52-week highs vs lows"},
		{resp.StockPriceBreadth, "Stock Price Breadth", "Volume in advancing vs declining stocks"},
		{resp.PutCallOptions, "Put/Call Ratio", "Put option trading vs call option trading"},
		{resp.MarketVolatilityVIX, "Market Volatility (VIX)", "CBOE Volatility Index"},
		{resp.SafeHavenDemand, "Safe Haven Demand", "Relative bond vs stock performance"},
		{resp.JunkBondDemand, "Junk Bond Demand", "Spread between junk and investment-grade bonds"},
	}

	indicators := make([]domain.MoodIndicator, 0, len(components))
	for _, comp := range components {
		if comp.data == nil {
			continue
		}
		rating := comp.data.Rating
		if rating == "" {
			rating = "Neutral"
		}
		desc := comp.description
		indicators = append(indicators, domain.MoodIndicator{
			Name:         comp.name,
			Value:        comp.data.Score,
			Contribution: rating,
			Description:  &desc,
		})
	}
	return indicators
}
