package domain

import (
	"sort"
	"time"
)

// MarketIndex is one chartable market index. The vendor prefixes index
// tickers with "I:".
type MarketIndex struct {
	VendorTicker string
	Name         string
}

var marketIndices = map[string]MarketIndex{
	"SPX": {VendorTicker: "I:SPX", Name: "S&P 500"},
	"NDX": {VendorTicker: "I:NDX", Name: "Nasdaq-100"},
	"DJI": {VendorTicker: "I:DJI", Name: "Dow Jones Industrial Average"},
	"RUT": {VendorTicker: "I:RUT", Name: "Russell 2000"},
	"VIX": {VendorTicker: "I:VIX", Name: "CBOE Volatility Index"},
}

// LookupMarketIndex resolves an index symbol like "SPX".
func LookupMarketIndex(symbol string) (MarketIndex, bool) {
	idx, ok := marketIndices[symbol]
	return idx, ok
}

// MarketIndexSymbols returns the supported index symbols, sorted.
func MarketIndexSymbols() []string {
	symbols := make([]string, 0, len(marketIndices))
	for s := range marketIndices {
		symbols = append(symbols, s)
	}
	sort.Strings(symbols)
	return symbols
}

// AggregateWindow maps a chart period to a vendor aggregates request.
type AggregateWindow struct {
	From       time.Time
	To         time.Time
	Timespan   string
	Multiplier int
}

// PeriodWindow resolves a chart period (5D, 1M, 3M, YTD, 1Y, 5Y) relative
// to today. The 5D window reaches back seven days so weekends do not empty
// it.
func PeriodWindow(period string, today time.Time) (AggregateWindow, bool) {
	switch period {
	case "5D":
		return AggregateWindow{From: today.AddDate(0, 0, -7), To: today, Timespan: "hour", Multiplier: 1}, true
	case "1M":
		return AggregateWindow{From: today.AddDate(0, 0, -30), To: today, Timespan: "day", Multiplier: 1}, true
	case "3M":
		return AggregateWindow{From: today.AddDate(0, 0, -90), To: today, Timespan: "day", Multiplier: 1}, true
	case "YTD":
		jan1 := time.Date(today.Year(), time.January, 1, 0, 0, 0, 0, today.Location())
		return AggregateWindow{From: jan1, To: today, Timespan: "day", Multiplier: 1}, true
	case "1Y":
		return AggregateWindow{From: today.AddDate(0, 0, -365), To: today, Timespan: "day", Multiplier: 1}, true
	case "5Y":
		return AggregateWindow{From: today.AddDate(0, 0, -5*365), To: today, Timespan: "week", Multiplier: 1}, true
	}
	return AggregateWindow{}, false
}

// MarketPeriods returns the supported chart periods, sorted.
func MarketPeriods() []string {
	return []string{"1M", "1Y", "3M", "5D", "5Y", "YTD"}
}

// AggregateBar is one vendor OHLC bar, reduced to what charting needs.
type AggregateBar struct {
	Timestamp time.Time `json:"timestamp"`
	Close     float64   `json:"close"`
	Volume    float64   `json:"volume"`
}

// MarketMover is one gainer or decliner from the session snapshot.
type MarketMover struct {
	Symbol        string   `json:"symbol"`
	CompanyName   string   `json:"companyName"`
	Price         *float64 `json:"price"`
	ChangePercent float64  `json:"changePercent"`
}
