package domain

// StockSnapshot is a real-time price snapshot from the market data vendor.
type StockSnapshot struct {
	Symbol           string  `json:"symbol"`
	Price            float64 `json:"price"`
	Change           float64 `json:"change"`
	ChangePercent    float64 `json:"changePercent"`
	Volume           int64   `json:"volume"`
	LatestTradingDay string  `json:"latestTradingDay"`
}

// StockRatios is the latest financial ratio report for a ticker. Every
// field except the ticker is optional: vendors omit ratios they cannot
// compute.
type StockRatios struct {
	Ticker            string   `json:"ticker"`
	Date              *string  `json:"date,omitempty"`
	Price             *float64 `json:"price,omitempty"`
	MarketCap         *float64 `json:"marketCap,omitempty"`
	EnterpriseValue   *float64 `json:"enterpriseValue,omitempty"`
	EarningsPerShare  *float64 `json:"earningsPerShare,omitempty"`
	PriceToEarnings   *float64 `json:"priceToEarnings,omitempty"`
	PriceToBook       *float64 `json:"priceToBook,omitempty"`
	PriceToSales      *float64 `json:"priceToSales,omitempty"`
	DividendYield     *float64 `json:"dividendYield,omitempty"`
	ReturnOnAssets    *float64 `json:"returnOnAssets,omitempty"`
	ReturnOnEquity    *float64 `json:"returnOnEquity,omitempty"`
	DebtToEquity      *float64 `json:"debtToEquity,omitempty"`
	CurrentRatio      *float64 `json:"currentRatio,omitempty"`
	QuickRatio        *float64 `json:"quickRatio,omitempty"`
	EVToEBITDA        *float64 `json:"evToEbitda,omitempty"`
	FreeCashFlow      *float64 `json:"freeCashFlow,omitempty"`
	AverageVolume     *float64 `json:"averageVolume,omitempty"`
}

// ShortInterest is the most recent short interest report for a ticker.
type ShortInterest struct {
	Ticker         string   `json:"ticker"`
	SharesShort    *float64 `json:"sharesShort,omitempty"`
	AvgDailyVolume *float64 `json:"avgDailyVolume,omitempty"`
	DaysToCover    *float64 `json:"daysToCover,omitempty"`
	SettlementDate *string  `json:"settlementDate,omitempty"`
}

// StockDetail combines snapshot, ratios, and short interest for one ticker.
// The snapshot is mandatory; ratios and short interest degrade to nil when
// the vendor call fails.
type StockDetail struct {
	Symbol        string         `json:"symbol"`
	Snapshot      *StockSnapshot `json:"snapshot,omitempty"`
	Ratios        *StockRatios   `json:"ratios,omitempty"`
	ShortInterest *ShortInterest `json:"shortInterest,omitempty"`
}
