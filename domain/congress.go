package domain

import (
	"fmt"
	"strings"
	"time"
)

// PoliticalParty is a member's party affiliation.
type PoliticalParty string

const (
	PartyDemocrat    PoliticalParty = "D"
	PartyRepublican  PoliticalParty = "R"
	PartyIndependent PoliticalParty = "I"
	// PartyUnknown marks vendor rows whose party field could not be parsed.
	// Ingestion stores it as-is instead of defaulting to a real party.
	PartyUnknown PoliticalParty = "U"
)

// ParseParty parses vendor party text leniently (case-insensitive, accepts
// full names). The second return is false when the text matches nothing.
func ParseParty(s string) (PoliticalParty, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "D", "DEM", "DEMOCRAT", "DEMOCRATIC":
		return PartyDemocrat, true
	case "R", "REP", "REPUBLICAN":
		return PartyRepublican, true
	case "I", "IND", "INDEPENDENT":
		return PartyIndependent, true
	}
	return PartyUnknown, false
}

// Chamber is House or Senate.
type Chamber string

const (
	ChamberHouse  Chamber = "House"
	ChamberSenate Chamber = "Senate"
)

// ParseChamber parses vendor chamber text leniently.
func ParseChamber(s string) (Chamber, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "house", "representative", "rep":
		return ChamberHouse, true
	case "senate", "senator", "sen":
		return ChamberSenate, true
	}
	return "", false
}

// TransactionType is the disclosed transaction kind.
type TransactionType string

const (
	TxPurchase    TransactionType = "Purchase"
	TxSale        TransactionType = "Sale"
	TxSalePartial TransactionType = "Sale (Partial)"
	TxSaleFull    TransactionType = "Sale (Full)"
	TxExchange    TransactionType = "Exchange"
)

// ParseTransactionType parses vendor transaction text leniently.
func ParseTransactionType(s string) (TransactionType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "purchase", "buy":
		return TxPurchase, true
	case "sale", "sell":
		return TxSale, true
	case "sale (partial)", "sale_partial", "partial sale":
		return TxSalePartial, true
	case "sale (full)", "sale_full", "full sale":
		return TxSaleFull, true
	case "exchange":
		return TxExchange, true
	}
	return "", false
}

// CongressTrade is a single disclosed securities transaction.
//
// Return and price fields are pointers: absent means the vendor never
// reported a value, which is distinct from zero. Win-rate math depends on
// that distinction.
type CongressTrade struct {
	ID                     string          `json:"id"`
	MemberID               string          `json:"memberId"`
	MemberName             string          `json:"memberName"`
	Party                  PoliticalParty  `json:"party"`
	Chamber                Chamber         `json:"chamber"`
	State                  string          `json:"state"`
	Ticker                 string          `json:"ticker"`
	CompanyName            string          `json:"companyName"`
	TransactionType        TransactionType `json:"transactionType"`
	TransactionDate        time.Time       `json:"transactionDate"`
	DisclosureDate         time.Time       `json:"disclosureDate"`
	AmountRangeLow         int             `json:"amountRangeLow"`
	AmountRangeHigh        int             `json:"amountRangeHigh"`
	PriceAtTransaction     *float64        `json:"priceAtTransaction,omitempty"`
	CurrentPrice           *float64        `json:"currentPrice,omitempty"`
	ReturnSinceTransaction *float64        `json:"returnSinceTransaction,omitempty"`
	DaysToDisclose         int             `json:"daysToDisclose"`
}

// AmountRangeDisplay formats the disclosure amount bracket for display,
// e.g. "$250K - $500K" or "$1000K - $5M+".
func (t CongressTrade) AmountRangeDisplay() string {
	switch {
	case t.AmountRangeHigh >= 1_000_000:
		return fmt.Sprintf("$%dK - $%dM+", t.AmountRangeLow/1000, t.AmountRangeHigh/1_000_000)
	case t.AmountRangeHigh >= 1000:
		return fmt.Sprintf("$%dK - $%dK", t.AmountRangeLow/1000, t.AmountRangeHigh/1000)
	default:
		return fmt.Sprintf("$%d - $%d", t.AmountRangeLow, t.AmountRangeHigh)
	}
}

// AmountMidpoint is the midpoint of the disclosed range, used for volume
// aggregation.
func (t CongressTrade) AmountMidpoint() float64 {
	return (float64(t.AmountRangeLow) + float64(t.AmountRangeHigh)) / 2
}

// DisclosureLag returns DaysToDisclose clamped to zero. External data
// occasionally reports disclosure before transaction.
func (t CongressTrade) DisclosureLag() int {
	if t.DaysToDisclose < 0 {
		return 0
	}
	return t.DaysToDisclose
}

// TopTradedCompany is a member-detail aggregate row.
type TopTradedCompany struct {
	Ticker      string  `json:"ticker"`
	CompanyName string  `json:"companyName"`
	TradeCount  int     `json:"tradeCount"`
	TotalVolume float64 `json:"totalVolume"`
}

// SectorBreakdown is a member-detail aggregate row.
type SectorBreakdown struct {
	Sector     string  `json:"sector"`
	TradeCount int     `json:"tradeCount"`
	Percentage float64 `json:"percentage"`
}

// CongressMember is a member identity plus analytics computed on read.
// None of the analytics fields are persisted; they are derived from the
// member's recent trades on every detail request.
type CongressMember struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Party    PoliticalParty `json:"party"`
	Chamber  Chamber        `json:"chamber"`
	State    string         `json:"state"`
	District *string        `json:"district,omitempty"`
	ImageURL *string        `json:"imageUrl,omitempty"`

	// EstimatedPortfolioReturn is persisted with the profile and keys the
	// leaderboard index. TopHoldings is a small persisted summary.
	EstimatedPortfolioReturn float64  `json:"estimatedPortfolioReturn"`
	TopHoldings              []string `json:"topHoldings,omitempty"`

	TotalTrades        int                `json:"totalTrades"`
	WinRate            float64            `json:"winRate"`
	TradingVolume      float64            `json:"tradingVolume"`
	UniqueIssuers      int                `json:"uniqueIssuers"`
	AvgDaysToDisclose  float64            `json:"avgDaysToDisclose"`
	FirstTradeDate     string             `json:"firstTradeDate,omitempty"`
	LastTradeDate      string             `json:"lastTradeDate,omitempty"`
	TopTradedCompanies []TopTradedCompany `json:"topTradedCompanies,omitempty"`
	SectorBreakdown    []SectorBreakdown  `json:"sectorBreakdown,omitempty"`
	RecentTrades       []CongressTrade    `json:"recentTrades,omitempty"`
}

// TradeFilters narrows a trade listing. Nil/empty fields match everything.
// Filters are applied client-side after the range query, so a filtered page
// is best-effort: it may under-fill when selectivity is low.
type TradeFilters struct {
	Party           PoliticalParty
	Chamber         Chamber
	TransactionType TransactionType
	Ticker          string
	MemberID        string
}

// Match reports whether a trade passes every set filter.
func (f TradeFilters) Match(t CongressTrade) bool {
	if f.Party != "" && t.Party != f.Party {
		return false
	}
	if f.Chamber != "" && t.Chamber != f.Chamber {
		return false
	}
	if f.TransactionType != "" && t.TransactionType != f.TransactionType {
		return false
	}
	if f.Ticker != "" && !strings.EqualFold(t.Ticker, f.Ticker) {
		return false
	}
	if f.MemberID != "" && t.MemberID != f.MemberID {
		return false
	}
	return true
}
