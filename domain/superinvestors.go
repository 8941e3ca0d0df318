package domain

import (
	_ "embed"
	"encoding/json"
)

//go:embed superinvestors.json
var superInvestorsJSON []byte

// SuperInvestor is a tracked 13F institutional filer. The catalog is static;
// filing counts and dates come from SEC EDGAR at read time.
type SuperInvestor struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	FundName    string `json:"fundName"`
	CIK         string `json:"cik"`
	Description string `json:"description"`

	AUM              *float64 `json:"aum,omitempty"`
	RecentTradeCount int      `json:"recentTradeCount"`
	LastFilingDate   *string  `json:"lastFilingDate,omitempty"`
}

// InvestorFiling is one 13F-HR filing record. Holdings parsing from the
// filing XML needs an extra EDGAR round-trip per filing, so the slice stays
// empty for now.
type InvestorFiling struct {
	FilingDate      string   `json:"filingDate"`
	FormType        string   `json:"formType"`
	AccessionNumber string   `json:"accessionNumber"`
	Description     string   `json:"description"`
	FilingURL       string   `json:"filingUrl"`
	Holdings        []string `json:"holdings"`
}

// SuperInvestorCatalog is the tracked filer list. The default catalog is
// compiled in from superinvestors.json; swap the asset to change the
// lineup.
type SuperInvestorCatalog []SuperInvestor

// DefaultSuperInvestorCatalog loads the embedded filer catalog.
func DefaultSuperInvestorCatalog() (SuperInvestorCatalog, error) {
	var c SuperInvestorCatalog
	if err := json.Unmarshal(superInvestorsJSON, &c); err != nil {
		return nil, err
	}
	return c, nil
}

// Investors returns a fresh copy of the catalog; mutating it does not
// affect later calls.
func (c SuperInvestorCatalog) Investors() []SuperInvestor {
	investors := make([]SuperInvestor, len(c))
	copy(investors, c)
	return investors
}

// FindByCIK matches a catalog entry by zero-padded CIK.
func (c SuperInvestorCatalog) FindByCIK(cikPadded string) (SuperInvestor, bool) {
	for _, inv := range c {
		if PadCIK(inv.CIK) == cikPadded {
			return inv, true
		}
	}
	return SuperInvestor{}, false
}

// PadCIK strips leading zeros then zero-pads to 10 digits, the format SEC
// EDGAR expects in submission URLs.
func PadCIK(cik string) string {
	trimmed := ""
	for i, r := range cik {
		if r != '0' {
			trimmed = cik[i:]
			break
		}
	}
	if trimmed == "" {
		trimmed = "0"
	}
	for len(trimmed) < 10 {
		trimmed = "0" + trimmed
	}
	return trimmed
}
