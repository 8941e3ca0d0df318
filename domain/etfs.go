package domain

import (
	_ "embed"
	"encoding/json"
)

//go:embed etfs.json
var etfsJSON []byte

// ETFInfo is one curated fund in the featured list.
type ETFInfo struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Category string `json:"category"`
}

// ETFSpotlightInfo picks the fund highlighted on the featured page.
type ETFSpotlightInfo struct {
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
}

// ETFCatalog is the curated fund list plus its spotlight pick. The default
// catalog is compiled in from etfs.json; swap the asset to change the
// lineup.
type ETFCatalog struct {
	Funds     []ETFInfo        `json:"funds"`
	Spotlight ETFSpotlightInfo `json:"spotlight"`
}

// DefaultETFCatalog loads the embedded fund catalog.
func DefaultETFCatalog() (ETFCatalog, error) {
	var c ETFCatalog
	if err := json.Unmarshal(etfsJSON, &c); err != nil {
		return ETFCatalog{}, err
	}
	return c, nil
}

// Symbols returns the fund symbols in catalog order.
func (c ETFCatalog) Symbols() []string {
	symbols := make([]string, len(c.Funds))
	for i, f := range c.Funds {
		symbols[i] = f.Symbol
	}
	return symbols
}

// Find returns the catalog entry for a symbol.
func (c ETFCatalog) Find(symbol string) (ETFInfo, bool) {
	for _, f := range c.Funds {
		if f.Symbol == symbol {
			return f, true
		}
	}
	return ETFInfo{}, false
}
