package domain

import (
	_ "embed"
	"encoding/json"
	"strings"
)

//go:embed sectors.json
var sectorsJSON []byte

// SectorUnknown is returned for tickers absent from the mapping.
const SectorUnknown = "Other"

// SectorMap resolves tickers to GICS-style sector names. The default map is
// compiled in from sectors.json; swap the asset to change coverage.
type SectorMap map[string]string

// DefaultSectorMap loads the embedded ticker-to-sector mapping.
func DefaultSectorMap() (SectorMap, error) {
	var m SectorMap
	if err := json.Unmarshal(sectorsJSON, &m); err != nil {
		return nil, err
	}
	return m, nil
}

// Sector returns the sector for a ticker, or SectorUnknown when unmapped.
// Lookup is case-insensitive on the ticker.
func (m SectorMap) Sector(ticker string) string {
	if s, ok := m[strings.ToUpper(strings.TrimSpace(ticker))]; ok {
		return s
	}
	return SectorUnknown
}
