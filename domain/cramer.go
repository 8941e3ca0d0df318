package domain

import (
	"strings"
	"time"
)

// CramerRecommendation is a tracked TV pick direction.
type CramerRecommendation string

const (
	RecommendationBuy  CramerRecommendation = "BUY"
	RecommendationSell CramerRecommendation = "SELL"
	RecommendationHold CramerRecommendation = "HOLD"
)

// ParseRecommendation parses a recommendation filter leniently.
func ParseRecommendation(s string) (CramerRecommendation, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return RecommendationBuy, true
	case "SELL":
		return RecommendationSell, true
	case "HOLD":
		return RecommendationHold, true
	}
	return "", false
}

// CramerPick is a single tracked stock pick.
type CramerPick struct {
	ID                   string               `json:"id"`
	Ticker               string               `json:"ticker"`
	CompanyName          string               `json:"companyName"`
	Recommendation       CramerRecommendation `json:"recommendation"`
	PriceAtPick          float64              `json:"priceAtPick"`
	CurrentPrice         float64              `json:"currentPrice"`
	ReturnPercent        float64              `json:"returnPercent"`
	InverseReturnPercent float64              `json:"inverseReturnPercent"`
	PickDate             time.Time            `json:"pickDate"`
	ShowName             *string              `json:"showName,omitempty"`
	Notes                *string              `json:"notes,omitempty"`
}

// IsWinning reports whether following the pick would have been profitable.
// HOLD is treated as neutral and always counts as a win.
func (p CramerPick) IsWinning() bool {
	switch p.Recommendation {
	case RecommendationBuy:
		return p.ReturnPercent > 0
	case RecommendationSell:
		return p.ReturnPercent < 0
	default:
		return true
	}
}

// CramerStats aggregates pick performance over a trailing window.
type CramerStats struct {
	TotalPicks       int         `json:"totalPicks"`
	FollowWinRate    float64     `json:"followWinRate"`
	InverseWinRate   float64     `json:"inverseWinRate"`
	AvgFollowReturn  float64     `json:"avgFollowReturn"`
	AvgInverseReturn float64     `json:"avgInverseReturn"`
	BestFollowPick   *CramerPick `json:"bestFollowPick,omitempty"`
	WorstFollowPick  *CramerPick `json:"worstFollowPick,omitempty"`
	PeriodDays       int         `json:"periodDays"`
}
