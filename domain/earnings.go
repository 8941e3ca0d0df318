package domain

import (
	"strings"
	"time"
)

// EarningsPredictionType is the user's call on an earnings release.
type EarningsPredictionType string

const (
	PredictionBeat EarningsPredictionType = "BEAT"
	PredictionMeet EarningsPredictionType = "MEET"
	PredictionMiss EarningsPredictionType = "MISS"
)

// ParsePredictionType parses a prediction type leniently.
func ParsePredictionType(s string) (EarningsPredictionType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BEAT":
		return PredictionBeat, true
	case "MEET":
		return PredictionMeet, true
	case "MISS":
		return PredictionMiss, true
	}
	return "", false
}

// EarningsEvent is a scheduled earnings release with community prediction
// tallies.
type EarningsEvent struct {
	ID                string    `json:"id"`
	Ticker            string    `json:"ticker"`
	CompanyName       string    `json:"companyName"`
	EarningsDate      time.Time `json:"earningsDate"`
	EarningsTime      string    `json:"earningsTime"` // "Before" or "After" market
	EstimatedEPS      *float64  `json:"estimatedEPS,omitempty"`
	ActualEPS         *float64  `json:"actualEPS,omitempty"`
	EstimatedRevenue  *float64  `json:"estimatedRevenue,omitempty"`
	ActualRevenue     *float64  `json:"actualRevenue,omitempty"`
	Surprise          *float64  `json:"surprise,omitempty"`
	PredictionsClosed bool      `json:"predictionsClosed"`
	TotalPredictions  int       `json:"totalPredictions"`
	BeatPredictions   int       `json:"beatPredictions"`
	MeetPredictions   int       `json:"meetPredictions"`
	MissPredictions   int       `json:"missPredictions"`
}

// surpriseThreshold is the EPS surprise fraction separating BEAT/MISS from
// MEET when resolving predictions.
const surpriseThreshold = 0.02

// Result classifies the release as BEAT/MEET/MISS once actuals are known.
// Missing estimates or actuals resolve to MEET.
func (e EarningsEvent) Result() EarningsPredictionType {
	if e.ActualEPS == nil || e.EstimatedEPS == nil || *e.EstimatedEPS == 0 {
		return PredictionMeet
	}
	surprise := (*e.ActualEPS - *e.EstimatedEPS) / abs(*e.EstimatedEPS)
	switch {
	case surprise > surpriseThreshold:
		return PredictionBeat
	case surprise < -surpriseThreshold:
		return PredictionMiss
	default:
		return PredictionMeet
	}
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// EarningsPrediction is a user's call on one event. At most one exists per
// (user, event).
type EarningsPrediction struct {
	UserID     string                 `json:"userId"`
	EventID    string                 `json:"eventId"`
	Ticker     string                 `json:"ticker"`
	Prediction EarningsPredictionType `json:"prediction"`
	CreatedAt  time.Time              `json:"createdAt"`
	IsCorrect  *bool                  `json:"isCorrect,omitempty"`
	XPAwarded  int                    `json:"xpAwarded"`
}

// UserEarningsStats is the denormalized per-user prediction record,
// maintained by read-modify-write on resolution.
type UserEarningsStats struct {
	TotalPredictions   int     `json:"totalPredictions"`
	CorrectPredictions int     `json:"correctPredictions"`
	Accuracy           float64 `json:"accuracy"`
	CurrentStreak      int     `json:"currentStreak"`
	LongestStreak      int     `json:"longestStreak"`
	TotalXPEarned      int     `json:"totalXpEarned"`
}
