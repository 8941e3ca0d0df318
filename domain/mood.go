package domain

import (
	"strings"
	"time"
)

// MoodSentiment buckets the fear/greed index.
type MoodSentiment string

const (
	SentimentExtremeFear  MoodSentiment = "EXTREME_FEAR"
	SentimentFear         MoodSentiment = "FEAR"
	SentimentNeutral      MoodSentiment = "NEUTRAL"
	SentimentGreed        MoodSentiment = "GREED"
	SentimentExtremeGreed MoodSentiment = "EXTREME_GREED"
)

// SentimentFromIndex maps a 0-100 fear/greed index to its sentiment bucket.
func SentimentFromIndex(index int) MoodSentiment {
	switch {
	case index <= 20:
		return SentimentExtremeFear
	case index <= 40:
		return SentimentFear
	case index <= 60:
		return SentimentNeutral
	case index <= 80:
		return SentimentGreed
	default:
		return SentimentExtremeGreed
	}
}

// ParseSentiment parses a sentiment string leniently.
func ParseSentiment(s string) (MoodSentiment, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "EXTREME_FEAR":
		return SentimentExtremeFear, true
	case "FEAR":
		return SentimentFear, true
	case "NEUTRAL":
		return SentimentNeutral, true
	case "GREED":
		return SentimentGreed, true
	case "EXTREME_GREED":
		return SentimentExtremeGreed, true
	}
	return "", false
}

// MoodIndicator is one component feeding the composite index.
type MoodIndicator struct {
	Name         string  `json:"name"`
	Value        float64 `json:"value"`
	Contribution string  `json:"contribution"`
	Description  *string `json:"description,omitempty"`
}

// MarketMood is the composite market sentiment snapshot.
type MarketMood struct {
	FearGreedIndex int             `json:"fearGreedIndex"`
	Sentiment      MoodSentiment   `json:"sentiment"`
	PreviousClose  int             `json:"previousClose"`
	WeekAgo        int             `json:"weekAgo"`
	MonthAgo       int             `json:"monthAgo"`
	YearAgo        int             `json:"yearAgo"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	Indicators     []MoodIndicator `json:"indicators"`
}

// ChangeFromYesterday is the point change versus previous close.
func (m MarketMood) ChangeFromYesterday() int {
	return m.FearGreedIndex - m.PreviousClose
}

// DefaultMood is the neutral snapshot served before any ingestion has run.
func DefaultMood(now time.Time) MarketMood {
	return MarketMood{
		FearGreedIndex: 50,
		Sentiment:      SentimentNeutral,
		PreviousClose:  50,
		WeekAgo:        50,
		MonthAgo:       50,
		YearAgo:        50,
		UpdatedAt:      now,
		Indicators:     []MoodIndicator{},
	}
}

// MoodPrediction is a user's sentiment forecast for a target date.
// At most one prediction exists per (user, targetDate).
type MoodPrediction struct {
	ID                 string         `json:"id"`
	UserID             string         `json:"userId"`
	PredictedSentiment MoodSentiment  `json:"predictedSentiment"`
	PredictedIndex     *int           `json:"predictedIndex,omitempty"`
	TargetDate         time.Time      `json:"targetDate"`
	CreatedAt          time.Time      `json:"createdAt"`
	ActualSentiment    *MoodSentiment `json:"actualSentiment,omitempty"`
	ActualIndex        *int           `json:"actualIndex,omitempty"`
	IsCorrect          *bool          `json:"isCorrect,omitempty"`
	XPAwarded          int            `json:"xpAwarded"`
}
