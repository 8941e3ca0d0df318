package domain_test

import (
	"testing"
	"time"

	"github.com/tradestreak/wall-street-service/domain"

	"github.com/stretchr/testify/assert"
)

func TestSentimentFromIndex(t *testing.T) {
	cases := []struct {
		index int
		want  domain.MoodSentiment
	}{
		{0, domain.SentimentExtremeFear},
		{20, domain.SentimentExtremeFear},
		{21, domain.SentimentFear},
		{40, domain.SentimentFear},
		{50, domain.SentimentNeutral},
		{60, domain.SentimentNeutral},
		{61, domain.SentimentGreed},
		{80, domain.SentimentGreed},
		{81, domain.SentimentExtremeGreed},
		{100, domain.SentimentExtremeGreed},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, domain.SentimentFromIndex(tc.index), "index %d", tc.index)
	}
}

func TestDefaultMood(t *testing.T) {
	now := time.Now()
	mood := domain.DefaultMood(now)

	assert.Equal(t, 50, mood.FearGreedIndex)
	assert.Equal(t, domain.SentimentNeutral, mood.Sentiment)
	assert.Equal(t, 0, mood.ChangeFromYesterday())
	assert.Equal(t, now, mood.UpdatedAt)
	assert.NotNil(t, mood.Indicators)
	assert.Empty(t, mood.Indicators)
}
