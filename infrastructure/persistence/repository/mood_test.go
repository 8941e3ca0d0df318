package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/domain"
	"github.com/tradestreak/wall-street-service/infrastructure/persistence/memory"
	"github.com/tradestreak/wall-street-service/infrastructure/persistence/repository"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

func newMoodRepo(t *testing.T) *repository.MoodRepository {
	t.Helper()
	return repository.NewMoodRepository(memory.NewStore(), testIndexName, zap.NewNop())
}

func TestSaveMood_CurrentAndHistory(t *testing.T) {
	repo := newMoodRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	mood := domain.MarketMood{
		FearGreedIndex: 72,
		Sentiment:      domain.SentimentGreed,
		PreviousClose:  65,
		UpdatedAt:      now,
	}
	require.NoError(t, repo.SaveMood(ctx, mood))

	current, found, err := repo.GetCurrentMood(ctx)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 72, current.FearGreedIndex)
	assert.Equal(t, domain.SentimentGreed, current.Sentiment)

	history, err := repo.GetMoodHistory(ctx, 7)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, 72, history[0].FearGreedIndex)
}

func TestGetCurrentMood_EmptyStore(t *testing.T) {
	repo := newMoodRepo(t)

	_, found, err := repo.GetCurrentMood(context.Background())
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSavePrediction_OnePerDay(t *testing.T) {
	repo := newMoodRepo(t)
	ctx := context.Background()
	target := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	first := domain.MoodPrediction{
		UserID:             "user-1",
		PredictedSentiment: domain.SentimentGreed,
		TargetDate:         target,
		CreatedAt:          time.Now().UTC(),
	}
	require.NoError(t, repo.SavePrediction(ctx, first))

	second := first
	second.PredictedSentiment = domain.SentimentFear
	err := repo.SavePrediction(ctx, second)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	stored, found, err := repo.GetUserPrediction(ctx, "user-1", target)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, domain.SentimentGreed, stored.PredictedSentiment)
}

func TestGetPendingPredictions_SkipsResolved(t *testing.T) {
	repo := newMoodRepo(t)
	ctx := context.Background()
	target := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)

	for _, user := range []string{"user-1", "user-2"} {
		require.NoError(t, repo.SavePrediction(ctx, domain.MoodPrediction{
			UserID:             user,
			PredictedSentiment: domain.SentimentNeutral,
			TargetDate:         target,
			CreatedAt:          time.Now().UTC(),
		}))
	}

	actual := domain.SentimentGreed
	correct := false
	require.NoError(t, repo.ResolvePrediction(ctx, domain.MoodPrediction{
		UserID:             "user-1",
		PredictedSentiment: domain.SentimentNeutral,
		TargetDate:         target,
		ActualSentiment:    &actual,
		IsCorrect:          &correct,
	}))

	pending, err := repo.GetPendingPredictions(ctx, target)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "user-2", pending[0].UserID)
}
