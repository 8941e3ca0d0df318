package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/services"
	"github.com/tradestreak/wall-street-service/domain"
	"github.com/tradestreak/wall-street-service/infrastructure/persistence/memory"
	"github.com/tradestreak/wall-street-service/infrastructure/persistence/repository"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

func newMoodService(t *testing.T) (*services.MoodService, *repository.MoodRepository, *capturingPublisher) {
	t.Helper()
	repo := repository.NewMoodRepository(memory.NewStore(), testIndexName, zap.NewNop())
	publisher := &capturingPublisher{}
	return services.NewMoodService(repo, publisher, 25, zap.NewNop()), repo, publisher
}

func TestGetCurrentMood_DefaultsToNeutral(t *testing.T) {
	svc, _, _ := newMoodService(t)

	mood, err := svc.GetCurrentMood(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, mood.FearGreedIndex)
	assert.Equal(t, domain.SentimentNeutral, mood.Sentiment)
}

func TestSubmitPrediction_ValidationAndTargetDate(t *testing.T) {
	svc, _, _ := newMoodService(t)
	ctx := context.Background()

	_, err := svc.SubmitPrediction(ctx, "user-1", "EUPHORIA", nil)
	assert.True(t, apperrors.IsValidation(err))

	result, err := svc.SubmitPrediction(ctx, "user-1", "greed", nil)
	require.NoError(t, err)
	assert.Equal(t, domain.SentimentGreed, result.Prediction.PredictedSentiment)
	assert.Zero(t, result.XPEarned)

	// Target is market close seven days out.
	want := time.Now().UTC().AddDate(0, 0, 7)
	assert.Equal(t, want.Format("2006-01-02"), result.Prediction.TargetDate.Format("2006-01-02"))
	assert.Equal(t, 16, result.Prediction.TargetDate.Hour())

	// Second submission for the same target date conflicts.
	_, err = svc.SubmitPrediction(ctx, "user-1", "FEAR", nil)
	assert.True(t, apperrors.IsConflict(err))
}

func TestResolvePredictions_SettlesAgainstRecordedMood(t *testing.T) {
	svc, repo, publisher := newMoodService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.SaveMood(ctx, domain.MarketMood{
		FearGreedIndex: 72,
		Sentiment:      domain.SentimentGreed,
		UpdatedAt:      now,
	}))

	correct := domain.MoodPrediction{
		ID: "p1", UserID: "user-1",
		PredictedSentiment: domain.SentimentGreed,
		TargetDate:         now, CreatedAt: now.AddDate(0, 0, -7),
	}
	wrong := domain.MoodPrediction{
		ID: "p2", UserID: "user-2",
		PredictedSentiment: domain.SentimentFear,
		TargetDate:         now, CreatedAt: now.AddDate(0, 0, -7),
	}
	require.NoError(t, repo.SavePrediction(ctx, correct))
	require.NoError(t, repo.SavePrediction(ctx, wrong))

	resolved, err := svc.ResolvePredictions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, resolved)

	predictions, err := svc.GetUserPredictions(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, predictions, 1)
	require.NotNil(t, predictions[0].IsCorrect)
	assert.True(t, *predictions[0].IsCorrect)
	assert.Equal(t, 25, predictions[0].XPAwarded)
	require.NotNil(t, predictions[0].ActualIndex)
	assert.Equal(t, 72, *predictions[0].ActualIndex)

	assert.Len(t, publisher.byType("prediction.resolved"), 2)

	// Nothing left pending for the date.
	again, err := svc.ResolvePredictions(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, again)
}

func TestResolvePredictions_NoSnapshotSkips(t *testing.T) {
	svc, repo, _ := newMoodService(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.SavePrediction(ctx, domain.MoodPrediction{
		ID: "p1", UserID: "user-1",
		PredictedSentiment: domain.SentimentGreed,
		TargetDate:         now, CreatedAt: now.AddDate(0, 0, -7),
	}))

	resolved, err := svc.ResolvePredictions(ctx, now)
	require.NoError(t, err)
	assert.Zero(t, resolved)
}
