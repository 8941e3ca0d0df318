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

func newEarningsService(t *testing.T) (*services.EarningsService, *repository.EarningsRepository, *capturingPublisher) {
	t.Helper()
	repo := repository.NewEarningsRepository(memory.NewStore(), testIndexName, zap.NewNop())
	publisher := &capturingPublisher{}
	return services.NewEarningsService(repo, publisher, 50, zap.NewNop()), repo, publisher
}

func seedEvent(t *testing.T, repo *repository.EarningsRepository, id, ticker string, daysAhead int, estEPS float64) {
	t.Helper()
	require.NoError(t, repo.SaveEvent(context.Background(), domain.EarningsEvent{
		ID:           id,
		Ticker:       ticker,
		CompanyName:  ticker + " Inc",
		EarningsDate: time.Now().UTC().AddDate(0, 0, daysAhead),
		EarningsTime: "After",
		EstimatedEPS: floatPtr(estEPS),
	}))
}

func TestSubmitPrediction_RejectsInvalidAndDuplicate(t *testing.T) {
	svc, repo, _ := newEarningsService(t)
	seedEvent(t, repo, "evt-aapl", "AAPL", 3, 2.00)
	ctx := context.Background()

	_, err := svc.SubmitPrediction(ctx, "user-1", "AAPL", "SIDEWAYS")
	assert.True(t, apperrors.IsValidation(err))

	result, err := svc.SubmitPrediction(ctx, "user-1", "aapl", "beat")
	require.NoError(t, err)
	assert.Equal(t, domain.PredictionBeat, result.Prediction.Prediction)
	assert.Equal(t, 1, result.EventStats.TotalPredictions)
	assert.Equal(t, 1, result.EventStats.BeatPredictions)

	_, err = svc.SubmitPrediction(ctx, "user-1", "AAPL", "MISS")
	assert.True(t, apperrors.IsConflict(err))
}

func TestSubmitPrediction_ClosedEvent(t *testing.T) {
	svc, repo, _ := newEarningsService(t)
	seedEvent(t, repo, "evt-aapl", "AAPL", 3, 2.00)
	ctx := context.Background()

	_, err := repo.UpdateEventResults(ctx, "evt-aapl", floatPtr(2.50), nil)
	require.NoError(t, err)

	_, err = svc.SubmitPrediction(ctx, "user-1", "AAPL", "BEAT")
	assert.True(t, apperrors.IsValidation(err))
}

func TestUpdateEventResults_ResolvesPredictionsAndStats(t *testing.T) {
	svc, repo, publisher := newEarningsService(t)
	seedEvent(t, repo, "evt-aapl", "AAPL", 3, 2.00)
	ctx := context.Background()

	_, err := svc.SubmitPrediction(ctx, "user-1", "AAPL", "BEAT")
	require.NoError(t, err)
	_, err = svc.SubmitPrediction(ctx, "user-2", "AAPL", "MISS")
	require.NoError(t, err)

	// Actual 2.20 vs estimate 2.00 is a +10% surprise: BEAT.
	event, err := svc.UpdateEventResults(ctx, "evt-aapl", floatPtr(2.20), nil)
	require.NoError(t, err)
	assert.True(t, event.PredictionsClosed)
	require.NotNil(t, event.Surprise)
	assert.Equal(t, 10.0, *event.Surprise)

	winner, err := svc.GetUserStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, winner.TotalPredictions)
	assert.Equal(t, 1, winner.CorrectPredictions)
	assert.Equal(t, 100.0, winner.Accuracy)
	assert.Equal(t, 1, winner.CurrentStreak)
	assert.Equal(t, 50, winner.TotalXPEarned)

	loser, err := svc.GetUserStats(ctx, "user-2")
	require.NoError(t, err)
	assert.Equal(t, 1, loser.TotalPredictions)
	assert.Equal(t, 0, loser.CorrectPredictions)
	assert.Equal(t, 0, loser.CurrentStreak)
	assert.Equal(t, 0, loser.TotalXPEarned)

	assert.Len(t, publisher.byType("prediction.resolved"), 2)
}

func TestUpdateEventResults_StreakAcrossEvents(t *testing.T) {
	svc, repo, _ := newEarningsService(t)
	ctx := context.Background()

	seedEvent(t, repo, "evt-1", "AAPL", 1, 2.00)
	seedEvent(t, repo, "evt-2", "MSFT", 2, 3.00)
	seedEvent(t, repo, "evt-3", "NVDA", 3, 1.00)

	for _, tc := range []struct{ ticker, call string }{
		{"AAPL", "BEAT"}, {"MSFT", "BEAT"}, {"NVDA", "MISS"},
	} {
		_, err := svc.SubmitPrediction(ctx, "user-1", tc.ticker, tc.call)
		require.NoError(t, err)
	}

	_, err := svc.UpdateEventResults(ctx, "evt-1", floatPtr(2.20), nil) // BEAT, correct
	require.NoError(t, err)
	_, err = svc.UpdateEventResults(ctx, "evt-2", floatPtr(3.30), nil) // BEAT, correct
	require.NoError(t, err)
	_, err = svc.UpdateEventResults(ctx, "evt-3", floatPtr(1.10), nil) // BEAT, wrong call
	require.NoError(t, err)

	stats, err := svc.GetUserStats(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, 3, stats.TotalPredictions)
	assert.Equal(t, 2, stats.CorrectPredictions)
	assert.Equal(t, 0, stats.CurrentStreak)
	assert.Equal(t, 2, stats.LongestStreak)
	assert.Equal(t, 66.7, stats.Accuracy)
	assert.Equal(t, 100, stats.TotalXPEarned)
}
