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

func newBeatCongressService(t *testing.T) (*services.BeatCongressService, *repository.BeatCongressRepository, *repository.CongressRepository, *capturingPublisher) {
	t.Helper()
	store := memory.NewStore()
	gameRepo := repository.NewBeatCongressRepository(store, testIndexName, zap.NewNop())
	congressRepo := repository.NewCongressRepository(store, testIndexName, zap.NewNop())
	publisher := &capturingPublisher{}
	svc := services.NewBeatCongressService(gameRepo, congressRepo, publisher, 100, 25, zap.NewNop())
	return svc, gameRepo, congressRepo, publisher
}

func seedMember(t *testing.T, repo *repository.CongressRepository, id, name string) {
	t.Helper()
	require.NoError(t, repo.SaveMember(context.Background(), domain.CongressMember{
		ID: id, Name: name,
		Party: domain.PartyDemocrat, Chamber: domain.ChamberHouse, State: "CA",
	}))
}

func TestCreateGame_DurationBounds(t *testing.T) {
	svc, _, congressRepo, _ := newBeatCongressService(t)
	seedMember(t, congressRepo, "jane-smith", "Jane Smith")

	_, err := svc.CreateGame(context.Background(), "user-1", "jane-smith", 3)
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.CreateGame(context.Background(), "user-1", "jane-smith", 91)
	assert.True(t, apperrors.IsValidation(err))

	game, err := svc.CreateGame(context.Background(), "user-1", "jane-smith", 30)
	require.NoError(t, err)
	assert.Equal(t, domain.GameActive, game.Status)
	assert.Equal(t, domain.GameStartingValue, game.UserCurrentValue)
	assert.Equal(t, "Jane Smith", game.CongressMemberName)
}

func TestCreateGame_DuplicateActiveConflicts(t *testing.T) {
	svc, _, congressRepo, _ := newBeatCongressService(t)
	seedMember(t, congressRepo, "jane-smith", "Jane Smith")

	_, err := svc.CreateGame(context.Background(), "user-1", "jane-smith", 30)
	require.NoError(t, err)

	_, err = svc.CreateGame(context.Background(), "user-1", "jane-smith", 14)
	assert.True(t, apperrors.IsConflict(err))

	// A different member is fine.
	seedMember(t, congressRepo, "josh-hawley", "Josh Hawley")
	_, err = svc.CreateGame(context.Background(), "user-1", "josh-hawley", 14)
	assert.NoError(t, err)
}

func TestCreateGame_UnknownMember(t *testing.T) {
	svc, _, _, _ := newBeatCongressService(t)

	_, err := svc.CreateGame(context.Background(), "user-1", "nobody", 30)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCompleteGame_WinUpdatesLeaderboardAndPublishes(t *testing.T) {
	svc, _, congressRepo, publisher := newBeatCongressService(t)
	seedMember(t, congressRepo, "jane-smith", "Jane Smith")
	ctx := context.Background()

	game, err := svc.CreateGame(ctx, "user-1", "jane-smith", 30)
	require.NoError(t, err)

	_, err = svc.UpdateGameValues(ctx, "user-1", game.ID, 11000, 10500)
	require.NoError(t, err)

	completed, err := svc.CompleteGame(ctx, "user-1", game.ID)
	require.NoError(t, err)
	require.NotNil(t, completed.UserWon)
	assert.True(t, *completed.UserWon)
	assert.Equal(t, 100, completed.XPAwarded)
	assert.Equal(t, domain.GameCompleted, completed.Status)

	board, err := svc.GetLeaderboard(ctx, "user-1", 10)
	require.NoError(t, err)
	require.NotNil(t, board.UserRank)
	assert.Equal(t, 1, board.UserRank.GamesPlayed)
	assert.Equal(t, 1, board.UserRank.GamesWon)
	assert.Equal(t, 100.0, board.UserRank.WinRate)
	assert.Equal(t, 100, board.UserRank.TotalXPEarned)
	assert.Equal(t, 1, board.UserRank.CurrentStreak)

	events := publisher.byType("game.completed")
	require.Len(t, events, 1)

	// Completing twice is rejected.
	_, err = svc.CompleteGame(ctx, "user-1", game.ID)
	assert.True(t, apperrors.IsValidation(err))
}

func TestCompleteGame_TieCountsAsLoss(t *testing.T) {
	svc, _, congressRepo, _ := newBeatCongressService(t)
	seedMember(t, congressRepo, "jane-smith", "Jane Smith")
	ctx := context.Background()

	game, err := svc.CreateGame(ctx, "user-1", "jane-smith", 30)
	require.NoError(t, err)

	completed, err := svc.CompleteGame(ctx, "user-1", game.ID)
	require.NoError(t, err)
	require.NotNil(t, completed.UserWon)
	assert.False(t, *completed.UserWon)
	assert.Equal(t, 25, completed.XPAwarded)

	board, err := svc.GetLeaderboard(ctx, "user-1", 10)
	require.NoError(t, err)
	require.NotNil(t, board.UserRank)
	assert.Equal(t, 0, board.UserRank.GamesWon)
	assert.Equal(t, 0, board.UserRank.CurrentStreak)
	assert.Equal(t, 25, board.UserRank.TotalXPEarned)
}

func TestProcessExpiredGames(t *testing.T) {
	svc, gameRepo, congressRepo, _ := newBeatCongressService(t)
	seedMember(t, congressRepo, "jane-smith", "Jane Smith")
	ctx := context.Background()

	now := time.Now().UTC()
	expired := domain.BeatCongressGame{
		ID: "game-old", UserID: "user-1",
		CongressMemberID: "jane-smith", CongressMemberName: "Jane Smith",
		StartDate: now.AddDate(0, 0, -40), EndDate: now.AddDate(0, 0, -10),
		DurationDays: 30, Status: domain.GameActive,
		UserStartingValue: domain.GameStartingValue, UserCurrentValue: 10800,
		UserReturnPercent:     8.0,
		CongressStartingValue: domain.GameStartingValue, CongressCurrentValue: 10200,
		CongressReturnPercent: 2.0,
	}
	require.NoError(t, gameRepo.CreateGame(ctx, expired))

	running := domain.BeatCongressGame{
		ID: "game-new", UserID: "user-2",
		CongressMemberID: "jane-smith", CongressMemberName: "Jane Smith",
		StartDate: now, EndDate: now.AddDate(0, 0, 30),
		DurationDays: 30, Status: domain.GameActive,
		UserStartingValue: domain.GameStartingValue, UserCurrentValue: domain.GameStartingValue,
		CongressStartingValue: domain.GameStartingValue, CongressCurrentValue: domain.GameStartingValue,
	}
	require.NoError(t, gameRepo.CreateGame(ctx, running))

	processed, err := svc.ProcessExpiredGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, processed)

	settled, err := svc.GetGameDetail(ctx, "user-1", "game-old")
	require.NoError(t, err)
	assert.Equal(t, domain.GameCompleted, settled.Status)
	require.NotNil(t, settled.UserWon)
	assert.True(t, *settled.UserWon)

	still, err := svc.GetGameDetail(ctx, "user-2", "game-new")
	require.NoError(t, err)
	assert.Equal(t, domain.GameActive, still.Status)
}

func TestGetChallengeableMembers_ExcludesActiveOpponents(t *testing.T) {
	svc, _, congressRepo, _ := newBeatCongressService(t)
	seedMember(t, congressRepo, "jane-smith", "Jane Smith")
	seedMember(t, congressRepo, "josh-hawley", "Josh Hawley")
	seedMember(t, congressRepo, "nancy-pelosi", "Nancy Pelosi")
	ctx := context.Background()

	_, err := svc.CreateGame(ctx, "user-1", "jane-smith", 30)
	require.NoError(t, err)

	available, err := svc.GetChallengeableMembers(ctx, "user-1", 10)
	require.NoError(t, err)
	require.Len(t, available, 2)
	for _, member := range available {
		assert.NotEqual(t, "jane-smith", member.ID)
	}
}
