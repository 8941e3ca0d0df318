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
)

func newBeatCongressRepo(t *testing.T) *repository.BeatCongressRepository {
	t.Helper()
	return repository.NewBeatCongressRepository(memory.NewStore(), testIndexName, zap.NewNop())
}

func sampleGame(userID, gameID, memberID string, endDate time.Time) domain.BeatCongressGame {
	return domain.BeatCongressGame{
		ID:                    gameID,
		UserID:                userID,
		CongressMemberID:      memberID,
		CongressMemberName:    "Nancy Pelosi",
		CongressMemberParty:   domain.PartyDemocrat,
		CongressMemberChamber: domain.ChamberHouse,
		StartDate:             endDate.AddDate(0, 0, -30),
		EndDate:               endDate,
		DurationDays:          30,
		Status:                domain.GameActive,
		UserStartingValue:     domain.GameStartingValue,
		UserCurrentValue:      domain.GameStartingValue,
		CongressStartingValue: domain.GameStartingValue,
		CongressCurrentValue:  domain.GameStartingValue,
	}
}

func TestCreateGame_RoundTrip(t *testing.T) {
	repo := newBeatCongressRepo(t)
	ctx := context.Background()
	endDate := time.Now().UTC().AddDate(0, 0, 30).Truncate(time.Second)

	require.NoError(t, repo.CreateGame(ctx, sampleGame("user-1", "g1", "nancy-pelosi", endDate)))

	game, err := repo.GetGameByID(ctx, "user-1", "g1")
	require.NoError(t, err)
	assert.Equal(t, domain.GameActive, game.Status)
	assert.Equal(t, domain.GameStartingValue, game.UserCurrentValue)
	assert.True(t, game.EndDate.Equal(endDate))
}

func TestGetActiveGameWithMember(t *testing.T) {
	repo := newBeatCongressRepo(t)
	ctx := context.Background()
	endDate := time.Now().UTC().AddDate(0, 0, 30)

	require.NoError(t, repo.CreateGame(ctx, sampleGame("user-1", "g1", "nancy-pelosi", endDate)))

	_, found, err := repo.GetActiveGameWithMember(ctx, "user-1", "nancy-pelosi")
	require.NoError(t, err)
	assert.True(t, found)

	_, found, err = repo.GetActiveGameWithMember(ctx, "user-1", "josh-hawley")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCompleteGame_LeavesActiveIndex(t *testing.T) {
	repo := newBeatCongressRepo(t)
	ctx := context.Background()
	ended := time.Now().UTC().AddDate(0, 0, -1)

	game := sampleGame("user-1", "g1", "nancy-pelosi", ended)
	require.NoError(t, repo.CreateGame(ctx, game))

	expired, err := repo.GetActiveGamesToProcess(ctx, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, expired, 1)

	won := true
	game.Status = domain.GameCompleted
	game.UserWon = &won
	game.XPAwarded = 100
	require.NoError(t, repo.CompleteGame(ctx, game))

	expired, err = repo.GetActiveGamesToProcess(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Empty(t, expired)

	stored, err := repo.GetGameByID(ctx, "user-1", "g1")
	require.NoError(t, err)
	assert.Equal(t, domain.GameCompleted, stored.Status)
	require.NotNil(t, stored.UserWon)
	assert.True(t, *stored.UserWon)
	assert.Equal(t, 100, stored.XPAwarded)
}

func TestGetActiveGamesToProcess_SkipsFutureGames(t *testing.T) {
	repo := newBeatCongressRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()

	require.NoError(t, repo.CreateGame(ctx, sampleGame("user-1", "old", "a-b", now.AddDate(0, 0, -2))))
	require.NoError(t, repo.CreateGame(ctx, sampleGame("user-2", "live", "c-d", now.AddDate(0, 0, 20))))

	expired, err := repo.GetActiveGamesToProcess(ctx, now)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "old", expired[0].ID)
}

func TestLeaderboard_OrderAndRank(t *testing.T) {
	repo := newBeatCongressRepo(t)
	ctx := context.Background()

	entries := []domain.LeaderboardEntry{
		{UserID: "user-1", Username: "alpha", GamesPlayed: 10, GamesWon: 7, WinRate: 70.0, TotalXPEarned: 775},
		{UserID: "user-2", Username: "beta", GamesPlayed: 4, GamesWon: 4, WinRate: 100.0, TotalXPEarned: 400},
		{UserID: "user-3", Username: "gamma", GamesPlayed: 12, GamesWon: 7, WinRate: 58.3, TotalXPEarned: 825},
	}
	for _, entry := range entries {
		require.NoError(t, repo.SaveLeaderboardEntry(ctx, entry))
	}

	// Wins dominate the sort key, win rate breaks ties.
	board, err := repo.GetLeaderboard(ctx, 10)
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "user-1", board[0].UserID)
	assert.Equal(t, "user-3", board[1].UserID)
	assert.Equal(t, "user-2", board[2].UserID)
	assert.Equal(t, 1, board[0].Rank)

	entry, found, err := repo.GetUserLeaderboardEntry(ctx, "user-3")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 2, entry.Rank)
	assert.Equal(t, "gamma", entry.Username)

	_, found, err = repo.GetUserLeaderboardEntry(ctx, "user-9")
	require.NoError(t, err)
	assert.False(t, found)
}
