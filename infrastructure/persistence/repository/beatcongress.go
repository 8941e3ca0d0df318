package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/domain"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

const (
	skGamePrefix        = "BEAT_CONGRESS#"
	pkGameLeaderboard   = "BEAT_CONGRESS_LEADERBOARD"
	gsiActiveGames      = "ACTIVE_GAMES"
	gsiCompletedGames   = "COMPLETED_GAMES"
	leaderboardRankScan = 1000

	// gameEpoch bounds the expired-game range query from below.
	gameEpoch = "2020-01-01"
)

// BeatCongressRepository persists games and the denormalized leaderboard.
type BeatCongressRepository struct {
	store     ports.Store
	indexName string
	logger    *zap.Logger
}

// NewBeatCongressRepository creates the repository.
func NewBeatCongressRepository(store ports.Store, indexName string, logger *zap.Logger) *BeatCongressRepository {
	return &BeatCongressRepository{store: store, indexName: indexName, logger: logger}
}

type gameItem struct {
	PK                    string  `dynamodbav:"PK"`
	SK                    string  `dynamodbav:"SK"`
	GSI1PK                string  `dynamodbav:"GSI1PK"`
	GSI1SK                string  `dynamodbav:"GSI1SK"`
	ID                    string  `dynamodbav:"id"`
	UserID                string  `dynamodbav:"userId"`
	CongressMemberID      string  `dynamodbav:"congressMemberId"`
	CongressMemberName    string  `dynamodbav:"congressMemberName"`
	CongressMemberParty   string  `dynamodbav:"congressMemberParty"`
	CongressMemberChamber string  `dynamodbav:"congressMemberChamber"`
	StartDate             string  `dynamodbav:"startDate"`
	EndDate               string  `dynamodbav:"endDate"`
	DurationDays          int     `dynamodbav:"durationDays"`
	Status                string  `dynamodbav:"status"`
	UserStartingValue     float64 `dynamodbav:"userStartingValue"`
	UserCurrentValue      float64 `dynamodbav:"userCurrentValue"`
	UserReturnPercent     float64 `dynamodbav:"userReturnPercent"`
	CongressStartingValue float64 `dynamodbav:"congressStartingValue"`
	CongressCurrentValue  float64 `dynamodbav:"congressCurrentValue"`
	CongressReturnPercent float64 `dynamodbav:"congressReturnPercent"`
	UserWon               *bool   `dynamodbav:"userWon,omitempty"`
	XPAwarded             int     `dynamodbav:"xpAwarded"`
	CreatedAt             string  `dynamodbav:"createdAt"`
	UpdatedAt             string  `dynamodbav:"updatedAt"`
}

type leaderboardItem struct {
	PK            string  `dynamodbav:"PK"`
	SK            string  `dynamodbav:"SK"`
	GSI1PK        string  `dynamodbav:"GSI1PK"`
	GSI1SK        string  `dynamodbav:"GSI1SK"`
	UserID        string  `dynamodbav:"userId"`
	Username      string  `dynamodbav:"username"`
	GamesPlayed   int     `dynamodbav:"gamesPlayed"`
	GamesWon      int     `dynamodbav:"gamesWon"`
	WinRate       float64 `dynamodbav:"winRate"`
	TotalXPEarned int     `dynamodbav:"totalXpEarned"`
	CurrentStreak int     `dynamodbav:"currentStreak"`
	UpdatedAt     string  `dynamodbav:"updatedAt"`
}

// CreateGame writes the game row and indexes it under the active-games
// partition keyed by end date.
func (r *BeatCongressRepository) CreateGame(ctx context.Context, game domain.BeatCongressGame) error {
	now := time.Now().UTC().Format(time.RFC3339)

	item := gameItem{
		PK:                    pkUserPrefix + game.UserID,
		SK:                    skGamePrefix + game.ID,
		GSI1PK:                gsiActiveGames,
		GSI1SK:                fmt.Sprintf("%s#%s", game.EndDate.Format(time.RFC3339), game.UserID),
		ID:                    game.ID,
		UserID:                game.UserID,
		CongressMemberID:      game.CongressMemberID,
		CongressMemberName:    game.CongressMemberName,
		CongressMemberParty:   string(game.CongressMemberParty),
		CongressMemberChamber: string(game.CongressMemberChamber),
		StartDate:             game.StartDate.Format(time.RFC3339),
		EndDate:               game.EndDate.Format(time.RFC3339),
		DurationDays:          game.DurationDays,
		Status:                string(game.Status),
		UserStartingValue:     game.UserStartingValue,
		UserCurrentValue:      game.UserCurrentValue,
		UserReturnPercent:     game.UserReturnPercent,
		CongressStartingValue: game.CongressStartingValue,
		CongressCurrentValue:  game.CongressCurrentValue,
		CongressReturnPercent: game.CongressReturnPercent,
		UserWon:               game.UserWon,
		XPAwarded:             game.XPAwarded,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperrors.NewDatabaseError("marshal game", err)
	}
	if err := r.store.Put(ctx, av); err != nil {
		return apperrors.NewDatabaseError("create game", err)
	}

	r.logger.Info("Created beat congress game",
		zap.String("userId", game.UserID),
		zap.String("member", game.CongressMemberName),
		zap.Int("durationDays", game.DurationDays),
	)
	return nil
}

// GetUserGames lists the user's games, newest first, filtered client-side
// by status.
func (r *BeatCongressRepository) GetUserGames(ctx context.Context, userID string, status domain.GameStatus, limit int) ([]domain.BeatCongressGame, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: pkUserPrefix + userID,
		Sort:         ports.SortCondition{BeginsWith: skGamePrefix},
		Limit:        int32(limit),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("query user games", err)
	}

	games := make([]domain.BeatCongressGame, 0, len(items))
	for _, item := range items {
		game, err := unmarshalGame(item)
		if err != nil {
			r.logger.Warn("Skipping malformed game row", zap.Error(err))
			continue
		}
		if status != "" && game.Status != status {
			continue
		}
		games = append(games, game)
	}
	return games, nil
}

func (r *BeatCongressRepository) GetGameByID(ctx context.Context, userID, gameID string) (domain.BeatCongressGame, error) {
	item, found, err := r.store.Get(ctx, ports.Key{PK: pkUserPrefix + userID, SK: skGamePrefix + gameID})
	if err != nil {
		return domain.BeatCongressGame{}, apperrors.NewDatabaseError("get game", err)
	}
	if !found {
		return domain.BeatCongressGame{}, apperrors.NewNotFoundError("BeatCongressGame", gameID)
	}
	return unmarshalGame(item)
}

// GetActiveGameWithMember returns the user's active game against the
// member, if any.
func (r *BeatCongressRepository) GetActiveGameWithMember(ctx context.Context, userID, memberID string) (domain.BeatCongressGame, bool, error) {
	games, err := r.GetUserGames(ctx, userID, domain.GameActive, 0)
	if err != nil {
		return domain.BeatCongressGame{}, false, err
	}
	for _, game := range games {
		if game.CongressMemberID == memberID {
			return game, true, nil
		}
	}
	return domain.BeatCongressGame{}, false, nil
}

// UpdateGameValues writes the current portfolio values and returns.
func (r *BeatCongressRepository) UpdateGameValues(ctx context.Context, game domain.BeatCongressGame) error {
	key := ports.Key{PK: pkUserPrefix + game.UserID, SK: skGamePrefix + game.ID}
	_, err := r.store.Update(ctx, key, ports.UpdateSpec{
		Set: map[string]types.AttributeValue{
			"userCurrentValue":      numberValue(game.UserCurrentValue),
			"userReturnPercent":     numberValue(game.UserReturnPercent),
			"congressCurrentValue":  numberValue(game.CongressCurrentValue),
			"congressReturnPercent": numberValue(game.CongressReturnPercent),
			"updatedAt":             &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return apperrors.NewDatabaseError("update game values", err)
	}
	return nil
}

// CompleteGame finalizes the outcome and moves the GSI entry out of the
// active-games partition so batch processing stops seeing it.
func (r *BeatCongressRepository) CompleteGame(ctx context.Context, game domain.BeatCongressGame) error {
	if game.UserWon == nil {
		return apperrors.NewValidationError("completion requires an outcome")
	}

	key := ports.Key{PK: pkUserPrefix + game.UserID, SK: skGamePrefix + game.ID}
	_, err := r.store.Update(ctx, key, ports.UpdateSpec{
		Set: map[string]types.AttributeValue{
			"status":    &types.AttributeValueMemberS{Value: string(game.Status)},
			"userWon":   &types.AttributeValueMemberBOOL{Value: *game.UserWon},
			"xpAwarded": intValue(game.XPAwarded),
			"GSI1PK":    &types.AttributeValueMemberS{Value: gsiCompletedGames},
			"updatedAt": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return apperrors.NewDatabaseError("complete game", err)
	}

	r.logger.Info("Completed beat congress game",
		zap.String("userId", game.UserID),
		zap.String("gameId", game.ID),
		zap.Bool("userWon", *game.UserWon),
	)
	return nil
}

// GetActiveGamesToProcess lists active games whose end date is in the past.
func (r *BeatCongressRepository) GetActiveGamesToProcess(ctx context.Context, now time.Time) ([]domain.BeatCongressGame, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: gsiActiveGames,
		IndexName:    r.indexName,
		Sort: ports.SortCondition{
			Low:  gameEpoch,
			High: now.UTC().Format(time.RFC3339),
		},
		ScanForward: true,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("query expired games", err)
	}

	games := make([]domain.BeatCongressGame, 0, len(items))
	for _, item := range items {
		game, err := unmarshalGame(item)
		if err != nil {
			continue
		}
		games = append(games, game)
	}
	return games, nil
}

// GetLeaderboard returns entries ordered best first by the composite
// wins/win-rate sort key.
func (r *BeatCongressRepository) GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: pkGameLeaderboard,
		IndexName:    r.indexName,
		Limit:        int32(limit),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("query leaderboard", err)
	}

	entries := make([]domain.LeaderboardEntry, 0, len(items))
	for _, item := range items {
		entry, err := unmarshalLeaderboardEntry(item)
		if err != nil {
			continue
		}
		entry.Rank = len(entries) + 1
		entries = append(entries, entry)
	}
	return entries, nil
}

// GetUserLeaderboardEntry returns the user's row with its rank computed
// against the top 1000.
func (r *BeatCongressRepository) GetUserLeaderboardEntry(ctx context.Context, userID string) (domain.LeaderboardEntry, bool, error) {
	item, found, err := r.store.Get(ctx, ports.Key{PK: pkGameLeaderboard, SK: pkUserPrefix + userID})
	if err != nil {
		return domain.LeaderboardEntry{}, false, apperrors.NewDatabaseError("get leaderboard entry", err)
	}
	if !found {
		return domain.LeaderboardEntry{}, false, nil
	}

	entry, err := unmarshalLeaderboardEntry(item)
	if err != nil {
		return domain.LeaderboardEntry{}, false, err
	}

	top, err := r.GetLeaderboard(ctx, leaderboardRankScan)
	if err != nil {
		return domain.LeaderboardEntry{}, false, err
	}
	entry.Rank = leaderboardRankScan - 1
	for _, e := range top {
		if e.UserID == userID {
			entry.Rank = e.Rank
			break
		}
	}
	return entry, true, nil
}

// SaveLeaderboardEntry overwrites the user's row. The GSI sort key packs
// wins then win rate so a descending read yields the ranking.
func (r *BeatCongressRepository) SaveLeaderboardEntry(ctx context.Context, entry domain.LeaderboardEntry) error {
	item := leaderboardItem{
		PK:            pkGameLeaderboard,
		SK:            pkUserPrefix + entry.UserID,
		GSI1PK:        pkGameLeaderboard,
		GSI1SK:        fmt.Sprintf("%06d#%05.1f#%s", entry.GamesWon, entry.WinRate, entry.UserID),
		UserID:        entry.UserID,
		Username:      entry.Username,
		GamesPlayed:   entry.GamesPlayed,
		GamesWon:      entry.GamesWon,
		WinRate:       entry.WinRate,
		TotalXPEarned: entry.TotalXPEarned,
		CurrentStreak: entry.CurrentStreak,
		UpdatedAt:     time.Now().UTC().Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperrors.NewDatabaseError("marshal leaderboard entry", err)
	}
	if err := r.store.Put(ctx, av); err != nil {
		return apperrors.NewDatabaseError("save leaderboard entry", err)
	}
	return nil
}

func unmarshalGame(item ports.Item) (domain.BeatCongressGame, error) {
	var row gameItem
	if err := attributevalue.UnmarshalMap(item, &row); err != nil {
		return domain.BeatCongressGame{}, apperrors.NewDatabaseError("unmarshal game", err)
	}

	startDate, _ := time.Parse(time.RFC3339, row.StartDate)
	endDate, _ := time.Parse(time.RFC3339, row.EndDate)

	return domain.BeatCongressGame{
		ID:                    row.ID,
		UserID:                row.UserID,
		CongressMemberID:      row.CongressMemberID,
		CongressMemberName:    row.CongressMemberName,
		CongressMemberParty:   domain.PoliticalParty(row.CongressMemberParty),
		CongressMemberChamber: domain.Chamber(row.CongressMemberChamber),
		StartDate:             startDate,
		EndDate:               endDate,
		DurationDays:          row.DurationDays,
		Status:                domain.GameStatus(row.Status),
		UserStartingValue:     row.UserStartingValue,
		UserCurrentValue:      row.UserCurrentValue,
		UserReturnPercent:     row.UserReturnPercent,
		CongressStartingValue: row.CongressStartingValue,
		CongressCurrentValue:  row.CongressCurrentValue,
		CongressReturnPercent: row.CongressReturnPercent,
		UserWon:               row.UserWon,
		XPAwarded:             row.XPAwarded,
	}, nil
}

func unmarshalLeaderboardEntry(item ports.Item) (domain.LeaderboardEntry, error) {
	var row leaderboardItem
	if err := attributevalue.UnmarshalMap(item, &row); err != nil {
		return domain.LeaderboardEntry{}, apperrors.NewDatabaseError("unmarshal leaderboard entry", err)
	}
	return domain.LeaderboardEntry{
		UserID:        row.UserID,
		Username:      row.Username,
		GamesPlayed:   row.GamesPlayed,
		GamesWon:      row.GamesWon,
		WinRate:       row.WinRate,
		TotalXPEarned: row.TotalXPEarned,
		CurrentStreak: row.CurrentStreak,
	}, nil
}
