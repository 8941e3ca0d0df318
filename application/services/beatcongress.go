package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/domain"
	"github.com/tradestreak/wall-street-service/pkg/common"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

// BeatCongressGamesPage lists a user's games with the active count the
// game hub shows.
type BeatCongressGamesPage struct {
	Games       []domain.BeatCongressGame `json:"games"`
	ActiveGames int                       `json:"activeGames"`
	Pagination  *common.PaginationInfo    `json:"pagination"`
}

// BeatCongressLeaderboardPage is the leaderboard plus the caller's own
// entry when authenticated.
type BeatCongressLeaderboardPage struct {
	Entries  []domain.LeaderboardEntry `json:"entries"`
	UserRank *domain.LeaderboardEntry  `json:"userRank,omitempty"`
}

// BeatCongressService implements the portfolio contest game.
type BeatCongressService struct {
	repo         ports.BeatCongressRepository
	congressRepo ports.CongressRepository
	publisher    ports.EventPublisher
	xpWin        int
	xpLoss       int
	logger       *zap.Logger
}

// NewBeatCongressService creates the service.
func NewBeatCongressService(repo ports.BeatCongressRepository, congressRepo ports.CongressRepository, publisher ports.EventPublisher, xpWin, xpLoss int, logger *zap.Logger) *BeatCongressService {
	return &BeatCongressService{
		repo:         repo,
		congressRepo: congressRepo,
		publisher:    publisher,
		xpWin:        xpWin,
		xpLoss:       xpLoss,
		logger:       logger,
	}
}

// GetUserGames lists the user's games, optionally filtered by status. An
// unparseable status filter is ignored.
func (s *BeatCongressService) GetUserGames(ctx context.Context, userID, status string, page, pageSize int) (BeatCongressGamesPage, error) {
	var filter domain.GameStatus
	if parsed, ok := domain.ParseGameStatus(status); ok {
		filter = parsed
	}

	games, err := s.repo.GetUserGames(ctx, userID, filter, page*pageSize)
	if err != nil {
		return BeatCongressGamesPage{}, err
	}

	active := 0
	for _, game := range games {
		if game.Status == domain.GameActive {
			active++
		}
	}

	total := len(games)
	start := (page - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return BeatCongressGamesPage{
		Games:       games[start:end],
		ActiveGames: active,
		Pagination:  common.BuildPaginationMeta(page, pageSize, total),
	}, nil
}

// GetGameDetail returns one of the user's games.
func (s *BeatCongressService) GetGameDetail(ctx context.Context, userID, gameID string) (domain.BeatCongressGame, error) {
	return s.repo.GetGameByID(ctx, userID, gameID)
}

// CreateGame starts a contest against a member. Duration is bounded, one
// active game per member, and the member must exist.
func (s *BeatCongressService) CreateGame(ctx context.Context, userID, memberID string, durationDays int) (domain.BeatCongressGame, error) {
	if durationDays < domain.MinGameDurationDays || durationDays > domain.MaxGameDurationDays {
		return domain.BeatCongressGame{}, apperrors.NewValidationError(
			fmt.Sprintf("duration must be between %d and %d days", domain.MinGameDurationDays, domain.MaxGameDurationDays))
	}

	if _, found, err := s.repo.GetActiveGameWithMember(ctx, userID, memberID); err != nil {
		return domain.BeatCongressGame{}, err
	} else if found {
		return domain.BeatCongressGame{}, apperrors.NewConflictError("you already have an active game against this member")
	}

	member, err := s.congressRepo.GetMemberByID(ctx, memberID)
	if err != nil {
		return domain.BeatCongressGame{}, err
	}

	now := time.Now().UTC()
	game := domain.BeatCongressGame{
		ID:                    uuid.NewString()[:8],
		UserID:                userID,
		CongressMemberID:      member.ID,
		CongressMemberName:    member.Name,
		CongressMemberParty:   member.Party,
		CongressMemberChamber: member.Chamber,
		StartDate:             now,
		EndDate:               now.AddDate(0, 0, durationDays),
		DurationDays:          durationDays,
		Status:                domain.GameActive,
		UserStartingValue:     domain.GameStartingValue,
		UserCurrentValue:      domain.GameStartingValue,
		CongressStartingValue: domain.GameStartingValue,
		CongressCurrentValue:  domain.GameStartingValue,
	}
	if err := s.repo.CreateGame(ctx, game); err != nil {
		return domain.BeatCongressGame{}, err
	}

	s.logger.Info("Created beat congress game",
		zap.String("userId", userID),
		zap.String("member", member.Name),
		zap.Int("durationDays", durationDays),
	)
	return game, nil
}

// UpdateGameValues writes both portfolio values and recomputes the returns
// off the starting values.
func (s *BeatCongressService) UpdateGameValues(ctx context.Context, userID, gameID string, userValue, congressValue float64) (domain.BeatCongressGame, error) {
	game, err := s.repo.GetGameByID(ctx, userID, gameID)
	if err != nil {
		return domain.BeatCongressGame{}, err
	}

	game.UserCurrentValue = round2(userValue)
	game.UserReturnPercent = round2((userValue - game.UserStartingValue) / game.UserStartingValue * 100)
	game.CongressCurrentValue = round2(congressValue)
	game.CongressReturnPercent = round2((congressValue - game.CongressStartingValue) / game.CongressStartingValue * 100)

	if err := s.repo.UpdateGameValues(ctx, game); err != nil {
		return domain.BeatCongressGame{}, err
	}
	return game, nil
}

// CompleteGame settles an active game: the user wins when their return
// strictly beats the member's. XP and the leaderboard update follow.
func (s *BeatCongressService) CompleteGame(ctx context.Context, userID, gameID string) (domain.BeatCongressGame, error) {
	game, err := s.repo.GetGameByID(ctx, userID, gameID)
	if err != nil {
		return domain.BeatCongressGame{}, err
	}
	if game.Status != domain.GameActive {
		return domain.BeatCongressGame{}, apperrors.NewValidationError("game is not active")
	}

	won := game.IsUserWinning()
	xp := s.xpLoss
	if won {
		xp = s.xpWin
	}

	game.Status = domain.GameCompleted
	game.UserWon = &won
	game.XPAwarded = xp
	if err := s.repo.CompleteGame(ctx, game); err != nil {
		return domain.BeatCongressGame{}, err
	}

	if err := s.updateLeaderboard(ctx, userID, won, xp); err != nil {
		s.logger.Error("Failed to update leaderboard",
			zap.String("userId", userID),
			zap.Error(err),
		)
	}

	s.logger.Info("Completed beat congress game",
		zap.String("userId", userID),
		zap.Bool("won", won),
		zap.Float64("userReturn", game.UserReturnPercent),
		zap.Float64("congressReturn", game.CongressReturnPercent),
	)

	s.publish(ctx, ports.Event{Type: "game.completed", Payload: map[string]any{
		"userId":    userID,
		"gameId":    gameID,
		"memberId":  game.CongressMemberID,
		"userWon":   won,
		"xpAwarded": xp,
	}})
	return game, nil
}

// GetLeaderboard returns the top entries and, when userID is set, the
// caller's own entry with rank.
func (s *BeatCongressService) GetLeaderboard(ctx context.Context, userID string, limit int) (BeatCongressLeaderboardPage, error) {
	entries, err := s.repo.GetLeaderboard(ctx, limit)
	if err != nil {
		return BeatCongressLeaderboardPage{}, err
	}

	page := BeatCongressLeaderboardPage{Entries: entries}
	if userID != "" {
		entry, found, err := s.repo.GetUserLeaderboardEntry(ctx, userID)
		if err != nil {
			return BeatCongressLeaderboardPage{}, err
		}
		if found {
			page.UserRank = &entry
		}
	}
	return page, nil
}

// ProcessExpiredGames completes every active game past its end date.
// Failures are logged per game so one bad row cannot stall the batch.
func (s *BeatCongressService) ProcessExpiredGames(ctx context.Context) (int, error) {
	games, err := s.repo.GetActiveGamesToProcess(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}

	processed := 0
	for _, game := range games {
		if _, err := s.CompleteGame(ctx, game.UserID, game.ID); err != nil {
			s.logger.Error("Failed to process expired game",
				zap.String("gameId", game.ID),
				zap.Error(err),
			)
			continue
		}
		processed++
	}

	s.logger.Info("Processed expired beat congress games", zap.Int("count", processed))
	return processed, nil
}

// GetChallengeableMembers lists members the user has no active game with.
func (s *BeatCongressService) GetChallengeableMembers(ctx context.Context, userID string, limit int) ([]domain.CongressMember, error) {
	members, _, err := s.congressRepo.GetMembers(ctx, 1, limit*2)
	if err != nil {
		return nil, err
	}

	activeGames, err := s.repo.GetUserGames(ctx, userID, domain.GameActive, 0)
	if err != nil {
		return nil, err
	}
	engaged := make(map[string]bool, len(activeGames))
	for _, game := range activeGames {
		engaged[game.CongressMemberID] = true
	}

	available := make([]domain.CongressMember, 0, limit)
	for _, member := range members {
		if engaged[member.ID] {
			continue
		}
		available = append(available, member)
		if len(available) == limit {
			break
		}
	}
	return available, nil
}

func (s *BeatCongressService) updateLeaderboard(ctx context.Context, userID string, won bool, xp int) error {
	entry, found, err := s.repo.GetUserLeaderboardEntry(ctx, userID)
	if err != nil {
		return err
	}
	if !found {
		entry = domain.LeaderboardEntry{UserID: userID, Username: "User"}
	}

	entry.GamesPlayed++
	if won {
		entry.GamesWon++
		entry.CurrentStreak++
	} else {
		entry.CurrentStreak = 0
	}
	entry.TotalXPEarned += xp
	entry.WinRate = round1(float64(entry.GamesWon) / float64(entry.GamesPlayed) * 100)

	return s.repo.SaveLeaderboardEntry(ctx, entry)
}

func (s *BeatCongressService) publish(ctx context.Context, event ports.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Event publish failed", zap.String("type", event.Type), zap.Error(err))
	}
}
