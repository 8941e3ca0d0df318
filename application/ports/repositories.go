package ports

import (
	"context"
	"time"

	"github.com/tradestreak/wall-street-service/domain"
)

// CongressRepository persists disclosed trades and member records.
// This is a port in hexagonal architecture - the domain doesn't know about
// the implementation.
type CongressRepository interface {
	// SaveTrade writes the trade under the global partition and fans out a
	// copy under the member partition. The two writes are not atomic; a
	// failure between them leaves the member copy missing until re-ingested.
	SaveTrade(ctx context.Context, trade domain.CongressTrade) error

	// GetTrades returns one page of trades, newest first, with client-side
	// filters applied. The returned count is the unfiltered partition total.
	GetTrades(ctx context.Context, page, pageSize int, filters domain.TradeFilters) ([]domain.CongressTrade, int, error)

	// GetTradeByID scans the recent global partition for the trade.
	GetTradeByID(ctx context.Context, tradeID string) (domain.CongressTrade, error)

	// GetTradesByMember resolves the member id in three tiers: the id as
	// given, its hyphen/underscore variant, then a name-filtered pass over
	// the 2000 most recent global trades.
	GetTradesByMember(ctx context.Context, memberID string, limit int) ([]domain.CongressTrade, error)

	// GetTradesByMemberName filters the 2000 most recent global trades by
	// exact member name. Used when member partitions are empty after a data
	// migration.
	GetTradesByMemberName(ctx context.Context, memberName string, limit int) ([]domain.CongressTrade, error)

	// GetTodayCount counts global trades disclosed on the given date.
	GetTodayCount(ctx context.Context, date time.Time) (int, error)

	// GetTopPerformer returns the trade with the best reported return among
	// the 200 most recent trades inside the trailing window. The bool is
	// false when no trade has a return.
	GetTopPerformer(ctx context.Context, daysBack int) (domain.CongressTrade, bool, error)

	// GetMembers lists member profile rows.
	GetMembers(ctx context.Context, page, pageSize int) ([]domain.CongressMember, int, error)

	// GetMemberByID fetches one member row, trying the hyphen/underscore
	// variant before giving up.
	GetMemberByID(ctx context.Context, memberID string) (domain.CongressMember, error)

	// SaveMember upserts a member profile row.
	SaveMember(ctx context.Context, member domain.CongressMember) error
}

// CramerRepository persists tracked TV picks.
type CramerRepository interface {
	GetPicks(ctx context.Context, page, pageSize int, recommendation domain.CramerRecommendation) ([]domain.CramerPick, int, error)
	GetPickByID(ctx context.Context, pickID string) (domain.CramerPick, error)

	// GetPickByTicker returns the most recent pick for the ticker among the
	// 100 latest picks.
	GetPickByTicker(ctx context.Context, ticker string) (domain.CramerPick, error)

	SavePick(ctx context.Context, pick domain.CramerPick) error

	// UpdatePickPrices sets the current price and recomputes the follow and
	// inverse returns.
	UpdatePickPrices(ctx context.Context, pickID string, currentPrice float64) error

	// GetStats aggregates performance over picks from the trailing window,
	// scanning the 500 latest.
	GetStats(ctx context.Context, daysBack int) (domain.CramerStats, error)
}

// MoodRepository persists the market mood snapshot and user predictions.
type MoodRepository interface {
	// GetCurrentMood returns the stored snapshot. The bool is false when no
	// ingestion has run yet.
	GetCurrentMood(ctx context.Context) (domain.MarketMood, bool, error)

	// SaveMood writes the current snapshot and a dated history copy.
	SaveMood(ctx context.Context, mood domain.MarketMood) error

	// GetMoodHistory returns dated snapshots for the trailing window.
	GetMoodHistory(ctx context.Context, days int) ([]domain.MarketMood, error)

	// SavePrediction writes the prediction only if none exists for the
	// (user, target date); ErrAlreadyExists surfaces as Conflict upstream.
	SavePrediction(ctx context.Context, p domain.MoodPrediction) error

	GetUserPrediction(ctx context.Context, userID string, targetDate time.Time) (domain.MoodPrediction, bool, error)
	GetUserPredictions(ctx context.Context, userID string, limit int) ([]domain.MoodPrediction, error)

	// GetPendingPredictions lists unresolved predictions for the target
	// date across all users, via GSI1.
	GetPendingPredictions(ctx context.Context, targetDate time.Time) ([]domain.MoodPrediction, error)

	// ResolvePrediction stores the actual outcome and XP on the prediction.
	ResolvePrediction(ctx context.Context, p domain.MoodPrediction) error
}

// EarningsRepository persists earnings events, predictions, and user stats.
type EarningsRepository interface {
	GetUpcomingEvents(ctx context.Context, from, to time.Time, limit int) ([]domain.EarningsEvent, error)
	GetEventByID(ctx context.Context, eventID string) (domain.EarningsEvent, error)
	GetEventByTicker(ctx context.Context, ticker string, from time.Time) (domain.EarningsEvent, error)
	SaveEvent(ctx context.Context, event domain.EarningsEvent) error

	// UpdateEventResults stores actuals and the derived surprise, and closes
	// predictions.
	UpdateEventResults(ctx context.Context, eventID string, actualEPS, actualRevenue *float64) (domain.EarningsEvent, error)

	// IncrementPredictionCount bumps the total and per-type tallies
	// atomically.
	IncrementPredictionCount(ctx context.Context, eventID string, prediction domain.EarningsPredictionType) error

	// SavePrediction is conditional on no existing prediction for the
	// (user, event).
	SavePrediction(ctx context.Context, p domain.EarningsPrediction) error

	GetUserPrediction(ctx context.Context, userID, eventID string) (domain.EarningsPrediction, bool, error)
	GetUserPredictions(ctx context.Context, userID string, limit int) ([]domain.EarningsPrediction, error)

	// GetEventPredictions lists all predictions for an event via GSI1.
	GetEventPredictions(ctx context.Context, eventID string) ([]domain.EarningsPrediction, error)

	// ResolvePrediction stores correctness and XP on the prediction.
	ResolvePrediction(ctx context.Context, p domain.EarningsPrediction) error

	// GetUserStats returns the denormalized stats row, zero-valued when the
	// user has no predictions yet.
	GetUserStats(ctx context.Context, userID string) (domain.UserEarningsStats, error)

	// SaveUserStats overwrites the stats row. Callers read-modify-write;
	// concurrent resolutions can lose an update. Accepted limitation.
	SaveUserStats(ctx context.Context, userID string, stats domain.UserEarningsStats) error
}

// BeatCongressRepository persists games and the leaderboard.
type BeatCongressRepository interface {
	CreateGame(ctx context.Context, game domain.BeatCongressGame) error
	GetUserGames(ctx context.Context, userID string, status domain.GameStatus, limit int) ([]domain.BeatCongressGame, error)
	GetGameByID(ctx context.Context, userID, gameID string) (domain.BeatCongressGame, error)

	// GetActiveGameWithMember returns the user's active game against the
	// member, if any.
	GetActiveGameWithMember(ctx context.Context, userID, memberID string) (domain.BeatCongressGame, bool, error)

	// UpdateGameValues writes current portfolio values and returns.
	UpdateGameValues(ctx context.Context, game domain.BeatCongressGame) error

	// CompleteGame finalizes the game and moves its GSI entry from the
	// active to the completed partition.
	CompleteGame(ctx context.Context, game domain.BeatCongressGame) error

	// GetActiveGamesToProcess lists active games whose end date has passed,
	// via the GSI range ending at now.
	GetActiveGamesToProcess(ctx context.Context, now time.Time) ([]domain.BeatCongressGame, error)

	GetLeaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error)

	// GetUserLeaderboardEntry returns the user's entry with its rank among
	// the top 1000.
	GetUserLeaderboardEntry(ctx context.Context, userID string) (domain.LeaderboardEntry, bool, error)

	// SaveLeaderboardEntry overwrites the user's entry. Read-modify-write
	// by callers; racy under concurrent completions. Accepted limitation.
	SaveLeaderboardEntry(ctx context.Context, entry domain.LeaderboardEntry) error
}

// MarketTalkRepository persists scripted podcast episodes.
type MarketTalkRepository interface {
	GetEpisodes(ctx context.Context, page, pageSize int) ([]domain.TalkEpisode, int, error)
	GetEpisodeByID(ctx context.Context, episodeID string) (domain.TalkEpisode, error)

	// GetLiveEpisode follows the CURRENT_LIVE pointer. The bool is false
	// when nothing is live.
	GetLiveEpisode(ctx context.Context) (domain.TalkEpisode, bool, error)

	// GetLatestEpisode returns the newest episode by creation time.
	GetLatestEpisode(ctx context.Context) (domain.TalkEpisode, bool, error)

	SaveEpisode(ctx context.Context, episode domain.TalkEpisode) error

	// AddMessage appends a message to an existing episode.
	AddMessage(ctx context.Context, episodeID string, msg domain.TalkMessage) error

	// EndLiveEpisode clears the live pointer and marks the episode ended.
	EndLiveEpisode(ctx context.Context, episodeID string) error

	GetEpisodesByTopic(ctx context.Context, topic string, limit int) ([]domain.TalkEpisode, error)
}
