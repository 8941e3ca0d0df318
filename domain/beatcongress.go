package domain

import (
	"strings"
	"time"
)

// GameStatus is the lifecycle state of a Beat Congress game.
type GameStatus string

const (
	GameActive    GameStatus = "ACTIVE"
	GameCompleted GameStatus = "COMPLETED"
	GameExpired   GameStatus = "EXPIRED"
)

// ParseGameStatus parses a status filter leniently.
func ParseGameStatus(s string) (GameStatus, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ACTIVE":
		return GameActive, true
	case "COMPLETED":
		return GameCompleted, true
	case "EXPIRED":
		return GameExpired, true
	}
	return "", false
}

// Game duration bounds and portfolio seed.
const (
	MinGameDurationDays = 7
	MaxGameDurationDays = 90
	GameStartingValue   = 10000.0
)

// BeatCongressGame is a user-versus-member portfolio contest.
type BeatCongressGame struct {
	ID                    string         `json:"id"`
	UserID                string         `json:"userId"`
	CongressMemberID      string         `json:"congressMemberId"`
	CongressMemberName    string         `json:"congressMemberName"`
	CongressMemberParty   PoliticalParty `json:"congressMemberParty"`
	CongressMemberChamber Chamber        `json:"congressMemberChamber"`
	StartDate             time.Time      `json:"startDate"`
	EndDate               time.Time      `json:"endDate"`
	DurationDays          int            `json:"durationDays"`
	Status                GameStatus     `json:"status"`

	UserStartingValue     float64 `json:"userStartingValue"`
	UserCurrentValue      float64 `json:"userCurrentValue"`
	UserReturnPercent     float64 `json:"userReturnPercent"`
	CongressStartingValue float64 `json:"congressStartingValue"`
	CongressCurrentValue  float64 `json:"congressCurrentValue"`
	CongressReturnPercent float64 `json:"congressReturnPercent"`

	UserWon   *bool `json:"userWon,omitempty"`
	XPAwarded int   `json:"xpAwarded"`
}

// IsUserWinning reports whether the user's return currently beats the
// member's. Pure comparison of the two tracked returns.
func (g BeatCongressGame) IsUserWinning() bool {
	return g.UserReturnPercent > g.CongressReturnPercent
}

// DaysRemaining until the game ends, clamped to zero.
func (g BeatCongressGame) DaysRemaining(now time.Time) int {
	remaining := int(g.EndDate.Sub(now).Hours() / 24)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// LeaderboardEntry is the denormalized per-user game record. It is updated
// by read-modify-write on every completion; two concurrent completions for
// the same user can lose an increment. Accepted limitation.
type LeaderboardEntry struct {
	Rank          int     `json:"rank"`
	UserID        string  `json:"userId"`
	Username      string  `json:"username"`
	GamesPlayed   int     `json:"gamesPlayed"`
	GamesWon      int     `json:"gamesWon"`
	WinRate       float64 `json:"winRate"`
	TotalXPEarned int     `json:"totalXpEarned"`
	CurrentStreak int     `json:"currentStreak"`
}
