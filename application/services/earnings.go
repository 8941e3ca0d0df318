package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/domain"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

// EarningsEventsPage lists upcoming events with the caller's predictions
// when authenticated.
type EarningsEventsPage struct {
	Events          []domain.EarningsEvent      `json:"events"`
	UserPredictions []domain.EarningsPrediction `json:"userPredictions"`
}

// EventPredictionStats is the per-type tally snapshot returned with a
// submission.
type EventPredictionStats struct {
	TotalPredictions int `json:"totalPredictions"`
	BeatPredictions  int `json:"beatPredictions"`
	MeetPredictions  int `json:"meetPredictions"`
	MissPredictions  int `json:"missPredictions"`
}

// EarningsPredictionResult is returned on submission.
type EarningsPredictionResult struct {
	Prediction domain.EarningsPrediction `json:"prediction"`
	Message    string                    `json:"message"`
	EventStats EventPredictionStats      `json:"eventStats"`
}

// EarningsService implements the earnings prediction game.
type EarningsService struct {
	repo      ports.EarningsRepository
	publisher ports.EventPublisher
	xpCorrect int
	logger    *zap.Logger
}

// NewEarningsService creates the service.
func NewEarningsService(repo ports.EarningsRepository, publisher ports.EventPublisher, xpCorrect int, logger *zap.Logger) *EarningsService {
	return &EarningsService{repo: repo, publisher: publisher, xpCorrect: xpCorrect, logger: logger}
}

// GetUpcomingEvents lists events inside the lookahead window. When userID
// is set the caller's recent predictions ride along.
func (s *EarningsService) GetUpcomingEvents(ctx context.Context, userID string, daysAhead, limit int) (EarningsEventsPage, error) {
	now := time.Now().UTC()
	events, err := s.repo.GetUpcomingEvents(ctx, now, now.AddDate(0, 0, daysAhead), limit)
	if err != nil {
		return EarningsEventsPage{}, err
	}

	predictions := []domain.EarningsPrediction{}
	if userID != "" {
		predictions, err = s.repo.GetUserPredictions(ctx, userID, 50)
		if err != nil {
			return EarningsEventsPage{}, err
		}
	}

	return EarningsEventsPage{Events: events, UserPredictions: predictions}, nil
}

// GetEventDetail returns a single event by id.
func (s *EarningsService) GetEventDetail(ctx context.Context, eventID string) (domain.EarningsEvent, error) {
	return s.repo.GetEventByID(ctx, eventID)
}

// GetEventByTicker returns the next event for the ticker.
func (s *EarningsService) GetEventByTicker(ctx context.Context, ticker string) (domain.EarningsEvent, error) {
	return s.repo.GetEventByTicker(ctx, strings.ToUpper(strings.TrimSpace(ticker)), time.Now().UTC())
}

// SubmitPrediction records one prediction per user per event, while the
// event is still open. The event's tallies update after the write; the
// returned stats include this submission.
func (s *EarningsService) SubmitPrediction(ctx context.Context, userID, ticker, predictionType string) (EarningsPredictionResult, error) {
	predType, ok := domain.ParsePredictionType(predictionType)
	if !ok {
		return EarningsPredictionResult{}, apperrors.NewValidationError(fmt.Sprintf("invalid prediction type: %s", predictionType))
	}

	event, err := s.GetEventByTicker(ctx, ticker)
	if err != nil {
		return EarningsPredictionResult{}, err
	}
	if event.PredictionsClosed {
		return EarningsPredictionResult{}, apperrors.NewValidationError("predictions are closed for this earnings event")
	}

	prediction := domain.EarningsPrediction{
		UserID:     userID,
		EventID:    event.ID,
		Ticker:     event.Ticker,
		Prediction: predType,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.repo.SavePrediction(ctx, prediction); err != nil {
		return EarningsPredictionResult{}, err
	}
	if err := s.repo.IncrementPredictionCount(ctx, event.ID, predType); err != nil {
		return EarningsPredictionResult{}, err
	}

	updated, err := s.repo.GetEventByID(ctx, event.ID)
	if err != nil {
		return EarningsPredictionResult{}, err
	}

	return EarningsPredictionResult{
		Prediction: prediction,
		Message:    fmt.Sprintf("Prediction saved! We'll see how %s does.", event.Ticker),
		EventStats: EventPredictionStats{
			TotalPredictions: updated.TotalPredictions,
			BeatPredictions:  updated.BeatPredictions,
			MeetPredictions:  updated.MeetPredictions,
			MissPredictions:  updated.MissPredictions,
		},
	}, nil
}

// GetUserPredictions returns the user's recent predictions.
func (s *EarningsService) GetUserPredictions(ctx context.Context, userID string, limit int) ([]domain.EarningsPrediction, error) {
	return s.repo.GetUserPredictions(ctx, userID, limit)
}

// GetUserStats returns the user's prediction record.
func (s *EarningsService) GetUserStats(ctx context.Context, userID string) (domain.UserEarningsStats, error) {
	return s.repo.GetUserStats(ctx, userID)
}

// SaveEvent persists an event. Used by ingestion.
func (s *EarningsService) SaveEvent(ctx context.Context, event domain.EarningsEvent) error {
	return s.repo.SaveEvent(ctx, event)
}

// UpdateEventResults stores actuals, closes the event, and settles every
// prediction against the derived result, updating each predictor's stats.
func (s *EarningsService) UpdateEventResults(ctx context.Context, eventID string, actualEPS, actualRevenue *float64) (domain.EarningsEvent, error) {
	event, err := s.repo.UpdateEventResults(ctx, eventID, actualEPS, actualRevenue)
	if err != nil {
		return domain.EarningsEvent{}, err
	}

	result := event.Result()
	predictions, err := s.repo.GetEventPredictions(ctx, eventID)
	if err != nil {
		return domain.EarningsEvent{}, err
	}

	for _, p := range predictions {
		correct := p.Prediction == result
		xp := 0
		if correct {
			xp = s.xpCorrect
		}

		p.IsCorrect = &correct
		p.XPAwarded = xp
		if err := s.repo.ResolvePrediction(ctx, p); err != nil {
			s.logger.Error("Failed to resolve earnings prediction",
				zap.String("userId", p.UserID),
				zap.String("eventId", eventID),
				zap.Error(err),
			)
			continue
		}
		if err := s.updateUserStats(ctx, p.UserID, correct, xp); err != nil {
			s.logger.Error("Failed to update earnings stats",
				zap.String("userId", p.UserID),
				zap.Error(err),
			)
		}

		s.publish(ctx, ports.Event{Type: "prediction.resolved", Payload: map[string]any{
			"feature":   "earnings",
			"userId":    p.UserID,
			"eventId":   eventID,
			"isCorrect": correct,
			"xpAwarded": xp,
		}})
	}

	s.logger.Info("Resolved earnings predictions",
		zap.String("eventId", eventID),
		zap.Int("count", len(predictions)),
		zap.String("result", string(result)),
	)
	return event, nil
}

// updateUserStats is a read-modify-write; concurrent resolutions for one
// user can lose an update. Accepted limitation.
func (s *EarningsService) updateUserStats(ctx context.Context, userID string, correct bool, xp int) error {
	stats, err := s.repo.GetUserStats(ctx, userID)
	if err != nil {
		return err
	}

	stats.TotalPredictions++
	if correct {
		stats.CorrectPredictions++
		stats.CurrentStreak++
	} else {
		stats.CurrentStreak = 0
	}
	if stats.CurrentStreak > stats.LongestStreak {
		stats.LongestStreak = stats.CurrentStreak
	}
	stats.Accuracy = round1(float64(stats.CorrectPredictions) / float64(stats.TotalPredictions) * 100)
	stats.TotalXPEarned += xp

	return s.repo.SaveUserStats(ctx, userID, stats)
}

func (s *EarningsService) publish(ctx context.Context, event ports.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Event publish failed", zap.String("type", event.Type), zap.Error(err))
	}
}
