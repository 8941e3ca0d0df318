package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/domain"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

// moodPredictionLeadDays is how far ahead a prediction targets, landing on
// market close of that day.
const moodPredictionLeadDays = 7

// MoodPredictionResult is returned on submission. XP is granted at
// resolution, not here.
type MoodPredictionResult struct {
	Prediction domain.MoodPrediction `json:"prediction"`
	Message    string                `json:"message"`
	XPEarned   int                   `json:"xpEarned"`
}

// MoodService implements the market mood feature.
type MoodService struct {
	repo      ports.MoodRepository
	publisher ports.EventPublisher
	xpCorrect int
	logger    *zap.Logger
}

// NewMoodService creates the service.
func NewMoodService(repo ports.MoodRepository, publisher ports.EventPublisher, xpCorrect int, logger *zap.Logger) *MoodService {
	return &MoodService{repo: repo, publisher: publisher, xpCorrect: xpCorrect, logger: logger}
}

// GetCurrentMood returns the stored snapshot, or the neutral default when
// ingestion has never run.
func (s *MoodService) GetCurrentMood(ctx context.Context) (domain.MarketMood, error) {
	mood, found, err := s.repo.GetCurrentMood(ctx)
	if err != nil {
		return domain.MarketMood{}, err
	}
	if !found {
		return domain.DefaultMood(time.Now().UTC()), nil
	}
	return mood, nil
}

// GetMoodHistory returns dated snapshots for the trailing window.
func (s *MoodService) GetMoodHistory(ctx context.Context, days int) ([]domain.MarketMood, error) {
	return s.repo.GetMoodHistory(ctx, days)
}

// SaveMood persists a snapshot. Used by ingestion.
func (s *MoodService) SaveMood(ctx context.Context, mood domain.MarketMood) error {
	return s.repo.SaveMood(ctx, mood)
}

// SubmitPrediction records one prediction per user per target date. The
// target is market close seven days out; a second submission for the same
// date surfaces Conflict with the first payload untouched.
func (s *MoodService) SubmitPrediction(ctx context.Context, userID, predictedSentiment string, predictedIndex *int) (MoodPredictionResult, error) {
	sentiment, ok := domain.ParseSentiment(predictedSentiment)
	if !ok {
		return MoodPredictionResult{}, apperrors.NewValidationError(fmt.Sprintf("invalid sentiment: %s", predictedSentiment))
	}

	now := time.Now().UTC()
	target := now.AddDate(0, 0, moodPredictionLeadDays)
	target = time.Date(target.Year(), target.Month(), target.Day(), 16, 0, 0, 0, time.UTC)

	shortUser := userID
	if len(shortUser) > 8 {
		shortUser = shortUser[:8]
	}
	prediction := domain.MoodPrediction{
		ID:                 fmt.Sprintf("%s-%s-%s", shortUser, target.Format("20060102"), uuid.NewString()[:8]),
		UserID:             userID,
		PredictedSentiment: sentiment,
		PredictedIndex:     predictedIndex,
		TargetDate:         target,
		CreatedAt:          now,
	}

	if err := s.repo.SavePrediction(ctx, prediction); err != nil {
		return MoodPredictionResult{}, err
	}

	return MoodPredictionResult{
		Prediction: prediction,
		Message:    fmt.Sprintf("Prediction saved! We'll check back on %s.", target.Format("January 02")),
		XPEarned:   0,
	}, nil
}

// GetUserPredictions returns the user's recent predictions.
func (s *MoodService) GetUserPredictions(ctx context.Context, userID string, limit int) ([]domain.MoodPrediction, error) {
	return s.repo.GetUserPredictions(ctx, userID, limit)
}

// ResolvePredictions settles every pending prediction for the target date
// against the recorded mood. Returns how many were resolved; zero with no
// error when the day has no snapshot yet.
func (s *MoodService) ResolvePredictions(ctx context.Context, targetDate time.Time) (int, error) {
	actual, found, err := s.moodForDate(ctx, targetDate)
	if err != nil {
		return 0, err
	}
	if !found {
		s.logger.Warn("No mood snapshot for date, skipping resolution",
			zap.String("date", targetDate.Format("2006-01-02")),
		)
		return 0, nil
	}

	pending, err := s.repo.GetPendingPredictions(ctx, targetDate)
	if err != nil {
		return 0, err
	}

	resolved := 0
	for _, p := range pending {
		correct := p.PredictedSentiment == actual.Sentiment
		xp := 0
		if correct {
			xp = s.xpCorrect
		}

		p.ActualSentiment = &actual.Sentiment
		p.ActualIndex = &actual.FearGreedIndex
		p.IsCorrect = &correct
		p.XPAwarded = xp
		if err := s.repo.ResolvePrediction(ctx, p); err != nil {
			s.logger.Error("Failed to resolve mood prediction",
				zap.String("userId", p.UserID),
				zap.Error(err),
			)
			continue
		}
		resolved++

		s.publish(ctx, ports.Event{Type: "prediction.resolved", Payload: map[string]any{
			"feature":   "mood",
			"userId":    p.UserID,
			"isCorrect": correct,
			"xpAwarded": xp,
		}})
	}

	s.logger.Info("Resolved mood predictions",
		zap.Int("count", resolved),
		zap.String("date", targetDate.Format("2006-01-02")),
	)
	return resolved, nil
}

// moodForDate finds the history snapshot recorded on the target day.
func (s *MoodService) moodForDate(ctx context.Context, targetDate time.Time) (domain.MarketMood, bool, error) {
	days := int(time.Since(targetDate).Hours()/24) + 2
	if days < 2 {
		days = 2
	}
	history, err := s.repo.GetMoodHistory(ctx, days)
	if err != nil {
		return domain.MarketMood{}, false, err
	}

	want := targetDate.Format("2006-01-02")
	for _, mood := range history {
		if mood.UpdatedAt.Format("2006-01-02") == want {
			return mood, true, nil
		}
	}
	return domain.MarketMood{}, false, nil
}

func (s *MoodService) publish(ctx context.Context, event ports.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Event publish failed", zap.String("type", event.Type), zap.Error(err))
	}
}
