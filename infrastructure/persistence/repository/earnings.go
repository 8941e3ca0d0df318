package repository

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/domain"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

const (
	pkEarnings           = "EARNINGS"
	skEventPrefix        = "EVENT#"
	skEarningsPredPrefix = "EARNINGS_PRED#"
	skEarningsStats      = "EARNINGS_STATS"
	gsiEventPredictions  = "EVENT_PREDICTIONS#"
	eventTickerScanLimit = 100
)

// EarningsRepository persists events, predictions, and per-user stats.
type EarningsRepository struct {
	store     ports.Store
	indexName string
	logger    *zap.Logger
}

// NewEarningsRepository creates the repository.
func NewEarningsRepository(store ports.Store, indexName string, logger *zap.Logger) *EarningsRepository {
	return &EarningsRepository{store: store, indexName: indexName, logger: logger}
}

type earningsEventItem struct {
	PK                string   `dynamodbav:"PK"`
	SK                string   `dynamodbav:"SK"`
	GSI1PK            string   `dynamodbav:"GSI1PK"`
	GSI1SK            string   `dynamodbav:"GSI1SK"`
	ID                string   `dynamodbav:"id"`
	Ticker            string   `dynamodbav:"ticker"`
	CompanyName       string   `dynamodbav:"companyName"`
	EarningsDate      string   `dynamodbav:"earningsDate"`
	EarningsTime      string   `dynamodbav:"earningsTime"`
	EstimatedEPS      *float64 `dynamodbav:"estimatedEPS,omitempty"`
	ActualEPS         *float64 `dynamodbav:"actualEPS,omitempty"`
	EstimatedRevenue  *float64 `dynamodbav:"estimatedRevenue,omitempty"`
	ActualRevenue     *float64 `dynamodbav:"actualRevenue,omitempty"`
	Surprise          *float64 `dynamodbav:"surprise,omitempty"`
	PredictionsClosed bool     `dynamodbav:"predictionsClosed"`
	TotalPredictions  int      `dynamodbav:"totalPredictions"`
	BeatPredictions   int      `dynamodbav:"beatPredictions"`
	MeetPredictions   int      `dynamodbav:"meetPredictions"`
	MissPredictions   int      `dynamodbav:"missPredictions"`
	CreatedAt         string   `dynamodbav:"createdAt"`
	UpdatedAt         string   `dynamodbav:"updatedAt"`
}

type earningsPredictionItem struct {
	PK         string `dynamodbav:"PK"`
	SK         string `dynamodbav:"SK"`
	GSI1PK     string `dynamodbav:"GSI1PK"`
	GSI1SK     string `dynamodbav:"GSI1SK"`
	UserID     string `dynamodbav:"userId"`
	EventID    string `dynamodbav:"eventId"`
	Ticker     string `dynamodbav:"ticker"`
	Prediction string `dynamodbav:"prediction"`
	CreatedAt  string `dynamodbav:"createdAt"`
	IsCorrect  *bool  `dynamodbav:"isCorrect,omitempty"`
	XPAwarded  int    `dynamodbav:"xpAwarded"`
}

type userStatsItem struct {
	PK                 string  `dynamodbav:"PK"`
	SK                 string  `dynamodbav:"SK"`
	TotalPredictions   int     `dynamodbav:"totalPredictions"`
	CorrectPredictions int     `dynamodbav:"correctPredictions"`
	Accuracy           float64 `dynamodbav:"accuracy"`
	CurrentStreak      int     `dynamodbav:"currentStreak"`
	LongestStreak      int     `dynamodbav:"longestStreak"`
	TotalXPEarned      int     `dynamodbav:"totalXpEarned"`
	UpdatedAt          string  `dynamodbav:"updatedAt"`
}

// GetUpcomingEvents lists events inside [from, to], earliest first. The
// date window is applied client-side after the prefix read.
func (r *EarningsRepository) GetUpcomingEvents(ctx context.Context, from, to time.Time, limit int) ([]domain.EarningsEvent, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: pkEarnings,
		Sort: ports.SortCondition{
			Low: skEventPrefix + from.Format("2006-01-02"),
			// Exclusive-looking bound: the next day's bare prefix sorts
			// after every ticker suffix on the last included day.
			High: skEventPrefix + to.AddDate(0, 0, 1).Format("2006-01-02"),
		},
		ScanForward: true,
		Limit:       int32(limit),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("query upcoming events", err)
	}

	events := make([]domain.EarningsEvent, 0, len(items))
	for _, item := range items {
		event, err := unmarshalEvent(item)
		if err != nil {
			r.logger.Warn("Skipping malformed earnings event", zap.Error(err))
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// GetEventByID fetches one event by its composite id "<date>#<ticker>".
func (r *EarningsRepository) GetEventByID(ctx context.Context, eventID string) (domain.EarningsEvent, error) {
	item, found, err := r.store.Get(ctx, ports.Key{PK: pkEarnings, SK: skEventPrefix + eventID})
	if err != nil {
		return domain.EarningsEvent{}, apperrors.NewDatabaseError("get event", err)
	}
	if !found {
		return domain.EarningsEvent{}, apperrors.NewNotFoundError("EarningsEvent", eventID)
	}
	return unmarshalEvent(item)
}

// GetEventByTicker returns the next event for the ticker on or after the
// given date, scanning the 100 nearest events.
func (r *EarningsRepository) GetEventByTicker(ctx context.Context, ticker string, from time.Time) (domain.EarningsEvent, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: pkEarnings,
		Sort:         ports.SortCondition{BeginsWith: skEventPrefix},
		ScanForward:  true,
		Limit:        eventTickerScanLimit,
	})
	if err != nil {
		return domain.EarningsEvent{}, apperrors.NewDatabaseError("query events by ticker", err)
	}

	for _, item := range items {
		event, err := unmarshalEvent(item)
		if err != nil {
			continue
		}
		if strings.EqualFold(event.Ticker, ticker) && !event.EarningsDate.Before(from) {
			return event, nil
		}
	}
	return domain.EarningsEvent{}, apperrors.NewNotFoundError("EarningsEvent", ticker)
}

// SaveEvent upserts an event keyed by date and ticker.
func (r *EarningsRepository) SaveEvent(ctx context.Context, event domain.EarningsEvent) error {
	day := event.EarningsDate.Format("2006-01-02")
	now := time.Now().UTC().Format(time.RFC3339)

	item := earningsEventItem{
		PK:                pkEarnings,
		SK:                fmt.Sprintf("%s%s#%s", skEventPrefix, day, event.Ticker),
		GSI1PK:            "TICKER#" + event.Ticker,
		GSI1SK:            "EARNINGS#" + day,
		ID:                event.ID,
		Ticker:            event.Ticker,
		CompanyName:       event.CompanyName,
		EarningsDate:      event.EarningsDate.Format(time.RFC3339),
		EarningsTime:      event.EarningsTime,
		EstimatedEPS:      event.EstimatedEPS,
		ActualEPS:         event.ActualEPS,
		EstimatedRevenue:  event.EstimatedRevenue,
		ActualRevenue:     event.ActualRevenue,
		Surprise:          event.Surprise,
		PredictionsClosed: event.PredictionsClosed,
		TotalPredictions:  event.TotalPredictions,
		BeatPredictions:   event.BeatPredictions,
		MeetPredictions:   event.MeetPredictions,
		MissPredictions:   event.MissPredictions,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperrors.NewDatabaseError("marshal event", err)
	}
	if err := r.store.Put(ctx, av); err != nil {
		return apperrors.NewDatabaseError("save event", err)
	}

	r.logger.Info("Saved earnings event",
		zap.String("ticker", event.Ticker),
		zap.String("date", day),
	)
	return nil
}

// UpdateEventResults stores actuals, derives the surprise percentage, and
// closes predictions. Returns the updated event.
func (r *EarningsRepository) UpdateEventResults(ctx context.Context, eventID string, actualEPS, actualRevenue *float64) (domain.EarningsEvent, error) {
	event, err := r.GetEventByID(ctx, eventID)
	if err != nil {
		return domain.EarningsEvent{}, err
	}

	set := map[string]types.AttributeValue{
		"predictionsClosed": &types.AttributeValueMemberBOOL{Value: true},
		"updatedAt":         &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
	}
	if actualEPS != nil {
		set["actualEPS"] = numberValue(*actualEPS)
		if event.EstimatedEPS != nil && *event.EstimatedEPS != 0 {
			surprise := (*actualEPS - *event.EstimatedEPS) / math.Abs(*event.EstimatedEPS) * 100
			set["surprise"] = numberValue(math.Round(surprise*100) / 100)
		}
	}
	if actualRevenue != nil {
		set["actualRevenue"] = numberValue(*actualRevenue)
	}

	updated, err := r.store.Update(ctx, ports.Key{PK: pkEarnings, SK: skEventPrefix + eventID}, ports.UpdateSpec{Set: set})
	if err != nil {
		return domain.EarningsEvent{}, apperrors.NewDatabaseError("update event results", err)
	}
	return unmarshalEvent(updated)
}

// IncrementPredictionCount bumps the total and per-type tallies atomically.
func (r *EarningsRepository) IncrementPredictionCount(ctx context.Context, eventID string, prediction domain.EarningsPredictionType) error {
	countField := strings.ToLower(string(prediction)) + "Predictions"
	_, err := r.store.Update(ctx, ports.Key{PK: pkEarnings, SK: skEventPrefix + eventID}, ports.UpdateSpec{
		Add: map[string]int{
			"totalPredictions": 1,
			countField:         1,
		},
	})
	if err != nil {
		return apperrors.NewDatabaseError("increment prediction count", err)
	}
	return nil
}

// SavePrediction writes the prediction only when the user has none for the
// event.
func (r *EarningsRepository) SavePrediction(ctx context.Context, p domain.EarningsPrediction) error {
	item := earningsPredictionItem{
		PK:         pkUserPrefix + p.UserID,
		SK:         skEarningsPredPrefix + p.EventID,
		GSI1PK:     gsiEventPredictions + p.EventID,
		GSI1SK:     p.UserID,
		UserID:     p.UserID,
		EventID:    p.EventID,
		Ticker:     p.Ticker,
		Prediction: string(p.Prediction),
		CreatedAt:  p.CreatedAt.Format(time.RFC3339),
		IsCorrect:  p.IsCorrect,
		XPAwarded:  p.XPAwarded,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperrors.NewDatabaseError("marshal prediction", err)
	}
	if err := r.store.PutIfAbsent(ctx, av); err != nil {
		if err == ports.ErrAlreadyExists {
			return apperrors.NewConflictError("prediction already submitted for this event")
		}
		return apperrors.NewDatabaseError("save prediction", err)
	}

	r.logger.Info("Saved earnings prediction",
		zap.String("userId", p.UserID),
		zap.String("ticker", p.Ticker),
		zap.String("prediction", string(p.Prediction)),
	)
	return nil
}

func (r *EarningsRepository) GetUserPrediction(ctx context.Context, userID, eventID string) (domain.EarningsPrediction, bool, error) {
	item, found, err := r.store.Get(ctx, ports.Key{PK: pkUserPrefix + userID, SK: skEarningsPredPrefix + eventID})
	if err != nil {
		return domain.EarningsPrediction{}, false, apperrors.NewDatabaseError("get prediction", err)
	}
	if !found {
		return domain.EarningsPrediction{}, false, nil
	}
	p, err := unmarshalEarningsPrediction(item)
	if err != nil {
		return domain.EarningsPrediction{}, false, err
	}
	return p, true, nil
}

func (r *EarningsRepository) GetUserPredictions(ctx context.Context, userID string, limit int) ([]domain.EarningsPrediction, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: pkUserPrefix + userID,
		Sort:         ports.SortCondition{BeginsWith: skEarningsPredPrefix},
		Limit:        int32(limit),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("query user predictions", err)
	}

	predictions := make([]domain.EarningsPrediction, 0, len(items))
	for _, item := range items {
		p, err := unmarshalEarningsPrediction(item)
		if err != nil {
			continue
		}
		predictions = append(predictions, p)
	}
	return predictions, nil
}

// GetEventPredictions lists all predictions for an event via GSI1.
func (r *EarningsRepository) GetEventPredictions(ctx context.Context, eventID string) ([]domain.EarningsPrediction, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: gsiEventPredictions + eventID,
		IndexName:    r.indexName,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("query event predictions", err)
	}

	predictions := make([]domain.EarningsPrediction, 0, len(items))
	for _, item := range items {
		p, err := unmarshalEarningsPrediction(item)
		if err != nil {
			continue
		}
		predictions = append(predictions, p)
	}
	return predictions, nil
}

// ResolvePrediction stores correctness and XP on the prediction row.
func (r *EarningsRepository) ResolvePrediction(ctx context.Context, p domain.EarningsPrediction) error {
	if p.IsCorrect == nil {
		return apperrors.NewValidationError("resolution requires correctness")
	}

	key := ports.Key{PK: pkUserPrefix + p.UserID, SK: skEarningsPredPrefix + p.EventID}
	_, err := r.store.Update(ctx, key, ports.UpdateSpec{
		Set: map[string]types.AttributeValue{
			"isCorrect": &types.AttributeValueMemberBOOL{Value: *p.IsCorrect},
			"xpAwarded": intValue(p.XPAwarded),
		},
	})
	if err != nil {
		return apperrors.NewDatabaseError("resolve prediction", err)
	}
	return nil
}

// GetUserStats returns the denormalized stats row, zero-valued for new
// users.
func (r *EarningsRepository) GetUserStats(ctx context.Context, userID string) (domain.UserEarningsStats, error) {
	item, found, err := r.store.Get(ctx, ports.Key{PK: pkUserPrefix + userID, SK: skEarningsStats})
	if err != nil {
		return domain.UserEarningsStats{}, apperrors.NewDatabaseError("get user stats", err)
	}
	if !found {
		return domain.UserEarningsStats{}, nil
	}

	var row userStatsItem
	if err := attributevalue.UnmarshalMap(item, &row); err != nil {
		return domain.UserEarningsStats{}, apperrors.NewDatabaseError("unmarshal user stats", err)
	}
	return domain.UserEarningsStats{
		TotalPredictions:   row.TotalPredictions,
		CorrectPredictions: row.CorrectPredictions,
		Accuracy:           row.Accuracy,
		CurrentStreak:      row.CurrentStreak,
		LongestStreak:      row.LongestStreak,
		TotalXPEarned:      row.TotalXPEarned,
	}, nil
}

// SaveUserStats overwrites the stats row. Callers read-modify-write around
// this; concurrent resolutions for one user can lose an update.
func (r *EarningsRepository) SaveUserStats(ctx context.Context, userID string, stats domain.UserEarningsStats) error {
	item := userStatsItem{
		PK:                 pkUserPrefix + userID,
		SK:                 skEarningsStats,
		TotalPredictions:   stats.TotalPredictions,
		CorrectPredictions: stats.CorrectPredictions,
		Accuracy:           stats.Accuracy,
		CurrentStreak:      stats.CurrentStreak,
		LongestStreak:      stats.LongestStreak,
		TotalXPEarned:      stats.TotalXPEarned,
		UpdatedAt:          time.Now().UTC().Format(time.RFC3339),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperrors.NewDatabaseError("marshal user stats", err)
	}
	if err := r.store.Put(ctx, av); err != nil {
		return apperrors.NewDatabaseError("save user stats", err)
	}
	return nil
}

func unmarshalEvent(item ports.Item) (domain.EarningsEvent, error) {
	var row earningsEventItem
	if err := attributevalue.UnmarshalMap(item, &row); err != nil {
		return domain.EarningsEvent{}, apperrors.NewDatabaseError("unmarshal event", err)
	}

	earningsDate, _ := time.Parse(time.RFC3339, row.EarningsDate)
	return domain.EarningsEvent{
		ID:                row.ID,
		Ticker:            row.Ticker,
		CompanyName:       row.CompanyName,
		EarningsDate:      earningsDate,
		EarningsTime:      row.EarningsTime,
		EstimatedEPS:      row.EstimatedEPS,
		ActualEPS:         row.ActualEPS,
		EstimatedRevenue:  row.EstimatedRevenue,
		ActualRevenue:     row.ActualRevenue,
		Surprise:          row.Surprise,
		PredictionsClosed: row.PredictionsClosed,
		TotalPredictions:  row.TotalPredictions,
		BeatPredictions:   row.BeatPredictions,
		MeetPredictions:   row.MeetPredictions,
		MissPredictions:   row.MissPredictions,
	}, nil
}

func unmarshalEarningsPrediction(item ports.Item) (domain.EarningsPrediction, error) {
	var row earningsPredictionItem
	if err := attributevalue.UnmarshalMap(item, &row); err != nil {
		return domain.EarningsPrediction{}, apperrors.NewDatabaseError("unmarshal prediction", err)
	}

	createdAt, _ := time.Parse(time.RFC3339, row.CreatedAt)
	return domain.EarningsPrediction{
		UserID:     row.UserID,
		EventID:    row.EventID,
		Ticker:     row.Ticker,
		Prediction: domain.EarningsPredictionType(row.Prediction),
		CreatedAt:  createdAt,
		IsCorrect:  row.IsCorrect,
		XPAwarded:  row.XPAwarded,
	}, nil
}
