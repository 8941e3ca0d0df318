package repository

import (
	"context"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/domain"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

const (
	pkMood                 = "MARKET_MOOD"
	skMoodCurrent          = "CURRENT"
	skMoodHistoryPrefix    = "HISTORY#"
	pkUserPrefix           = "USER#"
	skMoodPredictionPrefix = "MOOD_PREDICTION#"
	gsiMoodPredictions     = "MOOD_PREDICTIONS#"
)

// MoodRepository persists the mood snapshot and user predictions.
type MoodRepository struct {
	store     ports.Store
	indexName string
	logger    *zap.Logger
}

// NewMoodRepository creates the repository.
func NewMoodRepository(store ports.Store, indexName string, logger *zap.Logger) *MoodRepository {
	return &MoodRepository{store: store, indexName: indexName, logger: logger}
}

type moodIndicatorItem struct {
	Name         string  `dynamodbav:"name"`
	Value        float64 `dynamodbav:"value"`
	Contribution string  `dynamodbav:"contribution"`
	Description  *string `dynamodbav:"description,omitempty"`
}

type moodItem struct {
	PK             string              `dynamodbav:"PK"`
	SK             string              `dynamodbav:"SK"`
	FearGreedIndex int                 `dynamodbav:"fearGreedIndex"`
	Sentiment      string              `dynamodbav:"sentiment"`
	PreviousClose  int                 `dynamodbav:"previousClose"`
	WeekAgo        int                 `dynamodbav:"weekAgo"`
	MonthAgo       int                 `dynamodbav:"monthAgo"`
	YearAgo        int                 `dynamodbav:"yearAgo"`
	UpdatedAt      string              `dynamodbav:"updatedAt"`
	Indicators     []moodIndicatorItem `dynamodbav:"indicators"`
	CreatedAt      string              `dynamodbav:"createdAt"`
}

type moodPredictionItem struct {
	PK                 string  `dynamodbav:"PK"`
	SK                 string  `dynamodbav:"SK"`
	GSI1PK             string  `dynamodbav:"GSI1PK"`
	GSI1SK             string  `dynamodbav:"GSI1SK"`
	UserID             string  `dynamodbav:"userId"`
	PredictedSentiment string  `dynamodbav:"predictedSentiment"`
	PredictedIndex     *int    `dynamodbav:"predictedIndex,omitempty"`
	TargetDate         string  `dynamodbav:"targetDate"`
	CreatedAt          string  `dynamodbav:"createdAt"`
	ActualSentiment    *string `dynamodbav:"actualSentiment,omitempty"`
	ActualIndex        *int    `dynamodbav:"actualIndex,omitempty"`
	IsCorrect          *bool   `dynamodbav:"isCorrect,omitempty"`
	XPAwarded          int     `dynamodbav:"xpAwarded"`
}

// GetCurrentMood returns the stored snapshot, reporting absence via the
// bool so the service can serve the neutral default.
func (r *MoodRepository) GetCurrentMood(ctx context.Context) (domain.MarketMood, bool, error) {
	item, found, err := r.store.Get(ctx, ports.Key{PK: pkMood, SK: skMoodCurrent})
	if err != nil {
		return domain.MarketMood{}, false, apperrors.NewDatabaseError("get current mood", err)
	}
	if !found {
		return domain.MarketMood{}, false, nil
	}
	mood, err := unmarshalMood(item)
	if err != nil {
		return domain.MarketMood{}, false, err
	}
	return mood, true, nil
}

// SaveMood writes the current snapshot and fans out a dated history copy.
func (r *MoodRepository) SaveMood(ctx context.Context, mood domain.MarketMood) error {
	item := marshalMoodItem(mood, skMoodCurrent)
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperrors.NewDatabaseError("marshal mood", err)
	}
	if err := r.store.Put(ctx, av); err != nil {
		return apperrors.NewDatabaseError("save mood", err)
	}

	history := marshalMoodItem(mood, skMoodHistoryPrefix+mood.UpdatedAt.Format("2006-01-02"))
	av, err = attributevalue.MarshalMap(history)
	if err != nil {
		return apperrors.NewDatabaseError("marshal mood history", err)
	}
	if err := r.store.Put(ctx, av); err != nil {
		return apperrors.NewDatabaseError("save mood history", err)
	}

	r.logger.Info("Saved market mood",
		zap.Int("index", mood.FearGreedIndex),
		zap.String("sentiment", string(mood.Sentiment)),
	)
	return nil
}

// GetMoodHistory returns dated snapshots for the trailing window, newest
// first.
func (r *MoodRepository) GetMoodHistory(ctx context.Context, days int) ([]domain.MarketMood, error) {
	now := time.Now().UTC()
	low := skMoodHistoryPrefix + now.AddDate(0, 0, -days).Format("2006-01-02")
	high := skMoodHistoryPrefix + now.Format("2006-01-02")

	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: pkMood,
		Sort:         ports.SortCondition{Low: low, High: high},
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("query mood history", err)
	}

	moods := make([]domain.MarketMood, 0, len(items))
	for _, item := range items {
		mood, err := unmarshalMood(item)
		if err != nil {
			continue
		}
		moods = append(moods, mood)
	}
	return moods, nil
}

// SavePrediction writes the prediction only when the user has none for the
// target date. The first payload wins; later attempts surface Conflict.
func (r *MoodRepository) SavePrediction(ctx context.Context, p domain.MoodPrediction) error {
	item, err := attributevalue.MarshalMap(marshalMoodPrediction(p))
	if err != nil {
		return apperrors.NewDatabaseError("marshal mood prediction", err)
	}

	if err := r.store.PutIfAbsent(ctx, item); err != nil {
		if err == ports.ErrAlreadyExists {
			return apperrors.NewConflictError("prediction already submitted for this date")
		}
		return apperrors.NewDatabaseError("save mood prediction", err)
	}

	r.logger.Info("Saved mood prediction",
		zap.String("userId", p.UserID),
		zap.String("predicted", string(p.PredictedSentiment)),
	)
	return nil
}

func (r *MoodRepository) GetUserPrediction(ctx context.Context, userID string, targetDate time.Time) (domain.MoodPrediction, bool, error) {
	key := ports.Key{
		PK: pkUserPrefix + userID,
		SK: skMoodPredictionPrefix + targetDate.Format("2006-01-02"),
	}
	item, found, err := r.store.Get(ctx, key)
	if err != nil {
		return domain.MoodPrediction{}, false, apperrors.NewDatabaseError("get mood prediction", err)
	}
	if !found {
		return domain.MoodPrediction{}, false, nil
	}
	p, err := unmarshalMoodPrediction(item)
	if err != nil {
		return domain.MoodPrediction{}, false, err
	}
	return p, true, nil
}

func (r *MoodRepository) GetUserPredictions(ctx context.Context, userID string, limit int) ([]domain.MoodPrediction, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: pkUserPrefix + userID,
		Sort:         ports.SortCondition{BeginsWith: skMoodPredictionPrefix},
		Limit:        int32(limit),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("query mood predictions", err)
	}

	predictions := make([]domain.MoodPrediction, 0, len(items))
	for _, item := range items {
		p, err := unmarshalMoodPrediction(item)
		if err != nil {
			continue
		}
		predictions = append(predictions, p)
	}
	return predictions, nil
}

// GetPendingPredictions lists unresolved predictions for the target date
// across all users via GSI1.
func (r *MoodRepository) GetPendingPredictions(ctx context.Context, targetDate time.Time) ([]domain.MoodPrediction, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: gsiMoodPredictions + targetDate.Format("2006-01-02"),
		IndexName:    r.indexName,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("query pending predictions", err)
	}

	var pending []domain.MoodPrediction
	for _, item := range items {
		p, err := unmarshalMoodPrediction(item)
		if err != nil {
			continue
		}
		if p.IsCorrect != nil {
			continue
		}
		pending = append(pending, p)
	}
	return pending, nil
}

// ResolvePrediction stores the actual outcome and XP on the prediction row.
func (r *MoodRepository) ResolvePrediction(ctx context.Context, p domain.MoodPrediction) error {
	if p.ActualSentiment == nil || p.IsCorrect == nil {
		return apperrors.NewValidationError("resolution requires actual sentiment and correctness")
	}

	key := ports.Key{
		PK: pkUserPrefix + p.UserID,
		SK: skMoodPredictionPrefix + p.TargetDate.Format("2006-01-02"),
	}
	set := map[string]types.AttributeValue{
		"actualSentiment": &types.AttributeValueMemberS{Value: string(*p.ActualSentiment)},
		"isCorrect":       &types.AttributeValueMemberBOOL{Value: *p.IsCorrect},
		"xpAwarded":       intValue(p.XPAwarded),
	}
	if p.ActualIndex != nil {
		set["actualIndex"] = intValue(*p.ActualIndex)
	}

	if _, err := r.store.Update(ctx, key, ports.UpdateSpec{Set: set}); err != nil {
		return apperrors.NewDatabaseError("resolve mood prediction", err)
	}
	return nil
}

func marshalMoodItem(mood domain.MarketMood, sk string) moodItem {
	indicators := make([]moodIndicatorItem, 0, len(mood.Indicators))
	for _, ind := range mood.Indicators {
		indicators = append(indicators, moodIndicatorItem{
			Name:         ind.Name,
			Value:        ind.Value,
			Contribution: ind.Contribution,
			Description:  ind.Description,
		})
	}
	return moodItem{
		PK:             pkMood,
		SK:             sk,
		FearGreedIndex: mood.FearGreedIndex,
		Sentiment:      string(mood.Sentiment),
		PreviousClose:  mood.PreviousClose,
		WeekAgo:        mood.WeekAgo,
		MonthAgo:       mood.MonthAgo,
		YearAgo:        mood.YearAgo,
		UpdatedAt:      mood.UpdatedAt.Format(time.RFC3339),
		Indicators:     indicators,
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
	}
}

func unmarshalMood(item ports.Item) (domain.MarketMood, error) {
	var row moodItem
	if err := attributevalue.UnmarshalMap(item, &row); err != nil {
		return domain.MarketMood{}, apperrors.NewDatabaseError("unmarshal mood", err)
	}

	indicators := make([]domain.MoodIndicator, 0, len(row.Indicators))
	for _, ind := range row.Indicators {
		indicators = append(indicators, domain.MoodIndicator{
			Name:         ind.Name,
			Value:        ind.Value,
			Contribution: ind.Contribution,
			Description:  ind.Description,
		})
	}
	updatedAt, _ := time.Parse(time.RFC3339, row.UpdatedAt)

	return domain.MarketMood{
		FearGreedIndex: row.FearGreedIndex,
		Sentiment:      domain.MoodSentiment(row.Sentiment),
		PreviousClose:  row.PreviousClose,
		WeekAgo:        row.WeekAgo,
		MonthAgo:       row.MonthAgo,
		YearAgo:        row.YearAgo,
		UpdatedAt:      updatedAt,
		Indicators:     indicators,
	}, nil
}

func marshalMoodPrediction(p domain.MoodPrediction) moodPredictionItem {
	day := p.TargetDate.Format("2006-01-02")
	item := moodPredictionItem{
		PK:                 pkUserPrefix + p.UserID,
		SK:                 skMoodPredictionPrefix + day,
		GSI1PK:             gsiMoodPredictions + day,
		GSI1SK:             p.UserID,
		UserID:             p.UserID,
		PredictedSentiment: string(p.PredictedSentiment),
		PredictedIndex:     p.PredictedIndex,
		TargetDate:         p.TargetDate.Format(time.RFC3339),
		CreatedAt:          p.CreatedAt.Format(time.RFC3339),
		ActualIndex:        p.ActualIndex,
		IsCorrect:          p.IsCorrect,
		XPAwarded:          p.XPAwarded,
	}
	if p.ActualSentiment != nil {
		s := string(*p.ActualSentiment)
		item.ActualSentiment = &s
	}
	return item
}

func unmarshalMoodPrediction(item ports.Item) (domain.MoodPrediction, error) {
	var row moodPredictionItem
	if err := attributevalue.UnmarshalMap(item, &row); err != nil {
		return domain.MoodPrediction{}, apperrors.NewDatabaseError("unmarshal mood prediction", err)
	}

	targetDate, _ := time.Parse(time.RFC3339, row.TargetDate)
	createdAt, _ := time.Parse(time.RFC3339, row.CreatedAt)

	p := domain.MoodPrediction{
		UserID:             row.UserID,
		PredictedSentiment: domain.MoodSentiment(row.PredictedSentiment),
		PredictedIndex:     row.PredictedIndex,
		TargetDate:         targetDate,
		CreatedAt:          createdAt,
		ActualIndex:        row.ActualIndex,
		IsCorrect:          row.IsCorrect,
		XPAwarded:          row.XPAwarded,
	}
	if row.ActualSentiment != nil {
		s := domain.MoodSentiment(*row.ActualSentiment)
		p.ActualSentiment = &s
	}
	return p, nil
}

func intValue(n int) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.Itoa(n)}
}
