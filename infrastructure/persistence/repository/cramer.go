package repository

import (
	"context"
	"fmt"
	"math"
	"strconv"
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
	pkCramer     = "CRAMER"
	skPickPrefix = "PICK#"

	// pickTickerScanLimit bounds the latest-pick-for-ticker scan.
	pickTickerScanLimit = 100
	// pickStatsScanLimit bounds the stats aggregation scan.
	pickStatsScanLimit = 500
)

// CramerRepository persists tracked TV picks.
type CramerRepository struct {
	store  ports.Store
	logger *zap.Logger
}

// NewCramerRepository creates the repository.
func NewCramerRepository(store ports.Store, logger *zap.Logger) *CramerRepository {
	return &CramerRepository{store: store, logger: logger}
}

type pickItem struct {
	PK                   string  `dynamodbav:"PK"`
	SK                   string  `dynamodbav:"SK"`
	GSI1PK               string  `dynamodbav:"GSI1PK"`
	GSI1SK               string  `dynamodbav:"GSI1SK"`
	ID                   string  `dynamodbav:"id"`
	Ticker               string  `dynamodbav:"ticker"`
	CompanyName          string  `dynamodbav:"companyName"`
	Recommendation       string  `dynamodbav:"recommendation"`
	PriceAtPick          float64 `dynamodbav:"priceAtPick"`
	CurrentPrice         float64 `dynamodbav:"currentPrice"`
	ReturnPercent        float64 `dynamodbav:"returnPercent"`
	InverseReturnPercent float64 `dynamodbav:"inverseReturnPercent"`
	PickDate             string  `dynamodbav:"pickDate"`
	ShowName             *string `dynamodbav:"showName,omitempty"`
	Notes                *string `dynamodbav:"notes,omitempty"`
	CreatedAt            string  `dynamodbav:"createdAt"`
	UpdatedAt            string  `dynamodbav:"updatedAt"`
}

// GetPicks returns one page of picks, newest first, filtered client-side by
// recommendation.
func (r *CramerRepository) GetPicks(ctx context.Context, page, pageSize int, recommendation domain.CramerRecommendation) ([]domain.CramerPick, int, error) {
	items, total, err := r.store.QueryPaginated(ctx, ports.QuerySpec{
		PartitionKey: pkCramer,
		Sort:         ports.SortCondition{BeginsWith: skPickPrefix},
	}, page, pageSize)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("query picks", err)
	}

	picks := make([]domain.CramerPick, 0, len(items))
	for _, item := range items {
		pick, err := unmarshalPick(item)
		if err != nil {
			r.logger.Warn("Skipping malformed pick row", zap.Error(err))
			continue
		}
		if recommendation != "" && pick.Recommendation != recommendation {
			continue
		}
		picks = append(picks, pick)
	}
	return picks, total, nil
}

// GetPickByID fetches one pick by its composite id "<date>#<ticker>".
func (r *CramerRepository) GetPickByID(ctx context.Context, pickID string) (domain.CramerPick, error) {
	item, found, err := r.store.Get(ctx, ports.Key{PK: pkCramer, SK: skPickPrefix + pickID})
	if err != nil {
		return domain.CramerPick{}, apperrors.NewDatabaseError("get pick", err)
	}
	if !found {
		return domain.CramerPick{}, apperrors.NewNotFoundError("CramerPick", pickID)
	}
	return unmarshalPick(item)
}

// GetPickByTicker returns the most recent pick for the ticker among the 100
// latest picks.
func (r *CramerRepository) GetPickByTicker(ctx context.Context, ticker string) (domain.CramerPick, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: pkCramer,
		Sort:         ports.SortCondition{BeginsWith: skPickPrefix},
		Limit:        pickTickerScanLimit,
	})
	if err != nil {
		return domain.CramerPick{}, apperrors.NewDatabaseError("query picks by ticker", err)
	}

	for _, item := range items {
		pick, err := unmarshalPick(item)
		if err != nil {
			continue
		}
		if strings.EqualFold(pick.Ticker, ticker) {
			return pick, nil
		}
	}
	return domain.CramerPick{}, apperrors.NewNotFoundError("CramerPick", ticker)
}

// SavePick upserts a pick keyed by pick date and ticker.
func (r *CramerRepository) SavePick(ctx context.Context, pick domain.CramerPick) error {
	now := time.Now().UTC().Format(time.RFC3339)
	day := pick.PickDate.Format("2006-01-02")

	item := pickItem{
		PK:                   pkCramer,
		SK:                   fmt.Sprintf("%s%s#%s", skPickPrefix, day, pick.Ticker),
		GSI1PK:               "TICKER#" + pick.Ticker,
		GSI1SK:               "CRAMER#" + day,
		ID:                   pick.ID,
		Ticker:               pick.Ticker,
		CompanyName:          pick.CompanyName,
		Recommendation:       string(pick.Recommendation),
		PriceAtPick:          pick.PriceAtPick,
		CurrentPrice:         pick.CurrentPrice,
		ReturnPercent:        pick.ReturnPercent,
		InverseReturnPercent: pick.InverseReturnPercent,
		PickDate:             pick.PickDate.Format(time.RFC3339),
		ShowName:             pick.ShowName,
		Notes:                pick.Notes,
		CreatedAt:            now,
		UpdatedAt:            now,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperrors.NewDatabaseError("marshal pick", err)
	}
	if err := r.store.Put(ctx, av); err != nil {
		return apperrors.NewDatabaseError("save pick", err)
	}

	r.logger.Info("Saved cramer pick",
		zap.String("ticker", pick.Ticker),
		zap.String("recommendation", string(pick.Recommendation)),
	)
	return nil
}

// UpdatePickPrices writes the current price and recomputes the follow and
// inverse returns off the stored pick price.
func (r *CramerRepository) UpdatePickPrices(ctx context.Context, pickID string, currentPrice float64) error {
	pick, err := r.GetPickByID(ctx, pickID)
	if err != nil {
		return err
	}
	if pick.PriceAtPick <= 0 {
		return apperrors.NewValidationError("pick has no valid entry price")
	}

	returnPercent := math.Round((currentPrice-pick.PriceAtPick)/pick.PriceAtPick*100*100) / 100

	_, err = r.store.Update(ctx, ports.Key{PK: pkCramer, SK: skPickPrefix + pickID}, ports.UpdateSpec{
		Set: map[string]types.AttributeValue{
			"currentPrice":         numberValue(currentPrice),
			"returnPercent":        numberValue(returnPercent),
			"inverseReturnPercent": numberValue(-returnPercent),
			"updatedAt":            &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return apperrors.NewDatabaseError("update pick prices", err)
	}
	return nil
}

// GetStats aggregates follow and inverse performance over the trailing
// window, scanning the 500 latest picks.
func (r *CramerRepository) GetStats(ctx context.Context, daysBack int) (domain.CramerStats, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: pkCramer,
		Sort:         ports.SortCondition{BeginsWith: skPickPrefix},
		Limit:        pickStatsScanLimit,
	})
	if err != nil {
		return domain.CramerStats{}, apperrors.NewDatabaseError("query picks for stats", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)
	var recent []domain.CramerPick
	for _, item := range items {
		pick, err := unmarshalPick(item)
		if err != nil {
			continue
		}
		if pick.PickDate.Before(cutoff) {
			continue
		}
		recent = append(recent, pick)
	}

	stats := domain.CramerStats{PeriodDays: daysBack}
	if len(recent) == 0 {
		return stats, nil
	}

	followWins := 0
	totalFollow, totalInverse := 0.0, 0.0
	best, worst := recent[0], recent[0]

	for _, pick := range recent {
		totalFollow += pick.ReturnPercent
		totalInverse += pick.InverseReturnPercent
		if pick.IsWinning() {
			followWins++
		}
		if pick.ReturnPercent > best.ReturnPercent {
			best = pick
		}
		if pick.ReturnPercent < worst.ReturnPercent {
			worst = pick
		}
	}

	total := len(recent)
	stats.TotalPicks = total
	stats.FollowWinRate = round1(float64(followWins) / float64(total) * 100)
	stats.InverseWinRate = round1(float64(total-followWins) / float64(total) * 100)
	stats.AvgFollowReturn = round2(totalFollow / float64(total))
	stats.AvgInverseReturn = round2(totalInverse / float64(total))
	stats.BestFollowPick = &best
	stats.WorstFollowPick = &worst
	return stats, nil
}

func unmarshalPick(item ports.Item) (domain.CramerPick, error) {
	var row pickItem
	if err := attributevalue.UnmarshalMap(item, &row); err != nil {
		return domain.CramerPick{}, apperrors.NewDatabaseError("unmarshal pick", err)
	}

	id := row.ID
	if id == "" {
		id = strings.TrimPrefix(row.SK, skPickPrefix)
	}
	pickDate, _ := time.Parse(time.RFC3339, row.PickDate)

	return domain.CramerPick{
		ID:                   id,
		Ticker:               row.Ticker,
		CompanyName:          row.CompanyName,
		Recommendation:       domain.CramerRecommendation(row.Recommendation),
		PriceAtPick:          row.PriceAtPick,
		CurrentPrice:         row.CurrentPrice,
		ReturnPercent:        row.ReturnPercent,
		InverseReturnPercent: row.InverseReturnPercent,
		PickDate:             pickDate,
		ShowName:             row.ShowName,
		Notes:                row.Notes,
	}, nil
}

func numberValue(f float64) types.AttributeValue {
	return &types.AttributeValueMemberN{Value: strconv.FormatFloat(f, 'f', -1, 64)}
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
func round2(f float64) float64 { return math.Round(f*100) / 100 }
