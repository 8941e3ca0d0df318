package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/domain"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

const (
	pkCongress        = "CONGRESS"
	pkCongressMember  = "CONGRESS_MEMBER#"
	pkCongressMembers = "CONGRESS_MEMBERS"
	skTradePrefix     = "TRADE#"
	skMemberPrefix    = "MEMBER#"

	gsiCongressLeaderboard = "CONGRESS_LEADERBOARD"

	// memberNameScanLimit bounds the tier-3 name fallback.
	memberNameScanLimit = 2000
)

// CongressRepository persists trades and members over the single-table
// store.
type CongressRepository struct {
	store     ports.Store
	indexName string
	logger    *zap.Logger
}

// NewCongressRepository creates the repository.
func NewCongressRepository(store ports.Store, indexName string, logger *zap.Logger) *CongressRepository {
	return &CongressRepository{store: store, indexName: indexName, logger: logger}
}

// tradeItem is the DynamoDB row for one disclosed trade.
type tradeItem struct {
	PK                     string   `dynamodbav:"PK"`
	SK                     string   `dynamodbav:"SK"`
	GSI1PK                 string   `dynamodbav:"GSI1PK"`
	GSI1SK                 string   `dynamodbav:"GSI1SK"`
	ID                     string   `dynamodbav:"id"`
	MemberID               string   `dynamodbav:"memberId"`
	MemberName             string   `dynamodbav:"memberName"`
	Party                  string   `dynamodbav:"party"`
	Chamber                string   `dynamodbav:"chamber"`
	State                  string   `dynamodbav:"state"`
	Ticker                 string   `dynamodbav:"ticker"`
	CompanyName            string   `dynamodbav:"companyName"`
	TransactionType        string   `dynamodbav:"transactionType"`
	TransactionDate        string   `dynamodbav:"transactionDate"`
	DisclosureDate         string   `dynamodbav:"disclosureDate"`
	AmountRangeLow         int      `dynamodbav:"amountRangeLow"`
	AmountRangeHigh        int      `dynamodbav:"amountRangeHigh"`
	PriceAtTransaction     *float64 `dynamodbav:"priceAtTransaction,omitempty"`
	CurrentPrice           *float64 `dynamodbav:"currentPrice,omitempty"`
	ReturnSinceTransaction *float64 `dynamodbav:"returnSinceTransaction,omitempty"`
	DaysToDisclose         int      `dynamodbav:"daysToDisclose"`
	CreatedAt              string   `dynamodbav:"createdAt"`
	UpdatedAt              string   `dynamodbav:"updatedAt"`
}

// memberItem is the DynamoDB row for a member profile.
type memberItem struct {
	PK                       string   `dynamodbav:"PK"`
	SK                       string   `dynamodbav:"SK"`
	GSI1PK                   string   `dynamodbav:"GSI1PK"`
	GSI1SK                   string   `dynamodbav:"GSI1SK"`
	ID                       string   `dynamodbav:"id"`
	Name                     string   `dynamodbav:"name"`
	Party                    string   `dynamodbav:"party"`
	Chamber                  string   `dynamodbav:"chamber"`
	State                    string   `dynamodbav:"state"`
	District                 *string  `dynamodbav:"district,omitempty"`
	ImageURL                 *string  `dynamodbav:"imageUrl,omitempty"`
	TotalTrades              int      `dynamodbav:"totalTrades"`
	EstimatedPortfolioReturn float64  `dynamodbav:"estimatedPortfolioReturn"`
	AvgDaysToDisclose        float64  `dynamodbav:"avgDaysToDisclose"`
	TopHoldings              []string `dynamodbav:"topHoldings,omitempty"`
	CreatedAt                string   `dynamodbav:"createdAt"`
	UpdatedAt                string   `dynamodbav:"updatedAt"`
}

// SaveTrade writes the trade to the global partition, then fans out a copy
// under the member partition. The writes are not atomic; a crash between
// them is repaired by the next ingestion run.
func (r *CongressRepository) SaveTrade(ctx context.Context, trade domain.CongressTrade) error {
	disclosed := trade.DisclosureDate.Format("2006-01-02")
	tradeKey := fmt.Sprintf("%s#%s#%s", disclosed, trade.MemberID, trade.Ticker)
	now := time.Now().UTC().Format(time.RFC3339)

	item := tradeItem{
		PK:                     pkCongress,
		SK:                     skTradePrefix + tradeKey,
		GSI1PK:                 "TICKER#" + trade.Ticker,
		GSI1SK:                 "CONGRESS#" + disclosed,
		ID:                     trade.ID,
		MemberID:               trade.MemberID,
		MemberName:             trade.MemberName,
		Party:                  string(trade.Party),
		Chamber:                string(trade.Chamber),
		State:                  trade.State,
		Ticker:                 trade.Ticker,
		CompanyName:            trade.CompanyName,
		TransactionType:        string(trade.TransactionType),
		TransactionDate:        trade.TransactionDate.Format(time.RFC3339),
		DisclosureDate:         trade.DisclosureDate.Format(time.RFC3339),
		AmountRangeLow:         trade.AmountRangeLow,
		AmountRangeHigh:        trade.AmountRangeHigh,
		PriceAtTransaction:     trade.PriceAtTransaction,
		CurrentPrice:           trade.CurrentPrice,
		ReturnSinceTransaction: trade.ReturnSinceTransaction,
		DaysToDisclose:         trade.DaysToDisclose,
		CreatedAt:              now,
		UpdatedAt:              now,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperrors.NewDatabaseError("marshal trade", err)
	}
	if err := r.store.Put(ctx, av); err != nil {
		return apperrors.NewDatabaseError("save trade", err)
	}

	memberCopy := item
	memberCopy.PK = pkCongressMember + trade.MemberID
	av, err = attributevalue.MarshalMap(memberCopy)
	if err != nil {
		return apperrors.NewDatabaseError("marshal member trade", err)
	}
	if err := r.store.Put(ctx, av); err != nil {
		return apperrors.NewDatabaseError("save member trade", err)
	}

	r.logger.Info("Saved congress trade",
		zap.String("member", trade.MemberName),
		zap.String("ticker", trade.Ticker),
		zap.String("type", string(trade.TransactionType)),
	)
	return nil
}

// GetTrades returns one page of the global trade feed. Filters apply after
// the range read, so the repository overfetches 2x and fills the page best
// effort; the returned total is the unfiltered partition count.
func (r *CongressRepository) GetTrades(ctx context.Context, page, pageSize int, filters domain.TradeFilters) ([]domain.CongressTrade, int, error) {
	items, total, err := r.store.QueryPaginated(ctx, ports.QuerySpec{
		PartitionKey: pkCongress,
		Sort:         ports.SortCondition{BeginsWith: skTradePrefix},
	}, page, pageSize*2)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("query trades", err)
	}

	trades := make([]domain.CongressTrade, 0, pageSize)
	for _, item := range items {
		trade, err := unmarshalTrade(item)
		if err != nil {
			r.logger.Warn("Skipping malformed trade row", zap.Error(err))
			continue
		}
		if !filters.Match(trade) {
			continue
		}
		trades = append(trades, trade)
		if len(trades) >= pageSize {
			break
		}
	}
	return trades, total, nil
}

// GetTradeByID fetches one trade by its composite id
// "<date>#<memberID>#<ticker>".
func (r *CongressRepository) GetTradeByID(ctx context.Context, tradeID string) (domain.CongressTrade, error) {
	item, found, err := r.store.Get(ctx, ports.Key{PK: pkCongress, SK: skTradePrefix + tradeID})
	if err != nil {
		return domain.CongressTrade{}, apperrors.NewDatabaseError("get trade", err)
	}
	if !found {
		return domain.CongressTrade{}, apperrors.NewNotFoundError("CongressTrade", tradeID)
	}
	return unmarshalTrade(item)
}

// GetTradesByMember resolves trades in three tiers: the member partition as
// given, the hyphen/underscore variant partition, then a name-filtered pass
// over the recent global feed. The data vendors historically disagreed on
// id separators, and older rows predate member fan-out.
func (r *CongressRepository) GetTradesByMember(ctx context.Context, memberID string, limit int) ([]domain.CongressTrade, error) {
	trades, err := r.queryMemberPartition(ctx, memberID, limit)
	if err != nil {
		return nil, err
	}
	if len(trades) > 0 {
		return trades, nil
	}

	altID := domain.AlternateMemberID(memberID)
	if altID != memberID {
		trades, err = r.queryMemberPartition(ctx, altID, limit)
		if err != nil {
			return nil, err
		}
		if len(trades) > 0 {
			r.logger.Info("Found trades under alternative member id",
				zap.String("memberId", memberID),
				zap.String("altId", altID),
				zap.Int("count", len(trades)),
			)
			return trades, nil
		}
	}

	member, err := r.GetMemberByID(ctx, memberID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return []domain.CongressTrade{}, nil
		}
		return nil, err
	}
	return r.GetTradesByMemberName(ctx, member.Name, limit)
}

// GetTradesByMemberName filters the 2000 most recent global trades by exact
// member name, case-insensitive.
func (r *CongressRepository) GetTradesByMemberName(ctx context.Context, memberName string, limit int) ([]domain.CongressTrade, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: pkCongress,
		Sort:         ports.SortCondition{BeginsWith: skTradePrefix},
		Limit:        memberNameScanLimit,
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("scan trades by name", err)
	}

	want := strings.ToLower(strings.TrimSpace(memberName))
	trades := make([]domain.CongressTrade, 0, limit)
	for _, item := range items {
		trade, err := unmarshalTrade(item)
		if err != nil {
			continue
		}
		if strings.ToLower(strings.TrimSpace(trade.MemberName)) != want {
			continue
		}
		trades = append(trades, trade)
		if len(trades) >= limit {
			break
		}
	}
	return trades, nil
}

// GetTodayCount counts trades disclosed on the given date via the sort-key
// date prefix.
func (r *CongressRepository) GetTodayCount(ctx context.Context, date time.Time) (int, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: pkCongress,
		Sort:         ports.SortCondition{BeginsWith: skTradePrefix + date.Format("2006-01-02")},
	})
	if err != nil {
		return 0, apperrors.NewDatabaseError("count today trades", err)
	}
	return len(items), nil
}

// GetTopPerformer scans the 200 most recent trades for the best reported
// return inside the window.
func (r *CongressRepository) GetTopPerformer(ctx context.Context, daysBack int) (domain.CongressTrade, bool, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: pkCongress,
		Sort:         ports.SortCondition{BeginsWith: skTradePrefix},
		Limit:        200,
	})
	if err != nil {
		return domain.CongressTrade{}, false, apperrors.NewDatabaseError("query top performer", err)
	}

	cutoff := time.Now().UTC().AddDate(0, 0, -daysBack)
	var best domain.CongressTrade
	bestReturn := 0.0
	found := false

	for _, item := range items {
		trade, err := unmarshalTrade(item)
		if err != nil {
			continue
		}
		if trade.DisclosureDate.Before(cutoff) {
			continue
		}
		if trade.ReturnSinceTransaction == nil {
			continue
		}
		if !found || *trade.ReturnSinceTransaction > bestReturn {
			best = trade
			bestReturn = *trade.ReturnSinceTransaction
			found = true
		}
	}
	return best, found, nil
}

// GetMembers lists member profiles.
func (r *CongressRepository) GetMembers(ctx context.Context, page, pageSize int) ([]domain.CongressMember, int, error) {
	items, total, err := r.store.QueryPaginated(ctx, ports.QuerySpec{
		PartitionKey: pkCongressMembers,
		Sort:         ports.SortCondition{BeginsWith: skMemberPrefix},
		ScanForward:  true,
	}, page, pageSize)
	if err != nil {
		return nil, 0, apperrors.NewDatabaseError("query members", err)
	}

	members := make([]domain.CongressMember, 0, len(items))
	for _, item := range items {
		member, err := unmarshalMember(item)
		if err != nil {
			r.logger.Warn("Skipping malformed member row", zap.Error(err))
			continue
		}
		members = append(members, member)
	}
	return members, total, nil
}

// GetMemberByID fetches one member profile, trying the hyphen/underscore
// variant id before giving up.
func (r *CongressRepository) GetMemberByID(ctx context.Context, memberID string) (domain.CongressMember, error) {
	candidates := []string{memberID}
	if alt := domain.AlternateMemberID(memberID); alt != memberID {
		candidates = append(candidates, alt)
	}
	for _, id := range candidates {
		item, found, err := r.store.Get(ctx, ports.Key{PK: pkCongressMembers, SK: skMemberPrefix + id})
		if err != nil {
			return domain.CongressMember{}, apperrors.NewDatabaseError("get member", err)
		}
		if found {
			return unmarshalMember(item)
		}
	}
	return domain.CongressMember{}, apperrors.NewNotFoundError("CongressMember", memberID)
}

// SaveMember upserts a member profile. The leaderboard index sorts by the
// zero-padded portfolio return.
func (r *CongressRepository) SaveMember(ctx context.Context, member domain.CongressMember) error {
	now := time.Now().UTC().Format(time.RFC3339)
	item := memberItem{
		PK:                       pkCongressMembers,
		SK:                       skMemberPrefix + member.ID,
		GSI1PK:                   gsiCongressLeaderboard,
		GSI1SK:                   fmt.Sprintf("%08.2f#%s", member.EstimatedPortfolioReturn, member.ID),
		ID:                       member.ID,
		Name:                     member.Name,
		Party:                    string(member.Party),
		Chamber:                  string(member.Chamber),
		State:                    member.State,
		District:                 member.District,
		ImageURL:                 member.ImageURL,
		TotalTrades:              member.TotalTrades,
		EstimatedPortfolioReturn: member.EstimatedPortfolioReturn,
		AvgDaysToDisclose:        member.AvgDaysToDisclose,
		TopHoldings:              member.TopHoldings,
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return apperrors.NewDatabaseError("marshal member", err)
	}
	if err := r.store.Put(ctx, av); err != nil {
		return apperrors.NewDatabaseError("save member", err)
	}
	return nil
}

func (r *CongressRepository) queryMemberPartition(ctx context.Context, memberID string, limit int) ([]domain.CongressTrade, error) {
	items, err := r.store.Query(ctx, ports.QuerySpec{
		PartitionKey: pkCongressMember + memberID,
		Sort:         ports.SortCondition{BeginsWith: skTradePrefix},
		Limit:        int32(limit),
	})
	if err != nil {
		return nil, apperrors.NewDatabaseError("query member trades", err)
	}

	trades := make([]domain.CongressTrade, 0, len(items))
	for _, item := range items {
		trade, err := unmarshalTrade(item)
		if err != nil {
			continue
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func unmarshalTrade(item ports.Item) (domain.CongressTrade, error) {
	var row tradeItem
	if err := attributevalue.UnmarshalMap(item, &row); err != nil {
		return domain.CongressTrade{}, apperrors.NewDatabaseError("unmarshal trade", err)
	}

	transactionDate, _ := time.Parse(time.RFC3339, row.TransactionDate)
	disclosureDate, _ := time.Parse(time.RFC3339, row.DisclosureDate)

	return domain.CongressTrade{
		ID:                     row.ID,
		MemberID:               row.MemberID,
		MemberName:             row.MemberName,
		Party:                  domain.PoliticalParty(row.Party),
		Chamber:                domain.Chamber(row.Chamber),
		State:                  row.State,
		Ticker:                 row.Ticker,
		CompanyName:            row.CompanyName,
		TransactionType:        domain.TransactionType(row.TransactionType),
		TransactionDate:        transactionDate,
		DisclosureDate:         disclosureDate,
		AmountRangeLow:         row.AmountRangeLow,
		AmountRangeHigh:        row.AmountRangeHigh,
		PriceAtTransaction:     row.PriceAtTransaction,
		CurrentPrice:           row.CurrentPrice,
		ReturnSinceTransaction: row.ReturnSinceTransaction,
		DaysToDisclose:         row.DaysToDisclose,
	}, nil
}

func unmarshalMember(item ports.Item) (domain.CongressMember, error) {
	var row memberItem
	if err := attributevalue.UnmarshalMap(item, &row); err != nil {
		return domain.CongressMember{}, apperrors.NewDatabaseError("unmarshal member", err)
	}
	return domain.CongressMember{
		ID:                       row.ID,
		Name:                     row.Name,
		Party:                    domain.PoliticalParty(row.Party),
		Chamber:                  domain.Chamber(row.Chamber),
		State:                    row.State,
		District:                 row.District,
		ImageURL:                 row.ImageURL,
		EstimatedPortfolioReturn: row.EstimatedPortfolioReturn,
		TotalTrades:              row.TotalTrades,
		AvgDaysToDisclose:        row.AvgDaysToDisclose,
		TopHoldings:              row.TopHoldings,
	}, nil
}
