package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/application/services"
	"github.com/tradestreak/wall-street-service/domain"
	"github.com/tradestreak/wall-street-service/infrastructure/persistence/memory"
	"github.com/tradestreak/wall-street-service/infrastructure/persistence/repository"
)

const testIndexName = "GSI1"

// capturingPublisher records published events for assertions.
type capturingPublisher struct {
	mu     sync.Mutex
	events []ports.Event
}

func (p *capturingPublisher) Publish(_ context.Context, event ports.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *capturingPublisher) byType(eventType string) []ports.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	var matched []ports.Event
	for _, e := range p.events {
		if e.Type == eventType {
			matched = append(matched, e)
		}
	}
	return matched
}

func newCongressService(t *testing.T) (*services.CongressService, *repository.CongressRepository) {
	t.Helper()
	sectors, err := domain.DefaultSectorMap()
	require.NoError(t, err)
	repo := repository.NewCongressRepository(memory.NewStore(), testIndexName, zap.NewNop())
	return services.NewCongressService(repo, sectors, zap.NewNop()), repo
}

func floatPtr(f float64) *float64 { return &f }

func memberTrade(memberID, ticker string, daysAgo int, ret *float64) domain.CongressTrade {
	when := time.Now().UTC().AddDate(0, 0, -daysAgo)
	return domain.CongressTrade{
		ID:                     when.Format("2006-01-02") + "#" + memberID + "#" + ticker,
		MemberID:               memberID,
		MemberName:             "Jane Smith",
		Party:                  domain.PartyDemocrat,
		Chamber:                domain.ChamberHouse,
		State:                  "CA",
		Ticker:                 ticker,
		CompanyName:            ticker + " Inc",
		TransactionType:        domain.TxPurchase,
		TransactionDate:        when.AddDate(0, 0, -10),
		DisclosureDate:         when,
		AmountRangeLow:         1000,
		AmountRangeHigh:        15000,
		ReturnSinceTransaction: ret,
		DaysToDisclose:         10,
	}
}

func TestGetMemberDetail_WinRateExcludesAbsentReturns(t *testing.T) {
	svc, repo := newCongressService(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveMember(ctx, domain.CongressMember{
		ID: "jane-smith", Name: "Jane Smith",
		Party: domain.PartyDemocrat, Chamber: domain.ChamberHouse, State: "CA",
	}))
	require.NoError(t, repo.SaveTrade(ctx, memberTrade("jane-smith", "NVDA", 1, floatPtr(5.0))))
	require.NoError(t, repo.SaveTrade(ctx, memberTrade("jane-smith", "MSFT", 2, floatPtr(-2.0))))
	require.NoError(t, repo.SaveTrade(ctx, memberTrade("jane-smith", "AAPL", 3, nil)))

	member, err := svc.GetMemberDetail(ctx, "jane-smith")
	require.NoError(t, err)

	// One of two trades with reported returns is profitable. The trade with
	// no return stays out of both sides of the ratio.
	assert.Equal(t, 50.0, member.WinRate)
	assert.Equal(t, 3, member.TotalTrades)
	assert.Equal(t, 3, member.UniqueIssuers)
	assert.Len(t, member.RecentTrades, 3)
}

func TestGetMemberDetail_AggregatesVolumeAndDisclosureLag(t *testing.T) {
	svc, repo := newCongressService(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveMember(ctx, domain.CongressMember{
		ID: "jane-smith", Name: "Jane Smith",
		Party: domain.PartyDemocrat, Chamber: domain.ChamberHouse, State: "CA",
	}))
	require.NoError(t, repo.SaveTrade(ctx, memberTrade("jane-smith", "NVDA", 1, nil)))
	require.NoError(t, repo.SaveTrade(ctx, memberTrade("jane-smith", "NVDA", 2, nil)))

	member, err := svc.GetMemberDetail(ctx, "jane-smith")
	require.NoError(t, err)

	// Two trades at the 1K-15K bracket midpoint of 8000 each.
	assert.Equal(t, 16000.0, member.TradingVolume)
	assert.Equal(t, 10.0, member.AvgDaysToDisclose)
	require.Len(t, member.TopTradedCompanies, 1)
	assert.Equal(t, "NVDA", member.TopTradedCompanies[0].Ticker)
	assert.Equal(t, 2, member.TopTradedCompanies[0].TradeCount)
}

func TestGetMemberDetail_NoTrades(t *testing.T) {
	svc, repo := newCongressService(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveMember(ctx, domain.CongressMember{
		ID: "josh-hawley", Name: "Josh Hawley",
		Party: domain.PartyRepublican, Chamber: domain.ChamberSenate, State: "MO",
	}))

	member, err := svc.GetMemberDetail(ctx, "josh-hawley")
	require.NoError(t, err)
	assert.Empty(t, member.RecentTrades)
	assert.Zero(t, member.TotalTrades)
}

func TestGetTrades_IncludesHeadlineAggregates(t *testing.T) {
	svc, repo := newCongressService(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveTrade(ctx, memberTrade("jane-smith", "NVDA", 0, floatPtr(12.5))))
	require.NoError(t, repo.SaveTrade(ctx, memberTrade("jane-smith", "MSFT", 3, floatPtr(3.0))))

	page, err := svc.GetTrades(ctx, 1, 20, domain.TradeFilters{}, 30)
	require.NoError(t, err)

	assert.Len(t, page.Trades, 2)
	assert.Equal(t, 1, page.TodayCount)
	require.NotNil(t, page.TopPerformer)
	assert.Equal(t, "NVDA", page.TopPerformer.Ticker)
	require.NotNil(t, page.Pagination)
	assert.Equal(t, 2, page.Pagination.Total)
}
