package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/domain"
	"github.com/tradestreak/wall-street-service/infrastructure/persistence/memory"
	"github.com/tradestreak/wall-street-service/infrastructure/persistence/repository"
)

const testIndexName = "GSI1"

func newCongressRepo(t *testing.T) *repository.CongressRepository {
	t.Helper()
	return repository.NewCongressRepository(memory.NewStore(), testIndexName, zap.NewNop())
}

func sampleTrade(memberID, memberName, ticker string, disclosed time.Time) domain.CongressTrade {
	return domain.CongressTrade{
		ID:              fmt.Sprintf("%s#%s#%s", disclosed.Format("2006-01-02"), memberID, ticker),
		MemberID:        memberID,
		MemberName:      memberName,
		Party:           domain.PartyRepublican,
		Chamber:         domain.ChamberSenate,
		State:           "AL",
		Ticker:          ticker,
		CompanyName:     ticker + " Inc",
		TransactionType: domain.TxPurchase,
		TransactionDate: disclosed.AddDate(0, 0, -10),
		DisclosureDate:  disclosed,
		AmountRangeLow:  1001,
		AmountRangeHigh: 15000,
		DaysToDisclose:  10,
	}
}

func TestSaveTrade_FansOutToMemberPartition(t *testing.T) {
	repo := newCongressRepo(t)
	ctx := context.Background()
	disclosed := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveTrade(ctx, sampleTrade("tommy-tuberville", "Tommy Tuberville", "AAPL", disclosed)))

	global, total, err := repo.GetTrades(ctx, 1, 20, domain.TradeFilters{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, global, 1)
	assert.Equal(t, "AAPL", global[0].Ticker)

	byMember, err := repo.GetTradesByMember(ctx, "tommy-tuberville", 50)
	require.NoError(t, err)
	require.Len(t, byMember, 1)
	assert.Equal(t, "Tommy Tuberville", byMember[0].MemberName)
}

func TestGetTrades_FilterKeepsUnfilteredTotal(t *testing.T) {
	repo := newCongressRepo(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		ticker := "MSFT"
		if i%2 == 0 {
			ticker = "NVDA"
		}
		trade := sampleTrade("john-doe", "John Doe", ticker, base.AddDate(0, 0, i))
		require.NoError(t, repo.SaveTrade(ctx, trade))
	}

	trades, total, err := repo.GetTrades(ctx, 1, 20, domain.TradeFilters{Ticker: "nvda"})
	require.NoError(t, err)
	// Total reflects the partition, not the filter.
	assert.Equal(t, 10, total)
	require.Len(t, trades, 5)
	for _, trade := range trades {
		assert.Equal(t, "NVDA", trade.Ticker)
	}
}

func TestGetTradesByMember_AlternateIDFallback(t *testing.T) {
	repo := newCongressRepo(t)
	ctx := context.Background()
	disclosed := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)

	// Historical rows were keyed with underscores.
	require.NoError(t, repo.SaveTrade(ctx, sampleTrade("nancy_pelosi", "Nancy Pelosi", "GOOG", disclosed)))

	trades, err := repo.GetTradesByMember(ctx, "nancy-pelosi", 50)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "GOOG", trades[0].Ticker)
}

func TestGetTradesByMember_NameFallback(t *testing.T) {
	repo := newCongressRepo(t)
	ctx := context.Background()
	disclosed := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)

	// Trade keyed under a legacy raw id that matches neither variant of the
	// profile id. Only the display name ties them together.
	require.NoError(t, repo.SaveTrade(ctx, sampleTrade("rep.j.smith", "Jane Smith", "TSLA", disclosed)))
	require.NoError(t, repo.SaveMember(ctx, domain.CongressMember{
		ID:      "jane-smith",
		Name:    "Jane Smith",
		Party:   domain.PartyDemocrat,
		Chamber: domain.ChamberHouse,
		State:   "CA",
	}))

	trades, err := repo.GetTradesByMember(ctx, "jane-smith", 50)
	require.NoError(t, err)
	require.Len(t, trades, 1)
	assert.Equal(t, "TSLA", trades[0].Ticker)
}

func TestGetTradesByMember_UnknownMemberReturnsEmpty(t *testing.T) {
	repo := newCongressRepo(t)

	trades, err := repo.GetTradesByMember(context.Background(), "nobody-here", 50)
	require.NoError(t, err)
	assert.Empty(t, trades)
}

func TestGetTodayCount(t *testing.T) {
	repo := newCongressRepo(t)
	ctx := context.Background()
	today := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.SaveTrade(ctx, sampleTrade("a-b", "A B", "AAPL", today)))
	require.NoError(t, repo.SaveTrade(ctx, sampleTrade("c-d", "C D", "MSFT", today)))
	require.NoError(t, repo.SaveTrade(ctx, sampleTrade("e-f", "E F", "NVDA", today.AddDate(0, 0, -1))))

	count, err := repo.GetTodayCount(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGetTopPerformer(t *testing.T) {
	repo := newCongressRepo(t)
	ctx := context.Background()
	recent := time.Now().UTC().AddDate(0, 0, -3)

	withReturn := func(trade domain.CongressTrade, pct float64) domain.CongressTrade {
		trade.ReturnSinceTransaction = &pct
		return trade
	}
	require.NoError(t, repo.SaveTrade(ctx, withReturn(sampleTrade("a-b", "A B", "AAPL", recent), 4.2)))
	require.NoError(t, repo.SaveTrade(ctx, withReturn(sampleTrade("c-d", "C D", "NVDA", recent), 18.7)))
	require.NoError(t, repo.SaveTrade(ctx, sampleTrade("e-f", "E F", "MSFT", recent)))

	best, found, err := repo.GetTopPerformer(ctx, 30)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "NVDA", best.Ticker)
}

func TestGetTopPerformer_NoReturnsReported(t *testing.T) {
	repo := newCongressRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveTrade(ctx, sampleTrade("a-b", "A B", "AAPL", time.Now().UTC())))

	_, found, err := repo.GetTopPerformer(ctx, 30)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetMemberByID_Variants(t *testing.T) {
	repo := newCongressRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveMember(ctx, domain.CongressMember{
		ID:      "josh_hawley",
		Name:    "Josh Hawley",
		Party:   domain.PartyRepublican,
		Chamber: domain.ChamberSenate,
		State:   "MO",
	}))

	member, err := repo.GetMemberByID(ctx, "josh-hawley")
	require.NoError(t, err)
	assert.Equal(t, "Josh Hawley", member.Name)

	_, err = repo.GetMemberByID(ctx, "no-such-member")
	assert.Error(t, err)
}
