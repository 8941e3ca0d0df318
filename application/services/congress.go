package services

import (
	"context"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/domain"
	"github.com/tradestreak/wall-street-service/pkg/common"
)

// memberDetailTradeWindow caps how many trades feed the member analytics.
const memberDetailTradeWindow = 200

// CongressTradesPage is the trade feed response: one page of trades plus
// the headline aggregates the feed view shows above the list.
type CongressTradesPage struct {
	Trades       []domain.CongressTrade `json:"trades"`
	TodayCount   int                    `json:"todayCount"`
	TopPerformer *domain.CongressTrade  `json:"topPerformer,omitempty"`
	Pagination   *common.PaginationInfo `json:"pagination"`
}

// CongressMembersPage is one page of member profiles.
type CongressMembersPage struct {
	Members    []domain.CongressMember `json:"members"`
	Pagination *common.PaginationInfo  `json:"pagination"`
}

// CongressService implements the congressional trading feature.
type CongressService struct {
	repo    ports.CongressRepository
	sectors domain.SectorMap
	logger  *zap.Logger
}

// NewCongressService creates the service.
func NewCongressService(repo ports.CongressRepository, sectors domain.SectorMap, logger *zap.Logger) *CongressService {
	return &CongressService{repo: repo, sectors: sectors, logger: logger}
}

// GetTrades returns one page of the trade feed with today's disclosure
// count and the best performer of the trailing window.
func (s *CongressService) GetTrades(ctx context.Context, page, pageSize int, filters domain.TradeFilters, daysBack int) (CongressTradesPage, error) {
	trades, total, err := s.repo.GetTrades(ctx, page, pageSize, filters)
	if err != nil {
		return CongressTradesPage{}, err
	}

	todayCount, err := s.repo.GetTodayCount(ctx, time.Now().UTC())
	if err != nil {
		return CongressTradesPage{}, err
	}

	var topPerformer *domain.CongressTrade
	if best, found, err := s.repo.GetTopPerformer(ctx, daysBack); err != nil {
		return CongressTradesPage{}, err
	} else if found {
		topPerformer = &best
	}

	return CongressTradesPage{
		Trades:       trades,
		TodayCount:   todayCount,
		TopPerformer: topPerformer,
		Pagination:   common.BuildPaginationMeta(page, pageSize, total),
	}, nil
}

// GetTradeDetail returns a single trade by id.
func (s *CongressService) GetTradeDetail(ctx context.Context, tradeID string) (domain.CongressTrade, error) {
	return s.repo.GetTradeByID(ctx, tradeID)
}

// GetMembers returns one page of member profiles.
func (s *CongressService) GetMembers(ctx context.Context, page, pageSize int) (CongressMembersPage, error) {
	members, total, err := s.repo.GetMembers(ctx, page, pageSize)
	if err != nil {
		return CongressMembersPage{}, err
	}
	return CongressMembersPage{
		Members:    members,
		Pagination: common.BuildPaginationMeta(page, pageSize, total),
	}, nil
}

// GetMemberDetail returns the member profile with analytics derived from
// their recent trades. Nothing here is persisted; every call recomputes
// from the trade window.
func (s *CongressService) GetMemberDetail(ctx context.Context, memberID string) (domain.CongressMember, error) {
	member, err := s.repo.GetMemberByID(ctx, memberID)
	if err != nil {
		return domain.CongressMember{}, err
	}

	trades, err := s.repo.GetTradesByMember(ctx, memberID, memberDetailTradeWindow)
	if err != nil {
		return domain.CongressMember{}, err
	}
	if len(trades) == 0 {
		member.RecentTrades = []domain.CongressTrade{}
		return member, nil
	}

	s.applyMemberAnalytics(&member, trades)
	return member, nil
}

// GetMemberTrades returns a member's recent trades.
func (s *CongressService) GetMemberTrades(ctx context.Context, memberID string, limit int) ([]domain.CongressTrade, error) {
	return s.repo.GetTradesByMember(ctx, memberID, limit)
}

// SaveTrade persists a trade. Used by ingestion.
func (s *CongressService) SaveTrade(ctx context.Context, trade domain.CongressTrade) error {
	return s.repo.SaveTrade(ctx, trade)
}

// SaveMember persists a member profile. Used by ingestion.
func (s *CongressService) SaveMember(ctx context.Context, member domain.CongressMember) error {
	return s.repo.SaveMember(ctx, member)
}

func (s *CongressService) applyMemberAnalytics(member *domain.CongressMember, trades []domain.CongressTrade) {
	// Win rate over trades that report a return. Trades without one are
	// excluded from both sides of the ratio.
	withReturns, profitable := 0, 0
	for _, t := range trades {
		if t.ReturnSinceTransaction == nil {
			continue
		}
		withReturns++
		if *t.ReturnSinceTransaction > 0 {
			profitable++
		}
	}
	winRate := 0.0
	if withReturns > 0 {
		winRate = float64(profitable) / float64(withReturns) * 100
	}

	var volume float64
	var totalLag int
	firstDate, lastDate := trades[0].TransactionDate, trades[0].TransactionDate
	tickerCounts := map[string]int{}
	tickerVolumes := map[string]float64{}
	tickerNames := map[string]string{}
	tickerOrder := []string{}
	sectorCounts := map[string]int{}
	sectorOrder := []string{}

	for _, t := range trades {
		volume += t.AmountMidpoint()
		totalLag += t.DisclosureLag()
		if t.TransactionDate.Before(firstDate) {
			firstDate = t.TransactionDate
		}
		if t.TransactionDate.After(lastDate) {
			lastDate = t.TransactionDate
		}
		if _, seen := tickerCounts[t.Ticker]; !seen {
			tickerOrder = append(tickerOrder, t.Ticker)
		}
		tickerCounts[t.Ticker]++
		tickerVolumes[t.Ticker] += t.AmountMidpoint()
		tickerNames[t.Ticker] = t.CompanyName

		sector := s.sectors.Sector(t.Ticker)
		if _, seen := sectorCounts[sector]; !seen {
			sectorOrder = append(sectorOrder, sector)
		}
		sectorCounts[sector]++
	}

	// Ties broken by first-encounter order: the stable sort keeps the slice
	// order for equal counts.
	sort.SliceStable(tickerOrder, func(i, j int) bool {
		return tickerCounts[tickerOrder[i]] > tickerCounts[tickerOrder[j]]
	})
	topCompanies := make([]domain.TopTradedCompany, 0, 10)
	for _, ticker := range tickerOrder {
		if len(topCompanies) == 10 {
			break
		}
		topCompanies = append(topCompanies, domain.TopTradedCompany{
			Ticker:      ticker,
			CompanyName: tickerNames[ticker],
			TradeCount:  tickerCounts[ticker],
			TotalVolume: tickerVolumes[ticker],
		})
	}

	sort.SliceStable(sectorOrder, func(i, j int) bool {
		return sectorCounts[sectorOrder[i]] > sectorCounts[sectorOrder[j]]
	})
	total := len(trades)
	sectors := make([]domain.SectorBreakdown, 0, len(sectorOrder))
	for _, sector := range sectorOrder {
		sectors = append(sectors, domain.SectorBreakdown{
			Sector:     sector,
			TradeCount: sectorCounts[sector],
			Percentage: round1(float64(sectorCounts[sector]) / float64(total) * 100),
		})
	}

	member.RecentTrades = trades
	member.TotalTrades = total
	member.WinRate = round1(winRate)
	member.TradingVolume = round2(volume)
	member.UniqueIssuers = len(tickerCounts)
	member.FirstTradeDate = firstDate.Format("2006-01-02")
	member.LastTradeDate = lastDate.Format("2006-01-02")
	member.TopTradedCompanies = topCompanies
	member.SectorBreakdown = sectors
	member.AvgDaysToDisclose = round1(float64(totalLag) / float64(total))
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
func round2(f float64) float64 { return math.Round(f*100) / 100 }
