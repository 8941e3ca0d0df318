package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/domain"
	"github.com/tradestreak/wall-street-service/pkg/common"
)

// CramerPicksPage is one page of picks with the trailing-window stats the
// tracker view renders alongside them.
type CramerPicksPage struct {
	Picks      []domain.CramerPick    `json:"picks"`
	Stats      domain.CramerStats     `json:"stats"`
	Pagination *common.PaginationInfo `json:"pagination"`
}

// CramerService implements the TV pick tracker.
type CramerService struct {
	repo   ports.CramerRepository
	logger *zap.Logger
}

// NewCramerService creates the service.
func NewCramerService(repo ports.CramerRepository, logger *zap.Logger) *CramerService {
	return &CramerService{repo: repo, logger: logger}
}

// GetPicks returns one page of picks plus aggregate stats. An unparseable
// recommendation filter is ignored, matching everything.
func (s *CramerService) GetPicks(ctx context.Context, page, pageSize int, recommendation string, daysBack int) (CramerPicksPage, error) {
	var filter domain.CramerRecommendation
	if rec, ok := domain.ParseRecommendation(recommendation); ok {
		filter = rec
	}

	picks, total, err := s.repo.GetPicks(ctx, page, pageSize, filter)
	if err != nil {
		return CramerPicksPage{}, err
	}

	stats, err := s.repo.GetStats(ctx, daysBack)
	if err != nil {
		return CramerPicksPage{}, err
	}

	return CramerPicksPage{
		Picks:      picks,
		Stats:      stats,
		Pagination: common.BuildPaginationMeta(page, pageSize, total),
	}, nil
}

// GetPickDetail returns the most recent pick for a ticker.
func (s *CramerService) GetPickDetail(ctx context.Context, ticker string) (domain.CramerPick, error) {
	return s.repo.GetPickByTicker(ctx, strings.ToUpper(strings.TrimSpace(ticker)))
}

// GetStats returns pick performance over the trailing window.
func (s *CramerService) GetStats(ctx context.Context, daysBack int) (domain.CramerStats, error) {
	return s.repo.GetStats(ctx, daysBack)
}

// SavePick persists a pick. Used by ingestion.
func (s *CramerService) SavePick(ctx context.Context, pick domain.CramerPick) error {
	return s.repo.SavePick(ctx, pick)
}

// UpdatePickPrice refreshes a pick's current price and derived returns.
func (s *CramerService) UpdatePickPrice(ctx context.Context, pickID string, currentPrice float64) error {
	return s.repo.UpdatePickPrices(ctx, pickID, currentPrice)
}
