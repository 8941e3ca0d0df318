package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/domain"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

const maxSymbolLength = 10

// StocksService serves per-ticker quote and fundamentals lookups straight
// from the market data vendor, with a short TTL cache in front.
type StocksService struct {
	market ports.MarketData
	cache  ports.Cache
	logger *zap.Logger
}

// NewStocksService creates the service. The cache may be nil.
func NewStocksService(market ports.MarketData, cache ports.Cache, logger *zap.Logger) *StocksService {
	return &StocksService{market: market, cache: cache, logger: logger}
}

// GetStockDetail combines the snapshot, ratios, and short interest for one
// symbol. The three vendor calls run concurrently; the snapshot is
// mandatory, the other two degrade to nil on failure.
func (s *StocksService) GetStockDetail(ctx context.Context, symbol string) (domain.StockDetail, error) {
	symbol, err := validateSymbol(symbol)
	if err != nil {
		return domain.StockDetail{}, err
	}

	cacheKey := "stock_detail:" + symbol
	if cached, ok := s.cacheGet(cacheKey); ok {
		if detail, ok := cached.(domain.StockDetail); ok {
			return detail, nil
		}
	}

	var (
		wg       sync.WaitGroup
		snapshot domain.StockSnapshot
		snapErr  error
		ratios   *domain.StockRatios
		short    *domain.ShortInterest
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		snapshot, snapErr = s.market.FetchSnapshot(ctx, symbol)
	}()
	go func() {
		defer wg.Done()
		r, err := s.market.FetchRatios(ctx, symbol)
		if err != nil {
			s.logger.Warn("Ratios fetch failed", zap.String("symbol", symbol), zap.Error(err))
			return
		}
		ratios = &r
	}()
	go func() {
		defer wg.Done()
		si, err := s.market.FetchShortInterest(ctx, symbol)
		if err != nil {
			s.logger.Warn("Short interest fetch failed", zap.String("symbol", symbol), zap.Error(err))
			return
		}
		short = &si
	}()
	wg.Wait()

	if snapErr != nil {
		if apperrors.IsNotFound(snapErr) {
			return domain.StockDetail{}, snapErr
		}
		return domain.StockDetail{}, apperrors.Wrapf(snapErr, "fetching snapshot for %s", symbol)
	}

	detail := domain.StockDetail{
		Symbol:        symbol,
		Snapshot:      &snapshot,
		Ratios:        ratios,
		ShortInterest: short,
	}
	s.cacheSet(cacheKey, detail)
	return detail, nil
}

// GetStockRatios returns the latest financial ratios for one symbol.
func (s *StocksService) GetStockRatios(ctx context.Context, symbol string) (domain.StockRatios, error) {
	symbol, err := validateSymbol(symbol)
	if err != nil {
		return domain.StockRatios{}, err
	}

	cacheKey := "stock_ratios:" + symbol
	if cached, ok := s.cacheGet(cacheKey); ok {
		if ratios, ok := cached.(domain.StockRatios); ok {
			return ratios, nil
		}
	}

	ratios, err := s.market.FetchRatios(ctx, symbol)
	if err != nil {
		return domain.StockRatios{}, err
	}
	s.cacheSet(cacheKey, ratios)
	return ratios, nil
}

// GetShortInterest returns the most recent short interest report for one
// symbol.
func (s *StocksService) GetShortInterest(ctx context.Context, symbol string) (domain.ShortInterest, error) {
	symbol, err := validateSymbol(symbol)
	if err != nil {
		return domain.ShortInterest{}, err
	}

	cacheKey := "short_interest:" + symbol
	if cached, ok := s.cacheGet(cacheKey); ok {
		if si, ok := cached.(domain.ShortInterest); ok {
			return si, nil
		}
	}

	si, err := s.market.FetchShortInterest(ctx, symbol)
	if err != nil {
		return domain.ShortInterest{}, err
	}
	s.cacheSet(cacheKey, si)
	return si, nil
}

func (s *StocksService) cacheGet(key string) (any, bool) {
	if s.cache == nil {
		return nil, false
	}
	return s.cache.Get(key)
}

func (s *StocksService) cacheSet(key string, value any) {
	if s.cache != nil {
		s.cache.Set(key, value)
	}
}

// validateSymbol upper-cases and bounds the symbol: 1 to 10 alphabetic
// characters.
func validateSymbol(symbol string) (string, error) {
	cleaned := strings.ToUpper(strings.TrimSpace(symbol))
	if cleaned == "" {
		return "", apperrors.NewValidationError("stock symbol is required")
	}
	if len(cleaned) > maxSymbolLength {
		return "", apperrors.NewValidationError(fmt.Sprintf("invalid stock symbol: %q, must be 1-10 alphabetic characters", symbol))
	}
	for _, r := range cleaned {
		if r < 'A' || r > 'Z' {
			return "", apperrors.NewValidationError(fmt.Sprintf("invalid stock symbol: %q, must be 1-10 alphabetic characters", symbol))
		}
	}
	return cleaned, nil
}
