package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/application/ports"
	"github.com/tradestreak/wall-street-service/domain"
	apperrors "github.com/tradestreak/wall-street-service/pkg/errors"
)

// filingFetchLimit bounds how many 13F filings one EDGAR lookup yields.
const filingFetchLimit = 20

// InvestorFilingsPage is the filing history for one filer.
type InvestorFilingsPage struct {
	Investor domain.SuperInvestor    `json:"investor"`
	Filings  []domain.InvestorFiling `json:"filings"`
}

// SuperInvestorsService serves the tracked 13F filer catalog enriched with
// live EDGAR filing data.
type SuperInvestorsService struct {
	catalog domain.SuperInvestorCatalog
	edgar   ports.EdgarClient
	logger  *zap.Logger
}

// NewSuperInvestorsService creates the service.
func NewSuperInvestorsService(catalog domain.SuperInvestorCatalog, edgar ports.EdgarClient, logger *zap.Logger) *SuperInvestorsService {
	return &SuperInvestorsService{catalog: catalog, edgar: edgar, logger: logger}
}

// ListInvestors returns the catalog with each filer's recent 13F count and
// latest filing date. An EDGAR failure for one filer is logged and that
// filer keeps its static metadata only.
func (s *SuperInvestorsService) ListInvestors(ctx context.Context) ([]domain.SuperInvestor, error) {
	investors := s.catalog.Investors()
	for i := range investors {
		filings, err := s.edgar.FetchFilings(ctx, domain.PadCIK(investors[i].CIK), filingFetchLimit)
		if err != nil {
			s.logger.Warn("EDGAR fetch failed for investor",
				zap.String("name", investors[i].Name),
				zap.String("cik", investors[i].CIK),
				zap.Error(err),
			)
			continue
		}

		investors[i].RecentTradeCount = len(filings)
		if len(filings) > 0 {
			date := filings[0].FilingDate
			investors[i].LastFilingDate = &date
		}
	}
	return investors, nil
}

// GetInvestorFilings returns the 13F filing history for a CIK. CIKs outside
// the catalog resolve to a placeholder identity so any valid filer can be
// looked up.
func (s *SuperInvestorsService) GetInvestorFilings(ctx context.Context, cik string) (InvestorFilingsPage, error) {
	cikPadded, err := validateCIK(cik)
	if err != nil {
		return InvestorFilingsPage{}, err
	}

	investor, known := s.catalog.FindByCIK(cikPadded)
	if !known {
		investor = domain.SuperInvestor{
			Name:     "Unknown Investor",
			FundName: "Unknown Fund",
			CIK:      strings.TrimSpace(cik),
		}
	}

	filings, err := s.edgar.FetchFilings(ctx, cikPadded, filingFetchLimit)
	if err != nil {
		return InvestorFilingsPage{}, err
	}

	s.logger.Info("Retrieved 13F filings",
		zap.String("cik", cikPadded),
		zap.Int("count", len(filings)),
	)
	return InvestorFilingsPage{Investor: investor, Filings: filings}, nil
}

// validateCIK checks the CIK is numeric and returns it zero-padded to the
// 10 digits EDGAR expects.
func validateCIK(cik string) (string, error) {
	cleaned := strings.TrimSpace(cik)
	if cleaned == "" {
		return "", apperrors.NewValidationError("CIK is required")
	}
	for _, r := range cleaned {
		if r < '0' || r > '9' {
			return "", apperrors.NewValidationError(fmt.Sprintf("invalid CIK format: %q, must be numeric", cik))
		}
	}
	return domain.PadCIK(cleaned), nil
}
