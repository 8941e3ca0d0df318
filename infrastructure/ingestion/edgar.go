package ingestion

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tradestreak/wall-street-service/domain"
)

const (
	edgarVendor  = "SEC EDGAR"
	edgarBaseURL = "https://data.sec.gov"
)

// EdgarFetcher pulls 13F submission histories from SEC EDGAR's public JSON
// API. It implements ports.EdgarClient.
//
// EDGAR rejects requests without a contact User-Agent; the userAgent field
// is required, not decorative.
type EdgarFetcher struct {
	client    *http.Client
	baseURL   string
	userAgent string
	logger    *zap.Logger
}

// NewEdgarFetcher creates an EDGAR client with the declared contact header.
func NewEdgarFetcher(userAgent string, timeout time.Duration, logger *zap.Logger) *EdgarFetcher {
	return &EdgarFetcher{
		client:    newHTTPClient(timeout),
		baseURL:   edgarBaseURL,
		userAgent: userAgent,
		logger:    logger,
	}
}

// edgarSubmissions mirrors EDGAR's parallel-array layout: index i across
// every slice describes one filing.
type edgarSubmissions struct {
	CIK     string `json:"cik"`
	Filings struct {
		Recent struct {
			Form                  []string `json:"form"`
			FilingDate            []string `json:"filingDate"`
			AccessionNumber       []string `json:"accessionNumber"`
			PrimaryDocument       []string `json:"primaryDocument"`
			PrimaryDocDescription []string `json:"primaryDocDescription"`
		} `json:"recent"`
	} `json:"filings"`
}

// FetchFilings returns the most recent 13F-HR filings (amendments included)
// for a zero-padded CIK, newest first as EDGAR orders them.
func (c *EdgarFetcher) FetchFilings(ctx context.Context, cikPadded string, limit int) ([]domain.InvestorFiling, error) {
	rawURL := fmt.Sprintf("%s/submissions/CIK%s.json", c.baseURL, cikPadded)
	headers := map[string]string{"User-Agent": c.userAgent}

	var resp edgarSubmissions
	if err := getJSON(ctx, c.client, edgarVendor, rawURL, headers, &resp); err != nil {
		return nil, err
	}

	recent := resp.Filings.Recent
	filings := make([]domain.InvestorFiling, 0, limit)
	for i, form := range recent.Form {
		if form != "13F-HR" && form != "13F-HR/A" {
			continue
		}
		filing := domain.InvestorFiling{
			FormType: form,
			Holdings: []string{},
		}
		if i < len(recent.FilingDate) {
			filing.FilingDate = recent.FilingDate[i]
		}
		if i < len(recent.AccessionNumber) {
			filing.AccessionNumber = recent.AccessionNumber[i]
		}
		if i < len(recent.PrimaryDocDescription) {
			filing.Description = recent.PrimaryDocDescription[i]
		}
		if i < len(recent.PrimaryDocument) && filing.AccessionNumber != "" {
			filing.FilingURL = archiveURL(cikPadded, filing.AccessionNumber, recent.PrimaryDocument[i])
		}
		filings = append(filings, filing)
		if len(filings) >= limit {
			break
		}
	}

	c.logger.Info("Fetched EDGAR filings",
		zap.String("cik", cikPadded),
		zap.Int("count", len(filings)))
	return filings, nil
}

// archiveURL builds the public document URL for one filing. The archive
// path uses the unpadded CIK and the accession number without hyphens.
func archiveURL(cikPadded, accessionNumber, primaryDoc string) string {
	cik := strings.TrimLeft(cikPadded, "0")
	if cik == "" {
		cik = "0"
	}
	accession := strings.ReplaceAll(accessionNumber, "-", "")
	return fmt.Sprintf("https://www.sec.gov/Archives/edgar/data/%s/%s/%s", cik, accession, primaryDoc)
}
