package ingestion

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const edgarFixture = `{
	"cik": "1067983",
	"filings": {
		"recent": {
			"form": ["4", "13F-HR", "8-K", "13F-HR/A", "13F-HR"],
			"filingDate": ["2026-08-01", "2026-07-15", "2026-07-01", "2026-05-20", "2026-05-15"],
			"accessionNumber": ["0001-26-000001", "0001-26-000002", "0001-26-000003", "0001-26-000004", "0001-26-000005"],
			"primaryDocument": ["doc1.xml", "form13f.xml", "doc3.htm", "form13fa.xml", "form13f.xml"],
			"primaryDocDescription": ["FORM 4", "FORM 13F-HR", "8-K", "FORM 13F-HR/A", "FORM 13F-HR"]
		}
	}
}`

func TestFetchFilings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/submissions/CIK0001067983.json", r.URL.Path)
		assert.Equal(t, "TradeStreak admin@tradestreak.net", r.Header.Get("User-Agent"))
		w.Write([]byte(edgarFixture))
	}))
	defer srv.Close()

	client := NewEdgarFetcher("TradeStreak admin@tradestreak.net", time.Second, zap.NewNop())
	client.baseURL = srv.URL

	filings, err := client.FetchFilings(context.Background(), "0001067983", 10)
	require.NoError(t, err)

	// Only 13F-HR and amendments survive the filter.
	require.Len(t, filings, 3)
	assert.Equal(t, "13F-HR", filings[0].FormType)
	assert.Equal(t, "2026-07-15", filings[0].FilingDate)
	assert.Equal(t, "FORM 13F-HR", filings[0].Description)
	assert.Equal(t, "https://www.sec.gov/Archives/edgar/data/1067983/000126000002/form13f.xml", filings[0].FilingURL)
	assert.NotNil(t, filings[0].Holdings)

	assert.Equal(t, "13F-HR/A", filings[1].FormType)
	assert.Equal(t, "13F-HR", filings[2].FormType)
}

func TestFetchFilings_Limit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(edgarFixture))
	}))
	defer srv.Close()

	client := NewEdgarFetcher("test agent", time.Second, zap.NewNop())
	client.baseURL = srv.URL

	filings, err := client.FetchFilings(context.Background(), "0001067983", 2)
	require.NoError(t, err)
	assert.Len(t, filings, 2)
}

func TestFetchFilings_UnknownCIK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	client := NewEdgarFetcher("test agent", time.Second, zap.NewNop())
	client.baseURL = srv.URL

	_, err := client.FetchFilings(context.Background(), "0000000000", 10)
	assert.Error(t, err)
}

func TestArchiveURL(t *testing.T) {
	url := archiveURL("0001067983", "0000950123-26-001234", "form13fInfoTable.xml")
	assert.Equal(t, "https://www.sec.gov/Archives/edgar/data/1067983/000095012326001234/form13fInfoTable.xml", url)

	// All-zero CIK keeps a single zero rather than an empty path segment.
	url = archiveURL("0000000000", "1-2-3", "doc.htm")
	assert.Equal(t, "https://www.sec.gov/Archives/edgar/data/0/123/doc.htm", url)
}
