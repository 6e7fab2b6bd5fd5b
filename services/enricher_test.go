package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenilmodi00/scholarship-backend/shared"
)

const detailPage = `<html><head><title>Merit Scholarship</title>
<script>console.log("tracking")</script></head><body>
<h1>Merit Scholarship</h1>
<p>This award provides $4,000 per year.</p>
<p>Application deadline: April 30, 2026</p>
</body></html>`

func newTestEnricher(t *testing.T, retryCap int) (*Enricher, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	enricher := NewEnricher(
		NewScholarshipStore(db),
		NewContentAnalyzer(),
		shared.NewHTTPClientFactory(5*time.Second),
		testScraperConfig(),
		retryCap,
	)
	return enricher, mock, func() { db.Close() }
}

func pendingRowsFor(sourceURL string) *sqlmock.Rows {
	now := time.Now()
	return scholarshipRows().
		AddRow(uuid.New().String(), "Merit Scholarship", "", nil, "general", sourceURL,
			nil, "pending", 0, now, now)
}

func TestEnrichFillsAmountAndDeadline(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(detailPage))
	}))
	defer page.Close()

	enricher, mock, cleanup := newTestEnricher(t, 3)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM scholarships WHERE enrichment_status = 'pending'").
		WithArgs(5).
		WillReturnRows(pendingRowsFor(page.URL))
	mock.ExpectExec("UPDATE scholarships").
		WillReturnResult(sqlmock.NewResult(0, 1))

	report, err := enricher.Enrich(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, 1, report.Enriched)
	assert.Equal(t, 0, report.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrichUnreachablePageCountsFailure(t *testing.T) {
	// A server that is already closed simulates a dead source page
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := page.URL
	page.Close()

	enricher, mock, cleanup := newTestEnricher(t, 3)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM scholarships WHERE enrichment_status = 'pending'").
		WithArgs(5).
		WillReturnRows(pendingRowsFor(deadURL))
	mock.ExpectExec("UPDATE scholarships SET enrich_attempts = enrich_attempts \\+ 1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	report, err := enricher.Enrich(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, 0, report.Enriched)
	assert.Equal(t, 1, report.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrichFailureNeverAbortsBatch(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(detailPage))
	}))
	defer page.Close()

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	deadURL := dead.URL
	dead.Close()

	enricher, mock, cleanup := newTestEnricher(t, 3)
	defer cleanup()

	now := time.Now()
	rows := scholarshipRows().
		AddRow(uuid.New().String(), "Dead Listing", "", nil, "general", deadURL,
			nil, "pending", 2, now.Add(-time.Hour), now).
		AddRow(uuid.New().String(), "Live Listing", "", nil, "rss", page.URL,
			nil, "pending", 0, now, now)

	mock.ExpectQuery("SELECT (.+) FROM scholarships WHERE enrichment_status = 'pending'").
		WithArgs(5).
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE scholarships SET enrich_attempts = enrich_attempts \\+ 1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE scholarships").
		WillReturnResult(sqlmock.NewResult(0, 1))

	report, err := enricher.Enrich(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, 1, report.Enriched)
	assert.Equal(t, 1, report.Failed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEnrichEmptyBatch(t *testing.T) {
	enricher, mock, cleanup := newTestEnricher(t, 3)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM scholarships WHERE enrichment_status = 'pending'").
		WithArgs(5).
		WillReturnRows(scholarshipRows())

	report, err := enricher.Enrich(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 0, report.Attempted)
	assert.NoError(t, mock.ExpectationsWereMet())
}
