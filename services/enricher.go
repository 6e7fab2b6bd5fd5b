package services

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/sirupsen/logrus"

	"github.com/fenilmodi00/scholarship-backend/models"
	"github.com/fenilmodi00/scholarship-backend/shared"
)

// EnrichReport summarizes one enrichment batch
type EnrichReport struct {
	Attempted int `json:"attempted"`
	Enriched  int `json:"enriched"`
	Failed    int `json:"failed"`
}

// Enricher runs the second phase of the record lifecycle: it revisits pending
// records, fetches their source pages and fills in amount and deadline. A
// record that fails enrichment stays pending until its attempt count reaches
// RetryCap, after which it is terminally failed and never revisited.
type Enricher struct {
	Store      *ScholarshipStore
	Analyzer   *ContentAnalyzer
	Clients    *shared.HTTPClientFactory
	ScraperCfg shared.ScraperConfig
	RetryCap   int
}

// NewEnricher creates an enricher over the given store
func NewEnricher(store *ScholarshipStore, analyzer *ContentAnalyzer, clients *shared.HTTPClientFactory, scraperCfg shared.ScraperConfig, retryCap int) *Enricher {
	return &Enricher{
		Store:      store,
		Analyzer:   analyzer,
		Clients:    clients,
		ScraperCfg: scraperCfg,
		RetryCap:   retryCap,
	}
}

// Enrich processes up to limit pending records, oldest first. Per-record
// failures are counted against that record but never abort the batch; the
// report totals what actually happened.
func (e *Enricher) Enrich(ctx context.Context, limit int) (EnrichReport, error) {
	logger := logrus.WithFields(logrus.Fields{
		"component": "Enricher",
		"method":    "Enrich",
	})

	report := EnrichReport{}

	records, err := e.Store.ListPendingEnrichment(ctx, limit)
	if err != nil {
		return report, fmt.Errorf("failed to load enrichment batch: %w", err)
	}
	if len(records) == 0 {
		logger.Debug("No records pending enrichment")
		return report, nil
	}

	budget := e.ScraperCfg.NewBudget()

	for i := range records {
		record := &records[i]
		report.Attempted++

		if !budget.Acquire() {
			// Out of request budget; untouched records stay pending with
			// their attempt count intact
			logger.WithField("remaining_records", len(records)-i).Warn("Request budget exhausted mid-batch")
			report.Attempted--
			break
		}

		if err := e.enrichRecord(ctx, record); err != nil {
			report.Failed++
			logger.WithError(err).WithFields(logrus.Fields{
				"record_id":  record.ID,
				"source_url": record.SourceURL,
				"attempts":   record.EnrichAttempts + 1,
			}).Warn("Enrichment attempt failed")

			if failErr := e.Store.RecordEnrichmentFailure(ctx, record, e.RetryCap); failErr != nil {
				logger.WithError(failErr).WithField("record_id", record.ID).Error("Failed to record enrichment failure")
			}
			continue
		}

		report.Enriched++
	}

	logger.WithFields(logrus.Fields{
		"attempted": report.Attempted,
		"enriched":  report.Enriched,
		"failed":    report.Failed,
	}).Info("Enrichment batch complete")

	return report, nil
}

// enrichRecord fetches one record's source page and writes whatever detail
// fields the page text yields. A reachable page with no extractable amount
// still counts as a successful enrichment; only fetch failures count against
// the retry cap.
func (e *Enricher) enrichRecord(ctx context.Context, record *models.ScholarshipRecord) error {
	pageText, err := e.fetchPageText(ctx, record.SourceURL)
	if err != nil {
		return err
	}

	var amount *string
	if record.NeedsAmount() {
		amount = e.Analyzer.ExtractAmount(pageText)
	}

	var deadline sql.NullTime
	if record.NeedsDeadline() {
		if extracted := e.Analyzer.ExtractDeadline(pageText); extracted != nil {
			deadline = sql.NullTime{Time: *extracted, Valid: true}
		}
	}

	if err := e.Store.MarkEnriched(ctx, record, amount, &deadline); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"component":      "Enricher",
		"record_id":      record.ID,
		"found_amount":   amount != nil,
		"found_deadline": deadline.Valid,
	}).Debug("Record enriched")

	return nil
}

// fetchPageText downloads a page and reduces it to visible text
func (e *Enricher) fetchPageText(ctx context.Context, pageURL string) (string, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to build enrichment request: %w", err)
	}
	shared.SetBrowserLikeHeaders(request, "text/html,application/xhtml+xml")

	client := e.Clients.CreateOptimizedHTTPClient(e.ScraperCfg.HTTPRequestTimeout)
	response, err := shared.ExecuteHTTPRequestWithRetry(client, request, e.ScraperCfg.MaxRetryAttempts)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	doc, err := goquery.NewDocumentFromReader(response.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse enrichment page: %w", err)
	}

	doc.Find("script, style, noscript").Remove()

	var builder strings.Builder
	doc.Find("body").Each(func(_ int, selection *goquery.Selection) {
		builder.WriteString(selection.Text())
	})

	text := builder.String()
	if strings.TrimSpace(text) == "" {
		// Some pages render everything client-side; treat as unreadable
		return "", fmt.Errorf("page yielded no readable text: %s", pageURL)
	}

	return text, nil
}
