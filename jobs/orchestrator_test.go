package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenilmodi00/scholarship-backend/models"
	"github.com/fenilmodi00/scholarship-backend/services"
	"github.com/fenilmodi00/scholarship-backend/shared"
)

// stubAdapter is a controllable source adapter for scheduling tests
type stubAdapter struct {
	source  models.Source
	tag     models.RunTag
	release chan struct{}
	fetches chan struct{}
}

func newStubAdapter(source models.Source, tag models.RunTag) *stubAdapter {
	return &stubAdapter{
		source:  source,
		tag:     tag,
		fetches: make(chan struct{}, 16),
	}
}

func (a *stubAdapter) Source() models.Source { return a.source }

func (a *stubAdapter) Fetch(ctx context.Context, limit int) ([]models.RawListing, models.RunTag, error) {
	a.fetches <- struct{}{}
	if a.release != nil {
		<-a.release
	}
	return nil, a.tag, nil
}

func newTestOrchestrator(t *testing.T, adapter services.SourceAdapter, blockCooldown time.Duration) (*Orchestrator, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	analyzer := services.NewContentAnalyzer()
	store := services.NewScholarshipStore(db)
	runner := services.NewPipelineRunner(services.NewNormalizer(analyzer, 0.3), store, 10)

	scraperCfg := shared.NewDefaultScraperConfig()
	scraperCfg.PolitenessDelay = 0
	enricher := services.NewEnricher(store, analyzer, shared.NewHTTPClientFactory(time.Second), scraperCfg, 3)

	adapters := map[models.Source]services.SourceAdapter{}
	if adapter != nil {
		adapters[adapter.Source()] = adapter
	}

	orchestrator := NewOrchestrator(runner, enricher, adapters, shared.NewPipelineMetrics(),
		30*time.Second, blockCooldown, 5)
	return orchestrator, mock, func() { db.Close() }
}

func waitForReport(t *testing.T, orchestrator *Orchestrator, source models.Source) models.SourceRunReport {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("no run report for source %s", source)
		case <-time.After(10 * time.Millisecond):
		}
		for _, report := range orchestrator.LastReports() {
			if report.Source == source {
				return report
			}
		}
	}
}

func TestTriggerRejectsConcurrentRun(t *testing.T) {
	adapter := newStubAdapter(models.SourceGeneral, models.RunTagOK)
	adapter.release = make(chan struct{})

	orchestrator, _, cleanup := newTestOrchestrator(t, adapter, 0)
	defer cleanup()

	require.True(t, orchestrator.Trigger(models.SourceGeneral))
	<-adapter.fetches // first run is now inside Fetch

	assert.False(t, orchestrator.Trigger(models.SourceGeneral),
		"a second trigger while a run is in flight must be skipped, not queued")

	close(adapter.release)
	report := waitForReport(t, orchestrator, models.SourceGeneral)
	assert.Equal(t, models.RunTagOK, report.Tag)

	// With the run finished the source is free again
	assert.True(t, orchestrator.Trigger(models.SourceGeneral))
}

func TestBlockedRunStartsCooldown(t *testing.T) {
	adapter := newStubAdapter(models.SourceForum, models.RunTagBlocked)

	orchestrator, _, cleanup := newTestOrchestrator(t, adapter, time.Hour)
	defer cleanup()

	require.True(t, orchestrator.Trigger(models.SourceForum))
	report := waitForReport(t, orchestrator, models.SourceForum)
	require.Equal(t, models.RunTagBlocked, report.Tag)

	assert.False(t, orchestrator.acquire(models.SourceForum, false),
		"scheduled runs must skip a source in cooldown")
	assert.True(t, orchestrator.acquire(models.SourceForum, true),
		"manual triggers bypass cooldown")
}

func TestScheduledRunsResumeAfterCooldown(t *testing.T) {
	adapter := newStubAdapter(models.SourceForum, models.RunTagBlocked)

	orchestrator, _, cleanup := newTestOrchestrator(t, adapter, 20*time.Millisecond)
	defer cleanup()

	require.True(t, orchestrator.Trigger(models.SourceForum))
	waitForReport(t, orchestrator, models.SourceForum)

	time.Sleep(50 * time.Millisecond)
	assert.True(t, orchestrator.acquire(models.SourceForum, false),
		"an expired cooldown no longer gates scheduled runs")
}

func TestIndependentSourcesRunConcurrently(t *testing.T) {
	general := newStubAdapter(models.SourceGeneral, models.RunTagOK)
	general.release = make(chan struct{})

	orchestrator, _, cleanup := newTestOrchestrator(t, general, 0)
	defer cleanup()

	forum := newStubAdapter(models.SourceForum, models.RunTagOK)
	orchestrator.Adapters[models.SourceForum] = forum

	require.True(t, orchestrator.Trigger(models.SourceGeneral))
	<-general.fetches

	// A stalled general run must not prevent the forum source from running
	require.True(t, orchestrator.Trigger(models.SourceForum))
	report := waitForReport(t, orchestrator, models.SourceForum)
	assert.Equal(t, models.RunTagOK, report.Tag)

	close(general.release)
	waitForReport(t, orchestrator, models.SourceGeneral)
}

func TestEnricherRunsThroughOrchestrator(t *testing.T) {
	orchestrator, mock, cleanup := newTestOrchestrator(t, nil, 0)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM scholarships WHERE enrichment_status = 'pending'").
		WithArgs(5).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "title", "description", "amount", "platform", "source_url",
			"deadline", "enrichment_status", "enrich_attempts", "created_at", "updated_at",
		}))

	require.True(t, orchestrator.Trigger(models.SourceEnricher))
	report := waitForReport(t, orchestrator, models.SourceEnricher)

	assert.Equal(t, models.RunTagOK, report.Tag)
	assert.Equal(t, 0, report.CandidatesSeen)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunPanicIsContained(t *testing.T) {
	adapter := &panicAdapter{}

	orchestrator, _, cleanup := newTestOrchestrator(t, adapter, 0)
	defer cleanup()

	require.True(t, orchestrator.Trigger(models.SourceSocial))
	report := waitForReport(t, orchestrator, models.SourceSocial)

	assert.Equal(t, models.RunTagError, report.Tag)
	assert.True(t, orchestrator.Trigger(models.SourceSocial),
		"a panicking run must still release its in-flight slot")
}

type panicAdapter struct{}

func (a *panicAdapter) Source() models.Source { return models.SourceSocial }

func (a *panicAdapter) Fetch(ctx context.Context, limit int) ([]models.RawListing, models.RunTag, error) {
	panic("adapter exploded")
}
