package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/fenilmodi00/scholarship-backend/models"
	"github.com/fenilmodi00/scholarship-backend/services"
	"github.com/fenilmodi00/scholarship-backend/shared"
)

// sourceSchedules maps each scheduled unit of work to its cron cadence.
// Discovery sources poll frequently; social is hourly at :15 to stay under
// the platform's radar; enrichment trails discovery on its own cadence.
var sourceSchedules = map[models.Source]string{
	models.SourceGeneral:  "*/5 * * * *",
	models.SourceForum:    "*/5 * * * *",
	models.SourceRSS:      "*/15 * * * *",
	models.SourceSocial:   "15 * * * *",
	models.SourceEnricher: "*/10 * * * *",
}

// Orchestrator owns the scheduling of every pipeline run. It guarantees at
// most one in-flight run per source: scheduled ticks and manual triggers that
// land while a source is busy are skipped, never queued. A source whose run
// came back blocked enters a cooldown window during which scheduled runs are
// skipped too; manual triggers bypass cooldown but still respect the
// in-flight guarantee.
type Orchestrator struct {
	Runner   *services.PipelineRunner
	Enricher *services.Enricher
	Adapters map[models.Source]services.SourceAdapter
	Metrics  *shared.PipelineMetrics

	RunTimeBudget    time.Duration
	BlockCooldown    time.Duration
	EnrichBatchLimit int

	cron          *cron.Cron
	mutex         sync.Mutex
	inFlight      map[models.Source]bool
	cooldownUntil map[models.Source]time.Time
	lastReports   map[models.Source]models.SourceRunReport
}

// NewOrchestrator wires the orchestrator over the given runner, enricher and
// adapter set
func NewOrchestrator(runner *services.PipelineRunner, enricher *services.Enricher, adapters map[models.Source]services.SourceAdapter, metrics *shared.PipelineMetrics, runTimeBudget, blockCooldown time.Duration, enrichBatchLimit int) *Orchestrator {
	return &Orchestrator{
		Runner:           runner,
		Enricher:         enricher,
		Adapters:         adapters,
		Metrics:          metrics,
		RunTimeBudget:    runTimeBudget,
		BlockCooldown:    blockCooldown,
		EnrichBatchLimit: enrichBatchLimit,
		inFlight:         make(map[models.Source]bool),
		cooldownUntil:    make(map[models.Source]time.Time),
		lastReports:      make(map[models.Source]models.SourceRunReport),
	}
}

// Start registers every source on its cadence and starts the scheduler
func (o *Orchestrator) Start() error {
	o.cron = cron.New()

	for source, schedule := range sourceSchedules {
		if source != models.SourceEnricher {
			if _, exists := o.Adapters[source]; !exists {
				logrus.WithField("source", source).Warn("No adapter registered for source, skipping schedule")
				continue
			}
		}

		src := source
		if _, err := o.cron.AddFunc(schedule, func() { o.scheduledRun(src) }); err != nil {
			return err
		}

		logrus.WithFields(logrus.Fields{
			"component": "Orchestrator",
			"source":    source,
			"schedule":  schedule,
		}).Info("Registered source schedule")
	}

	o.cron.Start()
	logrus.WithField("component", "Orchestrator").Info("Pipeline orchestrator started")
	return nil
}

// Stop halts the scheduler and waits for in-flight runs to finish
func (o *Orchestrator) Stop() {
	if o.cron == nil {
		return
	}
	ctx := o.cron.Stop()
	<-ctx.Done()
	logrus.WithField("component", "Orchestrator").Info("Pipeline orchestrator stopped")
}

// Trigger requests an immediate run of one source. Returns false when the
// source already has a run in flight; cooldown does not apply to manual
// triggers.
func (o *Orchestrator) Trigger(source models.Source) bool {
	if !o.acquire(source, true) {
		logrus.WithFields(logrus.Fields{
			"component": "Orchestrator",
			"source":    source,
		}).Info("Manual trigger skipped, run already in flight")
		return false
	}

	go o.execute(source)
	return true
}

// LastReports returns a copy of the most recent run report per source
func (o *Orchestrator) LastReports() []models.SourceRunReport {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	reports := make([]models.SourceRunReport, 0, len(o.lastReports))
	for _, report := range o.lastReports {
		reports = append(reports, report)
	}
	return reports
}

// scheduledRun is the cron entry point for one source
func (o *Orchestrator) scheduledRun(source models.Source) {
	if !o.acquire(source, false) {
		logrus.WithFields(logrus.Fields{
			"component": "Orchestrator",
			"source":    source,
		}).Debug("Scheduled run skipped")
		return
	}
	o.execute(source)
}

// acquire claims the in-flight slot for a source. Scheduled runs additionally
// honor the cooldown window; manual triggers ignore it.
func (o *Orchestrator) acquire(source models.Source, manual bool) bool {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if o.inFlight[source] {
		return false
	}
	if !manual {
		if until, exists := o.cooldownUntil[source]; exists && time.Now().Before(until) {
			logrus.WithFields(logrus.Fields{
				"component":      "Orchestrator",
				"source":         source,
				"cooldown_until": until,
			}).Info("Source in cooldown, skipping scheduled run")
			return false
		}
	}

	o.inFlight[source] = true
	return true
}

// execute performs one run under the run time budget, records the outcome
// and releases the in-flight slot. A panicking run is contained and reported
// as an error outcome.
func (o *Orchestrator) execute(source models.Source) {
	ctx, cancel := context.WithTimeout(context.Background(), o.RunTimeBudget)

	var report models.SourceRunReport

	func() {
		defer func() {
			if r := recover(); r != nil {
				logrus.WithFields(logrus.Fields{
					"component": "Orchestrator",
					"source":    source,
					"panic":     r,
				}).Error("Run panicked")
				report = models.SourceRunReport{
					Source:    source,
					Tag:       models.RunTagError,
					StartedAt: time.Now(),
				}
			}
		}()

		if source == models.SourceEnricher {
			report = o.runEnricher(ctx)
		} else {
			report = o.Runner.Run(ctx, o.Adapters[source])
		}
	}()

	cancel()
	o.finish(source, report)
}

// runEnricher adapts an enrichment batch into the common report shape
func (o *Orchestrator) runEnricher(ctx context.Context) models.SourceRunReport {
	startedAt := time.Now()

	batch, err := o.Enricher.Enrich(ctx, o.EnrichBatchLimit)

	report := models.SourceRunReport{
		Source:             models.SourceEnricher,
		Tag:                models.RunTagOK,
		CandidatesSeen:     batch.Attempted,
		CandidatesInserted: batch.Enriched,
		Duration:           time.Since(startedAt),
		StartedAt:          startedAt,
	}
	if err != nil {
		report.Tag = models.RunTagError
		logrus.WithError(err).WithField("component", "Orchestrator").Error("Enrichment run failed")
	} else if batch.Failed > 0 {
		report.Tag = models.RunTagDegraded
	}
	return report
}

// finish records the run outcome, applies cooldown after a blocked run and
// frees the source for its next run
func (o *Orchestrator) finish(source models.Source, report models.SourceRunReport) {
	o.Metrics.ForSource(string(source)).RecordRun(string(report.Tag), report.CandidatesSeen, report.CandidatesInserted, report.Duration)

	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.lastReports[source] = report
	delete(o.inFlight, source)

	if report.Tag == models.RunTagBlocked && o.BlockCooldown > 0 {
		until := time.Now().Add(o.BlockCooldown)
		o.cooldownUntil[source] = until
		logrus.WithFields(logrus.Fields{
			"component":      "Orchestrator",
			"source":         source,
			"cooldown_until": until,
		}).Warn("Source blocked, entering cooldown")
	}
}
