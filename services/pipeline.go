package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/fenilmodi00/scholarship-backend/models"
)

// PipelineRunner executes one discovery run end to end: fetch raw listings
// from an adapter, normalize them into candidates, and write each candidate
// through the deduplicating store. One runner is shared by all sources; the
// adapter supplies everything source-specific.
type PipelineRunner struct {
	Normalizer *Normalizer
	Store      *ScholarshipStore
	FetchLimit int
}

// NewPipelineRunner creates a pipeline runner over the given normalizer and store
func NewPipelineRunner(normalizer *Normalizer, store *ScholarshipStore, fetchLimit int) *PipelineRunner {
	return &PipelineRunner{
		Normalizer: normalizer,
		Store:      store,
		FetchLimit: fetchLimit,
	}
}

// Run executes one discovery run for the given adapter and reports the
// outcome. A blocked or errored fetch still produces a report; per-candidate
// store failures are logged and skipped so one bad row never sinks a run.
func (p *PipelineRunner) Run(ctx context.Context, adapter SourceAdapter) models.SourceRunReport {
	source := adapter.Source()
	startedAt := time.Now()

	logger := logrus.WithFields(logrus.Fields{
		"component": "PipelineRunner",
		"source":    source,
	})
	logger.Info("Starting discovery run")

	report := models.SourceRunReport{
		Source:    source,
		StartedAt: startedAt,
	}

	listings, tag, err := adapter.Fetch(ctx, p.FetchLimit)
	report.Tag = tag
	if err != nil {
		logger.WithError(err).WithField("tag", tag).Warn("Adapter fetch did not complete cleanly")
	}
	if ctx.Err() != nil {
		// The run outlived its wall-clock budget; abandon it without
		// attempting further writes
		report.Tag = models.RunTagError
		report.Duration = time.Since(startedAt)
		logger.Warn("Run abandoned after exceeding its time budget")
		return report
	}

	for i := range listings {
		candidate, ok := p.Normalizer.Normalize(listings[i])
		if !ok {
			continue
		}
		report.CandidatesSeen++

		outcome, insertErr := p.Store.InsertIfNew(ctx, candidate)
		if insertErr != nil {
			logger.WithError(insertErr).WithField("source_url", candidate.SourceURL).Error("Failed to persist candidate")
			continue
		}
		if outcome == OutcomeInserted {
			report.CandidatesInserted++
		}
	}

	report.Duration = time.Since(startedAt)

	logger.WithFields(logrus.Fields{
		"tag":                 report.Tag,
		"listings_fetched":    len(listings),
		"candidates_seen":     report.CandidatesSeen,
		"candidates_inserted": report.CandidatesInserted,
		"duration":            report.Duration,
	}).Info("Discovery run complete")

	return report
}
