package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/fenilmodi00/scholarship-backend/jobs"
	"github.com/fenilmodi00/scholarship-backend/models"
	"github.com/fenilmodi00/scholarship-backend/shared"
)

// ScrapeHandler exposes manual pipeline control: trigger a source run,
// trigger an enrichment batch, and inspect recent run outcomes.
type ScrapeHandler struct {
	Orchestrator *jobs.Orchestrator
	Metrics      *shared.PipelineMetrics
}

func NewScrapeHandler(orchestrator *jobs.Orchestrator, metrics *shared.PipelineMetrics) *ScrapeHandler {
	return &ScrapeHandler{Orchestrator: orchestrator, Metrics: metrics}
}

// TriggerSource schedules an immediate run for one source. Responds 202 with
// scheduled=false when a run for that source is already in flight.
func (h *ScrapeHandler) TriggerSource(c *fiber.Ctx) error {
	source, ok := models.ParseSource(c.Params("source"))
	if !ok || source == models.SourceEnricher {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Unknown source: " + c.Params("source"),
		})
	}

	scheduled := h.Orchestrator.Trigger(source)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"source":    source,
			"scheduled": scheduled,
		},
	})
}

// TriggerEnrichment schedules an immediate enrichment batch
func (h *ScrapeHandler) TriggerEnrichment(c *fiber.Ctx) error {
	scheduled := h.Orchestrator.Trigger(models.SourceEnricher)
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"source":    models.SourceEnricher,
			"scheduled": scheduled,
		},
	})
}

// GetRuns reports the most recent run per source plus lifetime counters
func (h *ScrapeHandler) GetRuns(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data": fiber.Map{
			"last_runs": h.Orchestrator.LastReports(),
			"metrics":   h.Metrics.Snapshots(),
		},
	})
}
