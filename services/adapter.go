package services

import (
	"context"

	"github.com/fenilmodi00/scholarship-backend/models"
)

// SourceAdapter retrieves raw listings from one source family, encapsulating
// that family's fallback policy internally. Each Fetch invocation starts a
// fresh search; runs are not restartable midway. Adapters never surface raw
// errors for expected degradation — the run tag carries the outcome — and
// the returned error is reserved for unexpected internal failures the
// orchestrator logs as tag error.
type SourceAdapter interface {
	Source() models.Source
	Fetch(ctx context.Context, limit int) ([]models.RawListing, models.RunTag, error)
}
