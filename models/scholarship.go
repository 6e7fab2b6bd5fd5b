package models

import (
	"time"

	"github.com/google/uuid"
)

// Platform identifies the source family a scholarship listing was discovered on
type Platform string

const (
	PlatformGeneral Platform = "general"
	PlatformForum   Platform = "forum"
	PlatformSocial  Platform = "social"
	PlatformRSS     Platform = "rss"
)

// EnrichmentStatus tracks the two-phase record lifecycle: records start as
// pending, become enriched on a successful detail pass, or terminally failed
// once the retry cap is exhausted
type EnrichmentStatus string

const (
	EnrichmentPending  EnrichmentStatus = "pending"
	EnrichmentEnriched EnrichmentStatus = "enriched"
	EnrichmentFailed   EnrichmentStatus = "failed"
)

// Candidate is a normalized scrape result awaiting deduplication. It exists
// only within a single pipeline run and is never persisted directly; the
// store gateway converts it into a ScholarshipRecord on first sighting of
// its SourceURL.
type Candidate struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	SourceURL      string   `json:"source_url"`
	Platform       Platform `json:"platform"`
	AmountHint     *string  `json:"amount_hint,omitempty"`
	RelevanceScore float64  `json:"relevance_score"`
}

// ScholarshipRecord is the persistent record owned by the repository.
// SourceURL carries the unique index and is the sole deduplication
// fingerprint; Amount, Deadline and EnrichmentStatus are mutated only by
// the enricher.
type ScholarshipRecord struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Title       string    `json:"title" gorm:"type:varchar(500);not null"`
	Description string    `json:"description" gorm:"type:text"`
	Amount      *string   `json:"amount" gorm:"type:varchar(100)"`
	Platform    Platform  `json:"platform" gorm:"type:varchar(20);not null;default:'general'"`
	SourceURL   string    `json:"source_url" gorm:"type:varchar(1000);not null;uniqueIndex"`

	Deadline         *time.Time       `json:"deadline"`
	EnrichmentStatus EnrichmentStatus `json:"enrichment_status" gorm:"type:varchar(20);not null;default:'pending'"`
	EnrichAttempts   int              `json:"enrich_attempts" gorm:"not null;default:0"`

	CreatedAt time.Time `json:"created_at" gorm:"default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `json:"updated_at" gorm:"default:CURRENT_TIMESTAMP"`
}

// NeedsAmount reports whether the enricher should still try to fill Amount
func (r *ScholarshipRecord) NeedsAmount() bool {
	return r.Amount == nil || *r.Amount == ""
}

// NeedsDeadline reports whether the enricher should still try to fill Deadline
func (r *ScholarshipRecord) NeedsDeadline() bool {
	return r.Deadline == nil
}
