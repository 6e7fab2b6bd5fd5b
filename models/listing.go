package models

import "time"

// Source names one independently scheduled unit of work, either a source
// adapter family or the enricher.
type Source string

const (
	SourceGeneral  Source = "general"
	SourceForum    Source = "forum"
	SourceSocial   Source = "social"
	SourceRSS      Source = "rss"
	SourceEnricher Source = "enricher"
)

// ParseSource maps an API path parameter to a known source
func ParseSource(s string) (Source, bool) {
	switch Source(s) {
	case SourceGeneral, SourceForum, SourceSocial, SourceRSS, SourceEnricher:
		return Source(s), true
	}
	return "", false
}

// RawListing is the uniform output shape every site-specific parser produces.
// Adapters emit these lazily per run; the normalizer turns them into
// Candidates.
type RawListing struct {
	Title         string `json:"title"`
	URL           string `json:"url"`
	Snippet       string `json:"snippet"`
	PlatformLabel string `json:"platform_label"`
}

// RunTag is the typed outcome of one adapter or enricher run. Adapters never
// surface raw errors to the orchestrator; they report one of these instead.
type RunTag string

const (
	RunTagOK       RunTag = "ok"
	RunTagDegraded RunTag = "degraded"
	RunTagBlocked  RunTag = "blocked"
	RunTagError    RunTag = "error"
)

// SourceRunReport is the run outcome emitted to the observability boundary
// and retained per source by the orchestrator for diagnostics. Never
// persisted.
type SourceRunReport struct {
	Source             Source        `json:"source"`
	Tag                RunTag        `json:"tag"`
	CandidatesSeen     int           `json:"candidates_seen"`
	CandidatesInserted int           `json:"candidates_inserted"`
	Duration           time.Duration `json:"duration"`
	StartedAt          time.Time     `json:"started_at"`
}
