package shared

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// SourceMetrics tracks run outcomes for one source over the lifetime of the
// process. The orchestrator records a sample after every run; handlers read
// snapshots for diagnostics.
type SourceMetrics struct {
	Source             string        `json:"source"`
	TotalRuns          int64         `json:"total_runs"`
	OKRuns             int64         `json:"ok_runs"`
	DegradedRuns       int64         `json:"degraded_runs"`
	BlockedRuns        int64         `json:"blocked_runs"`
	ErrorRuns          int64         `json:"error_runs"`
	CandidatesSeen     int64         `json:"candidates_seen"`
	CandidatesInserted int64         `json:"candidates_inserted"`
	TotalRunTime       time.Duration `json:"total_run_time"`
	AverageRunTime     time.Duration `json:"average_run_time"`
	LastRunAt          time.Time     `json:"last_run_at"`
	LastTag            string        `json:"last_tag"`
	mutex              sync.RWMutex
}

// NewSourceMetrics creates a metrics tracker for one source
func NewSourceMetrics(source string) *SourceMetrics {
	return &SourceMetrics{Source: source}
}

// RecordRun records the outcome of one completed run
func (m *SourceMetrics) RecordRun(tag string, seen, inserted int, duration time.Duration) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.TotalRuns++
	switch tag {
	case "ok":
		m.OKRuns++
	case "degraded":
		m.DegradedRuns++
	case "blocked":
		m.BlockedRuns++
	default:
		m.ErrorRuns++
	}

	m.CandidatesSeen += int64(seen)
	m.CandidatesInserted += int64(inserted)
	m.TotalRunTime += duration
	m.AverageRunTime = time.Duration(int64(m.TotalRunTime) / m.TotalRuns)
	m.LastRunAt = time.Now()
	m.LastTag = tag
}

// GetSnapshot returns a copy of the current metrics without the mutex
func (m *SourceMetrics) GetSnapshot() SourceMetrics {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	return SourceMetrics{
		Source:             m.Source,
		TotalRuns:          m.TotalRuns,
		OKRuns:             m.OKRuns,
		DegradedRuns:       m.DegradedRuns,
		BlockedRuns:        m.BlockedRuns,
		ErrorRuns:          m.ErrorRuns,
		CandidatesSeen:     m.CandidatesSeen,
		CandidatesInserted: m.CandidatesInserted,
		TotalRunTime:       m.TotalRunTime,
		AverageRunTime:     m.AverageRunTime,
		LastRunAt:          m.LastRunAt,
		LastTag:            m.LastTag,
	}
}

// LogSummary logs a summary of the source's run history
func (m *SourceMetrics) LogSummary() {
	snapshot := m.GetSnapshot()

	logrus.WithFields(logrus.Fields{
		"source":              snapshot.Source,
		"total_runs":          snapshot.TotalRuns,
		"ok_runs":             snapshot.OKRuns,
		"degraded_runs":       snapshot.DegradedRuns,
		"blocked_runs":        snapshot.BlockedRuns,
		"error_runs":          snapshot.ErrorRuns,
		"candidates_seen":     snapshot.CandidatesSeen,
		"candidates_inserted": snapshot.CandidatesInserted,
		"average_run_time":    snapshot.AverageRunTime,
		"last_tag":            snapshot.LastTag,
	}).Info("Source run metrics summary")
}

// PipelineMetrics aggregates per-source metrics for the whole pipeline
type PipelineMetrics struct {
	sources map[string]*SourceMetrics
	mutex   sync.RWMutex
}

// NewPipelineMetrics creates an empty pipeline metrics registry
func NewPipelineMetrics() *PipelineMetrics {
	return &PipelineMetrics{
		sources: make(map[string]*SourceMetrics),
	}
}

// ForSource returns the metrics tracker for a source, creating it on first use
func (p *PipelineMetrics) ForSource(source string) *SourceMetrics {
	p.mutex.RLock()
	if m, exists := p.sources[source]; exists {
		p.mutex.RUnlock()
		return m
	}
	p.mutex.RUnlock()

	p.mutex.Lock()
	defer p.mutex.Unlock()
	if m, exists := p.sources[source]; exists {
		return m
	}
	m := NewSourceMetrics(source)
	p.sources[source] = m
	return m
}

// Snapshots returns a snapshot of every tracked source
func (p *PipelineMetrics) Snapshots() []SourceMetrics {
	p.mutex.RLock()
	defer p.mutex.RUnlock()

	snapshots := make([]SourceMetrics, 0, len(p.sources))
	for _, m := range p.sources {
		snapshots = append(snapshots, m.GetSnapshot())
	}
	return snapshots
}
