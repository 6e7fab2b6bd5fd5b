package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fenilmodi00/scholarship-backend/models"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// InsertOutcome is the typed result of a deduplicating insert
type InsertOutcome string

const (
	OutcomeInserted         InsertOutcome = "inserted"
	OutcomeSkippedDuplicate InsertOutcome = "skipped_duplicate"
)

// ScholarshipStore is the gateway between the pipeline and the repository.
// It owns deduplication: candidate uniqueness is enforced by the
// source_url unique index in a single constrained write, never by a
// separate read-then-write sequence, so concurrent runs cannot race a
// duplicate row into existence.
type ScholarshipStore struct {
	DB *sql.DB
}

// NewScholarshipStore creates a store gateway over the given connection pool
func NewScholarshipStore(db *sql.DB) *ScholarshipStore {
	return &ScholarshipStore{DB: db}
}

const scholarshipColumns = `id, title, description, amount, platform, source_url, deadline, enrichment_status, enrich_attempts, created_at, updated_at`

// InsertIfNew persists a candidate on first sighting of its source_url and
// reports skipped_duplicate otherwise. Idempotent by construction:
// re-running the same scrape never creates a second record, even across
// process restarts or concurrent runs.
func (s *ScholarshipStore) InsertIfNew(ctx context.Context, candidate *models.Candidate) (InsertOutcome, error) {
	query := `
		INSERT INTO scholarships (title, description, amount, platform, source_url, enrichment_status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		ON CONFLICT (source_url) DO NOTHING;
	`

	result, err := s.DB.ExecContext(ctx, query,
		candidate.Title, candidate.Description, candidate.AmountHint,
		candidate.Platform, candidate.SourceURL,
	)
	if err != nil {
		// A unique violation still counts as the expected duplicate
		// outcome should the conflict target ever be bypassed
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return OutcomeSkippedDuplicate, nil
		}
		return "", fmt.Errorf("failed to insert scholarship for %s: %w", candidate.SourceURL, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return "", fmt.Errorf("failed to read insert result for %s: %w", candidate.SourceURL, err)
	}

	if rowsAffected == 0 {
		return OutcomeSkippedDuplicate, nil
	}

	logrus.WithFields(logrus.Fields{
		"component":  "ScholarshipStore",
		"source_url": candidate.SourceURL,
		"platform":   candidate.Platform,
	}).Debug("Inserted new scholarship record")

	return OutcomeInserted, nil
}

// FindByURL looks a record up by its deduplication fingerprint
func (s *ScholarshipStore) FindByURL(ctx context.Context, sourceURL string) (*models.ScholarshipRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM scholarships WHERE source_url = $1;`, scholarshipColumns)

	record, err := scanScholarship(s.DB.QueryRowContext(ctx, query, sourceURL))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find scholarship by url: %w", err)
	}
	return record, nil
}

// GetByID fetches one record by id
func (s *ScholarshipStore) GetByID(ctx context.Context, id string) (*models.ScholarshipRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM scholarships WHERE id = $1;`, scholarshipColumns)

	record, err := scanScholarship(s.DB.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scholarship by id: %w", err)
	}
	return record, nil
}

// GetScholarships lists stored records, newest first
func (s *ScholarshipStore) GetScholarships(ctx context.Context, limit, offset int) ([]models.ScholarshipRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM scholarships
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2;
	`, scholarshipColumns)

	rows, err := s.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list scholarships: %w", err)
	}
	defer rows.Close()

	return scanScholarships(rows)
}

// ListPendingEnrichment returns up to limit records still awaiting
// enrichment, oldest first. Records that reached terminal failed are
// excluded permanently.
func (s *ScholarshipStore) ListPendingEnrichment(ctx context.Context, limit int) ([]models.ScholarshipRecord, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM scholarships
		WHERE enrichment_status = 'pending'
		ORDER BY created_at ASC
		LIMIT $1;
	`, scholarshipColumns)

	rows, err := s.DB.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending enrichment: %w", err)
	}
	defer rows.Close()

	return scanScholarships(rows)
}

// MarkEnriched records a successful enrichment pass. Amount is only written
// when the record had none; deadline likewise.
func (s *ScholarshipStore) MarkEnriched(ctx context.Context, record *models.ScholarshipRecord, amount *string, deadline *sql.NullTime) error {
	query := `
		UPDATE scholarships
		SET amount = COALESCE(amount, $2),
		    deadline = COALESCE(deadline, $3),
		    enrichment_status = 'enriched',
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1;
	`

	_, err := s.DB.ExecContext(ctx, query, record.ID, amount, deadline)
	if err != nil {
		return fmt.Errorf("failed to mark scholarship %s enriched: %w", record.ID, err)
	}
	return nil
}

// RecordEnrichmentFailure counts a failed enrichment attempt against the
// record. Below the retry cap the record stays pending and is eligible for a
// future pass; at the cap its status becomes terminal failed and it leaves
// the enrichment pool for good.
func (s *ScholarshipStore) RecordEnrichmentFailure(ctx context.Context, record *models.ScholarshipRecord, retryCap int) error {
	query := `
		UPDATE scholarships
		SET enrich_attempts = enrich_attempts + 1,
		    enrichment_status = CASE WHEN enrich_attempts + 1 >= $2 THEN 'failed' ELSE 'pending' END,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1;
	`

	_, err := s.DB.ExecContext(ctx, query, record.ID, retryCap)
	if err != nil {
		return fmt.Errorf("failed to record enrichment failure for %s: %w", record.ID, err)
	}
	return nil
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanScholarship(row rowScanner) (*models.ScholarshipRecord, error) {
	var record models.ScholarshipRecord
	var amount sql.NullString
	var deadline sql.NullTime

	err := row.Scan(
		&record.ID, &record.Title, &record.Description, &amount,
		&record.Platform, &record.SourceURL, &deadline,
		&record.EnrichmentStatus, &record.EnrichAttempts,
		&record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if amount.Valid {
		record.Amount = &amount.String
	}
	if deadline.Valid {
		record.Deadline = &deadline.Time
	}

	return &record, nil
}

func scanScholarships(rows *sql.Rows) ([]models.ScholarshipRecord, error) {
	var records []models.ScholarshipRecord
	for rows.Next() {
		record, err := scanScholarship(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scholarship row: %w", err)
		}
		records = append(records, *record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scholarship row iteration failed: %w", err)
	}
	return records, nil
}
