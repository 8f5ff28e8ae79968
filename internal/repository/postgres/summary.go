package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/tubebrief/tubebrief-backend/internal/models"
	"github.com/tubebrief/tubebrief-backend/internal/repository"
)

// SummaryRepository implements repository.SummaryRepository using PostgreSQL
type SummaryRepository struct {
	db *sqlx.DB
}

// NewSummaryRepository creates a new PostgreSQL summary repository
func NewSummaryRepository(db *sqlx.DB) repository.SummaryRepository {
	return &SummaryRepository{db: db}
}

// FindByExternalID retrieves a summary by its (type, external_id) key
func (r *SummaryRepository) FindByExternalID(ctx context.Context, summaryType, externalID string) (*models.Summary, error) {
	var summary models.Summary
	query := `
		SELECT id, type, external_id, output, usage, created_at, updated_at
		FROM summaries
		WHERE type = $1 AND external_id = $2
	`

	err := r.db.GetContext(ctx, &summary, query, summaryType, externalID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &summary, nil
}

// Upsert creates or fully replaces a summary record
func (r *SummaryRepository) Upsert(ctx context.Context, summary *models.Summary) error {
	if summary.ID == "" {
		summary.ID = uuid.New().String()
	}
	now := time.Now()
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = now
	}
	summary.UpdatedAt = now

	if summary.Output == nil {
		summary.Output = models.JSONB{}
	}
	if summary.Usage == nil {
		summary.Usage = models.JSONB{}
	}

	query := `
		INSERT INTO summaries (id, type, external_id, output, usage, created_at, updated_at)
		VALUES (:id, :type, :external_id, :output, :usage, :created_at, :updated_at)
		ON CONFLICT (type, external_id) DO UPDATE SET
			output = EXCLUDED.output,
			usage = EXCLUDED.usage,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.NamedExecContext(ctx, query, summary)
	return err
}

// ListRecent retrieves the newest summaries of a type, bounded by limit
func (r *SummaryRepository) ListRecent(ctx context.Context, summaryType string, limit int) ([]*models.Summary, error) {
	var summaries []*models.Summary
	query := `
		SELECT id, type, external_id, output, usage, created_at, updated_at
		FROM summaries
		WHERE type = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	err := r.db.SelectContext(ctx, &summaries, query, summaryType, limit)
	if err != nil {
		return nil, err
	}

	return summaries, nil
}
