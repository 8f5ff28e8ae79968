package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/tubebrief/tubebrief-backend/internal/models"
)

// SummaryRepository defines summary storage operations
type SummaryRepository interface {
	// FindByExternalID looks up a summary by its (type, external_id) unique
	// key. Returns (nil, nil) when no record exists.
	FindByExternalID(ctx context.Context, summaryType, externalID string) (*models.Summary, error)

	// Upsert creates the record or fully replaces output/usage of the
	// existing one with the same (type, external_id).
	Upsert(ctx context.Context, summary *models.Summary) error

	// ListRecent returns up to limit records of the given type, newest first.
	ListRecent(ctx context.Context, summaryType string, limit int) ([]*models.Summary, error)
}

// UserRepository defines user storage operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
