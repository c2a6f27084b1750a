package repository

import (
	"context"
	"errors"
	"time"

	"github.com/prohmpiriya/session-planner/internal/planner"
)

var (
	ErrDraftNotFound   = errors.New("draft not found")
	ErrVersionConflict = errors.New("draft was modified concurrently")
)

// Draft is a persisted session configuration
type Draft struct {
	ID        string        `json:"id"`
	Version   int64         `json:"version"`
	CreatedBy string        `json:"created_by"`
	State     planner.State `json:"state"`
	// Complete mirrors the completeness of State at save time
	Complete  bool       `json:"complete"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

// DraftRepository defines the interface for draft data access
type DraftRepository interface {
	// Create stores a new draft at version 1
	Create(ctx context.Context, draft *Draft) error
	// GetByID retrieves a draft by ID, nil when it does not exist
	GetByID(ctx context.Context, id string) (*Draft, error)
	// Update saves draft if the stored version equals expectedVersion, then
	// bumps draft.Version
	Update(ctx context.Context, draft *Draft, expectedVersion int64) error
	// Delete soft deletes a draft by ID
	Delete(ctx context.Context, id string) error
	// ListByCreator lists a user's drafts, most recently updated first
	ListByCreator(ctx context.Context, createdBy string, limit, offset int) ([]*Draft, int, error)
}
