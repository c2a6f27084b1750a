package service

import (
	"context"

	"github.com/prohmpiriya/session-planner/internal/dto"
)

// SessionConfigService defines the interface for session configuration drafts
type SessionConfigService interface {
	// CreateDraft starts a new draft owned by createdBy
	CreateDraft(ctx context.Context, createdBy string, req *dto.CreateDraftRequest) (*dto.DraftResponse, error)
	// GetDraft retrieves a draft by ID
	GetDraft(ctx context.Context, id string) (*dto.DraftResponse, error)
	// ListDrafts lists drafts with filters and pagination
	ListDrafts(ctx context.Context, filter *dto.DraftListFilter) ([]*dto.DraftResponse, int, error)
	// DeleteDraft soft deletes a draft
	DeleteDraft(ctx context.Context, id string) error
	// ApplyAction applies one operator action and saves the new version
	ApplyAction(ctx context.Context, id string, req *dto.ActionRequest) (*dto.ActionResponse, error)
	// Payload returns the serialized configuration of a draft
	Payload(ctx context.Context, id string) (*dto.Payload, error)
	// Completeness reports whether a draft can be submitted
	Completeness(ctx context.Context, id string) (*dto.CompletenessResponse, error)
	// Wait blocks until background event publishing has finished
	Wait()
}
