package service

import (
	"context"

	"github.com/prohmpiriya/session-planner/internal/repository"
)

type requesterKey struct{}

// WithRequester limits draft access through ctx to drafts created by userID.
// Contexts without a requester are not restricted.
func WithRequester(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, requesterKey{}, userID)
}

func requesterFrom(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(requesterKey{}).(string)
	return userID, ok
}

// checkOwner returns ErrForbidden when ctx carries a requester other than the draft's creator
func checkOwner(ctx context.Context, draft *repository.Draft) error {
	userID, ok := requesterFrom(ctx)
	if !ok || userID == draft.CreatedBy {
		return nil
	}
	return ErrForbidden
}
