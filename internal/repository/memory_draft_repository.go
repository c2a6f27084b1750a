package repository

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
	"time"
)

// MemoryDraftRepository keeps drafts in process memory. Drafts are copied on
// the way in and out so callers never share state with the store.
type MemoryDraftRepository struct {
	mu     sync.RWMutex
	drafts map[string]*Draft
}

// NewMemoryDraftRepository creates an empty MemoryDraftRepository
func NewMemoryDraftRepository() *MemoryDraftRepository {
	return &MemoryDraftRepository{drafts: make(map[string]*Draft)}
}

func (r *MemoryDraftRepository) Create(ctx context.Context, draft *Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	draft.Version = 1
	stored, err := copyDraft(draft)
	if err != nil {
		return err
	}
	r.drafts[draft.ID] = stored
	return nil
}

func (r *MemoryDraftRepository) GetByID(ctx context.Context, id string) (*Draft, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.drafts[id]
	if !ok || d.DeletedAt != nil {
		return nil, nil
	}
	return copyDraft(d)
}

func (r *MemoryDraftRepository) Update(ctx context.Context, draft *Draft, expectedVersion int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.drafts[draft.ID]
	if !ok || current.DeletedAt != nil {
		return ErrDraftNotFound
	}
	if current.Version != expectedVersion {
		return ErrVersionConflict
	}

	draft.Version = expectedVersion + 1
	draft.UpdatedAt = time.Now()
	draft.CreatedAt = current.CreatedAt
	draft.CreatedBy = current.CreatedBy
	stored, err := copyDraft(draft)
	if err != nil {
		return err
	}
	r.drafts[draft.ID] = stored
	return nil
}

func (r *MemoryDraftRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.drafts[id]
	if !ok || d.DeletedAt != nil {
		return ErrDraftNotFound
	}
	now := time.Now()
	d.DeletedAt = &now
	return nil
}

func (r *MemoryDraftRepository) ListByCreator(ctx context.Context, createdBy string, limit, offset int) ([]*Draft, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []*Draft
	for _, d := range r.drafts {
		if d.CreatedBy == createdBy && d.DeletedAt == nil {
			matched = append(matched, d)
		}
	}
	slices.SortFunc(matched, func(a, b *Draft) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	total := len(matched)
	if offset >= total {
		return nil, total, nil
	}
	end := min(offset+limit, total)

	page := make([]*Draft, 0, end-offset)
	for _, d := range matched[offset:end] {
		c, err := copyDraft(d)
		if err != nil {
			return nil, 0, err
		}
		page = append(page, c)
	}
	return page, total, nil
}

// copyDraft deep copies a draft through its JSON encoding, the same form the
// cache and the Postgres store persist
func copyDraft(d *Draft) (*Draft, error) {
	raw, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	var out Draft
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
