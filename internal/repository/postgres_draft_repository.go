package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresDraftRepository implements DraftRepository using PostgreSQL. The
// planner state is stored as JSONB.
type PostgresDraftRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresDraftRepository creates a new PostgresDraftRepository
func NewPostgresDraftRepository(pool *pgxpool.Pool) *PostgresDraftRepository {
	return &PostgresDraftRepository{pool: pool}
}

// Create creates a new draft
func (r *PostgresDraftRepository) Create(ctx context.Context, draft *Draft) error {
	state, err := json.Marshal(draft.State)
	if err != nil {
		return fmt.Errorf("encode draft state: %w", err)
	}

	query := `
		INSERT INTO session_config_drafts (id, version, created_by, state, complete, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	draft.Version = 1
	_, err = r.pool.Exec(ctx, query,
		draft.ID,
		draft.Version,
		draft.CreatedBy,
		state,
		draft.Complete,
		draft.CreatedAt,
		draft.UpdatedAt,
	)
	return err
}

// GetByID retrieves a draft by ID
func (r *PostgresDraftRepository) GetByID(ctx context.Context, id string) (*Draft, error) {
	query := `
		SELECT id, version, created_by, state, complete, created_at, updated_at, deleted_at
		FROM session_config_drafts
		WHERE id = $1 AND deleted_at IS NULL
	`
	draft, err := scanDraft(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return draft, nil
}

// Update saves a draft under an optimistic version check
func (r *PostgresDraftRepository) Update(ctx context.Context, draft *Draft, expectedVersion int64) error {
	state, err := json.Marshal(draft.State)
	if err != nil {
		return fmt.Errorf("encode draft state: %w", err)
	}

	query := `
		UPDATE session_config_drafts
		SET state = $3, complete = $4, version = version + 1, updated_at = $5
		WHERE id = $1 AND version = $2 AND deleted_at IS NULL
		RETURNING version
	`
	now := time.Now()
	var version int64
	err = r.pool.QueryRow(ctx, query, draft.ID, expectedVersion, state, draft.Complete, now).Scan(&version)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return err
		}
		exists, existsErr := r.exists(ctx, draft.ID)
		if existsErr != nil {
			return existsErr
		}
		if !exists {
			return ErrDraftNotFound
		}
		return ErrVersionConflict
	}

	draft.Version = version
	draft.UpdatedAt = now
	return nil
}

// Delete soft deletes a draft by ID
func (r *PostgresDraftRepository) Delete(ctx context.Context, id string) error {
	query := `
		UPDATE session_config_drafts
		SET deleted_at = $2
		WHERE id = $1 AND deleted_at IS NULL
	`
	result, err := r.pool.Exec(ctx, query, id, time.Now())
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrDraftNotFound
	}
	return nil
}

// ListByCreator lists drafts created by a user with pagination
func (r *PostgresDraftRepository) ListByCreator(ctx context.Context, createdBy string, limit, offset int) ([]*Draft, int, error) {
	countQuery := `SELECT COUNT(*) FROM session_config_drafts WHERE created_by = $1 AND deleted_at IS NULL`
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, createdBy).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `
		SELECT id, version, created_by, state, complete, created_at, updated_at, deleted_at
		FROM session_config_drafts
		WHERE created_by = $1 AND deleted_at IS NULL
		ORDER BY updated_at DESC
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, createdBy, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var drafts []*Draft
	for rows.Next() {
		draft, err := scanDraft(rows)
		if err != nil {
			return nil, 0, err
		}
		drafts = append(drafts, draft)
	}
	return drafts, total, rows.Err()
}

func (r *PostgresDraftRepository) exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM session_config_drafts WHERE id = $1 AND deleted_at IS NULL)`, id,
	).Scan(&exists)
	return exists, err
}

func scanDraft(row pgx.Row) (*Draft, error) {
	draft := &Draft{}
	var state []byte
	err := row.Scan(
		&draft.ID,
		&draft.Version,
		&draft.CreatedBy,
		&state,
		&draft.Complete,
		&draft.CreatedAt,
		&draft.UpdatedAt,
		&draft.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(state, &draft.State); err != nil {
		return nil, fmt.Errorf("decode draft %s state: %w", draft.ID, err)
	}
	return draft, nil
}
