package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/prohmpiriya/session-planner/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheClient is the subset of Redis used by CachedDraftRepository
type CacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// CachedDraftRepository is a read-through Redis cache in front of another
// DraftRepository. Writes go to the inner repository first; the cache entry
// is refreshed on success and dropped on failure. Cache errors never fail a
// call.
type CachedDraftRepository struct {
	inner  DraftRepository
	cache  CacheClient
	prefix string
	ttl    time.Duration
	log    *logger.Logger
}

// NewCachedDraftRepository wraps inner with a cache. Keys are prefix + "draft:" + id.
func NewCachedDraftRepository(inner DraftRepository, cache CacheClient, prefix string, ttl time.Duration) *CachedDraftRepository {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &CachedDraftRepository{
		inner:  inner,
		cache:  cache,
		prefix: prefix,
		ttl:    ttl,
		log:    logger.Get().With(zap.String("component", "draft_cache")),
	}
}

func (r *CachedDraftRepository) key(id string) string {
	return r.prefix + "draft:" + id
}

func (r *CachedDraftRepository) Create(ctx context.Context, draft *Draft) error {
	if err := r.inner.Create(ctx, draft); err != nil {
		return err
	}
	r.store(ctx, draft)
	return nil
}

func (r *CachedDraftRepository) GetByID(ctx context.Context, id string) (*Draft, error) {
	raw, err := r.cache.Get(ctx, r.key(id)).Bytes()
	switch {
	case err == nil:
		if draft, decodeErr := decodeCachedDraft(raw); decodeErr == nil {
			return draft, nil
		}
		r.evict(ctx, id)
	case !errors.Is(err, redis.Nil):
		r.log.WarnContext(ctx, "draft cache read failed", zap.String("draft_id", id), zap.Error(err))
	}

	draft, err := r.inner.GetByID(ctx, id)
	if err != nil || draft == nil {
		return draft, err
	}
	r.store(ctx, draft)
	return draft, nil
}

func (r *CachedDraftRepository) Update(ctx context.Context, draft *Draft, expectedVersion int64) error {
	if err := r.inner.Update(ctx, draft, expectedVersion); err != nil {
		r.evict(ctx, draft.ID)
		return err
	}
	r.store(ctx, draft)
	return nil
}

func (r *CachedDraftRepository) Delete(ctx context.Context, id string) error {
	err := r.inner.Delete(ctx, id)
	r.evict(ctx, id)
	return err
}

// ListByCreator is not cached
func (r *CachedDraftRepository) ListByCreator(ctx context.Context, createdBy string, limit, offset int) ([]*Draft, int, error) {
	return r.inner.ListByCreator(ctx, createdBy, limit, offset)
}

func (r *CachedDraftRepository) store(ctx context.Context, draft *Draft) {
	data, err := json.Marshal(draft)
	if err != nil {
		return
	}
	if err := r.cache.Set(ctx, r.key(draft.ID), data, r.ttl).Err(); err != nil {
		r.log.WarnContext(ctx, "draft cache write failed", zap.String("draft_id", draft.ID), zap.Error(err))
	}
}

func (r *CachedDraftRepository) evict(ctx context.Context, id string) {
	if err := r.cache.Del(context.WithoutCancel(ctx), r.key(id)).Err(); err != nil {
		r.log.WarnContext(ctx, "draft cache evict failed", zap.String("draft_id", id), zap.Error(err))
	}
}

func decodeCachedDraft(raw []byte) (*Draft, error) {
	var draft Draft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}
