package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/destekhq/ticket-core/internal/domain"
)

// catalogCacheTTL bounds staleness of cached catalog entries. The catalogs are
// seed data and change only on redeploys, so a short TTL is plenty.
const catalogCacheTTL = 5 * time.Minute

// CachedStatusRepository is a read-through Redis cache in front of the status
// catalog. Cache failures degrade to the underlying store; a missing client
// makes it a passthrough.
type CachedStatusRepository struct {
	inner  StatusRepository
	client *redis.Client
}

// NewCachedStatusRepository wraps a status repository with a Redis cache.
func NewCachedStatusRepository(inner StatusRepository, client *redis.Client) *CachedStatusRepository {
	return &CachedStatusRepository{inner: inner, client: client}
}

func (r *CachedStatusRepository) GetByID(ctx context.Context, id int64) (*domain.Status, error) {
	key := fmt.Sprintf("catalog:status:id:%d", id)
	var status domain.Status
	if r.cacheGet(ctx, key, &status) {
		return &status, nil
	}
	fetched, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cacheSet(ctx, key, fetched)
	return fetched, nil
}

func (r *CachedStatusRepository) GetByName(ctx context.Context, name string) (*domain.Status, error) {
	key := "catalog:status:name:" + name
	var status domain.Status
	if r.cacheGet(ctx, key, &status) {
		return &status, nil
	}
	fetched, err := r.inner.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}
	r.cacheSet(ctx, key, fetched)
	return fetched, nil
}

// First is not cached: it is only consulted on the degenerate fallback path.
func (r *CachedStatusRepository) First(ctx context.Context) (*domain.Status, error) {
	return r.inner.First(ctx)
}

func (r *CachedStatusRepository) List(ctx context.Context) ([]domain.Status, error) {
	return r.inner.List(ctx)
}

func (r *CachedStatusRepository) cacheGet(ctx context.Context, key string, dest any) bool {
	if r.client == nil {
		return false
	}
	raw, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (r *CachedStatusRepository) cacheSet(ctx context.Context, key string, value any) {
	if r.client == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	_ = r.client.Set(ctx, key, raw, catalogCacheTTL).Err()
}

// CachedPriorityRepository mirrors CachedStatusRepository for priorities.
type CachedPriorityRepository struct {
	inner  PriorityRepository
	client *redis.Client
}

// NewCachedPriorityRepository wraps a priority repository with a Redis cache.
func NewCachedPriorityRepository(inner PriorityRepository, client *redis.Client) *CachedPriorityRepository {
	return &CachedPriorityRepository{inner: inner, client: client}
}

func (r *CachedPriorityRepository) GetByID(ctx context.Context, id int64) (*domain.Priority, error) {
	key := fmt.Sprintf("catalog:priority:id:%d", id)
	if r.client != nil {
		if raw, err := r.client.Get(ctx, key).Bytes(); err == nil {
			var priority domain.Priority
			if json.Unmarshal(raw, &priority) == nil {
				return &priority, nil
			}
		}
	}
	fetched, err := r.inner.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.client != nil {
		if raw, err := json.Marshal(fetched); err == nil {
			_ = r.client.Set(ctx, key, raw, catalogCacheTTL).Err()
		}
	}
	return fetched, nil
}

func (r *CachedPriorityRepository) First(ctx context.Context) (*domain.Priority, error) {
	return r.inner.First(ctx)
}

func (r *CachedPriorityRepository) List(ctx context.Context) ([]domain.Priority, error) {
	return r.inner.List(ctx)
}
