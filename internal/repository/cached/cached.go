// Package cached provides a read-through caching decorator for any
// repository. By-ID lookups are served from an expiring in-memory cache;
// every write or delete invalidates the affected entries.
package cached

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"rowstore/internal/repository"
)

// Repo wraps an inner repository with a go-cache instance. Only by-ID reads
// are cached; FindAll and FindByIDs always hit the backend so ordering and
// cardinality come straight from it, though FindByIDs warms the cache with
// what it fetched.
type Repo[K repository.Key, T any] struct {
	inner repository.Repository[K, T]
	idOf  func(T) (K, bool)
	cache *gocache.Cache
	ttl   time.Duration
}

// New wraps inner with a cache holding entries for ttl. The mapping supplies
// the key accessor used to index fetched rows.
func New[K repository.Key, T any](inner repository.Repository[K, T], m repository.Mapping[K, T], ttl time.Duration) *Repo[K, T] {
	return &Repo[K, T]{
		inner: inner,
		idOf:  m.ID,
		cache: gocache.New(ttl, time.Minute),
		ttl:   ttl,
	}
}

func cacheKey[K repository.Key](id K) string {
	return fmt.Sprintf("%v", id)
}

// CreateSchema delegates to the inner repository.
func (r *Repo[K, T]) CreateSchema(ctx context.Context) error {
	return r.inner.CreateSchema(ctx)
}

// DropSchema delegates and flushes the cache.
func (r *Repo[K, T]) DropSchema(ctx context.Context) error {
	if err := r.inner.DropSchema(ctx); err != nil {
		return err
	}
	r.cache.Flush()
	return nil
}

// Save delegates and invalidates the saved row's entry.
func (r *Repo[K, T]) Save(ctx context.Context, row T) (K, error) {
	id, err := r.inner.Save(ctx, row)
	if err != nil {
		return id, err
	}
	r.cache.Delete(cacheKey(id))
	return id, nil
}

// SaveAll delegates and invalidates every affected entry.
func (r *Repo[K, T]) SaveAll(ctx context.Context, rows []T) ([]K, error) {
	ids, err := r.inner.SaveAll(ctx, rows)
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		r.cache.Delete(cacheKey(id))
	}
	return ids, nil
}

// FindByID serves from cache when possible.
func (r *Repo[K, T]) FindByID(ctx context.Context, id K) (*T, error) {
	if v, ok := r.cache.Get(cacheKey(id)); ok {
		row := v.(T)
		return &row, nil
	}
	row, err := r.inner.FindByID(ctx, id)
	if err != nil || row == nil {
		return row, err
	}
	r.cache.Set(cacheKey(id), *row, r.ttl)
	return row, nil
}

// FindExistingByID serves from cache when possible, returning ErrNotFound
// through the inner repository on a miss with no backing row.
func (r *Repo[K, T]) FindExistingByID(ctx context.Context, id K) (T, error) {
	if v, ok := r.cache.Get(cacheKey(id)); ok {
		return v.(T), nil
	}
	row, err := r.inner.FindExistingByID(ctx, id)
	if err != nil {
		return row, err
	}
	r.cache.Set(cacheKey(id), row, r.ttl)
	return row, nil
}

// FindAll always hits the backend.
func (r *Repo[K, T]) FindAll(ctx context.Context) ([]T, error) {
	return r.inner.FindAll(ctx)
}

// FindByIDs hits the backend and warms the cache with the result.
func (r *Repo[K, T]) FindByIDs(ctx context.Context, ids []K) ([]T, error) {
	rows, err := r.inner.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		if id, present := r.idOf(row); present {
			r.cache.Set(cacheKey(id), row, r.ttl)
		}
	}
	return rows, nil
}

// CopyAndSave delegates; the new row has no cached entry to invalidate.
func (r *Repo[K, T]) CopyAndSave(ctx context.Context, id K) (K, error) {
	return r.inner.CopyAndSave(ctx, id)
}

// DeleteByID delegates and invalidates the entry.
func (r *Repo[K, T]) DeleteByID(ctx context.Context, id K) error {
	if err := r.inner.DeleteByID(ctx, id); err != nil {
		return err
	}
	r.cache.Delete(cacheKey(id))
	return nil
}

// DeleteAll delegates and flushes the cache.
func (r *Repo[K, T]) DeleteAll(ctx context.Context) error {
	if err := r.inner.DeleteAll(ctx); err != nil {
		return err
	}
	r.cache.Flush()
	return nil
}
