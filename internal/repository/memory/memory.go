// Package memory implements the repository contract over an in-process map.
// It backs tests and embedded use where no database is wanted; behavior
// mirrors the SQL implementation, including key assignment and absence
// semantics.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"rowstore/internal/repository"
)

// Repo is a mutex-guarded in-memory repository. int64 keys are assigned
// from a monotonically increasing counter that never reuses a value; string
// keys come from the mapping's NewKey. Rows are stored and returned by
// value.
type Repo[K repository.Key, T any] struct {
	mapping repository.Mapping[K, T]

	mu     sync.RWMutex
	rows   map[K]T
	nextID int64
}

// New builds an in-memory repository for mapping. The table starts absent;
// call CreateSchema before use, as with the SQL implementation.
func New[K repository.Key, T any](m repository.Mapping[K, T]) (*Repo[K, T], error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &Repo[K, T]{mapping: m}, nil
}

// CreateSchema initializes the table; calling it again is a no-op.
func (r *Repo[K, T]) CreateSchema(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rows == nil {
		r.rows = make(map[K]T)
	}
	return nil
}

// DropSchema discards the table and all rows in it.
func (r *Repo[K, T]) DropSchema(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rows = nil
	return nil
}

func (r *Repo[K, T]) table() (map[K]T, error) {
	if r.rows == nil {
		return nil, fmt.Errorf("no such table: %s", r.mapping.Table)
	}
	return r.rows, nil
}

// Save inserts row when its key is absent and updates it otherwise.
func (r *Repo[K, T]) Save(ctx context.Context, row T) (K, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(row)
}

func (r *Repo[K, T]) saveLocked(row T) (K, error) {
	var zero K
	rows, err := r.table()
	if err != nil {
		return zero, err
	}

	if id, ok := r.mapping.ID(row); ok {
		if _, exists := rows[id]; !exists {
			return zero, fmt.Errorf("update %s id %v: %w", r.mapping.Table, id, repository.ErrNotFound)
		}
		rows[id] = row
		return id, nil
	}
	return r.insertLocked(row)
}

func (r *Repo[K, T]) insertLocked(row T) (K, error) {
	var id K
	if r.mapping.NewKey != nil {
		id = r.mapping.NewKey()
	} else {
		r.nextID++
		id = any(r.nextID).(K)
	}
	r.mapping.SetID(&row, id)
	r.rows[id] = row
	return id, nil
}

// SaveAll saves rows in order. Memory has no transactions; rows saved before
// a failure stay saved, matching the weakest backend the contract allows.
func (r *Repo[K, T]) SaveAll(ctx context.Context, rows []T) ([]K, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := make([]K, 0, len(rows))
	for _, row := range rows {
		id, err := r.saveLocked(row)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// FindByID returns the row with the given key, or nil if none exists.
func (r *Repo[K, T]) FindByID(ctx context.Context, id K) (*T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.table()
	if err != nil {
		return nil, err
	}
	row, ok := rows[id]
	if !ok {
		return nil, nil
	}
	return &row, nil
}

// FindExistingByID returns the row with the given key, or ErrNotFound.
func (r *Repo[K, T]) FindExistingByID(ctx context.Context, id K) (T, error) {
	row, err := r.FindByID(ctx, id)
	if err != nil {
		var zero T
		return zero, err
	}
	if row == nil {
		var zero T
		return zero, fmt.Errorf("%s id %v: %w", r.mapping.Table, id, repository.ErrNotFound)
	}
	return *row, nil
}

// FindAll returns every row in ascending key order.
func (r *Repo[K, T]) FindAll(ctx context.Context) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.table()
	if err != nil {
		return nil, err
	}

	keys := make([]K, 0, len(rows))
	for k := range rows {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })

	out := make([]T, 0, len(keys))
	for _, k := range keys {
		out = append(out, rows[k])
	}
	return out, nil
}

// FindByIDs returns the rows matching ids in input order, omitting keys with
// no match.
func (r *Repo[K, T]) FindByIDs(ctx context.Context, ids []K) ([]T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.table()
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(ids))
	for _, id := range ids {
		if row, ok := rows[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

// CopyAndSave duplicates the row at id as a new record and returns the new
// key.
func (r *Repo[K, T]) CopyAndSave(ctx context.Context, id K) (K, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero K
	rows, err := r.table()
	if err != nil {
		return zero, err
	}
	row, ok := rows[id]
	if !ok {
		return zero, fmt.Errorf("%s id %v: %w", r.mapping.Table, id, repository.ErrNotFound)
	}
	return r.insertLocked(row)
}

// DeleteByID removes the row with the given key; absent keys are a no-op.
func (r *Repo[K, T]) DeleteByID(ctx context.Context, id K) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.table()
	if err != nil {
		return err
	}
	delete(rows, id)
	return nil
}

// DeleteAll removes every row in the table.
func (r *Repo[K, T]) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.table()
	if err != nil {
		return err
	}
	for k := range rows {
		delete(rows, k)
	}
	return nil
}

func keyLess[K repository.Key](a, b K) bool {
	switch av := any(a).(type) {
	case int64:
		return av < any(b).(int64)
	case string:
		return av < any(b).(string)
	}
	return false
}
