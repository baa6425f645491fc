package repository

import (
	"context"
	"errors"
)

// ErrNotFound is returned when an operation that requires an existing record
// is given an identifier with no persisted row behind it. Callers match it
// with errors.Is; all other errors are backend failures passed through.
var ErrNotFound = errors.New("record not found")

// Key is the set of identifier types a repository can be keyed by.
// int64 keys are assigned by the backend at insert time; string keys are
// generated client-side via Mapping.NewKey. Both are ordered and comparable,
// and a key is never reused after its row is deleted.
type Key interface {
	int64 | string
}

// Repository provides identifier-addressed CRUD over a single logical table,
// generic over the key type K and the row type T.
//
// A row is constructed in memory with its identifier absent; Save either
// inserts (identifier absent) and returns the newly assigned key, or updates
// the record matching the present identifier. Absence is encoded two ways:
// FindByID returns nil for a missing row, FindExistingByID returns
// ErrNotFound for callers that treat absence as a programming error.
type Repository[K Key, T any] interface {
	// CreateSchema idempotently ensures the backing table exists.
	CreateSchema(ctx context.Context) error

	// DropSchema removes the backing table.
	DropSchema(ctx context.Context) error

	// Save inserts row when its identifier is absent, returning the new key,
	// or updates the record matching the present identifier. Updating a
	// missing record returns ErrNotFound.
	Save(ctx context.Context, row T) (K, error)

	// SaveAll applies Save to each row in order and returns the resulting
	// keys in the same order. Implementations batch into one transaction
	// where the backend allows it.
	SaveAll(ctx context.Context, rows []T) ([]K, error)

	// FindByID returns the row with the given key, or nil if none exists.
	FindByID(ctx context.Context, id K) (*T, error)

	// FindExistingByID returns the row with the given key, or ErrNotFound.
	FindExistingByID(ctx context.Context, id K) (T, error)

	// FindAll returns every persisted row in ascending key order.
	FindAll(ctx context.Context) ([]T, error)

	// FindByIDs returns the rows matching ids, preserving input order and
	// omitting keys with no match.
	FindByIDs(ctx context.Context, ids []K) ([]T, error)

	// CopyAndSave reads the row at id, strips its identifier, and inserts it
	// as a new record, returning the new key. Returns ErrNotFound if the
	// source does not exist.
	CopyAndSave(ctx context.Context, id K) (K, error)

	// DeleteByID removes the record with the given key; no-op if absent.
	DeleteByID(ctx context.Context, id K) error

	// DeleteAll removes every record in the table.
	DeleteAll(ctx context.Context) error
}
