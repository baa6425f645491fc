// Package repository defines the generic entity/repository contract for rowstore.
//
// This package holds only the contract: the Repository interface, the Key
// constraint, the table Mapping, and the ErrNotFound sentinel. The actual
// implementations live in subpackages.
//
// # Repository Interface
//
// Repository[K, T] is a stateless CRUD façade over one logical table. It is
// parameterized by the key type (int64 or string) and the row type, and
// covers schema creation, insert-or-update saves, batched saves, by-key and
// whole-table lookups, copy-on-save, and deletion.
//
// # Implementations
//
// The sqlrepo subpackage implements the contract over database/sql with
// SQLite and PostgreSQL dialects. The memory subpackage implements it over a
// mutex-guarded map for tests and embedding. The cached and instrumented
// subpackages are decorators that wrap any Repository with read-through
// caching and Prometheus metrics respectively.
//
// # Absence Semantics
//
// FindByID encodes a missing row as a nil result; FindExistingByID and
// CopyAndSave return ErrNotFound instead. All other errors propagate from
// the backend unchanged apart from operation context added with %w wrapping,
// so errors.Is(err, ErrNotFound) is the only absence check callers need.
package repository
