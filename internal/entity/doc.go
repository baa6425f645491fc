// Package entity defines the concrete row types stored through rowstore's
// generic repository contract.
//
// # Person
//
// Person is the canonical sample entity: an email plus first and last name,
// with an optional int64 identifier. The identifier is a pointer so the
// unsaved and saved states stay statically distinct; a nil ID means the row
// has never been persisted, never a zero sentinel.
//
// # Mappings
//
// Each entity ships its repository.Mapping describing the backing table:
// column names, DDL fragments, and the accessors that move values between
// the struct and the column set. Mappings are plain values with no
// infrastructure dependencies, so entity types stay usable against any
// repository implementation.
//
// # Design Principles
//
// - Value semantics; rows are copied, not shared
// - Validation lives on the entity, persistence never validates
// - No database driver imports
package entity
