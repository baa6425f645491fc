package repository

import "fmt"

// Mapping describes how one row type maps onto one table: the table name,
// the key column, the attribute columns, and the accessor functions the
// implementations use to move values between T and the column set.
//
// The attribute slices returned by Args and ScanDest must follow the order
// of Columns exactly. The key column is handled separately by the
// implementation and never appears in Columns.
type Mapping[K Key, T any] struct {
	// Table is the table name.
	Table string

	// IDColumn is the key column name, e.g. "id".
	IDColumn string

	// Columns are the attribute column names, excluding the key column.
	Columns []string

	// ColumnDefs are the DDL fragments for Columns, one per column, e.g.
	// "email TEXT NOT NULL". The key column definition comes from the
	// dialect.
	ColumnDefs []string

	// ID reports the row's key and whether it is present. Absent means the
	// row has not been persisted yet.
	ID func(row T) (K, bool)

	// SetID writes a key into the row.
	SetID func(row *T, id K)

	// Args returns the attribute values for INSERT/UPDATE parameters.
	Args func(row T) []any

	// ScanDest returns scan destinations pointing into row, for reading the
	// attribute columns back.
	ScanDest func(row *T) []any

	// NewKey generates a fresh key for insertion. Required for string keys;
	// must be nil for int64 keys, which the backend assigns.
	NewKey func() K
}

// Validate checks the mapping is internally consistent.
func (m Mapping[K, T]) Validate() error {
	if m.Table == "" {
		return fmt.Errorf("mapping: table name is empty")
	}
	if m.IDColumn == "" {
		return fmt.Errorf("mapping %s: id column is empty", m.Table)
	}
	if len(m.Columns) == 0 {
		return fmt.Errorf("mapping %s: no attribute columns", m.Table)
	}
	if len(m.ColumnDefs) != 0 && len(m.ColumnDefs) != len(m.Columns) {
		return fmt.Errorf("mapping %s: %d column defs for %d columns",
			m.Table, len(m.ColumnDefs), len(m.Columns))
	}
	if m.ID == nil || m.SetID == nil || m.Args == nil || m.ScanDest == nil {
		return fmt.Errorf("mapping %s: ID, SetID, Args and ScanDest are required", m.Table)
	}
	var zero K
	if _, isString := any(zero).(string); isString && m.NewKey == nil {
		return fmt.Errorf("mapping %s: string keys require NewKey", m.Table)
	}
	if _, isInt := any(zero).(int64); isInt && m.NewKey != nil {
		return fmt.Errorf("mapping %s: int64 keys are backend-assigned, NewKey must be nil", m.Table)
	}
	return nil
}
