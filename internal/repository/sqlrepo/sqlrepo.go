package sqlrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"rowstore/internal/repository"
)

// dbtx is the subset of database operations the repository needs. Both
// *sql.DB and *sql.Tx satisfy it, so the same statement code serves direct
// calls and transactional batches.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Repo implements repository.Repository over database/sql for one table
// described by a repository.Mapping. Query text is built once at
// construction from the mapping and the dialect; the handle itself carries
// no other state.
type Repo[K repository.Key, T any] struct {
	db      *sql.DB
	dialect Dialect
	mapping repository.Mapping[K, T]

	createSQL      string
	dropSQL        string
	insertSQL      string
	insertKeyedSQL string
	updateSQL      string
	selectByIDSQL  string
	selectAllSQL   string
	deleteByIDSQL  string
	deleteAllSQL   string
}

// New builds a repository for mapping on db. The mapping must carry
// ColumnDefs so CreateSchema can emit DDL.
func New[K repository.Key, T any](db *sql.DB, d Dialect, m repository.Mapping[K, T]) (*Repo[K, T], error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if len(m.ColumnDefs) == 0 {
		return nil, fmt.Errorf("mapping %s: column defs required for schema management", m.Table)
	}

	r := &Repo[K, T]{db: db, dialect: d, mapping: m}
	r.buildStatements()
	return r, nil
}

func (r *Repo[K, T]) buildStatements() {
	m := r.mapping
	d := r.dialect

	keyDef := d.AutoKeyDef
	if m.NewKey != nil {
		keyDef = d.TextKeyDef
	}
	defs := make([]string, 0, len(m.Columns)+1)
	defs = append(defs, fmt.Sprintf("%s %s", m.IDColumn, keyDef))
	for i, col := range m.Columns {
		def := m.ColumnDefs[i]
		if !strings.HasPrefix(def, col) {
			def = fmt.Sprintf("%s %s", col, def)
		}
		defs = append(defs, def)
	}
	r.createSQL = fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", m.Table, strings.Join(defs, ", "))
	r.dropSQL = fmt.Sprintf("DROP TABLE IF EXISTS %s", m.Table)

	cols := strings.Join(m.Columns, ", ")
	r.insertSQL = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		m.Table, cols, d.placeholders(1, len(m.Columns)), m.IDColumn)
	r.insertKeyedSQL = fmt.Sprintf("INSERT INTO %s (%s, %s) VALUES (%s)",
		m.Table, m.IDColumn, cols, d.placeholders(1, len(m.Columns)+1))

	sets := make([]string, len(m.Columns))
	for i, col := range m.Columns {
		sets[i] = fmt.Sprintf("%s = %s", col, d.placeholder(i+1))
	}
	r.updateSQL = fmt.Sprintf("UPDATE %s SET %s WHERE %s = %s",
		m.Table, strings.Join(sets, ", "), m.IDColumn, d.placeholder(len(m.Columns)+1))

	selectCols := fmt.Sprintf("%s, %s", m.IDColumn, cols)
	r.selectByIDSQL = fmt.Sprintf("SELECT %s FROM %s WHERE %s = %s",
		selectCols, m.Table, m.IDColumn, d.placeholder(1))
	r.selectAllSQL = fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		selectCols, m.Table, m.IDColumn)

	r.deleteByIDSQL = fmt.Sprintf("DELETE FROM %s WHERE %s = %s",
		m.Table, m.IDColumn, d.placeholder(1))
	r.deleteAllSQL = fmt.Sprintf("DELETE FROM %s", m.Table)
}

// CreateSchema ensures the backing table exists.
func (r *Repo[K, T]) CreateSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.createSQL); err != nil {
		return fmt.Errorf("failed to create table %s: %w", r.mapping.Table, err)
	}
	return nil
}

// DropSchema removes the backing table.
func (r *Repo[K, T]) DropSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.dropSQL); err != nil {
		return fmt.Errorf("failed to drop table %s: %w", r.mapping.Table, err)
	}
	return nil
}

// Save inserts row when its key is absent and updates it otherwise.
func (r *Repo[K, T]) Save(ctx context.Context, row T) (K, error) {
	return r.save(ctx, r.db, row)
}

func (r *Repo[K, T]) save(ctx context.Context, x dbtx, row T) (K, error) {
	if id, ok := r.mapping.ID(row); ok {
		return id, r.update(ctx, x, id, row)
	}
	return r.insert(ctx, x, row)
}

func (r *Repo[K, T]) insert(ctx context.Context, x dbtx, row T) (K, error) {
	var zero K
	args := r.mapping.Args(row)

	if r.mapping.NewKey != nil {
		id := r.mapping.NewKey()
		keyed := append([]any{id}, args...)
		if _, err := x.ExecContext(ctx, r.insertKeyedSQL, keyed...); err != nil {
			return zero, fmt.Errorf("failed to insert into %s: %w", r.mapping.Table, err)
		}
		return id, nil
	}

	var id K
	if err := x.QueryRowContext(ctx, r.insertSQL, args...).Scan(&id); err != nil {
		return zero, fmt.Errorf("failed to insert into %s: %w", r.mapping.Table, err)
	}
	return id, nil
}

func (r *Repo[K, T]) update(ctx context.Context, x dbtx, id K, row T) error {
	args := append(r.mapping.Args(row), id)
	res, err := x.ExecContext(ctx, r.updateSQL, args...)
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", r.mapping.Table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", r.mapping.Table, err)
	}
	if n == 0 {
		return fmt.Errorf("update %s id %v: %w", r.mapping.Table, id, repository.ErrNotFound)
	}
	return nil
}

// SaveAll saves rows in order inside a single transaction and returns the
// resulting keys, matching input order.
func (r *Repo[K, T]) SaveAll(ctx context.Context, rows []T) ([]K, error) {
	ids := make([]K, 0, len(rows))
	if len(rows) == 0 {
		return ids, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, row := range rows {
		id, err := r.save(ctx, tx, row)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return ids, nil
}

// FindByID returns the row with the given key, or nil if none exists.
func (r *Repo[K, T]) FindByID(ctx context.Context, id K) (*T, error) {
	var row T
	var key K
	dest := append([]any{&key}, r.mapping.ScanDest(&row)...)

	err := r.db.QueryRowContext(ctx, r.selectByIDSQL, id).Scan(dest...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.mapping.Table, err)
	}
	r.mapping.SetID(&row, key)
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
	rows, err := r.db.QueryContext(ctx, r.selectAllSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.mapping.Table, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		row, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", r.mapping.Table, err)
	}
	return out, nil
}

// FindByIDs returns the rows matching ids in input order, omitting keys with
// no match.
func (r *Repo[K, T]) FindByIDs(ctx context.Context, ids []K) ([]T, error) {
	out := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := fmt.Sprintf("SELECT %s, %s FROM %s WHERE %s IN (%s)",
		r.mapping.IDColumn, strings.Join(r.mapping.Columns, ", "),
		r.mapping.Table, r.mapping.IDColumn, r.dialect.placeholders(1, len(ids)))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", r.mapping.Table, err)
	}
	defer rows.Close()

	found := make(map[K]T, len(ids))
	for rows.Next() {
		row, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		if id, ok := r.mapping.ID(row); ok {
			found[id] = row
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", r.mapping.Table, err)
	}

	for _, id := range ids {
		if row, ok := found[id]; ok {
			out = append(out, row)
		}
	}
	return out, nil
}

// CopyAndSave duplicates the row at id as a new record and returns the new
// key. The source row keeps its identity.
func (r *Repo[K, T]) CopyAndSave(ctx context.Context, id K) (K, error) {
	row, err := r.FindByID(ctx, id)
	if err != nil {
		var zero K
		return zero, err
	}
	if row == nil {
		var zero K
		return zero, fmt.Errorf("%s id %v: %w", r.mapping.Table, id, repository.ErrNotFound)
	}
	return r.insert(ctx, r.db, *row)
}

// DeleteByID removes the row with the given key; absent keys are a no-op.
func (r *Repo[K, T]) DeleteByID(ctx context.Context, id K) error {
	if _, err := r.db.ExecContext(ctx, r.deleteByIDSQL, id); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", r.mapping.Table, err)
	}
	return nil
}

// DeleteAll removes every row in the table.
func (r *Repo[K, T]) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, r.deleteAllSQL); err != nil {
		return fmt.Errorf("failed to delete from %s: %w", r.mapping.Table, err)
	}
	return nil
}

func (r *Repo[K, T]) scanRow(rows *sql.Rows) (T, error) {
	var row T
	var key K
	dest := append([]any{&key}, r.mapping.ScanDest(&row)...)
	if err := rows.Scan(dest...); err != nil {
		var zero T
		return zero, fmt.Errorf("failed to scan %s row: %w", r.mapping.Table, err)
	}
	r.mapping.SetID(&row, key)
	return row, nil
}
