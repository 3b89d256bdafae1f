// Package repository handles all interactions with the PostgreSQL store.
//
// It provides one generic batch-upsert gateway parameterized by a Table
// description (name, columns, natural-key columns, row encoder) and
// instantiated per entity kind. The store is the ultimate source of truth:
// the cache is only ever filled from data that passed through here.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/statloop/fplsync/internal/domain"
	"github.com/statloop/fplsync/internal/sqlerr"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Table describes how one entity kind maps onto its table.
//
// Columns lists every column written on upsert, in the order Encode emits
// values. KeyColumns is the conflict target (the natural key, possibly
// composite); it must be a prefix-independent subset of Columns. Every table
// carries an updated_at column that is rewritten on each upsert.
type Table[T domain.Record] struct {
	Name       string
	Columns    []string
	KeyColumns []string
	Encode     func(T) []any
}

// Repository is the typed store gateway for one entity kind.
type Repository[T domain.Record] struct {
	pool  *pgxpool.Pool
	table Table[T]

	upsertSQL    string
	selectSQL    string
	findByKeySQL string
}

// New builds a Repository for the given table. The upsert and select
// statements are derived once up front; only bind parameters vary per call.
func New[T domain.Record](pool *pgxpool.Pool, table Table[T]) *Repository[T] {
	return &Repository[T]{
		pool:         pool,
		table:        table,
		upsertSQL:    buildUpsertSQL(table.Name, table.Columns, table.KeyColumns),
		selectSQL:    buildSelectSQL(table.Name, table.Columns, table.KeyColumns),
		findByKeySQL: buildFindByKeySQL(table.Name, table.Columns, table.KeyColumns),
	}
}

// FindAll returns every row for this entity, ordered by natural key.
func (r *Repository[T]) FindAll(ctx context.Context) ([]T, error) {
	rows, err := r.pool.Query(ctx, r.selectSQL)
	if err != nil {
		return nil, sqlerr.Translate(r.table.Name, err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, sqlerr.Translate(r.table.Name, err)
	}
	return records, nil
}

// FindAllWhere returns the rows matching a filter clause, ordered by natural
// key. The clause is a SQL fragment with $n placeholders, e.g.
// "event_id = $1".
func (r *Repository[T]) FindAllWhere(ctx context.Context, clause string, args ...any) ([]T, error) {
	sql := fmt.Sprintf("%s WHERE %s ORDER BY %s",
		buildSelectBase(r.table.Name, r.table.Columns), clause, strings.Join(r.table.KeyColumns, ", "))

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, sqlerr.Translate(r.table.Name, err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return nil, sqlerr.Translate(r.table.Name, err)
	}
	return records, nil
}

// FindByKey returns the single row whose natural key matches the given
// values (one per KeyColumn, in order). A missing row surfaces as a
// store-layer not-found envelope.
func (r *Repository[T]) FindByKey(ctx context.Context, keyValues ...any) (T, error) {
	var zero T

	rows, err := r.pool.Query(ctx, r.findByKeySQL, keyValues...)
	if err != nil {
		return zero, sqlerr.Translate(r.table.Name, err)
	}
	record, err := pgx.CollectOneRow(rows, pgx.RowToStructByNameLax[T])
	if err != nil {
		return zero, sqlerr.Translate(r.table.Name, err)
	}
	return record, nil
}

// SaveBatch upserts the given records in one transaction.
//
// The upsert is idempotent: a conflict on the natural key overwrites every
// mutable column with the incoming value (last write wins per field) and
// leaves the key columns untouched; updated_at is rewritten on every row.
// Duplicate natural keys within one batch do not error: rows execute in slice
// order, so the last occurrence's values persist.
func (r *Repository[T]) SaveBatch(ctx context.Context, records []T) error {
	if len(records) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return sqlerr.Translate(r.table.Name, err)
	}
	defer tx.Rollback(ctx)

	if err := r.upsertAll(ctx, tx, records); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return sqlerr.Translate(r.table.Name, err)
	}
	return nil
}

// DeleteAll removes every row for this entity in a single standalone
// statement. The resync paths do not call it: they run the same delete inside
// their own transaction so the refill shares it.
func (r *Repository[T]) DeleteAll(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, buildDeleteSQL(r.table.Name, "")); err != nil {
		return sqlerr.Translate(r.table.Name, err)
	}
	return nil
}

// ResyncAll replaces the full table contents with the given records: delete
// plus upsert batch inside one transaction, so concurrent readers see the old
// snapshot until commit and never an empty window.
func (r *Repository[T]) ResyncAll(ctx context.Context, records []T) error {
	return r.resync(ctx, "", nil, records)
}

// ResyncWhere replaces one scope's rows (e.g. a single event's fixtures) the
// same way, bounded by a filter clause with $n placeholders.
func (r *Repository[T]) ResyncWhere(ctx context.Context, clause string, args []any, records []T) error {
	return r.resync(ctx, clause, args, records)
}

func (r *Repository[T]) resync(ctx context.Context, clause string, args []any, records []T) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return sqlerr.Translate(r.table.Name, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, buildDeleteSQL(r.table.Name, clause), args...); err != nil {
		return sqlerr.Translate(r.table.Name, err)
	}

	if err := r.upsertAll(ctx, tx, records); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return sqlerr.Translate(r.table.Name, err)
	}
	return nil
}

// upsertAll queues one upsert per record into a pgx batch on the given
// transaction. Single-row statements (rather than one multi-row VALUES) are
// deliberate: Postgres rejects a multi-row INSERT ... ON CONFLICT that
// touches the same key twice, while sequential statements give the documented
// last-occurrence-wins behavior for in-batch duplicates.
func (r *Repository[T]) upsertAll(ctx context.Context, tx pgx.Tx, records []T) error {
	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(r.upsertSQL, r.table.Encode(record)...)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range records {
		if _, err := results.Exec(); err != nil {
			return sqlerr.Translate(r.table.Name, err)
		}
	}
	return results.Close()
}

// buildUpsertSQL renders the single-row idempotent upsert:
//
//	INSERT INTO t (a, b, c) VALUES ($1, $2, $3)
//	ON CONFLICT (a) DO UPDATE SET b = EXCLUDED.b, c = EXCLUDED.c
//
// Key columns appear only in the conflict target; every other column is
// overwritten from the incoming row.
func buildUpsertSQL(name string, columns, keyColumns []string) string {
	placeholders := make([]string, len(columns))
	for i := range columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	keys := make(map[string]bool, len(keyColumns))
	for _, col := range keyColumns {
		keys[col] = true
	}

	assignments := make([]string, 0, len(columns)-len(keyColumns))
	for _, col := range columns {
		if keys[col] {
			continue
		}
		assignments = append(assignments, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		name,
		strings.Join(columns, ", "),
		strings.Join(placeholders, ", "),
		strings.Join(keyColumns, ", "),
		strings.Join(assignments, ", "),
	)
}

// buildFindByKeySQL renders the single-row lookup, one placeholder per key
// column in order:
//
//	SELECT a, b, c FROM t WHERE a = $1
func buildFindByKeySQL(name string, columns, keyColumns []string) string {
	conditions := make([]string, len(keyColumns))
	for i, col := range keyColumns {
		conditions[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	return fmt.Sprintf("%s WHERE %s",
		buildSelectBase(name, columns), strings.Join(conditions, " AND "))
}

// buildDeleteSQL renders the scope wipe shared by DeleteAll and the resync
// transactions; an empty clause deletes the whole table.
func buildDeleteSQL(name, clause string) string {
	sql := fmt.Sprintf("DELETE FROM %s", name)
	if clause != "" {
		sql += " WHERE " + clause
	}
	return sql
}

func buildSelectBase(name string, columns []string) string {
	return fmt.Sprintf("SELECT %s FROM %s", strings.Join(columns, ", "), name)
}

func buildSelectSQL(name string, columns, keyColumns []string) string {
	return fmt.Sprintf("%s ORDER BY %s", buildSelectBase(name, columns), strings.Join(keyColumns, ", "))
}
