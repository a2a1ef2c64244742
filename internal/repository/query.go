package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Filter is an equality predicate for the generic query interface.
type Filter struct {
	Column string
	Value  any
}

// Query is a generic table-oriented access layer: select with equality
// filters, ordering and limit, plus insert and update by filter. Column
// and table names are sanitized as identifiers; values always travel as
// bind parameters.
type Query struct {
	pool *pgxpool.Pool
}

// NewQuery creates a generic query layer over the given pool.
func NewQuery(pool *pgxpool.Pool) *Query {
	return &Query{pool: pool}
}

// Select returns matching rows as column→value maps. orderBy may be
// empty; limit <= 0 means no limit.
func (q *Query) Select(ctx context.Context, table string, columns []string, filters []Filter, orderBy string, desc bool, limit int) ([]map[string]any, error) {
	cols := "*"
	if len(columns) > 0 {
		quoted := make([]string, len(columns))
		for i, c := range columns {
			quoted[i] = pgx.Identifier{c}.Sanitize()
		}
		cols = strings.Join(quoted, ", ")
	}

	sql := fmt.Sprintf("SELECT %s FROM %s", cols, pgx.Identifier{table}.Sanitize())

	where, args := buildWhere(filters, 0)
	sql += where

	if orderBy != "" {
		sql += " ORDER BY " + pgx.Identifier{orderBy}.Sanitize()
		if desc {
			sql += " DESC"
		}
	}
	if limit > 0 {
		args = append(args, limit)
		sql += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := q.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var out []map[string]any
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, err
		}
		record := make(map[string]any, len(fields))
		for i, fd := range fields {
			record[string(fd.Name)] = values[i]
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

// Insert adds one record and returns it with database-assigned columns.
func (q *Query) Insert(ctx context.Context, table string, record map[string]any) (map[string]any, error) {
	if len(record) == 0 {
		return nil, fmt.Errorf("insert into %s: empty record", table)
	}

	cols := make([]string, 0, len(record))
	placeholders := make([]string, 0, len(record))
	args := make([]any, 0, len(record))
	for col, val := range record {
		args = append(args, val)
		cols = append(cols, pgx.Identifier{col}.Sanitize())
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING *",
		pgx.Identifier{table}.Sanitize(),
		strings.Join(cols, ", "),
		strings.Join(placeholders, ", "))

	rows, err := q.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, pgx.ErrNoRows
	}
	values, err := rows.Values()
	if err != nil {
		return nil, err
	}
	fields := rows.FieldDescriptions()
	inserted := make(map[string]any, len(fields))
	for i, fd := range fields {
		inserted[string(fd.Name)] = values[i]
	}
	return inserted, rows.Err()
}

// Update patches all rows matching the filters.
func (q *Query) Update(ctx context.Context, table string, patch map[string]any, filters []Filter) error {
	if len(patch) == 0 {
		return fmt.Errorf("update %s: empty patch", table)
	}

	sets := make([]string, 0, len(patch))
	args := make([]any, 0, len(patch)+len(filters))
	for col, val := range patch {
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%s = $%d", pgx.Identifier{col}.Sanitize(), len(args)))
	}

	sql := fmt.Sprintf("UPDATE %s SET %s", pgx.Identifier{table}.Sanitize(), strings.Join(sets, ", "))
	where, whereArgs := buildWhere(filters, len(args))
	sql += where
	args = append(args, whereArgs...)

	_, err := q.pool.Exec(ctx, sql, args...)
	return err
}

func buildWhere(filters []Filter, argOffset int) (string, []any) {
	if len(filters) == 0 {
		return "", nil
	}
	conds := make([]string, 0, len(filters))
	args := make([]any, 0, len(filters))
	for _, f := range filters {
		args = append(args, f.Value)
		conds = append(conds, fmt.Sprintf("%s = $%d", pgx.Identifier{f.Column}.Sanitize(), argOffset+len(args)))
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
