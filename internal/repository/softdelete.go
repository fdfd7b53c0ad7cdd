package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"teamperf/pkg/database"
)

// Scope selects whether soft-deleted rows are visible to a read
type Scope int

const (
	// ExcludeDeleted hides soft-deleted rows. Every read uses it unless told otherwise.
	ExcludeDeleted Scope = iota
	// IncludeDeleted shows soft-deleted rows too
	IncludeDeleted
)

// live is the single place that spells the soft-delete predicate.
// alias is the table name or alias the predicate applies to.
func live(alias string, scope Scope) string {
	if scope == IncludeDeleted {
		return "TRUE"
	}
	return alias + ".deleted_at IS NULL"
}

// softDeleteStmt is the one UPDATE that retires rows.
// Alias defaults to Table; Set adds columns stamped alongside deleted_at.
type softDeleteStmt struct {
	Table     string
	Alias     string
	Where     string
	Set       string
	Returning string
}

func (s softDeleteStmt) SQL() string {
	target, alias := s.Table, s.Table
	if s.Alias != "" {
		target, alias = s.Table+" "+s.Alias, s.Alias
	}
	set := "deleted_at = NOW()"
	if s.Set != "" {
		set += ", " + s.Set
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s AND %s", target, set, s.Where, live(alias, ExcludeDeleted))
	if s.Returning != "" {
		query += " RETURNING " + s.Returning
	}
	return query
}

// softDelete stamps deleted_at on live rows of table matching where.
// It reports whether any row changed; already deleted rows are never touched again.
func softDelete(ctx context.Context, db database.DBTX, table, where string, args ...any) (bool, error) {
	tag, err := db.Exec(ctx, softDeleteStmt{Table: table, Where: where}.SQL(), args...)
	if err != nil {
		return false, fmt.Errorf("soft delete %s: %w", table, err)
	}
	return tag.RowsAffected() > 0, nil
}

// softDeleteReturning retires matching live rows and yields stmt.Returning of the changed row.
// No live match scans as pgx.ErrNoRows.
func softDeleteReturning(ctx context.Context, db database.DBTX, stmt softDeleteStmt, args ...any) pgx.Row {
	return db.QueryRow(ctx, stmt.SQL(), args...)
}
