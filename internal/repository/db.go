package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var (
	// ErrClassNotFound is returned when a student references a missing class.
	ErrClassNotFound = errors.New("class not found")
	// ErrClassFull is returned when a class has reached its capacity.
	ErrClassFull = errors.New("class is full")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// IsUniqueViolation reports whether err is a Postgres unique constraint failure.
func IsUniqueViolation(err error) bool {
	return hasPQCode(err, pqUniqueViolation)
}

// IsForeignKeyViolation reports whether err is a Postgres foreign key failure.
func IsForeignKeyViolation(err error) bool {
	return hasPQCode(err, pqForeignKeyViolation)
}

func hasPQCode(err error, code string) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == code
	}
	return false
}

// reference names a column in another table that points at a record.
type reference struct {
	table  string
	column string
}

// referenced reports whether any of refs still points at id.
func referenced(ctx context.Context, q sqlx.QueryerContext, id interface{}, refs ...reference) (bool, error) {
	checks := make([]string, 0, len(refs))
	for _, ref := range refs {
		checks = append(checks, fmt.Sprintf("EXISTS (SELECT 1 FROM %s WHERE %s = $1)", ref.table, ref.column))
	}
	var found bool
	if err := sqlx.GetContext(ctx, q, &found, "SELECT "+strings.Join(checks, " OR "), id); err != nil {
		return false, fmt.Errorf("check references: %w", err)
	}
	return found, nil
}

// withTx runs fn inside a transaction and rolls back when fn fails.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// requireAffected maps an update or delete that matched nothing to sql.ErrNoRows.
func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func deleteByID(ctx context.Context, db sqlx.ExecerContext, table string, id interface{}) error {
	res, err := db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", table, err)
	}
	return requireAffected(res)
}

// listQuery accumulates WHERE predicates with positional arguments.
type listQuery struct {
	conditions []string
	args       []interface{}
}

// where appends a predicate; each "?" becomes the next positional placeholder.
func (q *listQuery) where(cond string, args ...interface{}) {
	for _, arg := range args {
		q.args = append(q.args, arg)
		cond = strings.Replace(cond, "?", fmt.Sprintf("$%d", len(q.args)), 1)
	}
	q.conditions = append(q.conditions, cond)
}

// search matches term case-insensitively against any of the columns.
func (q *listQuery) search(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return
	}
	q.args = append(q.args, "%"+strings.ToLower(term)+"%")
	placeholder := fmt.Sprintf("$%d", len(q.args))
	parts := make([]string, 0, len(columns))
	for _, column := range columns {
		parts = append(parts, fmt.Sprintf("LOWER(%s) LIKE %s", column, placeholder))
	}
	q.conditions = append(q.conditions, "("+strings.Join(parts, " OR ")+")")
}

func (q *listQuery) clause() string {
	if len(q.conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(q.conditions, " AND ")
}

// pageBounds converts a 1-based page into LIMIT and OFFSET values.
func pageBounds(page, size int) (limit, offset int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return size, (page - 1) * size
}
