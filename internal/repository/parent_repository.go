package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

const parentColumns = `id, username, name, surname, email, phone, address, created_at`

// ParentRepository manages parent rows.
type ParentRepository struct {
	db *sqlx.DB
}

// NewParentRepository constructs a ParentRepository.
func NewParentRepository(db *sqlx.DB) *ParentRepository {
	return &ParentRepository{db: db}
}

// List returns parents matching the search term.
func (r *ParentRepository) List(ctx context.Context, filter models.ListFilter) ([]models.Parent, int, error) {
	var q listQuery
	q.search(filter.Search, "name", "surname", "username")

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM parents%s ORDER BY created_at DESC LIMIT %d OFFSET %d`, parentColumns, q.clause(), limit, offset)

	var parents []models.Parent
	if err := r.db.SelectContext(ctx, &parents, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list parents: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM parents"+q.clause(), q.args...); err != nil {
		return nil, 0, fmt.Errorf("count parents: %w", err)
	}
	return parents, total, nil
}

// FindByID fetches a parent with the ids of their students.
func (r *ParentRepository) FindByID(ctx context.Context, id string) (*models.Parent, error) {
	var parent models.Parent
	if err := r.db.GetContext(ctx, &parent, `SELECT `+parentColumns+` FROM parents WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find parent: %w", err)
	}

	studentIDs := []string{}
	if err := r.db.SelectContext(ctx, &studentIDs, `SELECT id FROM students WHERE parent_id = $1 ORDER BY id`, id); err != nil {
		return nil, fmt.Errorf("list parent students: %w", err)
	}
	parent.StudentIDs = studentIDs
	return &parent, nil
}

// Create inserts the parent and connects the listed students to it.
func (r *ParentRepository) Create(ctx context.Context, parent *models.Parent) error {
	if parent.CreatedAt.IsZero() {
		parent.CreatedAt = time.Now().UTC()
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO parents (id, username, name, surname, email, phone, address, created_at)
VALUES (:id, :username, :name, :surname, :email, :phone, :address, :created_at)`
		if _, err := tx.NamedExecContext(ctx, query, parent); err != nil {
			return fmt.Errorf("create parent: %w", err)
		}
		return parentStudents.Add(ctx, tx, parent.ID, parent.StudentIDs)
	})
}

// Patch updates only the columns present in patch.
func (r *ParentRepository) Patch(ctx context.Context, id string, patch models.ParentPatch) error {
	var sets []string
	var args []interface{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Username != nil {
		set("username", *patch.Username)
	}
	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Surname != nil {
		set("surname", *patch.Surname)
	}
	if patch.Email != nil {
		set("email", nullable(*patch.Email))
	}
	if patch.Phone != nil {
		set("phone", nullable(*patch.Phone))
	}
	if patch.Address != nil {
		set("address", *patch.Address)
	}
	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE parents SET %s WHERE id = $%d`, strings.Join(sets, ", "), len(args))
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("patch parent: %w", err)
	}
	return requireAffected(res)
}

// HasDependents reports whether students are still assigned to the parent.
func (r *ParentRepository) HasDependents(ctx context.Context, id string) (bool, error) {
	return referenced(ctx, r.db, id, reference{table: "students", column: "parent_id"})
}

// Delete removes a parent row.
func (r *ParentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "parents", id)
}

// Options lists parents for form dropdowns.
func (r *ParentRepository) Options(ctx context.Context) ([]models.ParentOption, error) {
	var options []models.ParentOption
	if err := r.db.SelectContext(ctx, &options, `SELECT id, name, surname FROM parents ORDER BY name, surname`); err != nil {
		return nil, fmt.Errorf("list parent options: %w", err)
	}
	return options, nil
}

// nullable maps an empty string to SQL NULL.
func nullable(value string) interface{} {
	if value == "" {
		return nil
	}
	return value
}
