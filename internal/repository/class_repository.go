package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

const classDetailSelect = `SELECT c.id, c.name, c.capacity, c.grade_id, c.supervisor_id, c.created_at,
(SELECT COUNT(*) FROM students s WHERE s.class_id = c.id) AS student_count,
g.level AS grade_level,
t.name || ' ' || t.surname AS supervisor_name
FROM classes c
JOIN grades g ON g.id = c.grade_id
LEFT JOIN teachers t ON t.id = c.supervisor_id`

// ClassRepository manages classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes with live student counts. TeacherID filters by supervisor.
func (r *ClassRepository) List(ctx context.Context, filter models.ListFilter) ([]models.ClassDetail, int, error) {
	var q listQuery
	if filter.TeacherID != "" {
		q.where("c.supervisor_id = ?", filter.TeacherID)
	}
	q.search(filter.Search, "c.name")

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`%s%s ORDER BY c.name LIMIT %d OFFSET %d`, classDetailSelect, q.clause(), limit, offset)

	var classes []models.ClassDetail
	if err := r.db.SelectContext(ctx, &classes, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM classes c"+q.clause(), q.args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}
	return classes, total, nil
}

// FindByID fetches a class with its current student count.
func (r *ClassRepository) FindByID(ctx context.Context, id int64) (*models.ClassDetail, error) {
	var class models.ClassDetail
	if err := r.db.GetContext(ctx, &class, classDetailSelect+` WHERE c.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find class: %w", err)
	}
	return &class, nil
}

// Create inserts a class and sets its generated id.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO classes (name, capacity, grade_id, supervisor_id, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, class.Name, class.Capacity, class.GradeID, class.SupervisorID, class.CreatedAt).Scan(&class.ID); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update overwrites the class columns.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	const query = `UPDATE classes SET name = :name, capacity = :capacity, grade_id = :grade_id, supervisor_id = :supervisor_id WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, class)
	if err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a class row.
func (r *ClassRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "classes", id)
}

// Options lists classes with capacity and live counts for form dropdowns.
func (r *ClassRepository) Options(ctx context.Context) ([]models.ClassOption, error) {
	const query = `SELECT c.id, c.name, c.capacity, (SELECT COUNT(*) FROM students s WHERE s.class_id = c.id) AS student_count FROM classes c ORDER BY c.name`
	var options []models.ClassOption
	if err := r.db.SelectContext(ctx, &options, query); err != nil {
		return nil, fmt.Errorf("list class options: %w", err)
	}
	return options, nil
}
