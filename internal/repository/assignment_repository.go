package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

const assignmentColumns = `a.id, a.title, a.start_date, a.due_date, a.subject_id, a.lesson_id, a.class_id, a.teacher_id`

// AssignmentRepository manages assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// List returns assignments filtered by class and teacher.
func (r *AssignmentRepository) List(ctx context.Context, filter models.ListFilter) ([]models.Assignment, int, error) {
	var q listQuery
	if filter.ClassID > 0 {
		q.where("a.class_id = ?", filter.ClassID)
	}
	if filter.TeacherID != "" {
		q.where("a.teacher_id = ?", filter.TeacherID)
	}
	q.search(filter.Search, "a.title")

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM assignments a%s ORDER BY a.due_date DESC LIMIT %d OFFSET %d`, assignmentColumns, q.clause(), limit, offset)

	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list assignments: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM assignments a"+q.clause(), q.args...); err != nil {
		return nil, 0, fmt.Errorf("count assignments: %w", err)
	}
	return assignments, total, nil
}

// FindByID fetches an assignment.
func (r *AssignmentRepository) FindByID(ctx context.Context, id int64) (*models.Assignment, error) {
	var assignment models.Assignment
	if err := r.db.GetContext(ctx, &assignment, `SELECT `+assignmentColumns+` FROM assignments a WHERE a.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find assignment: %w", err)
	}
	return &assignment, nil
}

// Create inserts an assignment and sets its generated id.
func (r *AssignmentRepository) Create(ctx context.Context, a *models.Assignment) error {
	const query = `INSERT INTO assignments (title, start_date, due_date, subject_id, lesson_id, class_id, teacher_id) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, a.Title, a.StartDate, a.DueDate, a.SubjectID, a.LessonID, a.ClassID, a.TeacherID).Scan(&a.ID); err != nil {
		return fmt.Errorf("create assignment: %w", err)
	}
	return nil
}

// Update overwrites every assignment column, clearing absent references.
func (r *AssignmentRepository) Update(ctx context.Context, a *models.Assignment) error {
	const query = `UPDATE assignments SET title = :title, start_date = :start_date, due_date = :due_date, subject_id = :subject_id, lesson_id = :lesson_id,
class_id = :class_id, teacher_id = :teacher_id WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, a)
	if err != nil {
		return fmt.Errorf("update assignment: %w", err)
	}
	return requireAffected(res)
}

// Delete removes an assignment row.
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "assignments", id)
}

// Options lists assignments for form dropdowns.
func (r *AssignmentRepository) Options(ctx context.Context) ([]models.AssignmentOption, error) {
	var options []models.AssignmentOption
	if err := r.db.SelectContext(ctx, &options, `SELECT id, title FROM assignments ORDER BY due_date DESC`); err != nil {
		return nil, fmt.Errorf("list assignment options: %w", err)
	}
	return options, nil
}
