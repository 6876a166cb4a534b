package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

const resultDetailSelect = `SELECT r.id, r.score, r.date, r.exam_id, r.assignment_id, r.student_id, r.teacher_id, r.class_id,
s.name || ' ' || s.surname AS student_name, COALESCE(e.title, a.title) AS title
FROM results r
JOIN students s ON s.id = r.student_id
LEFT JOIN exams e ON e.id = r.exam_id
LEFT JOIN assignments a ON a.id = r.assignment_id`

// ResultRepository manages results.
type ResultRepository struct {
	db *sqlx.DB
}

// NewResultRepository constructs a ResultRepository.
func NewResultRepository(db *sqlx.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// List returns results filtered by class and teacher.
func (r *ResultRepository) List(ctx context.Context, filter models.ListFilter) ([]models.ResultDetail, int, error) {
	var q listQuery
	if filter.ClassID > 0 {
		q.where("r.class_id = ?", filter.ClassID)
	}
	if filter.TeacherID != "" {
		q.where("r.teacher_id = ?", filter.TeacherID)
	}
	q.search(filter.Search, "s.name", "s.surname", "e.title", "a.title")

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`%s%s ORDER BY r.date DESC LIMIT %d OFFSET %d`, resultDetailSelect, q.clause(), limit, offset)

	var results []models.ResultDetail
	if err := r.db.SelectContext(ctx, &results, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list results: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM results r JOIN students s ON s.id = r.student_id LEFT JOIN exams e ON e.id = r.exam_id LEFT JOIN assignments a ON a.id = r.assignment_id` + q.clause()
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, q.args...); err != nil {
		return nil, 0, fmt.Errorf("count results: %w", err)
	}
	return results, total, nil
}

// FindByID fetches a result with its labels.
func (r *ResultRepository) FindByID(ctx context.Context, id int64) (*models.ResultDetail, error) {
	var result models.ResultDetail
	if err := r.db.GetContext(ctx, &result, resultDetailSelect+` WHERE r.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find result: %w", err)
	}
	return &result, nil
}

// Create inserts a result and sets its generated id.
func (r *ResultRepository) Create(ctx context.Context, res *models.Result) error {
	const query = `INSERT INTO results (score, date, exam_id, assignment_id, student_id, teacher_id, class_id) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, res.Score, res.Date, res.ExamID, res.AssignmentID, res.StudentID, res.TeacherID, res.ClassID).Scan(&res.ID); err != nil {
		return fmt.Errorf("create result: %w", err)
	}
	return nil
}

// Update overwrites every result column.
func (r *ResultRepository) Update(ctx context.Context, res *models.Result) error {
	const query = `UPDATE results SET score = :score, date = :date, exam_id = :exam_id, assignment_id = :assignment_id, student_id = :student_id,
teacher_id = :teacher_id, class_id = :class_id WHERE id = :id`
	out, err := r.db.NamedExecContext(ctx, query, res)
	if err != nil {
		return fmt.Errorf("update result: %w", err)
	}
	return requireAffected(out)
}

// Delete removes a result row.
func (r *ResultRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "results", id)
}
