package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

const examDetailSelect = `SELECT e.id, e.title, e.start_time, e.end_time, e.lesson_id,
sub.name AS subject_name, c.name AS class_name, l.teacher_id
FROM exams e
JOIN lessons l ON l.id = e.lesson_id
JOIN subjects sub ON sub.id = l.subject_id
JOIN classes c ON c.id = l.class_id`

// ExamRepository manages exams.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs an ExamRepository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// List returns exams filtered through their lesson's class and teacher.
func (r *ExamRepository) List(ctx context.Context, filter models.ListFilter) ([]models.ExamDetail, int, error) {
	var q listQuery
	if filter.ClassID > 0 {
		q.where("l.class_id = ?", filter.ClassID)
	}
	if filter.TeacherID != "" {
		q.where("l.teacher_id = ?", filter.TeacherID)
	}
	q.search(filter.Search, "e.title", "sub.name")

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`%s%s ORDER BY e.start_time DESC LIMIT %d OFFSET %d`, examDetailSelect, q.clause(), limit, offset)

	var exams []models.ExamDetail
	if err := r.db.SelectContext(ctx, &exams, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list exams: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM exams e JOIN lessons l ON l.id = e.lesson_id JOIN subjects sub ON sub.id = l.subject_id` + q.clause()
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, q.args...); err != nil {
		return nil, 0, fmt.Errorf("count exams: %w", err)
	}
	return exams, total, nil
}

// FindByID fetches an exam with its lesson context.
func (r *ExamRepository) FindByID(ctx context.Context, id int64) (*models.ExamDetail, error) {
	var exam models.ExamDetail
	if err := r.db.GetContext(ctx, &exam, examDetailSelect+` WHERE e.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find exam: %w", err)
	}
	return &exam, nil
}

// Create inserts an exam and sets its generated id.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	const query = `INSERT INTO exams (title, start_time, end_time, lesson_id) VALUES ($1, $2, $3, $4) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, exam.Title, exam.StartTime, exam.EndTime, exam.LessonID).Scan(&exam.ID); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// Update overwrites the exam columns.
func (r *ExamRepository) Update(ctx context.Context, exam *models.Exam) error {
	const query = `UPDATE exams SET title = :title, start_time = :start_time, end_time = :end_time, lesson_id = :lesson_id WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, exam)
	if err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	return requireAffected(res)
}

// Delete removes an exam row.
func (r *ExamRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "exams", id)
}

// Options lists exams for form dropdowns.
func (r *ExamRepository) Options(ctx context.Context) ([]models.ExamOption, error) {
	var options []models.ExamOption
	if err := r.db.SelectContext(ctx, &options, `SELECT id, title FROM exams ORDER BY start_time DESC`); err != nil {
		return nil, fmt.Errorf("list exam options: %w", err)
	}
	return options, nil
}
