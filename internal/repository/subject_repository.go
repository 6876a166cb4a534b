package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

// SubjectRepository manages subjects and their teacher edges.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns subjects matching the search term.
func (r *SubjectRepository) List(ctx context.Context, filter models.ListFilter) ([]models.Subject, int, error) {
	var q listQuery
	if filter.TeacherID != "" {
		q.where("EXISTS (SELECT 1 FROM subject_teachers st WHERE st.subject_id = s.id AND st.teacher_id = ?)", filter.TeacherID)
	}
	q.search(filter.Search, "s.name")

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT s.id, s.name FROM subjects s%s ORDER BY s.name LIMIT %d OFFSET %d`, q.clause(), limit, offset)

	var subjects []models.Subject
	if err := r.db.SelectContext(ctx, &subjects, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM subjects s"+q.clause(), q.args...); err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}
	return subjects, total, nil
}

// FindByID fetches a subject with its teacher ids.
func (r *SubjectRepository) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, `SELECT id, name FROM subjects WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find subject: %w", err)
	}

	teacherIDs := []string{}
	if err := r.db.SelectContext(ctx, &teacherIDs, `SELECT teacher_id FROM subject_teachers WHERE subject_id = $1 ORDER BY teacher_id`, id); err != nil {
		return nil, fmt.Errorf("list subject teachers: %w", err)
	}
	subject.TeacherIDs = teacherIDs
	return &subject, nil
}

// Create inserts the subject and connects its teachers.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if err := tx.QueryRowxContext(ctx, `INSERT INTO subjects (name) VALUES ($1) RETURNING id`, subject.Name).Scan(&subject.ID); err != nil {
			return fmt.Errorf("create subject: %w", err)
		}
		return subjectTeachers.Add(ctx, tx, subject.ID, subject.TeacherIDs)
	})
}

// Update renames the subject and sets its teachers to exactly subject.TeacherIDs.
// A nil TeacherIDs leaves the edges untouched.
func (r *SubjectRepository) Update(ctx context.Context, subject *models.Subject) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `UPDATE subjects SET name = $1 WHERE id = $2`, subject.Name, subject.ID)
		if err != nil {
			return fmt.Errorf("update subject: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		if subject.TeacherIDs == nil {
			return nil
		}
		return subjectTeachers.Replace(ctx, tx, subject.ID, subject.TeacherIDs)
	})
}

// Delete removes a subject and its teacher edges.
func (r *SubjectRepository) Delete(ctx context.Context, id int64) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM subject_teachers WHERE subject_id = $1`, id); err != nil {
			return fmt.Errorf("delete subject teachers: %w", err)
		}
		return deleteByID(ctx, tx, "subjects", id)
	})
}

// Options lists subjects for form dropdowns.
func (r *SubjectRepository) Options(ctx context.Context) ([]models.SubjectOption, error) {
	var options []models.SubjectOption
	if err := r.db.SelectContext(ctx, &options, `SELECT id, name FROM subjects ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list subject options: %w", err)
	}
	return options, nil
}
