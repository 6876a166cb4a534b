package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

const lessonDetailSelect = `SELECT l.id, l.name, l.day, l.start_time, l.end_time, l.subject_id, l.class_id, l.teacher_id,
sub.name AS subject_name, c.name AS class_name, t.name || ' ' || t.surname AS teacher_name
FROM lessons l
JOIN subjects sub ON sub.id = l.subject_id
JOIN classes c ON c.id = l.class_id
JOIN teachers t ON t.id = l.teacher_id`

// LessonRepository manages lessons.
type LessonRepository struct {
	db *sqlx.DB
}

// NewLessonRepository constructs a LessonRepository.
func NewLessonRepository(db *sqlx.DB) *LessonRepository {
	return &LessonRepository{db: db}
}

// List returns lessons filtered by class and teacher.
func (r *LessonRepository) List(ctx context.Context, filter models.ListFilter) ([]models.LessonDetail, int, error) {
	var q listQuery
	if filter.ClassID > 0 {
		q.where("l.class_id = ?", filter.ClassID)
	}
	if filter.TeacherID != "" {
		q.where("l.teacher_id = ?", filter.TeacherID)
	}
	q.search(filter.Search, "l.name", "sub.name", "t.name", "t.surname")

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`%s%s ORDER BY l.id LIMIT %d OFFSET %d`, lessonDetailSelect, q.clause(), limit, offset)

	var lessons []models.LessonDetail
	if err := r.db.SelectContext(ctx, &lessons, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list lessons: %w", err)
	}

	countQuery := `SELECT COUNT(*) FROM lessons l JOIN subjects sub ON sub.id = l.subject_id JOIN teachers t ON t.id = l.teacher_id` + q.clause()
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, q.args...); err != nil {
		return nil, 0, fmt.Errorf("count lessons: %w", err)
	}
	return lessons, total, nil
}

// FindByID fetches a lesson with display labels.
func (r *LessonRepository) FindByID(ctx context.Context, id int64) (*models.LessonDetail, error) {
	var lesson models.LessonDetail
	if err := r.db.GetContext(ctx, &lesson, lessonDetailSelect+` WHERE l.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find lesson: %w", err)
	}
	return &lesson, nil
}

// TeacherOf returns the id of the teacher who gives the lesson.
func (r *LessonRepository) TeacherOf(ctx context.Context, id int64) (string, error) {
	var teacherID string
	if err := r.db.GetContext(ctx, &teacherID, `SELECT teacher_id FROM lessons WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", err
		}
		return "", fmt.Errorf("find lesson teacher: %w", err)
	}
	return teacherID, nil
}

// Create inserts a lesson and sets its generated id.
func (r *LessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	const query = `INSERT INTO lessons (name, day, start_time, end_time, subject_id, class_id, teacher_id) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.QueryRowxContext(ctx, query, lesson.Name, lesson.Day, lesson.StartTime, lesson.EndTime, lesson.SubjectID, lesson.ClassID, lesson.TeacherID).Scan(&lesson.ID); err != nil {
		return fmt.Errorf("create lesson: %w", err)
	}
	return nil
}

// Update overwrites the lesson columns.
func (r *LessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	const query = `UPDATE lessons SET name = :name, day = :day, start_time = :start_time, end_time = :end_time, subject_id = :subject_id, class_id = :class_id, teacher_id = :teacher_id WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, lesson)
	if err != nil {
		return fmt.Errorf("update lesson: %w", err)
	}
	return requireAffected(res)
}

// Delete removes a lesson row.
func (r *LessonRepository) Delete(ctx context.Context, id int64) error {
	return deleteByID(ctx, r.db, "lessons", id)
}

// Options lists lessons, limited to one teacher when teacherID is set.
func (r *LessonRepository) Options(ctx context.Context, teacherID string) ([]models.LessonOption, error) {
	query := `SELECT id, name, subject_id FROM lessons`
	var args []interface{}
	if teacherID != "" {
		query += ` WHERE teacher_id = $1`
		args = append(args, teacherID)
	}
	query += ` ORDER BY name`

	var options []models.LessonOption
	if err := r.db.SelectContext(ctx, &options, query, args...); err != nil {
		return nil, fmt.Errorf("list lesson options: %w", err)
	}
	return options, nil
}
