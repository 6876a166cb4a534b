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

const teacherColumns = `t.id, t.username, t.name, t.surname, t.email, t.phone, t.address, t.img, t.blood_type, t.sex, t.birthday, t.created_at`

// TeacherRepository manages teacher rows and their subject edges.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

// List returns teachers, optionally only those teaching the given class.
func (r *TeacherRepository) List(ctx context.Context, filter models.ListFilter) ([]models.Teacher, int, error) {
	var q listQuery
	if filter.ClassID > 0 {
		q.where("EXISTS (SELECT 1 FROM lessons l WHERE l.teacher_id = t.id AND l.class_id = ?)", filter.ClassID)
	}
	q.search(filter.Search, "t.name", "t.surname", "t.username")

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s FROM teachers t%s ORDER BY t.created_at DESC LIMIT %d OFFSET %d`, teacherColumns, q.clause(), limit, offset)

	var teachers []models.Teacher
	if err := r.db.SelectContext(ctx, &teachers, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list teachers: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM teachers t"+q.clause(), q.args...); err != nil {
		return nil, 0, fmt.Errorf("count teachers: %w", err)
	}
	return teachers, total, nil
}

// FindByID fetches a teacher with the ids of the subjects they teach.
func (r *TeacherRepository) FindByID(ctx context.Context, id string) (*models.Teacher, error) {
	var teacher models.Teacher
	if err := r.db.GetContext(ctx, &teacher, fmt.Sprintf(`SELECT %s FROM teachers t WHERE t.id = $1`, teacherColumns), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find teacher: %w", err)
	}

	subjectIDs := []int64{}
	if err := r.db.SelectContext(ctx, &subjectIDs, `SELECT subject_id FROM subject_teachers WHERE teacher_id = $1 ORDER BY subject_id`, id); err != nil {
		return nil, fmt.Errorf("list teacher subjects: %w", err)
	}
	teacher.SubjectIDs = subjectIDs
	return &teacher, nil
}

// Create inserts the teacher and connects the subjects in one transaction.
func (r *TeacherRepository) Create(ctx context.Context, teacher *models.Teacher) error {
	if teacher.CreatedAt.IsZero() {
		teacher.CreatedAt = time.Now().UTC()
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO teachers (id, username, name, surname, email, phone, address, img, blood_type, sex, birthday, created_at)
VALUES (:id, :username, :name, :surname, :email, :phone, :address, :img, :blood_type, :sex, :birthday, :created_at)`
		if _, err := tx.NamedExecContext(ctx, query, teacher); err != nil {
			return fmt.Errorf("create teacher: %w", err)
		}
		return teacherSubjects.Add(ctx, tx, teacher.ID, teacher.SubjectIDs)
	})
}

// Update overwrites the teacher columns and sets the subject edges to exactly
// teacher.SubjectIDs. A nil SubjectIDs leaves the edges untouched.
func (r *TeacherRepository) Update(ctx context.Context, teacher *models.Teacher) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		const query = `UPDATE teachers SET username = :username, name = :name, surname = :surname, email = :email, phone = :phone, address = :address,
img = :img, blood_type = :blood_type, sex = :sex, birthday = :birthday WHERE id = :id`
		res, err := tx.NamedExecContext(ctx, query, teacher)
		if err != nil {
			return fmt.Errorf("update teacher: %w", err)
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		if teacher.SubjectIDs == nil {
			return nil
		}
		return teacherSubjects.Replace(ctx, tx, teacher.ID, teacher.SubjectIDs)
	})
}

// HasDependents reports whether lessons, assignments or results still reference the teacher.
func (r *TeacherRepository) HasDependents(ctx context.Context, id string) (bool, error) {
	return referenced(ctx, r.db, id,
		reference{table: "lessons", column: "teacher_id"},
		reference{table: "assignments", column: "teacher_id"},
		reference{table: "results", column: "teacher_id"},
	)
}

// Delete removes a teacher and its subject edges.
func (r *TeacherRepository) Delete(ctx context.Context, id string) error {
	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM subject_teachers WHERE teacher_id = $1`, id); err != nil {
			return fmt.Errorf("delete teacher subjects: %w", err)
		}
		return deleteByID(ctx, tx, "teachers", id)
	})
}

// Options lists teachers for form dropdowns.
func (r *TeacherRepository) Options(ctx context.Context) ([]models.TeacherOption, error) {
	var options []models.TeacherOption
	if err := r.db.SelectContext(ctx, &options, `SELECT id, name, surname FROM teachers ORDER BY name, surname`); err != nil {
		return nil, fmt.Errorf("list teacher options: %w", err)
	}
	return options, nil
}
