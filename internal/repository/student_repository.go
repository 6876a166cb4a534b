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

const studentColumns = `s.id, s.username, s.name, s.surname, s.email, s.phone, s.address, s.img, s.blood_type, s.sex, s.birthday, s.grade_id, s.class_id, s.parent_id, s.created_at`

const studentDetailFrom = `FROM students s
JOIN classes c ON c.id = s.class_id
JOIN grades g ON g.id = s.grade_id
LEFT JOIN parents p ON p.id = s.parent_id`

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.ListFilter) ([]models.StudentDetail, int, error) {
	var q listQuery
	if filter.ClassID > 0 {
		q.where("s.class_id = ?", filter.ClassID)
	}
	if filter.TeacherID != "" {
		q.where("EXISTS (SELECT 1 FROM lessons l WHERE l.class_id = s.class_id AND l.teacher_id = ?)", filter.TeacherID)
	}
	q.search(filter.Search, "s.name", "s.surname", "s.username")

	limit, offset := pageBounds(filter.Page, filter.PageSize)
	query := fmt.Sprintf(`SELECT %s, c.name AS class_name, g.level AS grade_level, COALESCE(p.name || ' ' || p.surname, '') AS parent_name
%s%s ORDER BY s.created_at DESC LIMIT %d OFFSET %d`, studentColumns, studentDetailFrom, q.clause(), limit, offset)

	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, q.args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM students s"+q.clause(), q.args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student detail by ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s, c.name AS class_name, g.level AS grade_level, COALESCE(p.name || ' ' || p.surname, '') AS parent_name
%s WHERE s.id = $1`, studentColumns, studentDetailFrom)
	var detail models.StudentDetail
	if err := r.db.GetContext(ctx, &detail, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find student: %w", err)
	}
	return &detail, nil
}

// Create inserts a student after re-checking the class capacity under a row
// lock, so concurrent submissions cannot overfill the class.
func (r *StudentRepository) Create(ctx context.Context, student *models.Student) error {
	if student.CreatedAt.IsZero() {
		student.CreatedAt = time.Now().UTC()
	}

	return withTx(ctx, r.db, func(tx *sqlx.Tx) error {
		var capacity int
		if err := tx.GetContext(ctx, &capacity, `SELECT capacity FROM classes WHERE id = $1 FOR UPDATE`, student.ClassID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrClassNotFound
			}
			return fmt.Errorf("lock class: %w", err)
		}

		var count int
		if err := tx.GetContext(ctx, &count, `SELECT COUNT(*) FROM students WHERE class_id = $1`, student.ClassID); err != nil {
			return fmt.Errorf("count class students: %w", err)
		}
		if count >= capacity {
			return ErrClassFull
		}

		const query = `INSERT INTO students (id, username, name, surname, email, phone, address, img, blood_type, sex, birthday, grade_id, class_id, parent_id, created_at)
VALUES (:id, :username, :name, :surname, :email, :phone, :address, :img, :blood_type, :sex, :birthday, :grade_id, :class_id, :parent_id, :created_at)`
		if _, err := tx.NamedExecContext(ctx, query, student); err != nil {
			return fmt.Errorf("create student: %w", err)
		}
		return nil
	})
}

// Update overwrites the mutable student columns.
func (r *StudentRepository) Update(ctx context.Context, student *models.Student) error {
	const query = `UPDATE students SET username = :username, name = :name, surname = :surname, email = :email, phone = :phone, address = :address, img = :img,
blood_type = :blood_type, sex = :sex, birthday = :birthday, grade_id = :grade_id, class_id = :class_id, parent_id = :parent_id WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, student)
	if err != nil {
		return fmt.Errorf("update student: %w", err)
	}
	return requireAffected(res)
}

// HasDependents reports whether results still reference the student.
func (r *StudentRepository) HasDependents(ctx context.Context, id string) (bool, error) {
	return referenced(ctx, r.db, id, reference{table: "results", column: "student_id"})
}

// Delete removes a student row.
func (r *StudentRepository) Delete(ctx context.Context, id string) error {
	return deleteByID(ctx, r.db, "students", id)
}

// Options lists students for form dropdowns.
func (r *StudentRepository) Options(ctx context.Context) ([]models.StudentOption, error) {
	var options []models.StudentOption
	if err := r.db.SelectContext(ctx, &options, `SELECT id, name, surname FROM students ORDER BY name, surname`); err != nil {
		return nil, fmt.Errorf("list student options: %w", err)
	}
	return options, nil
}

// Roster returns every student of a class ordered for printing.
func (r *StudentRepository) Roster(ctx context.Context, classID int64) ([]models.StudentDetail, error) {
	query := fmt.Sprintf(`SELECT %s, c.name AS class_name, g.level AS grade_level, COALESCE(p.name || ' ' || p.surname, '') AS parent_name
%s WHERE s.class_id = $1 ORDER BY s.surname, s.name`, studentColumns, studentDetailFrom)
	var students []models.StudentDetail
	if err := r.db.SelectContext(ctx, &students, query, classID); err != nil {
		return nil, fmt.Errorf("list class roster: %w", err)
	}
	return students, nil
}
