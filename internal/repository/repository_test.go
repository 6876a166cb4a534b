package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/school-dashboard-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func strPtr(v string) *string { return &v }

func TestListQueryNumbersPlaceholders(t *testing.T) {
	var q listQuery
	q.where("s.class_id = ?", int64(4))
	q.search("Ann", "s.name", "s.surname")
	q.where("l.teacher_id = ?", "t1")

	assert.Equal(t, " WHERE s.class_id = $1 AND (LOWER(s.name) LIKE $2 OR LOWER(s.surname) LIKE $2) AND l.teacher_id = $3", q.clause())
	assert.Equal(t, []interface{}{int64(4), "%ann%", "t1"}, q.args)
}

func TestPageBounds(t *testing.T) {
	limit, offset := pageBounds(0, 0)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 0, offset)

	limit, offset = pageBounds(3, 10)
	assert.Equal(t, 10, limit)
	assert.Equal(t, 20, offset)

	limit, _ = pageBounds(1, 1000)
	assert.Equal(t, 100, limit)
}

func TestStudentCreateChecksCapacityUnderLock(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity FROM classes WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(2))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE class_id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectExec("INSERT INTO students").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &models.Student{ID: "user_1", Username: "ann", ClassID: 3, GradeID: 1, ParentID: "p1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentCreateRejectsFullClass(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity FROM classes WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"capacity"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students WHERE class_id = $1")).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Student{ID: "user_2", ClassID: 3})
	assert.ErrorIs(t, err, ErrClassFull)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentCreateMissingClass(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT capacity FROM classes WHERE id = $1 FOR UPDATE")).
		WithArgs(int64(9)).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Student{ID: "user_3", ClassID: 9})
	assert.ErrorIs(t, err, ErrClassNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewStudentRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "username", "name", "surname", "email", "phone", "address", "img", "blood_type", "sex", "birthday", "grade_id", "class_id", "parent_id", "created_at", "class_name", "grade_level", "parent_name"}).
		AddRow("user_1", "ann", "Ann", "Lee", nil, nil, "Street 1", nil, "A", "FEMALE", now, 1, 2, "p1", now, "1A", 1, "Jane Lee")
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.class_id = $1 AND (LOWER(s.name) LIKE $2 OR LOWER(s.surname) LIKE $2 OR LOWER(s.username) LIKE $2) ORDER BY s.created_at DESC LIMIT 10 OFFSET 10")).
		WithArgs(int64(2), "%ann%").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM students s WHERE s.class_id = $1")).
		WithArgs(int64(2), "%ann%").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	students, total, err := repo.List(context.Background(), models.ListFilter{ClassID: 2, Search: "Ann", Page: 2, PageSize: 10})
	require.NoError(t, err)
	require.Len(t, students, 1)
	assert.Equal(t, "1A", students[0].ClassName)
	assert.Equal(t, 11, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherUpdateReplacesSubjectSet(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE teachers SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subject_teachers WHERE teacher_id = $1 AND NOT (subject_id = ANY($2::bigint[]))")).
		WithArgs("t1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO subject_teachers (teacher_id, subject_id) SELECT $1, m FROM UNNEST($2::bigint[]) AS m ON CONFLICT DO NOTHING")).
		WithArgs("t1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), &models.Teacher{ID: "t1", SubjectIDs: []int64{1, 2}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherUpdateWithoutSubjectsLeavesEdges(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE teachers SET").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Update(context.Background(), &models.Teacher{ID: "t1"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherHasDependentsChecksEveryReference(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM lessons WHERE teacher_id = $1) OR EXISTS (SELECT 1 FROM assignments WHERE teacher_id = $1) OR EXISTS (SELECT 1 FROM results WHERE teacher_id = $1)")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"?column?"}).AddRow(true))

	found, err := repo.HasDependents(context.Background(), "t1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherUpdateMissingRowRollsBack(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE teachers SET").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Update(context.Background(), &models.Teacher{ID: "missing"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelationSetReplaceWithNoMembersClearsEdges(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM subject_teachers WHERE subject_id = $1 AND NOT (teacher_id = ANY($2::text[]))")).
		WithArgs(int64(5), "{}").
		WillReturnResult(sqlmock.NewResult(0, 3))

	err := subjectTeachers.Replace(context.Background(), db, int64(5), []string(nil))
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRelationSetAddSkipsEmptyMembers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()

	require.NoError(t, subjectTeachers.Add(context.Background(), db, int64(5), []string{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSubjectCreateConnectsTeachers(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO subjects (name) VALUES ($1) RETURNING id")).
		WithArgs("Math").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(12))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO subject_teachers (subject_id, teacher_id)")).
		WithArgs(int64(12), "{\"t1\",\"t2\"}").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	subject := &models.Subject{Name: "Math", TeacherIDs: []string{"t1", "t2"}}
	require.NoError(t, repo.Create(context.Background(), subject))
	assert.Equal(t, int64(12), subject.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParentCreateConnectsStudents(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParentRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO parents").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE students SET parent_id = $1 WHERE id = ANY($2::text[])")).
		WithArgs("p1", "{\"s1\"}").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.Create(context.Background(), &models.Parent{ID: "p1", Username: "mom", StudentIDs: []string{"s1"}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParentCreateWithoutPhoneWritesNull(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParentRepository(db)

	for _, id := range []string{"p1", "p2"} {
		mock.ExpectBegin()
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO parents (id, username, name, surname, email, phone, address, created_at)")).
			WithArgs(id, "user_"+id, "John", "Doe", nil, nil, "Home", sqlmock.AnyArg()).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()
	}

	for _, id := range []string{"p1", "p2"} {
		err := repo.Create(context.Background(), &models.Parent{ID: id, Username: "user_" + id, Name: "John", Surname: "Doe", Address: "Home"})
		require.NoError(t, err)
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParentPatchClearsPhone(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE parents SET phone = $1 WHERE id = $2")).
		WithArgs(nil, "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Patch(context.Background(), "p1", models.ParentPatch{Phone: strPtr("")}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParentPatchUpdatesOnlyPresentColumns(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE parents SET phone = $1 WHERE id = $2")).
		WithArgs("+15551234567", "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Patch(context.Background(), "p1", models.ParentPatch{Phone: strPtr("+15551234567")})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestParentPatchClearsEmailAndSkipsEmptyPatch(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewParentRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE parents SET name = $1, email = $2 WHERE id = $3")).
		WithArgs("Jane", nil, "p1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Patch(context.Background(), "p1", models.ParentPatch{Name: strPtr("Jane"), Email: strPtr("")}))
	require.NoError(t, repo.Patch(context.Background(), "p1", models.ParentPatch{}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingRowReturnsNoRows(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewEventRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM events WHERE id = $1")).
		WithArgs(int64(44)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), 44)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClassCreateReturnsID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewClassRepository(db)

	mock.ExpectQuery("INSERT INTO classes").
		WithArgs("1A", 30, int64(1), nil, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	class := &models.Class{Name: "1A", Capacity: 30, GradeID: 1}
	require.NoError(t, repo.Create(context.Background(), class))
	assert.Equal(t, int64(7), class.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLessonOptionsScopedToTeacher(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewLessonRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, subject_id FROM lessons WHERE teacher_id = $1 ORDER BY name")).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "subject_id"}).AddRow(1, "Math 1A", 4))

	options, err := repo.Options(context.Background(), "t1")
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, int64(4), options[0].SubjectID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresErrorClassification(t *testing.T) {
	unique := fmt.Errorf("create student: %w", &pq.Error{Code: "23505"})
	fk := fmt.Errorf("create lesson: %w", &pq.Error{Code: "23503"})

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsForeignKeyViolation(unique))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsUniqueViolation(errors.New("boom")))
}
