package models

import "time"

// Assignment is homework with a due date strictly after its start date.
type Assignment struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	StartDate time.Time `db:"start_date" json:"startDate"`
	DueDate   time.Time `db:"due_date" json:"dueDate"`
	SubjectID *int64    `db:"subject_id" json:"subjectId,omitempty"`
	LessonID  *int64    `db:"lesson_id" json:"lessonId,omitempty"`
	ClassID   *int64    `db:"class_id" json:"classId,omitempty"`
	TeacherID *string   `db:"teacher_id" json:"teacherId,omitempty"`
}
