package models

import "time"

// Exam is scheduled against a lesson.
type Exam struct {
	ID        int64     `db:"id" json:"id"`
	Title     string    `db:"title" json:"title"`
	StartTime time.Time `db:"start_time" json:"startTime"`
	EndTime   time.Time `db:"end_time" json:"endTime"`
	LessonID  int64     `db:"lesson_id" json:"lessonId"`
}

// ExamDetail adds lesson context to an exam.
type ExamDetail struct {
	Exam
	SubjectName string `db:"subject_name" json:"subjectName"`
	ClassName   string `db:"class_name" json:"className"`
	TeacherID   string `db:"teacher_id" json:"teacherId"`
}
