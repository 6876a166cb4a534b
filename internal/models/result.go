package models

import "time"

// Result records a student's score for an exam or an assignment.
type Result struct {
	ID           int64     `db:"id" json:"id"`
	Score        float64   `db:"score" json:"score"`
	Date         time.Time `db:"date" json:"date"`
	ExamID       *int64    `db:"exam_id" json:"examId,omitempty"`
	AssignmentID *int64    `db:"assignment_id" json:"assignmentId,omitempty"`
	StudentID    string    `db:"student_id" json:"studentId"`
	TeacherID    *string   `db:"teacher_id" json:"teacherId,omitempty"`
	ClassID      int64     `db:"class_id" json:"classId"`
}

// ResultDetail adds the student and assessment labels.
type ResultDetail struct {
	Result
	StudentName string  `db:"student_name" json:"studentName"`
	Title       *string `db:"title" json:"title,omitempty"`
}
