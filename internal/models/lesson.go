package models

import "time"

// Lesson is a weekly slot of a subject taught to a class.
type Lesson struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Day       Weekday   `db:"day" json:"day"`
	StartTime time.Time `db:"start_time" json:"startTime"`
	EndTime   time.Time `db:"end_time" json:"endTime"`
	SubjectID int64     `db:"subject_id" json:"subjectId"`
	ClassID   int64     `db:"class_id" json:"classId"`
	TeacherID string    `db:"teacher_id" json:"teacherId"`
}

// LessonDetail adds display labels used by the lessons table.
type LessonDetail struct {
	Lesson
	SubjectName string `db:"subject_name" json:"subjectName"`
	ClassName   string `db:"class_name" json:"className"`
	TeacherName string `db:"teacher_name" json:"teacherName"`
}
