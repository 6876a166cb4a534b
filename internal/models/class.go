package models

import "time"

// Grade is the seeded school year reference.
type Grade struct {
	ID    int64 `db:"id" json:"id"`
	Level int   `db:"level" json:"level"`
}

// Class represents a class bounded by its capacity.
type Class struct {
	ID           int64     `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Capacity     int       `db:"capacity" json:"capacity"`
	GradeID      int64     `db:"grade_id" json:"gradeId"`
	SupervisorID *string   `db:"supervisor_id" json:"supervisorId,omitempty"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}

// ClassDetail extends Class with the live enrollment count and labels.
type ClassDetail struct {
	Class
	StudentCount   int     `db:"student_count" json:"studentCount"`
	GradeLevel     int     `db:"grade_level" json:"gradeLevel"`
	SupervisorName *string `db:"supervisor_name" json:"supervisorName,omitempty"`
}

// Full reports whether the class can take no more students.
func (c ClassDetail) Full() bool {
	return c.StudentCount >= c.Capacity
}
