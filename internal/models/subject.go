package models

// Subject represents an academic subject taught by many teachers.
type Subject struct {
	ID         int64    `db:"id" json:"id"`
	Name       string   `db:"name" json:"name"`
	TeacherIDs []string `db:"-" json:"teacherIds"`
}
