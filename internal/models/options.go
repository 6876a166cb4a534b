package models

// The option types are the slim rows served to form dropdowns.

type TeacherOption struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Surname string `db:"surname" json:"surname"`
}

type StudentOption struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Surname string `db:"surname" json:"surname"`
}

type ParentOption struct {
	ID      string `db:"id" json:"id"`
	Name    string `db:"name" json:"name"`
	Surname string `db:"surname" json:"surname"`
}

type GradeOption struct {
	ID    int64 `db:"id" json:"id"`
	Level int   `db:"level" json:"level"`
}

// ClassOption carries capacity and the live count so the form can flag full classes.
type ClassOption struct {
	ID           int64  `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Capacity     int    `db:"capacity" json:"capacity"`
	StudentCount int    `db:"student_count" json:"studentCount"`
}

type SubjectOption struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

type LessonOption struct {
	ID        int64  `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	SubjectID int64  `db:"subject_id" json:"subjectId"`
}

type ExamOption struct {
	ID    int64  `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
}

type AssignmentOption struct {
	ID    int64  `db:"id" json:"id"`
	Title string `db:"title" json:"title"`
}
