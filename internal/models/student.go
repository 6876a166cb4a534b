package models

import "time"

// Student represents a learner; the id is shared with the identity account.
type Student struct {
	ID        string    `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Name      string    `db:"name" json:"name"`
	Surname   string    `db:"surname" json:"surname"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Address   string    `db:"address" json:"address"`
	Img       *string   `db:"img" json:"img,omitempty"`
	BloodType string    `db:"blood_type" json:"bloodType"`
	Sex       Sex       `db:"sex" json:"sex"`
	Birthday  time.Time `db:"birthday" json:"birthday"`
	GradeID   int64     `db:"grade_id" json:"gradeId"`
	ClassID   int64     `db:"class_id" json:"classId"`
	ParentID  string    `db:"parent_id" json:"parentId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// StudentDetail adds the class and parent labels shown in the students table.
type StudentDetail struct {
	Student
	ClassName  string `db:"class_name" json:"className"`
	GradeLevel int    `db:"grade_level" json:"gradeLevel"`
	ParentName string `db:"parent_name" json:"parentName"`
}

// StudentRecord is a normalized student submission including the login password.
type StudentRecord struct {
	Student
	Password string
}
