package models

import "time"

// Teacher represents an instructor; the id is shared with the identity account.
type Teacher struct {
	ID         string    `db:"id" json:"id"`
	Username   string    `db:"username" json:"username"`
	Name       string    `db:"name" json:"name"`
	Surname    string    `db:"surname" json:"surname"`
	Email      *string   `db:"email" json:"email,omitempty"`
	Phone      *string   `db:"phone" json:"phone,omitempty"`
	Address    string    `db:"address" json:"address"`
	Img        *string   `db:"img" json:"img,omitempty"`
	BloodType  string    `db:"blood_type" json:"bloodType"`
	Sex        Sex       `db:"sex" json:"sex"`
	Birthday   time.Time `db:"birthday" json:"birthday"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
	SubjectIDs []int64   `db:"-" json:"subjectIds"`
}

// TeacherRecord is a normalized teacher submission including the login password.
type TeacherRecord struct {
	Teacher
	Password string
}
