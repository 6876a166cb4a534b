package models

import "time"

// Event is a calendar entry, optionally scoped to a class.
type Event struct {
	ID          int64     `db:"id" json:"id"`
	Title       string    `db:"title" json:"title"`
	Date        time.Time `db:"date" json:"date"`
	Description string    `db:"description" json:"description"`
	StartTime   time.Time `db:"start_time" json:"startTime"`
	EndTime     time.Time `db:"end_time" json:"endTime"`
	ClassID     *int64    `db:"class_id" json:"classId,omitempty"`
}
