package models

import "time"

// Period is one lesson slot in the daily timetable. The period set is fixed
// and totally ordered by OrderNo.
type Period struct {
	ID        int64     `db:"id" json:"id"`
	OrderNo   int       `db:"order_no" json:"order_no"`
	StartTime string    `db:"start_time" json:"start_time"`
	EndTime   string    `db:"end_time" json:"end_time"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
