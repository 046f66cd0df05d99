package models

import "time"

// DutyEntry is a recurring supervision duty. A nil PeriodID means an all-day
// duty that blocks every period on that weekday.
type DutyEntry struct {
	ID        int64     `db:"id" json:"id"`
	TeacherID int64     `db:"teacher_id" json:"teacher_id"`
	Location  string    `db:"location" json:"location"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	PeriodID  *int64    `db:"period_id" json:"period_id,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// DutyEntryFilter narrows duty listings.
type DutyEntryFilter struct {
	TeacherID int64
	DayOfWeek int
	Page      int
	PageSize  int
}
