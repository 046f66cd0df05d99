package models

import "time"

// Absence marks a teacher as away for every calendar date within
// [StartDate, EndDate] inclusive. Absences are read-only once created.
type Absence struct {
	ID        int64     `db:"id" json:"id"`
	TeacherID int64     `db:"teacher_id" json:"teacher_id"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// Contains reports whether the given date falls inside the absence range.
// Comparison is by calendar date, ignoring the time of day.
func (a Absence) Contains(date time.Time) bool {
	day := truncateToDay(date)
	return !day.Before(truncateToDay(a.StartDate)) && !day.After(truncateToDay(a.EndDate))
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// AbsenceFilter narrows absence listings.
type AbsenceFilter struct {
	TeacherID int64
	Date      *time.Time
	Page      int
	PageSize  int
}
