package models

import "time"

// ScheduleEntry represents a recurring weekly teaching commitment:
// one teacher with one class and subject in one period on one weekday.
// At most one entry may exist per (teacher, period, day_of_week).
type ScheduleEntry struct {
	ID        int64     `db:"id" json:"id"`
	TeacherID int64     `db:"teacher_id" json:"teacher_id"`
	ClassID   int64     `db:"class_id" json:"class_id"`
	SubjectID int64     `db:"subject_id" json:"subject_id"`
	PeriodID  int64     `db:"period_id" json:"period_id"`
	DayOfWeek int       `db:"day_of_week" json:"day_of_week"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ScheduleEntryDetail enriches entries with descriptive fields for display.
type ScheduleEntryDetail struct {
	ScheduleEntry
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	ClassName   string `db:"class_name" json:"class_name"`
	SubjectName string `db:"subject_name" json:"subject_name"`
	PeriodOrder int    `db:"period_order" json:"period_order"`
	StartTime   string `db:"start_time" json:"start_time"`
	EndTime     string `db:"end_time" json:"end_time"`
}

// ScheduleEntryFilter describes query params for listing schedule entries.
type ScheduleEntryFilter struct {
	TeacherID int64
	ClassID   int64
	DayOfWeek int
	Page      int
	PageSize  int
}
