package models

import "time"

// Extra lesson source values.
const (
	ExtraLessonSourceManual       = "manual"
	ExtraLessonSourceSubstitution = "substitution"
)

// ExtraLesson is one bookkeeping record of extra teaching hours. Records with
// source "substitution" are written and removed by the substitution workflow.
type ExtraLesson struct {
	ID             int64     `db:"id" json:"id"`
	TeacherID      int64     `db:"teacher_id" json:"teacher_id"`
	Date           time.Time `db:"date" json:"date"`
	Hours          int       `db:"hours" json:"hours"`
	Source         string    `db:"source" json:"source"`
	SubstitutionID *int64    `db:"substitution_id" json:"substitution_id,omitempty"`
	Note           string    `db:"note" json:"note"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// ExtraLessonSummary aggregates a teacher's extra hours for one month.
type ExtraLessonSummary struct {
	TeacherID   int64  `db:"teacher_id" json:"teacher_id"`
	TeacherName string `db:"teacher_name" json:"teacher_name"`
	Year        int    `db:"year" json:"year"`
	Month       int    `db:"month" json:"month"`
	TotalHours  int    `db:"total_hours" json:"total_hours"`
}

// ExtraLessonFilter narrows extra lesson listings.
type ExtraLessonFilter struct {
	TeacherID int64
	Year      int
	Month     int
	Page      int
	PageSize  int
}
