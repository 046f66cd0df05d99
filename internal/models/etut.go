package models

import "time"

// EtutSession is an after-school study session supervised by a teacher.
type EtutSession struct {
	ID        int64     `db:"id" json:"id"`
	Date      time.Time `db:"date" json:"date"`
	PeriodID  int64     `db:"period_id" json:"period_id"`
	TeacherID int64     `db:"teacher_id" json:"teacher_id"`
	SubjectID *int64    `db:"subject_id" json:"subject_id,omitempty"`
	Topic     string    `db:"topic" json:"topic"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EtutAttendance marks one student's presence in a session.
type EtutAttendance struct {
	ID        int64     `db:"id" json:"id"`
	SessionID int64     `db:"session_id" json:"session_id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	Present   bool      `db:"present" json:"present"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// EtutAttendanceDetail adds student display fields.
type EtutAttendanceDetail struct {
	EtutAttendance
	StudentName   string `db:"student_name" json:"student_name"`
	StudentNumber string `db:"student_number" json:"student_number"`
}

// EtutSessionFilter narrows session listings.
type EtutSessionFilter struct {
	TeacherID int64
	Date      *time.Time
	Page      int
	PageSize  int
}
