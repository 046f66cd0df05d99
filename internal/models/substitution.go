package models

import "time"

// Availability classifies one teacher's status for a (date, period) pair.
// Every teacher resolves to exactly one of these values.
type Availability string

const (
	AvailabilityAvailable           Availability = "available"
	AvailabilityAbsent              Availability = "absent"
	AvailabilityAlreadySubstituting Availability = "already_substituting"
	AvailabilityHasOwnClass         Availability = "has_own_class"
	AvailabilityOnDuty              Availability = "on_duty"
)

// TeacherAvailability pairs a teacher with their resolved status.
type TeacherAvailability struct {
	TeacherID int64        `json:"teacher_id"`
	Status    Availability `json:"status"`
}

// SubstitutionAssignment records one substitute covering one schedule entry
// of an absent teacher on a concrete date. For a fixed (date, schedule entry)
// at most one assignment exists.
type SubstitutionAssignment struct {
	ID                  int64     `db:"id" json:"id"`
	AbsentTeacherID     int64     `db:"absent_teacher_id" json:"absent_teacher_id"`
	SubstituteTeacherID int64     `db:"substitute_teacher_id" json:"substitute_teacher_id"`
	ScheduleEntryID     int64     `db:"schedule_entry_id" json:"schedule_entry_id"`
	Date                time.Time `db:"date" json:"date"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

// SubstitutionAssignmentDetail adds display fields for roster views.
type SubstitutionAssignmentDetail struct {
	SubstitutionAssignment
	AbsentTeacherName     string `db:"absent_teacher_name" json:"absent_teacher_name"`
	SubstituteTeacherName string `db:"substitute_teacher_name" json:"substitute_teacher_name"`
	ClassName             string `db:"class_name" json:"class_name"`
	SubjectName           string `db:"subject_name" json:"subject_name"`
	PeriodOrder           int    `db:"period_order" json:"period_order"`
}

// Skip reasons reported by auto-fill and assignment validation.
const (
	SkipReasonNoAvailableTeacher  = "NO_AVAILABLE_TEACHER"
	ConflictReasonAlreadyAssigned = "ALREADY_ASSIGNED"
)

// SkippedEntry is a coverage slot auto-fill could not assign.
type SkippedEntry struct {
	ScheduleEntryID int64  `json:"schedule_entry_id"`
	Reason          string `json:"reason"`
}

// AutoFillResult partitions the coverage set into assigned and skipped
// entries; every entry needing coverage appears in exactly one list.
type AutoFillResult struct {
	Assigned []SubstitutionAssignment `json:"assigned"`
	Skipped  []SkippedEntry           `json:"skipped"`
}

// SubstitutionConflictError is returned when an assignment would violate an
// invariant. Reason carries either the blocking Availability value or
// ConflictReasonAlreadyAssigned.
type SubstitutionConflictError struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Error implements the error interface for conflict errors.
func (e *SubstitutionConflictError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return e.Message
}
