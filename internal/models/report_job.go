package models

import "time"

// ReportType identifies what a report job renders.
type ReportType string

const (
	ReportTypeSubstitutionDay  ReportType = "substitution_day"
	ReportTypeExtraLessonMonth ReportType = "extra_lesson_month"
)

// ReportFormat selects the output encoding.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// ReportStatus tracks job lifecycle.
type ReportStatus string

const (
	ReportStatusQueued     ReportStatus = "queued"
	ReportStatusProcessing ReportStatus = "processing"
	ReportStatusDone       ReportStatus = "done"
	ReportStatusFailed     ReportStatus = "failed"
)

// ReportJob is an asynchronous export of a substitution day roster or a
// monthly extra-lesson summary.
type ReportJob struct {
	ID           string       `db:"id" json:"id"`
	Type         ReportType   `db:"type" json:"type"`
	Format       ReportFormat `db:"format" json:"format"`
	Date         *time.Time   `db:"date" json:"date,omitempty"`
	Year         int          `db:"year" json:"year,omitempty"`
	Month        int          `db:"month" json:"month,omitempty"`
	Status       ReportStatus `db:"status" json:"status"`
	FilePath     *string      `db:"file_path" json:"-"`
	ErrorMessage *string      `db:"error_message" json:"error_message,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	FinishedAt   *time.Time   `db:"finished_at" json:"finished_at,omitempty"`
}
