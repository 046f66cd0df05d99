package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
)

// EtutRepository provides persistence for study sessions and their attendance.
type EtutRepository struct {
	db *sqlx.DB
}

// NewEtutRepository creates a new etut repository.
func NewEtutRepository(db *sqlx.DB) *EtutRepository {
	return &EtutRepository{db: db}
}

// ListSessions returns sessions with optional filtering and pagination.
func (r *EtutRepository) ListSessions(ctx context.Context, filter models.EtutSessionFilter) ([]models.EtutSession, int, error) {
	base := "FROM etut_sessions WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TeacherID > 0 {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("date = $%d", len(args)+1))
		args = append(args, *filter.Date)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, date, period_id, teacher_id, subject_id, topic, created_at, updated_at %s ORDER BY date DESC, id DESC LIMIT %d OFFSET %d", base, size, offset)
	var sessions []models.EtutSession
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list etut sessions: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count etut sessions: %w", err)
	}

	return sessions, total, nil
}

// FindSessionByID loads a session by id.
func (r *EtutRepository) FindSessionByID(ctx context.Context, id int64) (*models.EtutSession, error) {
	const query = `SELECT id, date, period_id, teacher_id, subject_id, topic, created_at, updated_at FROM etut_sessions WHERE id = $1`
	var session models.EtutSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateSession stores a new session record.
func (r *EtutRepository) CreateSession(ctx context.Context, session *models.EtutSession) error {
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now

	const query = `INSERT INTO etut_sessions (date, period_id, teacher_id, subject_id, topic, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.GetContext(ctx, &session.ID, query, session.Date, session.PeriodID, session.TeacherID, session.SubjectID, session.Topic, session.CreatedAt, session.UpdatedAt); err != nil {
		return fmt.Errorf("create etut session: %w", err)
	}
	return nil
}

// DeleteSession removes a session and its attendance rows.
func (r *EtutRepository) DeleteSession(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM etut_attendances WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("delete etut attendance rows: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM etut_sessions WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete etut session: %w", err)
	}
	return nil
}

// UpsertAttendance records one student's presence, replacing any prior mark.
func (r *EtutRepository) UpsertAttendance(ctx context.Context, attendance *models.EtutAttendance) error {
	now := time.Now().UTC()
	attendance.CreatedAt = now
	attendance.UpdatedAt = now

	const query = `INSERT INTO etut_attendances (session_id, student_id, present, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, student_id)
		DO UPDATE SET present = EXCLUDED.present, updated_at = EXCLUDED.updated_at
		RETURNING id`
	if err := r.db.GetContext(ctx, &attendance.ID, query, attendance.SessionID, attendance.StudentID, attendance.Present, attendance.CreatedAt, attendance.UpdatedAt); err != nil {
		return fmt.Errorf("upsert etut attendance: %w", err)
	}
	return nil
}

// ListAttendance returns attendance marks for one session with student fields.
func (r *EtutRepository) ListAttendance(ctx context.Context, sessionID int64) ([]models.EtutAttendanceDetail, error) {
	const query = `SELECT a.id, a.session_id, a.student_id, a.present, a.created_at, a.updated_at,
		s.full_name AS student_name, s.number AS student_number
	FROM etut_attendances a
	JOIN students s ON s.id = a.student_id
	WHERE a.session_id = $1
	ORDER BY s.number ASC`
	var details []models.EtutAttendanceDetail
	if err := r.db.SelectContext(ctx, &details, query, sessionID); err != nil {
		return nil, fmt.Errorf("list etut attendance: %w", err)
	}
	return details, nil
}
