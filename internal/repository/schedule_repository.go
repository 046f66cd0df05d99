package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
)

const scheduleDetailColumns = `s.id, s.teacher_id, s.class_id, s.subject_id, s.period_id, s.day_of_week, s.created_at, s.updated_at,
	t.full_name AS teacher_name, c.name AS class_name, sub.name AS subject_name,
	p.order_no AS period_order, p.start_time, p.end_time`

const scheduleDetailJoins = ` FROM schedule_entries s
	JOIN teachers t ON t.id = s.teacher_id
	JOIN classes c ON c.id = s.class_id
	JOIN subjects sub ON sub.id = s.subject_id
	JOIN periods p ON p.id = s.period_id`

// ScheduleRepository provides persistence for weekly schedule entries.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository creates a new schedule repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns schedule entries with optional filtering and pagination.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntryDetail, int, error) {
	base := scheduleDetailJoins + " WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TeacherID > 0 {
		conditions = append(conditions, fmt.Sprintf("s.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.ClassID > 0 {
		conditions = append(conditions, fmt.Sprintf("s.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.DayOfWeek > 0 {
		conditions = append(conditions, fmt.Sprintf("s.day_of_week = $%d", len(args)+1))
		args = append(args, filter.DayOfWeek)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 200 {
		size = 50
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s%s ORDER BY s.day_of_week ASC, p.order_no ASC LIMIT %d OFFSET %d", scheduleDetailColumns, base, size, offset)
	var entries []models.ScheduleEntryDetail
	if err := r.db.SelectContext(ctx, &entries, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedule entries: %w", err)
	}

	countQuery := "SELECT COUNT(*)" + base
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedule entries: %w", err)
	}

	return entries, total, nil
}

// FindByID loads a schedule entry by id.
func (r *ScheduleRepository) FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error) {
	const query = `SELECT id, teacher_id, class_id, subject_id, period_id, day_of_week, created_at, updated_at FROM schedule_entries WHERE id = $1`
	var entry models.ScheduleEntry
	if err := r.db.GetContext(ctx, &entry, query, id); err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByTeacherAndDay returns a teacher's entries for one weekday ordered by period.
func (r *ScheduleRepository) ListByTeacherAndDay(ctx context.Context, teacherID int64, dayOfWeek int) ([]models.ScheduleEntryDetail, error) {
	query := "SELECT " + scheduleDetailColumns + scheduleDetailJoins + " WHERE s.teacher_id = $1 AND s.day_of_week = $2 ORDER BY p.order_no ASC"
	var entries []models.ScheduleEntryDetail
	if err := r.db.SelectContext(ctx, &entries, query, teacherID, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list schedule entries by teacher and day: %w", err)
	}
	return entries, nil
}

// ListByDay returns every entry for one weekday.
func (r *ScheduleRepository) ListByDay(ctx context.Context, dayOfWeek int) ([]models.ScheduleEntry, error) {
	const query = `SELECT id, teacher_id, class_id, subject_id, period_id, day_of_week, created_at, updated_at FROM schedule_entries WHERE day_of_week = $1`
	var entries []models.ScheduleEntry
	if err := r.db.SelectContext(ctx, &entries, query, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list schedule entries by day: %w", err)
	}
	return entries, nil
}

// ExistsSlot checks whether a teacher already has an entry in the same
// (period, day_of_week) slot, optionally excluding one record.
func (r *ScheduleRepository) ExistsSlot(ctx context.Context, teacherID, periodID int64, dayOfWeek int, excludeID int64) (bool, error) {
	const query = `SELECT COUNT(*) FROM schedule_entries WHERE teacher_id = $1 AND period_id = $2 AND day_of_week = $3 AND id <> $4`
	var count int
	if err := r.db.GetContext(ctx, &count, query, teacherID, periodID, dayOfWeek, excludeID); err != nil {
		return false, fmt.Errorf("check schedule slot: %w", err)
	}
	return count > 0, nil
}

// Create stores a new schedule entry.
func (r *ScheduleRepository) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	now := time.Now().UTC()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	const query = `INSERT INTO schedule_entries (teacher_id, class_id, subject_id, period_id, day_of_week, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.GetContext(ctx, &entry.ID, query, entry.TeacherID, entry.ClassID, entry.SubjectID, entry.PeriodID, entry.DayOfWeek, entry.CreatedAt, entry.UpdatedAt); err != nil {
		return fmt.Errorf("create schedule entry: %w", err)
	}
	return nil
}

// Update modifies a schedule entry.
func (r *ScheduleRepository) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	entry.UpdatedAt = time.Now().UTC()
	const query = `UPDATE schedule_entries SET teacher_id = :teacher_id, class_id = :class_id, subject_id = :subject_id, period_id = :period_id, day_of_week = :day_of_week, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("update schedule entry: %w", err)
	}
	return nil
}

// Delete removes a schedule entry by id.
func (r *ScheduleRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedule_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule entry: %w", err)
	}
	return nil
}
