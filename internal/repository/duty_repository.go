package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
)

// DutyRepository provides persistence for supervision duties.
type DutyRepository struct {
	db *sqlx.DB
}

// NewDutyRepository creates a new duty repository.
func NewDutyRepository(db *sqlx.DB) *DutyRepository {
	return &DutyRepository{db: db}
}

// List returns duty entries with optional filtering and pagination.
func (r *DutyRepository) List(ctx context.Context, filter models.DutyEntryFilter) ([]models.DutyEntry, int, error) {
	base := "FROM duty_entries WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TeacherID > 0 {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.DayOfWeek > 0 {
		conditions = append(conditions, fmt.Sprintf("day_of_week = $%d", len(args)+1))
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
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT id, teacher_id, location, day_of_week, period_id, created_at, updated_at %s ORDER BY day_of_week ASC, location ASC LIMIT %d OFFSET %d", base, size, offset)
	var duties []models.DutyEntry
	if err := r.db.SelectContext(ctx, &duties, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list duty entries: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count duty entries: %w", err)
	}

	return duties, total, nil
}

// FindByID loads a duty entry by id.
func (r *DutyRepository) FindByID(ctx context.Context, id int64) (*models.DutyEntry, error) {
	const query = `SELECT id, teacher_id, location, day_of_week, period_id, created_at, updated_at FROM duty_entries WHERE id = $1`
	var duty models.DutyEntry
	if err := r.db.GetContext(ctx, &duty, query, id); err != nil {
		return nil, err
	}
	return &duty, nil
}

// ListByDay returns every duty entry for one weekday.
func (r *DutyRepository) ListByDay(ctx context.Context, dayOfWeek int) ([]models.DutyEntry, error) {
	const query = `SELECT id, teacher_id, location, day_of_week, period_id, created_at, updated_at FROM duty_entries WHERE day_of_week = $1`
	var duties []models.DutyEntry
	if err := r.db.SelectContext(ctx, &duties, query, dayOfWeek); err != nil {
		return nil, fmt.Errorf("list duty entries by day: %w", err)
	}
	return duties, nil
}

// Create stores a new duty entry.
func (r *DutyRepository) Create(ctx context.Context, duty *models.DutyEntry) error {
	now := time.Now().UTC()
	duty.CreatedAt = now
	duty.UpdatedAt = now

	const query = `INSERT INTO duty_entries (teacher_id, location, day_of_week, period_id, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := r.db.GetContext(ctx, &duty.ID, query, duty.TeacherID, duty.Location, duty.DayOfWeek, duty.PeriodID, duty.CreatedAt, duty.UpdatedAt); err != nil {
		return fmt.Errorf("create duty entry: %w", err)
	}
	return nil
}

// Update modifies a duty entry.
func (r *DutyRepository) Update(ctx context.Context, duty *models.DutyEntry) error {
	duty.UpdatedAt = time.Now().UTC()
	const query = `UPDATE duty_entries SET teacher_id = :teacher_id, location = :location, day_of_week = :day_of_week, period_id = :period_id, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, duty); err != nil {
		return fmt.Errorf("update duty entry: %w", err)
	}
	return nil
}

// Delete removes a duty entry by id.
func (r *DutyRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM duty_entries WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete duty entry: %w", err)
	}
	return nil
}
