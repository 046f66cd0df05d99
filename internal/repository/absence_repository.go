package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
)

// AbsenceRepository provides persistence for teacher absences.
type AbsenceRepository struct {
	db *sqlx.DB
}

// NewAbsenceRepository creates a new absence repository.
func NewAbsenceRepository(db *sqlx.DB) *AbsenceRepository {
	return &AbsenceRepository{db: db}
}

// List returns absences with optional filtering and pagination.
func (r *AbsenceRepository) List(ctx context.Context, filter models.AbsenceFilter) ([]models.Absence, int, error) {
	base := "FROM absences WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TeacherID > 0 {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Date != nil {
		conditions = append(conditions, fmt.Sprintf("start_date <= $%d AND end_date >= $%d", len(args)+1, len(args)+1))
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

	query := fmt.Sprintf("SELECT id, teacher_id, start_date, end_date, reason, created_at %s ORDER BY start_date DESC LIMIT %d OFFSET %d", base, size, offset)
	var absences []models.Absence
	if err := r.db.SelectContext(ctx, &absences, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list absences: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count absences: %w", err)
	}

	return absences, total, nil
}

// FindByID loads an absence by id.
func (r *AbsenceRepository) FindByID(ctx context.Context, id int64) (*models.Absence, error) {
	const query = `SELECT id, teacher_id, start_date, end_date, reason, created_at FROM absences WHERE id = $1`
	var absence models.Absence
	if err := r.db.GetContext(ctx, &absence, query, id); err != nil {
		return nil, err
	}
	return &absence, nil
}

// ListCovering returns every absence whose date range contains the given date.
func (r *AbsenceRepository) ListCovering(ctx context.Context, date time.Time) ([]models.Absence, error) {
	const query = `SELECT id, teacher_id, start_date, end_date, reason, created_at FROM absences WHERE start_date <= $1 AND end_date >= $1`
	var absences []models.Absence
	if err := r.db.SelectContext(ctx, &absences, query, date); err != nil {
		return nil, fmt.Errorf("list absences covering date: %w", err)
	}
	return absences, nil
}

// Create stores a new absence record.
func (r *AbsenceRepository) Create(ctx context.Context, absence *models.Absence) error {
	absence.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO absences (teacher_id, start_date, end_date, reason, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &absence.ID, query, absence.TeacherID, absence.StartDate, absence.EndDate, absence.Reason, absence.CreatedAt); err != nil {
		return fmt.Errorf("create absence: %w", err)
	}
	return nil
}

// Delete removes an absence by id.
func (r *AbsenceRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM absences WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete absence: %w", err)
	}
	return nil
}
