package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
)

// PeriodRepository provides persistence for daily lesson periods.
type PeriodRepository struct {
	db *sqlx.DB
}

// NewPeriodRepository creates a new period repository.
func NewPeriodRepository(db *sqlx.DB) *PeriodRepository {
	return &PeriodRepository{db: db}
}

// List returns every period ordered by its position in the day.
func (r *PeriodRepository) List(ctx context.Context) ([]models.Period, error) {
	const query = `SELECT id, order_no, start_time, end_time, created_at, updated_at FROM periods ORDER BY order_no ASC`
	var periods []models.Period
	if err := r.db.SelectContext(ctx, &periods, query); err != nil {
		return nil, fmt.Errorf("list periods: %w", err)
	}
	return periods, nil
}

// FindByID loads a period by id.
func (r *PeriodRepository) FindByID(ctx context.Context, id int64) (*models.Period, error) {
	const query = `SELECT id, order_no, start_time, end_time, created_at, updated_at FROM periods WHERE id = $1`
	var period models.Period
	if err := r.db.GetContext(ctx, &period, query, id); err != nil {
		return nil, err
	}
	return &period, nil
}

// ExistsByOrderNo checks order uniqueness, optionally excluding one record.
func (r *PeriodRepository) ExistsByOrderNo(ctx context.Context, orderNo int, excludeID int64) (bool, error) {
	const query = `SELECT COUNT(*) FROM periods WHERE order_no = $1 AND id <> $2`
	var count int
	if err := r.db.GetContext(ctx, &count, query, orderNo, excludeID); err != nil {
		return false, fmt.Errorf("check period order: %w", err)
	}
	return count > 0, nil
}

// Create stores a new period record.
func (r *PeriodRepository) Create(ctx context.Context, period *models.Period) error {
	now := time.Now().UTC()
	period.CreatedAt = now
	period.UpdatedAt = now

	const query = `INSERT INTO periods (order_no, start_time, end_time, created_at, updated_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &period.ID, query, period.OrderNo, period.StartTime, period.EndTime, period.CreatedAt, period.UpdatedAt); err != nil {
		return fmt.Errorf("create period: %w", err)
	}
	return nil
}

// Update modifies a period record.
func (r *PeriodRepository) Update(ctx context.Context, period *models.Period) error {
	period.UpdatedAt = time.Now().UTC()
	const query = `UPDATE periods SET order_no = :order_no, start_time = :start_time, end_time = :end_time, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, period); err != nil {
		return fmt.Errorf("update period: %w", err)
	}
	return nil
}

// Delete removes a period by id.
func (r *PeriodRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM periods WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete period: %w", err)
	}
	return nil
}
