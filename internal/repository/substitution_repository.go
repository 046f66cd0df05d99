package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
)

// SubstitutionRepository provides persistence for substitution assignments.
type SubstitutionRepository struct {
	db *sqlx.DB
}

// NewSubstitutionRepository creates a new substitution repository.
func NewSubstitutionRepository(db *sqlx.DB) *SubstitutionRepository {
	return &SubstitutionRepository{db: db}
}

// ListByDate returns every assignment for one date.
func (r *SubstitutionRepository) ListByDate(ctx context.Context, date time.Time) ([]models.SubstitutionAssignment, error) {
	const query = `SELECT id, absent_teacher_id, substitute_teacher_id, schedule_entry_id, date, created_at FROM substitution_assignments WHERE date = $1 ORDER BY id ASC`
	var assignments []models.SubstitutionAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, date); err != nil {
		return nil, fmt.Errorf("list substitution assignments by date: %w", err)
	}
	return assignments, nil
}

// ListDetailsByDate returns the day roster with display fields, ordered by period.
func (r *SubstitutionRepository) ListDetailsByDate(ctx context.Context, date time.Time) ([]models.SubstitutionAssignmentDetail, error) {
	const query = `SELECT a.id, a.absent_teacher_id, a.substitute_teacher_id, a.schedule_entry_id, a.date, a.created_at,
		at.full_name AS absent_teacher_name, st.full_name AS substitute_teacher_name,
		c.name AS class_name, sub.name AS subject_name, p.order_no AS period_order
	FROM substitution_assignments a
	JOIN teachers at ON at.id = a.absent_teacher_id
	JOIN teachers st ON st.id = a.substitute_teacher_id
	JOIN schedule_entries s ON s.id = a.schedule_entry_id
	JOIN classes c ON c.id = s.class_id
	JOIN subjects sub ON sub.id = s.subject_id
	JOIN periods p ON p.id = s.period_id
	WHERE a.date = $1
	ORDER BY p.order_no ASC`
	var details []models.SubstitutionAssignmentDetail
	if err := r.db.SelectContext(ctx, &details, query, date); err != nil {
		return nil, fmt.Errorf("list substitution details by date: %w", err)
	}
	return details, nil
}

// FindByDateAndEntry loads the assignment covering one (date, schedule entry) pair.
func (r *SubstitutionRepository) FindByDateAndEntry(ctx context.Context, date time.Time, scheduleEntryID int64) (*models.SubstitutionAssignment, error) {
	const query = `SELECT id, absent_teacher_id, substitute_teacher_id, schedule_entry_id, date, created_at FROM substitution_assignments WHERE date = $1 AND schedule_entry_id = $2`
	var assignment models.SubstitutionAssignment
	if err := r.db.GetContext(ctx, &assignment, query, date, scheduleEntryID); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Create stores a new assignment. The table carries uniqueness constraints on
// (date, schedule_entry_id) so concurrent writers cannot double-cover a slot.
func (r *SubstitutionRepository) Create(ctx context.Context, assignment *models.SubstitutionAssignment) error {
	assignment.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO substitution_assignments (absent_teacher_id, substitute_teacher_id, schedule_entry_id, date, created_at) VALUES ($1, $2, $3, $4, $5) RETURNING id`
	if err := r.db.GetContext(ctx, &assignment.ID, query, assignment.AbsentTeacherID, assignment.SubstituteTeacherID, assignment.ScheduleEntryID, assignment.Date, assignment.CreatedAt); err != nil {
		return fmt.Errorf("create substitution assignment: %w", err)
	}
	return nil
}

// DeleteByDateAndEntry removes the assignment for one (date, schedule entry)
// pair and reports how many rows were affected. Deleting a non-existent pair
// is not an error.
func (r *SubstitutionRepository) DeleteByDateAndEntry(ctx context.Context, date time.Time, scheduleEntryID int64) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM substitution_assignments WHERE date = $1 AND schedule_entry_id = $2`, date, scheduleEntryID)
	if err != nil {
		return 0, fmt.Errorf("delete substitution assignment: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete substitution assignment rows: %w", err)
	}
	return affected, nil
}

// ListForAbsence returns assignments covering an absent teacher within a date range.
func (r *SubstitutionRepository) ListForAbsence(ctx context.Context, teacherID int64, startDate, endDate time.Time) ([]models.SubstitutionAssignment, error) {
	const query = `SELECT id, absent_teacher_id, substitute_teacher_id, schedule_entry_id, date, created_at FROM substitution_assignments WHERE absent_teacher_id = $1 AND date BETWEEN $2 AND $3`
	var assignments []models.SubstitutionAssignment
	if err := r.db.SelectContext(ctx, &assignments, query, teacherID, startDate, endDate); err != nil {
		return nil, fmt.Errorf("list substitution assignments for absence: %w", err)
	}
	return assignments, nil
}
