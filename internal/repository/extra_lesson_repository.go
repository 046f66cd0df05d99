package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
)

// ExtraLessonRepository provides persistence for extra lesson bookkeeping.
type ExtraLessonRepository struct {
	db *sqlx.DB
}

// NewExtraLessonRepository creates a new extra lesson repository.
func NewExtraLessonRepository(db *sqlx.DB) *ExtraLessonRepository {
	return &ExtraLessonRepository{db: db}
}

// List returns extra lesson records with optional filtering and pagination.
func (r *ExtraLessonRepository) List(ctx context.Context, filter models.ExtraLessonFilter) ([]models.ExtraLesson, int, error) {
	base := "FROM extra_lessons WHERE 1=1"
	var conditions []string
	var args []interface{}

	if filter.TeacherID > 0 {
		conditions = append(conditions, fmt.Sprintf("teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.Year > 0 {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(YEAR FROM date) = $%d", len(args)+1))
		args = append(args, filter.Year)
	}
	if filter.Month > 0 {
		conditions = append(conditions, fmt.Sprintf("EXTRACT(MONTH FROM date) = $%d", len(args)+1))
		args = append(args, filter.Month)
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

	query := fmt.Sprintf("SELECT id, teacher_id, date, hours, source, substitution_id, note, created_at %s ORDER BY date DESC, id DESC LIMIT %d OFFSET %d", base, size, offset)
	var lessons []models.ExtraLesson
	if err := r.db.SelectContext(ctx, &lessons, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list extra lessons: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count extra lessons: %w", err)
	}

	return lessons, total, nil
}

// FindByID loads an extra lesson record by id.
func (r *ExtraLessonRepository) FindByID(ctx context.Context, id int64) (*models.ExtraLesson, error) {
	const query = `SELECT id, teacher_id, date, hours, source, substitution_id, note, created_at FROM extra_lessons WHERE id = $1`
	var lesson models.ExtraLesson
	if err := r.db.GetContext(ctx, &lesson, query, id); err != nil {
		return nil, err
	}
	return &lesson, nil
}

// Create stores a new extra lesson record.
func (r *ExtraLessonRepository) Create(ctx context.Context, lesson *models.ExtraLesson) error {
	lesson.CreatedAt = time.Now().UTC()

	const query = `INSERT INTO extra_lessons (teacher_id, date, hours, source, substitution_id, note, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := r.db.GetContext(ctx, &lesson.ID, query, lesson.TeacherID, lesson.Date, lesson.Hours, lesson.Source, lesson.SubstitutionID, lesson.Note, lesson.CreatedAt); err != nil {
		return fmt.Errorf("create extra lesson: %w", err)
	}
	return nil
}

// Delete removes an extra lesson record by id.
func (r *ExtraLessonRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM extra_lessons WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete extra lesson: %w", err)
	}
	return nil
}

// DeleteBySubstitution removes the record generated for one substitution assignment.
func (r *ExtraLessonRepository) DeleteBySubstitution(ctx context.Context, substitutionID int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM extra_lessons WHERE substitution_id = $1`, substitutionID); err != nil {
		return fmt.Errorf("delete extra lesson by substitution: %w", err)
	}
	return nil
}

// MonthlySummary aggregates per-teacher extra hours for one month.
func (r *ExtraLessonRepository) MonthlySummary(ctx context.Context, year, month int) ([]models.ExtraLessonSummary, error) {
	const query = `SELECT e.teacher_id, t.full_name AS teacher_name,
		CAST($1 AS INT) AS year, CAST($2 AS INT) AS month, SUM(e.hours) AS total_hours
	FROM extra_lessons e
	JOIN teachers t ON t.id = e.teacher_id
	WHERE EXTRACT(YEAR FROM e.date) = $1 AND EXTRACT(MONTH FROM e.date) = $2
	GROUP BY e.teacher_id, t.full_name
	ORDER BY t.full_name ASC`
	var summaries []models.ExtraLessonSummary
	if err := r.db.SelectContext(ctx, &summaries, query, year, month); err != nil {
		return nil, fmt.Errorf("extra lesson monthly summary: %w", err)
	}
	return summaries, nil
}
