package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
	appErrors "github.com/tarihci20/okul-yonetim-api/pkg/errors"
)

type extraLessonRepository interface {
	List(ctx context.Context, filter models.ExtraLessonFilter) ([]models.ExtraLesson, int, error)
	FindByID(ctx context.Context, id int64) (*models.ExtraLesson, error)
	Create(ctx context.Context, lesson *models.ExtraLesson) error
	Delete(ctx context.Context, id int64) error
	MonthlySummary(ctx context.Context, year, month int) ([]models.ExtraLessonSummary, error)
}

type extraLessonTeacherReader interface {
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
}

// CreateExtraLessonRequest captures fields for manual extra lesson records.
type CreateExtraLessonRequest struct {
	TeacherID int64  `json:"teacher_id" validate:"required"`
	Date      string `json:"date" validate:"required"`
	Hours     int    `json:"hours" validate:"required,gte=1"`
	Note      string `json:"note"`
}

// ExtraLessonService keeps the extra teaching hours ledger. Records sourced
// from substitution assignments are owned by the substitution workflow and
// cannot be removed here.
type ExtraLessonService struct {
	repo      extraLessonRepository
	teachers  extraLessonTeacherReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExtraLessonService creates a new extra lesson service.
func NewExtraLessonService(repo extraLessonRepository, teachers extraLessonTeacherReader, validate *validator.Validate, logger *zap.Logger) *ExtraLessonService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExtraLessonService{repo: repo, teachers: teachers, validator: validate, logger: logger}
}

// List returns paginated extra lesson records.
func (s *ExtraLessonService) List(ctx context.Context, filter models.ExtraLessonFilter) ([]models.ExtraLesson, *models.Pagination, error) {
	lessons, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list extra lessons")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}
	pagination := &models.Pagination{Page: page, PageSize: size, TotalCount: total}
	return lessons, pagination, nil
}

// Create records manually granted extra hours.
func (s *ExtraLessonService) Create(ctx context.Context, req CreateExtraLessonRequest) (*models.ExtraLesson, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid extra lesson payload")
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD format")
	}
	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	lesson := &models.ExtraLesson{
		TeacherID: req.TeacherID,
		Date:      date,
		Hours:     req.Hours,
		Source:    models.ExtraLessonSourceManual,
		Note:      req.Note,
	}
	if err := s.repo.Create(ctx, lesson); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create extra lesson")
	}
	return lesson, nil
}

// Delete removes a manually created record. Substitution-sourced records
// must be removed through unassignment instead.
func (s *ExtraLessonService) Delete(ctx context.Context, id int64) error {
	lesson, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "extra lesson not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load extra lesson")
	}
	if lesson.Source == models.ExtraLessonSourceSubstitution {
		return appErrors.Clone(appErrors.ErrConflict, "substitution records are removed by unassigning the substitute")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete extra lesson")
	}
	return nil
}

// MonthlySummary aggregates per-teacher extra hours for one month.
func (s *ExtraLessonService) MonthlySummary(ctx context.Context, year, month int) ([]models.ExtraLessonSummary, error) {
	if year < 2000 || year > 2100 || month < 1 || month > 12 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid year or month")
	}
	summary, err := s.repo.MonthlySummary(ctx, year, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build summary")
	}
	if summary == nil {
		summary = []models.ExtraLessonSummary{}
	}
	return summary, nil
}
