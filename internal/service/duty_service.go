package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
	appErrors "github.com/tarihci20/okul-yonetim-api/pkg/errors"
)

type dutyRepository interface {
	List(ctx context.Context, filter models.DutyEntryFilter) ([]models.DutyEntry, int, error)
	FindByID(ctx context.Context, id int64) (*models.DutyEntry, error)
	Create(ctx context.Context, duty *models.DutyEntry) error
	Update(ctx context.Context, duty *models.DutyEntry) error
	Delete(ctx context.Context, id int64) error
}

type dutyTeacherReader interface {
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
}

type dutyPeriodReader interface {
	FindByID(ctx context.Context, id int64) (*models.Period, error)
}

// CreateDutyRequest captures fields for creating duty entries. A nil
// period_id makes the duty block the whole day.
type CreateDutyRequest struct {
	TeacherID int64  `json:"teacher_id" validate:"required"`
	Location  string `json:"location" validate:"required"`
	DayOfWeek int    `json:"day_of_week" validate:"required,gte=1,lte=7"`
	PeriodID  *int64 `json:"period_id"`
}

// UpdateDutyRequest modifies duty entry fields.
type UpdateDutyRequest struct {
	TeacherID int64  `json:"teacher_id" validate:"required"`
	Location  string `json:"location" validate:"required"`
	DayOfWeek int    `json:"day_of_week" validate:"required,gte=1,lte=7"`
	PeriodID  *int64 `json:"period_id"`
}

// DutyService manages the recurring supervision duty roster.
type DutyService struct {
	repo      dutyRepository
	teachers  dutyTeacherReader
	periods   dutyPeriodReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDutyService creates a new duty service.
func NewDutyService(repo dutyRepository, teachers dutyTeacherReader, periods dutyPeriodReader, validate *validator.Validate, logger *zap.Logger) *DutyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DutyService{repo: repo, teachers: teachers, periods: periods, validator: validate, logger: logger}
}

// List returns paginated duty entries.
func (s *DutyService) List(ctx context.Context, filter models.DutyEntryFilter) ([]models.DutyEntry, *models.Pagination, error) {
	duties, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list duties")
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
	return duties, pagination, nil
}

// Get returns a duty entry by identifier.
func (s *DutyService) Get(ctx context.Context, id int64) (*models.DutyEntry, error) {
	duty, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "duty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load duty")
	}
	return duty, nil
}

// Create adds a duty entry.
func (s *DutyService) Create(ctx context.Context, req CreateDutyRequest) (*models.DutyEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid duty payload")
	}
	if err := s.checkReferences(ctx, req.TeacherID, req.PeriodID); err != nil {
		return nil, err
	}

	duty := &models.DutyEntry{
		TeacherID: req.TeacherID,
		Location:  strings.TrimSpace(req.Location),
		DayOfWeek: req.DayOfWeek,
		PeriodID:  req.PeriodID,
	}
	if err := s.repo.Create(ctx, duty); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create duty")
	}
	return duty, nil
}

// Update modifies an existing duty entry.
func (s *DutyService) Update(ctx context.Context, id int64, req UpdateDutyRequest) (*models.DutyEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid duty payload")
	}

	duty, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "duty not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load duty")
	}

	if err := s.checkReferences(ctx, req.TeacherID, req.PeriodID); err != nil {
		return nil, err
	}

	duty.TeacherID = req.TeacherID
	duty.Location = strings.TrimSpace(req.Location)
	duty.DayOfWeek = req.DayOfWeek
	duty.PeriodID = req.PeriodID

	if err := s.repo.Update(ctx, duty); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update duty")
	}
	return duty, nil
}

// Delete removes a duty entry.
func (s *DutyService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "duty not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load duty")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete duty")
	}
	return nil
}

func (s *DutyService) checkReferences(ctx context.Context, teacherID int64, periodID *int64) error {
	if _, err := s.teachers.FindByID(ctx, teacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "teacher not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}
	if periodID != nil {
		if _, err := s.periods.FindByID(ctx, *periodID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrValidation, "period not found")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
		}
	}
	return nil
}
