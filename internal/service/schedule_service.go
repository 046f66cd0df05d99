package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
	appErrors "github.com/tarihci20/okul-yonetim-api/pkg/errors"
)

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntryDetail, int, error)
	FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error)
	ExistsSlot(ctx context.Context, teacherID, periodID int64, dayOfWeek int, excludeID int64) (bool, error)
	Create(ctx context.Context, entry *models.ScheduleEntry) error
	Update(ctx context.Context, entry *models.ScheduleEntry) error
	Delete(ctx context.Context, id int64) error
}

type scheduleTeacherReader interface {
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
}

type scheduleClassReader interface {
	FindByID(ctx context.Context, id int64) (*models.Class, error)
}

type scheduleSubjectReader interface {
	FindByID(ctx context.Context, id int64) (*models.Subject, error)
}

type schedulePeriodReader interface {
	FindByID(ctx context.Context, id int64) (*models.Period, error)
}

// CreateScheduleEntryRequest captures fields for creating schedule entries.
type CreateScheduleEntryRequest struct {
	TeacherID int64 `json:"teacher_id" validate:"required"`
	ClassID   int64 `json:"class_id" validate:"required"`
	SubjectID int64 `json:"subject_id" validate:"required"`
	PeriodID  int64 `json:"period_id" validate:"required"`
	DayOfWeek int   `json:"day_of_week" validate:"required,gte=1,lte=7"`
}

// UpdateScheduleEntryRequest modifies schedule entry fields.
type UpdateScheduleEntryRequest struct {
	TeacherID int64 `json:"teacher_id" validate:"required"`
	ClassID   int64 `json:"class_id" validate:"required"`
	SubjectID int64 `json:"subject_id" validate:"required"`
	PeriodID  int64 `json:"period_id" validate:"required"`
	DayOfWeek int   `json:"day_of_week" validate:"required,gte=1,lte=7"`
}

// ScheduleService manages the recurring weekly timetable.
type ScheduleService struct {
	repo      scheduleRepository
	teachers  scheduleTeacherReader
	classes   scheduleClassReader
	subjects  scheduleSubjectReader
	periods   schedulePeriodReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService creates a new schedule service.
func NewScheduleService(
	repo scheduleRepository,
	teachers scheduleTeacherReader,
	classes scheduleClassReader,
	subjects scheduleSubjectReader,
	periods schedulePeriodReader,
	validate *validator.Validate,
	logger *zap.Logger,
) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{
		repo:      repo,
		teachers:  teachers,
		classes:   classes,
		subjects:  subjects,
		periods:   periods,
		validator: validate,
		logger:    logger,
	}
}

// List returns paginated schedule entries with display names joined in.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntryDetail, *models.Pagination, error) {
	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedule entries")
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
	return entries, pagination, nil
}

// Get returns a schedule entry by identifier.
func (s *ScheduleService) Get(ctx context.Context, id int64) (*models.ScheduleEntry, error) {
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entry")
	}
	return entry, nil
}

// Create adds a schedule entry after checking that all references exist and
// the (teacher, period, weekday) slot is free.
func (s *ScheduleService) Create(ctx context.Context, req CreateScheduleEntryRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule entry payload")
	}
	if err := s.checkReferences(ctx, req.TeacherID, req.ClassID, req.SubjectID, req.PeriodID); err != nil {
		return nil, err
	}

	occupied, err := s.repo.ExistsSlot(ctx, req.TeacherID, req.PeriodID, req.DayOfWeek, 0)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check timetable slot")
	}
	if occupied {
		return nil, appErrors.Clone(appErrors.ErrConflict, "teacher already has a lesson in this slot")
	}

	entry := &models.ScheduleEntry{
		TeacherID: req.TeacherID,
		ClassID:   req.ClassID,
		SubjectID: req.SubjectID,
		PeriodID:  req.PeriodID,
		DayOfWeek: req.DayOfWeek,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule entry")
	}
	return entry, nil
}

// Update modifies an existing schedule entry with the same checks as Create.
func (s *ScheduleService) Update(ctx context.Context, id int64, req UpdateScheduleEntryRequest) (*models.ScheduleEntry, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule entry payload")
	}

	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entry")
	}

	if err := s.checkReferences(ctx, req.TeacherID, req.ClassID, req.SubjectID, req.PeriodID); err != nil {
		return nil, err
	}

	occupied, err := s.repo.ExistsSlot(ctx, req.TeacherID, req.PeriodID, req.DayOfWeek, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check timetable slot")
	}
	if occupied {
		return nil, appErrors.Clone(appErrors.ErrConflict, "teacher already has a lesson in this slot")
	}

	entry.TeacherID = req.TeacherID
	entry.ClassID = req.ClassID
	entry.SubjectID = req.SubjectID
	entry.PeriodID = req.PeriodID
	entry.DayOfWeek = req.DayOfWeek

	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule entry")
	}
	return entry, nil
}

// Delete removes a schedule entry.
func (s *ScheduleService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule entry not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entry")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule entry")
	}
	return nil
}

func (s *ScheduleService) checkReferences(ctx context.Context, teacherID, classID, subjectID, periodID int64) error {
	refs := []struct {
		name string
		load func() error
	}{
		{"teacher", func() error { _, err := s.teachers.FindByID(ctx, teacherID); return err }},
		{"class", func() error { _, err := s.classes.FindByID(ctx, classID); return err }},
		{"subject", func() error { _, err := s.subjects.FindByID(ctx, subjectID); return err }},
		{"period", func() error { _, err := s.periods.FindByID(ctx, periodID); return err }},
	}
	for _, ref := range refs {
		if err := ref.load(); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s not found", ref.name))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to load %s", ref.name))
		}
	}
	return nil
}
