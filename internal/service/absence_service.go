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

type absenceRepository interface {
	List(ctx context.Context, filter models.AbsenceFilter) ([]models.Absence, int, error)
	FindByID(ctx context.Context, id int64) (*models.Absence, error)
	Create(ctx context.Context, absence *models.Absence) error
	Delete(ctx context.Context, id int64) error
}

type absenceTeacherReader interface {
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
}

type absenceSubstitutionReader interface {
	ListForAbsence(ctx context.Context, teacherID int64, startDate, endDate time.Time) ([]models.SubstitutionAssignment, error)
}

type absenceCascader interface {
	UnassignForAbsence(ctx context.Context, assignments []models.SubstitutionAssignment) error
}

// CreateAbsenceRequest captures fields for recording an absence. Dates use
// YYYY-MM-DD and the range is inclusive on both ends.
type CreateAbsenceRequest struct {
	TeacherID int64  `json:"teacher_id" validate:"required"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Reason    string `json:"reason"`
}

// AbsenceService records teacher absences and keeps dependent substitution
// assignments consistent when an absence is withdrawn.
type AbsenceService struct {
	repo          absenceRepository
	teachers      absenceTeacherReader
	substitutions absenceSubstitutionReader
	cascader      absenceCascader
	validator     *validator.Validate
	logger        *zap.Logger
}

// NewAbsenceService creates a new absence service.
func NewAbsenceService(
	repo absenceRepository,
	teachers absenceTeacherReader,
	substitutions absenceSubstitutionReader,
	cascader absenceCascader,
	validate *validator.Validate,
	logger *zap.Logger,
) *AbsenceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AbsenceService{
		repo:          repo,
		teachers:      teachers,
		substitutions: substitutions,
		cascader:      cascader,
		validator:     validate,
		logger:        logger,
	}
}

// List returns paginated absences.
func (s *AbsenceService) List(ctx context.Context, filter models.AbsenceFilter) ([]models.Absence, *models.Pagination, error) {
	absences, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list absences")
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
	return absences, pagination, nil
}

// Get returns an absence by identifier.
func (s *AbsenceService) Get(ctx context.Context, id int64) (*models.Absence, error) {
	absence, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "absence not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load absence")
	}
	return absence, nil
}

// Create records a new absence for a teacher.
func (s *AbsenceService) Create(ctx context.Context, req CreateAbsenceRequest) (*models.Absence, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid absence payload")
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "start_date must use YYYY-MM-DD format")
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must use YYYY-MM-DD format")
	}
	if endDate.Before(startDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "end_date must not be before start_date")
	}

	if _, err := s.teachers.FindByID(ctx, req.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	absence := &models.Absence{
		TeacherID: req.TeacherID,
		StartDate: startDate,
		EndDate:   endDate,
		Reason:    req.Reason,
	}
	if err := s.repo.Create(ctx, absence); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create absence")
	}
	return absence, nil
}

// Delete withdraws an absence. Substitution assignments that covered the
// absent teacher inside the range are removed as well, since without the
// absence they no longer satisfy the assignment preconditions.
func (s *AbsenceService) Delete(ctx context.Context, id int64) error {
	absence, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "absence not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load absence")
	}

	assignments, err := s.substitutions.ListForAbsence(ctx, absence.TeacherID, absence.StartDate, absence.EndDate)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load dependent assignments")
	}
	if len(assignments) > 0 {
		if err := s.cascader.UnassignForAbsence(ctx, assignments); err != nil {
			return err
		}
		s.logger.Info("removed dependent substitution assignments",
			zap.Int64("absence_id", absence.ID),
			zap.Int("count", len(assignments)))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete absence")
	}
	return nil
}
