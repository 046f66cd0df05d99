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

type etutRepository interface {
	ListSessions(ctx context.Context, filter models.EtutSessionFilter) ([]models.EtutSession, int, error)
	FindSessionByID(ctx context.Context, id int64) (*models.EtutSession, error)
	CreateSession(ctx context.Context, session *models.EtutSession) error
	DeleteSession(ctx context.Context, id int64) error
	UpsertAttendance(ctx context.Context, attendance *models.EtutAttendance) error
	ListAttendance(ctx context.Context, sessionID int64) ([]models.EtutAttendanceDetail, error)
}

type etutTeacherReader interface {
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
}

type etutPeriodReader interface {
	FindByID(ctx context.Context, id int64) (*models.Period, error)
}

type etutStudentReader interface {
	FindByID(ctx context.Context, id int64) (*models.Student, error)
}

// CreateEtutSessionRequest captures fields for opening a study session.
type CreateEtutSessionRequest struct {
	Date      string `json:"date" validate:"required"`
	PeriodID  int64  `json:"period_id" validate:"required"`
	TeacherID int64  `json:"teacher_id" validate:"required"`
	SubjectID *int64 `json:"subject_id"`
	Topic     string `json:"topic"`
}

// MarkAttendanceRequest records one student's presence in a session.
type MarkAttendanceRequest struct {
	StudentID int64 `json:"student_id" validate:"required"`
	Present   *bool `json:"present" validate:"required"`
}

// EtutService manages after-school study sessions and their attendance.
type EtutService struct {
	repo      etutRepository
	teachers  etutTeacherReader
	periods   etutPeriodReader
	students  etutStudentReader
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEtutService creates a new etut service.
func NewEtutService(
	repo etutRepository,
	teachers etutTeacherReader,
	periods etutPeriodReader,
	students etutStudentReader,
	validate *validator.Validate,
	logger *zap.Logger,
) *EtutService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EtutService{repo: repo, teachers: teachers, periods: periods, students: students, validator: validate, logger: logger}
}

// ListSessions returns paginated study sessions.
func (s *EtutService) ListSessions(ctx context.Context, filter models.EtutSessionFilter) ([]models.EtutSession, *models.Pagination, error) {
	sessions, total, err := s.repo.ListSessions(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list sessions")
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
	return sessions, pagination, nil
}

// GetSession returns a session by identifier.
func (s *EtutService) GetSession(ctx context.Context, id int64) (*models.EtutSession, error) {
	session, err := s.repo.FindSessionByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	return session, nil
}

// CreateSession opens a new study session.
func (s *EtutService) CreateSession(ctx context.Context, req CreateEtutSessionRequest) (*models.EtutSession, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
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
	if _, err := s.periods.FindByID(ctx, req.PeriodID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "period not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load period")
	}

	session := &models.EtutSession{
		Date:      date,
		PeriodID:  req.PeriodID,
		TeacherID: req.TeacherID,
		SubjectID: req.SubjectID,
		Topic:     req.Topic,
	}
	if err := s.repo.CreateSession(ctx, session); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create session")
	}
	return session, nil
}

// DeleteSession removes a session together with its attendance records.
func (s *EtutService) DeleteSession(ctx context.Context, id int64) error {
	if _, err := s.repo.FindSessionByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if err := s.repo.DeleteSession(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete session")
	}
	return nil
}

// MarkAttendance records a student's presence. Marking the same student
// twice overwrites the earlier value.
func (s *EtutService) MarkAttendance(ctx context.Context, sessionID int64, req MarkAttendanceRequest) (*models.EtutAttendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}

	if _, err := s.repo.FindSessionByID(ctx, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}
	if _, err := s.students.FindByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	attendance := &models.EtutAttendance{
		SessionID: sessionID,
		StudentID: req.StudentID,
		Present:   *req.Present,
	}
	if err := s.repo.UpsertAttendance(ctx, attendance); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return attendance, nil
}

// ListAttendance returns the attendance sheet of one session.
func (s *EtutService) ListAttendance(ctx context.Context, sessionID int64) ([]models.EtutAttendanceDetail, error) {
	if _, err := s.repo.FindSessionByID(ctx, sessionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load session")
	}

	records, err := s.repo.ListAttendance(ctx, sessionID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	if records == nil {
		records = []models.EtutAttendanceDetail{}
	}
	return records, nil
}
