package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
	appErrors "github.com/tarihci20/okul-yonetim-api/pkg/errors"
)

type substitutionTeacherReader interface {
	ListActive(ctx context.Context) ([]models.Teacher, error)
	FindByID(ctx context.Context, id int64) (*models.Teacher, error)
}

type substitutionPeriodReader interface {
	List(ctx context.Context) ([]models.Period, error)
}

type substitutionSubjectReader interface {
	ListAll(ctx context.Context) ([]models.Subject, error)
}

type substitutionScheduleReader interface {
	FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error)
	ListByDay(ctx context.Context, dayOfWeek int) ([]models.ScheduleEntry, error)
	ListByTeacherAndDay(ctx context.Context, teacherID int64, dayOfWeek int) ([]models.ScheduleEntryDetail, error)
}

type substitutionDutyReader interface {
	ListByDay(ctx context.Context, dayOfWeek int) ([]models.DutyEntry, error)
}

type substitutionAbsenceReader interface {
	ListCovering(ctx context.Context, date time.Time) ([]models.Absence, error)
}

type substitutionStore interface {
	ListByDate(ctx context.Context, date time.Time) ([]models.SubstitutionAssignment, error)
	ListDetailsByDate(ctx context.Context, date time.Time) ([]models.SubstitutionAssignmentDetail, error)
	FindByDateAndEntry(ctx context.Context, date time.Time, scheduleEntryID int64) (*models.SubstitutionAssignment, error)
	Create(ctx context.Context, assignment *models.SubstitutionAssignment) error
	DeleteByDateAndEntry(ctx context.Context, date time.Time, scheduleEntryID int64) (int64, error)
}

type substitutionExtraLessonWriter interface {
	Create(ctx context.Context, lesson *models.ExtraLesson) error
	DeleteBySubstitution(ctx context.Context, substitutionID int64) error
}

type availabilityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	InvalidatePrefix(ctx context.Context, prefix string)
}

type substitutionMetrics interface {
	ObserveAssignment(source string)
	ObserveAutoFillSkip()
}

const availabilityCachePrefix = "substitution:availability:"

// SubstitutionService resolves teacher availability, plans coverage for
// absent teachers and keeps the assignment roster consistent with the
// extra lesson ledger.
type SubstitutionService struct {
	teachers      substitutionTeacherReader
	periods       substitutionPeriodReader
	subjects      substitutionSubjectReader
	schedules     substitutionScheduleReader
	duties        substitutionDutyReader
	absences      substitutionAbsenceReader
	substitutions substitutionStore
	extraLessons  substitutionExtraLessonWriter
	cache         availabilityCache
	metrics       substitutionMetrics
	validator     *validator.Validate
	logger        *zap.Logger
	cacheTTL      time.Duration
}

// SubstitutionConfig governs substitution service behaviour.
type SubstitutionConfig struct {
	AvailabilityCacheTTL time.Duration
}

// NewSubstitutionService wires the substitution workflow dependencies.
// Cache and metrics are optional and may be nil.
func NewSubstitutionService(
	teachers substitutionTeacherReader,
	periods substitutionPeriodReader,
	subjects substitutionSubjectReader,
	schedules substitutionScheduleReader,
	duties substitutionDutyReader,
	absences substitutionAbsenceReader,
	substitutions substitutionStore,
	extraLessons substitutionExtraLessonWriter,
	cache availabilityCache,
	metrics substitutionMetrics,
	validate *validator.Validate,
	logger *zap.Logger,
	cfg SubstitutionConfig,
) *SubstitutionService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AvailabilityCacheTTL <= 0 {
		cfg.AvailabilityCacheTTL = 30 * time.Second
	}
	return &SubstitutionService{
		teachers:      teachers,
		periods:       periods,
		subjects:      subjects,
		schedules:     schedules,
		duties:        duties,
		absences:      absences,
		substitutions: substitutions,
		extraLessons:  extraLessons,
		cache:         cache,
		metrics:       metrics,
		validator:     validate,
		logger:        logger,
		cacheTTL:      cfg.AvailabilityCacheTTL,
	}
}

// loadSnapshot fetches the full roster state for one date.
func (s *SubstitutionService) loadSnapshot(ctx context.Context, date time.Time) (*rosterSnapshot, error) {
	day := models.ISOWeekday(date)

	teachers, err := s.teachers.ListActive(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
	}
	periods, err := s.periods.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load periods")
	}
	subjects, err := s.subjects.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	entries, err := s.schedules.ListByDay(ctx, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	duties, err := s.duties.ListByDay(ctx, day)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load duty roster")
	}
	absences, err := s.absences.ListCovering(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load absences")
	}
	assignments, err := s.substitutions.ListByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignments")
	}

	return newRosterSnapshot(date, teachers, periods, subjects, entries, duties, absences, assignments), nil
}

// ResolveAvailability classifies every active teacher for the given date and
// period. Results are cached per (date, period) and invalidated whenever the
// roster for the date changes.
func (s *SubstitutionService) ResolveAvailability(ctx context.Context, date time.Time, periodID int64) ([]models.TeacherAvailability, error) {
	cacheKey := fmt.Sprintf("%s%s:%d", availabilityCachePrefix, date.Format("2006-01-02"), periodID)
	if s.cache != nil {
		var cached []models.TeacherAvailability
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		} else if !errors.Is(err, appErrors.ErrCacheMiss) {
			s.logger.Warn("availability cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}

	snap, err := s.loadSnapshot(ctx, date)
	if err != nil {
		return nil, err
	}

	statuses, ok := snap.resolveAvailability(periodID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown period")
	}

	result := make([]models.TeacherAvailability, 0, len(snap.teachers))
	for _, teacher := range snap.teachers {
		result = append(result, models.TeacherAvailability{TeacherID: teacher.ID, Status: statuses[teacher.ID]})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].TeacherID < result[j].TeacherID })

	if s.cache != nil {
		if err := s.cache.Set(ctx, cacheKey, result, s.cacheTTL); err != nil {
			s.logger.Warn("availability cache write failed", zap.String("key", cacheKey), zap.Error(err))
		}
	}
	return result, nil
}

// CoverageNeeded lists the absent teacher's lessons on the given date that
// require a substitute, earliest period first.
func (s *SubstitutionService) CoverageNeeded(ctx context.Context, absentTeacherID int64, date time.Time) ([]models.ScheduleEntryDetail, error) {
	if _, err := s.teachers.FindByID(ctx, absentTeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	details, err := s.schedules.ListByTeacherAndDay(ctx, absentTeacherID, models.ISOWeekday(date))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	if details == nil {
		details = []models.ScheduleEntryDetail{}
	}
	return details, nil
}

// Assign records a substitute for one schedule entry on a date. Preconditions
// are checked in a fixed order: the entry must belong to an absent teacher on
// that date, the substitute must resolve as available for the entry's period,
// and the slot must not be covered already. A successful assignment also
// writes the substitute's extra lesson record.
func (s *SubstitutionService) Assign(ctx context.Context, date time.Time, scheduleEntryID, substituteTeacherID int64) (*models.SubstitutionAssignment, error) {
	entry, err := s.schedules.FindByID(ctx, scheduleEntryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "schedule entry not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule entry")
	}
	if entry.DayOfWeek != models.ISOWeekday(date) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "schedule entry does not fall on the given date")
	}
	if _, err := s.teachers.FindByID(ctx, substituteTeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "substitute teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load substitute teacher")
	}

	snap, err := s.loadSnapshot(ctx, date)
	if err != nil {
		return nil, err
	}
	if !snap.isAbsent(entry.TeacherID) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "lesson teacher is not absent on the given date")
	}

	statuses, ok := snap.resolveAvailability(entry.PeriodID)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown period")
	}
	if status := statuses[substituteTeacherID]; status != models.AvailabilityAvailable {
		conflict := &models.SubstitutionConflictError{
			Reason:  string(status),
			Message: fmt.Sprintf("substitute teacher is not available: %s", status),
		}
		return nil, appErrors.Wrap(conflict, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflict.Message)
	}

	if snap.hasAssignment(entry.ID) {
		conflict := &models.SubstitutionConflictError{
			Reason:  models.ConflictReasonAlreadyAssigned,
			Message: "schedule entry already has a substitute on the given date",
		}
		return nil, appErrors.Wrap(conflict, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflict.Message)
	}

	assignment := &models.SubstitutionAssignment{
		AbsentTeacherID:     entry.TeacherID,
		SubstituteTeacherID: substituteTeacherID,
		ScheduleEntryID:     entry.ID,
		Date:                date,
	}
	if err := s.substitutions.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store assignment")
	}
	if err := s.recordExtraLesson(ctx, assignment); err != nil {
		s.logger.Error("extra lesson record failed", zap.Int64("substitution_id", assignment.ID), zap.Error(err))
	}

	s.invalidateAvailability(ctx, date)
	if s.metrics != nil {
		s.metrics.ObserveAssignment("manual")
	}
	s.logger.Info("substitute assigned",
		zap.Int64("schedule_entry_id", entry.ID),
		zap.Int64("substitute_teacher_id", substituteTeacherID),
		zap.String("date", date.Format("2006-01-02")))
	return assignment, nil
}

// Unassign removes the assignment for (date, schedule entry) along with its
// extra lesson record. Removing a non-existent assignment is a no-op.
func (s *SubstitutionService) Unassign(ctx context.Context, date time.Time, scheduleEntryID int64) error {
	existing, err := s.substitutions.FindByDateAndEntry(ctx, date, scheduleEntryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}

	if _, err := s.substitutions.DeleteByDateAndEntry(ctx, date, scheduleEntryID); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove assignment")
	}
	if err := s.extraLessons.DeleteBySubstitution(ctx, existing.ID); err != nil {
		s.logger.Error("extra lesson cleanup failed", zap.Int64("substitution_id", existing.ID), zap.Error(err))
	}

	s.invalidateAvailability(ctx, date)
	s.logger.Info("substitute unassigned",
		zap.Int64("schedule_entry_id", scheduleEntryID),
		zap.String("date", date.Format("2006-01-02")))
	return nil
}

// AutoFill covers all of an absent teacher's uncovered lessons for the date
// with the greedy planner and persists the plan in period order. Slots with
// no available teacher are reported as skipped rather than failing the run.
func (s *SubstitutionService) AutoFill(ctx context.Context, absentTeacherID int64, date time.Time) (*models.AutoFillResult, error) {
	if _, err := s.teachers.FindByID(ctx, absentTeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	snap, err := s.loadSnapshot(ctx, date)
	if err != nil {
		return nil, err
	}
	if !snap.isAbsent(absentTeacherID) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "teacher is not absent on the given date")
	}

	planned, skipped := snap.planAutoFill(absentTeacherID)

	result := &models.AutoFillResult{
		Assigned: make([]models.SubstitutionAssignment, 0, len(planned)),
		Skipped:  skipped,
	}
	for i := range planned {
		assignment := planned[i]
		if err := s.substitutions.Create(ctx, &assignment); err != nil {
			s.invalidateAvailability(ctx, date)
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store assignment")
		}
		if err := s.recordExtraLesson(ctx, &assignment); err != nil {
			s.logger.Error("extra lesson record failed", zap.Int64("substitution_id", assignment.ID), zap.Error(err))
		}
		if s.metrics != nil {
			s.metrics.ObserveAssignment("autofill")
		}
		result.Assigned = append(result.Assigned, assignment)
	}
	if s.metrics != nil {
		for range skipped {
			s.metrics.ObserveAutoFillSkip()
		}
	}

	if len(planned) > 0 {
		s.invalidateAvailability(ctx, date)
	}
	s.logger.Info("auto-fill completed",
		zap.Int64("absent_teacher_id", absentTeacherID),
		zap.String("date", date.Format("2006-01-02")),
		zap.Int("assigned", len(result.Assigned)),
		zap.Int("skipped", len(result.Skipped)))
	return result, nil
}

// DayRoster returns the full substitution roster for one date with display
// names joined in, ordered by period.
func (s *SubstitutionService) DayRoster(ctx context.Context, date time.Time) ([]models.SubstitutionAssignmentDetail, error) {
	details, err := s.substitutions.ListDetailsByDate(ctx, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load roster")
	}
	if details == nil {
		details = []models.SubstitutionAssignmentDetail{}
	}
	return details, nil
}

// UnassignForAbsence removes every assignment covering the absent teacher in
// the given date range. Used when an absence record is deleted.
func (s *SubstitutionService) UnassignForAbsence(ctx context.Context, assignments []models.SubstitutionAssignment) error {
	for _, assignment := range assignments {
		if _, err := s.substitutions.DeleteByDateAndEntry(ctx, assignment.Date, assignment.ScheduleEntryID); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to remove assignment")
		}
		if err := s.extraLessons.DeleteBySubstitution(ctx, assignment.ID); err != nil {
			s.logger.Error("extra lesson cleanup failed", zap.Int64("substitution_id", assignment.ID), zap.Error(err))
		}
		s.invalidateAvailability(ctx, assignment.Date)
	}
	return nil
}

func (s *SubstitutionService) recordExtraLesson(ctx context.Context, assignment *models.SubstitutionAssignment) error {
	substitutionID := assignment.ID
	lesson := &models.ExtraLesson{
		TeacherID:      assignment.SubstituteTeacherID,
		Date:           assignment.Date,
		Hours:          1,
		Source:         models.ExtraLessonSourceSubstitution,
		SubstitutionID: &substitutionID,
	}
	return s.extraLessons.Create(ctx, lesson)
}

func (s *SubstitutionService) invalidateAvailability(ctx context.Context, date time.Time) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidatePrefix(ctx, availabilityCachePrefix+date.Format("2006-01-02"))
}
