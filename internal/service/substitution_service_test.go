package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
	appErrors "github.com/tarihci20/okul-yonetim-api/pkg/errors"
)

type fakeTeacherDirectory struct {
	teachers  []models.Teacher
	listCalls int
}

func (f *fakeTeacherDirectory) ListActive(ctx context.Context) ([]models.Teacher, error) {
	f.listCalls++
	return f.teachers, nil
}

func (f *fakeTeacherDirectory) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	for _, teacher := range f.teachers {
		if teacher.ID == id {
			cp := teacher
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

type fakePeriodList struct {
	periods []models.Period
}

func (f *fakePeriodList) List(ctx context.Context) ([]models.Period, error) {
	return f.periods, nil
}

type fakeSubjectList struct {
	subjects []models.Subject
}

func (f *fakeSubjectList) ListAll(ctx context.Context) ([]models.Subject, error) {
	return f.subjects, nil
}

type fakeScheduleBook struct {
	entries []models.ScheduleEntry
}

func (f *fakeScheduleBook) FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error) {
	for _, entry := range f.entries {
		if entry.ID == id {
			cp := entry
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeScheduleBook) ListByDay(ctx context.Context, dayOfWeek int) ([]models.ScheduleEntry, error) {
	var result []models.ScheduleEntry
	for _, entry := range f.entries {
		if entry.DayOfWeek == dayOfWeek {
			result = append(result, entry)
		}
	}
	return result, nil
}

func (f *fakeScheduleBook) ListByTeacherAndDay(ctx context.Context, teacherID int64, dayOfWeek int) ([]models.ScheduleEntryDetail, error) {
	var result []models.ScheduleEntryDetail
	for _, entry := range f.entries {
		if entry.TeacherID == teacherID && entry.DayOfWeek == dayOfWeek {
			result = append(result, models.ScheduleEntryDetail{ScheduleEntry: entry})
		}
	}
	return result, nil
}

type fakeDutyList struct {
	duties []models.DutyEntry
}

func (f *fakeDutyList) ListByDay(ctx context.Context, dayOfWeek int) ([]models.DutyEntry, error) {
	var result []models.DutyEntry
	for _, duty := range f.duties {
		if duty.DayOfWeek == dayOfWeek {
			result = append(result, duty)
		}
	}
	return result, nil
}

type fakeAbsenceList struct {
	absences []models.Absence
}

func (f *fakeAbsenceList) ListCovering(ctx context.Context, date time.Time) ([]models.Absence, error) {
	var result []models.Absence
	for _, absence := range f.absences {
		if absence.Contains(date) {
			result = append(result, absence)
		}
	}
	return result, nil
}

type fakeSubstitutionStore struct {
	assignments []models.SubstitutionAssignment
	nextID      int64
}

func (f *fakeSubstitutionStore) ListByDate(ctx context.Context, date time.Time) ([]models.SubstitutionAssignment, error) {
	var result []models.SubstitutionAssignment
	for _, assignment := range f.assignments {
		if assignment.Date.Equal(date) {
			result = append(result, assignment)
		}
	}
	return result, nil
}

func (f *fakeSubstitutionStore) ListDetailsByDate(ctx context.Context, date time.Time) ([]models.SubstitutionAssignmentDetail, error) {
	var result []models.SubstitutionAssignmentDetail
	for _, assignment := range f.assignments {
		if assignment.Date.Equal(date) {
			result = append(result, models.SubstitutionAssignmentDetail{SubstitutionAssignment: assignment})
		}
	}
	return result, nil
}

func (f *fakeSubstitutionStore) FindByDateAndEntry(ctx context.Context, date time.Time, scheduleEntryID int64) (*models.SubstitutionAssignment, error) {
	for _, assignment := range f.assignments {
		if assignment.Date.Equal(date) && assignment.ScheduleEntryID == scheduleEntryID {
			cp := assignment
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSubstitutionStore) Create(ctx context.Context, assignment *models.SubstitutionAssignment) error {
	f.nextID++
	assignment.ID = f.nextID
	assignment.CreatedAt = time.Now()
	f.assignments = append(f.assignments, *assignment)
	return nil
}

func (f *fakeSubstitutionStore) DeleteByDateAndEntry(ctx context.Context, date time.Time, scheduleEntryID int64) (int64, error) {
	var kept []models.SubstitutionAssignment
	var removed int64
	for _, assignment := range f.assignments {
		if assignment.Date.Equal(date) && assignment.ScheduleEntryID == scheduleEntryID {
			removed++
			continue
		}
		kept = append(kept, assignment)
	}
	f.assignments = kept
	return removed, nil
}

type fakeExtraLessonLog struct {
	created []models.ExtraLesson
	deleted []int64
}

func (f *fakeExtraLessonLog) Create(ctx context.Context, lesson *models.ExtraLesson) error {
	f.created = append(f.created, *lesson)
	return nil
}

func (f *fakeExtraLessonLog) DeleteBySubstitution(ctx context.Context, substitutionID int64) error {
	f.deleted = append(f.deleted, substitutionID)
	return nil
}

type fakeAvailabilityCache struct {
	hits        map[string][]models.TeacherAvailability
	sets        []string
	invalidated []string
}

func (f *fakeAvailabilityCache) Get(ctx context.Context, key string, dest interface{}) error {
	if cached, ok := f.hits[key]; ok {
		*dest.(*[]models.TeacherAvailability) = cached
		return nil
	}
	return appErrors.ErrCacheMiss
}

func (f *fakeAvailabilityCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.sets = append(f.sets, key)
	return nil
}

func (f *fakeAvailabilityCache) InvalidatePrefix(ctx context.Context, prefix string) {
	f.invalidated = append(f.invalidated, prefix)
}

type fakeSubstitutionMetrics struct {
	assignments map[string]int
	skips       int
}

func (f *fakeSubstitutionMetrics) ObserveAssignment(source string) {
	if f.assignments == nil {
		f.assignments = make(map[string]int)
	}
	f.assignments[source]++
}

func (f *fakeSubstitutionMetrics) ObserveAutoFillSkip() {
	f.skips++
}

type substitutionFixture struct {
	teachers *fakeTeacherDirectory
	periods  *fakePeriodList
	subjects *fakeSubjectList
	book     *fakeScheduleBook
	duties   *fakeDutyList
	absences *fakeAbsenceList
	store    *fakeSubstitutionStore
	extras   *fakeExtraLessonLog
	cache    *fakeAvailabilityCache
	metrics  *fakeSubstitutionMetrics
}

// newMondayFixture seeds a roster for Monday 2024-03-04: teacher one
// (Matematik) is absent and teaches periods one and three, teacher three
// (Matematik) has an own class in period three, teacher two (Fizik) is free
// all day.
func newMondayFixture() *substitutionFixture {
	return &substitutionFixture{
		teachers: &fakeTeacherDirectory{teachers: []models.Teacher{
			{ID: 1, FullName: "Teacher One", Branch: "Matematik", Active: true},
			{ID: 2, FullName: "Teacher Two", Branch: "Fizik", Active: true},
			{ID: 3, FullName: "Teacher Three", Branch: "Matematik", Active: true},
		}},
		periods: &fakePeriodList{periods: threePeriods()},
		subjects: &fakeSubjectList{subjects: []models.Subject{
			{ID: 1, Name: "Matematik", Branch: "Matematik"},
			{ID: 2, Name: "Fizik", Branch: "Fizik"},
		}},
		book: &fakeScheduleBook{entries: []models.ScheduleEntry{
			{ID: 10, TeacherID: 1, ClassID: 1, SubjectID: 1, PeriodID: 1, DayOfWeek: 1},
			{ID: 11, TeacherID: 1, ClassID: 1, SubjectID: 1, PeriodID: 3, DayOfWeek: 1},
			{ID: 12, TeacherID: 3, ClassID: 2, SubjectID: 1, PeriodID: 3, DayOfWeek: 1},
			{ID: 13, TeacherID: 1, ClassID: 1, SubjectID: 1, PeriodID: 1, DayOfWeek: 2},
		}},
		duties: &fakeDutyList{},
		absences: &fakeAbsenceList{absences: []models.Absence{
			{ID: 30, TeacherID: 1, StartDate: monday, EndDate: monday, Reason: "rapor"},
		}},
		store:   &fakeSubstitutionStore{},
		extras:  &fakeExtraLessonLog{},
		cache:   &fakeAvailabilityCache{},
		metrics: &fakeSubstitutionMetrics{},
	}
}

func (f *substitutionFixture) service() *SubstitutionService {
	return NewSubstitutionService(
		f.teachers, f.periods, f.subjects, f.book, f.duties, f.absences,
		f.store, f.extras, f.cache, f.metrics,
		nil, zap.NewNop(), SubstitutionConfig{},
	)
}

func TestSubstitutionServiceResolveAvailability(t *testing.T) {
	fixture := newMondayFixture()
	service := fixture.service()

	result, err := service.ResolveAvailability(context.Background(), monday, 3)
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, int64(1), result[0].TeacherID)
	assert.Equal(t, models.AvailabilityAbsent, result[0].Status)
	assert.Equal(t, models.AvailabilityAvailable, result[1].Status)
	assert.Equal(t, models.AvailabilityHasOwnClass, result[2].Status)

	require.Len(t, fixture.cache.sets, 1)
	assert.Equal(t, "substitution:availability:2024-03-04:3", fixture.cache.sets[0])
}

func TestSubstitutionServiceResolveAvailabilityCacheHit(t *testing.T) {
	fixture := newMondayFixture()
	fixture.cache.hits = map[string][]models.TeacherAvailability{
		"substitution:availability:2024-03-04:1": {
			{TeacherID: 2, Status: models.AvailabilityAvailable},
		},
	}
	service := fixture.service()

	result, err := service.ResolveAvailability(context.Background(), monday, 1)
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, int64(2), result[0].TeacherID)
	assert.Zero(t, fixture.teachers.listCalls)
}

func TestSubstitutionServiceResolveAvailabilityUnknownPeriod(t *testing.T) {
	service := newMondayFixture().service()

	_, err := service.ResolveAvailability(context.Background(), monday, 99)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubstitutionServiceAssign(t *testing.T) {
	fixture := newMondayFixture()
	service := fixture.service()

	assignment, err := service.Assign(context.Background(), monday, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, int64(1), assignment.AbsentTeacherID)
	assert.Equal(t, int64(3), assignment.SubstituteTeacherID)
	require.Len(t, fixture.store.assignments, 1)

	require.Len(t, fixture.extras.created, 1)
	lesson := fixture.extras.created[0]
	assert.Equal(t, int64(3), lesson.TeacherID)
	assert.Equal(t, models.ExtraLessonSourceSubstitution, lesson.Source)
	require.NotNil(t, lesson.SubstitutionID)
	assert.Equal(t, assignment.ID, *lesson.SubstitutionID)

	assert.Equal(t, 1, fixture.metrics.assignments["manual"])
	require.NotEmpty(t, fixture.cache.invalidated)
	assert.Equal(t, "substitution:availability:2024-03-04", fixture.cache.invalidated[0])
}

func TestSubstitutionServiceAssignUnknownEntry(t *testing.T) {
	service := newMondayFixture().service()

	_, err := service.Assign(context.Background(), monday, 99, 3)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubstitutionServiceAssignEntryOnAnotherDay(t *testing.T) {
	service := newMondayFixture().service()

	// Entry 13 recurs on Tuesdays.
	_, err := service.Assign(context.Background(), monday, 13, 3)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubstitutionServiceAssignTeacherNotAbsent(t *testing.T) {
	service := newMondayFixture().service()

	// Entry 12 belongs to teacher three, who is present.
	_, err := service.Assign(context.Background(), monday, 12, 2)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubstitutionServiceAssignBlockedSubstitute(t *testing.T) {
	fixture := newMondayFixture()
	service := fixture.service()

	// Teacher three teaches an own class in period three.
	_, err := service.Assign(context.Background(), monday, 11, 3)
	require.Error(t, err)

	var conflict *models.SubstitutionConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, string(models.AvailabilityHasOwnClass), conflict.Reason)
	assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
	assert.Empty(t, fixture.store.assignments)
}

func TestSubstitutionServiceAssignAlreadyCovered(t *testing.T) {
	fixture := newMondayFixture()
	service := fixture.service()

	_, err := service.Assign(context.Background(), monday, 10, 3)
	require.NoError(t, err)

	_, err = service.Assign(context.Background(), monday, 10, 2)
	require.Error(t, err)

	var conflict *models.SubstitutionConflictError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, models.ConflictReasonAlreadyAssigned, conflict.Reason)
	require.Len(t, fixture.store.assignments, 1)
}

func TestSubstitutionServiceUnassign(t *testing.T) {
	fixture := newMondayFixture()
	service := fixture.service()

	assignment, err := service.Assign(context.Background(), monday, 10, 3)
	require.NoError(t, err)

	require.NoError(t, service.Unassign(context.Background(), monday, 10))
	assert.Empty(t, fixture.store.assignments)
	require.Len(t, fixture.extras.deleted, 1)
	assert.Equal(t, assignment.ID, fixture.extras.deleted[0])

	// Removing an uncovered slot is a no-op.
	require.NoError(t, service.Unassign(context.Background(), monday, 10))
	require.NoError(t, service.Unassign(context.Background(), monday, 99))
	assert.Len(t, fixture.extras.deleted, 1)
}

func TestSubstitutionServiceAutoFill(t *testing.T) {
	fixture := newMondayFixture()
	service := fixture.service()

	result, err := service.AutoFill(context.Background(), 1, monday)
	require.NoError(t, err)
	require.Len(t, result.Assigned, 2)
	assert.Empty(t, result.Skipped)

	assert.Equal(t, int64(10), result.Assigned[0].ScheduleEntryID)
	assert.Equal(t, int64(3), result.Assigned[0].SubstituteTeacherID)
	assert.Equal(t, int64(11), result.Assigned[1].ScheduleEntryID)
	assert.Equal(t, int64(2), result.Assigned[1].SubstituteTeacherID)

	assert.Len(t, fixture.store.assignments, 2)
	assert.Len(t, fixture.extras.created, 2)
	assert.Equal(t, 2, fixture.metrics.assignments["autofill"])
	assert.NotEmpty(t, fixture.cache.invalidated)
}

func TestSubstitutionServiceAutoFillReportsUncoverableSlots(t *testing.T) {
	fixture := newMondayFixture()
	fixture.duties.duties = []models.DutyEntry{
		{ID: 20, TeacherID: 2, Location: "Nobet", DayOfWeek: 1, PeriodID: int64Ptr(3)},
	}
	service := fixture.service()

	result, err := service.AutoFill(context.Background(), 1, monday)
	require.NoError(t, err)
	require.Len(t, result.Assigned, 1)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, int64(11), result.Skipped[0].ScheduleEntryID)
	assert.Equal(t, models.SkipReasonNoAvailableTeacher, result.Skipped[0].Reason)
	assert.Equal(t, 1, fixture.metrics.skips)
}

func TestSubstitutionServiceAutoFillAfterFullCoverage(t *testing.T) {
	fixture := newMondayFixture()
	service := fixture.service()

	_, err := service.AutoFill(context.Background(), 1, monday)
	require.NoError(t, err)

	result, err := service.AutoFill(context.Background(), 1, monday)
	require.NoError(t, err)
	assert.Empty(t, result.Assigned)
	assert.Empty(t, result.Skipped)
	assert.Len(t, fixture.store.assignments, 2)
}

func TestSubstitutionServiceAutoFillTeacherNotAbsent(t *testing.T) {
	service := newMondayFixture().service()

	_, err := service.AutoFill(context.Background(), 2, monday)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSubstitutionServiceCoverageNeeded(t *testing.T) {
	service := newMondayFixture().service()

	details, err := service.CoverageNeeded(context.Background(), 1, monday)
	require.NoError(t, err)
	assert.Len(t, details, 2)

	_, err = service.CoverageNeeded(context.Background(), 99, monday)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubstitutionServiceUnassignForAbsence(t *testing.T) {
	fixture := newMondayFixture()
	service := fixture.service()

	first, err := service.Assign(context.Background(), monday, 10, 3)
	require.NoError(t, err)

	err = service.UnassignForAbsence(context.Background(), []models.SubstitutionAssignment{*first})
	require.NoError(t, err)
	assert.Empty(t, fixture.store.assignments)
	assert.Equal(t, []int64{first.ID}, fixture.extras.deleted)
}
