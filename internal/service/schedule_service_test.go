package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
	appErrors "github.com/tarihci20/okul-yonetim-api/pkg/errors"
)

type mockScheduleRepo struct {
	items  map[int64]*models.ScheduleEntry
	nextID int64
}

func (m *mockScheduleRepo) List(ctx context.Context, filter models.ScheduleEntryFilter) ([]models.ScheduleEntryDetail, int, error) {
	return nil, 0, nil
}

func (m *mockScheduleRepo) FindByID(ctx context.Context, id int64) (*models.ScheduleEntry, error) {
	if entry, ok := m.items[id]; ok {
		cp := *entry
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockScheduleRepo) ExistsSlot(ctx context.Context, teacherID, periodID int64, dayOfWeek int, excludeID int64) (bool, error) {
	for _, entry := range m.items {
		if entry.TeacherID == teacherID && entry.PeriodID == periodID && entry.DayOfWeek == dayOfWeek && entry.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockScheduleRepo) Create(ctx context.Context, entry *models.ScheduleEntry) error {
	if m.items == nil {
		m.items = make(map[int64]*models.ScheduleEntry)
	}
	m.nextID++
	entry.ID = m.nextID
	cp := *entry
	m.items[entry.ID] = &cp
	return nil
}

func (m *mockScheduleRepo) Update(ctx context.Context, entry *models.ScheduleEntry) error {
	cp := *entry
	m.items[entry.ID] = &cp
	return nil
}

func (m *mockScheduleRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	return nil
}

type stubTeacherRef struct{ known map[int64]bool }

func (s stubTeacherRef) FindByID(ctx context.Context, id int64) (*models.Teacher, error) {
	if s.known[id] {
		return &models.Teacher{ID: id}, nil
	}
	return nil, sql.ErrNoRows
}

type stubClassRef struct{ known map[int64]bool }

func (s stubClassRef) FindByID(ctx context.Context, id int64) (*models.Class, error) {
	if s.known[id] {
		return &models.Class{ID: id}, nil
	}
	return nil, sql.ErrNoRows
}

type stubSubjectRef struct{ known map[int64]bool }

func (s stubSubjectRef) FindByID(ctx context.Context, id int64) (*models.Subject, error) {
	if s.known[id] {
		return &models.Subject{ID: id}, nil
	}
	return nil, sql.ErrNoRows
}

type stubPeriodRef struct{ known map[int64]bool }

func (s stubPeriodRef) FindByID(ctx context.Context, id int64) (*models.Period, error) {
	if s.known[id] {
		return &models.Period{ID: id}, nil
	}
	return nil, sql.ErrNoRows
}

func newScheduleService(repo *mockScheduleRepo) *ScheduleService {
	known := map[int64]bool{1: true, 2: true}
	return NewScheduleService(
		repo,
		stubTeacherRef{known: known},
		stubClassRef{known: known},
		stubSubjectRef{known: known},
		stubPeriodRef{known: known},
		nil, zap.NewNop(),
	)
}

func TestScheduleServiceCreate(t *testing.T) {
	repo := &mockScheduleRepo{}
	service := newScheduleService(repo)

	entry, err := service.Create(context.Background(), CreateScheduleEntryRequest{
		TeacherID: 1, ClassID: 1, SubjectID: 1, PeriodID: 1, DayOfWeek: 1,
	})
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)
	assert.Len(t, repo.items, 1)
}

func TestScheduleServiceCreateUnknownReference(t *testing.T) {
	service := newScheduleService(&mockScheduleRepo{})

	_, err := service.Create(context.Background(), CreateScheduleEntryRequest{
		TeacherID: 1, ClassID: 1, SubjectID: 99, PeriodID: 1, DayOfWeek: 1,
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Equal(t, "subject not found", appErr.Message)
}

func TestScheduleServiceCreateOccupiedSlot(t *testing.T) {
	repo := &mockScheduleRepo{items: map[int64]*models.ScheduleEntry{
		1: {ID: 1, TeacherID: 1, ClassID: 1, SubjectID: 1, PeriodID: 1, DayOfWeek: 1},
	}, nextID: 1}
	service := newScheduleService(repo)

	_, err := service.Create(context.Background(), CreateScheduleEntryRequest{
		TeacherID: 1, ClassID: 2, SubjectID: 1, PeriodID: 1, DayOfWeek: 1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceCreateInvalidWeekday(t *testing.T) {
	service := newScheduleService(&mockScheduleRepo{})

	_, err := service.Create(context.Background(), CreateScheduleEntryRequest{
		TeacherID: 1, ClassID: 1, SubjectID: 1, PeriodID: 1, DayOfWeek: 8,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestScheduleServiceUpdateKeepsOwnSlot(t *testing.T) {
	repo := &mockScheduleRepo{items: map[int64]*models.ScheduleEntry{
		1: {ID: 1, TeacherID: 1, ClassID: 1, SubjectID: 1, PeriodID: 1, DayOfWeek: 1},
	}, nextID: 1}
	service := newScheduleService(repo)

	entry, err := service.Update(context.Background(), 1, UpdateScheduleEntryRequest{
		TeacherID: 1, ClassID: 2, SubjectID: 1, PeriodID: 1, DayOfWeek: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), entry.ClassID)
}
