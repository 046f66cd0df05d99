package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
	appErrors "github.com/tarihci20/okul-yonetim-api/pkg/errors"
)

type mockAbsenceRepo struct {
	items   map[int64]*models.Absence
	nextID  int64
	deleted []int64
}

func (m *mockAbsenceRepo) List(ctx context.Context, filter models.AbsenceFilter) ([]models.Absence, int, error) {
	return nil, 0, nil
}

func (m *mockAbsenceRepo) FindByID(ctx context.Context, id int64) (*models.Absence, error) {
	if absence, ok := m.items[id]; ok {
		cp := *absence
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAbsenceRepo) Create(ctx context.Context, absence *models.Absence) error {
	if m.items == nil {
		m.items = make(map[int64]*models.Absence)
	}
	m.nextID++
	absence.ID = m.nextID
	cp := *absence
	m.items[absence.ID] = &cp
	return nil
}

func (m *mockAbsenceRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	m.deleted = append(m.deleted, id)
	return nil
}

type stubAbsenceSubstitutions struct {
	assignments []models.SubstitutionAssignment
}

func (s stubAbsenceSubstitutions) ListForAbsence(ctx context.Context, teacherID int64, startDate, endDate time.Time) ([]models.SubstitutionAssignment, error) {
	return s.assignments, nil
}

type recordingCascader struct {
	unassigned []models.SubstitutionAssignment
}

func (r *recordingCascader) UnassignForAbsence(ctx context.Context, assignments []models.SubstitutionAssignment) error {
	r.unassigned = append(r.unassigned, assignments...)
	return nil
}

func TestAbsenceServiceCreate(t *testing.T) {
	repo := &mockAbsenceRepo{}
	service := NewAbsenceService(repo, stubTeacherRef{known: map[int64]bool{1: true}}, stubAbsenceSubstitutions{}, &recordingCascader{}, nil, zap.NewNop())

	absence, err := service.Create(context.Background(), CreateAbsenceRequest{
		TeacherID: 1,
		StartDate: "2024-03-04",
		EndDate:   "2024-03-05",
		Reason:    "rapor",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), absence.TeacherID)
	assert.Len(t, repo.items, 1)
}

func TestAbsenceServiceCreateInvalidRange(t *testing.T) {
	service := NewAbsenceService(&mockAbsenceRepo{}, stubTeacherRef{known: map[int64]bool{1: true}}, stubAbsenceSubstitutions{}, &recordingCascader{}, nil, zap.NewNop())

	_, err := service.Create(context.Background(), CreateAbsenceRequest{
		TeacherID: 1,
		StartDate: "2024-03-05",
		EndDate:   "2024-03-04",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = service.Create(context.Background(), CreateAbsenceRequest{
		TeacherID: 1,
		StartDate: "04.03.2024",
		EndDate:   "2024-03-05",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAbsenceServiceCreateUnknownTeacher(t *testing.T) {
	service := NewAbsenceService(&mockAbsenceRepo{}, stubTeacherRef{}, stubAbsenceSubstitutions{}, &recordingCascader{}, nil, zap.NewNop())

	_, err := service.Create(context.Background(), CreateAbsenceRequest{
		TeacherID: 9,
		StartDate: "2024-03-04",
		EndDate:   "2024-03-04",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestAbsenceServiceDeleteCascadesAssignments(t *testing.T) {
	repo := &mockAbsenceRepo{items: map[int64]*models.Absence{
		1: {ID: 1, TeacherID: 1, StartDate: monday, EndDate: monday},
	}, nextID: 1}
	dependent := []models.SubstitutionAssignment{
		{ID: 40, AbsentTeacherID: 1, SubstituteTeacherID: 2, ScheduleEntryID: 10, Date: monday},
	}
	cascader := &recordingCascader{}
	service := NewAbsenceService(repo, stubTeacherRef{known: map[int64]bool{1: true}}, stubAbsenceSubstitutions{assignments: dependent}, cascader, nil, zap.NewNop())

	require.NoError(t, service.Delete(context.Background(), 1))
	assert.Equal(t, dependent, cascader.unassigned)
	assert.Equal(t, []int64{1}, repo.deleted)
}

func TestAbsenceServiceDeleteNotFound(t *testing.T) {
	service := NewAbsenceService(&mockAbsenceRepo{}, stubTeacherRef{}, stubAbsenceSubstitutions{}, &recordingCascader{}, nil, zap.NewNop())

	err := service.Delete(context.Background(), 77)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
