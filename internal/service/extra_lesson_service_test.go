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

type mockExtraLessonRepo struct {
	items   map[int64]*models.ExtraLesson
	nextID  int64
	deleted []int64
	summary []models.ExtraLessonSummary
}

func (m *mockExtraLessonRepo) List(ctx context.Context, filter models.ExtraLessonFilter) ([]models.ExtraLesson, int, error) {
	return nil, 0, nil
}

func (m *mockExtraLessonRepo) FindByID(ctx context.Context, id int64) (*models.ExtraLesson, error) {
	if lesson, ok := m.items[id]; ok {
		cp := *lesson
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockExtraLessonRepo) Create(ctx context.Context, lesson *models.ExtraLesson) error {
	if m.items == nil {
		m.items = make(map[int64]*models.ExtraLesson)
	}
	m.nextID++
	lesson.ID = m.nextID
	cp := *lesson
	m.items[lesson.ID] = &cp
	return nil
}

func (m *mockExtraLessonRepo) Delete(ctx context.Context, id int64) error {
	delete(m.items, id)
	m.deleted = append(m.deleted, id)
	return nil
}

func (m *mockExtraLessonRepo) MonthlySummary(ctx context.Context, year, month int) ([]models.ExtraLessonSummary, error) {
	return m.summary, nil
}

func TestExtraLessonServiceCreate(t *testing.T) {
	repo := &mockExtraLessonRepo{}
	service := NewExtraLessonService(repo, stubTeacherRef{known: map[int64]bool{1: true}}, nil, zap.NewNop())

	lesson, err := service.Create(context.Background(), CreateExtraLessonRequest{
		TeacherID: 1,
		Date:      "2024-03-04",
		Hours:     2,
		Note:      "etut takviyesi",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ExtraLessonSourceManual, lesson.Source)
	assert.Equal(t, 2, lesson.Hours)
	assert.Nil(t, lesson.SubstitutionID)
}

func TestExtraLessonServiceCreateInvalidDate(t *testing.T) {
	service := NewExtraLessonService(&mockExtraLessonRepo{}, stubTeacherRef{known: map[int64]bool{1: true}}, nil, zap.NewNop())

	_, err := service.Create(context.Background(), CreateExtraLessonRequest{
		TeacherID: 1,
		Date:      "04/03/2024",
		Hours:     1,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExtraLessonServiceDelete(t *testing.T) {
	repo := &mockExtraLessonRepo{items: map[int64]*models.ExtraLesson{
		1: {ID: 1, TeacherID: 1, Hours: 1, Source: models.ExtraLessonSourceManual},
	}, nextID: 1}
	service := NewExtraLessonService(repo, stubTeacherRef{}, nil, zap.NewNop())

	require.NoError(t, service.Delete(context.Background(), 1))
	assert.Equal(t, []int64{1}, repo.deleted)
}

func TestExtraLessonServiceDeleteSubstitutionRecord(t *testing.T) {
	substitutionID := int64(40)
	repo := &mockExtraLessonRepo{items: map[int64]*models.ExtraLesson{
		1: {ID: 1, TeacherID: 1, Hours: 1, Source: models.ExtraLessonSourceSubstitution, SubstitutionID: &substitutionID},
	}, nextID: 1}
	service := NewExtraLessonService(repo, stubTeacherRef{}, nil, zap.NewNop())

	err := service.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.deleted)
}

func TestExtraLessonServiceMonthlySummaryBounds(t *testing.T) {
	service := NewExtraLessonService(&mockExtraLessonRepo{}, stubTeacherRef{}, nil, zap.NewNop())

	_, err := service.MonthlySummary(context.Background(), 2024, 13)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	summary, err := service.MonthlySummary(context.Background(), 2024, 3)
	require.NoError(t, err)
	assert.NotNil(t, summary)
}
