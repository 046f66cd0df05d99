package service

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
	"github.com/tarihci20/okul-yonetim-api/internal/repository"
	appErrors "github.com/tarihci20/okul-yonetim-api/pkg/errors"
	"github.com/tarihci20/okul-yonetim-api/pkg/jobs"
)

type mockReportJobStore struct {
	items  map[string]*models.ReportJob
	nextID int
}

func (m *mockReportJobStore) Create(ctx context.Context, job *models.ReportJob) error {
	if m.items == nil {
		m.items = make(map[string]*models.ReportJob)
	}
	m.nextID++
	job.ID = "job-" + time.Now().Format("150405") + "-" + string(rune('a'+m.nextID))
	job.CreatedAt = time.Now()
	cp := *job
	m.items[job.ID] = &cp
	return nil
}

func (m *mockReportJobStore) GetByID(ctx context.Context, id string) (*models.ReportJob, error) {
	if job, ok := m.items[id]; ok {
		cp := *job
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReportJobStore) Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error {
	job, ok := m.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	if params.Status != nil {
		job.Status = *params.Status
	}
	if params.FilePath != nil {
		job.FilePath = params.FilePath
	}
	if params.ErrorMessage != nil {
		job.ErrorMessage = params.ErrorMessage
	}
	if params.FinishedAt != nil {
		job.FinishedAt = params.FinishedAt
	}
	return nil
}

type stubRosterReader struct {
	roster []models.SubstitutionAssignmentDetail
}

func (s stubRosterReader) ListDetailsByDate(ctx context.Context, date time.Time) ([]models.SubstitutionAssignmentDetail, error) {
	return s.roster, nil
}

type stubSummaryReader struct {
	summary []models.ExtraLessonSummary
}

func (s stubSummaryReader) MonthlySummary(ctx context.Context, year, month int) ([]models.ExtraLessonSummary, error) {
	return s.summary, nil
}

type recordingDispatcher struct {
	enqueued []jobs.Job
	err      error
}

func (r *recordingDispatcher) Enqueue(job jobs.Job) error {
	if r.err != nil {
		return r.err
	}
	r.enqueued = append(r.enqueued, job)
	return nil
}

func newReportFixture(t *testing.T) (*ReportService, *mockReportJobStore, *recordingDispatcher) {
	store := &mockReportJobStore{}
	dispatcher := &recordingDispatcher{}
	roster := stubRosterReader{roster: []models.SubstitutionAssignmentDetail{{
		SubstitutionAssignment: models.SubstitutionAssignment{ID: 40},
		AbsentTeacherName:      "Teacher One",
		SubstituteTeacherName:  "Teacher Three",
		ClassName:              "5-A",
		SubjectName:            "Matematik",
		PeriodOrder:            1,
	}}}
	summary := stubSummaryReader{summary: []models.ExtraLessonSummary{
		{TeacherID: 3, TeacherName: "Teacher Three", Year: 2024, Month: 3, TotalHours: 4},
	}}
	service := NewReportService(store, roster, summary, nil, zap.NewNop(), ReportServiceConfig{StorageDir: t.TempDir()})
	service.BindQueue(dispatcher)
	return service, store, dispatcher
}

func TestReportServiceCreate(t *testing.T) {
	service, store, dispatcher := newReportFixture(t)

	job, err := service.Create(context.Background(), CreateReportRequest{
		Type:   models.ReportTypeSubstitutionDay,
		Format: models.ReportFormatCSV,
		Date:   "2024-03-04",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, job.Status)
	assert.Len(t, store.items, 1)
	require.Len(t, dispatcher.enqueued, 1)
	assert.Equal(t, job.ID, dispatcher.enqueued[0].ID)
}

func TestReportServiceCreateInvalidParams(t *testing.T) {
	service, _, _ := newReportFixture(t)

	_, err := service.Create(context.Background(), CreateReportRequest{
		Type:   models.ReportTypeSubstitutionDay,
		Format: "xlsx",
		Date:   "2024-03-04",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = service.Create(context.Background(), CreateReportRequest{
		Type:   models.ReportTypeExtraLessonMonth,
		Format: models.ReportFormatCSV,
		Year:   2024,
		Month:  13,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestReportServiceProcessRendersCSV(t *testing.T) {
	service, store, dispatcher := newReportFixture(t)

	job, err := service.Create(context.Background(), CreateReportRequest{
		Type:   models.ReportTypeSubstitutionDay,
		Format: models.ReportFormatCSV,
		Date:   "2024-03-04",
	})
	require.NoError(t, err)

	require.NoError(t, service.Process(context.Background(), dispatcher.enqueued[0]))

	stored := store.items[job.ID]
	assert.Equal(t, models.ReportStatusDone, stored.Status)
	require.NotNil(t, stored.FilePath)
	require.NotNil(t, stored.FinishedAt)

	payload, err := os.ReadFile(*stored.FilePath)
	require.NoError(t, err)
	assert.Contains(t, string(payload), "Teacher Three")
}

func TestReportServiceProcessRendersMonthlyPDF(t *testing.T) {
	service, store, dispatcher := newReportFixture(t)

	job, err := service.Create(context.Background(), CreateReportRequest{
		Type:   models.ReportTypeExtraLessonMonth,
		Format: models.ReportFormatPDF,
		Year:   2024,
		Month:  3,
	})
	require.NoError(t, err)

	require.NoError(t, service.Process(context.Background(), dispatcher.enqueued[0]))

	stored := store.items[job.ID]
	assert.Equal(t, models.ReportStatusDone, stored.Status)
	require.NotNil(t, stored.FilePath)

	info, err := os.Stat(*stored.FilePath)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestReportServiceDownloadNotReady(t *testing.T) {
	service, _, dispatcher := newReportFixture(t)

	job, err := service.Create(context.Background(), CreateReportRequest{
		Type:   models.ReportTypeSubstitutionDay,
		Format: models.ReportFormatCSV,
		Date:   "2024-03-04",
	})
	require.NoError(t, err)

	_, err = service.Download(context.Background(), job.ID)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	require.NoError(t, service.Process(context.Background(), dispatcher.enqueued[0]))

	download, err := service.Download(context.Background(), job.ID)
	require.NoError(t, err)
	defer download.File.Close()
	assert.Equal(t, models.ReportFormatCSV, download.Format)
}
