package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
	"github.com/tarihci20/okul-yonetim-api/internal/repository"
	appErrors "github.com/tarihci20/okul-yonetim-api/pkg/errors"
	"github.com/tarihci20/okul-yonetim-api/pkg/export"
	"github.com/tarihci20/okul-yonetim-api/pkg/jobs"
)

type reportJobStore interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, id string, params repository.UpdateReportJobParams) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

type reportRosterReader interface {
	ListDetailsByDate(ctx context.Context, date time.Time) ([]models.SubstitutionAssignmentDetail, error)
}

type reportSummaryReader interface {
	MonthlySummary(ctx context.Context, year, month int) ([]models.ExtraLessonSummary, error)
}

type reportMetrics interface {
	ObserveReportJob(status string)
}

// CreateReportRequest captures report job parameters. Date applies to the
// substitution day roster, year and month to the monthly summary.
type CreateReportRequest struct {
	Type   models.ReportType   `json:"type" validate:"required"`
	Format models.ReportFormat `json:"format" validate:"required"`
	Date   string              `json:"date"`
	Year   int                 `json:"year"`
	Month  int                 `json:"month"`
}

// ReportDownload aggregates resolved download data.
type ReportDownload struct {
	File     *os.File
	Filename string
	Format   models.ReportFormat
}

// ReportService generates substitution and extra lesson exports in the
// background and tracks job state.
type ReportService struct {
	repo    reportJobStore
	roster  reportRosterReader
	summary reportSummaryReader
	queue   jobDispatcher
	metrics reportMetrics
	csv     *export.CSVExporter
	pdf     *export.PDFExporter
	logger  *zap.Logger
	dir     string
}

// ReportServiceConfig governs report output.
type ReportServiceConfig struct {
	StorageDir string
}

// NewReportService constructs the report service. Call BindQueue before
// starting the worker queue.
func NewReportService(
	repo reportJobStore,
	roster reportRosterReader,
	summary reportSummaryReader,
	metrics reportMetrics,
	logger *zap.Logger,
	cfg ReportServiceConfig,
) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StorageDir == "" {
		cfg.StorageDir = os.TempDir()
	}
	return &ReportService{
		repo:    repo,
		roster:  roster,
		summary: summary,
		metrics: metrics,
		csv:     export.NewCSVExporter(),
		pdf:     export.NewPDFExporter(),
		logger:  logger,
		dir:     cfg.StorageDir,
	}
}

// BindQueue attaches the dispatcher used for asynchronous processing.
func (s *ReportService) BindQueue(queue jobDispatcher) {
	s.queue = queue
}

// Create validates and enqueues a new report job.
func (s *ReportService) Create(ctx context.Context, req CreateReportRequest) (*models.ReportJob, error) {
	if req.Format != models.ReportFormatCSV && req.Format != models.ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}

	job := &models.ReportJob{
		Type:   req.Type,
		Format: req.Format,
		Status: models.ReportStatusQueued,
	}
	switch req.Type {
	case models.ReportTypeSubstitutionDay:
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD format")
		}
		job.Date = &date
	case models.ReportTypeExtraLessonMonth:
		if req.Year < 2000 || req.Year > 2100 || req.Month < 1 || req.Month > 12 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid year or month")
		}
		job.Year = req.Year
		job.Month = req.Month
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown report type")
	}

	if err := s.repo.Create(ctx, job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create report job")
	}

	if s.queue == nil {
		return nil, appErrors.Clone(appErrors.ErrInternal, "report queue not running")
	}
	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type)}); err != nil {
		s.failJob(ctx, job.ID, err)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}
	return job, nil
}

// Get returns a report job by identifier.
func (s *ReportService) Get(ctx context.Context, id string) (*models.ReportJob, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	return job, nil
}

// Download opens the rendered file of a finished job.
func (s *ReportService) Download(ctx context.Context, id string) (*ReportDownload, error) {
	job, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if job.Status != models.ReportStatusDone || job.FilePath == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "report is not ready")
	}

	file, err := os.Open(*job.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open report file")
	}
	return &ReportDownload{
		File:     file,
		Filename: filepath.Base(*job.FilePath),
		Format:   job.Format,
	}, nil
}

// Process renders one queued job. Used as the queue handler.
func (s *ReportService) Process(ctx context.Context, queued jobs.Job) error {
	job, err := s.repo.GetByID(ctx, queued.ID)
	if err != nil {
		return fmt.Errorf("load report job %s: %w", queued.ID, err)
	}

	processing := models.ReportStatusProcessing
	if err := s.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{Status: &processing}); err != nil {
		return fmt.Errorf("mark report job processing: %w", err)
	}

	table, err := s.buildTable(ctx, job)
	if err != nil {
		s.failJob(ctx, job.ID, err)
		return err
	}

	var payload []byte
	switch job.Format {
	case models.ReportFormatPDF:
		payload, err = s.pdf.Render(table)
	default:
		payload, err = s.csv.Render(table)
	}
	if err != nil {
		s.failJob(ctx, job.ID, err)
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		s.failJob(ctx, job.ID, err)
		return err
	}
	path := filepath.Join(s.dir, fmt.Sprintf("%s.%s", job.ID, job.Format))
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		s.failJob(ctx, job.ID, err)
		return err
	}

	done := models.ReportStatusDone
	now := time.Now().UTC()
	if err := s.repo.Update(ctx, job.ID, repository.UpdateReportJobParams{Status: &done, FilePath: &path, FinishedAt: &now}); err != nil {
		return fmt.Errorf("mark report job done: %w", err)
	}
	if s.metrics != nil {
		s.metrics.ObserveReportJob(string(done))
	}
	s.logger.Info("report rendered", zap.String("job_id", job.ID), zap.String("path", path))
	return nil
}

func (s *ReportService) buildTable(ctx context.Context, job *models.ReportJob) (export.Table, error) {
	switch job.Type {
	case models.ReportTypeSubstitutionDay:
		if job.Date == nil {
			return export.Table{}, fmt.Errorf("report job %s missing date", job.ID)
		}
		roster, err := s.roster.ListDetailsByDate(ctx, *job.Date)
		if err != nil {
			return export.Table{}, fmt.Errorf("load day roster: %w", err)
		}
		table := export.Table{
			Title:   fmt.Sprintf("Substitutions %s", job.Date.Format("2006-01-02")),
			Columns: []string{"Period", "Class", "Subject", "Absent Teacher", "Substitute"},
		}
		for _, row := range roster {
			table.Rows = append(table.Rows, []string{
				strconv.Itoa(row.PeriodOrder),
				row.ClassName,
				row.SubjectName,
				row.AbsentTeacherName,
				row.SubstituteTeacherName,
			})
		}
		return table, nil
	case models.ReportTypeExtraLessonMonth:
		summary, err := s.summary.MonthlySummary(ctx, job.Year, job.Month)
		if err != nil {
			return export.Table{}, fmt.Errorf("load monthly summary: %w", err)
		}
		table := export.Table{
			Title:   fmt.Sprintf("Extra Lessons %04d-%02d", job.Year, job.Month),
			Columns: []string{"Teacher", "Total Hours"},
		}
		for _, row := range summary {
			table.Rows = append(table.Rows, []string{row.TeacherName, strconv.Itoa(row.TotalHours)})
		}
		return table, nil
	default:
		return export.Table{}, fmt.Errorf("unknown report type %q", job.Type)
	}
}

func (s *ReportService) failJob(ctx context.Context, id string, cause error) {
	failed := models.ReportStatusFailed
	now := time.Now().UTC()
	message := cause.Error()
	if err := s.repo.Update(ctx, id, repository.UpdateReportJobParams{Status: &failed, ErrorMessage: &message, FinishedAt: &now}); err != nil {
		s.logger.Error("failed to mark report job failed", zap.String("job_id", id), zap.Error(err))
	}
	if s.metrics != nil {
		s.metrics.ObserveReportJob(string(failed))
	}
}
