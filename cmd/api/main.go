package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/tarihci20/okul-yonetim-api/api/swagger"
	"github.com/tarihci20/okul-yonetim-api/internal/handler"
	"github.com/tarihci20/okul-yonetim-api/internal/repository"
	"github.com/tarihci20/okul-yonetim-api/internal/router"
	"github.com/tarihci20/okul-yonetim-api/internal/service"
	"github.com/tarihci20/okul-yonetim-api/pkg/cache"
	"github.com/tarihci20/okul-yonetim-api/pkg/config"
	"github.com/tarihci20/okul-yonetim-api/pkg/database"
	"github.com/tarihci20/okul-yonetim-api/pkg/jobs"
	"github.com/tarihci20/okul-yonetim-api/pkg/logger"
	corsmiddleware "github.com/tarihci20/okul-yonetim-api/pkg/middleware/cors"
	reqidmiddleware "github.com/tarihci20/okul-yonetim-api/pkg/middleware/requestid"
)

// @title Okul Yonetim API
// @version 1.0.0
// @description School administration backend: rosters, absences and substitute planning
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, availability cache disabled", "error", err)
		redisClient = nil
	}

	teacherRepo := repository.NewTeacherRepository(db)
	classRepo := repository.NewClassRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	periodRepo := repository.NewPeriodRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	dutyRepo := repository.NewDutyRepository(db)
	absenceRepo := repository.NewAbsenceRepository(db)
	substitutionRepo := repository.NewSubstitutionRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	etutRepo := repository.NewEtutRepository(db)
	extraLessonRepo := repository.NewExtraLessonRepository(db)
	reportJobRepo := repository.NewReportJobRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()

	teacherSvc := service.NewTeacherService(teacherRepo, nil, logr)
	classSvc := service.NewClassService(classRepo, nil, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, nil, logr)
	periodSvc := service.NewPeriodService(periodRepo, nil, logr)
	scheduleSvc := service.NewScheduleService(scheduleRepo, teacherRepo, classRepo, subjectRepo, periodRepo, nil, logr)
	dutySvc := service.NewDutyService(dutyRepo, teacherRepo, periodRepo, nil, logr)
	studentSvc := service.NewStudentService(studentRepo, classRepo, nil, logr)
	etutSvc := service.NewEtutService(etutRepo, teacherRepo, periodRepo, studentRepo, nil, logr)
	extraLessonSvc := service.NewExtraLessonService(extraLessonRepo, teacherRepo, nil, logr)

	substitutionSvc := service.NewSubstitutionService(
		teacherRepo,
		periodRepo,
		subjectRepo,
		scheduleRepo,
		dutyRepo,
		absenceRepo,
		substitutionRepo,
		extraLessonRepo,
		cacheRepo,
		metricsSvc,
		nil,
		logr,
		service.SubstitutionConfig{AvailabilityCacheTTL: cfg.Substitution.AvailabilityCacheTTL},
	)
	absenceSvc := service.NewAbsenceService(absenceRepo, teacherRepo, substitutionRepo, substitutionSvc, nil, logr)

	var reportSvc *service.ReportService
	var reportQueue *jobs.Queue
	if cfg.Reports.Enabled {
		reportSvc = service.NewReportService(
			reportJobRepo,
			substitutionRepo,
			extraLessonRepo,
			metricsSvc,
			logr,
			service.ReportServiceConfig{StorageDir: cfg.Reports.StorageDir},
		)
		reportQueue = jobs.NewQueue("reports", reportSvc.Process, jobs.QueueConfig{
			Workers:    cfg.Reports.WorkerConcurrency,
			MaxRetries: cfg.Reports.WorkerRetries,
			Logger:     logr,
		})
		reportSvc.BindQueue(reportQueue)
		reportQueue.Start(context.Background())
		defer reportQueue.Stop()
	}

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "database unreachable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handlers := router.Handlers{
		Teachers:      handler.NewTeacherHandler(teacherSvc),
		Classes:       handler.NewClassHandler(classSvc, studentSvc),
		Subjects:      handler.NewSubjectHandler(subjectSvc),
		Periods:       handler.NewPeriodHandler(periodSvc),
		Schedule:      handler.NewScheduleHandler(scheduleSvc),
		Duties:        handler.NewDutyHandler(dutySvc),
		Absences:      handler.NewAbsenceHandler(absenceSvc),
		Students:      handler.NewStudentHandler(studentSvc),
		Etut:          handler.NewEtutHandler(etutSvc),
		ExtraLessons:  handler.NewExtraLessonHandler(extraLessonSvc),
		Substitutions: handler.NewSubstitutionHandler(substitutionSvc),
		Metrics:       handler.NewMetricsHandler(metricsSvc),
	}
	if reportSvc != nil {
		handlers.Reports = handler.NewReportHandler(reportSvc)
	}
	router.Register(r, cfg.APIPrefix, handlers, metricsSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logr.Sugar().Infow("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("shutdown failed", "error", err)
	}
}
