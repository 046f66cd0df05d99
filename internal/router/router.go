package router

import (
	"github.com/gin-gonic/gin"

	"github.com/tarihci20/okul-yonetim-api/internal/handler"
	"github.com/tarihci20/okul-yonetim-api/internal/middleware"
	"github.com/tarihci20/okul-yonetim-api/internal/service"
)

// Handlers aggregates every HTTP handler the router mounts.
type Handlers struct {
	Teachers      *handler.TeacherHandler
	Classes       *handler.ClassHandler
	Subjects      *handler.SubjectHandler
	Periods       *handler.PeriodHandler
	Schedule      *handler.ScheduleHandler
	Duties        *handler.DutyHandler
	Absences      *handler.AbsenceHandler
	Students      *handler.StudentHandler
	Etut          *handler.EtutHandler
	ExtraLessons  *handler.ExtraLessonHandler
	Substitutions *handler.SubstitutionHandler
	Reports       *handler.ReportHandler
	Metrics       *handler.MetricsHandler
}

// Register mounts all API routes under the given prefix.
func Register(r *gin.Engine, prefix string, h Handlers, metricsSvc *service.MetricsService) {
	r.Use(middleware.Metrics(metricsSvc))

	if h.Metrics != nil {
		r.GET("/metrics", h.Metrics.Expose)
	}

	api := r.Group(prefix)

	teachers := api.Group("/teachers")
	teachers.GET("", h.Teachers.List)
	teachers.POST("", h.Teachers.Create)
	teachers.GET("/:id", h.Teachers.Get)
	teachers.PUT("/:id", h.Teachers.Update)
	teachers.DELETE("/:id", h.Teachers.Deactivate)

	classes := api.Group("/classes")
	classes.GET("", h.Classes.List)
	classes.POST("", h.Classes.Create)
	classes.GET("/:id", h.Classes.Get)
	classes.GET("/:id/students", h.Classes.Students)
	classes.PUT("/:id", h.Classes.Update)
	classes.DELETE("/:id", h.Classes.Delete)

	subjects := api.Group("/subjects")
	subjects.GET("", h.Subjects.List)
	subjects.POST("", h.Subjects.Create)
	subjects.GET("/:id", h.Subjects.Get)
	subjects.PUT("/:id", h.Subjects.Update)
	subjects.DELETE("/:id", h.Subjects.Delete)

	periods := api.Group("/periods")
	periods.GET("", h.Periods.List)
	periods.POST("", h.Periods.Create)
	periods.GET("/:id", h.Periods.Get)
	periods.PUT("/:id", h.Periods.Update)
	periods.DELETE("/:id", h.Periods.Delete)

	schedule := api.Group("/schedule")
	schedule.GET("", h.Schedule.List)
	schedule.POST("", h.Schedule.Create)
	schedule.GET("/:id", h.Schedule.Get)
	schedule.PUT("/:id", h.Schedule.Update)
	schedule.DELETE("/:id", h.Schedule.Delete)

	duties := api.Group("/duties")
	duties.GET("", h.Duties.List)
	duties.POST("", h.Duties.Create)
	duties.GET("/:id", h.Duties.Get)
	duties.PUT("/:id", h.Duties.Update)
	duties.DELETE("/:id", h.Duties.Delete)

	absences := api.Group("/absences")
	absences.GET("", h.Absences.List)
	absences.POST("", h.Absences.Create)
	absences.GET("/:id", h.Absences.Get)
	absences.DELETE("/:id", h.Absences.Delete)

	students := api.Group("/students")
	students.GET("", h.Students.List)
	students.POST("", h.Students.Create)
	students.GET("/:id", h.Students.Get)
	students.PUT("/:id", h.Students.Update)
	students.DELETE("/:id", h.Students.Deactivate)

	etut := api.Group("/etut/sessions")
	etut.GET("", h.Etut.ListSessions)
	etut.POST("", h.Etut.CreateSession)
	etut.GET("/:id", h.Etut.GetSession)
	etut.DELETE("/:id", h.Etut.DeleteSession)
	etut.GET("/:id/attendance", h.Etut.ListAttendance)
	etut.POST("/:id/attendance", h.Etut.MarkAttendance)

	extraLessons := api.Group("/extra-lessons")
	extraLessons.GET("", h.ExtraLessons.List)
	extraLessons.POST("", h.ExtraLessons.Create)
	extraLessons.GET("/summary", h.ExtraLessons.MonthlySummary)
	extraLessons.DELETE("/:id", h.ExtraLessons.Delete)

	substitutions := api.Group("/substitutions")
	substitutions.GET("", h.Substitutions.DayRoster)
	substitutions.POST("", h.Substitutions.Assign)
	substitutions.DELETE("", h.Substitutions.Unassign)
	substitutions.GET("/availability", h.Substitutions.Availability)
	substitutions.GET("/coverage", h.Substitutions.Coverage)
	substitutions.POST("/autofill", h.Substitutions.AutoFill)

	if h.Reports != nil {
		reports := api.Group("/reports")
		reports.POST("", h.Reports.Create)
		reports.GET("/:id", h.Reports.Get)
		reports.GET("/:id/download", h.Reports.Download)
	}
}
