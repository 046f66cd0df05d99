package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
	"github.com/tarihci20/okul-yonetim-api/internal/service"
	appErrors "github.com/tarihci20/okul-yonetim-api/pkg/errors"
	"github.com/tarihci20/okul-yonetim-api/pkg/response"
)

// AssignSubstituteRequest is the payload for assigning one substitute.
type AssignSubstituteRequest struct {
	Date                string `json:"date" binding:"required"`
	ScheduleEntryID     int64  `json:"schedule_entry_id" binding:"required"`
	SubstituteTeacherID int64  `json:"substitute_teacher_id" binding:"required"`
}

// AutoFillRequest is the payload for covering a whole absence day.
type AutoFillRequest struct {
	Date            string `json:"date" binding:"required"`
	AbsentTeacherID int64  `json:"absent_teacher_id" binding:"required"`
}

// SubstitutionHandler handles substitution planning endpoints.
type SubstitutionHandler struct {
	service *service.SubstitutionService
}

// NewSubstitutionHandler constructs a substitution handler.
func NewSubstitutionHandler(svc *service.SubstitutionService) *SubstitutionHandler {
	return &SubstitutionHandler{service: svc}
}

// Availability godoc
// @Summary Resolve teacher availability for a date and period
// @Tags Substitutions
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param period_id query int true "Period ID"
// @Success 200 {object} response.Envelope
// @Router /substitutions/availability [get]
func (h *SubstitutionHandler) Availability(c *gin.Context) {
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	periodID, ok := queryID(c, "period_id")
	if !ok {
		return
	}

	statuses, err := h.service.ResolveAvailability(c.Request.Context(), date, periodID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, statuses, nil)
}

// Coverage godoc
// @Summary List an absent teacher's lessons needing coverage
// @Tags Substitutions
// @Produce json
// @Param teacher_id query int true "Absent teacher ID"
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /substitutions/coverage [get]
func (h *SubstitutionHandler) Coverage(c *gin.Context) {
	teacherID, ok := queryID(c, "teacher_id")
	if !ok {
		return
	}
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}

	entries, err := h.service.CoverageNeeded(c.Request.Context(), teacherID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries, nil)
}

// Assign godoc
// @Summary Assign a substitute to one lesson
// @Tags Substitutions
// @Accept json
// @Produce json
// @Param payload body AssignSubstituteRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /substitutions [post]
func (h *SubstitutionHandler) Assign(c *gin.Context) {
	var req AssignSubstituteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD format"))
		return
	}

	assignment, err := h.service.Assign(c.Request.Context(), date, req.ScheduleEntryID, req.SubstituteTeacherID)
	if err != nil {
		respondWithConflictReason(c, err)
		return
	}
	response.Created(c, assignment)
}

// Unassign godoc
// @Summary Remove the substitute from one lesson
// @Tags Substitutions
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param schedule_entry_id query int true "Schedule entry ID"
// @Success 204 "No Content"
// @Router /substitutions [delete]
func (h *SubstitutionHandler) Unassign(c *gin.Context) {
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}
	entryID, ok := queryID(c, "schedule_entry_id")
	if !ok {
		return
	}

	if err := h.service.Unassign(c.Request.Context(), date, entryID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AutoFill godoc
// @Summary Cover all of an absent teacher's lessons for one day
// @Tags Substitutions
// @Accept json
// @Produce json
// @Param payload body AutoFillRequest true "Auto-fill payload"
// @Success 200 {object} response.Envelope
// @Router /substitutions/autofill [post]
func (h *SubstitutionHandler) AutoFill(c *gin.Context) {
	var req AutoFillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD format"))
		return
	}

	result, err := h.service.AutoFill(c.Request.Context(), req.AbsentTeacherID, date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// DayRoster godoc
// @Summary List the substitution roster of one date
// @Tags Substitutions
// @Produce json
// @Param date query string true "Date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /substitutions [get]
func (h *SubstitutionHandler) DayRoster(c *gin.Context) {
	date, ok := queryDate(c, "date")
	if !ok {
		return
	}

	roster, err := h.service.DayRoster(c.Request.Context(), date)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// respondWithConflictReason surfaces the blocking reason in the response meta
// so clients can show why the assignment was rejected.
func respondWithConflictReason(c *gin.Context, err error) {
	var conflict *models.SubstitutionConflictError
	if errors.As(err, &conflict) {
		response.ErrorWithMeta(c, err, map[string]interface{}{"reason": conflict.Reason})
		return
	}
	response.Error(c, err)
}
