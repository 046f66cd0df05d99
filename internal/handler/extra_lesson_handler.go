package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
	"github.com/tarihci20/okul-yonetim-api/internal/service"
	appErrors "github.com/tarihci20/okul-yonetim-api/pkg/errors"
	"github.com/tarihci20/okul-yonetim-api/pkg/response"
)

// ExtraLessonHandler handles the extra teaching hours ledger endpoints.
type ExtraLessonHandler struct {
	service *service.ExtraLessonService
}

// NewExtraLessonHandler constructs an extra lesson handler.
func NewExtraLessonHandler(svc *service.ExtraLessonService) *ExtraLessonHandler {
	return &ExtraLessonHandler{service: svc}
}

// List godoc
// @Summary List extra lesson records
// @Tags ExtraLessons
// @Produce json
// @Param teacher_id query int false "Filter by teacher"
// @Param year query int false "Filter by year"
// @Param month query int false "Filter by month"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /extra-lessons [get]
func (h *ExtraLessonHandler) List(c *gin.Context) {
	var filter models.ExtraLessonFilter
	if teacherID, err := strconv.ParseInt(c.Query("teacher_id"), 10, 64); err == nil {
		filter.TeacherID = teacherID
	}
	if year, err := strconv.Atoi(c.Query("year")); err == nil {
		filter.Year = year
	}
	if month, err := strconv.Atoi(c.Query("month")); err == nil {
		filter.Month = month
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	lessons, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, lessons, pagination)
}

// Create godoc
// @Summary Record manual extra hours
// @Tags ExtraLessons
// @Accept json
// @Produce json
// @Param payload body service.CreateExtraLessonRequest true "Extra lesson payload"
// @Success 201 {object} response.Envelope
// @Router /extra-lessons [post]
func (h *ExtraLessonHandler) Create(c *gin.Context) {
	var req service.CreateExtraLessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	lesson, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, lesson)
}

// Delete godoc
// @Summary Delete a manual extra lesson record
// @Tags ExtraLessons
// @Produce json
// @Param id path int true "Record ID"
// @Success 204 "No Content"
// @Failure 409 {object} response.Envelope
// @Router /extra-lessons/{id} [delete]
func (h *ExtraLessonHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MonthlySummary godoc
// @Summary Aggregate per-teacher extra hours for one month
// @Tags ExtraLessons
// @Produce json
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} response.Envelope
// @Router /extra-lessons/summary [get]
func (h *ExtraLessonHandler) MonthlySummary(c *gin.Context) {
	year, err := strconv.Atoi(c.Query("year"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "year must be an integer"))
		return
	}
	month, err := strconv.Atoi(c.Query("month"))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "month must be an integer"))
		return
	}

	summary, svcErr := h.service.MonthlySummary(c.Request.Context(), year, month)
	if svcErr != nil {
		response.Error(c, svcErr)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}
