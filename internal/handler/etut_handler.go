package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
	"github.com/tarihci20/okul-yonetim-api/internal/service"
	appErrors "github.com/tarihci20/okul-yonetim-api/pkg/errors"
	"github.com/tarihci20/okul-yonetim-api/pkg/response"
)

// EtutHandler handles study session endpoints.
type EtutHandler struct {
	service *service.EtutService
}

// NewEtutHandler constructs an etut handler.
func NewEtutHandler(svc *service.EtutService) *EtutHandler {
	return &EtutHandler{service: svc}
}

// ListSessions godoc
// @Summary List study sessions
// @Tags Etut
// @Produce json
// @Param teacher_id query int false "Filter by teacher"
// @Param date query string false "Filter by date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /etut/sessions [get]
func (h *EtutHandler) ListSessions(c *gin.Context) {
	var filter models.EtutSessionFilter
	if teacherID, err := strconv.ParseInt(c.Query("teacher_id"), 10, 64); err == nil {
		filter.TeacherID = teacherID
	}
	if raw := c.Query("date"); raw != "" {
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "date must use YYYY-MM-DD format"))
			return
		}
		filter.Date = &date
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	sessions, pagination, err := h.service.ListSessions(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, sessions, pagination)
}

// GetSession godoc
// @Summary Get study session by id
// @Tags Etut
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /etut/sessions/{id} [get]
func (h *EtutHandler) GetSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	session, err := h.service.GetSession(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session, nil)
}

// CreateSession godoc
// @Summary Open a study session
// @Tags Etut
// @Accept json
// @Produce json
// @Param payload body service.CreateEtutSessionRequest true "Session payload"
// @Success 201 {object} response.Envelope
// @Router /etut/sessions [post]
func (h *EtutHandler) CreateSession(c *gin.Context) {
	var req service.CreateEtutSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session, err := h.service.CreateSession(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, session)
}

// DeleteSession godoc
// @Summary Delete a study session
// @Tags Etut
// @Produce json
// @Param id path int true "Session ID"
// @Success 204 "No Content"
// @Router /etut/sessions/{id} [delete]
func (h *EtutHandler) DeleteSession(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteSession(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// MarkAttendance godoc
// @Summary Mark one student's attendance
// @Tags Etut
// @Accept json
// @Produce json
// @Param id path int true "Session ID"
// @Param payload body service.MarkAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /etut/sessions/{id}/attendance [post]
func (h *EtutHandler) MarkAttendance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.MarkAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	attendance, err := h.service.MarkAttendance(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, attendance, nil)
}

// ListAttendance godoc
// @Summary List the attendance sheet of a session
// @Tags Etut
// @Produce json
// @Param id path int true "Session ID"
// @Success 200 {object} response.Envelope
// @Router /etut/sessions/{id}/attendance [get]
func (h *EtutHandler) ListAttendance(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	records, err := h.service.ListAttendance(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, nil)
}
