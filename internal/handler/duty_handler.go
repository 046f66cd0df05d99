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

// DutyHandler handles supervision duty endpoints.
type DutyHandler struct {
	service *service.DutyService
}

// NewDutyHandler constructs a duty handler.
func NewDutyHandler(svc *service.DutyService) *DutyHandler {
	return &DutyHandler{service: svc}
}

// List godoc
// @Summary List duty entries
// @Tags Duties
// @Produce json
// @Param teacher_id query int false "Filter by teacher"
// @Param day query int false "Filter by ISO weekday (1-7)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /duties [get]
func (h *DutyHandler) List(c *gin.Context) {
	var filter models.DutyEntryFilter
	if teacherID, err := strconv.ParseInt(c.Query("teacher_id"), 10, 64); err == nil {
		filter.TeacherID = teacherID
	}
	if day, err := strconv.Atoi(c.Query("day")); err == nil {
		filter.DayOfWeek = day
	}
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if limit, err := strconv.Atoi(c.DefaultQuery("limit", "20")); err == nil {
		filter.PageSize = limit
	}

	duties, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, duties, pagination)
}

// Get godoc
// @Summary Get duty by id
// @Tags Duties
// @Produce json
// @Param id path int true "Duty ID"
// @Success 200 {object} response.Envelope
// @Router /duties/{id} [get]
func (h *DutyHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	duty, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, duty, nil)
}

// Create godoc
// @Summary Create duty entry
// @Tags Duties
// @Accept json
// @Produce json
// @Param payload body service.CreateDutyRequest true "Duty payload"
// @Success 201 {object} response.Envelope
// @Router /duties [post]
func (h *DutyHandler) Create(c *gin.Context) {
	var req service.CreateDutyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	duty, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, duty)
}

// Update godoc
// @Summary Update duty entry
// @Tags Duties
// @Accept json
// @Produce json
// @Param id path int true "Duty ID"
// @Param payload body service.UpdateDutyRequest true "Duty payload"
// @Success 200 {object} response.Envelope
// @Router /duties/{id} [put]
func (h *DutyHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateDutyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	duty, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, duty, nil)
}

// Delete godoc
// @Summary Delete duty entry
// @Tags Duties
// @Produce json
// @Param id path int true "Duty ID"
// @Success 204 "No Content"
// @Router /duties/{id} [delete]
func (h *DutyHandler) Delete(c *gin.Context) {
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
