package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tarihci20/okul-yonetim-api/internal/models"
	appErrors "github.com/tarihci20/okul-yonetim-api/pkg/errors"
	"github.com/tarihci20/okul-yonetim-api/pkg/response"
)

func TestSubstitutionHandlerAssignInvalidBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSubstitutionHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/substitutions", bytes.NewReader([]byte(`not-json`)))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Assign(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubstitutionHandlerAssignInvalidDate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSubstitutionHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	body, _ := json.Marshal(AssignSubstituteRequest{
		Date:                "04.03.2024",
		ScheduleEntryID:     10,
		SubstituteTeacherID: 3,
	})
	req, _ := http.NewRequest(http.MethodPost, "/substitutions", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req

	handler.Assign(c)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, appErrors.ErrValidation.Code, envelope.Error.Code)
}

func TestSubstitutionHandlerAvailabilityMissingParams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewSubstitutionHandler(nil)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodGet, "/substitutions/availability?period_id=1", nil)
	c.Request = req

	handler.Availability(c)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRespondWithConflictReason(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/substitutions", nil)
	c.Request = req

	conflict := &models.SubstitutionConflictError{
		Reason:  string(models.AvailabilityHasOwnClass),
		Message: "substitute teacher is not available: has_own_class",
	}
	err := appErrors.Wrap(conflict, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflict.Message)

	respondWithConflictReason(c, err)
	require.Equal(t, http.StatusConflict, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Meta)
	assert.Equal(t, "has_own_class", envelope.Meta["reason"])
}

func TestRespondWithConflictReasonPassThrough(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(http.MethodPost, "/substitutions", nil)
	c.Request = req

	respondWithConflictReason(c, appErrors.Clone(appErrors.ErrValidation, "unknown period"))
	require.Equal(t, http.StatusBadRequest, w.Code)

	var envelope response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	assert.Nil(t, envelope.Meta)
}
