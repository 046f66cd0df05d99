package handler

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	appErrors "github.com/tarihci20/okul-yonetim-api/pkg/errors"
	"github.com/tarihci20/okul-yonetim-api/pkg/response"
)

// pathID parses the :id path parameter, writing a validation error on failure.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid id"))
		return 0, false
	}
	return id, true
}

// queryID parses a required integer query parameter.
func queryID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must be a positive integer", name)))
		return 0, false
	}
	return id, true
}

// queryDate parses a required YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, name string) (time.Time, bool) {
	date, err := time.Parse("2006-01-02", c.Query(name))
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s must use YYYY-MM-DD format", name)))
		return time.Time{}, false
	}
	return date, true
}
