package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tarihci20/okul-yonetim-api/internal/service"
)

// MetricsHandler exposes Prometheus metrics.
type MetricsHandler struct {
	service *service.MetricsService
}

// NewMetricsHandler constructs a metrics handler.
func NewMetricsHandler(svc *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{service: svc}
}

// Expose serves the Prometheus scrape endpoint.
func (h *MetricsHandler) Expose(c *gin.Context) {
	h.service.Handler().ServeHTTP(c.Writer, c.Request)
}
