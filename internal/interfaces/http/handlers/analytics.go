// internal/interfaces/http/handlers/analytics.go
package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/your-org/storefront-api/internal/domain/analytics"
	"github.com/your-org/storefront-api/internal/pkg/response"
)

const (
	defaultVisitDays = 7
	maxVisitDays     = 90
)

// AnalyticsService counts visits and builds the dashboard
type AnalyticsService interface {
	TrackVisit(ctx context.Context)
	GetDashboardStats(ctx context.Context, visitDays int) (*analytics.DashboardStats, error)
}

// AnalyticsHandler handles visit and dashboard endpoints
type AnalyticsHandler struct {
	analytics AnalyticsService
	log       logrus.FieldLogger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(svc AnalyticsService, log logrus.FieldLogger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: svc, log: log}
}

// TrackVisit handles POST /visits. It always answers 204; counting is best effort.
func (h *AnalyticsHandler) TrackVisit(c *gin.Context) {
	h.analytics.TrackVisit(c.Request.Context())
	c.Status(http.StatusNoContent)
}

// GetDashboard handles GET /admin/dashboard?days=
func (h *AnalyticsHandler) GetDashboard(c *gin.Context) {
	days := defaultVisitDays
	if raw := c.Query("days"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 1 || d > maxVisitDays {
			response.Error(c, http.StatusBadRequest, "Invalid days", "days must be between 1 and "+strconv.Itoa(maxVisitDays))
			return
		}
		days = d
	}

	stats, err := h.analytics.GetDashboardStats(c.Request.Context(), days)
	if err != nil {
		renderError(c, h.log, err)
		return
	}
	response.OK(c, stats)
}
