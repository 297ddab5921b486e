// internal/handlers/analytics.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/payhub-backend/internal/services"
	"github.com/javajoker/payhub-backend/internal/utils"
)

type AnalyticsHandler struct {
	analyticsService *services.AnalyticsService
}

func NewAnalyticsHandler(analyticsService *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		analyticsService: analyticsService,
	}
}

// POST /projects/:id/analytics
func (h *AnalyticsHandler) Track(c *gin.Context) {
	projectID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.TrackEventRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.analyticsService.Track(c.Request.Context(), requesterFromContext(c), projectID, &req, clientInfo(c)); err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"recorded": true})
}

// POST /projects/:id/playback
func (h *AnalyticsHandler) ReportPlayback(c *gin.Context) {
	projectID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	var req services.PlaybackReportRequest
	if !bindJSON(c, &req) {
		return
	}

	status, err := h.analyticsService.ReportPlayback(c.Request.Context(), requesterFromContext(c), projectID, &req, clientInfo(c))
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, status)
}

// GET /projects/:id/analytics
func (h *AnalyticsHandler) ProjectSummary(c *gin.Context) {
	projectID, ok := utils.ParseUUIDParam(c, "id")
	if !ok {
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		limit = 50
	}

	summary, err := h.analyticsService.ProjectSummary(c.Request.Context(), requesterFromContext(c), projectID, limit)
	if err != nil {
		utils.HandleServiceError(c, err)
		return
	}

	utils.SuccessResponse(c, summary)
}
