package handlers

import (
	"errors"

	"github.com/consultplan/consultplan/internal/scheduling"
	"github.com/consultplan/consultplan/internal/services"
	"github.com/consultplan/consultplan/pkg/response"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DashboardHandler struct {
	dashboardService *services.DashboardService
}

func NewDashboardHandler(db *gorm.DB, calendar *services.CalendarService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: services.NewDashboardService(db, calendar),
	}
}

// GetStats returns utilization and staffing statistics for a date range
// GET /api/dashboard/stats
func (h *DashboardHandler) GetStats(c *gin.Context) {
	var req services.DashboardStatsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	stats, err := h.dashboardService.GetStats(&req)
	if err != nil {
		var validationErr *scheduling.ValidationError
		if errors.As(err, &validationErr) {
			response.BadRequest(c, validationErr.Error())
			return
		}
		response.ServerError(c, err.Error())
		return
	}

	response.Success(c, stats)
}
