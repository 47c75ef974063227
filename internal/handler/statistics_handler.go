package handler

import (
	"net/http"
	"time"

	"rrhh/internal/middleware"
	"rrhh/internal/model"
	"rrhh/internal/service"
	"rrhh/pkg/response"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	statisticsService service.StatisticsService
	guard             *middleware.Authenticator
}

func NewStatisticsHandler(statisticsService service.StatisticsService, guard *middleware.Authenticator) *StatisticsHandler {
	return &StatisticsHandler{statisticsService: statisticsService, guard: guard}
}

func (h *StatisticsHandler) RegisterRoutes(router *gin.RouterGroup) {
	statsGroup := router.Group("/estadisticas", h.guard.Authenticate())
	{
		statsGroup.GET("", h.GetStatistics)
	}
}

// @Summary      Get Dashboard Statistics
// @Description  Headcount, active contracts, pending leave and the payroll and attendance activity of a date range
// @Tags         estadisticas
// @Accept       json
// @Produce      json
// @Param        desde query string false "Start date (YYYY-MM-DD), defaults to the first day of the month"
// @Param        hasta query string false "End date (YYYY-MM-DD), defaults to today"
// @Success      200 {object} response.Response{data=model.StatisticsResponse}
// @Failure      400 {object} response.Response "Invalid date format"
// @Failure      401 {object} response.Response "Unauthorized"
// @Failure      500 {object} response.Response "Internal server error"
// @Security     BearerAuth
// @Router       /api/estadisticas [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	// Default to current month if no dates are provided
	now := time.Now()
	monthStart := model.NewDate(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC))

	startDate, ok := dateQuery(c, "desde", monthStart)
	if !ok {
		return
	}
	endDate, ok := dateQuery(c, "hasta", model.NewDate(now))
	if !ok {
		return
	}

	stats, err := h.statisticsService.GetStatistics(c.Request.Context(), startDate, endDate)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}
