package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-manager-api/internal/dto"
	"github.com/yukikurage/task-manager-api/internal/services"
)

type StatsHandler struct {
	statsService *services.StatsService
}

func NewStatsHandler(statsService *services.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetStats returns user and task counts
func (h *StatsHandler) GetStats(c *gin.Context) {
	actor, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.statsService.Get(c.Request.Context(), actor)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.StatsResponse{
		TotalUsers:    stats.TotalUsers,
		TotalTasks:    stats.TotalTasks,
		TasksByStatus: stats.TasksByStatus,
	})
}
