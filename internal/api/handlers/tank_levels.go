package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Numzn/station-main/internal/models"
	"github.com/Numzn/station-main/internal/service"
)

// GetTankLevels 当前液位
func (h *Handler) GetTankLevels(c *gin.Context) {
	levels, err := h.svc.Levels.Current(c.Request.Context())
	if err != nil {
		h.fail(c, err, "get tank levels")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": levels})
}

// ListTankLevelLogs 液位变化日志，可按 tank_type 过滤
func (h *Handler) ListTankLevelLogs(c *gin.Context) {
	var fuel models.FuelType
	if raw := c.Query("tank_type"); raw != "" {
		f, err := models.ParseFuelType(raw)
		if err != nil {
			badRequest(c, "Invalid tank type")
			return
		}
		fuel = f
	}

	page := pagination(c)
	logs, err := h.svc.Levels.Logs(c.Request.Context(), fuel, page)
	if err != nil {
		h.fail(c, err, "list tank level logs")
		return
	}
	paged(c, logs, page)
}

// AdjustTankLevel 手动调整液位
func (h *Handler) AdjustTankLevel(c *gin.Context) {
	var req service.AdjustInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	entry, err := h.svc.Levels.Adjust(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "adjust tank level")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": entry})
}
