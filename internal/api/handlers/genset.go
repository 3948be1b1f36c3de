package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Numzn/station-main/internal/ledger"
)

// RecordGensetReading 记录发电机加油
func (h *Handler) RecordGensetReading(c *gin.Context) {
	var req ledger.GensetInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	reading, err := h.svc.Genset.Record(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "record genset reading")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": reading})
}

// ListGensetReadings 最近的发电机加油记录
func (h *Handler) ListGensetReadings(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	readings, err := h.svc.Genset.Recent(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err, "list genset readings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": readings})
}

// GetGensetSummary 上次/下次加油和本月加油量
func (h *Handler) GetGensetSummary(c *gin.Context) {
	summary, err := h.svc.Genset.Summary(c.Request.Context())
	if err != nil {
		h.fail(c, err, "get genset summary")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": summary})
}
