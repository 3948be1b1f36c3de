package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type clearDataRequest struct {
	Confirm bool `json:"confirm"`
}

// GetDashboard 仪表盘
func (h *Handler) GetDashboard(c *gin.Context) {
	stats, err := h.svc.Dashboard.Stats(c.Request.Context())
	if err != nil {
		h.fail(c, err, "load dashboard")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// ClearData 清除业务数据，需要 {"confirm": true}
func (h *Handler) ClearData(c *gin.Context) {
	var req clearDataRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
	}
	result, err := h.svc.Purge.Purge(c.Request.Context(), req.Confirm)
	if err != nil {
		h.fail(c, err, "clear data")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ExportReport 导出 Excel，默认最近 30 天
func (h *Handler) ExportReport(c *gin.Context) {
	to := time.Now()
	from := to.AddDate(0, 0, -30)
	if raw := c.Query("from"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			badRequest(c, "Invalid from date")
			return
		}
		from = d
	}
	if raw := c.Query("to"); raw != "" {
		d, err := parseDate(raw)
		if err != nil {
			badRequest(c, "Invalid to date")
			return
		}
		to = d
	}

	data, err := h.svc.Reports.ExportXLSX(c.Request.Context(), from, to)
	if err != nil {
		h.fail(c, err, "export report")
		return
	}

	filename := fmt.Sprintf("station-report-%s-%s.xlsx", from.Format("20060102"), to.Format("20060102"))
	h.logger.Info("Report exported", zap.String("file", filename), zap.Int("bytes", len(data)))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}
