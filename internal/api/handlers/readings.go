package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Numzn/station-main/internal/models"
)

type valueRequest struct {
	Value string `json:"value"`
}

type saveReadingRequest struct {
	Operator string `json:"operator"`
	Date     string `json:"date"` // YYYY-MM-DD，为空使用今天
}

// GetDraft 获取当前草稿
func (h *Handler) GetDraft(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.svc.Readings.Draft()})
}

// SetPumpClosing 录入加油机收班读数
// PUT /api/readings/draft/pumps/:fuel/:index  index 从 0 开始
func (h *Handler) SetPumpClosing(c *gin.Context) {
	fuel, err := models.ParseFuelType(c.Param("fuel"))
	if err != nil {
		badRequest(c, "Invalid fuel type")
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		badRequest(c, "Invalid pump index")
		return
	}
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}

	draft, err := h.svc.Readings.SetPumpClosing(fuel, index, req.Value)
	if err != nil {
		h.fail(c, err, "set pump closing")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": draft})
}

// SetDipReading 录入量油尺读数
func (h *Handler) SetDipReading(c *gin.Context) {
	fuel, err := models.ParseFuelType(c.Param("fuel"))
	if err != nil {
		badRequest(c, "Invalid fuel type")
		return
	}
	var req valueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.svc.Readings.SetDip(fuel, req.Value)})
}

// SaveReading 校验并保存草稿
func (h *Handler) SaveReading(c *gin.Context) {
	var req saveReadingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
	}
	var date *time.Time
	if req.Date != "" {
		d, err := parseDate(req.Date)
		if err != nil {
			badRequest(c, "Invalid date, expected YYYY-MM-DD")
			return
		}
		date = &d
	}

	result, err := h.svc.Readings.Save(c.Request.Context(), strings.TrimSpace(req.Operator), date)
	if err != nil {
		h.fail(c, err, "save reading")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// PreviewReading 无状态计算
func (h *Handler) PreviewReading(c *gin.Context) {
	var req models.Reading
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": h.svc.Readings.Preview(&req)})
}

// ListReadings 读数历史，可按 from / to 过滤
func (h *Handler) ListReadings(c *gin.Context) {
	from, ok := optionalDate(c, "from")
	if !ok {
		badRequest(c, "Invalid from date")
		return
	}
	to, ok := optionalDate(c, "to")
	if !ok {
		badRequest(c, "Invalid to date")
		return
	}

	page := pagination(c)
	readings, err := h.svc.Readings.List(c.Request.Context(), from, to, page)
	if err != nil {
		h.fail(c, err, "list readings")
		return
	}

	total, _ := h.svc.Readings.Count(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{
		"data": readings,
		"pagination": gin.H{
			"page":     page.Page,
			"per_page": page.Limit(),
			"total":    total,
		},
	})
}

// GetLatestReading 最近保存的读数
func (h *Handler) GetLatestReading(c *gin.Context) {
	reading, err := h.svc.Readings.Latest(c.Request.Context())
	if err != nil {
		h.fail(c, err, "get latest reading")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reading})
}

// GetReading 某天的读数
func (h *Handler) GetReading(c *gin.Context) {
	date, err := parseDate(c.Param("date"))
	if err != nil {
		badRequest(c, "Invalid date, expected YYYY-MM-DD")
		return
	}
	reading, err := h.svc.Readings.GetByDate(c.Request.Context(), date)
	if err != nil {
		h.fail(c, err, "get reading")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": reading})
}
