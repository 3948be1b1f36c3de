package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Numzn/station-main/internal/service"
)

type createSessionRequest struct {
	Operator string `json:"operator"`
}

// ListRefills 最近的卸油记录
func (h *Handler) ListRefills(c *gin.Context) {
	page := pagination(c)
	if c.Query("per_page") == "" {
		page.PerPage = 10
	}
	refills, err := h.svc.Refills.Recent(c.Request.Context(), page)
	if err != nil {
		h.fail(c, err, "list refills")
		return
	}
	paged(c, refills, page)
}

// GetRefill 卸油记录详情
func (h *Handler) GetRefill(c *gin.Context) {
	refill, err := h.svc.Refills.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "get refill")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": refill})
}

// ListRefillSessions 进行中的卸油会话
func (h *Handler) ListRefillSessions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.svc.Refills.Sessions()})
}

// CreateRefillSession 开始卸油流程
func (h *Handler) CreateRefillSession(c *gin.Context) {
	var req createSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid request")
			return
		}
	}
	c.JSON(http.StatusCreated, gin.H{"data": h.svc.Refills.CreateSession(req.Operator)})
}

// GetRefillSession 会话状态和派生值
func (h *Handler) GetRefillSession(c *gin.Context) {
	session, err := h.svc.Refills.Session(c.Param("id"))
	if err != nil {
		h.fail(c, err, "get refill session")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": session})
}

// DiscardRefillSession 放弃会话
func (h *Handler) DiscardRefillSession(c *gin.Context) {
	if err := h.svc.Refills.Discard(c.Param("id")); err != nil {
		h.fail(c, err, "discard refill session")
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdateRefillPrep 修改准备阶段字段
func (h *Handler) UpdateRefillPrep(c *gin.Context) {
	var req service.PrepInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	session, err := h.svc.Refills.UpdatePrep(c.Param("id"), req)
	if err != nil {
		h.fail(c, err, "update refill")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": session})
}

// UpdateRefillOffload 修改卸油阶段字段
func (h *Handler) UpdateRefillOffload(c *gin.Context) {
	var req service.OffloadInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	session, err := h.svc.Refills.UpdateOffload(c.Param("id"), req)
	if err != nil {
		h.fail(c, err, "update refill")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": session})
}

// UpdateRefillReview 修改复核阶段字段
func (h *Handler) UpdateRefillReview(c *gin.Context) {
	var req service.ReviewInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	session, err := h.svc.Refills.UpdateReview(c.Param("id"), req)
	if err != nil {
		h.fail(c, err, "update refill")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": session})
}

// AdvanceRefill 进入下一步
func (h *Handler) AdvanceRefill(c *gin.Context) {
	session, err := h.svc.Refills.Advance(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "advance refill")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": session})
}

// BackRefill 返回上一步
func (h *Handler) BackRefill(c *gin.Context) {
	session, err := h.svc.Refills.Back(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "go back")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": session})
}

// SaveRefill 保存卸油记录
func (h *Handler) SaveRefill(c *gin.Context) {
	result, err := h.svc.Refills.Save(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err, "save refill")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": result})
}
