package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Numzn/station-main/internal/service"
)

type profileRequest struct {
	Name string `json:"name"`
}

// GetFuelPrices 获取油价
func (h *Handler) GetFuelPrices(c *gin.Context) {
	prices, err := h.svc.Settings.FuelPrices(c.Request.Context())
	if err != nil {
		h.fail(c, err, "get fuel prices")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": prices})
}

// UpdateFuelPrices 修改油价
func (h *Handler) UpdateFuelPrices(c *gin.Context) {
	var req service.PricesInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	prices, err := h.svc.Settings.UpdateFuelPrices(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "update fuel prices")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": prices})
}

// GetProfile 获取站点信息
func (h *Handler) GetProfile(c *gin.Context) {
	profile, err := h.svc.Settings.Profile(c.Request.Context())
	if err != nil {
		h.fail(c, err, "get system profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile})
}

// UpdateProfile 修改站点名称
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	profile, err := h.svc.Settings.UpdateProfile(c.Request.Context(), req.Name)
	if err != nil {
		h.fail(c, err, "update system profile")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": profile})
}

// ListUsers 用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	users, err := h.svc.Settings.Users(c.Request.Context())
	if err != nil {
		h.fail(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": users})
}

// CreateUser 创建用户
func (h *Handler) CreateUser(c *gin.Context) {
	var req service.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	user, err := h.svc.Settings.CreateUser(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err, "create user")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": user})
}

// UpdateUser 修改用户
func (h *Handler) UpdateUser(c *gin.Context) {
	var req service.UserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request")
		return
	}
	user, err := h.svc.Settings.UpdateUser(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.fail(c, err, "update user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": user})
}

// DeleteUser 删除用户
func (h *Handler) DeleteUser(c *gin.Context) {
	if err := h.svc.Settings.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		h.fail(c, err, "delete user")
		return
	}
	c.Status(http.StatusNoContent)
}
