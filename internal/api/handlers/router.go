package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes 注册路由
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		// 日读数
		api.GET("/readings/draft", h.GetDraft)
		api.PUT("/readings/draft/pumps/:fuel/:index", h.SetPumpClosing)
		api.PUT("/readings/draft/tanks/:fuel", h.SetDipReading)
		api.POST("/readings/draft/save", h.SaveReading)
		api.POST("/readings/preview", h.PreviewReading)
		api.GET("/readings", h.ListReadings)
		api.GET("/readings/latest", h.GetLatestReading)
		api.GET("/readings/:date", h.GetReading)

		// 卸油
		api.GET("/refills", h.ListRefills)
		api.GET("/refills/:id", h.GetRefill)
		api.GET("/refills/sessions", h.ListRefillSessions)
		api.POST("/refills/sessions", h.CreateRefillSession)
		api.GET("/refills/sessions/:id", h.GetRefillSession)
		api.DELETE("/refills/sessions/:id", h.DiscardRefillSession)
		api.PUT("/refills/sessions/:id/prep", h.UpdateRefillPrep)
		api.PUT("/refills/sessions/:id/offload", h.UpdateRefillOffload)
		api.PUT("/refills/sessions/:id/review", h.UpdateRefillReview)
		api.POST("/refills/sessions/:id/advance", h.AdvanceRefill)
		api.POST("/refills/sessions/:id/back", h.BackRefill)
		api.POST("/refills/sessions/:id/save", h.SaveRefill)

		// 发电机
		api.GET("/genset/readings", h.ListGensetReadings)
		api.POST("/genset/readings", h.RecordGensetReading)
		api.GET("/genset/summary", h.GetGensetSummary)

		// 液位
		api.GET("/tank-levels", h.GetTankLevels)
		api.GET("/tank-levels/logs", h.ListTankLevelLogs)
		api.POST("/tank-levels/adjust", h.AdjustTankLevel)

		// 设置
		api.GET("/settings/fuel-prices", h.GetFuelPrices)
		api.PUT("/settings/fuel-prices", h.UpdateFuelPrices)
		api.GET("/settings/profile", h.GetProfile)
		api.PUT("/settings/profile", h.UpdateProfile)

		// 用户
		api.GET("/users", h.ListUsers)
		api.POST("/users", h.CreateUser)
		api.PUT("/users/:id", h.UpdateUser)
		api.DELETE("/users/:id", h.DeleteUser)

		api.GET("/dashboard", h.GetDashboard)
		api.DELETE("/data", h.ClearData)
		api.GET("/reports/export.xlsx", h.ExportReport)
	}

	// WebSocket
	r.GET("/ws", h.HandleWebSocket)

	// 健康检查
	r.GET("/health", h.HealthCheck)
}
