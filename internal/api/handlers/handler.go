package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Numzn/station-main/internal/ledger"
	"github.com/Numzn/station-main/internal/service"
	"github.com/Numzn/station-main/pkg/ws"
)

// Pinger 数据库连通性检查
type Pinger interface {
	Ping(ctx context.Context) error
}

// Services 处理器依赖的业务服务
type Services struct {
	Readings  *service.ReadingService
	Refills   *service.RefillService
	Genset    *service.GensetService
	Levels    *service.TankLevelService
	Settings  *service.SettingsService
	Dashboard *service.DashboardService
	Purge     *service.PurgeService
	Reports   *service.ReportService
}

// Handler HTTP 处理器
type Handler struct {
	logger   *zap.Logger
	svc      Services
	db       Pinger
	wsHub    *ws.Hub
	upgrader websocket.Upgrader
}

// NewHandler 创建处理器，allowedOrigins 为空或包含 "*" 时允许所有来源
func NewHandler(logger *zap.Logger, svc Services, db Pinger, wsHub *ws.Hub, allowedOrigins []string) *Handler {
	return &Handler{
		logger: logger,
		svc:    svc,
		db:     db,
		wsHub:  wsHub,
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(allowedOrigins),
		},
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	for _, o := range allowed {
		if o == "*" {
			allowed = nil
			break
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if len(allowed) == 0 || origin == "" {
			return true
		}
		for _, o := range allowed {
			if strings.EqualFold(o, origin) {
				return true
			}
		}
		return false
	}
}

// fail 按错误类型返回: 校验错误 422，记录不存在 404，其余 500
func (h *Handler) fail(c *gin.Context, err error, action string) {
	if ve, ok := ledger.AsValidation(err); ok {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": ve.Error(), "issues": ve.Issues})
		return
	}
	if errors.Is(err, ledger.ErrUnknownPump) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pump not found"})
		return
	}
	if errors.Is(err, service.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Refill session not found"})
		return
	}
	if errors.Is(err, service.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}

	h.logger.Error("Failed to "+action, zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{
		"error": "Failed to " + action,
		"issues": []ledger.Issue{{
			Kind:   ledger.KindBackendFailure,
			Detail: "The change was not saved, please try again",
		}},
	})
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}

// pagination 解析 page / per_page 查询参数
func pagination(c *gin.Context) service.Page {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))
	if page < 1 {
		page = 1
	}
	return service.Page{Page: page, PerPage: perPage}
}

func paged(c *gin.Context, data interface{}, page service.Page) {
	c.JSON(http.StatusOK, gin.H{
		"data": data,
		"pagination": gin.H{
			"page":     page.Page,
			"per_page": page.Limit(),
		},
	})
}

// parseDate 解析 YYYY-MM-DD
func parseDate(raw string) (time.Time, error) {
	return time.Parse("2006-01-02", raw)
}

// optionalDate 解析可选日期查询参数
func optionalDate(c *gin.Context, key string) (*time.Time, bool) {
	raw := c.Query(key)
	if raw == "" {
		return nil, true
	}
	t, err := parseDate(raw)
	if err != nil {
		return nil, false
	}
	return &t, true
}

// HandleWebSocket WebSocket 处理，?topics=a,b 为初始订阅
func (h *Handler) HandleWebSocket(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Error("Failed to upgrade websocket", zap.Error(err))
		return
	}

	var topics []string
	if raw := c.Query("topics"); raw != "" {
		topics = strings.Split(raw, ",")
	}

	client := ws.NewClient(h.wsHub, conn, topics...)
	client.Register()

	go client.ReadPump()
	go client.WritePump()
}

// HealthCheck 健康检查
func (h *Handler) HealthCheck(c *gin.Context) {
	status := http.StatusOK
	database := "ok"
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(ctx); err != nil {
			h.logger.Warn("Database ping failed", zap.Error(err))
			status = http.StatusServiceUnavailable
			database = "unavailable"
		}
	}

	c.JSON(status, gin.H{
		"status":     http.StatusText(status),
		"database":   database,
		"ws_clients": h.wsHub.ClientCount(),
	})
}
