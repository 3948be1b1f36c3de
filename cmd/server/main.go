package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Numzn/station-main/internal/api/handlers"
	"github.com/Numzn/station-main/internal/config"
	"github.com/Numzn/station-main/internal/repository"
	"github.com/Numzn/station-main/internal/service"
	"github.com/Numzn/station-main/pkg/ws"
)

func main() {
	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	ledgerCfg, err := cfg.Ledger()
	if err != nil {
		fmt.Printf("Invalid ledger config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger := initLogger(cfg.Debug)
	defer logger.Sync()

	logger.Info("Starting station service", zap.String("port", cfg.ServerPort))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 连接数据库
	db, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect database", zap.Error(err))
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}
	logger.Info("Database migrated successfully")

	// 创建 Repository
	readingRepo := repository.NewReadingRepository(db)
	refillRepo := repository.NewRefillRepository(db)
	gensetRepo := repository.NewGensetRepository(db)
	levelRepo := repository.NewTankLevelRepository(db)
	settingsRepo := repository.NewSettingsRepository(db)
	userRepo := repository.NewUserRepository(db)
	purgeRepo := repository.NewPurgeRepository(db)

	// 创建 WebSocket Hub
	wsHub := ws.NewHub(logger)

	// 创建服务
	readingSvc := service.NewReadingService(logger, ledgerCfg, cfg.PumpsPerTank, readingRepo, levelRepo, wsHub)
	if err := readingSvc.Load(ctx); err != nil {
		logger.Fatal("Failed to load reading draft", zap.Error(err))
	}
	refillSvc := service.NewRefillService(logger, ledgerCfg, refillRepo, levelRepo, wsHub)
	gensetSvc := service.NewGensetService(logger, ledgerCfg, gensetRepo, wsHub)
	levelSvc := service.NewTankLevelService(logger, levelRepo, wsHub)
	settingsSvc := service.NewSettingsService(logger, settingsRepo, userRepo, wsHub)
	services := handlers.Services{
		Readings:  readingSvc,
		Refills:   refillSvc,
		Genset:    gensetSvc,
		Levels:    levelSvc,
		Settings:  settingsSvc,
		Dashboard: service.NewDashboardService(readingRepo, levelRepo, settingsRepo, ledgerCfg.OperationalCapacity),
		Purge:     service.NewPurgeService(logger, purgeRepo, readingSvc, wsHub),
		Reports:   service.NewReportService(readingRepo, refillRepo),
	}

	registerSnapshots(wsHub, services)
	go wsHub.Run(ctx)

	// 设置 Gin 模式
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	handler := handlers.NewHandler(logger, services, db, wsHub, cfg.AllowedOrigins)
	handler.RegisterRoutes(router)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{"Content-Disposition"},
	})

	server := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: corsHandler.Handler(router),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Server started", zap.String("addr", server.Addr))

	// 等待退出信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	if n := len(refillSvc.Sessions()); n > 0 {
		logger.Warn("Discarding unsaved refill sessions", zap.Int("sessions", n))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}
	cancel()

	logger.Info("Server exited")
}

// registerSnapshots 订阅后推送各主题的当前数据
func registerSnapshots(hub *ws.Hub, svc handlers.Services) {
	hub.SetSnapshotProvider(ws.TopicTankLevels, func(ctx context.Context) (interface{}, error) {
		return svc.Levels.Current(ctx)
	})
	hub.SetSnapshotProvider(ws.TopicReadings, func(ctx context.Context) (interface{}, error) {
		return svc.Readings.List(ctx, nil, nil, service.Page{PerPage: 10})
	})
	hub.SetSnapshotProvider(ws.TopicReadingsDraft, func(ctx context.Context) (interface{}, error) {
		return svc.Readings.Draft(), nil
	})
	hub.SetSnapshotProvider(ws.TopicFuelPrices, func(ctx context.Context) (interface{}, error) {
		return svc.Settings.FuelPrices(ctx)
	})
	hub.SetSnapshotProvider(ws.TopicRefills, func(ctx context.Context) (interface{}, error) {
		return svc.Refills.Recent(ctx, service.Page{})
	})
	hub.SetSnapshotProvider(ws.TopicGenset, func(ctx context.Context) (interface{}, error) {
		return svc.Genset.Summary(ctx)
	})
}

// initLogger 初始化日志
func initLogger(debug bool) *zap.Logger {
	var config zap.Config
	if debug {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		config = zap.NewProductionConfig()
	}

	logger, _ := config.Build()
	return logger
}
