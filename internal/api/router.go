package api

import (
	"time"

	"meal-plan-spreadsheet/internal/api/handlers/download"
	"meal-plan-spreadsheet/internal/api/handlers/health"
	"meal-plan-spreadsheet/internal/api/handlers/spreadsheet"
	"meal-plan-spreadsheet/internal/api/middleware"
	"meal-plan-spreadsheet/internal/api/rawhttp"
	"meal-plan-spreadsheet/internal/api/serverless"
	"meal-plan-spreadsheet/internal/core/delivery"
	"meal-plan-spreadsheet/internal/core/service"
	"meal-plan-spreadsheet/internal/core/store"
	"meal-plan-spreadsheet/internal/infrastructure/config"
	"meal-plan-spreadsheet/internal/pkg/common"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// 未設定時的請求超時
const defaultRequestTimeout = 60 * time.Second

// SetupRouter 設置路由
func SetupRouter(cfg *config.Config, artifacts store.ArtifactStore) *gin.Engine {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.NoMethod(middleware.MethodNotAllowed)

	// 註冊基礎中間件
	router.Use(requestid.New())
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS())
	router.Use(middleware.BodySizeLimit(cfg.Export.MaxBodyBytes))
	timeout := cfg.Server.RequestTimeout
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	router.Use(middleware.Timeout(timeout))

	svc := service.NewSpreadsheetService(delivery.NewRegistry(cfg, artifacts))
	healthHandler := health.NewHandler(cfg, artifacts)
	sheetHandler := spreadsheet.NewHandler(svc)
	downloadHandler := download.NewHandler(artifacts)
	rawHandler := gin.WrapH(rawhttp.NewHandler(svc, config.DeliveryStream, cfg.Export.MaxBodyBytes))
	functionHandler := gin.WrapH(serverless.NewHandler(svc, cfg.Export.FunctionDelivery))

	// 健康檢查路由
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", healthHandler.LivenessCheck)

	// 產生端點套用限流與去重
	generate := router.Group("/", generateGuards(cfg)...)
	{
		generate.POST("/api/v1/spreadsheet", sheetHandler.Generate)
		// 相容舊路徑
		generate.POST("/generate-spreadsheet", sheetHandler.Generate)

		// 原生 net/http 與函式平台處理器自行處理 OPTIONS 與 405
		generate.Any("/api/v1/spreadsheet/raw", rawHandler)
		generate.Any("/api/v1/functions/generate-spreadsheet", functionHandler)
	}
	router.OPTIONS("/api/v1/spreadsheet", middleware.Preflight)
	router.OPTIONS("/generate-spreadsheet", middleware.Preflight)

	api := router.Group("/api/v1")
	{
		api.GET("/download/", downloadHandler.Download)
		api.GET("/download/:fileId", downloadHandler.Download)
	}

	common.LogInfo("Router setup completed successfully",
		zap.String("default_delivery", cfg.Export.DefaultDelivery),
		zap.String("store_driver", cfg.Store.Driver),
		zap.Bool("rate_limit", cfg.RateLimit.Enabled),
		zap.Duration("dedup_window", cfg.DedupWindow),
		zap.Duration("timeout", timeout),
		zap.Int64("max_body_size", cfg.Export.MaxBodyBytes),
	)

	return router
}

// generateGuards 依設定組合產生端點的保護中間件
func generateGuards(cfg *config.Config) []gin.HandlerFunc {
	var guards []gin.HandlerFunc
	if cfg.RateLimit.Enabled {
		guards = append(guards, middleware.RateLimit(cfg.RateLimit.Requests, cfg.RateLimit.Window))
	}
	if cfg.DedupWindow > 0 {
		guards = append(guards, middleware.Deduplication(cfg.DedupWindow))
	}
	return guards
}
