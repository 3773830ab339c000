// internal/api/router.go
package api

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Corphon/ScriptBreakdown/internal/services"
	"github.com/Corphon/ScriptBreakdown/internal/utils"
	"github.com/Corphon/ScriptBreakdown/web"
)

// RouterDeps 路由依赖的服务
type RouterDeps struct {
	Logger              *zap.Logger
	Metrics             *utils.Metrics
	Sessions            *services.SessionService
	Generation          *services.GenerationService
	Export              *services.ExportService
	SubmitRatePerMinute int
	// TrustedProxies 允许设置 X-Forwarded-For 的代理，为空则全部不信任
	TrustedProxies      []string
}

// SetupRouter 配置HTTP路由
func SetupRouter(deps RouterDeps) (*gin.Engine, error) {
	if deps.Sessions == nil || deps.Generation == nil || deps.Export == nil {
		return nil, fmt.Errorf("router requires session, generation and export services")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	handler := NewHandler(deps.Sessions, deps.Generation, deps.Export, logger)
	limiter := NewRateLimiter(deps.SubmitRatePerMinute)

	r := gin.New()
	// 客户端IP用于限流，默认不信任任何代理
	if err := r.SetTrustedProxies(deps.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}
	r.Use(
		RequestIDMiddleware(),
		RecoveryMiddleware(logger, handler.Response),
		ZapLoggerMiddleware(logger.Named("http")),
		MetricsMiddleware(deps.Metrics),
		corsMiddleware(),
	)

	// 静态文件与模板
	tmpl, err := template.ParseFS(web.Templates, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	r.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(web.Static, "static")
	if err != nil {
		return nil, fmt.Errorf("failed to open static assets: %w", err)
	}
	r.StaticFS("/static", http.FS(static))

	// ===============================
	// 页面路由
	// ===============================
	r.GET("/", handler.IndexPage)

	// WebSocket 支持
	r.GET("/ws/state", handler.StateWebSocket)

	// 运维
	r.GET("/health", handler.Health)
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	// ===============================
	// API路由组
	// ===============================
	api := r.Group("/api")
	{
		api.GET("/state", handler.GetState)
		api.POST("/cancel", handler.CancelBreakdown)
		api.POST("/reset", handler.ResetSession)
		api.GET("/schema", handler.GetSchema)
		api.GET("/status", handler.GetStatus)

		breakdownGroup := api.Group("/breakdown")
		{
			breakdownGroup.POST("", limiter.Middleware(handler.Response), handler.SubmitBreakdown)
			breakdownGroup.GET("/copy", handler.CopyBreakdown)
			breakdownGroup.GET("/download", handler.DownloadBreakdown)
		}
	}

	r.NoRoute(handler.NotFound)

	return r, nil
}
