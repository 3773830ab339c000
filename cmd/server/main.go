// cmd/server/main.go
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Corphon/ScriptBreakdown/internal/app"
	"github.com/Corphon/ScriptBreakdown/internal/config"
	"github.com/Corphon/ScriptBreakdown/internal/utils"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	// 2. 日志
	logger, err := utils.NewLogger(cfg.LogConfig())
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 3. 初始化服务与路由
	application, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}
	logger.Info("starting script breakdown server",
		zap.String("addr", cfg.Address()),
		zap.Bool("debug", cfg.DebugMode),
	)

	// 4. 运行直到收到信号
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		logger.Error("server exited with error", zap.Error(err))
		stop()
		_ = logger.Sync()
		os.Exit(1)
	}
}
