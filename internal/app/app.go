// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/Corphon/ScriptBreakdown/internal/api"
	"github.com/Corphon/ScriptBreakdown/internal/config"
	apperrors "github.com/Corphon/ScriptBreakdown/internal/errors"
	"github.com/Corphon/ScriptBreakdown/internal/llm"
	"github.com/Corphon/ScriptBreakdown/internal/services"
	"github.com/Corphon/ScriptBreakdown/internal/utils"

	// provider registrations
	_ "github.com/Corphon/ScriptBreakdown/internal/llm/providers/google"
	_ "github.com/Corphon/ScriptBreakdown/internal/llm/providers/openai"
)

const readHeaderTimeout = 10 * time.Second

// App holds the wired services of one server process
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *utils.Metrics
	Generation *services.GenerationService
	Sessions   *services.SessionService
	Export     *services.ExportService
	Router     *gin.Engine
}

// NewGeneration initializes the configured provider and wraps it in a
// generation service. The server and the CLI share it.
func NewGeneration(cfg *config.Config, logger *zap.Logger, metrics *utils.Metrics) (*services.GenerationService, error) {
	provider, err := llm.GetProvider(cfg.LLMProvider, cfg.LLMConfig())
	if err != nil {
		return nil, apperrors.NewConfigError(fmt.Sprintf("failed to initialize provider %q", cfg.LLMProvider), err)
	}

	return services.NewGenerationService(provider, services.GenerationOptions{
		ProviderName: cfg.LLMProvider,
		Model:        cfg.LLMModel,
		Timeout:      cfg.GenerationTimeout,
		Logger:       logger,
		Metrics:      metrics,
	}), nil
}

// New builds every service in dependency order
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if !cfg.DebugMode {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := utils.NewMetrics()

	generation, err := NewGeneration(cfg, logger, metrics)
	if err != nil {
		return nil, err
	}
	status := generation.Status()
	logger.Info("generation service ready",
		zap.String("provider", status.Provider),
		zap.String("model", status.Model),
		zap.Duration("timeout", cfg.GenerationTimeout),
	)

	sessions := services.NewSessionService(generation, cfg.SessionTTL, logger, metrics)
	export := services.NewExportService(nil)

	router, err := api.SetupRouter(api.RouterDeps{
		Logger:              logger,
		Metrics:             metrics,
		Sessions:            sessions,
		Generation:          generation,
		Export:              export,
		SubmitRatePerMinute: cfg.SubmitRatePerMinute,
		TrustedProxies:      cfg.TrustedProxies,
	})
	if err != nil {
		sessions.Close()
		return nil, fmt.Errorf("failed to set up router: %w", err)
	}

	return &App{
		Config:     cfg,
		Logger:     logger,
		Metrics:    metrics,
		Generation: generation,
		Sessions:   sessions,
		Export:     export,
		Router:     router,
	}, nil
}

// Run listens on the configured address until ctx is done
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.Address())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Config.Address(), err)
	}
	return a.Serve(ctx, ln)
}

// Serve handles requests on ln until ctx is done, then shuts down within
// the configured timeout. Open sessions are closed first, which cancels
// in-flight generations and ends state streams.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           a.Router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("server listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down server", zap.Duration("timeout", a.Config.ShutdownTimeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()

		a.Sessions.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		a.Logger.Info("server stopped")
		return nil
	})

	return g.Wait()
}
