package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/axoraweb/seo-backend/internal/analyzer"
	"github.com/axoraweb/seo-backend/internal/api"
	"github.com/axoraweb/seo-backend/internal/config"
	"github.com/axoraweb/seo-backend/internal/jobs"
	"github.com/axoraweb/seo-backend/internal/logging"
	"github.com/axoraweb/seo-backend/internal/optimizer"
	"github.com/axoraweb/seo-backend/internal/rewrite"
	"github.com/axoraweb/seo-backend/internal/storage"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Version info (set during build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to "+config.FileName)
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(os.Stdout, cfg.Advanced.LogLevel, cfg.Advanced.LogFormat)
	slog.SetDefault(logger)

	// Ensure all data directories exist
	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("failed to create directories", "error", err)
		os.Exit(1)
	}

	defaults, err := rewrite.LoadDefaults(cfg.Storage.DefaultsFile)
	if err != nil {
		logger.Warn("using built-in defaults", "file", cfg.Storage.DefaultsFile, "error", err)
	}

	workspace, err := storage.NewWorkspace(cfg.Storage.TempDirectory, cfg.Processing.MaxEntrySize)
	if err != nil {
		logger.Error("failed to initialize workspace", "error", err)
		os.Exit(1)
	}

	pipeline := optimizer.NewPipeline(optimizer.Options{
		MaxEntrySize:   cfg.Processing.MaxEntrySize,
		Defaults:       defaults,
		DetectLanguage: cfg.Processing.DetectLanguage,
		InternalLinks:  cfg.Processing.InternalLinks,
		Logger:         logger,
	})
	jobMgr := jobs.NewManager(jobs.Options{
		Workspace: workspace,
		Analyzer:  analyzer.New(analyzer.Options{Logger: logger}),
		Settings:  pipeline.Settings,
		Logger:    logger,
	})

	// Purge finished jobs and abandoned extraction directories
	retention := time.Duration(cfg.Processing.JobRetentionMinutes) * time.Minute
	go func() {
		ticker := time.NewTicker(time.Duration(cfg.Processing.CleanupIntervalMinutes) * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			jobsRemoved := jobMgr.CleanupOldJobs(retention)
			dirsRemoved := workspace.CleanupOlderThan(retention)
			if jobsRemoved > 0 || dirsRemoved > 0 {
				logger.Info("cleanup", "jobs", jobsRemoved, "directories", dirsRemoved)
			}
		}
	}()

	deps := &api.Dependencies{
		Optimizer:    pipeline,
		Jobs:         jobMgr,
		Version:      Version,
		Logger:       logger,
		ContactRate:  float64(cfg.Security.ContactRatePerMinute) / 60,
		ContactBurst: cfg.Security.ContactBurst,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	api.SetupMiddleware(e, logger)

	// Configure middleware
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: func() string { return uuid.New().String() },
	}))
	e.Use(logging.RequestLogger(logger, func(c echo.Context) bool {
		if !cfg.Advanced.EnableRequestLogging {
			return true
		}
		path := c.Request().URL.Path
		return path == "/api/health" || strings.HasPrefix(path, "/api/ws/")
	}))

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("panic recovered", "path", c.Path(), "error", err, "stack", string(stack))
			return err
		},
	}))

	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: time.Duration(cfg.Server.RequestTimeout) * time.Second,
		Skipper: func(c echo.Context) bool {
			path := c.Request().URL.Path
			return strings.HasPrefix(path, "/api/ws/") ||
				strings.HasSuffix(path, "/jobs")
		},
		ErrorMessage: "Request timeout - processing took too long",
	}))

	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Request().URL.Path, "/api/ws/")
		},
	}))

	// Body limit middleware
	e.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// CORS configuration
	if cfg.Server.EnableCORS {
		e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
			AllowOrigins: cfg.AllowOrigins(),
			AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		}))
	}

	api.RegisterRoutes(e, api.NewHandlers(deps), deps)

	s := &http.Server{
		Addr:         cfg.GetServerAddr(),
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	configFile := cfg.File
	if configFile == "" {
		configFile = "(defaults)"
	}
	fmt.Printf("\n")
	fmt.Printf("╔═══════════════════════════════════════════════════════════╗\n")
	fmt.Printf("║           SEO AutoPilot Backend                           ║\n")
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Version:    %-45s║\n", Version)
	fmt.Printf("║  Build Time: %-45s║\n", BuildTime)
	fmt.Printf("╠═══════════════════════════════════════════════════════════╣\n")
	fmt.Printf("║  Config:    %-46s║\n", configFile)
	fmt.Printf("║  Listen:    http://%-38s║\n", cfg.GetServerAddr())
	fmt.Printf("║  Temp Dir:  %-46s║\n", cfg.Storage.TempDirectory)
	fmt.Printf("╚═══════════════════════════════════════════════════════════╝\n")
	fmt.Printf("\n")

	go func() {
		if err := e.StartServer(s); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
