package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/scolli03/rwmarket/config"
	_ "github.com/scolli03/rwmarket/docs"
	"github.com/scolli03/rwmarket/internal/app"
	"github.com/scolli03/rwmarket/internal/handlers"
	"github.com/scolli03/rwmarket/internal/middleware"
	"github.com/scolli03/rwmarket/internal/sweepers"
	"github.com/scolli03/rwmarket/internal/telemetry"
)

// @title RW Market API
// @version 1.0
// @description Ranked war market lister and reward cache buy quotes for the Torn overlay.
// @BasePath /
func main() {
	cfg, err := config.Load(os.Getenv("RWMARKET_CONFIG"))
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := app.NewLogger(cfg.Logging, "rwmarket")

	logger.Info().Msg("Starting rwmarket server")

	if err := cfg.RequireAPIKey(); err != nil {
		logger.Fatal().Err(err).Msg("Torn API key required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}

	application, err := app.New(ctx, cfg, app.Options{})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to wire application")
	}
	defer application.Close()

	logger.Info().
		Str("database", cfg.Database.Driver).
		Str("price_cache", application.PriceCache.Name()).
		Msg("Stores ready")

	sweeper := sweepers.NewExportSweeper(application.Storage, logger, cfg.Storage.SweepInterval, cfg.Storage.Retention)
	go sweeper.Start(ctx)

	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	limiter := middleware.NewIPRateLimiter(middleware.RateLimiterConfig{
		RequestsPerSecond: cfg.Server.RequestsPerSec,
		BurstSize:         cfg.Server.Burst,
		IdleTTL:           10 * time.Minute,
	})
	go limiter.RunCleanup(ctx, 5*time.Minute)

	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.RequestLogger(logger))

	api := handlers.NewAPI(handlers.Deps{
		Market:  application.Market,
		War:     application.War,
		Prefs:   application.Prefs,
		Storage: application.Storage,
		Defaults: handlers.Defaults{
			MarketDiscount: application.MarketDiscount(),
			CachePolicy:    application.CachePolicy(),
		},
		SessionTTL: cfg.Server.SessionTTL,
		PriceCache: application.PriceCache.Name(),
	})
	api.Register(router, middleware.APIKeyAuth(cfg.Server.APIKey), middleware.RateLimitMiddleware(limiter))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// the overlay runs on torn.com and calls us cross-origin
	handler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.APIKeyHeader, middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader, "X-Export-Key", "Content-Disposition"},
		MaxAge:         300,
	})(router)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}
	if err := shutdownTelemetry(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("Telemetry shutdown failed")
	}

	logger.Info().Msg("Server exited")
}
