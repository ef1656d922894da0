package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/announcement-api/api/swagger"
	"github.com/noah-isme/announcement-api/internal/handler"
	"github.com/noah-isme/announcement-api/internal/middleware"
	"github.com/noah-isme/announcement-api/internal/repository"
	"github.com/noah-isme/announcement-api/internal/service"
	"github.com/noah-isme/announcement-api/pkg/cache"
	"github.com/noah-isme/announcement-api/pkg/config"
	"github.com/noah-isme/announcement-api/pkg/database"
	"github.com/noah-isme/announcement-api/pkg/export"
	"github.com/noah-isme/announcement-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/announcement-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/announcement-api/pkg/middleware/requestid"
)

// @title Announcement API
// @version 1.0.0
// @description Announcement dispatch and targeting fan-out service
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		// Keep serving so liveness stays green; dispatch and history answer DEPENDENCY_UNAVAILABLE.
		logr.Error("database unavailable", zap.Error(err))
	} else {
		defer db.Close() //nolint:errcheck
	}

	var redisClient *redis.Client
	if cfg.History.CacheEnabled {
		redisClient, err = cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, history cache disabled", zap.Error(err))
		}
	}

	router := newRouter(cfg, db, redisClient, logr)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if redisClient != nil {
		_ = redisClient.Close()
	}
	logr.Info("server stopped")
}

func newRouter(cfg *config.Config, db *sqlx.DB, redisClient *redis.Client, logr *zap.Logger) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	metrics := service.NewMetricsService()
	cacheRepo := repository.NewCacheRepository(redisClient, logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.History.CacheTTL, logr, cfg.History.CacheEnabled && redisClient != nil)

	// Interfaces stay nil without a database so the service reports the dependency as unavailable.
	var (
		notifications service.NotificationWriter
		records       service.AnnouncementStore
		pinger        handler.Pinger
	)
	if db != nil {
		notifications = repository.NewNotificationRepository(db)
		records = repository.NewAnnouncementRepository(db)
		pinger = db
	}

	announcements := service.NewAnnouncementService(notifications, records, service.AnnouncementConfig{
		DefaultPriority:   cfg.Announcements.Priority,
		DefaultColor:      cfg.Announcements.Color,
		DefaultIcon:       cfg.Announcements.Icon,
		ManualConcurrency: cfg.Dispatch.ManualConcurrency,
	}, cacheSvc, metrics, validator.New(), logr)
	exports := service.NewExportService(announcements, export.NewCSVExporter(), export.NewPDFExporter(), logr)
	tokens := service.NewTokenService(cfg.JWT.Secret)

	announcementHandler := handler.NewAnnouncementHandler(announcements, exports)
	metricsHandler := handler.NewMetricsHandler(metrics, pinger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.ResponseMeta())
	api.Use(middleware.OptionalJWT(tokens))
	{
		api.GET("/announcements/test", announcementHandler.Ping)
		api.POST("/announcements", announcementHandler.Dispatch)
		api.GET("/announcements/history", announcementHandler.History)
		api.GET("/announcements/history/export", announcementHandler.Export)
	}

	return r
}
