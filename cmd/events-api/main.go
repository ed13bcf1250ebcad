package main

import (
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/events-api/internal/handler"
	"github.com/noah-isme/events-api/internal/middleware"
	"github.com/noah-isme/events-api/internal/repository"
	"github.com/noah-isme/events-api/internal/service"
	"github.com/noah-isme/events-api/pkg/cache"
	"github.com/noah-isme/events-api/pkg/config"
	"github.com/noah-isme/events-api/pkg/database"
	appErrors "github.com/noah-isme/events-api/pkg/errors"
	"github.com/noah-isme/events-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/events-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/events-api/pkg/middleware/requestid"
	"github.com/noah-isme/events-api/pkg/response"
	"github.com/noah-isme/events-api/pkg/storage"
)

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

	if err := database.Migrate(cfg.Database, "db/migrations"); err != nil {
		logr.Sugar().Fatalw("migrations failed", "error", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("database connection failed", "error", err)
	}
	defer db.Close() //nolint:errcheck

	var cacheRepo service.CacheRepository
	cacheEnabled := cfg.Cache.Enabled
	if cacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, cache disabled", "error", err)
			cacheEnabled = false
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo = repository.NewCacheRepository(redisClient)
		}
	}

	uploadStore, err := storage.NewLocalStorage(cfg.Upload.Dir)
	if err != nil {
		logr.Sugar().Fatalw("upload storage init failed", "error", err)
	}

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, cacheEnabled)

	eventRepo := repository.NewEventRepository(db)
	eventSvc := service.NewEventService(eventRepo, uploadStore, cacheSvc, logr, service.EventServiceConfig{
		MaxFileSize:  cfg.Upload.MaxFileSizeBytes,
		AllowedMIMEs: cfg.Upload.AllowedMIMEs,
	})

	eventHandler := handler.NewEventHandler(eventSvc, cfg.Upload.MaxFileSizeBytes)
	healthHandler := handler.NewHealthHandler()
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = 8 << 20
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	api := r.Group(cfg.APIPrefix)
	api.GET("/events", eventHandler.GetEvents)
	api.POST("/events", eventHandler.CreateEvent)
	api.PUT("/events/:id", eventHandler.UpdateEvent)
	api.DELETE("/events/:id", eventHandler.DeleteEvent)

	r.GET("/health", healthHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	r.Static("/uploads", cfg.Upload.Dir)

	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
