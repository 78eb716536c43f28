package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/clotsync/clotsync-api/api/swagger"
	"github.com/clotsync/clotsync-api/internal/handler"
	"github.com/clotsync/clotsync-api/internal/mailer"
	"github.com/clotsync/clotsync-api/internal/middleware"
	"github.com/clotsync/clotsync-api/internal/repository"
	"github.com/clotsync/clotsync-api/internal/service"
	"github.com/clotsync/clotsync-api/pkg/cache"
	"github.com/clotsync/clotsync-api/pkg/config"
	"github.com/clotsync/clotsync-api/pkg/database"
	"github.com/clotsync/clotsync-api/pkg/jobs"
	"github.com/clotsync/clotsync-api/pkg/logger"
	corsmiddleware "github.com/clotsync/clotsync-api/pkg/middleware/cors"
	reqidmiddleware "github.com/clotsync/clotsync-api/pkg/middleware/requestid"
)

// @title ClotSync API
// @version 1.0.0
// @description Blood donation coordination platform
// @BasePath /api/v1
// @schemes http https

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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		redisClient = nil
	}

	// Repositories.
	donorRepo := repository.NewDonorRepository(db)
	hospitalRepo := repository.NewHospitalRepository(db)
	patientRepo := repository.NewPatientRepository(db)
	requestRepo := repository.NewRequestRepository(db)
	acceptanceRepo := repository.NewAcceptanceRepository(db)
	fulfillmentRepo := repository.NewFulfillmentRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	transferRepo := repository.NewTransferRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	// Outbound email runs through a worker queue so request handling never
	// blocks on SES.
	outbound := mailer.New(cfg.Mailer, logr)
	emailQueue := jobs.NewQueue("notification-email", service.NewEmailJobHandler(outbound, logr), jobs.QueueConfig{
		Workers:    cfg.Mailer.WorkerCount,
		BufferSize: cfg.Mailer.QueueBufferSize,
		Logger:     logr,
	})
	emailQueue.Start(ctx)
	defer emailQueue.Stop()

	// Services.
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(hospitalRepo, donorRepo, nil, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
		Issuer:     cfg.JWT.Issuer,
	})
	notificationSvc := service.NewNotificationService(donorRepo, alertRepo, emailQueue, metricsSvc, logr, cfg.Notifications.EmailEnabled)
	locationSvc := service.NewLocationService(cacheRepo, logr, cfg.Geocoding)
	donorSvc := service.NewDonorService(donorRepo, acceptanceRepo, cacheRepo, nil, nil, logr, service.LeaderboardCacheConfig{
		Size:     cfg.Leaderboard.Size,
		CacheTTL: cfg.Leaderboard.CacheTTL,
	})
	hospitalSvc := service.NewHospitalService(hospitalRepo, acceptanceRepo, transferRepo, fulfillmentRepo, nil, logr)
	requestSvc := service.NewRequestService(requestRepo, patientRepo, hospitalRepo, notificationSvc, metricsSvc, nil, logr)
	fulfillmentSvc := service.NewFulfillmentService(acceptanceRepo, fulfillmentRepo, donorRepo, requestRepo, notificationSvc, locationSvc, metricsSvc, nil, logr)
	patientSvc := service.NewPatientService(patientRepo, hospitalRepo, donorRepo, requestRepo, locationSvc, nil, logr)

	// Handlers.
	authHandler := handler.NewAuthHandler(authSvc)
	donorHandler := handler.NewDonorHandler(donorSvc, fulfillmentSvc, notificationSvc)
	hospitalHandler := handler.NewHospitalHandler(hospitalSvc, fulfillmentSvc, donorSvc, notificationSvc)
	requestHandler := handler.NewRequestHandler(requestSvc)
	patientHandler := handler.NewPatientHandler(patientSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	registerRoutes(r.Group(cfg.APIPrefix), authSvc, authHandler, donorHandler, hospitalHandler, requestHandler, patientHandler)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
