package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/phishwise/phishwise-api/api/swagger"
	"github.com/phishwise/phishwise-api/internal/handler"
	"github.com/phishwise/phishwise-api/internal/middleware"
	"github.com/phishwise/phishwise-api/internal/models"
	"github.com/phishwise/phishwise-api/internal/repository"
	"github.com/phishwise/phishwise-api/internal/service"
	"github.com/phishwise/phishwise-api/pkg/cache"
	"github.com/phishwise/phishwise-api/pkg/config"
	"github.com/phishwise/phishwise-api/pkg/database"
	"github.com/phishwise/phishwise-api/pkg/jobs"
	"github.com/phishwise/phishwise-api/pkg/logger"
	"github.com/phishwise/phishwise-api/pkg/mailer"
	corsmiddleware "github.com/phishwise/phishwise-api/pkg/middleware/cors"
	reqidmiddleware "github.com/phishwise/phishwise-api/pkg/middleware/requestid"
)

// @title PhishWise API
// @version 1.0.0
// @description Phishing-awareness training service
// @BasePath /
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

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	validate := validator.New()

	userRepo := repository.NewUserRepository(db)
	schoolRepo := repository.NewSchoolRepository(db)
	simulationRepo := repository.NewSimulationRepository(db)
	campaignRepo := repository.NewCampaignRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             cfg.JWT.Issuer,
	})
	schoolSvc := service.NewSchoolService(schoolRepo, userRepo, logr)
	simulationSvc := service.NewSimulationService(simulationRepo, logr)
	userSvc := service.NewUserService(userRepo, schoolRepo, logr)
	dashboardSvc := service.NewDashboardService(userRepo, schoolRepo, cacheSvc, cfg.Dashboard.CacheTTL, logr)
	exportSvc := service.NewExportService(dashboardSvc, logr)

	campaignSvc := service.NewCampaignService(service.CampaignServiceParams{
		Campaigns:   campaignRepo,
		Simulations: simulationRepo,
		Users:       userRepo,
		Dashboard:   dashboardSvc,
		Mailer:      mailer.New(cfg.Email, logr),
		QueueConfig: jobs.QueueConfig{
			Workers:    cfg.Dispatch.Workers,
			BufferSize: cfg.Dispatch.BufferSize,
			MaxRetries: cfg.Dispatch.MaxRetries,
			RetryDelay: cfg.Dispatch.RetryDelay,
		},
		Validator: validate,
		Logger:    logr,
	})

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	campaignSvc.Start(rootCtx)
	defer campaignSvc.Stop()

	authHandler := handler.NewAuthHandler(authSvc)
	schoolHandler := handler.NewSchoolHandler(schoolSvc)
	simulationHandler := handler.NewSimulationHandler(simulationSvc)
	userHandler := handler.NewUserHandler(userSvc)
	dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
	campaignHandler := handler.NewCampaignHandler(campaignSvc)
	reportHandler := handler.NewReportHandler(exportSvc)
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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", metricsHandler.Prometheus)
	r.GET("/metrics/system", metricsHandler.System)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)

	// Click recording is called from the landing page behind the email
	// link, before the recipient has a session.
	api.POST("/simulations", simulationHandler.RecordClick)

	secured := api.Group("", middleware.JWT(authSvc, userRepo))
	secured.POST("/auth/logout", authHandler.Logout)
	secured.GET("/schools", schoolHandler.Get)
	secured.POST("/schools", schoolHandler.Create)
	secured.POST("/schools/join", schoolHandler.Join)
	secured.GET("/simulations", simulationHandler.List)
	secured.POST("/simulations/:id/complete", simulationHandler.Complete)
	secured.GET("/users", userHandler.Profile)

	managed := secured.Group("", middleware.RequireRoles(models.RoleManager, models.RoleAdmin))
	managed.GET("/dashboard/school", dashboardHandler.SchoolOverview)
	managed.GET("/schools/report", reportHandler.SchoolReport)
	managed.GET("/templates", campaignHandler.ListTemplates)
	managed.POST("/campaigns", campaignHandler.Dispatch)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-rootCtx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
