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

	_ "github.com/NANDINI-BANIK/student-portfolio-hub/api/swagger"
	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/handler"
	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/middleware"
	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/models"
	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/repository"
	"github.com/NANDINI-BANIK/student-portfolio-hub/internal/service"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/cache"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/config"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/database"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/export"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/jobs"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/logger"
	corsmiddleware "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/middleware/cors"
	reqidmiddleware "github.com/NANDINI-BANIK/student-portfolio-hub/pkg/middleware/requestid"
	"github.com/NANDINI-BANIK/student-portfolio-hub/pkg/storage"
)

// @title Student Portfolio Hub API
// @version 1.0.0
// @description Achievement review workflow and talent discovery
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
		logr.Sugar().Warnw("redis unavailable, facet caching disabled", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	validate := validator.New()

	achievementRepo := repository.NewAchievementRepository(db)
	profileRepo := repository.NewProfileRepository(db)
	savedRepo := repository.NewSavedProfileRepository(db)
	userRepo := repository.NewUserRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsSvc := service.NewMetricsService()
	facetSvc := service.NewFacetService(achievementRepo, profileRepo, cacheRepo, cfg.Facets.CacheTTL, logr)
	notificationSvc := service.NewNotificationService(notificationRepo, profileRepo, jobs.QueueConfig{
		Workers:    cfg.Notify.Workers,
		MaxRetries: cfg.Notify.MaxRetries,
		RetryDelay: cfg.Notify.RetryDelay,
		Logger:     logr,
	}, logr)
	notificationSvc.Start(ctx)
	defer notificationSvc.Stop()

	authSvc := service.NewAuthService(userRepo, profileRepo, validate, logr, service.AuthConfig{
		Secret:     cfg.JWT.Secret,
		Expiration: cfg.JWT.Expiration,
	})
	achievementSvc := service.NewAchievementService(achievementRepo, profileRepo, facetSvc, validate, cfg.Uploads, logr)
	reviewSvc := service.NewReviewService(achievementRepo, notificationSvc, facetSvc, logr, service.WithDecisionMetrics(metricsSvc))
	searchSvc := service.NewSearchService(profileRepo, cfg.Search, metricsSvc, logr)
	profileSvc := service.NewProfileService(profileRepo, savedRepo, achievementRepo, validate, logr)

	authHandler := handler.NewAuthHandler(authSvc)
	achievementHandler := handler.NewAchievementHandler(achievementSvc, reviewSvc)
	reviewHandler := handler.NewReviewHandler(reviewSvc)
	talentHandler := handler.NewTalentHandler(searchSvc, facetSvc, profileSvc, cfg.Search)
	profileHandler := handler.NewProfileHandler(profileSvc)
	notificationHandler := handler.NewNotificationHandler(notificationSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	authed := api.Group("")
	authed.Use(middleware.JWT(authSvc))

	achievements := authed.Group("/achievements")
	achievements.GET("/:id", achievementHandler.Get)
	submitters := achievements.Group("")
	submitters.Use(middleware.RBAC(models.RoleStudent, models.RoleAdmin))
	submitters.POST("", achievementHandler.Submit)
	submitters.GET("", achievementHandler.ListMine)
	submitters.POST("/:id/resubmit", achievementHandler.Resubmit)
	submitters.DELETE("/:id", achievementHandler.Delete)

	reviews := authed.Group("/reviews")
	reviews.Use(middleware.RBAC(models.RoleFaculty, models.RoleAdmin))
	reviews.GET("/queue", reviewHandler.Queue)
	reviews.POST("/:id/decision", reviewHandler.Decide)
	reviews.PUT("/:id/priority", reviewHandler.SetPriority)

	talent := authed.Group("/talent")
	talent.GET("/search", middleware.RBAC(models.RoleEmployer, models.RoleFaculty, models.RoleAdmin), talentHandler.Search)
	talent.GET("/facets/:attribute", talentHandler.Facets)
	employers := talent.Group("")
	employers.Use(middleware.RBAC(models.RoleEmployer, models.RoleAdmin))
	employers.GET("/saved", talentHandler.ListSaved)
	employers.GET("/:id", talentHandler.Get)
	employers.POST("/:id/view", talentHandler.RecordView)
	employers.POST("/:id/save", talentHandler.ToggleSave)

	profiles := authed.Group("/profiles")
	profiles.Use(middleware.RBAC(models.RoleStudent, models.RoleAdmin))
	profiles.GET("/me", profileHandler.GetMine)
	profiles.PUT("/me", profileHandler.UpdateMine)

	if cfg.Exports.Enabled {
		archive, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", err)
		}
		exportSvc := service.NewExportService(profileRepo, achievementRepo, export.NewCSVExporter(), export.NewPDFExporter(), archive, logr)
		exportHandler := handler.NewExportHandler(exportSvc, achievementSvc)
		exports := authed.Group("/exports")
		exports.Use(middleware.RBAC(models.RoleStudent, models.RoleAdmin))
		exports.GET("/portfolio", exportHandler.Portfolio)
	}

	notifications := authed.Group("/notifications")
	notifications.GET("", notificationHandler.ListMine)
	notifications.POST("/:id/read", notificationHandler.MarkRead)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
