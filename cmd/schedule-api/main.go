package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/campusops/schedule-api/api/swagger"
	"github.com/campusops/schedule-api/internal/handler"
	internalmiddleware "github.com/campusops/schedule-api/internal/middleware"
	"github.com/campusops/schedule-api/internal/models"
	"github.com/campusops/schedule-api/internal/repository"
	"github.com/campusops/schedule-api/internal/service"
	rediscache "github.com/campusops/schedule-api/pkg/cache"
	"github.com/campusops/schedule-api/pkg/config"
	"github.com/campusops/schedule-api/pkg/database"
	"github.com/campusops/schedule-api/pkg/jobs"
	"github.com/campusops/schedule-api/pkg/logger"
	corsmiddleware "github.com/campusops/schedule-api/pkg/middleware/cors"
	reqidmiddleware "github.com/campusops/schedule-api/pkg/middleware/requestid"
	"github.com/campusops/schedule-api/pkg/storage"
)

// @title Campus Schedule API
// @version 1.0.0
// @description Class scheduling with conflict detection, room availability and calendar views
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

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect to postgres", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := rediscache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, caching disabled", zap.Error(err))
		redisClient = nil
	}

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheRepo *repository.CacheRepository
	var cacheSvc *service.CacheService
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, logr)
		cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Availability.CacheTTL, logr, true)
	}

	userRepo := repository.NewUserRepository(db)
	scheduleRepo := repository.NewScheduleEntryRepository(db)
	roomRepo := repository.NewRoomRepository(db)
	subjectRepo := repository.NewSubjectRepository(db)
	instructorRepo := repository.NewInstructorRepository(db)
	sectionRepo := repository.NewSectionRepository(db)

	authSvc := service.NewAuthService(userRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret:  cfg.JWT.Secret,
		AccessTokenExpiry:  cfg.JWT.Expiration,
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
		Issuer:             "schedule-api",
	})
	userSvc := service.NewUserService(userRepo, validate, logr)
	subjectSvc := service.NewSubjectService(subjectRepo, validate, logr)
	instructorSvc := service.NewInstructorService(instructorRepo, validate, logr)
	sectionSvc := service.NewSectionService(sectionRepo, validate, logr)
	roomSvc := service.NewRoomService(roomRepo, validate, logr, cfg.Rooms.ImportMaxRows)

	scheduleSvc := service.NewScheduleService(scheduleRepo, subjectRepo, roomRepo, instructorRepo, cacheSvc, validate, logr)
	availabilitySvc := service.NewAvailabilityService(roomRepo, scheduleRepo, cacheSvc, validate, logr)
	calendarSvc := service.NewCalendarViewService(scheduleRepo, cacheSvc, logr)

	var exportSvc *service.ExportService
	if cfg.Exports.Enabled {
		exportStore, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if err != nil {
			logr.Fatal("failed to init export storage", zap.Error(err))
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportSvc = service.NewExportService(scheduleRepo, exportStore, signer, service.ExportConfig{
			PDFTitle:  cfg.Exports.PDFTitle,
			ResultTTL: cfg.Exports.SignedURLTTL,
		}, logr, nil, nil)
	}

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	subjectHandler := handler.NewSubjectHandler(subjectSvc)
	instructorHandler := handler.NewInstructorHandler(instructorSvc)
	sectionHandler := handler.NewSectionHandler(sectionSvc)
	roomHandler := handler.NewRoomHandler(roomSvc)
	scheduleHandler := handler.NewScheduleHandler(scheduleSvc)
	availabilityHandler := handler.NewAvailabilityHandler(availabilitySvc)
	calendarHandler := handler.NewCalendarHandler(calendarSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(metricsSvc))
	r.Use(internalmiddleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/forgot-password", authHandler.ForgotPassword)
	auth.POST("/reset-password", authHandler.ResetPassword)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(authSvc))

	secured.POST("/auth/logout", authHandler.Logout)
	secured.POST("/auth/change-password", authHandler.ChangePassword)
	secured.GET("/auth/me", authHandler.Me)

	admin := string(models.RoleAdmin)
	superAdmin := string(models.RoleSuperAdmin)
	registrar := string(models.RoleRegistrar)
	faculty := string(models.RoleFaculty)
	staff := []string{superAdmin, admin, registrar}
	everyone := []string{superAdmin, admin, registrar, faculty}

	users := secured.Group("/users")
	users.Use(internalmiddleware.RBAC(superAdmin, admin))
	users.GET("", userHandler.List)
	users.GET("/:id", userHandler.Get)
	users.POST("", userHandler.Create)
	users.PUT("/:id", userHandler.Update)
	users.DELETE("/:id", userHandler.Delete)

	secured.GET("/status", internalmiddleware.RBAC(superAdmin, admin), metricsHandler.Status)

	subjects := secured.Group("/subjects")
	subjects.GET("", internalmiddleware.RBAC(everyone...), subjectHandler.List)
	subjects.GET("/:id", internalmiddleware.RBAC(everyone...), subjectHandler.Get)
	subjects.POST("", internalmiddleware.RBAC(staff...), subjectHandler.Create)
	subjects.PUT("/:id", internalmiddleware.RBAC(staff...), subjectHandler.Update)
	subjects.DELETE("/:id", internalmiddleware.RBAC(staff...), subjectHandler.Delete)

	instructors := secured.Group("/instructors")
	instructors.GET("", internalmiddleware.RBAC(everyone...), instructorHandler.List)
	instructors.GET("/:id", internalmiddleware.RBAC(everyone...), instructorHandler.Get)
	instructors.POST("", internalmiddleware.RBAC(staff...), instructorHandler.Create)
	instructors.PUT("/:id", internalmiddleware.RBAC(staff...), instructorHandler.Update)
	instructors.DELETE("/:id", internalmiddleware.RBAC(staff...), instructorHandler.Delete)

	sections := secured.Group("/sections")
	sections.GET("", internalmiddleware.RBAC(everyone...), sectionHandler.List)
	sections.GET("/:id", internalmiddleware.RBAC(everyone...), sectionHandler.Get)
	sections.POST("", internalmiddleware.RBAC(staff...), sectionHandler.Create)
	sections.PUT("/:id", internalmiddleware.RBAC(staff...), sectionHandler.Update)
	sections.DELETE("/:id", internalmiddleware.RBAC(staff...), sectionHandler.Delete)

	rooms := secured.Group("/rooms")
	rooms.GET("", internalmiddleware.RBAC(everyone...), roomHandler.List)
	rooms.GET("/grouped", internalmiddleware.RBAC(everyone...), roomHandler.Grouped)
	rooms.POST("/availability", internalmiddleware.RBAC(everyone...), availabilityHandler.Query)
	rooms.GET("/:id", internalmiddleware.RBAC(everyone...), roomHandler.Get)
	rooms.POST("", internalmiddleware.RBAC(staff...), roomHandler.Create)
	rooms.POST("/import", internalmiddleware.RBAC(staff...),
		internalmiddleware.Audit(userRepo, models.AuditActionRoomImport, "rooms"), roomHandler.ImportCSV)
	rooms.PUT("/:id", internalmiddleware.RBAC(staff...), roomHandler.Update)
	rooms.DELETE("/:id", internalmiddleware.RBAC(staff...), roomHandler.Delete)

	schedules := secured.Group("/schedules")
	schedules.GET("", internalmiddleware.RBAC(everyone...), scheduleHandler.List)
	schedules.GET("/:id", internalmiddleware.RBAC(everyone...), scheduleHandler.Get)
	schedules.POST("/check-conflicts", internalmiddleware.RBAC(staff...), scheduleHandler.CheckConflicts)
	schedules.POST("", internalmiddleware.RBAC(staff...),
		internalmiddleware.Audit(userRepo, models.AuditActionScheduleCreate, "schedules"), scheduleHandler.Create)
	schedules.PUT("/:id", internalmiddleware.RBAC(staff...),
		internalmiddleware.Audit(userRepo, models.AuditActionScheduleUpdate, "schedules"), scheduleHandler.Update)
	schedules.DELETE("/:id", internalmiddleware.RBAC(staff...),
		internalmiddleware.Audit(userRepo, models.AuditActionScheduleDelete, "schedules"), scheduleHandler.Delete)

	calendar := secured.Group("/calendar")
	calendar.Use(internalmiddleware.RBAC(everyone...))
	calendar.GET("/week", calendarHandler.Week)
	calendar.GET("/day", calendarHandler.Day)
	calendar.GET("/month", calendarHandler.Month)

	var cleanupQueue *jobs.Queue
	if exportSvc != nil {
		exportHandler := handler.NewExportHandler(exportSvc)
		exports := secured.Group("/exports")
		exports.POST("", internalmiddleware.RBAC(staff...), exportHandler.Generate)
		exports.GET("/download", internalmiddleware.RBAC(everyone...), exportHandler.Download)

		cleanupQueue = jobs.NewQueue("export-cleanup", func(ctx context.Context, job jobs.Job) error {
			_, err := exportSvc.Cleanup()
			return err
		}, jobs.QueueConfig{Workers: 1, Logger: logr})
		cleanupQueue.Start(context.Background())
		go scheduleExportCleanup(cleanupQueue, cfg.Exports.SignedURLTTL)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Info("server starting", zap.String("addr", addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
	if cleanupQueue != nil {
		cleanupQueue.Stop()
	}
}

// scheduleExportCleanup enqueues a cleanup pass once per TTL window.
func scheduleExportCleanup(queue *jobs.Queue, ttl time.Duration) {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	ticker := time.NewTicker(ttl / 2)
	defer ticker.Stop()
	for range ticker.C {
		_ = queue.Enqueue(jobs.Job{Type: "cleanup"})
	}
}
