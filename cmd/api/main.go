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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/ncc-attendance-api/api/swagger"
	"github.com/noah-isme/ncc-attendance-api/internal/handler"
	"github.com/noah-isme/ncc-attendance-api/internal/middleware"
	"github.com/noah-isme/ncc-attendance-api/internal/repository"
	"github.com/noah-isme/ncc-attendance-api/internal/scheduler"
	"github.com/noah-isme/ncc-attendance-api/internal/service"
	"github.com/noah-isme/ncc-attendance-api/pkg/cache"
	"github.com/noah-isme/ncc-attendance-api/pkg/config"
	"github.com/noah-isme/ncc-attendance-api/pkg/database"
	"github.com/noah-isme/ncc-attendance-api/pkg/logger"
	"github.com/noah-isme/ncc-attendance-api/pkg/mailer"
	corsmiddleware "github.com/noah-isme/ncc-attendance-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/ncc-attendance-api/pkg/middleware/requestid"
)

// @title NCC Attendance API
// @version 1.0.0
// @description Parade attendance tracking for NCC cadets
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
		logr.Sugar().Warnw("redis unavailable, dashboard caching disabled", "error", err)
		redisClient = nil
	}

	userRepo := repository.NewUserRepository(db)
	studentRepo := repository.NewStudentRepository(db)
	paradeRepo := repository.NewParadeRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient, logr)

	allowlist := service.NewAllowlist(cfg.Access.AdminAllowlist)
	metricsSvc := service.NewMetricsService()
	authSvc := service.NewAuthService(userRepo, allowlist, cfg.JWT, nil, logr)
	studentSvc := service.NewStudentService(studentRepo, nil, logr)
	paradeSvc := service.NewParadeService(paradeRepo, nil, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, studentRepo, paradeRepo, nil, logr)
	reportSvc := service.NewReportService(studentRepo, paradeRepo, attendanceRepo, cacheRepo, cfg.Dashboard.CacheTTL, logr)

	var transport mailer.Service
	if cfg.Mail.SendgridAPIKey != "" {
		transport = mailer.NewSendgridService(cfg.Mail.SendgridAPIKey, cfg.Mail.FromName, cfg.Mail.FromAddress)
	} else {
		logr.Warn("no sendgrid key configured, emails go to the log only")
		transport = mailer.NewConsoleService(logr)
	}
	mailQueue := mailer.NewQueue(transport, mailer.QueueConfig{
		Workers:    cfg.Mail.QueueWorkers,
		MaxRetries: cfg.Mail.QueueRetries,
		Logger:     logr,
	})
	mailQueue.Start(context.Background())
	defer mailQueue.Stop()

	emailSvc := service.NewEmailService(reportSvc, mailQueue, cfg.Mail, logr)

	var reportScheduler *scheduler.Scheduler
	if cfg.Scheduler.Enabled {
		reportScheduler, err = scheduler.New(emailSvc, metricsSvc, cfg.Scheduler, logr)
		if err != nil {
			logr.Sugar().Fatalw("failed to build report scheduler", "error", err)
		}
		reportScheduler.Start()
		defer reportScheduler.Stop()
	} else {
		logr.Info("report scheduler disabled")
	}

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
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Students:   handler.NewStudentHandler(studentSvc),
		Parades:    handler.NewParadeHandler(paradeSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc, metricsSvc),
		Reports:    handler.NewReportHandler(reportSvc),
		Email:      handler.NewEmailHandler(emailSvc, metricsSvc),
		Metrics:    handler.NewMetricsHandler(metricsSvc),
	}
	handler.RegisterRoutes(r, cfg.APIPrefix, handlers, authSvc)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logr.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logr.Sugar().Errorw("graceful shutdown failed", "error", err)
	}
}
