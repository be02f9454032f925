package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/BruksfildServices01/salon-scheduler/internal/audit"
	"github.com/BruksfildServices01/salon-scheduler/internal/cache"
	"github.com/BruksfildServices01/salon-scheduler/internal/config"
	dbpkg "github.com/BruksfildServices01/salon-scheduler/internal/db"
	"github.com/BruksfildServices01/salon-scheduler/internal/handlers"
	infraRepo "github.com/BruksfildServices01/salon-scheduler/internal/infra/repository"
	"github.com/BruksfildServices01/salon-scheduler/internal/logger"
	"github.com/BruksfildServices01/salon-scheduler/internal/routes"
	"github.com/BruksfildServices01/salon-scheduler/internal/timezone"
	"github.com/BruksfildServices01/salon-scheduler/internal/validators"
)

func main() {

	cfg, err := config.Load()
	if err != nil {
		logger.New().WithError(err).Fatal("failed to load config")
	}

	logger.Init(cfg.LogLevel, cfg.Environment)
	log := logger.New()

	db, err := dbpkg.Open(cfg.DBUrl, &dbpkg.Options{DefaultTimezone: cfg.DefaultTimezone})
	if err != nil {
		log.WithError(err).Fatal("failed to connect database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.WithError(err).Fatal("failed to get sql.DB")
	}
	defer sqlDB.Close()

	health := map[string]handlers.Pinger{"postgres": sqlDB}

	// --------------------------------------------------
	// Cache (optional)
	// --------------------------------------------------
	var scheduleCache cache.ScheduleCache = cache.Noop{}
	var redisClient *redis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.WithError(err).Warn("redis unavailable, schedule cache disabled")
		} else {
			defer redisClient.Close()
			scheduleCache = cache.NewRedisScheduleCache(redisClient, cfg.ScheduleCacheTTL)
			health["redis"] = handlers.PingFunc(func(ctx context.Context) error {
				return redisClient.Ping(ctx).Err()
			})
		}
	}

	// --------------------------------------------------
	// Singletons
	// --------------------------------------------------
	if err := validators.RegisterGin(); err != nil {
		log.WithError(err).Fatal("failed to register validators")
	}

	auditLogger := audit.New(db)
	auditDispatcher := audit.NewDispatcher(auditLogger, 256)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	routes.RegisterRoutes(r, routes.Deps{
		Schedules:      infraRepo.NewScheduleGormRepository(db),
		Appointments:   infraRepo.NewAppointmentGormRepository(db),
		Auditor:        auditDispatcher,
		AuditLogs:      auditLogger,
		Cache:          scheduleCache,
		Validate:       validators.New(),
		Timezones:      timezone.NewResolver(cfg.DefaultTimezone),
		Health:         health,
		JWTSecret:      cfg.JWTSecret,
		AllowedOrigins: cfg.AllowedOrigins,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("addr", cfg.Addr()).Info("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to start server")
		}
	}()

	// --------------------------------------------------
	// Graceful shutdown
	// --------------------------------------------------
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.WithError(err).Error("server shutdown failed")
	}
	if err := auditDispatcher.Close(ctx); err != nil {
		log.WithError(err).Warn("audit queue not fully drained")
	}
}
