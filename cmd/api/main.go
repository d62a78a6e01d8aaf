package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bracula/campus/internal/api"
	"github.com/bracula/campus/internal/api/handlers"
	mw "github.com/bracula/campus/internal/api/middleware"
	"github.com/bracula/campus/internal/auth"
	"github.com/bracula/campus/internal/metrics"
	"github.com/bracula/campus/internal/repository"
	"github.com/bracula/campus/internal/services"
	"github.com/bracula/campus/pkg/config"
	"github.com/bracula/campus/pkg/database"
	"github.com/bracula/campus/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("Starting campus api",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("session_store", cfg.SessionStore),
	)

	// Connect to database
	ctx := context.Background()
	opts := database.DefaultOptions()
	opts.Verbose = cfg.IsDevelopment()
	db, err := database.OpenPostgres(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	store, closeStore := newSessionStore(ctx, cfg, log)
	defer closeStore()

	// Metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics.RegisterMetrics(reg)

	// Auth
	hasher, err := auth.NewBcryptHasher(cfg.BcryptCost)
	if err != nil {
		log.Fatal("Failed to build password hasher", zap.Error(err))
	}
	sessions := auth.NewManager(store, auth.Options{
		IdleTimeout:     cfg.SessionIdleTimeout,
		AbsoluteTimeout: cfg.SessionAbsoluteTimeout,
	})
	cookies := auth.CookieConfig{
		Name:    cfg.SessionCookieName,
		Secure:  cfg.SessionCookieSecure,
		Persist: cfg.SessionCookiePersist,
		MaxAge:  cfg.SessionIdleTimeout,
	}

	// Initialize repositories
	txExec := repository.NewTxExecutor(db)
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	registrationRepo := repository.NewRegistrationRepository(db)
	accommodationRepo := repository.NewAccommodationRepository(db)

	// Initialize services
	authSvc := services.NewAuthService(userRepo, txExec, hasher, sessions, cfg.RequestTimeout)
	userSvc := services.NewUserService(userRepo)
	eventSvc := services.NewEventService(eventRepo, registrationRepo, txExec)
	accommodationSvc := services.NewAccommodationService(accommodationRepo, txExec)

	// Create router with dependencies
	router := api.NewRouter(api.Dependencies{
		Sessions:              sessions,
		Cookies:               cookies,
		CORSOrigin:            cfg.CORSAllowedOrigin,
		LoginLimiter:          mw.NewLimiter(cfg.LoginRateLimitRPS, cfg.LoginRateLimitBurst),
		Metrics:               reg,
		HealthHandler:         handlers.NewHealthHandler(pinger(db)),
		AuthHandler:           handlers.NewAuthHandler(authSvc, cookies),
		UsersHandler:          handlers.NewUsersHandler(userSvc),
		EventsHandler:         handlers.NewEventsHandler(eventSvc),
		AccommodationsHandler: handlers.NewAccommodationsHandler(accommodationSvc),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           http.TimeoutHandler(router, cfg.RequestTimeout+5*time.Second, `{"status":"error","message":"Request timed out"}`),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func newSessionStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (auth.Store, func()) {
	if cfg.SessionStore != "redis" {
		return auth.NewMemoryStore(nil), func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Fatal("Failed to connect to redis", zap.Error(err))
	}
	log.Info("Redis session store connected", zap.String("addr", cfg.RedisAddr))
	return auth.NewRedisStore(rdb), func() { _ = rdb.Close() }
}

func pinger(db *gorm.DB) handlers.PingFunc {
	return func(ctx context.Context) error { return database.Ping(ctx, db) }
}
