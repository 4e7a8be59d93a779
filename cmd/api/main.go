package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"task-manager-api/internal/config"
	"task-manager-api/internal/database"
	"task-manager-api/internal/docs"
	"task-manager-api/internal/logger"
	"task-manager-api/internal/ratelimit"
	"task-manager-api/internal/repositories"
	"task-manager-api/internal/routes"
	"task-manager-api/internal/services"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// データベース
	db, dialect, err := database.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(db, dialect, log); err != nil {
		return err
	}
	log.Info("database ready", "driver", string(dialect))

	// レート制限のストア。Redis が使えなければメモリに切り替える
	var store ratelimit.Store = ratelimit.NewMemoryStore()
	if cfg.RedisAddr != "" {
		client, err := ratelimit.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			log.Warn("redis unavailable, using in-memory rate limit store", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer client.Close()
			store = ratelimit.NewRedisStore(client)
			log.Info("using redis rate limit store", "addr", cfg.RedisAddr)
		}
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db, cfg.DBName),
	)

	apiDocs, err := docs.Load()
	if err != nil {
		return err
	}

	// リポジトリとサービス
	taskRepo := repositories.NewTaskRepository(db, dialect)
	userRepo := repositories.NewUserRepository(db, dialect)

	r := routes.SetupRouter(routes.Dependencies{
		Config:         cfg,
		Log:            log,
		Registry:       registry,
		RateLimitStore: store,
		DB:             db,
		TaskService:    services.NewTaskService(taskRepo),
		UserService:    services.NewUserService(userRepo, log),
		JWTService:     services.NewJWTService(cfg.JWTSecret, cfg.JWTExpiresIn),
		Docs:           apiDocs,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "env", cfg.AppEnv)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
