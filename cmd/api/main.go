package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/ratehub/ratehub-backend/internal/api"
	"github.com/ratehub/ratehub-backend/internal/auth"
	"github.com/ratehub/ratehub-backend/internal/config"
	"github.com/ratehub/ratehub-backend/internal/db"
	"github.com/ratehub/ratehub-backend/internal/logger"
	"github.com/ratehub/ratehub-backend/internal/metrics"
	"github.com/ratehub/ratehub-backend/internal/repository/postgres"
	"github.com/ratehub/ratehub-backend/internal/services"
	"github.com/ratehub/ratehub-backend/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "err", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Env, cfg.Log.Level)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("db connect", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	if cfg.Database.Migrate {
		if err := db.RunMigrations(ctx, pool); err != nil {
			log.Error("migrations", "err", err)
			os.Exit(1)
		}
	}

	metrics.Init()

	repos := postgres.NewRepositories(pool)
	wp := worker.NewPool(cfg.Worker.Size)
	defer wp.Stop()

	tm := auth.NewTokenManager(cfg.JWT.AccessSecret, cfg.JWT.RefreshSecret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	userSvc := services.NewUserService(repos.Users)
	storeSvc := services.NewStoreService(repos.Stores, repos.Users, repos.Ratings)
	ratingSvc := services.NewRatingService(repos.Ratings, repos.AuditLogs, wp)

	r := api.NewRouter(cfg, tm, userSvc, storeSvc, ratingSvc)

	srv := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           r,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTO,
	}

	go func() {
		log.Info("server starting", "port", cfg.HTTP.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
