package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cafeblog/internal/auth"
	"cafeblog/internal/cache"
	"cafeblog/internal/config"
	"cafeblog/internal/db"
	httpx "cafeblog/internal/http"
	"cafeblog/internal/observability"
	"cafeblog/internal/repo/postgres"
	"cafeblog/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load the config set up
	cfg := config.Load()

	// start up the observability logger
	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// tracing is optional; without an endpoint spans stay local no-ops
	if cfg.OTLPEndpoint != "" {
		shutdownTracer, err := observability.InitTracer(rootCtx, "cafeblog", cfg.OTLPEndpoint)

		if err != nil {
			log.Error("tracer init failed", "err", err)
		} else {
			defer func() {
				ctx, cancel := config.WithTimeout(5 * time.Second)
				defer cancel()
				_ = shutdownTracer(ctx)
			}()
		}
	}

	pool, err := db.NewPool(cfg.DBURL)

	if err != nil {
		log.Error("database connection failed", "err", err)
		os.Exit(1)
	}

	defer pool.Close()

	// make sure the configured administrator can actually log in
	if err := db.EnsureAdminAccount(rootCtx, pool, cfg); err != nil {
		log.Error("admin seed failed", "err", err)
		os.Exit(1)
	}

	prom := observability.NewProm(prometheus.DefaultRegisterer)

	var store cache.Store

	if cfg.RedisAddr != "" {
		store = cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.CacheTTL,
		}, log)
	} else {
		store = cache.NewMemory(cfg.CacheTTL)
	}

	jwtManager := auth.NewManager(
		cfg.JWTSecret,
		time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute,
		time.Duration(cfg.JWTRefreshTTLDays)*24*time.Hour,
	)

	router := httpx.NewRouter(httpx.Deps{
		Cfg:   cfg,
		Log:   log,
		Pool:  pool,
		Prom:  prom,
		Cache: store,
		JWT:   jwtManager,
	})

	// background loops: orphan-file sweeping and refresh token purging

	postsRepo := postgres.NewPostsRepo(pool, prom)
	sweeper := storage.NewSweeper(cfg.UploadDir, postsRepo, log, cfg.SweepInterval, cfg.SweepGrace)

	go sweeper.Run(rootCtx)
	go purgeExpiredTokens(rootCtx, postgres.NewRefreshTokensRepo(pool), log)

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	rootCancel()

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)

		defer cancel()

		err := srv.Shutdown(ctx)

		if err != nil {
			log.Error("graceful shutdown failed", "err", err)

			return
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

func purgeExpiredTokens(ctx context.Context, repo *postgres.RefreshTokensRepo, log *slog.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := repo.DeleteExpired(ctx)

			if err != nil {
				log.Warn("refresh token purge failed", "err", err)
				continue
			}

			if n > 0 {
				log.Info("purged expired refresh tokens", "count", n)
			}
		}
	}
}
