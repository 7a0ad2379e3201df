package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dSumitabha/multi-tenant/internal/config"
	"github.com/dSumitabha/multi-tenant/internal/infra"
	"github.com/dSumitabha/multi-tenant/internal/repository"
	"github.com/dSumitabha/multi-tenant/internal/router"
	"github.com/dSumitabha/multi-tenant/internal/tenant"
	"github.com/dSumitabha/multi-tenant/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Structured logger — dev: pretty, prod: JSON
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	master, err := infra.NewMasterDatabase(cfg.MasterDatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to master postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	// Worker pool for async jobs (low-stock alert mail). Wired here at the
	// composition root so the pool sees all infrastructure dependencies.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mailer := infra.NewMailer(cfg)
	dispatcher := worker.NewDispatcher(rdb)
	handlers := &worker.Handlers{
		LowStock: worker.NewLowStockWorker(mailer, cfg.AlertsTo),
	}
	worker.StartWorkerPool(ctx, rdb, handlers, cfg.WorkerPoolSize)

	tenantRepo := repository.NewTenantRepository(master)
	manager := tenant.NewManager(cfg, tenantRepo, rdb, dispatcher)

	r := router.New(cfg, master, rdb, manager)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Msgf("inventory backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("forced shutdown")
	}

	manager.Close()
	if err := infra.Close(master); err != nil {
		log.Warn().Err(err).Msg("master database close failed")
	}
	log.Info().Msg("server exited")
}
