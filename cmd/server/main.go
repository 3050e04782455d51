package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agartpos/internal/config"
	"agartpos/internal/infra"
	"agartpos/internal/repository"
	"agartpos/internal/router"
	"agartpos/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("loading configuration")
	}

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if !cfg.IsProduction() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database setup failed")
	}

	// Redis is optional: without it the product cache and the async jobs are
	// off, but checkout still works.
	var dispatcher *worker.Dispatcher
	var pool *worker.Pool
	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, cache and background jobs disabled")
		rdb = nil
	} else {
		dispatcher = worker.NewDispatcher(rdb)
		pool = worker.NewPool(rdb, cfg.WorkerPoolSize)
		pool.Register(worker.QueueShiftRepair, worker.NewShiftRepairHandler(repository.NewShiftRepository(db)))
		if cfg.SMTPHost != "" && cfg.AlertEmail != "" {
			mailer := infra.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword)
			pool.Register(worker.QueueVarianceAlert, worker.NewVarianceAlertHandler(mailer, cfg.AlertEmail))
		}
	}

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	if pool != nil {
		pool.Start(workerCtx)
	}

	engine := router.New(cfg, db, rdb, dispatcher)
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped unexpectedly")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	stopWorkers()
	if pool != nil {
		pool.Wait()
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	log.Info().Msg("bye")
}
