// Package main runs the dividend analyzer web server.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aristath/divscout/internal/config"
	"github.com/aristath/divscout/internal/di"
	"github.com/aristath/divscout/internal/scheduler"
	"github.com/aristath/divscout/internal/server"
	"github.com/aristath/divscout/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallbackLog := logger.New(logger.Config{Level: "info", Pretty: true})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
	})
	logger.SetGlobalLogger(log)

	log.Info().Msg("Starting Dividend Scout")

	sched := scheduler.New(log)

	container, jobs, err := di.Wire(cfg, sched, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}
	defer container.Close()

	srv, err := server.New(server.Config{
		Log:             log,
		Port:            cfg.Port,
		DevMode:         cfg.DevMode,
		ChartDir:        cfg.ChartDir,
		UniverseDB:      container.UniverseDB,
		DividendService: container.DividendService,
		ChartService:    container.ChartService,
		UniverseRepo:    container.UniverseRepo,
		EventManager:    container.EventManager,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create server")
	}

	sched.Start()

	// Warm the sector rankings so the first page load has logged leaders.
	if cfg.RankingSchedule != "" {
		go func() {
			if err := sched.RunNow(jobs.SectorRanking); err != nil {
				log.Warn().Err(err).Msg("Initial sector ranking failed")
			}
		}()
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	sched.Stop()

	log.Info().Msg("Server stopped")
}
