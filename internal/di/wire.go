package di

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/divscout/internal/clients/yahoo"
	"github.com/aristath/divscout/internal/config"
	"github.com/aristath/divscout/internal/database"
	"github.com/aristath/divscout/internal/events"
	"github.com/aristath/divscout/internal/modules/charts"
	"github.com/aristath/divscout/internal/modules/dividends"
	"github.com/aristath/divscout/internal/modules/universe"
	"github.com/aristath/divscout/internal/scheduler"
)

// ChartURLPrefix is where locally stored charts are served from.
const ChartURLPrefix = "/static/charts"

// Wire initializes all dependencies and returns a fully configured container
// Order of operations:
// 1. Initialize databases
// 2. Initialize clients and repositories
// 3. Initialize services
// 4. Register jobs
func Wire(cfg *config.Config, sched *scheduler.Scheduler, log zerolog.Logger) (*Container, *JobInstances, error) {
	container, err := InitializeDatabases(cfg, log)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize databases: %w", err)
	}

	if err := InitializeRepositories(container, cfg, log); err != nil {
		container.Close()
		return nil, nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}

	if err := InitializeServices(container, cfg, log); err != nil {
		container.Close()
		return nil, nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	jobs, err := RegisterJobs(container, cfg, sched, log)
	if err != nil {
		container.Close()
		return nil, nil, fmt.Errorf("failed to register jobs: %w", err)
	}

	log.Info().Msg("Dependency injection wiring completed successfully")

	return container, jobs, nil
}

// InitializeDatabases opens and migrates the universe database.
func InitializeDatabases(cfg *config.Config, log zerolog.Logger) (*Container, error) {
	db, err := database.New(database.Config{Path: cfg.DatabasePath, Name: "universe"})
	if err != nil {
		return nil, err
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, err
	}

	log.Info().Str("path", db.Path()).Msg("Database ready")
	return &Container{UniverseDB: db}, nil
}

// InitializeRepositories builds the Yahoo clients and the sector repository,
// seeding the default universe on first start.
func InitializeRepositories(c *Container, cfg *config.Config, log zerolog.Logger) error {
	market, client, native, err := NewMarketData(cfg, log)
	if err != nil {
		return err
	}
	c.MarketData = market
	c.YahooClient = client
	c.NativeClient = native

	c.UniverseRepo = universe.NewRepository(c.UniverseDB.Conn(), log)
	if _, err := c.UniverseRepo.SeedDefaults(); err != nil {
		return fmt.Errorf("failed to seed sectors: %w", err)
	}

	return nil
}

// InitializeServices builds the event manager, chart publishing and dividend service.
func InitializeServices(c *Container, cfg *config.Config, log zerolog.Logger) error {
	c.EventManager = events.NewManager(log)

	store, err := NewChartStore(cfg, log)
	if err != nil {
		return err
	}
	c.ChartStore = store
	c.ChartService = charts.NewService(charts.NewRenderer(), store, c.EventManager, log)

	c.DividendService = dividends.NewService(
		c.MarketData,
		c.UniverseRepo,
		c.ChartService,
		c.EventManager,
		dividends.ServiceConfig{
			Horizon:     cfg.ProjectionHorizon,
			Concurrency: cfg.RankingConcurrency,
		},
		log,
	)

	return nil
}

// RegisterJobs creates the background jobs and registers them with the scheduler.
func RegisterJobs(c *Container, cfg *config.Config, sched *scheduler.Scheduler, log zerolog.Logger) (*JobInstances, error) {
	jobs := &JobInstances{
		SectorRanking: scheduler.NewSectorRankingJob(c.DividendService, c.EventManager, 10*time.Minute, log),
		WALCheckpoint: scheduler.NewWALCheckpointJob(c.UniverseDB, log),
	}

	if sched == nil {
		return jobs, nil
	}
	if err := sched.AddJob(cfg.RankingSchedule, jobs.SectorRanking); err != nil {
		return nil, err
	}
	if err := sched.AddJob(cfg.CheckpointSchedule, jobs.WALCheckpoint); err != nil {
		return nil, err
	}

	return jobs, nil
}

// NewMarketData builds the Yahoo clients and the adapter over them.
func NewMarketData(cfg *config.Config, log zerolog.Logger) (*MarketDataAdapter, *yahoo.Client, *yahoo.NativeClient, error) {
	client, err := yahoo.NewClient(yahoo.Config{
		BaseURL:    cfg.Yahoo.BaseURL,
		SessionURL: cfg.Yahoo.SessionURL,
		Timeout:    cfg.Yahoo.Timeout,
		RatePerSec: cfg.Yahoo.RatePerSec,
		Burst:      cfg.Yahoo.Burst,
	}, log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create yahoo client: %w", err)
	}

	native := yahoo.NewNativeClient(log)
	return NewMarketDataAdapter(client, native, log), client, native, nil
}

// NewChartStore returns the R2 store when configured, otherwise a local directory store.
func NewChartStore(cfg *config.Config, log zerolog.Logger) (charts.Store, error) {
	if !cfg.R2.Enabled() {
		return charts.NewLocalStore(cfg.ChartDir, ChartURLPrefix), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := charts.NewR2Store(ctx, charts.R2Config{
		AccountID:       cfg.R2.AccountID,
		AccessKeyID:     cfg.R2.AccessKeyID,
		SecretAccessKey: cfg.R2.SecretAccessKey,
		BucketName:      cfg.R2.BucketName,
		PublicURL:       cfg.R2.PublicURL,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create R2 chart store: %w", err)
	}

	log.Info().Str("bucket", cfg.R2.BucketName).Msg("Publishing charts to R2")
	return store, nil
}
