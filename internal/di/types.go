// Package di wires the application's dependencies together.
package di

import (
	"github.com/aristath/divscout/internal/clients/yahoo"
	"github.com/aristath/divscout/internal/database"
	"github.com/aristath/divscout/internal/events"
	"github.com/aristath/divscout/internal/modules/charts"
	"github.com/aristath/divscout/internal/modules/dividends"
	"github.com/aristath/divscout/internal/modules/universe"
	"github.com/aristath/divscout/internal/scheduler"
)

// Container holds all dependencies for the application.
// It is created by Wire() and passed to the server for access to services.
type Container struct {
	// Databases
	UniverseDB *database.DB

	// Clients
	YahooClient  *yahoo.Client
	NativeClient *yahoo.NativeClient
	MarketData   *MarketDataAdapter

	// Repositories
	UniverseRepo *universe.Repository

	// Services
	EventManager    *events.Manager
	ChartStore      charts.Store
	ChartService    *charts.Service
	DividendService *dividends.Service
}

// Close releases resources held by the container.
func (c *Container) Close() error {
	if c.UniverseDB != nil {
		return c.UniverseDB.Close()
	}
	return nil
}

// JobInstances holds the registered background jobs.
type JobInstances struct {
	SectorRanking *scheduler.SectorRankingJob
	WALCheckpoint *scheduler.WALCheckpointJob
}
