package server

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/divscout/internal/database"
	"github.com/aristath/divscout/internal/utils"
)

// SystemHandlers serves process and host health information.
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	universeDB  *database.DB
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(universeDB *database.DB, log zerolog.Logger) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("handler", "system").Logger(),
		startupTime: time.Now(),
		universeDB:  universeDB,
	}
}

// SystemStatus is the /api/system/status payload.
type SystemStatus struct {
	Status        string  `json:"status" msgpack:"status"`
	UptimeSeconds int64   `json:"uptime_seconds" msgpack:"uptime_seconds"`
	CPUPercent    float64 `json:"cpu_percent" msgpack:"cpu_percent"`
	MemoryPercent float64 `json:"memory_percent" msgpack:"memory_percent"`
	Goroutines    int     `json:"goroutines" msgpack:"goroutines"`
	Database      string  `json:"database" msgpack:"database"`
}

// HandleSystemStatus returns system status
// GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.getSystemStats()

	status := SystemStatus{
		Status:        "healthy",
		UptimeSeconds: int64(time.Since(h.startupTime).Seconds()),
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Goroutines:    runtime.NumGoroutine(),
		Database:      h.databaseStatus(r.Context()),
	}
	if status.Database != "ok" {
		status.Status = "degraded"
	}

	utils.WriteResponse(w, r, http.StatusOK, status, h.log)
}

// getSystemStats returns CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) databaseStatus(ctx context.Context) string {
	if h.universeDB == nil {
		return "unavailable"
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := h.universeDB.Conn().PingContext(ctx); err != nil {
		h.log.Warn().Err(err).Msg("Database ping failed")
		return "error"
	}
	return "ok"
}
