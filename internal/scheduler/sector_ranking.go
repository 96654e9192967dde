package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/aristath/divscout/internal/events"
	"github.com/aristath/divscout/internal/modules/dividends"
)

// SectorRanker produces a ranking for the whole sector universe.
type SectorRanker interface {
	RankSectors(ctx context.Context) (dividends.SectorRanking, error)
}

// SectorRankingJob ranks every sector and logs the top yielders. Results are
// not stored; each run fetches fresh data.
type SectorRankingJob struct {
	ranker  SectorRanker
	events  *events.Manager
	timeout time.Duration
	log     zerolog.Logger
}

// NewSectorRankingJob creates a new sector ranking job
func NewSectorRankingJob(ranker SectorRanker, eventManager *events.Manager, timeout time.Duration, log zerolog.Logger) *SectorRankingJob {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &SectorRankingJob{
		ranker:  ranker,
		events:  eventManager,
		timeout: timeout,
		log:     log.With().Str("job", "sector_ranking").Logger(),
	}
}

// Name returns the job name
func (j *SectorRankingJob) Name() string {
	return "sector_ranking"
}

// Run executes the sector ranking
func (j *SectorRankingJob) Run() error {
	runID := uuid.New().String()
	log := j.log.With().Str("run_id", runID).Logger()

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	start := time.Now()
	ranking, err := j.ranker.RankSectors(ctx)
	if err != nil {
		if j.events != nil {
			j.events.EmitError("scheduler", err, map[string]interface{}{"job": j.Name(), "run_id": runID})
		}
		return fmt.Errorf("sector ranking failed: %w", err)
	}

	leaders := make(map[string]interface{}, len(ranking))
	for _, sector := range dividends.SortedSectors(ranking) {
		records := ranking[sector]
		if len(records) == 0 {
			log.Warn().Str("sector", sector).Msg("No valid dividend data")
			leaders[sector] = nil
			continue
		}
		top := records[0]
		log.Info().
			Str("sector", sector).
			Str("leader", top.Symbol).
			Float64("yield_pct", top.YieldPercent).
			Int("ranked", len(records)).
			Msg("Sector ranked")
		leaders[sector] = top.Symbol
	}

	if j.events != nil {
		j.events.Emit(events.SectorRankingCompleted, "scheduler", map[string]interface{}{
			"run_id":      runID,
			"sectors":     len(ranking),
			"leaders":     leaders,
			"duration_ms": time.Since(start).Milliseconds(),
		})
	}

	return nil
}
