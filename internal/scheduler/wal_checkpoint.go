package scheduler

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/divscout/internal/database"
)

// WALCheckpointJob truncates the SQLite write-ahead log of the universe database.
type WALCheckpointJob struct {
	db  *database.DB
	log zerolog.Logger
}

// NewWALCheckpointJob creates a new WAL checkpoint job
func NewWALCheckpointJob(db *database.DB, log zerolog.Logger) *WALCheckpointJob {
	return &WALCheckpointJob{
		db:  db,
		log: log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *WALCheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run executes the checkpoint
func (j *WALCheckpointJob) Run() error {
	// PRAGMA wal_checkpoint returns: busy, log, checkpointed
	var busy, walFrames, checkpointed int
	err := j.db.Conn().QueryRow("PRAGMA wal_checkpoint(TRUNCATE)").Scan(&busy, &walFrames, &checkpointed)
	if err != nil {
		return fmt.Errorf("failed to checkpoint %s: %w", j.db.Name(), err)
	}

	if busy != 0 {
		j.log.Warn().Str("database", j.db.Name()).Msg("Checkpoint blocked by active readers")
		return nil
	}

	j.log.Debug().
		Str("database", j.db.Name()).
		Int("wal_frames", walFrames).
		Int("checkpointed", checkpointed).
		Msg("WAL checkpoint completed")
	return nil
}
