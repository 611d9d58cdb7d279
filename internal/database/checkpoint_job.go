package database

import (
	"fmt"

	"github.com/rs/zerolog"
)

// LargeWALFrames is the frame count above which a checkpoint that could not
// finish is reported as a warning
const LargeWALFrames = 1000

// CheckpointJob runs a passive WAL checkpoint on each database and reports WAL size
type CheckpointJob struct {
	dbs []*DB
	log zerolog.Logger
}

// NewCheckpointJob creates a checkpoint job over the given databases; nil entries are skipped
func NewCheckpointJob(log zerolog.Logger, dbs ...*DB) *CheckpointJob {
	return &CheckpointJob{
		dbs: dbs,
		log: log.With().Str("job", "wal_checkpoint").Logger(),
	}
}

// Name returns the job name
func (j *CheckpointJob) Name() string {
	return "wal_checkpoint"
}

// Run checkpoints every database. A failing database is logged and skipped;
// Run only errors when no database could be checkpointed.
func (j *CheckpointJob) Run() error {
	checked, failed := 0, 0
	for _, db := range j.dbs {
		if db == nil {
			continue
		}

		// PRAGMA wal_checkpoint returns: busy, log, checkpointed
		var busy, frames, checkpointed int
		err := db.Conn().QueryRow("PRAGMA wal_checkpoint(PASSIVE)").Scan(&busy, &frames, &checkpointed)
		if err != nil {
			failed++
			j.log.Warn().Err(err).Str("database", db.Name()).Msg("Failed to checkpoint WAL")
			continue
		}
		checked++

		if frames > LargeWALFrames && checkpointed < frames {
			j.log.Warn().
				Str("database", db.Name()).
				Int("wal_frames", frames).
				Int("checkpointed", checkpointed).
				Bool("busy", busy != 0).
				Msg("WAL file is large and was not fully checkpointed")
		} else {
			j.log.Debug().
				Str("database", db.Name()).
				Int("wal_frames", frames).
				Int("checkpointed", checkpointed).
				Msg("WAL checkpoint OK")
		}
	}

	if checked == 0 && failed > 0 {
		return fmt.Errorf("wal checkpoint failed on all %d databases", failed)
	}
	j.log.Debug().Int("checked", checked).Int("failed", failed).Msg("WAL checkpoint completed")
	return nil
}
