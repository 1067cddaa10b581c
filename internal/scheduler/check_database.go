package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/aristath/refportfolio/internal/database"
	"github.com/rs/zerolog"
)

// CheckDatabaseJob verifies integrity of the record store and checkpoints
// its write-ahead log
type CheckDatabaseJob struct {
	log     zerolog.Logger
	db      *database.DB
	timeout time.Duration
}

// NewCheckDatabaseJob creates a new CheckDatabaseJob
func NewCheckDatabaseJob(db *database.DB) *CheckDatabaseJob {
	return &CheckDatabaseJob{
		log:     zerolog.Nop(),
		db:      db,
		timeout: 30 * time.Second,
	}
}

// SetLogger sets the logger for the job
func (j *CheckDatabaseJob) SetLogger(log zerolog.Logger) {
	j.log = log
}

// Name returns the job name
func (j *CheckDatabaseJob) Name() string {
	return "check_database"
}

// Run executes the integrity check
func (j *CheckDatabaseJob) Run() error {
	if j.db == nil {
		j.log.Warn().Msg("Database not initialized, skipping")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	if err := j.db.HealthCheck(ctx); err != nil {
		// Corruption cannot be auto-recovered
		j.log.Error().Err(err).Str("database", j.db.Name()).Msg("Database integrity check failed")
		return fmt.Errorf("database %s is corrupted: %w", j.db.Name(), err)
	}

	if err := j.db.Checkpoint(ctx); err != nil {
		// Not critical; the next run retries
		j.log.Warn().Err(err).Str("database", j.db.Name()).Msg("WAL checkpoint failed")
	}

	j.log.Debug().Str("database", j.db.Name()).Msg("Database integrity OK")
	return nil
}
