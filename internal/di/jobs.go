package di

import (
	"fmt"

	"github.com/aristath/refportfolio/internal/config"
	"github.com/aristath/refportfolio/internal/scheduler"
	"github.com/rs/zerolog"
)

// CheckDatabaseSchedule runs the integrity check nightly, before recalculation.
const CheckDatabaseSchedule = "0 30 1 * * *"

// RegisterJobs creates the maintenance jobs over the container
func RegisterJobs(container *Container, log zerolog.Logger) *JobInstances {
	recalc := scheduler.NewRiskRecalcJob(
		container.OutputRepo,
		container.SubmissionRepo,
		container.RiskCalculator,
		container.MetricsCalculator,
	)
	recalc.SetLogger(log)

	check := scheduler.NewCheckDatabaseJob(container.DB)
	check.SetLogger(log)

	return &JobInstances{RiskRecalc: recalc, CheckDatabase: check}
}

// ScheduleJobs registers the jobs on their cron schedules
func ScheduleJobs(s *scheduler.Scheduler, jobs *JobInstances, cfg *config.Config) error {
	if err := s.AddJob(CheckDatabaseSchedule, jobs.CheckDatabase); err != nil {
		return fmt.Errorf("failed to register %s: %w", jobs.CheckDatabase.Name(), err)
	}
	if err := s.AddJob(cfg.RecalcSchedule, jobs.RiskRecalc); err != nil {
		return fmt.Errorf("failed to register %s: %w", jobs.RiskRecalc.Name(), err)
	}
	return nil
}
