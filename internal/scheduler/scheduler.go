// Package scheduler runs the risk and metrics maintenance jobs, either on
// cron schedules or once on demand.
package scheduler

import (
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one unit of maintenance work
type Job interface {
	Run() error
	Name() string
}

// Reporter is implemented by jobs that keep a report of their latest run.
// The scheduler adds its counters to the completion log line.
type Reporter interface {
	LastReport() RecalcReport
}

// Scheduler owns the cron runner and logs every job run it triggers
type Scheduler struct {
	cron  *cron.Cron
	log   zerolog.Logger
	clock func() time.Time
}

// New creates a scheduler whose specs carry a leading seconds field
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:  cron.New(cron.WithSeconds()),
		log:   log.With().Str("component", "scheduler").Logger(),
		clock: time.Now,
	}
}

// Start begins firing registered jobs
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", s.Jobs()).Msg("Scheduler started")
}

// Stop halts the cron runner and blocks until in-flight runs return
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers job under a six-field cron spec such as
// "0 0 2 * * *" (02:00 daily) or a descriptor like "@every 30s".
func (s *Scheduler) AddJob(schedule string, job Job) error {
	if _, err := s.cron.AddFunc(schedule, func() { _ = s.run(job, "cron") }); err != nil {
		return err
	}
	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")
	return nil
}

// Jobs returns the number of registered jobs
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// RunNow runs job once outside its schedule and returns its error
func (s *Scheduler) RunNow(job Job) error {
	return s.run(job, "manual")
}

func (s *Scheduler) run(job Job, trigger string) error {
	log := s.log.With().Str("job", job.Name()).Str("trigger", trigger).Logger()
	log.Debug().Msg("Running job")

	start := s.clock()
	err := job.Run()

	var event *zerolog.Event
	if err != nil {
		event = log.Error().Err(err)
	} else {
		event = log.Info()
	}
	event = event.Dur("duration", s.clock().Sub(start))
	if r, ok := job.(Reporter); ok {
		report := r.LastReport()
		event = event.
			Int("outputs_updated", report.Outputs.Updated).
			Int("high_risk_outputs", report.Outputs.HighRisk).
			Int("submissions_updated", report.SubmissionsUpdated).
			Int("submissions_failed", report.SubmissionsFailed)
	}

	if err != nil {
		event.Msg("Job failed")
	} else {
		event.Msg("Job completed")
	}
	return err
}
