package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/aristath/refportfolio/internal/di"
	"github.com/aristath/refportfolio/internal/scheduler"
	"github.com/spf13/cobra"
)

func newScheduleCmd(root *rootFlags) *cobra.Command {
	var runNow bool
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run the nightly maintenance jobs until interrupted",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			s := scheduler.New(a.log)
			jobs := di.RegisterJobs(a.container, a.log)
			if err := di.ScheduleJobs(s, jobs, a.cfg); err != nil {
				return err
			}

			if runNow {
				if err := s.RunNow(jobs.RiskRecalc); err != nil {
					a.log.Error().Err(err).Msg("Initial recalculation failed")
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s.Start()
			a.log.Info().Str("recalc", a.cfg.RecalcSchedule).Msg("Scheduler running")

			<-ctx.Done()
			a.log.Info().Msg("Shutting down scheduler")
			s.Stop()
			return nil
		},
	}
	cmd.Flags().BoolVar(&runNow, "run-now", false, "Recalculate once before waiting for the schedule")
	return cmd
}
