package main

import (
	"fmt"

	"github.com/aristath/refportfolio/internal/di"
	"github.com/aristath/refportfolio/internal/scheduler"
	"github.com/spf13/cobra"
)

type recalcFlags struct {
	autoTimeline    bool
	outputID        string
	submissionID    string
	outputsOnly     bool
	submissionsOnly bool
}

func newRecalcCmd(root *rootFlags) *cobra.Command {
	flags := &recalcFlags{}
	cmd := &cobra.Command{
		Use:   "recalc",
		Short: "Recalculate stored output risks and submission metrics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.outputsOnly && flags.submissionsOnly {
				return fmt.Errorf("--outputs-only and --submissions-only are mutually exclusive")
			}

			a, err := openApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			if cmd.Flags().Changed("auto-timeline") {
				a.container.RiskCalculator.SetAutoTimeline(flags.autoTimeline)
			}

			job := di.RegisterJobs(a.container, a.log).RiskRecalc
			job.SetOptions(scheduler.RecalcOptions{
				OutputID:        flags.outputID,
				SubmissionID:    flags.submissionID,
				OutputsOnly:     flags.outputsOnly,
				SubmissionsOnly: flags.submissionsOnly,
			})

			runErr := job.Run()
			if err := a.write(cmd, job.LastReport()); err != nil {
				return err
			}
			return runErr
		},
	}

	f := cmd.Flags()
	f.BoolVar(&flags.autoTimeline, "auto-timeline", false, "Derive timeline risk from lifecycle status")
	f.StringVar(&flags.outputID, "output-id", "", "Recalculate a single output")
	f.StringVar(&flags.submissionID, "submission-id", "", "Recalculate a single submission")
	f.BoolVar(&flags.outputsOnly, "outputs-only", false, "Skip submission metrics")
	f.BoolVar(&flags.submissionsOnly, "submissions-only", false, "Skip output risks")
	return cmd
}
