package main

import (
	"github.com/aristath/refportfolio/internal/domain"
	"github.com/spf13/cobra"
)

type readinessReport struct {
	SubmissionID string          `json:"submission_id" yaml:"submission_id" msgpack:"submission_id"`
	Name         string          `json:"name" yaml:"name" msgpack:"name"`
	Metrics      *domain.Metrics `json:"metrics" yaml:"metrics" msgpack:"metrics"`
	Saved        bool            `json:"saved" yaml:"saved" msgpack:"saved"`
}

func newReadinessCmd(root *rootFlags) *cobra.Command {
	var (
		submission string
		save       bool
	)
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Score a stored submission and report its readiness issues",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			sub, err := a.submission(submission)
			if err != nil {
				return err
			}
			if err := a.container.MetricsCalculator.Recompute(sub); err != nil {
				return err
			}
			if save {
				if err := a.container.SubmissionRepo.SaveMetrics(sub); err != nil {
					return err
				}
			}

			return a.write(cmd, readinessReport{
				SubmissionID: sub.ID,
				Name:         sub.Name,
				Metrics:      sub.Metrics,
				Saved:        save,
			})
		},
	}
	cmd.Flags().StringVar(&submission, "submission", "", "Submission ID (required)")
	cmd.Flags().BoolVar(&save, "save", false, "Store the recomputed metrics")
	_ = cmd.MarkFlagRequired("submission")
	return cmd
}
