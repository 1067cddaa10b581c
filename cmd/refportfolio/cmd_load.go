package main

import (
	"fmt"
	"os"

	"github.com/aristath/refportfolio/internal/records"
	"github.com/spf13/cobra"
)

func newLoadCmd(root *rootFlags) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Import staff, outputs and submissions from a YAML dataset",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fh, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open dataset: %w", err)
			}
			ds, err := records.LoadDataset(fh)
			fh.Close()
			if err != nil {
				return err
			}

			a, err := openApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			c := a.container
			summary, err := records.Import(ds, c.StaffRepo, c.OutputRepo, c.SubmissionRepo)
			if err != nil {
				return err
			}
			a.log.Info().
				Int("staff", summary.Staff).
				Int("outputs", summary.Outputs).
				Int("submissions", summary.Submissions).
				Msg("Dataset imported")
			return a.write(cmd, summary)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML dataset (required)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
