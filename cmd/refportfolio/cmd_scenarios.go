package main

import (
	"fmt"
	"os"

	"github.com/aristath/refportfolio/internal/modules/optimization"
	"github.com/spf13/cobra"
)

func newScenariosCmd(root *rootFlags) *cobra.Command {
	var file, submission string
	cmd := &cobra.Command{
		Use:   "scenarios",
		Short: "Run a what-if sweep over named constraint sets",
		Long: "Runs each scenario against the stored outputs. Without --file the built-in\n" +
			"Conservative, Balanced, Ambitious and Inclusive scenarios are used.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var scenarios []optimization.Scenario
			if file != "" {
				fh, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("open scenarios: %w", err)
				}
				scenarios, err = optimization.LoadScenarios(fh)
				fh.Close()
				if err != nil {
					return err
				}
			}

			a, err := openApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			pool, current, err := a.pool(submission)
			if err != nil {
				return err
			}
			results, err := a.container.Optimizer.RunScenarios(cmd.Context(), pool, scenarios, current)
			if err != nil {
				return err
			}
			return a.write(cmd, results)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML scenario file")
	cmd.Flags().StringVar(&submission, "submission", "", "Compare against this stored submission")
	return cmd
}
