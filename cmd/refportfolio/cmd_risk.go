package main

import (
	"fmt"

	"github.com/aristath/refportfolio/internal/modules/risk"
	"github.com/spf13/cobra"
)

func newRiskCmd(root *rootFlags) *cobra.Command {
	var outputID string
	cmd := &cobra.Command{
		Use:   "risk",
		Short: "Report the stored risk of outputs",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			if outputID != "" {
				o, err := a.container.OutputRepo.GetByID(outputID)
				if err != nil {
					return err
				}
				if o == nil {
					return fmt.Errorf("output %q not found", outputID)
				}
				return a.write(cmd, risk.Summarize(*o))
			}

			outputs, err := a.container.OutputRepo.List()
			if err != nil {
				return err
			}
			summaries := make([]risk.Summary, 0, len(outputs))
			for _, o := range outputs {
				summaries = append(summaries, risk.Summarize(o))
			}
			return a.write(cmd, summaries)
		},
	}
	cmd.Flags().StringVar(&outputID, "output-id", "", "Report a single output")
	return cmd
}
