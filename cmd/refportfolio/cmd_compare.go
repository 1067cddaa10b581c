package main

import "github.com/spf13/cobra"

func newCompareCmd(root *rootFlags) *cobra.Command {
	flags := &constraintFlags{}
	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Run every selection strategy under the same constraints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := openApp(cmd, root)
			if err != nil {
				return err
			}
			defer a.Close()

			c, err := flags.constraints(cmd, a.cfg)
			if err != nil {
				return err
			}
			pool, current, err := a.pool(flags.submission)
			if err != nil {
				return err
			}

			results, err := a.container.Optimizer.CompareStrategies(cmd.Context(), pool, c, current)
			if err != nil {
				return err
			}
			return a.write(cmd, results)
		},
	}
	addConstraintFlags(cmd, flags, false)
	return cmd
}
