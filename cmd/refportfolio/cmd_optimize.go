package main

import (
	"fmt"

	"github.com/aristath/refportfolio/internal/config"
	"github.com/aristath/refportfolio/internal/domain"
	"github.com/aristath/refportfolio/internal/modules/optimization"
	"github.com/spf13/cobra"
)

// constraintFlags override the configured constraint defaults. Only flags
// the user actually set are applied.
type constraintFlags struct {
	submission string
	strategy   string
	min        int
	max        int
	maxRisk    float64
	minQuality float64
	allowOA    bool
}

func addConstraintFlags(cmd *cobra.Command, f *constraintFlags, withStrategy bool) {
	fs := cmd.Flags()
	fs.StringVar(&f.submission, "submission", "", "Compare against this stored submission")
	if withStrategy {
		fs.StringVar(&f.strategy, "strategy", "", "Selection strategy: balanced, quality-focused, risk-averse, inclusive")
	}
	fs.IntVar(&f.min, "min", 0, "Minimum number of outputs (0 = unset)")
	fs.IntVar(&f.max, "max", 0, "Maximum number of outputs (0 = unset)")
	fs.Float64Var(&f.maxRisk, "max-risk", 0, "Maximum overall risk of a selected output")
	fs.Float64Var(&f.minQuality, "min-quality", 0, "Minimum quality tier (0-4)")
	fs.BoolVar(&f.allowOA, "allow-oa", false, "Allow outputs with open access compliance risk")
}

func (f *constraintFlags) constraints(cmd *cobra.Command, cfg *config.Config) (optimization.Constraints, error) {
	strategy, err := optimization.ParseStrategy(cfg.Strategy)
	if err != nil {
		return optimization.Constraints{}, fmt.Errorf("config: %w", err)
	}
	c := optimization.Constraints{
		MaxAverageRisk:      cfg.MaxRisk,
		MinQualityTier:      cfg.MinQuality,
		RequireOACompliance: cfg.RequireOA,
		Strategy:            strategy,
	}

	fs := cmd.Flags()
	if fs.Changed("strategy") {
		if c.Strategy, err = optimization.ParseStrategy(f.strategy); err != nil {
			return c, err
		}
	}
	if fs.Changed("min") {
		c.MinCount = f.min
	}
	if fs.Changed("max") {
		c.MaxCount = f.max
	}
	if fs.Changed("max-risk") {
		c.MaxAverageRisk = f.maxRisk
	}
	if fs.Changed("min-quality") {
		c.MinQualityTier = f.minQuality
	}
	if fs.Changed("allow-oa") {
		c.RequireOACompliance = !f.allowOA
	}
	return c, c.Validate()
}

// pool loads every stored output and, when a submission is named, its
// current members.
func (a *app) pool(submissionID string) (pool, current []domain.Output, err error) {
	pool, err = a.container.OutputRepo.List()
	if err != nil {
		return nil, nil, err
	}
	if submissionID == "" {
		return pool, nil, nil
	}
	sub, err := a.submission(submissionID)
	if err != nil {
		return nil, nil, err
	}
	if sub.Outputs == nil {
		sub.Outputs = []domain.Output{}
	}
	return pool, sub.Outputs, nil
}

func (a *app) submission(id string) (*domain.Submission, error) {
	sub, err := a.container.SubmissionRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, fmt.Errorf("submission %q not found", id)
	}
	return sub, nil
}

func newOptimizeCmd(root *rootFlags) *cobra.Command {
	flags := &constraintFlags{}
	cmd := &cobra.Command{
		Use:   "optimize",
		Short: "Recommend outputs for a submission under the given constraints",
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

			result, err := a.container.Optimizer.Optimize(pool, c, current)
			if err != nil {
				return err
			}
			return a.write(cmd, result)
		},
	}
	addConstraintFlags(cmd, flags, true)
	return cmd
}
