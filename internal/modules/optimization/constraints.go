// Package optimization recommends which research outputs to include in a
// submission: it filters the pool by hard constraints, applies a selection
// strategy, scores the selection, and diffs it against a current submission.
package optimization

import (
	"fmt"

	"github.com/aristath/refportfolio/internal/domain"
	"github.com/aristath/refportfolio/internal/modules/risk"
)

// Constraint defaults.
const (
	DefaultMaxAverageRisk = 0.60
	DefaultMinQualityTier = 3.0
)

// Constraints are the hard limits of one optimization run.
// A zero MinCount or MaxCount means the bound is not set.
type Constraints struct {
	MinCount            int      `json:"min_count,omitempty" yaml:"min_count,omitempty" msgpack:"min_count,omitempty"`
	MaxCount            int      `json:"max_count,omitempty" yaml:"max_count,omitempty" msgpack:"max_count,omitempty"`
	MaxAverageRisk      float64  `json:"max_risk" yaml:"max_risk" msgpack:"max_risk"`
	MinQualityTier      float64  `json:"min_quality" yaml:"min_quality" msgpack:"min_quality"`
	RequireOACompliance bool     `json:"require_oa_compliance" yaml:"require_oa_compliance" msgpack:"require_oa_compliance"`
	Strategy            Strategy `json:"strategy" yaml:"strategy" msgpack:"strategy"`
}

// DefaultConstraints returns the default constraint set.
func DefaultConstraints() Constraints {
	return Constraints{
		MaxAverageRisk:      DefaultMaxAverageRisk,
		MinQualityTier:      DefaultMinQualityTier,
		RequireOACompliance: true,
		Strategy:            StrategyBalanced,
	}
}

// Validate checks counts, ranges and the strategy name.
func (c Constraints) Validate() error {
	if c.MinCount < 0 {
		return domain.NewValidationError(domain.ErrMalformedInput, "", "min_count", float64(c.MinCount), "must be non-negative")
	}
	if c.MaxCount < 0 {
		return domain.NewValidationError(domain.ErrMalformedInput, "", "max_count", float64(c.MaxCount), "must be non-negative")
	}
	if c.MinCount > 0 && c.MaxCount > 0 && c.MinCount > c.MaxCount {
		return domain.NewValidationError(domain.ErrMalformedInput, "", "min_count", float64(c.MinCount),
			fmt.Sprintf("must not exceed max_count %d", c.MaxCount))
	}
	if err := domain.CheckRange("max_risk", c.MaxAverageRisk, 0, 1); err != nil {
		return err
	}
	if err := domain.CheckRange("min_quality", c.MinQualityTier, 0, 4); err != nil {
		return err
	}
	if c.Strategy != "" && !c.Strategy.Valid() {
		return fmt.Errorf("%w: unknown strategy %q", domain.ErrMalformedInput, c.Strategy)
	}
	return nil
}

// strategy returns the effective strategy, defaulting to balanced.
func (c Constraints) strategy() Strategy {
	if c.Strategy == "" {
		return StrategyBalanced
	}
	return c.Strategy
}

// qualityCutoff maps the minimum quality tier onto the star cutoffs:
// 4 keeps 4* only, 3 keeps 3* and 4*, 2 keeps 2* or better. Below 2 no
// quality filter applies.
func qualityCutoff(minQualityTier float64) int {
	switch {
	case minQualityTier >= 4:
		return 4
	case minQualityTier >= 3:
		return 3
	case minQualityTier >= 2:
		return 2
	default:
		return 0
	}
}

// Filter keeps the outputs that satisfy the hard constraints, preserving
// input order.
func Filter(pool []domain.Output, c Constraints) []domain.Output {
	cutoff := qualityCutoff(c.MinQualityTier)
	filtered := make([]domain.Output, 0, len(pool))
	for _, o := range pool {
		if c.RequireOACompliance && o.OAComplianceRisk {
			continue
		}
		if o.OverallRisk > c.MaxAverageRisk {
			continue
		}
		if risk.QualityValue(o.QualityTier) < cutoff {
			continue
		}
		filtered = append(filtered, o)
	}
	return filtered
}

// Satisfies reports whether o passes the hard constraints of c.
func Satisfies(o domain.Output, c Constraints) bool {
	return len(Filter([]domain.Output{o}, c)) == 1
}
