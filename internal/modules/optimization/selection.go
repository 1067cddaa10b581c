package optimization

import (
	"sort"

	"github.com/aristath/refportfolio/internal/domain"
	"github.com/aristath/refportfolio/internal/modules/risk"
)

// Threshold selection used when neither MinCount nor MaxCount is set.
const (
	QualityFocusedMinQuality = 3
	RiskAverseMaxRisk        = 0.50
	BalancedMinScore         = 2.5
)

// Balanced composite weights.
const (
	balancedQualityWeight  = 0.40
	balancedRiskWeight     = 0.35
	balancedPanelWeight    = 0.15
	balancedPrestigeWeight = 0.10
)

// selector picks a subset of an already filtered pool. Implementations must
// not mutate the pool and must break ties by input order.
type selector func(filtered []domain.Output, c Constraints) []domain.Output

var selectors = map[Strategy]selector{
	StrategyBalanced:       selectBalanced,
	StrategyQualityFocused: selectQualityFocused,
	StrategyRiskAverse:     selectRiskAverse,
	StrategyInclusive:      selectInclusive,
}

func quality(o domain.Output) int {
	return risk.QualityValue(o.QualityTier)
}

// BalancedScore is the per-output composite of the balanced strategy, on a
// 0-4 scale.
func BalancedScore(o domain.Output) float64 {
	return float64(quality(o))*balancedQualityWeight +
		(1-o.OverallRisk)*4*balancedRiskWeight +
		o.PanelAlignment*4*balancedPanelWeight +
		o.VenuePrestige*4*balancedPrestigeWeight
}

// InclusiveScore ranks outputs within and across authors for the inclusive
// strategy: quality dominates, risk breaks near-ties.
func InclusiveScore(o domain.Output) float64 {
	return float64(quality(o))*10 - o.OverallRisk
}

// sortedCopy returns a stably sorted copy of outputs.
func sortedCopy(outputs []domain.Output, less func(a, b domain.Output) bool) []domain.Output {
	sorted := make([]domain.Output, len(outputs))
	copy(sorted, outputs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return less(sorted[i], sorted[j])
	})
	return sorted
}

// truncate applies the count rule shared by the ranking strategies: cut to
// MaxCount if set, else MinCount if set. ok is false when neither is set.
func truncate(sorted []domain.Output, c Constraints) ([]domain.Output, bool) {
	limit := 0
	switch {
	case c.MaxCount > 0:
		limit = c.MaxCount
	case c.MinCount > 0:
		limit = c.MinCount
	default:
		return nil, false
	}
	if limit > len(sorted) {
		limit = len(sorted)
	}
	return sorted[:limit], true
}

func keep(outputs []domain.Output, pred func(domain.Output) bool) []domain.Output {
	kept := make([]domain.Output, 0, len(outputs))
	for _, o := range outputs {
		if pred(o) {
			kept = append(kept, o)
		}
	}
	return kept
}

func selectQualityFocused(filtered []domain.Output, c Constraints) []domain.Output {
	sorted := sortedCopy(filtered, func(a, b domain.Output) bool {
		if qa, qb := quality(a), quality(b); qa != qb {
			return qa > qb
		}
		return a.OverallRisk < b.OverallRisk
	})
	if selected, ok := truncate(sorted, c); ok {
		return selected
	}
	return keep(sorted, func(o domain.Output) bool { return quality(o) >= QualityFocusedMinQuality })
}

func selectRiskAverse(filtered []domain.Output, c Constraints) []domain.Output {
	sorted := sortedCopy(filtered, func(a, b domain.Output) bool {
		if a.OverallRisk != b.OverallRisk {
			return a.OverallRisk < b.OverallRisk
		}
		return quality(a) > quality(b)
	})
	if selected, ok := truncate(sorted, c); ok {
		return selected
	}
	return keep(sorted, func(o domain.Output) bool { return o.OverallRisk < RiskAverseMaxRisk })
}

func selectBalanced(filtered []domain.Output, c Constraints) []domain.Output {
	sorted := sortedCopy(filtered, func(a, b domain.Output) bool {
		return BalancedScore(a) > BalancedScore(b)
	})
	if selected, ok := truncate(sorted, c); ok {
		return selected
	}
	return keep(sorted, func(o domain.Output) bool { return BalancedScore(o) >= BalancedMinScore })
}

// selectInclusive takes the best output of every author, then trims to
// MaxCount or tops up to MinCount from the remaining outputs. The top-up uses
// the same ordering as the first pass, so prolific authors may fill it.
func selectInclusive(filtered []domain.Output, c Constraints) []domain.Output {
	best := make(map[string]int)
	authors := make([]string, 0)
	for i, o := range filtered {
		current, seen := best[o.AuthorID]
		if !seen {
			authors = append(authors, o.AuthorID)
			best[o.AuthorID] = i
			continue
		}
		if InclusiveScore(o) > InclusiveScore(filtered[current]) {
			best[o.AuthorID] = i
		}
	}

	picked := make(map[int]bool, len(authors))
	representatives := make([]domain.Output, 0, len(authors))
	for _, a := range authors {
		picked[best[a]] = true
		representatives = append(representatives, filtered[best[a]])
	}
	byScore := func(a, b domain.Output) bool { return InclusiveScore(a) > InclusiveScore(b) }
	selected := sortedCopy(representatives, byScore)

	switch {
	case c.MaxCount > 0 && len(selected) > c.MaxCount:
		return selected[:c.MaxCount]
	case c.MinCount > 0 && len(selected) < c.MinCount:
		remaining := make([]domain.Output, 0, len(filtered)-len(selected))
		for i, o := range filtered {
			if !picked[i] {
				remaining = append(remaining, o)
			}
		}
		remaining = sortedCopy(remaining, byScore)
		needed := c.MinCount - len(selected)
		if needed > len(remaining) {
			needed = len(remaining)
		}
		return append(selected, remaining[:needed]...)
	}
	return selected
}
