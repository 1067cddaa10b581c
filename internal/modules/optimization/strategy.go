package optimization

import (
	"fmt"
	"strings"
)

// Strategy is one of the four deterministic selection algorithms.
type Strategy string

const (
	StrategyBalanced       Strategy = "balanced"
	StrategyQualityFocused Strategy = "quality-focused"
	StrategyRiskAverse     Strategy = "risk-averse"
	StrategyInclusive      Strategy = "inclusive"
)

// Strategies returns every strategy in comparison order.
func Strategies() []Strategy {
	return []Strategy{StrategyBalanced, StrategyQualityFocused, StrategyRiskAverse, StrategyInclusive}
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	_, ok := selectors[s]
	return ok
}

func (s Strategy) String() string {
	return string(s)
}

// ParseStrategy accepts hyphenated or underscored names, case-insensitive.
// An empty name selects the balanced strategy.
func ParseStrategy(name string) (Strategy, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "_", "-")
	if normalized == "" {
		return StrategyBalanced, nil
	}
	s := Strategy(normalized)
	if !s.Valid() {
		return "", fmt.Errorf("unknown strategy %q (available: %s)", name, strategyNames())
	}
	return s, nil
}

// UnmarshalText lets strategies be decoded from YAML and flags.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func strategyNames() string {
	names := make([]string, 0, len(selectors))
	for _, s := range Strategies() {
		names = append(names, string(s))
	}
	return strings.Join(names, ", ")
}
