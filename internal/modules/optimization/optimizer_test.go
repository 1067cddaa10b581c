package optimization

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aristath/refportfolio/internal/domain"
	"github.com/aristath/refportfolio/internal/modules/portfolio"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOptimizer() *Optimizer {
	demographics := portfolio.StaticDemographics{EligibleAuthors: 4, EqualityScore: 50, GenderScore: 0.8}
	return NewOptimizer(portfolio.NewCalculator(demographics, zerolog.Nop()), zerolog.Nop())
}

func TestOptimize_Balanced(t *testing.T) {
	opt := newTestOptimizer()

	result, err := opt.Optimize(filterPool(), DefaultConstraints(), nil)
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Found optimal portfolio using balanced strategy", result.Message)
	assert.Equal(t, StrategyBalanced, result.Strategy)
	assert.Equal(t, []string{"f1", "f2"}, ids(result.RecommendedOutputs))
	assert.Equal(t, 2, result.Count)
	assert.NotEmpty(t, result.RunID)
	require.NotNil(t, result.Metrics)
	assert.InDelta(t, 3.5, result.Metrics.PortfolioQuality, 1e-9)
	assert.InDelta(t, 0.5, result.Metrics.Representativeness, 1e-9)
	assert.Nil(t, result.Comparison, "no current submission means no diff")
}

func TestOptimize_EmptyStrategyDefaultsToBalanced(t *testing.T) {
	c := DefaultConstraints()
	c.Strategy = ""

	result, err := newTestOptimizer().Optimize(filterPool(), c, nil)
	require.NoError(t, err)
	assert.Equal(t, StrategyBalanced, result.Strategy)
	assert.Equal(t, StrategyBalanced, result.Constraints.Strategy)
}

func TestOptimize_NoOutputsMeetConstraints(t *testing.T) {
	c := DefaultConstraints()
	c.MaxAverageRisk = 0.05

	result, err := newTestOptimizer().Optimize(filterPool(), c, nil)
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, NoOutputsMessage, result.Message)
	assert.Empty(t, result.RecommendedOutputs)
	assert.NotNil(t, result.RecommendedOutputs)
	assert.Zero(t, result.Count)
	assert.Nil(t, result.Metrics)
}

func TestOptimize_EmptyPool(t *testing.T) {
	result, err := newTestOptimizer().Optimize(nil, DefaultConstraints(), nil)
	require.NoError(t, err)
	assert.False(t, result.Success)
}

func TestOptimize_MalformedInputFailsWholeRun(t *testing.T) {
	opt := newTestOptimizer()

	pool := filterPool()
	pool[3].OverallRisk = 1.5
	_, err := opt.Optimize(pool, DefaultConstraints(), nil)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)

	current := []domain.Output{output("x", "s", domain.QualityThreeStar, -0.1)}
	_, err = opt.Optimize(filterPool(), DefaultConstraints(), current)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)

	_, err = opt.Optimize(filterPool(), Constraints{MinCount: 3, MaxCount: 1}, nil)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestOptimize_InvalidWeights(t *testing.T) {
	opt := newTestOptimizer()
	opt.SetWeights(domain.PortfolioWeights{Quality: -1})

	_, err := opt.Optimize(filterPool(), DefaultConstraints(), nil)
	assert.ErrorIs(t, err, domain.ErrInvalidWeights)
}

func TestOptimize_DiffAgainstCurrent(t *testing.T) {
	pool := filterPool()
	current := []domain.Output{pool[1], pool[3]}

	result, err := newTestOptimizer().Optimize(pool, DefaultConstraints(), current)
	require.NoError(t, err)
	require.NotNil(t, result.Comparison)

	c := result.Comparison
	assert.True(t, c.HasCurrent)
	assert.Equal(t, []string{"f1"}, ids(c.ToAdd))
	assert.Equal(t, []string{"f4"}, ids(c.ToRemove))
	assert.Equal(t, 0, c.CountChange)
	assert.InDelta(t, 1.0, c.QualityChange, 1e-9)
	assert.True(t, c.QualityImproved)
	assert.InDelta(t, 0.05, c.RiskChange, 1e-9)
	assert.False(t, c.RiskImproved)
	require.NotNil(t, c.CurrentMetrics)
	assert.InDelta(t, 2.5, c.CurrentMetrics.PortfolioQuality, 1e-9)
}

func TestOptimize_EmptyCurrentSubmission(t *testing.T) {
	result, err := newTestOptimizer().Optimize(filterPool(), DefaultConstraints(), []domain.Output{})
	require.NoError(t, err)
	require.NotNil(t, result.Comparison)
	assert.False(t, result.Comparison.HasCurrent)
	assert.Equal(t, NoCurrentOutputsMessage, result.Comparison.Message)
}

func TestDiff_Thresholds(t *testing.T) {
	tests := []struct {
		name            string
		qualityChange   float64
		riskChange      float64
		qualityImproved bool
		riskImproved    bool
	}{
		{"at quality threshold is not improvement", 0.1, 0, false, false},
		{"above quality threshold", 0.11, 0, true, false},
		{"at risk threshold is not improvement", 0, -0.05, false, false},
		{"below risk threshold", 0, -0.06, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current := domain.Metrics{PortfolioQuality: 0, AverageRisk: 0.05}
			recommended := domain.Metrics{
				PortfolioQuality: current.PortfolioQuality + tt.qualityChange,
				AverageRisk:      current.AverageRisk + tt.riskChange,
			}
			c := diff(nil, nil, recommended, current)
			assert.Equal(t, tt.qualityImproved, c.QualityImproved)
			assert.Equal(t, tt.riskImproved, c.RiskImproved)
		})
	}
}

func TestDiff_DisjointAndIdenticalSets(t *testing.T) {
	opt := newTestOptimizer()
	a := []domain.Output{output("a", "s1", domain.QualityFourStar, 0.1)}
	b := []domain.Output{output("b", "s2", domain.QualityThreeStar, 0.2)}

	c, err := opt.Diff(a, b)
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, ids(c.ToAdd))
	assert.Equal(t, []string{"b"}, ids(c.ToRemove))

	c, err = opt.Diff(a, a)
	require.NoError(t, err)
	assert.Empty(t, c.ToAdd)
	assert.Empty(t, c.ToRemove)
	assert.Zero(t, c.QualityChange)
}

func TestOptimize_Deterministic(t *testing.T) {
	opt := newTestOptimizer()
	pool := append(strategyPool(), inclusivePool()...)
	for _, s := range Strategies() {
		c := open()
		c.Strategy = s
		c.MinCount = 4

		first, err := opt.Optimize(pool, c, pool[:3])
		require.NoError(t, err)
		second, err := opt.Optimize(pool, c, pool[:3])
		require.NoError(t, err)

		assert.NotEqual(t, first.RunID, second.RunID)
		if diff := cmp.Diff(first, second, cmpopts.IgnoreFields(Result{}, "RunID")); diff != "" {
			t.Errorf("%s not deterministic (-first +second):\n%s", s, diff)
		}
	}
}

func TestOptimize_DoesNotMutateInputs(t *testing.T) {
	pool := strategyPool()
	current := pool[:2]
	poolBefore := domain.CloneOutputs(pool)

	_, err := newTestOptimizer().Optimize(pool, open(), current)
	require.NoError(t, err)
	if diff := cmp.Diff(poolBefore, pool); diff != "" {
		t.Errorf("pool mutated (-before +after):\n%s", diff)
	}
}

func TestOptimize_RecommendationSatisfiesConstraints(t *testing.T) {
	pool := append(strategyPool(), filterPool()...)
	for _, s := range Strategies() {
		c := DefaultConstraints()
		c.Strategy = s
		c.MinQualityTier = 2

		result, err := newTestOptimizer().Optimize(pool, c, nil)
		require.NoError(t, err)
		for _, o := range result.RecommendedOutputs {
			assert.True(t, Satisfies(o, c), "%s recommended %s", s, o.ID)
		}
	}
}

func TestCompareStrategies(t *testing.T) {
	opt := newTestOptimizer()
	opt.SetParallelism(3)
	pool := append(strategyPool(), inclusivePool()...)
	c := open()
	c.Strategy = StrategyRiskAverse

	results, err := opt.CompareStrategies(context.Background(), pool, c, nil)
	require.NoError(t, err)
	require.Len(t, results, len(Strategies()))

	for _, s := range Strategies() {
		r, ok := results[s]
		require.True(t, ok, s)
		assert.Equal(t, s, r.Strategy)

		single := c
		single.Strategy = s
		expected, err := opt.Optimize(pool, single, nil)
		require.NoError(t, err)
		if diff := cmp.Diff(expected, r, cmpopts.IgnoreFields(Result{}, "RunID")); diff != "" {
			t.Errorf("%s differs from a standalone run (-want +got):\n%s", s, diff)
		}
	}
}

func TestCompareStrategies_FailsOnMalformedPool(t *testing.T) {
	pool := strategyPool()
	pool[0].PanelAlignment = 2

	results, err := newTestOptimizer().CompareStrategies(context.Background(), pool, open(), nil)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
	assert.Nil(t, results)
}

func TestCompareStrategies_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestOptimizer().CompareStrategies(ctx, strategyPool(), open(), nil)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunScenarios_Defaults(t *testing.T) {
	opt := newTestOptimizer()
	opt.SetParallelism(0)

	results, err := opt.RunScenarios(context.Background(), append(strategyPool(), filterPool()...), nil, nil)
	require.NoError(t, err)

	assert.Len(t, results, 4)
	for name, strategy := range map[string]Strategy{
		"Conservative": StrategyRiskAverse,
		"Balanced":     StrategyBalanced,
		"Ambitious":    StrategyQualityFocused,
		"Inclusive":    StrategyInclusive,
	} {
		r, ok := results[name]
		require.True(t, ok, name)
		assert.Equal(t, strategy, r.Strategy, name)
	}
	assert.InDelta(t, 0.40, results["Conservative"].Constraints.MaxAverageRisk, 1e-9)
}

func TestRunScenarios_RejectsDuplicateNames(t *testing.T) {
	scenarios := []Scenario{
		{Name: "Same", Constraints: DefaultConstraints()},
		{Name: "Same", Constraints: DefaultConstraints()},
	}
	_, err := newTestOptimizer().RunScenarios(context.Background(), strategyPool(), scenarios, nil)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)

	_, err = newTestOptimizer().RunScenarios(context.Background(), strategyPool(), []Scenario{{}}, nil)
	assert.ErrorIs(t, err, domain.ErrMalformedInput)
}

func TestDefaultScenarios(t *testing.T) {
	scenarios, err := DefaultScenarios()
	require.NoError(t, err)

	expected := []Scenario{
		{Name: "Conservative", Constraints: Constraints{MaxAverageRisk: 0.40, MinQualityTier: 3.0, RequireOACompliance: true, Strategy: StrategyRiskAverse}},
		{Name: "Balanced", Constraints: Constraints{MaxAverageRisk: 0.60, MinQualityTier: 2.5, RequireOACompliance: true, Strategy: StrategyBalanced}},
		{Name: "Ambitious", Constraints: Constraints{MaxAverageRisk: 0.75, MinQualityTier: 2.0, RequireOACompliance: true, Strategy: StrategyQualityFocused}},
		{Name: "Inclusive", Constraints: Constraints{MaxAverageRisk: 0.65, MinQualityTier: 2.5, RequireOACompliance: true, Strategy: StrategyInclusive}},
	}
	if diff := cmp.Diff(expected, scenarios); diff != "" {
		t.Errorf("default scenarios mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadScenarios(t *testing.T) {
	input := `
scenarios:
  - name: Tight
    max_count: 3
    strategy: risk_averse
  - name: Open
    max_risk: 1.0
    min_quality: 0
    require_oa_compliance: false
`
	scenarios, err := LoadScenarios(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	tight := scenarios[0]
	assert.Equal(t, "Tight", tight.Name)
	assert.Equal(t, 3, tight.MaxCount)
	assert.Equal(t, StrategyRiskAverse, tight.Strategy)
	assert.InDelta(t, DefaultMaxAverageRisk, tight.MaxAverageRisk, 1e-9, "omitted fields keep defaults")
	assert.True(t, tight.RequireOACompliance)

	open := scenarios[1]
	assert.False(t, open.RequireOACompliance)
	assert.Zero(t, open.MinQualityTier)
	assert.Equal(t, StrategyBalanced, open.Strategy)
}

func TestLoadScenarios_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty file":        "",
		"no scenarios":      "scenarios: []\n",
		"missing name":      "scenarios:\n  - max_risk: 0.5\n",
		"duplicate name":    "scenarios:\n  - name: A\n  - name: A\n",
		"risk out of range": "scenarios:\n  - name: A\n    max_risk: 1.5\n",
		"unknown strategy":  "scenarios:\n  - name: A\n    strategy: greedy\n",
		"not yaml":          "scenarios: [",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadScenarios(strings.NewReader(input))
			assert.ErrorIs(t, err, domain.ErrMalformedInput)
		})
	}
}
