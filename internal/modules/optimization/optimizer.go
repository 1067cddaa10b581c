package optimization

import (
	"context"
	"fmt"
	"sync"

	"github.com/aristath/refportfolio/internal/domain"
	"github.com/aristath/refportfolio/internal/modules/portfolio"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// NoOutputsMessage is reported when filtering leaves nothing to select.
const NoOutputsMessage = "No outputs meet the specified constraints"

// Result is the outcome of one optimization run.
type Result struct {
	RunID              string          `json:"run_id" yaml:"run_id" msgpack:"run_id"`
	Success            bool            `json:"success" yaml:"success" msgpack:"success"`
	Message            string          `json:"message" yaml:"message" msgpack:"message"`
	Strategy           Strategy        `json:"strategy" yaml:"strategy" msgpack:"strategy"`
	Constraints        Constraints     `json:"constraints" yaml:"constraints" msgpack:"constraints"`
	RecommendedOutputs []domain.Output `json:"recommended_outputs" yaml:"recommended_outputs" msgpack:"recommended_outputs"`
	Count              int             `json:"count" yaml:"count" msgpack:"count"`
	Metrics            *domain.Metrics `json:"metrics,omitempty" yaml:"metrics,omitempty" msgpack:"metrics,omitempty"`
	Comparison         *Comparison     `json:"comparison,omitempty" yaml:"comparison,omitempty" msgpack:"comparison,omitempty"`
}

// Optimizer runs Filter -> Select -> Score -> Diff. It keeps no state
// between calls beyond its configuration.
type Optimizer struct {
	metrics     *portfolio.Calculator
	weights     domain.PortfolioWeights
	parallelism int
	log         zerolog.Logger
}

// NewOptimizer creates an optimizer scoring selections with metrics.
func NewOptimizer(metrics *portfolio.Calculator, log zerolog.Logger) *Optimizer {
	return &Optimizer{
		metrics:     metrics,
		weights:     domain.DefaultPortfolioWeights(),
		parallelism: 1,
		log:         log.With().Str("component", "optimizer").Logger(),
	}
}

// SetWeights sets the portfolio weights used for the overall score.
func (o *Optimizer) SetWeights(w domain.PortfolioWeights) {
	o.weights = w
}

// SetParallelism bounds the number of concurrent runs in batch operations.
// Values below 1 run sequentially.
func (o *Optimizer) SetParallelism(n int) {
	if n < 1 {
		n = 1
	}
	o.parallelism = n
}

// Optimize recommends a subset of pool under c. current is the existing
// submission's outputs; nil skips the diff. An empty filtered pool is not an
// error: it yields an unsuccessful Result with no recommendation.
func (o *Optimizer) Optimize(pool []domain.Output, c Constraints, current []domain.Output) (Result, error) {
	if err := c.Validate(); err != nil {
		return Result{}, fmt.Errorf("invalid constraints: %w", err)
	}
	if err := domain.ValidateOutputs(pool); err != nil {
		return Result{}, fmt.Errorf("invalid output pool: %w", err)
	}
	if err := domain.ValidateOutputs(current); err != nil {
		return Result{}, fmt.Errorf("invalid current submission: %w", err)
	}

	strategy := c.strategy()
	c.Strategy = strategy
	result := Result{
		RunID:              uuid.New().String(),
		Strategy:           strategy,
		Constraints:        c,
		RecommendedOutputs: []domain.Output{},
	}

	filtered := Filter(pool, c)
	if len(filtered) == 0 {
		result.Message = NoOutputsMessage
		o.log.Info().
			Str("strategy", string(strategy)).
			Int("pool", len(pool)).
			Msg("No outputs meet constraints")
		return result, nil
	}

	recommended := selectors[strategy](filtered, c)

	metrics, err := o.metrics.Calculate(recommended, o.weights)
	if err != nil {
		return Result{}, fmt.Errorf("failed to score recommendation: %w", err)
	}

	result.Success = true
	result.Message = fmt.Sprintf("Found optimal portfolio using %s strategy", strategy)
	result.RecommendedOutputs = recommended
	result.Count = len(recommended)
	result.Metrics = &metrics

	if current != nil {
		comparison, err := o.compare(recommended, current, metrics)
		if err != nil {
			return Result{}, err
		}
		result.Comparison = &comparison
	}

	o.log.Info().
		Str("run_id", result.RunID).
		Str("strategy", string(strategy)).
		Int("pool", len(pool)).
		Int("filtered", len(filtered)).
		Int("recommended", result.Count).
		Float64("quality", metrics.PortfolioQuality).
		Float64("overall_score", metrics.OverallScore).
		Msg("Optimization complete")

	return result, nil
}

// Diff compares a recommendation against the current submission outputs.
func (o *Optimizer) Diff(recommended, current []domain.Output) (Comparison, error) {
	metrics, err := o.metrics.Calculate(recommended, o.weights)
	if err != nil {
		return Comparison{}, fmt.Errorf("failed to score recommendation: %w", err)
	}
	return o.compare(recommended, current, metrics)
}

func (o *Optimizer) compare(recommended, current []domain.Output, recommendedMetrics domain.Metrics) (Comparison, error) {
	if len(current) == 0 {
		return Comparison{HasCurrent: false, Message: NoCurrentOutputsMessage}, nil
	}
	currentMetrics, err := o.metrics.Calculate(current, o.weights)
	if err != nil {
		return Comparison{}, fmt.Errorf("failed to score current submission: %w", err)
	}
	return diff(recommended, current, recommendedMetrics, currentMetrics), nil
}

// CompareStrategies runs every strategy with identical constraints, keyed
// by strategy. c.Strategy is ignored.
func (o *Optimizer) CompareStrategies(ctx context.Context, pool []domain.Output, c Constraints, current []domain.Output) (map[Strategy]Result, error) {
	runs := make([]namedRun, 0, len(Strategies()))
	for _, s := range Strategies() {
		sc := c
		sc.Strategy = s
		runs = append(runs, namedRun{name: string(s), constraints: sc})
	}

	results, err := o.runAll(ctx, pool, runs, current)
	if err != nil {
		return nil, err
	}

	byStrategy := make(map[Strategy]Result, len(results))
	for name, r := range results {
		byStrategy[Strategy(name)] = r
	}
	return byStrategy, nil
}

// RunScenarios runs the full pipeline for every named scenario, keyed by
// scenario name. A nil slice runs the default scenarios.
func (o *Optimizer) RunScenarios(ctx context.Context, pool []domain.Output, scenarios []Scenario, current []domain.Output) (map[string]Result, error) {
	if scenarios == nil {
		defaults, err := DefaultScenarios()
		if err != nil {
			return nil, err
		}
		scenarios = defaults
	}

	seen := make(map[string]bool, len(scenarios))
	runs := make([]namedRun, 0, len(scenarios))
	for _, s := range scenarios {
		if s.Name == "" {
			return nil, fmt.Errorf("%w: scenario without a name", domain.ErrMalformedInput)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: duplicate scenario %q", domain.ErrMalformedInput, s.Name)
		}
		seen[s.Name] = true
		runs = append(runs, namedRun{name: s.Name, constraints: s.Constraints})
	}

	return o.runAll(ctx, pool, runs, current)
}

type namedRun struct {
	name        string
	constraints Constraints
}

// runAll executes independent runs, each on a private copy of the inputs.
// Any failed run fails the whole batch.
func (o *Optimizer) runAll(ctx context.Context, pool []domain.Output, runs []namedRun, current []domain.Output) (map[string]Result, error) {
	var mu sync.Mutex
	results := make(map[string]Result, len(runs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.parallelism)
	for _, run := range runs {
		run := run
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := o.Optimize(domain.CloneOutputs(pool), run.constraints, domain.CloneOutputs(current))
			if err != nil {
				return fmt.Errorf("run %q: %w", run.name, err)
			}
			mu.Lock()
			results[run.name] = r
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
