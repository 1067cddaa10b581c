package portfolio

import (
	"fmt"
	"time"

	"github.com/aristath/refportfolio/internal/domain"
	"github.com/aristath/refportfolio/pkg/formulas"
	"github.com/rs/zerolog"
)

// Calculator computes portfolio metrics. It holds no results between calls.
type Calculator struct {
	demographics Demographics
	clock        func() time.Time
	log          zerolog.Logger
}

// NewCalculator creates a metrics calculator. demographics may be nil, in
// which case representativeness, equality and gender balance score 0.
func NewCalculator(demographics Demographics, log zerolog.Logger) *Calculator {
	return &Calculator{
		demographics: demographics,
		clock:        func() time.Time { return time.Now().UTC() },
		log:          log.With().Str("component", "portfolio_metrics").Logger(),
	}
}

// SetClock replaces the clock used for the metrics-calculated stamp.
func (c *Calculator) SetClock(clock func() time.Time) {
	if clock != nil {
		c.clock = clock
	}
}

// Calculate scores the outputs. Malformed outputs, weights, or collaborator
// answers fail the whole call.
func (c *Calculator) Calculate(outputs []domain.Output, weights domain.PortfolioWeights) (domain.Metrics, error) {
	if err := domain.ValidateOutputs(outputs); err != nil {
		return domain.Metrics{}, err
	}
	if err := weights.Validate(); err != nil {
		return domain.Metrics{}, err
	}

	authors := domain.DistinctAuthors(outputs)
	rep, eq, gb, err := demographicScores(c.demographics, authors)
	if err != nil {
		return domain.Metrics{}, err
	}

	oa, interdisciplinary := countFlags(outputs)
	m := domain.Metrics{
		PortfolioQuality:       PortfolioQuality(outputs),
		PortfolioRisk:          PortfolioRisk(outputs),
		Representativeness:     rep,
		Equality:               eq,
		GenderBalance:          gb,
		TotalOutputs:           len(outputs),
		AverageRisk:            AverageRisk(outputs),
		StaffCount:             len(authors),
		OAIssues:               oa,
		InterdisciplinaryShare: formulas.Ratio(float64(interdisciplinary), float64(len(outputs))),
		RiskDistribution:       RiskDistributionOf(outputs),
		QualityDistribution:    QualityDistributionOf(outputs),
	}
	m.OverallScore = OverallScore(m, weights)
	m.Readiness = Readiness(outputs, m.PortfolioQuality)

	c.log.Debug().
		Int("outputs", m.TotalOutputs).
		Float64("quality", m.PortfolioQuality).
		Float64("risk", m.PortfolioRisk).
		Float64("overall_score", m.OverallScore).
		Bool("ready", m.Readiness.Ready).
		Msg("Calculated portfolio metrics")

	return m, nil
}

// Recompute refreshes the submission's derived metrics from its current
// outputs and stamps MetricsLastCalculated. On error the submission is left
// untouched.
func (c *Calculator) Recompute(s *domain.Submission) error {
	m, err := c.Calculate(s.Outputs, s.Weights)
	if err != nil {
		return fmt.Errorf("failed to recompute submission %s: %w", s.ID, err)
	}
	now := c.clock()
	s.Metrics = &m
	s.MetricsLastCalculated = &now
	return nil
}
