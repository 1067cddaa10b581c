// Package risk computes the composite risk of a single research output.
package risk

import (
	"math"
	"time"

	"github.com/aristath/refportfolio/internal/domain"
	"github.com/aristath/refportfolio/pkg/formulas"
	"github.com/rs/zerolog"
)

const (
	// OAComplianceFloor is the minimum risk of an output with an open access
	// compliance concern. No other input lowers it.
	OAComplianceFloor = 0.85
	// ReadyRiskCeiling is the exclusive upper risk bound for submission readiness.
	ReadyRiskCeiling = 0.50
	// ReadyMinQuality is the minimum star value for submission readiness.
	ReadyMinQuality = 3
	// MitigationThreshold flags outputs that need a mitigation plan.
	MitigationThreshold = MediumHighThreshold
)

// CompositeRisk blends content and timeline risk with normalized weights.
// Zero total weight yields 0. The OA flag floors the result at OAComplianceFloor.
func CompositeRisk(contentRisk, timelineRisk, contentWeight, timelineWeight float64, oaComplianceRisk bool) float64 {
	risk := 0.0
	if total := contentWeight + timelineWeight; total != 0 {
		risk = formulas.WeightedSum(
			[]float64{contentRisk, timelineRisk},
			[]float64{contentWeight / total, timelineWeight / total},
		)
	}
	if oaComplianceRisk {
		risk = math.Max(risk, OAComplianceFloor)
	}
	return risk
}

// IsSubmissionReady reports whether an output is fit to submit on its own.
func IsSubmissionReady(o domain.Output) bool {
	return o.OverallRisk < ReadyRiskCeiling &&
		!o.OAComplianceRisk &&
		QualityValue(o.QualityTier) >= ReadyMinQuality
}

// Calculator recomputes derived risk fields on outputs.
type Calculator struct {
	clock        func() time.Time
	autoTimeline bool
	log          zerolog.Logger
}

// NewCalculator creates a risk calculator using the wall clock.
func NewCalculator(log zerolog.Logger) *Calculator {
	return &Calculator{
		clock: func() time.Time { return time.Now().UTC() },
		log:   log.With().Str("component", "risk_calculator").Logger(),
	}
}

// SetClock replaces the clock used for the last-calculated stamp.
func (c *Calculator) SetClock(clock func() time.Time) {
	if clock != nil {
		c.clock = clock
	}
}

// SetAutoTimeline makes Recompute derive timeline risk from lifecycle status.
func (c *Calculator) SetAutoTimeline(enabled bool) {
	c.autoTimeline = enabled
}

// Recompute validates o, writes its OverallRisk and stamps RiskLastCalculated.
// Calling it twice on an unchanged output yields the same risk.
func (c *Calculator) Recompute(o *domain.Output) (float64, error) {
	if err := o.Validate(); err != nil {
		return 0, err
	}
	c.apply(o)
	return o.OverallRisk, nil
}

func (c *Calculator) apply(o *domain.Output) {
	if c.autoTimeline {
		o.TimelineRisk = DeriveTimelineRisk(o.LifecycleStatus)
	}
	o.OverallRisk = CompositeRisk(o.ContentRisk, o.TimelineRisk, o.RiskWeights.Content, o.RiskWeights.Timeline, o.OAComplianceRisk)
	now := c.clock()
	o.RiskLastCalculated = &now

	c.log.Debug().
		Str("output_id", o.ID).
		Float64("content_risk", o.ContentRisk).
		Float64("timeline_risk", o.TimelineRisk).
		Bool("oa_compliance_risk", o.OAComplianceRisk).
		Float64("overall_risk", o.OverallRisk).
		Msg("Recomputed output risk")
}

// BatchSummary reports the outcome of a batch recompute.
type BatchSummary struct {
	Updated     int     `json:"updated" yaml:"updated" msgpack:"updated"`
	AverageRisk float64 `json:"avg_risk" yaml:"avg_risk" msgpack:"avg_risk"`
	HighRisk    int     `json:"high_risk" yaml:"high_risk" msgpack:"high_risk"`
	LowRisk     int     `json:"low_risk" yaml:"low_risk" msgpack:"low_risk"`
}

// RecomputeAll recomputes every output in place. All outputs are validated
// before any is touched, so a malformed record leaves the slice unchanged.
func (c *Calculator) RecomputeAll(outputs []domain.Output) (BatchSummary, error) {
	if err := domain.ValidateOutputs(outputs); err != nil {
		return BatchSummary{}, err
	}

	risks := make([]float64, 0, len(outputs))
	summary := BatchSummary{}
	for i := range outputs {
		c.apply(&outputs[i])
		r := outputs[i].OverallRisk
		risks = append(risks, r)
		switch TierFor(r) {
		case TierHigh:
			summary.HighRisk++
		case TierLow:
			summary.LowRisk++
		}
	}
	summary.Updated = len(outputs)
	summary.AverageRisk = formulas.Mean(risks)

	c.log.Info().
		Int("updated", summary.Updated).
		Float64("avg_risk", summary.AverageRisk).
		Int("high_risk", summary.HighRisk).
		Int("low_risk", summary.LowRisk).
		Msg("Recomputed output risks")

	return summary, nil
}
