package domain

import "time"

// Default portfolio weights.
const (
	DefaultWeightQuality            = 0.40
	DefaultWeightRisk               = 0.25
	DefaultWeightRepresentativeness = 0.15
	DefaultWeightEquality           = 0.10
	DefaultWeightGenderBalance      = 0.10
)

// PortfolioWeights configures the overall portfolio score.
// Weights are normalized at score time and need not sum to 1.
type PortfolioWeights struct {
	Quality            float64 `json:"quality" yaml:"quality" msgpack:"quality"`
	Risk               float64 `json:"risk" yaml:"risk" msgpack:"risk"`
	Representativeness float64 `json:"representativeness" yaml:"representativeness" msgpack:"representativeness"`
	Equality           float64 `json:"equality" yaml:"equality" msgpack:"equality"`
	GenderBalance      float64 `json:"gender_balance" yaml:"gender_balance" msgpack:"gender_balance"`
}

// DefaultPortfolioWeights returns the 40/25/15/10/10 split.
func DefaultPortfolioWeights() PortfolioWeights {
	return PortfolioWeights{
		Quality:            DefaultWeightQuality,
		Risk:               DefaultWeightRisk,
		Representativeness: DefaultWeightRepresentativeness,
		Equality:           DefaultWeightEquality,
		GenderBalance:      DefaultWeightGenderBalance,
	}
}

// Slice returns the weights in quality, risk, representativeness,
// equality, gender balance order.
func (w PortfolioWeights) Slice() []float64 {
	return []float64{w.Quality, w.Risk, w.Representativeness, w.Equality, w.GenderBalance}
}

// Validate rejects negative and non-finite weights.
func (w PortfolioWeights) Validate() error {
	names := []string{"weight_quality", "weight_risk", "weight_representativeness", "weight_equality", "weight_gender_balance"}
	for i, v := range w.Slice() {
		if !validWeight(v) {
			return NewValidationError(ErrInvalidWeights, "", names[i], v, "must be finite and non-negative")
		}
	}
	return nil
}

// RiskDistribution counts outputs per risk tier.
type RiskDistribution struct {
	Low        int `json:"low" yaml:"low" msgpack:"low"`
	MediumLow  int `json:"medium_low" yaml:"medium_low" msgpack:"medium_low"`
	MediumHigh int `json:"medium_high" yaml:"medium_high" msgpack:"medium_high"`
	High       int `json:"high" yaml:"high" msgpack:"high"`
}

// QualityDistribution counts outputs per star rating.
type QualityDistribution struct {
	FourStar     int `json:"4*" yaml:"4*" msgpack:"4*"`
	ThreeStar    int `json:"3*" yaml:"3*" msgpack:"3*"`
	TwoStar      int `json:"2*" yaml:"2*" msgpack:"2*"`
	OneStar      int `json:"1*" yaml:"1*" msgpack:"1*"`
	Unclassified int `json:"unclassified" yaml:"unclassified" msgpack:"unclassified"`
}

// Readiness is the submission fitness judgment with every triggered issue.
type Readiness struct {
	Ready           bool     `json:"ready" yaml:"ready" msgpack:"ready"`
	ReadyCount      int      `json:"ready_outputs" yaml:"ready_outputs" msgpack:"ready_outputs"`
	Total           int      `json:"total_outputs" yaml:"total_outputs" msgpack:"total_outputs"`
	ReadyPercentage float64  `json:"readiness_percentage" yaml:"readiness_percentage" msgpack:"readiness_percentage"`
	Issues          []string `json:"issues" yaml:"issues" msgpack:"issues"`
}

// Metrics is the derived scoring record of a portfolio.
type Metrics struct {
	PortfolioQuality       float64             `json:"portfolio_quality" yaml:"portfolio_quality" msgpack:"portfolio_quality"`
	PortfolioRisk          float64             `json:"portfolio_risk" yaml:"portfolio_risk" msgpack:"portfolio_risk"` // 1 = lowest risk
	Representativeness     float64             `json:"representativeness" yaml:"representativeness" msgpack:"representativeness"`
	Equality               float64             `json:"equality" yaml:"equality" msgpack:"equality"` // 0-100
	GenderBalance          float64             `json:"gender_balance" yaml:"gender_balance" msgpack:"gender_balance"`
	OverallScore           float64             `json:"overall_score" yaml:"overall_score" msgpack:"overall_score"`
	TotalOutputs           int                 `json:"total_outputs" yaml:"total_outputs" msgpack:"total_outputs"`
	AverageRisk            float64             `json:"avg_risk" yaml:"avg_risk" msgpack:"avg_risk"`
	StaffCount             int                 `json:"staff_count" yaml:"staff_count" msgpack:"staff_count"`
	OAIssues               int                 `json:"oa_issues" yaml:"oa_issues" msgpack:"oa_issues"`
	InterdisciplinaryShare float64             `json:"interdisciplinary_share" yaml:"interdisciplinary_share" msgpack:"interdisciplinary_share"`
	RiskDistribution       RiskDistribution    `json:"risk_distribution" yaml:"risk_distribution" msgpack:"risk_distribution"`
	QualityDistribution    QualityDistribution `json:"quality_distribution" yaml:"quality_distribution" msgpack:"quality_distribution"`
	Readiness              Readiness           `json:"readiness" yaml:"readiness" msgpack:"readiness"`
}

// Submission is a named candidate set of outputs.
// Metrics stay nil (stale) until explicitly recomputed.
type Submission struct {
	ID                    string           `json:"id" yaml:"id" msgpack:"id"`
	Name                  string           `json:"name" yaml:"name" msgpack:"name"`
	Outputs               []Output         `json:"outputs" yaml:"outputs" msgpack:"outputs"`
	Weights               PortfolioWeights `json:"weights" yaml:"weights" msgpack:"weights"`
	Metrics               *Metrics         `json:"metrics,omitempty" yaml:"metrics,omitempty" msgpack:"metrics,omitempty"`
	MetricsLastCalculated *time.Time       `json:"metrics_last_calculated,omitempty" yaml:"metrics_last_calculated,omitempty" msgpack:"metrics_last_calculated,omitempty"`
}

// NewSubmission creates an empty submission with default weights.
func NewSubmission(id, name string) *Submission {
	return &Submission{ID: id, Name: name, Weights: DefaultPortfolioWeights()}
}

// Add appends outputs and marks the metrics stale.
func (s *Submission) Add(outputs ...Output) {
	s.Outputs = append(s.Outputs, outputs...)
	s.Metrics = nil
}

// Remove drops the output with the given ID and marks the metrics stale.
// Reports whether anything was removed. The remaining outputs go into a new
// slice so callers sharing the old one are not affected.
func (s *Submission) Remove(id string) bool {
	for i, o := range s.Outputs {
		if o.ID == id {
			remaining := make([]Output, 0, len(s.Outputs)-1)
			remaining = append(remaining, s.Outputs[:i]...)
			s.Outputs = append(remaining, s.Outputs[i+1:]...)
			s.Metrics = nil
			return true
		}
	}
	return false
}
