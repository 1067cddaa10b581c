package optimization

import "github.com/aristath/refportfolio/internal/domain"

// Sensitivity floors for flagging an improvement.
const (
	QualityImprovementThreshold = 0.1
	RiskImprovementThreshold    = -0.05
)

// NoCurrentOutputsMessage is reported when the current submission is empty.
const NoCurrentOutputsMessage = "No current outputs to compare"

// Comparison diffs a recommendation against the current submission.
type Comparison struct {
	HasCurrent         bool            `json:"has_current" yaml:"has_current" msgpack:"has_current"`
	Message            string          `json:"message,omitempty" yaml:"message,omitempty" msgpack:"message,omitempty"`
	CurrentMetrics     *domain.Metrics `json:"current_metrics,omitempty" yaml:"current_metrics,omitempty" msgpack:"current_metrics,omitempty"`
	RecommendedMetrics *domain.Metrics `json:"recommended_metrics,omitempty" yaml:"recommended_metrics,omitempty" msgpack:"recommended_metrics,omitempty"`
	QualityChange      float64         `json:"quality_change" yaml:"quality_change" msgpack:"quality_change"`
	RiskChange         float64         `json:"risk_change" yaml:"risk_change" msgpack:"risk_change"` // change of mean output risk; negative is better
	QualityImproved    bool            `json:"quality_improved" yaml:"quality_improved" msgpack:"quality_improved"`
	RiskImproved       bool            `json:"risk_improved" yaml:"risk_improved" msgpack:"risk_improved"`
	ToAdd              []domain.Output `json:"outputs_to_add" yaml:"outputs_to_add" msgpack:"outputs_to_add"`
	ToRemove           []domain.Output `json:"outputs_to_remove" yaml:"outputs_to_remove" msgpack:"outputs_to_remove"`
	CountChange        int             `json:"count_change" yaml:"count_change" msgpack:"count_change"`
}

// diff compares two scored output sets. Membership is by output ID and each
// side keeps its own order.
func diff(recommended, current []domain.Output, recommendedMetrics, currentMetrics domain.Metrics) Comparison {
	currentIDs := make(map[string]bool, len(current))
	for _, o := range current {
		currentIDs[o.ID] = true
	}
	recommendedIDs := make(map[string]bool, len(recommended))
	for _, o := range recommended {
		recommendedIDs[o.ID] = true
	}

	toAdd := make([]domain.Output, 0)
	for _, o := range recommended {
		if !currentIDs[o.ID] {
			toAdd = append(toAdd, o)
		}
	}
	toRemove := make([]domain.Output, 0)
	for _, o := range current {
		if !recommendedIDs[o.ID] {
			toRemove = append(toRemove, o)
		}
	}

	qualityChange := recommendedMetrics.PortfolioQuality - currentMetrics.PortfolioQuality
	riskChange := recommendedMetrics.AverageRisk - currentMetrics.AverageRisk

	return Comparison{
		HasCurrent:         true,
		CurrentMetrics:     &currentMetrics,
		RecommendedMetrics: &recommendedMetrics,
		QualityChange:      qualityChange,
		RiskChange:         riskChange,
		QualityImproved:    qualityChange > QualityImprovementThreshold,
		RiskImproved:       riskChange < RiskImprovementThreshold,
		ToAdd:              toAdd,
		ToRemove:           toRemove,
		CountChange:        len(recommended) - len(current),
	}
}
