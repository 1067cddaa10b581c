package risk

import "github.com/aristath/refportfolio/internal/domain"

// Tier is a named risk band.
type Tier string

const (
	TierLow        Tier = "low"
	TierMediumLow  Tier = "medium-low"
	TierMediumHigh Tier = "medium-high"
	TierHigh       Tier = "high"
)

// Band thresholds. A value on a boundary belongs to the higher band.
const (
	LowThreshold        = 0.25
	MediumLowThreshold  = 0.50
	MediumHighThreshold = 0.75
)

// TierFor classifies a risk score.
func TierFor(risk float64) Tier {
	switch {
	case risk < LowThreshold:
		return TierLow
	case risk < MediumLowThreshold:
		return TierMediumLow
	case risk < MediumHighThreshold:
		return TierMediumHigh
	default:
		return TierHigh
	}
}

// Label returns the human-readable band name.
func (t Tier) Label() string {
	switch t {
	case TierLow:
		return "Low Risk"
	case TierMediumLow:
		return "Medium-Low Risk"
	case TierMediumHigh:
		return "Medium-High Risk"
	case TierHigh:
		return "High Risk"
	default:
		return "Unknown"
	}
}

var qualityValues = map[domain.QualityTier]int{
	domain.QualityFourStar:     4,
	domain.QualityThreeStar:    3,
	domain.QualityTwoStar:      2,
	domain.QualityOneStar:      1,
	domain.QualityUnclassified: 0,
}

// QualityValue maps a star rating to {0..4}; unrecognized tiers are 0.
func QualityValue(tier domain.QualityTier) int {
	return qualityValues[tier]
}

var timelineRisks = map[domain.LifecycleStatus]float64{
	domain.StatusPublished:     0.00,
	domain.StatusAccepted:      0.20,
	domain.StatusUnderReview:   0.50,
	domain.StatusInRevision:    0.70,
	domain.StatusInPreparation: 0.90,
	domain.StatusPlanned:       1.00,
}

// UnknownStatusTimelineRisk is used for statuses missing from the table.
const UnknownStatusTimelineRisk = 0.50

// DeriveTimelineRisk looks up the timeline risk for a lifecycle status.
func DeriveTimelineRisk(status domain.LifecycleStatus) float64 {
	if r, ok := timelineRisks[status]; ok {
		return r
	}
	return UnknownStatusTimelineRisk
}
