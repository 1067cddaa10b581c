// Package portfolio scores a candidate submission: aggregate quality and
// risk, staff representativeness, equality, gender balance, and readiness.
package portfolio

import (
	"fmt"

	"github.com/aristath/refportfolio/internal/domain"
	"github.com/aristath/refportfolio/internal/modules/risk"
	"github.com/aristath/refportfolio/pkg/formulas"
)

// Score rescaling onto the common 0-4 scale.
const (
	unitToScale     = 4.0  // [0,1] metrics
	equalityDivisor = 25.0 // [0,100] equality
)

// Readiness thresholds.
const (
	MinReadyPercentage = 80.0
	MaxHighRiskShare   = 0.20
	MinPortfolioGPA    = 3.00
)

// Readiness issue messages.
const (
	IssueNoOutputs    = "No outputs in submission"
	IssueOACompliance = "OA compliance issues detected"
	IssueHighRisk     = "More than 20% of outputs are high risk"
	IssueLowQuality   = "Portfolio quality below 3* average"
)

// PortfolioQuality is the mean star value, 0 for an empty set.
func PortfolioQuality(outputs []domain.Output) float64 {
	values := make([]float64, len(outputs))
	for i, o := range outputs {
		values[i] = float64(risk.QualityValue(o.QualityTier))
	}
	return formulas.Mean(values)
}

// AverageRisk is the mean overall risk, 0 for an empty set.
func AverageRisk(outputs []domain.Output) float64 {
	values := make([]float64, len(outputs))
	for i, o := range outputs {
		values[i] = o.OverallRisk
	}
	return formulas.Mean(values)
}

// PortfolioRisk is 1 - mean risk, so 1 means lowest risk. An empty
// portfolio scores 0: it is treated as maximally risky.
func PortfolioRisk(outputs []domain.Output) float64 {
	if len(outputs) == 0 {
		return 0
	}
	return 1 - AverageRisk(outputs)
}

// Representativeness is the share of eligible authors represented.
func Representativeness(represented, totalEligible int) float64 {
	return formulas.Ratio(float64(represented), float64(totalEligible))
}

// OverallScore combines the five sub-metrics into a 0-4 score using
// normalized weights. All-zero weights yield 0.
func OverallScore(m domain.Metrics, w domain.PortfolioWeights) float64 {
	weights, ok := formulas.NormalizeWeights(w.Slice())
	if !ok {
		return 0
	}
	scaled := []float64{
		m.PortfolioQuality,
		m.PortfolioRisk * unitToScale,
		m.Representativeness * unitToScale,
		m.Equality / equalityDivisor,
		m.GenderBalance * unitToScale,
	}
	return formulas.WeightedSum(scaled, weights)
}

// RiskDistributionOf counts outputs per risk tier.
func RiskDistributionOf(outputs []domain.Output) domain.RiskDistribution {
	var d domain.RiskDistribution
	for _, o := range outputs {
		switch risk.TierFor(o.OverallRisk) {
		case risk.TierLow:
			d.Low++
		case risk.TierMediumLow:
			d.MediumLow++
		case risk.TierMediumHigh:
			d.MediumHigh++
		case risk.TierHigh:
			d.High++
		}
	}
	return d
}

// QualityDistributionOf counts outputs per star rating.
// Unrecognized ratings are counted as unclassified.
func QualityDistributionOf(outputs []domain.Output) domain.QualityDistribution {
	var d domain.QualityDistribution
	for _, o := range outputs {
		switch risk.QualityValue(o.QualityTier) {
		case 4:
			d.FourStar++
		case 3:
			d.ThreeStar++
		case 2:
			d.TwoStar++
		case 1:
			d.OneStar++
		default:
			d.Unclassified++
		}
	}
	return d
}

// Readiness judges whether the outputs are fit to submit. Every triggered
// issue is listed, not just the first.
func Readiness(outputs []domain.Output, portfolioQuality float64) domain.Readiness {
	total := len(outputs)
	if total == 0 {
		return domain.Readiness{Issues: []string{IssueNoOutputs}}
	}

	ready := 0
	oaIssues := false
	for _, o := range outputs {
		if risk.IsSubmissionReady(o) {
			ready++
		}
		if o.OAComplianceRisk {
			oaIssues = true
		}
	}
	pct := float64(ready) / float64(total) * 100

	issues := []string{}
	if oaIssues {
		issues = append(issues, IssueOACompliance)
	}
	if float64(RiskDistributionOf(outputs).High) > float64(total)*MaxHighRiskShare {
		issues = append(issues, IssueHighRisk)
	}
	if portfolioQuality < MinPortfolioGPA {
		issues = append(issues, IssueLowQuality)
	}

	return domain.Readiness{
		Ready:           len(issues) == 0 && pct >= MinReadyPercentage,
		ReadyCount:      ready,
		Total:           total,
		ReadyPercentage: pct,
		Issues:          issues,
	}
}

// countFlags returns OA issue and interdisciplinary counts.
func countFlags(outputs []domain.Output) (oa, interdisciplinary int) {
	for _, o := range outputs {
		if o.OAComplianceRisk {
			oa++
		}
		if o.Interdisciplinary {
			interdisciplinary++
		}
	}
	return oa, interdisciplinary
}

// demographicScores queries the collaborator and range-checks its answers.
func demographicScores(d Demographics, authors []string) (rep, eq, gb float64, err error) {
	if d == nil {
		return 0, 0, 0, nil
	}

	total, err := d.TotalEligibleAuthors()
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get eligible author count: %w", err)
	}
	if total < 0 {
		return 0, 0, 0, domain.NewValidationError(domain.ErrMalformedInput, "", "total_eligible_authors", float64(total), "must be non-negative")
	}
	represented, err := d.RepresentedAuthors(authors)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count represented authors: %w", err)
	}
	if represented < 0 {
		return 0, 0, 0, domain.NewValidationError(domain.ErrMalformedInput, "", "represented_authors", float64(represented), "must be non-negative")
	}
	rep = Representativeness(represented, total)
	if err := domain.CheckRange("representativeness", rep, 0, 1); err != nil {
		return 0, 0, 0, err
	}

	eq, err = d.Equality(authors)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get equality score: %w", err)
	}
	if err := domain.CheckRange("equality", eq, 0, 100); err != nil {
		return 0, 0, 0, err
	}

	gb, err = d.GenderBalance(authors)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("failed to get gender balance: %w", err)
	}
	if err := domain.CheckRange("gender_balance", gb, 0, 1); err != nil {
		return 0, 0, 0, err
	}
	return rep, eq, gb, nil
}
