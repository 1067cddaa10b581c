// Package domain provides the plain records exchanged between the scoring
// engine and the surrounding record store.
package domain

import (
	"math"
	"time"
)

// QualityTier is the internal star rating of an output
type QualityTier string

const (
	QualityFourStar     QualityTier = "4*"
	QualityThreeStar    QualityTier = "3*"
	QualityTwoStar      QualityTier = "2*"
	QualityOneStar      QualityTier = "1*"
	QualityUnclassified QualityTier = "unclassified"
)

// QualityTiers lists every tier from best to worst.
var QualityTiers = []QualityTier{
	QualityFourStar,
	QualityThreeStar,
	QualityTwoStar,
	QualityOneStar,
	QualityUnclassified,
}

// LifecycleStatus is the publication stage of an output
type LifecycleStatus string

const (
	StatusPublished     LifecycleStatus = "published"
	StatusAccepted      LifecycleStatus = "accepted"
	StatusUnderReview   LifecycleStatus = "under-review"
	StatusInRevision    LifecycleStatus = "in-revision"
	StatusInPreparation LifecycleStatus = "in-preparation"
	StatusPlanned       LifecycleStatus = "planned"
)

// Default sub-score values for a freshly created output.
const (
	DefaultContentWeight  = 0.60
	DefaultTimelineWeight = 0.40
	DefaultPanelAlignment = 1.00
	DefaultVenuePrestige  = 0.50
)

// RiskWeights blends content and timeline risk. The pair need not sum to 1.
type RiskWeights struct {
	Content  float64 `json:"content" yaml:"content" msgpack:"content"`
	Timeline float64 `json:"timeline" yaml:"timeline" msgpack:"timeline"`
}

// DefaultRiskWeights returns the 60/40 content/timeline split.
func DefaultRiskWeights() RiskWeights {
	return RiskWeights{Content: DefaultContentWeight, Timeline: DefaultTimelineWeight}
}

// Output is a single research output being scored.
// OverallRisk is derived; only the risk calculator writes it.
type Output struct {
	ID                 string          `json:"id" yaml:"id" msgpack:"id"`
	Title              string          `json:"title" yaml:"title" msgpack:"title"`
	AuthorID           string          `json:"author_id" yaml:"author_id" msgpack:"author_id"`
	QualityTier        QualityTier     `json:"quality_tier" yaml:"quality_tier" msgpack:"quality_tier"`
	LifecycleStatus    LifecycleStatus `json:"lifecycle_status" yaml:"lifecycle_status" msgpack:"lifecycle_status"`
	ContentRisk        float64         `json:"content_risk" yaml:"content_risk" msgpack:"content_risk"`
	TimelineRisk       float64         `json:"timeline_risk" yaml:"timeline_risk" msgpack:"timeline_risk"`
	RiskWeights        RiskWeights     `json:"risk_weights" yaml:"risk_weights" msgpack:"risk_weights"`
	OverallRisk        float64         `json:"overall_risk" yaml:"overall_risk" msgpack:"overall_risk"`
	OAComplianceRisk   bool            `json:"oa_compliance_risk" yaml:"oa_compliance_risk" msgpack:"oa_compliance_risk"`
	PanelAlignment     float64         `json:"panel_alignment" yaml:"panel_alignment" msgpack:"panel_alignment"`
	VenuePrestige      float64         `json:"venue_prestige" yaml:"venue_prestige" msgpack:"venue_prestige"`
	Interdisciplinary  bool            `json:"interdisciplinary" yaml:"interdisciplinary" msgpack:"interdisciplinary"`
	RiskLastCalculated *time.Time      `json:"risk_last_calculated,omitempty" yaml:"risk_last_calculated,omitempty" msgpack:"risk_last_calculated,omitempty"`
}

// NewOutput returns an output with neutral risk fields and default weights.
func NewOutput(id, authorID string) Output {
	return Output{
		ID:              id,
		AuthorID:        authorID,
		QualityTier:     QualityUnclassified,
		LifecycleStatus: StatusPlanned,
		RiskWeights:     DefaultRiskWeights(),
		PanelAlignment:  DefaultPanelAlignment,
		VenuePrestige:   DefaultVenuePrestige,
	}
}

// Validate checks every ranged field. Values are never clamped.
func (o Output) Validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"content_risk", o.ContentRisk},
		{"timeline_risk", o.TimelineRisk},
		{"overall_risk", o.OverallRisk},
		{"panel_alignment", o.PanelAlignment},
		{"venue_prestige", o.VenuePrestige},
	}
	for _, c := range checks {
		if err := checkUnit(o.ID, c.field, c.value); err != nil {
			return err
		}
	}
	return o.RiskWeights.validate(o.ID)
}

func (w RiskWeights) validate(record string) error {
	if !validWeight(w.Content) {
		return NewValidationError(ErrInvalidWeights, record, "risk_weights.content", w.Content, "must be finite and non-negative")
	}
	if !validWeight(w.Timeline) {
		return NewValidationError(ErrInvalidWeights, record, "risk_weights.timeline", w.Timeline, "must be finite and non-negative")
	}
	return nil
}

// validWeight is false for negatives, NaN and infinities.
func validWeight(v float64) bool {
	return v >= 0 && !math.IsInf(v, 0)
}

// ValidateOutputs validates a collection, failing on the first bad record.
func ValidateOutputs(outputs []Output) error {
	for i := range outputs {
		if err := outputs[i].Validate(); err != nil {
			return err
		}
	}
	return nil
}

// CloneOutputs returns a private copy of the slice so callers can hand the
// engine a collection it may mutate without touching shared records.
func CloneOutputs(outputs []Output) []Output {
	if outputs == nil {
		return nil
	}
	cloned := make([]Output, len(outputs))
	copy(cloned, outputs)
	for i := range cloned {
		if cloned[i].RiskLastCalculated != nil {
			ts := *cloned[i].RiskLastCalculated
			cloned[i].RiskLastCalculated = &ts
		}
	}
	return cloned
}

// DistinctAuthors returns the author IDs of the outputs in first-seen order.
// Empty author IDs are skipped.
func DistinctAuthors(outputs []Output) []string {
	seen := make(map[string]struct{}, len(outputs))
	authors := make([]string, 0, len(outputs))
	for _, o := range outputs {
		if o.AuthorID == "" {
			continue
		}
		if _, ok := seen[o.AuthorID]; ok {
			continue
		}
		seen[o.AuthorID] = struct{}{}
		authors = append(authors, o.AuthorID)
	}
	return authors
}
