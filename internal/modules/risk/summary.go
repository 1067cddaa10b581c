package risk

import (
	"time"

	"github.com/aristath/refportfolio/internal/domain"
)

// Summary is a reporting view of one output's risk.
type Summary struct {
	OutputID         string     `json:"output_id" yaml:"output_id" msgpack:"output_id"`
	OverallScore     float64    `json:"overall_score" yaml:"overall_score" msgpack:"overall_score"`
	Tier             Tier       `json:"level" yaml:"level" msgpack:"level"`
	TierLabel        string     `json:"level_display" yaml:"level_display" msgpack:"level_display"`
	ContentRisk      float64    `json:"content_risk" yaml:"content_risk" msgpack:"content_risk"`
	TimelineRisk     float64    `json:"timeline_risk" yaml:"timeline_risk" msgpack:"timeline_risk"`
	OAComplianceRisk bool       `json:"oa_compliance_risk" yaml:"oa_compliance_risk" msgpack:"oa_compliance_risk"`
	PanelAlignment   float64    `json:"panel_alignment" yaml:"panel_alignment" msgpack:"panel_alignment"`
	VenuePrestige    float64    `json:"venue_prestige" yaml:"venue_prestige" msgpack:"venue_prestige"`
	NeedsMitigation  bool       `json:"needs_mitigation" yaml:"needs_mitigation" msgpack:"needs_mitigation"`
	SubmissionReady  bool       `json:"submission_ready" yaml:"submission_ready" msgpack:"submission_ready"`
	LastCalculated   *time.Time `json:"last_calculated,omitempty" yaml:"last_calculated,omitempty" msgpack:"last_calculated,omitempty"`
}

// Summarize reads the current risk fields of o; it does not recompute.
func Summarize(o domain.Output) Summary {
	tier := TierFor(o.OverallRisk)
	return Summary{
		OutputID:         o.ID,
		OverallScore:     o.OverallRisk,
		Tier:             tier,
		TierLabel:        tier.Label(),
		ContentRisk:      o.ContentRisk,
		TimelineRisk:     o.TimelineRisk,
		OAComplianceRisk: o.OAComplianceRisk,
		PanelAlignment:   o.PanelAlignment,
		VenuePrestige:    o.VenuePrestige,
		NeedsMitigation:  o.OverallRisk >= MitigationThreshold,
		SubmissionReady:  IsSubmissionReady(o),
		LastCalculated:   o.RiskLastCalculated,
	}
}
