package testing

import (
	"testing"

	"github.com/aristath/refportfolio/internal/database"
	"github.com/aristath/refportfolio/internal/domain"
)

// StaffRow is a staff roster entry for seeding
type StaffRow struct {
	ID       string
	Gender   string
	Eligible bool
}

// NewOutputFixtures returns a small output pool spanning every quality tier,
// lifecycle stage and the OA flag. Overall risks are already derived.
func NewOutputFixtures() []domain.Output {
	newOutput := func(id, author string, tier domain.QualityTier, status domain.LifecycleStatus, content, timeline, overall float64) domain.Output {
		o := domain.NewOutput(id, author)
		o.Title = "Output " + id
		o.QualityTier = tier
		o.LifecycleStatus = status
		o.ContentRisk = content
		o.TimelineRisk = timeline
		o.OverallRisk = overall
		return o
	}

	oa := newOutput("out-5", "staff-3", domain.QualityFourStar, domain.StatusAccepted, 0.10, 0.10, 0.85)
	oa.OAComplianceRisk = true
	interdisciplinary := newOutput("out-2", "staff-1", domain.QualityThreeStar, domain.StatusUnderReview, 0.30, 0.30, 0.30)
	interdisciplinary.Interdisciplinary = true

	return []domain.Output{
		newOutput("out-1", "staff-1", domain.QualityFourStar, domain.StatusPublished, 0.20, 0.00, 0.12),
		interdisciplinary,
		newOutput("out-3", "staff-2", domain.QualityThreeStar, domain.StatusPublished, 0.10, 0.00, 0.06),
		newOutput("out-4", "staff-2", domain.QualityTwoStar, domain.StatusInPreparation, 0.50, 0.60, 0.54),
		oa,
		newOutput("out-6", "staff-4", domain.QualityUnclassified, domain.StatusPlanned, 0.90, 0.80, 0.86),
	}
}

// NewStaffFixtures returns a roster of four eligible staff, two of each
// recorded gender, and one ineligible member.
func NewStaffFixtures() []StaffRow {
	return []StaffRow{
		{ID: "staff-1", Gender: "female", Eligible: true},
		{ID: "staff-2", Gender: "male", Eligible: true},
		{ID: "staff-3", Gender: "female", Eligible: true},
		{ID: "staff-4", Gender: "male", Eligible: true},
		{ID: "staff-5", Gender: "", Eligible: false},
	}
}

// SeedStaff inserts roster rows directly
func SeedStaff(t *testing.T, db *database.DB, rows ...StaffRow) {
	t.Helper()
	for _, r := range rows {
		eligible := 0
		if r.Eligible {
			eligible = 1
		}
		if _, err := db.Conn().Exec("INSERT INTO staff (id, name, gender, eligible) VALUES (?, ?, ?, ?)",
			r.ID, r.ID, r.Gender, eligible); err != nil {
			t.Fatalf("Failed to seed staff %s: %v", r.ID, err)
		}
	}
}
