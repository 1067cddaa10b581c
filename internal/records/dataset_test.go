package records

import (
	"errors"
	"strings"
	"testing"

	"github.com/aristath/refportfolio/internal/domain"
	testingpkg "github.com/aristath/refportfolio/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDataset = `
staff:
  - {id: s1, name: Ada, gender: female, eligible: true}
  - {id: s2, name: Ben, gender: male, eligible: true}
outputs:
  - id: o1
    title: Graph sparsifiers
    author_id: s1
    quality_tier: "4*"
    lifecycle_status: published
    content_risk: 0.2
  - id: o2
    author_id: s2
    quality_tier: "3*"
    risk_weights: {content: 0.5, timeline: 0.5}
submissions:
  - id: ref
    name: REF draft
    outputs: [o1, o2]
  - name: Weighted
    weights: {quality: 1, risk: 0, representativeness: 0, equality: 0, gender_balance: 0}
`

func TestLoadDataset(t *testing.T) {
	ds, err := LoadDataset(strings.NewReader(sampleDataset))
	require.NoError(t, err)

	require.Len(t, ds.Staff, 2)
	assert.Equal(t, Staff{ID: "s1", Name: "Ada", Gender: "female", Eligible: true}, ds.Staff[0])

	require.Len(t, ds.Outputs, 2)
	assert.Equal(t, domain.QualityFourStar, ds.Outputs[0].QualityTier)
	assert.Equal(t, domain.StatusPublished, ds.Outputs[0].LifecycleStatus)
	assert.Equal(t, domain.DefaultRiskWeights(), ds.Outputs[0].RiskWeights)
	assert.Equal(t, domain.DefaultPanelAlignment, ds.Outputs[0].PanelAlignment)
	assert.Equal(t, domain.StatusPlanned, ds.Outputs[1].LifecycleStatus)
	assert.Equal(t, domain.RiskWeights{Content: 0.5, Timeline: 0.5}, ds.Outputs[1].RiskWeights)

	require.Len(t, ds.Submissions, 2)
	assert.Equal(t, domain.DefaultPortfolioWeights(), ds.Submissions[0].Weights)
	assert.Equal(t, []string{"o1", "o2"}, outputIDs(ds.Submissions[0].Outputs))
	assert.Equal(t, 1.0, ds.Submissions[1].Weights.Quality)
	assert.Empty(t, ds.Submissions[1].Outputs)
}

func TestLoadDataset_Invalid(t *testing.T) {
	tests := map[string]string{
		"empty":             "",
		"not yaml":          "outputs: [",
		"staff without id":  "staff:\n  - {name: Ada}\n",
		"risk out of range": "outputs:\n  - {id: o1, content_risk: 1.5}\n",
		"negative weights":  "submissions:\n  - {name: x, weights: {quality: -1}}\n",
	}
	for name, input := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := LoadDataset(strings.NewReader(input))
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrMalformedInput) || errors.Is(err, domain.ErrInvalidWeights), err.Error())
		})
	}
}

func TestImport(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()

	staff := NewStaffRepository(db.Conn(), zerolog.Nop())
	outputs := NewOutputRepository(db.Conn(), zerolog.Nop())
	submissions := NewSubmissionRepository(db.Conn(), zerolog.Nop())

	ds, err := LoadDataset(strings.NewReader(sampleDataset))
	require.NoError(t, err)

	summary, err := Import(ds, staff, outputs, submissions)
	require.NoError(t, err)
	assert.Equal(t, ImportSummary{Staff: 2, Outputs: 2, Submissions: 2}, summary)

	total, err := staff.TotalEligibleAuthors()
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	sub, err := submissions.GetByID("ref")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, []string{"o1", "o2"}, outputIDs(sub.Outputs))
	assert.Equal(t, "Graph sparsifiers", sub.Outputs[0].Title)

	ids, err := submissions.ListIDs()
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}

func TestImport_UnknownMember(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()

	ds, err := LoadDataset(strings.NewReader("submissions:\n  - {name: x, outputs: [ghost]}\n"))
	require.NoError(t, err)

	summary, err := Import(ds,
		NewStaffRepository(db.Conn(), zerolog.Nop()),
		NewOutputRepository(db.Conn(), zerolog.Nop()),
		NewSubmissionRepository(db.Conn(), zerolog.Nop()))
	require.Error(t, err)
	assert.Equal(t, 0, summary.Submissions)
}
