package records

import (
	"testing"
	"time"

	"github.com/aristath/refportfolio/internal/domain"
	"github.com/aristath/refportfolio/internal/modules/portfolio"
	testingpkg "github.com/aristath/refportfolio/internal/testing"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedOutputs(t *testing.T, repo *OutputRepository) []domain.Output {
	t.Helper()
	outputs := testingpkg.NewOutputFixtures()
	for i := range outputs {
		require.NoError(t, repo.Create(&outputs[i]))
	}
	return outputs
}

func TestOutputRepository_CreateAndGet(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()
	repo := NewOutputRepository(db.Conn(), zerolog.Nop())

	outputs := seedOutputs(t, repo)

	got, err := repo.GetByID("out-5")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, outputs[4], *got)
	assert.True(t, got.OAComplianceRisk)

	missing, err := repo.GetByID("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestOutputRepository_CreateGeneratesID(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()
	repo := NewOutputRepository(db.Conn(), zerolog.Nop())

	o := domain.NewOutput("", "staff-1")
	require.NoError(t, repo.Create(&o))
	assert.Len(t, o.ID, 36)
}

func TestOutputRepository_CreateRejectsMalformed(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()
	repo := NewOutputRepository(db.Conn(), zerolog.Nop())

	o := domain.NewOutput("bad", "staff-1")
	o.ContentRisk = 1.2
	assert.ErrorIs(t, repo.Create(&o), domain.ErrMalformedInput)

	all, err := repo.List()
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestOutputRepository_ListKeepsInsertionOrder(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()
	repo := NewOutputRepository(db.Conn(), zerolog.Nop())

	expected := seedOutputs(t, repo)
	got, err := repo.List()
	require.NoError(t, err)
	assert.Equal(t, expected, got)
}

func TestOutputRepository_SaveRisks(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()
	repo := NewOutputRepository(db.Conn(), zerolog.Nop())
	outputs := seedOutputs(t, repo)

	stamp := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	outputs[0].TimelineRisk = 0.25
	outputs[0].OverallRisk = 0.22
	outputs[0].RiskLastCalculated = &stamp
	require.NoError(t, repo.SaveRisks(outputs[:1]))

	got, err := repo.GetByID(outputs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, 0.25, got.TimelineRisk)
	assert.Equal(t, 0.22, got.OverallRisk)
	require.NotNil(t, got.RiskLastCalculated)
	assert.True(t, stamp.Equal(*got.RiskLastCalculated))
}

func TestOutputRepository_SaveRisksIsAllOrNothing(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()
	repo := NewOutputRepository(db.Conn(), zerolog.Nop())
	outputs := seedOutputs(t, repo)

	changed := outputs[0]
	changed.OverallRisk = 0.99
	ghost := domain.NewOutput("ghost", "staff-9")

	err := repo.SaveRisks([]domain.Output{changed, ghost})
	require.Error(t, err)

	got, err := repo.GetByID(outputs[0].ID)
	require.NoError(t, err)
	assert.Equal(t, outputs[0].OverallRisk, got.OverallRisk)
}

func TestSubmissionRepository_Lifecycle(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()
	outputsRepo := NewOutputRepository(db.Conn(), zerolog.Nop())
	repo := NewSubmissionRepository(db.Conn(), zerolog.Nop())
	outputs := seedOutputs(t, outputsRepo)

	s := domain.NewSubmission("", "UoA 11")
	s.Add(outputs[2], outputs[0])
	require.NoError(t, repo.Create(s))
	require.NotEmpty(t, s.ID)

	got, err := repo.GetByID(s.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "UoA 11", got.Name)
	assert.Equal(t, domain.DefaultPortfolioWeights(), got.Weights)
	assert.Equal(t, []string{"out-3", "out-1"}, outputIDs(got.Outputs))
	assert.Nil(t, got.Metrics)

	require.NoError(t, repo.AddOutput(s.ID, "out-4"))
	removed, err := repo.RemoveOutput(s.ID, "out-3")
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = repo.RemoveOutput(s.ID, "out-3")
	require.NoError(t, err)
	assert.False(t, removed)

	got, err = repo.GetByID(s.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"out-1", "out-4"}, outputIDs(got.Outputs))

	ids, err := repo.ListIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{s.ID}, ids)

	missing, err := repo.GetByID("nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSubmissionRepository_CreateRequiresExistingOutputs(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()
	repo := NewSubmissionRepository(db.Conn(), zerolog.Nop())

	s := domain.NewSubmission("s1", "Ghosts")
	s.Add(domain.NewOutput("ghost", "staff-1"))
	require.Error(t, repo.Create(s))

	got, err := repo.GetByID("s1")
	require.NoError(t, err)
	assert.Nil(t, got, "failed create leaves nothing behind")
}

func TestSubmissionRepository_MetricsSnapshot(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()
	outputsRepo := NewOutputRepository(db.Conn(), zerolog.Nop())
	repo := NewSubmissionRepository(db.Conn(), zerolog.Nop())
	outputs := seedOutputs(t, outputsRepo)

	s := domain.NewSubmission("s1", "Snapshot")
	s.Add(outputs[0], outputs[1])
	require.NoError(t, repo.Create(s))

	stamp := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC)
	s.Metrics = &domain.Metrics{
		PortfolioQuality: 3.5,
		OverallScore:     2.75,
		TotalOutputs:     2,
		Readiness:        domain.Readiness{Ready: false, Total: 2, Issues: []string{"Portfolio quality below 3* average"}},
	}
	s.MetricsLastCalculated = &stamp
	require.NoError(t, repo.SaveMetrics(s))

	got, err := repo.GetByID("s1")
	require.NoError(t, err)
	require.NotNil(t, got.Metrics)
	assert.Equal(t, 3.5, got.Metrics.PortfolioQuality)
	assert.Equal(t, 2.75, got.Metrics.OverallScore)
	assert.Equal(t, []string{"Portfolio quality below 3* average"}, got.Metrics.Readiness.Issues)
	require.NotNil(t, got.MetricsLastCalculated)
	assert.True(t, stamp.Equal(*got.MetricsLastCalculated))

	require.NoError(t, repo.AddOutput("s1", "out-3"))
	got, err = repo.GetByID("s1")
	require.NoError(t, err)
	assert.Nil(t, got.Metrics, "membership change makes metrics stale")
	assert.Nil(t, got.MetricsLastCalculated)

	ghost := domain.NewSubmission("ghost", "Ghost")
	ghost.Metrics = &domain.Metrics{}
	assert.Error(t, repo.SaveMetrics(ghost))
}

func TestSubmissionRepository_RejectsNegativeWeights(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()
	repo := NewSubmissionRepository(db.Conn(), zerolog.Nop())

	s := domain.NewSubmission("s1", "Bad")
	s.Weights.Risk = -0.1
	assert.ErrorIs(t, repo.Create(s), domain.ErrInvalidWeights)
}

func TestStaffRepository_Demographics(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()
	testingpkg.SeedStaff(t, db, testingpkg.NewStaffFixtures()...)
	repo := NewStaffRepository(db.Conn(), zerolog.Nop())

	eligible, err := repo.TotalEligibleAuthors()
	require.NoError(t, err)
	assert.Equal(t, 4, eligible)

	tests := []struct {
		name        string
		authors     []string
		represented int
		equality    float64
		balance     float64
	}{
		{"none", nil, 0, 0, 0},
		{"one female", []string{"staff-1"}, 1, 25, 0},
		{"balanced pair", []string{"staff-1", "staff-2"}, 2, 50, 1},
		{"duplicates count once", []string{"staff-1", "staff-1", "staff-2"}, 2, 50, 1},
		{"two to one", []string{"staff-1", "staff-2", "staff-3"}, 3, 75, 1 - 1.0/3},
		{"ineligible and unknown ignored", []string{"staff-5", "outsider"}, 0, 0, 0},
		{"mixed roster and outsiders", []string{"staff-1", "staff-5", "outsider"}, 1, 25, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := repo.RepresentedAuthors(tt.authors)
			require.NoError(t, err)
			assert.Equal(t, tt.represented, n)

			eq, err := repo.Equality(tt.authors)
			require.NoError(t, err)
			assert.InDelta(t, tt.equality, eq, 1e-9)

			gb, err := repo.GenderBalance(tt.authors)
			require.NoError(t, err)
			assert.InDelta(t, tt.balance, gb, 1e-9)
		})
	}
}

func TestStaffRepository_MetricsWithIneligibleAuthor(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()
	repo := NewStaffRepository(db.Conn(), zerolog.Nop())

	require.NoError(t, repo.Upsert(Staff{ID: "a", Gender: "female", Eligible: true}))
	require.NoError(t, repo.Upsert(Staff{ID: "b", Gender: "male", Eligible: true}))
	require.NoError(t, repo.Upsert(Staff{ID: "c", Gender: "female", Eligible: false}))

	var outputs []domain.Output
	for _, author := range []string{"a", "b", "c"} {
		o := domain.NewOutput("out-"+author, author)
		o.QualityTier = domain.QualityFourStar
		o.OverallRisk = 0.1
		outputs = append(outputs, o)
	}

	m, err := portfolio.NewCalculator(repo, zerolog.Nop()).Calculate(outputs, domain.DefaultPortfolioWeights())
	require.NoError(t, err)
	assert.Equal(t, 1.0, m.Representativeness)
	assert.Equal(t, 100.0, m.Equality)
	assert.Equal(t, 3, m.StaffCount)
}

func TestStaffRepository_Upsert(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()
	repo := NewStaffRepository(db.Conn(), zerolog.Nop())

	require.NoError(t, repo.Upsert(Staff{ID: "a", Gender: " Female ", Eligible: true}))
	require.NoError(t, repo.Upsert(Staff{ID: "b", Gender: "MALE", Eligible: true}))
	assert.Error(t, repo.Upsert(Staff{}))

	gb, err := repo.GenderBalance([]string{"a", "b"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, gb)

	require.NoError(t, repo.Upsert(Staff{ID: "b", Gender: "male", Eligible: false}))
	n, err := repo.TotalEligibleAuthors()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestStaffRepository_EmptyRoster(t *testing.T) {
	db, cleanup := testingpkg.NewTestDB(t)
	defer cleanup()
	repo := NewStaffRepository(db.Conn(), zerolog.Nop())

	eq, err := repo.Equality([]string{"x"})
	require.NoError(t, err)
	assert.Zero(t, eq)
}

func outputIDs(outputs []domain.Output) []string {
	ids := make([]string, len(outputs))
	for i, o := range outputs {
		ids[i] = o.ID
	}
	return ids
}
