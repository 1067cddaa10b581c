package portfolio

// Demographics supplies the staff-roster aggregates the metrics calculator
// cannot derive from outputs alone. Implementations are expected to return
// already-computed numbers; the calculator only checks their ranges.
type Demographics interface {
	// TotalEligibleAuthors is the number of staff eligible for submission.
	TotalEligibleAuthors() (int, error)
	// RepresentedAuthors is how many of the given authors are eligible staff.
	RepresentedAuthors(authorIDs []string) (int, error)
	// Equality is the staff inclusion score for the given authors, 0-100.
	Equality(authorIDs []string) (float64, error)
	// GenderBalance is 1 for perfect balance and 0 for severe imbalance.
	GenderBalance(authorIDs []string) (float64, error)
}

// StaticDemographics returns fixed, pre-computed aggregates.
type StaticDemographics struct {
	EligibleAuthors int
	EqualityScore   float64
	GenderScore     float64
}

// TotalEligibleAuthors implements Demographics.
func (s StaticDemographics) TotalEligibleAuthors() (int, error) {
	return s.EligibleAuthors, nil
}

// RepresentedAuthors implements Demographics. Every author counts.
func (s StaticDemographics) RepresentedAuthors(authorIDs []string) (int, error) {
	return len(authorIDs), nil
}

// Equality implements Demographics.
func (s StaticDemographics) Equality([]string) (float64, error) {
	return s.EqualityScore, nil
}

// GenderBalance implements Demographics.
func (s StaticDemographics) GenderBalance([]string) (float64, error) {
	return s.GenderScore, nil
}
