package records

import (
	"database/sql"
	"fmt"
	"math"
	"strings"

	"github.com/rs/zerolog"
)

// Recorded genders counted by the balance score. Anything else is ignored.
const (
	GenderFemale = "female"
	GenderMale   = "male"
)

// Staff is one member of the staff roster
type Staff struct {
	ID       string `json:"id" yaml:"id"`
	Name     string `json:"name" yaml:"name"`
	Gender   string `json:"gender" yaml:"gender"`
	Eligible bool   `json:"eligible" yaml:"eligible"`
}

// StaffRepository reads the staff roster and answers the demographic
// aggregates the portfolio metrics calculator needs.
type StaffRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewStaffRepository creates a new staff repository
func NewStaffRepository(db *sql.DB, log zerolog.Logger) *StaffRepository {
	return &StaffRepository{
		db:  db,
		log: log.With().Str("repo", "staff").Logger(),
	}
}

// Upsert inserts or replaces a staff member
func (r *StaffRepository) Upsert(s Staff) error {
	if s.ID == "" {
		return fmt.Errorf("staff id must not be empty")
	}
	_, err := r.db.Exec(`INSERT OR REPLACE INTO staff (id, name, gender, eligible) VALUES (?, ?, ?, ?)`,
		s.ID, s.Name, strings.ToLower(strings.TrimSpace(s.Gender)), boolToInt(s.Eligible))
	if err != nil {
		return fmt.Errorf("failed to upsert staff %s: %w", s.ID, err)
	}
	return nil
}

// TotalEligibleAuthors counts staff eligible for submission
func (r *StaffRepository) TotalEligibleAuthors() (int, error) {
	var n int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM staff WHERE eligible = 1").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count eligible staff: %w", err)
	}
	return n, nil
}

// Equality is the percentage of eligible staff among the given authors.
// Authors not on the roster, or not eligible, do not count.
func (r *StaffRepository) Equality(authorIDs []string) (float64, error) {
	roster, err := r.roster()
	if err != nil {
		return 0, err
	}

	eligible := 0
	for _, s := range roster {
		if s.Eligible {
			eligible++
		}
	}
	if eligible == 0 {
		return 0, nil
	}

	return float64(represented(roster, authorIDs)) / float64(eligible) * 100, nil
}

// RepresentedAuthors counts the distinct given authors who are eligible
// staff. Authors missing from the roster or marked ineligible are skipped.
func (r *StaffRepository) RepresentedAuthors(authorIDs []string) (int, error) {
	roster, err := r.roster()
	if err != nil {
		return 0, err
	}
	return represented(roster, authorIDs), nil
}

// GenderBalance is 1 when the given authors split evenly between the
// recorded genders and 0 when they are all one gender or none is recorded.
func (r *StaffRepository) GenderBalance(authorIDs []string) (float64, error) {
	roster, err := r.roster()
	if err != nil {
		return 0, err
	}

	var female, male int
	for _, id := range distinct(authorIDs) {
		switch roster[id].Gender {
		case GenderFemale:
			female++
		case GenderMale:
			male++
		}
	}
	total := female + male
	if total == 0 {
		return 0, nil
	}
	return 1 - math.Abs(float64(female-male))/float64(total), nil
}

func (r *StaffRepository) roster() (map[string]Staff, error) {
	rows, err := r.db.Query("SELECT id, name, gender, eligible FROM staff")
	if err != nil {
		return nil, fmt.Errorf("failed to load staff roster: %w", err)
	}
	defer rows.Close()

	roster := make(map[string]Staff)
	for rows.Next() {
		var (
			s        Staff
			eligible int
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Gender, &eligible); err != nil {
			return nil, fmt.Errorf("failed to scan staff: %w", err)
		}
		s.Eligible = eligible != 0
		roster[s.ID] = s
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating staff: %w", err)
	}
	return roster, nil
}

func represented(roster map[string]Staff, authorIDs []string) int {
	n := 0
	for _, id := range distinct(authorIDs) {
		if s, ok := roster[id]; ok && s.Eligible {
			n++
		}
	}
	return n
}

func distinct(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	result := make([]string, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			result = append(result, id)
		}
	}
	return result
}
