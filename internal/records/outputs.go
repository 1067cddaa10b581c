// Package records stores outputs, submissions and the staff roster in SQLite
// and hands them to the scoring engine as plain domain records.
package records

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/aristath/refportfolio/internal/database"
	"github.com/aristath/refportfolio/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var outputFields = []string{
	"id", "title", "author_id", "quality_tier", "lifecycle_status",
	"content_risk", "timeline_risk", "content_weight", "timeline_weight", "overall_risk",
	"oa_compliance_risk", "panel_alignment", "venue_prestige", "interdisciplinary",
	"risk_last_calculated",
}

var (
	outputColumns          = strings.Join(outputFields, ", ")
	outputColumnsQualified = "o." + strings.Join(outputFields, ", o.")
)

// scanner is satisfied by *sql.Row and *sql.Rows
type scanner interface {
	Scan(dest ...interface{}) error
}

// OutputRepository handles output persistence
type OutputRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewOutputRepository creates a new output repository
func NewOutputRepository(db *sql.DB, log zerolog.Logger) *OutputRepository {
	return &OutputRepository{
		db:  db,
		log: log.With().Str("repo", "outputs").Logger(),
	}
}

// Create inserts an output. An empty ID is replaced with a generated one.
func (r *OutputRepository) Create(o *domain.Output) error {
	if err := o.Validate(); err != nil {
		return err
	}
	if o.ID == "" {
		o.ID = uuid.New().String()
	}

	query := `INSERT INTO outputs (` + outputColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		o.ID, o.Title, o.AuthorID, string(o.QualityTier), string(o.LifecycleStatus),
		o.ContentRisk, o.TimelineRisk, o.RiskWeights.Content, o.RiskWeights.Timeline, o.OverallRisk,
		boolToInt(o.OAComplianceRisk), o.PanelAlignment, o.VenuePrestige, boolToInt(o.Interdisciplinary),
		unixOrNull(o.RiskLastCalculated),
	)
	if err != nil {
		return fmt.Errorf("failed to create output %s: %w", o.ID, err)
	}

	r.log.Debug().Str("output_id", o.ID).Msg("Output created")
	return nil
}

// GetByID returns an output, or nil if it does not exist
func (r *OutputRepository) GetByID(id string) (*domain.Output, error) {
	row := r.db.QueryRow("SELECT "+outputColumns+" FROM outputs WHERE id = ?", id)
	o, err := scanOutput(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get output %s: %w", id, err)
	}
	return &o, nil
}

// List returns every output in insertion order
func (r *OutputRepository) List() ([]domain.Output, error) {
	rows, err := r.db.Query("SELECT " + outputColumns + " FROM outputs ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list outputs: %w", err)
	}
	defer rows.Close()

	outputs := make([]domain.Output, 0)
	for rows.Next() {
		o, err := scanOutput(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan output: %w", err)
		}
		outputs = append(outputs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating outputs: %w", err)
	}
	return outputs, nil
}

// SaveRisks persists the derived risk fields of the given outputs in one
// transaction. Outputs that do not exist fail the whole save.
func (r *OutputRepository) SaveRisks(outputs []domain.Output) error {
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`UPDATE outputs
			SET timeline_risk = ?, overall_risk = ?, risk_last_calculated = ?
			WHERE id = ?`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, o := range outputs {
			res, err := stmt.Exec(o.TimelineRisk, o.OverallRisk, unixOrNull(o.RiskLastCalculated), o.ID)
			if err != nil {
				return fmt.Errorf("output %s: %w", o.ID, err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("output %s not found", o.ID)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save output risks: %w", err)
	}

	r.log.Debug().Int("count", len(outputs)).Msg("Output risks saved")
	return nil
}

func scanOutput(s scanner) (domain.Output, error) {
	var (
		o                  domain.Output
		quality, status    string
		oa, interdisc      int
		riskLastCalculated sql.NullInt64
	)
	err := s.Scan(
		&o.ID, &o.Title, &o.AuthorID, &quality, &status,
		&o.ContentRisk, &o.TimelineRisk, &o.RiskWeights.Content, &o.RiskWeights.Timeline, &o.OverallRisk,
		&oa, &o.PanelAlignment, &o.VenuePrestige, &interdisc,
		&riskLastCalculated,
	)
	if err != nil {
		return domain.Output{}, err
	}
	o.QualityTier = domain.QualityTier(quality)
	o.LifecycleStatus = domain.LifecycleStatus(status)
	o.OAComplianceRisk = oa != 0
	o.Interdisciplinary = interdisc != 0
	o.RiskLastCalculated = timeOrNil(riskLastCalculated)
	return o, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func unixOrNull(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Unix()
}

func timeOrNil(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0).UTC()
	return &t
}
