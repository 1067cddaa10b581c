package records

import (
	"database/sql"
	"fmt"

	"github.com/aristath/refportfolio/internal/database"
	"github.com/aristath/refportfolio/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"
)

// SubmissionRepository handles submissions and their output membership.
// Stored metrics are a msgpack snapshot of the last recompute.
type SubmissionRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sql.DB, log zerolog.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		db:  db,
		log: log.With().Str("repo", "submissions").Logger(),
	}
}

// Create inserts a submission and its membership. An empty ID is replaced
// with a generated one. Member outputs must already exist.
func (r *SubmissionRepository) Create(s *domain.Submission) error {
	if err := s.Weights.Validate(); err != nil {
		return err
	}
	if s.ID == "" {
		s.ID = uuid.New().String()
	}

	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		w := s.Weights
		_, err := tx.Exec(`INSERT INTO submissions (id, name, weight_quality, weight_risk,
				weight_representativeness, weight_equality, weight_gender_balance)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.Name, w.Quality, w.Risk, w.Representativeness, w.Equality, w.GenderBalance)
		if err != nil {
			return err
		}
		for i, o := range s.Outputs {
			if _, err := tx.Exec(`INSERT INTO submission_outputs (submission_id, output_id, position)
				VALUES (?, ?, ?)`, s.ID, o.ID, i); err != nil {
				return fmt.Errorf("output %s: %w", o.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create submission %s: %w", s.ID, err)
	}

	r.log.Debug().Str("submission_id", s.ID).Int("outputs", len(s.Outputs)).Msg("Submission created")
	return nil
}

// GetByID loads a submission with its outputs in membership order.
// Returns nil if it does not exist.
func (r *SubmissionRepository) GetByID(id string) (*domain.Submission, error) {
	var (
		s           domain.Submission
		metricsBlob []byte
		calculated  sql.NullInt64
	)
	err := r.db.QueryRow(`SELECT id, name, weight_quality, weight_risk, weight_representativeness,
			weight_equality, weight_gender_balance, metrics, metrics_last_calculated
		FROM submissions WHERE id = ?`, id).Scan(
		&s.ID, &s.Name, &s.Weights.Quality, &s.Weights.Risk, &s.Weights.Representativeness,
		&s.Weights.Equality, &s.Weights.GenderBalance, &metricsBlob, &calculated,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission %s: %w", id, err)
	}

	if len(metricsBlob) > 0 {
		var m domain.Metrics
		if err := msgpack.Unmarshal(metricsBlob, &m); err != nil {
			return nil, fmt.Errorf("failed to decode metrics of submission %s: %w", id, err)
		}
		s.Metrics = &m
		s.MetricsLastCalculated = timeOrNil(calculated)
	}

	outputs, err := r.members(id)
	if err != nil {
		return nil, err
	}
	s.Outputs = outputs
	return &s, nil
}

func (r *SubmissionRepository) members(id string) ([]domain.Output, error) {
	rows, err := r.db.Query(`SELECT `+outputColumnsQualified+`
		FROM submission_outputs so
		JOIN outputs o ON o.id = so.output_id
		WHERE so.submission_id = ?
		ORDER BY so.position`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load outputs of submission %s: %w", id, err)
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
		return nil, fmt.Errorf("error iterating submission outputs: %w", err)
	}
	return outputs, nil
}

// ListIDs returns every submission ID in insertion order
func (r *SubmissionRepository) ListIDs() ([]string, error) {
	rows, err := r.db.Query("SELECT id FROM submissions ORDER BY rowid")
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan submission id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AddOutput appends an output to a submission and clears its stored metrics.
func (r *SubmissionRepository) AddOutput(submissionID, outputID string) error {
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		var next int
		if err := tx.QueryRow(`SELECT COALESCE(MAX(position) + 1, 0) FROM submission_outputs
			WHERE submission_id = ?`, submissionID).Scan(&next); err != nil {
			return err
		}
		if _, err := tx.Exec(`INSERT INTO submission_outputs (submission_id, output_id, position)
			VALUES (?, ?, ?)`, submissionID, outputID, next); err != nil {
			return err
		}
		return clearMetrics(tx, submissionID)
	})
	if err != nil {
		return fmt.Errorf("failed to add output %s to submission %s: %w", outputID, submissionID, err)
	}
	return nil
}

// RemoveOutput drops an output from a submission and clears its stored
// metrics. Reports whether the output was a member.
func (r *SubmissionRepository) RemoveOutput(submissionID, outputID string) (bool, error) {
	removed := false
	err := database.WithTransaction(r.db, func(tx *sql.Tx) error {
		res, err := tx.Exec(`DELETE FROM submission_outputs WHERE submission_id = ? AND output_id = ?`,
			submissionID, outputID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return nil
		}
		removed = true
		return clearMetrics(tx, submissionID)
	})
	if err != nil {
		return false, fmt.Errorf("failed to remove output %s from submission %s: %w", outputID, submissionID, err)
	}
	return removed, nil
}

// SaveMetrics stores the submission's current metrics snapshot. A nil
// Metrics clears the stored snapshot.
func (r *SubmissionRepository) SaveMetrics(s *domain.Submission) error {
	if s.Metrics == nil {
		return database.WithTransaction(r.db, func(tx *sql.Tx) error {
			return clearMetrics(tx, s.ID)
		})
	}

	blob, err := msgpack.Marshal(s.Metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics of submission %s: %w", s.ID, err)
	}

	res, err := r.db.Exec(`UPDATE submissions
		SET overall_score = ?, metrics = ?, metrics_last_calculated = ?
		WHERE id = ?`, s.Metrics.OverallScore, blob, unixOrNull(s.MetricsLastCalculated), s.ID)
	if err != nil {
		return fmt.Errorf("failed to save metrics of submission %s: %w", s.ID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("submission %s not found", s.ID)
	}

	r.log.Debug().
		Str("submission_id", s.ID).
		Float64("overall_score", s.Metrics.OverallScore).
		Msg("Submission metrics saved")
	return nil
}

func clearMetrics(tx *sql.Tx, submissionID string) error {
	_, err := tx.Exec(`UPDATE submissions
		SET overall_score = NULL, metrics = NULL, metrics_last_calculated = NULL
		WHERE id = ?`, submissionID)
	return err
}
