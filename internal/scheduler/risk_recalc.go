package scheduler

import (
	"errors"
	"fmt"

	"github.com/aristath/refportfolio/internal/domain"
	"github.com/aristath/refportfolio/internal/modules/portfolio"
	"github.com/aristath/refportfolio/internal/modules/risk"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned when a targeted output or submission does not exist
var ErrNotFound = errors.New("record not found")

// RecalcOptions narrows what a recalculation touches
type RecalcOptions struct {
	OutputID        string // only this output; empty means all
	SubmissionID    string // only this submission; empty means all
	OutputsOnly     bool
	SubmissionsOnly bool
}

// RecalcReport summarises one recalculation run
type RecalcReport struct {
	Outputs            risk.BatchSummary `json:"outputs" yaml:"outputs" msgpack:"outputs"`
	SubmissionsUpdated int               `json:"submissions_updated" yaml:"submissions_updated" msgpack:"submissions_updated"`
	SubmissionsFailed  int               `json:"submissions_failed" yaml:"submissions_failed" msgpack:"submissions_failed"`
}

// RiskRecalcJob recomputes stored output risks and then submission metrics,
// so submissions are scored against fresh risks.
type RiskRecalcJob struct {
	outputs     OutputStore
	submissions SubmissionStore
	risk        *risk.Calculator
	metrics     *portfolio.Calculator
	options     RecalcOptions
	last        RecalcReport
	log         zerolog.Logger
}

// NewRiskRecalcJob creates a new RiskRecalcJob
func NewRiskRecalcJob(
	outputs OutputStore,
	submissions SubmissionStore,
	riskCalc *risk.Calculator,
	metrics *portfolio.Calculator,
) *RiskRecalcJob {
	return &RiskRecalcJob{
		outputs:     outputs,
		submissions: submissions,
		risk:        riskCalc,
		metrics:     metrics,
		log:         zerolog.Nop(),
	}
}

// SetLogger sets the logger for the job
func (j *RiskRecalcJob) SetLogger(log zerolog.Logger) {
	j.log = log.With().Str("job", j.Name()).Logger()
}

// SetOptions narrows subsequent runs
func (j *RiskRecalcJob) SetOptions(o RecalcOptions) {
	j.options = o
}

// Name returns the job name
func (j *RiskRecalcJob) Name() string {
	return "risk_recalculation"
}

// LastReport returns the report of the most recent run
func (j *RiskRecalcJob) LastReport() RecalcReport {
	return j.last
}

// Run recomputes risks and metrics. Output risks are all-or-nothing: one
// malformed output aborts the run before anything is written. Submissions
// are independent; a failed one is logged and the rest still run.
func (j *RiskRecalcJob) Run() error {
	report := RecalcReport{}
	defer func() { j.last = report }()

	if !j.options.SubmissionsOnly {
		summary, err := j.recalcOutputs()
		if err != nil {
			return err
		}
		report.Outputs = summary
	}

	if !j.options.OutputsOnly {
		updated, failed, err := j.recalcSubmissions()
		report.SubmissionsUpdated = updated
		report.SubmissionsFailed = failed
		if err != nil {
			return err
		}
	}

	j.log.Info().
		Int("outputs_updated", report.Outputs.Updated).
		Float64("avg_risk", report.Outputs.AverageRisk).
		Int("submissions_updated", report.SubmissionsUpdated).
		Msg("Risk recalculation complete")

	return nil
}

func (j *RiskRecalcJob) recalcOutputs() (risk.BatchSummary, error) {
	var outputs []domain.Output
	if j.options.OutputID != "" {
		o, err := j.outputs.GetByID(j.options.OutputID)
		if err != nil {
			return risk.BatchSummary{}, err
		}
		if o == nil {
			return risk.BatchSummary{}, fmt.Errorf("output %s: %w", j.options.OutputID, ErrNotFound)
		}
		outputs = []domain.Output{*o}
	} else {
		all, err := j.outputs.List()
		if err != nil {
			return risk.BatchSummary{}, err
		}
		outputs = all
	}

	if len(outputs) == 0 {
		j.log.Warn().Msg("No outputs found")
		return risk.BatchSummary{}, nil
	}

	summary, err := j.risk.RecomputeAll(outputs)
	if err != nil {
		return risk.BatchSummary{}, fmt.Errorf("failed to recompute output risks: %w", err)
	}
	if err := j.outputs.SaveRisks(outputs); err != nil {
		return risk.BatchSummary{}, err
	}
	return summary, nil
}

func (j *RiskRecalcJob) recalcSubmissions() (updated, failed int, err error) {
	ids := []string{j.options.SubmissionID}
	if j.options.SubmissionID == "" {
		ids, err = j.submissions.ListIDs()
		if err != nil {
			return 0, 0, err
		}
	}

	for _, id := range ids {
		s, err := j.submissions.GetByID(id)
		if err != nil {
			failed++
			j.log.Error().Err(err).Str("submission_id", id).Msg("Failed to load submission")
			continue
		}
		if s == nil {
			if j.options.SubmissionID != "" {
				return updated, failed, fmt.Errorf("submission %s: %w", id, ErrNotFound)
			}
			continue
		}

		if err := j.metrics.Recompute(s); err != nil {
			failed++
			j.log.Error().Err(err).Str("submission_id", id).Msg("Failed to recompute submission")
			continue
		}
		if err := j.submissions.SaveMetrics(s); err != nil {
			failed++
			j.log.Error().Err(err).Str("submission_id", id).Msg("Failed to save submission metrics")
			continue
		}

		updated++
		j.log.Debug().
			Str("submission_id", id).
			Float64("quality", s.Metrics.PortfolioQuality).
			Float64("overall_score", s.Metrics.OverallScore).
			Msg("Submission metrics updated")
	}

	if failed > 0 {
		return updated, failed, fmt.Errorf("%d of %d submissions failed", failed, len(ids))
	}
	return updated, failed, nil
}
