package scheduler

import "github.com/aristath/refportfolio/internal/domain"

// OutputStore is the output persistence the recalculation job needs
type OutputStore interface {
	List() ([]domain.Output, error)
	GetByID(id string) (*domain.Output, error)
	SaveRisks(outputs []domain.Output) error
}

// SubmissionStore is the submission persistence the recalculation job needs
type SubmissionStore interface {
	ListIDs() ([]string, error)
	GetByID(id string) (*domain.Submission, error)
	SaveMetrics(s *domain.Submission) error
}
