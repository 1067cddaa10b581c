package records

import (
	"fmt"
	"io"

	"github.com/aristath/refportfolio/internal/domain"
	"gopkg.in/yaml.v3"
)

// Dataset is a bulk import of staff, outputs and submissions.
type Dataset struct {
	Staff       []Staff
	Outputs     []domain.Output
	Submissions []domain.Submission
}

// ImportSummary counts the records written by Import.
type ImportSummary struct {
	Staff       int `json:"staff" yaml:"staff" msgpack:"staff"`
	Outputs     int `json:"outputs" yaml:"outputs" msgpack:"outputs"`
	Submissions int `json:"submissions" yaml:"submissions" msgpack:"submissions"`
}

type datasetFile struct {
	Staff       []Staff          `yaml:"staff"`
	Outputs     []yaml.Node      `yaml:"outputs"`
	Submissions []submissionNode `yaml:"submissions"`
}

type submissionNode struct {
	ID      string                   `yaml:"id"`
	Name    string                   `yaml:"name"`
	Weights *domain.PortfolioWeights `yaml:"weights"`
	Outputs []string                 `yaml:"outputs"`
}

// LoadDataset decodes a YAML dataset. Output fields left out keep the
// NewOutput defaults and submissions without weights get the default split.
// Submissions list member output IDs.
func LoadDataset(r io.Reader) (*Dataset, error) {
	var file datasetFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty dataset", domain.ErrMalformedInput)
		}
		return nil, fmt.Errorf("%w: failed to parse dataset: %v", domain.ErrMalformedInput, err)
	}

	ds := &Dataset{Staff: file.Staff}
	for i, s := range file.Staff {
		if s.ID == "" {
			return nil, fmt.Errorf("%w: staff %d has no id", domain.ErrMalformedInput, i)
		}
	}

	for i := range file.Outputs {
		o := domain.NewOutput("", "")
		if err := file.Outputs[i].Decode(&o); err != nil {
			return nil, fmt.Errorf("%w: output %d: %v", domain.ErrMalformedInput, i, err)
		}
		if err := o.Validate(); err != nil {
			return nil, fmt.Errorf("output %d: %w", i, err)
		}
		ds.Outputs = append(ds.Outputs, o)
	}

	for i, n := range file.Submissions {
		s := domain.Submission{ID: n.ID, Name: n.Name, Weights: domain.DefaultPortfolioWeights()}
		if n.Weights != nil {
			s.Weights = *n.Weights
		}
		if err := s.Weights.Validate(); err != nil {
			return nil, fmt.Errorf("submission %d: %w", i, err)
		}
		for _, id := range n.Outputs {
			s.Outputs = append(s.Outputs, domain.Output{ID: id})
		}
		ds.Submissions = append(ds.Submissions, s)
	}
	return ds, nil
}

// Import writes the dataset in dependency order: staff, outputs, then
// submissions. It stops at the first failing record.
func Import(ds *Dataset, staff *StaffRepository, outputs *OutputRepository, submissions *SubmissionRepository) (ImportSummary, error) {
	var summary ImportSummary

	for _, s := range ds.Staff {
		if err := staff.Upsert(s); err != nil {
			return summary, err
		}
		summary.Staff++
	}
	for i := range ds.Outputs {
		if err := outputs.Create(&ds.Outputs[i]); err != nil {
			return summary, err
		}
		summary.Outputs++
	}
	for i := range ds.Submissions {
		if err := submissions.Create(&ds.Submissions[i]); err != nil {
			return summary, err
		}
		summary.Submissions++
	}
	return summary, nil
}
