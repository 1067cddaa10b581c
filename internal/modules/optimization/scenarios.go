package optimization

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"

	"github.com/aristath/refportfolio/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed scenarios/default.yaml
var defaultScenariosYAML []byte

// Scenario is a named constraint set for what-if runs.
type Scenario struct {
	Name        string `json:"name" yaml:"name"`
	Constraints `yaml:",inline"`
}

type scenarioFile struct {
	Scenarios []yaml.Node `yaml:"scenarios"`
}

// DefaultScenarios returns the built-in Conservative, Balanced, Ambitious and
// Inclusive scenarios.
func DefaultScenarios() ([]Scenario, error) {
	return LoadScenarios(bytes.NewReader(defaultScenariosYAML))
}

// LoadScenarios decodes a YAML scenario list. Fields a scenario omits keep
// their DefaultConstraints values. Every scenario is validated.
func LoadScenarios(r io.Reader) ([]Scenario, error) {
	var file scenarioFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%w: empty scenario file", domain.ErrMalformedInput)
		}
		return nil, fmt.Errorf("%w: failed to parse scenarios: %v", domain.ErrMalformedInput, err)
	}
	if len(file.Scenarios) == 0 {
		return nil, fmt.Errorf("%w: no scenarios defined", domain.ErrMalformedInput)
	}

	seen := make(map[string]bool, len(file.Scenarios))
	scenarios := make([]Scenario, 0, len(file.Scenarios))
	for i := range file.Scenarios {
		s := Scenario{Constraints: DefaultConstraints()}
		if err := file.Scenarios[i].Decode(&s); err != nil {
			return nil, fmt.Errorf("%w: scenario %d: %v", domain.ErrMalformedInput, i, err)
		}
		if s.Name == "" {
			return nil, fmt.Errorf("%w: scenario %d has no name", domain.ErrMalformedInput, i)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("%w: duplicate scenario %q", domain.ErrMalformedInput, s.Name)
		}
		seen[s.Name] = true
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
