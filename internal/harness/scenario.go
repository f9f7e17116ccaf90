package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/mangaq/internal/queryir"
	"github.com/roach88/mangaq/internal/store"
)

// Scenario is one YAML test file.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Fields is an optional CUE field registry. Relative paths resolve
	// against the scenario file. Empty uses the built-in manga registry.
	Fields string `yaml:"fields,omitempty"`

	// DefaultOr is the operator of the root and of unprefixed groups.
	DefaultOr bool `yaml:"default_or,omitempty"`

	// Viewer is the record id of the searching user.
	Viewer string `yaml:"viewer,omitempty"`

	// Select overrides the projected fields.
	Select []string `yaml:"select,omitempty"`

	// Directory seeds the identifier directory before any case runs.
	Directory store.SeedFile `yaml:"directory,omitempty"`

	Cases []Case `yaml:"cases"`
}

// Case is one query and its expectations.
type Case struct {
	Name    string      `yaml:"name"`
	Query   string      `yaml:"query"`
	Request RequestSpec `yaml:"request,omitempty"`
	Expect  Expect      `yaml:"expect"`
}

// RequestSpec is the YAML form of search.Request minus the filter.
// Zero values default to created, ascending, page 1, limit 20.
type RequestSpec struct {
	Order string `yaml:"order,omitempty"`
	Desc  bool   `yaml:"desc,omitempty"`
	Page  uint   `yaml:"page,omitempty"`
	Limit uint   `yaml:"limit,omitempty"`
}

// Expect lists what a case must produce. Empty fields are not checked.
type Expect struct {
	Tree        string   `yaml:"tree,omitempty"`
	Diagnostics []string `yaml:"diagnostics,omitempty"`
	Contains    []string `yaml:"contains,omitempty"`
	NotContains []string `yaml:"not_contains,omitempty"`
	Query       string   `yaml:"query,omitempty"`
	Error       string   `yaml:"error,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if scenario.Fields != "" && !filepath.IsAbs(scenario.Fields) {
		scenario.Fields = filepath.Join(filepath.Dir(path), scenario.Fields)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Cases) == 0 {
		return fmt.Errorf("cases list is required and must be non-empty")
	}

	if s.Fields != "" {
		if _, err := os.Stat(s.Fields); os.IsNotExist(err) {
			return fmt.Errorf("field registry not found: %s", s.Fields)
		}
	}

	seen := make(map[string]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("cases[%d]: name is required", i)
		}
		if seen[c.Name] {
			return fmt.Errorf("cases[%d]: duplicate name %q", i, c.Name)
		}
		seen[c.Name] = true

		if c.Request.Order != "" {
			if _, err := queryir.ParseOrder(c.Request.Order); err != nil {
				return fmt.Errorf("cases[%d].request: %w", i, err)
			}
		}
		if c.Expect.Error != "" && (c.Expect.Query != "" || len(c.Expect.Contains) > 0) {
			return fmt.Errorf("cases[%d].expect: error cannot be combined with query or contains", i)
		}
	}

	return nil
}
