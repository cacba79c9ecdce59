package harness

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines one conformance case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden files.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Core is the CUE core package directory, relative to the scenario file.
	Core string `yaml:"core"`

	// Config is an optional configuration file, relative to the scenario file.
	Config string `yaml:"config,omitempty"`

	// Tolerance overrides mesh.tolerance when positive.
	Tolerance float64 `yaml:"tolerance,omitempty"`

	Expect Expect `yaml:"expect"`

	// Assertions validate the compiled core and its decks.
	Assertions []Assertion `yaml:"assertions"`

	// dir is the directory of the scenario file.
	dir string
}

// Expect specifies the overall build outcome.
type Expect struct {
	// Error, when set, requires the build to fail. It matches a structural
	// error code (e.g. "EMPTY_SLOT") or a substring of the error message.
	Error string `yaml:"error,omitempty"`

	// Warnings is the exact number of consistency warnings.
	Warnings *int `yaml:"warnings,omitempty"`

	// Codes lists warning codes that must each appear at least once.
	Codes []string `yaml:"codes,omitempty"`

	// Mesh is the expected global axial mesh.
	Mesh []float64 `yaml:"mesh,omitempty"`
}

// Assertion validates one property of the compiled core.
type Assertion struct {
	// Type specifies the assertion type:
	// - "layers": run-length layer record of the assembly at Location
	// - "canonical_id": entity of Kind with sort key Key has ID
	// - "deck_contains": deck "xs" or "core" contains Text
	// - "lattice_row": row Row of hex_conf equals Text
	Type string `yaml:"type"`

	Location string `yaml:"location,omitempty"`
	Record   string `yaml:"record,omitempty"`

	Kind string `yaml:"kind,omitempty"`
	Key  string `yaml:"key,omitempty"`
	ID   int    `yaml:"id,omitempty"`

	Deck string `yaml:"deck,omitempty"`
	Text string `yaml:"text,omitempty"`

	Row int `yaml:"row,omitempty"`
}

// Assertion type constants.
const (
	AssertLayers       = "layers"
	AssertCanonicalID  = "canonical_id"
	AssertDeckContains = "deck_contains"
	AssertLatticeRow   = "lattice_row"
)

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
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := scenario.Validate(); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}

	scenario.dir = filepath.Dir(path)
	return &scenario, nil
}

// Validate checks required fields and assertion shapes.
func (s *Scenario) Validate() error {
	var errs []error
	if s.Name == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if s.Core == "" {
		errs = append(errs, errors.New("core is required"))
	}
	if s.Tolerance < 0 {
		errs = append(errs, fmt.Errorf("tolerance must be >= 0, got %g", s.Tolerance))
	}
	for i, a := range s.Assertions {
		if err := a.validate(); err != nil {
			errs = append(errs, fmt.Errorf("assertions[%d]: %w", i, err))
		}
	}
	return errors.Join(errs...)
}

func (a Assertion) validate() error {
	switch a.Type {
	case AssertLayers:
		if a.Location == "" || a.Record == "" {
			return errors.New("layers requires location and record")
		}
	case AssertCanonicalID:
		if a.Kind == "" || a.Key == "" || a.ID < 1 {
			return errors.New("canonical_id requires kind, key and a positive id")
		}
	case AssertDeckContains:
		if a.Deck != "xs" && a.Deck != "core" {
			return fmt.Errorf("deck_contains: deck must be xs or core, got %q", a.Deck)
		}
		if a.Text == "" {
			return errors.New("deck_contains requires text")
		}
	case AssertLatticeRow:
		if a.Row < 1 || a.Text == "" {
			return errors.New("lattice_row requires a row >= 1 and text")
		}
	case "":
		return errors.New("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

// resolve returns p relative to the scenario file.
func (s *Scenario) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(s.dir, p)
}
