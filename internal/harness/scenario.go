package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// Scenario is one conformance scenario: DSL source plus the outcome it
// must produce end to end (compile, validate, rebuild, analyze).
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario pins down.
	Description string `yaml:"description,omitempty"`

	// DSL is the part source fed to the compiler.
	DSL string `yaml:"dsl"`

	// CompileError, when set, is a substring the compile failure must
	// carry. Scenarios with it never reach rebuild.
	CompileError string `yaml:"compile_error,omitempty"`

	// Expect describes the rebuild outcome.
	Expect Expectations `yaml:"expect,omitempty"`
}

// Expectations assert on the rebuild outcome. All fields are optional;
// empty means "don't care".
type Expectations struct {
	// IssueCodes is the complete, ordered list of issue codes.
	IssueCodes []string `yaml:"issue_codes,omitempty"`

	// Features maps feature name to its build status (built/failed/skipped).
	Features map[string]string `yaml:"features,omitempty"`

	// Chains maps chain name to its worst-case evaluation.
	Chains map[string]ChainExpect `yaml:"chains,omitempty"`
}

// ChainExpect is an expected chain stackup, compared within a small delta.
type ChainExpect struct {
	Nominal float64 `yaml:"nominal"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
}

// LoadScenario reads one scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("load scenario %s: missing name", path)
	}
	if s.DSL == "" {
		return nil, fmt.Errorf("load scenario %s: missing dsl", path)
	}
	return &s, nil
}

// LoadDir loads every *.yaml scenario in a directory, sorted by file name
// so runs are order-stable.
func LoadDir(dir string) ([]*Scenario, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, fmt.Errorf("load scenarios: %w", err)
	}
	sort.Strings(matches)

	scenarios := make([]*Scenario, 0, len(matches))
	for _, path := range matches {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}
