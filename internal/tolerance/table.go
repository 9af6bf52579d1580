// Package tolerance implements the symbolic tolerance-class table and the
// 1D worst-case chain analyzer.
//
// All functions are pure over immutable inputs; the Table is read-only after
// construction and safe for concurrent use.
package tolerance

import (
	"fmt"
	"math"
	"os"
	"sync"

	_ "embed"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var defaultYAML []byte

// Band is one nominal-size band of a tolerance class with its signed
// deviation limits from nominal. A band covers Over < |nominal| <= UpTo.
type Band struct {
	Over  float64 `yaml:"over"`
	UpTo  float64 `yaml:"up_to"`
	Lower float64 `yaml:"lower"`
	Upper float64 `yaml:"upper"`
}

// Table maps ISO-style class symbols (e.g. "g6", "H7") to size bands.
type Table struct {
	classes map[string][]Band
}

type tableFile struct {
	Classes map[string][]Band `yaml:"classes"`
}

// Parse reads a tolerance table from YAML.
func Parse(data []byte) (*Table, error) {
	var file tableFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse tolerance table: %w", err)
	}
	for class, bands := range file.Classes {
		if len(bands) == 0 {
			return nil, fmt.Errorf("tolerance class %q has no bands", class)
		}
		for i, b := range bands {
			if b.Lower > b.Upper {
				return nil, fmt.Errorf("tolerance class %q band %d: lower %v exceeds upper %v", class, i, b.Lower, b.Upper)
			}
			if b.UpTo <= b.Over {
				return nil, fmt.Errorf("tolerance class %q band %d: up_to %v must exceed over %v", class, i, b.UpTo, b.Over)
			}
		}
	}
	return &Table{classes: file.Classes}, nil
}

// Load reads a tolerance table from a YAML file.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tolerance table: %w", err)
	}
	return Parse(data)
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the embedded table. The embedded YAML is part of the
// binary, so a parse failure is a build defect and panics.
func Default() *Table {
	defaultOnce.Do(func() {
		tbl, err := Parse(defaultYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded tolerance table invalid: %v", err))
		}
		defaultTable = tbl
	})
	return defaultTable
}

// Has reports whether the class symbol exists in the table.
func (t *Table) Has(class string) bool {
	_, ok := t.classes[class]
	return ok
}

// Classes returns the number of classes in the table.
func (t *Table) Classes() int {
	return len(t.classes)
}

// Deviations returns the signed [lower, upper] deviation range for a class
// at the given nominal size. Unknown classes report ok=false with zero
// deviations: the analyzer treats such params as exact and validation flags
// the symbol separately.
//
// Band selection uses |nominal|; a nominal outside every band clamps to the
// nearest band rather than failing, so out-of-range sizes still get a
// conservative estimate.
func (t *Table) Deviations(class string, nominal float64) (lower, upper float64, ok bool) {
	bands, exists := t.classes[class]
	if !exists {
		return 0, 0, false
	}
	size := math.Abs(nominal)
	for _, b := range bands {
		if size > b.Over && size <= b.UpTo {
			return b.Lower, b.Upper, true
		}
	}
	if size <= bands[0].Over {
		return bands[0].Lower, bands[0].Upper, true
	}
	last := bands[len(bands)-1]
	return last.Lower, last.Upper, true
}
