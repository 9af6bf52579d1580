// Package harness runs YAML conformance scenarios through the whole
// pipeline and compares outcomes against expectations and golden files.
//
// Scenarios use a deterministic kernel handle sequence so repeated runs
// produce identical output.
package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/partforge/partforge/internal/dsl"
	"github.com/partforge/partforge/internal/ir"
	"github.com/partforge/partforge/internal/kernel"
	"github.com/partforge/partforge/internal/rebuild"
	"github.com/partforge/partforge/internal/tolerance"
)

// Outcome is the end-to-end result of one scenario run.
type Outcome struct {
	Part       *ir.Part
	Result     *rebuild.Result
	CompileErr error
}

// IssueCodes returns the ordered issue codes of the rebuild, never nil.
func (o *Outcome) IssueCodes() []string {
	codes := make([]string, 0, len(o.Result.Issues))
	for _, issue := range o.Result.Issues {
		codes = append(codes, issue.Code)
	}
	return codes
}

// FeatureStatuses maps feature name to build status, never nil.
func (o *Outcome) FeatureStatuses() map[string]string {
	out := make(map[string]string, len(o.Result.FeatureResults))
	for _, fr := range o.Result.FeatureResults {
		out[fr.Feature] = string(fr.Status)
	}
	return out
}

// Run compiles and rebuilds one scenario. A compile failure is an outcome,
// not an error, when the scenario expects one.
func Run(scenario *Scenario) (*Outcome, error) {
	part, err := dsl.Compile(scenario.DSL)
	if err != nil {
		if scenario.CompileError != "" {
			return &Outcome{CompileErr: err}, nil
		}
		return nil, fmt.Errorf("scenario %s: compile: %w", scenario.Name, err)
	}
	if scenario.CompileError != "" {
		return nil, fmt.Errorf("scenario %s: expected compile error, got none", scenario.Name)
	}

	orch := rebuild.NewOrchestrator(
		kernel.NewBoxKernel(kernel.NewSequenceGenerator("mesh")),
		tolerance.Default(),
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	result, err := orch.Rebuild(context.Background(), part)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: rebuild: %w", scenario.Name, err)
	}
	return &Outcome{Part: part, Result: result}, nil
}
