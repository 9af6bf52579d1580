package rebuild

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/partforge/partforge/internal/ir"
	"github.com/partforge/partforge/internal/kernel"
	"github.com/partforge/partforge/internal/sketch"
	"github.com/partforge/partforge/internal/tolerance"
	"github.com/partforge/partforge/internal/validate"
)

// Issue codes owned by the orchestrator.
const (
	CodeFeatureCycle       = "FEATURE_CYCLE"
	CodeFeatureBuildFailed = "FEATURE_BUILD_FAILED"
)

// FeatureStatus is the per-feature outcome of a rebuild.
type FeatureStatus string

const (
	StatusBuilt   FeatureStatus = "built"
	StatusFailed  FeatureStatus = "failed"
	StatusSkipped FeatureStatus = "skipped"
)

// FeatureResult records one feature's build outcome. Handle is set only
// for built features.
type FeatureResult struct {
	Feature string             `json:"feature"`
	Status  FeatureStatus      `json:"status"`
	Handle  *kernel.MeshHandle `json:"handle,omitempty"`
}

// Result is a complete rebuild outcome. Results are immutable once
// returned; the cache hands the same pointer to every caller of an
// unchanged part.
type Result struct {
	PartHash       string               `json:"part_hash"`
	FeatureResults []FeatureResult      `json:"feature_results"`
	ParamsEval     map[string]ir.Eval   `json:"params_eval"`
	ChainsEval     map[string]ir.Eval   `json:"chains_eval"`
	Issues         []ir.ValidationIssue `json:"issues"`
	Meshes         []kernel.MeshHandle  `json:"meshRefs"`
}

// Orchestrator runs rebuilds against one kernel and tolerance table.
// Safe for concurrent use; two different parts rebuild fully in parallel.
type Orchestrator struct {
	kernel kernel.Kernel
	table  *tolerance.Table
	log    *slog.Logger

	mu    sync.RWMutex
	cache map[string]*Result
}

// NewOrchestrator creates an orchestrator. A nil logger falls back to
// slog.Default.
func NewOrchestrator(k kernel.Kernel, tbl *tolerance.Table, log *slog.Logger) *Orchestrator {
	if log == nil {
		log = slog.Default()
	}
	return &Orchestrator{
		kernel: k,
		table:  tbl,
		log:    log,
		cache:  make(map[string]*Result),
	}
}

// Rebuild validates, builds, and evaluates the part. The returned error is
// non-nil only for cancellation; every domain failure is an issue inside
// the Result instead.
func (o *Orchestrator) Rebuild(ctx context.Context, part *ir.Part) (*Result, error) {
	hash, err := ir.PartHash(part)
	if err != nil {
		return nil, fmt.Errorf("hash part: %w", err)
	}

	o.mu.RLock()
	cached, hit := o.cache[hash]
	o.mu.RUnlock()
	if hit {
		o.log.Debug("rebuild cache hit", "part", part.Name, "hash", hash)
		return cached, nil
	}

	res, err := o.rebuild(ctx, part, hash)
	if err != nil {
		return nil, err
	}

	o.mu.Lock()
	o.cache[hash] = res
	o.mu.Unlock()
	return res, nil
}

func (o *Orchestrator) rebuild(ctx context.Context, part *ir.Part, hash string) (*Result, error) {
	// Dependency order is undefined under a cycle, so nothing else runs:
	// no geometry, no evaluation, one fatal issue.
	order, cyclic := sortFeatures(part)
	if cyclic != nil {
		o.log.Warn("rebuild aborted on feature cycle", "part", part.Name, "features", cyclic)
		return &Result{
			PartHash: hash,
			Issues: []ir.ValidationIssue{{
				Code:            CodeFeatureCycle,
				Severity:        ir.SeverityError,
				Message:         fmt.Sprintf("Feature dependencies form a cycle involving %v", cyclic),
				RelatedFeatures: cyclic,
			}},
		}, nil
	}

	issues := validate.Validate(o.table, part)
	doomed := errorFeatures(issues)

	solved := solveSketches(part)
	built := make(map[string]bool, len(part.Features))
	resultsByIndex := make([]FeatureResult, len(part.Features))
	var meshes []kernel.MeshHandle
	var buildIssues []ir.ValidationIssue

	for _, i := range order {
		f := part.Features[i]

		// Cooperative cancellation between kernel calls: a stale rebuild
		// must never publish partial results.
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		if dep, ok := dependencyOf(part, f); ok && !built[dep] {
			resultsByIndex[i] = FeatureResult{Feature: f.Name, Status: StatusSkipped}
			o.log.Debug("feature skipped", "part", part.Name, "feature", f.Name, "missing", dep)
			continue
		}
		if doomed[f.Name] {
			// Validation already reported why; rebuilding it would only
			// duplicate the issue.
			resultsByIndex[i] = FeatureResult{Feature: f.Name, Status: StatusFailed}
			continue
		}

		handle, err := o.kernel.BuildFeature(ctx, o.buildRequest(part, f, solved, meshes))
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			resultsByIndex[i] = FeatureResult{Feature: f.Name, Status: StatusFailed}
			buildIssues = append(buildIssues, ir.ValidationIssue{
				Code:            CodeFeatureBuildFailed,
				Severity:        ir.SeverityError,
				Message:         fmt.Sprintf("Kernel failed to build feature %q: %v", f.Name, err),
				RelatedFeatures: []string{f.Name},
			})
			o.log.Warn("feature build failed", "part", part.Name, "feature", f.Name, "err", err)
			continue
		}
		resultsByIndex[i] = FeatureResult{Feature: f.Name, Status: StatusBuilt, Handle: &handle}
		meshes = append(meshes, handle)
		built[f.Name] = true
	}

	res := &Result{
		PartHash:       hash,
		FeatureResults: resultsByIndex,
		ParamsEval:     tolerance.EvaluateAllParams(o.table, part),
		ChainsEval:     tolerance.EvaluateAllChains(o.table, part),
		Issues:         append(issues, buildIssues...),
		Meshes:         meshes,
	}
	o.log.Info("rebuild complete", "part", part.Name, "hash", hash,
		"meshes", len(meshes), "issues", len(res.Issues))
	return res, nil
}

func (o *Orchestrator) buildRequest(part *ir.Part, f ir.Feature, solved map[string]*ir.Sketch, prior []kernel.MeshHandle) kernel.BuildRequest {
	req := kernel.BuildRequest{
		Feature: f.Name,
		Type:    f.Type,
		Params:  make(map[string]float64, len(f.Params)),
		Prior:   prior,
	}

	for key, v := range f.Params {
		switch key {
		case "sketch":
			if v.Kind != ir.ValueNumber {
				req.Sketch = solved[v.Str]
			}
		case "operation":
			if v.Kind != ir.ValueNumber {
				req.Operation = kernel.Operation(v.Str)
			}
		default:
			if n, err := part.ResolveValue(v); err == nil {
				req.Params[key] = n
			}
		}
	}
	if f.Type == ir.FeatureSketch {
		req.Sketch = solved[f.Name]
	}
	return req
}

// solveSketches solves every embedded sketch once. A failed solve keeps the
// original sketch so downstream features still get best-effort geometry.
func solveSketches(part *ir.Part) map[string]*ir.Sketch {
	out := make(map[string]*ir.Sketch)
	for _, f := range part.Features {
		if f.Type != ir.FeatureSketch || f.Sketch == nil {
			continue
		}
		if _, dup := out[f.Name]; dup {
			continue
		}
		out[f.Name] = sketch.Solve(f.Sketch).Sketch
	}
	return out
}

// errorFeatures collects the features cited by error-severity issues whose
// cause prevents a meaningful build.
func errorFeatures(issues []ir.ValidationIssue) map[string]bool {
	out := make(map[string]bool)
	for _, issue := range issues {
		if issue.Severity != ir.SeverityError {
			continue
		}
		switch issue.Code {
		case validate.CodeImpossibleExtrude, validate.CodeMissingSketchRef, validate.CodeRefInvalid:
			for _, name := range issue.RelatedFeatures {
				out[name] = true
			}
		}
	}
	return out
}
