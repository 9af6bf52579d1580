package validate

import (
	"fmt"
	"math"
	"sort"

	"github.com/partforge/partforge/internal/ir"
	"github.com/partforge/partforge/internal/sketch"
	"github.com/partforge/partforge/internal/tolerance"
)

// Issue codes emitted by validation. Sketch-level codes come from the
// sketch package; both sets share the same wire vocabulary.
const (
	CodeRefInvalid            = "REF_INVALID"
	CodeParamUnused           = "PARAM_UNUSED"
	CodeDuplicateName         = "DUPLICATE_NAME"
	CodeToleranceClassUnknown = "TOLERANCE_CLASS_UNKNOWN"
	CodeMissingSketchRef      = "MISSING_SKETCH_REF"
	CodeImpossibleExtrude     = "IMPOSSIBLE_EXTRUDE"
	CodeNegativeSolid         = "NEGATIVE_SOLID"
	CodeToleranceInfeasible   = "TOLERANCE_INFEASIBLE"
	CodeChainTargetDeviation  = "CHAIN_TARGET_DEVIATION"
)

const targetEps = 1e-9

// Validate runs every semantic check over the part and returns the full
// ordered issue list. It never mutates the part and never stops early.
func Validate(tbl *tolerance.Table, part *ir.Part) []ir.ValidationIssue {
	var issues []ir.ValidationIssue
	issues = append(issues, checkParams(tbl, part)...)
	issues = append(issues, checkFeatures(part)...)
	issues = append(issues, checkChains(tbl, part)...)
	return issues
}

// HasErrors reports whether any issue in the list is error severity.
func HasErrors(issues []ir.ValidationIssue) bool {
	for _, issue := range issues {
		if issue.Severity == ir.SeverityError {
			return true
		}
	}
	return false
}

func checkParams(tbl *tolerance.Table, part *ir.Part) []ir.ValidationIssue {
	used := referencedParams(part)

	var issues []ir.ValidationIssue
	for _, name := range part.SortedParamNames() {
		p := part.Params[name]
		if !used[name] {
			issues = append(issues, ir.ValidationIssue{
				Code:          CodeParamUnused,
				Severity:      ir.SeverityWarning,
				Message:       fmt.Sprintf("Parameter %q is not referenced by any feature or chain", name),
				RelatedParams: []string{name},
			})
		}
		if p.ToleranceClass != "" && !tbl.Has(p.ToleranceClass) {
			issues = append(issues, ir.ValidationIssue{
				Code:          CodeToleranceClassUnknown,
				Severity:      ir.SeverityWarning,
				Message:       fmt.Sprintf("Parameter %q uses unknown tolerance class %q; treated as exact", name, p.ToleranceClass),
				RelatedParams: []string{name},
			})
		}
	}
	return issues
}

// referencedParams collects every param name reached from feature arguments
// or chain terms. String-valued arguments count as references when a param
// of that name exists, matching how ResolveValue treats them.
func referencedParams(part *ir.Part) map[string]bool {
	used := make(map[string]bool)
	for _, f := range part.Features {
		for _, v := range f.Params {
			if v.Kind == ir.ValueRef || v.Kind == ir.ValueString {
				if _, ok := part.Params[v.Str]; ok {
					used[v.Str] = true
				}
			}
		}
	}
	for _, c := range part.Chains {
		for _, term := range c.Terms {
			if _, ok := part.Params[term]; ok {
				used[term] = true
			}
		}
	}
	return used
}

func checkFeatures(part *ir.Part) []ir.ValidationIssue {
	var issues []ir.ValidationIssue

	seen := make(map[string]bool, len(part.Features))
	var extrudes []ir.Feature
	for _, f := range part.Features {
		if seen[f.Name] {
			issues = append(issues, ir.ValidationIssue{
				Code:            CodeDuplicateName,
				Severity:        ir.SeverityError,
				Message:         fmt.Sprintf("Feature name %q is declared more than once", f.Name),
				RelatedFeatures: []string{f.Name},
			})
		}
		seen[f.Name] = true

		// Dangling explicit references, whatever the feature type.
		for _, key := range sortedKeys(f.Params) {
			v := f.Params[key]
			if v.Kind != ir.ValueRef {
				continue
			}
			if _, ok := part.Params[v.Str]; !ok {
				issues = append(issues, ir.ValidationIssue{
					Code:            CodeRefInvalid,
					Severity:        ir.SeverityError,
					Message:         fmt.Sprintf("Feature %q argument %q references unknown parameter %q", f.Name, key, v.Str),
					RelatedFeatures: []string{f.Name},
				})
			}
		}

		switch f.Type {
		case ir.FeatureExtrude:
			extrudes = append(extrudes, f)
			issues = append(issues, checkExtrude(part, f)...)
		case ir.FeatureSketch:
			if f.Sketch != nil {
				issues = append(issues, sketch.Solve(f.Sketch).Issues...)
			}
		}
	}

	if len(extrudes) > 0 && allCuts(extrudes) {
		names := make([]string, len(extrudes))
		for i, f := range extrudes {
			names[i] = f.Name
		}
		issues = append(issues, ir.ValidationIssue{
			Code:            CodeNegativeSolid,
			Severity:        ir.SeverityError,
			Message:         "Every extrude is a cut; the part has no material-adding feature",
			RelatedFeatures: names,
		})
	}
	return issues
}

func checkExtrude(part *ir.Part, f ir.Feature) []ir.ValidationIssue {
	var issues []ir.ValidationIssue

	sketchArg, ok := f.Params["sketch"]
	if !ok || sketchArg.Kind == ir.ValueNumber {
		issues = append(issues, ir.ValidationIssue{
			Code:            CodeMissingSketchRef,
			Severity:        ir.SeverityError,
			Message:         fmt.Sprintf("Extrude %q does not name a sketch feature", f.Name),
			RelatedFeatures: []string{f.Name},
		})
	} else if _, found := part.SketchFor(sketchArg.Str); !found {
		issues = append(issues, ir.ValidationIssue{
			Code:            CodeMissingSketchRef,
			Severity:        ir.SeverityError,
			Message:         fmt.Sprintf("Extrude %q references missing sketch %q", f.Name, sketchArg.Str),
			RelatedFeatures: []string{f.Name},
		})
	}

	distArg, ok := f.Params["distance"]
	if !ok {
		issues = append(issues, ir.ValidationIssue{
			Code:            CodeImpossibleExtrude,
			Severity:        ir.SeverityError,
			Message:         fmt.Sprintf("Extrude %q has no distance argument", f.Name),
			RelatedFeatures: []string{f.Name},
		})
		return issues
	}
	dist, err := part.ResolveValue(distArg)
	switch {
	case err != nil:
		issues = append(issues, ir.ValidationIssue{
			Code:            CodeRefInvalid,
			Severity:        ir.SeverityError,
			Message:         fmt.Sprintf("Extrude %q distance: %v", f.Name, err),
			RelatedFeatures: []string{f.Name},
		})
	case dist <= 0:
		issues = append(issues, ir.ValidationIssue{
			Code:            CodeImpossibleExtrude,
			Severity:        ir.SeverityError,
			Message:         fmt.Sprintf("Extrude %q distance resolves to %v; must be positive", f.Name, dist),
			RelatedFeatures: []string{f.Name},
		})
	}
	return issues
}

// allCuts reports whether every extrude's operation resolves to "cut".
// The operation defaults to "join" when absent.
func allCuts(extrudes []ir.Feature) bool {
	for _, f := range extrudes {
		op, ok := f.Params["operation"]
		if !ok || op.Kind == ir.ValueNumber || op.Str != "cut" {
			return false
		}
	}
	return true
}

func sortedKeys(m map[string]ir.FeatureValue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func checkChains(tbl *tolerance.Table, part *ir.Part) []ir.ValidationIssue {
	var issues []ir.ValidationIssue

	seen := make(map[string]bool, len(part.Chains))
	for _, c := range part.Chains {
		if seen[c.Name] {
			issues = append(issues, ir.ValidationIssue{
				Code:          CodeDuplicateName,
				Severity:      ir.SeverityError,
				Message:       fmt.Sprintf("Chain name %q is declared more than once", c.Name),
				RelatedChains: []string{c.Name},
			})
		}
		seen[c.Name] = true

		for _, term := range c.Terms {
			if _, ok := part.Params[term]; !ok {
				issues = append(issues, ir.ValidationIssue{
					Code:          CodeRefInvalid,
					Severity:      ir.SeverityError,
					Message:       fmt.Sprintf("Chain %q term %q names no parameter", c.Name, term),
					RelatedChains: []string{c.Name},
				})
			}
		}

		eval := tolerance.EvaluateChain(tbl, part, c)
		if c.TargetTolerance != nil && !tolerance.Feasible(eval, *c.TargetTolerance) {
			issues = append(issues, ir.ValidationIssue{
				Code:     CodeToleranceInfeasible,
				Severity: ir.SeverityError,
				Message: fmt.Sprintf("Chain %q worst case [%v, %v] around nominal %v exceeds target tolerance ±%v",
					c.Name, eval.Min, eval.Max, eval.Nominal, *c.TargetTolerance),
				RelatedChains: []string{c.Name},
			})
		}
		if c.TargetValue != nil {
			allowed := targetEps
			if c.TargetTolerance != nil {
				allowed += *c.TargetTolerance
			}
			if math.Abs(eval.Nominal-*c.TargetValue) > allowed {
				issues = append(issues, ir.ValidationIssue{
					Code:     CodeChainTargetDeviation,
					Severity: ir.SeverityWarning,
					Message: fmt.Sprintf("Chain %q nominal %v deviates from target value %v",
						c.Name, eval.Nominal, *c.TargetValue),
					RelatedChains: []string{c.Name},
				})
			}
		}
	}
	return issues
}
