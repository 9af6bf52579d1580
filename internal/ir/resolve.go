package ir

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// SortedParamNames returns the part's param names in sorted order.
// This is the canonical iteration order for everything that walks params.
func (p *Part) SortedParamNames() []string {
	names := make([]string, 0, len(p.Params))
	for name := range p.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Param looks up a parameter by name.
func (p *Part) Param(name string) (Param, bool) {
	param, ok := p.Params[name]
	return param, ok
}

// FeatureByName looks up a feature by its stable name key.
// Returns the first declaration when names are duplicated; duplicates are
// reported by validation, not resolved here.
func (p *Part) FeatureByName(name string) (*Feature, bool) {
	for i := range p.Features {
		if p.Features[i].Name == name {
			return &p.Features[i], true
		}
	}
	return nil, false
}

// SketchFor returns the embedded sketch of the named sketch feature.
func (p *Part) SketchFor(featureName string) (*Sketch, bool) {
	f, ok := p.FeatureByName(featureName)
	if !ok || f.Type != FeatureSketch || f.Sketch == nil {
		return nil, false
	}
	return f.Sketch, true
}

// ResolveValue resolves a feature argument to a concrete number.
//
// A number resolves to itself. A string resolves as a param reference when a
// param of that name exists; otherwise the "N unit" literal form (e.g.
// "5 mm") is accepted. Anything else is an error the caller surfaces as an
// issue, not a panic.
func (p *Part) ResolveValue(v FeatureValue) (float64, error) {
	switch v.Kind {
	case ValueNumber:
		return v.Num, nil
	case ValueRef, ValueString:
		if param, ok := p.Params[v.Str]; ok {
			return param.Value, nil
		}
		fields := strings.Fields(v.Str)
		if len(fields) == 2 {
			if f, err := strconv.ParseFloat(fields[0], 64); err == nil {
				return f, nil
			}
		}
		return 0, fmt.Errorf("cannot resolve %q to a numeric value", v.Str)
	default:
		return 0, fmt.Errorf("unknown feature value kind: %d", v.Kind)
	}
}

// EntityByID looks up a sketch entity by id.
func (s *Sketch) EntityByID(id string) (*SketchEntity, bool) {
	for i := range s.Entities {
		if s.Entities[i].ID == id {
			return &s.Entities[i], true
		}
	}
	return nil, false
}
