package rebuild

import (
	"github.com/partforge/partforge/internal/ir"
)

// dependencyOf returns the name of the feature this feature consumes, if
// any. An extrude depends on whatever its "sketch" argument names, even
// when that target is itself an extrude; resolving such a reference is
// exactly how cycles form, and the sort must see the edge to catch them.
func dependencyOf(part *ir.Part, f ir.Feature) (string, bool) {
	if f.Type != ir.FeatureExtrude {
		return "", false
	}
	arg, ok := f.Params["sketch"]
	if !ok || arg.Kind == ir.ValueNumber {
		return "", false
	}
	if _, exists := part.FeatureByName(arg.Str); !exists {
		return "", false
	}
	return arg.Str, true
}

// sortFeatures orders feature indexes so every feature follows its
// dependency, keeping declaration order among independent features. The
// second return lists the features stuck in a dependency cycle, in
// declaration order; it is nil when the graph is acyclic.
func sortFeatures(part *ir.Part) (order []int, cyclic []string) {
	emitted := make(map[string]bool, len(part.Features))
	done := make([]bool, len(part.Features))

	for remaining := len(part.Features); remaining > 0; {
		progressed := false
		for i, f := range part.Features {
			if done[i] {
				continue
			}
			if dep, ok := dependencyOf(part, f); ok && !emitted[dep] {
				continue
			}
			order = append(order, i)
			emitted[f.Name] = true
			done[i] = true
			remaining--
			progressed = true
		}
		if !progressed {
			for i, f := range part.Features {
				if !done[i] {
					cyclic = append(cyclic, f.Name)
				}
			}
			return nil, cyclic
		}
	}
	return order, nil
}
