package kernel

import (
	"context"
	"fmt"

	"github.com/partforge/partforge/internal/ir"
)

// Operation selects how a feature's geometry combines with prior geometry.
type Operation string

const (
	OpJoin Operation = "join"
	OpCut  Operation = "cut"
)

// Bounds is an axis-aligned 3D box.
type Bounds struct {
	Min [3]float64 `json:"min"`
	Max [3]float64 `json:"max"`
}

// Union returns the smallest box containing both operands.
func (b Bounds) Union(o Bounds) Bounds {
	out := b
	for i := 0; i < 3; i++ {
		if o.Min[i] < out.Min[i] {
			out.Min[i] = o.Min[i]
		}
		if o.Max[i] > out.Max[i] {
			out.Max[i] = o.Max[i]
		}
	}
	return out
}

// MeshHandle is the opaque result of building one feature. Feature carries
// the feature name tag for selection round-tripping; Bounds is whatever
// spatial summary the kernel chose to expose.
type MeshHandle struct {
	ID        string    `json:"id"`
	Feature   string    `json:"feature"`
	Operation Operation `json:"operation"`
	Bounds    Bounds    `json:"bounds"`
}

// BuildRequest is one feature build delegated to the kernel. Params hold
// only resolved numeric arguments; reference resolution is the caller's
// concern. Sketch is the solved sketch an extrude consumes.
type BuildRequest struct {
	Feature   string
	Type      ir.FeatureType
	Params    map[string]float64
	Operation Operation
	Sketch    *ir.Sketch
	Prior     []MeshHandle
}

// Kernel builds geometry for one feature at a time. Implementations may be
// slow and must honor ctx cancellation; the orchestrator treats a timeout
// exactly like a build failure for the affected feature.
type Kernel interface {
	BuildFeature(ctx context.Context, req BuildRequest) (MeshHandle, error)
}

// BuildError is a per-feature kernel failure. It never aborts sibling
// features; the orchestrator surfaces it as an error-severity issue.
type BuildError struct {
	Feature string
	Reason  string
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("build %s: %s", e.Feature, e.Reason)
}

// AggregateBounds unions the bounds of all material-adding handles.
// Cuts remove material and can only shrink a solid, so the box summary
// ignores them. Returns false when nothing added material.
func AggregateBounds(handles []MeshHandle) (Bounds, bool) {
	var out Bounds
	found := false
	for _, h := range handles {
		if h.Operation == OpCut {
			continue
		}
		if !found {
			out = h.Bounds
			found = true
			continue
		}
		out = out.Union(h.Bounds)
	}
	return out, found
}
