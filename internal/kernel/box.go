package kernel

import (
	"context"
	"fmt"
	"math"

	"github.com/partforge/partforge/internal/ir"
)

// BoxKernel is the reference kernel: every solid is approximated by the
// axis-aligned bounding box of its sketch profile swept through the extrude
// distance. Sketch planes are ignored; all geometry lands in sketch-local
// XY with the extrude along Z.
type BoxKernel struct {
	handles HandleGenerator
}

// NewBoxKernel creates a box kernel. A nil generator defaults to UUIDv7
// handles.
func NewBoxKernel(gen HandleGenerator) *BoxKernel {
	if gen == nil {
		gen = UUIDGenerator{}
	}
	return &BoxKernel{handles: gen}
}

// BuildFeature implements Kernel.
func (k *BoxKernel) BuildFeature(ctx context.Context, req BuildRequest) (MeshHandle, error) {
	if err := ctx.Err(); err != nil {
		return MeshHandle{}, err
	}

	op := req.Operation
	if op == "" {
		op = OpJoin
	}

	switch req.Type {
	case ir.FeatureSketch:
		return k.buildSketch(req, op)
	case ir.FeatureExtrude:
		return k.buildExtrude(req, op)
	default:
		return MeshHandle{}, &BuildError{Feature: req.Feature, Reason: fmt.Sprintf("unsupported feature type %q", req.Type)}
	}
}

func (k *BoxKernel) buildSketch(req BuildRequest, op Operation) (MeshHandle, error) {
	if req.Sketch == nil {
		return MeshHandle{}, &BuildError{Feature: req.Feature, Reason: "sketch feature carries no sketch"}
	}
	profile, ok := profileBounds(req.Sketch)
	if !ok {
		return MeshHandle{}, &BuildError{Feature: req.Feature, Reason: "sketch has no profile geometry"}
	}
	return MeshHandle{
		ID:        k.handles.NewHandle(),
		Feature:   req.Feature,
		Operation: op,
		Bounds:    profile,
	}, nil
}

func (k *BoxKernel) buildExtrude(req BuildRequest, op Operation) (MeshHandle, error) {
	if req.Sketch == nil {
		return MeshHandle{}, &BuildError{Feature: req.Feature, Reason: "extrude has no sketch to sweep"}
	}
	distance, ok := req.Params["distance"]
	if !ok || distance <= 0 {
		return MeshHandle{}, &BuildError{Feature: req.Feature, Reason: fmt.Sprintf("extrude distance %v is not positive", distance)}
	}
	profile, ok := profileBounds(req.Sketch)
	if !ok {
		return MeshHandle{}, &BuildError{Feature: req.Feature, Reason: "sketch has no profile geometry"}
	}
	profile.Max[2] = distance
	return MeshHandle{
		ID:        k.handles.NewHandle(),
		Feature:   req.Feature,
		Operation: op,
		Bounds:    profile,
	}, nil
}

// profileBounds computes the 2D bounding box of a sketch's non-construction
// entities, embedded at z = 0. Construction geometry guides constraints but
// contributes no profile.
func profileBounds(s *ir.Sketch) (Bounds, bool) {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	found := false

	grow := func(x, y float64) {
		minX = math.Min(minX, x)
		minY = math.Min(minY, y)
		maxX = math.Max(maxX, x)
		maxY = math.Max(maxY, y)
		found = true
	}

	for _, e := range s.Entities {
		if e.Construction {
			continue
		}
		switch e.Type {
		case ir.EntityLine:
			if e.Start != nil && e.End != nil {
				grow(e.Start.X(), e.Start.Y())
				grow(e.End.X(), e.End.Y())
			}
		case ir.EntityCircle:
			if e.Center != nil && e.Radius != nil {
				grow(e.Center.X()-*e.Radius, e.Center.Y()-*e.Radius)
				grow(e.Center.X()+*e.Radius, e.Center.Y()+*e.Radius)
			}
		case ir.EntityRectangle:
			if e.Corner1 != nil && e.Corner2 != nil {
				grow(e.Corner1.X(), e.Corner1.Y())
				grow(e.Corner2.X(), e.Corner2.Y())
			}
		}
	}
	if !found {
		return Bounds{}, false
	}
	return Bounds{Min: [3]float64{minX, minY, 0}, Max: [3]float64{maxX, maxY, 0}}, true
}
