package sketch

import (
	"fmt"
	"math"

	"github.com/partforge/partforge/internal/ir"
)

// Issue codes emitted by the solver.
const (
	CodeConstraintRefInvalid  = "SKETCH_CONSTRAINT_REF_INVALID"
	CodeDimensionRefInvalid   = "SKETCH_DIMENSION_REF_INVALID"
	CodeConstraintUnresolved  = "SKETCH_CONSTRAINT_UNRESOLVED"
	CodeOverconstrained       = "SKETCH_OVERCONSTRAINED"
	CodeEntityUnconstrained   = "SKETCH_ENTITY_UNCONSTRAINED"
	CodeConflictingDimensions = "SKETCH_CONFLICTING_DIMENSIONS"
	CodeDimensionMismatch     = "SKETCH_DIMENSION_MISMATCH"
	CodeOverlappingEntities   = "SKETCH_OVERLAPPING_ENTITIES"
)

// Result is the outcome of solving one sketch. Sketch is a fully solved
// copy when no error-severity issue was found, otherwise the original
// input, untouched. DOFRemaining may be negative when over-constrained.
type Result struct {
	Sketch       *ir.Sketch
	DOFRemaining int
	Issues       []ir.ValidationIssue
}

// Failed reports whether the result carries any error-severity issue.
func (r Result) Failed() bool {
	for _, issue := range r.Issues {
		if issue.Severity == ir.SeverityError {
			return true
		}
	}
	return false
}

// Solve resolves entity coordinates against the sketch's constraints and
// driving dimensions and accounts degrees of freedom.
//
// Constraints apply in declaration order, then dimensions in declaration
// order, each rewriting the working copy in place. A constraint whose
// referenced geometry is not yet in an applicable state is deferred and
// retried once per pass, with the pass count bounded by the entity count;
// whatever is still pending afterwards is reported unresolved.
func Solve(s *ir.Sketch) Result {
	work := s.Clone()

	index := make(map[string]int, len(work.Entities))
	for i, e := range work.Entities {
		if _, dup := index[e.ID]; !dup {
			index[e.ID] = i
		}
	}

	var issues []ir.ValidationIssue
	removed := make([]int, len(work.Entities))

	pending, refIssues := admitConstraints(work, index)
	issues = append(issues, refIssues...)

	dims, dimIssues := admitDimensions(work, index)
	issues = append(issues, dimIssues...)

	// Overlap is judged on the drawn geometry, before anything moves.
	issues = append(issues, overlapIssues(work)...)

	// Substitution passes over deferred constraints. Bounded by entity
	// count so a constraint that can never apply terminates as unresolved
	// instead of looping.
	maxPasses := len(work.Entities)
	if maxPasses < 1 {
		maxPasses = 1
	}
	for pass := 0; pass < maxPasses && len(pending) > 0; pass++ {
		var still []int
		progressed := false
		for _, ci := range pending {
			c := work.Constraints[ci]
			target, ok := applyConstraint(work, c, index)
			if !ok {
				still = append(still, ci)
				continue
			}
			removed[target] += constraintDOF(c.Type)
			progressed = true
		}
		pending = still
		if !progressed {
			break
		}
	}
	for _, ci := range pending {
		c := work.Constraints[ci]
		issues = append(issues, ir.ValidationIssue{
			Code:            CodeConstraintUnresolved,
			Severity:        ir.SeverityError,
			Message:         fmt.Sprintf("Constraint %q (%s) in sketch %q could not be applied", c.ID, c.Type, s.Name),
			RelatedFeatures: []string{s.Name},
		})
	}

	for _, di := range dims {
		d := work.Dimensions[di]
		target := index[d.EntityIDs[0]]
		applyDimension(work, d, target)
		removed[target] += dimensionDOF(d.Type)
	}

	// DOF accounting: per-entity budget minus removals attributed to it.
	dofRemaining := 0
	var dofIssues []ir.ValidationIssue
	for i, e := range work.Entities {
		budget := EntityDOF(e)
		remaining := budget - removed[i]
		dofRemaining += remaining
		if remaining < 0 {
			dofIssues = append(dofIssues, ir.ValidationIssue{
				Code:            CodeOverconstrained,
				Severity:        ir.SeverityError,
				Message:         fmt.Sprintf("Entity %q in sketch %q is over-constrained: %d removals on %d degrees of freedom", e.ID, s.Name, removed[i], budget),
				RelatedFeatures: []string{s.Name},
			})
		} else if remaining > 0 {
			dofIssues = append(dofIssues, ir.ValidationIssue{
				Code:            CodeEntityUnconstrained,
				Severity:        ir.SeverityWarning,
				Message:         fmt.Sprintf("Entity %q in sketch %q is under-constrained: %d degrees of freedom remain", e.ID, s.Name, remaining),
				RelatedFeatures: []string{s.Name},
			})
		}
	}
	issues = append(issues, dofIssues...)

	result := Result{Sketch: work, DOFRemaining: dofRemaining, Issues: issues}
	if result.Failed() {
		// Never publish a partially rewritten sketch.
		result.Sketch = s
	}
	return result
}

// admitConstraints screens constraints for reference validity and returns
// the indexes of those eligible for solving.
func admitConstraints(s *ir.Sketch, index map[string]int) (pending []int, issues []ir.ValidationIssue) {
	for i, c := range s.Constraints {
		valid := len(c.EntityIDs) >= 1
		if c.Type == ir.ConstraintCoincident && len(c.EntityIDs) < 2 {
			valid = false
		}
		for _, id := range c.EntityIDs {
			if _, ok := index[id]; !ok {
				valid = false
			}
		}
		if !valid {
			issues = append(issues, ir.ValidationIssue{
				Code:            CodeConstraintRefInvalid,
				Severity:        ir.SeverityError,
				Message:         fmt.Sprintf("Constraint %q (%s) in sketch %q references missing or insufficient entities", c.ID, c.Type, s.Name),
				RelatedFeatures: []string{s.Name},
			})
			continue
		}
		pending = append(pending, i)
	}
	return pending, issues
}

// admitDimensions screens dimensions for reference and type validity, and
// for conflicting duplicate values on the same entity. Only the first of a
// conflicting set drives geometry.
func admitDimensions(s *ir.Sketch, index map[string]int) (apply []int, issues []ir.ValidationIssue) {
	type dimKey struct {
		entity string
		kind   ir.DimensionType
	}
	first := make(map[dimKey]float64)

	for i, d := range s.Dimensions {
		if len(d.EntityIDs) != 1 {
			issues = append(issues, ir.ValidationIssue{
				Code:            CodeDimensionRefInvalid,
				Severity:        ir.SeverityError,
				Message:         fmt.Sprintf("Dimension %q in sketch %q must reference exactly one entity", d.ID, s.Name),
				RelatedFeatures: []string{s.Name},
			})
			continue
		}
		ei, ok := index[d.EntityIDs[0]]
		if !ok {
			issues = append(issues, ir.ValidationIssue{
				Code:            CodeDimensionRefInvalid,
				Severity:        ir.SeverityError,
				Message:         fmt.Sprintf("Dimension %q references non-existent entity %q in sketch %q", d.ID, d.EntityIDs[0], s.Name),
				RelatedFeatures: []string{s.Name},
			})
			continue
		}
		if !dimensionCompatible(d.Type, s.Entities[ei].Type) {
			issues = append(issues, ir.ValidationIssue{
				Code:            CodeDimensionRefInvalid,
				Severity:        ir.SeverityError,
				Message:         fmt.Sprintf("Dimension %q (%s) is incompatible with %s entity %q in sketch %q", d.ID, d.Type, s.Entities[ei].Type, d.EntityIDs[0], s.Name),
				RelatedFeatures: []string{s.Name},
			})
			continue
		}
		key := dimKey{entity: d.EntityIDs[0], kind: d.Type}
		if prev, seen := first[key]; seen {
			if prev != d.Value {
				issues = append(issues, ir.ValidationIssue{
					Code:            CodeConflictingDimensions,
					Severity:        ir.SeverityError,
					Message:         fmt.Sprintf("Entity %q in sketch %q has conflicting %s dimensions: %v and %v", d.EntityIDs[0], s.Name, d.Type, prev, d.Value),
					RelatedFeatures: []string{s.Name},
				})
			}
			continue
		}
		first[key] = d.Value
		apply = append(apply, i)

		// The dimension drives geometry either way, but a large gap between
		// drawn length and dimensioned length usually means a typo.
		if d.Type == ir.DimensionLength && s.Entities[ei].Type == ir.EntityLine {
			e := s.Entities[ei]
			if e.Start != nil && e.End != nil {
				actual := math.Hypot(e.End[0]-e.Start[0], e.End[1]-e.Start[1])
				allowed := math.Max(actual*0.01, 0.1)
				if math.Abs(actual-d.Value) > allowed {
					issues = append(issues, ir.ValidationIssue{
						Code:            CodeDimensionMismatch,
						Severity:        ir.SeverityWarning,
						Message:         fmt.Sprintf("Dimension %q value (%v %s) doesn't match entity %q geometry (length %.2f)", d.ID, d.Value, d.Unit, e.ID, actual),
						RelatedFeatures: []string{s.Name},
					})
				}
			}
		}
	}
	return apply, issues
}

// overlapIssues flags line pairs lying within 0.1 of each other, which
// almost always means accidentally duplicated geometry.
func overlapIssues(s *ir.Sketch) []ir.ValidationIssue {
	var issues []ir.ValidationIssue
	for i := range s.Entities {
		a := &s.Entities[i]
		if a.Type != ir.EntityLine || a.Start == nil || a.End == nil {
			continue
		}
		for j := i + 1; j < len(s.Entities); j++ {
			b := &s.Entities[j]
			if b.Type != ir.EntityLine || b.Start == nil || b.End == nil {
				continue
			}
			if pointSegmentDistance(*b.Start, *a.Start, *a.End) < 0.1 &&
				pointSegmentDistance(*b.End, *a.Start, *a.End) < 0.1 {
				issues = append(issues, ir.ValidationIssue{
					Code:            CodeOverlappingEntities,
					Severity:        ir.SeverityWarning,
					Message:         fmt.Sprintf("Entities %q and %q in sketch %q appear to overlap", a.ID, b.ID, s.Name),
					RelatedFeatures: []string{s.Name},
				})
			}
		}
	}
	return issues
}

// pointSegmentDistance is the distance from p to the closest point of
// segment [a, b]. A degenerate segment collapses to a.
func pointSegmentDistance(p, a, b ir.Vec2) float64 {
	dx, dy := b[0]-a[0], b[1]-a[1]
	lenSq := dx*dx + dy*dy
	t := -1.0
	if lenSq != 0 {
		t = ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / lenSq
	}
	var cx, cy float64
	switch {
	case t < 0:
		cx, cy = a[0], a[1]
	case t > 1:
		cx, cy = b[0], b[1]
	default:
		cx, cy = a[0]+t*dx, a[1]+t*dy
	}
	return math.Hypot(p[0]-cx, p[1]-cy)
}

func dimensionCompatible(d ir.DimensionType, e ir.EntityType) bool {
	switch d {
	case ir.DimensionLength:
		return e == ir.EntityLine || e == ir.EntityRectangle
	case ir.DimensionDiameter:
		return e == ir.EntityCircle
	default:
		return false
	}
}

// applyConstraint rewrites geometry for one constraint. Returns the index
// of the entity charged with the removed freedoms, and whether the
// constraint applied. Refs are pre-validated; a false return means the
// constraint is not applicable to the referenced geometry yet.
func applyConstraint(s *ir.Sketch, c ir.SketchConstraint, index map[string]int) (int, bool) {
	switch c.Type {
	case ir.ConstraintHorizontal:
		ei := index[c.EntityIDs[0]]
		e := &s.Entities[ei]
		if e.Type != ir.EntityLine || e.Start == nil || e.End == nil {
			return 0, false
		}
		e.End[1] = e.Start[1]
		return ei, true

	case ir.ConstraintVertical:
		ei := index[c.EntityIDs[0]]
		e := &s.Entities[ei]
		if e.Type != ir.EntityLine || e.Start == nil || e.End == nil {
			return 0, false
		}
		e.End[0] = e.Start[0]
		return ei, true

	case ir.ConstraintCoincident:
		ai, bi := index[c.EntityIDs[0]], index[c.EntityIDs[1]]
		aPts := snapPoints(&s.Entities[ai])
		bPts := snapPoints(&s.Entities[bi])
		if len(aPts) == 0 || len(bPts) == 0 {
			return 0, false
		}
		// Merge the closest endpoint pair; the second entity's point moves
		// and is charged the two removed freedoms.
		best := math.Inf(1)
		var src, dst *ir.Vec2
		for _, ap := range aPts {
			for _, bp := range bPts {
				d := math.Hypot(ap[0]-bp[0], ap[1]-bp[1])
				if d < best {
					best = d
					src, dst = ap, bp
				}
			}
		}
		dst[0] = src[0]
		dst[1] = src[1]
		return bi, true

	default:
		return 0, false
	}
}

// snapPoints returns the mergeable points of an entity. Circles have no
// endpoint to merge, so coincident cannot apply to them.
func snapPoints(e *ir.SketchEntity) []*ir.Vec2 {
	switch e.Type {
	case ir.EntityLine:
		if e.Start == nil || e.End == nil {
			return nil
		}
		return []*ir.Vec2{e.Start, e.End}
	case ir.EntityRectangle:
		if e.Corner1 == nil || e.Corner2 == nil {
			return nil
		}
		return []*ir.Vec2{e.Corner1, e.Corner2}
	default:
		return nil
	}
}

// applyDimension rewrites geometry for one driving dimension. Refs and
// type compatibility are pre-validated.
func applyDimension(s *ir.Sketch, d ir.SketchDimension, target int) {
	e := &s.Entities[target]
	switch d.Type {
	case ir.DimensionLength:
		switch e.Type {
		case ir.EntityLine:
			dx := e.End[0] - e.Start[0]
			dy := e.End[1] - e.Start[1]
			length := math.Hypot(dx, dy)
			if length == 0 {
				// Degenerate line: grow along +X.
				dx, dy, length = 1, 0, 1
			}
			e.End[0] = e.Start[0] + dx/length*d.Value
			e.End[1] = e.Start[1] + dy/length*d.Value
		case ir.EntityRectangle:
			// Length drives the x extent, preserving orientation.
			sign := 1.0
			if e.Corner2[0] < e.Corner1[0] {
				sign = -1
			}
			e.Corner2[0] = e.Corner1[0] + sign*d.Value
		}
	case ir.DimensionDiameter:
		r := d.Value / 2
		e.Radius = &r
	}
}
