package sketch

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partforge/partforge/internal/ir"
)

func vec(x, y float64) *ir.Vec2 {
	return &ir.Vec2{x, y}
}

func line(id string, x1, y1, x2, y2 float64) ir.SketchEntity {
	return ir.SketchEntity{ID: id, Type: ir.EntityLine, Start: vec(x1, y1), End: vec(x2, y2)}
}

func TestSolveFreeLine(t *testing.T) {
	s := &ir.Sketch{
		Name:     "s1",
		Plane:    "XY",
		Entities: []ir.SketchEntity{line("l1", 0, 0, 10, 5)},
	}

	res := Solve(s)
	assert.Equal(t, 4, res.DOFRemaining)
	assert.False(t, res.Failed())
	require.Len(t, res.Issues, 1)
	assert.Equal(t, CodeEntityUnconstrained, res.Issues[0].Code)
	assert.Equal(t, ir.SeverityWarning, res.Issues[0].Severity)
}

// One line, one horizontal constraint, one length dimension: 4 - 1 - 1
// leaves 2 degrees of freedom and a single under-constrained warning.
func TestSolveHorizontalPlusLength(t *testing.T) {
	s := &ir.Sketch{
		Name:     "base",
		Plane:    "XY",
		Entities: []ir.SketchEntity{line("l1", 1, 1, 7, 9)},
		Constraints: []ir.SketchConstraint{
			{ID: "c1", Type: ir.ConstraintHorizontal, EntityIDs: []string{"l1"}},
		},
		Dimensions: []ir.SketchDimension{
			{ID: "d1", Type: ir.DimensionLength, EntityIDs: []string{"l1"}, Value: 10, Unit: "mm"},
		},
	}

	res := Solve(s)
	require.False(t, res.Failed())
	assert.Equal(t, 2, res.DOFRemaining)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, CodeEntityUnconstrained, res.Issues[0].Code)

	solved := res.Sketch.Entities[0]
	assert.Equal(t, 1.0, solved.End.Y(), "horizontal flattens the line")
	assert.InDelta(t, 11.0, solved.End.X(), 1e-12, "length rescales along the flattened direction")
	assert.Equal(t, 9.0, s.Entities[0].End.Y(), "input sketch stays untouched")
}

// A length dimension far from the drawn geometry still drives the entity
// but warns about the gap.
func TestSolveDimensionMismatchWarns(t *testing.T) {
	s := &ir.Sketch{
		Name:     "s",
		Entities: []ir.SketchEntity{line("l1", 0, 0, 3, 4)},
		Dimensions: []ir.SketchDimension{
			{ID: "d1", Type: ir.DimensionLength, EntityIDs: []string{"l1"}, Value: 50, Unit: "mm"},
		},
	}

	res := Solve(s)
	require.False(t, res.Failed())

	var codes []string
	for _, issue := range res.Issues {
		codes = append(codes, issue.Code)
	}
	assert.Contains(t, codes, CodeDimensionMismatch)

	// 3-4-5 triangle scaled to length 50: end lands at (30, 40).
	assert.InDelta(t, 30.0, res.Sketch.Entities[0].End.X(), 1e-12)
	assert.InDelta(t, 40.0, res.Sketch.Entities[0].End.Y(), 1e-12)
}

// Two nearly coincident lines trip the overlap heuristic; lines that
// merely share a corner do not.
func TestSolveOverlappingLinesWarn(t *testing.T) {
	s := &ir.Sketch{
		Name: "dup",
		Entities: []ir.SketchEntity{
			line("l1", 0, 0, 10, 0),
			line("l2", 0, 0.05, 10, 0.05),
			line("l3", 10, 0, 10, 10),
		},
	}

	res := Solve(s)
	require.False(t, res.Failed())

	var overlaps []ir.ValidationIssue
	for _, issue := range res.Issues {
		if issue.Code == CodeOverlappingEntities {
			overlaps = append(overlaps, issue)
		}
	}
	require.Len(t, overlaps, 1)
	assert.Equal(t, ir.SeverityWarning, overlaps[0].Severity)
	assert.Contains(t, overlaps[0].Message, `"l1"`)
	assert.Contains(t, overlaps[0].Message, `"l2"`)
}

func TestSolveDiameterDrivesCircle(t *testing.T) {
	r := 3.0
	s := &ir.Sketch{
		Name: "bore",
		Entities: []ir.SketchEntity{
			{ID: "c1", Type: ir.EntityCircle, Center: vec(5, 5), Radius: &r},
		},
		Dimensions: []ir.SketchDimension{
			{ID: "d1", Type: ir.DimensionDiameter, EntityIDs: []string{"c1"}, Value: 12, Unit: "mm"},
		},
	}

	res := Solve(s)
	require.False(t, res.Failed())
	assert.Equal(t, 2, res.DOFRemaining)
	require.NotNil(t, res.Sketch.Entities[0].Radius)
	assert.Equal(t, 6.0, *res.Sketch.Entities[0].Radius)
}

func TestSolveCoincidentMergesClosestEndpoints(t *testing.T) {
	s := &ir.Sketch{
		Name: "corner",
		Entities: []ir.SketchEntity{
			line("l1", 0, 0, 10, 0),
			line("l2", 10.2, 0.1, 10, 10),
		},
		Constraints: []ir.SketchConstraint{
			{ID: "c1", Type: ir.ConstraintCoincident, EntityIDs: []string{"l1", "l2"}},
		},
	}

	res := Solve(s)
	require.False(t, res.Failed())
	// 4 + 4 entity freedoms minus 2 for the merged point.
	assert.Equal(t, 6, res.DOFRemaining)
	moved := res.Sketch.Entities[1]
	assert.Equal(t, ir.Vec2{10, 0}, *moved.Start, "second entity's nearest point snaps")
	assert.Equal(t, ir.Vec2{10, 10}, *moved.End)
}

// Piling a horizontal, a vertical, a length dimension and two coincident
// constraints onto a single 4-DOF line drives its budget negative.
func TestSolveOverconstrained(t *testing.T) {
	s := &ir.Sketch{
		Name: "jam",
		Entities: []ir.SketchEntity{
			line("l1", 0, 0, 10, 0),
			line("l2", 0, 0, 0, 10),
			line("l3", 10, 0, 10, 10),
		},
		Constraints: []ir.SketchConstraint{
			{ID: "c1", Type: ir.ConstraintHorizontal, EntityIDs: []string{"l1"}},
			{ID: "c2", Type: ir.ConstraintVertical, EntityIDs: []string{"l1"}},
			{ID: "c3", Type: ir.ConstraintCoincident, EntityIDs: []string{"l2", "l1"}},
			{ID: "c4", Type: ir.ConstraintCoincident, EntityIDs: []string{"l3", "l1"}},
		},
		Dimensions: []ir.SketchDimension{
			{ID: "d1", Type: ir.DimensionLength, EntityIDs: []string{"l1"}, Value: 10, Unit: "mm"},
		},
	}

	res := Solve(s)
	assert.True(t, res.Failed())
	assert.Same(t, s, res.Sketch, "error results hand back the original sketch")

	var codes []string
	for _, issue := range res.Issues {
		codes = append(codes, issue.Code)
	}
	assert.Contains(t, codes, CodeOverconstrained)
}

func TestSolveConstraintRefInvalid(t *testing.T) {
	s := &ir.Sketch{
		Name:     "s",
		Entities: []ir.SketchEntity{line("l1", 0, 0, 5, 0)},
		Constraints: []ir.SketchConstraint{
			{ID: "c1", Type: ir.ConstraintHorizontal, EntityIDs: []string{"ghost"}},
			{ID: "c2", Type: ir.ConstraintCoincident, EntityIDs: []string{"l1"}},
		},
	}

	res := Solve(s)
	assert.True(t, res.Failed())
	require.GreaterOrEqual(t, len(res.Issues), 2)
	assert.Equal(t, CodeConstraintRefInvalid, res.Issues[0].Code)
	assert.Equal(t, CodeConstraintRefInvalid, res.Issues[1].Code)
}

func TestSolveConstraintUnresolvedOnCircle(t *testing.T) {
	r := 2.0
	s := &ir.Sketch{
		Name: "s",
		Entities: []ir.SketchEntity{
			{ID: "c1", Type: ir.EntityCircle, Center: vec(0, 0), Radius: &r},
		},
		Constraints: []ir.SketchConstraint{
			{ID: "h1", Type: ir.ConstraintHorizontal, EntityIDs: []string{"c1"}},
		},
	}

	res := Solve(s)
	assert.True(t, res.Failed())
	require.NotEmpty(t, res.Issues)
	assert.Equal(t, CodeConstraintUnresolved, res.Issues[0].Code)
}

func TestSolveDimensionIssues(t *testing.T) {
	r := 2.0
	s := &ir.Sketch{
		Name: "s",
		Entities: []ir.SketchEntity{
			line("l1", 0, 0, 5, 0),
			{ID: "c1", Type: ir.EntityCircle, Center: vec(0, 0), Radius: &r},
		},
		Dimensions: []ir.SketchDimension{
			{ID: "d1", Type: ir.DimensionLength, EntityIDs: []string{"ghost"}, Value: 5, Unit: "mm"},
			{ID: "d2", Type: ir.DimensionDiameter, EntityIDs: []string{"l1"}, Value: 5, Unit: "mm"},
			{ID: "d3", Type: ir.DimensionLength, EntityIDs: []string{"l1"}, Value: 5, Unit: "mm"},
			{ID: "d4", Type: ir.DimensionLength, EntityIDs: []string{"l1"}, Value: 7, Unit: "mm"},
		},
	}

	res := Solve(s)
	assert.True(t, res.Failed())

	var codes []string
	for _, issue := range res.Issues {
		codes = append(codes, issue.Code)
	}
	assert.Contains(t, codes, CodeDimensionRefInvalid)
	assert.Contains(t, codes, CodeConflictingDimensions)
}

func TestSolveRectangleLength(t *testing.T) {
	s := &ir.Sketch{
		Name: "plate",
		Entities: []ir.SketchEntity{
			{ID: "r1", Type: ir.EntityRectangle, Corner1: vec(0, 0), Corner2: vec(3, 2)},
		},
		Dimensions: []ir.SketchDimension{
			{ID: "d1", Type: ir.DimensionLength, EntityIDs: []string{"r1"}, Value: 8, Unit: "mm"},
		},
	}

	res := Solve(s)
	require.False(t, res.Failed())
	assert.Equal(t, 3, res.DOFRemaining)
	assert.Equal(t, 8.0, res.Sketch.Entities[0].Corner2.X())
	assert.Equal(t, 2.0, res.Sketch.Entities[0].Corner2.Y())
}

func TestSolveEmptySketch(t *testing.T) {
	res := Solve(&ir.Sketch{Name: "empty"})
	assert.Equal(t, 0, res.DOFRemaining)
	assert.Empty(t, res.Issues)
	assert.False(t, res.Failed())
}
