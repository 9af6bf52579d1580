package dsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partforge/partforge/internal/ir"
)

const bracketDSL = `// mounting bracket
part bracket {
  param width = 40 mm
  param thickness = 5 mm tolerance h6
  param bore = 12 mm

  feature base = sketch(on_plane="XY") {
    rectangle r1 from (0, 0) to (40, 20)
    circle c1 center (20, 10) radius 6 mm
    dim_length(r1, 40 mm)
    dim_diameter(c1, 12 mm)
  }
  feature body = extrude(sketch = base, distance = thickness, operation = "join")

  chain stack {
    terms = [thickness, width]
    target_value = 45
    target_tolerance = 0.05
  }
}
`

func TestCompileBracket(t *testing.T) {
	part, err := Compile(bracketDSL)
	require.NoError(t, err)

	assert.Equal(t, "bracket", part.Name)
	require.Len(t, part.Params, 3)
	assert.Equal(t, ir.Param{Name: "thickness", Value: 5, Unit: "mm", ToleranceClass: "h6"}, part.Params["thickness"])

	require.Len(t, part.Features, 2)
	base := part.Features[0]
	assert.Equal(t, ir.FeatureSketch, base.Type)
	require.NotNil(t, base.Sketch)
	assert.Equal(t, "XY", base.Sketch.Plane)
	require.Len(t, base.Sketch.Entities, 2)
	assert.Equal(t, ir.EntityRectangle, base.Sketch.Entities[0].Type)
	assert.Equal(t, &ir.Vec2{40, 20}, base.Sketch.Entities[0].Corner2)
	require.NotNil(t, base.Sketch.Entities[1].Radius)
	assert.Equal(t, 6.0, *base.Sketch.Entities[1].Radius)
	require.Len(t, base.Sketch.Dimensions, 2)
	assert.Equal(t, ir.DimensionDiameter, base.Sketch.Dimensions[1].Type)
	assert.Equal(t, []string{"c1"}, base.Sketch.Dimensions[1].EntityIDs)

	body := part.Features[1]
	assert.Equal(t, ir.FeatureExtrude, body.Type)
	assert.Equal(t, ir.RefValue("thickness"), body.Params["distance"], "bare identifier binding a param is a reference")
	assert.Equal(t, ir.StringValue("base"), body.Params["sketch"], "bare identifier binding no param is a string literal")
	assert.Equal(t, ir.StringValue("join"), body.Params["operation"])

	require.Len(t, part.Chains, 1)
	chain := part.Chains[0]
	assert.Equal(t, []string{"thickness", "width"}, chain.Terms)
	require.NotNil(t, chain.TargetValue)
	assert.Equal(t, 45.0, *chain.TargetValue)
	require.NotNil(t, chain.TargetTolerance)
	assert.Equal(t, 0.05, *chain.TargetTolerance)
}

func TestCompileSketchConstraintsAndConstruction(t *testing.T) {
	src := `part p {
  feature s = sketch(on_plane="XZ") {
    line l1 from (0, 0) to (10, 2)
    line l2 from (10, 2) to (10, 8)
    construction line g1 from (-5, 0) to (15, 0)
    horizontal(l1)
    vertical(l2)
    coincident(l1, l2)
    dim_length(l1, 10 mm)
  }
}
`
	part, err := Compile(src)
	require.NoError(t, err)

	sk := part.Features[0].Sketch
	require.NotNil(t, sk)
	require.Len(t, sk.Entities, 3)
	assert.True(t, sk.Entities[2].Construction)
	assert.Equal(t, &ir.Vec2{-5, 0}, sk.Entities[2].Start)

	require.Len(t, sk.Constraints, 3)
	assert.Equal(t, ir.SketchConstraint{ID: "c1", Type: ir.ConstraintHorizontal, EntityIDs: []string{"l1"}}, sk.Constraints[0])
	assert.Equal(t, ir.SketchConstraint{ID: "c3", Type: ir.ConstraintCoincident, EntityIDs: []string{"l1", "l2"}}, sk.Constraints[2])

	require.Len(t, sk.Dimensions, 1)
	assert.Equal(t, "d1", sk.Dimensions[0].ID)
}

func TestCompileNumberWithUnitArg(t *testing.T) {
	part, err := Compile(`part p {
  feature s = sketch(on_plane="XY") {
    rectangle r1 from (0, 0) to (1, 1)
  }
  feature f = extrude(sketch = s, distance = 5 mm)
}
`)
	require.NoError(t, err)
	assert.Equal(t, ir.StringValue("5 mm"), part.Features[1].Params["distance"])

	got, rerr := part.ResolveValue(part.Features[1].Params["distance"])
	require.NoError(t, rerr)
	assert.Equal(t, 5.0, got)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		line     int
		col      int
		expected string
	}{
		{
			name:     "missing part keyword",
			src:      "bracket {}",
			line:     1,
			col:      1,
			expected: `"part"`,
		},
		{
			name:     "missing part name",
			src:      "part {",
			line:     1,
			col:      6,
			expected: "part name",
		},
		{
			name:     "param without value",
			src:      "part p {\n  param a = x mm\n}",
			line:     2,
			col:      13,
			expected: "numeric value",
		},
		{
			name:     "unknown feature type",
			src:      "part p {\n  feature f = cylinder(r = 5)\n}",
			line:     2,
			col:      15,
			expected: `feature type "sketch" or "extrude"`,
		},
		{
			name:     "unknown declaration",
			src:      "part p {\n  widget w\n}",
			line:     2,
			col:      3,
			expected: `"param", "feature", "chain", or "}"`,
		},
		{
			name:     "trailing input",
			src:      "part p {}\npart q {}",
			line:     2,
			col:      1,
			expected: "end of input",
		},
		{
			name:     "unterminated string",
			src:      "part p {\n  feature f = extrude(op = \"cut\n}",
			line:     2,
			col:      28,
			expected: "closing quote",
		},
		{
			name:     "stray character",
			src:      "part p {\n  param a @ 5 mm\n}",
			line:     2,
			col:      11,
			expected: "a declaration, value, or punctuation",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.src)
			require.Error(t, err)

			var cerr *CompileError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.line, cerr.Line, "line")
			assert.Equal(t, tt.col, cerr.Col, "col")
			assert.Equal(t, tt.expected, cerr.Expected)
			assert.Contains(t, err.Error(), "expected")
		})
	}
}

// Compile, regenerate, recompile: structural equality modulo formatting.
func TestRoundTrip(t *testing.T) {
	first, err := Compile(bracketDSL)
	require.NoError(t, err)

	regenerated := Generate(first)
	second, err := Compile(regenerated)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRoundTripWithConstraints(t *testing.T) {
	src := `part p {
  param len = 10 mm
  feature s = sketch(on_plane="XY") {
    line l1 from (0, 0) to (10, 2)
    line l2 from (10, 2) to (10, 8)
    construction circle g1 center (5, 5) radius 1 mm
    horizontal(l1)
    coincident(l1, l2)
    dim_length(l1, 10 mm)
  }
  feature f = extrude(sketch = s, distance = len)
  chain c {
    terms = [len]
  }
}
`
	first, err := Compile(src)
	require.NoError(t, err)
	second, err := Compile(Generate(first))
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
