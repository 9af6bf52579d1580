package sketch

import (
	"github.com/partforge/partforge/internal/ir"
)

// EntityDOF returns the scalar degrees of freedom of an unconstrained
// entity: a line has two free 2D endpoints, a circle a free center and
// radius, a rectangle two free opposite corners.
func EntityDOF(e ir.SketchEntity) int {
	switch e.Type {
	case ir.EntityLine:
		return 4
	case ir.EntityCircle:
		return 3
	case ir.EntityRectangle:
		return 4
	default:
		return 0
	}
}

// constraintDOF returns how many scalar freedoms a constraint removes.
func constraintDOF(t ir.ConstraintType) int {
	switch t {
	case ir.ConstraintHorizontal, ir.ConstraintVertical:
		return 1
	case ir.ConstraintCoincident:
		// Merging two points pins both coordinates of the moved point.
		return 2
	default:
		return 0
	}
}

// dimensionDOF returns how many scalar freedoms a driving dimension removes.
func dimensionDOF(t ir.DimensionType) int {
	switch t {
	case ir.DimensionLength, ir.DimensionDiameter:
		return 1
	default:
		return 0
	}
}
