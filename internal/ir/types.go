package ir

// FeatureType enumerates the supported feature kinds.
// The set is closed: switches over FeatureType must be exhaustive so that an
// unsupported kind is a handled case, not a silent no-op.
type FeatureType string

const (
	FeatureSketch  FeatureType = "sketch"
	FeatureExtrude FeatureType = "extrude"
)

// ValidFeatureTypes defines the allowed feature type strings.
var ValidFeatureTypes = map[FeatureType]bool{
	FeatureSketch:  true,
	FeatureExtrude: true,
}

// Param is a named scalar with a unit and an optional symbolic tolerance class.
// Name is unique within a Part; uniqueness is a validation concern, not a
// construction-time constraint, so slightly malformed parts stay representable.
type Param struct {
	Name           string  `json:"name"`
	Value          float64 `json:"value"`
	Unit           string  `json:"unit"`
	ToleranceClass string  `json:"tolerance_class,omitempty"`
}

// Feature is a geometric build step. An extrude names the sketch feature it
// consumes via its "sketch" argument, forming the feature dependency graph.
// Sketch features embed their Sketch directly.
type Feature struct {
	Type     FeatureType             `json:"type"`
	Name     string                  `json:"name"`
	Params   map[string]FeatureValue `json:"params"`
	Critical bool                    `json:"critical,omitempty"`
	Sketch   *Sketch                 `json:"sketch,omitempty"`
}

// Chain is an ordered 1D stackup of param names. Terms are additive in
// declared order; a subtracting term carries a negative nominal value.
// Targets are used only for feasibility checking, never for solving.
type Chain struct {
	Name            string   `json:"name"`
	Terms           []string `json:"terms"`
	TargetValue     *float64 `json:"target_value,omitempty"`
	TargetTolerance *float64 `json:"target_tolerance,omitempty"`
}

// Severity grades a ValidationIssue.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// ValidationIssue is one finding from validation, solving, or rebuild.
// The related_* lists name exactly the entities the issue cites, never more
// and never fewer: consumers rely on them for click-to-select navigation.
// Issues are produced fresh per rebuild and never accumulated.
type ValidationIssue struct {
	Code            string   `json:"code"`
	Severity        Severity `json:"severity"`
	Message         string   `json:"message"`
	RelatedParams   []string `json:"related_params,omitempty"`
	RelatedFeatures []string `json:"related_features,omitempty"`
	RelatedChains   []string `json:"related_chains,omitempty"`
}

// Vec2 is a 2D point in sketch-local coordinates.
// Marshals as a two-element JSON array, matching the frozen wire shape.
type Vec2 [2]float64

// X returns the first coordinate.
func (v Vec2) X() float64 { return v[0] }

// Y returns the second coordinate.
func (v Vec2) Y() float64 { return v[1] }

// EntityType enumerates the supported sketch entity kinds.
type EntityType string

const (
	EntityLine      EntityType = "line"
	EntityCircle    EntityType = "circle"
	EntityRectangle EntityType = "rectangle"
)

// SketchEntity is a tagged variant over line, circle, and rectangle.
// Only the fields for the tagged kind are populated:
//
//	line:      Start, End
//	circle:    Center, Radius
//	rectangle: Corner1, Corner2 (opposite corners, axis-aligned)
//
// Construction entities are helper geometry excluded from profile extraction.
type SketchEntity struct {
	ID           string     `json:"id"`
	Type         EntityType `json:"type"`
	Start        *Vec2      `json:"start,omitempty"`
	End          *Vec2      `json:"end,omitempty"`
	Center       *Vec2      `json:"center,omitempty"`
	Radius       *float64   `json:"radius,omitempty"`
	Corner1      *Vec2      `json:"corner1,omitempty"`
	Corner2      *Vec2      `json:"corner2,omitempty"`
	Construction bool       `json:"isConstruction,omitempty"`
}

// ConstraintType enumerates the supported sketch constraint kinds.
// Constraints are purely topological/directional and carry no numbers.
type ConstraintType string

const (
	ConstraintHorizontal ConstraintType = "horizontal"
	ConstraintVertical   ConstraintType = "vertical"
	ConstraintCoincident ConstraintType = "coincident"
)

// SketchConstraint references one or more entities by id.
type SketchConstraint struct {
	ID        string         `json:"id"`
	Type      ConstraintType `json:"type"`
	EntityIDs []string       `json:"entity_ids"`
}

// DimensionType enumerates the supported sketch dimension kinds.
type DimensionType string

const (
	DimensionLength   DimensionType = "length"
	DimensionDiameter DimensionType = "diameter"
)

// SketchDimension is a driving dimension: it rewrites the referenced entity's
// size during solving rather than annotating it.
type SketchDimension struct {
	ID        string        `json:"id"`
	Type      DimensionType `json:"type"`
	EntityIDs []string      `json:"entity_ids"`
	Value     float64       `json:"value"`
	Unit      string        `json:"unit"`
}

// Sketch is a 2D sketch on a symbolic plane. The plane determines the 3D
// embedding, which is owned by the kernel collaborator, not by this core.
type Sketch struct {
	Name        string             `json:"name"`
	Plane       string             `json:"plane"`
	Entities    []SketchEntity     `json:"entities"`
	Constraints []SketchConstraint `json:"constraints,omitempty"`
	Dimensions  []SketchDimension  `json:"dimensions,omitempty"`
}

// Part is the single root aggregate. Every other entity is owned by it and
// has no identity outside a Part snapshot.
//
// Params is a map and therefore carries no declaration order; every ordered
// walk over params (validation, DSL generation, evaluation) iterates sorted
// names. Features and chains keep declaration order.
type Part struct {
	Name     string           `json:"name"`
	Params   map[string]Param `json:"params"`
	Features []Feature        `json:"features"`
	Chains   []Chain          `json:"chains"`
}

// Eval is a worst-case evaluation of a param or chain.
type Eval struct {
	Nominal float64 `json:"nominal"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}
