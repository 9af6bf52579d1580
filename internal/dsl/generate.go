package dsl

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/partforge/partforge/internal/ir"
)

// Generate renders a Part back to DSL text. Params come out in sorted name
// order (the map carries no declaration order); features and chains keep
// declaration order. Generate then Compile yields a structurally equal
// Part.
func Generate(part *ir.Part) string {
	var b strings.Builder
	fmt.Fprintf(&b, "part %s {\n", part.Name)

	for _, name := range part.SortedParamNames() {
		p := part.Params[name]
		fmt.Fprintf(&b, "  param %s = %s %s", name, formatNumber(p.Value), p.Unit)
		if p.ToleranceClass != "" {
			fmt.Fprintf(&b, " tolerance %s", p.ToleranceClass)
		}
		b.WriteByte('\n')
	}

	for _, f := range part.Features {
		if f.Type == ir.FeatureSketch && f.Sketch != nil {
			writeSketchFeature(&b, f)
			continue
		}
		fmt.Fprintf(&b, "  feature %s = %s(%s)\n", f.Name, f.Type, formatArgs(f.Params))
	}

	for _, c := range part.Chains {
		fmt.Fprintf(&b, "  chain %s {\n", c.Name)
		fmt.Fprintf(&b, "    terms = [%s]\n", strings.Join(c.Terms, ", "))
		if c.TargetValue != nil {
			fmt.Fprintf(&b, "    target_value = %s\n", formatNumber(*c.TargetValue))
		}
		if c.TargetTolerance != nil {
			fmt.Fprintf(&b, "    target_tolerance = %s\n", formatNumber(*c.TargetTolerance))
		}
		b.WriteString("  }\n")
	}

	b.WriteString("}\n")
	return b.String()
}

func writeSketchFeature(b *strings.Builder, f ir.Feature) {
	sk := f.Sketch
	fmt.Fprintf(b, "  feature %s = sketch(on_plane=%q) {\n", f.Name, sk.Plane)

	for _, e := range sk.Entities {
		b.WriteString("    ")
		if e.Construction {
			b.WriteString("construction ")
		}
		switch e.Type {
		case ir.EntityLine:
			fmt.Fprintf(b, "line %s from %s to %s\n", e.ID, formatPoint(e.Start), formatPoint(e.End))
		case ir.EntityCircle:
			radius := 0.0
			if e.Radius != nil {
				radius = *e.Radius
			}
			fmt.Fprintf(b, "circle %s center %s radius %s %s\n",
				e.ID, formatPoint(e.Center), formatNumber(radius), entityUnit(sk, e.ID))
		case ir.EntityRectangle:
			fmt.Fprintf(b, "rectangle %s from %s to %s\n", e.ID, formatPoint(e.Corner1), formatPoint(e.Corner2))
		}
	}
	for _, c := range sk.Constraints {
		fmt.Fprintf(b, "    %s(%s)\n", c.Type, strings.Join(c.EntityIDs, ", "))
	}
	for _, d := range sk.Dimensions {
		// Decoded IR can carry a dimension with no target entity; the
		// grammar cannot express one, so it is dropped.
		if len(d.EntityIDs) == 0 {
			continue
		}
		verb := "dim_length"
		if d.Type == ir.DimensionDiameter {
			verb = "dim_diameter"
		}
		fmt.Fprintf(b, "    %s(%s, %s %s)\n", verb, d.EntityIDs[0], formatNumber(d.Value), d.Unit)
	}
	b.WriteString("  }\n")
}

func formatArgs(params map[string]ir.FeatureValue) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := params[k]
		switch v.Kind {
		case ir.ValueNumber:
			parts = append(parts, fmt.Sprintf("%s = %s", k, formatNumber(v.Num)))
		case ir.ValueRef:
			parts = append(parts, fmt.Sprintf("%s = %s", k, v.Str))
		default:
			parts = append(parts, fmt.Sprintf("%s = %q", k, v.Str))
		}
	}
	return strings.Join(parts, ", ")
}

// entityUnit finds the unit of a dimension driving the entity, defaulting
// to mm when none does.
func entityUnit(sk *ir.Sketch, entityID string) string {
	for _, d := range sk.Dimensions {
		for _, id := range d.EntityIDs {
			if id == entityID {
				return d.Unit
			}
		}
	}
	return "mm"
}

func formatPoint(v *ir.Vec2) string {
	if v == nil {
		return "(0, 0)"
	}
	return fmt.Sprintf("(%s, %s)", formatNumber(v.X()), formatNumber(v.Y()))
}

// formatNumber renders without a trailing ".0" on integral values.
func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
