package tolerance

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partforge/partforge/internal/ir"
)

func TestDefaultTableLoads(t *testing.T) {
	tbl := Default()
	assert.True(t, tbl.Has("g6"))
	assert.True(t, tbl.Has("H7"))
	assert.False(t, tbl.Has("x9"))
}

func TestDeviationsBandSelection(t *testing.T) {
	tbl := Default()

	tests := []struct {
		name      string
		class     string
		nominal   float64
		wantLower float64
		wantUpper float64
		wantKnown bool
	}{
		{"h6 mid band", "h6", 20, -0.013, 0, true},
		{"H7 band upper edge inclusive", "H7", 80, 0, 0.030, true},
		{"H7 next band", "H7", 81, 0, 0.035, true},
		{"g6 small band", "g6", 8, -0.014, -0.005, true},
		{"negative nominal uses size", "h6", -20, -0.013, 0, true},
		{"below first band clamps", "h6", 2, -0.009, 0, true},
		{"above last band clamps", "g6", 500, -0.029, -0.010, true},
		{"unknown class", "zz99", 20, 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lower, upper, ok := tbl.Deviations(tt.class, tt.nominal)
			assert.Equal(t, tt.wantKnown, ok)
			assert.InDelta(t, tt.wantLower, lower, 1e-12)
			assert.InDelta(t, tt.wantUpper, upper, 1e-12)
		})
	}
}

func TestEvaluateParam(t *testing.T) {
	tbl := Default()

	exact := EvaluateParam(tbl, ir.Param{Name: "a", Value: 15, Unit: "mm"})
	assert.Equal(t, ir.Eval{Nominal: 15, Min: 15, Max: 15}, exact)

	shaft := EvaluateParam(tbl, ir.Param{Name: "d", Value: 20, Unit: "mm", ToleranceClass: "h6"})
	assert.InDelta(t, 20, shaft.Nominal, 1e-12)
	assert.InDelta(t, 19.987, shaft.Min, 1e-12)
	assert.InDelta(t, 20, shaft.Max, 1e-12)

	unknown := EvaluateParam(tbl, ir.Param{Name: "d", Value: 20, Unit: "mm", ToleranceClass: "zz99"})
	assert.Equal(t, ir.Eval{Nominal: 20, Min: 20, Max: 20}, unknown)
}

// Worst-case stackup: a = 20 h6 gives [-0.013, 0], b = 80 H7 gives
// [0, +0.030], so the chain lands at nominal 100, min 99.987, max 100.030.
func TestEvaluateChainStackup(t *testing.T) {
	tbl := Default()
	part := &ir.Part{
		Name: "stack",
		Params: map[string]ir.Param{
			"a": {Name: "a", Value: 20, Unit: "mm", ToleranceClass: "h6"},
			"b": {Name: "b", Value: 80, Unit: "mm", ToleranceClass: "H7"},
		},
		Chains: []ir.Chain{{Name: "overall", Terms: []string{"a", "b"}}},
	}

	eval := EvaluateChain(tbl, part, part.Chains[0])
	assert.InDelta(t, 100.0, eval.Nominal, 1e-9)
	assert.InDelta(t, 99.987, eval.Min, 1e-9)
	assert.InDelta(t, 100.030, eval.Max, 1e-9)
}

func TestEvaluateChainSkipsMissingTerms(t *testing.T) {
	tbl := Default()
	part := &ir.Part{
		Name:   "p",
		Params: map[string]ir.Param{},
		Chains: []ir.Chain{{Name: "c", Terms: []string{"ghost"}}},
	}

	eval := EvaluateChain(tbl, part, part.Chains[0])
	assert.Equal(t, ir.Eval{}, eval, "missing terms contribute zero, never crash")
}

func TestEvaluateChainNegativeTerm(t *testing.T) {
	tbl := Default()
	part := &ir.Part{
		Name: "p",
		Params: map[string]ir.Param{
			"outer": {Name: "outer", Value: 50, Unit: "mm"},
			"inner": {Name: "inner", Value: -30, Unit: "mm"},
		},
		Chains: []ir.Chain{{Name: "gap", Terms: []string{"outer", "inner"}}},
	}

	eval := EvaluateChain(tbl, part, part.Chains[0])
	assert.InDelta(t, 20.0, eval.Nominal, 1e-12, "subtraction is a negative nominal by convention")
}

func TestFeasible(t *testing.T) {
	eval := ir.Eval{Nominal: 100, Min: 99.987, Max: 100.030}

	assert.True(t, Feasible(eval, 0.030))
	assert.True(t, Feasible(eval, 0.1))
	assert.False(t, Feasible(eval, 0.020), "upper excursion 0.030 exceeds 0.020")
	assert.False(t, Feasible(ir.Eval{Nominal: 100, Min: 99.9, Max: 100.01}, 0.05),
		"lower excursion 0.1 exceeds 0.05")
}

func TestParseRejectsBadTables(t *testing.T) {
	_, err := Parse([]byte("classes:\n  bad:\n    - {over: 10, up_to: 5, lower: 0, upper: 0.1}\n"))
	require.Error(t, err)

	_, err = Parse([]byte("classes:\n  bad:\n    - {over: 5, up_to: 10, lower: 0.2, upper: 0.1}\n"))
	require.Error(t, err)

	_, err = Parse([]byte("classes:\n  empty: []\n"))
	require.Error(t, err)
}
