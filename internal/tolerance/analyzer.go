package tolerance

import (
	"github.com/partforge/partforge/internal/ir"
)

// feasibilityEps absorbs float summation noise when comparing a stackup
// against its declared target tolerance.
const feasibilityEps = 1e-9

// EvaluateParam evaluates one param against the table: nominal plus the
// signed deviation range of its tolerance class. A param without a class, or
// with an unknown class symbol, is treated as exact.
func EvaluateParam(tbl *Table, p ir.Param) ir.Eval {
	if p.ToleranceClass == "" {
		return ir.Eval{Nominal: p.Value, Min: p.Value, Max: p.Value}
	}
	lower, upper, _ := tbl.Deviations(p.ToleranceClass, p.Value)
	return ir.Eval{
		Nominal: p.Value,
		Min:     p.Value + lower,
		Max:     p.Value + upper,
	}
}

// EvaluateChain computes the worst-case stackup of a chain: term nominals
// and deviations sum in declared order. A term naming a missing param
// contributes nothing; reference integrity is validation's concern, and the
// chain must still report a result instead of failing.
//
// This is intentionally worst-case, not statistical: extreme deviations sum
// directly, trading tighter probabilistic bounds for a conservative
// guarantee.
func EvaluateChain(tbl *Table, part *ir.Part, chain ir.Chain) ir.Eval {
	var eval ir.Eval
	for _, term := range chain.Terms {
		param, ok := part.Param(term)
		if !ok {
			continue
		}
		pe := EvaluateParam(tbl, param)
		eval.Nominal += pe.Nominal
		eval.Min += pe.Min
		eval.Max += pe.Max
	}
	return eval
}

// EvaluateAllParams evaluates every param in the part, keyed by name.
func EvaluateAllParams(tbl *Table, part *ir.Part) map[string]ir.Eval {
	out := make(map[string]ir.Eval, len(part.Params))
	for _, name := range part.SortedParamNames() {
		out[name] = EvaluateParam(tbl, part.Params[name])
	}
	return out
}

// EvaluateAllChains evaluates every chain in the part, keyed by name.
func EvaluateAllChains(tbl *Table, part *ir.Part) map[string]ir.Eval {
	out := make(map[string]ir.Eval, len(part.Chains))
	for _, chain := range part.Chains {
		out[chain.Name] = EvaluateChain(tbl, part, chain)
	}
	return out
}

// Feasible reports whether a chain evaluation satisfies a declared target
// tolerance: both worst-case excursions from nominal must stay within the
// symmetric +/- target band.
func Feasible(eval ir.Eval, targetTolerance float64) bool {
	return eval.Max-eval.Nominal <= targetTolerance+feasibilityEps &&
		eval.Nominal-eval.Min <= targetTolerance+feasibilityEps
}
