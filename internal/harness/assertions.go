package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const evalDelta = 1e-9

// Verify checks a scenario's expectations against its outcome.
func Verify(t *testing.T, scenario *Scenario, outcome *Outcome) {
	t.Helper()

	if scenario.CompileError != "" {
		require.Error(t, outcome.CompileErr)
		assert.Contains(t, outcome.CompileErr.Error(), scenario.CompileError)
		return
	}
	require.NotNil(t, outcome.Result)

	if scenario.Expect.IssueCodes != nil {
		assert.Equal(t, scenario.Expect.IssueCodes, outcome.IssueCodes(), "issue codes")
	}

	statuses := outcome.FeatureStatuses()
	for feature, want := range scenario.Expect.Features {
		assert.Equal(t, want, statuses[feature], "feature %s status", feature)
	}

	for name, want := range scenario.Expect.Chains {
		eval, ok := outcome.Result.ChainsEval[name]
		require.True(t, ok, "chain %s missing from evaluation", name)
		assert.InDelta(t, want.Nominal, eval.Nominal, evalDelta, "chain %s nominal", name)
		assert.InDelta(t, want.Min, eval.Min, evalDelta, "chain %s min", name)
		assert.InDelta(t, want.Max, eval.Max, evalDelta, "chain %s max", name)
	}
}
