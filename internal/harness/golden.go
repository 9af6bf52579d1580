package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/partforge/partforge/internal/ir"
)

// goldenSnapshot is the stable, hand-checkable projection of an outcome.
// Float evaluations stay out of it; they are asserted with deltas in
// Verify instead of byte-exact text.
type goldenSnapshot struct {
	Scenario string            `json:"scenario"`
	Issues   []string          `json:"issues"`
	Features map[string]string `json:"features"`
}

// AssertGolden compares the outcome's snapshot against
// testdata/golden/<name>.golden, in canonical JSON so key order never
// drifts.
func AssertGolden(t *testing.T, scenario *Scenario, outcome *Outcome) {
	t.Helper()

	snap := goldenSnapshot{
		Scenario: scenario.Name,
		Issues:   outcome.IssueCodes(),
		Features: outcome.FeatureStatuses(),
	}
	data, err := ir.MarshalCanonical(snap)
	if err != nil {
		t.Fatalf("marshal golden snapshot: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)
}
