package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenarios(t *testing.T) {
	scenarios, err := LoadDir("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, sc := range scenarios {
		t.Run(sc.Name, func(t *testing.T) {
			outcome, err := Run(sc)
			require.NoError(t, err)

			Verify(t, sc, outcome)
			if sc.CompileError == "" {
				AssertGolden(t, sc, outcome)
			}
		})
	}
}

func TestLoadScenarioRejectsIncomplete(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("description: no name or dsl\n"), 0o644))

	_, err := LoadScenario(path)
	assert.ErrorContains(t, err, "missing name")
}

func TestRunIsDeterministic(t *testing.T) {
	sc, err := LoadScenario(filepath.Join("testdata", "scenarios", "impossible_extrude.yaml"))
	require.NoError(t, err)

	first, err := Run(sc)
	require.NoError(t, err)
	second, err := Run(sc)
	require.NoError(t, err)

	assert.Equal(t, first.IssueCodes(), second.IssueCodes())
	assert.Equal(t, first.Result.ChainsEval, second.Result.ChainsEval)
	assert.Equal(t, first.Result.Meshes, second.Result.Meshes)
}
