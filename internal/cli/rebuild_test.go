package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partforge/partforge/internal/rebuild"
)

func TestRebuildText(t *testing.T) {
	path := writeTemp(t, "plate.part", plateDSL)

	buf := &bytes.Buffer{}
	cmd := NewRebuildCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "plate")
	assert.Contains(t, output, "built    base")
	assert.Contains(t, output, "built    body")
	assert.Contains(t, output, "thickness: nominal 5")
}

func TestRebuildJSON(t *testing.T) {
	path := writeTemp(t, "plate.part", plateDSL)

	buf := &bytes.Buffer{}
	cmd := NewRebuildCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.NoError(t, err)

	var resp Response
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	payload, merr := json.Marshal(resp.Data)
	require.NoError(t, merr)
	var result rebuild.Result
	require.NoError(t, json.Unmarshal(payload, &result))
	assert.NotEmpty(t, result.PartHash)
	require.Len(t, result.FeatureResults, 2)
	assert.Equal(t, rebuild.StatusBuilt, result.FeatureResults[0].Status)
}

func TestRebuildErrorIssuesFail(t *testing.T) {
	path := writeTemp(t, "slab.part", impossibleDSL)

	buf := &bytes.Buffer{}
	cmd := NewRebuildCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{path})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "IMPOSSIBLE_EXTRUDE")
	assert.Contains(t, buf.String(), "failed   body")
}

func TestRebuildPersistsAndReuses(t *testing.T) {
	path := writeTemp(t, "plate.part", plateDSL)
	dbPath := filepath.Join(t.TempDir(), "forge.db")

	first := &bytes.Buffer{}
	cmd := NewRebuildCommand(&RootOptions{Format: "text"})
	cmd.SetOut(first)
	cmd.SetArgs([]string{path, "--db", dbPath})
	require.NoError(t, cmd.Execute())

	// unchanged part: second run serves the stored result
	second := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd = NewRebuildCommand(&RootOptions{Format: "text", Verbose: true})
	cmd.SetOut(second)
	cmd.SetErr(stderr)
	cmd.SetArgs([]string{path, "--db", dbPath})
	require.NoError(t, cmd.Execute())

	assert.Contains(t, stderr.String(), "reusing stored rebuild result")
	assert.Equal(t, first.String(), second.String())
}
