package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partforge/partforge/internal/ir"
	"github.com/partforge/partforge/internal/rebuild"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "partforge.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func samplePart(name string, thickness float64) *ir.Part {
	return &ir.Part{
		Name: name,
		Params: map[string]ir.Param{
			"thickness": {Name: "thickness", Value: thickness, Unit: "mm"},
		},
	}
}

func TestSaveAndLoadPart(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	part := samplePart("plate", 5)

	hash, err := s.SavePart(ctx, part, "part plate {\n  param thickness = 5 mm\n}\n")
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	loaded, dsl, err := s.LoadPart(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, part, loaded)
	assert.Contains(t, dsl, "param thickness")
}

func TestSavePartIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	part := samplePart("plate", 5)

	first, err := s.SavePart(ctx, part, "src")
	require.NoError(t, err)
	second, err := s.SavePart(ctx, part, "src")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	infos, err := s.ListParts(ctx)
	require.NoError(t, err)
	assert.Len(t, infos, 1)
}

func TestLoadPartNotFound(t *testing.T) {
	s := openTestStore(t)
	_, _, err := s.LoadPart(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLatestPartPicksNewestSnapshot(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.SavePart(ctx, samplePart("plate", 5), "v1")
	require.NoError(t, err)
	_, err = s.SavePart(ctx, samplePart("plate", 8), "v2")
	require.NoError(t, err)
	_, err = s.SavePart(ctx, samplePart("other", 1), "x")
	require.NoError(t, err)

	latest, dsl, err := s.LatestPart(ctx, "plate")
	require.NoError(t, err)
	assert.Equal(t, 8.0, latest.Params["thickness"].Value)
	assert.Equal(t, "v2", dsl)
}

func TestSaveAndLoadResult(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	part := samplePart("plate", 5)

	hash, err := s.SavePart(ctx, part, "src")
	require.NoError(t, err)

	res := &rebuild.Result{
		PartHash:   hash,
		ParamsEval: map[string]ir.Eval{"thickness": {Nominal: 5, Min: 5, Max: 5}},
		ChainsEval: map[string]ir.Eval{},
		Issues: []ir.ValidationIssue{
			{Code: "PARAM_UNUSED", Severity: ir.SeverityWarning, Message: "m", RelatedParams: []string{"thickness"}},
		},
	}
	require.NoError(t, s.SaveResult(ctx, res))

	loaded, err := s.LoadResult(ctx, hash)
	require.NoError(t, err)
	assert.Equal(t, res.ParamsEval, loaded.ParamsEval)
	assert.Equal(t, res.Issues, loaded.Issues)

	_, err = s.LoadResult(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
