package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cmrstac/internal"
)

func testDirs(t *testing.T) OutputDirs {
	t.Helper()
	tmp := t.TempDir()
	return OutputDirs{
		Collections:        filepath.Join(tmp, "data", "collections"),
		StepFunctionInputs: filepath.Join(tmp, "data", "step_function_inputs"),
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	blob, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(blob)
}

func TestWriteOutputsEndToEnd(t *testing.T) {
	dirs := testDirs(t)
	agg, err := Aggregate([]internal.RawEntry{
		{ShortName: "X", DatasetID: "A", Summary: "s", Boxes: []string{"1 2 3 4"},
			TimeStart: strp("2020"), TimeEnd: strp("2021"), VersionID: "v1"},
		{ShortName: "X", DatasetID: "B", Summary: "s2", Boxes: []string{"5 6 7 8"}, VersionID: "v2"},
		{ShortName: "Y", DatasetID: "C", Summary: "", Boxes: []string{"1 2 3 4"},
			TimeStart: strp("2020"), VersionID: "1"},
	})
	require.NoError(t, err)
	require.NoError(t, WriteOutputs(context.Background(), agg, dirs))

	assert.Equal(t, `{
  "id": "X",
  "stac_version": "1.0.0",
  "license": "not-provided",
  "title": "B",
  "type": "Collection",
  "description": "s2",
  "extent": {
    "spatial": {
      "bbox": [
        [
          6,
          7,
          8,
          5
        ]
      ]
    },
    "temporal": {
      "interval": [
        [
          null,
          null
        ]
      ]
    }
  }
}`, readFile(t, filepath.Join(dirs.Collections, "X.json")))

	assert.Equal(t, `[
  {
    "queue_messages": "true",
    "collection": "X",
    "version": "v1",
    "discovery": "cmr",
    "mode": "cmr",
    "asset_name": "data",
    "asset_roles": [
      "data"
    ]
  },
  {
    "queue_messages": "true",
    "collection": "X",
    "version": "v2",
    "discovery": "cmr",
    "mode": "cmr",
    "asset_name": "data",
    "asset_roles": [
      "data"
    ]
  }
]`, readFile(t, filepath.Join(dirs.StepFunctionInputs, "X.json")))

	assert.Equal(t, `{
  "queue_messages": "true",
  "collection": "Y",
  "version": "1",
  "discovery": "cmr",
  "mode": "cmr",
  "asset_name": "data",
  "asset_roles": [
    "data"
  ]
}`, readFile(t, filepath.Join(dirs.StepFunctionInputs, "Y.json")))

	assert.JSONEq(t, `{"id":"Y","stac_version":"1.0.0","license":"not-provided","title":"C","type":"Collection",
		"description":"","extent":{"spatial":{"bbox":[[2,3,4,1]]},"temporal":{"interval":[["2020",null]]}}}`,
		readFile(t, filepath.Join(dirs.Collections, "Y.json")))
}

func TestWriteOutputsEmpty(t *testing.T) {
	dirs := testDirs(t)
	agg, err := Aggregate(nil)
	require.NoError(t, err)
	require.NoError(t, WriteOutputs(context.Background(), agg, dirs))

	_, err = os.Stat(dirs.Collections)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(dirs.StepFunctionInputs)
	assert.True(t, os.IsNotExist(err))
}

func TestWriteOutputsRejectsUnsafeID(t *testing.T) {
	dirs := testDirs(t)
	agg := internal.NewAggregated()
	col, item, err := Transform(entry("../escape", "A", "v1"))
	require.NoError(t, err)
	agg.Put(col, item)

	err = WriteOutputs(context.Background(), agg, dirs)
	require.Error(t, err)

	entries, readErr := os.ReadDir(filepath.Dir(dirs.Collections))
	require.NoError(t, readErr)
	for _, e := range entries {
		assert.NotEqual(t, "escape.json", e.Name())
	}
}

func TestWriteOutputsCancelled(t *testing.T) {
	dirs := testDirs(t)
	agg, err := Aggregate([]internal.RawEntry{entry("X", "A", "v1")})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, WriteOutputs(ctx, agg, dirs), context.Canceled)
}

func TestWriteOutputsKeepsHTMLCharacters(t *testing.T) {
	dirs := testDirs(t)
	e := entry("X", "Biomass <AGB> & carbon", "v1")
	agg, err := Aggregate([]internal.RawEntry{e})
	require.NoError(t, err)
	require.NoError(t, WriteOutputs(context.Background(), agg, dirs))

	assert.Contains(t, readFile(t, filepath.Join(dirs.Collections, "X.json")), `"title": "Biomass <AGB> & carbon"`)
}

func TestNonFiniteBoxAbortsBeforeAnyWrite(t *testing.T) {
	dirs := testDirs(t)
	entries := []internal.RawEntry{
		entry("A", "A", "v1", "1 2 3 4"),
		entry("B", "B", "v1", "NaN 2 3 Inf"),
		entry("C", "C", "v1", "0x1p-2 1e300 3 4"),
	}

	agg, err := Aggregate(entries)
	require.ErrorIs(t, err, ErrMalformedBoundingBox)
	assert.Contains(t, err.Error(), "collection B")
	require.Nil(t, agg)

	// a caller that stops on the aggregate error never creates either store
	_, statErr := os.Stat(dirs.Collections)
	assert.True(t, os.IsNotExist(statErr))
	_, statErr = os.Stat(dirs.StepFunctionInputs)
	assert.True(t, os.IsNotExist(statErr))
}
