package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResponseArchiveStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "raw")
	archive := NewResponseArchive(dir)

	first, err := archive.Store([]byte(`{"feed":{"entry":[]}}`))
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(first))
	assert.Equal(t, ".json", filepath.Ext(first))

	second, err := archive.Store([]byte(`{"feed":{"entry":[]}}`))
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := archive.Store([]byte(`{"feed":{}}`))
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestResponseArchiveDisabled(t *testing.T) {
	path, err := NewResponseArchive("").Store([]byte("x"))
	require.NoError(t, err)
	assert.Empty(t, path)

	var archive *ResponseArchive
	path, err = archive.Store([]byte("x"))
	require.NoError(t, err)
	assert.Empty(t, path)
}
