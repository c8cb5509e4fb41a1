package autotag

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryValue(t *testing.T, entries []Entry, name string) (string, bool) {
	t.Helper()
	for _, e := range entries {
		if e.Name == name {
			if e.Value == nil {
				return "", true
			}
			return *e.Value, true
		}
	}
	return "", false
}

func TestTagsForFilePythonSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "script.py")
	require.NoError(t, os.WriteFile(path, []byte("print('hello world')\n"), 0o644))

	entries, err := TagsForFile(path, false)
	require.NoError(t, err)

	v, ok := entryValue(t, entries, "language")
	assert.True(t, ok)
	assert.Equal(t, "python", v)

	_, ok = entryValue(t, entries, "code")
	assert.True(t, ok)
	_, ok = entryValue(t, entries, "text")
	assert.True(t, ok)
	_, ok = entryValue(t, entries, "ascii")
	assert.True(t, ok)
}

func TestTagsForDirectoryMarkers(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte("{}"), 0o644))

	entries, err := TagsForFile(dir, true)
	require.NoError(t, err)

	typeVal, ok := entryValue(t, entries, "type")
	assert.True(t, ok)
	assert.Equal(t, "directory", typeVal)

	langVal, ok := entryValue(t, entries, "language")
	assert.True(t, ok)
	assert.Equal(t, "javascript", langVal)

	_, ok = entryValue(t, entries, "npm")
	assert.True(t, ok)
	_, ok = entryValue(t, entries, "code")
	assert.True(t, ok)
}

func TestCollectorLastWriteWins(t *testing.T) {
	c := newCollector()
	c.set(valued("type", "first"))
	c.set(valued("type", "second"))
	c.set(bare("other"))

	entries := c.entries()
	require.Len(t, entries, 2)
	v, ok := entryValue(t, entries, "type")
	assert.True(t, ok)
	assert.Equal(t, "second", v, "later writes to the same key win, but insertion order is preserved for new keys")
	assert.Equal(t, "type", entries[0].Name)
	assert.Equal(t, "other", entries[1].Name)
}
