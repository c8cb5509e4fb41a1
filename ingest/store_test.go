package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/notgne2/ffs/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStoreIngestsFileByPathTags(t *testing.T) {
	store := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(store, "kind=text"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(store, "kind=text", "a.txt"), []byte("hello"), 0o644))

	db, err := index.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, LoadStore(db, store))

	points, err := db.PointsByParts([]string{"kind=text"})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "a.txt", points[0].Name)
	require.NotNil(t, points[0].Path)
	assert.Equal(t, filepath.Join(store, "kind=text", "a.txt"), *points[0].Path)
	assert.False(t, points[0].Dir)
}

// TestLoadStoreDirMarkerBecomesDirectoryPoint covers SPEC_FULL §3's @dir
// store convention: a subdirectory literally named @dir supplies the
// backing path, its parent supplies the name and tag path.
func TestLoadStoreDirMarkerBecomesDirectoryPoint(t *testing.T) {
	store := t.TempDir()
	photoDir := filepath.Join(store, "kind=pic", "vacation", "@dir")
	require.NoError(t, os.MkdirAll(photoDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(photoDir, "img.jpg"), []byte("fake-jpeg-bytes"), 0o644))

	db, err := index.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, LoadStore(db, store))

	points, err := db.PointsByParts([]string{"kind=pic"})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "vacation", points[0].Name)
	require.NotNil(t, points[0].Path)
	assert.Equal(t, photoDir, *points[0].Path)
	assert.True(t, points[0].Dir)
}

// TestLoadStoreFlatInfoPrependsTags covers SPEC_FULL §3 item 4: an optional
// top-level @flat-info file's tags are prepended to every ingested point.
func TestLoadStoreFlatInfoPrependsTags(t *testing.T) {
	store := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(store, "@flat-info"), []byte("source=archive"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(store, "kind=text"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(store, "kind=text", "a.txt"), []byte("hello"), 0o644))

	db, err := index.Open(":memory:")
	require.NoError(t, err)
	require.NoError(t, LoadStore(db, store))

	points, err := db.PointsByParts([]string{"source=archive"})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "a.txt", points[0].Name)
}

func TestReadFlatInfoMissingFileIsNotAnError(t *testing.T) {
	store := t.TempDir()
	tags, err := readFlatInfo(store)
	require.NoError(t, err)
	assert.Empty(t, tags)
}
