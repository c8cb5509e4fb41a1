package vfs

import (
	"sort"
	"testing"

	"github.com/notgne2/ffs/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func i64Ptr(v int64) *int64   { return &v }

// seedScenario builds the spec.md §8 end-to-end fixture: two text points
// tagged kind=text plus a distinct sort-valued year each.
func seedScenario(t *testing.T) (*index.DB, index.Point, index.Point) {
	t.Helper()
	db, err := index.Open(":memory:")
	require.NoError(t, err)

	p1, _, err := db.UpsertPointByPath("a.txt", "/s/a.txt", "hash-a", false)
	require.NoError(t, err)
	require.NoError(t, db.TagPoint(p1.ID, "kind", &index.TagContent{Value: strPtr("text")}))
	require.NoError(t, db.TagPoint(p1.ID, "year", &index.TagContent{Value: strPtr("2020"), SortValue: i64Ptr(2020)}))

	p2, _, err := db.UpsertPointByPath("b.txt", "/s/b.txt", "hash-b", false)
	require.NoError(t, err)
	require.NoError(t, db.TagPoint(p2.ID, "kind", &index.TagContent{Value: strPtr("text")}))
	require.NoError(t, db.TagPoint(p2.ID, "year", &index.TagContent{Value: strPtr("2021"), SortValue: i64Ptr(2021)}))

	return db, *p1, *p2
}

func entryNames(entries []dirEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	sort.Strings(names)
	return names
}

func TestReaddirNormalModeListsPointsAndOtherTags(t *testing.T) {
	db, p1, p2 := seedScenario(t)
	r := NewResolver(db)

	ino := r.ids.assignIno("kind = text")
	entries, err := r.ReadDir(ino, 0)
	require.NoError(t, err)

	names := entryNames(entries)
	assert.Contains(t, names, ".")
	assert.Contains(t, names, "..")
	assert.Contains(t, names, "@flatten")
	assert.Contains(t, names, p1.FullName())
	assert.Contains(t, names, p2.FullName())
	assert.Contains(t, names, "year = 2020")
	assert.Contains(t, names, "year = 2021")
	assert.NotContains(t, names, "kind = text", "the component already present in the path is not re-listed")
}

func TestReadlinkResolvesToBackingPath(t *testing.T) {
	db, p1, _ := seedScenario(t)
	r := NewResolver(db)

	attr, err := r.Lookup(r.RootIno(), "kind = text")
	require.NoError(t, err)
	parentIno := attr.Ino

	attr, err = r.Lookup(parentIno, p1.FullName())
	require.NoError(t, err)
	assert.Equal(t, KindSymlink, attr.Kind)

	target, err := r.Readlink(attr.Ino)
	require.NoError(t, err)
	assert.Equal(t, "/s/a.txt", target)
}

// TestFlattenCoversSamePointsAsNormal is spec.md §8 property 3.
func TestFlattenCoversSamePointsAsNormal(t *testing.T) {
	db, p1, p2 := seedScenario(t)
	r := NewResolver(db)

	normalIno := r.ids.assignIno("kind = text")
	normalEntries, err := r.ReadDir(normalIno, 0)
	require.NoError(t, err)

	flatIno := r.ids.assignIno("kind = text/@flatten")
	flatEntries, err := r.ReadDir(flatIno, 0)
	require.NoError(t, err)

	yearIno := r.ids.assignIno("kind = text/@flatten/year = 2020")
	yearEntries, err := r.ReadDir(yearIno, 0)
	require.NoError(t, err)

	flatInfoIno := r.ids.assignIno("kind = text/@flatten/@flat-info")
	fh, err := r.Open(flatInfoIno)
	require.NoError(t, err)
	content, err := r.Read(fh, flatInfoIno)
	require.NoError(t, err)
	assert.Equal(t, "kind = text", string(content))

	assert.Contains(t, entryNames(normalEntries), p1.FullName())
	assert.Contains(t, entryNames(normalEntries), p2.FullName())
	assert.Contains(t, entryNames(flatEntries), "@flat-info")
	assert.Contains(t, entryNames(flatEntries), "year = 2020")
	assert.Contains(t, entryNames(flatEntries), "year = 2021")
	assert.Contains(t, entryNames(yearEntries), p1.FullName())
	assert.NotContains(t, entryNames(yearEntries), p2.FullName())
}

// TestReaddirNoMatchesYieldsOnlyFlatten covers the "year < 2020" scenario:
// no matching points, no distinguishing tags, just the @flatten entry.
func TestReaddirNoMatchesYieldsOnlyFlatten(t *testing.T) {
	db, _, _ := seedScenario(t)
	r := NewResolver(db)

	ino := r.ids.assignIno("year < 2020")
	entries, err := r.ReadDir(ino, 0)
	require.NoError(t, err)

	names := entryNames(entries)
	assert.Equal(t, []string{".", "..", "@flatten"}, names)
}

// TestReaddirOffsetIdempotenceAndEviction is spec.md §8 property 6.
func TestReaddirOffsetIdempotenceAndEviction(t *testing.T) {
	db, _, _ := seedScenario(t)
	r := NewResolver(db)

	ino := r.ids.assignIno("kind = text")
	full, err := r.ReadDir(ino, 0)
	require.NoError(t, err)
	require.NotEmpty(t, full)

	for k := 0; k <= len(full); k++ {
		tail, err := r.ReadDir(ino, k)
		require.NoError(t, err)
		assert.Equal(t, full[k:], tail)
	}

	_, cached := r.cache.get(ino)
	assert.False(t, cached, "cache must be dropped once a read consumes it to the end")

	again, err := r.ReadDir(ino, 0)
	require.NoError(t, err)
	assert.Equal(t, full, again, "recomputing after eviction reproduces the same listing")
}

// TestReaddirMonotoneNarrowing is spec.md §8 property 2: adding a tag
// component to a directory path can only narrow, never widen, the point set.
func TestReaddirMonotoneNarrowing(t *testing.T) {
	db, p1, p2 := seedScenario(t)
	r := NewResolver(db)

	parentIno := r.ids.assignIno("kind = text")
	parentEntries, err := r.ReadDir(parentIno, 0)
	require.NoError(t, err)
	parentPoints := map[string]bool{p1.FullName(): true, p2.FullName(): true}

	childIno := r.ids.assignIno("kind = text/year = 2020")
	childEntries, err := r.ReadDir(childIno, 0)
	require.NoError(t, err)

	for _, e := range childEntries {
		if e.Kind == KindSymlink {
			assert.True(t, parentPoints[e.Name], "%s narrows from the parent's point set", e.Name)
		}
	}
	assert.Contains(t, entryNames(parentEntries), p1.FullName())
}

func TestMkdirIsEphemeralAndUnindexed(t *testing.T) {
	db, _, _ := seedScenario(t)
	r := NewResolver(db)

	rootEntries, err := r.ReadDir(r.RootIno(), 0)
	require.NoError(t, err)
	before := entryNames(rootEntries)

	attr, err := r.Mkdir(r.RootIno(), "scratch")
	require.NoError(t, err)
	assert.Equal(t, KindDir, attr.Kind)

	rootEntries, err = r.ReadDir(r.RootIno(), 0)
	require.NoError(t, err)
	after := entryNames(rootEntries)
	assert.NotEqual(t, before, after)
	assert.Contains(t, after, "scratch")

	// A fresh resolver over the same db never sees it: mkdir never persists.
	r2 := NewResolver(db)
	rootEntries2, err := r2.ReadDir(r2.RootIno(), 0)
	require.NoError(t, err)
	assert.NotContains(t, entryNames(rootEntries2), "scratch")
}
