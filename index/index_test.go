package index_test

import (
	"testing"

	"github.com/notgne2/ffs/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *index.DB {
	t.Helper()
	db, err := index.Open(":memory:")
	require.NoError(t, err)
	return db
}

func strPtr(s string) *string { return &s }

// TestTagPointJoinUniqueness covers spec.md §8 property 1: no two joins ever
// share (point_id, tag_id), even across repeated TagPoint calls for the same
// point/tag pair.
func TestTagPointJoinUniqueness(t *testing.T) {
	db := openTestDB(t)
	p, _, err := db.UpsertPointByPath("a.txt", "/s/a.txt", "hash-a", false)
	require.NoError(t, err)

	require.NoError(t, db.TagPoint(p.ID, "kind", &index.TagContent{Value: strPtr("text")}))
	require.NoError(t, db.TagPoint(p.ID, "kind", &index.TagContent{Value: strPtr("text")}))

	tags, err := db.TagsForPoint(*p)
	require.NoError(t, err)
	assert.Len(t, tags, 1, "retagging with the same name/value must not duplicate the join")
}

// TestUpsertPointByPathDedup covers SPEC_FULL §3 item 2: re-ingesting the
// same path returns the existing point rather than minting a new one, and a
// renamed-but-identical-content file is relinked by hash.
func TestUpsertPointByPathDedup(t *testing.T) {
	db := openTestDB(t)

	p1, created, err := db.UpsertPointByPath("a.txt", "/s/a.txt", "same-hash", false)
	require.NoError(t, err)
	assert.True(t, created)

	p2, created, err := db.UpsertPointByPath("a.txt", "/s/a.txt", "same-hash", false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p1.ID, p2.ID)

	// Same content, different path/name: should relink by hash, not duplicate.
	p3, created, err := db.UpsertPointByPath("renamed.txt", "/s/renamed.txt", "same-hash", false)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, p1.ID, p3.ID)
}

// TestPointsByPartsIntersectionAndDisjunction covers spec.md §8 property 7.
func TestPointsByPartsIntersectionAndDisjunction(t *testing.T) {
	db := openTestDB(t)

	a, _, err := db.UpsertPointByPath("a.txt", "/s/a.txt", "hash-a", false)
	require.NoError(t, err)
	b, _, err := db.UpsertPointByPath("b.txt", "/s/b.txt", "hash-b", false)
	require.NoError(t, err)

	require.NoError(t, db.TagPoint(a.ID, "kind", &index.TagContent{Value: strPtr("text")}))
	require.NoError(t, db.TagPoint(b.ID, "kind", &index.TagContent{Value: strPtr("image")}))
	require.NoError(t, db.TagPoint(a.ID, "year", &index.TagContent{Value: strPtr("2020"), SortValue: int64Ptr(2020)}))

	aOnly, err := db.PointsByParts([]string{"kind=text"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int32{a.ID}, idsOf(aOnly))

	union, err := db.PointsByParts([]string{"kind=text or kind=image"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int32{a.ID, b.ID}, idsOf(union))

	intersection, err := db.PointsByParts([]string{"kind=text", "year=2020"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int32{a.ID}, idsOf(intersection))

	empty, err := db.PointsByParts([]string{"kind=text", "kind=image"})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

// TestNumericVsStringEquality covers spec.md §8 property 8.
func TestNumericVsStringEquality(t *testing.T) {
	db := openTestDB(t)
	p, _, err := db.UpsertPointByPath("a.txt", "/s/a.txt", "hash-a", false)
	require.NoError(t, err)
	require.NoError(t, db.TagPoint(p.ID, "year", &index.TagContent{Value: strPtr("2020"), SortValue: int64Ptr(2020)}))

	byNumber, err := db.PointsByParts([]string{"year=2020"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int32{p.ID}, idsOf(byNumber))

	byString, err := db.PointsByParts([]string{"year=foo"})
	require.NoError(t, err)
	assert.Empty(t, byString)
}

// TestUntagFirstMatch covers the documented "first match wins" decision in
// DESIGN.md's "Untag ambiguity" entry.
func TestUntagFirstMatch(t *testing.T) {
	db := openTestDB(t)
	p, _, err := db.UpsertPointByPath("a.txt", "/s/a.txt", "hash-a", false)
	require.NoError(t, err)
	require.NoError(t, db.TagPoint(p.ID, "kind", &index.TagContent{Value: strPtr("text")}))

	tag, err := db.Untag(p.ID, "kind=text")
	require.NoError(t, err)
	require.NotNil(t, tag)

	tags, err := db.TagsForPoint(*p)
	require.NoError(t, err)
	assert.Empty(t, tags)

	again, err := db.Untag(p.ID, "kind=text")
	require.NoError(t, err)
	assert.Nil(t, again)
}

// TestRemovePointDropsJoins ensures RemovePoint clears joins alongside the
// point itself, matching spec.md's Join lifecycle note.
func TestRemovePointDropsJoins(t *testing.T) {
	db := openTestDB(t)
	p, _, err := db.UpsertPointByPath("a.txt", "/s/a.txt", "hash-a", false)
	require.NoError(t, err)
	require.NoError(t, db.TagPoint(p.ID, "kind", &index.TagContent{Value: strPtr("text")}))

	require.NoError(t, db.RemovePoint(p.ID))

	points, err := db.PointsByParts([]string{"kind=text"})
	require.NoError(t, err)
	assert.Empty(t, points)
}

func int64Ptr(v int64) *int64 { return &v }

func idsOf(points []index.Point) []int32 {
	ids := make([]int32, len(points))
	for i, p := range points {
		ids[i] = p.ID
	}
	return ids
}
