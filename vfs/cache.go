package vfs

// dirEntry is a single readdir row: the inode, kind, and display name.
// Port of the original's (u64, FileType, String) tuple.
type dirEntry struct {
	Ino  uint64
	Kind Kind
	Name string
}

// dirCache holds, per directory inode, the full entry list computed for the
// first readdir call at that generation. The kernel issues readdir in
// staggered offset reads (0, then resuming at whatever offset the previous
// reply stopped at); caching the full list on the first read and serving
// slices of it on subsequent reads keeps every read consistent even though
// computing the list re-queries the index. The cache entry is dropped once
// a read consumes it to the end, exactly as the original's dir_entries map
// worked.
type dirCache struct {
	entries map[uint64][]dirEntry
}

func newDirCache() *dirCache {
	return &dirCache{entries: map[uint64][]dirEntry{}}
}

// get returns the cached entries for ino and whether anything was cached.
func (c *dirCache) get(ino uint64) ([]dirEntry, bool) {
	e, ok := c.entries[ino]
	return e, ok
}

// put installs a freshly computed entry list for ino, only ever called for
// an offset-0 read (see resolver.ReadDir).
func (c *dirCache) put(ino uint64, entries []dirEntry) {
	c.entries[ino] = entries
}

// evictIfExhausted drops the cached list once offset has reached its end,
// matching "cache should only be used once (for staggered reads)".
func (c *dirCache) evictIfExhausted(ino uint64, offset int, total int) {
	if offset == total {
		delete(c.entries, ino)
	}
}
