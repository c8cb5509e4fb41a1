package vfs

import (
	"github.com/notgne2/ffs/pathquery"
)

// ReadDir serves one readdir call, consulting the staggered-offset cache
// described in spec.md §4.4. Port of ffs.rs::Filesystem::readdir.
func (r *Resolver) ReadDir(ino uint64, offset int) ([]dirEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, ok := r.cache.get(ino); ok && offset != 0 {
		if offset > len(cached) {
			offset = len(cached)
		}
		out := cached[offset:]
		r.cache.evictIfExhausted(ino, offset, len(cached))
		return out, nil
	}

	path, ok := r.ids.pathForIno(ino)
	if !ok {
		path = ""
	}
	components := splitPath(path)

	entries, err := r.computeEntries(components)
	if err != nil {
		return nil, err
	}
	if offset == 0 {
		r.cache.put(ino, entries)
	}
	if offset > len(entries) {
		offset = len(entries)
	}
	return entries[offset:], nil
}

// computeEntries builds the full ordered listing for a directory path. Port
// of the entry-building half of ffs.rs::Filesystem::readdir.
func (r *Resolver) computeEntries(components []string) ([]dirEntry, error) {
	entries := []dirEntry{
		{Ino: rootIno, Kind: KindDir, Name: "."},
		{Ino: rootIno, Kind: KindDir, Name: ".."},
	}

	parsed := pathquery.ParseComponents(components)
	if parsed.Flattened {
		flattened, err := r.computeFlattenedEntries(components, parsed)
		if err != nil {
			return nil, err
		}
		return append(entries, flattened...), nil
	}

	normal, err := r.computeNormalEntries(components)
	if err != nil {
		return nil, err
	}
	return append(entries, normal...), nil
}

func (r *Resolver) computeFlattenedEntries(components []string, parsed pathquery.Parsed) ([]dirEntry, error) {
	var out []dirEntry

	if len(parsed.Flat) == 0 {
		out = append(out, dirEntry{
			Ino:  r.ids.assignIno(joinPath(withChild(components, pathquery.FlatInfo))),
			Kind: KindFile,
			Name: pathquery.FlatInfo,
		})
	}

	if pt, ok := r.db.LookupPointByPath(parsed.Combined); ok {
		if !pt.Dir {
			return nil, ErrNotDir
		}
		out = append(out, dirEntry{
			Ino:  r.ids.assignIno(joinPath(withChild(components, pathquery.Dir))),
			Kind: KindFile,
			Name: pathquery.Dir,
		})
		return out, nil
	}

	points, err := r.db.PointsByParts(parsed.Combined)
	if err != nil {
		return nil, err
	}

	added := map[string]bool{}
	for _, pt := range points {
		tags, err := r.db.TagsForPoint(pt)
		if err != nil {
			return nil, err
		}
		full := distinguishingTags(tags, parsed.Combined)

		if len(full) > 0 {
			first := full[0]
			if added[first] {
				continue
			}
			added[first] = true
			out = append(out, dirEntry{
				Ino:  r.ids.assignIno(joinPath(withChild(components, first))),
				Kind: KindDir,
				Name: first,
			})
			continue
		}

		if pt.Path == nil {
			continue
		}
		fullName := pt.FullName()
		ino := r.ids.assignIno(joinPath(withChild(components, fullName)))
		r.ids.rememberPoint(ino, pt)
		kind := KindSymlink
		if pt.Dir {
			kind = KindDir
		}
		out = append(out, dirEntry{Ino: ino, Kind: kind, Name: fullName})
	}
	return out, nil
}

func (r *Resolver) computeNormalEntries(components []string) ([]dirEntry, error) {
	var out []dirEntry

	out = append(out, dirEntry{
		Ino:  r.ids.assignIno(joinPath(withChild(components, pathquery.Flatten))),
		Kind: KindDir,
		Name: pathquery.Flatten,
	})

	for _, name := range r.ids.childExtraDirs(components) {
		out = append(out, dirEntry{
			Ino:  r.ids.assignIno(joinPath(withChild(components, name))),
			Kind: KindDir,
			Name: name,
		})
	}

	points, err := r.db.PointsByParts(components)
	if err != nil {
		return nil, err
	}
	for _, pt := range points {
		if pt.Path == nil {
			continue
		}
		fullName := pt.FullName()
		ino := r.ids.assignIno(joinPath(withChild(components, fullName)))
		r.ids.rememberPoint(ino, pt)
		out = append(out, dirEntry{Ino: ino, Kind: KindSymlink, Name: fullName})
	}

	tags, err := r.db.TagsForPoints(points)
	if err != nil {
		return nil, err
	}
	present := map[string]bool{}
	for _, c := range components {
		present[c] = true
	}
	for _, t := range tags {
		disp := t.Display()
		if present[disp] {
			continue
		}
		out = append(out, dirEntry{
			Ino:  r.ids.assignIno(joinPath(withChild(components, disp))),
			Kind: KindDir,
			Name: disp,
		})
	}
	return out, nil
}
