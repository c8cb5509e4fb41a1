package vfs

import (
	"strings"

	"github.com/notgne2/ffs/index"
)

// rootIno is fixed at 1 by the FUSE protocol itself; identity assigns 2
// onward so the first real entry never collides with it (see the comment
// on the original's next_ino initializer — ino 1 colliding with the first
// live entry made readdir think everything lived under /@flatten).
const rootIno uint64 = 1

// joinPath renders path components into the canonical map key used
// throughout the identity table: a "/"-separated string with no leading
// slash, empty for root.
func joinPath(components []string) string {
	return strings.Join(components, "/")
}

func splitPath(path string) []string {
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}

// identity is the path<->inode bookkeeping table (spec.md §4.3): every path
// the resolver has ever produced an attribute for earns a stable inode for
// the lifetime of the mount, and every open earns a stable file handle.
type identity struct {
	nextIno uint64
	nextFh  uint64

	pathToIno map[string]uint64
	inoToPath map[uint64]string

	inoToPoint map[uint64]index.Point

	fhToPath map[uint64]string

	extraDirs map[string]bool
}

func newIdentity() *identity {
	return &identity{
		nextIno:    2,
		nextFh:     1,
		pathToIno:  map[string]uint64{},
		inoToPath:  map[uint64]string{},
		inoToPoint: map[uint64]index.Point{},
		fhToPath:   map[uint64]string{},
		extraDirs:  map[string]bool{},
	}
}

// assignIno returns the existing inode for path, or mints and records a new
// one. Port of ffs.rs::Ffs::new_ino.
func (t *identity) assignIno(path string) uint64 {
	if ino, ok := t.pathToIno[path]; ok {
		return ino
	}
	ino := t.nextIno
	t.nextIno++
	t.pathToIno[path] = ino
	t.inoToPath[ino] = path
	return ino
}

// pathForIno resolves an inode back to its path, "" for the root inode.
// Port of ffs.rs::Ffs::read_ino.
func (t *identity) pathForIno(ino uint64) (string, bool) {
	if ino == rootIno {
		return "", true
	}
	p, ok := t.inoToPath[ino]
	return p, ok
}

// inoForPath is the reverse lookup, used when a caller has a path but no
// inode hint (the @dir branch falling back to path_to_ino.get(parent)).
func (t *identity) inoForPath(path string) (uint64, bool) {
	if path == "" {
		return rootIno, true
	}
	ino, ok := t.pathToIno[path]
	return ino, ok
}

// assignFh mints a fresh file handle bound to path. Port of new_fh.
func (t *identity) assignFh(path string) uint64 {
	fh := t.nextFh
	t.nextFh++
	t.fhToPath[fh] = path
	return fh
}

// pathForFh resolves a file handle to its path, falling back to the inode
// it was opened against. Port of read_fh.
func (t *identity) pathForFh(fh uint64, ino uint64) (string, bool) {
	if p, ok := t.fhToPath[fh]; ok {
		return p, true
	}
	return t.pathForIno(ino)
}

func (t *identity) rememberPoint(ino uint64, p index.Point) {
	t.inoToPoint[ino] = p
}

func (t *identity) pointForIno(ino uint64) (index.Point, bool) {
	p, ok := t.inoToPoint[ino]
	return p, ok
}

func (t *identity) addExtraDir(path string) {
	t.extraDirs[path] = true
}

func (t *identity) isExtraDir(path string) bool {
	return t.extraDirs[path]
}

// childExtraDirs returns the immediate-child extra directories of parent,
// i.e. every created directory whose own parent is exactly parent. Port of
// the readdir loop that filters extra_dirs by split_last().
func (t *identity) childExtraDirs(parentComponents []string) []string {
	var names []string
	for dir := range t.extraDirs {
		comps := splitPath(dir)
		if len(comps) == 0 {
			continue
		}
		name := comps[len(comps)-1]
		parent := comps[:len(comps)-1]
		if equalComponents(parent, parentComponents) {
			names = append(names, name)
		}
	}
	return names
}

func equalComponents(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
