package vfs

// Kind classifies a synthetic filesystem entry the way the original's
// fuser::FileType did.
type Kind int

const (
	KindDir Kind = iota
	KindSymlink
	KindFile
)

// FileAttr is the synthetic attribute record returned for getattr/lookup.
// Every field not listed here is fixed: permissions 0755, nlink 1, uid/gid
// 1000, timestamps at the epoch, blksize 512 — see spec.md §4.4.
type FileAttr struct {
	Ino    uint64
	Kind   Kind
	Size   uint64
	Blocks uint64
}

const (
	fixedPerm    = 0o755
	fixedNlink   = 1
	fixedUID     = 1000
	fixedGID     = 1000
	fixedBlkSize = 512
)

func basicDirectory(ino uint64) FileAttr {
	return FileAttr{Ino: ino, Kind: KindDir}
}

func basicLink(ino uint64) FileAttr {
	return FileAttr{Ino: ino, Kind: KindSymlink}
}

func basicFile(ino uint64, size, blocks uint64) FileAttr {
	return FileAttr{Ino: ino, Kind: KindFile, Size: size, Blocks: blocks}
}
