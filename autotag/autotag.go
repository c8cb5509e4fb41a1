// Package autotag derives a starting set of tags for a point purely from
// its backing file's content — magic-byte sniffing, image/ELF/ID3 metadata,
// source-tree markers, and extension-based language hints. Go port of
// autotagger.rs::get_generic_tags_from_file, re-grounded on
// gabriel-vasile/mimetype instead of libmagic (see DESIGN.md).
package autotag

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/pkg/errors"
)

// Entry is a single derived tag: a bare name, or a name plus value, or a
// name plus value plus an explicit numeric sort key. Mirrors the original's
// TagEntry = (String, Option<(String, Option<i64>)>).
type Entry struct {
	Name      string
	Value     *string
	SortValue *int64
}

func bare(name string) Entry { return Entry{Name: name} }

func valued(name, value string) Entry {
	v := value
	return Entry{Name: name, Value: &v}
}

func sorted(name, value string, sortValue int64) Entry {
	v := value
	sv := sortValue
	return Entry{Name: name, Value: &v, SortValue: &sv}
}

// collector accumulates tags the way the original's tag_map did: later
// writes to the same name win, so order of detection matters for a few
// overlapping rules (e.g. "type").
type collector struct {
	order []string
	byKey map[string]Entry
}

func newCollector() *collector {
	return &collector{byKey: map[string]Entry{}}
}

func (c *collector) set(e Entry) {
	if _, ok := c.byKey[e.Name]; !ok {
		c.order = append(c.order, e.Name)
	}
	c.byKey[e.Name] = e
}

func (c *collector) entries() []Entry {
	out := make([]Entry, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.byKey[k])
	}
	return out
}

// TagsForFile derives the generic tag set for a point backed by path. dir
// tells us whether the point is a directory (directories never reach
// mimetype sniffing; they're classified purely by marker files).
func TagsForFile(path string, dir bool) ([]Entry, error) {
	c := newCollector()

	if dir {
		c.set(valued("type", "directory"))
		c.set(valued("magic", "directory"))
		addDirMarkerTags(c, path)
		return c.entries(), nil
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error sniffing %s", path)
	}
	c.set(valued("magic", mtype.String()))

	switch {
	case isELF(path, c):
		// handled entirely inside isELF, which sets its own tags.
	case mtype.Is("image/png") || mtype.Is("image/jpeg") || mtype.Is("image/gif") || mtype.Is("image/webp"):
		addImageTags(c, path, mtype)
	case mtype.Is("audio/mpeg"):
		addMP3Tags(c, path)
	case mtype.Is("audio/x-wav") || mtype.Is("audio/wav"):
		c.set(valued("type", "wav"))
		c.set(bare("audio"))
	case mtype.Is("video/mp4"):
		c.set(valued("type", "mp4"))
		c.set(bare("video"))
	case mtype.Is("application/zip"):
		c.set(bare("archive"))
	case mtype.Is("text/plain"):
		c.set(bare("ascii"))
		c.set(bare("text"))
		addExtensionLanguageTags(c, path)
	}

	return c.entries(), nil
}

// addDirMarkerTags looks for the handful of source-tree marker files the
// original checked for, directly in the directory being tagged.
func addDirMarkerTags(c *collector, dirPath string) {
	exists := func(name string) bool {
		_, err := os.Stat(filepath.Join(dirPath, name))
		return err == nil
	}

	if exists(".git") {
		c.set(bare("code"))
		c.set(bare("git"))
	}
	if exists("package.json") {
		c.set(bare("code"))
		c.set(valued("language", "javascript"))
		c.set(bare("npm"))
	}
	if exists("Cargo.toml") {
		c.set(bare("code"))
		c.set(valued("language", "rust"))
		c.set(bare("cargo"))
	}
	if exists("elm.json") {
		c.set(bare("code"))
		c.set(valued("language", "elm"))
		c.set(bare("elm"))
	}
}

// addExtensionLanguageTags mirrors the original's extension switch for the
// "ASCII text"/"C source"/"Python script" bucket, folded into one table
// since mimetype's text/plain detection doesn't distinguish source
// languages the way libmagic's descriptive strings did.
func addExtensionLanguageTags(c *collector, path string) {
	switch filepath.Ext(path) {
	case ".rs":
		c.set(bare("code"))
		c.set(valued("language", "rust"))
	case ".js":
		c.set(bare("code"))
		c.set(valued("language", "javascript"))
	case ".elm":
		c.set(bare("code"))
		c.set(valued("language", "elm"))
	case ".c", ".h":
		c.set(bare("code"))
		c.set(valued("language", "c"))
	case ".py":
		c.set(bare("code"))
		c.set(valued("language", "python"))
	case ".go":
		c.set(bare("code"))
		c.set(valued("language", "go"))
	case ".json":
		c.set(valued("language", "json"))
	case ".toml":
		c.set(valued("language", "toml"))
	case ".nix":
		c.set(valued("language", "nix"))
	case ".ini":
		c.set(valued("language", "ini"))
	}
}

func addMP3Tags(c *collector, path string) {
	ext := filepath.Ext(path)
	if ext == ".mp3" {
		c.set(valued("type", "mp3"))
	} else {
		c.set(valued("type", "audio"))
	}

	tags, err := readID3v2(path)
	if err != nil {
		// Not every MP3 carries an ID3v2 tag (some carry only ID3v1, or
		// none); that's not an ingestion failure, just fewer tags.
		return
	}

	if v, ok := tags["album"]; ok {
		c.set(valued("album", v))
	}
	if v, ok := tags["artist"]; ok {
		c.set(valued("artist", v))
	}
	if v, ok := tags["album_artist"]; ok {
		c.set(valued("album_artist", v))
	}
	if v, ok := tags["genre"]; ok {
		c.set(valued("genre", v))
	}
	if v, ok := tags["year"]; ok {
		if year, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.set(sorted("year", v, year))
		} else {
			c.set(valued("year", v))
		}
	}
	if v, ok := tags["comment"]; ok {
		c.set(valued("comment", v))
	}
}
