package ingest

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/notgne2/ffs/autotag"
	"github.com/notgne2/ffs/index"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	flatInfoFileName = "@flat-info"
	dirMarkerName    = "@dir"
)

// LoadStore walks storeDir and ingests every file (and every @dir marker
// directory) it finds as a point, tagged by its position in the directory
// tree. Port of main.rs::load_store.
func LoadStore(db *index.DB, storeDir string) error {
	flatInfoTags, err := readFlatInfo(storeDir)
	if err != nil {
		return err
	}

	return filepath.WalkDir(storeDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == storeDir {
			return nil
		}

		rel, err := filepath.Rel(storeDir, path)
		if err != nil {
			return err
		}
		relParts := strings.Split(rel, string(filepath.Separator))

		if len(relParts) == 1 && relParts[0] == flatInfoFileName {
			logrus.WithField("store_dir", storeDir).Debug("not importing @flat-info meta-file")
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			logrus.WithField("path", path).Warn("store path is a symlink, this is not supported")
			return nil
		}

		for _, ancestor := range relParts[:len(relParts)-1] {
			if ancestor == dirMarkerName {
				// Already covered by the @dir point itself.
				return nil
			}
		}

		var name string
		var pathTags []autotag.Entry
		target := path

		var parseErr error
		if d.IsDir() {
			if d.Name() != dirMarkerName {
				return nil
			}
			parentRel := strings.Join(relParts[:len(relParts)-1], string(filepath.Separator))
			name, pathTags, parseErr = storePathToNameAndTags(parentRel)
		} else {
			name, pathTags, parseErr = storePathToNameAndTags(rel)
		}
		if parseErr != nil {
			// Malformed path segment: fatal only for this entry (spec.md §7
			// "Invalid path"), logged and skipped so the walk continues with
			// its siblings rather than aborting the whole store.
			logrus.WithField("path", path).WithError(parseErr).Warn("skipping store entry with a malformed path segment")
			return nil
		}

		tags := make([]autotag.Entry, 0, len(flatInfoTags)+len(pathTags))
		tags = append(tags, flatInfoTags...)
		tags = append(tags, pathTags...)

		logrus.WithFields(logrus.Fields{"name": name, "target": target}).Info("ingesting store entry")

		_, err = upsertIngestedPoint(db, name, target, tags)
		return err
	})
}

// readFlatInfo reads storeDir's top-level @flat-info file, if any, and
// parses its "/"-separated payload into prefix tags applied to every point
// ingested from the store.
func readFlatInfo(storeDir string) ([]autotag.Entry, error) {
	data, err := os.ReadFile(filepath.Join(storeDir, flatInfoFileName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "error reading %s", flatInfoFileName)
	}

	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, nil
	}
	return parseStorePathTags(strings.Split(trimmed, "/"))
}
