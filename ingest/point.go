package ingest

import (
	"os"
	"path/filepath"

	"github.com/notgne2/ffs/autotag"
	"github.com/notgne2/ffs/index"
	"github.com/pkg/errors"
)

func entryContent(e autotag.Entry) *index.TagContent {
	if e.Value == nil {
		return nil
	}
	return &index.TagContent{Value: e.Value, SortValue: e.SortValue}
}

// upsertIngestedPoint finds-or-creates the point backed by target, attaches
// every tag in tags, then reconciles it via reconcilePoint. Port of
// main.rs::update_point_by_path.
func upsertIngestedPoint(db *index.DB, name, target string, tags []autotag.Entry) (*index.Point, error) {
	hash, dir, err := hashPath(target)
	if err != nil {
		return nil, err
	}

	var point *index.Point
	err = db.WithTransaction(func(tx *index.DB) error {
		var txErr error
		point, _, txErr = tx.UpsertPointByPath(name, target, hash, dir)
		if txErr != nil {
			return txErr
		}

		for _, t := range tags {
			if txErr := tx.TagPoint(point.ID, t.Name, entryContent(t)); txErr != nil {
				return txErr
			}
		}

		return reconcilePoint(tx, point, &target, &hash)
	})
	if err != nil {
		return nil, err
	}
	return point, nil
}

// reconcilePoint brings a point's stored path/hash up to date with what was
// just observed on disk (or, for update-all, re-examines the path already
// on file) and re-runs the autotagger against whatever path is still live.
// Port of main.rs::update_point.
func reconcilePoint(db *index.DB, point *index.Point, newPath *string, newHash *string) error {
	var livePath *string

	switch {
	case point.Path == nil && newPath != nil:
		if err := db.UpdatePointPath(point.ID, newPath); err != nil {
			return err
		}
		livePath = newPath
	case point.Path != nil && newPath != nil && *point.Path != *newPath:
		if err := db.UpdatePointPath(point.ID, newPath); err != nil {
			return err
		}
		livePath = newPath
	case point.Path != nil && newPath == nil:
		if _, err := os.Stat(*point.Path); err != nil {
			if err := db.UpdatePointPath(point.ID, nil); err != nil {
				return err
			}
			livePath = nil
		} else {
			livePath = point.Path
		}
	case point.Path != nil:
		livePath = point.Path
	}

	if livePath != nil {
		entries, err := autotag.TagsForFile(*livePath, point.Dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if err := db.TagPoint(point.ID, e.Name, entryContent(e)); err != nil {
				return err
			}
		}
	}

	if newHash != nil && point.Hash != *newHash {
		if err := db.UpdatePointHash(point.ID, *newHash); err != nil {
			return err
		}
	}
	return nil
}

// UpdateAll re-examines every known point: dropping its path if the backing
// file vanished, and otherwise re-hashing the live path (storing the new
// hash if the content changed) and re-running the autotagger against it.
// Port of main.rs main()'s "update-all" arm.
func UpdateAll(db *index.DB) error {
	points, err := db.AllPoints()
	if err != nil {
		return err
	}
	for _, p := range points {
		p := p
		var newHash *string
		if p.Path != nil {
			if _, statErr := os.Stat(*p.Path); statErr == nil {
				h, _, hashErr := hashPath(*p.Path)
				if hashErr != nil {
					return errors.Wrapf(hashErr, "error updating point %d", p.ID)
				}
				newHash = &h
			}
		}
		err := db.WithTransaction(func(tx *index.DB) error {
			return reconcilePoint(tx, &p, nil, newHash)
		})
		if err != nil {
			return errors.Wrapf(err, "error updating point %d", p.ID)
		}
	}
	return nil
}

// AddPath ingests a single file or directory outside of any store,
// canonicalizing its path and deriving its name from the basename. Port of
// main.rs main()'s "add" arm.
func AddPath(db *index.DB, path string, extraTags []autotag.Entry) (*index.Point, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "error resolving path %s", path)
	}
	full, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return nil, errors.Wrapf(err, "error resolving path %s", path)
	}
	name := filepath.Base(full)
	return upsertIngestedPoint(db, name, full, extraTags)
}
