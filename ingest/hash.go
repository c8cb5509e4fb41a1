// Package ingest walks a store directory (or a single added path) into the
// index: computing content hashes, deriving name/tags from the store's
// directory structure, running the autotagger, and reconciling existing
// points on re-ingestion. Go port of main.rs's load_store/update_point_by_path
// /update_point/random_id-adjacent glue (see DESIGN.md).
package ingest

import (
	"encoding/hex"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	blake2b "github.com/minio/blake2b-simd"
	"github.com/pkg/errors"
)

// hashPath computes a point's content hash and whether it is a directory.
// A directory's hash is the blake2b-512 digest of the concatenation of
// every regular file under it, in walk order — the same algorithm as
// utils.rs::hash_path, just with blake2b-simd standing in for the `blake2`
// crate's Blake2b512.
func hashPath(path string) (hash string, dir bool, err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", false, errors.Wrapf(err, "error stating %s", path)
	}

	hasher := blake2b.New512()

	if info.IsDir() {
		walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || d.Type()&fs.ModeSymlink != 0 {
				return nil
			}
			f, err := os.Open(p)
			if err != nil {
				return err
			}
			defer f.Close()
			_, err = io.Copy(hasher, f)
			return err
		})
		if walkErr != nil {
			return "", false, errors.Wrapf(walkErr, "error hashing directory %s", path)
		}
		return hex.EncodeToString(hasher.Sum(nil)), true, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", false, errors.Wrapf(err, "error opening %s", path)
	}
	defer f.Close()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", false, errors.Wrapf(err, "error hashing %s", path)
	}
	return hex.EncodeToString(hasher.Sum(nil)), false, nil
}
