package ingest

import (
	"path/filepath"
	"strconv"
	"strings"

	"github.com/notgne2/ffs/autotag"
	"github.com/pkg/errors"
)

// parseStorePathTags turns a store path's directory components into tags,
// one per component, each split on "=" into name[, value[, sort_value]].
// Port of main.rs::path_parts_to_tags.
func parseStorePathTags(parts []string) ([]autotag.Entry, error) {
	tags := make([]autotag.Entry, 0, len(parts))
	for _, part := range parts {
		fields := strings.Split(part, "=")
		for i, f := range fields {
			fields[i] = strings.TrimSpace(f)
		}

		switch len(fields) {
		case 1:
			tags = append(tags, autotag.Entry{Name: fields[0]})
		case 2:
			v := fields[1]
			tags = append(tags, autotag.Entry{Name: fields[0], Value: &v})
		case 3:
			sortValue, err := strconv.ParseInt(fields[2], 10, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "bad sort value in store path segment %q", part)
			}
			v := fields[1]
			tags = append(tags, autotag.Entry{Name: fields[0], Value: &v, SortValue: &sortValue})
		default:
			return nil, errors.Errorf("badly formatted store path segment %q", part)
		}
	}
	return tags, nil
}

// storePathToNameAndTags derives a point's name (the final path component)
// and its store-path tags (every ancestor directory component) from a
// store-relative path. Port of main.rs::store_path_to_name_and_tags.
func storePathToNameAndTags(relPath string) (string, []autotag.Entry, error) {
	name := filepath.Base(relPath)

	parentRel := filepath.Dir(relPath)
	var parts []string
	if parentRel != "." && parentRel != "" {
		parts = strings.Split(parentRel, string(filepath.Separator))
	}

	tags, err := parseStorePathTags(parts)
	if err != nil {
		return "", nil, err
	}
	return name, tags, nil
}
