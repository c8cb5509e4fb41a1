package index

import (
	"github.com/pkg/errors"
)

// TagContent mirrors the original's Option<(value, Option<sort_value>)>: a
// tag attaches with no value, a value only, or a value plus an explicit
// numeric sort key.
type TagContent struct {
	Value     *string
	SortValue *int64
}

// TagPoint attaches tag_name[=content] to the point with id, creating the
// tag row on first use and skipping the join if it already exists. Port of
// main.rs::tag_point.
func (d *DB) TagPoint(id int32, tagName string, content *TagContent) error {
	q := d.conn.Model(&Tag{}).Where("name = ?", tagName)
	if content != nil && content.Value != nil {
		q = q.Where("value = ?", *content.Value)
	} else if content == nil {
		q = q.Where("value IS NULL")
	}

	var existing []Tag
	if err := q.Limit(1).Find(&existing).Error; err != nil {
		return errors.Wrap(err, "error searching tags")
	}

	var tagID int32
	if len(existing) > 0 {
		tagID = existing[0].ID
	} else {
		newTag := Tag{Name: tagName}
		if content != nil {
			newTag.Value = content.Value
			newTag.SortValue = content.SortValue
		}
		if err := d.insertTagWithNewID(&newTag); err != nil {
			return err
		}
		tagID = newTag.ID
	}

	var existingJoins []Join
	if err := d.conn.Where("tag_id = ? AND point_id = ?", tagID, id).Limit(1).Find(&existingJoins).Error; err != nil {
		return errors.Wrap(err, "error searching joins")
	}
	if len(existingJoins) > 0 {
		return nil
	}

	join := Join{TagID: tagID, PointID: id}
	return d.insertJoinWithNewID(&join)
}

// Untag removes the join between a point and the first tag matched by
// tagExpr, ambiguously — the same "first match wins" behavior the original
// had in main.rs's "untag" subcommand (see DESIGN.md "Untag ambiguity").
// It returns nil when no tag matches or the point has no join to the
// matched tag.
func (d *DB) Untag(id int32, tagExpr string) (*Tag, error) {
	matched, err := d.TagsByParts([]string{tagExpr})
	if err != nil {
		return nil, err
	}
	if len(matched) == 0 || len(matched[0]) == 0 {
		return nil, nil
	}
	tag := matched[0][0]

	res := d.conn.Where("point_id = ? AND tag_id = ?", id, tag.ID).Delete(&Join{})
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "error deleting join")
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &tag, nil
}

// UpsertPointByPath finds an existing point by exact path, then by content
// hash, or creates a new one; port of main.rs::update_point_by_path's point
// resolution half (the autotag/re-tag half lives in the ingest package).
func (d *DB) UpsertPointByPath(name, path, hash string, dir bool) (*Point, bool, error) {
	var byPath []Point
	if err := d.conn.Where("path = ?", path).Limit(1).Find(&byPath).Error; err != nil {
		return nil, false, errors.Wrap(err, "error searching points by path")
	}
	if len(byPath) > 0 {
		return &byPath[0], false, nil
	}

	var byHash []Point
	if err := d.conn.Where("hash = ?", hash).Limit(1).Find(&byHash).Error; err != nil {
		return nil, false, errors.Wrap(err, "error searching points by hash")
	}
	if len(byHash) > 0 {
		return &byHash[0], false, nil
	}

	p := Point{Name: name, Path: &path, Hash: hash, Dir: dir}
	if err := d.insertPointWithNewID(&p); err != nil {
		return nil, false, err
	}
	return &p, true, nil
}

// UpdatePointPath sets a point's backing path (or clears it), mirroring
// main.rs::update_point's diesel::update calls.
func (d *DB) UpdatePointPath(id int32, path *string) error {
	return errors.Wrap(d.conn.Model(&Point{}).Where("id = ?", id).Update("path", path).Error, "error updating point")
}

// UpdatePointHash sets a point's stored content hash.
func (d *DB) UpdatePointHash(id int32, hash string) error {
	return errors.Wrap(d.conn.Model(&Point{}).Where("id = ?", id).Update("hash", hash).Error, "error updating point")
}

// RemovePoint deletes a point and its joins (cascade performed explicitly,
// matching spec.md's Join lifecycle note). Port of main.rs's "remove" arm.
func (d *DB) RemovePoint(id int32) error {
	if err := d.conn.Delete(&Point{}, id).Error; err != nil {
		return errors.Wrap(err, "error deleting point")
	}
	if err := d.conn.Where("point_id = ?", id).Delete(&Join{}).Error; err != nil {
		return errors.Wrap(err, "error deleting joins")
	}
	return nil
}
