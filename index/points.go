package index

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// PointsByParts resolves a list of tag expressions to the intersection of
// points matching every part, unioning disjuncts within a part. Direct port
// of utils.rs::get_points_by_parts.
func (d *DB) PointsByParts(parts []string) ([]Point, error) {
	if len(parts) == 0 {
		var points []Point
		if err := d.conn.Find(&points).Error; err != nil {
			return nil, errors.Wrap(err, "error loading points")
		}
		return points, nil
	}

	tagsPerPart, err := d.TagsByParts(parts)
	if err != nil {
		return nil, err
	}

	var pointsPerPart [][]int32
	seen := map[int32]bool{}
	var runningIDs []int32

	for _, tagsForPart := range tagsPerPart {
		var tagIDs []int32
		for _, t := range tagsForPart {
			tagIDs = append(tagIDs, t.ID)
		}

		var joins []Join
		if len(tagIDs) > 0 {
			if err := d.conn.Where("tag_id IN ?", tagIDs).Find(&joins).Error; err != nil {
				return nil, errors.Wrap(err, "error loading joins")
			}
		}

		partPointIDs := make([]int32, 0, len(joins))
		partSeen := map[int32]bool{}
		for _, j := range joins {
			if !partSeen[j.PointID] {
				partSeen[j.PointID] = true
				partPointIDs = append(partPointIDs, j.PointID)
			}
			if !seen[j.PointID] {
				seen[j.PointID] = true
				runningIDs = append(runningIDs, j.PointID)
			}
		}
		pointsPerPart = append(pointsPerPart, partPointIDs)
	}

	for _, partPointIDs := range pointsPerPart {
		allowed := map[int32]bool{}
		for _, id := range partPointIDs {
			allowed[id] = true
		}
		kept := runningIDs[:0]
		for _, id := range runningIDs {
			if allowed[id] {
				kept = append(kept, id)
			}
		}
		runningIDs = kept
	}

	if len(runningIDs) == 0 {
		return nil, nil
	}

	var points []Point
	if err := d.conn.Where("id IN ?", runningIDs).Find(&points).Error; err != nil {
		return nil, errors.Wrap(err, "error loading points")
	}
	return points, nil
}

// TagsForPoint returns all tags joined to a single point, the port of
// utils.rs::get_tags_for_point.
func (d *DB) TagsForPoint(p Point) ([]Tag, error) {
	return d.TagsForPoints([]Point{p})
}

// TagsForPoints returns all tags joined to any point in the set,
// de-duplicated by id; port of utils.rs::get_tags_for_points.
func (d *DB) TagsForPoints(points []Point) ([]Tag, error) {
	if len(points) == 0 {
		return nil, nil
	}
	ids := make([]int32, len(points))
	for i, p := range points {
		ids[i] = p.ID
	}

	var joins []Join
	if err := d.conn.Where("point_id IN ?", ids).Find(&joins).Error; err != nil {
		return nil, errors.Wrap(err, "error loading joins")
	}
	if len(joins) == 0 {
		return nil, nil
	}

	tagIDSeen := map[int32]bool{}
	var tagIDs []int32
	for _, j := range joins {
		if !tagIDSeen[j.TagID] {
			tagIDSeen[j.TagID] = true
			tagIDs = append(tagIDs, j.TagID)
		}
	}

	var tags []Tag
	if err := d.conn.Where("id IN ?", tagIDs).Find(&tags).Error; err != nil {
		return nil, errors.Wrap(err, "error loading tags")
	}
	return tags, nil
}

// LookupPointByPath takes the last component of parts and defers to
// LookupPointByName. Port of ffs.rs::Ffs::lookup_point_by_name, which
// receives a full path and extracts its file_name() internally.
func (d *DB) LookupPointByPath(parts []string) (*Point, bool) {
	if len(parts) == 0 {
		return nil, false
	}
	return d.LookupPointByName(parts[len(parts)-1])
}

// LookupPointByName takes the last path component's ".<id>" suffix and looks
// up the point with that id, authoritatively — no fallback to name matching.
// Port of ffs.rs::Ffs::lookup_point_by_name.
func (d *DB) LookupPointByName(lastComponent string) (*Point, bool) {
	idx := strings.LastIndex(lastComponent, ".")
	if idx < 0 || idx == len(lastComponent)-1 {
		return nil, false
	}
	id, err := strconv.ParseInt(lastComponent[idx+1:], 10, 32)
	if err != nil {
		return nil, false
	}

	var p Point
	if err := d.conn.First(&p, int32(id)).Error; err != nil {
		return nil, false
	}
	return &p, true
}

// AllPoints returns every known point, used by `update-all`.
func (d *DB) AllPoints() ([]Point, error) {
	var points []Point
	if err := d.conn.Find(&points).Error; err != nil {
		return nil, errors.Wrap(err, "error loading points")
	}
	return points, nil
}

// PointByID fetches a single point by its primary key.
func (d *DB) PointByID(id int32) (*Point, error) {
	var p Point
	if err := d.conn.First(&p, id).Error; err != nil {
		return nil, errors.Wrapf(err, "point %d not found", id)
	}
	return &p, nil
}
