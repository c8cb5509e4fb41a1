package index

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Expr is a single parsed comparison within a tag expression disjunct, the
// Go analogue of the capture groups the original matched with its
// QUERY_RE/INFINITE_QUERY_RE regexes in utils.rs.
type Expr struct {
	Name  string
	Op    string // "", "<", ">", "=", "!="
	Value string
}

// TagsByParts resolves the union of matching tags for each path component,
// the direct port of utils.rs::get_tags_by_parts.
func (d *DB) TagsByParts(parts []string) ([][]Tag, error) {
	result := make([][]Tag, 0, len(parts))
	for _, part := range parts {
		var these []Tag
		for _, disjunct := range strings.Split(part, " or ") {
			found, err := d.tagsForExpr(parseExpr(disjunct))
			if err != nil {
				return nil, err
			}
			these = append(these, found...)
		}
		result = append(result, these)
	}
	return result, nil
}

// parseExpr splits "name OP value" the way QUERY_RE did; a disjunct with no
// recognized operator matches only on tag name.
func parseExpr(disjunct string) Expr {
	disjunct = strings.TrimSpace(disjunct)
	for _, op := range []string{"!=", "<", ">", "="} {
		if idx := strings.Index(disjunct, op); idx >= 0 {
			name := strings.TrimSpace(disjunct[:idx])
			value := strings.TrimSpace(disjunct[idx+len(op):])
			if name != "" {
				return Expr{Name: name, Op: op, Value: value}
			}
		}
	}
	return Expr{Name: disjunct}
}

func (d *DB) tagsForExpr(e Expr) ([]Tag, error) {
	q := d.conn.Model(&Tag{})
	if e.Op == "" {
		q = q.Where("name = ?", e.Name)
		return loadTags(q)
	}

	sortValue, numeric := parseSortValue(e.Value)

	switch e.Op {
	case ">":
		if !numeric {
			return nil, nil
		}
		q = q.Where("name = ?", e.Name).Where("sort_value > ?", sortValue)
	case "<":
		if !numeric {
			return nil, nil
		}
		q = q.Where("name = ?", e.Name).Where("sort_value < ?", sortValue)
	case "!=":
		if numeric {
			q = q.Where("name = ?", e.Name).Where("sort_value != ?", sortValue)
		} else {
			q = q.Where("name = ?", e.Name).Where("value != ?", e.Value)
		}
	case "=":
		if numeric {
			q = q.Where("name = ?", e.Name).Where("sort_value = ?", sortValue)
		} else {
			q = q.Where("name = ?", e.Name).Where("value = ?", e.Value)
		}
	default:
		return nil, errors.Errorf("unknown tag operator %q", e.Op)
	}
	return loadTags(q)
}

func parseSortValue(value string) (int64, bool) {
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func loadTags(q *gorm.DB) ([]Tag, error) {
	var tags []Tag
	if err := q.Find(&tags).Error; err != nil {
		return nil, errors.Wrap(err, "error loading tags")
	}
	return tags, nil
}
