// Package index implements the relational tag index: points, tags, and the
// joins between them. It is the Go/gorm analogue of the original's
// diesel-backed schema.rs/models.rs.
package index

import "strconv"

// Point is a taggable entity: a file or directory on a backing host
// filesystem, or an entity known only abstractly once its path is gone.
type Point struct {
	ID   int32  `gorm:"primaryKey;autoIncrement:false"`
	Name string `gorm:"not null"`
	Path *string
	Hash string `gorm:"not null"`
	Dir  bool   `gorm:"not null"`
}

func (Point) TableName() string { return "points" }

// Tag is a (name, optional value, optional sort_value) record.
type Tag struct {
	ID        int32  `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"not null;index:idx_tags_name"`
	Value     *string
	SortValue *int64
}

func (Tag) TableName() string { return "tags" }

// Join is the many-to-many link "point has tag".
type Join struct {
	ID      int32 `gorm:"primaryKey;autoIncrement:false"`
	TagID   int32 `gorm:"not null;uniqueIndex:idx_joins_point_tag,priority:2"`
	PointID int32 `gorm:"not null;uniqueIndex:idx_joins_point_tag,priority:1"`
}

func (Join) TableName() string { return "joins" }

// Display renders the tag the way it appears in a mount path: "name" when
// there is no value, "name = value" otherwise.
func (t Tag) Display() string {
	if t.Value == nil {
		return t.Name
	}
	return t.Name + " = " + *t.Value
}

// FullName renders the point's lookup-suffixed display name: "<name>.<id>".
func (p Point) FullName() string {
	return p.Name + "." + strconv.Itoa(int(p.ID))
}
