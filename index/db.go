package index

import (
	"math/rand"
	"strings"

	"github.com/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB wraps the gorm connection to the points/tags/joins store.
type DB struct {
	conn *gorm.DB
}

// Open establishes the index connection and ensures the schema exists,
// analogous to main.rs's SqliteConnection::establish plus the schema that
// diesel's migrations would have already applied.
func Open(dbURL string) (*DB, error) {
	conn, err := gorm.Open(sqlite.Open(dbURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to db")
	}
	if err := conn.AutoMigrate(&Point{}, &Tag{}, &Join{}); err != nil {
		return nil, errors.Wrap(err, "error migrating schema")
	}
	return &DB{conn: conn}, nil
}

// randomID picks an id in [0, 1_000_000), matching the original's
// rng.gen_range(0..1_000_000) id allocation (see DESIGN.md "Id allocation
// collisions" note: callers retry on a uniqueness conflict instead of
// silently colliding).
func randomID() int32 {
	return rand.Int31n(1_000_000)
}

// insertPointWithNewID inserts point with a fresh random id, retrying on a
// primary-key collision. A port of the original's "pick random, hope for the
// best" allocator made safe per the REDESIGN FLAGS note in spec.md.
func (d *DB) insertPointWithNewID(p *Point) error {
	for attempt := 0; attempt < 10; attempt++ {
		p.ID = randomID()
		err := d.conn.Create(p).Error
		if err == nil {
			return nil
		}
		if !isUniqueConstraintErr(err) {
			return errors.Wrap(err, "error saving new point")
		}
	}
	return errors.New("could not allocate a unique point id")
}

func (d *DB) insertTagWithNewID(t *Tag) error {
	for attempt := 0; attempt < 10; attempt++ {
		t.ID = randomID()
		err := d.conn.Create(t).Error
		if err == nil {
			return nil
		}
		if !isUniqueConstraintErr(err) {
			return errors.Wrap(err, "error saving new tag")
		}
	}
	return errors.New("could not allocate a unique tag id")
}

func (d *DB) insertJoinWithNewID(j *Join) error {
	for attempt := 0; attempt < 10; attempt++ {
		j.ID = randomID()
		err := d.conn.Create(j).Error
		if err == nil {
			return nil
		}
		if !isUniqueConstraintErr(err) {
			return errors.Wrap(err, "error saving new join")
		}
	}
	return errors.New("could not allocate a unique join id")
}

// WithTransaction runs fn against a DB bound to a single gorm transaction,
// committing on a nil return and rolling back otherwise. Callers that issue
// several statements per logical point (see ingest.upsertIngestedPoint) use
// this to avoid the original's bare-statement-sequence atomicity gap noted
// in spec.md §9 ("Atomicity").
func (d *DB) WithTransaction(fn func(tx *DB) error) error {
	return d.conn.Transaction(func(tx *gorm.DB) error {
		return fn(&DB{conn: tx})
	})
}

// isUniqueConstraintErr recognizes a primary-key collision by message, since
// the pinned gorm version (v1.21.15) predates the ErrDuplicatedKey sentinel
// gorm's sqlite driver only started translating errors into from v1.25.0.
func isUniqueConstraintErr(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "unique constraint")
}
