// Package memory is the default sandbox store. Records live for the life of
// the process.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/vitemonmedoc/medoc/internal/model"
)

// DB holds every table behind one lock.
type DB struct {
	mu sync.RWMutex

	users     map[int64]*userRow
	patients  map[int64]*model.Patient
	nextUser  int64
	nextPatID int64

	now func() time.Time
}

type userRow struct {
	user model.User
	hash string
}

func NewDB() *DB {
	return &DB{
		users:    make(map[int64]*userRow),
		patients: make(map[int64]*model.Patient),
		now:      time.Now,
	}
}

// PingContext always succeeds; it exists so the health check treats every store alike.
func (db *DB) PingContext(_ context.Context) error {
	return nil
}

func (db *DB) stamp() *time.Time {
	t := db.now().UTC().Truncate(time.Second)
	return &t
}
