// db.go -- the DB handle: open, close, and lookup on the current generation
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package mcdb

import (
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// DB is a handle to an mcdb file that tolerates the file being rebuilt and
// swapped out from underneath it (see refresh.go). Callers obtain values via
// Find, which walks the mapping current at the time of the call.
//
// DB itself holds no reference on the mapping it points at; reference
// counting is purely a function of explicit ThreadRegister/ThreadUnregister
// calls (see registry.go). Close destroys the current mapping outright and
// requires the caller to have already unregistered every outstanding
// registration.
type DB struct {
	current atomic.Pointer[Mapping]

	mu sync.Mutex // serializes Refresh and Close against each other

	dirFD    int
	dirname  string
	filename string

	generation uint64
}

// Open maps the mcdb file at path and returns a DB handle for it.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	name := filepath.Base(path)

	dirFD, err := unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY, 0)
	if err != nil {
		return nil, fmt.Errorf("mcdb: open dir %s: %w", dir, err)
	}

	m, err := newMapping(dirFD, name, 1)
	if err != nil {
		unix.Close(dirFD)
		return nil, err
	}

	db := &DB{
		dirFD:      dirFD,
		dirname:    dir,
		filename:   name,
		generation: 1,
	}
	db.current.Store(m)

	return db, nil
}

// Close destroys the DB's current mapping and closes its directory fd. It
// does not check for outstanding thread registrations; callers must ensure
// ThreadUnregister has been called for every prior ThreadRegister before
// calling Close.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if m := db.current.Swap(nil); m != nil {
		m.destroy()
	}

	if db.dirFD >= 0 {
		err := unix.Close(db.dirFD)
		db.dirFD = -1
		return err
	}

	return nil
}

// Find returns a Cursor positioned at the first candidate slot for key
// within the mapping current at the time of the call.
func (db *DB) Find(key []byte) (*Cursor, error) {
	return db.FindTagged(0, key)
}

// FindTagged is Find with an explicit tag (see hashTagged).
func (db *DB) FindTagged(tag byte, key []byte) (*Cursor, error) {
	m := db.current.Load()
	if m == nil {
		return nil, fmt.Errorf("mcdb: db is closed")
	}

	return StartTagged(m, tag, key), nil
}

// Lookup is a convenience wrapper that returns the first matching value for
// key, or ErrNoKey if none exists.
func (db *DB) Lookup(key []byte) ([]byte, error) {
	c, err := db.Find(key)
	if err != nil {
		return nil, err
	}

	v, ok := c.Next()
	if !ok {
		return nil, ErrNoKey
	}
	return v, nil
}

// head walks the successor chain starting at m and returns the most recent
// generation reachable from it. Successor links are never cleared, so a
// chain grows by one link per Refresh while an older generation is still
// registered; the walk follows it to its end.
func head(m *Mapping) *Mapping {
	for {
		next := m.successor.Load()
		if next == nil {
			return m
		}
		m = next
	}
}
