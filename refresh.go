// refresh.go -- detecting and publishing a new file generation
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package mcdb

import (
	"fmt"
	"sync/atomic"
)

// Refresh checks whether the file backing db has changed (by mtime and
// size) since the current mapping was created, and if so, maps the new
// generation and publishes it as current. It reports whether a new
// generation was published.
//
// Refresh is safe to call from any number of goroutines; it is fully
// serialized by db.mu, so concurrent callers simply queue behind whichever
// one is actively remapping. The outgoing mapping always gets the new
// generation linked as its successor; if it is still registered (see
// registry.go) it is not destroyed immediately, so readers mid-lookup on
// the old generation keep working until they unregister.
func (db *DB) Refresh() (bool, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	cur := db.current.Load()
	if cur == nil {
		return false, fmt.Errorf("mcdb: db is closed")
	}

	changed, err := cur.changed(db.dirFD, db.filename)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	db.generation++
	next, err := newMapping(db.dirFD, db.filename, db.generation)
	if err != nil {
		db.generation--
		return false, err
	}

	db.current.Store(next)

	// Link next even when cur is destroyed below, so head() on an older
	// registered generation whose chain passes through cur still reaches
	// next.
	cur.successor.Store(next)

	if atomic.LoadInt32(&cur.refcount) == 0 {
		// No registrations remain on cur; otherwise the last
		// ThreadUnregister destroys it.
		cur.destroy()
	}

	return true, nil
}
