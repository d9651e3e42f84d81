// registry.go -- thread registration: the only mechanism that keeps a
// mapping alive across a refresh
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package mcdb

import "sync/atomic"

// ThreadRegister increments the refcount on the mapping current at the time
// of the call and returns it. The caller must later pass the returned
// mapping to ThreadUnregister exactly once. Holding a registration
// guarantees the mapping's bytes stay valid even if Refresh publishes a
// newer generation in the meantime; it does not, by itself, advance the
// caller to the newer generation (use head() for that).
//
// Registration is serialized against Refresh by db.mu: Refresh decides
// whether to link a successor or destroy the outgoing mapping based on
// whether its refcount is nonzero, and that decision must not be made
// concurrently with a registrant observing and incrementing the same
// refcount, or the registrant can end up holding a pointer to a mapping
// Refresh has already unmapped.
func (db *DB) ThreadRegister() *Mapping {
	db.mu.Lock()
	defer db.mu.Unlock()

	m := db.current.Load()
	if m == nil {
		return nil
	}

	atomic.AddInt32(&m.refcount, 1)
	return m
}

// ThreadUnregister releases a registration obtained from ThreadRegister. If
// this was the last outstanding registration on m and m has since been
// superseded by a successor (i.e. it is no longer reachable as db's
// current mapping), m is destroyed.
func (db *DB) ThreadUnregister(m *Mapping) error {
	if m == nil {
		return ErrNotRegistered
	}

	n := atomic.AddInt32(&m.refcount, -1)
	if n < 0 {
		atomic.AddInt32(&m.refcount, 1)
		return ErrNotRegistered
	}

	if n == 0 {
		db.mu.Lock()
		defer db.mu.Unlock()

		// Check under the lock: Refresh may have linked a successor
		// concurrently with our refcount reaching zero.
		if atomic.LoadInt32(&m.refcount) == 0 && m.successor.Load() != nil {
			m.destroy()
		}
	}

	return nil
}
