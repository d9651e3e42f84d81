// refresh_test.go -- test suite for hot-swapping a generation via Refresh

package mcdb

import (
	"bytes"
	"testing"
	"time"
)

func buildOneRecord(t *testing.T, path, key, val string) {
	t.Helper()
	assert := newAsserter(t)

	b, err := NewBuilder(path)
	assert(err == nil, "new builder: %s", err)
	assert(b.Add([]byte(key), []byte(val)) == nil, "add")
	assert(b.Finish() == nil, "finish")
}

func TestRefreshPicksUpNewGeneration(t *testing.T) {
	assert := newAsserter(t)

	path := tempDBPath(t)
	buildOneRecord(t, path, "k", "v1")

	db, err := Open(path)
	assert(err == nil, "open: %s", err)
	defer db.Close()

	got, err := db.Lookup([]byte("k"))
	assert(err == nil, "lookup v1: %s", err)
	assert(bytes.Equal(got, []byte("v1")), "exp v1, saw %q", got)

	// The rebuild has the same size, so only the mtime tells it apart;
	// the short sleep relies on sub-second mtime resolution.
	time.Sleep(10 * time.Millisecond)
	buildOneRecord(t, path, "k", "v2")

	changed, err := db.Refresh()
	assert(err == nil, "refresh: %s", err)
	assert(changed, "expected refresh to detect a new generation")

	got, err = db.Lookup([]byte("k"))
	assert(err == nil, "lookup v2: %s", err)
	assert(bytes.Equal(got, []byte("v2")), "exp v2, saw %q", got)

	changed, err = db.Refresh()
	assert(err == nil, "second refresh: %s", err)
	assert(!changed, "expected no-op refresh when file is unchanged")
}

func TestRefreshKeepsRegisteredMappingAlive(t *testing.T) {
	assert := newAsserter(t)

	path := tempDBPath(t)
	buildOneRecord(t, path, "k", "v1")

	db, err := Open(path)
	assert(err == nil, "open: %s", err)
	defer db.Close()

	m := db.ThreadRegister()
	assert(m != nil, "thread register")

	time.Sleep(10 * time.Millisecond)
	buildOneRecord(t, path, "k", "v2")

	changed, err := db.Refresh()
	assert(err == nil, "refresh: %s", err)
	assert(changed, "expected refresh to detect a new generation")

	// The registered mapping is still the old generation; it must still
	// resolve the key it was built with even though db.current has moved on.
	c := Start(m, []byte("k"))
	v, ok := c.Next()
	assert(ok, "expected old generation to still answer lookups")
	assert(bytes.Equal(v, []byte("v1")), "exp v1 from retained generation, saw %q", v)

	latest := head(m)
	lc := Start(latest, []byte("k"))
	lv, ok := lc.Next()
	assert(ok, "expected head() to reach the new generation")
	assert(bytes.Equal(lv, []byte("v2")), "exp v2 from head(), saw %q", lv)

	assert(db.ThreadUnregister(m) == nil, "unregister")
}

func TestThreadUnregisterUnknownMapping(t *testing.T) {
	assert := newAsserter(t)

	path := tempDBPath(t)
	buildOneRecord(t, path, "k", "v1")

	db, err := Open(path)
	assert(err == nil, "open: %s", err)
	defer db.Close()

	err = db.ThreadUnregister(nil)
	assert(err == ErrNotRegistered, "exp ErrNotRegistered, saw %v", err)
}
