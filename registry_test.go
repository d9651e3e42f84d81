// registry_test.go -- concurrency stress test for thread registration vs refresh

package mcdb

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConcurrentRegisterAndRefresh(t *testing.T) {
	path := tempDBPath(t)
	buildOneRecord(t, path, "k", "v0")

	db, err := Open(path)
	require.NoError(t, err)
	defer db.Close()

	const readers = 16
	const rounds = 50

	var wg sync.WaitGroup
	var failures int32

	for i := 0; i < readers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				m := db.ThreadRegister()
				if m == nil {
					atomic.AddInt32(&failures, 1)
					continue
				}

				c := Start(m, []byte("k"))
				if _, ok := c.Next(); !ok {
					atomic.AddInt32(&failures, 1)
				}

				if err := db.ThreadUnregister(m); err != nil {
					atomic.AddInt32(&failures, 1)
				}
			}
		}(i)
	}

	var refreshWG sync.WaitGroup
	refreshWG.Add(1)
	go func() {
		defer refreshWG.Done()
		for r := 0; r < 5; r++ {
			buildOneRecord(t, path, "k", fmt.Sprintf("v%d", r+1))
			if _, err := db.Refresh(); err != nil {
				atomic.AddInt32(&failures, 1)
			}
		}
	}()

	wg.Wait()
	refreshWG.Wait()

	require.Zero(t, atomic.LoadInt32(&failures), "expected no failures under concurrent register/refresh")
}
