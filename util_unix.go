// util_unix.go -- small stat helpers used by mapping.go
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package mcdb

import (
	"time"

	"golang.org/x/sys/unix"
)

// statMtime converts a raw unix.Stat_t modification time into a time.Time
// with full nanosecond precision, so two stats of the same inode compare
// equal even when the filesystem only coarsens mtime on writeback.
func statMtime(st *unix.Stat_t) time.Time {
	return time.Unix(st.Mtim.Sec, st.Mtim.Nsec)
}
