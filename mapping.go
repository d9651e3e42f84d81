// mapping.go -- an immutable memory-mapped view of one mcdb file generation
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
	"time"

	"golang.org/x/sys/unix"
)

// Mapping owns a memory-mapped, read-only view of one generation of an mcdb
// file. It is immutable after construction except for two fields: successor
// (set exactly once, when a refresh publishes the next generation) and
// refcount (updated only via thread registration). See spec.md section 3.
type Mapping struct {
	data  []byte
	size  int64
	mtime time.Time

	// dirFD is this mapping's own duplicate of the database's directory
	// fd, closed by destroy. Refresh stats and reopens the file through
	// the DB's directory fd, not this one.
	dirFD    int
	filename string

	// generation is local bookkeeping only; never serialized to disk.
	generation uint64

	refcount  int32
	successor atomic.Pointer[Mapping]
}

// newMapping opens filename relative to dbDirFD, mmaps it whole, and
// validates the header. dbDirFD is not retained directly - the mapping dups
// it so that destroy can close its own copy independently of the database's
// handle and of any sibling generation.
func newMapping(dbDirFD int, filename string, generation uint64) (*Mapping, error) {
	fd, err := unix.Openat(dbDirFD, filename, unix.O_RDONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("mcdb: open %s: %w", filename, err)
	}
	defer unix.Close(fd)

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return nil, fmt.Errorf("mcdb: stat %s: %w", filename, err)
	}

	if st.Size < HeaderSize {
		return nil, fmt.Errorf("%w: %s is %d bytes", ErrTruncated, filename, st.Size)
	}

	data, err := unix.Mmap(fd, 0, int(st.Size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %s", ErrMapFailed, filename, err)
	}

	if err := validateHeader(data); err != nil {
		_ = unix.Munmap(data)
		return nil, fmt.Errorf("mcdb: %s: %w", filename, err)
	}

	ownDirFD, err := unix.Dup(dbDirFD)
	if err != nil {
		_ = unix.Munmap(data)
		return nil, fmt.Errorf("mcdb: dup dir fd: %w", err)
	}

	return &Mapping{
		data:       data,
		size:       st.Size,
		mtime:      statMtime(&st),
		dirFD:      ownDirFD,
		filename:   filename,
		generation: generation,
	}, nil
}

// destroy releases every resource a mapping owns, in the order spec.md
// section 5 mandates: munmap, close dir fd, (Go has no caller-managed
// filename buffer to free - the filename is a regular Go string).
func (m *Mapping) destroy() {
	if m.data != nil {
		_ = unix.Munmap(m.data)
	}
	m.data = nil

	if m.dirFD >= 0 {
		_ = unix.Close(m.dirFD)
		m.dirFD = -1
	}
}

// changed reports whether the file backing m has a different (mtime, size)
// than what m was constructed from.
func (m *Mapping) changed(dbDirFD int, filename string) (bool, error) {
	var st unix.Stat_t
	if err := unix.Fstatat(dbDirFD, filename, &st, 0); err != nil {
		return false, fmt.Errorf("mcdb: stat %s: %w", filename, err)
	}

	if st.Size == m.size && statMtime(&st).Equal(m.mtime) {
		return false, nil
	}
	return true, nil
}
