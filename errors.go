// errors.go -- sentinel errors for mcdb
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package mcdb

import "errors"

var (
	// ErrFrozen is returned when attempting to add records to a Builder
	// that has already called Finish(), or to Finish() one a second time.
	ErrFrozen = errors.New("mcdb: builder already frozen")

	// ErrKeyTooLarge is returned when a key exceeds the maximum permitted
	// length (INT_MAX - 8 bytes).
	ErrKeyTooLarge = errors.New("mcdb: key too large")

	// ErrValueTooLarge is returned when a value exceeds the maximum
	// permitted length (INT_MAX - 8 bytes).
	ErrValueTooLarge = errors.New("mcdb: value too large")

	// ErrTooManyRecords is returned when a Builder would exceed 2^31
	// records.
	ErrTooManyRecords = errors.New("mcdb: too many records")

	// ErrNoKey is returned (as a plain not-found signal, not a hard
	// error) when a key cannot be located.
	ErrNoKey = errors.New("mcdb: no such key")

	// ErrTruncated indicates the file is smaller than the fixed 4096
	// byte header and cannot be a valid mcdb (FormatError).
	ErrTruncated = errors.New("mcdb: file too small to hold a header")

	// ErrCorruptHeader indicates a slot descriptor points outside the
	// file or is otherwise inconsistent with the file size (FormatError).
	ErrCorruptHeader = errors.New("mcdb: corrupt slot descriptor")

	// ErrMapFailed wraps an underlying mmap(2) failure (MapError).
	ErrMapFailed = errors.New("mcdb: mmap failed")

	// ErrNotRegistered is returned by ThreadUnregister when called with a
	// mapping the caller never registered.
	ErrNotRegistered = errors.New("mcdb: mapping was not registered")
)
