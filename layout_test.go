// layout_test.go -- test suite for the on-disk layout helpers

package mcdb

import "testing"

func TestReadWriteU32(t *testing.T) {
	assert := newAsserter(t)

	var b [4]byte
	writeU32(b[:], 0xdeadbeef)
	assert(readU32(b[:]) == 0xdeadbeef, "round trip mismatch: %#x", readU32(b[:]))
}

func TestReadWriteU64(t *testing.T) {
	assert := newAsserter(t)

	var b [8]byte
	writeU64(b[:], 0x0102030405060708)
	assert(readU64(b[:]) == 0x0102030405060708, "round trip mismatch: %#x", readU64(b[:]))
}

func TestValidateHeaderTooSmall(t *testing.T) {
	assert := newAsserter(t)

	err := validateHeader(make([]byte, HeaderSize-1))
	assert(err == ErrTruncated, "exp ErrTruncated, saw %v", err)
}

func TestValidateHeaderAllEmpty(t *testing.T) {
	assert := newAsserter(t)

	err := validateHeader(make([]byte, HeaderSize))
	assert(err == nil, "all-empty header should validate: %v", err)
}

func TestValidateHeaderOutOfBounds(t *testing.T) {
	assert := newAsserter(t)

	buf := make([]byte, HeaderSize+TableEntrySize)
	// slot 0 claims a table that runs past the end of the file.
	writeU64(buf[0:8], HeaderSize)
	writeU64(buf[8:16], 1000)

	err := validateHeader(buf)
	assert(err == ErrCorruptHeader, "exp ErrCorruptHeader, saw %v", err)
}

func TestValidateHeaderOffsetBeforeHeader(t *testing.T) {
	assert := newAsserter(t)

	buf := make([]byte, HeaderSize+TableEntrySize)
	writeU64(buf[0:8], 10) // inside the header region, illegal
	writeU64(buf[8:16], 1)

	err := validateHeader(buf)
	assert(err == ErrCorruptHeader, "exp ErrCorruptHeader, saw %v", err)
}
