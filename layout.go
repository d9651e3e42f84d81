// layout.go -- on-disk binary layout for mcdb
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package mcdb

import "encoding/binary"

// The file has three regions, all integers big-endian:
//
//   - Header: 256 slot descriptors, 16 bytes each (table_offset, slot_count)
//   - Record stream: (klen u32, vlen u32, key, value)+, zero-padded to 8 bytes
//   - Hash tables: one per slot descriptor, 12-byte entries (hash u32, offset u64)
//
// See spec.md section 3 and 6 for the bit-exact description this file
// implements.
const (
	NumSlots         = 256
	SlotDescSize     = 16 // 8 (offset) + 8 (slot count)
	HeaderSize       = NumSlots * SlotDescSize
	TableEntrySize   = 12 // 4 (hash) + 8 (record offset)
	RecordHeaderSize = 8  // 4 (klen) + 4 (vlen)

	// MaxLen is the largest permitted key or value length: INT_MAX - 8,
	// matching the original mcdb's "each key or data set... almost 2 GB"
	// limit (see original_source/mcdb.h). A length of MaxLen+1 is rejected.
	MaxLen = (1<<31 - 1) - 8

	// MaxRecords is the largest number of records a single Builder may
	// produce (spec.md invariant 6).
	MaxRecords = 1 << 31
)

func readU32(b []byte) uint32 { return binary.BigEndian.Uint32(b) }
func writeU32(b []byte, v uint32) { binary.BigEndian.PutUint32(b, v) }
func readU64(b []byte) uint64 { return binary.BigEndian.Uint64(b) }
func writeU64(b []byte, v uint64) { binary.BigEndian.PutUint64(b, v) }

// nextPow2 returns the smallest power of two >= v, with a floor of 2.
func nextPow2(v uint32) uint32 {
	if v <= 2 {
		return 2
	}

	v--
	v |= v >> 1
	v |= v >> 2
	v |= v >> 4
	v |= v >> 8
	v |= v >> 16
	v++
	return v
}

// validateHeader checks that every nonzero slot descriptor in b (the full
// mapped file) references a table that fits within the file. It does not
// re-derive or verify load factors - that is a builder-time invariant, not
// something a reader can cheaply prove without walking every bucket.
func validateHeader(b []byte) error {
	if len(b) < HeaderSize {
		return ErrTruncated
	}

	sz := uint64(len(b))
	for slot := 0; slot < NumSlots; slot++ {
		off := slot * SlotDescSize
		tableOffset := readU64(b[off : off+8])
		slots := readU64(b[off+8 : off+16])

		if slots == 0 {
			continue
		}

		if tableOffset < HeaderSize {
			return ErrCorruptHeader
		}

		end := tableOffset + slots*TableEntrySize
		if end < tableOffset || end > sz {
			return ErrCorruptHeader
		}
	}

	return nil
}
