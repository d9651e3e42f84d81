// cursor.go -- per-lookup probe state for reading records out of a Mapping
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package mcdb

import "bytes"

// Cursor walks the probe sequence for one key within one Mapping, yielding
// every matching record in insertion order. A Cursor touches only the
// mapped bytes already resident in memory: no syscalls, no allocation on
// the hit path.
//
// Grounded on the probe loop of the classic cdb reader (table lookup via
// hash&0xFF, slot via (hash>>8)%len, linear probe until an empty slot),
// adapted to this format's big-endian 12-byte entries and 64-bit record
// offsets.
type Cursor struct {
	m   *Mapping
	tag byte
	key []byte
	hash uint32

	tableOff uint64
	slots    uint64

	probe uint64 // next slot index to examine
	seen  uint64 // number of slots examined so far, for wraparound detection

	done bool
}

// Start positions a Cursor at the first candidate slot for key within m.
// It never itself reports a match; call Next to advance to (and read) each
// candidate record.
func Start(m *Mapping, key []byte) *Cursor {
	return StartTagged(m, 0, key)
}

// StartTagged is Start with an explicit tag, for namespaced lookups (see
// hashTagged).
func StartTagged(m *Mapping, tag byte, key []byte) *Cursor {
	h := hashTagged(tag, key)
	slot := h & 0xFF

	descOff := int(slot) * SlotDescSize
	desc := m.data[descOff : descOff+SlotDescSize]
	tableOff := readU64(desc[0:8])
	slots := readU64(desc[8:16])

	c := &Cursor{
		m:        m,
		tag:      tag,
		key:      key,
		hash:     h,
		tableOff: tableOff,
		slots:    slots,
	}

	if slots == 0 {
		c.done = true
		return c
	}

	c.probe = (uint64(h) >> 8) % slots
	return c
}

// Next advances to the next candidate record whose table entry hash matches
// and whose stored key matches byte-for-byte, returning its value. It
// returns ok=false once the probe sequence hits an empty slot or has
// examined every slot in the table without success.
func (c *Cursor) Next() (value []byte, ok bool) {
	for !c.done && c.seen < c.slots {
		entOff := c.tableOff + c.probe*TableEntrySize
		ent := c.m.data[entOff : entOff+TableEntrySize]

		entHash := readU32(ent[0:4])
		entRecOff := readU64(ent[4:12])

		c.seen++
		c.probe = (c.probe + 1) % c.slots

		if entRecOff == 0 {
			// Empty slot: the probe sequence for this key ends here.
			c.done = true
			return nil, false
		}

		if entHash != c.hash {
			continue
		}

		k, v, ok := c.readRecord(entRecOff)
		if !ok {
			continue
		}
		if !bytes.Equal(k, c.key) {
			continue
		}

		return v, true
	}

	c.done = true
	return nil, false
}

// readRecord decodes the record at off within the mapping, returning its
// key and value slices (both views into the mapping, not copies).
func (c *Cursor) readRecord(off uint64) (key, val []byte, ok bool) {
	data := c.m.data
	if off+RecordHeaderSize > uint64(len(data)) {
		return nil, nil, false
	}

	hdr := data[off : off+RecordHeaderSize]
	klen := uint64(readU32(hdr[0:4]))
	vlen := uint64(readU32(hdr[4:8]))

	start := off + RecordHeaderSize
	end := start + klen + vlen
	if end > uint64(len(data)) {
		return nil, nil, false
	}

	key = data[start : start+klen]
	val = data[start+klen : end]
	return key, val, true
}
