// builder.go -- constructs an mcdb file from a stream of key/value records
//
// Author: Sudhi Herle <sudhi@herle.net>
//
// This software does not come with any express or implied
// warranty; it is provided "as is". No claim  is made to its
// suitability for any purpose.

package mcdb

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	atomicfile "github.com/natefinch/atomic"
)

// bucketEntry is one pending hash-table entry: the hash of a record's key
// and the byte offset of the record in the temp file. Entries are kept in
// insertion order per bucket so that, after open-addressed placement,
// duplicate keys are still returned to readers in insertion order (see
// cursor.go).
type bucketEntry struct {
	hash   uint32
	offset uint64
}

// Builder streams records to a temporary file and, at Finish, lays out the
// 256 open-addressed hash tables and the fixed header before publishing the
// result atomically at the requested path. A Builder is single-use: once
// frozen (Finish or Abort called) it cannot be reused.
//
// Grounded on the construct-then-freeze lifecycle of
// opencoff-go-bbhash's DBWriter (NewDBWriter/Add*/Freeze/Abort), with the
// record layout and bucket/table construction taken from the classic cdb
// writer (opencoff-go-cdb) instead of a minimal perfect hash.
type Builder struct {
	tmp    *os.File
	buf    *bufio.Writer
	path   string
	tmpdir string

	off     uint64 // current write offset in the temp file; starts past the header
	nrec    uint64
	buckets [NumSlots][]bucketEntry

	tag byte

	frozen bool
}

// NewBuilder creates a Builder that will publish to path once Finish is
// called. The temp file is created in the same directory as path so the
// final rename is guaranteed atomic.
func NewBuilder(path string) (*Builder, error) {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return nil, fmt.Errorf("mcdb: create temp file: %w", err)
	}

	if err := tmp.Truncate(HeaderSize); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("mcdb: reserve header: %w", err)
	}
	if _, err := tmp.Seek(HeaderSize, io.SeekStart); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, fmt.Errorf("mcdb: seek past header: %w", err)
	}

	return &Builder{
		tmp:    tmp,
		buf:    bufio.NewWriterSize(tmp, 65536),
		path:   path,
		tmpdir: dir,
		off:    HeaderSize,
	}, nil
}

// WithTag sets the one-byte tag folded into every subsequent Add's hash
// (see hashTagged). tag == 0 restores the untagged convention. WithTag must
// be called before any Add.
func (b *Builder) WithTag(tag byte) *Builder {
	b.tag = tag
	return b
}

// Add appends one key/value record. Duplicate keys are permitted and are
// preserved in insertion order (spec.md invariant 3).
func (b *Builder) Add(key, val []byte) error {
	if b.frozen {
		return ErrFrozen
	}

	if len(key) > MaxLen {
		return ErrKeyTooLarge
	}
	if len(val) > MaxLen {
		return ErrValueTooLarge
	}
	if b.nrec >= MaxRecords {
		return ErrTooManyRecords
	}

	var hdr [RecordHeaderSize]byte
	writeU32(hdr[0:4], uint32(len(key)))
	writeU32(hdr[4:8], uint32(len(val)))

	recOff := b.off

	if _, err := b.buf.Write(hdr[:]); err != nil {
		return fmt.Errorf("mcdb: write record header: %w", err)
	}
	if _, err := b.buf.Write(key); err != nil {
		return fmt.Errorf("mcdb: write key: %w", err)
	}
	if _, err := b.buf.Write(val); err != nil {
		return fmt.Errorf("mcdb: write value: %w", err)
	}

	reclen := uint64(RecordHeaderSize + len(key) + len(val))
	b.off += reclen

	h := hashTagged(b.tag, key)
	slot := h & 0xFF
	b.buckets[slot] = append(b.buckets[slot], bucketEntry{hash: h, offset: recOff})
	b.nrec++

	return nil
}

// padding returns the number of zero bytes needed to bring off up to the
// next 8-byte boundary.
func padding(off uint64) int {
	if r := off % 8; r != 0 {
		return int(8 - r)
	}
	return 0
}

// AddTextStream adds records from a text stream where key and value on each
// line are separated by the first byte in delim found on that line. Blank
// lines and lines without a delimiter are skipped.
func (b *Builder) AddTextStream(r io.Reader, delim string) (uint64, error) {
	if b.frozen {
		return 0, ErrFrozen
	}

	if len(delim) == 0 {
		delim = " \t"
	}

	var n uint64
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if len(line) == 0 {
			continue
		}
		i := strings.IndexAny(line, delim)
		if i < 0 {
			continue
		}

		if err := b.Add([]byte(line[:i]), []byte(line[i+1:])); err != nil {
			return n, err
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, err
	}

	return n, nil
}

// AddTextFile opens fn and calls AddTextStream on its contents.
func (b *Builder) AddTextFile(fn string, delim string) (uint64, error) {
	fd, err := os.Open(fn)
	if err != nil {
		return 0, err
	}
	defer fd.Close()

	return b.AddTextStream(fd, delim)
}

// AddCSVStream adds records from a CSV stream, using the fields at index
// keyField and valField (defaulting to 0 and 1 when negative) as key and
// value. Rows too short to contain both fields are skipped.
func (b *Builder) AddCSVStream(r io.Reader, comma, comment rune, keyField, valField int) (uint64, error) {
	if b.frozen {
		return 0, ErrFrozen
	}

	if keyField < 0 {
		keyField = 0
	}
	if valField < 0 {
		valField = 1
	}

	max := keyField
	if valField > max {
		max = valField
	}
	max++

	cr := csv.NewReader(r)
	if comma != 0 {
		cr.Comma = comma
	}
	cr.Comment = comment
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.ReuseRecord = true

	var n uint64
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return n, err
		}
		if len(row) < max {
			continue
		}

		if err := b.Add([]byte(row[keyField]), []byte(row[valField])); err != nil {
			return n, err
		}
		n++
	}

	return n, nil
}

// AddCSVFile opens fn and calls AddCSVStream on its contents.
func (b *Builder) AddCSVFile(fn string, comma, comment rune, keyField, valField int) (uint64, error) {
	fd, err := os.Open(fn)
	if err != nil {
		return 0, err
	}
	defer fd.Close()

	return b.AddCSVStream(fd, comma, comment, keyField, valField)
}

// Finish lays out the 256 hash tables, writes the header, and atomically
// publishes the result at the Builder's path. After Finish, the Builder is
// frozen and further Add calls fail with ErrFrozen.
func (b *Builder) Finish() error {
	if b.frozen {
		return ErrFrozen
	}
	b.frozen = true

	var header [HeaderSize]byte

	if pad := padding(b.off); pad > 0 {
		var z [8]byte
		if _, err := b.buf.Write(z[:pad]); err != nil {
			return fmt.Errorf("mcdb: write padding: %w", err)
		}
		b.off += uint64(pad)
	}

	for slot := 0; slot < NumSlots; slot++ {
		entries := b.buckets[slot]

		descOff := slot * SlotDescSize
		if len(entries) == 0 {
			// table_offset and slot_count both stay zero: an empty
			// bucket (spec.md invariant 5).
			continue
		}

		slots := nextPow2(uint32(len(entries)) * 2)
		table := make([]bucketEntry, slots)

		for _, e := range entries {
			idx := (e.hash >> 8) % slots
			for table[idx].offset != 0 {
				idx = (idx + 1) % slots
			}
			table[idx] = e
		}

		tableOff := b.off
		for _, e := range table {
			var rec [TableEntrySize]byte
			writeU32(rec[0:4], e.hash)
			writeU64(rec[4:12], e.offset)
			if _, err := b.buf.Write(rec[:]); err != nil {
				return fmt.Errorf("mcdb: write hash table: %w", err)
			}
			b.off += TableEntrySize
		}

		writeU64(header[descOff:descOff+8], tableOff)
		writeU64(header[descOff+8:descOff+16], uint64(slots))
	}

	if err := b.buf.Flush(); err != nil {
		return fmt.Errorf("mcdb: flush: %w", err)
	}

	if _, err := b.tmp.WriteAt(header[:], 0); err != nil {
		return fmt.Errorf("mcdb: write header: %w", err)
	}

	if err := b.tmp.Sync(); err != nil {
		return fmt.Errorf("mcdb: fsync: %w", err)
	}

	if err := atomicfile.ReplaceFile(b.tmp.Name(), b.path); err != nil {
		b.tmp.Close()
		return fmt.Errorf("mcdb: publish: %w", err)
	}

	return b.tmp.Close()
}

// Abort discards the Builder's temp file without publishing anything.
func (b *Builder) Abort() error {
	if b.frozen {
		return nil
	}
	b.frozen = true

	name := b.tmp.Name()
	b.tmp.Close()
	return os.Remove(name)
}
