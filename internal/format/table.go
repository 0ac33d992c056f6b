package format

import (
	"github.com/joshuapare/tblkit/internal/buf"
)

// Header is the fixed table preamble.
type Header struct {
	TotalEntries uint16
	SectionCount int32
}

// ParseHeader decodes the header at the start of b and returns the offset of
// the first section header.
func ParseHeader(b []byte) (Header, int, error) {
	if len(b) < HeaderSize {
		return Header{}, 0, checkErr(ErrTruncated, 0, "", "need %d header bytes, have %d", HeaderSize, len(b))
	}
	h := Header{
		TotalEntries: buf.U16LE(b[TotalEntriesOffset:]),
		SectionCount: buf.I32LE(b[SectionCountOffset:]),
	}
	if h.SectionCount < 0 || h.SectionCount > MaxSections {
		return Header{}, 0, checkErr(ErrCorruptHeader, SectionCountOffset, "", "section count %d out of range", h.SectionCount)
	}
	return h, HeaderSize, nil
}

// Section is one declared section header.
type Section struct {
	Name          string
	DeclaredCount int32
	CountOffset   int // Absolute offset of the declared_count field
}

// ReadSection decodes the section header at off.
func ReadSection(b []byte, off int) (Section, int, error) {
	name, next, ok := buf.CString(b, off)
	if !ok {
		return Section{}, off, checkErr(ErrTruncated, off, "", "unterminated section name")
	}
	if !buf.Has(b, next, SectionCountSize) {
		return Section{}, off, checkErr(ErrTruncated, next, string(name), "section count cut short")
	}
	s := Section{Name: string(name), DeclaredCount: buf.I32LE(b[next:]), CountOffset: next}
	if s.DeclaredCount < 0 {
		return Section{}, off, checkErr(ErrCorruptHeader, next, s.Name, "negative declared count %d", s.DeclaredCount)
	}
	return s, next + SectionCountSize, nil
}

// ParseSections decodes n consecutive section headers starting at off.
func ParseSections(b []byte, off, n int) ([]Section, int, error) {
	sections := make([]Section, 0, n)
	for i := 0; i < n; i++ {
		s, next, err := ReadSection(b, off)
		if err != nil {
			return nil, off, err
		}
		sections = append(sections, s)
		off = next
	}
	return sections, off, nil
}

// Entry locates one record. Offsets are absolute.
type Entry struct {
	Type       string
	Offset     int // Start of the entry_type string
	SizeOffset int // Start of the block_size field
	BlockSize  uint16
}

// PayloadOffset returns the offset of the first payload byte.
func (e Entry) PayloadOffset() int {
	return e.SizeOffset + BlockSizeSize
}

// End returns the offset just past the payload as declared by BlockSize.
func (e Entry) End() int {
	return e.PayloadOffset() + int(e.BlockSize)
}

// Payload returns the declared payload bytes, or nil if they run past b.
func (e Entry) Payload(b []byte) []byte {
	p, ok := buf.Slice(b, e.PayloadOffset(), int(e.BlockSize))
	if !ok {
		return nil
	}
	return p
}

// ReadEntry decodes the entry at off and returns the offset of the next one.
// The stored block_size is trusted for the skip; it is never recomputed here.
func ReadEntry(b []byte, off int) (Entry, int, error) {
	name, next, ok := buf.CString(b, off)
	if !ok {
		return Entry{}, off, checkErr(ErrTruncated, off, "", "unterminated entry type")
	}
	e := Entry{Type: string(name), Offset: off, SizeOffset: next}
	if !buf.Has(b, next, BlockSizeSize) {
		return Entry{}, off, checkErr(ErrTruncated, next, e.Type, "block size cut short")
	}
	e.BlockSize = buf.U16LE(b[next:])
	if !buf.Has(b, e.PayloadOffset(), int(e.BlockSize)) {
		return Entry{}, off, checkErr(ErrTruncated, e.PayloadOffset(), e.Type,
			"payload of %d bytes runs past end of file (%d bytes left)", e.BlockSize, len(b)-e.PayloadOffset())
	}
	return e, e.End(), nil
}

// Scanner walks the entry stream lazily. It stops at end of file, at an
// all-zero tail (padding), or at the first decoding error.
type Scanner struct {
	data    []byte
	off     int
	entry   Entry
	err     error
	padding int
	done    bool
}

// NewScanner returns a scanner positioned at off, normally the end of the
// section headers.
func NewScanner(b []byte, off int) *Scanner {
	return &Scanner{data: b, off: off}
}

// Next advances to the next entry.
func (s *Scanner) Next() bool {
	if s.done || s.err != nil {
		return false
	}
	if s.off >= len(s.data) {
		s.done = true
		return false
	}
	if buf.AllZero(s.data[s.off:]) {
		s.padding = len(s.data) - s.off
		s.done = true
		return false
	}
	e, next, err := ReadEntry(s.data, s.off)
	if err != nil {
		s.err = err
		return false
	}
	s.entry = e
	s.off = next
	return true
}

// Entry returns the current entry.
func (s *Scanner) Entry() Entry { return s.entry }

// Err returns the error that stopped the scan, if any.
func (s *Scanner) Err() error { return s.err }

// Offset returns the cursor: the offset just past the last decoded entry.
func (s *Scanner) Offset() int { return s.off }

// Padding returns the length of the zero tail once the scan has finished.
func (s *Scanner) Padding() int { return s.padding }

// Table is a decoded section index plus entry locations.
type Table struct {
	Header
	Sections   []Section
	DataOffset int // Offset of the first entry
	Entries    []Entry
	End        int // Offset just past the last entry
	Padding    int // Length of the zero tail after End
}

// Parse decodes the header, the section index and every entry of b.
func Parse(b []byte) (*Table, error) {
	h, off, err := ParseHeader(b)
	if err != nil {
		return nil, err
	}
	sections, off, err := ParseSections(b, off, int(h.SectionCount))
	if err != nil {
		return nil, err
	}
	t := &Table{Header: h, Sections: sections, DataOffset: off}
	sc := NewScanner(b, off)
	for sc.Next() {
		t.Entries = append(t.Entries, sc.Entry())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	t.End = sc.Offset()
	t.Padding = sc.Padding()
	return t, nil
}

// Section returns the first section named name.
func (t *Table) Section(name string) (Section, bool) {
	for _, s := range t.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// Counts returns the number of entries seen per entry type.
func (t *Table) Counts() map[string]int {
	counts := make(map[string]int, len(t.Sections))
	for _, e := range t.Entries {
		counts[e.Type]++
	}
	return counts
}
