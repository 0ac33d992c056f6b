package format

import (
	"fmt"

	"github.com/joshuapare/tblkit/internal/buf"
	"github.com/joshuapare/tblkit/internal/schema"
)

// Field names used in Fix records.
const (
	FieldBlockSize     = "block_size"
	FieldDeclaredCount = "declared_count"
	FieldPadding       = "padding"
)

// Fix records one change made by Correct.
type Fix struct {
	Offset    int
	EntryType string
	Field     string
	Old       int
	New       int
}

func (f Fix) String() string {
	if f.EntryType == "" {
		return fmt.Sprintf("0x%X %s: %d -> %d", f.Offset, f.Field, f.Old, f.New)
	}
	return fmt.Sprintf("0x%X %s %q: %d -> %d", f.Offset, f.Field, f.EntryType, f.Old, f.New)
}

// Correction summarizes a corrective pass.
type Correction struct {
	Entries int
	Fixes   []Fix
}

// Changed reports whether the pass modified anything.
func (c *Correction) Changed() bool {
	return len(c.Fixes) > 0
}

// Correct re-derives every block_size from the schema rather than from the
// stored value, truncates the zero tail after the last entry, and rewrites
// every declared section count with the number of entries seen. It works on
// a copy and returns the corrected bytes.
//
// Entry types the variant cannot measure keep their stored size if they are
// declared. A payload that is itself corrupt still receives a "correct"
// length; only its framing is repaired.
//
// Correct is idempotent: correcting its own output changes nothing.
func Correct(b []byte, v schema.Variant) ([]byte, *Correction, error) {
	if !v.Supported() {
		return nil, nil, fmt.Errorf("%w: %d", schema.ErrUnsupportedVariant, int(v))
	}
	out := append([]byte(nil), b...)
	h, off, err := ParseHeader(out)
	if err != nil {
		return nil, nil, err
	}
	sections, off, err := ParseSections(out, off, int(h.SectionCount))
	if err != nil {
		return nil, nil, err
	}
	declared := make(map[string]bool, len(sections))
	for _, s := range sections {
		declared[s.Name] = true
	}

	c := &Correction{}
	counts := make(map[string]int32, len(sections))
	for off < len(out) {
		if buf.AllZero(out[off:]) {
			c.Fixes = append(c.Fixes, Fix{Offset: off, Field: FieldPadding, Old: len(out) - off, New: 0})
			out = out[:off]
			break
		}
		name, sizeOff, ok := buf.CString(out, off)
		if !ok {
			return nil, nil, checkErr(ErrTruncated, off, "", "unterminated entry type")
		}
		typ := string(name)
		if !buf.Has(out, sizeOff, BlockSizeSize) {
			return nil, nil, checkErr(ErrTruncated, sizeOff, typ, "block size cut short")
		}
		stored := int(buf.U16LE(out[sizeOff:]))
		payloadOff := sizeOff + BlockSizeSize

		size := stored
		l, lerr := schema.Lookup(v, typ)
		switch {
		case lerr == nil && l.Measurable():
			_, n, err := l.Measure(out[payloadOff:])
			if err != nil {
				return nil, nil, checkErr(ErrTruncated, payloadOff, typ, "%v", err)
			}
			if n > MaxBlockSize {
				return nil, nil, checkErr(ErrBlockSizeMismatch, sizeOff, typ, "schema length %d exceeds u16", n)
			}
			size = n
		case declared[typ]:
			if !buf.Has(out, payloadOff, size) {
				return nil, nil, checkErr(ErrTruncated, payloadOff, typ, "payload of %d bytes runs past end of file", size)
			}
		default:
			return nil, nil, checkErr(ErrUnknownEntryType, off, typ, "no layout and not declared")
		}

		if size != stored {
			buf.PutU16LE(out[sizeOff:], uint16(size))
			c.Fixes = append(c.Fixes, Fix{Offset: sizeOff, EntryType: typ, Field: FieldBlockSize, Old: stored, New: size})
		}
		if declared[typ] {
			counts[typ]++
		}
		c.Entries++
		off = payloadOff + size
	}

	for _, s := range sections {
		if got := counts[s.Name]; got != s.DeclaredCount {
			buf.PutI32LE(out[s.CountOffset:], got)
			c.Fixes = append(c.Fixes, Fix{Offset: s.CountOffset, EntryType: s.Name, Field: FieldDeclaredCount,
				Old: int(s.DeclaredCount), New: int(got)})
		}
	}
	return out, c, nil
}
