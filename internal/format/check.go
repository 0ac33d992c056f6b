package format

import (
	"github.com/joshuapare/tblkit/internal/schema"
)

// Check re-parses b and reports the first structural problem:
//
//   - an entry or size field cut off by end of file (ErrTruncated)
//   - non-zero trailing bytes that do not form an entry (ErrTruncated or
//     ErrUnknownEntryType, whichever decoding hits first)
//   - an entry type missing from the section list (ErrUnknownEntryType)
//   - a stored block_size that differs from the schema length, for entry types
//     the variant can measure (ErrBlockSizeMismatch)
//   - a declared section count that differs from the entries seen
//     (ErrSectionCountMismatch)
//
// An all-zero tail after the last entry is accepted. With an unsupported
// variant the block-size check is skipped.
func Check(b []byte, v schema.Variant) error {
	t, err := Parse(b)
	if err != nil {
		return err
	}
	declared := make(map[string]struct{}, len(t.Sections))
	for _, s := range t.Sections {
		declared[s.Name] = struct{}{}
	}
	for _, e := range t.Entries {
		if _, ok := declared[e.Type]; !ok {
			return checkErr(ErrUnknownEntryType, e.Offset, e.Type, "entry type not in section list")
		}
		l, err := schema.Lookup(v, e.Type)
		if err != nil || !l.Measurable() {
			continue
		}
		if _, n, err := l.Measure(e.Payload(b)); err != nil || n != int(e.BlockSize) {
			want := -1
			if _, n, err := l.Measure(b[e.PayloadOffset():]); err == nil {
				want = n
			}
			return checkErr(ErrBlockSizeMismatch, e.SizeOffset, e.Type, "stored %d, schema length %d", e.BlockSize, want)
		}
	}
	counts := t.Counts()
	for _, s := range t.Sections {
		if got := counts[s.Name]; got != int(s.DeclaredCount) {
			return checkErr(ErrSectionCountMismatch, s.CountOffset, s.Name, "declared %d, found %d", s.DeclaredCount, got)
		}
	}
	return nil
}

// Validate reports whether b passes Check. It never panics or errors.
func Validate(b []byte, v schema.Variant) bool {
	return Check(b, v) == nil
}
