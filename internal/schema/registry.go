package schema

import (
	"fmt"
	"sort"

	"github.com/joshuapare/tblkit/internal/buf"
)

// Width is the byte width of one payload field. CString marks a
// null-terminated string of variable length.
type Width int

// CString is the width of a variable-length null-terminated string field.
const CString Width = 0

// Entry type names used by the item, dlc and attach tables.
const (
	EntryItem   = "item"
	EntryItemQ  = "item_q"
	EntryItemE  = "item_e"
	EntryDLC    = "dlc"
	EntryAttach = "AttachTableData"
)

const (
	// GrantSlots is the number of (item id, quantity) pairs in a dlc payload.
	GrantSlots = 20
	// GrantSlotSize is the byte size of one grant pair.
	GrantSlotSize = 4
	// EmptyGrantID fills unused grant slots.
	EmptyGrantID uint16 = 9999
	// AttachItemIDOffset is the payload offset of the target item ID in an
	// AttachTableData entry (after character id, item type and a reserved u16).
	AttachItemIDOffset = 6
)

// Kind groups entry types by the ID space they carry.
type Kind int

const (
	KindItem Kind = iota
	KindDLC
	KindAttach
)

func (k Kind) String() string {
	switch k {
	case KindItem:
		return "item"
	case KindDLC:
		return "dlc"
	case KindAttach:
		return "attach"
	default:
		return "unknown"
	}
}

// Layout describes the payload of one entry type under one variant.
type Layout struct {
	EntryType string
	Kind      Kind
	// Fields is nil when the payload is only partially known.
	Fields      []Width
	IDOffset    int
	NameField   int // -1 when the entry has no name
	GrantsField int // -1 when the entry has no grant array
}

// Measurable reports whether the layout covers the whole payload.
func (l Layout) Measurable() bool {
	return len(l.Fields) > 0
}

// Measure walks the layout over b, which starts at the first payload byte.
// It returns the start offset of every field and the true payload length.
func (l Layout) Measure(b []byte) ([]int, int, error) {
	if !l.Measurable() {
		return nil, 0, fmt.Errorf("%s: %w", l.EntryType, ErrNotMeasurable)
	}
	starts := make([]int, len(l.Fields))
	off := 0
	for i, w := range l.Fields {
		starts[i] = off
		if w == CString {
			_, next, ok := buf.CString(b, off)
			if !ok {
				return nil, 0, fmt.Errorf("%s field %d at +%d: unterminated string: %w", l.EntryType, i, off, ErrShortPayload)
			}
			off = next
			continue
		}
		if !buf.Has(b, off, int(w)) {
			return nil, 0, fmt.Errorf("%s field %d at +%d: need %d bytes: %w", l.EntryType, i, off, w, ErrShortPayload)
		}
		off += int(w)
	}
	return starts, off, nil
}

// ID reads the entry's numeric ID from its payload.
func (l Layout) ID(payload []byte) (uint16, bool) {
	b, ok := buf.Slice(payload, l.IDOffset, 2)
	if !ok {
		return 0, false
	}
	return buf.U16LE(b), true
}

// Name returns the display-name bytes, or false if the layout has none or the
// payload does not fit the layout.
func (l Layout) Name(payload []byte) ([]byte, bool) {
	if l.NameField < 0 {
		return nil, false
	}
	starts, _, err := l.Measure(payload)
	if err != nil {
		return nil, false
	}
	s, _, ok := buf.CString(payload, starts[l.NameField])
	return s, ok
}

// GrantsOffset returns the payload offset of the first grant pair.
func (l Layout) GrantsOffset(payload []byte) (int, bool) {
	if l.GrantsField < 0 {
		return 0, false
	}
	starts, _, err := l.Measure(payload)
	if err != nil {
		return 0, false
	}
	off := starts[l.GrantsField]
	if _, ok := buf.Span(len(payload), off, GrantSlots, GrantSlotSize); !ok {
		return 0, false
	}
	return off, true
}

func itemLayout(entryType string, fields ...Width) Layout {
	return Layout{EntryType: entryType, Kind: KindItem, Fields: fields, NameField: 3, GrantsField: -1}
}

func dlcLayout(header Width) Layout {
	return Layout{
		EntryType:   EntryDLC,
		Kind:        KindDLC,
		Fields:      []Width{header, CString, CString, GrantSlots * GrantSlotSize},
		NameField:   1,
		GrantsField: 3,
	}
}

var attachLayout = Layout{
	EntryType:   EntryAttach,
	Kind:        KindAttach,
	IDOffset:    AttachItemIDOffset,
	NameField:   -1,
	GrantsField: -1,
}

const str = CString

var registry = map[Variant]map[string]Layout{
	ColdSteel3: {
		EntryItem:  itemLayout(EntryItem, 4, str, 127, str, str, 8),
		EntryItemQ: itemLayout(EntryItemQ, 4, str, 127, str, str, 20),
		EntryDLC:   dlcLayout(8),
	},
	ColdSteel4: {
		EntryItem:  itemLayout(EntryItem, 4, str, 150, str, str, 8),
		EntryItemQ: itemLayout(EntryItemQ, 4, str, 150, str, str, 20),
		EntryDLC:   dlcLayout(20),
	},
	Reverie: {
		EntryItem:  itemLayout(EntryItem, 4, str, 141, str, str),
		EntryItemE: itemLayout(EntryItemE, 4, str, 141, str, str, 10),
		EntryItemQ: itemLayout(EntryItemQ, 4, str, 141, str, str, 22),
		EntryDLC:   dlcLayout(20),
	},
	TokyoXanaduEX: {
		EntryItem:  itemLayout(EntryItem, 4, str, 62, str, str, 9),
		EntryItemQ: itemLayout(EntryItemQ, 4, str, 62, str, str, 9),
		EntryDLC:   dlcLayout(10),
	},
}

// Lookup returns the layout of entryType under v. AttachTableData resolves
// for every supported variant but is not measurable.
func Lookup(v Variant, entryType string) (Layout, error) {
	layouts, ok := registry[v]
	if !ok {
		return Layout{}, fmt.Errorf("%w: %d", ErrUnsupportedVariant, int(v))
	}
	if entryType == EntryAttach {
		return attachLayout, nil
	}
	l, ok := layouts[entryType]
	if !ok {
		return Layout{}, fmt.Errorf("%w: %q under %s", ErrUnknownEntryType, entryType, v)
	}
	return l, nil
}

// FieldWidths returns a copy of the ordered field widths of entryType under v.
func FieldWidths(v Variant, entryType string) ([]Width, error) {
	l, err := Lookup(v, entryType)
	if err != nil {
		return nil, err
	}
	if !l.Measurable() {
		return nil, fmt.Errorf("%s: %w", entryType, ErrNotMeasurable)
	}
	return append([]Width(nil), l.Fields...), nil
}

// EntryTypes lists the measurable entry types registered for v, sorted.
func EntryTypes(v Variant) []string {
	layouts := registry[v]
	out := make([]string, 0, len(layouts))
	for name := range layouts {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
