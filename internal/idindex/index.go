// Package idindex maps numeric IDs to every place they occur in a set of
// table files.
//
// Three kinds of occurrence are tracked:
//
//   - records that own an ID (item, item_q, item_e, dlc entries)
//   - AttachTableData entries that point at an item
//   - dlc grant slots, the (item id, quantity) pairs a package hands out
//
// The index is a pure function of the bytes read: scanning the same files
// again yields the same index.
package idindex

import (
	"fmt"
	"slices"

	"github.com/joshuapare/tblkit/internal/buf"
	"github.com/joshuapare/tblkit/internal/format"
	"github.com/joshuapare/tblkit/internal/schema"
)

// Ref locates one ID field.
type Ref struct {
	Table       string
	EntryType   string
	Kind        schema.Kind
	Offset      int64 // absolute offset of the 2-byte ID field
	EntryOffset int   // offset of the entry's type string
	Name        []byte
}

// Owns reports whether the ref is a record's own ID rather than a reference
// to one.
func (r Ref) Owns() bool {
	return r.Kind == schema.KindItem || r.Kind == schema.KindDLC
}

// GrantRef locates one occupied dlc grant slot.
type GrantRef struct {
	Table    string
	DLC      uint16 // ID of the dlc record holding the slot
	Slot     int
	Offset   int64 // absolute offset of the slot's item ID
	Quantity uint16
}

// Index is an ID index over one or more tables of one variant.
type Index struct {
	variant schema.Variant
	refs    map[uint16][]Ref
	grants  map[uint16][]GrantRef
	tables  []string
}

// New returns an empty index for variant v.
func New(v schema.Variant) *Index {
	return &Index{
		variant: v,
		refs:    make(map[uint16][]Ref),
		grants:  make(map[uint16][]GrantRef),
	}
}

// Build indexes paths in order.
func Build(v schema.Variant, paths ...string) (*Index, error) {
	ix := New(v)
	for _, p := range paths {
		if err := ix.Add(p); err != nil {
			return nil, err
		}
	}
	return ix, nil
}

// Add indexes the table at path.
func (ix *Index) Add(path string) error {
	return format.View(path, func(b []byte) error {
		return ix.AddBytes(path, b)
	})
}

// AddBytes indexes the table bytes b under the name path. Entries are
// located through their stored block sizes; entry types the variant has no
// layout for are skipped.
func (ix *Index) AddBytes(path string, b []byte) error {
	t, err := format.Parse(b)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", path, err)
	}
	ix.tables = append(ix.tables, path)
	for _, e := range t.Entries {
		l, err := schema.Lookup(ix.variant, e.Type)
		if err != nil {
			continue
		}
		payload := e.Payload(b)
		id, ok := l.ID(payload)
		if !ok {
			continue
		}
		r := Ref{
			Table:       path,
			EntryType:   e.Type,
			Kind:        l.Kind,
			Offset:      int64(e.PayloadOffset() + l.IDOffset),
			EntryOffset: e.Offset,
		}
		if name, ok := l.Name(payload); ok {
			r.Name = append([]byte(nil), name...)
		}
		ix.refs[id] = append(ix.refs[id], r)

		if l.Kind == schema.KindDLC {
			ix.addGrants(path, id, e.PayloadOffset(), l, payload)
		}
	}
	return nil
}

func (ix *Index) addGrants(path string, dlc uint16, base int, l schema.Layout, payload []byte) {
	off, ok := l.GrantsOffset(payload)
	if !ok {
		return
	}
	for slot := 0; slot < schema.GrantSlots; slot++ {
		p := off + slot*schema.GrantSlotSize
		item := buf.U16LE(payload[p:])
		if item == schema.EmptyGrantID {
			continue
		}
		ix.grants[item] = append(ix.grants[item], GrantRef{
			Table:    path,
			DLC:      dlc,
			Slot:     slot,
			Offset:   int64(base + p),
			Quantity: buf.U16LE(payload[p+2:]),
		})
	}
}

// Variant returns the variant the index decodes with.
func (ix *Index) Variant() schema.Variant { return ix.variant }

// Tables returns the indexed paths in the order they were added.
func (ix *Index) Tables() []string { return ix.tables }

// IDs returns, ascending, every ID owned by at least one record.
func (ix *Index) IDs() []uint16 {
	return ix.Owned().Sorted()
}

// Owned returns the set of IDs owned by at least one record.
func (ix *Index) Owned() Set {
	s := make(Set, len(ix.refs))
	for id, refs := range ix.refs {
		if slices.ContainsFunc(refs, Ref.Owns) {
			s.Add(id)
		}
	}
	return s
}

// Has reports whether some record owns id.
func (ix *Index) Has(id uint16) bool {
	return slices.ContainsFunc(ix.refs[id], Ref.Owns)
}

// Refs returns every occurrence of id, records and attach references alike,
// in scan order.
func (ix *Index) Refs(id uint16) []Ref {
	return ix.refs[id]
}

// Owner returns the last-scanned record owning id.
func (ix *Index) Owner(id uint16) (Ref, bool) {
	refs := ix.refs[id]
	for i := len(refs) - 1; i >= 0; i-- {
		if refs[i].Owns() {
			return refs[i], true
		}
	}
	return Ref{}, false
}

// Grants returns every occupied grant slot naming item id.
func (ix *Index) Grants(id uint16) []GrantRef {
	return ix.grants[id]
}

// Len returns the number of distinct owned IDs.
func (ix *Index) Len() int {
	return len(ix.Owned())
}
