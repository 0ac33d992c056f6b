// Package testutil builds .tbl fixtures in memory and on disk for tests.
package testutil

import (
	"encoding/binary"

	"github.com/joshuapare/tblkit/internal/schema"
)

// Section is one declared section of a fixture table.
type Section struct {
	Name  string
	Count int32
}

// Item describes an item fixture.
type Item struct {
	ID   uint16
	Name string
}

// Grant is one (item id, quantity) pair of a dlc fixture.
type Grant struct {
	ID       uint16
	Quantity uint16
}

// Table assembles a table file: header, sections, then the raw entries. The
// header's total_entries is the number of entries passed.
func Table(sections []Section, entries ...[]byte) []byte {
	out := binary.LittleEndian.AppendUint16(nil, uint16(len(entries)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(sections)))
	for _, s := range sections {
		out = append(out, s.Name...)
		out = append(out, 0)
		out = binary.LittleEndian.AppendUint32(out, uint32(s.Count))
	}
	for _, e := range entries {
		out = append(out, e...)
	}
	return out
}

// Entry frames payload with its entry type and a correct block size.
func Entry(entryType string, payload []byte) []byte {
	return EntryWithSize(entryType, uint16(len(payload)), payload)
}

// EntryWithSize frames payload with an arbitrary stored block size.
func EntryWithSize(entryType string, size uint16, payload []byte) []byte {
	out := append([]byte(entryType), 0)
	out = binary.LittleEndian.AppendUint16(out, size)
	return append(out, payload...)
}

// ItemPayload builds a schema-correct payload for an item-kind entry.
func ItemPayload(v schema.Variant, entryType string, it Item) []byte {
	l, err := schema.Lookup(v, entryType)
	if err != nil {
		panic(err)
	}
	var out []byte
	for i, w := range l.Fields {
		switch {
		case i == 0:
			out = binary.LittleEndian.AppendUint16(out, it.ID)
			out = binary.LittleEndian.AppendUint16(out, 0xFFFF)
			out = append(out, make([]byte, int(w)-4)...)
		case w == schema.CString && i == l.NameField:
			out = append(append(out, it.Name...), 0)
		case w == schema.CString && i == 1:
			out = append(out, '0', 0)
		case w == schema.CString:
			out = append(append(out, "desc of "+it.Name...), 0)
		default:
			out = append(out, make([]byte, int(w))...)
		}
	}
	return out
}

// DLCPayload builds a schema-correct dlc payload. Unused grant slots are
// filled with the empty marker.
func DLCPayload(v schema.Variant, id uint16, name string, grants ...Grant) []byte {
	l, err := schema.Lookup(v, schema.EntryDLC)
	if err != nil {
		panic(err)
	}
	out := binary.LittleEndian.AppendUint16(nil, id)
	out = append(out, make([]byte, int(l.Fields[0])-2)...)
	out = append(append(out, name...), 0)
	out = append(append(out, "package "+name...), 0)
	for i := 0; i < schema.GrantSlots; i++ {
		g := Grant{ID: schema.EmptyGrantID}
		if i < len(grants) {
			g = grants[i]
		}
		out = binary.LittleEndian.AppendUint16(out, g.ID)
		out = binary.LittleEndian.AppendUint16(out, g.Quantity)
	}
	return out
}

// AttachPayload builds an AttachTableData payload pointing at itemID.
func AttachPayload(chrID, itemID uint16, model string) []byte {
	out := binary.LittleEndian.AppendUint16(nil, chrID)
	out = binary.LittleEndian.AppendUint16(out, 194)
	out = binary.LittleEndian.AppendUint16(out, 0)
	out = binary.LittleEndian.AppendUint32(out, uint32(itemID))
	out = append(out, make([]byte, 12)...)
	out = append(append(out, model...), 0)
	return append(out, "head_point\x00"...)
}

// ItemTable builds an item table holding one "item" entry per fixture.
func ItemTable(v schema.Variant, items ...Item) []byte {
	entries := make([][]byte, 0, len(items))
	for _, it := range items {
		entries = append(entries, Entry(schema.EntryItem, ItemPayload(v, schema.EntryItem, it)))
	}
	return Table([]Section{{Name: schema.EntryItem, Count: int32(len(items))}}, entries...)
}

// DLCTable builds a dlc table with a single package entry.
func DLCTable(v schema.Variant, id uint16, name string, grants ...Grant) []byte {
	return Table([]Section{{Name: schema.EntryDLC, Count: 1}},
		Entry(schema.EntryDLC, DLCPayload(v, id, name, grants...)))
}

// AttachTable builds an attach table with one AttachTableData entry per item id.
func AttachTable(itemIDs ...uint16) []byte {
	entries := make([][]byte, 0, len(itemIDs))
	for i, id := range itemIDs {
		entries = append(entries, Entry(schema.EntryAttach, AttachPayload(uint16(i), id, "C_CHR000_C99")))
	}
	return Table([]Section{{Name: schema.EntryAttach, Count: int32(len(itemIDs))}}, entries...)
}
