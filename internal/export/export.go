// Package export decodes table entries into plain records for editing and
// review, and writes them as JSON or YAML.
package export

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/joshuapare/tblkit/internal/buf"
	"github.com/joshuapare/tblkit/internal/format"
	"github.com/joshuapare/tblkit/internal/schema"
)

// Field is one decoded payload field. Strings carry Text; fixed-width
// fields carry Hex.
type Field struct {
	Offset int    `json:"offset" yaml:"offset"`
	Width  int    `json:"width" yaml:"width"`
	Text   string `json:"text,omitempty" yaml:"text,omitempty"`
	Hex    string `json:"hex,omitempty" yaml:"hex,omitempty"`
}

// Grant is an occupied dlc grant slot.
type Grant struct {
	ID       uint16 `json:"id" yaml:"id"`
	Quantity uint16 `json:"quantity" yaml:"quantity"`
}

// Record is one decoded entry.
type Record struct {
	Type   string  `json:"type" yaml:"type"`
	Offset int     `json:"offset" yaml:"offset"`
	ID     *uint16 `json:"id,omitempty" yaml:"id,omitempty"`
	Name   string  `json:"name,omitempty" yaml:"name,omitempty"`
	Fields []Field `json:"fields,omitempty" yaml:"fields,omitempty"`
	Grants []Grant `json:"grants,omitempty" yaml:"grants,omitempty"`
	Raw    string  `json:"raw,omitempty" yaml:"raw,omitempty"`
}

// Table is the export of one file.
type Table struct {
	Path    string         `json:"path" yaml:"path"`
	Variant string         `json:"variant" yaml:"variant"`
	Counts  map[string]int `json:"counts" yaml:"counts"`
	Records []Record       `json:"records" yaml:"records"`
}

// Decode turns every entry of b into a Record. Entries the variant can
// measure are split into fields; the rest are exported raw.
func Decode(path string, b []byte, v schema.Variant) (*Table, error) {
	t, err := format.Parse(b)
	if err != nil {
		return nil, err
	}
	out := &Table{Path: path, Variant: v.String(), Counts: t.Counts(), Records: make([]Record, 0, len(t.Entries))}
	for _, e := range t.Entries {
		out.Records = append(out.Records, decodeEntry(b, e, v))
	}
	return out, nil
}

func decodeEntry(b []byte, e format.Entry, v schema.Variant) Record {
	payload := e.Payload(b)
	rec := Record{Type: e.Type, Offset: e.Offset}

	l, err := schema.Lookup(v, e.Type)
	if err != nil {
		rec.Raw = hex.EncodeToString(payload)
		return rec
	}
	if id, ok := l.ID(payload); ok {
		rec.ID = &id
	}
	if name, ok := l.Name(payload); ok {
		rec.Name = format.Text(name)
	}
	starts, n, err := l.Measure(payload)
	if err != nil || n != len(payload) {
		rec.Raw = hex.EncodeToString(payload)
		return rec
	}
	for i, w := range l.Fields {
		end := n
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		f := Field{Offset: starts[i], Width: end - starts[i]}
		if w == schema.CString {
			s, _, _ := buf.CString(payload, starts[i])
			f.Text = format.Text(s)
		} else {
			f.Hex = hex.EncodeToString(payload[starts[i]:end])
		}
		rec.Fields = append(rec.Fields, f)
	}
	if off, ok := l.GrantsOffset(payload); ok {
		for slot := 0; slot < schema.GrantSlots; slot++ {
			p := off + slot*schema.GrantSlotSize
			id := buf.U16LE(payload[p:])
			if id == schema.EmptyGrantID {
				continue
			}
			rec.Grants = append(rec.Grants, Grant{ID: id, Quantity: buf.U16LE(payload[p+2:])})
		}
	}
	return rec
}

// File decodes the table at path.
func File(path string, v schema.Variant) (*Table, error) {
	var t *Table
	err := format.View(path, func(b []byte) error {
		var err error
		t, err = Decode(path, b, v)
		return err
	})
	return t, err
}

// Write encodes tables to w. kind is "json" or "yaml".
func Write(w io.Writer, kind string, tables ...*Table) error {
	var v any = tables
	if len(tables) == 1 {
		v = tables[0]
	}
	switch kind {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown export format: %s (use: json, yaml)", kind)
	}
}
