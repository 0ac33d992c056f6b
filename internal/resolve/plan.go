package resolve

import (
	"slices"

	"github.com/joshuapare/tblkit/internal/patch"
	"github.com/joshuapare/tblkit/internal/schema"
)

// familyOf returns the family that owns t. A table with no registered
// family stands alone; a registered family always includes t itself.
func (r *Resolver) familyOf(t Table, space Space) Family {
	f := Family{Folder: t.Folder}
	if reg, ok := r.cfg.Families[t.Folder]; ok && !t.IsMaster() {
		f = reg
	}
	if space == SpaceDLC {
		f.DLCTables = withPath(f.DLCTables, t.Path)
	} else {
		f.ItemTables = withPath(f.ItemTables, t.Path)
	}
	return f
}

func withPath(paths []string, p string) []string {
	if slices.Contains(paths, p) {
		return paths
	}
	return append(slices.Clip(paths), p)
}

// planItemRename lists every write that renumbers item from inside fam:
// item records, attach references and dlc grant slots. Offsets come from a
// fresh scan; nothing is written here.
func (r *Resolver) planItemRename(fam Family, from, to uint16) ([]patch.Patch, error) {
	var out []patch.Patch
	for _, p := range fam.ItemTables {
		ix, err := r.scan(p)
		if err != nil {
			return nil, err
		}
		for _, ref := range ix.Refs(from) {
			if ref.Kind == schema.KindItem {
				out = append(out, patch.Patch{Path: p, Offset: ref.Offset, Old: from, New: to, Kind: patch.KindItemID})
			}
		}
	}
	for _, p := range fam.AttachTables {
		ix, err := r.scan(p)
		if err != nil {
			return nil, err
		}
		for _, ref := range ix.Refs(from) {
			if ref.Kind == schema.KindAttach {
				out = append(out, patch.Patch{Path: p, Offset: ref.Offset, Old: from, New: to, Kind: patch.KindAttachRef})
			}
		}
	}
	for _, p := range fam.DLCTables {
		ix, err := r.scan(p)
		if err != nil {
			return nil, err
		}
		for _, g := range ix.Grants(from) {
			out = append(out, patch.Patch{Path: p, Offset: g.Offset, Old: from, New: to, Kind: patch.KindGrantRef})
		}
	}
	return out, nil
}

// planDLCRename lists the writes that renumber package ID from in every dlc
// table of fam.
func (r *Resolver) planDLCRename(fam Family, from, to uint16) ([]patch.Patch, error) {
	var out []patch.Patch
	for _, p := range fam.DLCTables {
		ix, err := r.scan(p)
		if err != nil {
			return nil, err
		}
		for _, ref := range ix.Refs(from) {
			if ref.Kind == schema.KindDLC {
				out = append(out, patch.Patch{Path: p, Offset: ref.Offset, Old: from, New: to, Kind: patch.KindDLCID})
			}
		}
	}
	return out, nil
}
