// Package resolve finds colliding item and package IDs across an ordered set
// of tables and renumbers one side of each collision.
//
// Tables are processed in order. IDs owned by tables already processed are
// claimed; an ID in the next table that is already claimed is a collision.
// Item collisions between records with the same name are intentional
// duplicates and are not reported. Package ID collisions are always
// reported.
//
// The resolver never picks a side itself. A Decider answers every reported
// conflict, and a rename patches every record in the renamed side's package
// family that refers to the old ID.
package resolve

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joshuapare/tblkit/internal/format"
	"github.com/joshuapare/tblkit/internal/idindex"
	"github.com/joshuapare/tblkit/internal/logger"
	"github.com/joshuapare/tblkit/internal/patch"
	"github.com/joshuapare/tblkit/internal/repair"
	"github.com/joshuapare/tblkit/internal/schema"
)

// Config describes one resolution run.
type Config struct {
	Variant schema.Variant

	// Items are the item tables in precedence order, master first.
	Items []Table
	// DLCs are the package tables in precedence order.
	DLCs []Table
	// Families maps package folder numbers to their tables.
	Families map[int]Family

	AllowLowNumbers bool
	Decider         Decider

	// DryRun plans and reports renames without writing.
	DryRun bool

	// Repairer, when set, validates and repairs every table before
	// resolution. Tables that end UNRECOVERABLE are left out.
	Repairer *repair.Repairer

	Logger *slog.Logger

	// Apply writes a planned rename. Default: patch.Apply.
	Apply func([]patch.Patch) (*patch.Log, error)
}

// Resolver runs the item and package passes.
type Resolver struct {
	cfg     Config
	log     *slog.Logger
	left    map[string]bool
	skipped []TableError
}

// New checks cfg and returns a Resolver.
func New(cfg Config) (*Resolver, error) {
	if !cfg.Variant.Supported() {
		return nil, fmt.Errorf("%w: %d", schema.ErrUnsupportedVariant, int(cfg.Variant))
	}
	if cfg.Decider == nil {
		return nil, errors.New("resolve: nil decider")
	}
	if cfg.Apply == nil {
		cfg.Apply = patch.Apply
	}
	return &Resolver{cfg: cfg, log: logger.Or(cfg.Logger), left: make(map[string]bool)}, nil
}

// claim is a prior owner of an ID.
type claim struct {
	table Table
	ref   idindex.Ref
}

// claims maps each ID to its prior owners, oldest first.
type claims map[uint16][]claim

// latest returns the most recent prior owner matching pred.
func (c claims) latest(id uint16, pred func(claim) bool) (int, claim, bool) {
	list := c[id]
	for i := len(list) - 1; i >= 0; i-- {
		if pred(list[i]) {
			return i, list[i], true
		}
	}
	return -1, claim{}, false
}

func (c claims) remove(id uint16, i int) {
	list := c[id]
	c[id] = append(list[:i:i], list[i+1:]...)
	if len(c[id]) == 0 {
		delete(c, id)
	}
}

func (c claims) add(id uint16, cl claim) {
	c[id] = append(c[id], cl)
}

// Run ensures every table, then resolves item IDs and package IDs in that
// order. A returned error means a pass was aborted; the report holds what
// happened up to that point.
func (r *Resolver) Run() (*Report, error) {
	rep := &Report{DryRun: r.cfg.DryRun}
	if r.cfg.Repairer != nil {
		rep.Tables = r.ensure()
	}

	items, dups, err := r.ResolveItems()
	rep.Items, rep.Duplicates = items, dups
	if err == nil {
		rep.DLCs, err = r.ResolveDLCs()
	}
	rep.Skipped = r.Skipped()
	return rep, err
}

// Skipped lists the tables the passes so far could not scan.
func (r *Resolver) Skipped() []TableError {
	return append([]TableError(nil), r.skipped...)
}

// scan indexes the table at path. On a dry run a table that does not parse
// as stored is indexed the way repair would leave it.
func (r *Resolver) scan(path string) (*idindex.Index, error) {
	ix, err := idindex.Build(r.cfg.Variant, path)
	if err == nil || !r.cfg.DryRun {
		return ix, err
	}
	data, rerr := os.ReadFile(path)
	if rerr != nil {
		return nil, err
	}
	fixed, _, cerr := format.Correct(data, r.cfg.Variant)
	if cerr != nil {
		return nil, err
	}
	ix = idindex.New(r.cfg.Variant)
	if err := ix.AddBytes(path, fixed); err != nil {
		return nil, err
	}
	r.log.Debug("indexed corrected bytes", "path", path)
	return ix, nil
}

// index scans t for a pass. A table that cannot be scanned is left out of
// the pass and recorded once.
func (r *Resolver) index(t Table) (*idindex.Index, bool) {
	ix, err := r.scan(t.Path)
	if err == nil {
		return ix, true
	}
	if !r.left[t.Path] {
		r.left[t.Path] = true
		r.skipped = append(r.skipped, TableError{Path: t.Path, Err: err})
		r.log.Error("table left out of resolution", "path", t.Path, "err", err)
	}
	return nil, false
}

// ensure validates and repairs every table once and drops the ones that
// cannot be used.
func (r *Resolver) ensure() []repair.Outcome {
	var paths []string
	seen := make(map[string]bool)
	addPath := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	for _, t := range r.cfg.Items {
		addPath(t.Path)
	}
	for _, t := range r.cfg.DLCs {
		addPath(t.Path)
	}
	for _, f := range r.cfg.Families {
		for _, group := range [][]string{f.ItemTables, f.AttachTables, f.DLCTables} {
			for _, p := range group {
				addPath(p)
			}
		}
	}

	outcomes := r.cfg.Repairer.EnsureAll(paths)
	bad := make(map[string]bool)
	for _, o := range repair.Failed(outcomes) {
		bad[o.Path] = true
		r.log.Error("table left out of resolution", "path", o.Path, "err", o.Err)
	}
	keep := func(ts []Table) []Table {
		out := ts[:0:0]
		for _, t := range ts {
			if !bad[t.Path] {
				out = append(out, t)
			}
		}
		return out
	}
	r.cfg.Items = keep(r.cfg.Items)
	r.cfg.DLCs = keep(r.cfg.DLCs)
	return outcomes
}

// ResolveItems runs the item pass. It returns the resolutions and the
// number of tolerated same-name duplicates.
func (r *Resolver) ResolveItems() ([]Resolution, int, error) {
	all, pkg := idindex.NewSet(), idindex.NewSet()
	for _, t := range r.cfg.Items {
		ix, ok := r.index(t)
		if !ok {
			continue
		}
		all.Union(ix.Owned())
		if !t.IsMaster() {
			pkg.Union(ix.Owned())
		}
	}
	policy := ItemPolicy(r.cfg.AllowLowNumbers, all, pkg)
	inUse := all

	var out []Resolution
	dups := 0
	claimed := make(claims)
	for _, t := range r.cfg.Items {
		// Earlier renames may have patched this table; scan it now.
		ix, ok := r.index(t)
		if !ok {
			continue
		}
		moved := make(map[uint16]bool)
		for _, id := range ix.IDs() {
			if _, ok := claimed[id]; !ok {
				continue
			}
			cur, _ := ix.Owner(id)
			differs := func(c claim) bool { return !bytes.Equal(c.ref.Name, cur.Name) }
			if _, _, ok := claimed.latest(id, differs); !ok {
				dups++
				continue
			}
			for {
				i, prior, ok := claimed.latest(id, differs)
				if !ok {
					break
				}
				c := Conflict{
					Space:  SpaceItem,
					ID:     id,
					A:      Side{Table: prior.table, Ref: prior.ref, Name: format.Text(prior.ref.Name)},
					B:      Side{Table: t, Ref: cur, Name: format.Text(cur.Name)},
					AllowA: !prior.table.IsMaster(),
					AllowB: !t.IsMaster(),
				}
				res, err := r.settle(c, policy, inUse, r.planItemRename)
				out = append(out, res)
				if err != nil {
					return out, dups, err
				}
				if !res.Renamed() {
					break
				}
				if res.Choice == RenameA {
					claimed.remove(id, i)
					claimed.add(res.Replacement, prior)
					continue
				}
				moved[id] = true
				claimed.add(res.Replacement, claim{table: t, ref: cur})
				break
			}
		}
		for _, id := range ix.IDs() {
			if moved[id] {
				continue
			}
			ref, _ := ix.Owner(id)
			claimed.add(id, claim{table: t, ref: ref})
		}
	}
	return out, dups, nil
}

// ResolveDLCs runs the package pass. Any shared package ID is a conflict.
func (r *Resolver) ResolveDLCs() ([]Resolution, error) {
	inUse := idindex.NewSet()
	folders := make([]int, 0, len(r.cfg.DLCs))
	for _, t := range r.cfg.DLCs {
		ix, ok := r.index(t)
		if !ok {
			continue
		}
		inUse.Union(ix.Owned())
		if !t.IsMaster() {
			folders = append(folders, t.Folder)
		}
	}
	for f := range r.cfg.Families {
		folders = append(folders, f)
	}
	policy := DLCPolicy(r.cfg.AllowLowNumbers, folders)

	var out []Resolution
	claimed := make(claims)
	anyClaim := func(claim) bool { return true }
	for _, t := range r.cfg.DLCs {
		ix, ok := r.index(t)
		if !ok {
			continue
		}
		moved := make(map[uint16]bool)
		for _, id := range ix.IDs() {
			cur, _ := ix.Owner(id)
			for {
				i, prior, ok := claimed.latest(id, anyClaim)
				if !ok {
					break
				}
				c := Conflict{
					Space:  SpaceDLC,
					ID:     id,
					A:      Side{Table: prior.table, Ref: prior.ref, Name: format.Text(prior.ref.Name)},
					B:      Side{Table: t, Ref: cur, Name: format.Text(cur.Name)},
					AllowA: !prior.table.IsMaster() && prior.table.Folder != int(id),
					AllowB: !t.IsMaster() && t.Folder != int(id),
				}
				res, err := r.settle(c, policy, inUse, r.planDLCRename)
				out = append(out, res)
				if err != nil {
					return out, err
				}
				if !res.Renamed() {
					break
				}
				if res.Choice == RenameA {
					claimed.remove(id, i)
					claimed.add(res.Replacement, prior)
					continue
				}
				moved[id] = true
				claimed.add(res.Replacement, claim{table: t, ref: cur})
				break
			}
		}
		for _, id := range ix.IDs() {
			if moved[id] {
				continue
			}
			ref, _ := ix.Owner(id)
			claimed.add(id, claim{table: t, ref: ref})
		}
	}
	return out, nil
}

type planner func(fam Family, from, to uint16) ([]patch.Patch, error)

// settle takes one conflict from replacement choice to written patches.
// Only decider failures and partial patches are returned as errors; every
// other failure is recorded on the Resolution.
func (r *Resolver) settle(c Conflict, p Policy, inUse idindex.Set, plan planner) (Resolution, error) {
	log := r.log.With("space", c.Space.String(), "id", c.ID)
	res := Resolution{Conflict: c}

	next, err := p.Next(inUse)
	if err != nil {
		res.Err = err
		log.Warn("conflict left unresolved", "err", err)
		return res, nil
	}
	c.Replacement = next
	res.Conflict = c

	d, err := r.cfg.Decider.Decide(c)
	if err != nil {
		return res, fmt.Errorf("deciding %s id %d: %w", c.Space, c.ID, err)
	}
	res.Choice = d.Choice
	if d.Choice == Skip {
		log.Info("conflict skipped", "a", c.A.Table.Path, "b", c.B.Table.Path)
		return res, nil
	}
	if !c.Allowed(d.Choice) {
		res.Err = fmt.Errorf("%w: %s on %s id %d", ErrChoiceNotAllowed, d.Choice, c.Space, c.ID)
		return res, nil
	}

	to := next
	if d.Override {
		if !p.Free(d.Replacement, inUse) {
			res.Err = fmt.Errorf("%w: %d", ErrReplacementInUse, d.Replacement)
			return res, nil
		}
		to = d.Replacement
	}

	side := c.A
	if d.Choice == RenameB {
		side = c.B
	}
	patches, err := plan(r.familyOf(side.Table, c.Space), c.ID, to)
	if err != nil {
		res.Err = err
		return res, nil
	}
	res.Patches = patches

	if !r.cfg.DryRun {
		if _, err := r.cfg.Apply(patches); err != nil {
			res.Err = err
			var pe *patch.PartialPatchError
			if errors.As(err, &pe) {
				log.Error("rename left family inconsistent", "err", err)
				return res, err
			}
			log.Warn("rename not applied", "err", err)
			return res, nil
		}
	}
	res.Replacement = to
	inUse.Add(to)
	log.Info("renamed", "table", side.Table.Path, "to", to, "patches", len(patches), "dry_run", r.cfg.DryRun)
	return res, nil
}
