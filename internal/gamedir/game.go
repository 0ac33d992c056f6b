package gamedir

import (
	"github.com/joshuapare/tblkit/internal/resolve"
)

// ItemTables returns the item tables in resolution order: the master, then
// each package's item table by folder number.
func (g *Game) ItemTables() []resolve.Table {
	var out []resolve.Table
	if g.Master != "" {
		out = append(out, resolve.Table{Path: g.Master, Folder: resolve.Master})
	}
	for _, p := range g.Packages {
		if p.ItemTable != "" {
			out = append(out, resolve.Table{Path: p.ItemTable, Folder: p.Folder})
		}
	}
	return out
}

// DLCTables returns the package tables in resolution order.
func (g *Game) DLCTables() []resolve.Table {
	var out []resolve.Table
	for _, p := range g.Packages {
		if p.DLCTable != "" {
			out = append(out, resolve.Table{Path: p.DLCTable, Folder: p.Folder})
		}
	}
	return out
}

// Families maps each package folder to its tables.
func (g *Game) Families() map[int]resolve.Family {
	out := make(map[int]resolve.Family, len(g.Packages))
	for _, p := range g.Packages {
		out[p.Folder] = p.Family
	}
	return out
}

// Folders returns the package folder numbers, ascending.
func (g *Game) Folders() []int {
	out := make([]int, 0, len(g.Packages))
	for _, p := range g.Packages {
		out = append(out, p.Folder)
	}
	return out
}

// Tables returns every discovered table once: the master, then each
// package's family.
func (g *Game) Tables() []string {
	seen := map[string]bool{}
	var out []string
	add := func(paths ...string) {
		for _, p := range paths {
			if p != "" && !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	add(g.Master)
	for _, p := range g.Packages {
		add(p.ItemTable, p.DLCTable)
		add(p.Family.ItemTables...)
		add(p.Family.AttachTables...)
		add(p.Family.DLCTables...)
	}
	return out
}

// Without returns a copy of g with the given tables removed from the
// resolution order. Families keep them out too.
func (g *Game) Without(drop map[string]bool) *Game {
	c := *g
	if drop[c.Master] {
		c.Master = ""
	}
	c.Packages = make([]Package, len(g.Packages))
	for i, p := range g.Packages {
		if drop[p.ItemTable] {
			p.ItemTable = ""
		}
		if drop[p.DLCTable] {
			p.DLCTable = ""
		}
		p.Family.ItemTables = keep(p.Family.ItemTables, drop)
		p.Family.AttachTables = keep(p.Family.AttachTables, drop)
		p.Family.DLCTables = keep(p.Family.DLCTables, drop)
		c.Packages[i] = p
	}
	return &c
}

func keep(paths []string, drop map[string]bool) []string {
	var out []string
	for _, p := range paths {
		if !drop[p] {
			out = append(out, p)
		}
	}
	return out
}
