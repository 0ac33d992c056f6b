package gamedir

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/joshuapare/tblkit/internal/resolve"
	"github.com/joshuapare/tblkit/internal/schema"
)

// Table file names.
const (
	ItemTable   = "t_item.tbl"
	ItemTableEN = "t_item_en.tbl"
	AttachTable = "t_attach.tbl"
	DLCTable    = "t_dlc.tbl"

	// PreferredDat is picked when several dat language folders exist.
	PreferredDat = "dat_en"
)

// Package is one numbered folder under dlc/<text>/.
type Package struct {
	Folder    int
	Dir       string
	ItemTable string // <dir>/<dat>/t_item.tbl, empty if absent
	DLCTable  string // <dir>/<dat>/t_dlc.tbl, empty if absent
	Family    resolve.Family
}

// Game is a discovered install.
type Game struct {
	Root       string
	Variant    schema.Variant
	TextFolder string
	Dat        string
	Master     string
	Packages   []Package // ascending folder number
}

// Picker chooses one of several candidate folders. what is "text" or "dat".
type Picker func(what string, options []string) (string, error)

// Options narrows discovery. Empty fields are chosen automatically or, when
// Pick is set and there are several candidates, by Pick.
type Options struct {
	TextFolder string
	Dat        string
	Pick       Picker
}

// TextFolders lists the text* folders under the variant prefix, sorted.
func TextFolders(root string, v schema.Variant) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(root, Prefix(v)))
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() && strings.HasPrefix(e.Name(), "text") {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// Dats lists the dat language folders of the first package under
// dlc/<text>/, sorted.
func Dats(root string, v schema.Variant, text string) ([]string, error) {
	pkgs, err := packageDirs(filepath.Join(root, Prefix(v), "dlc", text))
	if err != nil || len(pkgs) == 0 {
		return nil, err
	}
	entries, err := os.ReadDir(pkgs[0].dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			out = append(out, e.Name())
		}
	}
	return out, nil
}

// Discover locates the master item table and every package of the install
// at root.
func Discover(root string, v schema.Variant, opts Options) (*Game, error) {
	g := &Game{Root: root, Variant: v, TextFolder: opts.TextFolder, Dat: opts.Dat}
	base := filepath.Join(root, Prefix(v))

	if g.TextFolder == "" {
		texts, err := TextFolders(root, v)
		if err != nil {
			return nil, err
		}
		if g.TextFolder, err = choose("text", texts, "", opts.Pick); err != nil {
			return nil, err
		}
	}

	master, err := findMaster(filepath.Join(base, g.TextFolder))
	if err != nil {
		return nil, err
	}
	g.Master = master

	if g.Dat == "" {
		dats, err := Dats(root, v, g.TextFolder)
		if err != nil {
			return nil, err
		}
		if len(dats) > 0 {
			if g.Dat, err = choose("dat", dats, PreferredDat, opts.Pick); err != nil {
				return nil, err
			}
		}
	}

	dirs, err := packageDirs(filepath.Join(base, "dlc", g.TextFolder))
	if err != nil {
		return nil, err
	}
	for _, d := range dirs {
		p := Package{Folder: d.folder, Dir: d.dir}
		if g.Dat != "" {
			p.ItemTable = existing(filepath.Join(d.dir, g.Dat, ItemTable))
			p.DLCTable = existing(filepath.Join(d.dir, g.Dat, DLCTable))
		}
		if p.Family, err = family(d.folder, d.dir); err != nil {
			return nil, err
		}
		g.Packages = append(g.Packages, p)
	}
	return g, nil
}

// choose picks from options: the only one, else pick, else preferred, else
// the first.
func choose(what string, options []string, preferred string, pick Picker) (string, error) {
	switch {
	case len(options) == 0:
		return "", fmt.Errorf("gamedir: no %s folder found", what)
	case len(options) == 1:
		return options[0], nil
	case pick != nil:
		return pick(what, options)
	case slices.Contains(options, preferred):
		return preferred, nil
	default:
		return options[0], nil
	}
}

// findMaster returns the first t_item_en.tbl under dir, else the first
// t_item.tbl, in lexical walk order.
func findMaster(dir string) (string, error) {
	var en, plain string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch d.Name() {
		case ItemTableEN:
			if en == "" {
				en = path
			}
		case ItemTable:
			if plain == "" {
				plain = path
			}
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%w under %s: %w", ErrNoMasterTable, dir, err)
	}
	switch {
	case en != "":
		return en, nil
	case plain != "":
		return plain, nil
	}
	return "", fmt.Errorf("%w under %s", ErrNoMasterTable, dir)
}

type pkgDir struct {
	folder int
	dir    string
}

// packageDirs lists the numerically named folders of dir, ascending.
func packageDirs(dir string) ([]pkgDir, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var out []pkgDir
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		n, err := strconv.Atoi(e.Name())
		if err != nil || n < 0 {
			continue
		}
		out = append(out, pkgDir{folder: n, dir: filepath.Join(dir, e.Name())})
	}
	slices.SortFunc(out, func(a, b pkgDir) int { return a.folder - b.folder })
	return out, nil
}

// family collects every item, attach and dlc table below a package folder.
func family(folder int, dir string) (resolve.Family, error) {
	f := resolve.Family{Folder: folder}
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		switch d.Name() {
		case ItemTable:
			f.ItemTables = append(f.ItemTables, path)
		case AttachTable:
			f.AttachTables = append(f.AttachTables, path)
		case DLCTable:
			f.DLCTables = append(f.DLCTables, path)
		}
		return nil
	})
	return f, err
}

func existing(path string) string {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return path
	}
	return ""
}
