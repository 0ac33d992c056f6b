// Package gamedir finds a game install's variant and the tables that take
// part in ID resolution.
package gamedir

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joshuapare/tblkit/internal/schema"
)

var (
	// ErrNotGameRoot indicates root has neither bin/ nor TokyoXanadu.exe.
	ErrNotGameRoot = errors.New("gamedir: not a game root")
	// ErrUnknownGame indicates bin/ holds no recognized executable.
	ErrUnknownGame = errors.New("gamedir: game not recognized")
	// ErrNoMasterTable indicates no master item table was found.
	ErrNoMasterTable = errors.New("gamedir: no master item table")
)

// txeExe sits at the root of a TXe install, which has no bin/.
const txeExe = "TokyoXanadu.exe"

// Detect identifies the variant installed at root from its executables:
//
//	bin/**/ed8_3*.exe              CS3
//	bin/**/ed8_4*.exe              CS4
//	bin/**/ed8_ps5*.exe, hnk.exe   Reverie
//	TokyoXanadu.exe at root        TXe
func Detect(root string) (schema.Variant, error) {
	bin := filepath.Join(root, "bin")
	if info, err := os.Stat(bin); err != nil || !info.IsDir() {
		if _, err := os.Stat(filepath.Join(root, txeExe)); err == nil {
			return schema.TokyoXanaduEX, nil
		}
		return schema.VariantUnknown, ErrNotGameRoot
	}

	var exes []string
	err := filepath.WalkDir(bin, func(_ string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(d.Name()), ".exe") {
			exes = append(exes, d.Name())
		}
		return nil
	})
	if err != nil {
		return schema.VariantUnknown, err
	}

	has := func(match func(string) bool) bool {
		for _, e := range exes {
			if match(e) {
				return true
			}
		}
		return false
	}
	prefix := func(p string) func(string) bool {
		return func(s string) bool { return strings.HasPrefix(s, p) }
	}
	switch {
	case has(prefix("ed8_3")):
		return schema.ColdSteel3, nil
	case has(prefix("ed8_4")):
		return schema.ColdSteel4, nil
	case has(prefix("ed8_ps5")) || has(func(s string) bool { return s == "hnk.exe" }):
		return schema.Reverie, nil
	}
	return schema.VariantUnknown, ErrUnknownGame
}

// Prefix returns the directory, relative to the root, that holds text/ and
// dlc/ for v.
func Prefix(v schema.Variant) string {
	switch v {
	case schema.ColdSteel3, schema.ColdSteel4, schema.Reverie:
		return "data"
	default:
		return ""
	}
}
