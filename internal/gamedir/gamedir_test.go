package gamedir

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tblkit/internal/resolve"
	"github.com/joshuapare/tblkit/internal/schema"
	"github.com/joshuapare/tblkit/internal/testutil"
)

func touch(t *testing.T, root string, rels ...string) {
	t.Helper()
	for _, r := range rels {
		testutil.WriteFile(t, root, r, []byte{0})
	}
}

func TestDetect(t *testing.T) {
	for _, tc := range []struct {
		name string
		exe  string
		want schema.Variant
	}{
		{name: "cs3", exe: "bin/x64/ed8_3_PC.exe", want: schema.ColdSteel3},
		{name: "cs4", exe: "bin/Win64/ed8_4_PC_US.exe", want: schema.ColdSteel4},
		{name: "reverie ps5 build", exe: "bin/x64/ed8_ps5_D3D11.exe", want: schema.Reverie},
		{name: "reverie hnk", exe: "bin/x64/hnk.exe", want: schema.Reverie},
		{name: "txe", exe: "TokyoXanadu.exe", want: schema.TokyoXanaduEX},
	} {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			touch(t, root, tc.exe)
			got, err := Detect(root)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDetect_Errors(t *testing.T) {
	_, err := Detect(t.TempDir())
	require.ErrorIs(t, err, ErrNotGameRoot)

	root := t.TempDir()
	touch(t, root, "bin/x64/launcher.exe")
	_, err = Detect(root)
	require.ErrorIs(t, err, ErrUnknownGame)
}

func TestPrefix(t *testing.T) {
	assert.Equal(t, "data", Prefix(schema.ColdSteel4))
	assert.Equal(t, "", Prefix(schema.TokyoXanaduEX))
}

func TestDiscover(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"data/text/dat/t_item.tbl",
		"data/text/dat_en/t_item_en.tbl",
		"data/dlc/text/0042/dat_en/t_item.tbl",
		"data/dlc/text/0042/dat_en/t_dlc.tbl",
		"data/dlc/text/0042/dat_en/t_attach.tbl",
		"data/dlc/text/0042/dat_fr/t_item.tbl",
		"data/dlc/text/0007/dat/t_item.tbl",
		"data/dlc/text/0007/dat_en/t_dlc.tbl",
		"data/dlc/text/0007/dat_en/t_item.tbl",
		"data/dlc/text/notes/readme.txt",
	)

	g, err := Discover(root, schema.ColdSteel4, Options{})
	require.NoError(t, err)

	base := filepath.Join(root, "data")
	assert.Equal(t, "text", g.TextFolder)
	assert.Equal(t, PreferredDat, g.Dat)
	assert.Equal(t, filepath.Join(base, "text/dat_en/t_item_en.tbl"), g.Master)
	assert.Equal(t, []int{7, 42}, g.Folders())

	pkg := g.Packages[1]
	assert.Equal(t, filepath.Join(base, "dlc/text/0042/dat_en/t_item.tbl"), pkg.ItemTable)
	assert.Equal(t, filepath.Join(base, "dlc/text/0042/dat_en/t_dlc.tbl"), pkg.DLCTable)
	assert.Len(t, pkg.Family.ItemTables, 2, "every language's item table belongs to the family")
	assert.Len(t, pkg.Family.AttachTables, 1)
	assert.Len(t, pkg.Family.DLCTables, 1)

	items := g.ItemTables()
	require.Len(t, items, 3)
	assert.Equal(t, resolve.Master, items[0].Folder)
	assert.Equal(t, 7, items[1].Folder)
	assert.Equal(t, 42, items[2].Folder)

	dlcs := g.DLCTables()
	require.Len(t, dlcs, 2)
	assert.Equal(t, 7, dlcs[0].Folder)

	assert.Len(t, g.Families(), 2)
	assert.Len(t, g.Tables(), 8)
}

func TestDiscover_PlainMasterFallback(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "text/dat/t_item.tbl", "dlc/text/0001/dat/t_dlc.tbl")

	g, err := Discover(root, schema.TokyoXanaduEX, Options{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "text/dat/t_item.tbl"), g.Master)
	assert.Equal(t, "dat", g.Dat)
	require.Len(t, g.DLCTables(), 1)
}

func TestDiscover_NoMaster(t *testing.T) {
	root := t.TempDir()
	touch(t, root, "data/text/dat/t_shop.tbl")
	_, err := Discover(root, schema.ColdSteel3, Options{})
	require.ErrorIs(t, err, ErrNoMasterTable)
}

func TestDiscover_Pick(t *testing.T) {
	root := t.TempDir()
	touch(t, root,
		"data/text/dat_en/t_item_en.tbl",
		"data/text_jp/dat/t_item.tbl",
		"data/dlc/text_jp/0003/dat/t_item.tbl",
	)
	var asked []string
	g, err := Discover(root, schema.Reverie, Options{Pick: func(what string, opts []string) (string, error) {
		asked = append(asked, what)
		return opts[len(opts)-1], nil
	}})
	require.NoError(t, err)
	assert.Equal(t, []string{"text"}, asked)
	assert.Equal(t, "text_jp", g.TextFolder)
	assert.Equal(t, "dat", g.Dat)
	assert.Equal(t, []int{3}, g.Folders())
}

func TestGameWithout(t *testing.T) {
	g := &Game{
		Master: "m",
		Packages: []Package{{
			Folder: 1, ItemTable: "i", DLCTable: "d",
			Family: resolve.Family{Folder: 1, ItemTables: []string{"i"}, DLCTables: []string{"d"}, AttachTables: []string{"a"}},
		}},
	}
	c := g.Without(map[string]bool{"m": true, "d": true})

	assert.Len(t, c.ItemTables(), 1)
	assert.Empty(t, c.DLCTables())
	assert.Empty(t, c.Packages[0].Family.DLCTables)
	assert.Equal(t, "d", g.Packages[0].DLCTable, "original untouched")
}
