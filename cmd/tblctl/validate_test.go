package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tblkit/internal/cle"
	"github.com/joshuapare/tblkit/internal/schema"
	"github.com/joshuapare/tblkit/internal/testutil"
)

func TestValidateCommand(t *testing.T) {
	v := schema.ColdSteel3
	dir := t.TempDir()
	good := testutil.WriteFile(t, dir, "good/t_item.tbl", testutil.ItemTable(v, testutil.Item{ID: 1, Name: "Potion"}))
	bad := testutil.ItemTable(v, testutil.Item{ID: 1, Name: "Potion"})
	bad[11] = 9 // declared item count
	badPath := testutil.WriteFile(t, dir, "bad/t_item.tbl", bad)
	enc := testutil.WriteFile(t, dir, "enc/t_item.tbl", cle.Encrypt(make([]byte, 64)))

	tests := []struct {
		name        string
		args        []string
		json        bool
		wantErr     bool
		wantContain []string
	}{
		{name: "valid", args: []string{good}, wantContain: []string{"✓ " + good, "Result: ✓ VALID"}},
		{name: "invalid", args: []string{good, badPath}, wantErr: true, wantContain: []string{"✗ " + badPath, "1 of 2 INVALID"}},
		{name: "encrypted", args: []string{enc}, wantErr: true, wantContain: []string{"encrypted (run: tblctl decrypt)"}},
		{name: "json", args: []string{good, badPath}, json: true, wantErr: true, wantContain: []string{`"valid": false`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			gameFlag = "3"
			jsonOut = tt.json

			output, err := captureOutput(t, func() error {
				return runValidate(tt.args)
			})
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err, output)
			}
			if tt.json {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestValidateCommand_WholeInstall(t *testing.T) {
	resetFlags(t)
	in := newInstall(t)

	output, err := captureOutput(t, func() error {
		return runValidate(nil)
	})
	require.NoError(t, err, output)
	assertContains(t, output, []string{in.master, in.items[1], in.attach, in.dlcs[2], "as CS4"})
}

func TestValidateCommand_UnknownGame(t *testing.T) {
	resetFlags(t)
	rootDir = t.TempDir()
	_, err := captureOutput(t, func() error {
		return runValidate([]string{"t_item.tbl"})
	})
	require.ErrorContains(t, err, "use --game")
}
