package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tblkit/internal/testutil"
)

func TestExportCommand(t *testing.T) {
	tests := []struct {
		name        string
		format      string
		wantErr     bool
		wantContain []string
	}{
		{name: "json", format: "json", wantContain: []string{`"name": "Potion"`, `"variant": "CS4"`, `"id": 500`}},
		{name: "yaml", format: "yaml", wantContain: []string{"name: Potion", "variant: CS4", "- type: item"}},
		{name: "unknown format", format: "xml", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags(t)
			in := newInstall(t)
			exportFormat = tt.format

			output, err := captureOutput(t, func() error {
				return runExport([]string{in.master, in.dlcs[1]})
			})
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			if tt.format == "json" {
				assertJSON(t, output)
			}
			assertContains(t, output, tt.wantContain)
		})
	}
}

func TestExportCommand_OutFile(t *testing.T) {
	resetFlags(t)
	in := newInstall(t)
	exportFormat = "yaml"
	exportOut = filepath.Join(t.TempDir(), "items.yaml")

	output, err := captureOutput(t, func() error {
		return runExport([]string{in.items[1]})
	})
	require.NoError(t, err)
	require.Empty(t, output)
	assertContains(t, string(testutil.ReadFile(t, exportOut)), []string{"name: Swimsuit"})
}
