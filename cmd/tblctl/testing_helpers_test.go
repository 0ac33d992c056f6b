package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/joshuapare/tblkit/internal/repair"
	"github.com/joshuapare/tblkit/internal/schema"
	"github.com/joshuapare/tblkit/internal/testutil"
)

// resetFlags restores every flag variable to its default.
func resetFlags(t *testing.T) {
	t.Helper()
	verbose, quiet, jsonOut = false, false, false
	gameFlag, rootDir, textFolder, datFolder = "auto", ".", "", ""
	logEnabled, logDir, logLevel = false, "", "info"
	repairDryRun, repairBackupSuffix = false, repair.DefaultBackupSuffix
	resolveAllowLow, resolveDecrypt, resolveDecisions, resolveDryRun = false, false, "", false
	resolveBackupSuffix = repair.DefaultBackupSuffix
	idsDLC, idsAllowLow, idsCount = false, false, 10
	exportFormat, exportOut = "json", ""
	promptIn = strings.NewReader("")
}

// install is a minimal Cold Steel IV tree:
//
//	master: 100 "Tear Balm", 500 "Potion"
//	0001:   item 500 "Swimsuit", attach -> 500, dlc 30 granting 500
//	0002:   item 600 "Hat", dlc 30 granting 600
type install struct {
	root   string
	master string
	items  [3]string // index by folder, 0 unused
	dlcs   [3]string
	attach string
}

func newInstall(t *testing.T) *install {
	t.Helper()
	v := schema.ColdSteel4
	root := t.TempDir()
	in := &install{root: root}
	testutil.WriteFile(t, root, "bin/Win64/ed8_4_PC.exe", []byte{0})
	in.master = testutil.WriteFile(t, root, "data/text/dat_en/t_item_en.tbl", testutil.ItemTable(v,
		testutil.Item{ID: 100, Name: "Tear Balm"},
		testutil.Item{ID: 500, Name: "Potion"},
	))

	in.items[1] = testutil.WriteFile(t, root, "data/dlc/text/0001/dat_en/t_item.tbl",
		testutil.ItemTable(v, testutil.Item{ID: 500, Name: "Swimsuit"}))
	in.attach = testutil.WriteFile(t, root, "data/dlc/text/0001/dat_en/t_attach.tbl", testutil.AttachTable(500))
	in.dlcs[1] = testutil.WriteFile(t, root, "data/dlc/text/0001/dat_en/t_dlc.tbl",
		testutil.DLCTable(v, 30, "Swim Pack", testutil.Grant{ID: 500, Quantity: 1}))

	in.items[2] = testutil.WriteFile(t, root, "data/dlc/text/0002/dat_en/t_item.tbl",
		testutil.ItemTable(v, testutil.Item{ID: 600, Name: "Hat"}))
	in.dlcs[2] = testutil.WriteFile(t, root, "data/dlc/text/0002/dat_en/t_dlc.tbl",
		testutil.DLCTable(v, 30, "Hat Pack", testutil.Grant{ID: 600, Quantity: 1}))

	rootDir = root
	return in
}

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	var out bytes.Buffer
	done := make(chan struct{})
	go func() {
		out.ReadFrom(r)
		close(done)
	}()

	fnErr := fn()

	w.Close()
	os.Stdout = origStdout
	<-done

	return out.String(), fnErr
}

// assertJSON checks that output is valid JSON
func assertJSON(t *testing.T, output string) {
	t.Helper()
	var result interface{}
	if err := json.Unmarshal([]byte(output), &result); err != nil {
		t.Errorf("invalid JSON output: %v\nOutput: %s", err, output)
	}
}

// assertContains checks that output contains all expected strings
func assertContains(t *testing.T, output string, expected []string) {
	t.Helper()
	for _, want := range expected {
		if !strings.Contains(output, want) {
			t.Errorf("output missing expected string %q\nGot: %s", want, output)
		}
	}
}

// assertNotContains checks that output doesn't contain unwanted strings
func assertNotContains(t *testing.T, output string, unwanted []string) {
	t.Helper()
	for _, dont := range unwanted {
		if strings.Contains(output, dont) {
			t.Errorf("output contains unwanted string %q\nGot: %s", dont, output)
		}
	}
}
