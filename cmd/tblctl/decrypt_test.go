package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tblkit/internal/cle"
	"github.com/joshuapare/tblkit/internal/schema"
	"github.com/joshuapare/tblkit/internal/testutil"
)

func TestDecryptCommand(t *testing.T) {
	resetFlags(t)
	gameFlag = "5"
	dir := t.TempDir()

	plain := testutil.ItemTable(schema.Reverie, testutil.Item{ID: 9, Name: "Tea"})
	for len(plain)%8 != 0 {
		plain = append(plain, 0)
	}
	enc := testutil.WriteFile(t, dir, "a/t_item.tbl", cle.Encrypt(plain))
	clear := testutil.WriteFile(t, dir, "b/t_item.tbl", plain)

	output, err := captureOutput(t, func() error {
		return runDecrypt([]string{enc, clear})
	})
	require.NoError(t, err, output)
	assertContains(t, output, []string{"✓ " + enc, clear + ": not encrypted"})
	assert.Equal(t, plain, testutil.ReadFile(t, enc))
}

func TestDecryptCommand_InvalidPlaintext(t *testing.T) {
	resetFlags(t)
	gameFlag = "5"
	path := testutil.WriteFile(t, t.TempDir(), "t_item.tbl", cle.Encrypt(bytes.Repeat([]byte{0xFF}, 16)))
	before := testutil.ReadFile(t, path)

	_, err := captureOutput(t, func() error {
		return runDecrypt([]string{path})
	})
	require.Error(t, err)
	assert.Equal(t, before, testutil.ReadFile(t, path))
}
