package format_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/joshuapare/tblkit/internal/format"
	"github.com/joshuapare/tblkit/internal/schema"
	"github.com/joshuapare/tblkit/internal/testutil"
)

func TestView(t *testing.T) {
	dir := t.TempDir()
	data := testutil.ItemTable(schema.ColdSteel4, testutil.Item{ID: 7, Name: "Tear Balm"})
	path := testutil.WriteFile(t, dir, testutil.ItemTableName, data)

	var checkErr error
	err := format.View(path, func(b []byte) error {
		checkErr = format.Check(b, schema.ColdSteel4)
		return nil
	})
	require.NoError(t, err)
	require.NoError(t, checkErr)
}

func TestView_Missing(t *testing.T) {
	err := format.View(filepath.Join(t.TempDir(), "nope.tbl"), func([]byte) error { return nil })
	require.Error(t, err)
}
