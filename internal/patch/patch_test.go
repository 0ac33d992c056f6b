package patch

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func read(t *testing.T, path string) []byte {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return b
}

func TestPatchU16(t *testing.T) {
	orig := []byte{0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF}
	path := writeTemp(t, "t_item.tbl", orig)

	require.NoError(t, PatchU16(path, 2, 0x1234))

	got := read(t, path)
	assert.Equal(t, []byte{0xAA, 0xBB, 0x34, 0x12, 0xEE, 0xFF}, got)

	v, err := ReadU16(path, 2)
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), v)
}

func TestPatchU16_LastTwoBytes(t *testing.T) {
	path := writeTemp(t, "t_item.tbl", []byte{1, 2, 3, 4})
	require.NoError(t, PatchU16(path, 2, 0xFFFF))
	assert.Equal(t, []byte{1, 2, 0xFF, 0xFF}, read(t, path))
}

func TestPatchU16_OutOfRange(t *testing.T) {
	orig := []byte{1, 2, 3}
	path := writeTemp(t, "t_item.tbl", orig)

	for _, off := range []int64{-1, 2, 3, 100} {
		err := PatchU16(path, off, 7)
		require.ErrorIs(t, err, ErrOutOfRange, "offset %d", off)
	}
	assert.Equal(t, orig, read(t, path), "file length and bytes unchanged")
}

func TestPatchU16_Missing(t *testing.T) {
	err := PatchU16(filepath.Join(t.TempDir(), "none.tbl"), 0, 1)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestApply(t *testing.T) {
	item := writeTemp(t, "t_item.tbl", []byte{0xF4, 0x01, 0, 0, 0xF4, 0x01})
	dlc := writeTemp(t, "t_dlc.tbl", []byte{9, 9, 0xF4, 0x01})

	patches := []Patch{
		{Path: item, Offset: 0, Old: 500, New: 501, Kind: KindItemID},
		{Path: item, Offset: 4, Old: 500, New: 501, Kind: KindItemID},
		{Path: dlc, Offset: 2, Old: 500, New: 501, Kind: KindGrantRef},
		{Path: dlc, Offset: 2, Old: 500, New: 501, Kind: KindGrantRef}, // repeat
	}
	log, err := Apply(patches)
	require.NoError(t, err)
	assert.Equal(t, 3, log.AppliedCount())
	assert.Equal(t, 3, log.TotalCount())

	assert.Equal(t, []byte{0xF5, 0x01, 0, 0, 0xF5, 0x01}, read(t, item))
	assert.Equal(t, []byte{9, 9, 0xF5, 0x01}, read(t, dlc))
	assert.Contains(t, log.Export(), "grant")
}

func TestApply_StaleWritesNothing(t *testing.T) {
	orig := []byte{0xF4, 0x01, 0x02, 0x00}
	path := writeTemp(t, "t_item.tbl", orig)

	log, err := Apply([]Patch{
		{Path: path, Offset: 0, Old: 500, New: 600},
		{Path: path, Offset: 2, Old: 3, New: 600},
	})
	require.ErrorIs(t, err, ErrStale)
	assert.Zero(t, log.AppliedCount())
	assert.Equal(t, orig, read(t, path))
}

func TestApply_ConflictingPatches(t *testing.T) {
	path := writeTemp(t, "t_item.tbl", []byte{1, 0})
	_, err := Apply([]Patch{
		{Path: path, Offset: 0, Old: 1, New: 2},
		{Path: path, Offset: 0, Old: 1, New: 3},
	})
	require.ErrorContains(t, err, "conflicting patches")
	assert.Equal(t, []byte{1, 0}, read(t, path))
}

func TestApply_PartialFailure(t *testing.T) {
	item := writeTemp(t, "t_item.tbl", []byte{10, 0})
	attach := writeTemp(t, "t_attach.tbl", []byte{0, 0, 10, 0})

	boom := errors.New("disk gone")
	testHookBeforeWrite = func(p Patch) error {
		if p.Kind == KindAttachRef {
			return boom
		}
		return nil
	}
	t.Cleanup(func() { testHookBeforeWrite = nil })

	log, err := Apply([]Patch{
		{Path: item, Offset: 0, Old: 10, New: 11, Kind: KindItemID},
		{Path: attach, Offset: 2, Old: 10, New: 11, Kind: KindAttachRef},
	})
	var pe *PartialPatchError
	require.ErrorAs(t, err, &pe)
	require.ErrorIs(t, err, boom)
	assert.Len(t, pe.Applied, 1)
	assert.Equal(t, KindAttachRef, pe.Failed.Kind)
	assert.True(t, pe.RolledBack)
	assert.Equal(t, 1, log.AppliedCount())
	assert.Equal(t, 2, log.TotalCount())

	assert.Equal(t, []byte{10, 0}, read(t, item), "applied patch restored")
	assert.Equal(t, []byte{0, 0, 10, 0}, read(t, attach))
}

func TestApply_FirstWriteFails(t *testing.T) {
	path := writeTemp(t, "t_item.tbl", []byte{10, 0})
	testHookBeforeWrite = func(Patch) error { return errors.New("nope") }
	t.Cleanup(func() { testHookBeforeWrite = nil })

	_, err := Apply([]Patch{{Path: path, Offset: 0, Old: 10, New: 11}})
	require.Error(t, err)
	var pe *PartialPatchError
	assert.False(t, errors.As(err, &pe))
}

func TestPatchInverse(t *testing.T) {
	p := Patch{Path: "x", Offset: 4, Old: 1, New: 2, Kind: KindDLCID}
	inv := p.Inverse()
	assert.Equal(t, uint16(2), inv.Old)
	assert.Equal(t, uint16(1), inv.New)
	assert.Equal(t, "dlc x@0x4 1->2", p.String())
}

func TestLogExportEmpty(t *testing.T) {
	assert.Equal(t, "Patch log: empty", NewLog().Export())
}
