package logger

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Console(t *testing.T) {
	t.Cleanup(func() { L = discard() })

	var out bytes.Buffer
	require.NoError(t, Init(Options{Enabled: true, Console: &out, Level: slog.LevelDebug}))
	Debug("scan", "path", "t_item.tbl")
	assert.Contains(t, out.String(), "path=t_item.tbl")
}

func TestInit_Disabled(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, Init(Options{Enabled: false, Console: &out}))
	Info("dropped")
	assert.Empty(t, out.String())
}

func TestInit_File(t *testing.T) {
	t.Cleanup(func() { L = discard() })

	dir := t.TempDir()
	require.NoError(t, Init(Options{Enabled: true, LogDir: dir}))
	Warn("backup", "path", "x")

	name := logPrefix + time.Now().Format("2006-01-02") + logSuffix
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"backup"`)
}

func TestCleanOldLogs(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	old := filepath.Join(dir, "tblctl-2025-01-01.log")
	fresh := filepath.Join(dir, "tblctl-2025-06-29.log")
	other := filepath.Join(dir, "notes.log")
	for _, p := range []string{old, fresh, other} {
		require.NoError(t, os.WriteFile(p, nil, 0o644))
	}

	cleanOldLogs(dir, now)

	assert.NoFileExists(t, old)
	assert.FileExists(t, fresh)
	assert.FileExists(t, other)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("WARN"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("loud"))
}

func TestOr(t *testing.T) {
	l := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	assert.Same(t, l, Or(l))
	assert.Same(t, L, Or(nil))
}
