package repair

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"
)

// DefaultBackupSuffix is appended to a table's path to name its backup.
const DefaultBackupSuffix = ".bak"

// Digest returns the content hash used to verify backups and report changes.
func Digest(b []byte) uint64 {
	return xxhash.Sum64(b)
}

// WriteAtomic writes data to path using temp-file-then-rename, so the target
// is never left half written.
//
// Steps:
//  1. Create temporary file in same directory as target
//  2. Write and fsync it
//  3. Rename over the target
//  4. Fsync the parent directory
//
// If any step fails the temp file is removed and the target is unchanged.
// The target's permission bits are kept when it already exists.
func WriteAtomic(path string, data []byte) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving absolute path: %w", err)
	}
	dir := filepath.Dir(absPath)

	tmpFile, err := os.CreateTemp(dir, ".tblkit-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	cleanup := func() {
		tmpFile.Close()
		os.Remove(tmpPath)
	}

	if info, statErr := os.Stat(absPath); statErr == nil {
		if chmodErr := tmpFile.Chmod(info.Mode().Perm()); chmodErr != nil {
			cleanup()
			return fmt.Errorf("copying file mode: %w", chmodErr)
		}
	}
	if _, writeErr := tmpFile.Write(data); writeErr != nil {
		cleanup()
		return fmt.Errorf("writing to temp file: %w", writeErr)
	}
	if syncErr := tmpFile.Sync(); syncErr != nil {
		cleanup()
		return fmt.Errorf("syncing temp file: %w", syncErr)
	}
	// Close before rename (required on Windows)
	if closeErr := tmpFile.Close(); closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}
	if renameErr := os.Rename(tmpPath, absPath); renameErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", renameErr)
	}

	// The data is already in place; a failed directory sync is not an error.
	_ = syncDir(dir)
	return nil
}

// CreateBackup copies data, the current contents of path, to a sibling
// backup and verifies the copy by digest. An existing backup is never
// overwritten.
//
// Backup naming, first free wins:
//
//	<path><suffix>
//	<path><suffix>.<timestamp>
//	<path><suffix>.<timestamp>.<n>
func CreateBackup(path, suffix string, data []byte, now time.Time) (string, error) {
	if suffix == "" {
		suffix = DefaultBackupSuffix
	}
	backupPath, err := freeBackupPath(path+suffix, now)
	if err != nil {
		return "", err
	}
	mode := fs.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}

	f, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return "", fmt.Errorf("creating backup: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(backupPath)
		return "", fmt.Errorf("writing backup: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(backupPath)
		return "", fmt.Errorf("syncing backup: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(backupPath)
		return "", fmt.Errorf("closing backup: %w", err)
	}

	if err := verifyBackup(backupPath, Digest(data), int64(len(data))); err != nil {
		os.Remove(backupPath)
		return "", fmt.Errorf("backup verification failed: %w", err)
	}
	return backupPath, nil
}

func freeBackupPath(base string, now time.Time) (string, error) {
	if !exists(base) {
		return base, nil
	}
	stamped := base + "." + now.Format("20060102-150405")
	if !exists(stamped) {
		return stamped, nil
	}
	for n := 1; n < 1000; n++ {
		p := fmt.Sprintf("%s.%d", stamped, n)
		if !exists(p) {
			return p, nil
		}
	}
	return "", errors.New("no free backup name")
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

// syncDir fsyncs a directory so a rename inside it is persisted.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("opening directory: %w", err)
	}
	defer d.Close()

	if syncErr := d.Sync(); syncErr != nil {
		return fmt.Errorf("syncing directory: %w", syncErr)
	}
	return nil
}

// verifyBackup re-reads the backup and compares size and digest.
func verifyBackup(path string, want uint64, size int64) error {
	got, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("backup file not readable: %w", err)
	}
	if int64(len(got)) != size {
		return fmt.Errorf("backup size mismatch: expected %d, got %d", size, len(got))
	}
	if d := Digest(got); d != want {
		return fmt.Errorf("backup digest mismatch: expected %016x, got %016x", want, d)
	}
	return nil
}
