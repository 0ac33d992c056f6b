//go:build linux || freebsd

package patch

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an exclusive advisory lock for the duration of a batch.
func lockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_EX)
}

func unlockFile(f *os.File) error {
	return unix.Flock(int(f.Fd()), unix.LOCK_UN)
}

// datasync flushes file data without forcing a metadata write; the length
// never changes.
func datasync(f *os.File) error {
	return unix.Fdatasync(int(f.Fd()))
}
