//go:build !linux && !freebsd && !darwin && !windows

package patch

import "os"

func lockFile(*os.File) error   { return nil }
func unlockFile(*os.File) error { return nil }

func datasync(f *os.File) error { return f.Sync() }
