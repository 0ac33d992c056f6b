//go:build !unix

package mmfile

import (
	"errors"
	"os"
)

// A live mapping on Windows would block the rename-over that repair and
// decrypt rely on, so large files are read like small ones.
var errNoMap = errors.New("mmfile: mapping not used on this platform")

func mapFile(*os.File, int) ([]byte, error) { return nil, errNoMap }

func unmap([]byte) error { return nil }
