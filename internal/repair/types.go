package repair

import (
	"fmt"
	"time"

	"github.com/joshuapare/tblkit/internal/format"
)

// State is the lifecycle position of one table file.
type State int

const (
	StateUnknown State = iota
	StateValid
	StateInvalid
	StateUnrecoverable
)

func (s State) String() string {
	switch s {
	case StateUnknown:
		return "UNKNOWN"
	case StateValid:
		return "VALID"
	case StateInvalid:
		return "INVALID"
	case StateUnrecoverable:
		return "UNRECOVERABLE"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Result describes one repair of one table.
type Result struct {
	Path       string
	BackupPath string // Empty on dry runs
	Correction *format.Correction
	Before     uint64 // xxhash of the bytes before repair
	After      uint64 // xxhash of the bytes after repair
	Size       int    // Length after repair
	DryRun     bool
	Duration   time.Duration
}

// Outcome is the per-file result of Ensure.
type Outcome struct {
	Path   string
	State  State
	Issue  error   // Why the table failed validation, if it did
	Repair *Result // Set when a repair ran
	Err    error   // Set when the table ends UNRECOVERABLE or could not be read
}
