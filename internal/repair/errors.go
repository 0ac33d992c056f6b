package repair

import (
	"errors"
	"fmt"
)

var (
	// ErrBackupFailed indicates the safety copy could not be made; the table
	// is left untouched.
	ErrBackupFailed = errors.New("repair: backup failed")
	// ErrUnrecoverable indicates the byte stream cannot be interpreted under
	// the schema, or the corrected table still fails validation.
	ErrUnrecoverable = errors.New("repair: unrecoverable table")
)

// RepairError represents an error that occurred while repairing one table.
type RepairError struct {
	Path    string // Table being repaired
	Stage   string // "read", "backup", "correct", "verify", "write"
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *RepairError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("repair %s (%s): %s: %v", e.Path, e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("repair %s (%s): %s", e.Path, e.Stage, e.Message)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *RepairError) Unwrap() error {
	return e.Cause
}
