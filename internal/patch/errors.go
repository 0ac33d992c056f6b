package patch

import (
	"errors"
	"fmt"
)

var (
	// ErrStale indicates the bytes at a patch offset no longer hold the value
	// the patch was planned against.
	ErrStale = errors.New("patch: stale value")
	// ErrOutOfRange indicates a 2-byte write would extend the file.
	ErrOutOfRange = errors.New("patch: offset out of range")
)

// PartialPatchError reports a batch that failed after at least one patch
// was written. The affected table family may hold mixed old and new IDs.
type PartialPatchError struct {
	Applied     []Patch // Patches written before the failure
	Failed      Patch   // Patch that could not be written
	Cause       error
	RolledBack  bool  // Applied patches were restored to their old values
	RollbackErr error // Set when restoring failed
}

// Error implements the error interface.
func (e *PartialPatchError) Error() string {
	state := "left applied"
	switch {
	case e.RolledBack:
		state = "rolled back"
	case e.RollbackErr != nil:
		state = fmt.Sprintf("rollback failed: %v", e.RollbackErr)
	}
	return fmt.Sprintf("partial patch: %d written then %s failed (%s): %v",
		len(e.Applied), e.Failed, state, e.Cause)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *PartialPatchError) Unwrap() error {
	return e.Cause
}
