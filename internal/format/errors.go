package format

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated indicates the file ended in the middle of a record.
	ErrTruncated = errors.New("format: truncated file")
	// ErrCorruptHeader indicates header or section fields outside any sane range.
	ErrCorruptHeader = errors.New("format: corrupt header")
	// ErrUnknownEntryType indicates an entry whose type is not a declared section.
	ErrUnknownEntryType = errors.New("format: undeclared entry type")
	// ErrSectionCountMismatch indicates a section's declared count differs from
	// the number of entries of that type.
	ErrSectionCountMismatch = errors.New("format: section count mismatch")
	// ErrBlockSizeMismatch indicates a stored block_size that differs from the
	// length the schema derives for the payload.
	ErrBlockSizeMismatch = errors.New("format: block size mismatch")
	// ErrTrailingData indicates non-zero bytes after the last entry that do not
	// form an entry.
	ErrTrailingData = errors.New("format: trailing data")
)

// CheckError locates a structural problem found while checking a table.
type CheckError struct {
	Offset    int    // Absolute byte offset of the offending structure
	EntryType string // Entry or section name, if known
	Message   string
	Kind      error // One of the sentinel errors above
}

// Error implements the error interface.
func (e *CheckError) Error() string {
	if e.EntryType != "" {
		return fmt.Sprintf("%v at 0x%X (%q): %s", e.Kind, e.Offset, e.EntryType, e.Message)
	}
	return fmt.Sprintf("%v at 0x%X: %s", e.Kind, e.Offset, e.Message)
}

// Unwrap returns the sentinel kind for errors.Is.
func (e *CheckError) Unwrap() error {
	return e.Kind
}

func checkErr(kind error, off int, entryType, format string, args ...any) *CheckError {
	return &CheckError{Offset: off, EntryType: entryType, Message: fmt.Sprintf(format, args...), Kind: kind}
}
