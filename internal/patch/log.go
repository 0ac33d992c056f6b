package patch

import (
	"fmt"
	"strings"
	"time"
)

// Log records every patch of a batch in order, so a failed batch can be
// reported and undone.
type Log struct {
	entries []LogEntry
}

// LogEntry records a single patch.
type LogEntry struct {
	Patch     Patch
	Applied   bool      // Whether the write succeeded
	Timestamp time.Time // When the write was attempted
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{entries: make([]LogEntry, 0, 8)}
}

func (l *Log) add(p Patch) {
	l.entries = append(l.entries, LogEntry{Patch: p, Timestamp: time.Now()})
}

func (l *Log) markApplied() {
	if len(l.entries) > 0 {
		l.entries[len(l.entries)-1].Applied = true
	}
}

// Entries returns the log entries in order.
func (l *Log) Entries() []LogEntry {
	return l.entries
}

// Applied returns the patches that were written, in order.
func (l *Log) Applied() []Patch {
	var out []Patch
	for _, e := range l.entries {
		if e.Applied {
			out = append(out, e.Patch)
		}
	}
	return out
}

// AppliedCount returns the number of successfully written patches.
func (l *Log) AppliedCount() int {
	n := 0
	for _, e := range l.entries {
		if e.Applied {
			n++
		}
	}
	return n
}

// TotalCount returns the total number of entries in the log.
func (l *Log) TotalCount() int {
	return len(l.entries)
}

// Export renders the log for humans.
func (l *Log) Export() string {
	if l == nil || len(l.entries) == 0 {
		return "Patch log: empty"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Patch log: %d entries (%d applied)\n", len(l.entries), l.AppliedCount())
	sb.WriteString(strings.Repeat("=", 80))
	sb.WriteString("\n")
	for i, e := range l.entries {
		status := "PENDING"
		if e.Applied {
			status = "APPLIED"
		}
		fmt.Fprintf(&sb, "\n[%d] %s - %s\n", i+1, status, e.Patch.Kind)
		fmt.Fprintf(&sb, "  File:     %s\n", e.Patch.Path)
		fmt.Fprintf(&sb, "  Offset:   0x%08X\n", e.Patch.Offset)
		fmt.Fprintf(&sb, "  Value:    %d -> %d\n", e.Patch.Old, e.Patch.New)
		fmt.Fprintf(&sb, "  Time:     %s\n", e.Timestamp.Format(time.RFC3339))
	}
	return sb.String()
}
