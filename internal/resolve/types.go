package resolve

import (
	"fmt"

	"github.com/joshuapare/tblkit/internal/idindex"
	"github.com/joshuapare/tblkit/internal/patch"
	"github.com/joshuapare/tblkit/internal/repair"
)

// Master is the Folder of a table that belongs to no package.
const Master = -1

// Table is one table in processing order.
type Table struct {
	Path   string
	Folder int // Package folder number, or Master
}

// IsMaster reports whether the table is outside every package.
func (t Table) IsMaster() bool { return t.Folder < 0 }

func (t Table) String() string {
	if t.IsMaster() {
		return t.Path + " (master)"
	}
	return fmt.Sprintf("%s (package %04d)", t.Path, t.Folder)
}

// Family is every table under one package folder. A rename in the package
// patches all of them.
type Family struct {
	Folder       int
	ItemTables   []string
	AttachTables []string
	DLCTables    []string
}

// Space is an independent ID space.
type Space int

const (
	SpaceItem Space = iota
	SpaceDLC
)

func (s Space) String() string {
	if s == SpaceDLC {
		return "dlc"
	}
	return "item"
}

// Side is one party to a collision.
type Side struct {
	Table Table
	Ref   idindex.Ref
	Name  string
}

// Conflict is a reported collision. A is the earlier table, B the later one.
type Conflict struct {
	Space       Space
	ID          uint16
	A, B        Side
	Replacement uint16 // Computed free ID at the moment of asking
	AllowA      bool
	AllowB      bool
}

// Allowed reports whether c may be resolved with choice.
func (c Conflict) Allowed(choice Choice) bool {
	switch choice {
	case Skip:
		return true
	case RenameA:
		return c.AllowA
	case RenameB:
		return c.AllowB
	default:
		return false
	}
}

// Choice is the decider's answer.
type Choice int

const (
	Skip Choice = iota
	RenameA
	RenameB
)

func (c Choice) String() string {
	switch c {
	case Skip:
		return "skip"
	case RenameA:
		return "rename-a"
	case RenameB:
		return "rename-b"
	default:
		return "invalid"
	}
}

// Decision answers one conflict. Replacement is used only when Override is
// set; otherwise the conflict's computed replacement applies.
type Decision struct {
	Choice      Choice
	Replacement uint16
	Override    bool
}

// Decider picks which side of a collision to renumber. An error aborts the
// pass.
type Decider interface {
	Decide(c Conflict) (Decision, error)
}

// DeciderFunc adapts a function to Decider.
type DeciderFunc func(c Conflict) (Decision, error)

// Decide calls f(c).
func (f DeciderFunc) Decide(c Conflict) (Decision, error) { return f(c) }

// Resolution is what happened to one reported conflict.
type Resolution struct {
	Conflict    Conflict
	Choice      Choice
	Replacement uint16        // ID written, zero when nothing was written
	Patches     []patch.Patch // Planned or applied writes
	Err         error         // Conflict-level failure; the pass continued
}

// Renamed reports whether the conflict ended in a rename.
func (r Resolution) Renamed() bool {
	return r.Err == nil && r.Choice != Skip && len(r.Patches) > 0
}

// Report collects the results of a resolution run.
type Report struct {
	Tables     []repair.Outcome // Set when tables were ensured first
	Items      []Resolution
	DLCs       []Resolution
	Skipped    []TableError // Tables a pass could not scan
	Duplicates int          // Same-ID, same-name item pairs tolerated
	DryRun     bool
}

// TableError records a table left out of a pass.
type TableError struct {
	Path string
	Err  error
}

// Renamed counts the renames across both passes.
func (r *Report) Renamed() int {
	n := 0
	for _, res := range append(append([]Resolution(nil), r.Items...), r.DLCs...) {
		if res.Renamed() {
			n++
		}
	}
	return n
}
