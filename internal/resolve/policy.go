package resolve

import (
	"fmt"

	"github.com/joshuapare/tblkit/internal/idindex"
	"github.com/joshuapare/tblkit/internal/schema"
)

// Replacement ID bounds.
const (
	MaxItemID       = 0xFFFF
	DLCFloorLow     = 1
	DLCFloorDefault = 20
	MaxDLCID        = 199
)

// Policy picks replacement IDs: the first ID in [Floor, Ceiling] that is
// neither in use nor excluded.
type Policy struct {
	Floor   int
	Ceiling int
	Exclude idindex.Set
}

// ItemPolicy returns the item-ID policy. With allowLow the floor is the
// lowest ID in use anywhere; otherwise it is the lowest ID in any package
// table, which keeps the official low range out of reach.
func ItemPolicy(allowLow bool, all, pkg idindex.Set) Policy {
	floor := 0
	if m, ok := all.Min(); ok {
		floor = int(m)
	}
	if !allowLow {
		if m, ok := pkg.Min(); ok {
			floor = int(m)
		}
	}
	return Policy{Floor: floor, Ceiling: MaxItemID, Exclude: idindex.NewSet(schema.EmptyGrantID)}
}

// DLCPolicy returns the package-ID policy. Package folder numbers are never
// handed out.
func DLCPolicy(allowLow bool, folders []int) Policy {
	p := Policy{Floor: DLCFloorDefault, Ceiling: MaxDLCID, Exclude: idindex.NewSet()}
	if allowLow {
		p.Floor = DLCFloorLow
	}
	for _, f := range folders {
		if f >= 0 && f <= 0xFFFF {
			p.Exclude.Add(uint16(f))
		}
	}
	return p
}

// Free reports whether id may be handed out against inUse. The floor is
// not enforced so that explicit overrides can reach below it.
func (p Policy) Free(id uint16, inUse idindex.Set) bool {
	return int(id) <= p.Ceiling && !inUse.Has(id) && !p.Exclude.Has(id)
}

// Next returns the lowest free ID at or above the floor.
func (p Policy) Next(inUse idindex.Set) (uint16, error) {
	ids := p.Take(inUse, 1)
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w in [%d, %d]", ErrNoReplacementID, p.Floor, p.Ceiling)
	}
	return ids[0], nil
}

// Take returns up to n free IDs, ascending.
func (p Policy) Take(inUse idindex.Set, n int) []uint16 {
	var out []uint16
	for id := max(p.Floor, 0); id <= p.Ceiling && len(out) < n; id++ {
		if p.Free(uint16(id), inUse) {
			out = append(out, uint16(id))
		}
	}
	return out
}
