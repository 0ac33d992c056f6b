package idindex

import "slices"

// Set is a set of numeric IDs.
type Set map[uint16]struct{}

// NewSet returns a set holding ids.
func NewSet(ids ...uint16) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

func (s Set) Add(id uint16) { s[id] = struct{}{} }

func (s Set) Has(id uint16) bool {
	_, ok := s[id]
	return ok
}

// Union adds every member of o to s.
func (s Set) Union(o Set) {
	for id := range o {
		s[id] = struct{}{}
	}
}

// Sorted returns the members in ascending order.
func (s Set) Sorted() []uint16 {
	out := make([]uint16, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// Min returns the smallest member, or false for an empty set.
func (s Set) Min() (uint16, bool) {
	first := true
	var m uint16
	for id := range s {
		if first || id < m {
			m, first = id, false
		}
	}
	return m, !first
}
