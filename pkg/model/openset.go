package model

import "slices"

// OpenSet holds the ids of expanded nodes.
type OpenSet map[ID]struct{}

// NewOpenSet returns an open set containing ids.
func NewOpenSet(ids ...ID) OpenSet {
	s := make(OpenSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is open. A nil set has nothing open.
func (s OpenSet) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Add opens ids and reports whether the set changed.
func (s OpenSet) Add(ids ...ID) bool {
	changed := false
	for _, id := range ids {
		if _, ok := s[id]; !ok {
			s[id] = struct{}{}
			changed = true
		}
	}
	return changed
}

// Remove closes ids and reports whether the set changed.
func (s OpenSet) Remove(ids ...ID) bool {
	changed := false
	for _, id := range ids {
		if _, ok := s[id]; ok {
			delete(s, id)
			changed = true
		}
	}
	return changed
}

// Clone returns an independent copy.
func (s OpenSet) Clone() OpenSet {
	out := make(OpenSet, len(s))
	for id := range s {
		out[id] = struct{}{}
	}
	return out
}

// IDs returns the open ids in ascending order, for stable output.
func (s OpenSet) IDs() []ID {
	ids := make([]ID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// Equal reports whether both sets hold the same ids.
func (s OpenSet) Equal(other OpenSet) bool {
	if len(s) != len(other) {
		return false
	}
	for id := range s {
		if !other.Has(id) {
			return false
		}
	}
	return true
}
