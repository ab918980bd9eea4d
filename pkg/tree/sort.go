package tree

import (
	"slices"

	"github.com/vanderheijden86/arbor/pkg/model"
)

// SortPolicy controls how a sibling list is ordered.
//
// Sorting is active when Sort is true or Compare is set. With sorting
// inactive the collection order is the sibling order (explicit ordering).
// InsertDroppableFirst groups containers ahead of leaves either way.
type SortPolicy struct {
	Sort                 bool
	Compare              Comparator
	InsertDroppableFirst bool
}

// DefaultSortPolicy sorts by text with containers first.
func DefaultSortPolicy() SortPolicy {
	return SortPolicy{Sort: true, InsertDroppableFirst: true}
}

// Sorted reports whether siblings are ordered by a comparator.
func (p SortPolicy) Sorted() bool {
	return p.Sort || p.Compare != nil
}

// Explicit reports whether sibling order comes from collection order.
func (p SortPolicy) Explicit() bool {
	return !p.Sorted()
}

// comparator returns the active comparator, defaulting to CompareText.
func (p SortPolicy) comparator() Comparator {
	if p.Compare != nil {
		return p.Compare
	}
	return CompareText
}

// Sort returns nodes ordered by the policy. The input slice is never
// modified. Ties keep their original relative order.
func Sort(nodes []model.Node, p SortPolicy) []model.Node {
	if !p.InsertDroppableFirst {
		out := model.Clone(nodes)
		if p.Sorted() {
			slices.SortStableFunc(out, p.comparator())
		}
		return out
	}

	out := make([]model.Node, 0, len(nodes))
	for _, n := range nodes {
		if n.Droppable {
			out = append(out, n)
		}
	}
	split := len(out)
	for _, n := range nodes {
		if !n.Droppable {
			out = append(out, n)
		}
	}
	if p.Sorted() {
		cmp := p.comparator()
		slices.SortStableFunc(out[:split], cmp)
		slices.SortStableFunc(out[split:], cmp)
	}
	return out
}
