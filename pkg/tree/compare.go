// Package tree holds the algorithms over flat parent-linked node collections:
// sibling ordering, the id index with ancestor and descendant walks,
// flattening into visible rows, and reparenting moves.
package tree

import (
	"strings"

	"github.com/vanderheijden86/arbor/pkg/model"
)

// Comparator orders two sibling nodes. It returns a negative number when a
// sorts first, zero when they are equal, and a positive number otherwise.
// It receives whole records so hosts can order by any field.
type Comparator func(a, b model.Node) int

// CompareText orders nodes by display text, ignoring case.
func CompareText(a, b model.Node) int {
	return strings.Compare(strings.ToLower(a.Text), strings.ToLower(b.Text))
}

// Reverse returns a comparator with the opposite order of c.
func Reverse(c Comparator) Comparator {
	return func(a, b model.Node) int { return c(b, a) }
}

// Chain tries each comparator in turn until one of them orders the pair.
func Chain(cs ...Comparator) Comparator {
	return func(a, b model.Node) int {
		for _, c := range cs {
			if r := c(a, b); r != 0 {
				return r
			}
		}
		return 0
	}
}
