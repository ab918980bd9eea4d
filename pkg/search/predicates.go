package search

import (
	"path"
	"strings"

	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

// Predicate decides whether node matches term. Helpers give read access to
// the rest of the snapshot so a predicate can look at relatives.
type Predicate func(term string, node model.Node, h Helpers) bool

// Helpers exposes the snapshot's index to predicates. Walks that meet a
// malformed graph return what they collected before the fault; the search
// itself reports the fault.
type Helpers struct {
	x *tree.Index
}

// NewHelpers wraps an index.
func NewHelpers(x *tree.Index) Helpers { return Helpers{x: x} }

// Node returns the record for id.
func (h Helpers) Node(id model.ID) (model.Node, bool) { return h.x.Node(id) }

// Parent returns the parent record of id.
func (h Helpers) Parent(id model.ID) (model.Node, bool) { return h.x.Parent(id) }

// Children returns the direct children of id.
func (h Helpers) Children(id model.ID) []model.Node { return h.x.Children(id) }

// Ancestors returns id's ancestors, nearest first.
func (h Helpers) Ancestors(id model.ID) []model.Node {
	out, _ := h.x.Ancestors(id)
	return out
}

// Descendants returns everything below id in pre-order.
func (h Helpers) Descendants(id model.ID) []model.Node {
	out, _ := h.x.Descendants(id)
	return out
}

// Contains matches when the node text contains term, ignoring case.
func Contains(term string, node model.Node, _ Helpers) bool {
	return strings.Contains(strings.ToLower(node.Text), strings.ToLower(term))
}

// Exact matches when the node text equals term, ignoring case.
func Exact(term string, node model.Node, _ Helpers) bool {
	return strings.EqualFold(node.Text, term)
}

// Extension matches file-like nodes whose extension equals term. A leading
// dot on the term is optional, so ".jpg" and "jpg" behave the same.
func Extension(term string, node model.Node, _ Helpers) bool {
	ext := strings.TrimPrefix(path.Ext(node.Text), ".")
	want := strings.TrimPrefix(term, ".")
	return ext != "" && strings.EqualFold(ext, want)
}

// AnyOf matches when at least one of ps matches.
func AnyOf(ps ...Predicate) Predicate {
	return func(term string, node model.Node, h Helpers) bool {
		for _, p := range ps {
			if p(term, node, h) {
				return true
			}
		}
		return false
	}
}

// ByKind applies container to droppable nodes and leaf to the rest. A nil
// predicate never matches its kind.
func ByKind(container, leaf Predicate) Predicate {
	return func(term string, node model.Node, h Helpers) bool {
		p := leaf
		if node.Droppable {
			p = container
		}
		return p != nil && p(term, node, h)
	}
}

// Named returns the built-in predicate for name: "contains", "exact",
// "extension" or "files" (exact folder names, file names or extensions).
// Unknown names report false.
func Named(name string) (Predicate, bool) {
	switch strings.ToLower(name) {
	case "", "contains":
		return Contains, true
	case "exact":
		return Exact, true
	case "extension", "ext":
		return Extension, true
	case "files":
		return ByKind(Exact, AnyOf(Contains, Extension)), true
	default:
		return nil, false
	}
}
