package tree

import (
	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/model"
)

// Index is the id lookup structure derived from one snapshot: node by id,
// parent by id and children by id. It is built fresh for every snapshot and
// never updated in place.
//
// When an id occurs more than once the first record wins; Validate reports
// the duplicate.
type Index struct {
	nodes    map[model.ID]model.Node
	parents  map[model.ID]model.ID
	children map[model.ID][]model.ID
	position map[model.ID]int
}

// NewIndex builds the index in one pass over nodes.
func NewIndex(nodes []model.Node) *Index {
	defer metrics.Timer(metrics.IndexBuild)()

	x := &Index{
		nodes:    make(map[model.ID]model.Node, len(nodes)),
		parents:  make(map[model.ID]model.ID, len(nodes)),
		children: make(map[model.ID][]model.ID),
		position: make(map[model.ID]int, len(nodes)),
	}
	for i, n := range nodes {
		if _, dup := x.nodes[n.ID]; dup {
			continue
		}
		x.nodes[n.ID] = n
		x.parents[n.ID] = n.Parent
		x.position[n.ID] = i
		x.children[n.Parent] = append(x.children[n.Parent], n.ID)
	}
	return x
}

// Len returns the number of distinct ids.
func (x *Index) Len() int { return len(x.nodes) }

// Has reports whether id has a record.
func (x *Index) Has(id model.ID) bool {
	_, ok := x.nodes[id]
	return ok
}

// Node returns the record for id.
func (x *Index) Node(id model.ID) (model.Node, bool) {
	n, ok := x.nodes[id]
	return n, ok
}

// ParentID returns the parent id recorded for id.
func (x *Index) ParentID(id model.ID) (model.ID, bool) {
	p, ok := x.parents[id]
	return p, ok
}

// Parent returns the parent record of id. The root has no record, so direct
// children of the root report false.
func (x *Index) Parent(id model.ID) (model.Node, bool) {
	p, ok := x.parents[id]
	if !ok {
		return model.Node{}, false
	}
	return x.Node(p)
}

// Position returns the collection offset of id's record.
func (x *Index) Position(id model.ID) (int, bool) {
	i, ok := x.position[id]
	return i, ok
}

// ChildIDs returns the ids whose parent is id, in collection order. The
// returned slice must not be modified.
func (x *Index) ChildIDs(id model.ID) []model.ID {
	return x.children[id]
}

// Children returns the child records of id in collection order.
func (x *Index) Children(id model.ID) []model.Node {
	ids := x.children[id]
	out := make([]model.Node, 0, len(ids))
	for _, c := range ids {
		out = append(out, x.nodes[c])
	}
	return out
}

// Ancestors walks parent links from id, nearest first, until it reaches a
// parent without a record (the root, or a dangling reference). A revisited
// id means the collection holds a cycle.
func (x *Index) Ancestors(id model.ID) ([]model.Node, error) {
	var out []model.Node
	seen := map[model.ID]struct{}{id: {}}
	cur := id
	for steps := 0; steps <= len(x.nodes); steps++ {
		p, ok := x.parents[cur]
		if !ok {
			return out, nil
		}
		pn, ok := x.nodes[p]
		if !ok {
			return out, nil
		}
		if _, dup := seen[p]; dup {
			return out, &GraphConsistencyError{ID: p, Kind: FaultCycle, Detail: "parent chain of " + id.String() + " loops"}
		}
		seen[p] = struct{}{}
		out = append(out, pn)
		cur = p
	}
	return out, &GraphConsistencyError{ID: id, Kind: FaultCycle, Detail: "parent chain exceeds collection size"}
}

// Descendants returns every node below id in depth-first pre-order.
func (x *Index) Descendants(id model.ID) ([]model.Node, error) {
	var out []model.Node
	seen := map[model.ID]struct{}{id: {}}
	stack := reversed(x.children[id])
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, dup := seen[cur]; dup {
			return out, &GraphConsistencyError{ID: cur, Kind: FaultCycle, Detail: "reached twice below " + id.String()}
		}
		seen[cur] = struct{}{}
		out = append(out, x.nodes[cur])
		stack = append(stack, reversed(x.children[cur])...)
	}
	return out, nil
}

// IsAncestor reports whether ancestor appears on id's parent chain.
func (x *Index) IsAncestor(ancestor, id model.ID) (bool, error) {
	chain, err := x.Ancestors(id)
	for _, n := range chain {
		if n.ID == ancestor {
			return true, nil
		}
	}
	return false, err
}

func reversed(ids []model.ID) []model.ID {
	out := make([]model.ID, len(ids))
	for i, id := range ids {
		out[len(ids)-1-i] = id
	}
	return out
}
