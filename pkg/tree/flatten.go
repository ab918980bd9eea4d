package tree

import (
	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/model"
)

// Flatten returns the rows currently visible under root, in pre-order.
//
// Each sibling group is ordered with the policy. A node's children are
// visible only when the node is droppable and open. Direct children of the
// root get startDepth. Every id is emitted at most once, so a malformed
// collection can neither loop nor duplicate rows.
func Flatten(nodes []model.Node, open model.OpenSet, root model.ID, startDepth int, p SortPolicy) []model.Entry {
	return FlattenIndex(NewIndex(nodes), open, root, startDepth, p)
}

// FlattenIndex is Flatten for callers that already hold the snapshot's index.
func FlattenIndex(x *Index, open model.OpenSet, root model.ID, startDepth int, p SortPolicy) []model.Entry {
	defer metrics.Timer(metrics.Flatten)()

	// An explicit stack keeps very deep trees off the goroutine stack.
	type frame struct {
		siblings []model.Node
		next     int
		depth    int
	}

	out := make([]model.Entry, 0, len(x.ChildIDs(root)))
	visited := map[model.ID]struct{}{root: {}}
	stack := []frame{{siblings: Sort(x.Children(root), p), depth: startDepth}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next >= len(top.siblings) {
			stack = stack[:len(stack)-1]
			continue
		}
		n := top.siblings[top.next]
		top.next++
		depth := top.depth

		if _, dup := visited[n.ID]; dup {
			continue
		}
		visited[n.ID] = struct{}{}
		out = append(out, model.Entry{Node: n, Depth: depth})

		if n.Droppable && open.Has(n.ID) {
			if kids := x.Children(n.ID); len(kids) > 0 {
				stack = append(stack, frame{siblings: Sort(kids, p), depth: depth + 1})
			}
		}
	}
	return out
}

// HasChildren reports whether id has at least one child record.
func (x *Index) HasChildren(id model.ID) bool {
	return len(x.children[id]) > 0
}
