package testutil

import (
	"slices"
	"testing"

	"github.com/vanderheijden86/arbor/pkg/model"
)

// AssertNodeCount verifies the expected number of nodes.
func AssertNodeCount(t testing.TB, nodes []model.Node, expected int) {
	t.Helper()
	if len(nodes) != expected {
		t.Errorf("expected %d nodes, got %d", expected, len(nodes))
	}
}

// AssertNoDuplicateIDs verifies all node IDs are unique.
func AssertNoDuplicateIDs(t testing.TB, nodes []model.Node) {
	t.Helper()
	seen := make(map[model.ID]bool, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			t.Errorf("duplicate node ID: %s", n.ID)
		}
		seen[n.ID] = true
	}
}

// AssertParentsResolve verifies every parent is root or an existing node.
func AssertParentsResolve(t testing.TB, nodes []model.Node, root model.ID) {
	t.Helper()
	ids := make(map[model.ID]bool, len(nodes))
	for _, n := range nodes {
		ids[n.ID] = true
	}
	for _, n := range nodes {
		if n.Parent != root && !ids[n.Parent] {
			t.Errorf("node %s has unknown parent %s", n.ID, n.Parent)
		}
	}
}

// AssertEntryIDs verifies the visible rows are exactly want, in order.
func AssertEntryIDs(t testing.TB, entries []model.Entry, want ...model.ID) {
	t.Helper()
	got := EntryIDs(entries)
	if !slices.Equal(got, want) {
		t.Errorf("entries = %v, want %v", got, want)
	}
}

// AssertSameNodes verifies both collections hold the same records regardless
// of order.
func AssertSameNodes(t testing.TB, got, want []model.Node) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d nodes, want %d", len(got), len(want))
	}
	byID := make(map[model.ID]model.Node, len(want))
	for _, n := range want {
		byID[n.ID] = n
	}
	for _, n := range got {
		w, ok := byID[n.ID]
		if !ok {
			t.Errorf("unexpected node %s", n.ID)
			continue
		}
		if n.Parent != w.Parent || n.Text != w.Text || n.Droppable != w.Droppable {
			t.Errorf("node %s = %+v, want %+v", n.ID, n, w)
		}
	}
}

// EntryIDs returns the ids of visible rows in order.
func EntryIDs(entries []model.Entry) []model.ID {
	ids := make([]model.ID, len(entries))
	for i, e := range entries {
		ids[i] = e.Node.ID
	}
	return ids
}

// ChildOrder returns the ids under parent in collection order.
func ChildOrder(nodes []model.Node, parent model.ID) []model.ID {
	var ids []model.ID
	for _, n := range nodes {
		if n.Parent == parent {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
