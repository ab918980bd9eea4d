package testutil

import (
	"slices"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/arbor/pkg/model"
)

func TestGeneratorDeterministic(t *testing.T) {
	a := New(DefaultConfig()).Random(50)
	b := New(DefaultConfig()).Random(50)
	if !slices.EqualFunc(a, b, func(x, y model.Node) bool {
		return x.ID == y.ID && x.Parent == y.Parent && x.Text == y.Text && x.Droppable == y.Droppable
	}) {
		t.Error("same seed produced different collections")
	}
}

func TestChain(t *testing.T) {
	nodes := NewDefault().Chain(4)
	AssertNodeCount(t, nodes, 4)
	AssertParentsResolve(t, nodes, model.DefaultRootID)
	if nodes[0].Parent != model.DefaultRootID {
		t.Errorf("first parent = %s", nodes[0].Parent)
	}
	if nodes[3].Parent != nodes[2].ID || nodes[3].Droppable {
		t.Errorf("unexpected tail %+v", nodes[3])
	}
}

func TestTree(t *testing.T) {
	nodes := NewDefault().Tree(3, 2)
	AssertNodeCount(t, nodes, 2+4+8)
	AssertNoDuplicateIDs(t, nodes)
	AssertParentsResolve(t, nodes, model.DefaultRootID)
}

func TestRandomIsValid(t *testing.T) {
	nodes := NewDefault().Random(200)
	AssertNodeCount(t, nodes, 200)
	AssertNoDuplicateIDs(t, nodes)
	AssertParentsResolve(t, nodes, model.DefaultRootID)

	byID := map[model.ID]model.Node{}
	for _, n := range nodes {
		byID[n.ID] = n
	}
	for _, n := range nodes {
		if n.Parent == model.DefaultRootID {
			continue
		}
		if !byID[n.Parent].Droppable {
			t.Errorf("node %s sits under leaf %s", n.ID, n.Parent)
		}
	}
}

func TestFileTree(t *testing.T) {
	nodes := NewDefault().FileTree(20)
	AssertNodeCount(t, nodes, 1+5+4+20)
	AssertNoDuplicateIDs(t, nodes)
	AssertParentsResolve(t, nodes, model.DefaultRootID)

	if got := ChildOrder(nodes, "root"); len(got) != 5 {
		t.Errorf("categories = %v", got)
	}
}

func TestCycleHasNoRootPath(t *testing.T) {
	for _, n := range NewDefault().Cycle(3) {
		if n.Parent == model.DefaultRootID {
			t.Errorf("node %s reaches root", n.ID)
		}
	}
}

func TestOpenSetGen(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodes := NodesGen(model.DefaultRootID, 10).Draw(t, "nodes")
		open := OpenSetGen(nodes).Draw(t, "open")
		for _, id := range open.IDs() {
			if !slices.Contains(model.IDs(nodes), id) {
				t.Fatalf("open id %s not in collection", id)
			}
		}
	})
}

func TestOpenSetGenEmpty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		if open := OpenSetGen(nil).Draw(t, "open"); len(open) != 0 {
			t.Fatalf("open set over no nodes has %d ids", len(open))
		}
	})
}
