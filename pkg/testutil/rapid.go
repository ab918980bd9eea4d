package testutil

import (
	"fmt"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/arbor/pkg/model"
)

// NodesGen draws valid collections of up to maxSize nodes under root. Parents
// always resolve to the root or an earlier container, and the records are
// permuted so that collection order and tree order differ.
func NodesGen(root model.ID, maxSize int) *rapid.Generator[[]model.Node] {
	return rapid.Custom(func(t *rapid.T) []model.Node {
		size := rapid.IntRange(0, maxSize).Draw(t, "size")
		nodes := make([]model.Node, 0, size)
		containers := []model.ID{root}
		for i := 0; i < size; i++ {
			id := model.ID(fmt.Sprintf("n%d", i))
			parent := rapid.SampledFrom(containers).Draw(t, "parent")
			droppable := rapid.Bool().Draw(t, "droppable")
			nodes = append(nodes, model.Node{
				ID:        id,
				Parent:    parent,
				Text:      rapid.StringMatching(`[a-cA-C]{0,3}`).Draw(t, "text"),
				Droppable: droppable,
			})
			if droppable {
				containers = append(containers, id)
			}
		}
		return rapid.Permutation(nodes).Draw(t, "order")
	})
}

// OpenSetGen draws an open set over a subset of the ids in nodes. One flag
// per node is drawn as a single slice so an empty collection still consumes
// data.
func OpenSetGen(nodes []model.Node) *rapid.Generator[model.OpenSet] {
	return rapid.Custom(func(t *rapid.T) model.OpenSet {
		flags := rapid.SliceOfN(rapid.Bool(), len(nodes), len(nodes)).Draw(t, "open")
		open := model.NewOpenSet()
		for i, n := range nodes {
			if flags[i] {
				open.Add(n.ID)
			}
		}
		return open
	})
}

// Containers returns the droppable nodes of a collection.
func Containers(nodes []model.Node) []model.Node {
	var out []model.Node
	for _, n := range nodes {
		if n.Droppable {
			out = append(out, n)
		}
	}
	return out
}
