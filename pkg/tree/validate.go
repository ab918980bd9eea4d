package tree

import (
	"github.com/hashicorp/go-multierror"

	"github.com/vanderheijden86/arbor/pkg/model"
)

// Validate checks a collection against the tree invariants and returns every
// fault it finds, or nil. Faults are reported, never repaired: a silent fix
// could hide corrupted host data.
//
// Checked: a record claiming the root id, duplicate ids, parents that are
// neither the root nor an existing node, and parent cycles (reported once
// per cycle).
func Validate(nodes []model.Node, root model.ID) error {
	var result *multierror.Error

	seen := make(map[model.ID]struct{}, len(nodes))
	for _, n := range nodes {
		if n.ID == root {
			result = multierror.Append(result, &GraphConsistencyError{ID: n.ID, Kind: FaultRootCollision})
		}
		if _, dup := seen[n.ID]; dup {
			result = multierror.Append(result, &GraphConsistencyError{ID: n.ID, Kind: FaultDuplicateID})
		}
		seen[n.ID] = struct{}{}
	}

	x := NewIndex(nodes)
	for _, n := range nodes {
		if n.Parent == root {
			continue
		}
		if !x.Has(n.Parent) {
			result = multierror.Append(result, &GraphConsistencyError{
				ID: n.ID, Kind: FaultDangling, Detail: "parent " + n.Parent.String() + " not found",
			})
		}
	}

	for _, id := range findCycles(nodes, x, root) {
		result = multierror.Append(result, &GraphConsistencyError{ID: id, Kind: FaultCycle})
	}

	return result.ErrorOrNil()
}

// findCycles returns one id per parent cycle, in collection order.
func findCycles(nodes []model.Node, x *Index, root model.ID) []model.ID {
	const (
		unvisited = iota
		onPath
		done
	)
	state := make(map[model.ID]int, len(nodes))
	var cycles []model.ID

	for _, n := range nodes {
		if state[n.ID] != unvisited {
			continue
		}
		var path []model.ID
		cur := n.ID
		for {
			if cur == root || !x.Has(cur) {
				break
			}
			s := state[cur]
			if s == onPath {
				cycles = append(cycles, cur)
			}
			if s != unvisited {
				break
			}
			state[cur] = onPath
			path = append(path, cur)
			cur, _ = x.ParentID(cur)
		}
		for _, id := range path {
			state[id] = done
		}
	}
	return cycles
}
