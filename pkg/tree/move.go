package tree

import (
	"slices"

	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/model"
)

// Move returns a new collection in which the intent's source has become a
// child of its target. The input slice is left untouched; on error the
// caller keeps its current snapshot.
//
// With a sorted policy only the source's Parent changes: sibling order is
// derived at render time. With explicit ordering the source record is also
// relocated so that, among the target's children, it lands in the slot named
// by intent.Index.
//
// A source absent from nodes is inserted when intent.Source carries its
// record (a drag that started outside the tree).
func Move(nodes []model.Node, intent model.DropIntent, root model.ID, p SortPolicy) ([]model.Node, error) {
	defer metrics.Timer(metrics.Move)()

	if intent.SourceID == "" && intent.Source != nil {
		intent.SourceID = intent.Source.ID
	}
	if intent.SourceID == intent.TargetID {
		return nil, NewInvalidMove(intent, ReasonSelfDrop)
	}
	// The root has no record of its own and cannot be moved or inserted.
	if intent.SourceID == root {
		return nil, NewInvalidMove(intent, ReasonRootSource)
	}

	x := NewIndex(nodes)
	src, existing := x.Node(intent.SourceID)
	if !existing {
		if intent.Source == nil || intent.Source.ID != intent.SourceID {
			return nil, NewInvalidMove(intent, ReasonMissingSource)
		}
		src = *intent.Source
	}

	if err := checkTarget(x, intent, root, existing); err != nil {
		return nil, err
	}

	if p.Sorted() {
		if existing && src.Parent == intent.TargetID {
			return nil, NewInvalidMove(intent, ReasonNoOp)
		}
		out := model.Clone(nodes)
		if !existing {
			return append(out, src.WithParent(intent.TargetID)), nil
		}
		pos, _ := x.Position(src.ID)
		out[pos] = out[pos].WithParent(intent.TargetID)
		return out, nil
	}

	work := nodes
	if !existing {
		work = append(model.Clone(nodes), src)
		x = NewIndex(work)
	}
	from, to := destination(x, len(work), src.ID, intent.TargetID, intent.Index)
	if existing && src.Parent == intent.TargetID && from == to {
		return nil, NewInvalidMove(intent, ReasonNoOp)
	}

	out := make([]model.Node, 0, len(work))
	out = append(out, work[:from]...)
	out = append(out, work[from+1:]...)
	out = append(out, model.Node{})
	copy(out[to+1:], out[to:])
	out[to] = work[from].WithParent(intent.TargetID)

	// Siblings need not be contiguous in the collection, so a record can
	// change offset while the target's child order stays the same.
	if existing && src.Parent == intent.TargetID && slices.Equal(x.ChildIDs(intent.TargetID), childIDs(out, intent.TargetID)) {
		return nil, NewInvalidMove(intent, ReasonNoOp)
	}
	return out, nil
}

func childIDs(nodes []model.Node, parent model.ID) []model.ID {
	var ids []model.ID
	for _, n := range nodes {
		if n.Parent == parent {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// DestinationIndex reports where an explicit-order move of source into
// target at slot would take the source record: its current collection
// offset and the offset it will occupy afterwards. ok is false when source
// is not in nodes.
func DestinationIndex(nodes []model.Node, source, target model.ID, slot int) (from, to int, ok bool) {
	x := NewIndex(nodes)
	if !x.Has(source) {
		return 0, 0, false
	}
	from, to = destination(x, len(nodes), source, target, slot)
	return from, to, true
}

// checkTarget rejects targets that cannot receive the source.
func checkTarget(x *Index, intent model.DropIntent, root model.ID, existing bool) error {
	if intent.TargetID == root {
		return nil
	}
	target, ok := x.Node(intent.TargetID)
	if !ok {
		return NewInvalidMove(intent, ReasonMissingTarget)
	}
	if !target.Droppable {
		return NewInvalidMove(intent, ReasonNotDroppable)
	}
	if !existing {
		return nil
	}
	below, err := x.IsAncestor(intent.SourceID, intent.TargetID)
	if err != nil {
		return err
	}
	if below {
		return NewInvalidMove(intent, ReasonIntoDescendant)
	}
	return nil
}

// destination maps a sibling slot to collection offsets. Slots count the
// target's current children, the source included when it is one of them.
// Slot k lands before child k; a slot past the end, or NoIndex, lands right
// after the last child, or at the end of the collection when there are no
// children. The returned to is an offset into the collection with the
// source already removed.
func destination(x *Index, size int, source, target model.ID, slot int) (from, to int) {
	from, _ = x.Position(source)
	siblings := x.ChildIDs(target)

	switch {
	case len(siblings) == 0:
		to = size
	case slot >= 0 && slot < len(siblings):
		to, _ = x.Position(siblings[slot])
	default:
		to, _ = x.Position(siblings[len(siblings)-1])
		to++
	}
	if from < to {
		to--
	}
	return from, to
}
