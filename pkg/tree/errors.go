package tree

import (
	"errors"
	"fmt"

	"github.com/vanderheijden86/arbor/pkg/model"
)

var (
	// ErrInvalidMove is returned when a drop would create a cycle, changes
	// nothing, or references a node that does not exist.
	ErrInvalidMove = errors.New("invalid move")

	// ErrGraphConsistency is returned when the collection holds a cycle, a
	// dangling parent or another fault traversal cannot resolve.
	ErrGraphConsistency = errors.New("graph consistency error")
)

// MoveReason says why a move was rejected.
type MoveReason string

const (
	ReasonSelfDrop        MoveReason = "self_drop"
	ReasonRootSource      MoveReason = "root_source"
	ReasonIntoDescendant  MoveReason = "into_descendant"
	ReasonMissingSource   MoveReason = "missing_source"
	ReasonMissingTarget   MoveReason = "missing_target"
	ReasonNotDroppable    MoveReason = "target_not_droppable"
	ReasonNoOp            MoveReason = "no_op"
	ReasonDeniedByHandler MoveReason = "denied"
)

// InvalidMoveError describes a rejected drop. It matches ErrInvalidMove.
type InvalidMoveError struct {
	Source model.ID
	Target model.ID
	Reason MoveReason
}

func (e *InvalidMoveError) Error() string {
	return fmt.Sprintf("invalid move %s -> %s: %s", e.Source, e.Target, e.Reason)
}

// Is makes errors.Is(err, ErrInvalidMove) hold.
func (e *InvalidMoveError) Is(target error) bool { return target == ErrInvalidMove }

// NewInvalidMove builds an InvalidMoveError for the intent.
func NewInvalidMove(intent model.DropIntent, reason MoveReason) *InvalidMoveError {
	return &InvalidMoveError{Source: intent.SourceID, Target: intent.TargetID, Reason: reason}
}

// FaultKind classifies a graph consistency fault.
type FaultKind string

const (
	FaultCycle         FaultKind = "cycle"
	FaultDangling      FaultKind = "dangling_parent"
	FaultDuplicateID   FaultKind = "duplicate_id"
	FaultRootCollision FaultKind = "root_collision"
)

// GraphConsistencyError reports a data-quality fault in a supplied
// collection. It matches ErrGraphConsistency.
type GraphConsistencyError struct {
	ID     model.ID
	Kind   FaultKind
	Detail string
}

func (e *GraphConsistencyError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("graph consistency: %s at node %s", e.Kind, e.ID)
	}
	return fmt.Sprintf("graph consistency: %s at node %s: %s", e.Kind, e.ID, e.Detail)
}

// Is makes errors.Is(err, ErrGraphConsistency) hold.
func (e *GraphConsistencyError) Is(target error) bool { return target == ErrGraphConsistency }
