package engine

import (
	"github.com/vanderheijden86/arbor/pkg/debug"
	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

// Decision is a handler's verdict on a drag or drop. Only Deny vetoes;
// Allow and NoOpinion both leave the structural checks in charge.
type Decision int

const (
	NoOpinion Decision = iota
	Allow
	Deny
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case Deny:
		return "deny"
	default:
		return "no_opinion"
	}
}

// CanDrag reports whether id may be picked up: it must exist and the
// CanDrag handler must not deny it.
func (e *Engine) CanDrag(id model.ID) bool {
	n, ok := e.Index().Node(id)
	if !ok {
		return false
	}
	return e.cfg.CanDrag == nil || e.cfg.CanDrag(n) != Deny
}

func (e *Engine) veto(intent model.DropIntent) error {
	if n, ok := e.Index().Node(intent.SourceID); ok && e.cfg.CanDrag != nil && e.cfg.CanDrag(n) == Deny {
		return tree.NewInvalidMove(intent, tree.ReasonDeniedByHandler)
	}
	if e.cfg.CanDrop != nil && e.cfg.CanDrop(e.nodes, intent) == Deny {
		return tree.NewInvalidMove(intent, tree.ReasonDeniedByHandler)
	}
	return nil
}

// Drop runs the handlers and the move for intent against the current
// snapshot and returns the resulting collection. Nothing is committed: the
// host decides whether to pass the result to SetNodes.
func (e *Engine) Drop(intent model.DropIntent) ([]model.Node, error) {
	if intent.SourceID == "" && intent.Source != nil {
		intent.SourceID = intent.Source.ID
	}
	if err := e.veto(intent); err != nil {
		debug.With("drop vetoed", "source", intent.SourceID, "target", intent.TargetID)
		return nil, err
	}
	out, err := tree.Move(e.nodes, intent, e.cfg.RootID, e.cfg.Sort)
	if err != nil {
		debug.With("drop rejected", "source", intent.SourceID, "target", intent.TargetID, "err", err)
		return nil, err
	}
	return out, nil
}

// CanDrop reports whether Drop would succeed, for highlighting targets
// while a drag is in progress.
func (e *Engine) CanDrop(intent model.DropIntent) bool {
	_, err := e.Drop(intent)
	return err == nil
}
