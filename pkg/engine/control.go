package engine

import "github.com/vanderheijden86/arbor/pkg/model"

// Controller is the imperative surface for expanding and collapsing nodes.
// Every command returns the open ids afterwards, sorted.
type Controller struct {
	e *Engine
}

// Controller returns the command interface of e.
func (e *Engine) Controller() Controller { return Controller{e: e} }

// OpenIDs returns the open ids, sorted.
func (e *Engine) OpenIDs() []model.ID { return e.open.IDs() }

// IsOpen reports whether id is open.
func (e *Engine) IsOpen(id model.ID) bool { return e.open.Has(id) }

func (e *Engine) openChanged() {
	e.rev.open++
	if e.cfg.OnChangeOpen != nil {
		e.cfg.OnChangeOpen(e.open.IDs())
	}
}

// Open expands ids.
func (c Controller) Open(ids ...model.ID) []model.ID {
	if c.e.open.Add(ids...) {
		c.e.openChanged()
	}
	return c.e.OpenIDs()
}

// Close collapses ids.
func (c Controller) Close(ids ...model.ID) []model.ID {
	if c.e.open.Remove(ids...) {
		c.e.openChanged()
	}
	return c.e.OpenIDs()
}

// Toggle flips id.
func (c Controller) Toggle(id model.ID) []model.ID {
	if c.e.open.Has(id) {
		return c.Close(id)
	}
	return c.Open(id)
}

// OpenAll expands every droppable node of the snapshot.
func (c Controller) OpenAll() []model.ID {
	return c.Open(c.e.droppableIDs()...)
}

// CloseAll collapses everything.
func (c Controller) CloseAll() []model.ID {
	if len(c.e.open) > 0 {
		c.e.open = model.NewOpenSet()
		c.e.openChanged()
	}
	return c.e.OpenIDs()
}
