// Package model defines the records the tree engine works on: nodes in a flat
// parent-linked collection, the open set, visible entries and drop intents.
package model

import (
	"bytes"
	"fmt"
	"strconv"
)

// ID identifies a node. Collections keyed by integers and collections keyed by
// strings both decode into ID: the JSON number 1 and the string "1" name the
// same node.
type ID string

// DefaultRootID is the implicit root used when a host does not configure one.
const DefaultRootID ID = "0"

// String returns the id as plain text.
func (id ID) String() string { return string(id) }

// IsNumeric reports whether the id is a canonical base-10 integer.
func (id ID) IsNumeric() bool {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil && strconv.FormatInt(n, 10) == string(id)
}

// MarshalJSON writes numeric ids as JSON numbers so integer-keyed files keep
// their shape on save.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsNumeric() {
		return []byte(id), nil
	}
	return []byte(strconv.Quote(string(id))), nil
}

// UnmarshalJSON accepts a JSON string or number.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("invalid id %s: %w", data, err)
		}
		*id = ID(s)
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("invalid id %s: must be a string or number", data)
	}
	*id = ID(data)
	return nil
}

// UnmarshalText lets YAML scalars of any kind decode into an ID.
func (id *ID) UnmarshalText(text []byte) error {
	*id = ID(text)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id), nil
}

// Node is one record of the flat hierarchical collection.
//
// Parent references either the configured root id or another node's id.
// Droppable marks a node that may hold children and can be expanded.
type Node struct {
	ID        ID             `json:"id" yaml:"id"`
	Parent    ID             `json:"parent" yaml:"parent"`
	Text      string         `json:"text" yaml:"text"`
	Droppable bool           `json:"droppable,omitempty" yaml:"droppable,omitempty"`
	Data      map[string]any `json:"data,omitempty" yaml:"data,omitempty"`
}

// WithParent returns a copy of n reparented under parent. Data is shared;
// the engine never writes to it.
func (n Node) WithParent(parent ID) Node {
	n.Parent = parent
	return n
}

// Entry is one visible row: a node and its depth relative to the root.
type Entry struct {
	Node  Node
	Depth int
}

// NoIndex marks a drop without a relative sibling position.
const NoIndex = -1

// DropIntent asks for SourceID to become a child of TargetID.
//
// Index is the placeholder slot among the target's current children the drag
// was hovering over, or NoIndex. Source carries the full record when the drag
// originated outside the collection (an external drop); it is ignored when
// SourceID already exists.
type DropIntent struct {
	SourceID ID
	Source   *Node
	TargetID ID
	Index    int
}

// HasIndex reports whether the intent names a sibling slot.
func (d DropIntent) HasIndex() bool { return d.Index >= 0 }

// Clone returns a copy of nodes with a fresh backing array.
func Clone(nodes []Node) []Node {
	if nodes == nil {
		return nil
	}
	out := make([]Node, len(nodes))
	copy(out, nodes)
	return out
}

// IDs returns the ids of nodes in order.
func IDs(nodes []Node) []ID {
	ids := make([]ID, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
