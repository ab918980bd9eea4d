package model

import (
	"encoding/json"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestIDUnmarshalJSONNumberAndString(t *testing.T) {
	var nodes []Node
	raw := `[{"id":1,"parent":0,"text":"Folder","droppable":true},{"id":"a","parent":1,"text":"a.txt"}]`
	if err := json.Unmarshal([]byte(raw), &nodes); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if nodes[0].ID != "1" || nodes[0].Parent != "0" {
		t.Errorf("numeric ids decoded as %q/%q", nodes[0].ID, nodes[0].Parent)
	}
	if nodes[1].ID != "a" || nodes[1].Parent != "1" {
		t.Errorf("string ids decoded as %q/%q", nodes[1].ID, nodes[1].Parent)
	}
}

func TestIDUnmarshalJSONRejectsObjects(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte(`{"x":1}`), &id); err == nil {
		t.Error("expected error for object id")
	}
}

func TestIDMarshalJSONKeepsNumbers(t *testing.T) {
	out, err := json.Marshal([]ID{"7", "x", "007"})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got, want := string(out), `[7,"x","007"]`; got != want {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestIDUnmarshalYAML(t *testing.T) {
	var nodes []Node
	raw := "- id: 1\n  parent: 0\n  text: Folder\n  droppable: true\n- id: b\n  parent: 1\n  text: b.txt\n"
	if err := yaml.Unmarshal([]byte(raw), &nodes); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if nodes[0].ID != "1" || nodes[1].Parent != "1" || !nodes[0].Droppable {
		t.Errorf("unexpected nodes: %+v", nodes)
	}
}

func TestOpenSet(t *testing.T) {
	s := NewOpenSet("b", "a")
	if !s.Has("a") || s.Has("c") {
		t.Error("membership wrong")
	}
	if s.Add("a") {
		t.Error("adding existing id should not report change")
	}
	if !s.Add("c") {
		t.Error("adding new id should report change")
	}
	if got := s.IDs(); len(got) != 3 || got[0] != "a" || got[2] != "c" {
		t.Errorf("IDs() = %v", got)
	}
	c := s.Clone()
	c.Remove("a")
	if !s.Has("a") {
		t.Error("clone shares storage")
	}
	if s.Equal(c) {
		t.Error("sets should differ")
	}
	var nilSet OpenSet
	if nilSet.Has("a") {
		t.Error("nil set should be empty")
	}
}

func TestDropIntentHasIndex(t *testing.T) {
	if (DropIntent{Index: NoIndex}).HasIndex() {
		t.Error("NoIndex should not count as an index")
	}
	if !(DropIntent{Index: 0}).HasIndex() {
		t.Error("slot 0 is an index")
	}
}
