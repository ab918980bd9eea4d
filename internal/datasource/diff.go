package datasource

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/vanderheijden86/arbor/pkg/model"
)

// SnapshotDiff describes how snapshot B differs from snapshot A.
type SnapshotDiff struct {
	// SourceA is the label of the first snapshot
	SourceA string `json:"source_a"`
	// SourceB is the label of the second snapshot
	SourceB string `json:"source_b"`
	// Added contains ids present in B but not in A
	Added []model.ID `json:"added,omitempty"`
	// Removed contains ids present in A but not in B
	Removed []model.ID `json:"removed,omitempty"`
	// Reparented contains nodes whose parent changed
	Reparented []Reparent `json:"reparented,omitempty"`
	// Renamed contains nodes whose text changed
	Renamed []Rename `json:"renamed,omitempty"`
	// CountA is the number of nodes in A
	CountA int `json:"count_a"`
	// CountB is the number of nodes in B
	CountB int `json:"count_b"`
}

// Reparent records a parent change for one node.
type Reparent struct {
	ID   model.ID `json:"id"`
	From model.ID `json:"from"`
	To   model.ID `json:"to"`
}

// Rename records a text change for one node.
type Rename struct {
	ID   model.ID `json:"id"`
	From string   `json:"from"`
	To   string   `json:"to"`
}

// Empty reports whether the snapshots hold the same nodes under the same
// parents with the same text.
func (d SnapshotDiff) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Reparented) == 0 && len(d.Renamed) == 0
}

const summaryListLimit = 5

// Summary returns a human-readable summary of the differences.
func (d SnapshotDiff) Summary() string {
	if d.Empty() {
		return fmt.Sprintf("Snapshots match (%d nodes each)", d.CountA)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Differences between %s and %s:\n", d.SourceA, d.SourceB)
	if d.CountA != d.CountB {
		fmt.Fprintf(&sb, "  - Count: %d vs %d\n", d.CountA, d.CountB)
	}
	list := func(n int, what string, line func(i int) string) {
		if n == 0 {
			return
		}
		fmt.Fprintf(&sb, "  - %d %s\n", n, what)
		if n <= summaryListLimit {
			for i := range n {
				fmt.Fprintf(&sb, "    - %s\n", line(i))
			}
		}
	}
	list(len(d.Added), "added", func(i int) string { return string(d.Added[i]) })
	list(len(d.Removed), "removed", func(i int) string { return string(d.Removed[i]) })
	list(len(d.Reparented), "moved", func(i int) string {
		r := d.Reparented[i]
		return fmt.Sprintf("%s: %s -> %s", r.ID, r.From, r.To)
	})
	list(len(d.Renamed), "renamed", func(i int) string {
		r := d.Renamed[i]
		return fmt.Sprintf("%s: %q -> %q", r.ID, r.From, r.To)
	})
	return sb.String()
}

// Diff compares two collections by id. The first record wins for duplicate
// ids, matching how the engine indexes them. Result lists are sorted by id.
func Diff(a, b []model.Node) SnapshotDiff {
	first := func(nodes []model.Node) map[model.ID]model.Node {
		m := make(map[model.ID]model.Node, len(nodes))
		for _, n := range nodes {
			if _, dup := m[n.ID]; !dup {
				m[n.ID] = n
			}
		}
		return m
	}
	mapA, mapB := first(a), first(b)
	d := SnapshotDiff{CountA: len(mapA), CountB: len(mapB)}

	for id := range mapA {
		if _, ok := mapB[id]; !ok {
			d.Removed = append(d.Removed, id)
		}
	}
	for id, nb := range mapB {
		na, ok := mapA[id]
		if !ok {
			d.Added = append(d.Added, id)
			continue
		}
		if na.Parent != nb.Parent {
			d.Reparented = append(d.Reparented, Reparent{ID: id, From: na.Parent, To: nb.Parent})
		}
		if na.Text != nb.Text {
			d.Renamed = append(d.Renamed, Rename{ID: id, From: na.Text, To: nb.Text})
		}
	}

	slices.Sort(d.Added)
	slices.Sort(d.Removed)
	slices.SortFunc(d.Reparented, func(x, y Reparent) int { return strings.Compare(string(x.ID), string(y.ID)) })
	slices.SortFunc(d.Renamed, func(x, y Rename) int { return strings.Compare(string(x.ID), string(y.ID)) })
	return d
}

// DiffFiles loads both snapshots concurrently and compares them.
func DiffFiles(ctx context.Context, pathA, pathB string) (SnapshotDiff, error) {
	results := LoadAll(ctx, pathA, pathB)
	for _, r := range results {
		if r.Error != nil {
			return SnapshotDiff{}, fmt.Errorf("failed to load %s: %w", r.Path, r.Error)
		}
	}
	d := Diff(results[0].Nodes, results[1].Nodes)
	d.SourceA, d.SourceB = pathA, pathB
	return d, nil
}
