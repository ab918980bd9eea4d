package search

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"pgregory.net/rapid"

	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/testutil"
)

// files:
//
//	1 Docs
//	  2 report.docx
//	  3 Archive
//	    4 old_report.docx
//	5 photo.jpg
func files() []model.Node {
	return []model.Node{
		{ID: "1", Parent: "0", Text: "Docs", Droppable: true},
		{ID: "2", Parent: "1", Text: "report.docx"},
		{ID: "3", Parent: "1", Text: "Archive", Droppable: true},
		{ID: "4", Parent: "3", Text: "old_report.docx"},
		{ID: "5", Parent: "0", Text: "photo.jpg"},
	}
}

func mustSearch(t *testing.T, nodes []model.Node, term string, opts Options) Result {
	t.Helper()
	res, err := Search(nodes, term, opts)
	if err != nil {
		t.Fatalf("Search(%q): %v", term, err)
	}
	return res
}

// TestSearchBelowMinimum covers the "a" with minimum 2 case.
func TestSearchBelowMinimum(t *testing.T) {
	nodes := files()
	res := mustSearch(t, nodes, "a", DefaultOptions())
	if len(res.Matches) != 0 || len(res.OpenIDs) != 0 || res.HasMore || res.Applied {
		t.Errorf("unexpected result %+v", res)
	}
	if !slices.Equal(model.IDs(res.FilteredTree), model.IDs(nodes)) {
		t.Errorf("FilteredTree = %v, want the input", model.IDs(res.FilteredTree))
	}

	empty := mustSearch(t, nodes, "", DefaultOptions())
	if len(empty.FilteredTree) != len(nodes) || empty.Applied {
		t.Errorf("empty term result %+v", empty)
	}
}

// TestSearchCountsRunes verifies the minimum length is measured in runes.
func TestSearchCountsRunes(t *testing.T) {
	nodes := []model.Node{{ID: "1", Parent: "0", Text: "é"}}
	opts := DefaultOptions()
	if res := mustSearch(t, nodes, "é", opts); res.Applied {
		t.Error("single rune term should not search")
	}
	opts.MinSearchLength = 1
	if res := mustSearch(t, nodes, "é", opts); res.TotalMatches != 1 {
		t.Errorf("TotalMatches = %d, want 1", res.TotalMatches)
	}
}

func TestSearchIncludesParents(t *testing.T) {
	res := mustSearch(t, files(), "old", DefaultOptions())
	if got := model.IDs(res.Matches); !slices.Equal(got, []model.ID{"4"}) {
		t.Errorf("Matches = %v", got)
	}
	if got := model.IDs(res.FilteredTree); !slices.Equal(got, []model.ID{"1", "3", "4"}) {
		t.Errorf("FilteredTree = %v", got)
	}
	if !slices.Equal(res.OpenIDs, []model.ID{"1", "3", "4"}) {
		t.Errorf("OpenIDs = %v", res.OpenIDs)
	}
}

func TestSearchWithoutParents(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeParents = false
	res := mustSearch(t, files(), "REPORT", opts)
	if got := model.IDs(res.FilteredTree); !slices.Equal(got, []model.ID{"2", "4"}) {
		t.Errorf("FilteredTree = %v", got)
	}
}

func TestSearchIncludesChildren(t *testing.T) {
	opts := DefaultOptions()
	opts.IncludeChildren = true
	res := mustSearch(t, files(), "docs", opts)
	if got := model.IDs(res.FilteredTree); !slices.Equal(got, []model.ID{"1", "2", "3", "4"}) {
		t.Errorf("FilteredTree = %v", got)
	}
	if res.TotalMatches != 1 {
		t.Errorf("TotalMatches = %d, want 1", res.TotalMatches)
	}
}

// TestSearchHasMore verifies the cap only reports more when it cut the scan.
func TestSearchHasMore(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxResults = 1
	res := mustSearch(t, files(), "report", opts)
	if res.TotalMatches != 1 || !res.HasMore {
		t.Errorf("TotalMatches=%d HasMore=%v, want 1 true", res.TotalMatches, res.HasMore)
	}

	opts.MaxResults = 2
	res = mustSearch(t, files(), "report", opts)
	if res.TotalMatches != 2 {
		t.Errorf("TotalMatches = %d, want 2", res.TotalMatches)
	}
	if !res.HasMore {
		t.Error("scan stopped at node 4 with node 5 unscanned, want HasMore")
	}

	res = mustSearch(t, files(), "photo", opts)
	if res.HasMore {
		t.Error("HasMore set without reaching the cap")
	}

	last := mustSearch(t, files(), "jpg", Options{MaxResults: 1, MinSearchLength: 2})
	if last.HasMore {
		t.Error("cap reached on the last node must not report more")
	}
}

func TestSearchConfiguration(t *testing.T) {
	for _, opts := range []Options{
		{MaxResults: 0},
		{MaxResults: -3},
		{MaxResults: 10, MinSearchLength: -1},
	} {
		_, err := New(opts)
		if !errors.Is(err, ErrSearchConfiguration) {
			t.Errorf("New(%+v) = %v, want ErrSearchConfiguration", opts, err)
		}
		var ce *ConfigurationError
		if !errors.As(err, &ce) || ce.Field == "" {
			t.Errorf("expected field name in %v", err)
		}
	}
}

func TestSearchGraphFault(t *testing.T) {
	nodes := []model.Node{
		{ID: "a", Parent: "b", Text: "loop a", Droppable: true},
		{ID: "b", Parent: "a", Text: "loop b", Droppable: true},
	}
	if _, err := Search(nodes, "loop", DefaultOptions()); err == nil {
		t.Error("expected a graph consistency error")
	}
}

func TestFileTreeSearch(t *testing.T) {
	nodes := testutil.NewDefault().FileTree(50)
	opts := DefaultOptions()
	opts.Match, _ = Named("files")

	res := mustSearch(t, nodes, ".jpg", opts)
	if res.TotalMatches != 10 {
		t.Errorf("jpg matches = %d, want 10", res.TotalMatches)
	}
	for _, m := range res.Matches {
		if !strings.HasSuffix(m.Text, ".jpg") {
			t.Errorf("unexpected match %q", m.Text)
		}
	}
	if !slices.Contains(res.OpenIDs, "root") || !slices.Contains(res.OpenIDs, "category-1") {
		t.Errorf("ancestors missing from OpenIDs: %v", res.OpenIDs)
	}

	folders := mustSearch(t, nodes, "videos", opts)
	if got := model.IDs(folders.Matches); !slices.Equal(got, []model.ID{"category-2"}) {
		t.Errorf("folder matches = %v", got)
	}
}

// TestSearchThresholdProperty checks that short terms never filter.
func TestSearchThresholdProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		nodes := testutil.NodesGen(model.DefaultRootID, 20).Draw(t, "nodes")
		minLen := rapid.IntRange(0, 5).Draw(t, "min")
		term := rapid.StringMatching(`[a-c]{0,6}`).Draw(t, "term")

		opts := DefaultOptions()
		opts.MinSearchLength = minLen
		res, err := Search(nodes, term, opts)
		if err != nil {
			t.Fatalf("Search: %v", err)
		}
		short := term == "" || len(term) < minLen
		if short {
			if res.TotalMatches != 0 || len(res.FilteredTree) != len(nodes) {
				t.Fatalf("short term %q filtered: %+v", term, res)
			}
			return
		}
		// Every match is kept with its whole ancestor chain.
		kept := map[model.ID]bool{}
		for _, id := range res.OpenIDs {
			kept[id] = true
		}
		parent := map[model.ID]model.ID{}
		for _, n := range nodes {
			parent[n.ID] = n.Parent
		}
		for _, m := range res.Matches {
			for p := m.Parent; p != model.DefaultRootID; p = parent[p] {
				if !kept[p] {
					t.Fatalf("ancestor %s of %s missing", p, m.ID)
				}
			}
		}
	})
}

func TestPredicates(t *testing.T) {
	h := Helpers{}
	leaf := model.Node{Text: "Photo.JPG"}
	folder := model.Node{Text: "Photos", Droppable: true}

	tests := []struct {
		name string
		p    Predicate
		term string
		node model.Node
		want bool
	}{
		{"contains", Contains, "oto", leaf, true},
		{"exact miss", Exact, "photo", leaf, false},
		{"exact hit", Exact, "photos", folder, true},
		{"extension dot", Extension, ".jpg", leaf, true},
		{"extension bare", Extension, "jpg", leaf, true},
		{"extension none", Extension, "", folder, false},
		{"any of", AnyOf(Exact, Extension), "jpg", leaf, true},
		{"by kind folder", ByKind(Exact, Contains), "photo", folder, false},
		{"by kind leaf", ByKind(Exact, Contains), "photo", leaf, true},
		{"by kind nil", ByKind(nil, Contains), "photos", folder, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p(tt.term, tt.node, h); got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	if _, ok := Named("regex"); ok {
		t.Error("unknown predicate name accepted")
	}
}

func TestHelpers(t *testing.T) {
	var seen []model.ID
	opts := DefaultOptions()
	opts.Match = func(term string, n model.Node, h Helpers) bool {
		if n.ID != "4" {
			return false
		}
		seen = model.IDs(h.Ancestors(n.ID))
		p, _ := h.Parent(n.ID)
		return p.Text == "Archive" && len(h.Descendants("1")) == 3 && len(h.Children("1")) == 2
	}
	res := mustSearch(t, files(), "zz", opts)
	if res.TotalMatches != 1 {
		t.Errorf("TotalMatches = %d, want 1", res.TotalMatches)
	}
	if !slices.Equal(seen, []model.ID{"3", "1"}) {
		t.Errorf("Ancestors = %v", seen)
	}
}

func BenchmarkSearch(b *testing.B) {
	nodes := testutil.NewDefault().FileTree(10000)
	s, _ := New(DefaultOptions())
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = s.Search(nodes, "report_1")
	}
}
