package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/vanderheijden86/arbor/internal/datasource"
	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/testutil"
	"github.com/vanderheijden86/arbor/pkg/tree"
	"github.com/vanderheijden86/arbor/pkg/ui"
)

func fixtureNodes() []model.Node {
	return []model.Node{
		{ID: "1", Parent: "0", Text: "Docs", Droppable: true},
		{ID: "2", Parent: "1", Text: "report.docx"},
		{ID: "3", Parent: "1", Text: "Archive", Droppable: true},
		{ID: "4", Parent: "3", Text: "old_report.docx"},
		{ID: "5", Parent: "0", Text: "photo.jpg"},
	}
}

func writeSnapshot(t *testing.T, name string, nodes []model.Node) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := datasource.Save(path, nodes); err != nil {
		t.Fatal(err)
	}
	return path
}

func writeConfig(t *testing.T, yaml string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

type result struct {
	out, errOut string
	err         error
}

// run executes arbor with args. A missing config file is passed unless args
// set --config, so the user's own configuration never leaks in.
func run(t *testing.T, setup func(*app), args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	a := newApp(&out, &errOut)
	a.runTUI = func(context.Context, ui.Model) error {
		t.Error("unexpected TUI launch")
		return nil
	}
	a.askNode = func([]model.Node, model.ID, *ui.NewNodeInput) error {
		t.Error("unexpected form")
		return nil
	}
	if setup != nil {
		setup(a)
	}
	if !slices.Contains(args, "--config") {
		args = append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...)
	}
	cmd := a.rootCommand()
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return result{out: out.String(), errOut: errOut.String(), err: err}
}

func TestFlatten(t *testing.T) {
	path := writeSnapshot(t, "tree.json", fixtureNodes())

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"closed", nil, "▸ Docs\n• photo.jpg\n"},
		{"open one", []string{"--open", "1"}, "▾ Docs\n  ▸ Archive\n  • report.docx\n• photo.jpg\n"},
		{"open all", []string{"--all"}, "▾ Docs\n  ▾ Archive\n    • old_report.docx\n  • report.docx\n• photo.jpg\n"},
		{"depth", []string{"--depth", "1"}, "  ▸ Docs\n  • photo.jpg\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := run(t, nil, append([]string{"flatten", path}, tt.args...)...)
			if r.err != nil {
				t.Fatal(r.err)
			}
			if r.out != tt.want {
				t.Errorf("output =\n%s\nwant\n%s", r.out, tt.want)
			}
		})
	}
}

func TestFlattenJSON(t *testing.T) {
	path := writeSnapshot(t, "tree.yaml", fixtureNodes())
	r := run(t, nil, "flatten", path, "--all", "--json")
	if r.err != nil {
		t.Fatal(r.err)
	}
	var entries []outlineEntry
	if err := json.Unmarshal([]byte(r.out), &entries); err != nil {
		t.Fatalf("decode: %v\n%s", err, r.out)
	}
	var ids []model.ID
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	if !slices.Equal(ids, []model.ID{"1", "3", "4", "2", "5"}) {
		t.Errorf("ids = %v", ids)
	}
	if entries[2].Depth != 2 || !entries[0].Open || entries[2].Open {
		t.Errorf("entries = %+v", entries)
	}
}

func TestFlattenCustomRoot(t *testing.T) {
	path := writeSnapshot(t, "tree.json", fixtureNodes())
	r := run(t, nil, "--root", "1", "flatten", path)
	if r.err != nil {
		t.Fatal(r.err)
	}
	if r.out != "▸ Archive\n• report.docx\n" {
		t.Errorf("output = %q", r.out)
	}
}

func TestSearch(t *testing.T) {
	path := writeSnapshot(t, "tree.json", fixtureNodes())

	r := run(t, nil, "search", path, "old")
	if r.err != nil {
		t.Fatal(r.err)
	}
	if want := "▾ Docs\n  ▾ Archive\n    • old_report.docx *\n"; r.out != want {
		t.Errorf("output =\n%s\nwant\n%s", r.out, want)
	}
	if !strings.Contains(r.errOut, "1 matches") {
		t.Errorf("stderr = %q", r.errOut)
	}
}

func TestSearchOptions(t *testing.T) {
	path := writeSnapshot(t, "tree.json", fixtureNodes())

	r := run(t, nil, "search", path, "archive", "--match", "exact", "--children")
	if r.err != nil {
		t.Fatal(r.err)
	}
	if want := "▾ Docs\n  ▾ Archive *\n    • old_report.docx\n"; r.out != want {
		t.Errorf("output =\n%s\nwant\n%s", r.out, want)
	}

	r = run(t, nil, "search", path, "report", "--no-parents", "--matches-only")
	if r.err != nil {
		t.Fatal(r.err)
	}
	if r.out != "" || !strings.Contains(r.errOut, "2 matches") {
		t.Errorf("without parents no match is reachable from the root: out=%q err=%q", r.out, r.errOut)
	}

	r = run(t, nil, "search", path, "report", "--max", "1", "--json")
	if r.err != nil {
		t.Fatal(r.err)
	}
	var out searchOutput
	if err := json.Unmarshal([]byte(r.out), &out); err != nil {
		t.Fatal(err)
	}
	if !out.Applied || out.TotalMatches != 1 || !out.HasMore || len(out.Matches) != 1 {
		t.Errorf("json = %+v", out)
	}
}

func TestSearchShortTerm(t *testing.T) {
	path := writeSnapshot(t, "tree.json", fixtureNodes())
	r := run(t, nil, "search", path, "o")
	if r.err != nil {
		t.Fatal(r.err)
	}
	if r.out != "" || !strings.Contains(r.errOut, "no filter applied") {
		t.Errorf("out=%q err=%q", r.out, r.errOut)
	}

	r = run(t, nil, "search", path, "o", "--min", "1", "--matches-only")
	if r.err != nil {
		t.Fatal(r.err)
	}
	if !strings.Contains(r.out, "photo.jpg *") {
		t.Errorf("--min 1 did not apply: %q", r.out)
	}
}

func TestSearchBadFlags(t *testing.T) {
	path := writeSnapshot(t, "tree.json", fixtureNodes())
	if r := run(t, nil, "search", path, "old", "--match", "fuzzy"); r.err == nil {
		t.Error("unknown predicate accepted")
	}
	if r := run(t, nil, "search", path, "old", "--max", "0"); r.err == nil {
		t.Error("zero max results accepted")
	}
}

func TestMove(t *testing.T) {
	path := writeSnapshot(t, "tree.json", fixtureNodes())

	r := run(t, nil, "move", path, "5", "1")
	if r.err != nil {
		t.Fatal(r.err)
	}
	if !strings.Contains(r.out, "moved 5 into 1") {
		t.Errorf("output = %q", r.out)
	}
	nodes, err := datasource.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	x := tree.NewIndex(nodes)
	if n, _ := x.Node("5"); n.Parent != "1" {
		t.Errorf("parent of 5 = %q", n.Parent)
	}
}

func TestMoveRejected(t *testing.T) {
	path := writeSnapshot(t, "tree.json", fixtureNodes())
	before, _ := os.ReadFile(path)

	r := run(t, nil, "move", path, "1", "3")
	if !errors.Is(r.err, tree.ErrInvalidMove) {
		t.Fatalf("err = %v, want invalid move", r.err)
	}
	after, _ := os.ReadFile(path)
	if !bytes.Equal(before, after) {
		t.Error("rejected move rewrote the file")
	}
}

func TestMoveExplicitOrder(t *testing.T) {
	nodes := []model.Node{
		{ID: "a", Parent: "0", Text: "a"},
		{ID: "b", Parent: "0", Text: "b"},
		{ID: "c", Parent: "0", Text: "c"},
	}
	path := writeSnapshot(t, "flat.json", nodes)
	out := filepath.Join(t.TempDir(), "moved.db")
	cfg := writeConfig(t, "tree:\n  sort: false\n")

	r := run(t, nil, "--config", cfg, "move", path, "c", "0", "--index", "0", "--out", out)
	if r.err != nil {
		t.Fatal(r.err)
	}
	moved, err := datasource.Load(out)
	if err != nil {
		t.Fatal(err)
	}
	if got := testutil.ChildOrder(moved, "0"); !slices.Equal(got, []model.ID{"c", "a", "b"}) {
		t.Errorf("order = %v", got)
	}
	if orig, _ := datasource.Load(path); testutil.ChildOrder(orig, "0")[0] != "a" {
		t.Error("--out modified the input")
	}
}

func TestAdd(t *testing.T) {
	path := writeSnapshot(t, "tree.json", fixtureNodes())

	r := run(t, nil, "add", path, "--text", "notes.md", "--parent", "1", "--id", "n1", "--description", "*todo*")
	if r.err != nil {
		t.Fatal(r.err)
	}
	nodes, _ := datasource.Load(path)
	n, ok := tree.NewIndex(nodes).Node("n1")
	if !ok || n.Parent != "1" || n.Text != "notes.md" || n.Data[ui.DescriptionKey] != "*todo*" {
		t.Errorf("added = %+v (found %v)", n, ok)
	}

	if r := run(t, nil, "add", path, "--text", "again", "--id", "n1"); r.err == nil {
		t.Error("duplicate id accepted")
	}
	if r := run(t, nil, "add", path, "--text", "x", "--parent", "5"); !errors.Is(r.err, tree.ErrInvalidMove) {
		t.Errorf("add under a leaf: err = %v", r.err)
	}
}

func TestAddAsksForMissingFields(t *testing.T) {
	path := writeSnapshot(t, "tree.json", fixtureNodes())
	asked := false
	r := run(t, func(a *app) {
		a.askNode = func(nodes []model.Node, root model.ID, in *ui.NewNodeInput) error {
			asked = true
			if len(nodes) != 5 || root != "0" {
				t.Errorf("form got %d nodes, root %q", len(nodes), root)
			}
			in.Text = "Photos"
			in.Droppable = true
			return nil
		}
	}, "add", path)
	if r.err != nil {
		t.Fatal(r.err)
	}
	if !asked {
		t.Fatal("form not shown")
	}

	nodes, _ := datasource.Load(path)
	var added model.Node
	for _, n := range nodes {
		if n.Text == "Photos" {
			added = n
		}
	}
	if _, err := uuid.Parse(string(added.ID)); err != nil || added.Parent != "0" || !added.Droppable {
		t.Errorf("added = %+v", added)
	}
}

func TestValidate(t *testing.T) {
	good := writeSnapshot(t, "good.json", fixtureNodes())
	bad := writeSnapshot(t, "bad.json", append(fixtureNodes(), model.Node{ID: "9", Parent: "missing", Text: "stray"}))

	r := run(t, nil, "validate", good)
	if r.err != nil {
		t.Fatal(r.err)
	}
	if !strings.Contains(r.out, "nodes=5, valid)") {
		t.Errorf("output = %q", r.out)
	}

	r = run(t, nil, "validate", good, bad, filepath.Join(t.TempDir(), "nope.json"))
	if r.err == nil {
		t.Fatal("invalid snapshot passed")
	}
	if !strings.Contains(r.err.Error(), "bad.json") || !strings.Contains(r.err.Error(), "nope.json") {
		t.Errorf("err = %v", r.err)
	}
	if !strings.Contains(r.out, "good.json") || !strings.Contains(r.out, "dangling") || strings.Contains(r.out, "nope.json") {
		t.Errorf("output = %q", r.out)
	}
}

func TestDiff(t *testing.T) {
	a := writeSnapshot(t, "a.json", fixtureNodes())
	changed := fixtureNodes()
	changed[4].Parent = "1"
	changed[1].Text = "summary.docx"
	b := writeSnapshot(t, "b.cbor", changed)

	r := run(t, nil, "diff", a, b)
	if r.err != nil {
		t.Fatal(r.err)
	}
	for _, want := range []string{"1 moved", "5: 0 -> 1", "1 renamed", `"report.docx" -> "summary.docx"`} {
		if !strings.Contains(r.out, want) {
			t.Errorf("diff missing %q:\n%s", want, r.out)
		}
	}

	r = run(t, nil, "diff", a, a)
	if r.err != nil || r.out != "Snapshots match (5 nodes each)\n" {
		t.Errorf("same file: %q %v", r.out, r.err)
	}
}

func TestExport(t *testing.T) {
	path := writeSnapshot(t, "tree.json", fixtureNodes())
	out := filepath.Join(t.TempDir(), "outline.md")

	r := run(t, nil, "export", path, out, "--all", "--title", "Files")
	if r.err != nil {
		t.Fatal(r.err)
	}
	if !strings.Contains(r.out, "wrote 5 rows") {
		t.Errorf("output = %q", r.out)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "# Files\n") || !strings.Contains(string(data), "  - **Archive**\n") {
		t.Errorf("markdown =\n%s", data)
	}

	svg := filepath.Join(t.TempDir(), "outline.svg")
	if r := run(t, nil, "export", path, svg, "--term", "old"); r.err != nil {
		t.Fatal(r.err)
	}
	data, _ = os.ReadFile(svg)
	if !bytes.Contains(data, []byte("old_report.docx")) || bytes.Contains(data, []byte("photo.jpg")) {
		t.Error("filtered export does not match the search")
	}
}

func TestStats(t *testing.T) {
	nodes := testutil.NewDefault().FileTree(200)
	path := writeSnapshot(t, "tree.json", nodes)
	r := run(t, nil, "stats", path, "--term", "report", "--json")
	if r.err != nil {
		t.Fatal(r.err)
	}
	var out statsOutput
	if err := json.Unmarshal([]byte(r.out), &out); err != nil {
		t.Fatalf("decode: %v\n%s", err, r.out)
	}
	if out.Nodes != len(nodes) || out.Visible != len(nodes) {
		t.Errorf("stats = %+v", out)
	}
	names := make(map[string]bool)
	for _, s := range out.Timings {
		names[s.Name] = true
	}
	for _, want := range []string{"snapshot_load", "index_build", "flatten", "search"} {
		if !names[want] {
			t.Errorf("missing timing %q in %v", want, names)
		}
	}

	r = run(t, nil, "stats", path)
	if r.err != nil || !strings.Contains(r.out, "flatten") {
		t.Errorf("text stats: %v\n%s", r.err, r.out)
	}
}

func TestBrowse(t *testing.T) {
	path := writeSnapshot(t, "tree.json", fixtureNodes())
	t.Setenv("XDG_STATE_HOME", t.TempDir())

	for _, args := range [][]string{{path}, {"browse", path}} {
		launched := false
		r := run(t, func(a *app) {
			a.runTUI = func(_ context.Context, m ui.Model) error {
				launched = true
				if got := len(m.Engine().Nodes()); got != 5 {
					t.Errorf("model has %d nodes", got)
				}
				return nil
			}
		}, args...)
		if r.err != nil {
			t.Fatal(r.err)
		}
		if !launched {
			t.Errorf("%v did not start the browser", args)
		}
	}

	if r := run(t, nil, "browse", filepath.Join(t.TempDir(), "missing.json")); r.err == nil {
		t.Error("missing file accepted")
	}
}

func TestConfigErrors(t *testing.T) {
	path := writeSnapshot(t, "tree.json", fixtureNodes())
	cfg := writeConfig(t, "search:\n  match: fuzzy\n")
	if r := run(t, nil, "--config", cfg, "flatten", path); r.err == nil {
		t.Error("invalid config accepted")
	}
}

func TestVersion(t *testing.T) {
	r := run(t, nil, "--version")
	if r.err != nil || !strings.HasPrefix(r.out, "arbor v") {
		t.Errorf("version: %q %v", r.out, r.err)
	}
}

func TestVerboseLogging(t *testing.T) {
	path := writeSnapshot(t, "tree.json", fixtureNodes())
	r := run(t, nil, "-v", "flatten", path)
	if r.err != nil {
		t.Fatal(r.err)
	}
	if !strings.Contains(r.errOut, "loaded snapshot") {
		t.Errorf("debug log missing: %q", r.errOut)
	}

	r = run(t, nil, "flatten", path)
	if strings.Contains(r.errOut, "loaded snapshot") {
		t.Error("debug log without --verbose")
	}
}

func TestLoggerFromContext(t *testing.T) {
	if loggerFromContext(context.Background()) == nil {
		t.Fatal("nil default logger")
	}
	l := newLogger(&bytes.Buffer{}, 0)
	if loggerFromContext(withLogger(context.Background(), l)) != l {
		t.Error("logger not carried in context")
	}
}
