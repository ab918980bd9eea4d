// Package engine ties the tree algorithms into one reactive pipeline: the
// host supplies a snapshot, an open set, a search term and a viewport, and
// asks for a View. Each derived structure is cached against the inputs it
// reads and recomputed lazily on the next View after one of them changes.
//
// An Engine is not safe for concurrent use; hosts serialize calls.
package engine

import (
	"github.com/vanderheijden86/arbor/pkg/debug"
	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/search"
	"github.com/vanderheijden86/arbor/pkg/tree"
	"github.com/vanderheijden86/arbor/pkg/window"
)

// InitialOpen seeds the open set when the engine is created.
type InitialOpen struct {
	// All opens every droppable node.
	All bool
	IDs []model.ID
}

// Config configures an Engine.
type Config struct {
	RootID     model.ID
	StartDepth int
	Sort       tree.SortPolicy
	Search     search.Options
	Sizing     window.Sizing

	InitialOpen InitialOpen

	// CanDrag vetoes drags of existing nodes. Nil has no opinion.
	CanDrag func(node model.Node) Decision
	// CanDrop vetoes drops. It sees the current snapshot. Nil has no
	// opinion.
	CanDrop func(nodes []model.Node, intent model.DropIntent) Decision

	// OnChangeOpen receives the open ids, sorted, after every change.
	OnChangeOpen func(open []model.ID)
	// OnSearchResults receives every freshly computed search that met the
	// minimum term length.
	OnSearchResults func(res search.Result)
}

// DefaultConfig returns root "0", depth 0, text sorting with containers
// first, the default search options and windowing disabled.
func DefaultConfig() Config {
	return Config{
		RootID: model.DefaultRootID,
		Sort:   tree.DefaultSortPolicy(),
		Search: search.DefaultOptions(),
		Sizing: window.DefaultSizing(),
	}
}

// View is what the host renders.
type View struct {
	// Entries is the full visible sequence.
	Entries []model.Entry
	// Window is the slice to materialize, or nil when windowing is bypassed
	// and every entry should be rendered.
	Window *window.Window
	// Search is the active search, or nil without one.
	Search *search.Result
}

// Engine holds the inputs and cached derivations for one tree.
type Engine struct {
	cfg      Config
	searcher *search.Searcher
	virt     *window.Virtualizer

	nodes    []model.Node
	hash     string
	faults   error
	open     model.OpenSet
	term     string
	viewport window.Viewport

	rev     revisions
	index   memo[uint64, *tree.Index]
	result  memo[searchKey, search.Result]
	visible memo[visibleKey, []model.Entry]
	win     memo[windowKey, window.Window]
}

// New validates cfg and builds an engine over nodes. Search options are
// checked once here; structural faults in nodes are not fatal and are
// available from Faults.
func New(cfg Config, nodes []model.Node) (*Engine, error) {
	if cfg.RootID == "" {
		cfg.RootID = model.DefaultRootID
	}
	s, err := search.New(cfg.Search)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		searcher: s,
		virt:     window.NewVirtualizer(cfg.Sizing),
		open:     model.NewOpenSet(cfg.InitialOpen.IDs...),
		index:    memo[uint64, *tree.Index]{metric: metrics.IndexCache},
		result:   memo[searchKey, search.Result]{metric: metrics.SearchCache},
		visible:  memo[visibleKey, []model.Entry]{metric: metrics.VisibleCache},
		win:      memo[windowKey, window.Window]{metric: metrics.WindowCache},
	}
	e.install(nodes)
	if cfg.InitialOpen.All {
		e.open.Add(e.droppableIDs()...)
	}
	return e, nil
}

// Config returns the engine configuration.
func (e *Engine) Config() Config { return e.cfg }

// Nodes returns the current snapshot. Callers must not modify it.
func (e *Engine) Nodes() []model.Node { return e.nodes }

// Faults returns the structural problems found in the current snapshot.
func (e *Engine) Faults() error { return e.faults }

// SearchTerm returns the current term.
func (e *Engine) SearchTerm() string { return e.term }

// Viewport returns the current viewport.
func (e *Engine) Viewport() window.Viewport { return e.viewport }

// SortPolicy returns the active sort policy.
func (e *Engine) SortPolicy() tree.SortPolicy { return e.cfg.Sort }

// Sizing returns the active windowing configuration.
func (e *Engine) Sizing() window.Sizing { return e.cfg.Sizing }

// Index returns the index of the current snapshot.
func (e *Engine) Index() *tree.Index {
	x, _ := e.index.get(e.rev.nodes, func() (*tree.Index, error) {
		return tree.NewIndex(e.nodes), nil
	})
	return x
}

func (e *Engine) install(nodes []model.Node) {
	e.nodes = nodes
	e.hash = tree.Hash(nodes)
	e.faults = tree.Validate(nodes, e.cfg.RootID)
	e.rev.nodes++
	if e.virt.Prune(e.Index().Has) {
		e.rev.measure++
	}
	debug.LogIf(e.faults != nil, "snapshot has faults: %v", e.faults)
}

// SetNodes replaces the snapshot. A snapshot identical to the current one is
// ignored. The snapshot is installed even when it has structural faults;
// those are returned so the host can report them. An active search is
// rerun against the new snapshot.
func (e *Engine) SetNodes(nodes []model.Node) error {
	if tree.Hash(nodes) == e.hash {
		return e.faults
	}
	e.install(nodes)
	if e.term != "" {
		// Errors resurface from View.
		_, _ = e.applySearch()
	}
	return e.faults
}

// SetSearchTerm changes the query. When the term is long enough the
// matches' ancestors are opened and OnSearchResults fires.
func (e *Engine) SetSearchTerm(term string) (search.Result, error) {
	if term == e.term {
		return e.searchResult()
	}
	e.term = term
	e.rev.term++
	return e.applySearch()
}

func (e *Engine) applySearch() (search.Result, error) {
	res, err := e.searchResult()
	if err != nil || !res.Applied {
		return res, err
	}
	debug.Log("search %q: %d matches (more=%v)", res.Term, res.TotalMatches, res.HasMore)
	if len(res.OpenIDs) > 0 && e.open.Add(res.OpenIDs...) {
		e.openChanged()
	}
	if e.cfg.OnSearchResults != nil {
		e.cfg.OnSearchResults(res)
	}
	return res, nil
}

// SetViewport records the scroll position.
func (e *Engine) SetViewport(vp window.Viewport) {
	if vp == e.viewport {
		return
	}
	e.viewport = vp
	e.rev.viewport++
}

// SetSortPolicy changes sibling ordering.
func (e *Engine) SetSortPolicy(p tree.SortPolicy) {
	e.cfg.Sort = p
	e.rev.sort++
}

// SetSizing changes windowing configuration.
func (e *Engine) SetSizing(s window.Sizing) {
	if s == e.cfg.Sizing {
		return
	}
	e.cfg.Sizing = s
	e.virt.SetSizing(s)
	e.rev.sizing++
}

// Measure records the rendered size of a row.
func (e *Engine) Measure(id model.ID, size int) {
	if e.virt.Measure(id, size) {
		e.rev.measure++
	}
}

func (e *Engine) searchKey() searchKey {
	return searchKey{nodes: e.rev.nodes, term: e.rev.term}
}

func (e *Engine) visibleKey() visibleKey {
	return visibleKey{searchKey: e.searchKey(), open: e.rev.open, sort: e.rev.sort}
}

func (e *Engine) searchResult() (search.Result, error) {
	return e.result.get(e.searchKey(), func() (search.Result, error) {
		return e.searcher.SearchIndex(e.Index(), e.nodes, e.term)
	})
}

// View returns the visible entries, the window when windowing is active and
// the active search. The only error is a graph fault met while searching.
func (e *Engine) View() (View, error) {
	res, err := e.searchResult()
	if err != nil {
		return View{}, err
	}

	entries, _ := e.visible.get(e.visibleKey(), func() ([]model.Entry, error) {
		x := e.Index()
		if res.Applied {
			x = tree.NewIndex(res.FilteredTree)
		}
		return tree.FlattenIndex(x, e.open, e.cfg.RootID, e.cfg.StartDepth, e.cfg.Sort), nil
	})

	v := View{Entries: entries}
	if res.Applied {
		v.Search = &res
	}
	if window.Active(e.cfg.Sizing, len(entries)) {
		key := windowKey{
			visibleKey: e.visibleKey(),
			viewport:   e.rev.viewport,
			sizing:     e.rev.sizing,
			measure:    e.rev.measure,
		}
		w, _ := e.win.get(key, func() (window.Window, error) {
			return e.virt.Compute(entries, e.viewport), nil
		})
		v.Window = &w
	}
	return v, nil
}

func (e *Engine) droppableIDs() []model.ID {
	var ids []model.ID
	for _, n := range e.nodes {
		if n.Droppable {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
