// Package search narrows a node collection to the records matching a typed
// query, plus the context needed to show them in place (their ancestors and,
// optionally, their descendants).
package search

import (
	"unicode/utf8"

	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

// Defaults applied by DefaultOptions.
const (
	DefaultMinSearchLength = 2
	DefaultMaxResults      = 1000
)

// Options configure a search.
type Options struct {
	// Match decides whether a node matches. Nil means Contains.
	Match Predicate
	// IncludeParents adds every ancestor of a match to the result.
	IncludeParents bool
	// IncludeChildren adds every descendant of a match to the result.
	IncludeChildren bool
	// MinSearchLength is the shortest term, in runes, that triggers a search.
	MinSearchLength int
	// MaxResults caps the number of direct matches.
	MaxResults int
}

// DefaultOptions returns parents included, children excluded, a two rune
// minimum and a cap of 1000 matches.
func DefaultOptions() Options {
	return Options{
		IncludeParents:  true,
		MinSearchLength: DefaultMinSearchLength,
		MaxResults:      DefaultMaxResults,
	}
}

// Validate reports the first unusable option.
func (o Options) Validate() error {
	if o.MaxResults <= 0 {
		return &ConfigurationError{Field: "max_results", Value: o.MaxResults}
	}
	if o.MinSearchLength < 0 {
		return &ConfigurationError{Field: "min_search_length", Value: o.MinSearchLength}
	}
	return nil
}

// Result is the outcome of one search.
type Result struct {
	// Term is the query that produced the result.
	Term string
	// Matches are the nodes the predicate accepted, in collection order.
	Matches []model.Node
	// OpenIDs are the ids of every node in FilteredTree, in collection
	// order. Opening them reveals all matches.
	OpenIDs []model.ID
	// FilteredTree holds matches plus their included relatives, in
	// collection order. It is the input collection itself when the term
	// is below the minimum length.
	FilteredTree []model.Node
	TotalMatches int
	// Applied is false when the term was empty or too short to search.
	Applied bool
	// HasMore is set when the result cap stopped the scan early.
	HasMore bool
}

// Searcher runs searches with validated options.
type Searcher struct {
	opts  Options
	match Predicate
}

// New validates opts once and returns a Searcher.
func New(opts Options) (*Searcher, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	match := opts.Match
	if match == nil {
		match = Contains
	}
	return &Searcher{opts: opts, match: match}, nil
}

// Options returns the options the searcher was built with.
func (s *Searcher) Options() Options { return s.opts }

// Search runs term against nodes.
func (s *Searcher) Search(nodes []model.Node, term string) (Result, error) {
	return s.SearchIndex(tree.NewIndex(nodes), nodes, term)
}

// SearchIndex is Search for callers that already hold the snapshot's index.
func (s *Searcher) SearchIndex(x *tree.Index, nodes []model.Node, term string) (Result, error) {
	if term == "" || utf8.RuneCountInString(term) < s.opts.MinSearchLength {
		return Result{Term: term, FilteredTree: nodes}, nil
	}
	defer metrics.Timer(metrics.Search)()

	h := NewHelpers(x)
	keep := make(map[model.ID]struct{})
	res := Result{Term: term, Applied: true}

	for i, n := range nodes {
		if !s.match(term, n, h) {
			continue
		}
		res.Matches = append(res.Matches, n)
		keep[n.ID] = struct{}{}

		if s.opts.IncludeParents {
			up, err := x.Ancestors(n.ID)
			if err != nil {
				return Result{}, err
			}
			for _, a := range up {
				keep[a.ID] = struct{}{}
			}
		}
		if s.opts.IncludeChildren {
			down, err := x.Descendants(n.ID)
			if err != nil {
				return Result{}, err
			}
			for _, d := range down {
				keep[d.ID] = struct{}{}
			}
		}

		if len(res.Matches) == s.opts.MaxResults {
			res.HasMore = i < len(nodes)-1
			break
		}
	}

	res.TotalMatches = len(res.Matches)
	res.FilteredTree = make([]model.Node, 0, len(keep))
	res.OpenIDs = make([]model.ID, 0, len(keep))
	for _, n := range nodes {
		if _, ok := keep[n.ID]; !ok {
			continue
		}
		// Drop the id so a duplicated record is emitted once.
		delete(keep, n.ID)
		res.FilteredTree = append(res.FilteredTree, n)
		res.OpenIDs = append(res.OpenIDs, n.ID)
	}
	return res, nil
}

// Search validates opts and runs a single search.
func Search(nodes []model.Node, term string, opts Options) (Result, error) {
	s, err := New(opts)
	if err != nil {
		return Result{}, err
	}
	return s.Search(nodes, term)
}
