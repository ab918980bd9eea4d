package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vanderheijden86/arbor/pkg/engine"
	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/search"
)

type flattenOpts struct {
	open   []string
	all    bool
	depth  int
	asJSON bool
}

func (a *app) flattenCommand() *cobra.Command {
	var opts flattenOpts
	cmd := &cobra.Command{
		Use:   "flatten FILE",
		Short: "Print the visible rows of a tree",
		Long: `Print the rows a browser would show for the given open containers, in
display order, one per line with two spaces of indentation per level.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			nodes, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}
			e, err := a.newEngine(ctx, nodes, func(ec *engine.Config) error {
				ec.InitialOpen.All = ec.InitialOpen.All || opts.all
				ec.InitialOpen.IDs = append(ec.InitialOpen.IDs, toIDs(opts.open)...)
				if cmd.Flags().Changed("depth") {
					ec.StartDepth = opts.depth
				}
				return nil
			})
			if err != nil {
				return err
			}
			v, err := e.View()
			if err != nil {
				return err
			}
			if opts.asJSON {
				return writeJSON(a.out, outlineEntries(v.Entries, e.IsOpen, nil))
			}
			return writeOutline(a.out, v.Entries, e.IsOpen, nil)
		},
	}
	f := cmd.Flags()
	f.StringSliceVar(&opts.open, "open", nil, "ids of containers to open (comma separated)")
	f.BoolVar(&opts.all, "all", false, "open every container")
	f.IntVar(&opts.depth, "depth", 0, "depth assigned to the root's children")
	f.BoolVar(&opts.asJSON, "json", false, "write JSON")
	return cmd
}

type searchOpts struct {
	min         int
	max         int
	children    bool
	noParents   bool
	match       string
	asJSON      bool
	matchesOnly bool
}

// searchOutput is the JSON form of a search.
type searchOutput struct {
	Term         string         `json:"term"`
	Applied      bool           `json:"applied"`
	TotalMatches int            `json:"total_matches"`
	HasMore      bool           `json:"has_more"`
	Matches      []model.ID     `json:"matches"`
	Entries      []outlineEntry `json:"entries"`
}

func (a *app) searchCommand() *cobra.Command {
	var opts searchOpts
	cmd := &cobra.Command{
		Use:   "search FILE TERM",
		Short: "Filter a tree and print the matching rows",
		Long: `Filter a tree by TERM. Ancestors of every match are opened so all
matches are visible; matching rows are marked with an asterisk. Terms shorter
than the minimum search length apply no filter.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			nodes, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}
			e, err := a.newEngine(ctx, nodes, func(ec *engine.Config) error {
				f := cmd.Flags()
				if f.Changed("min") {
					ec.Search.MinSearchLength = opts.min
				}
				if f.Changed("max") {
					ec.Search.MaxResults = opts.max
				}
				if opts.children {
					ec.Search.IncludeChildren = true
				}
				if opts.noParents {
					ec.Search.IncludeParents = false
				}
				if f.Changed("match") {
					p, ok := search.Named(opts.match)
					if !ok {
						return fmt.Errorf("invalid --match: %q (expected contains|exact|extension|files)", opts.match)
					}
					ec.Search.Match = p
				}
				return nil
			})
			if err != nil {
				return err
			}

			res, err := e.SetSearchTerm(args[1])
			if err != nil {
				return err
			}
			v, err := e.View()
			if err != nil {
				return err
			}

			matched := make(map[model.ID]bool, len(res.Matches))
			ids := make([]model.ID, 0, len(res.Matches))
			for _, n := range res.Matches {
				matched[n.ID] = true
				ids = append(ids, n.ID)
			}
			entries := v.Entries
			if opts.matchesOnly {
				entries = entries[:0:0]
				for _, en := range v.Entries {
					if matched[en.Node.ID] {
						entries = append(entries, en)
					}
				}
			}

			if opts.asJSON {
				return writeJSON(a.out, searchOutput{
					Term:         res.Term,
					Applied:      res.Applied,
					TotalMatches: res.TotalMatches,
					HasMore:      res.HasMore,
					Matches:      ids,
					Entries:      outlineEntries(entries, e.IsOpen, matched),
				})
			}

			if !res.Applied {
				fmt.Fprintf(a.errOut, "term %q is shorter than %d characters; no filter applied\n",
					args[1], e.Config().Search.MinSearchLength)
				return nil
			}
			if err := writeOutline(a.out, entries, e.IsOpen, matched); err != nil {
				return err
			}
			more := ""
			if res.HasMore {
				more = " (limit reached, more not shown)"
			}
			fmt.Fprintf(a.errOut, "%d matches%s\n", res.TotalMatches, more)
			return nil
		},
	}
	f := cmd.Flags()
	f.IntVar(&opts.min, "min", 0, "minimum term length in characters")
	f.IntVar(&opts.max, "max", 0, "maximum number of matches")
	f.BoolVar(&opts.children, "children", false, "include descendants of matches")
	f.BoolVar(&opts.noParents, "no-parents", false, "do not include ancestors of matches")
	f.StringVar(&opts.match, "match", "", "predicate: contains, exact, extension or files")
	f.BoolVar(&opts.matchesOnly, "matches-only", false, "print only the matching rows")
	f.BoolVar(&opts.asJSON, "json", false, "write JSON")
	return cmd
}
