package main

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/arbor/internal/datasource"
	"github.com/vanderheijden86/arbor/pkg/engine"
	"github.com/vanderheijden86/arbor/pkg/export"
	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

func (a *app) validateCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check snapshots for load errors and graph faults",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var result *multierror.Error
			sources := make([]datasource.Source, 0, len(args))
			for _, path := range args {
				src, _, err := datasource.Inspect(path, a.root())
				if err != nil {
					result = multierror.Append(result, err)
					continue
				}
				sources = append(sources, src)
				if !src.Valid {
					result = multierror.Append(result, fmt.Errorf("%s: %s", path, src.ValidationError))
				}
			}

			if asJSON {
				if err := writeJSON(a.out, sources); err != nil {
					return err
				}
			} else {
				for _, src := range sources {
					fmt.Fprintln(a.out, src.String())
				}
			}
			return result.ErrorOrNil()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "write JSON")
	return cmd
}

func (a *app) diffCommand() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "diff A B",
		Short: "Compare two snapshots",
		Long:  `Report nodes added, removed, moved to another parent or renamed between A and B.`,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := datasource.DiffFiles(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(a.out, d)
			}
			_, err = fmt.Fprintln(a.out, strings.TrimRight(d.Summary(), "\n"))
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "write JSON")
	return cmd
}

func (a *app) exportCommand() *cobra.Command {
	var (
		format string
		title  string
		term   string
		opts   flattenOpts
	)
	cmd := &cobra.Command{
		Use:   "export FILE OUT",
		Short: "Render the visible outline to SVG, PNG, markdown or Mermaid",
		Long: `Render the rows a browser would show to OUT. The format follows OUT's
extension (.svg, .png, .md, .mmd) unless --format is given. With --term the
outline is filtered first.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			nodes, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}
			e, err := a.newEngine(ctx, nodes, func(ec *engine.Config) error {
				ec.InitialOpen.All = ec.InitialOpen.All || opts.all
				ec.InitialOpen.IDs = append(ec.InitialOpen.IDs, toIDs(opts.open)...)
				return nil
			})
			if err != nil {
				return err
			}
			if term != "" {
				if _, err := e.SetSearchTerm(term); err != nil {
					return err
				}
			}
			v, err := e.View()
			if err != nil {
				return err
			}

			err = export.Export(export.Options{
				Path:    args[1],
				Format:  export.Format(format),
				Title:   title,
				Entries: v.Entries,
				Open:    e.IsOpen,
				Hash:    tree.Hash(nodes),
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %d rows to %s\n", len(v.Entries), args[1])
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&format, "format", "", "svg, png, md or mermaid (default from OUT's extension)")
	f.StringVar(&title, "title", "", "title printed in the header")
	f.StringVar(&term, "term", "", "filter by this search term first")
	f.StringSliceVar(&opts.open, "open", nil, "ids of containers to open (comma separated)")
	f.BoolVar(&opts.all, "all", false, "open every container")
	return cmd
}

// statsOutput is the JSON form of arbor stats.
type statsOutput struct {
	Nodes   int                   `json:"nodes"`
	Visible int                   `json:"visible"`
	Timings []metrics.TimingStats `json:"timings"`
	Caches  []metrics.CacheStats  `json:"caches"`
}

func (a *app) statsCommand() *cobra.Command {
	var (
		term   string
		repeat int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "stats FILE",
		Short: "Time the engine pipeline on a snapshot",
		Long: `Load FILE, open every container, flatten, window and optionally
search it, then print the collected timing and cache metrics.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			metrics.SetEnabled(true)
			metrics.ResetAll()

			nodes, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}
			visible := 0
			for range max(repeat, 1) {
				e, err := a.newEngine(ctx, nodes, func(ec *engine.Config) error {
					ec.InitialOpen.All = true
					ec.Sizing.Enabled = true
					return nil
				})
				if err != nil {
					return err
				}
				v, err := e.View()
				if err != nil {
					return err
				}
				visible = len(v.Entries)
				// A second read is served from cache.
				if _, err := e.View(); err != nil {
					return err
				}
				if term != "" {
					if _, err := e.SetSearchTerm(term); err != nil {
						return err
					}
					if _, err := e.View(); err != nil {
						return err
					}
				}
			}

			out := statsOutput{
				Nodes:   len(nodes),
				Visible: visible,
				Timings: metrics.AllTimingStats(),
				Caches:  metrics.AllCacheStats(),
			}
			if asJSON {
				return writeJSON(a.out, out)
			}

			fmt.Fprintf(a.out, "%d nodes, %d visible with everything open\n\n", out.Nodes, out.Visible)
			fmt.Fprintf(a.out, "%-16s %8s %12s %12s %12s\n", "metric", "count", "total ms", "avg ms", "max ms")
			for _, s := range out.Timings {
				fmt.Fprintf(a.out, "%-16s %8d %12.3f %12.3f %12.3f\n", s.Name, s.Count, s.TotalMs, s.AvgMs, s.MaxMs)
			}
			if len(out.Caches) > 0 {
				fmt.Fprintf(a.out, "\n%-16s %8s %8s %8s\n", "cache", "hits", "misses", "ratio")
				for _, c := range out.Caches {
					fmt.Fprintf(a.out, "%-16s %8d %8d %7.0f%%\n", c.Name, c.Hits, c.Misses, c.HitRatio*100)
				}
			}
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&term, "term", "", "also run this search")
	f.IntVar(&repeat, "repeat", 1, "number of engines to build")
	f.BoolVar(&asJSON, "json", false, "write JSON")
	return cmd
}
