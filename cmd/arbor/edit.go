package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/arbor/internal/datasource"
	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/ui"
)

func (a *app) moveCommand() *cobra.Command {
	var (
		index   int
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "move FILE SOURCE TARGET",
		Short: "Move a node under a new parent",
		Long: `Reparent SOURCE under TARGET, which must be a container or the root.
With --index the node is placed before TARGET's child at that position; the
default appends it after the last child. The file is rewritten in place unless
--out is given.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			nodes, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}
			e, err := a.newEngine(ctx, nodes, nil)
			if err != nil {
				return err
			}

			intent := model.DropIntent{
				SourceID: model.ID(args[1]),
				TargetID: model.ID(args[2]),
				Index:    index,
			}
			out, err := e.Drop(intent)
			if err != nil {
				return err
			}

			dest := args[0]
			if outPath != "" {
				dest = outPath
			}
			if err := datasource.Save(dest, out); err != nil {
				return err
			}
			loggerFromContext(ctx).Debug("saved snapshot", "path", dest, "nodes", len(out))
			fmt.Fprintf(a.out, "moved %s into %s\n", intent.SourceID, intent.TargetID)
			return nil
		},
	}
	cmd.Flags().IntVar(&index, "index", model.NoIndex, "position among the target's children (-1 appends)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the result here instead of FILE")
	return cmd
}

func (a *app) addCommand() *cobra.Command {
	var (
		in      ui.NewNodeInput
		parent  string
		id      string
		outPath string
	)
	cmd := &cobra.Command{
		Use:   "add FILE",
		Short: "Add a node",
		Long: `Add a node under --parent (the root by default). When --text is not
given an interactive form asks for the fields. New nodes get a random UUID
unless --id is set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			nodes, err := a.load(ctx, args[0])
			if err != nil {
				return err
			}
			e, err := a.newEngine(ctx, nodes, nil)
			if err != nil {
				return err
			}

			in.Parent = model.ID(parent)
			if in.Text == "" {
				if err := a.askNode(nodes, a.root(), &in); err != nil {
					return err
				}
			}
			if in.Parent == "" {
				in.Parent = a.root()
			}
			if id == "" {
				id = uuid.NewString()
			}
			if _, exists := e.Index().Node(model.ID(id)); exists {
				return fmt.Errorf("node %s already exists", id)
			}
			n := in.Node(model.ID(id))
			if n.Text == "" {
				return fmt.Errorf("text is required")
			}

			out, err := e.Drop(model.DropIntent{Source: &n, TargetID: in.Parent, Index: model.NoIndex})
			if err != nil {
				return err
			}
			dest := args[0]
			if outPath != "" {
				dest = outPath
			}
			if err := datasource.Save(dest, out); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "added %s %q under %s\n", n.ID, n.Text, in.Parent)
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Text, "text", "", "node text")
	f.StringVar(&parent, "parent", "", "parent id (default the root)")
	f.BoolVar(&in.Droppable, "folder", false, "make the node a container")
	f.StringVar(&in.Description, "description", "", "markdown description stored in data.description")
	f.StringVar(&id, "id", "", "node id (default a random UUID)")
	f.StringVarP(&outPath, "out", "o", "", "write the result here instead of FILE")
	return cmd
}
