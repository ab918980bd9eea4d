package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

// NewNodeInput is what the add form collects.
type NewNodeInput struct {
	Text        string
	Parent      model.ID
	Droppable   bool
	Description string
}

// Node converts the input into a record with the given id.
func (in NewNodeInput) Node(id model.ID) model.Node {
	n := model.Node{ID: id, Parent: in.Parent, Text: strings.TrimSpace(in.Text), Droppable: in.Droppable}
	if d := strings.TrimSpace(in.Description); d != "" {
		n.Data = map[string]any{DescriptionKey: d}
	}
	return n
}

// isTerminal checks if stdin is connected to a terminal
func isTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// newForm creates a form with appropriate settings based on TTY detection
func newForm(groups ...*huh.Group) *huh.Form {
	form := huh.NewForm(groups...).WithTheme(huh.ThemeDracula())
	if !isTerminal() {
		form = form.WithAccessible(true)
	}
	return form
}

// parentOptions lists the root and every folder, labelled by path.
func parentOptions(nodes []model.Node, root model.ID) []huh.Option[model.ID] {
	x := tree.NewIndex(nodes)
	opts := []huh.Option[model.ID]{huh.NewOption("(top level)", root)}
	for _, n := range nodes {
		if !n.Droppable {
			continue
		}
		label := n.Text
		if path, err := x.Ancestors(n.ID); err == nil {
			for _, p := range path {
				label = p.Text + " / " + label
			}
		}
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s (%s)", label, n.ID), n.ID))
	}
	return opts
}

// RunNewNodeForm asks for the fields of in that are still empty. Fields
// already set (from flags) are kept as defaults.
func RunNewNodeForm(nodes []model.Node, root model.ID, in *NewNodeInput) error {
	if in.Parent == "" {
		in.Parent = root
	}
	form := newForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Text").
				Value(&in.Text).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("text is required")
					}
					return nil
				}),
			huh.NewSelect[model.ID]().
				Title("Parent").
				Options(parentOptions(nodes, root)...).
				Value(&in.Parent),
			huh.NewConfirm().
				Title("Folder?").
				Description("Folders can hold children").
				Value(&in.Droppable),
			huh.NewText().
				Title("Description (markdown, optional)").
				Value(&in.Description),
		),
	)
	return form.Run()
}
