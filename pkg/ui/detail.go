package ui

import (
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/vanderheijden86/arbor/pkg/model"
)

// DescriptionKey is the data field rendered as markdown in the detail pane.
const DescriptionKey = "description"

func newMarkdownRenderer(width int) *glamour.TermRenderer {
	if width < 20 {
		width = 20
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil
	}
	return r
}

// detailMarkdown builds the markdown document shown for n: its text, id,
// parent, the description field and the remaining data as a list.
func detailMarkdown(n model.Node, path []model.Node) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", n.Text)
	fmt.Fprintf(&sb, "- **id:** `%s`\n", n.ID)
	fmt.Fprintf(&sb, "- **parent:** `%s`\n", n.Parent)
	if len(path) > 0 {
		names := make([]string, len(path))
		for i, p := range path {
			names[len(path)-1-i] = p.Text
		}
		fmt.Fprintf(&sb, "- **path:** %s\n", strings.Join(names, " / "))
	}
	if n.Droppable {
		sb.WriteString("- **folder**\n")
	}

	if desc, ok := n.Data[DescriptionKey].(string); ok && desc != "" {
		sb.WriteString("\n")
		sb.WriteString(desc)
		sb.WriteString("\n")
	}

	keys := make([]string, 0, len(n.Data))
	for k := range n.Data {
		if k != DescriptionKey {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	if len(keys) > 0 {
		sb.WriteString("\n## Data\n\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "- **%s:** %v\n", k, n.Data[k])
		}
	}
	return sb.String()
}

// renderDetail renders the selected node's detail pane.
func (m Model) renderDetail(width, height int) string {
	n, ok := m.selectedNode()
	if !ok {
		return ""
	}
	path, _ := m.eng.Index().Ancestors(n.ID)
	doc := detailMarkdown(n, path)

	out := doc
	if m.md != nil {
		if rendered, err := m.md.Render(doc); err == nil {
			out = strings.TrimSpace(rendered)
		}
	}
	lines := strings.Split(out, "\n")
	if len(lines) > height-2 && height > 2 {
		lines = lines[:height-2]
	}
	return m.theme.Detail.Width(width - 2).Render(strings.Join(lines, "\n"))
}
