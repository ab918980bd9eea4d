package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/arbor/pkg/model"
)

// rowState carries what renderRow needs beyond the entry itself.
type rowState struct {
	selected bool
	picked   bool
	open     bool
	term     string
	showIDs  bool
	indent   int
	width    int
}

// expandIndicator returns the open/closed marker for a row. Leaves never
// expand, so they get a bullet.
func expandIndicator(n model.Node, open bool) string {
	if !n.Droppable {
		return "•"
	}
	if open {
		return "▾"
	}
	return "▸"
}

// renderRow renders one visible entry: indentation, indicator, text (with
// the search term highlighted) and optionally the id.
func (m Model) renderRow(e model.Entry, st rowState) string {
	t := m.theme
	width := st.width
	if width <= 0 {
		width = 80
	}
	// Reduce width by 1 to prevent terminal wrapping on the exact edge
	width--

	indent := strings.Repeat(" ", max(e.Depth, 0)*st.indent)
	lead := indent + expandIndicator(e.Node, st.open) + " "

	var suffix string
	if st.showIDs {
		suffix = " " + t.MutedText.Render("#"+string(e.Node.ID))
	}
	if st.picked {
		suffix += " " + t.Picked.Render("(moving)")
	}

	textWidth := width - lipgloss.Width(lead) - lipgloss.Width(suffix)
	text := truncate(e.Node.Text, textWidth)

	style := t.FileText
	if e.Node.Droppable {
		style = t.FolderText
	}
	var body string
	if before, match, after, ok := splitMatch(text, st.term); ok {
		body = style.Render(before) + t.MatchText.Render(match) + style.Render(after)
	} else {
		body = style.Render(text)
	}

	row := t.MutedText.Render(lead) + body + suffix
	if st.selected {
		row = t.Selected.Render(padRight(lead+text, width-lipgloss.Width(suffix))) + suffix
	}
	return t.Renderer.NewStyle().MaxWidth(width).Render(row)
}

// renderHeader returns the title bar.
func (m Model) renderHeader() string {
	width := m.width
	if width <= 0 {
		width = 80
	}
	title := fmt.Sprintf("arbor  %s  %d nodes", m.source, len(m.eng.Nodes()))
	if m.dirty {
		title += "  [modified]"
	}
	if m.eng.Faults() != nil {
		title += "  [faults]"
	}
	return m.theme.Header.Width(width).MaxWidth(width).Render(truncate(title, width-2))
}

// positionIndicator shows which rows are on screen, 1-indexed.
func positionIndicator(start, end, total int) string {
	return fmt.Sprintf("%d-%d of %d", start+1, end, total)
}

// renderEmptyState renders the view when nothing is visible.
func (m Model) renderEmptyState() string {
	t := m.theme
	var sb strings.Builder
	if m.eng.SearchTerm() != "" {
		sb.WriteString(t.MutedText.Render(fmt.Sprintf("No nodes match %q.", m.eng.SearchTerm())))
		sb.WriteString("\n")
		sb.WriteString(t.MutedText.Render("Press esc to clear the search."))
		return sb.String()
	}
	sb.WriteString(t.MutedText.Render("No nodes under the root."))
	sb.WriteString("\n")
	sb.WriteString(t.MutedText.Render("Press n to add one."))
	return sb.String()
}
