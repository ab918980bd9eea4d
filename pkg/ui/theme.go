package ui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
)

// Theme holds the colors and pre-built styles of the browser. Styles are
// created once so rendering a frame allocates none.
type Theme struct {
	Renderer *lipgloss.Renderer

	// Colors
	Primary   lipgloss.AdaptiveColor
	Secondary lipgloss.AdaptiveColor
	Subtext   lipgloss.AdaptiveColor
	Folder    lipgloss.AdaptiveColor
	File      lipgloss.AdaptiveColor
	Match     lipgloss.AdaptiveColor
	Success   lipgloss.AdaptiveColor
	Danger    lipgloss.AdaptiveColor

	// UI Elements
	Border    lipgloss.AdaptiveColor
	Highlight lipgloss.AdaptiveColor
	Muted     lipgloss.AdaptiveColor

	// Styles
	Base       lipgloss.Style
	Selected   lipgloss.Style
	Header     lipgloss.Style
	MutedText  lipgloss.Style
	FolderText lipgloss.Style
	FileText   lipgloss.Style
	MatchText  lipgloss.Style
	Picked     lipgloss.Style
	StatusOK   lipgloss.Style
	StatusErr  lipgloss.Style
	Detail     lipgloss.Style
}

// DefaultTheme returns the Dracula-inspired adaptive theme.
func DefaultTheme(r *lipgloss.Renderer) Theme {
	t := Theme{
		Renderer: r,

		Primary:   lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}, // Purple
		Secondary: lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"}, // Gray
		Subtext:   lipgloss.AdaptiveColor{Light: "#666666", Dark: "#BFBFBF"}, // Dim
		Folder:    lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}, // Cyan
		File:      lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"},
		Match:     lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}, // Orange
		Success:   lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"},
		Danger:    lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"},

		Border:    lipgloss.AdaptiveColor{Light: "#AAAAAA", Dark: "#44475A"},
		Highlight: lipgloss.AdaptiveColor{Light: "#E0E0E0", Dark: "#44475A"},
		Muted:     lipgloss.AdaptiveColor{Light: "#555555", Dark: "#6272A4"},
	}

	t.Base = r.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#000000", Dark: "#F8F8F2"})

	t.Selected = r.NewStyle().
		Background(t.Highlight).
		Bold(true)

	t.Header = r.NewStyle().
		Background(t.Primary).
		Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#282A36"}).
		Bold(true).
		Padding(0, 1)

	t.MutedText = r.NewStyle().Foreground(t.Muted)
	t.FolderText = r.NewStyle().Foreground(t.Folder).Bold(true)
	t.FileText = r.NewStyle().Foreground(t.File)
	t.MatchText = r.NewStyle().Foreground(t.Match).Underline(true)
	t.Picked = r.NewStyle().Foreground(t.Primary).Italic(true)
	t.StatusOK = r.NewStyle().Foreground(t.Success)
	t.StatusErr = r.NewStyle().Foreground(t.Danger).Bold(true)
	t.Detail = r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Padding(0, 1)

	return t
}

// TestTheme returns a theme suitable for use in tests.
func TestTheme() Theme {
	return DefaultTheme(lipgloss.NewRenderer(os.Stdout))
}
