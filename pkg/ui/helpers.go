package ui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// truncateRunesHelper truncates a string to max visual width (cells), adding suffix if needed.
// Uses go-runewidth to handle wide characters correctly.
func truncateRunesHelper(s string, maxWidth int, suffix string) string {
	if maxWidth <= 0 {
		return ""
	}

	width := runewidth.StringWidth(s)
	if width <= maxWidth {
		return s
	}

	suffixWidth := runewidth.StringWidth(suffix)
	if suffixWidth > maxWidth {
		return runewidth.Truncate(suffix, maxWidth, "")
	}

	targetWidth := maxWidth - suffixWidth
	return runewidth.Truncate(s, targetWidth, "") + suffix
}

// padRight pads s with spaces to width cells.
func padRight(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}

// truncate truncates s to maxWidth cells with an ellipsis.
func truncate(s string, maxWidth int) string {
	return truncateRunesHelper(s, maxWidth, "…")
}

// splitMatch splits s around the first case-insensitive occurrence of term.
func splitMatch(s, term string) (before, match, after string, ok bool) {
	if term == "" {
		return s, "", "", false
	}
	lower, lowerTerm := strings.ToLower(s), strings.ToLower(term)
	if len(lower) != len(s) {
		// Case folding changed byte offsets; skip highlighting.
		return s, "", "", false
	}
	i := strings.Index(lower, lowerTerm)
	if i < 0 {
		return s, "", "", false
	}
	j := i + len(lowerTerm)
	return s[:i], s[i:j], s[j:], true
}
