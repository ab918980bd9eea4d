package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/arbor/pkg/model"
)

// outlineEntry is one visible row in JSON output.
type outlineEntry struct {
	ID        model.ID `json:"id"`
	Parent    model.ID `json:"parent"`
	Text      string   `json:"text"`
	Depth     int      `json:"depth"`
	Droppable bool     `json:"droppable,omitempty"`
	Open      bool     `json:"open,omitempty"`
	Match     bool     `json:"match,omitempty"`
}

func outlineEntries(entries []model.Entry, isOpen func(model.ID) bool, matched map[model.ID]bool) []outlineEntry {
	out := make([]outlineEntry, len(entries))
	for i, e := range entries {
		out[i] = outlineEntry{
			ID:        e.Node.ID,
			Parent:    e.Node.Parent,
			Text:      e.Node.Text,
			Depth:     e.Depth,
			Droppable: e.Node.Droppable,
			Open:      e.Node.Droppable && isOpen(e.Node.ID),
			Match:     matched[e.Node.ID],
		}
	}
	return out
}

// writeOutline prints one indented line per entry. Matches are marked with
// a trailing asterisk.
func writeOutline(w io.Writer, entries []model.Entry, isOpen func(model.ID) bool, matched map[model.ID]bool) error {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(strings.Repeat("  ", max(e.Depth, 0)))
		switch {
		case !e.Node.Droppable:
			sb.WriteString("• ")
		case isOpen(e.Node.ID):
			sb.WriteString("▾ ")
		default:
			sb.WriteString("▸ ")
		}
		sb.WriteString(e.Node.Text)
		if matched[e.Node.ID] {
			sb.WriteString(" *")
		}
		sb.WriteString("\n")
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = w.Write(append(data, '\n'))
	return err
}

func toIDs(ss []string) []model.ID {
	ids := make([]model.ID, 0, len(ss))
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			ids = append(ids, model.ID(s))
		}
	}
	return ids
}
