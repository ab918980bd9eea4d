// Package export writes the visible outline of a tree to static files:
// SVG and PNG pictures, a markdown list or a Mermaid graph.
package export

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/model"
)

// Format is an export output format.
type Format string

const (
	FormatSVG      Format = "svg"
	FormatPNG      Format = "png"
	FormatMarkdown Format = "md"
	FormatMermaid  Format = "mermaid"
)

var (
	// ErrNoEntries is returned when there is nothing to draw.
	ErrNoEntries = errors.New("no entries to export")
	// ErrUnsupportedFormat is returned for unknown formats.
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// Options controls Export.
type Options struct {
	Path    string        // Output path; format inferred from extension when Format empty
	Format  Format        // If empty, inferred from Path
	Title   string        // Optional title rendered in the header
	Entries []model.Entry // Visible rows, as produced by the flattener
	Open    func(id model.ID) bool
	Hash    string // Snapshot digest for provenance
}

// FormatFor infers the format from a file extension. Paths without an
// extension default to SVG.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".svg", "":
		return FormatSVG, nil
	case ".png":
		return FormatPNG, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".mmd", ".mermaid":
		return FormatMermaid, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// Export renders opts.Entries to opts.Path.
func Export(opts Options) error {
	defer metrics.Timer(metrics.Export)()

	if len(opts.Entries) == 0 {
		return ErrNoEntries
	}
	if opts.Path == "" {
		return fmt.Errorf("output path is required")
	}

	format := Format(strings.ToLower(strings.TrimPrefix(string(opts.Format), ".")))
	if format == "" {
		f, err := FormatFor(opts.Path)
		if err != nil {
			return err
		}
		format = f
		if filepath.Ext(opts.Path) == "" {
			opts.Path += ".svg"
		}
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create parent dir: %w", err)
	}

	switch format {
	case FormatPNG:
		return savePNG(opts.Path, buildLayout(opts))
	case FormatSVG, FormatMarkdown, FormatMermaid:
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}

	file, err := os.Create(opts.Path)
	if err != nil {
		return err
	}
	defer file.Close()

	switch format {
	case FormatSVG:
		err = WriteSVG(file, opts)
	case FormatMarkdown:
		err = WriteMarkdown(file, opts)
	default:
		err = WriteMermaid(file, opts)
	}
	if err != nil {
		return err
	}
	return file.Close()
}

// --- layout computation ----------------------------------------------------

type layoutRow struct {
	ID     model.ID
	Text   string
	Folder bool
	Open   bool
	Depth  int
	Parent int // row index of the parent, -1 at the top level
	X, Y   float64
}

type layoutResult struct {
	Rows    []layoutRow
	Width   int
	Height  int
	Header  float64
	Summary summaryInfo
}

type summaryInfo struct {
	Title   string
	Hash    string
	Rows    int
	Folders int
	Depth   int
}

const (
	padding      = 24.0
	headerHeight = 84.0
	rowHeight    = 22.0
	indentWidth  = 20.0
	charWidth    = 7.0 // basicfont.Face7x13 advance
	maxTextRunes = 60
)

// buildLayout places one row per entry and links each row to the nearest
// preceding row one level up.
func buildLayout(opts Options) layoutResult {
	rows := make([]layoutRow, 0, len(opts.Entries))
	var stack []int // row index per depth
	maxDepth, folders := 0, 0
	widest := 0.0

	for i, e := range opts.Entries {
		depth := max(e.Depth, 0)
		parent := -1
		if depth > 0 && depth <= len(stack) {
			parent = stack[depth-1]
		}
		if depth < len(stack) {
			stack = stack[:depth]
		}
		stack = append(stack, i)

		open := false
		if opts.Open != nil {
			open = opts.Open(e.Node.ID)
		}
		text := truncate(e.Node.Text, maxTextRunes)
		r := layoutRow{
			ID:     e.Node.ID,
			Text:   text,
			Folder: e.Node.Droppable,
			Open:   open,
			Depth:  depth,
			Parent: parent,
			X:      padding + float64(depth)*indentWidth,
			Y:      padding + headerHeight + float64(i)*rowHeight,
		}
		rows = append(rows, r)

		if e.Node.Droppable {
			folders++
		}
		maxDepth = max(maxDepth, depth)
		widest = max(widest, r.X+16+float64(len([]rune(text)))*charWidth)
	}

	width := max(int(widest+padding), 480)
	height := max(int(padding*2+headerHeight+float64(len(rows))*rowHeight), 240)

	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Tree Outline"
	}
	return layoutResult{
		Rows:   rows,
		Width:  width,
		Height: height,
		Header: headerHeight,
		Summary: summaryInfo{
			Title:   title,
			Hash:    opts.Hash,
			Rows:    len(rows),
			Folders: folders,
			Depth:   maxDepth,
		},
	}
}

// --- helpers ---------------------------------------------------------------

func truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
