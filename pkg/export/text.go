package export

import (
	"bufio"
	"fmt"
	"hash/fnv"
	"io"
	"strings"
	"unicode"
)

// sanitizeID ensures an ID is valid for Mermaid diagrams and SVG group ids.
// Mermaid node IDs must be alphanumeric with hyphens/underscores.
func sanitizeID(id string) string {
	var sb strings.Builder
	for _, r := range id {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			sb.WriteRune(r)
		}
	}
	result := sb.String()
	if result == "" {
		return "node"
	}
	return result
}

// sanitizeMermaidText prepares text for use in Mermaid node labels.
func sanitizeMermaidText(text string) string {
	replacer := strings.NewReplacer(
		"\"", "'",
		"[", "(",
		"]", ")",
		"{", "(",
		"}", ")",
		"<", "&lt;",
		">", "&gt;",
		"|", "/",
		"`", "'",
		"\n", " ",
		"\r", "",
	)
	result := replacer.Replace(text)
	result = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, result)
	return truncate(strings.TrimSpace(result), 40)
}

// escapeMarkdown escapes characters that would start markdown syntax inside
// a list item.
func escapeMarkdown(s string) string {
	return strings.NewReplacer(
		`\`, `\\`,
		"*", `\*`,
		"_", `\_`,
		"`", "\\`",
		"[", `\[`,
		"]", `\]`,
		"#", `\#`,
	).Replace(s)
}

// WriteMarkdown writes the outline as a nested markdown list with folders in
// bold.
func WriteMarkdown(w io.Writer, opts Options) error {
	bw := bufio.NewWriter(w)
	title := opts.Title
	if strings.TrimSpace(title) == "" {
		title = "Tree Outline"
	}
	fmt.Fprintf(bw, "# %s\n\n", title)
	if opts.Hash != "" {
		fmt.Fprintf(bw, "*snapshot: %s*\n\n", opts.Hash)
	}
	for _, e := range opts.Entries {
		text := escapeMarkdown(e.Node.Text)
		if e.Node.Droppable {
			text = "**" + text + "**"
		}
		fmt.Fprintf(bw, "%s- %s\n", strings.Repeat("  ", max(e.Depth, 0)), text)
	}
	return bw.Flush()
}

// WriteMermaid writes the outline as a top-down Mermaid graph with one edge
// per visible parent/child pair.
func WriteMermaid(w io.Writer, opts Options) error {
	layout := buildLayout(opts)
	bw := bufio.NewWriter(w)

	bw.WriteString("graph TD\n")
	bw.WriteString("    classDef folder fill:#BD93F9,stroke:#333,color:#000\n")
	bw.WriteString("    classDef file fill:#8BE9FD,stroke:#333,color:#000\n")
	bw.WriteString("\n")

	// Deterministic, collision-free Mermaid IDs
	safe := make([]string, len(layout.Rows))
	used := make(map[string]bool, len(layout.Rows))
	for i, r := range layout.Rows {
		id := sanitizeID(string(r.ID))
		if used[id] {
			h := fnv.New32a()
			_, _ = h.Write([]byte(r.ID))
			id = fmt.Sprintf("%s_%x", id, h.Sum32())
		}
		for used[id] {
			id += "_"
		}
		used[id] = true
		safe[i] = id
	}

	for i, r := range layout.Rows {
		class := "file"
		if r.Folder {
			class = "folder"
		}
		fmt.Fprintf(bw, "    %s[\"%s\"]:::%s\n", safe[i], sanitizeMermaidText(r.Text), class)
	}
	edges := false
	for i, r := range layout.Rows {
		if r.Parent < 0 {
			continue
		}
		if !edges {
			bw.WriteString("\n")
			edges = true
		}
		fmt.Fprintf(bw, "    %s --> %s\n", safe[r.Parent], safe[i])
	}
	return bw.Flush()
}
