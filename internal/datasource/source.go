// Package datasource reads and writes node snapshots. A snapshot is a flat
// list of nodes stored as JSON, commented JSON, YAML, CBOR or a SQLite table;
// the format is chosen from the file extension.
package datasource

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/tree"
)

// Format identifies a snapshot encoding.
type Format string

const (
	FormatUnknown Format = ""
	FormatJSON    Format = "json"
	FormatJSONC   Format = "jsonc"
	FormatYAML    Format = "yaml"
	FormatCBOR    Format = "cbor"
	FormatSQLite  Format = "sqlite"
)

// ErrUnknownFormat is returned for paths whose extension maps to no codec.
var ErrUnknownFormat = errors.New("unknown snapshot format")

// Formats lists every supported format.
func Formats() []Format {
	return []Format{FormatJSON, FormatJSONC, FormatYAML, FormatCBOR, FormatSQLite}
}

// Detect maps a file extension to its format.
func Detect(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".jsonc", ".json5":
		return FormatJSONC
	case ".yaml", ".yml":
		return FormatYAML
	case ".cbor":
		return FormatCBOR
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite
	default:
		return FormatUnknown
	}
}

// Source describes a snapshot file after inspection.
type Source struct {
	// Path is the file the snapshot was read from
	Path string `json:"path"`
	// Format is the detected encoding
	Format Format `json:"format"`
	// ModTime is the last modification time of the file
	ModTime time.Time `json:"mod_time"`
	// Size is the file size in bytes
	Size int64 `json:"size"`
	// NodeCount is the number of records read
	NodeCount int `json:"node_count"`
	// Valid is false when the file failed to load or the graph is inconsistent
	Valid bool `json:"valid"`
	// ValidationError describes why Valid is false
	ValidationError string `json:"validation_error,omitempty"`
	// Hash is the content digest of the loaded nodes
	Hash string `json:"hash,omitempty"`
}

// String returns a human-readable description of the source.
func (s Source) String() string {
	status := "valid"
	if !s.Valid {
		status = fmt.Sprintf("invalid: %s", s.ValidationError)
	}
	return fmt.Sprintf("%s (%s, mod=%s, nodes=%d, %s)",
		s.Path, s.Format, s.ModTime.Format(time.RFC3339), s.NodeCount, status)
}

// Inspect stats and loads path, then checks the graph rooted at root. Load
// failures and graph faults are reported on the Source; the error is only
// set when the file cannot be stat'ed.
func Inspect(path string, root model.ID) (Source, []model.Node, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Source{Path: path}, nil, fmt.Errorf("cannot stat %s: %w", path, err)
	}
	src := Source{
		Path:    path,
		Format:  Detect(path),
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}

	nodes, err := Load(path)
	if err != nil {
		src.ValidationError = err.Error()
		return src, nil, nil
	}
	src.NodeCount = len(nodes)
	src.Hash = tree.Hash(nodes)
	if err := tree.Validate(nodes, root); err != nil {
		src.ValidationError = err.Error()
		return src, nodes, nil
	}
	src.Valid = true
	return src, nodes, nil
}
