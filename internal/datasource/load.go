package datasource

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
	"github.com/tidwall/jsonc"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/arbor/pkg/debug"
	"github.com/vanderheijden86/arbor/pkg/metrics"
	"github.com/vanderheijden86/arbor/pkg/model"
)

// Load reads the snapshot at path, dispatching on its extension.
func Load(path string) ([]model.Node, error) {
	defer metrics.Timer(metrics.Load)()

	format := Detect(path)
	if format == FormatSQLite {
		r, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		return r.LoadNodes()
	}
	if format == FormatUnknown {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	nodes, err := Decode(format, data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	debug.Log("loaded %d nodes from %s (%s)", len(nodes), path, format)
	return nodes, nil
}

// Decode parses a file-based snapshot. An empty document is an empty
// collection.
func Decode(format Format, data []byte) ([]model.Node, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []model.Node{}, nil
	}
	nodes := []model.Node{}
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &nodes); err != nil {
			return nil, err
		}
	case FormatJSONC:
		if err := json.Unmarshal(jsonc.ToJSON(data), &nodes); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &nodes); err != nil {
			return nil, err
		}
	case FormatCBOR:
		var wire []wireNode
		if err := cborDec.Unmarshal(data, &wire); err != nil {
			return nil, err
		}
		nodes = make([]model.Node, len(wire))
		for i, w := range wire {
			nodes[i] = w.node()
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	return nodes, nil
}

// Encode renders nodes in a file-based format. JSONC is written as plain
// indented JSON.
func Encode(format Format, nodes []model.Node) ([]byte, error) {
	if nodes == nil {
		nodes = []model.Node{}
	}
	switch format {
	case FormatJSON, FormatJSONC:
		data, err := json.MarshalIndent(nodes, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case FormatYAML:
		return yaml.Marshal(nodes)
	case FormatCBOR:
		wire := make([]wireNode, len(nodes))
		for i, n := range nodes {
			wire[i] = toWire(n)
		}
		return cborEnc.Marshal(wire)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Save writes nodes to path in the format its extension names. File formats
// are written atomically (temp file + rename) so watchers never see a
// partial snapshot.
func Save(path string, nodes []model.Node) error {
	start := time.Now()
	defer func() { debug.LogTiming("save "+path, time.Since(start)) }()

	format := Detect(path)
	if format == FormatSQLite {
		return SaveSQLite(path, nodes)
	}
	data, err := Encode(format, nodes)
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}

// LoadResult is the outcome of loading one path in LoadAll.
type LoadResult struct {
	Path  string
	Nodes []model.Node
	Error error
}

// LoadAll loads paths concurrently. Per-path failures are reported in the
// results, which keep the order of paths.
func LoadAll(ctx context.Context, paths ...string) []LoadResult {
	results := make([]LoadResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for i, path := range paths {
		g.Go(func() error {
			results[i].Path = path
			if err := ctx.Err(); err != nil {
				results[i].Error = err
				return nil
			}
			results[i].Nodes, results[i].Error = Load(path)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// wireNode is the CBOR record. Ids keep their native type so integer-keyed
// snapshots stay integer-keyed.
type wireNode struct {
	ID        any            `cbor:"id"`
	Parent    any            `cbor:"parent"`
	Text      string         `cbor:"text"`
	Droppable bool           `cbor:"droppable,omitempty"`
	Data      map[string]any `cbor:"data,omitempty"`
}

var (
	cborEnc, _ = cbor.CanonicalEncOptions().EncMode()
	cborDec, _ = cbor.DecOptions{
		DefaultMapType: reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
)

func wireID(id model.ID) any {
	if id.IsNumeric() {
		if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
			return n
		}
	}
	return string(id)
}

func idFromWire(v any) model.ID {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return model.ID(v)
	case uint64:
		return model.ID(strconv.FormatUint(v, 10))
	case int64:
		return model.ID(strconv.FormatInt(v, 10))
	case float64:
		return model.ID(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		return model.ID(fmt.Sprint(v))
	}
}

func toWire(n model.Node) wireNode {
	return wireNode{
		ID:        wireID(n.ID),
		Parent:    wireID(n.Parent),
		Text:      n.Text,
		Droppable: n.Droppable,
		Data:      n.Data,
	}
}

func (w wireNode) node() model.Node {
	return model.Node{
		ID:        idFromWire(w.ID),
		Parent:    idFromWire(w.Parent),
		Text:      w.Text,
		Droppable: w.Droppable,
		Data:      w.Data,
	}
}
