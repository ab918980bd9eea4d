package ui

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/zeebo/blake3"

	"github.com/vanderheijden86/arbor/pkg/debug"
	"github.com/vanderheijden86/arbor/pkg/model"
)

// OpenState is the persisted open set of one snapshot file.
//
// File format (JSON):
//
//	{
//	  "version": 1,
//	  "source": "/home/me/tree.json",
//	  "open": ["1", "docs"]
//	}
//
// Ids that no longer exist are ignored on load. A missing or corrupt file
// means nothing is restored.
type OpenState struct {
	Version int        `json:"version"`
	Source  string     `json:"source"`
	Open    []model.ID `json:"open"`
}

// OpenStateVersion is the current schema version.
const OpenStateVersion = 1

// OpenStatePath returns where the open set of source is kept under stateDir.
// The file name is derived from the absolute source path so two snapshots
// with the same base name do not share state.
func OpenStatePath(stateDir, source string) string {
	if stateDir == "" {
		return ""
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		abs = source
	}
	sum := blake3.Sum256([]byte(abs))
	name := fmt.Sprintf("%s-%s.json", filepath.Base(abs), hex.EncodeToString(sum[:6]))
	return filepath.Join(stateDir, "open", name)
}

// LoadOpenState reads the state at path. It returns nil when there is
// nothing usable to restore.
func LoadOpenState(path string) *OpenState {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	var state OpenState
	if err := json.Unmarshal(data, &state); err != nil {
		debug.Log("invalid open state %s, ignoring: %v", path, err)
		return nil
	}
	if state.Version != OpenStateVersion {
		return nil
	}
	return &state
}

// SaveOpenState writes the open ids of source to path.
func SaveOpenState(path, source string, open []model.ID) error {
	if path == "" {
		return nil
	}
	if open == nil {
		open = []model.ID{}
	}
	data, err := json.MarshalIndent(OpenState{Version: OpenStateVersion, Source: source, Open: open}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal open state: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write open state: %w", err)
	}
	return nil
}
