// Package config handles loading and saving arbor configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config:  ~/.config/arbor/config.yaml (or config.toml)
//   - State:   ~/.local/state/arbor/ (per-file open state)
//
// ARBOR_CONFIG overrides the config file location.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/arbor/pkg/engine"
	"github.com/vanderheijden86/arbor/pkg/model"
	"github.com/vanderheijden86/arbor/pkg/search"
	"github.com/vanderheijden86/arbor/pkg/tree"
	"github.com/vanderheijden86/arbor/pkg/window"
)

// EnvConfigPath overrides ConfigPath.
const EnvConfigPath = "ARBOR_CONFIG"

// TreeConfig controls the root, ordering and initial expansion.
type TreeConfig struct {
	RootID               string   `yaml:"root_id" toml:"root_id"`
	StartDepth           int      `yaml:"start_depth" toml:"start_depth"`
	Sort                 bool     `yaml:"sort" toml:"sort"`
	Compare              string   `yaml:"compare,omitempty" toml:"compare,omitempty"` // text, text_desc, id
	InsertDroppableFirst bool     `yaml:"insert_droppable_first" toml:"insert_droppable_first"`
	OpenAll              bool     `yaml:"open_all,omitempty" toml:"open_all,omitempty"`
	InitialOpen          []string `yaml:"initial_open,omitempty" toml:"initial_open,omitempty"`
}

// VirtualizeConfig controls windowing of long lists.
type VirtualizeConfig struct {
	Enabled         bool `yaml:"enabled" toml:"enabled"`
	Threshold       int  `yaml:"threshold" toml:"threshold"`
	ItemHeight      int  `yaml:"item_height" toml:"item_height"`
	Overscan        int  `yaml:"overscan" toml:"overscan"`
	ContainerHeight int  `yaml:"container_height" toml:"container_height"`
}

// SearchConfig controls filtering.
type SearchConfig struct {
	IncludeParents  bool   `yaml:"include_parents" toml:"include_parents"`
	IncludeChildren bool   `yaml:"include_children" toml:"include_children"`
	MinSearchLength int    `yaml:"min_search_length" toml:"min_search_length"`
	MaxResults      int    `yaml:"max_results" toml:"max_results"`
	Match           string `yaml:"match,omitempty" toml:"match,omitempty"` // contains, exact, extension, files
}

// UIConfig holds terminal browser preferences.
type UIConfig struct {
	ShowIDs    bool `yaml:"show_ids,omitempty" toml:"show_ids,omitempty"`
	Indent     int  `yaml:"indent,omitempty" toml:"indent,omitempty"`
	Watch      bool `yaml:"watch" toml:"watch"`
	DebounceMs int  `yaml:"debounce_ms,omitempty" toml:"debounce_ms,omitempty"`
}

// Config is the top-level configuration for arbor.
type Config struct {
	Tree       TreeConfig       `yaml:"tree" toml:"tree"`
	Virtualize VirtualizeConfig `yaml:"virtualize" toml:"virtualize"`
	Search     SearchConfig     `yaml:"search" toml:"search"`
	UI         UIConfig         `yaml:"ui" toml:"ui"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	s := window.DefaultSizing()
	o := search.DefaultOptions()
	return Config{
		Tree: TreeConfig{
			RootID:               string(model.DefaultRootID),
			Sort:                 true,
			Compare:              "text",
			InsertDroppableFirst: true,
		},
		Virtualize: VirtualizeConfig{
			Enabled:         s.Enabled,
			Threshold:       s.Threshold,
			ItemHeight:      s.ItemHeight,
			Overscan:        s.Overscan,
			ContainerHeight: s.ContainerHeight,
		},
		Search: SearchConfig{
			IncludeParents:  o.IncludeParents,
			IncludeChildren: o.IncludeChildren,
			MinSearchLength: o.MinSearchLength,
			MaxResults:      o.MaxResults,
			Match:           "contains",
		},
		UI: UIConfig{
			Indent:     2,
			Watch:      true,
			DebounceMs: 200,
		},
	}
}

// ConfigDir returns the XDG config directory for arbor.
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "arbor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "arbor")
}

// StateDir returns the XDG state directory for arbor.
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "arbor")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "state", "arbor")
}

// ConfigPath returns the config file to use: $ARBOR_CONFIG, else
// config.yaml, else config.toml when only that one exists.
func ConfigPath() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return expandHome(p)
	}
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	yamlPath := filepath.Join(dir, "config.yaml")
	tomlPath := filepath.Join(dir, "config.toml")
	if _, err := os.Stat(yamlPath); err != nil {
		if _, err := os.Stat(tomlPath); err == nil {
			return tomlPath
		}
	}
	return yamlPath
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// LoadFrom reads config from a specific path. Files ending in .toml are read
// as TOML, anything else as YAML. Keys missing from the file keep their
// defaults. Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if isTOML(path) {
		err = toml.Unmarshal(data, &cfg)
	} else {
		err = yaml.Unmarshal(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, cfg.Validate()
}

// Save writes the config to the XDG config directory.
func Save(cfg Config) error {
	path := ConfigPath()
	if path == "" {
		return fmt.Errorf("cannot determine config directory")
	}
	return SaveTo(cfg, path)
}

// SaveTo writes the config to a specific path, as TOML when the path ends in
// .toml.
func SaveTo(cfg Config, path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	var data []byte
	if isTOML(path) {
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
		data = buf.Bytes()
	} else {
		var err error
		if data, err = yaml.Marshal(cfg); err != nil {
			return fmt.Errorf("marshaling config: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Validate checks values the engine would reject, so a bad file fails at
// startup rather than on first use.
func (c Config) Validate() error {
	if err := c.SearchOptions().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if _, ok := search.Named(c.Search.Match); !ok {
		return fmt.Errorf("%w: unknown search.match %q (expected contains|exact|extension|files)", ErrInvalidConfig, c.Search.Match)
	}
	if _, ok := comparator(c.Tree.Compare); !ok {
		return fmt.Errorf("%w: unknown tree.compare %q (expected text|text_desc|id)", ErrInvalidConfig, c.Tree.Compare)
	}
	if c.Virtualize.Threshold < 0 || c.Virtualize.Overscan < 0 {
		return fmt.Errorf("%w: virtualize threshold and overscan must not be negative", ErrInvalidConfig)
	}
	if c.Tree.StartDepth < 0 {
		return fmt.Errorf("%w: tree.start_depth must not be negative", ErrInvalidConfig)
	}
	return nil
}

func comparator(name string) (tree.Comparator, bool) {
	switch strings.ToLower(name) {
	case "", "text":
		return tree.CompareText, true
	case "text_desc":
		return tree.Reverse(tree.CompareText), true
	case "id":
		return func(a, b model.Node) int { return strings.Compare(string(a.ID), string(b.ID)) }, true
	default:
		return nil, false
	}
}

// SortPolicy returns the configured sibling ordering.
func (c Config) SortPolicy() tree.SortPolicy {
	p := tree.SortPolicy{InsertDroppableFirst: c.Tree.InsertDroppableFirst}
	if c.Tree.Sort {
		p.Compare, _ = comparator(c.Tree.Compare)
	}
	return p
}

// SearchOptions returns the configured search options.
func (c Config) SearchOptions() search.Options {
	match, _ := search.Named(c.Search.Match)
	return search.Options{
		Match:           match,
		IncludeParents:  c.Search.IncludeParents,
		IncludeChildren: c.Search.IncludeChildren,
		MinSearchLength: c.Search.MinSearchLength,
		MaxResults:      c.Search.MaxResults,
	}
}

// Sizing returns the configured windowing.
func (c Config) Sizing() window.Sizing {
	return window.Sizing{
		Enabled:         c.Virtualize.Enabled,
		Threshold:       c.Virtualize.Threshold,
		ItemHeight:      c.Virtualize.ItemHeight,
		Overscan:        c.Virtualize.Overscan,
		ContainerHeight: c.Virtualize.ContainerHeight,
	}
}

// EngineConfig maps the file settings onto an engine configuration. Hooks
// are left for the caller to set.
func (c Config) EngineConfig() engine.Config {
	cfg := engine.DefaultConfig()
	if c.Tree.RootID != "" {
		cfg.RootID = model.ID(c.Tree.RootID)
	}
	cfg.StartDepth = c.Tree.StartDepth
	cfg.Sort = c.SortPolicy()
	cfg.Search = c.SearchOptions()
	cfg.Sizing = c.Sizing()
	cfg.InitialOpen.All = c.Tree.OpenAll
	for _, id := range c.Tree.InitialOpen {
		cfg.InitialOpen.IDs = append(cfg.InitialOpen.IDs, model.ID(id))
	}
	return cfg
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
