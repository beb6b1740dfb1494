// Package config loads bugfree.toml (or bugfree.yaml) project settings.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"bugfree/internal/diag"
	"bugfree/internal/resolve"
)

// ErrUnknownKind is returned for an emit_level key that names no
// diagnostic kind.
var ErrUnknownKind = errors.New("unknown diagnostic kind")

// FileNames are tried in order in every directory during discovery.
var FileNames = []string{"bugfree.toml", "bugfree.yaml", "bugfree.yml", ".bugfree.toml"}

// Config is the on-disk project configuration.
type Config struct {
	// EmitLevel overrides the severity per diagnostic kind, e.g.
	// unusedUse = "error".
	EmitLevel    map[string]string `toml:"emit_level" yaml:"emit_level"`
	AutoFix      bool              `toml:"autofix" yaml:"autofix"`
	RootedPolicy string            `toml:"rooted_policy" yaml:"rooted_policy"`
	// Hints caps the "similar names" list in unresolved-type messages.
	Hints   int      `toml:"hints" yaml:"hints"`
	Jobs    int      `toml:"jobs" yaml:"jobs"`
	Include []string `toml:"include" yaml:"include"`
	Exclude []string `toml:"exclude" yaml:"exclude"`

	Oracle OracleConfig `toml:"oracle" yaml:"oracle"`
	Cache  CacheConfig  `toml:"cache" yaml:"cache"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-" yaml:"-"`
}

// OracleConfig selects the existence oracles.
type OracleConfig struct {
	// Roots maps a namespace prefix to a source directory, relative to the
	// config file. The empty prefix maps the whole namespace tree.
	Roots map[string]string `toml:"roots" yaml:"roots"`
	// ClassLists are files with one fully qualified class name per line.
	ClassLists []string `toml:"class_lists" yaml:"class_lists"`
	Builtins   bool     `toml:"builtins" yaml:"builtins"`
	// IndexSources parses every included file up front and registers the
	// classes it declares.
	IndexSources bool `toml:"index_sources" yaml:"index_sources"`
}

// CacheConfig controls the per-file result cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled" yaml:"enabled"`
	Dir     string `toml:"dir" yaml:"dir"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		EmitLevel:    map[string]string{},
		RootedPolicy: resolve.RootedExempt.String(),
		Hints:        3,
		Include:      []string{"**/*.php"},
		Exclude:      []string{"vendor/**", "**/.git/**"},
		Oracle: OracleConfig{
			Roots:        map[string]string{"": "src"},
			Builtins:     true,
			IndexSources: true,
		},
		Cache: CacheConfig{Enabled: true, Dir: ".bugfree-cache"},
	}
}

// Find walks up from startDir looking for a config file.
func Find(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		for _, name := range FileNames {
			candidate := filepath.Join(dir, name)
			if _, err := os.Stat(candidate); err == nil {
				return candidate, true, nil
			} else if !errors.Is(err, os.ErrNotExist) {
				return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover loads the nearest config above startDir, or the defaults when
// there is none.
func Discover(startDir string) (*Config, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		return Default(), nil
	}
	return Load(path)
}

// Load reads a config file over the defaults. The format follows the
// extension: .yaml/.yml is YAML, everything else TOML.
func Load(path string) (*Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: failed to parse YAML: %w", path, err)
		}
	default:
		meta, err := toml.Decode(string(data), cfg)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
		}
	}

	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes c to path in the format its extension selects.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	var buf bytes.Buffer
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		if err := enc.Close(); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	default:
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the fields that Load cannot check by decoding alone.
func (c *Config) Validate() error {
	if _, err := c.Levels(); err != nil {
		return err
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if c.Jobs < 0 {
		return fmt.Errorf("jobs must not be negative, got %d", c.Jobs)
	}
	if c.Hints < 0 {
		return fmt.Errorf("hints must not be negative, got %d", c.Hints)
	}
	return nil
}

// Levels merges EmitLevel over the default levels.
func (c *Config) Levels() (diag.Levels, error) {
	levels := diag.DefaultLevels()
	keys := make([]string, 0, len(c.EmitLevel))
	for k := range c.EmitLevel {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		kind, ok := diag.ParseKind(key)
		if !ok {
			return nil, fmt.Errorf("emit_level: %w %q", ErrUnknownKind, key)
		}
		sev, err := diag.ParseSeverity(c.EmitLevel[key])
		if err != nil {
			return nil, fmt.Errorf("emit_level.%s: %w", key, err)
		}
		levels[kind] = sev
	}
	return levels, nil
}

// Policy parses RootedPolicy.
func (c *Config) Policy() (resolve.RootedPolicy, error) {
	return resolve.ParseRootedPolicy(c.RootedPolicy)
}

// Dir is the directory relative paths are resolved against.
func (c *Config) Dir() string {
	if c.Path == "" {
		return "."
	}
	return filepath.Dir(c.Path)
}

// Abs resolves p against Dir unless it is already absolute.
func (c *Config) Abs(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Dir(), filepath.FromSlash(p))
}
