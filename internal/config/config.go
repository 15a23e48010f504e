// Package config loads the optional .funcgraph.yaml of a repository.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/DeusData/funcgraph/internal/lang"
	"github.com/DeusData/funcgraph/internal/store"
)

// FileName is looked up in the repository root.
const FileName = ".funcgraph.yaml"

// Config holds user-overridable export settings. Unset fields fall back to
// the defaults returned by the Effective accessors.
type Config struct {
	// DBPath is the SQLite file; relative paths resolve against the repository.
	DBPath string `yaml:"db_path"`

	// Languages restricts discovery, e.g. [c, go]. Empty means all.
	Languages []string `yaml:"languages"`

	// Exclude are globs matched against file and directory names and
	// relative paths, on top of .funcgraphignore.
	Exclude []string `yaml:"exclude"`

	// ParseWorkers bounds parallel parsing. Default: number of CPUs.
	ParseWorkers *int `yaml:"parse_workers"`

	// IndexFields are the AST node properties written to the lookup index.
	// Default: type, code, functionId.
	IndexFields []string `yaml:"index_fields"`

	Log LogConfig `yaml:"log"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  *string `yaml:"level"`  // debug, info, warn, error
	Format *string `yaml:"format"` // text or json
}

// DefaultIndexFields are indexed when IndexFields is empty.
var DefaultIndexFields = []string{"type", "code", "functionId"}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{}
}

// LoadConfig reads .funcgraph.yaml from dir.
// Returns the default config if the file doesn't exist or is invalid.
func LoadConfig(dir string) *Config {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		return cfg
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Warn("config.invalid", "path", filepath.Join(dir, FileName), "err", err)
		return DefaultConfig()
	}
	return cfg
}

// EffectiveDBPath returns the database file for the repository at repoPath.
func (c *Config) EffectiveDBPath(repoPath string) string {
	switch {
	case c.DBPath == "":
		return store.DefaultPath(repoPath)
	case filepath.IsAbs(c.DBPath):
		return c.DBPath
	default:
		return filepath.Join(repoPath, c.DBPath)
	}
}

// EffectiveLanguages parses the configured language names.
func (c *Config) EffectiveLanguages() ([]lang.Language, error) {
	out := make([]lang.Language, 0, len(c.Languages))
	for _, name := range c.Languages {
		l, ok := lang.Parse(strings.ToLower(strings.TrimSpace(name)))
		if !ok {
			return nil, fmt.Errorf("unsupported language %q", name)
		}
		out = append(out, l)
	}
	return out, nil
}

// EffectiveParseWorkers returns the configured worker count, at least 1.
func (c *Config) EffectiveParseWorkers() int {
	if c.ParseWorkers != nil && *c.ParseWorkers > 0 {
		return *c.ParseWorkers
	}
	return max(runtime.NumCPU(), 1)
}

// EffectiveIndexFields returns the AST properties to index.
func (c *Config) EffectiveIndexFields() []string {
	if len(c.IndexFields) > 0 {
		return c.IndexFields
	}
	return DefaultIndexFields
}

// EffectiveLogLevel returns the configured level, or info.
func (c *Config) EffectiveLogLevel() slog.Level {
	if c.Log.Level == nil {
		return slog.LevelInfo
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(*c.Log.Level)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// EffectiveLogFormat returns "json" or "text" (the default).
func (c *Config) EffectiveLogFormat() string {
	if c.Log.Format != nil && strings.EqualFold(*c.Log.Format, "json") {
		return "json"
	}
	return "text"
}
