// Package manifest handles joop.toml project configuration.
package manifest

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the project manifest.
const FileName = "joop.toml"

// Manifest represents a joop.toml project configuration.
type Manifest struct {
	Project Project      `toml:"project"`
	Build   BuildConfig  `toml:"build"`
	Format  FormatConfig `toml:"format"`
	Cache   CacheConfig  `toml:"cache"`

	// Dir is the directory containing the joop.toml file (set at load time).
	Dir string `toml:"-"`
}

// Project contains project metadata.
type Project struct {
	Name string `toml:"name"`
}

// BuildConfig selects inputs and where their output goes.
type BuildConfig struct {
	Sources  []string `toml:"sources"`
	RootOnly bool     `toml:"root-only"`
	Output   string   `toml:"output"`
	MSBuild  bool     `toml:"msbuild"`
}

// FormatConfig configures the output formatter.
type FormatConfig struct {
	Enabled bool   `toml:"enabled"`
	Indent  string `toml:"indent"`
}

// CacheConfig configures the build cache.
type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Load parses a joop.toml file from the given directory.
func Load(dir string) (*Manifest, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	if err := Validate(data); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}

	var m Manifest
	md, err := toml.Decode(string(data), &m)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	m.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	// Defaults
	if len(m.Build.Sources) == 0 {
		m.Build.Sources = []string{"src"}
	}
	if !md.IsDefined("format", "enabled") {
		m.Format.Enabled = true
	}
	if m.Format.Indent == "" {
		m.Format.Indent = "\t"
	}
	if !md.IsDefined("cache", "enabled") {
		m.Cache.Enabled = true
	}
	if m.Cache.Path == "" {
		m.Cache.Path = filepath.Join(".joop", "cache.db")
	}

	return &m, nil
}

// FindAndLoad walks up from startDir to find a joop.toml file,
// then loads and returns the manifest. Returns nil if no manifest is found.
func FindAndLoad(startDir string) (*Manifest, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root
			return nil, nil
		}
		dir = parent
	}
}

// SourcePaths returns absolute paths for the configured sources.
func (m *Manifest) SourcePaths() []string {
	var paths []string
	for _, s := range m.Build.Sources {
		paths = append(paths, m.resolve(s))
	}
	return paths
}

// OutputPath returns the absolute single-file output path, or "" when each
// input is written next to itself.
func (m *Manifest) OutputPath() string {
	if m.Build.Output == "" {
		return ""
	}
	return m.resolve(m.Build.Output)
}

// CachePath returns the absolute path of the build cache database.
func (m *Manifest) CachePath() string {
	return m.resolve(m.Cache.Path)
}

func (m *Manifest) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Dir, p)
}
