// Package config handles dexlink.toml build configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// FileName is the configuration file looked up by FindAndLoad.
const FileName = "dexlink.toml"

// Config represents a dexlink.toml build configuration.
type Config struct {
	Output Output `toml:"output"`
	Log    Log    `toml:"log"`

	// Dir is the directory containing the dexlink.toml file (set at load time).
	Dir string `toml:"-"`
}

// Output configures what a build writes.
type Output struct {
	Path     string `toml:"path"`
	Annotate bool   `toml:"annotate"`
	Width    int    `toml:"width"`
	// Layout is "text" or "cbor".
	Layout string `toml:"layout"`
}

type Log struct {
	Verbosity int    `toml:"verbosity"`
	File      string `toml:"file"`
}

// Default returns the configuration used when no dexlink.toml exists.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.Output.Path == "" {
		c.Output.Path = "out.dex"
	}
	if c.Output.Width <= 0 {
		c.Output.Width = 79
	}
	if c.Output.Layout == "" {
		c.Output.Layout = "text"
	}
}

// Validate rejects values the build cannot act on.
func (c *Config) Validate() error {
	switch c.Output.Layout {
	case "text", "cbor":
	default:
		return fmt.Errorf("output.layout must be \"text\" or \"cbor\", got %q", c.Output.Layout)
	}
	if c.Log.Verbosity < 0 {
		return fmt.Errorf("log.verbosity must not be negative, got %d", c.Log.Verbosity)
	}
	return nil
}

// OutputPath resolves the output path against the configuration directory.
func (c *Config) OutputPath() string {
	if filepath.IsAbs(c.Output.Path) || c.Dir == "" {
		return c.Output.Path
	}
	return filepath.Join(c.Dir, c.Output.Path)
}

// LogFile returns the log file path, or nil to log to stderr.
func (c *Config) LogFile() *string {
	if c.Log.File == "" {
		return nil
	}
	path := c.Log.File
	if !filepath.IsAbs(path) && c.Dir != "" {
		path = filepath.Join(c.Dir, path)
	}
	return &path
}

// Load parses a dexlink.toml file from the given directory.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	var c Config
	md, err := toml.Decode(string(data), &c)
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%s: unknown key %s", path, undecoded[0])
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &c, nil
}

// FindAndLoad walks up from startDir to find a dexlink.toml file, then loads
// and returns it. Returns the defaults if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
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
			return Default(), nil
		}
		dir = parent
	}
}
