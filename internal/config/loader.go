package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigDir is the directory name under ~/.config
	ConfigDir = "anu"
	// ConfigFile is the config file name
	ConfigFile = "config.json"
	// ConfigFileYAML is the alternative YAML config file name
	ConfigFileYAML = "config.yaml"
)

// FileSystem abstracts file operations for testability
type FileSystem interface {
	UserHomeDir() (string, error)
	ReadFile(path string) ([]byte, error)
}

// ConfigFileReader implements FileSystem using the real OS for config loading
type ConfigFileReader struct{}

func (ConfigFileReader) UserHomeDir() (string, error) {
	return os.UserHomeDir()
}

func (ConfigFileReader) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader handles configuration loading with injected dependencies
type Loader struct {
	fs FileSystem
}

// NewLoader creates a production Loader using the real filesystem
func NewLoader() *Loader {
	return &Loader{fs: ConfigFileReader{}}
}

// NewLoaderWithFS creates a Loader with a custom filesystem (for testing)
func NewLoaderWithFS(fs FileSystem) *Loader {
	return &Loader{fs: fs}
}

// Dir returns ~/.config/anu, or "." when the home directory is unknown.
func (l *Loader) Dir() string {
	homeDir, err := l.fs.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, ".config", ConfigDir)
}

// Load reads ~/.config/anu/config.json, falling back to config.yaml, and
// merges it with defaults. Dotfile values override defaults.
// Returns default config if no dotfile exists.
// Returns error only for parse errors, permission issues, or validation failures.
//
// NOTE: File keys are decoded directly over the default configuration, so
// explicit zero values in the file override defaults.
func (l *Loader) Load() (*Config, error) {
	dir := l.Dir()
	for _, name := range []string{ConfigFile, ConfigFileYAML} {
		cfg, err := l.load(filepath.Join(dir, name), dir, true)
		if err == nil || !os.IsNotExist(err) {
			return cfg, err
		}
	}
	return l.finish(DefaultConfig(), dir)
}

// LoadFile reads an explicit config file. Unlike Load, a missing file is an error.
func (l *Loader) LoadFile(path string) (*Config, error) {
	return l.load(path, l.Dir(), false)
}

func (l *Loader) load(path, dir string, optional bool) (*Config, error) {
	cfg := DefaultConfig()

	data, err := l.fs.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return nil, err
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	// Decode directly into the default config struct. Present keys
	// overwrite defaults (even if zero); missing keys keep them.
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return l.finish(cfg, dir)
}

func (l *Loader) finish(cfg *Config, dir string) (*Config, error) {
	cfg.resolvePaths(dir)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolvePaths fills unset file locations under dir.
func (c *Config) resolvePaths(dir string) {
	if c.History.Path == "" {
		c.History.Path = filepath.Join(dir, "conversation_history.json")
	}
	if c.Skills.Reminders.DBPath == "" {
		c.Skills.Reminders.DBPath = filepath.Join(dir, "reminders.db")
	}
	if c.Skills.Text.IgnoreFile == "" {
		c.Skills.Text.IgnoreFile = filepath.Join(dir, "textignore")
	}
	if c.Logging.File == "" {
		c.Logging.File = filepath.Join(dir, "anu.log")
	}
}

// Load is a convenience function using the default loader
func Load() (*Config, error) {
	return NewLoader().Load()
}
