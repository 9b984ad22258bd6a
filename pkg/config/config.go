// Package config loads and saves woezel settings. Files ending in .toml are
// read as TOML, everything else as YAML. A missing file yields the defaults.
package config

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/glorpus-work/woezel/pkg/archive"
	"github.com/glorpus-work/woezel/pkg/errors"
	"github.com/glorpus-work/woezel/pkg/fsutil"
	"github.com/glorpus-work/woezel/pkg/index"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Settings Settings    `yaml:"settings" toml:"settings"`
	Hooks    HooksConfig `yaml:"hooks,omitempty" toml:"hooks,omitempty"`
}

// Settings represents general application settings.
type Settings struct {
	// Installation settings
	InstallPath string `yaml:"install_path" toml:"install_path"`

	// Index settings
	IndexHost string `yaml:"index_host" toml:"index_host"`
	Basket    string `yaml:"basket" toml:"basket"`

	// Extraction settings. WindowBits 0 derives the window from MemoryLimit,
	// MemoryLimit 0 uses the process soft memory limit.
	WindowBits  int   `yaml:"window_bits" toml:"window_bits"`
	MemoryLimit int64 `yaml:"memory_limit" toml:"memory_limit"`
	ChunkSize   int   `yaml:"chunk_size" toml:"chunk_size"`

	// Network settings
	DialTimeout time.Duration `yaml:"dial_timeout" toml:"dial_timeout"`

	// Output settings
	LogLevel  string `yaml:"log_level" toml:"log_level"`   // debug, info, warn, error
	LogFormat string `yaml:"log_format" toml:"log_format"` // text, json, logfmt
}

// HooksConfig holds the Tengo sources run around installs.
type HooksConfig struct {
	PreInstall  string `yaml:"pre_install,omitempty" toml:"pre_install,omitempty"`
	PostInstall string `yaml:"post_install,omitempty" toml:"post_install,omitempty"`
}

// Default configuration values.
const (
	FallbackInstallPath = "~/.local/share/woezel/lib"
	DefaultDialTimeout = 30 * time.Second

	// YAMLIndent is the number of spaces to use for YAML indentation.
	YAMLIndent = 2
)

// DefaultInstallPath is the lib directory inside the platform data
// directory, or FallbackInstallPath when that cannot be determined.
func DefaultInstallPath() string {
	dataDir, err := fsutil.GetDataDir()
	if err != nil {
		return fsutil.ExpandHome(FallbackInstallPath)
	}
	return filepath.Join(dataDir, "lib")
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Settings: Settings{
			InstallPath: DefaultInstallPath(),
			IndexHost:   index.DefaultHost,
			Basket:      index.DefaultBasket,
			ChunkSize:   fsutil.DefaultChunkSize,
			DialTimeout: DefaultDialTimeout,
			LogLevel:    "info",
			LogFormat:   "text",
		},
	}
}

// LoadConfig loads configuration from a file.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, errors.ErrEmptyConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, errors.Wrapf(err, "failed to open config file: %s", path)
	}

	return Parse(data, isTOML(path))
}

// Parse decodes configuration data, applies defaults and validates the result.
func Parse(data []byte, asTOML bool) (*Config, error) {
	var config Config
	var err error
	if asTOML {
		_, err = toml.Decode(string(data), &config)
	} else {
		err = yaml.Unmarshal(data, &config)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrConfigParse, err.Error())
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SaveConfig writes the configuration atomically, in TOML when path ends in .toml.
func (c *Config) SaveConfig(path string) error {
	if path == "" {
		return errors.ErrEmptyConfigPath
	}
	if err := os.MkdirAll(filepath.Dir(path), fsutil.DirModeDefault); err != nil {
		return errors.Wrap(err, "failed to create config directory")
	}

	var buf bytes.Buffer
	if isTOML(path) {
		if err := toml.NewEncoder(&buf).Encode(c); err != nil {
			return errors.Wrap(err, "failed to encode config")
		}
	} else {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(YAMLIndent)
		if err := enc.Encode(c); err != nil {
			return errors.Wrap(err, "failed to encode config")
		}
		_ = enc.Close()
	}

	return fsutil.WriteFileAtomic(path, buf.Bytes(), fsutil.FileModeDefault)
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c == nil {
		return errors.ErrConfigValidation
	}
	s := c.Settings
	if s.InstallPath == "" {
		return errors.Wrap(errors.ErrConfigValidation, "install_path cannot be empty")
	}
	if strings.Contains(s.IndexHost, "/") {
		return errors.Wrapf(errors.ErrConfigValidation, "index_host %q must be a bare host name", s.IndexHost)
	}
	if s.WindowBits != 0 && (s.WindowBits < archive.MinWindowBits || s.WindowBits > archive.MaxWindowBits) {
		return errors.Wrapf(errors.ErrConfigValidation, "window_bits must be between %d and %d, got %d",
			archive.MinWindowBits, archive.MaxWindowBits, s.WindowBits)
	}
	if s.MemoryLimit < 0 {
		return errors.Wrap(errors.ErrConfigValidation, "memory_limit cannot be negative")
	}
	if s.ChunkSize < 0 {
		return errors.Wrap(errors.ErrConfigValidation, "chunk_size cannot be negative")
	}
	if s.DialTimeout < 0 {
		return errors.Wrap(errors.ErrConfigValidation, "dial_timeout cannot be negative")
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(s.LogLevel)] {
		return errors.Wrapf(errors.ErrConfigValidation, "invalid log level: %s", s.LogLevel)
	}
	validFormats := map[string]bool{"text": true, "json": true, "logfmt": true}
	if !validFormats[strings.ToLower(s.LogFormat)] {
		return errors.Wrapf(errors.ErrConfigValidation, "invalid log format: %s", s.LogFormat)
	}
	return nil
}

// EffectiveWindowBits returns the decompression window to use. An explicit
// window_bits wins; otherwise the window is derived from the memory budget.
func (c *Config) EffectiveWindowBits() int {
	if c.Settings.WindowBits != 0 {
		return c.Settings.WindowBits
	}
	return archive.WindowBitsFor(c.MemoryBudget())
}

// MemoryBudget returns memory_limit, or the runtime soft limit when unset.
// Zero means unlimited.
func (c *Config) MemoryBudget() int64 {
	if c.Settings.MemoryLimit > 0 {
		return c.Settings.MemoryLimit
	}
	if limit := debug.SetMemoryLimit(-1); limit != math.MaxInt64 {
		return limit
	}
	return 0
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() (string, error) {
	path, err := fsutil.GetConfigPath()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return path, nil
}

// applyDefaults fills in missing values with defaults.
func (c *Config) applyDefaults() {
	defaults := DefaultConfig()

	if c.Settings.InstallPath == "" {
		c.Settings.InstallPath = defaults.Settings.InstallPath
	}
	c.Settings.InstallPath = fsutil.ExpandHome(c.Settings.InstallPath)
	if c.Settings.IndexHost == "" {
		c.Settings.IndexHost = defaults.Settings.IndexHost
	}
	if c.Settings.Basket == "" {
		c.Settings.Basket = defaults.Settings.Basket
	}
	if c.Settings.ChunkSize == 0 {
		c.Settings.ChunkSize = defaults.Settings.ChunkSize
	}
	if c.Settings.DialTimeout == 0 {
		c.Settings.DialTimeout = defaults.Settings.DialTimeout
	}
	if c.Settings.LogLevel == "" {
		c.Settings.LogLevel = defaults.Settings.LogLevel
	}
	if c.Settings.LogFormat == "" {
		c.Settings.LogFormat = defaults.Settings.LogFormat
	}
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}
