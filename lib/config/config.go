// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// EnvironmentVariable names the variable [Load] reads the config path
// from.
const EnvironmentVariable = "PARLEY_CONFIG"

// Log formats accepted by log.format.
const (
	LogFormatAuto = "auto"
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Config is the master configuration.
type Config struct {
	// Homeserver is the default server, as host[:port] or a URL. The
	// session record and --homeserver take precedence.
	Homeserver string `yaml:"homeserver"`

	// StateDir holds session.json and snapshot.bin.
	StateDir string `yaml:"state_dir"`

	// IdentityFile is an age identity. When set, the session record is
	// stored sealed to it as session.json.age instead of session.json.
	IdentityFile string `yaml:"identity_file"`

	Sync     SyncConfig     `yaml:"sync"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Log      LogConfig      `yaml:"log"`
}

// SyncConfig configures the long-poll loop.
type SyncConfig struct {
	// Timeout is the server-side long-poll wait in milliseconds.
	// Default: 30000
	Timeout int `yaml:"timeout"`

	// Interval is the pause between consecutive polls, as a Go
	// duration string.
	// Default: 1s
	Interval string `yaml:"interval"`

	// Filter is a filter ID or inline JSON filter passed to /sync.
	Filter string `yaml:"filter"`

	// FilterFile names a JSON filter file, which may contain comments
	// and trailing commas. Mutually exclusive with Filter.
	FilterFile string `yaml:"filter_file"`

	// UseMemberNames enables naming unnamed rooms after their members.
	UseMemberNames bool `yaml:"use_member_names"`
}

// SnapshotConfig configures the on-disk room snapshot.
type SnapshotConfig struct {
	// Enabled controls whether the room model is saved after each sync
	// and restored at startup.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Compression is none, lz4, or zstd.
	// Default: zstd
	Compression string `yaml:"compression"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `yaml:"level"`

	// Format is auto (text on a terminal, JSON otherwise), text, or
	// json.
	// Default: auto
	Format string `yaml:"format"`
}

// Default returns the configuration used before a file is applied.
func Default() *Config {
	homeDir, _ := os.UserHomeDir()
	return &Config{
		StateDir: filepath.Join(homeDir, ".local", "state", "parley"),
		Sync: SyncConfig{
			Timeout:  30000,
			Interval: "1s",
		},
		Snapshot: SnapshotConfig{
			Enabled:     true,
			Compression: "zstd",
		},
		Log: LogConfig{
			Level:  "info",
			Format: LogFormatAuto,
		},
	}
}

// Load loads configuration from the file named by PARLEY_CONFIG.
func Load() (*Config, error) {
	configPath := os.Getenv(EnvironmentVariable)
	if configPath == "" {
		return nil, fmt.Errorf("%s environment variable not set; "+
			"set it to the path of your parley.yaml config file, or use --config flag", EnvironmentVariable)
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from path on top of [Default].
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.expandVariables()
	return cfg, nil
}

func (c *Config) expandVariables() {
	vars := map[string]string{
		"HOME": os.Getenv("HOME"),
	}
	c.StateDir = expandVars(c.StateDir, vars)
	c.IdentityFile = expandVars(c.IdentityFile, vars)
	c.Sync.FilterFile = expandVars(c.Sync.FilterFile, vars)
}

// varPattern matches ${VAR} and ${VAR:-default}.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors and reports all of
// them at once.
func (c *Config) Validate() error {
	var errs []error

	if c.StateDir == "" {
		errs = append(errs, fmt.Errorf("state_dir is required"))
	}

	if c.Sync.Timeout < 0 {
		errs = append(errs, fmt.Errorf("sync.timeout must not be negative, got %d", c.Sync.Timeout))
	}
	if _, err := c.SyncInterval(); err != nil {
		errs = append(errs, err)
	}
	if c.Sync.Filter != "" && c.Sync.FilterFile != "" {
		errs = append(errs, fmt.Errorf("sync.filter and sync.filter_file are mutually exclusive"))
	}

	switch c.Snapshot.Compression {
	case "none", "lz4", "zstd":
	default:
		errs = append(errs, fmt.Errorf("snapshot.compression must be one of: %v",
			[]string{"none", "lz4", "zstd"}))
	}

	if _, err := c.LogLevel(); err != nil {
		errs = append(errs, err)
	}
	switch c.Log.Format {
	case LogFormatAuto, LogFormatText, LogFormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format must be one of: %v",
			[]string{LogFormatAuto, LogFormatText, LogFormatJSON}))
	}

	return errors.Join(errs...)
}

// SyncInterval parses sync.interval. An empty interval is zero.
func (c *Config) SyncInterval() (time.Duration, error) {
	if c.Sync.Interval == "" {
		return 0, nil
	}
	interval, err := time.ParseDuration(c.Sync.Interval)
	if err != nil {
		return 0, fmt.Errorf("sync.interval: %w", err)
	}
	if interval < 0 {
		return 0, fmt.Errorf("sync.interval must not be negative, got %s", c.Sync.Interval)
	}
	return interval, nil
}

// SyncFilter returns the /sync filter: sync.filter verbatim, or the
// contents of sync.filter_file with comments stripped and whitespace
// compacted. Empty when neither is set.
func (c *Config) SyncFilter() (string, error) {
	if c.Sync.FilterFile == "" {
		return c.Sync.Filter, nil
	}
	data, err := os.ReadFile(c.Sync.FilterFile)
	if err != nil {
		return "", fmt.Errorf("sync.filter_file: %w", err)
	}
	stripped := jsonc.ToJSON(data)
	var compacted bytes.Buffer
	if err := json.Compact(&compacted, stripped); err != nil {
		return "", fmt.Errorf("sync.filter_file %s: %w", c.Sync.FilterFile, err)
	}
	return compacted.String(), nil
}

// LogLevel parses log.level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(c.Log.Level))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return level, nil
}

// EnsureStateDir creates the state directory with owner-only
// permissions if it does not exist.
func (c *Config) EnsureStateDir() error {
	if err := os.MkdirAll(c.StateDir, 0o700); err != nil {
		return fmt.Errorf("creating %s: %w", c.StateDir, err)
	}
	return nil
}
