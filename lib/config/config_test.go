// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "parley.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return configPath
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Sync.Timeout != 30000 {
		t.Errorf("expected sync.timeout=30000, got %d", cfg.Sync.Timeout)
	}
	if cfg.Log.Format != LogFormatAuto {
		t.Errorf("expected log.format=auto, got %s", cfg.Log.Format)
	}
	if !strings.HasSuffix(cfg.StateDir, filepath.Join(".local", "state", "parley")) {
		t.Errorf("unexpected default state_dir: %s", cfg.StateDir)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad_RequiresParleyConfig(t *testing.T) {
	t.Setenv(EnvironmentVariable, "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when PARLEY_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "PARLEY_CONFIG environment variable not set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_WithParleyConfig(t *testing.T) {
	configPath := writeConfig(t, `
homeserver: matrix.example.org
state_dir: /test/state
`)
	t.Setenv(EnvironmentVariable, configPath)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Homeserver != "matrix.example.org" {
		t.Errorf("expected homeserver=matrix.example.org, got %s", cfg.Homeserver)
	}
	if cfg.StateDir != "/test/state" {
		t.Errorf("expected state_dir=/test/state, got %s", cfg.StateDir)
	}
}

func TestLoadFile(t *testing.T) {
	configPath := writeConfig(t, `
homeserver: https://matrix.example.org:8448
state_dir: /custom/state

sync:
  timeout: 5000
  interval: 250ms
  filter: '{"room":{"timeline":{"limit":10}}}'
  use_member_names: true

log:
  level: debug
  format: json
`)

	cfg, err := LoadFile(configPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	if cfg.Sync.Timeout != 5000 {
		t.Errorf("expected sync.timeout=5000, got %d", cfg.Sync.Timeout)
	}
	if !cfg.Sync.UseMemberNames {
		t.Error("expected sync.use_member_names=true")
	}
	if cfg.Sync.Filter != `{"room":{"timeline":{"limit":10}}}` {
		t.Errorf("unexpected filter: %s", cfg.Sync.Filter)
	}

	interval, err := cfg.SyncInterval()
	if err != nil {
		t.Fatalf("SyncInterval: %v", err)
	}
	if interval != 250*time.Millisecond {
		t.Errorf("expected interval=250ms, got %s", interval)
	}

	level, err := cfg.LogLevel()
	if err != nil {
		t.Fatalf("LogLevel: %v", err)
	}
	if level != slog.LevelDebug {
		t.Errorf("expected level=debug, got %s", level)
	}
}

func TestLoadFile_KeepsDefaultsForOmittedFields(t *testing.T) {
	cfg, err := LoadFile(writeConfig(t, "homeserver: localhost:6167\n"))
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Sync.Timeout != 30000 || cfg.Sync.Interval != "1s" || cfg.Log.Level != "info" {
		t.Errorf("defaults not preserved: %+v", cfg)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
			t.Fatal("expected error for missing file")
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		if _, err := LoadFile(writeConfig(t, "sync: [not, a, map\n")); err == nil {
			t.Fatal("expected error for invalid YAML")
		}
	})
}

func TestExpandVariables(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	t.Setenv("PARLEY_TEST_ROOT", "")

	tests := []struct {
		name     string
		stateDir string
		want     string
	}{
		{"home", "${HOME}/parley", "/home/tester/parley"},
		{"default used", "${PARLEY_TEST_ROOT:-/var/lib/parley}", "/var/lib/parley"},
		{"literal", "/srv/parley", "/srv/parley"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg, err := LoadFile(writeConfig(t, "state_dir: "+test.stateDir+"\n"))
			if err != nil {
				t.Fatalf("LoadFile failed: %v", err)
			}
			if cfg.StateDir != test.want {
				t.Errorf("state_dir = %q, want %q", cfg.StateDir, test.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.StateDir = ""
	cfg.Sync.Timeout = -1
	cfg.Sync.Interval = "soon"
	cfg.Log.Level = "loud"
	cfg.Log.Format = "xml"
	cfg.Snapshot.Compression = "gzip"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, field := range []string{"state_dir", "sync.timeout", "sync.interval", "log.level", "log.format", "snapshot.compression"} {
		if !strings.Contains(err.Error(), field) {
			t.Errorf("validation error does not mention %s: %v", field, err)
		}
	}
}

func TestEnsureStateDir(t *testing.T) {
	cfg := Default()
	cfg.StateDir = filepath.Join(t.TempDir(), "nested", "state")

	if err := cfg.EnsureStateDir(); err != nil {
		t.Fatalf("EnsureStateDir: %v", err)
	}
	info, err := os.Stat(cfg.StateDir)
	if err != nil {
		t.Fatalf("state dir not created: %v", err)
	}
	if info.Mode().Perm() != 0o700 {
		t.Errorf("state dir mode = %o, want 700", info.Mode().Perm())
	}
}

func TestSyncFilter(t *testing.T) {
	t.Run("inline", func(t *testing.T) {
		cfg := Default()
		cfg.Sync.Filter = "filter-id-1"
		filter, err := cfg.SyncFilter()
		if err != nil {
			t.Fatal(err)
		}
		if filter != "filter-id-1" {
			t.Errorf("SyncFilter() = %q", filter)
		}
	})

	t.Run("file with comments", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "filter.jsonc")
		content := `{
	// Only the last ten timeline events per room.
	"room": {
		"timeline": {"limit": 10},
	},
}
`
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
		cfg := Default()
		cfg.Sync.FilterFile = path

		filter, err := cfg.SyncFilter()
		if err != nil {
			t.Fatalf("SyncFilter() error: %v", err)
		}
		if filter != `{"room":{"timeline":{"limit":10}}}` {
			t.Errorf("SyncFilter() = %s", filter)
		}
	})

	t.Run("invalid file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "filter.jsonc")
		if err := os.WriteFile(path, []byte("{room"), 0644); err != nil {
			t.Fatal(err)
		}
		cfg := Default()
		cfg.Sync.FilterFile = path
		if _, err := cfg.SyncFilter(); err == nil {
			t.Error("expected error for invalid filter file")
		}
	})
}

func TestValidate_FilterExclusive(t *testing.T) {
	cfg := Default()
	cfg.Sync.Filter = "x"
	cfg.Sync.FilterFile = "/tmp/filter.json"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("Validate() = %v, want mutual exclusion error", err)
	}
}

func TestValidate_SnapshotCompression(t *testing.T) {
	cfg := Default()
	cfg.Snapshot.Compression = "brotli"
	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "snapshot.compression") {
		t.Errorf("Validate() = %v, want snapshot.compression error", err)
	}
}
