package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestEmptyDefaults(t *testing.T) {
	cfg := Empty()
	if got := cfg.GetListenAddr(); got != DefaultListenAddr {
		t.Errorf("GetListenAddr = %q, want %q", got, DefaultListenAddr)
	}
	if got := cfg.GetDBPath(); got != DefaultDBPath {
		t.Errorf("GetDBPath = %q, want %q", got, DefaultDBPath)
	}
	if got := cfg.GetMigrationsDir(); got != DefaultMigrationsDir {
		t.Errorf("GetMigrationsDir = %q, want %q", got, DefaultMigrationsDir)
	}
	if got := cfg.GetDefaultReducer(); got != DefaultReducer {
		t.Errorf("GetDefaultReducer = %q, want %q", got, DefaultReducer)
	}
	if got := cfg.GetMaxValues(); got != DefaultMaxValues {
		t.Errorf("GetMaxValues = %d, want %d", got, DefaultMaxValues)
	}
}

func TestLoadPartialConfig(t *testing.T) {
	path := writeConfig(t, "partial.json", `{"listen_addr": ":9090", "max_values": 10}`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := cfg.GetListenAddr(); got != ":9090" {
		t.Errorf("GetListenAddr = %q", got)
	}
	if got := cfg.GetMaxValues(); got != 10 {
		t.Errorf("GetMaxValues = %d", got)
	}
	// Unset fields keep their defaults.
	if got := cfg.GetDBPath(); got != DefaultDBPath {
		t.Errorf("GetDBPath = %q, want default", got)
	}
}

func TestLoadRejectsNonJSONExtension(t *testing.T) {
	path := writeConfig(t, "config.yaml", `{}`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for non-json extension")
	}
}

func TestLoadRejectsMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestLoadRejectsMalformedJSON(t *testing.T) {
	path := writeConfig(t, "bad.json", `{"listen_addr": }`)
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"unknown reducer", `{"default_reducer": "median"}`, true},
		{"known reducer", `{"default_reducer": "mean"}`, false},
		{"zero max values", `{"max_values": 0}`, true},
		{"negative max values", `{"max_values": -5}`, true},
		{"empty listen addr", `{"listen_addr": ""}`, true},
		{"empty db path", `{"db_path": ""}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, "cfg.json", tt.content)
			_, err := Load(path)
			if tt.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}
