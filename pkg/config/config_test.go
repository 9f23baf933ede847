package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
listen: "127.0.0.1:9000"
store_path: /tmp/history.db
precision: 8
legacy_inequality: true
variables:
  rate: "1.25"
  name: alice
  opt: "null"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != "127.0.0.1:9000" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.StorePath != "/tmp/history.db" {
		t.Errorf("StorePath = %q", cfg.StorePath)
	}
	if cfg.Precision != 8 {
		t.Errorf("Precision = %d", cfg.Precision)
	}
	if !cfg.LegacyInequality {
		t.Errorf("LegacyInequality = false")
	}
	if len(cfg.Variables) != 3 || cfg.Variables["rate"] != "1.25" {
		t.Errorf("Variables = %v", cfg.Variables)
	}
}

func TestLoadPartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "listen: ':9999'\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != ":9999" {
		t.Errorf("Listen = %q", cfg.Listen)
	}
	if cfg.Precision != Default().Precision {
		t.Errorf("Precision = %d, want default", cfg.Precision)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeConfig(t, "")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Listen != Default().Listen {
		t.Errorf("Listen = %q, want default", cfg.Listen)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfig(t, "listne: ':9999'\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestLoadRejectsBadPrecision(t *testing.T) {
	path := writeConfig(t, "precision: -2\n")
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for negative precision")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
