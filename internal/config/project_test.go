package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadProjectConfigMissingFileReturnsEmpty(t *testing.T) {
	cfg, err := LoadProjectConfig(filepath.Join(t.TempDir(), "flux.yaml"))
	if err != nil {
		t.Fatalf("unexpected error for missing file: %v", err)
	}
	if cfg.Package != "" || len(cfg.Packages) != 0 {
		t.Fatalf("expected empty config for a missing file, got %+v", cfg)
	}
}

func TestLoadProjectConfigParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "flux.yaml")
	content := "package: mypkg\npackages:\n  util: ./lib/util\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	cfg, err := LoadProjectConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Package != "mypkg" {
		t.Fatalf("expected package 'mypkg', got %q", cfg.Package)
	}
	if cfg.Packages["util"] != "./lib/util" {
		t.Fatalf("expected packages[util] == './lib/util', got %q", cfg.Packages["util"])
	}
}
