package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rowstore.yaml")

	content := `version: 1
database:
  driver: postgres
  dsn: postgres://localhost:5432/rowstore
cache:
  enabled: true
  ttl_seconds: 30
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, loadedPath, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loadedPath != path {
		t.Errorf("expected path %q, got %q", path, loadedPath)
	}
	if cfg.Database.Driver != "postgres" {
		t.Errorf("expected driver postgres, got %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN != "postgres://localhost:5432/rowstore" {
		t.Errorf("unexpected dsn %q", cfg.Database.DSN)
	}
	if !cfg.Cache.Enabled || cfg.Cache.TTLSeconds != 30 {
		t.Errorf("unexpected cache config %+v", cfg.Cache)
	}
}

func TestLoadFromPathAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rowstore.yaml")

	if err := os.WriteFile(path, []byte("{}\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Version != 1 {
		t.Errorf("expected version 1, got %d", cfg.Version)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected sqlite driver default, got %q", cfg.Database.Driver)
	}
	if cfg.Database.DSN != "./rowstore.db" {
		t.Errorf("expected sqlite dsn default, got %q", cfg.Database.DSN)
	}
	if cfg.Cache.TTLSeconds != 60 {
		t.Errorf("expected ttl default 60, got %d", cfg.Cache.TTLSeconds)
	}
}

func TestLoadFromPathInvalidYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rowstore.yaml")

	if err := os.WriteFile(path, []byte(":\tnot yaml"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, _, err := LoadFromPath(path); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoadFallsBackToDefaults(t *testing.T) {
	// Point every search location at empty directories
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	cfg, path, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if path != "" {
		t.Errorf("expected no config path, got %q", path)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("expected default driver, got %q", cfg.Database.Driver)
	}
}

func TestFindConfigPathEnvWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	if err := os.WriteFile(path, []byte("version: 1\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv(EnvConfigPath, path)
	if got := FindConfigPath(); got != path {
		t.Errorf("expected %q, got %q", path, got)
	}
}

func TestFindConfigPathXDG(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	t.Setenv("HOME", t.TempDir())

	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(t.TempDir()); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer os.Chdir(wd)

	path := filepath.Join(xdg, ConfigDirName, "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("version: 1\n"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if got := FindConfigPath(); got != path {
		t.Errorf("expected %q, got %q", path, got)
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "rowstore.yaml")

	cfg := DefaultConfig()
	cfg.Database.DSN = "/var/lib/rowstore/data.db"
	cfg.Cache.Enabled = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, _, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Database.DSN != cfg.Database.DSN {
		t.Errorf("expected dsn %q, got %q", cfg.Database.DSN, loaded.Database.DSN)
	}
	if !loaded.Cache.Enabled {
		t.Error("expected cache enabled after reload")
	}
}
