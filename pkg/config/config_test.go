package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestGetDefaultConfig(t *testing.T) {
	cfg := GetDefaultConfig()

	if cfg.Repositories["PSGallery"] != "https://www.powershellgallery.com/api/v2" {
		t.Fatalf("PSGallery default missing: %v", cfg.Repositories)
	}
	if cfg.SavePathRoot != filepath.Join(os.TempDir(), "Modules") {
		t.Fatalf("SavePathRoot default: %s", cfg.SavePathRoot)
	}
	if cfg.LogLevel != "INFO" {
		t.Fatalf("LogLevel default: %s", cfg.LogLevel)
	}
	if cfg.HTTPTimeoutSeconds <= 0 || cfg.MinFreeSpaceMB <= 0 {
		t.Fatalf("numeric defaults not set: %+v", cfg)
	}
	if cfg.ContinueOnInstalled {
		t.Fatal("ContinueOnInstalled must default off (historical batch-halt behavior)")
	}
}

func TestLoadConfigFromPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Config.yaml")
	content := `
LogLevel: DEBUG
SavePathRoot: /srv/modules
Repositories:
  Internal: https://nuget.internal.example/api/v2
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfigFrom(path)
	if err != nil {
		t.Fatalf("LoadConfigFrom: %v", err)
	}
	if cfg.LogLevel != "DEBUG" {
		t.Fatalf("LogLevel: %s", cfg.LogLevel)
	}
	if cfg.SavePathRoot != "/srv/modules" {
		t.Fatalf("SavePathRoot: %s", cfg.SavePathRoot)
	}
	if cfg.Repositories["Internal"] == "" {
		t.Fatalf("Repositories not loaded: %v", cfg.Repositories)
	}
	// Unset values fall back to defaults.
	if cfg.CachePath == "" || cfg.HTTPTimeoutSeconds == 0 {
		t.Fatalf("fallbacks not applied: %+v", cfg)
	}
}

func TestLoadConfigFromBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "Config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfigFrom(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestModuleRootsOrder(t *testing.T) {
	cfg := &Configuration{
		InstallPathAllUsers:    `C:\Program Files\WindowsPowerShell\Modules`,
		InstallPathCurrentUser: `C:\Users\u\Documents\WindowsPowerShell\Modules`,
	}
	roots := cfg.ModuleRoots()
	if len(roots) != 2 || roots[0] != cfg.InstallPathAllUsers || roots[1] != cfg.InstallPathCurrentUser {
		t.Fatalf("unexpected roots: %v", roots)
	}
}
