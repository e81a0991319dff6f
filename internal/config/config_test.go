package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Wiki.APIURL != "https://www.pcgamingwiki.com/w/api.php" {
		t.Errorf("unexpected default api url: %q", cfg.Wiki.APIURL)
	}
	if cfg.Steam.ChunkSize != 25 {
		t.Errorf("unexpected default chunk size: %d", cfg.Steam.ChunkSize)
	}
	if cfg.Wiki.SaveInterval != 100 || cfg.Steam.SaveInterval != 250 {
		t.Errorf("unexpected default save intervals: %d, %d", cfg.Wiki.SaveInterval, cfg.Steam.SaveInterval)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[paths]
data_dir = "/tmp/saveatlas-test"

[steam]
chunk_size = 5

[logging]
level = "DEBUG"
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Paths.DataDir != "/tmp/saveatlas-test" {
		t.Errorf("data dir = %q", cfg.Paths.DataDir)
	}
	if cfg.Steam.ChunkSize != 5 {
		t.Errorf("chunk size = %d", cfg.Steam.ChunkSize)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("logging not normalized: %#v", cfg.Logging)
	}
	// Untouched sections keep defaults.
	if cfg.Wiki.APIURL == "" {
		t.Error("wiki defaults lost on partial config")
	}
}

func TestLoadRejectsBadFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[logging]
format = "xml"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unsupported log format")
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory available")
	}

	got := expandPath("~/data")
	if !strings.HasPrefix(got, home) {
		t.Errorf("expandPath(~/data) = %q, want prefix %q", got, home)
	}
}

func TestResourcePaths(t *testing.T) {
	cfg := Default()
	cfg.Paths.DataDir = "/data"

	if got := cfg.WikiCachePath(); got != "/data/wiki-game-cache.yaml" {
		t.Errorf("WikiCachePath = %q", got)
	}
	if got := cfg.ManifestPath(); got != "/data/manifest.yaml" {
		t.Errorf("ManifestPath = %q", got)
	}
}

func TestSampleConfigParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(Sample()), 0o644); err != nil {
		t.Fatalf("write sample: %v", err)
	}
	if _, err := Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}
