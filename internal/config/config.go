package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DataDir string `toml:"data_dir"`
}

// Wiki contains configuration for the wiki query source.
type Wiki struct {
	APIURL                      string `toml:"api_url"`
	UserAgent                   string `toml:"user_agent"`
	RecentChangesOverlapMinutes int    `toml:"recent_changes_overlap_minutes"`
	SaveInterval                int    `toml:"save_interval"`
	PageLimit                   int    `toml:"page_limit"`
}

// Steam contains configuration for the product-info subprocess.
type Steam struct {
	Command      string   `toml:"command"`
	Args         []string `toml:"args"`
	ChunkSize    int      `toml:"chunk_size"`
	SaveInterval int      `toml:"save_interval"`
}

// Logging contains log output configuration.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the root configuration document.
type Config struct {
	Paths   Paths   `toml:"paths"`
	Wiki    Wiki    `toml:"wiki"`
	Steam   Steam   `toml:"steam"`
	Logging Logging `toml:"logging"`
}

// Default returns the repository defaults.
func Default() *Config {
	return &Config{
		Paths: Paths{DataDir: "~/.local/share/saveatlas"},
		Wiki: Wiki{
			APIURL:                      "https://www.pcgamingwiki.com/w/api.php",
			UserAgent:                   "saveatlas",
			RecentChangesOverlapMinutes: 1,
			SaveInterval:                100,
			PageLimit:                   500,
		},
		Steam: Steam{
			Command:      "python",
			Args:         []string{"scripts/get-steam-app-info.py"},
			ChunkSize:    25,
			SaveInterval: 250,
		},
		Logging: Logging{Level: "info", Format: "text"},
	}
}

// Load reads configuration from path, falling back to defaults for a
// missing file when path is empty.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return finish(cfg)
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return finish(cfg)
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, "saveatlas", "config.toml")
}

// Sample returns the embedded sample configuration.
func Sample() string {
	return sampleConfig
}

func finish(cfg *Config) (*Config, error) {
	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) normalize() {
	c.Paths.DataDir = expandPath(c.Paths.DataDir)
	c.Wiki.APIURL = strings.TrimSpace(c.Wiki.APIURL)
	c.Wiki.UserAgent = strings.TrimSpace(c.Wiki.UserAgent)
	c.Steam.Command = strings.TrimSpace(c.Steam.Command)
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
}

func (c *Config) validate() error {
	if c.Paths.DataDir == "" {
		return errors.New("config: paths.data_dir is required")
	}
	if c.Wiki.APIURL == "" {
		return errors.New("config: wiki.api_url is required")
	}
	if c.Steam.Command == "" {
		return errors.New("config: steam.command is required")
	}
	if c.Steam.ChunkSize <= 0 {
		return errors.New("config: steam.chunk_size must be positive")
	}
	if c.Wiki.SaveInterval <= 0 || c.Steam.SaveInterval <= 0 {
		return errors.New("config: save intervals must be positive")
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: logging.format %q not supported", c.Logging.Format)
	}
	return nil
}

func expandPath(path string) string {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}

// WikiCachePath returns the wiki cache resource file location.
func (c *Config) WikiCachePath() string {
	return filepath.Join(c.Paths.DataDir, "wiki-game-cache.yaml")
}

// WikiMetaPath returns the wiki checkpoint resource file location.
func (c *Config) WikiMetaPath() string {
	return filepath.Join(c.Paths.DataDir, "wiki-meta-cache.yaml")
}

// SteamCachePath returns the storefront cache resource file location.
func (c *Config) SteamCachePath() string {
	return filepath.Join(c.Paths.DataDir, "steam-game-cache.yaml")
}

// ManifestPath returns the manifest resource file location.
func (c *Config) ManifestPath() string {
	return filepath.Join(c.Paths.DataDir, "manifest.yaml")
}

// OverridesPath returns the manual override resource file location.
func (c *Config) OverridesPath() string {
	return filepath.Join(c.Paths.DataDir, "manifest-override.yaml")
}

// SchemaPath returns the lenient manifest schema location.
func (c *Config) SchemaPath() string {
	return filepath.Join(c.Paths.DataDir, "schema.yaml")
}

// StrictSchemaPath returns the strict manifest schema location.
func (c *Config) StrictSchemaPath() string {
	return filepath.Join(c.Paths.DataDir, "schema.strict.yaml")
}

// MissingReportPath returns the missing-games report location.
func (c *Config) MissingReportPath() string {
	return filepath.Join(c.Paths.DataDir, "missing.md")
}

// MalformedReportPath returns the malformed-articles report location.
func (c *Config) MalformedReportPath() string {
	return filepath.Join(c.Paths.DataDir, "malformed.md")
}

// LockPath returns the data-dir lock file location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.DataDir, ".saveatlas.lock")
}
