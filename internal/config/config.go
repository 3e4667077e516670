// ABOUTME: Configuration management for the vault location and feed defaults
// ABOUTME: JSON file under XDG config home, overridable from the environment or a .env file

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/natefinch/atomic"
)

// Environment variables that override the config file.
const (
	EnvVaultDir = "FEEDNOTES_VAULT_DIR"
	EnvLogLevel = "FEEDNOTES_LOG_LEVEL"
)

// Config stores feednotes configuration.
type Config struct {
	// VaultDir is the root of the Markdown vault. Supports ~ expansion.
	VaultDir string `json:"vault_dir,omitempty"`

	// FeedsFolder is the vault-relative folder holding one folder per feed.
	FeedsFolder string `json:"feeds_folder,omitempty"`

	// TemplateDir holds user templates overriding the built-in ones.
	TemplateDir string `json:"template_dir,omitempty"`

	// TagPrefix is prepended to hashtags generated from feed categories.
	TagPrefix string `json:"tag_prefix,omitempty"`

	// TagMapNote is the vault-relative path of the tag map table.
	TagMapNote string `json:"tag_map_note,omitempty"`

	// DefaultItemLimit is the item limit given to newly added feeds.
	DefaultItemLimit int `json:"default_item_limit,omitempty"`

	// Cache selects the metadata cache: "sqlite" (default) or "none".
	Cache string `json:"cache,omitempty"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `json:"log_level,omitempty"`
}

// GetVaultDir returns the vault directory with ~ expanded, defaulting to
// ~/Feednotes.
func (c *Config) GetVaultDir() string {
	if c.VaultDir == "" {
		return ExpandPath(DefaultVaultDir)
	}
	return ExpandPath(c.VaultDir)
}

// GetFeedsFolder returns the feeds folder, defaulting to "Feeds".
func (c *Config) GetFeedsFolder() string {
	if c.FeedsFolder == "" {
		return DefaultFeedsFolder
	}
	return strings.Trim(c.FeedsFolder, "/")
}

// GetTemplateDir returns the template directory with ~ expanded. Empty means
// only the built-in templates are used.
func (c *Config) GetTemplateDir() string {
	return ExpandPath(c.TemplateDir)
}

// GetTagPrefix returns the hashtag prefix, defaulting to "rss".
func (c *Config) GetTagPrefix() string {
	if c.TagPrefix == "" {
		return DefaultTagPrefix
	}
	return strings.Trim(c.TagPrefix, "/#")
}

// GetTagMapNote returns the tag map note path, defaulting to Feeds/tagmap.md.
func (c *Config) GetTagMapNote() string {
	if c.TagMapNote == "" {
		return c.GetFeedsFolder() + "/" + DefaultTagMapName
	}
	return c.TagMapNote
}

// GetDefaultItemLimit returns the item limit for new feeds, defaulting to 100.
func (c *Config) GetDefaultItemLimit() int {
	if c.DefaultItemLimit <= 0 {
		return DefaultItemLimit
	}
	return c.DefaultItemLimit
}

// GetCache returns the configured cache backend, defaulting to "sqlite".
func (c *Config) GetCache() string {
	if c.Cache == "" {
		return "sqlite"
	}
	return c.Cache
}

// GetLogLevel returns the configured log level, defaulting to "info".
func (c *Config) GetLogLevel() string {
	if c.LogLevel == "" {
		return "info"
	}
	return c.LogLevel
}

// Validate checks values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.GetCache() {
	case "sqlite", "none":
	default:
		return fmt.Errorf("unknown cache: %q", c.Cache)
	}
	if c.DefaultItemLimit < 0 {
		return fmt.Errorf("default_item_limit must not be negative, got %d", c.DefaultItemLimit)
	}
	if strings.HasPrefix(c.GetFeedsFolder(), "..") {
		return fmt.Errorf("feeds_folder must stay inside the vault: %q", c.FeedsFolder)
	}
	return nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "feednotes", "config.json")
}

// Load reads config from disk, writing a default file on first run, then
// applies environment overrides. A .env file in the working directory is
// loaded first if present.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg, err := loadFile(GetConfigPath())
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg := &Config{}
			if saveErr := cfg.Save(); saveErr != nil {
				fmt.Fprintf(os.Stderr, "warning: could not save default config: %v\n", saveErr)
			}
			return cfg, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(EnvVaultDir); v != "" {
		c.VaultDir = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// Save writes config to disk.
func (c *Config) Save() error {
	path := GetConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), DefaultDirPerms); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	return atomic.WriteFile(path, strings.NewReader(string(data)+"\n"))
}
