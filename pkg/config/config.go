// Package config loads islandlink settings from a TOML file.
//
// The default location is $XDG_CONFIG_HOME/islandlink/config.toml (or
// ~/.config/islandlink/config.toml). A missing file is not an error: every
// field has a default, and command-line flags override file values.
//
//	max_sites = 50
//
//	[cache]
//	backend = "file"      # file, redis, or none
//	ttl = "720h"
//
//	[render]
//	formats = ["svg"]
//	scale = 2.0
//	labels = true
//
//	[history]
//	enabled = true
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	ilerrors "github.com/matzehuels/islandlink/pkg/errors"
)

// AppName names the config, cache, and data directories.
const AppName = "islandlink"

// Config is the on-disk configuration.
type Config struct {
	MaxSites int           `toml:"max_sites"`
	Cache    CacheConfig   `toml:"cache"`
	Render   RenderConfig  `toml:"render"`
	History  HistoryConfig `toml:"history"`
	Server   ServerConfig  `toml:"server"`
}

// CacheConfig selects the solution and artifact cache.
type CacheConfig struct {
	Backend string   `toml:"backend"`
	Dir     string   `toml:"dir"`
	TTL     Duration `toml:"ttl"`

	RedisAddr     string `toml:"redis_addr"`
	RedisPassword string `toml:"redis_password"`
	RedisDB       int    `toml:"redis_db"`
}

// RenderConfig holds plot defaults.
type RenderConfig struct {
	Formats   []string `toml:"formats"`
	Scale     float64  `toml:"scale"`
	OutputDir string   `toml:"output_dir"`
	Labels    bool     `toml:"labels"`
}

// HistoryConfig controls the run history database.
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// ServerConfig configures `islandlink serve`.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string ("720h") in TOML.
type Duration struct{ time.Duration }

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		MaxSites: ilerrors.DefaultMaxSites,
		Cache: CacheConfig{
			Backend:   "file",
			TTL:       Duration{30 * 24 * time.Hour},
			RedisAddr: "localhost:6379",
		},
		Render: RenderConfig{
			Formats: []string{"svg"},
			Scale:   2.0,
			Labels:  true,
		},
		History: HistoryConfig{Enabled: true},
		Server:  ServerConfig{Addr: ":8080"},
	}
}

// Load reads the file at path over the defaults. An empty path selects
// [DefaultPath]; a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, cfg.resolve()
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, cfg.resolve()
	}
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := Parse(data, &cfg); err != nil {
		return cfg, ilerrors.Wrap(ilerrors.ErrCodeInvalidConfig, err, "%s", path)
	}
	return cfg, cfg.resolve()
}

// Parse decodes TOML data over cfg.
func Parse(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return err
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("unknown key %q", undecoded[0].String())
	}
	return cfg.Validate()
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.MaxSites < 1 {
		return ilerrors.New(ilerrors.ErrCodeInvalidConfig, "max_sites must be at least 1, got %d", c.MaxSites)
	}
	switch c.Cache.Backend {
	case "file", "redis", "none":
	default:
		return ilerrors.New(ilerrors.ErrCodeInvalidConfig, "cache.backend must be file, redis, or none, got %q", c.Cache.Backend)
	}
	if c.Render.Scale <= 0 {
		return ilerrors.New(ilerrors.ErrCodeInvalidConfig, "render.scale must be positive, got %v", c.Render.Scale)
	}
	return nil
}

// resolve fills directory defaults that depend on the environment.
func (c *Config) resolve() error {
	if c.Cache.Dir == "" {
		if dir, err := CacheDir(); err == nil {
			c.Cache.Dir = dir
		}
	}
	if c.History.Path == "" {
		if dir, err := DataDir(); err == nil {
			c.History.Path = filepath.Join(dir, "history.db")
		}
	}
	return nil
}

// DefaultPath returns the config file location using the XDG standard.
func DefaultPath() (string, error) {
	return xdgDir("XDG_CONFIG_HOME", ".config", "config.toml")
}

// CacheDir returns the cache directory (~/.cache/islandlink/).
func CacheDir() (string, error) {
	return xdgDir("XDG_CACHE_HOME", ".cache", "")
}

// DataDir returns the data directory (~/.local/share/islandlink/).
func DataDir() (string, error) {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"), "")
}

func xdgDir(env, fallback, file string) (string, error) {
	if base := os.Getenv(env); base != "" {
		return filepath.Join(base, AppName, file), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, fallback, AppName, file), nil
}
