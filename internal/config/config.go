// Package config handles TOML-based configuration loading and validation.
// TOML is parsed as data only; no code execution is possible.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const appName = "marquee"

// Entitlement policies for servers that require a subscription.
const (
	EntitlementDisplay = "display"
	EntitlementEnforce = "enforce"
)

// Server is one video-hosting configuration used to build playback URLs.
type Server struct {
	Name                 string   `toml:"name"`
	BaseURL              string   `toml:"base_url"`
	MoviePath            string   `toml:"movie_path"`
	TVPath               string   `toml:"tv_path"`
	SeriesSupported      bool     `toml:"series_supported"`
	RequiresSubscription bool     `toml:"requires_subscription"`
	Features             []string `toml:"features"`
}

// Config holds all application configuration.
type Config struct {
	TMDBAPIKey     string            `toml:"tmdb_api_key"`
	TMDBBaseURL    string            `toml:"tmdb_base_url"`
	ImageBaseSmall string            `toml:"image_base_small"`
	ImageBaseLarge string            `toml:"image_base_large"`
	Language       string            `toml:"language"`
	DefaultServer  string            `toml:"default_server"`
	Entitlement    string            `toml:"entitlement"`
	Subscribed     bool              `toml:"subscribed"`
	MinQueryLength int               `toml:"min_query_length"`
	DatabasePath   string            `toml:"database_path"`
	SessionSecret  string            `toml:"session_secret"`
	SessionTTL     Duration          `toml:"session_ttl"`
	Listen         string            `toml:"listen"`
	LogFile        string            `toml:"log_file"`
	Debug          bool              `toml:"debug"`
	Servers        map[string]Server `toml:"servers"`
}

// Duration lets TOML carry values such as "720h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("parsing duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// DefaultServers returns the built-in playback server table.
func DefaultServers() map[string]Server {
	return map[string]Server{
		"server1": {
			Name:      "Server 1",
			BaseURL:   "https://moviesapi.club",
			MoviePath: "/movie/",
			TVPath:    "/tv/",
		},
		"server2": {
			Name:      "Server 2",
			BaseURL:   "https://vidsrc.icu/embed",
			MoviePath: "/movie/",
			TVPath:    "/tv/",
		},
		"vip": {
			Name:                 "VIP Server",
			BaseURL:              "https://vip.streamflex.com",
			MoviePath:            "/movie/",
			TVPath:               "/tv/",
			SeriesSupported:      true,
			RequiresSubscription: true,
			Features:             []string{"Dolby Atmos", "Dolby Vision", "AC3", "AAC"},
		},
	}
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		TMDBBaseURL:    "https://api.themoviedb.org/3",
		ImageBaseSmall: "https://image.tmdb.org/t/p/w500",
		ImageBaseLarge: "https://image.tmdb.org/t/p/original",
		Language:       "en-US",
		DefaultServer:  "server1",
		Entitlement:    EntitlementDisplay,
		MinQueryLength: 2,
		SessionTTL:     Duration{30 * 24 * time.Hour},
		Listen:         "127.0.0.1:8787",
		Servers:        DefaultServers(),
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
// TMDB_API_KEY in the environment overrides the file.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case !os.IsNotExist(err):
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if key := os.Getenv("TMDB_API_KEY"); key != "" {
		cfg.TMDBAPIKey = key
	}

	// Tables in the file are merged over the built-in servers, not replacing them.
	merged := DefaultServers()
	for k, s := range cfg.Servers {
		merged[strings.ToLower(k)] = s
	}
	cfg.Servers = merged

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.TMDBBaseURL == "" {
		return fmt.Errorf("tmdb_base_url cannot be empty")
	}
	if c.ImageBaseSmall == "" || c.ImageBaseLarge == "" {
		return fmt.Errorf("image base URLs cannot be empty")
	}

	validEntitlements := map[string]bool{
		EntitlementDisplay: true, EntitlementEnforce: true,
	}
	if !validEntitlements[strings.ToLower(c.Entitlement)] {
		return fmt.Errorf("unsupported entitlement %q (valid: display, enforce)", c.Entitlement)
	}

	if c.MinQueryLength < 1 {
		return fmt.Errorf("min_query_length must be at least 1, got %d", c.MinQueryLength)
	}

	if c.SessionTTL.Duration <= 0 {
		return fmt.Errorf("session_ttl must be positive")
	}

	if len(c.Servers) == 0 {
		return fmt.Errorf("at least one playback server must be configured")
	}
	for key, s := range c.Servers {
		if s.BaseURL == "" {
			return fmt.Errorf("server %q has no base_url", key)
		}
	}
	if _, ok := c.Servers[strings.ToLower(c.DefaultServer)]; !ok {
		return fmt.Errorf("unknown default_server %q (valid: %s)", c.DefaultServer, strings.Join(c.ServerKeys(), ", "))
	}

	return nil
}

// ServerKeys returns the configured server identifiers in stable order.
func (c *Config) ServerKeys() []string {
	keys := make([]string, 0, len(c.Servers))
	for k := range c.Servers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// dataDir returns the XDG data directory for marquee.
func dataDir() (string, error) {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dir, appName), nil
}

// ResolveDatabasePath returns the configured database path, defaulting to the data dir.
func (c *Config) ResolveDatabasePath() (string, error) {
	if c.DatabasePath != "" {
		return expandHome(c.DatabasePath)
	}
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "marquee.db"), nil
}

// SessionPath returns the path to the persisted sign-in token.
func SessionPath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "session.json"), nil
}

func expandHome(p string) (string, error) {
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		p = filepath.Join(home, p[2:])
	}
	return filepath.Abs(p)
}

// SecretPath returns the path to the generated session signing secret, used
// when session_secret is not configured.
func SecretPath() (string, error) {
	dir, err := dataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "secret"), nil
}
