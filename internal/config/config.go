// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for the plausch client.
//
// Configuration lives in ~/.plausch/config.toml with sensible defaults and
// environment variable overrides (PLAUSCH_SERVER_URL, PLAUSCH_USER_ID,
// PLAUSCH_USER_NAME, PLAUSCH_CONFIG).
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete plausch configuration.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	User    UserConfig    `toml:"user"`
	UI      UIConfig      `toml:"ui"`
	Archive ArchiveConfig `toml:"archive"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig describes the chat backend.
type ServerConfig struct {
	// URL is the base URL of the backend, without the /api prefix.
	URL string `toml:"url"`
	// TimeoutSecs is the per-request timeout. Uploads use a multiple of it.
	TimeoutSecs int `toml:"timeout_secs"`
	// RequestsPerSec caps the request rate against the backend (0 = uncapped).
	RequestsPerSec float64 `toml:"requests_per_sec"`
}

// UserConfig identifies the backend user the client acts as. There is no
// login flow; the backend contract carries the user id in paths and bodies.
type UserConfig struct {
	ID   int    `toml:"id"`
	Name string `toml:"name"`
}

// UIConfig holds presentation preferences.
type UIConfig struct {
	// Theme is "dark", "light" or "auto" (detect from terminal background).
	Theme string `toml:"theme"`
	// Markdown enables glamour rendering of assistant messages.
	Markdown bool `toml:"markdown"`
}

// ArchiveConfig controls the local transcript archive.
type ArchiveConfig struct {
	Enabled bool `toml:"enabled"`
	// Path of the SQLite database. Empty means ~/.plausch/archive.db.
	Path string `toml:"path"`
}

// LogConfig controls the client log file. Stderr belongs to the TUI, so all
// logging goes to a file.
type LogConfig struct {
	// File path of the log. Empty means ~/.plausch/plausch.log.
	File string `toml:"file"`
}

// =============================================================================
// DEFAULTS & LOADING
// =============================================================================

// Default returns the built-in defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			URL:            "http://localhost:8080",
			TimeoutSecs:    60,
			RequestsPerSec: 5,
		},
		User: UserConfig{ID: 0, Name: ""},
		UI: UIConfig{
			Theme:    "auto",
			Markdown: true,
		},
		Archive: ArchiveConfig{Enabled: true},
		Log:     LogConfig{},
	}
}

// Dir returns the plausch configuration directory (~/.plausch).
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve home directory: %w", err)
	}
	return filepath.Join(home, ".plausch"), nil
}

// Load reads the configuration from PLAUSCH_CONFIG or ~/.plausch/config.toml,
// falling back to defaults when no file exists, then applies environment
// overrides and validates.
func Load() (Config, error) {
	path := os.Getenv("PLAUSCH_CONFIG")
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return Config{}, err
		}
		path = filepath.Join(dir, "config.toml")
	}
	return LoadFromFile(path)
}

// LoadFromFile reads the configuration from an explicit path. A missing file
// is not an error; defaults apply.
func LoadFromFile(path string) (Config, error) {
	cfg := Default()

	if _, err := toml.DecodeFile(path, &cfg); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnvOverrides applies PLAUSCH_* environment variables on top of file
// values. Invalid values are ignored rather than fatal.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("PLAUSCH_SERVER_URL"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("PLAUSCH_USER_ID"); v != "" {
		if id, err := strconv.Atoi(v); err == nil {
			c.User.ID = id
		}
	}
	if v := os.Getenv("PLAUSCH_USER_NAME"); v != "" {
		c.User.Name = v
	}
}

// =============================================================================
// VALIDATION & ACCESSORS
// =============================================================================

// Validate checks the configuration for values the client cannot work with.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Server.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("server.url %q is not a valid URL", c.Server.URL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server.url scheme %q must be http or https", u.Scheme)
	}
	if c.Server.TimeoutSecs <= 0 {
		return errors.New("server.timeout_secs must be positive")
	}
	if c.Server.RequestsPerSec < 0 {
		return errors.New("server.requests_per_sec must not be negative")
	}
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme %q must be dark, light or auto", c.UI.Theme)
	}
	return nil
}

// Timeout returns the request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Server.TimeoutSecs) * time.Second
}

// ArchivePath returns the SQLite archive path, resolving the default.
func (c *Config) ArchivePath() (string, error) {
	if c.Archive.Path != "" {
		return c.Archive.Path, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "archive.db"), nil
}

// LogPath returns the log file path, resolving the default.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return c.Log.File, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "plausch.log"), nil
}

// StatePath returns the path of the last-active-conversation state file.
func StatePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state"), nil
}
