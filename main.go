// plausch - a terminal client for a self-hosted chat backend.
//
// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/plauschhq/plausch/internal/api"
	"github.com/plauschhq/plausch/internal/archive"
	"github.com/plauschhq/plausch/internal/config"
	"github.com/plauschhq/plausch/internal/store"
	"github.com/plauschhq/plausch/internal/ui/chat"
	"github.com/plauschhq/plausch/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Pfad zur Konfigurationsdatei (Standard: ~/.plausch/config.toml)")
		serverURL   = flag.String("server", "", "Basis-URL des Backends (überschreibt die Konfiguration)")
		userID      = flag.Int("user", 0, "Backend-Benutzer-ID (überschreibt die Konfiguration)")
		exportDir   = flag.String("export-dir", ".", "Zielverzeichnis für /export")
		showVersion = flag.Bool("version", false, "Version anzeigen und beenden")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("plausch %s (%s, %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(*configPath, *serverURL, *userID, *exportDir); err != nil {
		fmt.Fprintf(os.Stderr, "plausch: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, serverURL string, userID int, exportDir string) error {
	var cfg config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	if serverURL != "" {
		cfg.Server.URL = serverURL
		if err := cfg.Validate(); err != nil {
			return err
		}
	}
	if userID != 0 {
		cfg.User.ID = userID
	}
	if cfg.User.ID == 0 {
		return fmt.Errorf("keine Benutzer-ID konfiguriert (user.id in der Konfiguration oder -user)")
	}

	logger, closeLog, err := openLogger(&cfg)
	if err != nil {
		return err
	}
	defer closeLog()
	client := api.NewClient(cfg.Server.URL, cfg.Timeout(), cfg.Server.RequestsPerSec)
	logger.Printf("plausch %s startet, server=%s user=%d session=%s",
		Version, client.BaseURL(), cfg.User.ID, client.SessionID())

	var arch *archive.Archive
	if cfg.Archive.Enabled {
		path, err := cfg.ArchivePath()
		if err != nil {
			return err
		}
		arch, err = archive.Open(path, logger)
		if err != nil {
			// The archive is an add-on; a broken database must not keep
			// the client from starting.
			logger.Printf("archive disabled: %v", err)
			arch = nil
		} else {
			defer arch.Close()
			if n, err := arch.Conversations(); err == nil {
				logger.Printf("archive: %d Unterhaltungen in %s", n, path)
			}
		}
	}

	statePath, err := config.StatePath()
	if err != nil {
		return err
	}

	opts := store.Options{
		UserID:    cfg.User.ID,
		StatePath: statePath,
		Logger:    logger,
	}
	if arch != nil {
		opts.Archive = arch
	}
	st := store.New(client, opts)

	userLabel := cfg.User.Name
	if userLabel == "" {
		userLabel = fmt.Sprintf("user-%d", cfg.User.ID)
	}

	m := chat.New(chat.Options{
		Theme:     themeFor(&cfg),
		Store:     st,
		Archive:   arch,
		Server:    client.BaseURL(),
		User:      userLabel,
		ExportDir: exportDir,
		Markdown:  cfg.UI.Markdown,
	})

	program := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("TUI beendet mit Fehler: %w", err)
	}
	logger.Printf("plausch beendet")
	return nil
}

// openLogger opens the log file from the configuration. Stderr belongs to
// the TUI, so a file is the only sink; failures fall back to discarding.
func openLogger(cfg *config.Config) (*log.Logger, func(), error) {
	path, err := cfg.LogPath()
	if err != nil {
		return nil, nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return log.New(io.Discard, "", 0), func() {}, nil
	}
	logger := log.New(f, "", log.LstdFlags|log.Lmsgprefix)
	return logger, func() { f.Close() }, nil
}

// themeFor builds the theme honoring the configured preference. "auto"
// lets termenv decide from the terminal background.
func themeFor(cfg *config.Config) *styles.Theme {
	switch cfg.UI.Theme {
	case "dark":
		return styles.NewThemeDark()
	case "light":
		return styles.NewThemeLight()
	default:
		return styles.NewTheme()
	}
}
