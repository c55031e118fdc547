// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package commands implements the slash command system for the TUI.
//
// Input starting with "/" is parsed against a registry of commands; each
// handler returns a bubbletea command that emits a typed message for the
// chat model to act on. Anything else is treated as a chat message and
// never reaches this package.
package commands
