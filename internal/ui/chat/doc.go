// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the main Bubble Tea model of the plausch TUI.
//
// The model owns the layout (sidebar, transcript viewport, input line,
// status bar) and translates key presses and slash commands into store
// operations. Store calls run inside tea commands so the UI never blocks
// on the network; every operation reports back with a typed message that
// refreshes the affected parts of the view.
package chat
