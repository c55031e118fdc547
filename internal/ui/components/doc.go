// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the building blocks of the plausch TUI:
// the conversation sidebar, the transcript view, the attachment panel and
// the status bar. Components are pure renderers; they hold display state
// only and never talk to the backend.
package components
