// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/plauschhq/plausch/internal/ui/styles"
	"github.com/plauschhq/plausch/internal/util"
)

// ===== STATUS BAR =====

// StatusBar renders the bottom line: connection info on the left,
// transient notices in the middle, key hints on the right.
type StatusBar struct {
	theme *styles.Theme
	width int

	server string
	user   string

	// notice is a transient message, cleared by the next state change
	notice      string
	noticeIsErr bool
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme, server, user string) *StatusBar {
	return &StatusBar{theme: theme, server: server, user: user, width: 80}
}

// SetWidth sets the render width.
func (b *StatusBar) SetWidth(width int) { b.width = width }

// SetNotice shows a transient informational message.
func (b *StatusBar) SetNotice(msg string) {
	b.notice = msg
	b.noticeIsErr = false
}

// SetError shows a transient error message.
func (b *StatusBar) SetError(msg string) {
	b.notice = msg
	b.noticeIsErr = true
}

// Clear removes the transient message.
func (b *StatusBar) Clear() {
	b.notice = ""
	b.noticeIsErr = false
}

// Render draws the bar. busy shows a sending/uploading indicator.
func (b *StatusBar) Render(busy string) string {
	left := b.user + "@" + b.server
	if busy != "" {
		left += "  " + busy
	}

	hints := b.theme.ShortcutKey.Render("Tab") + b.theme.ShortcutDesc.Render(" Fokus  ") +
		b.theme.ShortcutKey.Render("/help") + b.theme.ShortcutDesc.Render(" Hilfe  ") +
		b.theme.ShortcutKey.Render("Ctrl+C") + b.theme.ShortcutDesc.Render(" Ende")

	middle := b.notice
	style := b.theme.StatusBar
	if b.noticeIsErr {
		style = b.theme.StatusError
		middle = styles.StatusIndicators.Error + " " + b.notice
	}

	// Lay the three parts out by hand; lipgloss width math gets fragile
	// with mixed styles on one line.
	used := util.StringWidth(left) + util.StringWidth(b.notice) + 30
	pad := b.width - used
	if pad < 2 {
		pad = 2
	}
	line := left + strings.Repeat(" ", pad/2) + middle + strings.Repeat(" ", pad-pad/2) + hints

	return style.Width(b.width).Render(line)
}
