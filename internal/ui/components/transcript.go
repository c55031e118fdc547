// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/plauschhq/plausch/internal/model"
	"github.com/plauschhq/plausch/internal/ui/styles"
)

// ===== TRANSCRIPT VIEW =====

// Transcript renders a conversation's messages for the viewport.
type Transcript struct {
	theme    *styles.Theme
	width    int
	markdown bool
	renderer *glamour.TermRenderer
}

// NewTranscript creates a transcript renderer. When markdown is true,
// assistant messages are rendered through glamour.
func NewTranscript(theme *styles.Theme, markdown bool) *Transcript {
	t := &Transcript{theme: theme, width: 80, markdown: markdown}
	t.rebuildRenderer()
	return t
}

// SetWidth changes the wrap width.
func (t *Transcript) SetWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == t.width {
		return
	}
	t.width = width
	t.rebuildRenderer()
}

// rebuildRenderer recreates the glamour renderer for the current width.
// A nil renderer falls back to plain text.
func (t *Transcript) rebuildRenderer() {
	if !t.markdown {
		t.renderer = nil
		return
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(t.width-4),
	)
	if err != nil {
		t.renderer = nil
		return
	}
	t.renderer = renderer
}

// Render draws the whole transcript. sending appends a typing indicator
// below the last message.
func (t *Transcript) Render(conv *model.Conversation, sending bool) string {
	if conv == nil {
		return t.theme.Timestamp.Render("Keine Unterhaltung ausgewählt. /new beginnt eine neue.")
	}
	if !conv.DetailLoaded {
		return t.theme.Timestamp.Render("Lade Unterhaltung ...")
	}
	if len(conv.Messages) == 0 && !sending {
		return t.theme.Timestamp.Render("Noch keine Nachrichten. Schreib los!")
	}

	var sb strings.Builder
	for i := range conv.Messages {
		sb.WriteString(t.renderMessage(&conv.Messages[i]))
		sb.WriteString("\n\n")
	}

	if sending {
		sb.WriteString(t.theme.AssistantLabel.Render("Assistent"))
		sb.WriteString("\n")
		sb.WriteString(t.theme.Timestamp.Render("schreibt ..."))
		sb.WriteString("\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}

// renderMessage draws one message with label, timestamp and body.
func (t *Transcript) renderMessage(msg *model.Message) string {
	var label, body string

	switch {
	case msg.Role == model.RoleUser:
		label = t.theme.UserLabel.Render("Du")
		body = t.theme.UserMessage.Width(t.width).Render(strings.TrimSpace(msg.Content))

	case msg.IsLocal():
		// Client-synthesized assistant message: a failure notice.
		label = t.theme.AssistantLabel.Render("Assistent")
		body = t.theme.FailureNotice.Width(t.width).Render(msg.Content)

	default:
		label = t.theme.AssistantLabel.Render("Assistent")
		body = t.theme.AssistantMsg.Width(t.width).Render(t.renderBody(msg.Content))
	}

	stamp := ""
	if !msg.CreatedAt.IsZero() {
		stamp = " " + t.theme.Timestamp.Render(msg.CreatedAt.Format("15:04"))
	}
	return label + stamp + "\n" + body
}

// renderBody formats assistant Markdown. Glamour when available, fenced
// code block highlighting as fallback.
func (t *Transcript) renderBody(content string) string {
	content = strings.TrimSpace(content)
	if t.renderer != nil {
		if rendered, err := t.renderer.Render(content); err == nil {
			return strings.TrimSpace(rendered)
		}
	}
	return RenderFencedBlocks(content, t.width-4)
}
