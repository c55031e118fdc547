// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/plauschhq/plausch/internal/model"
	"github.com/plauschhq/plausch/internal/ui/styles"
)

// ===== ATTACHMENT PANEL =====

// FilesPanel renders the attachments of the active conversation as an
// overlay, toggled by /files.
type FilesPanel struct {
	theme *styles.Theme
	width int
}

// NewFilesPanel creates an attachment panel.
func NewFilesPanel(theme *styles.Theme) *FilesPanel {
	return &FilesPanel{theme: theme, width: 60}
}

// SetWidth sets the panel width.
func (p *FilesPanel) SetWidth(width int) {
	if width < 30 {
		width = 30
	}
	p.width = width
}

// Render draws the panel for a conversation's attachments.
func (p *FilesPanel) Render(conv *model.Conversation) string {
	var sb strings.Builder
	sb.WriteString(p.theme.OverlayTitle.Render("Anhänge"))
	sb.WriteString("\n\n")

	if conv == nil || len(conv.Files) == 0 {
		sb.WriteString(p.theme.ListMeta.Render("Keine Anhänge. /attach <datei> lädt eine hoch."))
		return p.theme.OverlayBox.Width(p.width).Render(sb.String())
	}

	for _, f := range conv.Files {
		line := fmt.Sprintf("%s  %s", f.Name, model.FormatSize(f.Size))
		sb.WriteString(p.theme.ListItem.Render(line))
		sb.WriteString("\n")
		meta := f.Type
		if !f.CreatedAt.IsZero() {
			meta += "  " + f.CreatedAt.Format("02.01.2006 15:04")
		}
		sb.WriteString(p.theme.ListMeta.Render("  " + meta))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(p.theme.ListMeta.Render("/detach <name> entfernt einen Anhang. Esc schließt."))
	return p.theme.OverlayBox.Width(p.width).Render(sb.String())
}
