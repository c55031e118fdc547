// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/plauschhq/plausch/internal/model"
)

// ===== TEXT EXPORTER =====

// TextExporter renders conversations as plain text for pasting into
// places that do not speak Markdown.
type TextExporter struct {
	options *Options
}

// NewTextExporter creates a plain text exporter.
func NewTextExporter(opts *Options) *TextExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &TextExporter{options: opts}
}

// Export converts a conversation to plain text.
func (e *TextExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}

	var sb strings.Builder

	if e.options.IncludeMetadata {
		sb.WriteString(conv.DisplayTitle() + "\n")
		sb.WriteString(strings.Repeat("=", len([]rune(conv.DisplayTitle()))) + "\n")
		sb.WriteString("Erstellt: " + formatTimestamp(conv.CreatedAt) + "\n")
		sb.WriteString(fmt.Sprintf("Nachrichten: %d\n\n", len(conv.Messages)))
	}

	for i := range conv.Messages {
		msg := &conv.Messages[i]
		label := roleLabel(msg.Role)
		if e.options.IncludeTimestamps {
			label += " (" + formatShortTimestamp(msg.CreatedAt) + ")"
		}
		sb.WriteString(label + ":\n")
		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for plain text.
func (e *TextExporter) FileExtension() string {
	return ".txt"
}
