// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"
)

// Message roles. The backend knows exactly two.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// LocalIDPrefix marks message IDs assigned client-side before the backend
// has persisted anything. A message with such an ID must never survive a
// successful reconciliation.
const LocalIDPrefix = "local-"

// Message is a single turn in a conversation.
type Message struct {
	ID        string    `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// NewLocalUserMessage creates an optimistic user message with a client-side ID.
func NewLocalUserMessage(id, content string) Message {
	return Message{
		ID:        id,
		Role:      RoleUser,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewLocalAssistantMessage creates a client-synthesized assistant message,
// used for failure notices shown inline in the transcript.
func NewLocalAssistantMessage(id, content string) Message {
	return Message{
		ID:        id,
		Role:      RoleAssistant,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// IsLocal reports whether the message only exists client-side.
func (m Message) IsLocal() bool {
	return strings.HasPrefix(m.ID, LocalIDPrefix)
}

// Preview returns the first line of the content truncated to maxRunes
// characters, with an ellipsis when something was cut.
func (m Message) Preview(maxRunes int) string {
	line := m.Content
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)

	runes := []rune(line)
	if len(runes) <= maxRunes {
		return line
	}
	if maxRunes <= 3 {
		return string(runes[:maxRunes])
	}
	return string(runes[:maxRunes-3]) + "..."
}
