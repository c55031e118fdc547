// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "time"

// PlaceholderTitle is the title the backend assigns to a freshly created
// conversation. While a conversation still carries it, the sidebar derives a
// display title from the first user message instead.
const PlaceholderTitle = "Neuer Chat"

// Conversation holds one chat thread: metadata, messages and attachments.
//
// Messages and Files are lazily loaded; a conversation fresh from the list
// endpoint has empty detail until the store fetches it.
type Conversation struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	SystemPrompt string    `json:"system_prompt,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	Messages []Message    `json:"messages"`
	Files    []Attachment `json:"files"`

	// DetailLoaded is true once messages/attachments have been fetched at
	// least once. Distinguishes "no messages" from "not loaded yet".
	DetailLoaded bool `json:"-"`
}

// DisplayTitle returns the title to render in the sidebar. A conversation
// still carrying the backend placeholder shows a preview of its first user
// message when one is available.
func (c *Conversation) DisplayTitle() string {
	if c.Title != "" && c.Title != PlaceholderTitle {
		return c.Title
	}
	for i := range c.Messages {
		if c.Messages[i].Role == RoleUser && c.Messages[i].Content != "" {
			return c.Messages[i].Preview(40)
		}
	}
	if c.Title != "" {
		return c.Title
	}
	return PlaceholderTitle
}

// Preview returns a short excerpt for list display.
func (c *Conversation) Preview() string {
	for i := len(c.Messages) - 1; i >= 0; i-- {
		if c.Messages[i].Content != "" {
			return c.Messages[i].Preview(80)
		}
	}
	return "Noch keine Nachrichten"
}

// MessageCount returns the number of messages.
func (c *Conversation) MessageCount() int {
	return len(c.Messages)
}

// HasLocalMessages reports whether any message is client-side only.
func (c *Conversation) HasLocalMessages() bool {
	for i := range c.Messages {
		if c.Messages[i].IsLocal() {
			return true
		}
	}
	return false
}

// FindAttachment returns the attachment with the given ID, or nil.
func (c *Conversation) FindAttachment(id string) *Attachment {
	for i := range c.Files {
		if c.Files[i].ID == id {
			return &c.Files[i]
		}
	}
	return nil
}

// Clone returns a deep copy. The store hands clones to the UI so renders
// never race with in-flight mutations.
func (c *Conversation) Clone() *Conversation {
	clone := *c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	clone.Files = make([]Attachment, len(c.Files))
	copy(clone.Files, c.Files)
	return &clone
}
