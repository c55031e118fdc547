// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"time"

	"github.com/plauschhq/plausch/internal/model"
)

// Wire types. The backend serializes IDs as numbers and uses its own field
// names; everything is normalized to model types right here.

// chatRecord is a conversation as returned by the chats endpoints.
type chatRecord struct {
	ID           json.Number `json:"id"`
	Title        string      `json:"title"`
	SystemPrompt string      `json:"system_prompt"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func (r chatRecord) toModel() model.Conversation {
	return model.Conversation{
		ID:           r.ID.String(),
		Title:        r.Title,
		SystemPrompt: r.SystemPrompt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		Messages:     []model.Message{},
		Files:        []model.Attachment{},
	}
}

// messageRecord is a message as returned by the messages endpoint.
type messageRecord struct {
	ID        json.Number `json:"id"`
	Role      string      `json:"role"`
	Content   string      `json:"content"`
	CreatedAt time.Time   `json:"created_at"`
}

func (r messageRecord) toModel() model.Message {
	role := r.Role
	// Older backend builds reported the assistant as "bot".
	if role == "bot" {
		role = model.RoleAssistant
	}
	return model.Message{
		ID:        r.ID.String(),
		Role:      role,
		Content:   r.Content,
		CreatedAt: r.CreatedAt,
	}
}

// documentRecord is an attachment as returned by the documents endpoints.
type documentRecord struct {
	ID        json.Number `json:"id"`
	Filename  string      `json:"filename"`
	Filesize  int64       `json:"filesize"`
	CreatedAt time.Time   `json:"created_at"`
}

func (r documentRecord) toModel() model.Attachment {
	return model.Attachment{
		ID:        r.ID.String(),
		Name:      r.Filename,
		Size:      r.Filesize,
		Type:      model.TypeFromName(r.Filename),
		CreatedAt: r.CreatedAt,
	}
}

// createChatRequest is the body of POST /api/chats.
type createChatRequest struct {
	Title  string `json:"title"`
	UserID int    `json:"user_id"`
}

// updateChatRequest is the body of PUT /api/chats/{id}. Nil fields are
// omitted, making the update partial.
type updateChatRequest struct {
	Title        *string `json:"title,omitempty"`
	SystemPrompt *string `json:"system_prompt,omitempty"`
}

// appendMessageRequest is the body of POST /api/chats/{id}/messages.
type appendMessageRequest struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// completionRequest is the body of POST /api/chat/completion. The backend
// persists the user turn itself and generates the assistant turn.
type completionRequest struct {
	ChatID  int64  `json:"chat_id"`
	Message string `json:"message"`
}

// ChatUpdate describes a partial conversation update. Nil fields are left
// untouched server-side.
type ChatUpdate struct {
	Title        *string
	SystemPrompt *string
}
