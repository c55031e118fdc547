// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

// Messages emitted by command handlers. The chat model consumes these and
// drives the store accordingly.

// NewChatMsg requests a fresh conversation.
type NewChatMsg struct{}

// RenameChatMsg requests a title change for the active conversation.
type RenameChatMsg struct {
	Title string
}

// SetSystemPromptMsg requests a system instruction change. An empty
// Prompt clears it.
type SetSystemPromptMsg struct {
	Prompt string
}

// DeleteChatMsg requests deletion of the active conversation.
type DeleteChatMsg struct{}

// AttachFilesMsg requests uploading the given paths to the active
// conversation.
type AttachFilesMsg struct {
	Paths []string
}

// ShowFilesMsg toggles the attachment panel.
type ShowFilesMsg struct{}

// DetachFileMsg requests removal of an attachment, addressed by its
// display name.
type DetachFileMsg struct {
	Name string
}

// SearchArchiveMsg requests a transcript search in the local archive.
type SearchArchiveMsg struct {
	Query string
}

// ExportChatMsg requests a transcript export of the active conversation.
type ExportChatMsg struct {
	Format string // "markdown", "json", "text"
}

// ShowHelpMsg toggles the help overlay.
type ShowHelpMsg struct{}

// CommandErrorMsg carries a parse or validation error for the status bar.
type CommandErrorMsg struct {
	Err error
}
