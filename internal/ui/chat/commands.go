// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/plauschhq/plausch/internal/export"
)

// Store operations wrapped as tea commands. Each runs on its own
// goroutine; the store serializes state mutation internally.

func (m Model) loadConversations() tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		if err := m.store.Load(ctx); err != nil {
			return convsLoadedMsg{err: err}
		}
		if id := m.store.ActiveID(); id != "" {
			if err := m.store.LoadDetail(ctx, id); err != nil {
				return convsLoadedMsg{err: err}
			}
		}
		return convsLoadedMsg{}
	}
}

func (m Model) activateConversation(id string) tea.Cmd {
	return func() tea.Msg {
		return detailLoadedMsg{id: id, err: m.store.Activate(context.Background(), id)}
	}
}

func (m Model) createConversation() tea.Cmd {
	return func() tea.Msg {
		conv, err := m.store.CreateConversation(context.Background())
		if err != nil {
			return chatCreatedMsg{err: err}
		}
		return chatCreatedMsg{id: conv.ID}
	}
}

func (m Model) deleteConversation(id string) tea.Cmd {
	return func() tea.Msg {
		if err := m.store.DeleteConversation(context.Background(), id); err != nil {
			return chatDeletedMsg{err: err}
		}
		// The next conversation became active; fetch its transcript.
		if next := m.store.ActiveID(); next != "" {
			if err := m.store.LoadDetail(context.Background(), next); err != nil {
				return chatDeletedMsg{err: err}
			}
		}
		return chatDeletedMsg{}
	}
}

func (m Model) renameConversation(id, title string) tea.Cmd {
	return func() tea.Msg {
		return renameDoneMsg{err: m.store.RenameConversation(context.Background(), id, title)}
	}
}

func (m Model) setSystemPrompt(id, prompt string) tea.Cmd {
	return func() tea.Msg {
		return systemDoneMsg{err: m.store.SetSystemPrompt(context.Background(), id, prompt)}
	}
}

func (m Model) postMessage(id, text string) tea.Cmd {
	return func() tea.Msg {
		return sendDoneMsg{id: id, err: m.store.PostMessage(context.Background(), id, text)}
	}
}

func (m Model) attachFiles(id string, paths []string) tea.Cmd {
	return func() tea.Msg {
		return attachDoneMsg{err: m.store.AttachFiles(context.Background(), id, paths)}
	}
}

func (m Model) removeAttachment(id, attachmentID string) tea.Cmd {
	return func() tea.Msg {
		return detachDoneMsg{err: m.store.RemoveAttachment(context.Background(), id, attachmentID)}
	}
}

func (m Model) searchArchive(query string) tea.Cmd {
	return func() tea.Msg {
		if m.archive == nil {
			return searchDoneMsg{query: query, err: fmt.Errorf("archive is disabled")}
		}
		results, err := m.archive.Search(query, 25)
		return searchDoneMsg{query: query, results: results, err: err}
	}
}

func (m Model) exportConversation(format string) tea.Cmd {
	return func() tea.Msg {
		conv := m.store.Active()
		if conv == nil {
			return exportDoneMsg{err: fmt.Errorf("no active conversation")}
		}
		opts := export.DefaultOptions()
		opts.OutputDir = m.exportDir
		exporter, err := export.ForFormat(format, opts)
		if err != nil {
			return exportDoneMsg{err: err}
		}
		path, err := export.ToFile(conv, exporter, opts)
		return exportDoneMsg{path: path, err: err}
	}
}
