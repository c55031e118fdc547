// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/plauschhq/plausch/internal/util"
)

// View renders the chat screen.
func (m Model) View() string {
	if !m.ready {
		return "Starte plausch ..."
	}

	if m.overlay != overlayNone {
		return m.renderOverlay()
	}

	header := m.renderHeader()
	body := lipgloss.JoinHorizontal(
		lipgloss.Top,
		m.sidebar.Render(m.store.Conversations(), m.store.ActiveID()),
		" ",
		m.viewport.View(),
	)
	input := m.theme.InputContainer.Width(m.width - 2).Render(m.input.View())
	status := m.statusBar.Render(m.busyLabel())

	return lipgloss.JoinVertical(lipgloss.Left, header, body, input, status)
}

// renderHeader shows the app name and the active conversation title.
func (m Model) renderHeader() string {
	title := "plausch"
	if conv := m.store.Active(); conv != nil {
		title = fmt.Sprintf("plausch — %s", conv.DisplayTitle())
	}
	return m.theme.Header.Width(m.width).Render(util.TruncateWidth(title, m.width-2))
}

// ===== OVERLAYS =====

func (m Model) renderOverlay() string {
	var content string
	switch m.overlay {
	case overlayHelp:
		content = m.renderHelp()
	case overlayFiles:
		content = m.filesPanel.Render(m.store.Active())
	case overlaySearch:
		content = m.renderSearchResults()
	}

	box := m.theme.OverlayBox.Width(min(m.width-4, 76)).Render(content)
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// renderHelp lists all commands grouped by category, plus the key
// bindings.
func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.theme.OverlayTitle.Render("Hilfe"))
	b.WriteString("\n\n")

	category := ""
	for _, cmd := range m.registry.AllByCategory() {
		if cmd.Category != category {
			if category != "" {
				b.WriteString("\n")
			}
			category = cmd.Category
			b.WriteString(m.theme.ShortcutDesc.Render(category))
			b.WriteString("\n")
		}
		usage := cmd.Usage
		if usage == "" {
			usage = cmd.Name
		}
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			m.theme.ShortcutKey.Render(util.PadRight(usage, 28)),
			cmd.Description))
	}

	b.WriteString("\n")
	b.WriteString(m.theme.ShortcutDesc.Render("Tasten"))
	b.WriteString("\n")
	for _, binding := range []struct{ key, desc string }{
		{"Tab", "Fokus wechseln"},
		{"Enter", "Senden / Unterhaltung öffnen"},
		{"Strg+N", "Neue Unterhaltung"},
		{"Bild auf/ab", "Verlauf blättern"},
		{"Esc", "Schließen"},
		{"Strg+C", "Beenden"},
	} {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			m.theme.ShortcutKey.Render(util.PadRight(binding.key, 12)),
			binding.desc))
	}

	b.WriteString("\n")
	b.WriteString(m.theme.ListMeta.Render("Esc schließt"))
	return b.String()
}

// renderSearchResults shows archive hits for the last /search query.
func (m Model) renderSearchResults() string {
	var b strings.Builder
	b.WriteString(m.theme.OverlayTitle.Render(fmt.Sprintf("Archiv: %q", m.searchQuery)))
	b.WriteString("\n\n")

	if len(m.searchResults) == 0 {
		b.WriteString(m.theme.ListMeta.Render("Keine Treffer."))
		b.WriteString("\n")
	}
	for _, res := range m.searchResults {
		b.WriteString(m.theme.ListItem.Render(res.Title))
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("  %s\n", res.Excerpt))
		b.WriteString(m.theme.ListMeta.Render(fmt.Sprintf("  %s · %s", res.Role, formatWhen(res.CreatedAt))))
		b.WriteString("\n\n")
	}

	b.WriteString(m.theme.ListMeta.Render("Esc schließt"))
	return b.String()
}
