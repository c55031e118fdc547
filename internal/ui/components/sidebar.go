// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/plauschhq/plausch/internal/model"
	"github.com/plauschhq/plausch/internal/ui/styles"
	"github.com/plauschhq/plausch/internal/util"
)

// ===== CONVERSATION SIDEBAR =====

// Sidebar renders the conversation list. The cursor moves independently
// of the active conversation so the user can browse without switching.
type Sidebar struct {
	theme  *styles.Theme
	width  int
	height int

	cursor int
	offset int
}

// NewSidebar creates a sidebar.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{theme: theme, width: 28}
}

// SetSize sets the rendered dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.width = width
	s.height = height
}

// Width returns the configured width.
func (s *Sidebar) Width() int { return s.width }

// Cursor returns the current cursor index.
func (s *Sidebar) Cursor() int { return s.cursor }

// MoveCursor moves the cursor by delta, clamped to the list.
func (s *Sidebar) MoveCursor(delta, listLen int) {
	s.cursor += delta
	if s.cursor < 0 {
		s.cursor = 0
	}
	if s.cursor >= listLen {
		s.cursor = listLen - 1
	}
	if s.cursor < 0 {
		s.cursor = 0
	}
	s.scrollIntoView(listLen)
}

// SetCursorTo places the cursor on the conversation with the given id.
func (s *Sidebar) SetCursorTo(convs []*model.Conversation, id string) {
	for i, c := range convs {
		if c.ID == id {
			s.cursor = i
			s.scrollIntoView(len(convs))
			return
		}
	}
	s.cursor = 0
	s.offset = 0
}

// visibleRows returns how many conversations fit. Each entry takes two
// rows: title and preview.
func (s *Sidebar) visibleRows() int {
	rows := (s.height - 2) / 2
	if rows < 1 {
		rows = 1
	}
	return rows
}

func (s *Sidebar) scrollIntoView(listLen int) {
	rows := s.visibleRows()
	if s.cursor < s.offset {
		s.offset = s.cursor
	}
	if s.cursor >= s.offset+rows {
		s.offset = s.cursor - rows + 1
	}
	if s.offset < 0 {
		s.offset = 0
	}
	_ = listLen
}

// Render draws the sidebar for the given conversations. activeID marks
// the conversation whose transcript is shown.
func (s *Sidebar) Render(convs []*model.Conversation, activeID string) string {
	var sb strings.Builder

	sb.WriteString(s.theme.SidebarTitle.Render("Unterhaltungen"))
	sb.WriteString("\n\n")

	if len(convs) == 0 {
		sb.WriteString(s.theme.SidebarPreview.Render("Noch keine Unterhaltungen"))
		return s.theme.Sidebar.Height(s.height).Width(s.width).Render(sb.String())
	}

	rows := s.visibleRows()
	end := s.offset + rows
	if end > len(convs) {
		end = len(convs)
	}

	textWidth := s.width - 4
	if textWidth < 8 {
		textWidth = 8
	}

	for i := s.offset; i < end; i++ {
		conv := convs[i]

		title := util.TruncateWidth(conv.DisplayTitle(), textWidth)
		marker := "  "
		if conv.ID == activeID {
			marker = "> "
		}

		itemStyle := s.theme.SidebarItem
		if i == s.cursor {
			itemStyle = s.theme.SidebarItemSelected
		}
		sb.WriteString(itemStyle.Render(marker + title))
		sb.WriteString("\n")

		preview := util.TruncateWidth(conv.Preview(), textWidth)
		sb.WriteString(s.theme.SidebarPreview.Render("  " + preview))
		sb.WriteString("\n")
	}

	return s.theme.Sidebar.Height(s.height).Width(s.width).Render(sb.String())
}
