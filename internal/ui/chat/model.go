// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/plauschhq/plausch/internal/archive"
	"github.com/plauschhq/plausch/internal/commands"
	"github.com/plauschhq/plausch/internal/store"
	"github.com/plauschhq/plausch/internal/ui/components"
	"github.com/plauschhq/plausch/internal/ui/styles"
)

// ===== FOCUS AND OVERLAYS =====

// focusArea identifies which pane receives key input.
type focusArea int

const (
	focusInput focusArea = iota
	focusSidebar
)

// overlayKind identifies the modal overlay currently shown, if any.
type overlayKind int

const (
	overlayNone overlayKind = iota
	overlayHelp
	overlayFiles
	overlaySearch
)

// sidebarWidth is fixed; the transcript takes the rest.
const sidebarWidth = 32

// ===== CHAT MODEL =====

// Model is the Bubble Tea model for the chat screen. It owns the
// conversation store and routes every user action through it.
type Model struct {
	theme *styles.Theme

	store   *store.Store
	archive *archive.Archive // nil when the archive is disabled

	registry *commands.Registry
	parser   *commands.Parser

	sidebar    *components.Sidebar
	transcript *components.Transcript
	statusBar  *components.StatusBar
	filesPanel *components.FilesPanel

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	keyMap KeyMap

	width  int
	height int
	ready  bool

	focus   focusArea
	overlay overlayKind

	// Archive search results shown in the search overlay.
	searchQuery   string
	searchResults []archive.SearchResult

	exportDir string

	// busy is a short label shown next to the spinner while an async
	// operation runs; empty means idle.
	busy string
}

// Options configures a chat model.
type Options struct {
	Theme   *styles.Theme
	Store   *store.Store
	Archive *archive.Archive

	// Server and User are shown in the status bar.
	Server string
	User   string

	// ExportDir is where /export writes files. Defaults to the
	// current directory.
	ExportDir string

	// Markdown enables glamour rendering of assistant messages. When
	// off, fenced code blocks are still highlighted.
	Markdown bool
}

// New creates the chat model.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Nachricht schreiben, / für Befehle ..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	registry := commands.NewRegistry()

	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = "."
	}

	return Model{
		theme:      theme,
		store:      opts.Store,
		archive:    opts.Archive,
		registry:   registry,
		parser:     commands.NewParser(registry),
		sidebar:    components.NewSidebar(theme),
		transcript: components.NewTranscript(theme, opts.Markdown),
		statusBar:  components.NewStatusBar(theme, opts.Server, opts.User),
		filesPanel: components.NewFilesPanel(theme),
		viewport:   vp,
		input:      ti,
		spinner:    sp,
		keyMap:     DefaultKeyMap(),
		exportDir:  exportDir,
		busy:       "lade Unterhaltungen",
	}
}

// ===== BUBBLE TEA INTERFACE =====

// Init starts the spinner and kicks off the initial load.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.loadConversations())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.ready = true
		m.refreshTranscript()
		return m, nil

	case spinner.TickMsg:
		if m.busy == "" {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		// The store appends the optimistic copy on the command
		// goroutine, after this model was last rendered. Ticks arrive
		// throughout the send, so re-rendering here keeps the
		// transcript current while the backend is still working.
		m.refreshTranscript()
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)

	// Slash command messages emitted by the registry.
	case commands.NewChatMsg:
		return m.startOp("erstelle Unterhaltung", m.createConversation())
	case commands.RenameChatMsg:
		return m.withActive(func(id string) (Model, tea.Cmd) {
			return m.startOp("benenne um", m.renameConversation(id, msg.Title))
		})
	case commands.SetSystemPromptMsg:
		return m.withActive(func(id string) (Model, tea.Cmd) {
			return m.startOp("setze Systemanweisung", m.setSystemPrompt(id, msg.Prompt))
		})
	case commands.DeleteChatMsg:
		return m.withActive(func(id string) (Model, tea.Cmd) {
			return m.startOp("lösche Unterhaltung", m.deleteConversation(id))
		})
	case commands.AttachFilesMsg:
		return m.withActive(func(id string) (Model, tea.Cmd) {
			return m.startOp("lade Dateien hoch", m.attachFiles(id, msg.Paths))
		})
	case commands.ShowFilesMsg:
		if m.store.Active() == nil {
			m.statusBar.SetError("keine aktive Unterhaltung")
			return m, nil
		}
		m.overlay = overlayFiles
		return m, nil
	case commands.DetachFileMsg:
		return m.detachByName(msg.Name)
	case commands.SearchArchiveMsg:
		if m.archive == nil {
			m.statusBar.SetError("Archiv ist deaktiviert")
			return m, nil
		}
		return m.startOp("durchsuche Archiv", m.searchArchive(msg.Query))
	case commands.ExportChatMsg:
		return m.startOp("exportiere", m.exportConversation(msg.Format))
	case commands.ShowHelpMsg:
		m.overlay = overlayHelp
		return m, nil
	case commands.CommandErrorMsg:
		m.statusBar.SetError(msg.Err.Error())
		return m, nil

	// Async results from the store.
	case convsLoadedMsg:
		return m.finishOp(msg.err, "")
	case detailLoadedMsg:
		return m.finishOp(msg.err, "")
	case chatCreatedMsg:
		m, cmd := m.finishOp(msg.err, "Unterhaltung erstellt")
		m.sidebar.SetCursorTo(m.store.Conversations(), msg.id)
		m.focus = focusInput
		m.input.Focus()
		return m, cmd
	case chatDeletedMsg:
		m, cmd := m.finishOp(msg.err, "Unterhaltung gelöscht")
		m.sidebar.SetCursorTo(m.store.Conversations(), m.store.ActiveID())
		return m, cmd
	case renameDoneMsg:
		return m.finishOp(msg.err, "Titel aktualisiert")
	case systemDoneMsg:
		return m.finishOp(msg.err, "Systemanweisung aktualisiert")
	case sendDoneMsg:
		// Failures already left a notice in the transcript.
		m, cmd := m.finishOp(nil, "")
		if msg.err != nil {
			m.statusBar.SetError(msg.err.Error())
		}
		m.viewport.GotoBottom()
		return m, cmd
	case attachDoneMsg:
		return m.finishOp(msg.err, "Dateien angehängt")
	case detachDoneMsg:
		return m.finishOp(msg.err, "Anhang entfernt")
	case searchDoneMsg:
		m, cmd := m.finishOp(msg.err, "")
		if msg.err == nil {
			m.searchQuery = msg.query
			m.searchResults = msg.results
			m.overlay = overlaySearch
		}
		return m, cmd
	case exportDoneMsg:
		return m.finishOp(msg.err, fmt.Sprintf("exportiert nach %s", msg.path))
	}

	return m, nil
}

// ===== KEY HANDLING =====

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit always works, even with an overlay open.
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	if m.overlay != overlayNone {
		if key.Matches(msg, m.keyMap.Close) || msg.String() == "q" {
			m.overlay = overlayNone
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keyMap.FocusNext):
		// Tab on a partial slash command completes it; otherwise it
		// switches panes.
		if m.focus == focusInput && m.tryCompleteCommand() {
			return m, nil
		}
		if m.focus == focusInput {
			m.focus = focusSidebar
			m.input.Blur()
			m.sidebar.SetCursorTo(m.store.Conversations(), m.store.ActiveID())
		} else {
			m.focus = focusInput
			m.input.Focus()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.NewChat):
		return m.startOp("erstelle Unterhaltung", m.createConversation())

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	if m.focus == focusSidebar {
		return m.handleSidebarKey(msg)
	}
	return m.handleInputKey(msg)
}

func (m Model) handleSidebarKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	convs := m.store.Conversations()
	switch {
	case key.Matches(msg, m.keyMap.Up):
		m.sidebar.MoveCursor(-1, len(convs))
	case key.Matches(msg, m.keyMap.Down):
		m.sidebar.MoveCursor(1, len(convs))
	case key.Matches(msg, m.keyMap.Submit):
		if cursor := m.sidebar.Cursor(); cursor >= 0 && cursor < len(convs) {
			id := convs[cursor].ID
			m.focus = focusInput
			m.input.Focus()
			if id != m.store.ActiveID() {
				return m.startOp("lade Unterhaltung", m.activateConversation(id))
			}
		}
	case key.Matches(msg, m.keyMap.Close):
		m.focus = focusInput
		m.input.Focus()
	}
	return m, nil
}

func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil
	case key.Matches(msg, m.keyMap.Submit):
		return m.submitInput()
	case key.Matches(msg, m.keyMap.Close):
		m.statusBar.Clear()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitInput dispatches the input line: slash commands go through the
// registry, everything else is sent as a chat message.
func (m Model) submitInput() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	m.input.SetValue("")
	m.statusBar.Clear()

	if commands.IsCommand(text) {
		return m, commands.Execute(m.parser, text)
	}

	id := m.store.ActiveID()
	if id == "" {
		m.statusBar.SetError("keine aktive Unterhaltung")
		return m, nil
	}
	if m.store.Sending(id) {
		m.statusBar.SetError("eine Antwort steht noch aus")
		return m, nil
	}

	m, cmd := m.startOp("warte auf Antwort", m.postMessage(id, text))
	m.viewport.GotoBottom()
	return m, cmd
}

// ===== OPERATION LIFECYCLE =====

// startOp marks the model busy and returns the command plus a spinner
// tick so the indicator animates.
func (m Model) startOp(label string, cmd tea.Cmd) (Model, tea.Cmd) {
	m.busy = label
	return m, tea.Batch(cmd, m.spinner.Tick)
}

// finishOp clears the busy state, reports the outcome on the status
// bar, and re-renders sidebar-visible state.
func (m Model) finishOp(err error, notice string) (Model, tea.Cmd) {
	m.busy = ""
	if err != nil {
		m.statusBar.SetError(err.Error())
	} else if notice != "" {
		m.statusBar.SetNotice(notice)
	}
	m.refreshTranscript()
	return m, nil
}

// withActive runs fn with the active conversation id, or reports an
// error when nothing is selected.
func (m Model) withActive(fn func(id string) (Model, tea.Cmd)) (Model, tea.Cmd) {
	id := m.store.ActiveID()
	if id == "" {
		m.statusBar.SetError("keine aktive Unterhaltung")
		return m, nil
	}
	return fn(id)
}

// tryCompleteCommand completes a partial slash command in the input.
// It reports false when the input is not a completable prefix, so Tab
// falls through to pane switching. An ambiguous prefix lists the
// candidates on the status bar instead.
func (m *Model) tryCompleteCommand() bool {
	val := strings.TrimSpace(m.input.Value())
	if !commands.IsCommand(val) || strings.Contains(val, " ") {
		return false
	}
	matches := m.registry.Matching(val)
	switch len(matches) {
	case 0:
		return false
	case 1:
		m.input.SetValue(matches[0].Name + " ")
		m.input.CursorEnd()
		return true
	default:
		names := make([]string, len(matches))
		for i, cmd := range matches {
			names[i] = cmd.Name
		}
		m.statusBar.SetNotice(strings.Join(names, "  "))
		return true
	}
}

// detachByName resolves an attachment by filename in the active
// conversation and removes it.
func (m Model) detachByName(name string) (Model, tea.Cmd) {
	conv := m.store.Active()
	if conv == nil {
		m.statusBar.SetError("keine aktive Unterhaltung")
		return m, nil
	}
	name = strings.TrimSpace(name)
	for i := range conv.Files {
		if conv.Files[i].Name == name {
			m.overlay = overlayNone
			return m.startOp("entferne Anhang", m.removeAttachment(conv.ID, conv.Files[i].ID))
		}
	}
	m.statusBar.SetError(fmt.Sprintf("kein Anhang namens %q", name))
	return m, nil
}

// ===== LAYOUT =====

// layout distributes the window between the panes. Called on every
// resize.
func (m *Model) layout() {
	contentHeight := m.height - 4 // header, input, status bar
	if contentHeight < 1 {
		contentHeight = 1
	}
	m.sidebar.SetSize(sidebarWidth, contentHeight)

	transcriptWidth := m.width - sidebarWidth - 3
	if transcriptWidth < 20 {
		transcriptWidth = 20
	}
	m.viewport.Width = transcriptWidth
	m.viewport.Height = contentHeight
	m.transcript.SetWidth(transcriptWidth)
	m.filesPanel.SetWidth(transcriptWidth)

	m.input.Width = m.width - 6
	m.statusBar.SetWidth(m.width)
}

// refreshTranscript re-renders the active conversation into the
// viewport, preserving the bottom-follow behavior.
func (m *Model) refreshTranscript() {
	atBottom := m.viewport.AtBottom()
	conv := m.store.Active()
	sending := conv != nil && m.store.Sending(conv.ID)
	m.viewport.SetContent(m.transcript.Render(conv, sending))
	if atBottom {
		m.viewport.GotoBottom()
	}
}

// busyLabel returns the spinner line for the status bar.
func (m Model) busyLabel() string {
	if m.busy == "" {
		return ""
	}
	return m.spinner.View() + " " + m.busy
}

// timestamp for the search overlay rows.
func formatWhen(t time.Time) string {
	return t.Local().Format("02.01.2006 15:04")
}
