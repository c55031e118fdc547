// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plauschhq/plausch/internal/api"
	"github.com/plauschhq/plausch/internal/model"
	"github.com/plauschhq/plausch/internal/store"
)

// ===== FAKE BACKEND =====

type fakeBackend struct {
	mu     sync.Mutex
	nextID int

	convs    []model.Conversation
	messages map[string][]model.Message
	docs     map[string][]model.Attachment

	// completionHook runs at the start of Completion, before any state
	// changes. Lets tests hold a send mid-flight.
	completionHook func()
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		messages: make(map[string][]model.Message),
		docs:     make(map[string][]model.Attachment),
	}
}

func (f *fakeBackend) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeBackend) ListChats(ctx context.Context, userID int) ([]model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Conversation, len(f.convs))
	copy(out, f.convs)
	return out, nil
}

func (f *fakeBackend) CreateChat(ctx context.Context, userID int, title string) (model.Conversation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conv := model.Conversation{ID: f.id("chat"), Title: title, CreatedAt: time.Now()}
	f.convs = append([]model.Conversation{conv}, f.convs...)
	return conv, nil
}

func (f *fakeBackend) UpdateChat(ctx context.Context, chatID string, upd api.ChatUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.convs {
		if f.convs[i].ID == chatID {
			if upd.Title != nil {
				f.convs[i].Title = *upd.Title
			}
			if upd.SystemPrompt != nil {
				f.convs[i].SystemPrompt = *upd.SystemPrompt
			}
			return nil
		}
	}
	return fmt.Errorf("chat %s not found", chatID)
}

func (f *fakeBackend) DeleteChat(ctx context.Context, chatID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.convs {
		if f.convs[i].ID == chatID {
			f.convs = append(f.convs[:i], f.convs[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("chat %s not found", chatID)
}

func (f *fakeBackend) ListMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Message(nil), f.messages[chatID]...), nil
}

func (f *fakeBackend) Completion(ctx context.Context, chatID, message string) error {
	if f.completionHook != nil {
		f.completionHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages[chatID] = append(f.messages[chatID],
		model.Message{ID: f.id("msg"), Role: model.RoleUser, Content: message, CreatedAt: time.Now()},
		model.Message{ID: f.id("msg"), Role: model.RoleAssistant, Content: "Antwort auf: " + message, CreatedAt: time.Now()},
	)
	return nil
}

func (f *fakeBackend) ListDocuments(ctx context.Context, chatID string) ([]model.Attachment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Attachment(nil), f.docs[chatID]...), nil
}

func (f *fakeBackend) UploadDocument(ctx context.Context, chatID, filename string, content io.Reader) error {
	data, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[chatID] = append(f.docs[chatID], model.Attachment{
		ID:   f.id("doc"),
		Name: filename,
		Size: int64(len(data)),
		Type: model.TypeFromName(filename),
	})
	return nil
}

func (f *fakeBackend) DeleteDocument(ctx context.Context, documentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for chatID, docs := range f.docs {
		for i := range docs {
			if docs[i].ID == documentID {
				f.docs[chatID] = append(docs[:i], docs[i+1:]...)
				return nil
			}
		}
	}
	return fmt.Errorf("document %s not found", documentID)
}

// ===== HARNESS =====

func newTestModel(t *testing.T) (Model, *fakeBackend) {
	t.Helper()
	backend := newFakeBackend()
	st := store.New(backend, store.Options{
		UserID:    7,
		StatePath: filepath.Join(t.TempDir(), "state.json"),
	})
	m := New(Options{
		Store:  st,
		Server: "chat.example.org",
		User:   "anna",
	})
	m = resize(m)
	return m, backend
}

func resize(m Model) Model {
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model)
}

// drain executes a command tree and returns the produced messages,
// flattening batches.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, drain(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// deliver feeds every message a command produces back into the model,
// the way the Bubble Tea runtime would, until no commands remain.
// Spinner ticks are dropped so the loop terminates.
func deliver(m Model, cmd tea.Cmd) Model {
	for _, msg := range drain(cmd) {
		switch msg.(type) {
		case tea.QuitMsg, spinner.TickMsg:
			continue
		}
		updated, next := m.Update(msg)
		m = updated.(Model)
		m = deliver(m, next)
	}
	return m
}

func typeAndSubmit(m Model, text string) Model {
	m.input.SetValue(text)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return deliver(updated.(Model), cmd)
}

// ===== TESTS =====

func TestInitLoadsConversations(t *testing.T) {
	m, backend := newTestModel(t)
	_, err := backend.CreateChat(context.Background(), 7, "Urlaubsplanung")
	require.NoError(t, err)

	m = deliver(m, m.Init())

	convs := m.store.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, "Urlaubsplanung", convs[0].Title)
	assert.Equal(t, convs[0].ID, m.store.ActiveID())
	assert.Empty(t, m.busy)
}

func TestSlashNewCreatesAndActivates(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(m, m.Init())

	m = typeAndSubmit(m, "/new")

	convs := m.store.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, convs[0].ID, m.store.ActiveID())
	assert.True(t, convs[0].DetailLoaded)
	assert.Equal(t, focusInput, m.focus)
}

func TestPlainTextIsSent(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(m, m.Init())
	m = typeAndSubmit(m, "/new")

	m = typeAndSubmit(m, "Hallo Welt")

	conv := m.store.Active()
	require.NotNil(t, conv)
	require.Len(t, conv.Messages, 2)
	assert.Equal(t, "Hallo Welt", conv.Messages[0].Content)
	assert.Equal(t, "Antwort auf: Hallo Welt", conv.Messages[1].Content)
	for _, msg := range conv.Messages {
		assert.False(t, msg.IsLocal())
	}
	assert.Empty(t, m.input.Value())
}

func TestOptimisticMessageVisibleWhileSending(t *testing.T) {
	m, backend := newTestModel(t)
	m = deliver(m, m.Init())
	m = typeAndSubmit(m, "/new")
	id := m.store.ActiveID()

	entered := make(chan struct{})
	release := make(chan struct{})
	backend.completionHook = func() {
		close(entered)
		<-release
	}

	m.input.SetValue("Hallo Welt")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	// The runtime executes commands on their own goroutine; the send
	// blocks inside the backend until released.
	done := make(chan struct{})
	go func() {
		defer close(done)
		drain(cmd)
	}()
	<-entered

	require.True(t, m.store.Sending(id))

	// A spinner tick mid-flight re-renders the transcript, which now
	// carries the optimistic copy and the typing indicator.
	updated, _ = m.Update(spinner.TickMsg{})
	m = updated.(Model)
	view := m.viewport.View()
	assert.Contains(t, view, "Hallo Welt")
	assert.Contains(t, view, "schreibt")

	close(release)
	<-done
	require.NoError(t, m.store.LoadDetail(context.Background(), id))
	assert.False(t, m.store.Get(id).HasLocalMessages())
}

func TestTabCompletesCommand(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(m, m.Init())

	m.input.SetValue("/ren")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)

	assert.Equal(t, "/rename ", m.input.Value())
	assert.Equal(t, focusInput, m.focus)
}

func TestTabListsAmbiguousCommands(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(m, m.Init())

	m.input.SetValue("/s")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)

	assert.Equal(t, "/s", m.input.Value())
	assert.Equal(t, focusInput, m.focus)
	view := m.View()
	assert.Contains(t, view, "/search")
	assert.Contains(t, view, "/system")
}

func TestPlainTextWithoutActiveShowsError(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(m, m.Init())

	m = typeAndSubmit(m, "Hallo")

	assert.Contains(t, m.View(), "keine aktive Unterhaltung")
}

func TestRenameCommand(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(m, m.Init())
	m = typeAndSubmit(m, "/new")

	m = typeAndSubmit(m, "/rename Projekt Omega")

	assert.Equal(t, "Projekt Omega", m.store.Active().Title)
}

func TestUnknownCommandShowsError(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(m, m.Init())

	m = typeAndSubmit(m, "/frobnicate")

	assert.Contains(t, m.View(), "unbekannter Befehl")
}

func TestDeleteCommandActivatesNext(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(m, m.Init())
	m = typeAndSubmit(m, "/new")
	first := m.store.ActiveID()
	m = typeAndSubmit(m, "/new")
	second := m.store.ActiveID()
	require.NotEqual(t, first, second)

	m = typeAndSubmit(m, "/delete")

	convs := m.store.Conversations()
	require.Len(t, convs, 1)
	assert.Equal(t, first, convs[0].ID)
	assert.Equal(t, first, m.store.ActiveID())
}

func TestDetachByName(t *testing.T) {
	m, backend := newTestModel(t)
	m = deliver(m, m.Init())
	m = typeAndSubmit(m, "/new")
	id := m.store.ActiveID()

	require.NoError(t, backend.UploadDocument(context.Background(), id, "notizen.txt", strings.NewReader("inhalt")))
	require.NoError(t, m.store.LoadDetail(context.Background(), id))

	m = typeAndSubmit(m, "/detach notizen.txt")

	assert.Empty(t, m.store.Active().Files)
	assert.Contains(t, m.View(), "Anhang entfernt")
}

func TestDetachUnknownName(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(m, m.Init())
	m = typeAndSubmit(m, "/new")

	m = typeAndSubmit(m, "/detach gibtsnicht.txt")

	assert.Contains(t, m.View(), "kein Anhang namens")
}

func TestHelpOverlayOpensAndCloses(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(m, m.Init())

	m = typeAndSubmit(m, "/help")
	assert.Equal(t, overlayHelp, m.overlay)
	assert.Contains(t, m.View(), "Hilfe")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	assert.Equal(t, overlayNone, m.overlay)
}

func TestFilesOverlayRequiresActive(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(m, m.Init())

	m = typeAndSubmit(m, "/files")

	assert.Equal(t, overlayNone, m.overlay)
	assert.Contains(t, m.View(), "keine aktive Unterhaltung")
}

func TestSearchWithoutArchive(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(m, m.Init())

	m = typeAndSubmit(m, "/search urlaub")

	assert.Equal(t, overlayNone, m.overlay)
	assert.Contains(t, m.View(), "Archiv ist deaktiviert")
}

func TestTabTogglesFocus(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(m, m.Init())
	require.Equal(t, focusInput, m.focus)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	assert.Equal(t, focusSidebar, m.focus)
	assert.False(t, m.input.Focused())

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	assert.Equal(t, focusInput, m.focus)
	assert.True(t, m.input.Focused())
}

func TestSidebarEnterActivates(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(m, m.Init())
	m = typeAndSubmit(m, "/new")
	m = typeAndSubmit(m, "/new")
	newest := m.store.ActiveID()

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = updated.(Model)
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = updated.(Model)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = deliver(updated.(Model), cmd)

	assert.NotEqual(t, newest, m.store.ActiveID())
	assert.Equal(t, focusInput, m.focus)
}

func TestQuitCommand(t *testing.T) {
	m, _ := newTestModel(t)
	m = deliver(m, m.Init())

	m.input.SetValue("/quit")
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)
	msgs := drain(cmd)
	require.Len(t, msgs, 1)
	assert.IsType(t, tea.QuitMsg{}, msgs[0])
}
