// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/plauschhq/plausch/internal/api"
	"github.com/plauschhq/plausch/internal/model"
	"github.com/plauschhq/plausch/internal/util"
)

// FailureNotice is the synthetic assistant message appended to a transcript
// when a send fails. The backend never produces it; only the client does.
const FailureNotice = "Fehler: Antwort konnte nicht empfangen werden."

// Backend is the slice of the API client the store depends on.
type Backend interface {
	ListChats(ctx context.Context, userID int) ([]model.Conversation, error)
	CreateChat(ctx context.Context, userID int, title string) (model.Conversation, error)
	UpdateChat(ctx context.Context, chatID string, upd api.ChatUpdate) error
	DeleteChat(ctx context.Context, chatID string) error
	ListMessages(ctx context.Context, chatID string) ([]model.Message, error)
	Completion(ctx context.Context, chatID, message string) error
	ListDocuments(ctx context.Context, chatID string) ([]model.Attachment, error)
	UploadDocument(ctx context.Context, chatID, filename string, content io.Reader) error
	DeleteDocument(ctx context.Context, documentID string) error
}

// Archiver receives reconciled transcripts for local persistence. Archiving
// is best-effort; the store logs failures and moves on.
type Archiver interface {
	Record(conv *model.Conversation) error
}

// Options configures a Store.
type Options struct {
	// UserID is the backend identity all list/create calls are scoped to.
	// Zero means no identity; the store refuses to load.
	UserID int

	// StatePath, when non-empty, is the file the last-active conversation
	// id is persisted to across restarts.
	StatePath string

	// Archive, when non-nil, receives every reconciled transcript.
	Archive Archiver

	// Logger receives operational log lines. Nil discards them.
	Logger *log.Logger
}

// Store owns the conversation list and transcript state.
//
// All exported methods are safe for concurrent use. Network calls happen
// outside the lock; only state mutation holds it.
type Store struct {
	backend Backend
	userID  int

	statePath string
	archive   Archiver
	logger    *log.Logger

	mu        sync.Mutex
	chats     []*model.Conversation
	activeID  string
	sending   map[string]bool
	uploading map[string]bool

	localSeq atomic.Int64
}

// New creates a Store talking to the given backend.
func New(backend Backend, opts Options) *Store {
	return &Store{
		backend:   backend,
		userID:    opts.UserID,
		statePath: opts.StatePath,
		archive:   opts.Archive,
		logger:    opts.Logger,
		sending:   make(map[string]bool),
		uploading: make(map[string]bool),
	}
}

// ===== SNAPSHOT ACCESSORS =====

// Conversations returns a deep copy of the list in display order.
func (s *Store) Conversations() []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Conversation, len(s.chats))
	for i, c := range s.chats {
		out[i] = c.Clone()
	}
	return out
}

// ActiveID returns the id of the active conversation, or "" when the list
// is empty.
func (s *Store) ActiveID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeID
}

// Active returns a deep copy of the active conversation, or nil.
func (s *Store) Active() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.find(s.activeID); c != nil {
		return c.Clone()
	}
	return nil
}

// Get returns a deep copy of the conversation with the given id, or nil.
func (s *Store) Get(id string) *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.find(id); c != nil {
		return c.Clone()
	}
	return nil
}

// Sending reports whether a send is in flight for the conversation.
func (s *Store) Sending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sending[id]
}

// Uploading reports whether an upload batch is in flight for the
// conversation.
func (s *Store) Uploading(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploading[id]
}

// ===== LIST OPERATIONS =====

// Load fetches the conversation list and selects an active conversation:
// the previously active one when it still exists, otherwise the persisted
// last-active id, otherwise the first entry. An empty account stays empty;
// nothing is created implicitly.
//
// On failure the list is cleared so the UI never renders stale entries.
func (s *Store) Load(ctx context.Context) error {
	if s.userID == 0 {
		return ErrNoIdentity
	}

	chats, err := s.backend.ListChats(ctx, s.userID)
	if err != nil {
		s.mu.Lock()
		s.chats = nil
		s.activeID = ""
		s.mu.Unlock()
		s.logf("load: list failed: %v", err)
		return fmt.Errorf("load conversations: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.activeID
	if prev == "" {
		prev = s.savedActiveID()
	}

	s.chats = make([]*model.Conversation, len(chats))
	for i := range chats {
		c := chats[i]
		s.chats[i] = &c
	}

	s.activeID = ""
	if s.find(prev) != nil {
		s.activeID = prev
	} else if len(s.chats) > 0 {
		s.activeID = s.chats[0].ID
	}
	s.persistActiveLocked()
	return nil
}

// Select makes the conversation with the given id active. Selecting the
// already-active conversation is a no-op. The caller follows up with
// LoadDetail; Activate does both.
func (s *Store) Select(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == s.activeID {
		return nil
	}
	if s.find(id) == nil {
		return ErrNotFound
	}
	s.activeID = id
	s.persistActiveLocked()
	return nil
}

// Activate selects the conversation and fetches its detail.
func (s *Store) Activate(ctx context.Context, id string) error {
	if err := s.Select(id); err != nil {
		return err
	}
	return s.LoadDetail(ctx, id)
}

// LoadDetail fetches messages and attachments for a conversation and
// replaces its local detail wholesale. On failure the previous detail is
// kept untouched.
func (s *Store) LoadDetail(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.find(id) == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.mu.Unlock()

	msgs, err := s.backend.ListMessages(ctx, id)
	if err != nil {
		return fmt.Errorf("load messages: %w", err)
	}
	docs, err := s.backend.ListDocuments(ctx, id)
	if err != nil {
		return fmt.Errorf("load attachments: %w", err)
	}

	s.applyDetail(id, msgs, docs)
	return nil
}

// CreateConversation asks the backend for a fresh conversation, prepends it
// to the list and makes it active. Nothing changes locally on failure.
func (s *Store) CreateConversation(ctx context.Context) (*model.Conversation, error) {
	if s.userID == 0 {
		return nil, ErrNoIdentity
	}

	conv, err := s.backend.CreateChat(ctx, s.userID, model.PlaceholderTitle)
	if err != nil {
		return nil, fmt.Errorf("create conversation: %w", err)
	}
	conv.DetailLoaded = true

	s.mu.Lock()
	defer s.mu.Unlock()
	s.chats = append([]*model.Conversation{&conv}, s.chats...)
	s.activeID = conv.ID
	s.persistActiveLocked()
	return conv.Clone(), nil
}

// DeleteConversation removes a conversation backend-first; local state only
// changes after the server confirmed. Deleting the active conversation
// activates the first remaining one; deleting any other leaves the active
// id alone.
func (s *Store) DeleteConversation(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.find(id) == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.mu.Unlock()

	if err := s.backend.DeleteChat(ctx, id); err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.chats {
		if c.ID == id {
			s.chats = append(s.chats[:i], s.chats[i+1:]...)
			break
		}
	}
	if s.activeID == id {
		s.activeID = ""
		if len(s.chats) > 0 {
			s.activeID = s.chats[0].ID
		}
		s.persistActiveLocked()
	}
	return nil
}

// RenameConversation sets a new title, applying it locally first and then
// pushing it to the backend. A failed push reports the error but does not
// roll the title back; the next Load converges.
func (s *Store) RenameConversation(ctx context.Context, id, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	c := s.find(id)
	if c == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	c.Title = title
	s.mu.Unlock()

	if err := s.backend.UpdateChat(ctx, id, api.ChatUpdate{Title: &title}); err != nil {
		return fmt.Errorf("rename conversation: %w", err)
	}
	return nil
}

// SetSystemPrompt sets the per-conversation system instruction. An empty
// string clears it. Same optimistic-then-push contract as rename.
func (s *Store) SetSystemPrompt(ctx context.Context, id, prompt string) error {
	s.mu.Lock()
	c := s.find(id)
	if c == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	c.SystemPrompt = prompt
	s.mu.Unlock()

	if err := s.backend.UpdateChat(ctx, id, api.ChatUpdate{SystemPrompt: &prompt}); err != nil {
		return fmt.Errorf("set system prompt: %w", err)
	}
	return nil
}

// ===== SENDING =====

// PostMessage sends a user turn through the completion endpoint.
//
// The user message is appended optimistically with a client-side id, the
// backend generates and persists both turns, and on success the transcript
// is refetched wholesale so the optimistic copy is discarded in favor of
// the server's record. On failure the optimistic message stays and a
// synthetic assistant notice is appended after it; nothing retries.
//
// Only the active conversation accepts sends, and at most one send per
// conversation is in flight at a time.
func (s *Store) PostMessage(ctx context.Context, id, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}

	s.mu.Lock()
	c := s.find(id)
	if c == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	if id != s.activeID {
		s.mu.Unlock()
		return ErrNotActive
	}
	if s.sending[id] {
		s.mu.Unlock()
		return ErrSendInFlight
	}
	s.sending[id] = true
	c.Messages = append(c.Messages, model.NewLocalUserMessage(s.nextLocalID(), text))
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.sending, id)
		s.mu.Unlock()
	}()

	if err := s.backend.Completion(ctx, id, text); err != nil {
		s.appendFailureNotice(id)
		s.logf("send: completion failed for %s: %v", id, err)
		return fmt.Errorf("send message: %w", err)
	}

	// The backend persisted both turns. Refetch instead of patching the
	// optimistic copy so local ids never survive.
	msgs, err := s.backend.ListMessages(ctx, id)
	if err != nil {
		s.appendFailureNotice(id)
		s.logf("send: reconcile messages failed for %s: %v", id, err)
		return fmt.Errorf("reconcile transcript: %w", err)
	}
	docs, err := s.backend.ListDocuments(ctx, id)
	if err != nil {
		s.appendFailureNotice(id)
		s.logf("send: reconcile attachments failed for %s: %v", id, err)
		return fmt.Errorf("reconcile transcript: %w", err)
	}

	s.applyDetail(id, msgs, docs)
	return nil
}

// ===== ATTACHMENTS =====

// AttachFiles uploads the given paths one at a time, in order. The first
// failure aborts the batch; files already uploaded stay uploaded. The
// attachment list is refetched afterwards either way so local state shows
// exactly what the server holds.
func (s *Store) AttachFiles(ctx context.Context, id string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}

	s.mu.Lock()
	if s.find(id) == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	if s.uploading[id] {
		s.mu.Unlock()
		return ErrUploadInFlight
	}
	s.uploading[id] = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		delete(s.uploading, id)
		s.mu.Unlock()
	}()

	var failed error
	for i, path := range paths {
		if err := s.uploadOne(ctx, id, path); err != nil {
			failed = &UploadError{Path: path, Index: i, Err: err}
			s.logf("attach: %v", failed)
			break
		}
	}

	if docs, err := s.backend.ListDocuments(ctx, id); err != nil {
		s.logf("attach: refresh failed for %s: %v", id, err)
		if failed == nil {
			failed = fmt.Errorf("refresh attachments: %w", err)
		}
	} else {
		s.applyDocs(id, docs)
	}
	return failed
}

// RemoveAttachment deletes an attachment backend-first and refreshes the
// attachment list on success. On failure the attachment stays visible.
func (s *Store) RemoveAttachment(ctx context.Context, id, attachmentID string) error {
	s.mu.Lock()
	c := s.find(id)
	if c == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	if c.FindAttachment(attachmentID) == nil {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.mu.Unlock()

	if err := s.backend.DeleteDocument(ctx, attachmentID); err != nil {
		return fmt.Errorf("remove attachment: %w", err)
	}

	docs, err := s.backend.ListDocuments(ctx, id)
	if err != nil {
		s.logf("detach: refresh failed for %s: %v", id, err)
		return fmt.Errorf("refresh attachments: %w", err)
	}
	s.applyDocs(id, docs)
	return nil
}

func (s *Store) uploadOne(ctx context.Context, id, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return s.backend.UploadDocument(ctx, id, filepath.Base(path), f)
}

// ===== INTERNALS =====

// find returns the live record for id. Callers hold the lock.
func (s *Store) find(id string) *model.Conversation {
	if id == "" {
		return nil
	}
	for _, c := range s.chats {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// applyDetail replaces messages and attachments wholesale. A conversation
// deleted while the fetch was in flight is skipped silently.
func (s *Store) applyDetail(id string, msgs []model.Message, docs []model.Attachment) {
	s.mu.Lock()
	c := s.find(id)
	if c == nil {
		s.mu.Unlock()
		return
	}
	c.Messages = msgs
	c.Files = docs
	c.DetailLoaded = true
	snapshot := c.Clone()
	s.mu.Unlock()

	if s.archive != nil {
		if err := s.archive.Record(snapshot); err != nil {
			s.logf("archive: record failed for %s: %v", id, err)
		}
	}
}

func (s *Store) applyDocs(id string, docs []model.Attachment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.find(id); c != nil {
		c.Files = docs
	}
}

// appendFailureNotice writes the failure marker into the transcript as a
// client-side assistant message.
func (s *Store) appendFailureNotice(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c := s.find(id); c != nil {
		c.Messages = append(c.Messages, model.NewLocalAssistantMessage(s.nextLocalID(), FailureNotice))
	}
}

// nextLocalID returns a client-side message id, unique for the lifetime of
// the store.
func (s *Store) nextLocalID() string {
	return model.LocalIDPrefix + strconv.FormatInt(s.localSeq.Add(1), 10)
}

// savedActiveID reads the persisted last-active conversation id. Callers
// hold the lock; the read is best-effort.
func (s *Store) savedActiveID() string {
	if s.statePath == "" {
		return ""
	}
	data, err := os.ReadFile(s.statePath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// persistActiveLocked writes the active id to the state file so the next
// session resumes where this one left off.
func (s *Store) persistActiveLocked() {
	if s.statePath == "" {
		return
	}
	if err := util.AtomicWriteFile(s.statePath, []byte(s.activeID+"\n"), 0o600); err != nil {
		s.logf("state: persist failed: %v", err)
	}
}

func (s *Store) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}
