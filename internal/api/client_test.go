// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plauschhq/plausch/internal/model"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 5*time.Second, 0)
}

func TestListChats(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/users/7/chats", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("X-Client-Session"))
		assert.True(t, strings.HasPrefix(r.Header.Get("User-Agent"), "plausch/"))

		io.WriteString(w, `[
			{"id": 2, "title": "Neuer Chat", "system_prompt": "", "created_at": "2025-05-02T10:00:00Z", "updated_at": "2025-05-02T10:05:00Z"},
			{"id": 1, "title": "Urlaubsplanung", "system_prompt": "Sei knapp.", "created_at": "2025-05-01T09:00:00Z", "updated_at": "2025-05-01T09:30:00Z"}
		]`)
	})

	chats, err := client.ListChats(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, chats, 2)

	assert.Equal(t, "2", chats[0].ID)
	assert.Equal(t, "Neuer Chat", chats[0].Title)
	assert.Equal(t, "1", chats[1].ID)
	assert.Equal(t, "Sei knapp.", chats[1].SystemPrompt)

	// Detail is lazily loaded: empty but non-nil.
	assert.NotNil(t, chats[0].Messages)
	assert.Empty(t, chats[0].Messages)
	assert.NotNil(t, chats[0].Files)
	assert.False(t, chats[0].DetailLoaded)
}

func TestCreateChat(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chats", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Neuer Chat", body["title"])
		assert.Equal(t, float64(7), body["user_id"])

		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id": 99, "title": "Neuer Chat", "created_at": "2025-05-02T10:00:00Z", "updated_at": "2025-05-02T10:00:00Z"}`)
	})

	chat, err := client.CreateChat(context.Background(), 7, "Neuer Chat")
	require.NoError(t, err)
	assert.Equal(t, "99", chat.ID)
	assert.Equal(t, "Neuer Chat", chat.Title)
}

func TestUpdateChat_PartialBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/api/chats/5", r.URL.Path)

		data, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		// Only the title may appear; an omitted system prompt must not be
		// serialized at all (partial update).
		assert.JSONEq(t, `{"title": "Foo"}`, string(data))
	})

	title := "Foo"
	err := client.UpdateChat(context.Background(), "5", ChatUpdate{Title: &title})
	require.NoError(t, err)
}

func TestListMessages_NormalizesRoles(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chats/5/messages", r.URL.Path)
		io.WriteString(w, `[
			{"id": 10, "role": "user", "content": "Hallo", "created_at": "2025-05-02T10:00:00Z"},
			{"id": 11, "role": "bot", "content": "Hi!", "created_at": "2025-05-02T10:00:03Z"}
		]`)
	})

	msgs, err := client.ListMessages(context.Background(), "5")
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, "10", msgs[0].ID)
	// Legacy "bot" collapses to the canonical assistant role.
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.False(t, msgs[1].IsLocal())
}

func TestCompletion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chat/completion", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		// chat_id goes over the wire as a number.
		assert.Equal(t, float64(5), body["chat_id"])
		assert.Equal(t, "Hello", body["message"])
	})

	err := client.Completion(context.Background(), "5", "Hello")
	require.NoError(t, err)
}

func TestCompletion_NonNumericID(t *testing.T) {
	client := NewClient("http://localhost:1", time.Second, 0)
	err := client.Completion(context.Background(), "local-1", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not numeric")
}

func TestListDocuments(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/chats/5/documents", r.URL.Path)
		io.WriteString(w, `[
			{"id": 3, "filename": "Bericht.PDF", "filesize": 2048, "created_at": "2025-05-02T10:00:00Z"}
		]`)
	})

	docs, err := client.ListDocuments(context.Background(), "5")
	require.NoError(t, err)
	require.Len(t, docs, 1)

	assert.Equal(t, "3", docs[0].ID)
	assert.Equal(t, "Bericht.PDF", docs[0].Name)
	assert.Equal(t, int64(2048), docs[0].Size)
	assert.Equal(t, "pdf", docs[0].Type)
}

func TestUploadDocument(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/chats/5/documents", r.URL.Path)

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()

		assert.Equal(t, "notes.txt", header.Filename)
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, "file content", string(data))

		w.WriteHeader(http.StatusCreated)
	})

	err := client.UploadDocument(context.Background(), "5", "notes.txt", strings.NewReader("file content"))
	require.NoError(t, err)
}

func TestDeleteDocument(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodDelete, r.Method)
		require.Equal(t, "/api/documents/3", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteDocument(context.Background(), "3"))
}

func TestBackendError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error": "chat not found"}`)
	})

	_, err := client.ListMessages(context.Background(), "404")
	require.Error(t, err)
	assert.True(t, IsRejection(err))
	assert.True(t, IsNotFound(err))

	var be *BackendError
	require.ErrorAs(t, err, &be)
	assert.Equal(t, http.StatusNotFound, be.Status)
	assert.Contains(t, be.Body, "chat not found")
}

func TestConnectivityError(t *testing.T) {
	// Nothing listens here; the request must fail as a transport error,
	// not a backend rejection.
	client := NewClient("http://127.0.0.1:1", 500*time.Millisecond, 0)
	_, err := client.ListChats(context.Background(), 1)
	require.Error(t, err)
	assert.False(t, IsRejection(err))
}
