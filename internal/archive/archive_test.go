// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package archive

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plauschhq/plausch/internal/model"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := Open(filepath.Join(t.TempDir(), "archiv", "plausch.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func sampleConversation() *model.Conversation {
	return &model.Conversation{
		ID:        "1",
		Title:     "Einkaufsliste",
		CreatedAt: time.Now(),
		Messages: []model.Message{
			{ID: "10", Role: model.RoleUser, Content: "Was fehlt noch?", CreatedAt: time.Now()},
			{ID: "11", Role: model.RoleAssistant, Content: "Milch und Brot.", CreatedAt: time.Now()},
		},
	}
}

func TestRecordAndSearch(t *testing.T) {
	a := openTestArchive(t)
	require.NoError(t, a.Record(sampleConversation()))

	results, err := a.Search("milch", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "1", results[0].ConversationID)
	assert.Equal(t, "Einkaufsliste", results[0].Title)
	assert.Equal(t, model.RoleAssistant, results[0].Role)
	assert.Equal(t, "Milch und Brot.", results[0].Excerpt)
}

func TestRecordReplacesTranscript(t *testing.T) {
	a := openTestArchive(t)
	conv := sampleConversation()
	require.NoError(t, a.Record(conv))

	conv.Title = "Wocheneinkauf"
	conv.Messages = conv.Messages[:1]
	require.NoError(t, a.Record(conv))

	n, err := a.Conversations()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// The dropped assistant message is gone after the rewrite.
	results, err := a.Search("milch", 10)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = a.Search("fehlt", 10)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Wocheneinkauf", results[0].Title)
}

func TestRecordSkipsLocalMessages(t *testing.T) {
	a := openTestArchive(t)
	conv := sampleConversation()
	conv.Messages = append(conv.Messages,
		model.NewLocalAssistantMessage(model.LocalIDPrefix+"1", "Fehler: Antwort konnte nicht empfangen werden."))
	require.NoError(t, a.Record(conv))

	results, err := a.Search("Fehler", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchNoMatches(t *testing.T) {
	a := openTestArchive(t)
	require.NoError(t, a.Record(sampleConversation()))

	results, err := a.Search("quantenphysik", 10)
	require.NoError(t, err)
	assert.Empty(t, results)
}
