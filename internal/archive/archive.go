// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package archive keeps a local SQLite mirror of reconciled transcripts.
//
// The backend stays the source of truth; the archive only retains what the
// client has seen so transcripts remain searchable offline. Every write is
// best-effort and the caller decides whether a failure matters.
package archive

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/plauschhq/plausch/internal/model"
)

// Archive is a local transcript mirror backed by SQLite.
type Archive struct {
	db     *sql.DB
	logger *log.Logger
}

// SearchResult is one message hit from a full-text query.
type SearchResult struct {
	ConversationID string
	Title          string
	MessageID      string
	Role           string
	Excerpt        string
	CreatedAt      time.Time
}

// Open creates or opens the archive database at path. Parent directories
// are created as needed.
func Open(path string, logger *log.Logger) (*Archive, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create archive directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	// WAL keeps reads cheap while the TUI writes in the background.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	a := &Archive{db: db, logger: logger}
	if err := a.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return a, nil
}

func (a *Archive) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS conversations (
			id            TEXT PRIMARY KEY,
			title         TEXT NOT NULL,
			system_prompt TEXT,
			created_at    TEXT NOT NULL,
			archived_at   TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS messages (
			conversation_id TEXT NOT NULL,
			id              TEXT NOT NULL,
			role            TEXT NOT NULL,
			content         TEXT NOT NULL,
			created_at      TEXT NOT NULL,
			PRIMARY KEY (conversation_id, id),
			FOREIGN KEY (conversation_id) REFERENCES conversations(id) ON DELETE CASCADE
		);

		CREATE INDEX IF NOT EXISTS idx_messages_conversation
			ON messages(conversation_id, created_at);
	`
	_, err := a.db.Exec(schema)
	return err
}

// Close closes the underlying database.
func (a *Archive) Close() error {
	return a.db.Close()
}

// Record stores a reconciled transcript, replacing whatever the archive
// held for that conversation. Client-side messages (failure notices,
// optimistic copies) are never archived.
func (a *Archive) Record(conv *model.Conversation) error {
	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("begin archive write: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO conversations (id, title, system_prompt, created_at, archived_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			system_prompt = excluded.system_prompt,
			archived_at = excluded.archived_at
	`, conv.ID, conv.Title, conv.SystemPrompt,
		conv.CreatedAt.UTC().Format(time.RFC3339),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("upsert conversation: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM messages WHERE conversation_id = ?`, conv.ID); err != nil {
		return fmt.Errorf("clear messages: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO messages (conversation_id, id, role, content, created_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare message insert: %w", err)
	}
	defer stmt.Close()

	for _, msg := range conv.Messages {
		if msg.IsLocal() {
			continue
		}
		_, err := stmt.Exec(conv.ID, msg.ID, msg.Role, msg.Content,
			msg.CreatedAt.UTC().Format(time.RFC3339))
		if err != nil {
			return fmt.Errorf("insert message %s: %w", msg.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive write: %w", err)
	}
	a.logf("archived %s (%d messages)", conv.ID, conv.MessageCount())
	return nil
}

// Search returns messages whose content matches the query, newest first.
// Matching is case-insensitive substring search.
func (a *Archive) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := a.db.Query(`
		SELECT m.conversation_id, c.title, m.id, m.role, m.content, m.created_at
		FROM messages m
		JOIN conversations c ON c.id = m.conversation_id
		WHERE m.content LIKE '%' || ? || '%'
		ORDER BY m.created_at DESC
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("search archive: %w", err)
	}
	defer rows.Close()

	var results []SearchResult
	for rows.Next() {
		var r SearchResult
		var content, createdAt string
		if err := rows.Scan(&r.ConversationID, &r.Title, &r.MessageID, &r.Role, &content, &createdAt); err != nil {
			return nil, fmt.Errorf("scan search row: %w", err)
		}
		r.Excerpt = (model.Message{Content: content}).Preview(80)
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		results = append(results, r)
	}
	return results, rows.Err()
}

// Conversations returns the number of archived conversations.
func (a *Archive) Conversations() (int, error) {
	var n int
	err := a.db.QueryRow(`SELECT COUNT(*) FROM conversations`).Scan(&n)
	return n, err
}

func (a *Archive) logf(format string, args ...any) {
	if a.logger != nil {
		a.logger.Printf(format, args...)
	}
}
