// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/plauschhq/plausch/internal/model"
)

// Configuration constants for the backend client.
const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	// Keeps a misbehaving backend from exhausting client memory.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB

	// uploadTimeoutFactor stretches the timeout for multipart uploads,
	// which move real payloads rather than small JSON bodies.
	uploadTimeoutFactor = 5
)

// Client talks to the plausch chat backend.
type Client struct {
	baseURL      string
	httpClient   *http.Client
	uploadClient *http.Client
	limiter      *rate.Limiter
	sessionID    string
	userAgent    string
}

// NewClient creates a backend client for the given base URL (without the
// /api prefix). requestsPerSec caps the request rate; 0 disables the cap.
func NewClient(baseURL string, timeout time.Duration, requestsPerSec float64) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}

	var limiter *rate.Limiter
	if requestsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSec), int(requestsPerSec)+1)
	}

	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Transport: transport, Timeout: timeout},
		uploadClient: &http.Client{Transport: transport, Timeout: timeout * uploadTimeoutFactor},
		limiter:      limiter,
		sessionID:    uuid.New().String(),
		userAgent:    "plausch/" + Version,
	}
}

// Version is the client version reported in the User-Agent header.
// Overridden at build time via -ldflags.
var Version = "dev"

// SessionID returns the per-process session id sent with every request.
// The backend logs it, which makes correlating client reports possible.
func (c *Client) SessionID() string {
	return c.sessionID
}

// BaseURL returns the configured backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// CONVERSATIONS
// =============================================================================

// ListChats fetches all conversations owned by the given user, newest first
// in backend order. The returned conversations carry empty detail.
func (c *Client) ListChats(ctx context.Context, userID int) ([]model.Conversation, error) {
	var records []chatRecord
	path := fmt.Sprintf("/api/users/%d/chats", userID)
	if err := c.do(ctx, http.MethodGet, path, nil, &records); err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}

	chats := make([]model.Conversation, 0, len(records))
	for _, r := range records {
		chats = append(chats, r.toModel())
	}
	return chats, nil
}

// CreateChat creates a conversation with the given title for the user and
// returns the authoritative record.
func (c *Client) CreateChat(ctx context.Context, userID int, title string) (model.Conversation, error) {
	var record chatRecord
	body := createChatRequest{Title: title, UserID: userID}
	if err := c.do(ctx, http.MethodPost, "/api/chats", body, &record); err != nil {
		return model.Conversation{}, fmt.Errorf("create chat: %w", err)
	}
	return record.toModel(), nil
}

// UpdateChat applies a partial update (title and/or system prompt).
func (c *Client) UpdateChat(ctx context.Context, chatID string, upd ChatUpdate) error {
	body := updateChatRequest{Title: upd.Title, SystemPrompt: upd.SystemPrompt}
	if err := c.do(ctx, http.MethodPut, "/api/chats/"+chatID, body, nil); err != nil {
		return fmt.Errorf("update chat %s: %w", chatID, err)
	}
	return nil
}

// DeleteChat deletes a conversation and everything in it.
func (c *Client) DeleteChat(ctx context.Context, chatID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/chats/"+chatID, nil, nil); err != nil {
		return fmt.Errorf("delete chat %s: %w", chatID, err)
	}
	return nil
}

// =============================================================================
// MESSAGES & COMPLETION
// =============================================================================

// ListMessages fetches the messages of a conversation in backend order,
// which is chronological.
func (c *Client) ListMessages(ctx context.Context, chatID string) ([]model.Message, error) {
	var records []messageRecord
	if err := c.do(ctx, http.MethodGet, "/api/chats/"+chatID+"/messages", nil, &records); err != nil {
		return nil, fmt.Errorf("list messages for chat %s: %w", chatID, err)
	}

	msgs := make([]model.Message, 0, len(records))
	for _, r := range records {
		msgs = append(msgs, r.toModel())
	}
	return msgs, nil
}

// AppendMessage persists a single message without triggering a completion.
// The store does not use this on the send path - the completion endpoint
// persists the user turn - it exists because the backend exposes it.
func (c *Client) AppendMessage(ctx context.Context, chatID, role, content string) (model.Message, error) {
	var record messageRecord
	body := appendMessageRequest{Role: role, Content: content}
	if err := c.do(ctx, http.MethodPost, "/api/chats/"+chatID+"/messages", body, &record); err != nil {
		return model.Message{}, fmt.Errorf("append message to chat %s: %w", chatID, err)
	}
	return record.toModel(), nil
}

// Completion asks the backend to persist the user turn and generate the
// assistant reply. Both land in the conversation server-side; the caller is
// expected to re-fetch messages afterwards.
func (c *Client) Completion(ctx context.Context, chatID, message string) error {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return fmt.Errorf("completion: chat id %q is not numeric: %w", chatID, err)
	}

	body := completionRequest{ChatID: id, Message: message}
	if err := c.do(ctx, http.MethodPost, "/api/chat/completion", body, nil); err != nil {
		return fmt.Errorf("completion for chat %s: %w", chatID, err)
	}
	return nil
}

// =============================================================================
// DOCUMENTS
// =============================================================================

// ListDocuments fetches the attachments of a conversation.
func (c *Client) ListDocuments(ctx context.Context, chatID string) ([]model.Attachment, error) {
	var records []documentRecord
	if err := c.do(ctx, http.MethodGet, "/api/chats/"+chatID+"/documents", nil, &records); err != nil {
		return nil, fmt.Errorf("list documents for chat %s: %w", chatID, err)
	}

	docs := make([]model.Attachment, 0, len(records))
	for _, r := range records {
		docs = append(docs, r.toModel())
	}
	return docs, nil
}

// UploadDocument uploads one file as a multipart request. The backend owns
// the resulting record; callers re-fetch the document list to see it.
func (c *Client) UploadDocument(ctx context.Context, chatID, filename string, content io.Reader) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("upload document: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return fmt.Errorf("upload document: failed to read %s: %w", filename, err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("upload document: %w", err)
	}

	url := c.baseURL + "/api/chats/" + chatID + "/documents"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return fmt.Errorf("upload document: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.setHeaders(req)

	resp, err := c.uploadClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload document %s: %w", filename, err)
	}
	defer resp.Body.Close()

	body, err := readResponse(resp)
	if err != nil {
		return fmt.Errorf("upload document %s: %w", filename, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &BackendError{Status: resp.StatusCode, Body: excerpt(body)}
	}
	return nil
}

// DeleteDocument removes an attachment. Document IDs are global, not scoped
// to a conversation.
func (c *Client) DeleteDocument(ctx context.Context, documentID string) error {
	if err := c.do(ctx, http.MethodDelete, "/api/documents/"+documentID, nil, nil); err != nil {
		return fmt.Errorf("delete document %s: %w", documentID, err)
	}
	return nil
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

// do performs one JSON request. body and out may be nil. Non-2xx responses
// become *BackendError; transport failures are returned wrapped. There is
// deliberately no retry loop here.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &BackendError{Status: resp.StatusCode, Body: excerpt(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

// wait blocks on the rate limiter when one is configured.
func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// setHeaders sets the headers common to every backend request.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Client-Session", c.sessionID)
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", int64(MaxResponseSize))
	}
	return body, nil
}

// excerpt trims a response body for inclusion in an error message.
func excerpt(body []byte) string {
	const max = 200
	s := strings.TrimSpace(string(body))
	if len(s) > max {
		s = s[:max] + "..."
	}
	return s
}
