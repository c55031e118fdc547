// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"fmt"
)

// ===== SENTINEL ERRORS =====

var (
	// ErrNoIdentity is returned when an operation requires a configured
	// user but none is set. The store stays inert without one.
	ErrNoIdentity = errors.New("no user identity configured")

	// ErrNotFound is returned when the targeted conversation or
	// attachment does not exist in local state.
	ErrNotFound = errors.New("conversation not found")

	// ErrNotActive is returned when a send targets a conversation that is
	// not the active one.
	ErrNotActive = errors.New("conversation is not active")

	// ErrEmptyMessage is returned for sends whose text is empty after
	// trimming.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrSendInFlight is returned when a conversation already has a send
	// in progress. The caller keeps its input and tries again later.
	ErrSendInFlight = errors.New("a send is already in progress for this conversation")

	// ErrUploadInFlight is returned when a conversation already has an
	// upload batch in progress.
	ErrUploadInFlight = errors.New("an upload is already in progress for this conversation")
)

// UploadError reports which file of a batch failed. Files before Index were
// uploaded successfully; files after it were never attempted.
type UploadError struct {
	Path  string
	Index int
	Err   error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload failed for %s: %v", e.Path, e.Err)
}

func (e *UploadError) Unwrap() error { return e.Err }
