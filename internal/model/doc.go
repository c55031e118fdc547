// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations, messages
// and attachments.
//
// The backend is the source of truth for all of these; the structs here are
// the client-side representation the store keeps in memory and the UI
// renders. Field naming quirks of the wire format (sender vs role,
// filename/filesize) are handled in the api package, never here.
package model
