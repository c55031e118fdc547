// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the plausch chat backend.
//
// The backend speaks plain REST/JSON under an /api prefix: conversations,
// messages, documents and a completion endpoint. This package owns every
// wire-format quirk - numeric IDs, sender-vs-role naming, filename/filesize
// fields - and hands the rest of the client the canonical model types.
//
// There are no automatic retries anywhere: a failed request surfaces as an
// error and retry is a user decision. Requests are rate-capped and response
// bodies are read with a size limit.
package api
