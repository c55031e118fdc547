// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes conversation transcripts to files.
//
// Three formats are supported: Markdown with a YAML frontmatter header,
// pretty-printed JSON, and plain text. Exports work off the client's
// reconciled view; client-side failure notices are included so the file
// reflects what the user actually saw.
package export
