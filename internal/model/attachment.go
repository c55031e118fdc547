// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Attachment is a file attached to a conversation. Attachments are durable
// backend resources; unlike messages they are never rendered optimistically.
type Attachment struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
}

// TypeFromName derives the media-type classifier from a file name, the way
// the backend reports it: the lowercased extension, or "unknown".
func TypeFromName(name string) string {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return "unknown"
	}
	return strings.ToLower(ext)
}

// FormatSize renders a byte count for display ("482 B", "1.2 KB", "3.4 MB").
func FormatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGT"[exp])
}
