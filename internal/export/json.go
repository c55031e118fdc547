// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/plauschhq/plausch/internal/model"
)

// ===== JSON EXPORTER =====

// JSONExporter renders conversations as pretty-printed JSON.
type JSONExporter struct{}

// NewJSONExporter creates a JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// jsonDocument is the top-level export shape. The conversation is
// embedded unchanged; the envelope adds export provenance.
type jsonDocument struct {
	Generator  string              `json:"generator"`
	ExportedAt time.Time           `json:"exported_at"`
	Chat       *model.Conversation `json:"chat"`
}

// Export converts a conversation to JSON.
func (e *JSONExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}

	doc := jsonDocument{
		Generator:  "plausch",
		ExportedAt: time.Now(),
		Chat:       conv,
	}
	return json.MarshalIndent(doc, "", "  ")
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
