// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"
)

func TestNewThemeInitializesStyles(t *testing.T) {
	theme := NewTheme()

	// A freshly built theme must render without panicking and produce
	// the input text somewhere in the output.
	out := theme.SidebarItemSelected.Render("Neuer Chat")
	if !strings.Contains(out, "Neuer Chat") {
		t.Errorf("rendered output lost its text: %q", out)
	}

	out = theme.FailureNotice.Render("Fehler")
	if !strings.Contains(out, "Fehler") {
		t.Errorf("rendered output lost its text: %q", out)
	}
}

func TestStatusIndicatorRendering(t *testing.T) {
	tests := []struct {
		name   string
		render func(string) string
		marker string
	}{
		{"success", RenderSuccess, "[OK]"},
		{"error", RenderError, "[X]"},
		{"warning", RenderWarning, "[!]"},
		{"info", RenderInfo, "[i]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.render("Nachricht")
			if !strings.Contains(out, tt.marker) {
				t.Errorf("missing %s indicator in %q", tt.marker, out)
			}
			if !strings.Contains(out, "Nachricht") {
				t.Errorf("missing message text in %q", out)
			}
		})
	}
}
