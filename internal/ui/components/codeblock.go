// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/plauschhq/plausch/internal/ui/styles"
)

// ===== CODE BLOCK RENDERER =====

// Fallback rendering for fenced code when the Markdown renderer is
// disabled. Highlights with chroma and frames the block.

// RenderCodeBlock renders one fenced code block with syntax highlighting.
func RenderCodeBlock(language, code string, maxWidth int) string {
	code = strings.TrimSpace(code)

	if language == "" {
		if lexer := lexers.Analyse(code); lexer != nil {
			language = lexer.Config().Name
		}
	}

	var header string
	if language != "" {
		header = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Background(styles.Overlay).
			Padding(0, 1).
			Bold(true).
			Render(language) + "\n"
	}

	if maxWidth < 24 {
		maxWidth = 24
	}

	return lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 1).
		MaxWidth(maxWidth).
		Render(header + highlightCode(code, language))
}

// RenderFencedBlocks replaces fenced code blocks in text with rendered
// versions and leaves everything else untouched.
func RenderFencedBlocks(text string, maxWidth int) string {
	lines := strings.Split(text, "\n")
	var result []string
	var codeLines []string
	var language string
	inCodeBlock := false

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "```"):
			if inCodeBlock {
				result = append(result, RenderCodeBlock(language, strings.Join(codeLines, "\n"), maxWidth))
				codeLines = nil
				language = ""
				inCodeBlock = false
			} else {
				language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				inCodeBlock = true
			}
		case inCodeBlock:
			codeLines = append(codeLines, line)
		default:
			result = append(result, line)
		}
	}

	// Unclosed fence: render what we have.
	if inCodeBlock && len(codeLines) > 0 {
		result = append(result, RenderCodeBlock(language, strings.Join(codeLines, "\n"), maxWidth))
	}

	return strings.Join(result, "\n")
}

// ===== SYNTAX HIGHLIGHTING =====

// highlightCode applies ANSI-safe syntax highlighting via chroma. The
// original code comes back unchanged when highlighting fails.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}
