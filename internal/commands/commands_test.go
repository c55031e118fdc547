// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitCommandLine(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"simple", "/attach datei.txt", []string{"/attach", "datei.txt"}},
		{"multiple args", "/attach a.txt b.txt c.txt", []string{"/attach", "a.txt", "b.txt", "c.txt"}},
		{"double quotes", `/attach "mein dokument.pdf"`, []string{"/attach", "mein dokument.pdf"}},
		{"single quotes", "/attach 'mein dokument.pdf'", []string{"/attach", "mein dokument.pdf"}},
		{"escaped quote", `/rename "der \"beste\" chat"`, []string{"/rename", `der "beste" chat`}},
		{"extra spaces", "/new    ", []string{"/new"}},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitCommandLine(tt.input))
		})
	}
}

func TestParserRecognizesCommands(t *testing.T) {
	p := NewParser(NewRegistry())

	result := p.Parse("/rename Einkaufsliste für Samstag")
	assert.True(t, result.IsCommand)
	require.NotNil(t, result.Command)
	assert.Equal(t, "/rename", result.Command.Name)
	assert.Equal(t, []string{"Einkaufsliste", "für", "Samstag"}, result.Args)
	assert.Equal(t, "Einkaufsliste für Samstag", result.RawArgs)
}

func TestParserPlainTextIsNotACommand(t *testing.T) {
	p := NewParser(NewRegistry())

	result := p.Parse("Hallo, wie geht es dir?")
	assert.False(t, result.IsCommand)
	assert.Nil(t, result.Command)
}

func TestParserResolvesAliases(t *testing.T) {
	p := NewParser(NewRegistry())

	for alias, want := range map[string]string{
		"/n":    "/new",
		"/q":    "/quit",
		"/h":    "/help",
		"/?":    "/help",
		"/a":    "/attach",
		"/exit": "/quit",
	} {
		result := p.Parse(alias)
		require.NotNil(t, result.Command, alias)
		assert.Equal(t, want, result.Command.Name, alias)
	}
}

func TestParserUnknownCommand(t *testing.T) {
	p := NewParser(NewRegistry())

	result := p.Parse("/frobnicate")
	assert.True(t, result.IsCommand)
	assert.Nil(t, result.Command)
	assert.Equal(t, "/frobnicate", result.CommandName)
}

func TestValidateArgsRequired(t *testing.T) {
	r := NewRegistry()

	err := ValidateArgs(r.Get("/rename"), nil)
	require.Error(t, err)
	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "/rename", vErr.Command)
	assert.Equal(t, "titel", vErr.Arg)

	assert.NoError(t, ValidateArgs(r.Get("/rename"), []string{"Neuer Titel"}))
}

func TestValidateArgsEnum(t *testing.T) {
	r := NewRegistry()
	cmd := r.Get("/export")

	assert.NoError(t, ValidateArgs(cmd, []string{"json"}))
	assert.NoError(t, ValidateArgs(cmd, []string{"MARKDOWN"}))
	assert.NoError(t, ValidateArgs(cmd, nil))
	assert.Error(t, ValidateArgs(cmd, []string{"pdf"}))
}

func TestExecuteEmitsMessages(t *testing.T) {
	p := NewParser(NewRegistry())

	tests := []struct {
		input string
		want  any
	}{
		{"/new", NewChatMsg{}},
		{"/rename Mein Chat", RenameChatMsg{Title: "Mein Chat"}},
		{"/system Antworte knapp.", SetSystemPromptMsg{Prompt: "Antworte knapp."}},
		{"/system", SetSystemPromptMsg{}},
		{"/delete", DeleteChatMsg{}},
		{"/attach a.txt b.txt", AttachFilesMsg{Paths: []string{"a.txt", "b.txt"}}},
		{"/files", ShowFilesMsg{}},
		{"/detach notizen.txt", DetachFileMsg{Name: "notizen.txt"}},
		{"/search milch", SearchArchiveMsg{Query: "milch"}},
		{"/export json", ExportChatMsg{Format: "json"}},
		{"/export", ExportChatMsg{}},
		{"/help", ShowHelpMsg{}},
	}

	for _, tt := range tests {
		cmd := Execute(p, tt.input)
		require.NotNil(t, cmd, tt.input)
		assert.Equal(t, tt.want, cmd(), tt.input)
	}
}

func TestExecuteUnknownCommand(t *testing.T) {
	p := NewParser(NewRegistry())

	cmd := Execute(p, "/frobnicate")
	require.NotNil(t, cmd)
	msg, ok := cmd().(CommandErrorMsg)
	require.True(t, ok)
	assert.Error(t, msg.Err)
}

func TestExecuteValidationFailure(t *testing.T) {
	p := NewParser(NewRegistry())

	cmd := Execute(p, "/export pdf")
	require.NotNil(t, cmd)
	msg, ok := cmd().(CommandErrorMsg)
	require.True(t, ok)
	assert.Error(t, msg.Err)
}

func TestExecutePlainText(t *testing.T) {
	p := NewParser(NewRegistry())
	assert.Nil(t, Execute(p, "einfach eine Nachricht"))
}

func TestRegistryMatching(t *testing.T) {
	r := NewRegistry()

	matches := r.Matching("/de")
	var names []string
	for _, cmd := range matches {
		names = append(names, cmd.Name)
	}
	assert.Equal(t, []string{"/delete", "/detach"}, names)
}
