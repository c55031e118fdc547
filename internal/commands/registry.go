// Copyright (c) 2025 The plausch authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package commands

import (
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// ===== COMMAND DEFINITION =====

// Command is one slash command.
type Command struct {
	// Name is the primary command name (e.g., "/rename")
	Name string

	// Aliases are alternative names (e.g., "/r")
	Aliases []string

	// Description is shown in help
	Description string

	// Usage shows argument syntax (e.g., "/rename <titel>")
	Usage string

	// Args defines the expected arguments
	Args []ArgDef

	// Handler executes the command. args are the parsed tokens, rawArgs
	// the unsplit remainder for commands that take free text.
	Handler func(args []string, rawArgs string) tea.Cmd

	// Category for grouping in help display
	Category string
}

// ArgDef defines an argument for a command.
type ArgDef struct {
	Name        string
	Required    bool
	Description string

	// Values restricts the argument to an enum
	Values []string
}

// ===== COMMAND REGISTRY =====

// Registry holds all registered commands.
type Registry struct {
	commands map[string]*Command
	aliases  map[string]*Command
}

// NewRegistry creates a registry with all built-in commands.
func NewRegistry() *Registry {
	r := &Registry{
		commands: make(map[string]*Command),
		aliases:  make(map[string]*Command),
	}
	r.registerBuiltins()
	return r
}

// Register adds a command.
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
	for _, alias := range cmd.Aliases {
		r.aliases[alias] = cmd
	}
}

// Get retrieves a command by name or alias.
func (r *Registry) Get(name string) *Command {
	if cmd, ok := r.commands[name]; ok {
		return cmd
	}
	if cmd, ok := r.aliases[name]; ok {
		return cmd
	}
	return nil
}

// All returns every registered command sorted by name.
func (r *Registry) All() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, cmd := range r.commands {
		cmds = append(cmds, cmd)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

// AllByCategory returns every command sorted by category, then name,
// for grouped help display.
func (r *Registry) AllByCategory() []*Command {
	cmds := r.All()
	sort.SliceStable(cmds, func(i, j int) bool { return cmds[i].Category < cmds[j].Category })
	return cmds
}

// Matching returns commands whose name starts with the given prefix,
// for input completion.
func (r *Registry) Matching(prefix string) []*Command {
	var out []*Command
	for _, cmd := range r.All() {
		if strings.HasPrefix(cmd.Name, prefix) {
			out = append(out, cmd)
		}
	}
	return out
}

// ===== BUILT-IN COMMANDS =====

func (r *Registry) registerBuiltins() {
	r.Register(&Command{
		Name:        "/new",
		Aliases:     []string{"/n"},
		Description: "Neue Unterhaltung beginnen",
		Category:    "Unterhaltung",
		Handler: func(args []string, rawArgs string) tea.Cmd {
			return emit(NewChatMsg{})
		},
	})

	r.Register(&Command{
		Name:        "/rename",
		Aliases:     []string{"/r"},
		Description: "Aktive Unterhaltung umbenennen",
		Usage:       "/rename <titel>",
		Args: []ArgDef{
			{Name: "titel", Required: true, Description: "Neuer Titel"},
		},
		Category: "Unterhaltung",
		Handler: func(args []string, rawArgs string) tea.Cmd {
			return emit(RenameChatMsg{Title: rawArgs})
		},
	})

	r.Register(&Command{
		Name:        "/system",
		Description: "Systemanweisung setzen oder leeren",
		Usage:       "/system [anweisung]",
		Category:    "Unterhaltung",
		Handler: func(args []string, rawArgs string) tea.Cmd {
			return emit(SetSystemPromptMsg{Prompt: rawArgs})
		},
	})

	r.Register(&Command{
		Name:        "/delete",
		Aliases:     []string{"/del"},
		Description: "Aktive Unterhaltung löschen",
		Category:    "Unterhaltung",
		Handler: func(args []string, rawArgs string) tea.Cmd {
			return emit(DeleteChatMsg{})
		},
	})

	r.Register(&Command{
		Name:        "/attach",
		Aliases:     []string{"/a"},
		Description: "Dateien an die Unterhaltung anhängen",
		Usage:       "/attach <datei> [datei ...]",
		Args: []ArgDef{
			{Name: "datei", Required: true, Description: "Pfad zur Datei"},
		},
		Category: "Anhänge",
		Handler: func(args []string, rawArgs string) tea.Cmd {
			return emit(AttachFilesMsg{Paths: args})
		},
	})

	r.Register(&Command{
		Name:        "/files",
		Aliases:     []string{"/f"},
		Description: "Anhänge der Unterhaltung anzeigen",
		Category:    "Anhänge",
		Handler: func(args []string, rawArgs string) tea.Cmd {
			return emit(ShowFilesMsg{})
		},
	})

	r.Register(&Command{
		Name:        "/detach",
		Description: "Anhang entfernen",
		Usage:       "/detach <dateiname>",
		Args: []ArgDef{
			{Name: "dateiname", Required: true, Description: "Name des Anhangs"},
		},
		Category: "Anhänge",
		Handler: func(args []string, rawArgs string) tea.Cmd {
			return emit(DetachFileMsg{Name: rawArgs})
		},
	})

	r.Register(&Command{
		Name:        "/search",
		Description: "Archivierte Unterhaltungen durchsuchen",
		Usage:       "/search <begriff>",
		Args: []ArgDef{
			{Name: "begriff", Required: true, Description: "Suchbegriff"},
		},
		Category: "Archiv",
		Handler: func(args []string, rawArgs string) tea.Cmd {
			return emit(SearchArchiveMsg{Query: rawArgs})
		},
	})

	r.Register(&Command{
		Name:        "/export",
		Aliases:     []string{"/e"},
		Description: "Unterhaltung exportieren",
		Usage:       "/export [markdown|json|text]",
		Args: []ArgDef{
			{Name: "format", Values: []string{"markdown", "md", "json", "text", "txt"}, Description: "Exportformat"},
		},
		Category: "Archiv",
		Handler: func(args []string, rawArgs string) tea.Cmd {
			format := ""
			if len(args) > 0 {
				format = args[0]
			}
			return emit(ExportChatMsg{Format: format})
		},
	})

	r.Register(&Command{
		Name:        "/help",
		Aliases:     []string{"/h", "/?"},
		Description: "Hilfe anzeigen",
		Category:    "Allgemein",
		Handler: func(args []string, rawArgs string) tea.Cmd {
			return emit(ShowHelpMsg{})
		},
	})

	r.Register(&Command{
		Name:        "/quit",
		Aliases:     []string{"/q", "/exit"},
		Description: "plausch beenden",
		Category:    "Allgemein",
		Handler: func(args []string, rawArgs string) tea.Cmd {
			return tea.Quit
		},
	})
}

// emit wraps a message in a tea.Cmd.
func emit(msg tea.Msg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// ===== EXECUTION =====

// Execute parses and runs an input line. Unknown commands and validation
// failures come back as a CommandErrorMsg.
func Execute(parser *Parser, input string) tea.Cmd {
	result := parser.Parse(input)
	if !result.IsCommand {
		return nil
	}
	if result.Command == nil {
		return emit(CommandErrorMsg{Err: &ValidationError{
			Command: result.CommandName,
			Message: "unbekannter Befehl",
		}})
	}
	if err := ValidateArgs(result.Command, result.Args); err != nil {
		return emit(CommandErrorMsg{Err: err})
	}
	return result.Command.Handler(result.Args, result.RawArgs)
}
