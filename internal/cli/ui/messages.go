package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of a status line
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
	LevelSuccess
)

// Message is a status line with optional detail lines, suggestions and
// follow-up commands
type Message struct {
	Level       Level
	Title       string
	Details     []string
	Suggestions []string
	Commands    []string
	NoColor     bool
}

// Format renders the message. Example:
//
//	✗ Unknown page context: singlar
//	   Did you mean: singular?
//	   → List contexts: wpschema generate --help
func (m Message) Format() string {
	var b strings.Builder

	var head *color.Color
	var symbol string
	switch m.Level {
	case LevelError:
		head, symbol = newColor(m.NoColor, color.FgRed, color.Bold), "✗"
	case LevelWarning:
		head, symbol = newColor(m.NoColor, color.FgYellow, color.Bold), "!"
	case LevelSuccess:
		head, symbol = newColor(m.NoColor, color.FgGreen, color.Bold), "✓"
	default:
		head, symbol = newColor(m.NoColor, color.FgCyan, color.Bold), "i"
	}

	head.Fprintf(&b, "%s %s\n", symbol, m.Title)
	for _, d := range m.Details {
		fmt.Fprintf(&b, "   %s\n", d)
	}
	if len(m.Suggestions) > 0 {
		newColor(m.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(m.Suggestions, ", "))
	}
	for _, c := range m.Commands {
		newColor(m.NoColor, color.FgCyan).Fprintf(&b, "   → %s\n", c)
	}
	return b.String()
}

// Write writes the formatted message
func (m Message) Write(w io.Writer) {
	fmt.Fprint(w, m.Format())
}

// Success writes a single green status line
func Success(w io.Writer, title string, noColor bool) {
	Message{Level: LevelSuccess, Title: title, NoColor: noColor}.Write(w)
}
