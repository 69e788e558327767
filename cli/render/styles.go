// Package render provides terminal output for the cargo-hf2 CLI.
//
// Status lines follow cargo's layout: a right-aligned bold green verb
// followed by the message. --no-color renders plain text.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette.
var (
	successColor = lipgloss.Color("#10B981") // Green
	warningColor = lipgloss.Color("#F59E0B") // Amber
	errorColor   = lipgloss.Color("#EF4444") // Red
	mutedColor   = lipgloss.Color("#6B7280") // Gray
)

// Styles for status output.
var (
	// StatusStyle for cargo-like verbs ("Flashing", "Finished").
	StatusStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(successColor)

	// WarningStyle for non-fatal notices.
	WarningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(warningColor)

	// ErrorStyle for the final error line.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(errorColor)

	// MutedStyle for secondary details.
	MutedStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// verbWidth matches cargo's status column.
const verbWidth = 12

// Printer writes styled status lines.
type Printer struct {
	out     io.Writer
	noColor bool
}

// NewPrinter creates a printer on w.
func NewPrinter(w io.Writer, noColor bool) *Printer {
	return &Printer{out: w, noColor: noColor}
}

// Status prints "<verb> <message>" with the verb right-aligned.
func (p *Printer) Status(verb, format string, args ...any) {
	p.line(StatusStyle, verb, fmt.Sprintf(format, args...))
}

// Warning prints a warning status line.
func (p *Printer) Warning(verb, format string, args ...any) {
	p.line(WarningStyle, verb, fmt.Sprintf(format, args...))
}

// Error prints an error line.
func (p *Printer) Error(err error) {
	label := "error:"
	if !p.noColor {
		label = ErrorStyle.Render(label)
	}
	fmt.Fprintf(p.out, "%s %v\n", label, err)
}

// Field prints an indented "label: value" pair.
func (p *Printer) Field(label string, value any) {
	l := fmt.Sprintf("%-16s", label+":")
	if !p.noColor {
		l = MutedStyle.Render(l)
	}
	fmt.Fprintf(p.out, "%s%s %v\n", strings.Repeat(" ", verbWidth+1), l, value)
}

func (p *Printer) line(style lipgloss.Style, verb, msg string) {
	pad := strings.Repeat(" ", max(verbWidth-len(verb), 0))
	if !p.noColor {
		verb = style.Render(verb)
	}
	fmt.Fprintf(p.out, "%s%s %s\n", pad, verb, msg)
}
