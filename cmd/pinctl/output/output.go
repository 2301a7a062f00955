// Package output renders API results for the terminal.
package output

import (
	"fmt"
	"io"
	"strings"

	"pinboard/client"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorSuccess = lipgloss.Color("#10B981")
	colorError   = lipgloss.Color("#EF4444")
	colorInfo    = lipgloss.Color("#3B82F6")
	colorMuted   = lipgloss.Color("#6B7280")
	colorPrimary = lipgloss.Color("#E60023")
	colorBorder  = lipgloss.Color("#4B5563")

	successStyle = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(colorInfo)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	titleStyle   = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	linkStyle    = lipgloss.NewStyle().Foreground(colorInfo).Underline(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1).
			Width(60)
)

// Success prints a success message
func Success(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, successStyle.Render("✓ ")+fmt.Sprintf(format, args...))
}

// Error prints an error message
func Error(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, errorStyle.Render("✗ ")+fmt.Sprintf(format, args...))
}

// Info prints an info message
func Info(w io.Writer, format string, args ...interface{}) {
	fmt.Fprintln(w, infoStyle.Render("ℹ ")+fmt.Sprintf(format, args...))
}

// Pin prints one pin as a card; comments are listed when present.
func Pin(w io.Writer, pin *client.Pin) {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("#%d %s", pin.ID, pin.Title)))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("by %s · %d likes · %s", pin.Author.Name, pin.Likes, pin.CreatedAt.Format("2006-01-02"))))
	b.WriteString("\n")
	b.WriteString(linkStyle.Render(pin.ExternalLink))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("image: " + pin.Image))
	if len(pin.Comments) > 0 {
		b.WriteString("\n\n")
		for _, c := range pin.Comments {
			b.WriteString(fmt.Sprintf("%s %s\n", infoStyle.Render(c.Author.Name+":"), c.Text))
		}
	}
	fmt.Fprintln(w, cardStyle.Render(strings.TrimRight(b.String(), "\n")))
}

// Pins prints a feed of pins.
func Pins(w io.Writer, pins []client.Pin) {
	if len(pins) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No pins yet."))
		return
	}
	for i := range pins {
		Pin(w, &pins[i])
	}
}

// Board prints a board header and its pins on one line each.
func Board(w io.Writer, board *client.Board) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("#%d %s", board.ID, board.Name))+" "+
		mutedStyle.Render(fmt.Sprintf("(%d pins)", len(board.Pins))))
	for _, pin := range board.Pins {
		fmt.Fprintf(w, "  %s %s\n", mutedStyle.Render(fmt.Sprintf("#%d", pin.ID)), pin.Title)
	}
}

// Boards prints each board in turn.
func Boards(w io.Writer, boards []client.Board) {
	if len(boards) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No boards yet."))
		return
	}
	for i := range boards {
		Board(w, &boards[i])
	}
}
