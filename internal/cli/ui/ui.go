// Package ui renders ormcore CLI output.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/pterm/pterm"
)

var (
	// Colors
	PrimaryColor   = lipgloss.Color("#00D9FF")
	SuccessColor   = lipgloss.Color("#00FF88")
	WarningColor   = lipgloss.Color("#FFB800")
	ErrorColor     = lipgloss.Color("#FF4444")
	SecondaryColor = lipgloss.Color("#6C757D")

	// Styles
	TitleStyle = lipgloss.NewStyle().
			Foreground(PrimaryColor).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true)

	SecondaryStyle = lipgloss.NewStyle().
			Foreground(SecondaryColor)
)

// Output is where messages go; tests swap it.
var Output io.Writer = os.Stdout

// PrintSuccess prints a success message
func PrintSuccess(format string, args ...any) {
	fmt.Fprintln(Output, SuccessStyle.Render("✓ "+fmt.Sprintf(format, args...)))
}

// PrintError prints an error message to stderr
func PrintError(format string, args ...any) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("✗ "+fmt.Sprintf(format, args...)))
}

// PrintWarning prints a warning message
func PrintWarning(format string, args ...any) {
	fmt.Fprintln(Output, WarningStyle.Render("⚠ "+fmt.Sprintf(format, args...)))
}

// PrintBox prints content in a titled box sized to the terminal.
func PrintBox(title, content string) {
	width := 80
	if w := pterm.GetTerminalWidth(); w > 0 && w < width {
		width = w
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Padding(0, 1).
		Width(width - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, TitleStyle.Render(title), content))
	fmt.Fprintln(Output, box)
}

var (
	keyword = color.New(color.FgCyan, color.Bold)
	marker  = color.New(color.FgYellow)
)

var sqlKeywords = map[string]bool{
	"SELECT": true, "FROM": true, "WHERE": true, "AND": true, "OR": true, "JOIN": true,
	"LEFT": true, "INNER": true, "ON": true, "AS": true, "WITH": true, "GROUP": true,
	"ORDER": true, "BY": true, "HAVING": true, "LIMIT": true, "OFFSET": true, "ASC": true,
	"DESC": true, "INSERT": true, "INTO": true, "VALUES": true, "UPDATE": true, "SET": true,
	"DELETE": true, "RETURNING": true,
}

// HighlightSQL colors keywords and positional markers of rendered SQL.
func HighlightSQL(sql string) string {
	words := strings.Split(sql, " ")
	for i, w := range words {
		switch {
		case sqlKeywords[w]:
			words[i] = keyword.Sprint(w)
		case isMarker(w):
			words[i] = marker.Sprint(w)
		}
	}
	return strings.Join(words, " ")
}

func isMarker(w string) bool {
	w = strings.TrimRight(w, "),")
	if w == "?" {
		return true
	}
	if len(w) < 2 || (w[0] != '$' && w[0] != '?') {
		return false
	}
	for _, r := range w[1:] {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// FormatArgs renders bound arguments one per line, numbered by position.
func FormatArgs(args []any) string {
	if len(args) == 0 {
		return SecondaryStyle.Render("(no arguments)")
	}
	lines := make([]string, len(args))
	for i, a := range args {
		lines[i] = fmt.Sprintf("%d: %#v", i+1, a)
	}
	return strings.Join(lines, "\n")
}

// PrintSQL prints a rendered statement and its arguments.
func PrintSQL(title, sql string, args []any) {
	PrintBox(title, HighlightSQL(sql)+"\n\n"+FormatArgs(args))
}

// PrintTable prints a table using pterm
func PrintTable(headers []string, rows [][]string) error {
	data := pterm.TableData{headers}
	data = append(data, rows...)
	return pterm.DefaultTable.WithHasHeader().WithWriter(Output).WithData(data).Render()
}
