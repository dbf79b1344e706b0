// Package render formats CLI output: padded tables with styled headers,
// summary lines, and the access-denied notice.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	valueStyle = lipgloss.NewStyle().
			Bold(true)

	deniedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

// Table renders rows under a styled header, columns padded to the widest
// cell. No borders; output stays grep-friendly.
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for index, header := range headers {
		widths[index] = lipgloss.Width(header)
	}
	for _, row := range rows {
		for index, cell := range row {
			if index < len(widths) && lipgloss.Width(cell) > widths[index] {
				widths[index] = lipgloss.Width(cell)
			}
		}
	}

	var builder strings.Builder
	for index, header := range headers {
		builder.WriteString(headerStyle.Render(pad(header, widths[index])))
		if index < len(headers)-1 {
			builder.WriteString("  ")
		}
	}
	builder.WriteString("\n")
	for _, row := range rows {
		for index, cell := range row {
			if index >= len(widths) {
				break
			}
			builder.WriteString(pad(cell, widths[index]))
			if index < len(row)-1 {
				builder.WriteString("  ")
			}
		}
		builder.WriteString("\n")
	}
	return builder.String()
}

func pad(text string, width int) string {
	gap := width - lipgloss.Width(text)
	if gap <= 0 {
		return text
	}
	return text + strings.Repeat(" ", gap)
}

// Summary renders one "label: value" line.
func Summary(label string, value string) string {
	return labelStyle.Render(label+": ") + valueStyle.Render(value)
}

// PageLine renders the pagination footer under a table.
func PageLine(page int, pageCount int, total int) string {
	return hintStyle.Render(fmt.Sprintf("page %d of %d (%d total)", page, pageCount, total))
}

// Denied renders the blocking access-denied notice with its redirect hint.
func Denied(message string, redirectTo string) string {
	var builder strings.Builder
	builder.WriteString(deniedStyle.Render("Access Denied"))
	builder.WriteString("\n")
	builder.WriteString(message)
	builder.WriteString("\n")
	builder.WriteString(hintStyle.Render("returning to " + redirectTo))
	builder.WriteString("\n")
	return builder.String()
}
