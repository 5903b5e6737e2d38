package report

import (
	"fmt"
	"strings"

	"github.com/camtrap-arena/duelrank/internal/leaderboard"
	"github.com/mattn/go-runewidth"
)

// Markdown renders the board as a Markdown document with pipe tables.
func Markdown(b *leaderboard.Board) string {
	var sb strings.Builder
	sb.WriteString("# Camera trap arena leaderboard\n\n")
	fmt.Fprintf(&sb, "%d duels, %d models", b.Summary.Duels, len(b.Summary.Models))
	if len(b.Summary.Models) > 0 {
		fmt.Fprintf(&sb, ": %s", strings.Join(b.Summary.Models, ", "))
	}
	sb.WriteString("\n")

	sb.WriteString("\n")
	sb.WriteString(MarkdownTables(Tables(b)...))
	return sb.String()
}

// MarkdownTables renders each table as a titled pipe table.
func MarkdownTables(tables ...Table) string {
	var sb strings.Builder
	for i, t := range tables {
		if i > 0 {
			sb.WriteString("\n")
		}
		writeMarkdownTable(&sb, t)
	}
	return sb.String()
}

func writeMarkdownTable(sb *strings.Builder, t Table) {
	fmt.Fprintf(sb, "## %s\n\n", t.Title)
	if len(t.Rows) == 0 {
		sb.WriteString("_No data._\n")
		return
	}

	widths := columnWidths(t, escapeCell)
	writeRow := func(cells []string) {
		sb.WriteString("|")
		for i, c := range cells {
			fmt.Fprintf(sb, " %s |", padRight(escapeCell(c), widths[i]))
		}
		sb.WriteString("\n")
	}

	writeRow(t.Headers)
	sb.WriteString("|")
	for _, w := range widths {
		fmt.Fprintf(sb, " %s |", strings.Repeat("-", max(w, 3)))
	}
	sb.WriteString("\n")
	for _, row := range t.Rows {
		writeRow(row)
	}
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	return strings.ReplaceAll(s, "\n", " ")
}

func columnWidths(t Table, render func(string) string) []int {
	widths := make([]int, len(t.Headers))
	for i, h := range t.Headers {
		widths[i] = runewidth.StringWidth(render(h))
	}
	for _, row := range t.Rows {
		for i, c := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], runewidth.StringWidth(render(c)))
			}
		}
	}
	return widths
}

// padRight pads s with spaces to the given display width, accounting for
// wide and combining characters.
func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
