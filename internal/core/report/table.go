// Package report renders the plain text run report: banner header, ETL status, and pipe tables
package report

import (
	"strings"
	"unicode/utf8"
)

// minColumnWidth is the floor applied to every column
const minColumnWidth = 10

// NoResults is rendered in place of a table with no rows
const NoResults = "No results found."

// Table is a rectangular block of pre-formatted cells
type Table struct {
	Columns []string
	Rows    [][]string
}

// Empty reports whether the table has no data rows
func (t Table) Empty() bool { return len(t.Rows) == 0 }

// widths returns max(len(header), minColumnWidth) per column, counted in runes
func (t Table) widths() []int {
	w := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		w[i] = max(utf8.RuneCountInString(c), minColumnWidth)
	}
	return w
}

// Markdown renders the table as a fixed width pipe table with a :- alignment row
// cells wider than their column are written in full, never truncated
func (t Table) Markdown() string {
	if t.Empty() {
		return NoResults
	}
	w := t.widths()

	var b strings.Builder
	writeRow(&b, t.Columns, w)

	b.WriteString("\n|")
	for i, n := range w {
		if i > 0 {
			b.WriteByte('|')
		}
		b.WriteString(":-")
		b.WriteString(strings.Repeat("-", n-1))
	}
	b.WriteByte('|')

	for _, r := range t.Rows {
		b.WriteByte('\n')
		writeRow(&b, r, w)
	}
	return b.String()
}

// writeRow writes "| a | b |" with each cell left justified to its width
// missing trailing cells render as blanks
func writeRow(b *strings.Builder, cells []string, w []int) {
	b.WriteString("| ")
	for i, n := range w {
		if i > 0 {
			b.WriteString(" | ")
		}
		var c string
		if i < len(cells) {
			c = cells[i]
		}
		b.WriteString(ljust(c, n))
	}
	b.WriteString(" |")
}

func ljust(s string, n int) string {
	if pad := n - utf8.RuneCountInString(s); pad > 0 {
		return s + strings.Repeat(" ", pad)
	}
	return s
}
