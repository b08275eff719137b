package melody

import (
	"fmt"
	"strings"

	"github.com/gddickinson/fractal-music-generator/config"
)

// formatNoteTable formats notes into a table with one row per note.
// indent: number of spaces to indent the table
func formatNoteTable(notes []NoteEvent, indent int) string {
	headers := []string{"#", "Start", "Length", "Note", "Velocity"}

	cells := make([][]string, len(notes))
	for i, n := range notes {
		cells[i] = []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%.2f", n.Start),
			fmt.Sprintf("%.2f", n.Duration),
			fmt.Sprintf("%s (%d)", config.NoteName(n.Pitch), n.Pitch),
			fmt.Sprintf("%d", n.Velocity),
		}
	}

	// Calculate column widths
	widths := make([]int, len(headers))
	for c, header := range headers {
		widths[c] = len(header)
		for _, row := range cells {
			widths[c] = max(widths[c], len(row[c]))
		}
		// Set a minimum width for nicer output
		widths[c] = max(widths[c], 6)
	}

	padRight := func(s string, w int) string {
		if len(s) >= w {
			return s
		}
		return s + strings.Repeat(" ", w-len(s))
	}

	var b strings.Builder
	separator := func() {
		b.WriteString(strings.Repeat(" ", indent))
		for _, w := range widths {
			b.WriteString("+")
			b.WriteString(strings.Repeat("-", w+2)) // +2 for the space padding either side
		}
		b.WriteString("+\n")
	}
	line := func(values []string) {
		b.WriteString(strings.Repeat(" ", indent))
		for c, v := range values {
			b.WriteString("| ")
			b.WriteString(padRight(v, widths[c]))
			b.WriteString(" ")
		}
		b.WriteString("|\n")
	}

	separator()
	line(headers)
	separator()
	for _, row := range cells {
		line(row)
	}
	separator()

	return b.String()
}

// Pretty-print
func (m Melody) String() string {
	var b strings.Builder
	b.WriteString("Fractal Melody:\n")
	fmt.Fprintf(&b, "- Notes: %d\n", len(m))
	fmt.Fprintf(&b, "- Length: %.2f beats\n", m.End())
	if len(m) > 0 {
		lo, hi := m[0].Pitch, m[0].Pitch
		for _, n := range m[1:] {
			lo = min(lo, n.Pitch)
			hi = max(hi, n.Pitch)
		}
		fmt.Fprintf(&b, "- Range: %s to %s\n", config.NoteName(lo), config.NoteName(hi))
		b.WriteString(formatNoteTable(m, 2))
	}
	return b.String()
}
