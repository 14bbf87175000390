package dropdown

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// Overlay draws lines over base starting at column x, row y. Styled text on
// either side of the overlay is kept intact. Rows outside base are dropped;
// base lines shorter than x are padded with spaces.
func Overlay(base string, lines []string, x, y int) string {
	if len(lines) == 0 {
		return base
	}
	if x < 0 {
		x = 0
	}
	rows := strings.Split(base, "\n")

	for i, line := range lines {
		row := y + i
		if row < 0 || row >= len(rows) {
			continue
		}
		under := rows[row]
		underW := ansi.StringWidth(under)
		lineW := ansi.StringWidth(line)

		var b strings.Builder
		if underW >= x {
			b.WriteString(ansi.Truncate(under, x, ""))
		} else {
			b.WriteString(under)
			b.WriteString(strings.Repeat(" ", x-underW))
		}
		b.WriteString("\x1b[0m")
		b.WriteString(line)
		b.WriteString("\x1b[0m")
		if end := x + lineW; end < underW {
			b.WriteString(ansi.TruncateLeft(under, end, ""))
		}
		rows[row] = b.String()
	}
	return strings.Join(rows, "\n")
}
