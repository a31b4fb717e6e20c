package overlay

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
)

// composeAt draws over onto base with its top-left corner at column x,
// row y. Both strings may carry ANSI sequences; widths are measured in
// terminal cells. Rows and columns outside the canvas are dropped.
func composeAt(base, over string, x, y, width, height int) string {
	if width <= 0 || height <= 0 {
		return ""
	}
	baseLines := splitToLines(base, height)
	overLines := strings.Split(over, "\n")

	for i, line := range overLines {
		row := y + i
		if row < 0 || row >= height {
			continue
		}
		col := x
		if col < 0 {
			line = dropColumns(line, -col)
			col = 0
		}
		w := ansi.StringWidth(line)
		if w == 0 || col >= width {
			continue
		}
		end := col + w
		if end > width {
			end = width
		}

		baseLine := padRightANSI(baseLines[row], width)
		left := ansi.Truncate(baseLine, col, "")
		segment := ansi.Truncate(line, end-col, "")
		right := dropColumns(baseLine, end)
		baseLines[row] = padRightANSI(left+segment+right, width)
	}
	return strings.Join(baseLines, "\n")
}

// fitCanvas pads or crops s to exactly width x height cells
func fitCanvas(s string, width, height int) string {
	lines := splitToLines(s, height)
	for i := range lines {
		lines[i] = padRightANSI(lines[i], width)
	}
	return strings.Join(lines, "\n")
}

// splitToLines splits s into exactly height lines, padding with empty
// lines and dropping overflow.
func splitToLines(s string, height int) []string {
	lines := strings.Split(s, "\n")
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}

// dropColumns removes the first cols terminal cells from s, keeping
// escape sequences intact so styling survives the cut
func dropColumns(s string, cols int) string {
	if cols <= 0 {
		return s
	}
	return ansi.TruncateLeft(s, cols, "")
}

// padRightANSI crops s to width cells and pads with spaces up to it
func padRightANSI(s string, width int) string {
	s = ansi.Truncate(s, width, "")
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
