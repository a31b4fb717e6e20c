package picker

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

type buttonAction int

const (
	actionSelect buttonAction = iota
	actionCancel
	actionRetry
)

type hitZone struct {
	x, w   int
	action buttonAction
}

// viewLayout is the geometry of the last render, kept around for mouse
// hit testing.
type viewLayout struct {
	width      int
	height     int
	listTop    int
	maxVisible int
	footerY    int
	zones      []hitZone
}

// rowsTop is the first list line: title, blank, then rows.
const rowsTop = 2

func (m *Model[T]) View(width, height int) string {
	if width < 1 || height < 1 {
		return ""
	}
	maxVisible := height - 4
	if maxVisible < 1 {
		maxVisible = 1
	}
	m.lay = viewLayout{
		width:      width,
		height:     height,
		listTop:    rowsTop,
		maxVisible: maxVisible,
		footerY:    height - 1,
	}

	lines := make([]string, height)
	// set tolerates heights too small for the full layout
	set := func(i int, s string) {
		if i < height {
			lines[i] = s
		}
	}
	lines[0] = m.titleLine(width)
	switch m.phase {
	case phaseLoading:
		set(rowsTop, mutedStyle.Render("Loading..."))
	case phaseError:
		set(rowsTop, errorStyle.Render(truncate("Error: "+m.errMsg, width)))
		set(rowsTop+1, mutedStyle.Render("Press r to retry"))
	case phaseReady:
		if len(m.items) == 0 {
			set(rowsTop, mutedStyle.Render("No items available"))
			break
		}
		m.clampOffset()
		if m.pendingScroll && m.cursor >= 0 {
			m.ensureVisible(m.cursor)
			m.pendingScroll = false
		}
		for row := 0; row < maxVisible; row++ {
			idx := m.offset + row
			if idx >= len(m.items) {
				break
			}
			set(rowsTop+row, m.renderRow(m.items[idx], width, idx == m.cursor))
		}
		if m.offset > 0 {
			set(1, mutedStyle.Render("↑ more above"))
		}
		// the bottom indicator needs its own line below the rows
		if m.offset+maxVisible < len(m.items) && height > 4 {
			set(height-2, mutedStyle.Render("↓ more below"))
		}
	}
	lines[height-1] = m.footer(width)
	return strings.Join(lines, "\n")
}

func (m *Model[T]) titleLine(width int) string {
	t := titleStyle.Render(truncate(m.title, width))
	if m.phase == phaseReady && len(m.items) > 0 {
		t += countStyle.Render(fmt.Sprintf("  (%d)", len(m.items)))
	}
	return truncate(t, width)
}

func (m *Model[T]) renderRow(item T, width int, selected bool) string {
	bw := width - 2
	if bw < 1 {
		bw = 1
	}
	if m.rowRender != nil {
		body := truncate(m.rowRender(item, bw, selected), bw)
		if selected {
			return cursorStyle.Render("> ") + body
		}
		return "  " + body
	}
	code, desc := columns(item)
	if code == "" {
		if selected {
			return cursorStyle.Render("> ") + selectedRowStyle.Render(padRight(desc, bw))
		}
		return "  " + truncate(desc, bw)
	}
	if selected {
		body := padRight(code, m.codeW) + "  " + desc
		return cursorStyle.Render("> ") + selectedRowStyle.Render(padRight(body, bw))
	}
	descW := bw - m.codeW - 2
	if descW < 1 {
		descW = 1
	}
	return "  " + codeStyle.Render(padRight(code, m.codeW)) + "  " + truncate(desc, descW)
}

func columns[T Item](item T) (string, string) {
	if ti, ok := any(item).(TableItem); ok {
		return ti.Code(), ti.Description()
	}
	return "", item.DisplayName()
}

func (m *Model[T]) footer(width int) string {
	var buttons []string
	var zones []hitZone
	x := 0
	add := func(label string, style lipgloss.Style, action buttonAction) {
		b := style.Render(label)
		w := ansi.StringWidth(b)
		zones = append(zones, hitZone{x: x, w: w, action: action})
		buttons = append(buttons, b)
		x += w + 2
	}
	switch m.phase {
	case phaseError:
		add("Retry", buttonActiveStyle, actionRetry)
		add("Cancel", buttonIdleStyle, actionCancel)
	case phaseReady:
		style := buttonIdleStyle
		if m.cursor >= 0 {
			style = buttonActiveStyle
		}
		add("Select", style, actionSelect)
		add("Cancel", buttonIdleStyle, actionCancel)
	default:
		add("Cancel", buttonIdleStyle, actionCancel)
	}
	m.lay.zones = zones
	return truncate(strings.Join(buttons, "  "), width)
}

func (m *Model[T]) clampOffset() {
	limit := len(m.items) - m.lay.maxVisible
	if limit < 0 {
		limit = 0
	}
	if m.offset > limit {
		m.offset = limit
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func codeWidth[T Item](items []T) int {
	w := 4
	for _, item := range items {
		ti, ok := any(item).(TableItem)
		if !ok {
			continue
		}
		if n := ansi.StringWidth(ti.Code()); n > w {
			w = n
		}
	}
	if w > 16 {
		w = 16
	}
	return w
}

func truncate(s string, width int) string {
	if width < 1 {
		return ""
	}
	return ansi.Truncate(s, width, "")
}

func padRight(s string, width int) string {
	w := ansi.StringWidth(s)
	if w >= width {
		return ansi.Truncate(s, width, "")
	}
	return s + strings.Repeat(" ", width-w)
}
