package hub

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/ovsov/mphub/internal/models"
	"github.com/ovsov/mphub/pkg/overlay"
)

// detailFrameStyle keeps the detail card narrower than the pickers
var detailFrameStyle = overlay.FrameStyle{
	WidthPercent:  0.6,
	HeightPercent: 0.7,
	MinWidth:      48,
	MaxWidth:      76,
	MinHeight:     14,
	MaxHeight:     26,
}

// openDetail opens the selected connection in a detail card. A click on
// the dimly visible table behind it closes the card like escape would.
func (m Model) openDetail() (Model, tea.Cmd) {
	v, ok := m.selectedRow()
	if !ok {
		return m, nil
	}

	d := &detailContent{
		conn: v,
		onDelete: func(conn models.ConnectionView) tea.Cmd {
			return func() tea.Msg { return requestDeleteMsg{conn: conn} }
		},
	}
	h, cmd := m.Frames.Push(d,
		overlay.WithClass("detail"),
		overlay.WithStyle(detailFrameStyle),
		overlay.WithBackdropClose(),
	)
	m.DetailHandle = h
	return m, cmd
}

// detailContent shows one connection as rendered markdown with key
// scrolling. The render is cached per width.
type detailContent struct {
	conn     models.ConnectionView
	onDelete func(models.ConnectionView) tea.Cmd

	rendered []string
	renderW  int
	scroll   int
}

func (d *detailContent) Init() tea.Cmd { return nil }

func (d *detailContent) Update(msg tea.Msg) (overlay.Content, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}
	switch key.String() {
	case "j", "down":
		d.scroll++
	case "k", "up":
		if d.scroll > 0 {
			d.scroll--
		}
	case "g", "home":
		d.scroll = 0
	case "c":
		id := d.conn.ID
		return d, func() tea.Msg {
			return copiedMsg{err: copyToClipboard(id)}
		}
	case "d":
		if d.onDelete != nil {
			return d, d.onDelete(d.conn)
		}
	}
	return d, nil
}

func (d *detailContent) View(width, height int) string {
	if d.rendered == nil || d.renderW != width {
		d.rendered = strings.Split(renderMarkdown(d.markdown(), width), "\n")
		d.renderW = width
	}

	body := height - 1
	if body < 1 {
		body = 1
	}
	maxScroll := len(d.rendered) - body
	if maxScroll < 0 {
		maxScroll = 0
	}
	if d.scroll > maxScroll {
		d.scroll = maxScroll
	}
	end := d.scroll + body
	if end > len(d.rendered) {
		end = len(d.rendered)
	}

	lines := make([]string, 0, height)
	lines = append(lines, d.rendered[d.scroll:end]...)
	for len(lines) < body {
		lines = append(lines, "")
	}
	lines = append(lines, hintStyle.Render("j/k:scroll c:copy id d:delete esc:close"))
	return strings.Join(lines, "\n")
}

// markdown builds the card body
func (d *detailContent) markdown() string {
	v := d.conn
	cred := "none stored"
	if v.HasCredential {
		cred = "stored"
	}
	endpoint := v.APIBase
	if endpoint == "" {
		endpoint = "not configured"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# %s / %s\n\n", v.OrgCode, v.MarketplaceCode)
	fmt.Fprintf(&b, "%s on %s", v.OrgName, v.MarketplaceName)
	if v.Sandbox {
		b.WriteString(" (sandbox)")
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "- **Label:** %s\n", v.Label)
	fmt.Fprintf(&b, "- **Status:** %s\n", v.Status)
	fmt.Fprintf(&b, "- **Credential:** %s\n", cred)
	fmt.Fprintf(&b, "- **Endpoint:** %s\n", endpoint)
	fmt.Fprintf(&b, "- **Last check:** %s\n", relAge(v.LastCheckedAt))
	fmt.Fprintf(&b, "- **Created:** %s\n", v.CreatedAt.Format("2006-01-02"))
	fmt.Fprintf(&b, "\n`%s`\n", v.ID)
	return b.String()
}

// renderMarkdown renders markdown for the terminal, falling back to the
// raw text when the renderer fails
func renderMarkdown(text string, width int) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return text
	}
	out, err := r.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n\r\t ")
}
