package hub

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ovsov/mphub/internal/db"
	"github.com/ovsov/mphub/internal/models"
	"github.com/ovsov/mphub/pkg/overlay"
)

// confirmFrameStyle is sized so the card body fits without wrapping
// once the frame border and padding are taken off.
var confirmFrameStyle = overlay.FrameStyle{
	WidthPercent:  0.5,
	HeightPercent: 0.3,
	MinWidth:      48,
	MaxWidth:      56,
	MinHeight:     11,
	MaxHeight:     12,
}

// openConfirm stacks a delete confirmation for conn. It goes on top of
// whatever frame asked for it, so the detail card stays underneath.
func (m Model) openConfirm(conn models.ConnectionView) tea.Cmd {
	c := &confirmContent{conn: conn, db: m.DB}
	h, cmd := m.Frames.Push(c,
		overlay.WithClass("confirm"),
		overlay.WithStyle(confirmFrameStyle),
	)
	c.close = h.Close
	return cmd
}

// confirmContent is the delete confirmation card
type confirmContent struct {
	conn  models.ConnectionView
	db    *db.DB
	close func()
}

func (c *confirmContent) Init() tea.Cmd { return nil }

func (c *confirmContent) Update(msg tea.Msg) (overlay.Content, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return c, nil
	}
	switch key.String() {
	case "y":
		err := c.db.DeleteConnection(c.conn.ID)
		c.close()
		label := c.conn.Label
		return c, func() tea.Msg {
			return connDeletedMsg{label: label, err: err}
		}
	case "n":
		c.close()
	}
	return c, nil
}

func (c *confirmContent) View(width, height int) string {
	v := c.conn
	lines := []string{
		titleStyle.Render("Delete connection?"),
		"",
		fmt.Sprintf("%s / %s", v.OrgCode, v.MarketplaceCode),
		hintStyle.Render(v.Label),
		"",
		"The stored credential is removed with it.",
	}
	if len(lines) > height-1 {
		lines = lines[:height-1]
	}
	for len(lines) < height-1 {
		lines = append(lines, "")
	}
	lines = append(lines, hintStyle.Render("y:delete n:keep"))
	return strings.Join(lines, "\n")
}
