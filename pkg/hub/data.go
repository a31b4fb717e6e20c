package hub

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"github.com/ovsov/mphub/internal/check"
	"github.com/ovsov/mphub/internal/config"
	"github.com/ovsov/mphub/internal/db"
	"github.com/ovsov/mphub/internal/models"
)

// refreshInterval is how often the table re-reads the catalog while the
// browser is idle
const refreshInterval = 30 * time.Second

// tickMsg drives the periodic catalog refresh
type tickMsg time.Time

// refreshMsg carries a fresh read of the connection table
type refreshMsg struct {
	rows []models.ConnectionView
	err  error
}

// ClearStatusMsg clears the status line after its display window
type ClearStatusMsg struct{}

// checkDoneMsg reports a finished health check run
type checkDoneMsg struct {
	summary *check.Summary
	err     error
}

// orgPickedMsg lands when the organization picker confirms a choice
type orgPickedMsg struct {
	org models.Organization
}

// mpPickedMsg lands when the marketplace picker confirms a choice
type mpPickedMsg struct {
	mp models.Marketplace
}

// connSavedMsg reports the outcome of the new connection form
type connSavedMsg struct {
	label string
	err   error
}

// connDeletedMsg reports the outcome of a confirmed delete
type connDeletedMsg struct {
	label string
	err   error
}

// requestDeleteMsg asks the hub to stack a delete confirmation over
// whatever frame is open
type requestDeleteMsg struct {
	conn models.ConnectionView
}

// copiedMsg reports a clipboard copy attempt
type copiedMsg struct {
	err error
}

// scheduleTick arms the next periodic refresh
func scheduleTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// fetchRows reads the connection table with the active filters applied
func (m Model) fetchRows() tea.Cmd {
	database := m.DB
	opts := m.listOptions()
	return func() tea.Msg {
		rows, err := database.ListConnectionViews(opts)
		return refreshMsg{rows: rows, err: err}
	}
}

// listOptions translates the filter chips into query options
func (m Model) listOptions() db.ListConnectionsOptions {
	return db.ListConnectionsOptions{
		OrgID:         m.OrgFilterID,
		MarketplaceID: m.MpFilterID,
	}
}

// startChecks launches a health check run over the filtered rows.
// Runs are serialized; pressing c while one is out is ignored.
func (m *Model) startChecks() tea.Cmd {
	if m.Checking {
		return nil
	}
	m.Checking = true

	timeoutSecs, err := config.GetCheckTimeoutSecs(m.BaseDir)
	if err != nil {
		timeoutSecs = config.DefaultCheckTimeoutSecs
	}
	runner := &check.Runner{
		DB:      m.DB,
		Vault:   m.Vault,
		Prober:  check.NewHTTPProber(nil),
		Timeout: time.Duration(timeoutSecs) * time.Second,
	}
	opts := m.listOptions()
	return func() tea.Msg {
		summary, err := runner.Run(context.Background(), opts)
		return checkDoneMsg{summary: summary, err: err}
	}
}

// rowSource adapts the connection views for fuzzy matching across the
// fields a user would search by
type rowSource []models.ConnectionView

func (s rowSource) String(i int) string {
	v := s[i]
	return strings.Join([]string{
		v.OrgCode, v.OrgName,
		v.MarketplaceCode, v.MarketplaceName,
		v.Label, string(v.Status),
	}, " ")
}

func (s rowSource) Len() int { return len(s) }

// applyFilter recomputes the visible row set from the search query.
// An empty query shows everything in catalog order; matches come back
// ranked by the fuzzy score.
func (m *Model) applyFilter() {
	m.Visible = m.Visible[:0]
	q := strings.TrimSpace(m.SearchQuery)
	if q == "" {
		for i := range m.Rows {
			m.Visible = append(m.Visible, i)
		}
	} else {
		for _, match := range fuzzy.FindFrom(q, rowSource(m.Rows)) {
			m.Visible = append(m.Visible, match.Index)
		}
	}
	m.clampCursor()
}

// selectedRow returns the connection under the cursor
func (m Model) selectedRow() (models.ConnectionView, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.Visible) {
		return models.ConnectionView{}, false
	}
	return m.Rows[m.Visible[m.Cursor]], true
}

// moveCursor moves the selection, clamping at both ends
func (m *Model) moveCursor(delta int) {
	m.cursorTo(m.Cursor + delta)
}

// cursorTo moves the selection to row i, clamped to the visible set
func (m *Model) cursorTo(i int) {
	if len(m.Visible) == 0 {
		return
	}
	if i < 0 {
		i = 0
	}
	if i >= len(m.Visible) {
		i = len(m.Visible) - 1
	}
	m.Cursor = i
	m.ensureCursorVisible()
}

// clampCursor pulls the cursor back into the visible set after it
// changed under the selection
func (m *Model) clampCursor() {
	if len(m.Visible) == 0 {
		m.Cursor = 0
		m.Scroll = 0
		return
	}
	if m.Cursor >= len(m.Visible) {
		m.Cursor = len(m.Visible) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
	m.ensureCursorVisible()
}

// ensureCursorVisible keeps the selection inside the scrolled window
func (m *Model) ensureCursorVisible() {
	rows := m.tableRows()
	if rows <= 0 {
		return
	}
	if m.Cursor < m.Scroll {
		m.Scroll = m.Cursor
	}
	if m.Cursor >= m.Scroll+rows {
		m.Scroll = m.Cursor - rows + 1
	}
	if m.Scroll < 0 {
		m.Scroll = 0
	}
}

// scrollRows moves the window without moving the cursor, clamped to the
// row count
func (m *Model) scrollRows(delta int) {
	limit := len(m.Visible) - m.tableRows()
	if limit < 0 {
		limit = 0
	}
	m.Scroll += delta
	if m.Scroll < 0 {
		m.Scroll = 0
	}
	if m.Scroll > limit {
		m.Scroll = limit
	}
}

// setStatus puts a message on the status line and schedules its expiry
func (m *Model) setStatus(msg string, isErr bool) tea.Cmd {
	m.StatusMessage = msg
	m.StatusIsError = isErr
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return ClearStatusMsg{}
	})
}

// relAge formats a check timestamp as a short relative age
func relAge(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	d := time.Since(*t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
