// Package hub is the interactive catalog browser. The connection table
// is the base layer; pickers, the connection form, detail cards and
// confirmations open as stacked overlay frames on top of it.
package hub

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/ovsov/mphub/internal/config"
	"github.com/ovsov/mphub/internal/db"
	"github.com/ovsov/mphub/internal/models"
	"github.com/ovsov/mphub/internal/vault"
	"github.com/ovsov/mphub/pkg/overlay"
)

// Table geometry: title, header, rows, then status and hint lines.
const (
	tableTop   = 2
	colOrg     = 10
	colMp      = 14
	colStatus  = 8
	colCred    = 4
	colChecked = 10
)

// doubleClickWindow is how close two clicks on a table row must land to
// open the detail card
const doubleClickWindow = 450 * time.Millisecond

// Model is the browser state. Frame contents hold pointers into the
// registry, so copies of the model share one overlay stack.
type Model struct {
	DB      *db.DB
	Vault   *vault.Vault
	BaseDir string

	Width  int
	Height int

	Rows    []models.ConnectionView
	Visible []int
	Cursor  int
	Scroll  int

	OrgFilterID   string
	OrgFilterCode string
	MpFilterID    string
	MpFilterCode  string

	SearchMode  bool
	SearchInput textinput.Model
	SearchQuery string

	Frames *overlay.Registry
	Host   *overlay.Host

	DetailHandle overlay.Handle

	StatusMessage string
	StatusIsError bool
	Checking      bool

	LastClickRow int
	LastClickAt  time.Time
}

// New builds a browser over an opened catalog
func New(database *db.DB, v *vault.Vault, baseDir string) Model {
	reg := overlay.NewRegistry()

	ti := textinput.New()
	ti.Placeholder = "org, marketplace, label..."
	ti.Prompt = "/"
	ti.CharLimit = 120
	ti.Width = 36

	return Model{
		DB:           database,
		Vault:        v,
		BaseDir:      baseDir,
		SearchInput:  ti,
		Frames:       reg,
		Host:         overlay.NewHost(reg),
		LastClickRow: -1,
	}
}

// Run opens the catalog in baseDir and drives the browser until quit
func Run(baseDir string) error {
	database, err := db.Open(baseDir)
	if err != nil {
		return err
	}
	defer database.Close()
	database.SetMaxOpenConns(1)

	v, err := vault.Load(baseDir)
	if err != nil {
		return err
	}

	p := tea.NewProgram(New(database, v, baseDir),
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run browser: %w", err)
	}
	return nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.fetchRows(), scheduleTick())
}

// Update gives the overlay host first claim on every message. Keys and
// clicks that land in a frame never reach the table below it.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	hostCmd, consumed := m.Host.Update(msg)
	if consumed {
		return m, hostCmd
	}

	next, cmd := m.update(msg)
	if hostCmd == nil {
		return next, cmd
	}
	return next, tea.Batch(hostCmd, cmd)
}

// update handles everything the overlay stack did not consume
func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width, m.Height = msg.Width, msg.Height
		m.ensureCursorVisible()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tickMsg:
		return m, tea.Batch(m.fetchRows(), scheduleTick())

	case refreshMsg:
		if msg.err != nil {
			return m, m.setStatus("Refresh failed: "+msg.err.Error(), true)
		}
		m.Rows = msg.rows
		m.applyFilter()
		return m, nil

	case ClearStatusMsg:
		m.StatusMessage = ""
		m.StatusIsError = false
		return m, nil

	case orgPickedMsg:
		m.OrgFilterID = msg.org.ID
		m.OrgFilterCode = msg.org.Code
		m.Cursor, m.Scroll = 0, 0
		if err := config.SetLastOrg(m.BaseDir, msg.org.ID); err != nil {
			return m, tea.Batch(m.fetchRows(), m.setStatus("Remember organization: "+err.Error(), true))
		}
		return m, m.fetchRows()

	case mpPickedMsg:
		m.MpFilterID = msg.mp.ID
		m.MpFilterCode = msg.mp.Code
		m.Cursor, m.Scroll = 0, 0
		if err := config.SetLastMarketplace(m.BaseDir, msg.mp.ID); err != nil {
			return m, tea.Batch(m.fetchRows(), m.setStatus("Remember marketplace: "+err.Error(), true))
		}
		return m, m.fetchRows()

	case connSavedMsg:
		if msg.err != nil {
			return m, m.setStatus("Save failed: "+msg.err.Error(), true)
		}
		return m, tea.Batch(m.fetchRows(), m.setStatus(fmt.Sprintf("Connection %q saved", msg.label), false))

	case connDeletedMsg:
		// The detail card for the deleted row may still be open
		m.DetailHandle.Close()
		if msg.err != nil {
			return m, m.setStatus("Delete failed: "+msg.err.Error(), true)
		}
		return m, tea.Batch(m.fetchRows(), m.setStatus(fmt.Sprintf("Connection %q deleted", msg.label), false))

	case requestDeleteMsg:
		return m, m.openConfirm(msg.conn)

	case copiedMsg:
		if msg.err != nil {
			return m, m.setStatus("Copy failed: "+msg.err.Error(), true)
		}
		return m, m.setStatus("Connection ID copied", false)

	case checkDoneMsg:
		m.Checking = false
		if msg.err != nil {
			return m, m.setStatus("Check failed: "+msg.err.Error(), true)
		}
		s := msg.summary
		text := fmt.Sprintf("Checked %d: %d healthy, %d broken, %d skipped",
			s.Checked, s.Healthy, s.Broken, s.Skipped)
		return m, tea.Batch(m.fetchRows(), m.setStatus(text, s.Broken > 0))
	}

	return m, nil
}

// handleKey processes table level keys. Frame content never sees these;
// the host consumes keyboard input whenever a frame is open.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if m.SearchMode {
		return m.handleSearchKey(msg)
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "j", "down":
		m.moveCursor(1)
	case "k", "up":
		m.moveCursor(-1)
	case "g", "home":
		m.cursorTo(0)
	case "G", "end":
		m.cursorTo(len(m.Visible) - 1)
	case "/":
		m.SearchMode = true
		m.SearchInput.Focus()
		return m, textinput.Blink
	case "o":
		return m, m.openOrgPicker()
	case "m":
		return m, m.openMarketplacePicker()
	case "n":
		return m.openConnectionForm()
	case "enter":
		return m.openDetail()
	case "d":
		if v, ok := m.selectedRow(); ok {
			return m, m.openConfirm(v)
		}
	case "c":
		return m, m.startChecks()
	case "r":
		return m, m.fetchRows()
	case "x":
		m.OrgFilterID, m.OrgFilterCode = "", ""
		m.MpFilterID, m.MpFilterCode = "", ""
		m.SearchQuery = ""
		m.SearchInput.SetValue("")
		m.applyFilter()
		return m, m.fetchRows()
	}
	return m, nil
}

// handleSearchKey routes keys into the live search input. Escape drops
// the query, enter keeps it and returns to the table.
func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.SearchMode = false
		m.SearchQuery = ""
		m.SearchInput.SetValue("")
		m.SearchInput.Blur()
		m.applyFilter()
		return m, nil
	case "enter":
		m.SearchMode = false
		m.SearchInput.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.SearchInput, cmd = m.SearchInput.Update(msg)
	m.SearchQuery = m.SearchInput.Value()
	m.applyFilter()
	return m, cmd
}

// handleMouse covers the base table: wheel scrolling, click to select,
// double click to open the detail card
func (m Model) handleMouse(msg tea.MouseMsg) (Model, tea.Cmd) {
	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		m.scrollRows(-1)
	case msg.Button == tea.MouseButtonWheelDown:
		m.scrollRows(1)
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if msg.Y < tableTop || msg.Y >= tableTop+m.tableRows() {
			return m, nil
		}
		row := msg.Y - tableTop + m.Scroll
		if row >= len(m.Visible) {
			return m, nil
		}
		m.Cursor = row
		m.ensureCursorVisible()
		if row == m.LastClickRow && time.Since(m.LastClickAt) <= doubleClickWindow {
			m.LastClickRow = -1
			return m.openDetail()
		}
		m.LastClickRow = row
		m.LastClickAt = time.Now()
	}
	return m, nil
}

// tableRows is how many connection rows fit the current height
func (m Model) tableRows() int {
	rows := m.Height - tableTop - 2
	if rows < 1 {
		rows = 1
	}
	return rows
}

// View renders the table and lets the host composite any open frames
// over it
func (m Model) View() string {
	if m.Width <= 0 || m.Height <= 0 {
		return ""
	}

	lines := make([]string, 0, m.Height)
	lines = append(lines, m.titleLine())
	lines = append(lines, m.headerLine())

	rows := m.tableRows()
	for i := 0; i < rows; i++ {
		idx := m.Scroll + i
		if idx >= len(m.Visible) {
			if i == 0 && len(m.Visible) == 0 {
				lines = append(lines, m.emptyLine())
				continue
			}
			lines = append(lines, "")
			continue
		}
		lines = append(lines, m.rowLine(m.Rows[m.Visible[idx]], idx == m.Cursor))
	}

	lines = append(lines, m.statusLine())
	lines = append(lines, m.hintLine())

	return m.Host.View(strings.Join(lines, "\n"))
}

func (m Model) titleLine() string {
	parts := []string{titleStyle.Render("mphub")}
	if m.OrgFilterCode != "" {
		parts = append(parts, chipStyle.Render("org:"+m.OrgFilterCode))
	}
	if m.MpFilterCode != "" {
		parts = append(parts, chipStyle.Render("mp:"+m.MpFilterCode))
	}
	if m.SearchMode {
		parts = append(parts, m.SearchInput.View())
	} else if m.SearchQuery != "" {
		parts = append(parts, hintStyle.Render("/"+m.SearchQuery))
	}
	return strings.Join(parts, "  ")
}

func (m Model) headerLine() string {
	cells := []string{
		pad("ORG", colOrg),
		pad("MARKETPLACE", colMp),
		pad("LABEL", m.labelWidth()),
		pad("STATUS", colStatus),
		pad("CRED", colCred),
		pad("CHECKED", colChecked),
	}
	return headerStyle.Render("  " + strings.Join(cells, " "))
}

// rowLine renders one connection. The selected row trades per cell
// colors for the highlight bar, matching the picker list.
func (m Model) rowLine(v models.ConnectionView, selected bool) string {
	cred := "-"
	if v.HasCredential {
		cred = "ok"
	}
	cells := []string{
		pad(v.OrgCode, colOrg),
		pad(v.MarketplaceCode, colMp),
		pad(v.Label, m.labelWidth()),
		pad(string(v.Status), colStatus),
		pad(cred, colCred),
		pad(relAge(v.LastCheckedAt), colChecked),
	}
	if selected {
		return cursorStyle.Render("> ") + selectedRowStyle.Render(strings.Join(cells, " "))
	}

	statusCell := lipgloss.NewStyle().Foreground(statusColor(v.Status)).Render(cells[3])
	credCell := cells[4]
	if v.HasCredential {
		credCell = credStyle.Render(cells[4])
	}
	return "  " + strings.Join([]string{cells[0], cells[1], cells[2], statusCell, credCell, cells[5]}, " ")
}

func (m Model) emptyLine() string {
	if m.SearchQuery != "" {
		return hintStyle.Render("  No connections match the search")
	}
	if m.OrgFilterID != "" || m.MpFilterID != "" {
		return hintStyle.Render("  No connections match the filters")
	}
	return hintStyle.Render("  No connections yet. Press n to create one.")
}

func (m Model) statusLine() string {
	if m.StatusMessage != "" {
		if m.StatusIsError {
			return statusErrStyle.Render(m.StatusMessage)
		}
		return statusOkStyle.Render(m.StatusMessage)
	}
	if m.Checking {
		return hintStyle.Render("Checking connections...")
	}
	if len(m.Visible) != len(m.Rows) {
		return hintStyle.Render(fmt.Sprintf("%d of %d connections", len(m.Visible), len(m.Rows)))
	}
	return hintStyle.Render(fmt.Sprintf("%d connections", len(m.Rows)))
}

func (m Model) hintLine() string {
	return hintStyle.Render("j/k:rows enter:open n:new d:delete o:org m:marketplace /:search c:check q:quit")
}

// labelWidth gives the label column the space the fixed columns leave
func (m Model) labelWidth() int {
	w := m.Width - 2 - colOrg - colMp - colStatus - colCred - colChecked - 5
	if w < 8 {
		w = 8
	}
	return w
}

// pad truncates or pads s to exactly w columns
func pad(s string, w int) string {
	s = ansi.Truncate(s, w, "…")
	if gap := w - ansi.StringWidth(s); gap > 0 {
		s += strings.Repeat(" ", gap)
	}
	return s
}
