package hub

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ovsov/mphub/internal/check"
	"github.com/ovsov/mphub/internal/config"
	"github.com/ovsov/mphub/internal/db"
	"github.com/ovsov/mphub/internal/models"
	"github.com/ovsov/mphub/internal/vault"
)

func key(s string) tea.KeyMsg {
	switch s {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func leftClick(x, y int) tea.MouseMsg {
	return tea.MouseMsg{X: x, Y: y, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft}
}

// drive feeds messages through Update, returning the final model and
// the command from the last message
func drive(t *testing.T, m Model, msgs ...tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, msg := range msgs {
		var res tea.Model
		res, cmd = m.Update(msg)
		m = res.(Model)
	}
	return m, cmd
}

// newSizedModel is a browser without a catalog behind it, for tests
// that inject rows directly
func newSizedModel(t *testing.T, rows ...models.ConnectionView) Model {
	t.Helper()
	m := New(nil, nil, t.TempDir())
	m, _ = drive(t, m,
		tea.WindowSizeMsg{Width: 80, Height: 16},
		refreshMsg{rows: rows},
	)
	return m
}

// seedCatalog builds a real catalog with one connection and an opened
// vault, for tests that go through the database
func seedCatalog(t *testing.T) (*db.DB, *vault.Vault, string) {
	t.Helper()
	dir := t.TempDir()

	database, err := db.Initialize(dir)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	v, err := vault.Load(dir)
	if err != nil {
		t.Fatalf("vault.Load failed: %v", err)
	}

	org := models.Organization{Code: "acme", Name: "Acme Trading"}
	if err := database.CreateOrganization(&org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	mp := models.Marketplace{Code: "wb", Name: "Wildberries", Region: "RU"}
	if err := database.CreateMarketplace(&mp); err != nil {
		t.Fatalf("CreateMarketplace failed: %v", err)
	}
	conn := models.Connection{OrgID: org.ID, MarketplaceID: mp.ID, Label: "primary"}
	if err := database.CreateConnection(&conn); err != nil {
		t.Fatalf("CreateConnection failed: %v", err)
	}

	box, err := v.Seal([]byte("token-123"))
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	if err := database.PutCredential(conn.ID, box); err != nil {
		t.Fatalf("PutCredential failed: %v", err)
	}

	return database, v, dir
}

// refresh runs the fetch command synchronously and applies its result
func refresh(t *testing.T, m Model) Model {
	t.Helper()
	cmd := m.fetchRows()
	if cmd == nil {
		t.Fatal("Expected a fetch command")
	}
	m, _ = drive(t, m, cmd())
	return m
}

func TestRefreshPopulatesTable(t *testing.T) {
	m := newSizedModel(t,
		view("acme", "amzn-de", "primary"),
		view("globex", "ebay-us", "backup"),
	)
	if len(m.Rows) != 2 || len(m.Visible) != 2 {
		t.Fatalf("Rows = %d, Visible = %d, want 2 and 2", len(m.Rows), len(m.Visible))
	}
}

func TestRefreshErrorGoesToStatusLine(t *testing.T) {
	m := New(nil, nil, t.TempDir())
	m, cmd := drive(t, m, refreshMsg{err: errFake("catalog locked")})
	if !m.StatusIsError || !strings.Contains(m.StatusMessage, "catalog locked") {
		t.Errorf("StatusMessage = %q, IsError = %v", m.StatusMessage, m.StatusIsError)
	}
	if cmd == nil {
		t.Error("Expected the status expiry tick")
	}
}

func TestKeysMoveSelection(t *testing.T) {
	m := newSizedModel(t,
		view("acme", "amzn-de", "primary"),
		view("globex", "ebay-us", "backup"),
		view("acme", "otto", "outlet"),
	)

	m, _ = drive(t, m, key("j"), key("j"), key("k"))
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", m.Cursor)
	}

	m, _ = drive(t, m, key("G"))
	if m.Cursor != 2 {
		t.Errorf("Cursor after G = %d, want 2", m.Cursor)
	}
	m, _ = drive(t, m, key("g"))
	if m.Cursor != 0 {
		t.Errorf("Cursor after g = %d, want 0", m.Cursor)
	}
}

func TestSearchFiltersLive(t *testing.T) {
	m := newSizedModel(t,
		view("acme", "amzn-de", "primary"),
		view("globex", "ebay-us", "backup"),
	)

	m, cmd := drive(t, m, key("/"))
	if !m.SearchMode {
		t.Fatal("Slash should enter search mode")
	}
	if cmd == nil {
		t.Error("Expected the cursor blink command")
	}

	m, _ = drive(t, m, key("glob"))
	if m.SearchQuery != "glob" {
		t.Fatalf("SearchQuery = %q", m.SearchQuery)
	}
	if len(m.Visible) != 1 {
		t.Fatalf("Visible = %v, want one match", m.Visible)
	}

	m, _ = drive(t, m, key("esc"))
	if m.SearchMode || m.SearchQuery != "" {
		t.Error("Escape should leave search and drop the query")
	}
	if len(m.Visible) != 2 {
		t.Errorf("Visible = %v after clearing, want all rows", m.Visible)
	}
}

func TestSearchEnterKeepsQuery(t *testing.T) {
	m := newSizedModel(t,
		view("acme", "amzn-de", "primary"),
		view("globex", "ebay-us", "backup"),
	)

	m, _ = drive(t, m, key("/"), key("glob"), key("enter"))
	if m.SearchMode {
		t.Error("Enter should leave search mode")
	}
	if m.SearchQuery != "glob" || len(m.Visible) != 1 {
		t.Errorf("Query %q with %d visible, want the filter kept", m.SearchQuery, len(m.Visible))
	}
}

func TestEnterOpensDetailAndEscapeCloses(t *testing.T) {
	m := newSizedModel(t, view("acme", "amzn-de", "primary"))

	m, _ = drive(t, m, key("enter"))
	if m.Frames.Len() != 1 {
		t.Fatalf("Frames = %d after enter, want 1", m.Frames.Len())
	}
	if m.Frames.Top().Class() != "detail" {
		t.Fatalf("Top class = %q, want detail", m.Frames.Top().Class())
	}
	if m.DetailHandle.ID() == 0 {
		t.Error("Detail handle not recorded")
	}

	// With a frame open, table keys must not reach the table
	m, _ = drive(t, m, key("j"))
	if m.Cursor != 0 {
		t.Errorf("Cursor = %d, table moved under an open frame", m.Cursor)
	}

	m, _ = drive(t, m, key("esc"))
	if m.Frames.Len() != 0 {
		t.Errorf("Frames = %d after escape, want 0", m.Frames.Len())
	}
}

func TestDetailDeleteStacksConfirm(t *testing.T) {
	m := newSizedModel(t, view("acme", "amzn-de", "primary"))

	m, _ = drive(t, m, key("enter"))
	m, cmd := drive(t, m, key("d"))
	if cmd == nil {
		t.Fatal("d in the detail card should request a delete")
	}

	m, _ = drive(t, m, cmd())
	if m.Frames.Len() != 2 {
		t.Fatalf("Frames = %d, want confirm stacked over detail", m.Frames.Len())
	}
	if m.Frames.Top().Class() != "confirm" {
		t.Fatalf("Top class = %q, want confirm", m.Frames.Top().Class())
	}

	// Escape only peels the topmost frame
	m, _ = drive(t, m, key("esc"))
	if m.Frames.Len() != 1 || m.Frames.Top().Class() != "detail" {
		t.Errorf("Frames = %d top %q, want the detail card back",
			m.Frames.Len(), m.Frames.Top().Class())
	}
}

func TestConfirmDeleteRemovesRowAndCredential(t *testing.T) {
	database, v, dir := seedCatalog(t)
	m := New(database, v, dir)
	m, _ = drive(t, m, tea.WindowSizeMsg{Width: 80, Height: 16})
	m = refresh(t, m)

	connID := m.Rows[0].ID
	m, _ = drive(t, m, key("enter")) // detail
	m, cmd := drive(t, m, key("d"))
	m, _ = drive(t, m, cmd()) // confirm stacked

	m, cmd = drive(t, m, key("y"))
	if cmd == nil {
		t.Fatal("Confirming should report the delete")
	}
	m, _ = drive(t, m, cmd())

	if m.Frames.Len() != 0 {
		t.Errorf("Frames = %d after delete, want everything closed", m.Frames.Len())
	}
	if !strings.Contains(m.StatusMessage, "deleted") {
		t.Errorf("StatusMessage = %q", m.StatusMessage)
	}
	if _, err := database.GetConnection(connID); err == nil {
		t.Error("Connection still in the catalog")
	}
	if has, _ := database.HasCredential(connID); has {
		t.Error("Credential survived the delete")
	}

	m = refresh(t, m)
	if len(m.Rows) != 0 {
		t.Errorf("Rows = %d after refetch, want 0", len(m.Rows))
	}
}

func TestConfirmKeepLeavesRow(t *testing.T) {
	database, v, dir := seedCatalog(t)
	m := New(database, v, dir)
	m, _ = drive(t, m, tea.WindowSizeMsg{Width: 80, Height: 16})
	m = refresh(t, m)

	m, _ = drive(t, m, key("d")) // confirm straight from the table
	if m.Frames.Len() != 1 || m.Frames.Top().Class() != "confirm" {
		t.Fatalf("Frames = %d, want the confirmation open", m.Frames.Len())
	}

	m, _ = drive(t, m, key("n"))
	if m.Frames.Len() != 0 {
		t.Errorf("Frames = %d after keeping, want 0", m.Frames.Len())
	}
	if _, err := database.GetConnection(m.Rows[0].ID); err != nil {
		t.Errorf("Connection gone after keeping: %v", err)
	}
}

func TestOrgPickedFiltersAndRemembers(t *testing.T) {
	dir := t.TempDir()
	m := New(nil, nil, dir)

	org := models.Organization{ID: "org-1a2b3c", Code: "acme", Name: "Acme Trading"}
	m, cmd := drive(t, m, orgPickedMsg{org: org})

	if m.OrgFilterID != "org-1a2b3c" || m.OrgFilterCode != "acme" {
		t.Errorf("Filter = %q/%q", m.OrgFilterID, m.OrgFilterCode)
	}
	if cmd == nil {
		t.Error("Picking should trigger a refetch")
	}
	if last, _ := config.GetLastOrg(dir); last != "org-1a2b3c" {
		t.Errorf("Remembered org = %q", last)
	}
}

func TestMarketplacePickedFiltersAndRemembers(t *testing.T) {
	dir := t.TempDir()
	m := New(nil, nil, dir)

	mp := models.Marketplace{ID: "mp-9f8e7d", Code: "wb", Name: "Wildberries"}
	m, cmd := drive(t, m, mpPickedMsg{mp: mp})

	if m.MpFilterID != "mp-9f8e7d" || m.MpFilterCode != "wb" {
		t.Errorf("Filter = %q/%q", m.MpFilterID, m.MpFilterCode)
	}
	if cmd == nil {
		t.Error("Picking should trigger a refetch")
	}
	if last, _ := config.GetLastMarketplace(dir); last != "mp-9f8e7d" {
		t.Errorf("Remembered marketplace = %q", last)
	}
}

func TestOrgPickerKeyOpensFrame(t *testing.T) {
	database, v, dir := seedCatalog(t)
	m := New(database, v, dir)
	m, _ = drive(t, m, tea.WindowSizeMsg{Width: 80, Height: 24})

	m, cmd := drive(t, m, key("o"))
	if m.Frames.Len() != 1 || m.Frames.Top().Class() != "picker" {
		t.Fatalf("Frames = %d top %q, want the picker", m.Frames.Len(), m.Frames.Top().Class())
	}
	if cmd == nil {
		t.Error("Opening the picker should start its fetch")
	}
}

func TestClearFiltersKey(t *testing.T) {
	m := newSizedModel(t, view("acme", "amzn-de", "primary"))
	m.OrgFilterID, m.OrgFilterCode = "org-1", "acme"
	m.MpFilterID, m.MpFilterCode = "mp-1", "wb"
	m.SearchQuery = "prim"
	m.applyFilter()

	m, cmd := drive(t, m, key("x"))
	if m.OrgFilterID != "" || m.MpFilterID != "" || m.SearchQuery != "" {
		t.Error("x should clear every filter")
	}
	if cmd == nil {
		t.Error("Clearing should refetch")
	}
}

func TestCheckDoneShowsSummary(t *testing.T) {
	m := newSizedModel(t, view("acme", "amzn-de", "primary"))
	m.Checking = true

	summary := &check.Summary{Checked: 3, Healthy: 2, Broken: 1}
	m, cmd := drive(t, m, checkDoneMsg{summary: summary})

	if m.Checking {
		t.Error("Checking flag still set")
	}
	if !strings.Contains(m.StatusMessage, "2 healthy") || !strings.Contains(m.StatusMessage, "1 broken") {
		t.Errorf("StatusMessage = %q", m.StatusMessage)
	}
	if !m.StatusIsError {
		t.Error("A broken result should color the status as an error")
	}
	if cmd == nil {
		t.Error("Check completion should refetch")
	}
}

func TestConnSavedRefreshes(t *testing.T) {
	m := newSizedModel(t)
	m, cmd := drive(t, m, connSavedMsg{label: "primary"})
	if !strings.Contains(m.StatusMessage, "primary") || m.StatusIsError {
		t.Errorf("StatusMessage = %q, IsError = %v", m.StatusMessage, m.StatusIsError)
	}
	if cmd == nil {
		t.Error("Saving should refetch")
	}
}

func TestViewRendersTable(t *testing.T) {
	m := newSizedModel(t,
		view("acme", "amzn-de", "primary"),
		view("globex", "ebay-us", "backup"),
	)

	out := m.View()
	for _, want := range []string{"mphub", "acme", "amzn-de", "primary", "> ", "2 connections", "j/k:rows"} {
		if !strings.Contains(out, want) {
			t.Errorf("View misses %q", want)
		}
	}
	if lines := strings.Split(out, "\n"); len(lines) != 16 {
		t.Errorf("View has %d lines, want 16", len(lines))
	}
}

func TestViewEmptyCatalog(t *testing.T) {
	m := newSizedModel(t)
	if !strings.Contains(m.View(), "No connections yet") {
		t.Error("Empty catalog message missing")
	}
}

func TestViewFilterChips(t *testing.T) {
	m := newSizedModel(t, view("acme", "amzn-de", "primary"))
	m.OrgFilterCode = "acme"
	m.MpFilterCode = "wb"

	out := m.View()
	if !strings.Contains(out, "org:acme") || !strings.Contains(out, "mp:wb") {
		t.Error("Filter chips missing from the title line")
	}
}

func TestClickSelectsRow(t *testing.T) {
	m := newSizedModel(t,
		view("acme", "amzn-de", "primary"),
		view("globex", "ebay-us", "backup"),
		view("acme", "otto", "outlet"),
	)

	m, _ = drive(t, m, leftClick(4, tableTop+1))
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d after clicking row 1, want 1", m.Cursor)
	}

	// Clicks on the chrome rows change nothing
	m, _ = drive(t, m, leftClick(4, 0))
	if m.Cursor != 1 {
		t.Errorf("Cursor = %d after clicking the title, want 1", m.Cursor)
	}
}

func TestWheelScrollsTable(t *testing.T) {
	var rows []models.ConnectionView
	for i := 0; i < 8; i++ {
		rows = append(rows, view("acme", "amzn-de", string(rune('a'+i))))
	}
	m := New(nil, nil, t.TempDir())
	m, _ = drive(t, m, tea.WindowSizeMsg{Width: 80, Height: 10}, refreshMsg{rows: rows})

	wheel := tea.MouseMsg{Action: tea.MouseActionPress, Button: tea.MouseButtonWheelDown}
	m, _ = drive(t, m, wheel, wheel, wheel)
	if m.Scroll != 2 {
		t.Errorf("Scroll = %d, want clamped at 2", m.Scroll)
	}
}

// errFake lets status line tests hand in an error without fmt.Errorf
// noise at every call site
type errFake string

func (e errFake) Error() string { return string(e) }
