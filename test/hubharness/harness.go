// Package hubharness verifies the on-disk catalog through an
// independent sqlite driver. The application writes through internal/db
// (modernc); the harness reads the same file raw through mattn, the way
// external tooling such as the sqlite3 shell would, and asserts both
// sides agree.
package hubharness

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ovsov/mphub/internal/db"
	"github.com/ovsov/mphub/internal/models"
	"github.com/ovsov/mphub/internal/vault"
)

// catalogTables lists the tables holding catalog data.
var catalogTables = []string{"organizations", "marketplaces", "connections", "credentials"}

// Harness pairs an application database handle with a raw handle on the
// same file.
type Harness struct {
	t     *testing.T
	Dir   string
	App   *db.DB
	Raw   *sql.DB
	Vault *vault.Vault
}

// NewHarness initializes a catalog in a temp directory and opens both
// handles on it.
func NewHarness(t *testing.T) *Harness {
	t.Helper()

	dir := t.TempDir()

	app, err := db.Initialize(dir)
	if err != nil {
		t.Fatalf("initialize catalog: %v", err)
	}
	t.Cleanup(func() { app.Close() })

	v, err := vault.Load(dir)
	if err != nil {
		t.Fatalf("load vault: %v", err)
	}

	raw, err := sql.Open("sqlite3", filepath.Join(dir, ".mphub", "hub.db")+"?_busy_timeout=500")
	if err != nil {
		t.Fatalf("open raw db: %v", err)
	}
	t.Cleanup(func() { raw.Close() })

	return &Harness{t: t, Dir: dir, App: app, Raw: raw, Vault: v}
}

// Seed creates one organization, one marketplace and one connection,
// returning the connection with its ID assigned.
func (h *Harness) Seed(orgCode, mpCode, label string) models.Connection {
	h.t.Helper()

	org := models.Organization{Code: orgCode, Name: strings.ToUpper(orgCode) + " Org"}
	if err := h.App.CreateOrganization(&org); err != nil {
		h.t.Fatalf("create organization: %v", err)
	}
	mp := models.Marketplace{Code: mpCode, Name: strings.ToUpper(mpCode) + " Marketplace"}
	if err := h.App.CreateMarketplace(&mp); err != nil {
		h.t.Fatalf("create marketplace: %v", err)
	}
	conn := models.Connection{OrgID: org.ID, MarketplaceID: mp.ID, Label: label}
	if err := h.App.CreateConnection(&conn); err != nil {
		h.t.Fatalf("create connection: %v", err)
	}
	return conn
}

// StoreToken seals a token and stores it for the connection.
func (h *Harness) StoreToken(connectionID, token string) {
	h.t.Helper()

	box, err := h.Vault.Seal([]byte(token))
	if err != nil {
		h.t.Fatalf("seal token: %v", err)
	}
	if err := h.App.PutCredential(connectionID, box); err != nil {
		h.t.Fatalf("store credential: %v", err)
	}
}

// CountRows counts a table's rows through the raw driver.
func (h *Harness) CountRows(table string) int {
	h.t.Helper()

	var count int
	if err := h.Raw.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
		h.t.Fatalf("count %s: %v", table, err)
	}
	return count
}

// ReadRow reads one row by its key column through the raw driver,
// returning nil when absent. TEXT values come back as strings; BLOB
// columns stay raw bytes.
func (h *Harness) ReadRow(table, keyCol, key string) map[string]any {
	h.t.Helper()

	rows, err := h.Raw.Query(fmt.Sprintf("SELECT * FROM %s WHERE %s = ?", table, keyCol), key)
	if err != nil {
		h.t.Fatalf("read %s: %v", table, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil
	}

	cols, err := rows.Columns()
	if err != nil {
		h.t.Fatalf("columns %s: %v", table, err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		h.t.Fatalf("column types %s: %v", table, err)
	}

	vals := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		h.t.Fatalf("scan %s: %v", table, err)
	}

	result := make(map[string]any, len(cols))
	for i, col := range cols {
		result[col] = normalizeValue(vals[i], types[i].DatabaseTypeName())
	}
	return result
}

// normalizeValue converts the driver's []byte representation of TEXT
// back into a string. Raw sqlite hands text out as bytes; declared
// BLOBs keep theirs.
func normalizeValue(v any, declType string) any {
	b, ok := v.([]byte)
	if !ok || strings.EqualFold(declType, "BLOB") {
		return v
	}
	return string(b)
}

// UserVersion reads the migration stamp through the raw driver.
func (h *Harness) UserVersion() int {
	h.t.Helper()

	var version int
	if err := h.Raw.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		h.t.Fatalf("read user_version: %v", err)
	}
	return version
}

// AssertMirrored verifies the application's connection listing matches
// an independent join computed through the raw driver.
func (h *Harness) AssertMirrored() {
	h.t.Helper()

	views, err := h.App.ListConnectionViews(db.ListConnectionsOptions{})
	if err != nil {
		h.t.Fatalf("list connection views: %v", err)
	}

	appSide := make([]string, 0, len(views))
	for _, v := range views {
		cred := 0
		if v.HasCredential {
			cred = 1
		}
		appSide = append(appSide, fmt.Sprintf("%s|%s|%s|%s|%d",
			v.OrgCode, v.MarketplaceCode, v.Label, v.Status, cred))
	}
	sort.Strings(appSide)

	rawSide := h.rawConnectionSummary()

	if len(appSide) != len(rawSide) {
		h.t.Fatalf("DIVERGENCE: app sees %d connections, raw driver sees %d\napp:\n%s\nraw:\n%s",
			len(appSide), len(rawSide),
			strings.Join(appSide, "\n"), strings.Join(rawSide, "\n"))
	}
	for i := range appSide {
		if appSide[i] != rawSide[i] {
			h.t.Fatalf("DIVERGENCE at row %d:\napp: %s\nraw: %s", i, appSide[i], rawSide[i])
		}
	}
}

// rawConnectionSummary joins the catalog through the raw driver into
// the same shape AssertMirrored builds from the application side.
func (h *Harness) rawConnectionSummary() []string {
	h.t.Helper()

	rows, err := h.Raw.Query(`
		SELECT o.code, m.code, c.label, c.status,
		       EXISTS (SELECT 1 FROM credentials cr WHERE cr.connection_id = c.id)
		FROM connections c
		JOIN organizations o ON o.id = c.org_id
		JOIN marketplaces m ON m.id = c.marketplace_id
	`)
	if err != nil {
		h.t.Fatalf("raw join: %v", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var orgCode, mpCode, label, status string
		var cred int
		if err := rows.Scan(&orgCode, &mpCode, &label, &status, &cred); err != nil {
			h.t.Fatalf("scan raw join: %v", err)
		}
		out = append(out, fmt.Sprintf("%s|%s|%s|%s|%d", orgCode, mpCode, label, status, cred))
	}
	sort.Strings(out)
	return out
}

// SnapshotCatalog dumps every catalog table, for diffing a catalog
// state before and after an operation.
func (h *Harness) SnapshotCatalog() string {
	var sb strings.Builder
	for _, table := range catalogTables {
		sb.WriteString(fmt.Sprintf("=== %s ===\n", table))
		sb.WriteString(h.DumpTable(table))
	}
	return sb.String()
}

// timestampCols are excluded from dumps; both drivers format stored
// DATETIME values differently.
var timestampCols = map[string]bool{
	"created_at": true, "updated_at": true,
	"last_checked_at": true, "rotated_at": true,
}

// DumpTable returns a deterministic representation of a table as the
// raw driver sees it.
func (h *Harness) DumpTable(table string) string {
	rows, err := h.Raw.Query(fmt.Sprintf("SELECT * FROM %s ORDER BY 1", table))
	if err != nil {
		return fmt.Sprintf("ERROR: %v", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return fmt.Sprintf("ERROR: %v", err)
	}
	types, err := rows.ColumnTypes()
	if err != nil {
		return fmt.Sprintf("ERROR: %v", err)
	}

	var sb strings.Builder
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			sb.WriteString(fmt.Sprintf("SCAN ERROR: %v\n", err))
			continue
		}

		var parts []string
		for i, col := range cols {
			if timestampCols[col] {
				continue
			}
			parts = append(parts, fmt.Sprintf("%s=%v", col, normalizeValue(vals[i], types[i].DatabaseTypeName())))
		}
		sb.WriteString(strings.Join(parts, " | "))
		sb.WriteString("\n")
	}
	return sb.String()
}
