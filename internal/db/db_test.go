package db

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ovsov/mphub/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Initialize(dir)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedOrgAndMarketplace(t *testing.T, db *DB) (models.Organization, models.Marketplace) {
	t.Helper()
	org := models.Organization{Code: "acme", Name: "Acme Trading"}
	if err := db.CreateOrganization(&org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	mp := models.Marketplace{Code: "wb", Name: "Wildberries", Region: "RU"}
	if err := db.CreateMarketplace(&mp); err != nil {
		t.Fatalf("CreateMarketplace failed: %v", err)
	}
	return org, mp
}

func TestInitialize(t *testing.T) {
	dir := t.TempDir()

	db, err := Initialize(dir)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	defer db.Close()

	// Check database file exists
	dbPath := filepath.Join(dir, ".mphub", "hub.db")
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file not created")
	}
}

func TestOpenMissingDatabase(t *testing.T) {
	dir := t.TempDir()

	if _, err := Open(dir); err == nil {
		t.Error("Open should fail when the database does not exist")
	}
}

func TestMigrationsRunOnce(t *testing.T) {
	dir := t.TempDir()

	db, err := Initialize(dir)
	if err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	version, err := db.userVersion()
	if err != nil {
		t.Fatalf("userVersion failed: %v", err)
	}
	if version != len(migrations) {
		t.Errorf("user_version = %d, want %d", version, len(migrations))
	}
	db.Close()

	// Reopen and check nothing re-applies
	db2, err := Open(dir)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db2.Close()

	applied, err := db2.RunMigrations()
	if err != nil {
		t.Fatalf("RunMigrations failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("Expected 0 migrations on reopen, got %d", applied)
	}
}

func TestCreateAndGetOrganization(t *testing.T) {
	db := newTestDB(t)

	org := models.Organization{
		Code:  "acme",
		Name:  "Acme Trading",
		Notes: "primary seller account",
	}
	if err := db.CreateOrganization(&org); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}
	if org.ID == "" {
		t.Error("Organization ID not set")
	}

	retrieved, err := db.GetOrganization(org.ID)
	if err != nil {
		t.Fatalf("GetOrganization failed: %v", err)
	}
	if retrieved.Code != org.Code {
		t.Errorf("Code mismatch: got %s, want %s", retrieved.Code, org.Code)
	}
	if retrieved.Name != org.Name {
		t.Errorf("Name mismatch: got %s, want %s", retrieved.Name, org.Name)
	}

	byCode, err := db.GetOrganizationByCode("acme")
	if err != nil {
		t.Fatalf("GetOrganizationByCode failed: %v", err)
	}
	if byCode.ID != org.ID {
		t.Errorf("ByCode ID mismatch: got %s, want %s", byCode.ID, org.ID)
	}
}

func TestCreateOrganizationRequiresCodeAndName(t *testing.T) {
	db := newTestDB(t)

	if err := db.CreateOrganization(&models.Organization{Name: "No Code"}); err == nil {
		t.Error("Expected error for missing code")
	}
	if err := db.CreateOrganization(&models.Organization{Code: "nc"}); err == nil {
		t.Error("Expected error for missing name")
	}
}

func TestCreateOrganizationDuplicateCode(t *testing.T) {
	db := newTestDB(t)

	first := models.Organization{Code: "acme", Name: "Acme"}
	if err := db.CreateOrganization(&first); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}

	second := models.Organization{Code: "acme", Name: "Other Acme"}
	if err := db.CreateOrganization(&second); err == nil {
		t.Error("Expected unique code violation")
	}
}

func TestListOrganizationsOrderedByCode(t *testing.T) {
	db := newTestDB(t)

	for _, code := range []string{"zeta", "acme", "mint"} {
		org := models.Organization{Code: code, Name: code}
		if err := db.CreateOrganization(&org); err != nil {
			t.Fatalf("CreateOrganization failed: %v", err)
		}
	}

	orgs, err := db.ListOrganizations()
	if err != nil {
		t.Fatalf("ListOrganizations failed: %v", err)
	}
	if len(orgs) != 3 {
		t.Fatalf("Expected 3 organizations, got %d", len(orgs))
	}
	want := []string{"acme", "mint", "zeta"}
	for i, w := range want {
		if orgs[i].Code != w {
			t.Errorf("orgs[%d].Code = %s, want %s", i, orgs[i].Code, w)
		}
	}
}

func TestMarketplaceSandboxRoundTrip(t *testing.T) {
	db := newTestDB(t)

	mp := models.Marketplace{Code: "ozon-test", Name: "Ozon Sandbox", Region: "RU", Sandbox: true}
	if err := db.CreateMarketplace(&mp); err != nil {
		t.Fatalf("CreateMarketplace failed: %v", err)
	}

	retrieved, err := db.GetMarketplaceByCode("ozon-test")
	if err != nil {
		t.Fatalf("GetMarketplaceByCode failed: %v", err)
	}
	if !retrieved.Sandbox {
		t.Error("Sandbox flag not persisted")
	}
}

func TestCreateConnection(t *testing.T) {
	db := newTestDB(t)
	org, mp := seedOrgAndMarketplace(t, db)

	conn := models.Connection{OrgID: org.ID, MarketplaceID: mp.ID, Label: "main"}
	if err := db.CreateConnection(&conn); err != nil {
		t.Fatalf("CreateConnection failed: %v", err)
	}
	if conn.ID == "" {
		t.Error("Connection ID not set")
	}
	if conn.Status != models.StatusActive {
		t.Errorf("Default status = %s, want %s", conn.Status, models.StatusActive)
	}

	retrieved, err := db.GetConnection(conn.ID)
	if err != nil {
		t.Fatalf("GetConnection failed: %v", err)
	}
	if retrieved.Label != "main" {
		t.Errorf("Label mismatch: got %s, want main", retrieved.Label)
	}
	if retrieved.LastCheckedAt != nil {
		t.Error("LastCheckedAt should be nil for a fresh connection")
	}
}

func TestCreateConnectionValidation(t *testing.T) {
	db := newTestDB(t)
	org, mp := seedOrgAndMarketplace(t, db)

	// Unknown org
	bad := models.Connection{OrgID: "org-nope", MarketplaceID: mp.ID}
	if err := db.CreateConnection(&bad); err == nil {
		t.Error("Expected error for unknown organization")
	}

	// Unknown marketplace
	bad = models.Connection{OrgID: org.ID, MarketplaceID: "mp-nope"}
	if err := db.CreateConnection(&bad); err == nil {
		t.Error("Expected error for unknown marketplace")
	}

	// Invalid status
	bad = models.Connection{OrgID: org.ID, MarketplaceID: mp.ID, Status: "weird"}
	if err := db.CreateConnection(&bad); err == nil {
		t.Error("Expected error for invalid status")
	}

	// Duplicate org+marketplace+label
	first := models.Connection{OrgID: org.ID, MarketplaceID: mp.ID, Label: "main"}
	if err := db.CreateConnection(&first); err != nil {
		t.Fatalf("CreateConnection failed: %v", err)
	}
	dup := models.Connection{OrgID: org.ID, MarketplaceID: mp.ID, Label: "main"}
	if err := db.CreateConnection(&dup); err == nil {
		t.Error("Expected duplicate connection error")
	}
}

func TestListConnectionsFilters(t *testing.T) {
	db := newTestDB(t)
	org, mp := seedOrgAndMarketplace(t, db)

	other := models.Organization{Code: "umbrella", Name: "Umbrella"}
	if err := db.CreateOrganization(&other); err != nil {
		t.Fatalf("CreateOrganization failed: %v", err)
	}

	conns := []struct {
		orgID  string
		label  string
		status models.Status
	}{
		{org.ID, "main", models.StatusActive},
		{org.ID, "backup", models.StatusPaused},
		{other.ID, "main", models.StatusActive},
		{other.ID, "old", models.StatusRevoked},
	}
	for _, tc := range conns {
		conn := models.Connection{OrgID: tc.orgID, MarketplaceID: mp.ID, Label: tc.label, Status: tc.status}
		if err := db.CreateConnection(&conn); err != nil {
			t.Fatalf("CreateConnection failed: %v", err)
		}
	}

	all, err := db.ListConnections(ListConnectionsOptions{})
	if err != nil {
		t.Fatalf("ListConnections failed: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("Expected 4 connections, got %d", len(all))
	}

	byOrg, err := db.ListConnections(ListConnectionsOptions{OrgID: org.ID})
	if err != nil {
		t.Fatalf("ListConnections by org failed: %v", err)
	}
	if len(byOrg) != 2 {
		t.Errorf("Expected 2 connections for org, got %d", len(byOrg))
	}

	active, err := db.ListConnections(ListConnectionsOptions{
		Status: []models.Status{models.StatusActive},
	})
	if err != nil {
		t.Fatalf("ListConnections by status failed: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("Expected 2 active connections, got %d", len(active))
	}

	combined, err := db.ListConnections(ListConnectionsOptions{
		OrgID:  other.ID,
		Status: []models.Status{models.StatusActive, models.StatusRevoked},
	})
	if err != nil {
		t.Fatalf("ListConnections combined failed: %v", err)
	}
	if len(combined) != 2 {
		t.Errorf("Expected 2 connections for combined filter, got %d", len(combined))
	}
}

func TestConnectionViews(t *testing.T) {
	db := newTestDB(t)
	org, mp := seedOrgAndMarketplace(t, db)

	conn := models.Connection{OrgID: org.ID, MarketplaceID: mp.ID, Label: "main"}
	if err := db.CreateConnection(&conn); err != nil {
		t.Fatalf("CreateConnection failed: %v", err)
	}

	views, err := db.ListConnectionViews(ListConnectionsOptions{})
	if err != nil {
		t.Fatalf("ListConnectionViews failed: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("Expected 1 view, got %d", len(views))
	}
	v := views[0]
	if v.OrgCode != "acme" || v.MarketplaceCode != "wb" {
		t.Errorf("Join codes wrong: org=%s mp=%s", v.OrgCode, v.MarketplaceCode)
	}
	if v.HasCredential {
		t.Error("HasCredential should be false before PutCredential")
	}

	if err := db.PutCredential(conn.ID, []byte("sealed-token")); err != nil {
		t.Fatalf("PutCredential failed: %v", err)
	}

	views, err = db.ListConnectionViews(ListConnectionsOptions{})
	if err != nil {
		t.Fatalf("ListConnectionViews failed: %v", err)
	}
	if !views[0].HasCredential {
		t.Error("HasCredential should be true after PutCredential")
	}
}

func TestUpdateConnectionStatus(t *testing.T) {
	db := newTestDB(t)
	org, mp := seedOrgAndMarketplace(t, db)

	conn := models.Connection{OrgID: org.ID, MarketplaceID: mp.ID}
	if err := db.CreateConnection(&conn); err != nil {
		t.Fatalf("CreateConnection failed: %v", err)
	}

	if err := db.UpdateConnectionStatus(conn.ID, models.StatusPaused); err != nil {
		t.Fatalf("UpdateConnectionStatus failed: %v", err)
	}
	retrieved, _ := db.GetConnection(conn.ID)
	if retrieved.Status != models.StatusPaused {
		t.Errorf("Status = %s, want paused", retrieved.Status)
	}

	if err := db.UpdateConnectionStatus(conn.ID, "nonsense"); err == nil {
		t.Error("Expected error for invalid status")
	}
	if err := db.UpdateConnectionStatus("con-missing", models.StatusActive); err == nil {
		t.Error("Expected error for missing connection")
	}
}

func TestTouchConnectionChecked(t *testing.T) {
	db := newTestDB(t)
	org, mp := seedOrgAndMarketplace(t, db)

	conn := models.Connection{OrgID: org.ID, MarketplaceID: mp.ID}
	if err := db.CreateConnection(&conn); err != nil {
		t.Fatalf("CreateConnection failed: %v", err)
	}

	checkedAt := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	if err := db.TouchConnectionChecked(conn.ID, models.StatusBroken, checkedAt); err != nil {
		t.Fatalf("TouchConnectionChecked failed: %v", err)
	}

	retrieved, _ := db.GetConnection(conn.ID)
	if retrieved.Status != models.StatusBroken {
		t.Errorf("Status = %s, want broken", retrieved.Status)
	}
	if retrieved.LastCheckedAt == nil {
		t.Fatal("LastCheckedAt not set")
	}
	if !retrieved.LastCheckedAt.Equal(checkedAt) {
		t.Errorf("LastCheckedAt = %v, want %v", retrieved.LastCheckedAt, checkedAt)
	}
}

func TestCredentialRoundTrip(t *testing.T) {
	db := newTestDB(t)
	org, mp := seedOrgAndMarketplace(t, db)

	conn := models.Connection{OrgID: org.ID, MarketplaceID: mp.ID}
	if err := db.CreateConnection(&conn); err != nil {
		t.Fatalf("CreateConnection failed: %v", err)
	}

	// No credential yet
	if _, err := db.GetCredential(conn.ID); err == nil {
		t.Error("Expected error for missing credential")
	}
	has, err := db.HasCredential(conn.ID)
	if err != nil {
		t.Fatalf("HasCredential failed: %v", err)
	}
	if has {
		t.Error("HasCredential should be false")
	}

	sealed := []byte{0x01, 0x02, 0x03, 0xff}
	if err := db.PutCredential(conn.ID, sealed); err != nil {
		t.Fatalf("PutCredential failed: %v", err)
	}

	cred, err := db.GetCredential(conn.ID)
	if err != nil {
		t.Fatalf("GetCredential failed: %v", err)
	}
	if !bytes.Equal(cred.Ciphertext, sealed) {
		t.Error("Ciphertext mismatch after round trip")
	}
	if cred.RotatedAt != nil {
		t.Error("RotatedAt should be nil for first credential")
	}

	// Rotation
	if err := db.PutCredential(conn.ID, []byte("new-sealed")); err != nil {
		t.Fatalf("PutCredential rotation failed: %v", err)
	}
	cred, err = db.GetCredential(conn.ID)
	if err != nil {
		t.Fatalf("GetCredential failed: %v", err)
	}
	if cred.RotatedAt == nil {
		t.Error("RotatedAt should be set after rotation")
	}
	if string(cred.Ciphertext) != "new-sealed" {
		t.Error("Ciphertext not replaced on rotation")
	}
}

func TestPutCredentialUnknownConnection(t *testing.T) {
	db := newTestDB(t)

	if err := db.PutCredential("con-ghost", []byte("x")); err == nil {
		t.Error("Expected error for unknown connection")
	}
}

func TestDeleteCredentialIdempotent(t *testing.T) {
	db := newTestDB(t)

	// Deleting a credential that never existed is a no-op
	if err := db.DeleteCredential("con-ghost"); err != nil {
		t.Errorf("DeleteCredential should not fail for missing row: %v", err)
	}
}

func TestDeleteConnectionRemovesCredential(t *testing.T) {
	db := newTestDB(t)
	org, mp := seedOrgAndMarketplace(t, db)

	conn := models.Connection{OrgID: org.ID, MarketplaceID: mp.ID}
	if err := db.CreateConnection(&conn); err != nil {
		t.Fatalf("CreateConnection failed: %v", err)
	}
	if err := db.PutCredential(conn.ID, []byte("sealed")); err != nil {
		t.Fatalf("PutCredential failed: %v", err)
	}

	if err := db.DeleteConnection(conn.ID); err != nil {
		t.Fatalf("DeleteConnection failed: %v", err)
	}

	if _, err := db.GetConnection(conn.ID); err == nil {
		t.Error("Connection should be gone")
	}
	has, _ := db.HasCredential(conn.ID)
	if has {
		t.Error("Credential should be gone with its connection")
	}
}

func TestDeleteOrganizationGuard(t *testing.T) {
	db := newTestDB(t)
	org, mp := seedOrgAndMarketplace(t, db)

	conn := models.Connection{OrgID: org.ID, MarketplaceID: mp.ID}
	if err := db.CreateConnection(&conn); err != nil {
		t.Fatalf("CreateConnection failed: %v", err)
	}

	if err := db.DeleteOrganization(org.ID); err == nil {
		t.Error("Expected error deleting organization with connections")
	}

	if err := db.DeleteConnection(conn.ID); err != nil {
		t.Fatalf("DeleteConnection failed: %v", err)
	}
	if err := db.DeleteOrganization(org.ID); err != nil {
		t.Errorf("DeleteOrganization failed after removing connections: %v", err)
	}
}

func TestNormalizeConnectionID(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", ""},
		{"8f3b2c1a", "con-8f3b2c1a"},
		{"con-8f3b2c1a", "con-8f3b2c1a"},
	}
	for _, tc := range tests {
		if got := NormalizeConnectionID(tc.input); got != tc.expected {
			t.Errorf("NormalizeConnectionID(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}
