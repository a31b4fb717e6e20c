package hubharness

import (
	"bytes"
	"testing"

	"github.com/ovsov/mphub/internal/models"
)

// TestCatalogVisibleToRawDriver verifies that a catalog written through
// the application store is fully readable through an independent sqlite
// driver, with credentials stored sealed.
func TestCatalogVisibleToRawDriver(t *testing.T) {
	h := NewHarness(t)

	conn := h.Seed("acme", "wb", "primary")
	h.StoreToken(conn.ID, "wb-secret-token")

	h.AssertMirrored()

	// The connection row reads back raw with its catalog fields
	row := h.ReadRow("connections", "id", conn.ID)
	if row == nil {
		t.Fatal("connection row invisible to the raw driver")
	}
	if got := row["label"]; got != "primary" {
		t.Errorf("label = %v", got)
	}
	if got := row["status"]; got != "active" {
		t.Errorf("status = %v", got)
	}

	// The credential is present but sealed
	cred := h.ReadRow("credentials", "connection_id", conn.ID)
	if cred == nil {
		t.Fatal("credential row invisible to the raw driver")
	}
	ciphertext, ok := cred["ciphertext"].([]byte)
	if !ok || len(ciphertext) == 0 {
		t.Fatalf("ciphertext = %T %v", cred["ciphertext"], cred["ciphertext"])
	}
	if bytes.Contains(ciphertext, []byte("wb-secret-token")) {
		t.Error("Stored credential leaks the plaintext token")
	}

	// The vault still opens what the raw driver read
	token, err := h.Vault.Open(ciphertext)
	if err != nil {
		t.Fatalf("open sealed token: %v", err)
	}
	if string(token) != "wb-secret-token" {
		t.Errorf("Token = %q after the roundtrip", token)
	}
}

// TestDeleteRemovesCredentialRowExternally verifies that deleting a
// connection removes its credential row as seen from outside.
func TestDeleteRemovesCredentialRowExternally(t *testing.T) {
	h := NewHarness(t)

	conn := h.Seed("acme", "wb", "primary")
	h.StoreToken(conn.ID, "tok-1")
	before := h.SnapshotCatalog()

	if err := h.App.DeleteConnection(conn.ID); err != nil {
		t.Fatalf("delete connection: %v", err)
	}

	if n := h.CountRows("connections"); n != 0 {
		t.Errorf("connections = %d after delete", n)
	}
	if n := h.CountRows("credentials"); n != 0 {
		t.Errorf("credentials = %d after delete; the row must go with its connection", n)
	}
	if h.SnapshotCatalog() == before {
		t.Error("Catalog snapshot unchanged by the delete")
	}

	h.AssertMirrored()
}

// TestStatusChangeVisibleExternally verifies status updates land in the
// file other tools read.
func TestStatusChangeVisibleExternally(t *testing.T) {
	h := NewHarness(t)

	conn := h.Seed("globex", "ozon", "backup")
	if err := h.App.UpdateConnectionStatus(conn.ID, models.StatusPaused); err != nil {
		t.Fatalf("update status: %v", err)
	}

	row := h.ReadRow("connections", "id", conn.ID)
	if row == nil {
		t.Fatal("connection row missing")
	}
	if got := row["status"]; got != "paused" {
		t.Errorf("status = %v, want paused", got)
	}

	h.AssertMirrored()
}

// TestMigrationsVisibleExternally verifies the migration stamp and the
// migrated columns are in place for external readers.
func TestMigrationsVisibleExternally(t *testing.T) {
	h := NewHarness(t)

	if v := h.UserVersion(); v == 0 {
		t.Error("user_version = 0; migrations not stamped")
	}

	conn := h.Seed("acme", "wb", "primary")
	h.StoreToken(conn.ID, "tok-1")

	mp := h.ReadRow("marketplaces", "code", "wb")
	if mp == nil {
		t.Fatal("marketplace row missing")
	}
	if _, ok := mp["sandbox"]; !ok {
		t.Error("sandbox column missing from the migrated schema")
	}

	cred := h.ReadRow("credentials", "connection_id", conn.ID)
	if cred == nil {
		t.Fatal("credential row missing")
	}
	if _, ok := cred["rotated_at"]; !ok {
		t.Error("rotated_at column missing from the migrated schema")
	}
}
