package models

import (
	"encoding/json"
	"strings"
	"testing"
)

// TestIsValidStatusValid tests all valid statuses
func TestIsValidStatusValid(t *testing.T) {
	validStatuses := []Status{
		StatusActive,
		StatusPaused,
		StatusRevoked,
		StatusBroken,
	}

	for _, s := range validStatuses {
		if !IsValidStatus(s) {
			t.Errorf("Expected %q to be valid status", s)
		}
	}
}

// TestIsValidStatusInvalid tests invalid statuses
func TestIsValidStatusInvalid(t *testing.T) {
	invalidStatuses := []Status{"pending", "open", "closed", "archived", ""}
	for _, s := range invalidStatuses {
		if IsValidStatus(s) {
			t.Errorf("Expected %q to be invalid status", s)
		}
	}
}

// TestIsValidStatusConstants tests status constant values
func TestIsValidStatusConstants(t *testing.T) {
	if StatusActive != "active" {
		t.Errorf("StatusActive should be 'active', got %q", StatusActive)
	}
	if StatusPaused != "paused" {
		t.Errorf("StatusPaused should be 'paused', got %q", StatusPaused)
	}
	if StatusRevoked != "revoked" {
		t.Errorf("StatusRevoked should be 'revoked', got %q", StatusRevoked)
	}
	if StatusBroken != "broken" {
		t.Errorf("StatusBroken should be 'broken', got %q", StatusBroken)
	}
}

// TestNormalizeStatus tests status normalization including word forms
func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		input    string
		expected Status
	}{
		// Canonical forms
		{"active", StatusActive},
		{"paused", StatusPaused},
		{"revoked", StatusRevoked},
		{"broken", StatusBroken},
		// Mixed case
		{"Active", StatusActive},
		{"PAUSED", StatusPaused},
		{"Revoked", StatusRevoked},
		// Word forms
		{"enabled", StatusActive},
		{"on", StatusActive},
		{"live", StatusActive},
		{"suspended", StatusPaused},
		{"off", StatusPaused},
		{"hold", StatusPaused},
		{"disabled", StatusRevoked},
		{"removed", StatusRevoked},
		{"failed", StatusBroken},
		{"error", StatusBroken},
		{"invalid", StatusBroken},
		// Whitespace
		{"  active  ", StatusActive},
	}

	for _, tc := range tests {
		got := NormalizeStatus(tc.input)
		if got != tc.expected {
			t.Errorf("NormalizeStatus(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

// TestNormalizeStatusInvalid tests that unknown inputs stay invalid
func TestNormalizeStatusInvalid(t *testing.T) {
	unknown := []string{"open", "closed", "stuck", "who knows"}
	for _, input := range unknown {
		got := NormalizeStatus(input)
		if IsValidStatus(got) {
			t.Errorf("NormalizeStatus(%q) = %q, should be invalid", input, got)
		}
	}
}

// TestOrganizationDefaultValues tests Organization struct default values
func TestOrganizationDefaultValues(t *testing.T) {
	org := Organization{}

	if org.ID != "" {
		t.Error("ID should be empty by default")
	}
	if org.Code != "" {
		t.Error("Code should be empty by default")
	}
	if org.Name != "" {
		t.Error("Name should be empty by default")
	}
	if !org.CreatedAt.IsZero() {
		t.Error("CreatedAt should be zero by default")
	}
}

// TestConnectionDefaultValues tests Connection struct default values
func TestConnectionDefaultValues(t *testing.T) {
	conn := Connection{}

	if conn.ID != "" {
		t.Error("ID should be empty by default")
	}
	if conn.OrgID != "" {
		t.Error("OrgID should be empty by default")
	}
	if conn.MarketplaceID != "" {
		t.Error("MarketplaceID should be empty by default")
	}
	if conn.Status != "" {
		t.Error("Status should be empty by default")
	}
	if conn.LastCheckedAt != nil {
		t.Error("LastCheckedAt should be nil by default")
	}
}

// TestCredentialNeverSerializesCiphertext tests the json tag on Ciphertext
func TestCredentialNeverSerializesCiphertext(t *testing.T) {
	cred := Credential{ConnectionID: "con-abc", Ciphertext: []byte("sealed")}
	data, err := json.Marshal(cred)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if strings.Contains(string(data), "sealed") {
		t.Errorf("Ciphertext leaked into JSON: %s", data)
	}
	if !strings.Contains(string(data), "con-abc") {
		t.Errorf("ConnectionID missing from JSON: %s", data)
	}
}
