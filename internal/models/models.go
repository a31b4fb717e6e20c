package models

import (
	"strings"
	"time"
)

// Status represents the lifecycle state of a connection
type Status string

const (
	StatusActive  Status = "active"
	StatusPaused  Status = "paused"
	StatusRevoked Status = "revoked"
	StatusBroken  Status = "broken"
)

// IsValidStatus checks if a status is one of the defined constants
func IsValidStatus(s Status) bool {
	switch s {
	case StatusActive, StatusPaused, StatusRevoked, StatusBroken:
		return true
	}
	return false
}

// NormalizeStatus maps common input forms to a canonical status.
// Invalid inputs are returned lowercased for consistent error messages.
func NormalizeStatus(input string) Status {
	s := strings.ToLower(strings.TrimSpace(input))
	switch s {
	case "active", "enabled", "on", "live":
		return StatusActive
	case "paused", "suspended", "off", "hold":
		return StatusPaused
	case "revoked", "disabled", "removed":
		return StatusRevoked
	case "broken", "failed", "error", "invalid":
		return StatusBroken
	}
	return Status(s)
}

// Organization is a seller account that owns marketplace connections
type Organization struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Marketplace is a trading platform connections can target
type Marketplace struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Region    string    `json:"region"`
	APIBase   string    `json:"api_base,omitempty"`
	Sandbox   bool      `json:"sandbox,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Connection links an organization to a marketplace under one label
type Connection struct {
	ID            string     `json:"id"`
	OrgID         string     `json:"org_id"`
	MarketplaceID string     `json:"marketplace_id"`
	Label         string     `json:"label"`
	Status        Status     `json:"status"`
	LastCheckedAt *time.Time `json:"last_checked_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// Credential holds the sealed API token for a connection.
// Ciphertext is never serialized.
type Credential struct {
	ConnectionID string     `json:"connection_id"`
	Ciphertext   []byte     `json:"-"`
	RotatedAt    *time.Time `json:"rotated_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ConnectionView is a connection joined with its organization and
// marketplace for display
type ConnectionView struct {
	Connection
	OrgCode         string `json:"org_code"`
	OrgName         string `json:"org_name"`
	MarketplaceCode string `json:"marketplace_code"`
	MarketplaceName string `json:"marketplace_name"`
	APIBase         string `json:"api_base"`
	Sandbox         bool   `json:"sandbox"`
	HasCredential   bool   `json:"has_credential"`
}

// Config holds per-directory settings persisted as JSON under .mphub
type Config struct {
	DefaultOrgCode    string `json:"default_org_code,omitempty"`
	LastOrgID         string `json:"last_org_id,omitempty"`
	LastMarketplaceID string `json:"last_marketplace_id,omitempty"`
	CheckTimeoutSecs  int    `json:"check_timeout_secs,omitempty"`
}
