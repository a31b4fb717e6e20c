package db

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

const (
	orgIDPrefix  = "org-"
	mpIDPrefix   = "mp-"
	connIDPrefix = "con-"
)

// NormalizeConnectionID ensures a connection ID has the con- prefix.
// Accepts bare hex IDs like "8f3b2c1a" and returns "con-8f3b2c1a".
func NormalizeConnectionID(id string) string {
	if id == "" {
		return id
	}
	if !strings.HasPrefix(id, connIDPrefix) {
		return connIDPrefix + id
	}
	return id
}

// idGenerator is the function used to generate connection IDs.
// It can be replaced in tests to control ID generation.
var idGenerator = defaultGenerateConnectionID

// defaultGenerateConnectionID generates a unique connection ID using crypto/rand
func defaultGenerateConnectionID() (string, error) {
	bytes := make([]byte, 4) // 8 hex characters
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return connIDPrefix + hex.EncodeToString(bytes), nil
}

// generateConnectionID generates a unique connection ID using the configured generator
func generateConnectionID() (string, error) {
	return idGenerator()
}

// generateOrgID generates a unique organization ID
func generateOrgID() (string, error) {
	bytes := make([]byte, 3) // 6 hex characters
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return orgIDPrefix + hex.EncodeToString(bytes), nil
}

// generateMarketplaceID generates a unique marketplace ID
func generateMarketplaceID() (string, error) {
	bytes := make([]byte, 3) // 6 hex characters
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return mpIDPrefix + hex.EncodeToString(bytes), nil
}
