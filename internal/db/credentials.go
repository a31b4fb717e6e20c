package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ovsov/mphub/internal/models"
)

// PutCredential stores the sealed token for a connection, replacing any
// previous one. Rotation time is recorded when a credential already
// existed.
func (db *DB) PutCredential(connectionID string, ciphertext []byte) error {
	return db.withWriteLock(func() error {
		connectionID = NormalizeConnectionID(connectionID)
		if _, err := db.GetConnection(connectionID); err != nil {
			return err
		}
		if len(ciphertext) == 0 {
			return fmt.Errorf("credential ciphertext is empty")
		}

		var existing int
		if err := db.conn.QueryRow(`SELECT COUNT(*) FROM credentials WHERE connection_id = ?`, connectionID).Scan(&existing); err != nil {
			return fmt.Errorf("check credential: %w", err)
		}

		now := time.Now().UTC()
		if existing > 0 {
			_, err := db.conn.Exec(`
				UPDATE credentials SET ciphertext = ?, rotated_at = ?, updated_at = ?
				WHERE connection_id = ?
			`, ciphertext, now, now, connectionID)
			if err != nil {
				return fmt.Errorf("rotate credential: %w", err)
			}
			return nil
		}

		_, err := db.conn.Exec(`
			INSERT INTO credentials (connection_id, ciphertext, updated_at)
			VALUES (?, ?, ?)
		`, connectionID, ciphertext, now)
		if err != nil {
			return fmt.Errorf("insert credential: %w", err)
		}
		return nil
	})
}

// GetCredential retrieves the sealed token for a connection
func (db *DB) GetCredential(connectionID string) (*models.Credential, error) {
	row := db.conn.QueryRow(`
		SELECT connection_id, ciphertext, rotated_at, updated_at
		FROM credentials WHERE connection_id = ?
	`, NormalizeConnectionID(connectionID))

	var cred models.Credential
	var rotated sql.NullTime
	err := row.Scan(&cred.ConnectionID, &cred.Ciphertext, &rotated, &cred.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no credential for connection: %s", connectionID)
	}
	if err != nil {
		return nil, fmt.Errorf("get credential: %w", err)
	}
	if rotated.Valid {
		t := rotated.Time
		cred.RotatedAt = &t
	}
	return &cred, nil
}

// HasCredential reports whether a connection has a stored credential
func (db *DB) HasCredential(connectionID string) (bool, error) {
	var count int
	err := db.conn.QueryRow(`SELECT COUNT(*) FROM credentials WHERE connection_id = ?`,
		NormalizeConnectionID(connectionID)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check credential: %w", err)
	}
	return count > 0, nil
}

// DeleteCredential removes the stored token for a connection. Deleting
// a credential that does not exist is not an error.
func (db *DB) DeleteCredential(connectionID string) error {
	return db.withWriteLock(func() error {
		_, err := db.conn.Exec(`DELETE FROM credentials WHERE connection_id = ?`,
			NormalizeConnectionID(connectionID))
		if err != nil {
			return fmt.Errorf("delete credential: %w", err)
		}
		return nil
	})
}
