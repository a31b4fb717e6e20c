package db

import (
	"fmt"
)

// migrations are applied in order on top of the base schema.
// Index i upgrades user_version from i to i+1. Never reorder or remove
// entries; append only.
var migrations = []string{
	// v1: marketplaces gained a sandbox flag for test environments
	`ALTER TABLE marketplaces ADD COLUMN sandbox INTEGER NOT NULL DEFAULT 0`,
	// v2: track when a credential was last rotated, separately from updated_at
	`ALTER TABLE credentials ADD COLUMN rotated_at DATETIME`,
	// v3: label lookups during duplicate checks
	`CREATE INDEX IF NOT EXISTS idx_connections_label ON connections(label)`,
}

// RunMigrations applies any migrations newer than the database's
// user_version and returns how many were applied.
func (db *DB) RunMigrations() (int, error) {
	version, err := db.userVersion()
	if err != nil {
		return 0, err
	}
	if version >= len(migrations) {
		return 0, nil
	}

	applied := 0
	err = db.withWriteLock(func() error {
		// Re-read under the lock; another process may have migrated first
		version, err := db.userVersion()
		if err != nil {
			return err
		}
		for v := version; v < len(migrations); v++ {
			if _, err := db.conn.Exec(migrations[v]); err != nil {
				return fmt.Errorf("apply migration %d: %w", v+1, err)
			}
			if _, err := db.conn.Exec(fmt.Sprintf("PRAGMA user_version = %d", v+1)); err != nil {
				return fmt.Errorf("record migration %d: %w", v+1, err)
			}
			applied++
		}
		return nil
	})
	return applied, err
}

func (db *DB) userVersion() (int, error) {
	var version int
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return version, nil
}
