package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ovsov/mphub/internal/models"
)

func scanMarketplace(row rowScanner) (*models.Marketplace, error) {
	var mp models.Marketplace
	err := row.Scan(&mp.ID, &mp.Code, &mp.Name, &mp.Region, &mp.APIBase, &mp.Sandbox,
		&mp.CreatedAt, &mp.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &mp, nil
}

// CreateMarketplace inserts a new marketplace and assigns its ID
func (db *DB) CreateMarketplace(mp *models.Marketplace) error {
	return db.withWriteLock(func() error {
		if mp.Code == "" {
			return fmt.Errorf("marketplace code is required")
		}
		if mp.Name == "" {
			return fmt.Errorf("marketplace name is required")
		}

		id, err := generateMarketplaceID()
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		mp.ID = id
		mp.CreatedAt = now
		mp.UpdatedAt = now

		_, err = db.conn.Exec(`
			INSERT INTO marketplaces (id, code, name, region, api_base, sandbox, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, mp.ID, mp.Code, mp.Name, mp.Region, mp.APIBase, mp.Sandbox, mp.CreatedAt, mp.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert marketplace: %w", err)
		}
		return nil
	})
}

// GetMarketplace retrieves a marketplace by ID
func (db *DB) GetMarketplace(id string) (*models.Marketplace, error) {
	row := db.conn.QueryRow(`
		SELECT id, code, name, region, api_base, sandbox, created_at, updated_at
		FROM marketplaces WHERE id = ?
	`, id)

	mp, err := scanMarketplace(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("marketplace not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get marketplace: %w", err)
	}
	return mp, nil
}

// GetMarketplaceByCode retrieves a marketplace by its unique code
func (db *DB) GetMarketplaceByCode(code string) (*models.Marketplace, error) {
	row := db.conn.QueryRow(`
		SELECT id, code, name, region, api_base, sandbox, created_at, updated_at
		FROM marketplaces WHERE code = ?
	`, code)

	mp, err := scanMarketplace(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("marketplace not found: %s", code)
	}
	if err != nil {
		return nil, fmt.Errorf("get marketplace: %w", err)
	}
	return mp, nil
}

// ListMarketplaces returns all marketplaces ordered by code
func (db *DB) ListMarketplaces() ([]models.Marketplace, error) {
	rows, err := db.conn.Query(`
		SELECT id, code, name, region, api_base, sandbox, created_at, updated_at
		FROM marketplaces ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("list marketplaces: %w", err)
	}
	defer rows.Close()

	var mps []models.Marketplace
	for rows.Next() {
		mp, err := scanMarketplace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan marketplace: %w", err)
		}
		mps = append(mps, *mp)
	}
	return mps, rows.Err()
}

// UpdateMarketplace updates the mutable fields of a marketplace
func (db *DB) UpdateMarketplace(mp *models.Marketplace) error {
	return db.withWriteLock(func() error {
		mp.UpdatedAt = time.Now().UTC()
		res, err := db.conn.Exec(`
			UPDATE marketplaces SET code = ?, name = ?, region = ?, api_base = ?, sandbox = ?, updated_at = ?
			WHERE id = ?
		`, mp.Code, mp.Name, mp.Region, mp.APIBase, mp.Sandbox, mp.UpdatedAt, mp.ID)
		if err != nil {
			return fmt.Errorf("update marketplace: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return fmt.Errorf("marketplace not found: %s", mp.ID)
		}
		return nil
	})
}

// DeleteMarketplace removes a marketplace. Fails while connections
// still reference it.
func (db *DB) DeleteMarketplace(id string) error {
	return db.withWriteLock(func() error {
		var count int
		err := db.conn.QueryRow(`SELECT COUNT(*) FROM connections WHERE marketplace_id = ?`, id).Scan(&count)
		if err != nil {
			return fmt.Errorf("count connections: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("marketplace has %d connection(s); remove them first", count)
		}

		res, err := db.conn.Exec(`DELETE FROM marketplaces WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete marketplace: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return fmt.Errorf("marketplace not found: %s", id)
		}
		return nil
	})
}
