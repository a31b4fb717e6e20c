package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ovsov/mphub/internal/models"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrganization(row rowScanner) (*models.Organization, error) {
	var org models.Organization
	err := row.Scan(&org.ID, &org.Code, &org.Name, &org.Notes, &org.CreatedAt, &org.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// CreateOrganization inserts a new organization and assigns its ID
func (db *DB) CreateOrganization(org *models.Organization) error {
	return db.withWriteLock(func() error {
		if org.Code == "" {
			return fmt.Errorf("organization code is required")
		}
		if org.Name == "" {
			return fmt.Errorf("organization name is required")
		}

		id, err := generateOrgID()
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		org.ID = id
		org.CreatedAt = now
		org.UpdatedAt = now

		_, err = db.conn.Exec(`
			INSERT INTO organizations (id, code, name, notes, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, org.ID, org.Code, org.Name, org.Notes, org.CreatedAt, org.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert organization: %w", err)
		}
		return nil
	})
}

// GetOrganization retrieves an organization by ID
func (db *DB) GetOrganization(id string) (*models.Organization, error) {
	row := db.conn.QueryRow(`
		SELECT id, code, name, notes, created_at, updated_at
		FROM organizations WHERE id = ?
	`, id)

	org, err := scanOrganization(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("organization not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return org, nil
}

// GetOrganizationByCode retrieves an organization by its unique code
func (db *DB) GetOrganizationByCode(code string) (*models.Organization, error) {
	row := db.conn.QueryRow(`
		SELECT id, code, name, notes, created_at, updated_at
		FROM organizations WHERE code = ?
	`, code)

	org, err := scanOrganization(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("organization not found: %s", code)
	}
	if err != nil {
		return nil, fmt.Errorf("get organization: %w", err)
	}
	return org, nil
}

// ListOrganizations returns all organizations ordered by code
func (db *DB) ListOrganizations() ([]models.Organization, error) {
	rows, err := db.conn.Query(`
		SELECT id, code, name, notes, created_at, updated_at
		FROM organizations ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("list organizations: %w", err)
	}
	defer rows.Close()

	var orgs []models.Organization
	for rows.Next() {
		org, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("scan organization: %w", err)
		}
		orgs = append(orgs, *org)
	}
	return orgs, rows.Err()
}

// UpdateOrganization updates the mutable fields of an organization
func (db *DB) UpdateOrganization(org *models.Organization) error {
	return db.withWriteLock(func() error {
		org.UpdatedAt = time.Now().UTC()
		res, err := db.conn.Exec(`
			UPDATE organizations SET code = ?, name = ?, notes = ?, updated_at = ?
			WHERE id = ?
		`, org.Code, org.Name, org.Notes, org.UpdatedAt, org.ID)
		if err != nil {
			return fmt.Errorf("update organization: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return fmt.Errorf("organization not found: %s", org.ID)
		}
		return nil
	})
}

// DeleteOrganization removes an organization. Fails while connections
// still reference it.
func (db *DB) DeleteOrganization(id string) error {
	return db.withWriteLock(func() error {
		var count int
		err := db.conn.QueryRow(`SELECT COUNT(*) FROM connections WHERE org_id = ?`, id).Scan(&count)
		if err != nil {
			return fmt.Errorf("count connections: %w", err)
		}
		if count > 0 {
			return fmt.Errorf("organization has %d connection(s); remove them first", count)
		}

		res, err := db.conn.Exec(`DELETE FROM organizations WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete organization: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return fmt.Errorf("organization not found: %s", id)
		}
		return nil
	})
}
