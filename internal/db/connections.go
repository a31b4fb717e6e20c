package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ovsov/mphub/internal/models"
)

// ListConnectionsOptions filters connection listings. Zero values mean
// no filtering on that field.
type ListConnectionsOptions struct {
	OrgID         string
	MarketplaceID string
	Status        []models.Status
}

func scanConnection(row rowScanner) (*models.Connection, error) {
	var conn models.Connection
	var lastChecked sql.NullTime
	err := row.Scan(&conn.ID, &conn.OrgID, &conn.MarketplaceID, &conn.Label, &conn.Status,
		&lastChecked, &conn.CreatedAt, &conn.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if lastChecked.Valid {
		t := lastChecked.Time
		conn.LastCheckedAt = &t
	}
	return &conn, nil
}

// CreateConnection inserts a new connection and assigns its ID.
// The referenced organization and marketplace must exist; sqlite does
// not enforce the foreign keys for us here.
func (db *DB) CreateConnection(conn *models.Connection) error {
	return db.withWriteLock(func() error {
		if _, err := db.GetOrganization(conn.OrgID); err != nil {
			return err
		}
		if _, err := db.GetMarketplace(conn.MarketplaceID); err != nil {
			return err
		}
		if conn.Status == "" {
			conn.Status = models.StatusActive
		}
		if !models.IsValidStatus(conn.Status) {
			return fmt.Errorf("invalid status: %s", conn.Status)
		}

		var dup int
		err := db.conn.QueryRow(`
			SELECT COUNT(*) FROM connections
			WHERE org_id = ? AND marketplace_id = ? AND label = ?
		`, conn.OrgID, conn.MarketplaceID, conn.Label).Scan(&dup)
		if err != nil {
			return fmt.Errorf("check duplicate: %w", err)
		}
		if dup > 0 {
			return fmt.Errorf("connection already exists for this organization, marketplace and label")
		}

		id, err := generateConnectionID()
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		conn.ID = id
		conn.CreatedAt = now
		conn.UpdatedAt = now

		_, err = db.conn.Exec(`
			INSERT INTO connections (id, org_id, marketplace_id, label, status, last_checked_at, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, conn.ID, conn.OrgID, conn.MarketplaceID, conn.Label, conn.Status,
			conn.LastCheckedAt, conn.CreatedAt, conn.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert connection: %w", err)
		}
		return nil
	})
}

// GetConnection retrieves a connection by ID
func (db *DB) GetConnection(id string) (*models.Connection, error) {
	row := db.conn.QueryRow(`
		SELECT id, org_id, marketplace_id, label, status, last_checked_at, created_at, updated_at
		FROM connections WHERE id = ?
	`, NormalizeConnectionID(id))

	conn, err := scanConnection(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("connection not found: %s", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}
	return conn, nil
}

// ListConnections returns connections matching the options, ordered by
// creation time
func (db *DB) ListConnections(opts ListConnectionsOptions) ([]models.Connection, error) {
	query := `
		SELECT id, org_id, marketplace_id, label, status, last_checked_at, created_at, updated_at
		FROM connections`
	where, args := buildConnectionFilter("", opts)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY created_at, id"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list connections: %w", err)
	}
	defer rows.Close()

	var conns []models.Connection
	for rows.Next() {
		conn, err := scanConnection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan connection: %w", err)
		}
		conns = append(conns, *conn)
	}
	return conns, rows.Err()
}

// ListConnectionViews returns connections joined with their organization
// and marketplace, ordered by organization code then marketplace code.
func (db *DB) ListConnectionViews(opts ListConnectionsOptions) ([]models.ConnectionView, error) {
	query := `
		SELECT c.id, c.org_id, c.marketplace_id, c.label, c.status, c.last_checked_at,
		       c.created_at, c.updated_at,
		       o.code, o.name, m.code, m.name, m.api_base, m.sandbox,
		       EXISTS(SELECT 1 FROM credentials WHERE connection_id = c.id)
		FROM connections c
		JOIN organizations o ON o.id = c.org_id
		JOIN marketplaces m ON m.id = c.marketplace_id`
	where, args := buildConnectionFilter("c.", opts)
	if where != "" {
		query += " WHERE " + where
	}
	query += " ORDER BY o.code, m.code, c.label"

	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list connection views: %w", err)
	}
	defer rows.Close()

	var views []models.ConnectionView
	for rows.Next() {
		var v models.ConnectionView
		var lastChecked sql.NullTime
		err := rows.Scan(&v.ID, &v.OrgID, &v.MarketplaceID, &v.Label, &v.Status,
			&lastChecked, &v.CreatedAt, &v.UpdatedAt,
			&v.OrgCode, &v.OrgName, &v.MarketplaceCode, &v.MarketplaceName,
			&v.APIBase, &v.Sandbox, &v.HasCredential)
		if err != nil {
			return nil, fmt.Errorf("scan connection view: %w", err)
		}
		if lastChecked.Valid {
			t := lastChecked.Time
			v.LastCheckedAt = &t
		}
		views = append(views, v)
	}
	return views, rows.Err()
}

// buildConnectionFilter renders the WHERE clause shared by the
// connection listings. prefix qualifies column names in joined queries.
func buildConnectionFilter(prefix string, opts ListConnectionsOptions) (string, []any) {
	var clauses []string
	var args []any

	if opts.OrgID != "" {
		clauses = append(clauses, prefix+"org_id = ?")
		args = append(args, opts.OrgID)
	}
	if opts.MarketplaceID != "" {
		clauses = append(clauses, prefix+"marketplace_id = ?")
		args = append(args, opts.MarketplaceID)
	}
	if len(opts.Status) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(opts.Status)), ",")
		clauses = append(clauses, prefix+"status IN ("+placeholders+")")
		for _, s := range opts.Status {
			args = append(args, s)
		}
	}

	return strings.Join(clauses, " AND "), args
}

// UpdateConnectionStatus sets the status of a connection
func (db *DB) UpdateConnectionStatus(id string, status models.Status) error {
	return db.withWriteLock(func() error {
		if !models.IsValidStatus(status) {
			return fmt.Errorf("invalid status: %s", status)
		}
		res, err := db.conn.Exec(`
			UPDATE connections SET status = ?, updated_at = ?
			WHERE id = ?
		`, status, time.Now().UTC(), NormalizeConnectionID(id))
		if err != nil {
			return fmt.Errorf("update connection status: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return fmt.Errorf("connection not found: %s", id)
		}
		return nil
	})
}

// TouchConnectionChecked records a health check result on a connection
func (db *DB) TouchConnectionChecked(id string, status models.Status, checkedAt time.Time) error {
	return db.withWriteLock(func() error {
		if !models.IsValidStatus(status) {
			return fmt.Errorf("invalid status: %s", status)
		}
		res, err := db.conn.Exec(`
			UPDATE connections SET status = ?, last_checked_at = ?, updated_at = ?
			WHERE id = ?
		`, status, checkedAt.UTC(), time.Now().UTC(), NormalizeConnectionID(id))
		if err != nil {
			return fmt.Errorf("touch connection: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return fmt.Errorf("connection not found: %s", id)
		}
		return nil
	})
}

// DeleteConnection removes a connection and its credential
func (db *DB) DeleteConnection(id string) error {
	return db.withWriteLock(func() error {
		id = NormalizeConnectionID(id)
		if _, err := db.conn.Exec(`DELETE FROM credentials WHERE connection_id = ?`, id); err != nil {
			return fmt.Errorf("delete credential: %w", err)
		}
		res, err := db.conn.Exec(`DELETE FROM connections WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete connection: %w", err)
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return fmt.Errorf("connection not found: %s", id)
		}
		return nil
	})
}
