package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"marketfront/auth"
)

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
	service_id       TEXT PRIMARY KEY,
	name             TEXT NOT NULL DEFAULT '',
	email            TEXT NOT NULL DEFAULT '',
	grant_type       TEXT NOT NULL,
	access_token     TEXT NOT NULL,
	refresh_token    TEXT NOT NULL DEFAULT '',
	token_expires_at TIMESTAMP NOT NULL
)`

// SQLUsers is an auth.UserStore over database/sql, one row per principal
// keyed by the Market service id. Works with the sqlite driver out of the
// box; the statements stick to portable SQL plus upsert.
type SQLUsers struct {
	db *sql.DB
}

// NewSQLUsers creates the users table if needed.
func NewSQLUsers(db *sql.DB) (*SQLUsers, error) {
	if _, err := db.Exec(createUsersTable); err != nil {
		return nil, fmt.Errorf("failed to create users table: %w", err)
	}
	return &SQLUsers{db: db}, nil
}

func (s *SQLUsers) Lookup(ctx context.Context, serviceID string) (*auth.Principal, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT service_id, name, email, grant_type, access_token, refresh_token, token_expires_at
		 FROM users WHERE service_id = ?`, serviceID)
	var principal auth.Principal
	var grant string
	var expiresAt time.Time
	err := row.Scan(&principal.ServiceID, &principal.Name, &principal.Email, &grant,
		&principal.AccessToken, &principal.RefreshToken, &expiresAt)
	if err == sql.ErrNoRows {
		return nil, ErrPrincipalNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load principal %s: %w", serviceID, err)
	}
	principal.GrantType = auth.GrantType(grant)
	principal.TokenExpiresAt = expiresAt
	return &principal, nil
}

func (s *SQLUsers) Upsert(ctx context.Context, principal *auth.Principal) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (service_id, name, email, grant_type, access_token, refresh_token, token_expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(service_id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			grant_type = excluded.grant_type,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			token_expires_at = excluded.token_expires_at`,
		principal.ServiceID, principal.Name, principal.Email, string(principal.GrantType),
		principal.AccessToken, principal.RefreshToken, principal.TokenExpiresAt)
	if err != nil {
		return fmt.Errorf("failed to upsert principal %s: %w", principal.ServiceID, err)
	}
	return nil
}

// UpdateToken overwrites the three token fields in a single statement so a
// reader never observes a partially refreshed record.
func (s *SQLUsers) UpdateToken(ctx context.Context, serviceID string, token *auth.Token) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE users SET grant_type = ?, access_token = ?, refresh_token = ?, token_expires_at = ?
		 WHERE service_id = ?`,
		string(token.GrantType), token.AccessToken, token.RefreshToken, token.ExpiresAt, serviceID)
	if err != nil {
		return fmt.Errorf("failed to update token for %s: %w", serviceID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update token for %s: %w", serviceID, err)
	}
	if affected == 0 {
		return ErrPrincipalNotFound
	}
	return nil
}
