// Package store persists account secrets and encrypted records in SQLite.
// It stores exactly what the secrets builder hands it and returns rows as
// plain field maps for the hydrator; it never sees plaintext PII.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/carewise/medcrypt"
	"github.com/carewise/medcrypt/internal/muid"
)

// Kind identifies the account table partition.
type Kind string

const (
	KindUser         Kind = "user"
	KindProfessional Kind = "professional"
	KindAdmin        Kind = "admin"
)

var (
	// ErrMissingEmailHash is returned when a caller tries to persist secrets
	// whose email hash is empty. A row without a hash cannot participate in
	// the uniqueness constraint or the login lookup.
	ErrMissingEmailHash = errors.New("account secrets have no email hash")

	// ErrNotFound is returned when no row matches.
	ErrNotFound = errors.New("not found")
)

const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	kind              TEXT NOT NULL,
	id                TEXT NOT NULL,
	email_hash        TEXT,
	email_encrypted   TEXT NOT NULL,
	profile_encrypted TEXT NOT NULL,
	created_at        TIMESTAMP NOT NULL,
	updated_at        TIMESTAMP NOT NULL,
	PRIMARY KEY (kind, id),
	UNIQUE (kind, email_hash)
);

CREATE TABLE IF NOT EXISTS records (
	id                   TEXT PRIMARY KEY,
	patient_id           TEXT NOT NULL,
	author_id            TEXT,
	payload_encrypted    TEXT NOT NULL,
	attachment_encrypted BLOB,
	created_at           TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_patient ON records (patient_id);
`

// Store wraps the SQLite database holding accounts and records.
type Store struct {
	db *sql.DB
}

// Open opens (creating if needed) the database at path and ensures the
// schema exists. Use ":memory:" for tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveAccount inserts or replaces an account's secrets tuple. All three
// fields are written in a single statement so a reader can never observe a
// hash that does not match its encrypted email.
func (s *Store) SaveAccount(ctx context.Context, kind Kind, id string, secrets medcrypt.AccountSecrets) error {
	if secrets.EmailHash == "" {
		return ErrMissingEmailHash
	}
	if id == "" {
		id = muid.New()
	}
	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO accounts (kind, id, email_hash, email_encrypted, profile_encrypted, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (kind, id) DO UPDATE SET
			email_hash = excluded.email_hash,
			email_encrypted = excluded.email_encrypted,
			profile_encrypted = excluded.profile_encrypted,
			updated_at = excluded.updated_at
	`, string(kind), id, secrets.EmailHash, secrets.EmailEncrypted, secrets.ProfileEncrypted, now, now)
	if err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

// FindAccountByEmailHash looks an account up by its hashed identifier, the
// pre-decryption login path.
func (s *Store) FindAccountByEmailHash(ctx context.Context, kind Kind, emailHash string) (map[string]any, error) {
	if emailHash == "" {
		return nil, ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email_hash, email_encrypted, profile_encrypted
		FROM accounts WHERE kind = ? AND email_hash = ?
	`, string(kind), emailHash)
	return scanAccount(row)
}

// GetAccount looks an account up by id.
func (s *Store) GetAccount(ctx context.Context, kind Kind, id string) (map[string]any, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email_hash, email_encrypted, profile_encrypted
		FROM accounts WHERE kind = ? AND id = ?
	`, string(kind), id)
	return scanAccount(row)
}

// ListAccounts returns every account of a kind as hydration-ready rows. The
// bulk re-encryption utility iterates this.
func (s *Store) ListAccounts(ctx context.Context, kind Kind) ([]map[string]any, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email_hash, email_encrypted, profile_encrypted
		FROM accounts WHERE kind = ? ORDER BY id
	`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		account, err := scanAccountRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, account)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row *sql.Row) (map[string]any, error) {
	account, err := scanAccountRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return account, err
}

func scanAccountRow(row scanner) (map[string]any, error) {
	var (
		id, emailEncrypted, profileEncrypted string
		emailHash                            sql.NullString
	)
	if err := row.Scan(&id, &emailHash, &emailEncrypted, &profileEncrypted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	account := map[string]any{
		"id":                id,
		"email_encrypted":   emailEncrypted,
		"profile_encrypted": profileEncrypted,
	}
	if emailHash.Valid {
		account["email_hash"] = emailHash.String
	}
	return account, nil
}
