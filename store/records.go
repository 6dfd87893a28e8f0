package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/carewise/medcrypt/internal/muid"
)

// Record is one stored medical record row. PayloadEncrypted is a serialized
// envelope produced by Cipher.EncryptJSON; AttachmentEncrypted is the binary
// iv || tag || ciphertext blob produced by Cipher.EncryptBuffer, empty when
// the record has no attachment.
type Record struct {
	ID                  string
	PatientID           string
	AuthorID            string
	PayloadEncrypted    string
	AttachmentEncrypted []byte
	CreatedAt           time.Time
}

// SaveRecord inserts a record, assigning an id when absent.
func (s *Store) SaveRecord(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = muid.New()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO records (id, patient_id, author_id, payload_encrypted, attachment_encrypted, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.PatientID, rec.AuthorID, rec.PayloadEncrypted, rec.AttachmentEncrypted, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save record: %w", err)
	}
	return nil
}

// GetRecord fetches one record by id.
func (s *Store) GetRecord(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, patient_id, author_id, payload_encrypted, attachment_encrypted, created_at
		FROM records WHERE id = ?
	`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// ListRecordsByPatient returns a patient's records, newest first.
func (s *Store) ListRecordsByPatient(ctx context.Context, patientID string) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, patient_id, author_id, payload_encrypted, attachment_encrypted, created_at
		FROM records WHERE patient_id = ? ORDER BY created_at DESC
	`, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer rows.Close()

	var out []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanRecord(row scanner) (*Record, error) {
	var (
		rec      Record
		authorID sql.NullString
	)
	if err := row.Scan(&rec.ID, &rec.PatientID, &authorID, &rec.PayloadEncrypted, &rec.AttachmentEncrypted, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan record: %w", err)
	}
	rec.AuthorID = authorID.String
	return &rec, nil
}
