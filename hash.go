package medcrypt

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// NormalizeIdentifier trims whitespace and lower-cases an identifier so that
// differently-typed variants of the same email map to one lookup key.
func NormalizeIdentifier(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// HashIdentifier returns the hex SHA-256 digest of the normalized identifier,
// used as a unique index for exact-match lookup without storing plaintext.
// Empty or whitespace-only input returns "" (no identifier, persisted as SQL
// NULL by the store).
//
// The digest is deliberately unsalted so the same email hashes identically
// across accounts, which is what makes the uniqueness constraint and the
// pre-decryption login lookup work. The cost is rainbow-table exposure for
// common addresses if the database leaks; see DESIGN.md.
func HashIdentifier(raw string) string {
	normalized := NormalizeIdentifier(raw)
	if normalized == "" {
		return ""
	}
	digest := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(digest[:])
}
