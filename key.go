package medcrypt

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/pbkdf2"

	"github.com/carewise/medcrypt/internal/aead"
)

// KeySource records how the working key was obtained from the configured
// secret. Anything other than a clean 32-byte decode is a degraded mode.
type KeySource int

const (
	// KeySourceHex means the secret decoded as 32 bytes of hex.
	KeySourceHex KeySource = iota
	// KeySourceBase64 means the secret decoded as 32 bytes of base64.
	KeySourceBase64
	// KeySourceDigest means the key was derived as SHA-256 of the raw secret.
	// Entropy is bounded by the secret itself; callers should warn loudly.
	KeySourceDigest
	// KeySourcePBKDF2 means the key was stretched from a passphrase with
	// PBKDF2-SHA256.
	KeySourcePBKDF2
)

func (s KeySource) String() string {
	switch s {
	case KeySourceHex:
		return "hex"
	case KeySourceBase64:
		return "base64"
	case KeySourceDigest:
		return "sha256-digest"
	case KeySourcePBKDF2:
		return "pbkdf2"
	default:
		return "unknown"
	}
}

// DeriveKey turns the configured secret into the process-wide 256-bit key.
// A secret that decodes cleanly as 32-byte hex or 32-byte base64 is used
// directly; anything else falls back to SHA-256 of the raw secret.
func DeriveKey(secret string) ([]byte, KeySource, error) {
	if secret == "" {
		return nil, 0, fmt.Errorf("%w: key secret is empty", ErrInvalidConfiguration)
	}
	if raw, err := hex.DecodeString(secret); err == nil && len(raw) == aead.KeySize {
		return raw, KeySourceHex, nil
	}
	if raw, err := base64.StdEncoding.DecodeString(secret); err == nil && len(raw) == aead.KeySize {
		return raw, KeySourceBase64, nil
	}
	digest := sha256.Sum256([]byte(secret))
	return digest[:], KeySourceDigest, nil
}

// DeriveKeyPBKDF2 stretches a passphrase-style secret into a 256-bit key.
// The salt must be stable across restarts or previously written ciphertext
// becomes unreadable.
func DeriveKeyPBKDF2(secret string, salt []byte, iterations int) ([]byte, error) {
	if secret == "" {
		return nil, fmt.Errorf("%w: key secret is empty", ErrInvalidConfiguration)
	}
	if len(salt) == 0 {
		return nil, fmt.Errorf("%w: PBKDF2 salt is required", ErrInvalidConfiguration)
	}
	if iterations <= 0 {
		iterations = DefaultPBKDF2Iterations
	}
	return pbkdf2.Key([]byte(secret), salt, iterations, aead.KeySize, sha256.New), nil
}

// GenerateKey returns a fresh random 256-bit key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, aead.KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}
	return key, nil
}

// GenerateStringKey returns a fresh random key hex-encoded, ready to be used
// as a MEDCRYPT_KEY_SECRET value.
func GenerateStringKey() (string, error) {
	key, err := GenerateKey()
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(key), nil
}
