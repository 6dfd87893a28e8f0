// Package aead wraps AES-256-GCM with the nonce/tag split the rest of the
// module stores at rest: callers get the three parts separately and choose
// their own container encoding.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"fmt"
	"io"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12
	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
)

// Seal encrypts plaintext under key with a fresh random nonce and returns the
// nonce, the authentication tag and the ciphertext as separate slices.
func Seal(key, plaintext []byte) (nonce, tag, ciphertext []byte, err error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, nil, nil, err
	}
	nonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	sealed := aesGCM.Seal(nil, nonce, plaintext, nil)
	// GCM appends the tag to the ciphertext.
	split := len(sealed) - TagSize
	return nonce, sealed[split:], sealed[:split], nil
}

// Open decrypts ciphertext previously produced by Seal and verifies its tag.
func Open(key, nonce, tag, ciphertext []byte) ([]byte, error) {
	aesGCM, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("invalid nonce size: %d", len(nonce))
	}
	if len(tag) != TagSize {
		return nil, fmt.Errorf("invalid tag size: %d", len(tag))
	}
	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)
	plaintext, err := aesGCM.Open(nil, nonce, sealed, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}
	return plaintext, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("invalid key size: expected %d bytes, got %d", KeySize, len(key))
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES cipher: %w", err)
	}
	aesGCM, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return aesGCM, nil
}
