package medcrypt

import (
	"errors"
)

var (
	// ErrMalformedCiphertext indicates a stored envelope is missing required
	// fields or a binary blob is too short to contain a nonce and tag.
	ErrMalformedCiphertext = errors.New("malformed ciphertext")

	// ErrAuthenticationFailed indicates an AEAD tag mismatch: the ciphertext
	// was tampered with or was encrypted under a different key.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrEncryptionFailed wraps unexpected failures while producing ciphertext.
	ErrEncryptionFailed = errors.New("encryption failed")

	// ErrDecryptionFailed wraps unexpected failures while recovering plaintext.
	ErrDecryptionFailed = errors.New("decryption failed")

	// ErrInvalidConfiguration indicates the cipher cannot be constructed from
	// the supplied configuration.
	ErrInvalidConfiguration = errors.New("invalid configuration")
)

// IsAuthError returns true if the error represents an AEAD authentication
// failure (tampering or wrong key).
func IsAuthError(err error) bool {
	return errors.Is(err, ErrAuthenticationFailed)
}

// IsMalformedCiphertext returns true if the error represents a structurally
// invalid envelope or blob.
func IsMalformedCiphertext(err error) bool {
	return errors.Is(err, ErrMalformedCiphertext)
}

// IsConfigurationError returns true if the error represents a configuration
// problem.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// IsOperationError returns true if the error represents a failure during an
// encryption or decryption operation.
func IsOperationError(err error) bool {
	return errors.Is(err, ErrEncryptionFailed) ||
		errors.Is(err, ErrDecryptionFailed)
}
