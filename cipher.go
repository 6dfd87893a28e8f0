package medcrypt

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/carewise/medcrypt/internal/aead"
)

const (
	// maxChunkSize caps the chunk length accepted during stream decryption to
	// prevent memory exhaustion from a corrupted length header.
	maxChunkSize = 10 * 1024 * 1024

	// streamChunkSize is the plaintext chunk size used when encrypting streams.
	streamChunkSize = 64 * 1024

	// maxNestedEnvelopes bounds the legacy double-encryption unwrap in the
	// hydrator. Historical rows were never wrapped more than twice.
	maxNestedEnvelopes = 3
)

// Cipher is the process-wide encryption engine. It holds the single derived
// 256-bit key, loaded once at startup and immutable afterwards; all methods
// are safe for concurrent use.
type Cipher struct {
	key    []byte
	logger *logrus.Logger
}

// New derives the working key from cfg and returns a ready Cipher.
//
// When the secret does not decode as 32-byte hex or base64 the key degrades
// to SHA-256 of the raw secret. That weakens the entropy guarantee to
// whatever the operator typed, so it is logged as a warning rather than
// treated as fatal: existing deployments rely on it.
func New(cfg Config, opts ...Option) (*Cipher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := &Cipher{logger: logrus.New()}
	for _, opt := range opts {
		opt(c)
	}

	switch cfg.KDF {
	case KDFPBKDF2:
		salt, err := base64.StdEncoding.DecodeString(cfg.PBKDF2Salt)
		if err != nil {
			return nil, fmt.Errorf("%w: PBKDF2Salt is not valid base64: %v", ErrInvalidConfiguration, err)
		}
		key, err := DeriveKeyPBKDF2(cfg.KeySecret, salt, cfg.PBKDF2Iterations)
		if err != nil {
			return nil, err
		}
		c.key = key
	default:
		key, source, err := DeriveKey(cfg.KeySecret)
		if err != nil {
			return nil, err
		}
		if source == KeySourceDigest {
			c.logger.WithField("key_source", source.String()).
				Warn("key secret is not 32-byte hex or base64; deriving key as SHA-256 of the raw secret, which reduces key entropy to that of the secret itself")
		}
		c.key = key
	}

	return c, nil
}

// NewFromEnv builds a Cipher from environment configuration. Convenience for
// services and the migration tools.
func NewFromEnv(opts ...Option) (*Cipher, error) {
	cfg, err := LoadConfigFromEnvironment()
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// EncryptJSON encrypts a value into a serialized envelope. String values are
// encrypted as-is so scalar columns round-trip without JSON quoting; every
// other value is JSON-marshaled first. Each call uses a fresh random nonce.
func (c *Cipher) EncryptJSON(value any) (string, error) {
	var plaintext []byte
	switch v := value.(type) {
	case string:
		plaintext = []byte(v)
	case []byte:
		plaintext = v
	default:
		raw, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("%w: failed to serialize value: %v", ErrEncryptionFailed, err)
		}
		plaintext = raw
	}

	nonce, tag, ciphertext, err := aead.Seal(c.key, plaintext)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}

	container, err := json.Marshal(newEnvelope(nonce, tag, ciphertext))
	if err != nil {
		return "", fmt.Errorf("%w: failed to serialize envelope: %v", ErrEncryptionFailed, err)
	}
	return string(container), nil
}

// DecryptJSON decrypts a serialized envelope produced by EncryptJSON. The
// recovered plaintext is JSON-parsed when possible, otherwise returned as a
// plain string, so both structured payloads and scalar values decrypt
// transparently.
func (c *Cipher) DecryptJSON(stored string) (any, error) {
	env, err := parseEnvelope(stored)
	if err != nil {
		return nil, err
	}
	return c.decryptEnvelope(env)
}

// DecryptEnvelope decrypts an already-parsed envelope.
func (c *Cipher) DecryptEnvelope(env Envelope) (any, error) {
	if !env.complete() {
		return nil, fmt.Errorf("%w: envelope is missing iv, tag or ciphertext", ErrMalformedCiphertext)
	}
	return c.decryptEnvelope(env)
}

func (c *Cipher) decryptEnvelope(env Envelope) (any, error) {
	nonce, tag, ciphertext, err := env.decode()
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(c.key, nonce, tag, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}

	var value any
	if err := json.Unmarshal(plaintext, &value); err != nil {
		return string(plaintext), nil
	}
	return value, nil
}

// EncryptBuffer encrypts raw bytes into the compact binary encoding
// iv || tag || ciphertext, used for file attachment contents.
func (c *Cipher) EncryptBuffer(plaintext []byte) ([]byte, error) {
	nonce, tag, ciphertext, err := aead.Seal(c.key, plaintext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncryptionFailed, err)
	}
	blob := make([]byte, 0, len(nonce)+len(tag)+len(ciphertext))
	blob = append(blob, nonce...)
	blob = append(blob, tag...)
	blob = append(blob, ciphertext...)
	return blob, nil
}

// DecryptBuffer reverses EncryptBuffer. Empty or nil input yields an empty
// buffer rather than an error: attachment content is optional and absent
// content must read back as absent.
func (c *Cipher) DecryptBuffer(blob []byte) ([]byte, error) {
	if len(blob) == 0 {
		return []byte{}, nil
	}
	if len(blob) < aead.NonceSize+aead.TagSize {
		return nil, fmt.Errorf("%w: blob shorter than iv and tag", ErrMalformedCiphertext)
	}
	nonce := blob[:aead.NonceSize]
	tag := blob[aead.NonceSize : aead.NonceSize+aead.TagSize]
	ciphertext := blob[aead.NonceSize+aead.TagSize:]

	plaintext, err := aead.Open(c.key, nonce, tag, ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAuthenticationFailed, err)
	}
	return plaintext, nil
}

// EncryptStream encrypts reader into writer chunk by chunk. Each chunk is an
// independently sealed buffer prefixed with a 4-byte big-endian length, so
// large attachments never need to fit in memory at once.
func (c *Cipher) EncryptStream(reader io.Reader, writer io.Writer) error {
	buffer := make([]byte, streamChunkSize)
	for {
		n, err := reader.Read(buffer)
		if n > 0 {
			blob, encErr := c.EncryptBuffer(buffer[:n])
			if encErr != nil {
				return encErr
			}
			length := uint32(len(blob))
			header := []byte{
				byte(length >> 24),
				byte(length >> 16),
				byte(length >> 8),
				byte(length),
			}
			if _, err := writer.Write(header); err != nil {
				return fmt.Errorf("failed to write chunk header: %w", err)
			}
			if _, err := writer.Write(blob); err != nil {
				return fmt.Errorf("failed to write chunk: %w", err)
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read input stream: %w", err)
		}
	}
}

// DecryptStream reverses EncryptStream.
func (c *Cipher) DecryptStream(reader io.Reader, writer io.Writer) error {
	header := make([]byte, 4)
	for {
		if _, err := io.ReadFull(reader, header); err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("failed to read chunk header: %w", err)
		}
		length := uint32(header[0])<<24 | uint32(header[1])<<16 |
			uint32(header[2])<<8 | uint32(header[3])
		if length == 0 || length > maxChunkSize {
			return fmt.Errorf("%w: invalid chunk size %d", ErrMalformedCiphertext, length)
		}
		blob := make([]byte, length)
		if _, err := io.ReadFull(reader, blob); err != nil {
			return fmt.Errorf("%w: truncated chunk", ErrMalformedCiphertext)
		}
		plaintext, err := c.DecryptBuffer(blob)
		if err != nil {
			return err
		}
		if _, err := writer.Write(plaintext); err != nil {
			return fmt.Errorf("failed to write output stream: %w", err)
		}
	}
}
