package medcrypt

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/carewise/medcrypt/internal/aead"
)

// Envelope is the textual container for one encrypted value: nonce,
// authentication tag and ciphertext, each base64-encoded, serialized together
// as a single JSON object. The binary attachment encoding packs the same
// three parts as iv || tag || ciphertext instead; the two encodings are not
// interchangeable.
type Envelope struct {
	IV         string `json:"iv"`
	Tag        string `json:"tag"`
	Ciphertext string `json:"ciphertext"`
}

// complete reports whether the fields required for decryption are set. The
// ciphertext may legitimately be empty: sealing an empty plaintext produces
// only a tag.
func (e Envelope) complete() bool {
	return e.IV != "" && e.Tag != ""
}

// decode recovers the raw nonce, tag and ciphertext bytes.
func (e Envelope) decode() (nonce, tag, ciphertext []byte, err error) {
	if nonce, err = base64.StdEncoding.DecodeString(e.IV); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: invalid iv encoding", ErrMalformedCiphertext)
	}
	if tag, err = base64.StdEncoding.DecodeString(e.Tag); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: invalid tag encoding", ErrMalformedCiphertext)
	}
	if ciphertext, err = base64.StdEncoding.DecodeString(e.Ciphertext); err != nil {
		return nil, nil, nil, fmt.Errorf("%w: invalid ciphertext encoding", ErrMalformedCiphertext)
	}
	if len(nonce) != aead.NonceSize || len(tag) != aead.TagSize {
		return nil, nil, nil, fmt.Errorf("%w: iv or tag has wrong length", ErrMalformedCiphertext)
	}
	return nonce, tag, ciphertext, nil
}

func newEnvelope(nonce, tag, ciphertext []byte) Envelope {
	return Envelope{
		IV:         base64.StdEncoding.EncodeToString(nonce),
		Tag:        base64.StdEncoding.EncodeToString(tag),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}
}

// parseEnvelope interprets a serialized container. It fails when the input is
// not a JSON object or any of the three fields is missing.
func parseEnvelope(stored string) (Envelope, error) {
	var decoded map[string]any
	if err := json.Unmarshal([]byte(stored), &decoded); err != nil {
		return Envelope{}, fmt.Errorf("%w: not a valid envelope container", ErrMalformedCiphertext)
	}
	env, ok := envelopeFromMap(decoded)
	if !ok {
		return Envelope{}, fmt.Errorf("%w: envelope is missing iv, tag or ciphertext", ErrMalformedCiphertext)
	}
	return env, nil
}

// envelopeFromMap rebuilds an Envelope from an already-decoded JSON object,
// e.g. a driver that returns JSON columns as maps. All three fields must be
// present as strings; only the ciphertext may be empty.
func envelopeFromMap(m map[string]any) (Envelope, bool) {
	iv, okIV := m["iv"].(string)
	tag, okTag := m["tag"].(string)
	ciphertext, okCT := m["ciphertext"].(string)
	if !okIV || !okTag || !okCT {
		return Envelope{}, false
	}
	env := Envelope{IV: iv, Tag: tag, Ciphertext: ciphertext}
	return env, env.complete()
}
