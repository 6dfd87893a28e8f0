package medcrypt

import (
	"encoding/json"
	"strings"
)

// storedKind tags the historical encodings a profile or scalar blob can be
// stored under. Classification happens once, up front, so the fallback chain
// in the hydrator is an explicit switch rather than repeated shape-sniffing.
type storedKind int

const (
	// storedEmpty: nil, empty string or empty bytes.
	storedEmpty storedKind = iota
	// storedObject: an already-decoded plain object.
	storedObject
	// storedEnvelope: an encrypted envelope, either serialized or decoded.
	storedEnvelope
	// storedJSONObject: a JSON string holding a plain (unencrypted) object.
	storedJSONObject
	// storedRaw: a string that is neither an envelope nor a JSON object;
	// legacy plaintext scalar columns land here.
	storedRaw
)

type storedValue struct {
	kind storedKind
	obj  map[string]any
	env  Envelope
	raw  string
}

// classifyStored determines how a stored blob is encoded. It accepts the
// shapes drivers actually hand back: nil, string, []byte, or a decoded map.
func classifyStored(stored any) storedValue {
	switch v := stored.(type) {
	case nil:
		return storedValue{kind: storedEmpty}
	case map[string]any:
		if env, ok := envelopeFromMap(v); ok {
			return storedValue{kind: storedEnvelope, env: env}
		}
		return storedValue{kind: storedObject, obj: v}
	case []byte:
		return classifyString(string(v))
	case string:
		return classifyString(v)
	default:
		return storedValue{kind: storedEmpty}
	}
}

func classifyString(s string) storedValue {
	trimmedS := strings.TrimSpace(s)
	if trimmedS == "" {
		return storedValue{kind: storedEmpty}
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(trimmedS), &decoded); err != nil {
		return storedValue{kind: storedRaw, raw: trimmedS}
	}
	if decoded == nil {
		// Literal JSON null.
		return storedValue{kind: storedEmpty}
	}
	if env, ok := envelopeFromMap(decoded); ok {
		return storedValue{kind: storedEnvelope, env: env}
	}
	return storedValue{kind: storedJSONObject, obj: decoded}
}
