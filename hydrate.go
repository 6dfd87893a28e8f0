package medcrypt

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Hydration reverses the secrets builder: it reconstructs plaintext views
// from stored rows while tolerating every encoding the profile blob has had
// over the system's life. Hydration never returns an error and never panics;
// a corrupt historical row degrades to empty fields so listing endpoints keep
// working. Freshly-written records that fail to decrypt should be read with
// DecryptJSON instead, which does fail loudly.

// UserView is the plaintext API shape of a patient account.
type UserView struct {
	ID          string  `json:"id,omitempty"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	Name        *string `json:"name"`
	Email       *string `json:"email"`
	Mobile      *string `json:"mobile"`
	Address     *string `json:"address"`
	DateOfBirth *string `json:"date_of_birth"`
	YearOfBirth *int    `json:"year_of_birth"`
}

// ProfessionalView is the plaintext API shape of a professional account.
type ProfessionalView struct {
	ID      string  `json:"id,omitempty"`
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Mobile  *string `json:"mobile"`
	Address *string `json:"address"`
	Company *string `json:"company"`
}

// AdminView is the plaintext API shape of an administrator account.
type AdminView struct {
	ID      string  `json:"id,omitempty"`
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Mobile  *string `json:"mobile"`
	Address *string `json:"address"`
}

// DecryptProfile recovers a profile blob as a plain map, whatever its stored
// encoding: an already-decoded object, a plain JSON object string, a proper
// envelope, or an envelope wrapped in a second envelope by the old write
// path. Total failure returns an empty map, never an error.
func (c *Cipher) DecryptProfile(stored any) map[string]any {
	sv := classifyStored(stored)
	switch sv.kind {
	case storedObject, storedJSONObject:
		return sv.obj
	case storedEnvelope:
		value, err := c.unwrapEnvelope(sv.env, 0)
		if err != nil {
			return map[string]any{}
		}
		if obj, ok := value.(map[string]any); ok {
			return obj
		}
		return map[string]any{}
	default:
		return map[string]any{}
	}
}

// DecryptValue recovers a scalar column with the same tolerance. A plain
// string that is not an envelope is returned as-is: the oldest rows stored
// the email unencrypted. Total failure returns "".
func (c *Cipher) DecryptValue(stored any) string {
	sv := classifyStored(stored)
	switch sv.kind {
	case storedEnvelope:
		value, err := c.unwrapEnvelope(sv.env, 0)
		if err != nil {
			return ""
		}
		if s, ok := value.(string); ok {
			return s
		}
		return ""
	case storedRaw:
		return sv.raw
	default:
		return ""
	}
}

// unwrapEnvelope decrypts an envelope, following the legacy doubly-encrypted
// encoding when the plaintext turns out to be another envelope.
func (c *Cipher) unwrapEnvelope(env Envelope, depth int) (any, error) {
	if depth >= maxNestedEnvelopes {
		return nil, fmt.Errorf("%w: envelope nesting too deep", ErrMalformedCiphertext)
	}
	value, err := c.decryptEnvelope(env)
	if err != nil {
		return nil, err
	}
	switch v := value.(type) {
	case string:
		if inner, err := parseEnvelope(v); err == nil {
			return c.unwrapEnvelope(inner, depth+1)
		}
	case map[string]any:
		if inner, ok := envelopeFromMap(v); ok {
			return c.unwrapEnvelope(inner, depth+1)
		}
	}
	return value, nil
}

// HydrateUser rebuilds a patient view from a stored row. Returns nil only
// when the row itself is nil; otherwise every field is populated, with nil
// for anything missing or unrecoverable.
func (c *Cipher) HydrateUser(row map[string]any) *UserView {
	if row == nil {
		return nil
	}
	profile := c.DecryptProfile(rowValue(row, "profile_encrypted", "profileEncrypted"))

	view := &UserView{
		ID:          stringOf(rowValue(row, "id", "_id")),
		FirstName:   profileString(profile, "firstName", "first_name"),
		LastName:    profileString(profile, "lastName", "last_name"),
		Mobile:      profileString(profile, "mobile", "phone"),
		Address:     profileString(profile, "address"),
		DateOfBirth: profileString(profile, "dateOfBirth", "date_of_birth", "dob"),
		YearOfBirth: profileInt(profile, "yearOfBirth", "year_of_birth"),
	}
	view.Email = c.hydrateEmail(profile, row)
	view.Name = reconcileName(profile, view.FirstName, view.LastName)
	return view
}

// HydrateProfessional rebuilds a professional view from a stored row.
func (c *Cipher) HydrateProfessional(row map[string]any) *ProfessionalView {
	if row == nil {
		return nil
	}
	profile := c.DecryptProfile(rowValue(row, "profile_encrypted", "profileEncrypted"))

	view := &ProfessionalView{
		ID:      stringOf(rowValue(row, "id", "_id")),
		Mobile:  profileString(profile, "mobile", "phone"),
		Address: profileString(profile, "address"),
		Company: profileString(profile, "company"),
	}
	view.Email = c.hydrateEmail(profile, row)
	view.Name = reconcileName(profile,
		profileString(profile, "firstName", "first_name"),
		profileString(profile, "lastName", "last_name"))
	return view
}

// HydrateAdmin rebuilds an admin view from a stored row.
func (c *Cipher) HydrateAdmin(row map[string]any) *AdminView {
	if row == nil {
		return nil
	}
	profile := c.DecryptProfile(rowValue(row, "profile_encrypted", "profileEncrypted"))

	view := &AdminView{
		ID:      stringOf(rowValue(row, "id", "_id")),
		Mobile:  profileString(profile, "mobile", "phone"),
		Address: profileString(profile, "address"),
	}
	view.Email = c.hydrateEmail(profile, row)
	view.Name = reconcileName(profile,
		profileString(profile, "firstName", "first_name"),
		profileString(profile, "lastName", "last_name"))
	return view
}

// hydrateEmail prefers the profile's email and falls back to the dedicated
// encrypted (or legacy plaintext) email column.
func (c *Cipher) hydrateEmail(profile, row map[string]any) *string {
	if email := profileString(profile, "email"); email != nil {
		return email
	}
	if email := c.DecryptValue(rowValue(row, "email_encrypted", "emailEncrypted", "email")); email != "" {
		return &email
	}
	return nil
}

// reconcileName returns the dedicated name field when present and otherwise
// joins the parts, letting legacy single-name rows and split-name rows
// hydrate to the same shape.
func reconcileName(profile map[string]any, first, last *string) *string {
	if name := profileString(profile, "fullName", "full_name", "name"); name != nil {
		return name
	}
	var parts []string
	if first != nil {
		parts = append(parts, *first)
	}
	if last != nil {
		parts = append(parts, *last)
	}
	joined := strings.TrimSpace(strings.Join(parts, " "))
	if joined == "" {
		return nil
	}
	return &joined
}

// rowValue returns the first present key from a stored row.
func rowValue(row map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := row[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

// profileString reads a non-empty trimmed string field from a decrypted
// profile, trying each legacy key spelling in order.
func profileString(profile map[string]any, keys ...string) *string {
	for _, key := range keys {
		v, ok := profile[key]
		if !ok || v == nil {
			continue
		}
		if s, ok := v.(string); ok {
			s = strings.TrimSpace(s)
			if s != "" {
				return &s
			}
		}
	}
	return nil
}

// profileInt reads an integral field from a decrypted profile. JSON decoding
// yields float64, so integral floats are accepted.
func profileInt(profile map[string]any, keys ...string) *int {
	for _, key := range keys {
		v, ok := profile[key]
		if !ok || v == nil {
			continue
		}
		switch n := v.(type) {
		case float64:
			if n == float64(int(n)) {
				i := int(n)
				return &i
			}
		case int:
			i := n
			return &i
		case int64:
			i := int(n)
			return &i
		case json.Number:
			if i64, err := n.Int64(); err == nil {
				i := int(i64)
				return &i
			}
		case string:
			// Very old rows stored the year as a string.
			var i int
			if _, err := fmt.Sscanf(strings.TrimSpace(n), "%d", &i); err == nil {
				return &i
			}
		}
	}
	return nil
}

// stringOf renders a row identifier regardless of driver type.
func stringOf(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case []byte:
		return string(s)
	case int64:
		return fmt.Sprintf("%d", s)
	case float64:
		return fmt.Sprintf("%.0f", s)
	default:
		return fmt.Sprintf("%v", s)
	}
}
