package medcrypt

import (
	"encoding/json"
	"strings"

	"github.com/hengadev/errsx"

	"github.com/carewise/medcrypt/internal/datestr"
)

// UserFields carries the raw registration or profile-update input for a
// patient account. YearOfBirth is any because it typically arrives from
// decoded JSON; only integral values pass through composition.
type UserFields struct {
	FirstName   string
	LastName    string
	Email       string
	Mobile      string
	Address     string
	DateOfBirth string
	YearOfBirth any
}

// ProfessionalFields carries the raw input for a medical professional account.
type ProfessionalFields struct {
	Name    string
	Email   string
	Mobile  string
	Address string
	Company string
}

// AdminFields carries the raw input for an administrator account.
type AdminFields struct {
	Name    string
	Email   string
	Mobile  string
	Address string
}

// UserProfile is the canonical plaintext profile for a patient account. The
// camelCase JSON tags are the at-rest encoding inside the encrypted blob;
// pointer fields marshal as null when absent so round-trips are stable.
type UserProfile struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	FullName    *string `json:"fullName"`
	Email       *string `json:"email"`
	Mobile      *string `json:"mobile"`
	Address     *string `json:"address"`
	DateOfBirth *string `json:"dateOfBirth"`
	YearOfBirth *int    `json:"yearOfBirth"`
}

// ProfessionalProfile is the canonical plaintext profile for a professional.
type ProfessionalProfile struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Mobile  *string `json:"mobile"`
	Address *string `json:"address"`
	Company *string `json:"company"`
}

// AdminProfile is the canonical plaintext profile for an administrator.
type AdminProfile struct {
	Name    *string `json:"name"`
	Email   *string `json:"email"`
	Mobile  *string `json:"mobile"`
	Address *string `json:"address"`
}

// ComposeUserProfile normalizes raw input into a canonical UserProfile: every
// string trimmed, empty results become nil, the email lower-cased, fullName
// derived from the name parts, yearOfBirth kept only when integral. Pure
// function: identical input always composes the identical profile, which the
// re-encryption utility relies on.
func ComposeUserProfile(f UserFields) UserProfile {
	first := trimmed(f.FirstName)
	last := trimmed(f.LastName)
	return UserProfile{
		FirstName:   first,
		LastName:    last,
		FullName:    joinName(first, last),
		Email:       trimmed(NormalizeIdentifier(f.Email)),
		Mobile:      trimmed(f.Mobile),
		Address:     trimmed(f.Address),
		DateOfBirth: trimmed(datestr.Canonical(f.DateOfBirth)),
		YearOfBirth: integral(f.YearOfBirth),
	}
}

// ComposeProfessionalProfile normalizes raw input into a ProfessionalProfile.
func ComposeProfessionalProfile(f ProfessionalFields) ProfessionalProfile {
	return ProfessionalProfile{
		Name:    trimmed(f.Name),
		Email:   trimmed(NormalizeIdentifier(f.Email)),
		Mobile:  trimmed(f.Mobile),
		Address: trimmed(f.Address),
		Company: trimmed(f.Company),
	}
}

// ComposeAdminProfile normalizes raw input into an AdminProfile.
func ComposeAdminProfile(f AdminFields) AdminProfile {
	return AdminProfile{
		Name:    trimmed(f.Name),
		Email:   trimmed(NormalizeIdentifier(f.Email)),
		Mobile:  trimmed(f.Mobile),
		Address: trimmed(f.Address),
	}
}

// ValidateUserFields checks the fields a registration handler must reject
// before persisting secrets.
func ValidateUserFields(f UserFields) error {
	var errs errsx.Map
	if NormalizeIdentifier(f.Email) == "" {
		errs.Set("email", "email is required")
	}
	if strings.TrimSpace(f.FirstName) == "" && strings.TrimSpace(f.LastName) == "" {
		errs.Set("name", "at least one of first or last name is required")
	}
	return errs.AsError()
}

// ValidateProfessionalFields checks professional registration input.
func ValidateProfessionalFields(f ProfessionalFields) error {
	var errs errsx.Map
	if NormalizeIdentifier(f.Email) == "" {
		errs.Set("email", "email is required")
	}
	if strings.TrimSpace(f.Name) == "" {
		errs.Set("name", "name is required")
	}
	return errs.AsError()
}

// ValidateAdminFields checks admin registration input.
func ValidateAdminFields(f AdminFields) error {
	var errs errsx.Map
	if NormalizeIdentifier(f.Email) == "" {
		errs.Set("email", "email is required")
	}
	if strings.TrimSpace(f.Name) == "" {
		errs.Set("name", "name is required")
	}
	return errs.AsError()
}

// trimmed returns a pointer to the trimmed string, or nil when nothing
// remains. The nil-not-empty convention keeps encrypted profiles stable
// across write/read cycles.
func trimmed(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// joinName derives a full name from the available parts.
func joinName(first, last *string) *string {
	var parts []string
	if first != nil {
		parts = append(parts, *first)
	}
	if last != nil {
		parts = append(parts, *last)
	}
	return trimmed(strings.Join(parts, " "))
}

// integral accepts the numeric shapes a year survives JSON decoding as, and
// rejects everything else.
func integral(v any) *int {
	switch n := v.(type) {
	case nil:
		return nil
	case int:
		return &n
	case int32:
		i := int(n)
		return &i
	case int64:
		i := int(n)
		return &i
	case float64:
		if n != float64(int(n)) {
			return nil
		}
		i := int(n)
		return &i
	case json.Number:
		i64, err := n.Int64()
		if err != nil {
			return nil
		}
		i := int(i64)
		return &i
	default:
		return nil
	}
}
