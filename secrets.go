package medcrypt

// AccountSecrets is the three-tuple persisted per account. The caller must
// store all three fields atomically: a row whose EmailHash does not match its
// EmailEncrypted breaks the login lookup.
type AccountSecrets struct {
	// EmailHash is the deterministic lookup fingerprint, "" when the account
	// has no email. A "" hash cannot enforce per-account email uniqueness, so
	// registration handlers must reject it before persisting.
	EmailHash string

	// EmailEncrypted is a serialized envelope over the plaintext email string.
	EmailEncrypted string

	// ProfileEncrypted is a serialized envelope over the JSON profile.
	ProfileEncrypted string
}

// BuildUserSecrets turns raw patient input into the persisted secrets tuple.
// Used identically at registration, at every profile update and by the bulk
// re-encryption utility; the whole tuple is regenerated each time, there is
// no partial re-encryption.
func (c *Cipher) BuildUserSecrets(f UserFields) (AccountSecrets, error) {
	profile := ComposeUserProfile(f)
	return c.buildSecrets(profile.Email, profile)
}

// BuildProfessionalSecrets turns raw professional input into the secrets tuple.
func (c *Cipher) BuildProfessionalSecrets(f ProfessionalFields) (AccountSecrets, error) {
	profile := ComposeProfessionalProfile(f)
	return c.buildSecrets(profile.Email, profile)
}

// BuildAdminSecrets turns raw admin input into the secrets tuple.
func (c *Cipher) BuildAdminSecrets(f AdminFields) (AccountSecrets, error) {
	profile := ComposeAdminProfile(f)
	return c.buildSecrets(profile.Email, profile)
}

func (c *Cipher) buildSecrets(email *string, profile any) (AccountSecrets, error) {
	plainEmail := ""
	if email != nil {
		plainEmail = *email
	}

	emailEncrypted, err := c.EncryptJSON(plainEmail)
	if err != nil {
		return AccountSecrets{}, err
	}
	profileEncrypted, err := c.EncryptJSON(profile)
	if err != nil {
		return AccountSecrets{}, err
	}

	return AccountSecrets{
		EmailHash:        HashIdentifier(plainEmail),
		EmailEncrypted:   emailEncrypted,
		ProfileEncrypted: profileEncrypted,
	}, nil
}
