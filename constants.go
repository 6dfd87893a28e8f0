package medcrypt

const (
	// EnvKeySecret names the environment variable holding the raw key secret.
	EnvKeySecret = "MEDCRYPT_KEY_SECRET"
	// EnvKDF names the environment variable selecting the key derivation mode.
	EnvKDF = "MEDCRYPT_KDF"
	// EnvPBKDF2Salt names the environment variable holding the PBKDF2 salt.
	EnvPBKDF2Salt = "MEDCRYPT_PBKDF2_SALT"
	// EnvPBKDF2Iterations names the environment variable overriding the
	// PBKDF2 iteration count.
	EnvPBKDF2Iterations = "MEDCRYPT_PBKDF2_ITERATIONS"

	// KDFDefault selects the hex/base64/SHA-256 derivation chain.
	KDFDefault = ""
	// KDFPBKDF2 selects PBKDF2-SHA256 stretching for passphrase secrets.
	KDFPBKDF2 = "pbkdf2"

	// DefaultPBKDF2Iterations is the iteration count used when none is
	// configured. Matches current OWASP guidance for PBKDF2-SHA256.
	DefaultPBKDF2Iterations = 210000
)
