package medcrypt

import (
	"encoding/base64"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the settings needed to construct a Cipher.
//
// It contains only data, no behavior. Configuration can come from any source
// (environment variables, a YAML file, code) and is passed explicitly to New.
type Config struct {
	// KeySecret is the raw secret the working key is derived from.
	//
	// A 64-char hex string or 44-char base64 string decoding to 32 bytes is
	// used as the key directly. Anything else degrades to SHA-256 of the raw
	// secret (logged as a warning) unless KDF selects PBKDF2.
	KeySecret string `yaml:"key_secret"`

	// KDF selects the key derivation mode: "" for the default
	// hex/base64/digest chain, or "pbkdf2" to stretch a passphrase secret.
	KDF string `yaml:"kdf"`

	// PBKDF2Salt is the base64-encoded salt for the pbkdf2 mode. Required
	// when KDF is "pbkdf2"; must stay stable for the life of the data.
	PBKDF2Salt string `yaml:"pbkdf2_salt"`

	// PBKDF2Iterations overrides the iteration count for the pbkdf2 mode.
	// Zero means DefaultPBKDF2Iterations.
	PBKDF2Iterations int `yaml:"pbkdf2_iterations"`
}

// Validate checks the configuration and applies defaults.
func (c *Config) Validate() error {
	if c.KeySecret == "" {
		return fmt.Errorf("%w: KeySecret is required", ErrInvalidConfiguration)
	}
	switch c.KDF {
	case KDFDefault:
	case KDFPBKDF2:
		if c.PBKDF2Salt == "" {
			return fmt.Errorf("%w: PBKDF2Salt is required when KDF is %q", ErrInvalidConfiguration, KDFPBKDF2)
		}
		if _, err := base64.StdEncoding.DecodeString(c.PBKDF2Salt); err != nil {
			return fmt.Errorf("%w: PBKDF2Salt is not valid base64: %v", ErrInvalidConfiguration, err)
		}
	default:
		return fmt.Errorf("%w: unknown KDF %q", ErrInvalidConfiguration, c.KDF)
	}
	if c.PBKDF2Iterations < 0 {
		return fmt.Errorf("%w: PBKDF2Iterations must not be negative", ErrInvalidConfiguration)
	}
	if c.PBKDF2Iterations == 0 {
		c.PBKDF2Iterations = DefaultPBKDF2Iterations
	}
	return nil
}

// LoadConfigFromEnvironment reads configuration from environment variables,
// following the 12-factor convention the deployment uses.
//
// Required:
//   - MEDCRYPT_KEY_SECRET: raw key secret
//
// Optional:
//   - MEDCRYPT_KDF: "" or "pbkdf2"
//   - MEDCRYPT_PBKDF2_SALT: base64 salt, required for pbkdf2
//   - MEDCRYPT_PBKDF2_ITERATIONS: iteration count override
func LoadConfigFromEnvironment() (Config, error) {
	secret := os.Getenv(EnvKeySecret)
	if secret == "" {
		return Config{}, fmt.Errorf("%w: %s environment variable is required", ErrInvalidConfiguration, EnvKeySecret)
	}

	cfg := Config{
		KeySecret:  secret,
		KDF:        os.Getenv(EnvKDF),
		PBKDF2Salt: os.Getenv(EnvPBKDF2Salt),
	}
	if raw := os.Getenv(EnvPBKDF2Iterations); raw != "" {
		iterations, err := strconv.Atoi(raw)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s must be an integer: %v", ErrInvalidConfiguration, EnvPBKDF2Iterations, err)
		}
		cfg.PBKDF2Iterations = iterations
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfigFromFile reads configuration from a YAML file.
func LoadConfigFromFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: failed to parse config file: %v", ErrInvalidConfiguration, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
