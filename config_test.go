package medcrypt_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carewise/medcrypt"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     medcrypt.Config
		wantErr bool
	}{
		{"valid default", medcrypt.Config{KeySecret: testSecret}, false},
		{"missing secret", medcrypt.Config{}, true},
		{"unknown kdf", medcrypt.Config{KeySecret: testSecret, KDF: "bcrypt"}, true},
		{"pbkdf2 without salt", medcrypt.Config{KeySecret: "passphrase", KDF: medcrypt.KDFPBKDF2}, true},
		{"pbkdf2 bad salt", medcrypt.Config{KeySecret: "passphrase", KDF: medcrypt.KDFPBKDF2, PBKDF2Salt: "!!"}, true},
		{
			"pbkdf2 valid",
			medcrypt.Config{
				KeySecret:  "passphrase",
				KDF:        medcrypt.KDFPBKDF2,
				PBKDF2Salt: base64.StdEncoding.EncodeToString([]byte("salty")),
			},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, medcrypt.IsConfigurationError(err))
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestConfigValidateAppliesIterationDefault(t *testing.T) {
	cfg := medcrypt.Config{
		KeySecret:  "passphrase",
		KDF:        medcrypt.KDFPBKDF2,
		PBKDF2Salt: base64.StdEncoding.EncodeToString([]byte("salty")),
	}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, medcrypt.DefaultPBKDF2Iterations, cfg.PBKDF2Iterations)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv(medcrypt.EnvKeySecret, testSecret)
	t.Setenv(medcrypt.EnvKDF, "")
	t.Setenv(medcrypt.EnvPBKDF2Salt, "")

	cfg, err := medcrypt.LoadConfigFromEnvironment()
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.KeySecret)
}

func TestLoadConfigFromEnvironmentMissingSecret(t *testing.T) {
	t.Setenv(medcrypt.EnvKeySecret, "")

	_, err := medcrypt.LoadConfigFromEnvironment()
	require.Error(t, err)
	assert.True(t, medcrypt.IsConfigurationError(err))
}

func TestLoadConfigFromEnvironmentBadIterations(t *testing.T) {
	t.Setenv(medcrypt.EnvKeySecret, testSecret)
	t.Setenv(medcrypt.EnvPBKDF2Iterations, "lots")

	_, err := medcrypt.LoadConfigFromEnvironment()
	require.Error(t, err)
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "medcrypt.yaml")
	content := "key_secret: " + testSecret + "\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := medcrypt.LoadConfigFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, testSecret, cfg.KeySecret)

	_, err = medcrypt.LoadConfigFromFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNewWithPBKDF2(t *testing.T) {
	cfg := medcrypt.Config{
		KeySecret:        "a passphrase, not key material",
		KDF:              medcrypt.KDFPBKDF2,
		PBKDF2Salt:       base64.StdEncoding.EncodeToString([]byte("clinic-salt")),
		PBKDF2Iterations: 1000,
	}
	cipher, err := medcrypt.New(cfg)
	require.NoError(t, err)

	stored, err := cipher.EncryptJSON("value")
	require.NoError(t, err)

	// A second cipher from the same config decrypts what the first wrote.
	cipher2, err := medcrypt.New(cfg)
	require.NoError(t, err)
	got, err := cipher2.DecryptJSON(stored)
	require.NoError(t, err)
	assert.Equal(t, "value", got)
}
