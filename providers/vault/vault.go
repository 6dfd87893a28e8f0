// Package vault fetches the cipher key secret from HashiCorp Vault KV v2,
// so the raw key material never lives in deployment manifests.
package vault

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/hashicorp/vault/api"

	"github.com/carewise/medcrypt"
)

// DefaultSecretPath is the KV v2 path the key secret is read from when the
// caller does not override it.
const DefaultSecretPath = "secret/data/medcrypt/key"

// Client wraps a configured Vault API client.
type Client struct {
	api *api.Client
}

// NewClient creates a Vault client from environment variables.
//
// Environment variables:
//   - VAULT_ADDR: server address (required)
//   - VAULT_NAMESPACE: namespace for HCP Vault (optional)
//   - VAULT_TOKEN: direct token auth (optional)
//   - VAULT_ROLE_ID / VAULT_SECRET_ID: AppRole auth (optional)
//
// Token auth takes priority over AppRole when both are configured.
func NewClient() (*Client, error) {
	config := api.DefaultConfig()
	if addr := os.Getenv("VAULT_ADDR"); addr != "" {
		config.Address = addr
	}
	if config.Address == "" {
		return nil, fmt.Errorf("%w: VAULT_ADDR environment variable is required", medcrypt.ErrInvalidConfiguration)
	}
	config.HttpClient.Transport = &http.Transport{Proxy: http.ProxyFromEnvironment}

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	if namespace := os.Getenv("VAULT_NAMESPACE"); namespace != "" {
		client.SetNamespace(namespace)
	}

	if token := os.Getenv("VAULT_TOKEN"); token != "" {
		client.SetToken(token)
		return &Client{api: client}, nil
	}

	roleID := os.Getenv("VAULT_ROLE_ID")
	secretID := os.Getenv("VAULT_SECRET_ID")
	if roleID == "" || secretID == "" {
		return nil, fmt.Errorf("%w: either VAULT_TOKEN or VAULT_ROLE_ID and VAULT_SECRET_ID must be set", medcrypt.ErrInvalidConfiguration)
	}
	secret, err := client.Logical().Write("auth/approle/login", map[string]any{
		"role_id":   roleID,
		"secret_id": secretID,
	})
	if err != nil {
		return nil, fmt.Errorf("AppRole authentication failed: %w", err)
	}
	if secret == nil || secret.Auth == nil {
		return nil, fmt.Errorf("AppRole authentication returned no token")
	}
	client.SetToken(secret.Auth.ClientToken)
	return &Client{api: client}, nil
}

// KeySecret reads the raw key secret stored at a KV v2 path. The secret is
// expected under the "value" key of the KV data payload.
func (c *Client) KeySecret(ctx context.Context, path string) (string, error) {
	if path == "" {
		path = DefaultSecretPath
	}
	secret, err := c.api.Logical().ReadWithContext(ctx, path)
	if err != nil {
		return "", fmt.Errorf("failed to read key secret from Vault: %w", err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("no secret found at %q", path)
	}

	// KV v2 nests the payload under "data".
	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		data = secret.Data
	}
	value, ok := data["value"].(string)
	if !ok || value == "" {
		return "", fmt.Errorf("secret at %q has no string \"value\" field", path)
	}
	return value, nil
}

// LoadConfig builds a medcrypt Config whose key secret comes from Vault.
// KDF settings still come from the environment.
func LoadConfig(ctx context.Context, path string) (medcrypt.Config, error) {
	client, err := NewClient()
	if err != nil {
		return medcrypt.Config{}, err
	}
	secret, err := client.KeySecret(ctx, path)
	if err != nil {
		return medcrypt.Config{}, err
	}
	cfg := medcrypt.Config{
		KeySecret:  secret,
		KDF:        os.Getenv(medcrypt.EnvKDF),
		PBKDF2Salt: os.Getenv(medcrypt.EnvPBKDF2Salt),
	}
	if err := cfg.Validate(); err != nil {
		return medcrypt.Config{}, err
	}
	return cfg, nil
}
