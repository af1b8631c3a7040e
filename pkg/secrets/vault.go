package secrets

import (
	"github.com/hashicorp/vault/api"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// VaultConfig holds configuration for connecting to HashiCorp Vault
type VaultConfig struct {
	Address   string `yaml:"address"`
	Token     string `yaml:"token"`
	Path      string `yaml:"path"`
	Namespace string `yaml:"namespace,omitempty"`
}

// Validate checks if the VaultConfig has all required fields set
func (v VaultConfig) Validate() error {
	if v.Address == "" {
		return errors.New("Vault address is required")
	}
	if v.Token == "" {
		return errors.New("Vault token is required")
	}
	if v.Path == "" {
		return errors.New("Vault path is required")
	}
	return nil
}

// CreateClient creates and configures a Vault API client from this config.
func (v VaultConfig) CreateClient() (*api.Client, error) {
	if err := v.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid Vault configuration")
	}

	cfg := api.DefaultConfig()
	cfg.Address = v.Address

	client, err := api.NewClient(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Vault client")
	}

	client.SetToken(v.Token)
	if v.Namespace != "" {
		client.SetNamespace(v.Namespace)
	}
	return client, nil
}

// logicalReader is the subset of *api.Logical used by VaultResolver.
type logicalReader interface {
	Read(path string) (*api.Secret, error)
}

// VaultResolver retrieves secrets from a single Vault path. KV v1 and KV v2
// engines are both supported.
//
//	password: ${vault:DATABASE_PASSWORD}
type VaultResolver struct {
	logical logicalReader
	path    string
}

// NewVaultResolver creates a resolver reading keys from path
// (e.g. "secret/data/kernel").
func NewVaultResolver(client *api.Client, path string) *VaultResolver {
	return &VaultResolver{logical: client.Logical(), path: path}
}

// Resolve retrieves key from the configured Vault path
func (v *VaultResolver) Resolve(key string) (string, error) {
	secret, err := v.logical.Read(v.path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read secret from Vault path %q", v.path)
	}
	if secret == nil || secret.Data == nil {
		return "", errors.Errorf("no secret found at Vault path %q", v.path)
	}

	data, err := kvData(secret.Data)
	if err != nil {
		return "", errors.Wrapf(err, "Vault path %q", v.path)
	}

	value, ok := data[key].(string)
	if !ok {
		return "", errors.Errorf("secret %q not found in Vault at path %q", key, v.path)
	}

	log.Debug().
		Str("secret_name", key).
		Str("vault_path", v.path).
		Msg("Retrieved secret from Vault")
	return value, nil
}

// Name returns the resolver name
func (v *VaultResolver) Name() string {
	return "Vault"
}

// kvData unwraps the KV v2 "data" envelope when present.
func kvData(raw map[string]interface{}) (map[string]interface{}, error) {
	nested, present := raw["data"]
	if !present || nested == nil {
		return raw, nil
	}
	data, ok := nested.(map[string]interface{})
	if !ok {
		return nil, errors.New("unexpected data format in KV v2 secret")
	}
	return data, nil
}
