package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/hashicorp/vault/api"

	"resumatch/internal/errors"
)

// VaultConfig holds Vault connection configuration
type VaultConfig struct {
	Enabled   bool         `mapstructure:"enabled"`
	Address   string       `mapstructure:"address"`
	Token     string       `mapstructure:"token"`
	TokenFile string       `mapstructure:"tokenFile"`
	Namespace string       `mapstructure:"namespace"`
	Secrets   VaultSecrets `mapstructure:"secrets"`
}

// VaultSecrets are KV v2 paths, e.g. "secret/data/resumatch/openai"
type VaultSecrets struct {
	APIKeys  string `mapstructure:"apiKeys"`  // key "keys": comma-separated server API keys
	AIKey    string `mapstructure:"aiKey"`    // key "api_key": suggestion provider key
	TLSCerts string `mapstructure:"tlsCerts"` // keys "cert", "key", "ca": PEM content
}

// VaultSecret is a secret read from a KV v2 engine
type VaultSecret struct {
	Data    map[string]any
	Version int64
}

// VaultClient wraps the Vault API client
type VaultClient struct {
	client *api.Client
	logger *errors.Logger
}

// NewVaultClient connects to Vault. It returns nil, nil when Vault is disabled.
func NewVaultClient(cfg VaultConfig, logger *errors.Logger) (*VaultClient, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	apiCfg := api.DefaultConfig()
	if cfg.Address != "" {
		apiCfg.Address = cfg.Address
	}
	client, err := api.NewClient(apiCfg)
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeSecretLoadFailed, "failed to create vault client", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	token, err := resolveVaultToken(cfg)
	if err != nil {
		return nil, err
	}
	client.SetToken(token)

	health, err := client.Sys().Health()
	if err != nil {
		return nil, errors.NewConfigError(errors.ErrCodeSecretLoadFailed, "failed to connect to vault", err).
			WithContext("address", apiCfg.Address)
	}
	if logger != nil {
		logger.Info("Connected to Vault",
			"address", apiCfg.Address,
			"version", health.Version,
			"sealed", health.Sealed)
	}

	return &VaultClient{client: client, logger: logger}, nil
}

func resolveVaultToken(cfg VaultConfig) (string, error) {
	token := cfg.Token
	if token == "" && cfg.TokenFile != "" {
		raw, err := os.ReadFile(cfg.TokenFile)
		if err != nil {
			return "", errors.NewConfigError(errors.ErrCodeSecretLoadFailed, "failed to read vault token file", err).
				WithContext("file", cfg.TokenFile)
		}
		token = strings.TrimSpace(string(raw))
	}
	if token == "" {
		return "", errors.NewConfigError(errors.ErrCodeSecretLoadFailed, "vault token is required when vault is enabled", nil)
	}
	return token, nil
}

// GetSecretV2 reads a KV v2 secret
func (vc *VaultClient) GetSecretV2(path string) (*VaultSecret, error) {
	if vc == nil {
		return nil, fmt.Errorf("vault client not initialized")
	}

	secret, err := vc.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from %s: %w", path, err)
	}
	if secret == nil || secret.Data == nil {
		return nil, fmt.Errorf("secret not found at path: %s", path)
	}

	data, ok := secret.Data["data"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'data' field)", path)
	}
	metadata, ok := secret.Data["metadata"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("secret at %s is not in KVv2 format (missing 'metadata' field)", path)
	}
	version, err := parseVersionValue(metadata["version"], path)
	if err != nil {
		return nil, err
	}

	return &VaultSecret{Data: data, Version: version}, nil
}

// parseVersionValue accepts the numeric forms the Vault JSON decoder produces
func parseVersionValue(raw any, path string) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case float64:
		return int64(v), nil
	case interface{ Int64() (int64, error) }: // json.Number
		return v.Int64()
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("could not parse secret version at %s: %w", path, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("unexpected type for version at %s: %T", path, raw)
	}
}

// GetStringSecret returns one string field of a secret
func (vc *VaultClient) GetStringSecret(path, key string) (string, error) {
	secret, err := vc.GetSecretV2(path)
	if err != nil {
		return "", err
	}
	value, ok := secret.Data[key]
	if !ok {
		return "", fmt.Errorf("key '%s' not found in secret %s", key, path)
	}
	str, ok := value.(string)
	if !ok {
		return "", fmt.Errorf("value for key '%s' is not a string in secret %s", key, path)
	}

	if vc.logger != nil {
		vc.logger.Debug("String secret retrieved from Vault", "path", path, "key", key, "masked_value", maskSecret(str))
	}
	return str, nil
}

// GetStringSliceSecret returns a comma-separated field as a trimmed list
func (vc *VaultClient) GetStringSliceSecret(path, key string) ([]string, error) {
	value, err := vc.GetStringSecret(path, key)
	if err != nil {
		return nil, err
	}
	return splitList(value), nil
}

func maskSecret(s string) string {
	if len(s) > 8 {
		return s[:4] + "****" + s[len(s)-4:]
	}
	if s != "" {
		return "****"
	}
	return ""
}

// ApplyVaultSecrets overlays secrets from Vault on the loaded configuration
func ApplyVaultSecrets(cfg *Config, logger *errors.Logger) error {
	client, err := NewVaultClient(cfg.Vault, logger)
	if err != nil || client == nil {
		return err
	}
	return applySecrets(client, cfg, logger)
}

func applySecrets(client *VaultClient, cfg *Config, logger *errors.Logger) error {
	paths := cfg.Vault.Secrets

	if paths.APIKeys != "" {
		keys, err := client.GetStringSliceSecret(paths.APIKeys, "keys")
		if err != nil {
			return errors.NewConfigError(errors.ErrCodeSecretLoadFailed, "failed to load server API keys from vault", err)
		}
		if len(keys) > 0 {
			cfg.Server.APIKeys = keys
		}
	}

	if paths.AIKey != "" {
		key, err := client.GetStringSecret(paths.AIKey, "api_key")
		if err != nil {
			return errors.NewConfigError(errors.ErrCodeSecretLoadFailed, "failed to load AI API key from vault", err)
		}
		if key != "" {
			cfg.AI.APIKey = key
		}
	}

	if paths.TLSCerts != "" {
		secret, err := client.GetSecretV2(paths.TLSCerts)
		if err != nil {
			return errors.NewConfigError(errors.ErrCodeSecretLoadFailed, "failed to load TLS certificates from vault", err)
		}
		loaded := 0
		for key, target := range map[string]*string{
			"cert": &cfg.Server.TLS.CertContent,
			"key":  &cfg.Server.TLS.KeyContent,
			"ca":   &cfg.Server.TLS.CAContent,
		} {
			if content, ok := secret.Data[key].(string); ok && content != "" {
				*target = content
				loaded++
			}
		}
		if loaded > 0 {
			// inline PEM replaces file paths
			cfg.Server.TLS.CertFile, cfg.Server.TLS.KeyFile = "", ""
			if cfg.Server.TLS.CAContent != "" {
				cfg.Server.TLS.CAFile = ""
			}
		}
	}

	if logger != nil {
		logger.Info("Applied secrets from Vault",
			"server_api_keys", len(cfg.Server.APIKeys),
			"ai_key_configured", cfg.AI.APIKey != "")
	}
	return nil
}
