package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate runs the test from an empty directory with no provider keys in the environment
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("RESUMATCH_AI_APIKEY", "")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, "gpt-4o-mini", cfg.AI.Model)
	assert.Equal(t, 300, cfg.AI.MaxTokens)
	assert.InDelta(t, 0.7, cfg.AI.Temperature, 1e-6)
	assert.Empty(t, cfg.AI.APIKey, "missing key must not fail loading")
	assert.False(t, cfg.HasAIKey())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "disabled", cfg.Server.TLS.Mode)
	assert.Equal(t, "text", cfg.App.DefaultFormat)
	assert.NotEmpty(t, cfg.Observability.ServiceInstance)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("RESUMATCH_AI_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("RESUMATCH_SERVER_PORT", "9999")
	t.Setenv("RESUMATCH_SERVER_APIKEYS", "a, b,,c")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, DefaultGeminiModel, cfg.AI.Model)
	assert.Equal(t, "gem-key", cfg.AI.APIKey)
	assert.Equal(t, "9999", cfg.Server.Port)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Server.APIKeys)
}

func TestLoadDotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("OPENAI_API_KEY=from-dotenv\n"), 0600))
	// godotenv does not override variables that are already set, even when empty
	require.NoError(t, os.Unsetenv("OPENAI_API_KEY"))
	t.Cleanup(func() { os.Unsetenv("OPENAI_API_KEY") })

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.AI.APIKey)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	promptPath := filepath.Join(dir, "prompt.txt")
	require.NoError(t, os.WriteFile(promptPath, []byte("Role %[1]s, resume %[2]s"), 0600))

	configPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
ai:
  model: gpt-4.1-mini
  maxTokens: 500
  promptFile: `+promptPath+`
app:
  catalogFile: roles.yaml
  logLevel: warn
`), 0600))

	cfg, err := Load(LoadOptions{ConfigFile: configPath})
	require.NoError(t, err)

	assert.Equal(t, "gpt-4.1-mini", cfg.AI.Model)
	assert.Equal(t, 500, cfg.AI.MaxTokens)
	assert.Equal(t, "roles.yaml", cfg.App.CatalogFile)
	assert.Equal(t, "Role %[1]s, resume %[2]s", cfg.AI.PromptTemplate("fallback"))
}

func TestLoadMissingExplicitConfigFile(t *testing.T) {
	dir := isolate(t)
	_, err := Load(LoadOptions{ConfigFile: filepath.Join(dir, "nope.yaml")})
	assert.Error(t, err)
}

func TestLoadRejectsMissingPromptFile(t *testing.T) {
	dir := isolate(t)
	t.Setenv("RESUMATCH_AI_PROMPTFILE", filepath.Join(dir, "missing.txt"))

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadRejectsPromptFileWithoutVerbs(t *testing.T) {
	dir := isolate(t)
	promptPath := filepath.Join(dir, "prompt.txt")
	require.NoError(t, os.WriteFile(promptPath, []byte("Improve this resume for %[1]s."), 0600))
	t.Setenv("RESUMATCH_AI_PROMPTFILE", promptPath)

	_, err := LoadConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing %[2]s")
}

func TestValidatePromptTemplate(t *testing.T) {
	tests := []struct {
		name     string
		template string
		wantErr  bool
	}{
		{"both verbs", "Role %[1]s\nResume %[2]s", false},
		{"reordered", "Resume %[2]s for %[1]s", false},
		{"no verbs", "Give me three tips.", true},
		{"plain verbs", "Role %s resume %s", true},
		{"role only", "Role %[1]s", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validatePromptTemplate(tt.template)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPromptTemplatePriority(t *testing.T) {
	ai := AIConfig{}
	assert.Equal(t, "default", ai.PromptTemplate("default"))

	ai.Prompt = "inline"
	assert.Equal(t, "inline", ai.PromptTemplate("default"))

	ai.promptFromFile = "file"
	assert.Equal(t, "file", ai.PromptTemplate("default"))
}

func validConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider:    ProviderOpenAI,
			Timeout:     1,
			MaxTokens:   300,
			Temperature: 0.7,
		},
		Server: ServerConfig{Port: "8080", MaxRequestSize: 1024, TLS: TLSConfig{Mode: "disabled"}},
		App:    AppConfig{DefaultFormat: "text", SupportedFormats: []string{"text"}, MaxFileSize: 1024},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"unknown provider", func(c *Config) { c.AI.Provider = "llama" }, "unsupported AI provider"},
		{"zero timeout", func(c *Config) { c.AI.Timeout = 0 }, "timeout"},
		{"zero max tokens", func(c *Config) { c.AI.MaxTokens = 0 }, "maxTokens"},
		{"temperature", func(c *Config) { c.AI.Temperature = 3 }, "temperature"},
		{"breaker threshold", func(c *Config) {
			c.AI.CircuitBreaker = CircuitBreakerConfig{Enabled: true, FailureThreshold: 1.5}
		}, "failureThreshold"},
		{"no port", func(c *Config) { c.Server.Port = "" }, "port"},
		{"default format", func(c *Config) { c.App.DefaultFormat = "pdf" }, "default format"},
		{"rate limit", func(c *Config) { c.Server.RateLimit = RateLimitConfig{Enabled: true} }, "rate limit"},
		{"tls", func(c *Config) { c.Server.TLS.Mode = "server" }, "TLS"},
		{"inline prompt without verbs", func(c *Config) { c.AI.Prompt = "Three tips please" }, "ai.prompt"},
		{"inline prompt", func(c *Config) { c.AI.Prompt = "%[1]s: %[2]s" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestValidateTLSConfig(t *testing.T) {
	tests := []struct {
		name    string
		tls     TLSConfig
		wantErr string
	}{
		{"disabled", TLSConfig{Mode: "disabled"}, ""},
		{"bad mode", TLSConfig{Mode: "always"}, "invalid TLS mode"},
		{"bad version", TLSConfig{Mode: "disabled", MinVersion: "1.0"}, "minVersion"},
		{"server files", TLSConfig{Mode: "server", CertFile: "c.pem", KeyFile: "k.pem"}, ""},
		{"server content", TLSConfig{Mode: "server", CertContent: "c", KeyContent: "k"}, ""},
		{"server missing key", TLSConfig{Mode: "server", CertFile: "c.pem"}, "private key is required"},
		{"duplicate cert", TLSConfig{Mode: "server", CertFile: "c.pem", CertContent: "c", KeyFile: "k.pem"}, "both a file and content"},
		{"mutual ok", TLSConfig{Mode: "mutual", CertFile: "c", KeyFile: "k", CAFile: "ca", ClientAuthPolicy: "verify"}, ""},
		{"mutual no ca", TLSConfig{Mode: "mutual", CertFile: "c", KeyFile: "k"}, "CA certificate is required"},
		{"mutual bad policy", TLSConfig{Mode: "mutual", CertFile: "c", KeyFile: "k", CAFile: "ca", ClientAuthPolicy: "maybe"}, "clientAuthPolicy"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{TLS: tt.tls}}
			err := cfg.ValidateTLSConfig()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestUsesCertFiles(t *testing.T) {
	assert.True(t, TLSConfig{Mode: "server", CertFile: "c", KeyFile: "k"}.UsesCertFiles())
	assert.False(t, TLSConfig{Mode: "server", CertContent: "c", KeyContent: "k"}.UsesCertFiles())
	assert.False(t, TLSConfig{Mode: "disabled", CertFile: "c", KeyFile: "k"}.UsesCertFiles())
}
