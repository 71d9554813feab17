package config

import (
	"fmt"
	"os"
	"strings"
)

// Default models per provider
const (
	DefaultOpenAIModel = "gpt-4o-mini"
	DefaultGeminiModel = "gemini-2.0-flash"
)

func (c *Config) applyFallbacks() {
	c.applyAIFallbacks()
	c.applyServerAPIKeyFallbacks()
	c.applyTLSDefaults()
	c.applyObservabilityDefaults()
}

// applyAIFallbacks fills the model and API key from provider-specific defaults
func (c *Config) applyAIFallbacks() {
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))

	if c.AI.Model == "" {
		switch c.AI.Provider {
		case ProviderGemini:
			c.AI.Model = DefaultGeminiModel
		default:
			c.AI.Model = DefaultOpenAIModel
		}
	}

	if c.AI.APIKey == "" {
		switch c.AI.Provider {
		case ProviderGemini:
			c.AI.APIKey = os.Getenv("GEMINI_API_KEY")
		default:
			c.AI.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	}
}

// applyServerAPIKeyFallbacks accepts RESUMATCH_SERVER_APIKEYS as a comma-separated list
func (c *Config) applyServerAPIKeyFallbacks() {
	if len(c.Server.APIKeys) == 1 && strings.Contains(c.Server.APIKeys[0], ",") {
		c.Server.APIKeys = splitList(c.Server.APIKeys[0])
	}
	if len(c.Server.APIKeys) == 0 {
		if env := os.Getenv(EnvPrefix + "_SERVER_APIKEYS"); env != "" {
			c.Server.APIKeys = splitList(env)
		}
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) applyTLSDefaults() {
	if c.Server.TLS.Mode == "" {
		c.Server.TLS.Mode = "disabled"
	}
	if c.Server.TLS.Mode == "mutual" && c.Server.TLS.ClientAuthPolicy == "" {
		c.Server.TLS.ClientAuthPolicy = "require"
	}
	if c.Server.TLS.MinVersion == "" && c.Server.TLS.Mode != "disabled" {
		c.Server.TLS.MinVersion = "1.2"
	}
}

func (c *Config) applyObservabilityDefaults() {
	if c.Observability.ServiceInstance == "" {
		c.Observability.ServiceInstance = generateServiceInstanceID(c.Observability.ServiceName)
	}
}

func generateServiceInstanceID(serviceName string) string {
	if hostname, err := os.Hostname(); err == nil {
		return fmt.Sprintf("%s-%s", serviceName, hostname)
	}
	return fmt.Sprintf("%s-1", serviceName)
}
