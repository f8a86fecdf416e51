package config

import (
	"fmt"
	"os"

	"github.com/iishyfishyy/vibematch/internal/embeddings"
)

// providerKeyEnv names the conventional variable each hosted provider documents
var providerKeyEnv = map[string]string{
	embeddings.ProviderOpenRouter: "OPENROUTER_API_KEY",
	embeddings.ProviderOpenAI:     "OPENAI_API_KEY",
}

// KeyEnvVar returns the provider's conventional API key variable, or "" if it has none
func KeyEnvVar(provider string) string {
	return providerKeyEnv[provider]
}

// APIKey finds the credential for the configured provider. The provider's own
// variable is checked first, then embedding.api_key (VIBEMATCH_EMBEDDING_API_KEY
// or the config file). Providers without authentication return "".
func (c *Config) APIKey() (string, error) {
	provider := c.Embedding.Provider
	if !embeddings.RequiresAPIKey(provider) {
		return "", nil
	}

	if name := KeyEnvVar(provider); name != "" {
		if key := os.Getenv(name); key != "" {
			return key, nil
		}
	}
	if c.Embedding.APIKey != "" {
		return c.Embedding.APIKey, nil
	}

	return "", fmt.Errorf("%w: set %s or VIBEMATCH_EMBEDDING_API_KEY, or run 'vibematch configure'", ErrMissingAPIKey, KeyEnvVar(provider))
}
