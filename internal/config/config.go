package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iishyfishyy/vibematch/internal/embeddings"
	"github.com/iishyfishyy/vibematch/internal/history"
	"github.com/iishyfishyy/vibematch/internal/logger"
)

const (
	ConfigDirName  = ".vibematch"
	ConfigFileName = "config.json"
	CacheFileName  = "embeddings.db"
	LogFileName    = logger.LogFileName
	ResultsFile    = history.HistoryFileName
)

// ErrMissingAPIKey is returned when the configured provider needs a key and none was found
var ErrMissingAPIKey = errors.New("missing API key")

// Config represents the application configuration
type Config struct {
	Embedding EmbeddingConfig `json:"embedding" mapstructure:"embedding"`
	Search    SearchConfig    `json:"search" mapstructure:"search"`
	Catalog   CatalogConfig   `json:"catalog" mapstructure:"catalog"`
	Cache     CacheConfig     `json:"cache" mapstructure:"cache"`
	Results   ResultsConfig   `json:"results" mapstructure:"results"`
	Log       LogConfig       `json:"log" mapstructure:"log"`
}

// EmbeddingConfig selects the embedding provider
type EmbeddingConfig struct {
	Provider   string `json:"provider" mapstructure:"provider"`
	Model      string `json:"model,omitempty" mapstructure:"model"`
	BaseURL    string `json:"base_url,omitempty" mapstructure:"base_url"`
	Dimensions int    `json:"dimensions,omitempty" mapstructure:"dimensions"`

	// APIKey is only persisted when the user chose to store it during configure
	APIKey string `json:"api_key,omitempty" mapstructure:"api_key"`
}

type SearchConfig struct {
	TopK           int `json:"top_k" mapstructure:"top_k"`
	Workers        int `json:"workers" mapstructure:"workers"`
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds"`
}

type CatalogConfig struct {
	// Path is a YAML/TOML/JSON file or a directory of Markdown items. Empty uses the built-in catalog.
	Path string `json:"path,omitempty" mapstructure:"path"`
}

type CacheConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path,omitempty" mapstructure:"path"`
}

type ResultsConfig struct {
	Enabled bool   `json:"enabled" mapstructure:"enabled"`
	Path    string `json:"path" mapstructure:"path"`
}

type LogConfig struct {
	Path  string `json:"path,omitempty" mapstructure:"path"`
	Debug bool   `json:"debug" mapstructure:"debug"`
	JSON  bool   `json:"json" mapstructure:"json"`
}

// NewDefaultConfig returns the configuration used when nothing else is set
func NewDefaultConfig() *Config {
	return &Config{
		Embedding: EmbeddingConfig{
			Provider: embeddings.ProviderOpenRouter,
		},
		Search: SearchConfig{
			TopK:           3,
			Workers:        4,
			TimeoutSeconds: 30,
		},
		Cache: CacheConfig{
			Enabled: true,
		},
		Results: ResultsConfig{
			Enabled: true,
			Path:    ResultsFile,
		},
	}
}

// DefaultModel returns the model used for a provider when none is configured
func DefaultModel(provider string) string {
	switch provider {
	case embeddings.ProviderOpenRouter:
		return "openai/" + embeddings.DefaultOpenAIModel
	case embeddings.ProviderOllama:
		return embeddings.DefaultOllamaModel
	default:
		return embeddings.DefaultOpenAIModel
	}
}

// EmbedderConfig converts the embedding section into an embeddings.Config
func (c *Config) EmbedderConfig(apiKey string) embeddings.Config {
	model := c.Embedding.Model
	if model == "" {
		model = DefaultModel(c.Embedding.Provider)
	}
	return embeddings.Config{
		Provider:   c.Embedding.Provider,
		BaseURL:    c.Embedding.BaseURL,
		Model:      model,
		APIKey:     apiKey,
		Dimensions: c.Embedding.Dimensions,
	}
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ConfigDirName), nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// Load reads the configuration file from disk without applying env or flags.
// A missing file yields (nil, nil).
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := NewDefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save writes the configuration to disk
func Save(cfg *Config) error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// 0600: the file may hold an API key
	if err := os.WriteFile(filepath.Join(configDir, ConfigFileName), data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Exists checks if a configuration file exists
func Exists() (bool, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, nil
}

// ResolvePaths fills empty cache and log paths with locations inside configDir
func (c *Config) ResolvePaths(configDir string) {
	if c.Cache.Path == "" {
		c.Cache.Path = filepath.Join(configDir, CacheFileName)
	}
	if c.Log.Path == "" {
		c.Log.Path = filepath.Join(configDir, LogFileName)
	}
}
