package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// EnvPrefix namespaces environment overrides, e.g. VIBEMATCH_SEARCH_TOP_K
const EnvPrefix = "VIBEMATCH"

// InitViper creates a *viper.Viper layered as, highest first:
//  1. CLI flags (once bound via BindRegisteredFlags)
//  2. VIBEMATCH_* environment variables
//  3. config.json in configDir
//  4. NewDefaultConfig()
func InitViper(configDir string) (*viper.Viper, error) {
	v := viper.New()
	setViperDefaults(v)

	configPath := filepath.Join(configDir, ConfigFileName)
	v.SetConfigFile(configPath)
	v.SetConfigType("json")

	if _, err := os.Stat(configPath); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v, nil
}

// Resolve decodes the layered settings into a Config
func Resolve(v *viper.Viper) (*Config, error) {
	cfg := NewDefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from path into the process environment.
// Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := gotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

// setViperDefaults registers every key so AutomaticEnv can reach it during Unmarshal
func setViperDefaults(v *viper.Viper) {
	d := NewDefaultConfig()

	v.SetDefault("embedding.provider", d.Embedding.Provider)
	v.SetDefault("embedding.model", d.Embedding.Model)
	v.SetDefault("embedding.base_url", d.Embedding.BaseURL)
	v.SetDefault("embedding.dimensions", d.Embedding.Dimensions)
	v.SetDefault("embedding.api_key", d.Embedding.APIKey)

	v.SetDefault("search.top_k", d.Search.TopK)
	v.SetDefault("search.workers", d.Search.Workers)
	v.SetDefault("search.timeout_seconds", d.Search.TimeoutSeconds)

	v.SetDefault("catalog.path", d.Catalog.Path)

	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.path", d.Cache.Path)

	v.SetDefault("results.enabled", d.Results.Enabled)
	v.SetDefault("results.path", d.Results.Path)

	v.SetDefault("log.path", d.Log.Path)
	v.SetDefault("log.debug", d.Log.Debug)
	v.SetDefault("log.json", d.Log.JSON)
}
