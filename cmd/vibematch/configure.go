package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iishyfishyy/vibematch/internal/config"
	"github.com/iishyfishyy/vibematch/internal/embeddings"
	"github.com/iishyfishyy/vibematch/internal/ui"
)

// pinger is implemented by embedders that can check connectivity cheaply
type pinger interface {
	Ping(ctx context.Context) error
}

func runConfigure(cmd *cobra.Command, args []string) error {
	if !ui.IsInteractive() {
		err := fmt.Errorf("configure needs an interactive terminal; edit %s or set VIBEMATCH_* variables instead", config.ConfigFileName)
		ui.ShowError(err.Error())
		return err
	}

	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg == nil {
		ui.ShowInfo("No configuration found. Let's set up vibematch.\n")
		cfg = config.NewDefaultConfig()
	}

	ui.ShowSection("Embedding Provider")
	providerName, err := ui.SelectProvider(cfg.Embedding.Provider)
	if err != nil {
		return err
	}
	if providerName != cfg.Embedding.Provider {
		cfg.Embedding.Model = ""
		cfg.Embedding.BaseURL = ""
		cfg.Embedding.Dimensions = 0
		cfg.Embedding.APIKey = ""
	}
	cfg.Embedding.Provider = providerName

	currentModel := cfg.Embedding.Model
	if currentModel == "" {
		currentModel = config.DefaultModel(providerName)
	}
	modelName, err := ui.PromptInput("Embedding model:", currentModel)
	if err != nil {
		return err
	}
	if modelName == config.DefaultModel(providerName) {
		modelName = ""
	}
	cfg.Embedding.Model = modelName

	apiKey := ""
	if embeddings.RequiresAPIKey(providerName) {
		apiKey, err = configureAPIKey(cfg)
		if err != nil {
			return err
		}
	}

	if apiKey != "" || !embeddings.RequiresAPIKey(providerName) {
		testConnection(cfg, apiKey)
	}

	ui.ShowSection("Catalog")
	catalogFile, err := ui.PromptInput("Catalog file or directory (empty for the built-in catalog):", cfg.Catalog.Path)
	if err != nil {
		return err
	}
	cfg.Catalog.Path = catalogFile

	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	configPath, _ := config.GetConfigPath()
	ui.ShowSuccess(fmt.Sprintf("Configuration saved to %s", configPath))
	ui.ShowInfo("\nYou're all set! Try running: vibematch \"relaxed cozy vibe\"")

	return nil
}

// configureAPIKey asks where the key lives and returns it when available
func configureAPIKey(cfg *config.Config) (string, error) {
	envVar := config.KeyEnvVar(cfg.Embedding.Provider)

	useEnv, err := ui.PromptAPIKeyStorage(envVar)
	if err != nil {
		return "", err
	}

	if useEnv {
		cfg.Embedding.APIKey = ""
		key := os.Getenv(envVar)
		if key == "" {
			ui.ShowWarning(fmt.Sprintf("%s environment variable not set", envVar))
			ui.ShowInfo("Set it in your shell or in a .env file:")
			ui.ShowInfo(fmt.Sprintf("  export %s=...", envVar))
		}
		return key, nil
	}

	key, err := ui.PromptPassword(fmt.Sprintf("Enter %s API key:", cfg.Embedding.Provider))
	if err != nil {
		return "", err
	}
	cfg.Embedding.APIKey = key

	path, _ := config.GetConfigPath()
	ui.ShowWarning(fmt.Sprintf("API key will be saved to %s (0600 perms)", path))
	return key, nil
}

// testConnection reports whether the provider answers; failures are not fatal
func testConnection(cfg *config.Config, apiKey string) {
	emb, err := embeddings.NewEmbedder(cfg.EmbedderConfig(apiKey))
	if err != nil {
		ui.ShowError(err.Error())
		return
	}

	p, ok := emb.(pinger)
	if !ok {
		return
	}

	ui.ShowInfo(fmt.Sprintf("Testing %s...", emb.Name()))
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		ui.ShowError(fmt.Sprintf("Connection test failed: %v", err))
		ui.ShowInfo("The configuration is saved anyway; fix the provider and run a query to retry.")
		return
	}
	ui.ShowSuccess(fmt.Sprintf("%s is working! (%d dimensions)", emb.Name(), emb.Dimensions()))
}
