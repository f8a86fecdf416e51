package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/iishyfishyy/vibematch/internal/config"
	"github.com/iishyfishyy/vibematch/internal/embeddings"
	"github.com/iishyfishyy/vibematch/internal/logger"
	"github.com/iishyfishyy/vibematch/internal/vectorstore"
)

// app carries what every command resolves before doing work
type app struct {
	cfg       *config.Config
	configDir string
	log       *log.Logger
	logFile   *os.File

	embedder embeddings.Embedder
	cache    vectorstore.Cache

	// store is nil when the cache is disabled or fell back to memory
	store *vectorstore.SQLiteStore
}

// newApp loads .env and the layered config, then opens the audit log
func newApp(cmd *cobra.Command, flagKeys ...string) (*app, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	configDir, err := config.GetConfigDir()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create config directory: %w", err)
	}

	v, err := config.InitViper(configDir)
	if err != nil {
		return nil, err
	}
	config.BindRegisteredFlags(v, cmd, config.Flags, append(sharedFlags, flagKeys...))

	cfg, err := config.Resolve(v)
	if err != nil {
		return nil, err
	}
	cfg.ResolvePaths(configDir)

	a := &app{cfg: cfg, configDir: configDir}

	writers := []io.Writer{}
	if f, err := logger.OpenFile(cfg.Log.Path); err == nil {
		a.logFile = f
		writers = append(writers, f)
	} else {
		fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
	}
	if cfg.Log.Debug || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	a.log = logger.New(
		logger.WithWriters(writers...),
		logger.WithDebug(cfg.Log.Debug),
		logger.WithJSON(cfg.Log.JSON),
	)
	a.log.Info("vibematch starting", "version", version, "command", cmd.Name())

	return a, nil
}

// initEmbedder resolves the API key and creates the embedding client
func (a *app) initEmbedder() error {
	key, err := a.cfg.APIKey()
	if err != nil {
		a.log.Error("API key not found", "provider", a.cfg.Embedding.Provider, "err", err)
		return err
	}
	if key != "" {
		a.log.Info("API key loaded", "provider", a.cfg.Embedding.Provider)
	}

	emb, err := embeddings.NewEmbedder(a.cfg.EmbedderConfig(key))
	if err != nil {
		a.log.Error("failed to create embedding client", "err", err)
		return fmt.Errorf("failed to create embedding client: %w", err)
	}
	a.embedder = emb
	a.log.Info("embedding client initialized", "model", emb.Name(), "dimensions", emb.Dimensions())

	return nil
}

// initCache opens the SQLite embedding cache, falling back to memory when it
// cannot be opened. Requires initEmbedder since entries are keyed per model.
func (a *app) initCache(disabled bool) {
	if disabled || !a.cfg.Cache.Enabled {
		a.log.Debug("embedding cache disabled, using memory")
		a.cache = vectorstore.NewMemoryStore()
		return
	}

	store, err := vectorstore.OpenSQLiteStore(a.cfg.Cache.Path, a.embedder.Name())
	if err != nil {
		a.log.Warn("embedding cache unavailable, using memory", "path", a.cfg.Cache.Path, "err", err)
		a.cache = vectorstore.NewMemoryStore()
		return
	}
	if reason := store.ResetReason(); reason != "" {
		a.log.Info("embedding cache reset", "reason", reason)
	}

	a.store = store
	a.cache = store
	a.log.Debug("embedding cache opened", "path", store.Path(), "entries", store.Count())
}

func (a *app) Close() error {
	var errs []error
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	if a.logFile != nil {
		errs = append(errs, a.logFile.Close())
	}
	return errors.Join(errs...)
}
