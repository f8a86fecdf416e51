package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Flag ties a CLI flag to the viper key it overrides
type Flag struct {
	Name        string
	Shorthand   string
	ViperKey    string
	Description string
}

// FlagSet maps registry keys to flag definitions
type FlagSet map[string]Flag

// Flag registry keys
const (
	FlagTopK      = "top-k"
	FlagCatalog   = "catalog"
	FlagProvider  = "provider"
	FlagModel     = "model"
	FlagWorkers   = "workers"
	FlagDebug     = "debug"
	FlagNoCache   = "no-cache"
	FlagNoRecord  = "no-record"
	FlagResults   = "results"
	FlagLogFormat = "log-json"
)

// Flags is the registry shared by every command
var Flags = FlagSet{
	FlagTopK:      {Name: "top-k", Shorthand: "k", ViperKey: "search.top_k", Description: "Number of matches to return per query"},
	FlagCatalog:   {Name: "catalog", Shorthand: "c", ViperKey: "catalog.path", Description: "Catalog file (yaml, toml, json) or directory of markdown items"},
	FlagProvider:  {Name: "provider", ViperKey: "embedding.provider", Description: "Embedding provider (openrouter, openai, ollama)"},
	FlagModel:     {Name: "model", ViperKey: "embedding.model", Description: "Embedding model"},
	FlagWorkers:   {Name: "workers", ViperKey: "search.workers", Description: "Concurrent embedding requests while building the catalog"},
	FlagDebug:     {Name: "debug", Shorthand: "d", ViperKey: "log.debug", Description: "Mirror debug logs to stderr"},
	FlagNoCache:   {Name: "no-cache", ViperKey: "", Description: "Do not read or write the embedding cache"},
	FlagNoRecord:  {Name: "no-record", ViperKey: "", Description: "Do not append matches to the results file"},
	FlagResults:   {Name: "results", ViperKey: "results.path", Description: "CSV file that query matches are appended to"},
	FlagLogFormat: {Name: "log-json", ViperKey: "log.json", Description: "Write the audit log as JSON lines"},
}

// AddStringFlag registers a string flag on flags (cmd.Flags() or
// cmd.PersistentFlags()) whose default comes from NewDefaultConfig
func AddStringFlag(flags *pflag.FlagSet, fs FlagSet, key string, target *string) {
	def, ok := fs[key]
	if !ok {
		return
	}
	flags.StringVarP(target, def.Name, def.Shorthand, defaults().GetString(def.ViperKey), def.Description)
}

// AddIntFlag registers an int flag whose default comes from NewDefaultConfig
func AddIntFlag(flags *pflag.FlagSet, fs FlagSet, key string, target *int) {
	def, ok := fs[key]
	if !ok {
		return
	}
	flags.IntVarP(target, def.Name, def.Shorthand, defaults().GetInt(def.ViperKey), def.Description)
}

// AddBoolFlag registers a bool flag. Flags without a viper key default to false.
func AddBoolFlag(flags *pflag.FlagSet, fs FlagSet, key string, target *bool) {
	def, ok := fs[key]
	if !ok {
		return
	}
	var defaultVal bool
	if def.ViperKey != "" {
		defaultVal = defaults().GetBool(def.ViperKey)
	}
	flags.BoolVarP(target, def.Name, def.Shorthand, defaultVal, def.Description)
}

// BindRegisteredFlags connects flags to the precedence chain. Only flags the
// user actually set override env and file values.
func BindRegisteredFlags(v *viper.Viper, cmd *cobra.Command, fs FlagSet, keys []string) {
	for _, key := range keys {
		def, ok := fs[key]
		if !ok || def.ViperKey == "" {
			continue
		}

		f := cmd.Flags().Lookup(def.Name)
		if f == nil {
			continue
		}

		_ = v.BindPFlag(def.ViperKey, f)
	}
}

func defaults() *viper.Viper {
	v := viper.New()
	setViperDefaults(v)
	return v
}
