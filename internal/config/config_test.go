package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"

	"github.com/iishyfishyy/vibematch/internal/embeddings"
	"github.com/iishyfishyy/vibematch/internal/history"
	"github.com/iishyfishyy/vibematch/internal/logger"
)

func setHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestSaveLoadExists(t *testing.T) {
	home := setHome(t)

	exists, err := Exists()
	if err != nil {
		t.Fatalf("Exists() error = %v", err)
	}
	if exists {
		t.Fatal("Exists() = true before Save")
	}

	cfg, err := Load()
	if err != nil || cfg != nil {
		t.Fatalf("Load() = %v, %v; want nil, nil", cfg, err)
	}

	want := NewDefaultConfig()
	want.Embedding.Provider = embeddings.ProviderOllama
	want.Search.TopK = 5
	if err := Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(filepath.Join(home, ConfigDirName, ConfigFileName))
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Embedding.Provider != embeddings.ProviderOllama || got.Search.TopK != 5 {
		t.Errorf("Load() = %+v, want provider ollama and top_k 5", got)
	}
	if !got.Results.Enabled {
		t.Error("fields absent from the file should keep their defaults")
	}
}

func TestLoadMalformed(t *testing.T) {
	home := setHome(t)
	dir := filepath.Join(home, ConfigDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Fatal("Load() expected parse error")
	}
}

func TestViperDefaults(t *testing.T) {
	v, err := InitViper(t.TempDir())
	if err != nil {
		t.Fatalf("InitViper() error = %v", err)
	}
	cfg, err := Resolve(v)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	if cfg.Embedding.Provider != embeddings.ProviderOpenRouter {
		t.Errorf("provider = %q, want openrouter", cfg.Embedding.Provider)
	}
	if cfg.Search.TopK != 3 || cfg.Search.Workers != 4 {
		t.Errorf("search = %+v, want top_k 3 workers 4", cfg.Search)
	}
	if !cfg.Cache.Enabled || cfg.Results.Path != ResultsFile {
		t.Errorf("cache/results defaults wrong: %+v %+v", cfg.Cache, cfg.Results)
	}
}

func TestViperPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := `{"search": {"top_k": 5, "workers": 2}, "embedding": {"provider": "openai"}}`
	if err := os.WriteFile(filepath.Join(dir, ConfigFileName), []byte(file), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("VIBEMATCH_SEARCH_WORKERS", "7")
	t.Setenv("VIBEMATCH_EMBEDDING_PROVIDER", "ollama")

	v, err := InitViper(dir)
	if err != nil {
		t.Fatalf("InitViper() error = %v", err)
	}

	var topK int
	var provider string
	cmd := &cobra.Command{Use: "test"}
	AddIntFlag(cmd.Flags(), Flags, FlagTopK, &topK)
	AddStringFlag(cmd.Flags(), Flags, FlagProvider, &provider)
	if err := cmd.Flags().Parse([]string{"--provider", "openrouter"}); err != nil {
		t.Fatal(err)
	}
	BindRegisteredFlags(v, cmd, Flags, []string{FlagTopK, FlagProvider})

	cfg, err := Resolve(v)
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	// file beats default, env beats file, flag beats env
	if cfg.Search.TopK != 5 {
		t.Errorf("top_k = %d, want 5 from file", cfg.Search.TopK)
	}
	if cfg.Search.Workers != 7 {
		t.Errorf("workers = %d, want 7 from env", cfg.Search.Workers)
	}
	if cfg.Embedding.Provider != embeddings.ProviderOpenRouter {
		t.Errorf("provider = %q, want openrouter from flag", cfg.Embedding.Provider)
	}
}

func TestFlagDefaults(t *testing.T) {
	var topK int
	var noCache bool
	cmd := &cobra.Command{Use: "test"}
	AddIntFlag(cmd.Flags(), Flags, FlagTopK, &topK)
	AddBoolFlag(cmd.Flags(), Flags, FlagNoCache, &noCache)

	f := cmd.Flags().Lookup("top-k")
	if f == nil || f.Shorthand != "k" || f.DefValue != "3" {
		t.Fatalf("top-k flag = %+v, want shorthand k default 3", f)
	}
	if noCache {
		t.Error("no-cache should default to false")
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("OPENROUTER_API_KEY=from-dotenv\nVIBEMATCH_SEARCH_TOP_K=9\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENROUTER_API_KEY", "")
	os.Unsetenv("OPENROUTER_API_KEY")
	t.Setenv("VIBEMATCH_SEARCH_TOP_K", "4")

	if err := LoadDotEnv(path); err != nil {
		t.Fatalf("LoadDotEnv() error = %v", err)
	}

	if got := os.Getenv("OPENROUTER_API_KEY"); got != "from-dotenv" {
		t.Errorf("OPENROUTER_API_KEY = %q, want from-dotenv", got)
	}
	if got := os.Getenv("VIBEMATCH_SEARCH_TOP_K"); got != "4" {
		t.Errorf("existing variable overwritten: %q", got)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing .env should be ignored, got %v", err)
	}
}

func TestAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		provider string
		env      map[string]string
		stored   string
		want     string
		wantErr  bool
	}{
		{name: "openrouter env", provider: "openrouter", env: map[string]string{"OPENROUTER_API_KEY": "or-key"}, want: "or-key"},
		{name: "openai env", provider: "openai", env: map[string]string{"OPENAI_API_KEY": "oa-key"}, want: "oa-key"},
		{name: "provider env wins over stored", provider: "openai", env: map[string]string{"OPENAI_API_KEY": "oa-key"}, stored: "stored", want: "oa-key"},
		{name: "stored fallback", provider: "openrouter", stored: "stored", want: "stored"},
		{name: "wrong provider variable", provider: "openai", env: map[string]string{"OPENROUTER_API_KEY": "or-key"}, wantErr: true},
		{name: "ollama needs none", provider: "ollama", want: ""},
		{name: "missing", provider: "openrouter", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OPENROUTER_API_KEY", "")
			t.Setenv("OPENAI_API_KEY", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg := NewDefaultConfig()
			cfg.Embedding.Provider = tt.provider
			cfg.Embedding.APIKey = tt.stored

			got, err := cfg.APIKey()
			if tt.wantErr {
				if !errors.Is(err, ErrMissingAPIKey) {
					t.Fatalf("APIKey() error = %v, want ErrMissingAPIKey", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("APIKey() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("APIKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmbeddingKeyFromEnvPrefix(t *testing.T) {
	t.Setenv("OPENROUTER_API_KEY", "")
	t.Setenv("VIBEMATCH_EMBEDDING_API_KEY", "generic")

	v, err := InitViper(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	cfg, err := Resolve(v)
	if err != nil {
		t.Fatal(err)
	}

	key, err := cfg.APIKey()
	if err != nil || key != "generic" {
		t.Errorf("APIKey() = %q, %v; want generic", key, err)
	}
}

func TestEmbedderConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	ec := cfg.EmbedderConfig("k")
	if ec.Model != "openai/text-embedding-3-small" || ec.APIKey != "k" || ec.Provider != "openrouter" {
		t.Errorf("EmbedderConfig() = %+v", ec)
	}

	cfg.Embedding.Provider = embeddings.ProviderOllama
	if got := cfg.EmbedderConfig("").Model; got != embeddings.DefaultOllamaModel {
		t.Errorf("ollama model = %q", got)
	}

	cfg.Embedding.Model = "custom"
	if got := cfg.EmbedderConfig("").Model; got != "custom" {
		t.Errorf("explicit model = %q", got)
	}
}

func TestResolvePaths(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.ResolvePaths("/cfg")
	if cfg.Cache.Path != filepath.Join("/cfg", CacheFileName) || cfg.Log.Path != filepath.Join("/cfg", LogFileName) {
		t.Errorf("ResolvePaths() = %q, %q", cfg.Cache.Path, cfg.Log.Path)
	}

	cfg.Cache.Path = "/elsewhere.db"
	cfg.ResolvePaths("/cfg")
	if cfg.Cache.Path != "/elsewhere.db" {
		t.Error("ResolvePaths() overwrote an explicit path")
	}
}

func TestDefaultFileNamesMatchWriters(t *testing.T) {
	if ResultsFile != history.HistoryFileName {
		t.Errorf("ResultsFile = %q, want %q", ResultsFile, history.HistoryFileName)
	}
	if LogFileName != logger.LogFileName {
		t.Errorf("LogFileName = %q, want %q", LogFileName, logger.LogFileName)
	}
}
