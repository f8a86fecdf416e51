package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/iishyfishyy/vibematch/internal/config"
)

var (
	// version is set by goreleaser at build time
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// CLI flags
	topK         int
	workers      int
	catalogPath  string
	provider     string
	model        string
	resultsPath  string
	debug        bool
	logJSON      bool
	noCache      bool
	noRecord     bool
	copyTop      bool
	forceReindex bool
)

// demoQueries run when no query is given
var demoQueries = []string{
	"energetic urban chic",
	"relaxed cozy vibe",
	"professional office look",
}

// Flags every command binds into the config precedence chain
var sharedFlags = []string{
	config.FlagCatalog,
	config.FlagProvider,
	config.FlagModel,
	config.FlagDebug,
	config.FlagLogFormat,
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vibematch [query...]",
		Short: "Match free-text vibes to catalog items",
		Long: `vibematch embeds a catalog of item descriptions and ranks them against
each query by cosine similarity. Every argument is one query. With no
arguments a set of demo queries is run.`,
		Version:       version + " (" + commit + ", " + date + ")",
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runQueries,
	}

	pf := rootCmd.PersistentFlags()
	config.AddStringFlag(pf, config.Flags, config.FlagCatalog, &catalogPath)
	config.AddStringFlag(pf, config.Flags, config.FlagProvider, &provider)
	config.AddStringFlag(pf, config.Flags, config.FlagModel, &model)
	config.AddBoolFlag(pf, config.Flags, config.FlagDebug, &debug)
	config.AddBoolFlag(pf, config.Flags, config.FlagLogFormat, &logJSON)
	config.AddBoolFlag(pf, config.Flags, config.FlagNoCache, &noCache)

	f := rootCmd.Flags()
	config.AddIntFlag(f, config.Flags, config.FlagTopK, &topK)
	config.AddIntFlag(f, config.Flags, config.FlagWorkers, &workers)
	config.AddStringFlag(f, config.Flags, config.FlagResults, &resultsPath)
	config.AddBoolFlag(f, config.Flags, config.FlagNoRecord, &noRecord)
	f.BoolVar(&copyTop, "copy", false, "Copy the top match of the last query to the clipboard")

	configureCmd := &cobra.Command{
		Use:   "configure",
		Short: "Choose the embedding provider, model and API key",
		Args:  cobra.NoArgs,
		RunE:  runConfigure,
	}

	indexCmd := &cobra.Command{
		Use:   "index",
		Short: "Embed the catalog and store the vectors in the cache",
		Args:  cobra.NoArgs,
		RunE:  runIndex,
	}
	indexCmd.Flags().BoolVarP(&forceReindex, "force", "f", false, "Clear the cache before indexing")
	config.AddIntFlag(indexCmd.Flags(), config.Flags, config.FlagWorkers, &workers)

	listItemsCmd := &cobra.Command{
		Use:   "list-items",
		Short: "List catalog items",
		Args:  cobra.NoArgs,
		RunE:  runListItems,
	}

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded query matches",
		Args:  cobra.NoArgs,
		RunE:  runHistory,
	}
	config.AddStringFlag(historyCmd.Flags(), config.Flags, config.FlagResults, &resultsPath)

	rootCmd.AddCommand(configureCmd)
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(listItemsCmd)
	rootCmd.AddCommand(historyCmd)

	return rootCmd
}
