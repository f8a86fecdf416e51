package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"github.com/iishyfishyy/vibematch/internal/catalog"
	"github.com/iishyfishyy/vibematch/internal/config"
	"github.com/iishyfishyy/vibematch/internal/history"
	"github.com/iishyfishyy/vibematch/internal/search"
	"github.com/iishyfishyy/vibematch/internal/ui"
)

func runQueries(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, config.FlagTopK, config.FlagWorkers, config.FlagResults)
	if err != nil {
		ui.ShowError(err.Error())
		return err
	}
	defer a.Close()

	if err := a.initEmbedder(); err != nil {
		ui.ShowError(err.Error())
		return err
	}
	a.initCache(noCache)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	c, err := a.buildCatalog(ctx)
	if err != nil {
		ui.ShowError(err.Error())
		return err
	}

	svc := search.NewService(a.embedder, c, search.WithTimeout(time.Duration(a.cfg.Search.TimeoutSeconds)*time.Second))

	queries := args
	if len(queries) == 0 {
		queries = demoQueries
	}

	var recorder *history.History
	if a.cfg.Results.Enabled && !noRecord {
		recorder = history.New(a.cfg.Results.Path)
	}

	var last *search.QueryResult
	failed := 0
	for _, q := range queries {
		result, err := svc.Search(ctx, q, a.cfg.Search.TopK)
		if err != nil {
			failed++
			a.log.Error("query failed", "query", q, "err", err)
			ui.ShowError(fmt.Sprintf("Query %q failed: %v", q, err))
			continue
		}

		ui.PrintResult(os.Stdout, result)

		top, ok := result.Top()
		a.log.Info("query completed",
			"id", result.ID,
			"query", q,
			"elapsed", fmt.Sprintf("%.2fs", result.ElapsedSeconds()),
			"top", top.Name,
			"score", top.Score,
			"matches", len(result.Matches))
		if !ok {
			a.log.Warn("query returned no matches", "query", q)
		}

		if recorder != nil {
			if err := recorder.Append(result); err != nil {
				a.log.Error("failed to record results", "path", recorder.Path(), "err", err)
				ui.ShowWarning(fmt.Sprintf("Failed to record results: %v", err))
			}
		}
		last = result
	}

	if copyTop && last != nil {
		if top, ok := last.Top(); ok {
			if err := clipboard.WriteAll(top.Name); err != nil {
				ui.ShowError(fmt.Sprintf("Failed to copy to clipboard: %v", err))
			} else {
				ui.ShowSuccess(fmt.Sprintf("Copied %q to clipboard", top.Name))
			}
		}
	}

	a.log.Info("vibematch finished", "queries", len(queries), "failed", failed)

	if failed == len(queries) {
		return fmt.Errorf("all %d queries failed", failed)
	}
	return nil
}

// buildCatalog loads the configured items and embeds them, reusing cached vectors
func (a *app) buildCatalog(ctx context.Context) (*catalog.Catalog, error) {
	inputs, err := catalog.Load(a.cfg.Catalog.Path)
	if err != nil {
		if len(inputs) == 0 {
			a.log.Error("failed to load catalog", "path", a.cfg.Catalog.Path, "err", err)
			return nil, err
		}
		a.log.Warn("some catalog files could not be parsed", "err", err)
		ui.ShowWarning(err.Error())
	}

	start := time.Now()
	c, skipped := catalog.Build(ctx, a.embedder, inputs,
		catalog.WithWorkers(a.cfg.Search.Workers),
		catalog.WithCache(a.cache))

	for _, s := range skipped {
		a.log.Warn("skipped catalog item", "index", s.Index, "name", s.Name, "err", s.Err)
	}
	a.log.Info("catalog built",
		"items", c.Len(),
		"skipped", len(skipped),
		"dimensions", c.Dimensions(),
		"elapsed", time.Since(start).Round(time.Millisecond))

	if len(skipped) > 0 {
		ui.ShowWarning(fmt.Sprintf("%d of %d items could not be embedded and were skipped", len(skipped), len(inputs)))
	}

	if a.store != nil && len(skipped) < len(inputs) {
		if err := a.store.UpdateIndexTime(); err != nil {
			a.log.Warn("failed to record index time", "err", err)
		}
	}

	return c, nil
}
