package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/iishyfishyy/vibematch/internal/config"
	"github.com/iishyfishyy/vibematch/internal/ui"
)

func runIndex(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, config.FlagWorkers)
	if err != nil {
		ui.ShowError(err.Error())
		return err
	}
	defer a.Close()

	if noCache || !a.cfg.Cache.Enabled {
		err := fmt.Errorf("indexing needs the embedding cache; remove --no-cache or enable cache in %s", config.ConfigFileName)
		ui.ShowError(err.Error())
		return err
	}

	if err := a.initEmbedder(); err != nil {
		ui.ShowError(err.Error())
		return err
	}
	a.initCache(false)
	if a.store == nil {
		err := fmt.Errorf("embedding cache could not be opened at %s", a.cfg.Cache.Path)
		ui.ShowError(err.Error())
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if forceReindex {
		ui.ShowInfo("Clearing embedding cache...")
		if err := a.store.Clear(ctx); err != nil {
			a.log.Error("failed to clear cache", "err", err)
			ui.ShowError(err.Error())
			return err
		}
		a.log.Info("embedding cache cleared")
	}

	ui.ShowInfo(fmt.Sprintf("Indexing with %s...", a.embedder.Name()))
	c, err := a.buildCatalog(ctx)
	if err != nil {
		ui.ShowError(err.Error())
		return err
	}

	if c.Len() == 0 {
		err := fmt.Errorf("no items could be embedded")
		ui.ShowError(err.Error())
		return err
	}

	ui.ShowSuccess(fmt.Sprintf("Indexed %d items (%d cached vectors in %s)", c.Len(), a.store.Count(), a.store.Path()))
	return nil
}
