package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iishyfishyy/vibematch/internal/catalog"
	"github.com/iishyfishyy/vibematch/internal/config"
	"github.com/iishyfishyy/vibematch/internal/history"
	"github.com/iishyfishyy/vibematch/internal/ui"
)

func runListItems(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		ui.ShowError(err.Error())
		return err
	}
	defer a.Close()

	inputs, err := catalog.Load(a.cfg.Catalog.Path)
	if err != nil {
		if len(inputs) == 0 {
			ui.ShowError(err.Error())
			return err
		}
		ui.ShowWarning(err.Error())
	}

	source := a.cfg.Catalog.Path
	if source == "" {
		source = "built-in catalog"
	}
	ui.ShowSection(fmt.Sprintf("Catalog (%d items, %s)", len(inputs), source))

	items := make([]catalog.Item, len(inputs))
	for i, in := range inputs {
		items[i] = catalog.Item{Name: in.Name, Description: in.Description, Tags: in.Tags}
	}
	ui.PrintItems(os.Stdout, items)

	// Index status needs the model name, which needs a working provider config
	if a.cfg.Cache.Enabled && !noCache {
		if err := a.initEmbedder(); err == nil {
			a.initCache(false)
			if a.store != nil {
				if t := a.store.IndexTime(); !t.IsZero() {
					fmt.Printf("\nIndexed %s with %s (%d cached vectors)\n", ui.FormatAgo(t), a.embedder.Name(), a.store.Count())
				} else {
					ui.ShowInfo("\nNot indexed yet. Run 'vibematch index' to embed the catalog.")
				}
			}
		}
	}

	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd, config.FlagResults)
	if err != nil {
		ui.ShowError(err.Error())
		return err
	}
	defer a.Close()

	rows, err := history.Load(a.cfg.Results.Path)
	if err != nil {
		ui.ShowError(err.Error())
		return err
	}
	if len(rows) == 0 {
		ui.ShowInfo(fmt.Sprintf("No results recorded in %s yet", a.cfg.Results.Path))
		return nil
	}

	ui.PrintHistory(os.Stdout, rows)
	fmt.Printf("\n%d matches recorded in %s\n", len(rows), a.cfg.Results.Path)
	return nil
}
