package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"igcounts/pkg/config"
	"igcounts/pkg/logger"
	"igcounts/pkg/models"
	"igcounts/pkg/roster"
	"igcounts/pkg/scraper"
	"igcounts/pkg/ui"
)

// handlesCmd represents the handles command
var handlesCmd = &cobra.Command{
	Use:   "handles [roster.csv]",
	Short: "Discover profile handles for the names in the roster",
	Long: `Map each roster name to an Instagram handle by searching for it and
taking the first profile link among the results.

The mapping lands in its own checkpoint CSV. Names that resolve to
nothing stay empty and are retried on the next run; names filled on an
earlier run are left alone. The scrape command picks the file up
automatically and uses the handles as a fallback when a search gives no
usable result.`,
	Example: `  # Discover handles for a roster
  igcounts handles roster.csv

  # Write the mapping somewhere specific
  igcounts handles roster.csv --output handles.csv`,
	Args: cobra.MaximumNArgs(1),
	Run:  runHandles,
}

func init() {
	rootCmd.AddCommand(handlesCmd)

	handlesCmd.Flags().StringVarP(&outputFile, "output", "o", "", "handle checkpoint CSV (default from config)")
	handlesCmd.Flags().StringVar(&providerName, "provider", "", "search provider (duckduckgo, google, ddg-html)")
	handlesCmd.Flags().BoolVar(&headless, "headless", false, "run the browser without a visible window")
	handlesCmd.Flags().StringVar(&remoteChrome, "remote", "", "WebSocket URL of an already running Chrome")
	handlesCmd.Flags().StringVar(&queryTmpl, "query", "", "search query template, %s receives the name")
}

func runHandles(cmd *cobra.Command, args []string) {
	cfg := loadHarvestConfig()

	rosterPath := cfg.Files.Roster
	if len(args) > 0 {
		rosterPath = args[0]
	}
	handlesPath := cfg.Files.Handles
	if outputFile != "" {
		handlesPath = outputFile
	}

	subjects, err := roster.Load(rosterPath)
	if err != nil {
		ui.PrintError("Failed to load roster", err.Error())
		os.Exit(1)
	}
	ui.PrintInfo("Roster", fmt.Sprintf("%s (%d names)", rosterPath, len(subjects)))
	ui.PrintInfo("Checkpoint", handlesPath)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = runHandlesPass(ctx, cfg, subjects, handlesPath)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			ui.PrintWarning("Interrupted, progress saved", handlesPath)
			os.Exit(1)
		}
		logger.WithError(err).Error("Handle discovery failed")
		ui.PrintError("HANDLE DISCOVERY FAILED", err.Error())
		os.Exit(1)
	}
}

func runHandlesPass(ctx context.Context, cfg *config.Config, subjects []models.Subject, handlesPath string) error {
	provider, cleanup, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	s := scraper.New(cfg, provider)
	return s.DiscoverHandles(ctx, subjects, handlesPath)
}
