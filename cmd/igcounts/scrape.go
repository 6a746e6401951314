package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"igcounts/pkg/browser"
	"igcounts/pkg/checkpoint"
	"igcounts/pkg/config"
	"igcounts/pkg/logger"
	"igcounts/pkg/models"
	"igcounts/pkg/roster"
	"igcounts/pkg/scraper"
	"igcounts/pkg/search"
	"igcounts/pkg/ui"
)

var (
	// Harvest command flags, shared by scrape and fill
	outputFile   string
	handlesFile  string
	providerName string
	headless     bool
	remoteChrome string
	queryTmpl    string
)

// scrapeCmd represents the scrape command
var scrapeCmd = &cobra.Command{
	Use:   "scrape [roster.csv]",
	Short: "Harvest follow counts for every name in the roster",
	Long: `Harvest following and follower counts for each name in a roster CSV.

Each name is searched on the configured engine, counts are read from the
result snippet, and the profile page metadata fills in whatever the
snippet missed. Results land in a checkpoint CSV that is rewritten after
every subject, so an interrupted run resumes where it stopped.

When the search engine blocks the session, the run pauses and asks you to
solve the challenge in the browser window before continuing.

A handle CSV produced by 'igcounts handles' is joined in automatically
when it exists, giving names without a usable search result a direct
profile page to try.`,
	Example: `  # Harvest counts using default settings
  igcounts scrape roster.csv

  # Write the checkpoint somewhere specific
  igcounts scrape roster.csv --output counts.csv

  # Use the static DuckDuckGo HTML endpoint instead of a browser
  igcounts scrape roster.csv --provider ddg-html

  # Drive an already running Chrome
  igcounts scrape roster.csv --remote ws://127.0.0.1:9222/...`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runHarvest(args, scraper.Resume{})
	},
}

// fillCmd represents the fill command
var fillCmd = &cobra.Command{
	Use:   "fill [roster.csv]",
	Short: "Revisit checkpoint rows where either count is missing",
	Long: `Revisit only the checkpoint rows where the following or follower count
is still missing.

A plain scrape resumes after the last fully filled row; fill instead
walks every gap in the file, wherever it sits. Run it after a first pass
to mop up the subjects whose search results gave nothing.`,
	Example: `  # Fill gaps left by an earlier scrape
  igcounts fill roster.csv

  # Fill gaps in a specific checkpoint
  igcounts fill roster.csv --output counts.csv`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runHarvest(args, scraper.Gaps{})
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	rootCmd.AddCommand(fillCmd)

	for _, cmd := range []*cobra.Command{scrapeCmd, fillCmd} {
		cmd.Flags().StringVarP(&outputFile, "output", "o", "", "counts checkpoint CSV (default from config)")
		cmd.Flags().StringVar(&handlesFile, "handles", "", "handle CSV to join into the roster")
		cmd.Flags().StringVar(&providerName, "provider", "", "search provider (duckduckgo, google, ddg-html)")
		cmd.Flags().BoolVar(&headless, "headless", false, "run the browser without a visible window")
		cmd.Flags().StringVar(&remoteChrome, "remote", "", "WebSocket URL of an already running Chrome")
		cmd.Flags().StringVar(&queryTmpl, "query", "", "search query template, %s receives the name")
	}
}

func runHarvest(args []string, selector scraper.Selector) {
	cfg := loadHarvestConfig()

	rosterPath := cfg.Files.Roster
	if len(args) > 0 {
		rosterPath = args[0]
	}
	countsPath := cfg.Files.Counts
	if outputFile != "" {
		countsPath = outputFile
	}

	subjects, err := roster.Load(rosterPath)
	if err != nil {
		ui.PrintError("Failed to load roster", err.Error())
		os.Exit(1)
	}
	ui.PrintInfo("Roster", fmt.Sprintf("%s (%d names)", rosterPath, len(subjects)))
	ui.PrintInfo("Checkpoint", countsPath)

	if path := resolveHandlesFile(cfg); path != "" {
		if err := attachHandles(subjects, path); err != nil {
			ui.PrintError("Failed to load handles", err.Error())
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = runCountsPass(ctx, cfg, subjects, countsPath, selector)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			ui.PrintWarning("Interrupted, progress saved", countsPath)
			os.Exit(1)
		}
		logger.WithError(err).Error("Harvest failed")
		ui.PrintError("HARVEST FAILED", err.Error())
		os.Exit(1)
	}
}

// runCountsPass owns the browser session for one pass, so the deferred
// cleanup runs before any exit
func runCountsPass(ctx context.Context, cfg *config.Config, subjects []models.Subject, countsPath string, selector scraper.Selector) error {
	provider, cleanup, err := buildProvider(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	s := scraper.New(cfg, provider)
	return s.Run(ctx, subjects, countsPath, selector)
}

// loadHarvestConfig merges the harvest flags into the configuration and
// brings the logger up
func loadHarvestConfig() *config.Config {
	flags := globalFlags()
	if providerName != "" {
		flags["provider"] = providerName
	}
	if headless {
		flags["headless"] = true
	}
	if queryTmpl != "" {
		flags["query"] = queryTmpl
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		ui.PrintError("Failed to initialize logging", err.Error())
		os.Exit(1)
	}
	logger.WithField("version", version).Info("igcounts starting")

	return cfg
}

// buildProvider assembles the configured search provider, launching a
// browser session when it needs one. The cleanup shuts the session down.
func buildProvider(cfg *config.Config) (search.Provider, func(), error) {
	log := logger.GetLogger()

	if strings.EqualFold(cfg.Search.Provider, "ddg-html") {
		provider, err := search.NewProvider(cfg.Search.Provider, nil, cfg.Search.UserAgent, cfg.Search.NavigateTimeout(), log)
		if err != nil {
			return nil, nil, err
		}
		return provider, func() {}, nil
	}

	session, err := browser.NewSession(browser.Options{
		Headless:        cfg.Search.Headless,
		RemoteURL:       remoteChrome,
		NavigateTimeout: cfg.Search.NavigateTimeout(),
		Logger:          log,
	})
	if err != nil {
		return nil, nil, err
	}

	provider, err := search.NewProvider(cfg.Search.Provider, session, cfg.Search.UserAgent, cfg.Search.NavigateTimeout(), log)
	if err != nil {
		_ = session.Close()
		return nil, nil, err
	}
	return provider, func() { _ = session.Close() }, nil
}

// resolveHandlesFile returns the handle CSV to join, if any. The flag wins;
// otherwise the configured file is used when it exists on disk.
func resolveHandlesFile(cfg *config.Config) string {
	if handlesFile != "" {
		return handlesFile
	}
	if cfg.Files.Handles != "" {
		if _, err := os.Stat(cfg.Files.Handles); err == nil {
			return cfg.Files.Handles
		}
	}
	return ""
}

// attachHandles joins discovered handles into the roster by name
func attachHandles(subjects []models.Subject, path string) error {
	rows, err := checkpoint.NewHandleManager(path).Load(subjects)
	if err != nil {
		return err
	}

	joined := 0
	for i := range subjects {
		if rows[i].Filled() {
			subjects[i].Handle = strings.TrimPrefix(rows[i].Handle, "@")
			joined++
		}
	}

	logger.WithFields(map[string]interface{}{
		"path":   path,
		"joined": joined,
	}).Info("Joined handles into roster")
	ui.PrintInfo("Handles", fmt.Sprintf("%s (%d joined)", path, joined))
	return nil
}
