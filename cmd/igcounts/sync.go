package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"igcounts/pkg/auth"
	"igcounts/pkg/config"
	"igcounts/pkg/logger"
	"igcounts/pkg/models"
	"igcounts/pkg/storage"
	"igcounts/pkg/ui"
)

var (
	// Sync command flags
	syncDSN     string
	syncTable   string
	syncProfile string
	syncDryRun  bool
)

// syncCmd represents the sync command
var syncCmd = &cobra.Command{
	Use:   "sync <stats.csv>",
	Short: "Merge a stats CSV into the Postgres roster table",
	Long: `Merge an externally produced per-handle stats CSV into your Postgres
roster table.

Rows are matched to records by normalized handle. Only rows whose scrape
succeeded and whose followers value is present touch their record; every
admitted row gets its check timestamp and status written, stats fields
are written only when the CSV holds a parsable value, and each record is
updated in its own transaction. Running the same file twice is safe.

The connection string comes from --dsn, a stored connection profile
(see 'igcounts auth'), or the DATABASE_URL environment variable.`,
	Example: `  # Merge using the active stored profile
  igcounts sync stats.csv

  # Merge into a specific table with an explicit connection string
  igcounts sync stats.csv --table players --dsn postgres://...

  # Use a named stored profile
  igcounts sync stats.csv --profile neon

  # See what would change without writing
  igcounts sync stats.csv --dry-run`,
	Args: cobra.ExactArgs(1),
	Run:  runSync,
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVar(&syncDSN, "dsn", "", "Postgres connection string")
	syncCmd.Flags().StringVar(&syncTable, "table", "", "target table name (default from config)")
	syncCmd.Flags().StringVarP(&syncProfile, "profile", "p", "", "use a specific stored connection profile")
	syncCmd.Flags().BoolVar(&syncDryRun, "dry-run", false, "report what would change without writing")
}

func runSync(cmd *cobra.Command, args []string) {
	flags := globalFlags()
	if syncDSN != "" {
		flags["dsn"] = syncDSN
	}
	if syncTable != "" {
		flags["table"] = syncTable
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

	dsn, table := resolveConnection(cfg)

	ui.PrintInfo("Database", auth.MaskDSN(dsn))
	ui.PrintInfo("Table", table)
	if syncDryRun {
		ui.PrintHighlight("[DRY RUN, NOTHING WILL BE WRITTEN]")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = runSyncPass(ctx, cfg, dsn, table, args[0])
	if err != nil {
		if errors.Is(err, context.Canceled) {
			ui.PrintWarning("Interrupted, committed rows are kept")
			os.Exit(1)
		}
		logger.WithError(err).Error("Sync failed")
		ui.PrintError("SYNC FAILED", err.Error())
		os.Exit(1)
	}
}

// runSyncPass owns the store connection for one merge, so the deferred
// close runs before any exit
func runSyncPass(ctx context.Context, cfg *config.Config, dsn, table, candidatesPath string) error {
	store, err := storage.NewPostgresStore(ctx, dsn, table, cfg.Sync.ConnectTimeout())
	if err != nil {
		return err
	}
	defer store.Close()

	candidates, err := storage.ReadCandidates(candidatesPath)
	if err != nil {
		return err
	}
	ui.PrintInfo("Stats file", fmt.Sprintf("%s (%d rows)", candidatesPath, len(candidates)))

	// The connection may have sat idle while the file was read and
	// validated; serverless Postgres closes such connections silently
	if err := store.Ping(ctx); err != nil {
		logger.WithError(err).Warn("Connection dropped, reconnecting")
		if err := store.Reconnect(ctx); err != nil {
			return err
		}
	}

	engine := storage.NewEngine(store, syncDryRun)
	totals, err := engine.Run(ctx, candidates)
	if err != nil {
		return err
	}

	printSyncTotals(totals)
	return nil
}

func printSyncTotals(totals models.SyncTotals) {
	verb := "Updated"
	if syncDryRun {
		verb = "Would update"
	}

	// The skipped figure folds in per-row write failures, so the three
	// lines together account for every row in the file.
	fmt.Println()
	ui.PrintHighlight("[SYNC COMPLETE]")
	ui.PrintInfo(verb, fmt.Sprintf("%d records", totals.Updated))
	ui.PrintInfo("Skipped", fmt.Sprintf("%d failed or empty rows", totals.Skipped+totals.Errors))
	ui.PrintInfo("No match", fmt.Sprintf("%d handles not in the table", totals.NoMatch))
	if totals.Errors > 0 {
		ui.PrintWarning("Write errors", fmt.Sprintf("%d of the skipped rows failed in the database", totals.Errors))
	}
}

// resolveConnection picks the DSN and table for the run. A named profile
// wins, then an explicit or environment connection string, then the
// active stored profile.
func resolveConnection(cfg *config.Config) (string, string) {
	dsn := cfg.Sync.DSN
	table := cfg.Sync.Table

	if syncProfile == "" && dsn != "" {
		return dsn, table
	}

	manager, err := auth.NewManager()
	if err != nil {
		ui.PrintError("Failed to open profile store", err.Error())
		os.Exit(1)
	}

	var profile *auth.Profile
	if syncProfile != "" {
		profile, err = manager.Retrieve(syncProfile)
		if err != nil {
			ui.PrintError("Profile not found", syncProfile)
			ui.PrintInfo("Stored profiles", "Use 'igcounts auth list' to see them")
			os.Exit(1)
		}
	} else {
		profile, err = manager.RetrieveActive()
		if err != nil {
			logger.Error("No database connection configured")
			ui.PrintError("No database connection configured", "")
			fmt.Println("\nStore a connection profile:")
			fmt.Println("  igcounts auth set")
			fmt.Println("\nOr supply the connection string directly:")
			fmt.Println("  igcounts sync stats.csv --dsn postgres://...")
			fmt.Println("  export DATABASE_URL=postgres://...")
			auth.ShowQuickDSNGuide()
			os.Exit(1)
		}
	}

	logger.WithField("profile", profile.Name).Info("Using stored connection profile")
	ui.PrintInfo("Profile", profile.Name)

	if syncTable == "" && profile.Table != "" {
		table = profile.Table
	}
	return profile.DSN, table
}
