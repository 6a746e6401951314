package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"

	"igcounts/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile    string
	logLevel      string
	quiet         bool
	notifications bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "igcounts",
	Short: "Harvest public Instagram follow counts for a roster of names",
	Long: `igcounts walks a roster of names through a web search engine, pulls
following and follower counts from the results, and keeps everything in
resumable CSV checkpoints.

Features:
  - Search-result snippet extraction with a profile page fallback
  - Operator-assisted recovery when the search engine blocks the session
  - Checkpoint CSVs saved after every subject, safe to interrupt
  - Handle discovery for rosters without known profile names
  - Postgres sync that merges externally produced stats into your table
  - Encrypted storage for database connection profiles`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet || logLevel == "error" {
			ui.SetQuietMode(true)
		}

		// Don't show logo for certain commands
		if cmd.Name() != "version" && cmd.Name() != "help" && cmd.Name() != "completion" {
			ui.PrintLogo()
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is .igcounts.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&notifications, "notifications", true, "enable desktop notifications")

	// Version template
	rootCmd.SetVersionTemplate(`igcounts {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// globalFlags collects the persistent flags every command feeds into the
// configuration loader
func globalFlags() map[string]interface{} {
	flags := make(map[string]interface{})
	if logLevel != "" {
		flags["log-level"] = logLevel
	}
	if !notifications {
		flags["notifications"] = false
	}
	return flags
}
