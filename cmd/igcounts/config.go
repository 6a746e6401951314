package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"igcounts/pkg/auth"
	"igcounts/pkg/config"
	"igcounts/pkg/ui"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration files",
	Long: `Manage igcounts configuration files.

Configuration can be loaded from:
  - Command line flags (highest priority)
  - Environment variables
  - Configuration file
  - Default values (lowest priority)`,
}

// initCmd represents the config init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create an example configuration file",
	Long: `Create an example configuration file with all available options.

The file will be created in the current directory as 'igcounts.yaml'
unless a different path is specified with the --config flag.`,
	Run: runConfigInit,
}

// showCmd represents the config show command
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long: `Show the current configuration including values from all sources:
  - Command line flags
  - Environment variables
  - Configuration file
  - Default values

Sensitive values like connection strings will be masked for security.`,
	Run: runConfigShow,
}

// validateCmd represents the config validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	Long: `Validate a configuration file for syntax errors and invalid values.

This command checks:
  - YAML syntax
  - Value types and ranges
  - Search provider and query template
  - Database sync settings`,
	Run: runConfigValidate,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(initCmd)
	configCmd.AddCommand(showCmd)
	configCmd.AddCommand(validateCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) {
	// Determine config file path
	configPath := configFile
	if configPath == "" {
		configPath = "igcounts.yaml"
	}

	// Check if file already exists
	if _, err := os.Stat(configPath); err == nil {
		ui.PrintError("Configuration file already exists", configPath)
		fmt.Println("\nTo overwrite, first remove the existing file:")
		fmt.Printf("  rm %s\n", configPath)
		os.Exit(1)
	}

	// Create example configuration
	exampleConfig := `# igcounts Configuration File
#
# This file contains all available configuration options.
# You can also use environment variables prefixed with IGCOUNTS_
# For example: IGCOUNTS_PROVIDER, IGCOUNTS_MIN_DELAY, IGCOUNTS_TABLE

# Search engine configuration
search:
  # Search provider: duckduckgo, google, ddg-html
  # duckduckgo and google drive a real Chrome window;
  # ddg-html uses plain HTTP requests and needs no browser
  provider: "duckduckgo"

  # Query template; %s is replaced with the subject's name
  query_template: "%s instagram site:instagram.com"

  # Run the browser without a visible window.
  # A visible window gets blocked less and lets you solve
  # challenges by hand when they appear.
  headless: false

  # Page load and result wait timeout in seconds
  navigate_timeout: 15

  # Browser user agent (leave empty to use the default)
  user_agent: ""

# Pacing between subjects
pacing:
  # Random delay between consecutive subjects, in seconds
  min_delay: 1.5
  max_delay: 3.0

  # Cooldown range after an unacknowledged block, in seconds
  cooldown_min: 45
  cooldown_max: 120

  # Pause after the operator clears a block, in seconds
  settle: 2.0

# Default file locations (flags override these per run)
files:
  # Input roster of names, one subject per row
  roster: "roster.csv"

  # Follower counts checkpoint (also the output file)
  counts: "instagram_counts.csv"

  # Discovered handle checkpoint
  handles: "instagram_handles.csv"

# Profile page fallback for counts the snippet did not carry
metadata:
  # Request timeout in seconds
  timeout: 15

  # Delay between retry attempts in seconds
  retry_delay: 2.0

  # Maximum attempts per profile page
  max_attempts: 2

# Database sync configuration
sync:
  # Connection string; usually left empty here and supplied via
  # DATABASE_URL or a stored profile ('igcounts auth set')
  dsn: ""

  # Target table for follower counts
  table: "players"

  # Connection timeout in seconds
  connect_timeout: 10

# Notification preferences
notifications:
  # Master switch
  enabled: true

  # Notify when the search engine blocks the session
  on_block: true

  # Notify when a pass finishes
  on_complete: true

  # Notification type: desktop, terminal, none
  notification_type: "desktop"

# Logging configuration
logging:
  # Log level: debug, info, warn, error
  level: "info"

  # Log format: text, json
  format: "text"

  # Log file path (optional)
  # Leave empty to log to stderr only
  file: ""
`

	// Write configuration file
	if err := os.WriteFile(configPath, []byte(exampleConfig), 0644); err != nil {
		ui.PrintError("Failed to create configuration file", err.Error())
		os.Exit(1)
	}

	ui.PrintSuccess("Configuration file created: " + configPath)
	fmt.Println("\nNext steps:")
	fmt.Println("1. Edit the configuration file to match your setup")
	fmt.Println("2. Run 'igcounts config validate' to check the configuration")
	fmt.Println("3. Start harvesting with 'igcounts scrape roster.csv'")
}

func runConfigShow(cmd *cobra.Command, args []string) {
	// Load configuration
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Failed to load configuration", err.Error())
		os.Exit(1)
	}

	// Create a sanitized version for display
	displayCfg := *cfg

	// Mask the connection string
	if displayCfg.Sync.DSN != "" {
		displayCfg.Sync.DSN = auth.MaskDSN(displayCfg.Sync.DSN)
	}

	// Convert to YAML for display
	data, err := yaml.Marshal(&displayCfg)
	if err != nil {
		ui.PrintError("Failed to format configuration", err.Error())
		os.Exit(1)
	}

	ui.PrintHighlight("Current Configuration")
	fmt.Println()
	fmt.Print(string(data))

	// Show configuration sources
	fmt.Println("\nConfiguration sources (in order of priority):")
	fmt.Println("1. Command line flags")
	fmt.Println("2. Environment variables (IGCOUNTS_*, DATABASE_URL)")
	if configFile != "" {
		fmt.Printf("3. Configuration file: %s\n", configFile)
	} else {
		fmt.Println("3. Configuration file: (not specified)")
	}
	fmt.Println("4. Default values")
}

func runConfigValidate(cmd *cobra.Command, args []string) {
	// Check if config file is specified
	if configFile == "" {
		// Try to find config file in common locations
		possiblePaths := []string{
			"igcounts.yaml",
			"igcounts.yml",
			".igcounts.yaml",
			".igcounts.yml",
			filepath.Join(os.Getenv("HOME"), ".igcounts.yaml"),
			filepath.Join(os.Getenv("HOME"), ".config", "igcounts", "config.yaml"),
		}

		for _, path := range possiblePaths {
			if _, err := os.Stat(path); err == nil {
				configFile = path
				break
			}
		}

		if configFile == "" {
			ui.PrintError("No configuration file found", "Specify a file with --config flag")
			os.Exit(1)
		}
	}

	ui.PrintInfo("Validating configuration", configFile)

	// Try to load and validate configuration
	cfg, err := config.Load(configFile, nil)
	if err != nil {
		ui.PrintError("Configuration validation failed", err.Error())
		os.Exit(1)
	}

	// Perform additional validation checks
	warnings := []string{}
	errors := []string{}

	// Check sync settings
	if cfg.Sync.DSN == "" {
		manager, err := auth.NewManager()
		if err != nil {
			warnings = append(warnings, "no database connection configured (sync needs --dsn, DATABASE_URL, or a stored profile)")
		} else if _, err := manager.RetrieveActive(); err != nil {
			warnings = append(warnings, "no database connection configured (sync needs --dsn, DATABASE_URL, or a stored profile)")
		}
	}

	// Check file paths
	if _, err := os.Stat(cfg.Files.Roster); err != nil {
		warnings = append(warnings, fmt.Sprintf("roster file %s does not exist yet", cfg.Files.Roster))
	}

	// Check logging file path
	if cfg.Logging.File != "" {
		dir := filepath.Dir(cfg.Logging.File)
		if err := os.MkdirAll(dir, 0755); err != nil {
			errors = append(errors, fmt.Sprintf("cannot create log directory: %v", err))
		}
	}

	// Check pacing sanity beyond the hard validation
	if cfg.Pacing.MinDelaySecs < 1.0 {
		warnings = append(warnings, "min_delay below 1 second gets sessions blocked quickly")
	}
	if cfg.Pacing.CooldownMaxSecs < 60 {
		warnings = append(warnings, "cooldown_max below 60 seconds rarely outlasts a block")
	}

	// Display results
	if len(errors) > 0 {
		ui.PrintError("Configuration has errors:", "")
		for _, err := range errors {
			fmt.Printf("  - %s\n", err)
		}
		os.Exit(1)
	}

	if len(warnings) > 0 {
		ui.PrintWarning("Configuration warnings:", "")
		for _, warn := range warnings {
			fmt.Printf("  - %s\n", warn)
		}
		fmt.Println()
	}

	ui.PrintSuccess("Configuration is valid")

	// Show summary
	fmt.Println("\nConfiguration summary:")
	fmt.Printf("  Search provider: %s\n", cfg.Search.Provider)
	fmt.Printf("  Headless: %t\n", cfg.Search.Headless)
	fmt.Printf("  Subject delay: %.1f-%.1f seconds\n", cfg.Pacing.MinDelaySecs, cfg.Pacing.MaxDelaySecs)
	fmt.Printf("  Counts file: %s\n", cfg.Files.Counts)
	fmt.Printf("  Sync table: %s\n", cfg.Sync.Table)
	fmt.Printf("  Log level: %s\n", cfg.Logging.Level)
}
