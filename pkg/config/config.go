package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration options for the counts harvester
type Config struct {
	// Search engine driving
	Search SearchConfig `yaml:"search" json:"search"`

	// Delays between subjects and after blocks
	Pacing PacingConfig `yaml:"pacing" json:"pacing"`

	// Default file locations
	Files FilesConfig `yaml:"files" json:"files"`

	// Profile metadata fallback
	Metadata MetadataConfig `yaml:"metadata" json:"metadata"`

	// Database sync
	Sync SyncConfig `yaml:"sync" json:"sync"`

	// Notification preferences
	Notifications NotificationConfig `yaml:"notifications" json:"notifications"`

	// Logging configuration
	Logging LoggingConfig `yaml:"logging" json:"logging"`
}

// SearchConfig holds search engine configuration
type SearchConfig struct {
	// Provider is one of "duckduckgo", "google", "ddg-html"
	Provider string `yaml:"provider" json:"provider"`
	// QueryTemplate receives the subject name via %s
	QueryTemplate string `yaml:"query_template" json:"query_template"`
	Headless      bool   `yaml:"headless" json:"headless"`
	// NavigateTimeoutSecs bounds page loads and result waits
	NavigateTimeoutSecs int    `yaml:"navigate_timeout" json:"navigate_timeout"`
	UserAgent           string `yaml:"user_agent" json:"user_agent"`
}

// NavigateTimeout returns the page load bound as a duration
func (s SearchConfig) NavigateTimeout() time.Duration {
	return time.Duration(s.NavigateTimeoutSecs) * time.Second
}

// PacingConfig holds the delays that keep the search session unblocked.
// Values are seconds; the sub-second defaults are why they are floats.
type PacingConfig struct {
	MinDelaySecs    float64 `yaml:"min_delay" json:"min_delay"`
	MaxDelaySecs    float64 `yaml:"max_delay" json:"max_delay"`
	CooldownMinSecs float64 `yaml:"cooldown_min" json:"cooldown_min"`
	CooldownMaxSecs float64 `yaml:"cooldown_max" json:"cooldown_max"`
	SettleSecs      float64 `yaml:"settle" json:"settle"`
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func (p PacingConfig) MinDelay() time.Duration    { return seconds(p.MinDelaySecs) }
func (p PacingConfig) MaxDelay() time.Duration    { return seconds(p.MaxDelaySecs) }
func (p PacingConfig) CooldownMin() time.Duration { return seconds(p.CooldownMinSecs) }
func (p PacingConfig) CooldownMax() time.Duration { return seconds(p.CooldownMaxSecs) }
func (p PacingConfig) Settle() time.Duration      { return seconds(p.SettleSecs) }

// FilesConfig holds default CSV locations; flags override per run
type FilesConfig struct {
	Roster  string `yaml:"roster" json:"roster"`
	Counts  string `yaml:"counts" json:"counts"`
	Handles string `yaml:"handles" json:"handles"`
}

// MetadataConfig holds settings for the profile page fallback
type MetadataConfig struct {
	TimeoutSecs    int     `yaml:"timeout" json:"timeout"`
	RetryDelaySecs float64 `yaml:"retry_delay" json:"retry_delay"`
	MaxAttempts    int     `yaml:"max_attempts" json:"max_attempts"`
}

func (m MetadataConfig) Timeout() time.Duration    { return time.Duration(m.TimeoutSecs) * time.Second }
func (m MetadataConfig) RetryDelay() time.Duration { return seconds(m.RetryDelaySecs) }

// SyncConfig holds database sync configuration
type SyncConfig struct {
	// DSN is usually left empty here and supplied via DATABASE_URL or a
	// stored connection profile
	DSN                string `yaml:"dsn" json:"dsn"`
	Table              string `yaml:"table" json:"table"`
	ConnectTimeoutSecs int    `yaml:"connect_timeout" json:"connect_timeout"`
}

func (s SyncConfig) ConnectTimeout() time.Duration {
	return time.Duration(s.ConnectTimeoutSecs) * time.Second
}

// NotificationConfig holds notification preferences
type NotificationConfig struct {
	Enabled          bool   `yaml:"enabled" json:"enabled"`
	OnBlock          bool   `yaml:"on_block" json:"on_block"`
	OnComplete       bool   `yaml:"on_complete" json:"on_complete"`
	NotificationType string `yaml:"notification_type" json:"notification_type"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file" json:"file"`
}

// DefaultConfig returns a Config instance with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Provider:            "duckduckgo",
			QueryTemplate:       "%s instagram site:instagram.com",
			Headless:            false,
			NavigateTimeoutSecs: 15,
			UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		},
		Pacing: PacingConfig{
			MinDelaySecs:    1.5,
			MaxDelaySecs:    3.0,
			CooldownMinSecs: 45,
			CooldownMaxSecs: 120,
			SettleSecs:      2.0,
		},
		Files: FilesConfig{
			Roster:  "roster.csv",
			Counts:  "instagram_counts.csv",
			Handles: "instagram_handles.csv",
		},
		Metadata: MetadataConfig{
			TimeoutSecs:    15,
			RetryDelaySecs: 2.0,
			MaxAttempts:    2,
		},
		Sync: SyncConfig{
			Table:              "players",
			ConnectTimeoutSecs: 10,
		},
		Notifications: NotificationConfig{
			Enabled:          true,
			OnBlock:          true,
			OnComplete:       true,
			NotificationType: "desktop",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "",
		},
	}
}

// LoadFromEnv loads configuration from environment variables
func (c *Config) LoadFromEnv() error {
	if provider := os.Getenv("IGCOUNTS_PROVIDER"); provider != "" {
		c.Search.Provider = provider
	}
	if tmpl := os.Getenv("IGCOUNTS_QUERY_TEMPLATE"); tmpl != "" {
		c.Search.QueryTemplate = tmpl
	}
	if ua := os.Getenv("IGCOUNTS_USER_AGENT"); ua != "" {
		c.Search.UserAgent = ua
	}
	if headless := os.Getenv("IGCOUNTS_HEADLESS"); headless != "" {
		c.Search.Headless = strings.ToLower(headless) == "true"
	}

	if dsn := os.Getenv("IGCOUNTS_DATABASE_URL"); dsn != "" {
		c.Sync.DSN = dsn
	} else if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.Sync.DSN = dsn
	}
	if table := os.Getenv("IGCOUNTS_TABLE"); table != "" {
		c.Sync.Table = table
	}

	if minDelay := os.Getenv("IGCOUNTS_MIN_DELAY"); minDelay != "" {
		if v, err := strconv.ParseFloat(minDelay, 64); err == nil && v > 0 {
			c.Pacing.MinDelaySecs = v
		}
	}
	if maxDelay := os.Getenv("IGCOUNTS_MAX_DELAY"); maxDelay != "" {
		if v, err := strconv.ParseFloat(maxDelay, 64); err == nil && v > 0 {
			c.Pacing.MaxDelaySecs = v
		}
	}

	if notifEnabled := os.Getenv("IGCOUNTS_NOTIFICATIONS_ENABLED"); notifEnabled != "" {
		c.Notifications.Enabled = strings.ToLower(notifEnabled) == "true"
	}

	if logLevel := os.Getenv("IGCOUNTS_LOG_LEVEL"); logLevel != "" {
		c.Logging.Level = logLevel
	}
	if logFormat := os.Getenv("IGCOUNTS_LOG_FORMAT"); logFormat != "" {
		c.Logging.Format = logFormat
	}

	return nil
}

// LoadFromFile loads configuration from a YAML file
func (c *Config) LoadFromFile(path string) error {
	// If path is empty, try default locations
	if path == "" {
		path = c.findConfigFile()
		if path == "" {
			return nil // No config file found, not an error
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// findConfigFile searches for config file in standard locations
func (c *Config) findConfigFile() string {
	locations := []string{
		".igcounts.yaml",
		".igcounts.yml",
		filepath.Join(os.Getenv("HOME"), ".config", "igcounts", "config.yaml"),
		filepath.Join(os.Getenv("HOME"), ".config", "igcounts", "config.yml"),
		filepath.Join(os.Getenv("HOME"), ".igcounts.yaml"),
		filepath.Join(os.Getenv("HOME"), ".igcounts.yml"),
	}

	for _, loc := range locations {
		if _, err := os.Stat(loc); err == nil {
			return loc
		}
	}

	return ""
}

var validProviders = map[string]bool{
	"duckduckgo": true,
	"google":     true,
	"ddg-html":   true,
}

// identifierPattern guards the table name that ends up quoted in SQL
var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if !validProviders[strings.ToLower(c.Search.Provider)] {
		errs = append(errs, fmt.Errorf("unknown search provider %q", c.Search.Provider))
	}
	if !strings.Contains(c.Search.QueryTemplate, "%s") {
		errs = append(errs, errors.New("query template must contain %s for the subject name"))
	}
	if c.Search.NavigateTimeoutSecs <= 0 {
		errs = append(errs, errors.New("navigate timeout must be positive"))
	}

	if c.Pacing.MinDelaySecs <= 0 || c.Pacing.MaxDelaySecs <= 0 {
		errs = append(errs, errors.New("pacing delays must be positive"))
	}
	if c.Pacing.MinDelaySecs > c.Pacing.MaxDelaySecs {
		errs = append(errs, errors.New("min delay cannot exceed max delay"))
	}
	if c.Pacing.CooldownMinSecs > c.Pacing.CooldownMaxSecs {
		errs = append(errs, errors.New("cooldown min cannot exceed cooldown max"))
	}
	if c.Pacing.SettleSecs < 0 {
		errs = append(errs, errors.New("settle delay cannot be negative"))
	}

	if c.Metadata.MaxAttempts <= 0 {
		errs = append(errs, errors.New("metadata max attempts must be positive"))
	}

	if c.Sync.Table != "" && !identifierPattern.MatchString(c.Sync.Table) {
		errs = append(errs, fmt.Errorf("table name %q is not a valid identifier", c.Sync.Table))
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		errs = append(errs, errors.New("invalid log level"))
	}
	validLogFormats := map[string]bool{
		"text": true, "json": true,
	}
	if !validLogFormats[strings.ToLower(c.Logging.Format)] {
		errs = append(errs, errors.New("invalid log format"))
	}

	validNotifTypes := map[string]bool{
		"terminal": true, "desktop": true, "none": true,
	}
	if !validNotifTypes[strings.ToLower(c.Notifications.NotificationType)] {
		errs = append(errs, errors.New("invalid notification type"))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}

// Save saves the configuration to a file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// MergeCommandLineFlags merges command line flags into the configuration
func (c *Config) MergeCommandLineFlags(flags map[string]interface{}) {
	if provider, ok := flags["provider"].(string); ok && provider != "" {
		c.Search.Provider = provider
	}
	if headless, ok := flags["headless"].(bool); ok {
		c.Search.Headless = headless
	}
	if query, ok := flags["query"].(string); ok && query != "" {
		c.Search.QueryTemplate = query
	}
	if dsn, ok := flags["dsn"].(string); ok && dsn != "" {
		c.Sync.DSN = dsn
	}
	if table, ok := flags["table"].(string); ok && table != "" {
		c.Sync.Table = table
	}
	if enabled, ok := flags["notifications"].(bool); ok {
		c.Notifications.Enabled = enabled
	}
	if logLevel, ok := flags["log-level"].(string); ok && logLevel != "" {
		c.Logging.Level = logLevel
	}
}

// Load loads configuration from all sources with proper precedence.
// Precedence order: flags > environment variables > .env file > config file > defaults
func Load(configPath string, flags map[string]interface{}) (*Config, error) {
	// .env files feed the environment; missing files are fine
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".env"))
	_ = godotenv.Load(filepath.Join(os.Getenv("HOME"), ".igcounts.env"))

	config := DefaultConfig()

	if err := config.LoadFromFile(configPath); err != nil {
		return nil, fmt.Errorf("failed to load config file: %w", err)
	}

	if err := config.LoadFromEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	config.MergeCommandLineFlags(flags)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}
