// Package logger provides structured logging for the counts harvester.
//
// It wraps the zerolog library behind a small interface with support for:
// - Multiple log levels (Debug, Info, Warn, Error, Fatal)
// - Structured logging with fields
// - Pretty console output with colors, or raw JSON
// - Optional JSON file output alongside the terminal
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "igcounts/pkg/logger"
//
//	// Initialize the global logger
//	cfg := &config.LoggingConfig{
//	    Level:  "info",
//	    Format: "text",
//	}
//	err := logger.Initialize(cfg)
//
//	// Use the global logger
//	logger.Info("Harvest started")
//	logger.WithField("subject", "Alice Example").Info("Looking up profile")
//	logger.WithError(err).Error("Checkpoint save failed")
//
// The package also ships domain helpers (LogSearch, LogSubject, LogBlocked,
// LogSyncRow) that keep field names consistent across the pipeline, and a
// TestLogger that captures messages for assertions in tests.
package logger
