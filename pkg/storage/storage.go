package storage

import (
	"context"
	"strings"
	"time"

	"igcounts/pkg/models"
)

// Record is one stored row a candidate can match
type Record struct {
	ID     string
	Name   string
	Handle string
}

// Update is the field-level write set for one record. CheckedAt and Status
// are always written; stats only when present; UpdatedAt only when at
// least one stat is.
type Update struct {
	Stats     models.StatsUpdate
	Status    string
	CheckedAt time.Time
	UpdatedAt *time.Time
}

// Store is the record backend the merge engine writes to
type Store interface {
	// HandleMap returns every record with a handle, keyed by the
	// normalized handle
	HandleMap(ctx context.Context) (map[string]Record, error)
	// ApplyUpdate writes one record's update in its own transaction
	ApplyUpdate(ctx context.Context, recordID string, update Update) error
}

// NormalizeHandle canonicalizes a stored handle for matching: trimmed,
// leading @ signs removed, lower-cased
func NormalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(handle), "@"))
}
