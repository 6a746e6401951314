package storage

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"igcounts/pkg/logger"
	"igcounts/pkg/models"
)

// Engine merges candidate stats into the store.
type Engine struct {
	store  Store
	dryRun bool
	log    logger.Logger
}

// NewEngine creates a merge engine. With dryRun set it reports what would
// change without writing anything.
func NewEngine(store Store, dryRun bool) *Engine {
	return &Engine{
		store:  store,
		dryRun: dryRun,
		log:    logger.GetLogger(),
	}
}

// Run merges candidates into the store and reports totals. A candidate is
// matched against the handle map before its admission check runs, so the
// no-match count reflects coverage even when a harvest mostly failed.
func (e *Engine) Run(ctx context.Context, candidates []models.Candidate) (models.SyncTotals, error) {
	var totals models.SyncTotals

	handles, err := e.store.HandleMap(ctx)
	if err != nil {
		return totals, err
	}

	now := time.Now().UTC()
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return totals, err
		}

		username := NormalizeHandle(c.Username)
		record, ok := handles[username]
		if !ok {
			totals.NoMatch++
			e.log.DebugWithFields("No record for handle", map[string]interface{}{
				"username": username,
			})
			continue
		}

		if !c.Admissible() {
			totals.Skipped++
			e.log.DebugWithFields("Candidate not admissible", map[string]interface{}{
				"username": username,
				"status":   c.Status,
			})
			continue
		}

		update := buildUpdate(c, now)

		if e.dryRun {
			totals.Updated++
			e.log.InfoWithFields("Would update record", map[string]interface{}{
				"username":  username,
				"record_id": record.ID,
			})
			continue
		}

		if err := e.store.ApplyUpdate(ctx, record.ID, update); err != nil {
			totals.Errors++
			logger.LogSyncRow(username, record.ID, false, err)
			continue
		}
		totals.Updated++
		logger.LogSyncRow(username, record.ID, true, nil)
	}

	e.log.InfoWithFields("Sync finished", map[string]interface{}{
		"updated":  totals.Updated,
		"skipped":  totals.Skipped,
		"no_match": totals.NoMatch,
		"errors":   totals.Errors,
	})
	return totals, nil
}

// buildUpdate converts one admitted candidate into a write set. Check
// time and status are always stamped; the content timestamp moves only
// when at least one stat actually parsed.
func buildUpdate(c models.Candidate, now time.Time) Update {
	stats := models.StatsUpdate{
		Followers:      toInt(c.Followers),
		Following:      toInt(c.Following),
		Posts:          toInt(c.MediaCount),
		EngagementRate: toFloat(c.EngagementRate),
		AvgLikes:       toFloat(c.AvgLikes),
		AvgComments:    toFloat(c.AvgComments),
	}

	u := Update{
		Stats:     stats,
		Status:    "ok",
		CheckedAt: now,
	}
	if stats.HasStats() {
		u.UpdatedAt = &now
	}
	return u
}

// toInt cleans a numeric cell and rounds any fraction. Empty or unparsable
// cells come back nil.
func toInt(val string) *int64 {
	f := toFloat(val)
	if f == nil {
		return nil
	}
	n := int64(math.Round(*f))
	return &n
}

// toFloat cleans a numeric cell the same way without rounding. Thousands
// separators and percent signs are stripped before parsing.
func toFloat(val string) *float64 {
	s := strings.ReplaceAll(val, ",", "")
	s = strings.ReplaceAll(s, "%", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}
