// Package storage syncs externally harvested profile stats into the
// Postgres records table.
//
// The sync is merge-only:
//   - No row is ever inserted; candidates that match no stored handle are
//     counted and dropped.
//   - Only candidates from a successful harvest (status OK with a followers
//     value) may touch a record.
//   - Only the stats a candidate actually carries are written, so a partial
//     harvest leaves the remaining columns untouched.
//   - Each record updates in its own transaction; one bad row rolls back
//     alone and the run continues.
//
// Re-running the same candidates file converges to the same store state,
// which is what lets the sync run daily from cron without coordination.
//
// Usage:
//
//	store, err := storage.NewPostgresStore(ctx, dsn, "players", 10*time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer store.Close()
//
//	engine := storage.NewEngine(store, false)
//	totals, err := engine.Run(ctx, candidates)
package storage
