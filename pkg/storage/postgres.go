package storage

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	errs "igcounts/pkg/errors"
	"igcounts/pkg/logger"
)

// PostgresStore implements Store on a pgx connection pool
type PostgresStore struct {
	pool  *pgxpool.Pool
	dsn   string
	table string
	log   logger.Logger
}

// NewPostgresStore connects to the records database. The table name must be
// a plain identifier; configuration validation enforces that before any
// value reaches this constructor.
func NewPostgresStore(ctx context.Context, dsn, table string, connectTimeout time.Duration) (*PostgresStore, error) {
	cleaned := cleanDSN(dsn)

	cfg, err := pgxpool.ParseConfig(cleaned)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeConfig, "parse database url", err)
	}

	dialCtx := ctx
	if connectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, connectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(dialCtx, cfg)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, "connect to database", err)
	}
	if err := pool.Ping(dialCtx); err != nil {
		pool.Close()
		return nil, errs.Wrap(errs.ErrorTypeStorage, "ping database", err)
	}

	store := &PostgresStore{
		pool:  pool,
		dsn:   cleaned,
		table: table,
		log:   logger.GetLogger(),
	}
	store.log.InfoWithFields("Connected to database", map[string]interface{}{
		"table": table,
	})
	return store, nil
}

// HandleMap returns every record with a handle, keyed by NormalizeHandle.
// When two records claim the same handle the one later in name order wins.
func (s *PostgresStore) HandleMap(ctx context.Context) (map[string]Record, error) {
	query := fmt.Sprintf(
		`SELECT id, name, instagram FROM %q WHERE instagram IS NOT NULL AND instagram <> '' ORDER BY name`,
		s.table,
	)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, "query record handles", err)
	}
	defer rows.Close()

	handles := make(map[string]Record)
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Name, &r.Handle); err != nil {
			return nil, errs.Wrap(errs.ErrorTypeStorage, "scan record row", err)
		}
		key := NormalizeHandle(r.Handle)
		if key == "" {
			continue
		}
		handles[key] = r
	}
	if err := rows.Err(); err != nil {
		return nil, errs.Wrap(errs.ErrorTypeStorage, "read record rows", err)
	}

	s.log.InfoWithFields("Loaded record handles", map[string]interface{}{
		"table":   s.table,
		"records": len(handles),
	})
	return handles, nil
}

// ApplyUpdate writes one record inside its own transaction so a failure
// rolls back that record alone
func (s *PostgresStore) ApplyUpdate(ctx context.Context, recordID string, update Update) error {
	sql, args := buildUpdateSQL(s.table, recordID, update)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, "begin transaction", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, sql, args...); err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, fmt.Sprintf("update record %s", recordID), err)
	}
	if err := tx.Commit(ctx); err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, "commit update", err)
	}
	return nil
}

// Ping verifies the pool still reaches the database
func (s *PostgresStore) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, "ping database", err)
	}
	return nil
}

// Reconnect replaces the pool. Serverless Postgres drops connections that
// sat idle through a long harvest, so the update phase can start fresh.
func (s *PostgresStore) Reconnect(ctx context.Context) error {
	s.pool.Close()

	pool, err := pgxpool.New(ctx, s.dsn)
	if err != nil {
		return errs.Wrap(errs.ErrorTypeStorage, "reconnect to database", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return errs.Wrap(errs.ErrorTypeStorage, "ping after reconnect", err)
	}

	s.pool = pool
	s.log.Info("Reconnected to database")
	return nil
}

// Close releases the pool
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// buildUpdateSQL renders the field-level UPDATE for one record. Column
// order is fixed so the statement text is deterministic for a given
// write set.
func buildUpdateSQL(table, recordID string, u Update) (string, []interface{}) {
	cols := []string{`"igSbLastCheckedAt"`, `"igSbStatus"`}
	args := []interface{}{u.CheckedAt, u.Status}

	add := func(col string, v interface{}) {
		cols = append(cols, col)
		args = append(args, v)
	}

	if v := u.Stats.Followers; v != nil {
		add(`"followers"`, *v)
	}
	if v := u.Stats.Following; v != nil {
		add(`"following"`, *v)
	}
	if v := u.Stats.Posts; v != nil {
		add(`"posts"`, *v)
	}
	if v := u.Stats.EngagementRate; v != nil {
		add(`"engagementRate"`, *v)
		add(`"igEngagementRate"`, *v)
	}
	if v := u.Stats.AvgLikes; v != nil {
		// The schema keeps a legacy integer column next to the exact one
		add(`"avgLikes"`, int64(math.Round(*v)))
		add(`"igAvgLikes"`, *v)
	}
	if v := u.Stats.AvgComments; v != nil {
		add(`"avgComments"`, int64(math.Round(*v)))
		add(`"igAvgComments"`, *v)
	}
	if u.UpdatedAt != nil {
		add(`"instagramUpdatedAt"`, *u.UpdatedAt)
	}

	sets := make([]string, len(cols))
	for i, col := range cols {
		sets[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	args = append(args, recordID)

	sql := fmt.Sprintf("UPDATE %q SET %s WHERE id = $%d",
		table, strings.Join(sets, ", "), len(args))
	return sql, args
}

// cleanDSN drops connection parameters serverless proxies append that the
// driver does not accept
func cleanDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.RawQuery == "" {
		return dsn
	}
	q := u.Query()
	if !q.Has("channel_binding") {
		return dsn
	}
	q.Del("channel_binding")
	u.RawQuery = q.Encode()
	return u.String()
}
