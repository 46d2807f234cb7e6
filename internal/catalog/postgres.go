package catalog

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed schema.sql
var schemaSQL string

// db is the subset of *pgxpool.Pool the recorder uses.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresRecorder implements Recorder using PostgreSQL.
type PostgresRecorder struct {
	db db
}

// NewPostgresRecorder connects to the catalog and creates its table.
func NewPostgresRecorder(ctx context.Context, cfg Config) (*PostgresRecorder, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("parse DSN: %w", err)
	}

	poolCfg.MaxConns = 5
	poolCfg.MinConns = 1
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRecorder{db: pool}
	if err := r.initSchema(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}

	slog.Info("connected to PostgreSQL catalog", "component", "catalog")
	return r, nil
}

func (r *PostgresRecorder) initSchema(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

const insertBuild = `
	INSERT INTO xlpack_builds (
		build_id, name, checksum, byte_size, sheet_count, shared_strings,
		compression, uri, duration_ms, producer_version
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	ON CONFLICT (build_id)
	DO UPDATE SET checksum = EXCLUDED.checksum,
		byte_size = EXCLUDED.byte_size,
		uri = EXCLUDED.uri,
		updated_at = NOW()
`

// RecordBuild upserts a build row keyed by build id.
func (r *PostgresRecorder) RecordBuild(ctx context.Context, rec BuildRecord) error {
	if rec.BuildID == "" {
		return fmt.Errorf("build id is required")
	}
	_, err := r.db.Exec(ctx, insertBuild,
		rec.BuildID,
		rec.Name,
		rec.Checksum,
		rec.ByteSize,
		rec.Sheets,
		rec.SharedStrings,
		rec.Compression,
		rec.URI,
		rec.Duration.Milliseconds(),
		rec.ProducerVersion,
	)
	if err != nil {
		return fmt.Errorf("record build %s: %w", rec.BuildID, err)
	}
	return nil
}

const selectRecent = `
	SELECT build_id, name, checksum, byte_size, sheet_count, shared_strings,
		compression, uri, duration_ms, producer_version, created_at
	FROM xlpack_builds
	ORDER BY created_at DESC
	LIMIT $1
`

// RecentBuilds returns up to limit builds, newest first.
func (r *PostgresRecorder) RecentBuilds(ctx context.Context, limit int) ([]BuildRecord, error) {
	rows, err := r.db.Query(ctx, selectRecent, limit)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	recs, err := pgx.CollectRows(rows, scanBuild)
	if err != nil {
		return nil, fmt.Errorf("scan builds: %w", err)
	}
	return recs, nil
}

// scanBuild reads one selectRecent row. duration_ms is stored in
// milliseconds.
func scanBuild(row pgx.CollectableRow) (BuildRecord, error) {
	var rec BuildRecord
	var durationMS int64
	err := row.Scan(
		&rec.BuildID,
		&rec.Name,
		&rec.Checksum,
		&rec.ByteSize,
		&rec.Sheets,
		&rec.SharedStrings,
		&rec.Compression,
		&rec.URI,
		&durationMS,
		&rec.ProducerVersion,
		&rec.CreatedAt,
	)
	rec.Duration = time.Duration(durationMS) * time.Millisecond
	return rec, err
}

// Close releases the pool.
func (r *PostgresRecorder) Close() {
	r.db.Close()
}
