// Package catalog records published builds in a PostgreSQL table.
package catalog

import (
	"context"
	"time"
)

type Config struct {
	PostgresDSN string
}

// Recorder persists build records.
type Recorder interface {
	RecordBuild(ctx context.Context, rec BuildRecord) error
	RecentBuilds(ctx context.Context, limit int) ([]BuildRecord, error)
	Close()
}

// BuildRecord is one catalog row.
type BuildRecord struct {
	BuildID         string        `db:"build_id" json:"build_id"`
	Name            string        `db:"name" json:"name"`
	Checksum        string        `db:"checksum" json:"checksum"`
	ByteSize        int64         `db:"byte_size" json:"byte_size"`
	Sheets          int           `db:"sheet_count" json:"sheets"`
	SharedStrings   int           `db:"shared_strings" json:"shared_strings"`
	Compression     string        `db:"compression" json:"compression"`
	URI             string        `db:"uri" json:"uri,omitempty"`
	Duration        time.Duration `db:"duration_ms" json:"duration"`
	ProducerVersion string        `db:"producer_version" json:"producer_version"`
	CreatedAt       time.Time     `db:"created_at" json:"created_at"`
}

// NewRecorder returns a PostgreSQL recorder, or a no-op recorder when no
// DSN is configured.
func NewRecorder(ctx context.Context, cfg Config) (Recorder, error) {
	if cfg.PostgresDSN == "" {
		return noopRecorder{}, nil
	}
	return NewPostgresRecorder(ctx, cfg)
}

type noopRecorder struct{}

func (noopRecorder) RecordBuild(context.Context, BuildRecord) error { return nil }

func (noopRecorder) RecentBuilds(context.Context, int) ([]BuildRecord, error) { return nil, nil }

func (noopRecorder) Close() {}
