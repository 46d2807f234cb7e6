// Package storage publishes assembled packages and their manifests to the
// local filesystem or to a gocloud blob bucket.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"
)

// BuildRef describes where one build is published.
type BuildRef struct {
	BuildID string
	Name    string // file name without extension, e.g. "report"
}

// Path returns the storage path for the package file.
func (r BuildRef) Path(prefix string) string {
	return fmt.Sprintf("%s%s/%s.xlsx", prefix, r.BuildID, r.Name)
}

// ManifestPath returns the storage path for the build manifest.
func (r BuildRef) ManifestPath(prefix string) string {
	return fmt.Sprintf("%s%s/_manifest.json", prefix, r.BuildID)
}

// Manifest describes a published package.
type Manifest struct {
	Build     BuildInfo    `json:"build"`
	Package   PackageInfo  `json:"package"`
	Producer  ProducerInfo `json:"producer"`
	CreatedAt time.Time    `json:"created_at"`
}

// BuildInfo identifies the build.
type BuildInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// PackageInfo describes the package file.
type PackageInfo struct {
	File          string   `json:"file"`
	URI           string   `json:"uri,omitempty"`
	Checksum      string   `json:"checksum"`
	ByteSize      int64    `json:"byte_size"`
	Sheets        []string `json:"sheets"`
	SharedStrings int      `json:"shared_strings"`
	Compression   string   `json:"compression"`
}

// ProducerInfo describes the software that produced the package.
type ProducerInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// MarshalJSON returns the manifest as JSON bytes.
func (m *Manifest) MarshalJSON() ([]byte, error) {
	type Alias Manifest
	return json.MarshalIndent((*Alias)(m), "", "  ")
}

// Checksum returns the "sha256:<hex>" digest of data.
func Checksum(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}

// PackageStore abstracts publishing packages to storage.
type PackageStore interface {
	// Publish writes the package and its manifest to temporary locations
	// and then moves both into place. On failure neither is visible.
	// manifest.Package.URI is set to the package's final URI.
	Publish(ctx context.Context, ref BuildRef, pkg []byte, manifest *Manifest) (*PublishResult, error)

	// Exists checks if a build's package already exists.
	Exists(ctx context.Context, ref BuildRef) (bool, error)

	// Head returns metadata about a stored object.
	Head(ctx context.Context, key string) (*ObjectInfo, error)

	// URI returns the canonical URI for the given key.
	// For local: file:///path, GCS: gs://bucket/path, S3: s3://bucket/path
	URI(key string) string

	// Close releases any resources.
	Close() error
}

// ObjectInfo contains metadata about a stored object.
type ObjectInfo struct {
	Key     string
	Size    int64
	ETag    string // empty for local
	ModTime time.Time
}

// PublishResult contains the result of a publish.
type PublishResult struct {
	PackageKey  string
	ManifestKey string
	URI         string
}

// Config configures the storage backend.
type Config struct {
	Backend string // "local" | "gcs" | "s3" | "mem"

	// Local filesystem
	LocalDir string

	// GCS or S3 bucket name
	Bucket string

	// S3 (also works for MinIO and R2)
	S3Endpoint string
	S3Region   string

	// Common
	Prefix string // "builds/" (path prefix within bucket or local dir)
}

// NewPackageStore creates a storage backend based on configuration.
func NewPackageStore(ctx context.Context, cfg Config) (PackageStore, error) {
	switch cfg.Backend {
	case "local":
		if cfg.LocalDir == "" {
			return nil, fmt.Errorf("LocalDir required for local backend")
		}
		return NewLocalStore(cfg.LocalDir, cfg.Prefix)
	case "gcs":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("Bucket required for gcs backend")
		}
		return NewGCSStore(ctx, cfg.Bucket, cfg.Prefix)
	case "s3":
		if cfg.Bucket == "" {
			return nil, fmt.Errorf("Bucket required for s3 backend")
		}
		return NewS3Store(ctx, cfg.Bucket, cfg.Prefix, cfg.S3Endpoint, cfg.S3Region)
	case "mem":
		return NewMemStore(ctx, cfg.Prefix)
	default:
		return nil, fmt.Errorf("unknown storage backend: %s", cfg.Backend)
	}
}
