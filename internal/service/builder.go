// Package service orchestrates a build: resolve the document, assemble the
// package, publish it and record the result.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/ukaji3/xlpack-go/internal/catalog"
	"github.com/ukaji3/xlpack-go/internal/logging"
	"github.com/ukaji3/xlpack-go/internal/metrics"
	"github.com/ukaji3/xlpack-go/internal/storage"
	"github.com/ukaji3/xlpack-go/pkg/xlpack"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/document"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/models"
)

// Producer is written into manifests and catalog rows.
const Producer = "xlpack"

// DefaultName names packages built without an explicit name.
const DefaultName = "workbook"

var (
	// ErrInvalidName indicates a package name unusable as a file name.
	ErrInvalidName = errors.New("invalid package name")
	// ErrNoStore indicates publishing was requested without a store.
	ErrNoStore = errors.New("no package store configured")
)

var validName = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,127}$`)

// Request is one build.
type Request struct {
	Name     string
	Document *models.Document
	Publish  bool
}

// Result is a finished build.
type Result struct {
	BuildID   string
	Package   []byte
	Manifest  *storage.Manifest
	Published *storage.PublishResult
}

// Builder runs builds. It is safe for concurrent use.
type Builder struct {
	opts     xlpack.Options
	store    storage.PackageStore
	recorder catalog.Recorder
	metrics  *metrics.Metrics
	log      *slog.Logger
	version  string
}

// Deps are the optional collaborators of a Builder.
type Deps struct {
	Store    storage.PackageStore // nil disables publishing
	Recorder catalog.Recorder     // nil disables the catalog
	Metrics  *metrics.Metrics     // nil disables metrics
	Logger   *slog.Logger
	Version  string
}

// NewBuilder returns a builder assembling with opts.
func NewBuilder(opts xlpack.Options, deps Deps) *Builder {
	log := deps.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	version := deps.Version
	if version == "" {
		version = "dev"
	}
	return &Builder{
		opts:     opts,
		store:    deps.Store,
		recorder: deps.Recorder,
		metrics:  deps.Metrics,
		log:      log.With("component", "builder"),
		version:  version,
	}
}

// CanPublish reports whether a store is configured.
func (b *Builder) CanPublish() bool {
	return b.store != nil
}

// Build resolves, assembles and optionally publishes req.Document.
func (b *Builder) Build(ctx context.Context, req Request) (*Result, error) {
	res, err := b.build(ctx, req)
	if err != nil && b.metrics != nil {
		b.metrics.RecordFailure(ErrorKind(err))
	}
	return res, err
}

func (b *Builder) build(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()

	name := req.Name
	if name == "" {
		name = DefaultName
	}
	if !validName.MatchString(name) {
		return nil, fmt.Errorf("%q: %w", name, ErrInvalidName)
	}
	if req.Publish && b.store == nil {
		return nil, ErrNoStore
	}

	wb, err := document.Resolve(req.Document)
	if err != nil {
		return nil, &DocumentError{Err: err}
	}

	buildID := uuid.New().String()
	ctx = logging.WithBuildID(ctx, buildID)
	log := logging.BuildLogger(b.log, buildID, len(wb.Sheets))

	if b.metrics != nil {
		b.metrics.InFlightBuilds.Inc()
		defer b.metrics.InFlightBuilds.Dec()
	}

	opts := b.opts
	opts.Logger = log
	if b.metrics != nil {
		opts.Observer = b.metrics
	}

	pkg, err := xlpack.Assemble(ctx, wb, opts)
	if err != nil {
		log.Warn("assembly failed", "error", err)
		return nil, err
	}

	sheets := wb.SheetNames()
	if len(sheets) == 0 {
		sheets = []string{xlpack.DefaultSheetName}
	}
	compression := string(opts.Compression)
	if compression == "" {
		compression = "deflate"
	}

	manifest := &storage.Manifest{
		Build: storage.BuildInfo{ID: buildID, Name: name},
		Package: storage.PackageInfo{
			File:          name + ".xlsx",
			Checksum:      storage.Checksum(pkg),
			ByteSize:      int64(len(pkg)),
			Sheets:        sheets,
			SharedStrings: len(wb.SharedStrings),
			Compression:   compression,
		},
		Producer:  storage.ProducerInfo{Name: Producer, Version: b.version},
		CreatedAt: time.Now().UTC(),
	}
	result := &Result{BuildID: buildID, Package: pkg, Manifest: manifest}

	if req.Publish {
		ref := storage.BuildRef{BuildID: buildID, Name: name}
		pub, err := b.store.Publish(ctx, ref, pkg, manifest)
		if err != nil {
			if b.metrics != nil {
				b.metrics.StorageErrors.Inc()
			}
			return nil, &PublishError{Err: err}
		}
		result.Published = pub
		log.Info("package published", "uri", pub.URI, "bytes", len(pkg))
	}

	elapsed := time.Since(start)
	if b.recorder != nil {
		rec := catalog.BuildRecord{
			BuildID:         buildID,
			Name:            name,
			Checksum:        manifest.Package.Checksum,
			ByteSize:        manifest.Package.ByteSize,
			Sheets:          len(sheets),
			SharedStrings:   len(wb.SharedStrings),
			Compression:     compression,
			URI:             manifest.Package.URI,
			Duration:        elapsed,
			ProducerVersion: b.version,
		}
		// The package already exists; a catalog failure is logged, not returned.
		if err := b.recorder.RecordBuild(ctx, rec); err != nil {
			if b.metrics != nil {
				b.metrics.CatalogErrors.Inc()
			}
			log.Error("catalog write failed", "error", err)
		}
	}

	if b.metrics != nil {
		b.metrics.RecordBuild(compression, elapsed, len(pkg))
	}
	log.Debug("build complete", "bytes", len(pkg), "duration", elapsed)
	return result, nil
}

// RecentBuilds returns catalog entries, newest first.
func (b *Builder) RecentBuilds(ctx context.Context, limit int) ([]catalog.BuildRecord, error) {
	if b.recorder == nil {
		return nil, nil
	}
	return b.recorder.RecentBuilds(ctx, limit)
}
