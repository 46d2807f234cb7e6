package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/xuri/excelize/v2"

	"github.com/ukaji3/xlpack-go/internal/catalog"
	"github.com/ukaji3/xlpack-go/internal/metrics"
	"github.com/ukaji3/xlpack-go/internal/storage"
	"github.com/ukaji3/xlpack-go/pkg/xlpack"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/models"
)

type fakeRecorder struct {
	mu   sync.Mutex
	recs []catalog.BuildRecord
	err  error
}

func (f *fakeRecorder) RecordBuild(_ context.Context, rec catalog.BuildRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.recs = append(f.recs, rec)
	return nil
}

func (f *fakeRecorder) RecentBuilds(context.Context, int) ([]catalog.BuildRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.recs, nil
}

func (f *fakeRecorder) Close() {}

func sampleDocument() *models.Document {
	return &models.Document{
		Sheets: []models.SheetDocument{
			{
				Name: "Summary",
				Rows: []models.CellRow{
					{R: 1, C: map[string]interface{}{"1": "Region", "2": "Total"}, Styles: map[string]string{"1": "header"}},
					{R: 2, C: map[string]interface{}{"1": "North", "2": 10.5}},
				},
			},
			{Name: "Notes"},
		},
		Styles: map[string]models.StyleDocument{"header": {Bold: true}},
	}
}

func newTestBuilder(t *testing.T, rec catalog.Recorder) (*Builder, *storage.BlobStore, *metrics.Metrics) {
	t.Helper()
	store, err := storage.NewMemStore(context.Background(), "builds/")
	if err != nil {
		t.Fatalf("NewMemStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	m := metrics.New(prometheus.NewRegistry(), "test")
	b := NewBuilder(xlpack.DefaultOptions(), Deps{Store: store, Recorder: rec, Metrics: m, Version: "1.0.0"})
	return b, store, m
}

func TestBuild(t *testing.T) {
	rec := &fakeRecorder{}
	b, _, m := newTestBuilder(t, rec)

	res, err := b.Build(context.Background(), Request{Name: "report", Document: sampleDocument()})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if res.Published != nil {
		t.Error("package should not be published")
	}
	if res.Manifest.Package.Checksum != storage.Checksum(res.Package) {
		t.Errorf("checksum = %q", res.Manifest.Package.Checksum)
	}
	if got := res.Manifest.Package.Sheets; len(got) != 2 || got[0] != "Summary" {
		t.Errorf("manifest sheets = %v", got)
	}
	if res.Manifest.Producer.Version != "1.0.0" || res.Manifest.Package.Compression != "deflate" {
		t.Errorf("manifest = %+v", res.Manifest)
	}

	f, err := excelize.OpenReader(bytes.NewReader(res.Package))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()
	if v, _ := f.GetCellValue("Summary", "B2"); v != "10.5" {
		t.Errorf("B2 = %q, expected 10.5", v)
	}

	if len(rec.recs) != 1 || rec.recs[0].BuildID != res.BuildID || rec.recs[0].Sheets != 2 {
		t.Errorf("catalog records = %+v", rec.recs)
	}
	if got := testutil.ToFloat64(m.BuildsSucceeded.WithLabelValues("deflate")); got != 1 {
		t.Errorf("builds succeeded = %v, expected 1", got)
	}
	if got := testutil.CollectAndCount(m.StepDuration); got == 0 {
		t.Error("assembly steps were not observed")
	}
}

func TestBuildPublish(t *testing.T) {
	b, store, _ := newTestBuilder(t, nil)
	ctx := context.Background()

	res, err := b.Build(ctx, Request{Name: "report", Document: sampleDocument(), Publish: true})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if res.Published == nil {
		t.Fatal("expected publish result")
	}
	expectedURI := "mem://builds/" + res.BuildID + "/report.xlsx"
	if res.Published.URI != expectedURI || res.Manifest.Package.URI != expectedURI {
		t.Errorf("URI = %q / %q, expected %q", res.Published.URI, res.Manifest.Package.URI, expectedURI)
	}

	data, err := store.ReadAll(ctx, res.Published.PackageKey)
	if err != nil || !bytes.Equal(data, res.Package) {
		t.Errorf("stored package differs: %v", err)
	}
}

func TestBuildFailures(t *testing.T) {
	noStore := NewBuilder(xlpack.DefaultOptions(), Deps{})

	tests := []struct {
		name string
		b    *Builder
		req  Request
		kind string
	}{
		{"invalid name", noStore, Request{Name: "../etc", Document: sampleDocument()}, "invalid_document"},
		{"nil document", noStore, Request{}, "invalid_document"},
		{"no store", noStore, Request{Document: sampleDocument(), Publish: true}, "no_store"},
		{
			"duplicate sheet",
			noStore,
			Request{Document: &models.Document{Sheets: []models.SheetDocument{{Name: "A"}, {Name: "a"}}}},
			"invalid_workbook",
		},
		{
			"bad sheet name",
			noStore,
			Request{Document: &models.Document{Sheets: []models.SheetDocument{{Name: "a/b"}}}},
			"invalid_workbook",
		},
	}

	for _, tt := range tests {
		res, err := tt.b.Build(context.Background(), tt.req)
		if err == nil || res != nil {
			t.Errorf("%s: Build() = %v, %v, expected error", tt.name, res, err)
			continue
		}
		if got := ErrorKind(err); got != tt.kind {
			t.Errorf("%s: ErrorKind(%v) = %q, expected %q", tt.name, err, got, tt.kind)
		}
	}
}

func TestBuildFailureMetrics(t *testing.T) {
	b, _, m := newTestBuilder(t, nil)
	if _, err := b.Build(context.Background(), Request{Name: "bad name"}); err == nil {
		t.Fatal("expected error")
	}
	if got := testutil.ToFloat64(m.BuildsFailed.WithLabelValues("invalid_document")); got != 1 {
		t.Errorf("failures = %v, expected 1", got)
	}
}

func TestBuildCatalogFailure(t *testing.T) {
	b, _, m := newTestBuilder(t, &fakeRecorder{err: errors.New("db down")})
	if _, err := b.Build(context.Background(), Request{Document: sampleDocument()}); err != nil {
		t.Fatalf("catalog failure should not fail the build: %v", err)
	}
	if got := testutil.ToFloat64(m.CatalogErrors); got != 1 {
		t.Errorf("catalog errors = %v, expected 1", got)
	}
}

func TestBuildCanceled(t *testing.T) {
	b := NewBuilder(xlpack.DefaultOptions(), Deps{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Build(ctx, Request{Document: sampleDocument()})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Build() error = %v, expected context.Canceled", err)
	}
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err      error
		expected string
	}{
		{&xlpack.AssemblyError{Err: context.DeadlineExceeded}, "timeout"},
		{&xlpack.AssemblyError{Err: errors.New("boom")}, "assembly"},
		{&xlpack.PackagingError{Op: "finalize", Err: errors.New("x")}, "packaging"},
		{&PublishError{Err: errors.New("x")}, "storage"},
		{fmt.Errorf("wrapped: %w", context.Canceled), "canceled"},
		{errors.New("other"), "internal"},
	}
	for _, tt := range tests {
		if got := ErrorKind(tt.err); got != tt.expected {
			t.Errorf("ErrorKind(%v) = %q, expected %q", tt.err, got, tt.expected)
		}
	}
}

func TestRecentBuilds(t *testing.T) {
	rec := &fakeRecorder{}
	b, _, _ := newTestBuilder(t, rec)
	for i := 0; i < 2; i++ {
		if _, err := b.Build(context.Background(), Request{Document: sampleDocument()}); err != nil {
			t.Fatalf("Build failed: %v", err)
		}
	}
	recs, err := b.RecentBuilds(context.Background(), 10)
	if err != nil || len(recs) != 2 {
		t.Errorf("RecentBuilds() = %d records, %v", len(recs), err)
	}

	none := NewBuilder(xlpack.DefaultOptions(), Deps{})
	if recs, err := none.RecentBuilds(context.Background(), 10); err != nil || recs != nil {
		t.Errorf("RecentBuilds() without catalog = %v, %v", recs, err)
	}
}
