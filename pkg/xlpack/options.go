// Package xlpack assembles spreadsheet (xlsx) packages from an in-memory
// workbook description.
package xlpack

import (
	"log/slog"
	"time"

	"github.com/ukaji3/xlpack-go/pkg/xlpack/archive"
)

// Steps reported to an Observer.
const (
	StepContentTypes  = "content_types"
	StepPackageRels   = "package_rels"
	StepWorkbook      = "workbook"
	StepWorkbookRels  = "workbook_rels"
	StepWorksheets    = "worksheets"
	StepSharedStrings = "shared_strings"
	StepStyles        = "styles"
	StepFinalize      = "finalize"
)

// Observer receives timings of a run. Implementations must be safe for
// concurrent use when runs share one.
type Observer interface {
	StepDone(step string, d time.Duration)
	SheetDone(index int, d time.Duration)
}

// Options configures assembly behavior.
type Options struct {
	// Compression selects the archive strategy. Empty means deflate.
	Compression archive.Compression
	// Logger receives debug lines per staged part. If nil, nothing is logged.
	Logger *slog.Logger
	// StepTimeout bounds each sheet collaborator call. Zero disables it.
	StepTimeout time.Duration
	// AllowDuplicateStrings passes a non-unique shared string pool through
	// instead of rejecting it.
	AllowDuplicateStrings bool
	// ValidateNames specifies whether sheet names are checked.
	// If nil, defaults to true.
	ValidateNames *bool
	// Observer is notified of step and sheet timings (optional).
	Observer Observer
}

// DefaultOptions returns default assembly options.
func DefaultOptions() Options {
	return Options{
		Compression: archive.CompressionDeflate,
	}
}

// ShouldValidateNames returns whether sheet names are validated.
func (o Options) ShouldValidateNames() bool {
	if o.ValidateNames != nil {
		return *o.ValidateNames
	}
	return true
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

func (o Options) stepDone(step string, start time.Time) {
	if o.Observer != nil {
		o.Observer.StepDone(step, time.Since(start))
	}
}

func (o Options) sheetDone(index int, start time.Time) {
	if o.Observer != nil {
		o.Observer.SheetDone(index, time.Since(start))
	}
}
