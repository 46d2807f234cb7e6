package xlpack

import (
	"context"
	"time"

	"github.com/ukaji3/xlpack-go/pkg/xlpack/archive"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/models"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/opc"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/parts"
	"github.com/ukaji3/xlpack-go/pkg/xlpack/worksheet"
)

// DefaultSheetName names the sheet synthesized for an empty workbook.
const DefaultSheetName = "Sheet1"

// Assemble builds a complete spreadsheet package from wb and returns the
// serialized container. On failure it returns nil and one of
// *InvalidWorkbookError, *AssemblyError or *PackagingError, or the context
// error when ctx is done between steps.
func Assemble(ctx context.Context, wb *models.Workbook, opts Options) ([]byte, error) {
	if _, err := archive.ParseCompression(string(opts.Compression)); err != nil {
		return nil, &PackagingError{Op: "finalize", Err: err}
	}
	if err := validate(wb, opts); err != nil {
		return nil, err
	}

	log := opts.logger()
	sheets := wb.Sheets
	if len(sheets) == 0 {
		sheets = []models.Sheet{worksheet.New(DefaultSheetName)}
		log.Debug("workbook has no sheets, using default", "sheet", DefaultSheetName)
	}
	names := make([]string, len(sheets))
	for i, s := range sheets {
		names[i] = s.Name()
	}

	plan := opc.NewPlan(len(sheets))
	staging := archive.NewStaging()

	// Builders run in package order; each result is staged before the next.
	builders := []struct {
		step  string
		path  string
		build func() ([]byte, error)
	}{
		{StepContentTypes, opc.ContentTypesPath, func() ([]byte, error) { return parts.ContentTypes(plan) }},
		{StepPackageRels, opc.PackageRelsPath, parts.PackageRels},
		{StepWorkbook, opc.WorkbookPath, func() ([]byte, error) { return parts.Workbook(plan, names) }},
		{StepWorkbookRels, opc.WorkbookRelsPath, func() ([]byte, error) { return parts.WorkbookRels(plan) }},
		{StepWorksheets, "", nil},
		{StepSharedStrings, opc.SharedStringsPath, func() ([]byte, error) { return parts.SharedStrings(wb.SharedStrings) }},
		{StepStyles, opc.StylesPath, func() ([]byte, error) { return parts.Styles(wb.StyleData, wb.Styles) }},
	}

	for _, b := range builders {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()

		if b.step == StepWorksheets {
			seq := &sequencer{
				plan:    plan,
				staging: staging,
				timeout: opts.StepTimeout,
				log:     log,
				opts:    opts,
			}
			if err := seq.run(ctx, sheets); err != nil {
				log.Debug("worksheet sequencing failed", "error", err)
				return nil, err
			}
			opts.stepDone(b.step, start)
			continue
		}

		data, err := b.build()
		if err != nil {
			return nil, &PackagingError{Op: "build", Part: b.path, Err: err}
		}
		if err := staging.Add(b.path, data); err != nil {
			return nil, &PackagingError{Op: "stage", Part: b.path, Err: err}
		}
		log.Debug("staged part", "path", b.path, "bytes", len(data))
		opts.stepDone(b.step, start)
	}

	if err := plan.Check(staging.Paths()); err != nil {
		return nil, &PackagingError{Op: "check", Err: err}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	out, err := staging.Bytes(opts.Compression)
	if err != nil {
		return nil, &PackagingError{Op: "finalize", Err: err}
	}
	opts.stepDone(StepFinalize, start)
	log.Debug("package assembled", "sheets", len(sheets), "parts", staging.Len(), "bytes", len(out))
	return out, nil
}
