package opc

import (
	"errors"
	"fmt"
	"strings"
)

// Part names
const (
	ContentTypesPath  = "[Content_Types].xml"
	PackageRelsPath   = "_rels/.rels"
	WorkbookPath      = "xl/workbook.xml"
	WorkbookRelsPath  = "xl/_rels/workbook.xml.rels"
	StylesPath        = "xl/styles.xml"
	SharedStringsPath = "xl/sharedStrings.xml"
)

var (
	// ErrPartNotPlanned indicates a staged path that the plan does not know about.
	ErrPartNotPlanned = errors.New("part not in package plan")
	// ErrPartMissing indicates a planned part that was never staged.
	ErrPartMissing = errors.New("planned part was not staged")
	// ErrOverrideMissing indicates a staged XML part without a content type override.
	ErrOverrideMissing = errors.New("part has no content type override")
)

// Part is a content-typed part of the package.
type Part struct {
	// Name is the archive path without a leading slash.
	Name string
	// ContentType is the override content type of the part.
	ContentType string
}

// PartName returns the absolute part name used in the content types manifest.
func (p Part) PartName() string {
	return "/" + p.Name
}

// Plan is the single description of which parts a package with N sheets
// contains. The content types builder, the workbook relationship builder and
// the worksheet sequencer all read their paths from it.
type Plan struct {
	Scheme
}

// NewPlan returns the plan for sheetCount sheets.
func NewPlan(sheetCount int) Plan {
	return Plan{Scheme: NewScheme(sheetCount)}
}

// WorksheetPath returns the archive path of the worksheet at index i.
func (p Plan) WorksheetPath(i int) string {
	return "xl/" + p.WorksheetTarget(i)
}

// WorksheetTarget returns the worksheet path relative to the workbook part.
func (p Plan) WorksheetTarget(i int) string {
	return fmt.Sprintf("worksheets/sheet%d.xml", i+1)
}

// WorksheetRelsPath returns the archive path of the sheet-local relationships
// of the worksheet at index i.
func (p Plan) WorksheetRelsPath(i int) string {
	return fmt.Sprintf("xl/worksheets/_rels/sheet%d.xml.rels", i+1)
}

// Parts returns every part that needs a content type override, in manifest
// order: workbook, worksheets, styles, shared strings.
func (p Plan) Parts() []Part {
	parts := make([]Part, 0, p.SheetCount()+3)
	parts = append(parts, Part{Name: WorkbookPath, ContentType: ContentTypeWorkbook})
	for i := 0; i < p.SheetCount(); i++ {
		parts = append(parts, Part{Name: p.WorksheetPath(i), ContentType: ContentTypeWorksheet})
	}
	parts = append(parts,
		Part{Name: StylesPath, ContentType: ContentTypeStyles},
		Part{Name: SharedStringsPath, ContentType: ContentTypeSharedStrings},
	)
	return parts
}

// Required returns every path a complete package must stage.
func (p Plan) Required() []string {
	paths := []string{ContentTypesPath, PackageRelsPath, WorkbookRelsPath}
	for _, part := range p.Parts() {
		paths = append(paths, part.Name)
	}
	return paths
}

// optional reports whether path is a planned part that may be absent.
func (p Plan) optional(path string) bool {
	for i := 0; i < p.SheetCount(); i++ {
		if path == p.WorksheetRelsPath(i) {
			return true
		}
	}
	return false
}

// Check compares staged paths against the plan. Every required part must be
// staged, every staged path must be planned, and every staged part that is not
// a relationships part must have a content type override.
func (p Plan) Check(staged []string) error {
	overrides := make(map[string]bool)
	for _, part := range p.Parts() {
		overrides[part.Name] = true
	}
	required := make(map[string]bool)
	for _, path := range p.Required() {
		required[path] = true
	}

	seen := make(map[string]bool, len(staged))
	for _, path := range staged {
		seen[path] = true
		if !required[path] && !p.optional(path) {
			return fmt.Errorf("%s: %w", path, ErrPartNotPlanned)
		}
		if path == ContentTypesPath || strings.HasSuffix(path, ".rels") {
			continue
		}
		if !overrides[path] {
			return fmt.Errorf("%s: %w", path, ErrOverrideMissing)
		}
	}

	for _, path := range p.Required() {
		if !seen[path] {
			return fmt.Errorf("%s: %w", path, ErrPartMissing)
		}
	}
	return nil
}
