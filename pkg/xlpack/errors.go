package xlpack

import (
	"errors"
	"fmt"
)

// ErrNilWorkbook indicates Assemble was called without a workbook.
var ErrNilWorkbook = errors.New("workbook is nil")

// ErrNilSheet indicates a nil entry in the sheet list.
var ErrNilSheet = errors.New("sheet is nil")

// ErrDuplicateSheetName indicates two sheets whose names differ only by case.
var ErrDuplicateSheetName = errors.New("duplicate sheet name")

// ErrDuplicateSharedString indicates the shared string pool is not unique.
var ErrDuplicateSharedString = errors.New("duplicate shared string")

// ErrSharedStringLength indicates a shared string over the cell text limit.
var ErrSharedStringLength = errors.New("shared string exceeds 32767 characters")

// ErrEmptyMarkup indicates a sheet returned no worksheet markup.
var ErrEmptyMarkup = errors.New("sheet returned empty markup")

// Sheet steps reported by AssemblyError.
const (
	StepMarkup        = "markup"
	StepRelationships = "relationships"
)

// AssemblyError represents a sheet collaborator failure during sequencing.
type AssemblyError struct {
	SheetIndex int
	SheetName  string
	Step       string // "markup", "relationships"
	Err        error
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembly error in sheet %d %q (%s): %v", e.SheetIndex, e.SheetName, e.Step, e.Err)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}

// NewAssemblyError creates a new AssemblyError.
func NewAssemblyError(index int, sheetName, step string, err error) *AssemblyError {
	return &AssemblyError{
		SheetIndex: index,
		SheetName:  sheetName,
		Step:       step,
		Err:        err,
	}
}

// InvalidWorkbookError represents a workbook rejected before any part is built.
type InvalidWorkbookError struct {
	Field string // e.g. "sheets[2].name", "sharedStrings[7]"
	Err   error
}

func (e *InvalidWorkbookError) Error() string {
	return fmt.Sprintf("invalid workbook: %s: %v", e.Field, e.Err)
}

func (e *InvalidWorkbookError) Unwrap() error {
	return e.Err
}

// PackagingError represents a failure while building, staging or finalizing
// a part.
type PackagingError struct {
	Op   string // "build", "stage", "check", "finalize"
	Part string
	Err  error
}

func (e *PackagingError) Error() string {
	if e.Part == "" {
		return fmt.Sprintf("packaging error (%s): %v", e.Op, e.Err)
	}
	return fmt.Sprintf("packaging error in %s (%s): %v", e.Part, e.Op, e.Err)
}

func (e *PackagingError) Unwrap() error {
	return e.Err
}
