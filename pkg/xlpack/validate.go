package xlpack

import (
	"fmt"
	"reflect"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/ukaji3/xlpack-go/pkg/xlpack/models"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/cases"
)

// validate checks the workbook before any part is built.
func validate(wb *models.Workbook, opts Options) error {
	if wb == nil {
		return &InvalidWorkbookError{Field: "workbook", Err: ErrNilWorkbook}
	}

	fold := cases.Fold()
	seen := make(map[string]int, len(wb.Sheets))
	for i, sheet := range wb.Sheets {
		field := fmt.Sprintf("sheets[%d]", i)
		if isNil(sheet) {
			return &InvalidWorkbookError{Field: field, Err: ErrNilSheet}
		}
		if !opts.ShouldValidateNames() {
			continue
		}
		name := sheet.Name()
		if err := checkSheetName(name); err != nil {
			return &InvalidWorkbookError{Field: field + ".name", Err: err}
		}
		key := fold.String(name)
		if j, ok := seen[key]; ok {
			return &InvalidWorkbookError{
				Field: field + ".name",
				Err:   fmt.Errorf("%w: %q collides with sheets[%d]", ErrDuplicateSheetName, name, j),
			}
		}
		seen[key] = i
	}

	strs := make(map[string]int, len(wb.SharedStrings))
	for i, s := range wb.SharedStrings {
		field := fmt.Sprintf("sharedStrings[%d]", i)
		if utf8.RuneCountInString(s) > excelize.TotalCellChars {
			return &InvalidWorkbookError{Field: field, Err: ErrSharedStringLength}
		}
		if opts.AllowDuplicateStrings {
			continue
		}
		if j, ok := strs[s]; ok {
			return &InvalidWorkbookError{
				Field: field,
				Err:   fmt.Errorf("%w: same as sharedStrings[%d]", ErrDuplicateSharedString, j),
			}
		}
		strs[s] = i
	}
	return nil
}

// isNil reports whether sheet is nil or an interface holding a nil pointer,
// map, slice, func or chan.
func isNil(sheet models.Sheet) bool {
	if sheet == nil {
		return true
	}
	v := reflect.ValueOf(sheet)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// checkSheetName applies the sheet naming rules of the spreadsheet
// application, reporting them with excelize's sentinels.
func checkSheetName(name string) error {
	if name == "" {
		return excelize.ErrSheetNameBlank
	}
	if len(utf16.Encode([]rune(name))) > excelize.MaxSheetNameLength {
		return excelize.ErrSheetNameLength
	}
	if strings.ContainsAny(name, ":\\/?*[]") {
		return excelize.ErrSheetNameInvalid
	}
	if strings.HasPrefix(name, "'") || strings.HasSuffix(name, "'") {
		return excelize.ErrSheetNameSingleQuote
	}
	return nil
}
